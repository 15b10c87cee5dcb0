// Package github extracts GitHub issues and pull requests as content
// bundles.
//
// # Fetch paths
//
// When the page snapshot shows a signed-in user (the user-login and
// csrf-token meta tags), the connector queries the same-origin GraphQL
// endpoint with the session cookie. Any GraphQL failure other than
// cancellation falls back to the REST API through go-github, which works
// anonymously and can be authenticated with a personal access token.
//
// # Rate limiting
//
// REST calls share one RateLimiter that throttles proactively and reads
// the X-RateLimit-* headers. Unauthenticated clients get 60 requests per
// hour, so a throttled caller may block until the window resets.
//
// # Bundle shape
//
// Node 0 is the issue or pull request body. Comments follow; for pull
// requests, conversation comments, reviews and inline review comments are
// merged by creation time. Participants are keyed by login, and deleted
// accounts appear as "ghost".
package github
