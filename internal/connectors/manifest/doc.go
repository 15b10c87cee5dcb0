// Package manifest implements the declarative adapter engine.
//
// A Manifest describes how to authenticate against, fetch from and parse
// one chat platform. Adapter interprets a manifest plus an optional Hooks
// record; the engine branches on configuration values, never on platform
// identity. Adding a platform means adding a manifest (in Go or as a YAML
// file) and, where the response shape demands it, a few hooks.
//
// # Pipeline
//
//  1. Conversation ID from the hook or the first matching URL pattern
//  2. Auth variables from hooks, plus a cached bearer token when configured
//  3. Request URL from the endpoint template and query parameters
//  4. Fetch, retrying once after a forced token refresh on 401
//  5. Transform, title lookup, message array lookup and sort
//  6. Per-message skip rules, role mapping and text extraction, run
//     concurrently and reassembled in sorted order
//  7. AfterParse hook, then bundle construction
//
// A conversation that yields no messages is an error, never an empty bundle.
package manifest
