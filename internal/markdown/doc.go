// Package markdown renders content bundles as Markdown documents.
//
// A single bundle is rendered by SerializeConversation; several bundles are
// merged into one document by SerializeBundle. Both prepend a frontmatter
// block unless disabled, and report message and token counts alongside the
// text. Output depends only on the bundles and options, so the same input
// always produces the same bytes.
package markdown
