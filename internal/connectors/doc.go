// Package connectors holds the platform adapters that turn chat and
// code-review pages into domain.ContentBundle values, plus the small
// runtime environment they share.
//
// Declarative platforms (ChatGPT, Claude) are manifests interpreted by the
// manifest engine. Platforms whose transport cannot be described by a
// manifest (GitHub, Gemini, Grok, DeepSeek) implement driven.Adapter
// directly.
package connectors
