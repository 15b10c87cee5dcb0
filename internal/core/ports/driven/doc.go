// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and connectors or adapters
// implement them.
//
//   - Adapter: Extracts a ContentBundle from one platform
//   - SessionProvider: Supplies stored page snapshots for headless fetches
//   - ConfigStore: Application configuration
//   - Clipboard: Optional clipboard output
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
