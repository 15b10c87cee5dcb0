// Package services implements the driving port interfaces.
// The registry resolves page URLs to adapters, the export service runs
// extraction and rendering, and the settings service reads configuration.
package services
