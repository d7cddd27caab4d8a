// Package urls provides centralized constants for every Moonraker endpoint
// path and documentation link used throughout the application.
//
// Keeping the paths in one place lets the HTTP client, the WebSocket
// transport and the URL derivation rules agree on a single spelling.
//
// Usage:
//
//	import "github.com/valgace/acectl/internal/urls"
//
//	statusURL := apiBase + urls.StatusPath
package urls
