package urls

// Moonraker endpoint paths for the ACE extension.

// StatusPath is the HTTP endpoint returning the current ACE status payload.
const StatusPath = "/server/ace/status"

// CommandPath is the HTTP endpoint accepting {command, params} bodies.
const CommandPath = "/server/ace/command"

// WebSocketPath is appended to an HTTP base to derive the WebSocket endpoint.
const WebSocketPath = "/websocket"

// DefaultOrigin stands in for the page origin a browser client would use
// when neither an API base nor a WebSocket URL is configured.
const DefaultOrigin = "http://127.0.0.1:7125"

// Documentation URLs

// ProjectHome is the project landing page.
const ProjectHome = "https://github.com/valgace/acectl"

// MoonrakerSetup explains how to enable the ACE extension in Moonraker,
// including the [ace] section and the web API routes.
const MoonrakerSetup = "https://github.com/valgace/acectl#moonraker-setup"

// Troubleshooting lists common connection problems and their fixes.
const Troubleshooting = "https://github.com/valgace/acectl#troubleshooting"
