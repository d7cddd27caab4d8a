// Package moonraker is the wire layer for the ACE endpoints of a Moonraker
// print server.
//
// It covers three things:
//
//   - HTTP: Client.FetchStatus (GET /server/ace/status) and
//     Client.SendCommand (POST /server/ace/command)
//   - WebSocket: Dial, the ace subscription request and decoding of
//     notify_status_update frames
//   - Errors: a typed taxonomy (transport, HTTP, malformed, API,
//     validation, aggregate) with Is* helpers and ShortMessage for display
//
// Interpreting command responses into success or failure is left to the
// caller; CommandResponse exposes the pieces needed.
package moonraker
