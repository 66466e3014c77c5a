// Package api provides the HTTP surface of the race server.
//
// Endpoints:
//   - GET /gemini  - fetch a fresh typing passage, independent of room state
//   - GET /ws      - upgrade to the realtime websocket protocol
//   - GET /healthz - liveness probe
//
// All responses carry permissive CORS headers; race clients are served from
// arbitrary origins.
package api
