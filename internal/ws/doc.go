// Package ws implements the WebSocket endpoint for live calculation.
//
// A form that recalculates on every change connects to /ws/calc and sends
// one CalculateRequest JSON frame per edit. Each frame is answered with:
//
//	{"event": "result", "request_id": "...", "data": CalculateResponse}
//	{"event": "error",  "request_id": "...", "error": "..."}
//
// On connect, and whenever the calculator constants are reloaded from the
// config file, the hub sends {"event": "params", "data": {...}} so clients
// can show which ramp default and rod ratio are in effect.
//
// Connection lifecycle:
//   - ServeHTTP upgrades the request; each client gets a buffered send
//     channel drained by its own writePump goroutine.
//   - writePump sends ping frames every pingPeriod; readPump resets the read
//     deadline on each pong.
//   - A client whose send buffer is full is disconnected.
//   - Run(ctx) closes all connections when ctx is cancelled.
package ws
