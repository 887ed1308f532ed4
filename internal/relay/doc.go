// Package relay implements the client side of the relay wire protocol: a
// websocket session that joins a room, exchanges opaque payloads with the
// remote peer, and drives the pairing state machine.
//
// The transport delivers open/frame/error/close callbacks asynchronously;
// the session converts them into an explicit event stream consumed by a
// single goroutine, so no two state transitions are ever applied
// concurrently. Outbound sends are fire-and-forget: they check transport
// readiness synchronously and report false instead of queueing.
package relay
