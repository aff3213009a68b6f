// Package hub implements the connection registry and broadcast hub behind
// the /ws endpoint.
//
// Registry holds the live set of connections under a single mutex and
// offers Add, Remove, Broadcast and Size. Hub upgrades HTTP requests to
// WebSocket connections and drives each one through its lifecycle:
//
//	Connecting -> Open -> Closing -> Closed
//
// On registration the hub broadcasts "connection <id> opened; now <N>
// connections" to every member, including the new one. Every inbound text
// message is relayed as "message from <id>: <text>" to all members, the
// sender included. When the peer sends a close frame the hub removes the
// connection and broadcasts "connection <id> closed; now <N> connections";
// any other fault removes the connection without an announcement.
//
// There is no history replay, no acknowledgement and no size or rate limit
// on messages. Ping keepalive and write deadlines are opt-in via Options.
package hub
