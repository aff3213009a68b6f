// Package server wires the webhooker HTTP service: configuration, logging,
// routing, the REST handlers for identities and hooks, the /ws broadcast
// endpoint and process lifecycle.
package server
