package hub

import (
	"errors"
	"sync"
)

// ErrAlreadyRegistered is returned by Add when the peer is already a member.
var ErrAlreadyRegistered = errors.New("hub: connection already registered")

// Peer is one registered connection as seen by the Registry.
//
// Send must not block and must not call back into the Registry; the
// Registry invokes it while holding its lock. Close is called exactly once,
// by whichever Registry operation actually removes the peer.
type Peer interface {
	ID() string
	Send(message []byte) error
	Close()
}

// Registry holds the live set of connections. Every mutation and every
// broadcast pass runs under a single mutex, so no broadcast observes a
// half-added or half-removed member.
type Registry struct {
	mu    sync.Mutex
	peers map[Peer]struct{}
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{peers: make(map[Peer]struct{})}
}

// Add inserts p into the set.
func (r *Registry) Add(p Peer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.peers[p]; exists {
		return ErrAlreadyRegistered
	}
	r.peers[p] = struct{}{}
	return nil
}

// Remove deletes p from the set and closes it. Removing a peer that is not
// a member is a no-op; the return value reports whether p was removed by
// this call.
func (r *Registry) Remove(p Peer) bool {
	r.mu.Lock()
	_, exists := r.peers[p]
	if exists {
		delete(r.peers, p)
	}
	r.mu.Unlock()

	if exists {
		p.Close()
	}
	return exists
}

// Broadcast hands message to every current member. A member whose Send
// fails is treated as disconnected: it is removed and closed within the
// same pass, and the failure is not reported to the caller beyond the
// dropped count.
func (r *Registry) Broadcast(message []byte) (delivered, dropped int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for p := range r.peers {
		if err := p.Send(message); err != nil {
			delete(r.peers, p)
			p.Close()
			dropped++
			continue
		}
		delivered++
	}
	return delivered, dropped
}

// Size reports the current membership count. Under concurrent
// modification it is only an approximation and is meant for status text.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.peers)
}

// Contains reports whether p is currently a member.
func (r *Registry) Contains(p Peer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.peers[p]
	return ok
}

// Drain removes and closes every member, returning the peers it removed.
func (r *Registry) Drain() []Peer {
	r.mu.Lock()
	peers := make([]Peer, 0, len(r.peers))
	for p := range r.peers {
		peers = append(peers, p)
	}
	clear(r.peers)
	r.mu.Unlock()

	for _, p := range peers {
		p.Close()
	}
	return peers
}
