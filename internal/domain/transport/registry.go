package transport

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/andrescamacho/hauler-go/internal/domain/shared"
)

// Registry stores live transport requests keyed by ID and by Key
type Registry struct {
	byID  map[uuid.UUID]*TransportRequest
	byKey map[Key]uuid.UUID
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		byID:  make(map[uuid.UUID]*TransportRequest),
		byKey: make(map[Key]uuid.UUID),
	}
}

// Upsert returns the request for key, creating it when missing. The second
// result is true for a new request.
func (r *Registry) Upsert(key Key, issuer shared.EntityID, priority int, now time.Time) (*TransportRequest, bool, error) {
	if id, ok := r.byKey[key]; ok {
		req := r.byID[id]
		req.SetIssuer(issuer)
		req.SetPriority(priority)
		return req, false, nil
	}
	req, err := NewTransportRequest(key, issuer, priority, now)
	if err != nil {
		return nil, false, err
	}
	r.byID[req.id] = req
	r.byKey[key] = req.id
	return req, true, nil
}

// Get returns a live request
func (r *Registry) Get(id uuid.UUID) (*TransportRequest, bool) {
	req, ok := r.byID[id]
	return req, ok
}

// Find returns the request for key
func (r *Registry) Find(key Key) (*TransportRequest, bool) {
	id, ok := r.byKey[key]
	if !ok {
		return nil, false
	}
	return r.byID[id], true
}

// Remove deletes a request
func (r *Registry) Remove(id uuid.UUID) (*TransportRequest, bool) {
	req, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	delete(r.byID, id)
	delete(r.byKey, req.key)
	return req, true
}

// All lists requests ordered by creation time, then key
func (r *Registry) All() []*TransportRequest {
	out := make([]*TransportRequest, 0, len(r.byID))
	for _, req := range r.byID {
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.createdAt.Equal(b.createdAt) {
			return a.createdAt.Before(b.createdAt)
		}
		return lessKey(a.key, b.key)
	})
	return out
}

// ForAnchor lists requests anchored at anchor
func (r *Registry) ForAnchor(anchor shared.EntityID) []*TransportRequest {
	var out []*TransportRequest
	for _, req := range r.All() {
		if req.key.Anchor == anchor {
			out = append(out, req)
		}
	}
	return out
}

// Len returns the number of live requests
func (r *Registry) Len() int {
	return len(r.byID)
}

func lessKey(a, b Key) bool {
	if a.Anchor != b.Anchor {
		return a.Anchor < b.Anchor
	}
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	if a.Resource != b.Resource {
		return a.Resource < b.Resource
	}
	return a.PinnedSource < b.PinnedSource
}
