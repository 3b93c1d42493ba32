package permission

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrFrozen is returned when registering after Freeze.
	ErrFrozen = errors.New("permission: registry frozen")
	// ErrUnknown is returned for names that were never registered.
	ErrUnknown = errors.New("permission: not registered")
	// ErrDuplicate is returned when a name or role is registered twice.
	ErrDuplicate = errors.New("permission: already registered")
	// ErrLimit is returned when no bit is left.
	ErrLimit = errors.New("permission: limit exceeded")
)

// Registry maps capability names to bit positions within a [Mask64].
type Registry struct {
	rootReserved bool

	mu        sync.RWMutex
	nameToBit map[string]int
	bitToName map[int]string
	frozen    bool
}

// NewRegistry returns an empty registry. With rootReserved, bit 63 is kept for
// a super-user capability and at most 63 names can be registered.
func NewRegistry(rootReserved bool) *Registry {
	return &Registry{
		rootReserved: rootReserved,
		nameToBit:    make(map[string]int),
		bitToName:    make(map[int]string),
	}
}

// Register assigns the next free bit to name.
func (r *Registry) Register(name string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return -1, ErrFrozen
	}
	if name == "" {
		return -1, errors.New("permission: name cannot be empty")
	}
	if _, exists := r.nameToBit[name]; exists {
		return -1, fmt.Errorf("%w: %s", ErrDuplicate, name)
	}

	next := len(r.nameToBit)
	limit := 64
	if r.rootReserved {
		limit = rootBit
	}
	if next >= limit {
		return -1, ErrLimit
	}

	r.nameToBit[name] = next
	r.bitToName[next] = name
	return next, nil
}

// Bit returns the bit for name.
func (r *Registry) Bit(name string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bit, ok := r.nameToBit[name]
	return bit, ok
}

// Name returns the capability at bit.
func (r *Registry) Name(bit int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.bitToName[bit]
	return name, ok
}

// Names lists the capabilities set in m, in bit order.
func (r *Registry) Names(m Mask64) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, m.Count())
	for bit := 0; bit < len(r.bitToName); bit++ {
		if m.Has(bit, false) {
			out = append(out, r.bitToName[bit])
		}
	}
	return out
}

// Freeze stops further registrations.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Count returns the number of registered capabilities.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nameToBit)
}

// RootReserved reports whether bit 63 acts as a grant-all bit.
func (r *Registry) RootReserved() bool {
	return r.rootReserved
}
