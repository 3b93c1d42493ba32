package permission

import (
	"errors"
	"fmt"
	"sync"
)

// RoleManager holds one capability mask per role name. Roles are registered
// during setup and then frozen.
type RoleManager struct {
	registry *Registry

	mu     sync.RWMutex
	roles  map[string]Mask64
	frozen bool
}

// NewRoleManager returns a manager resolving names through registry.
func NewRoleManager(registry *Registry) *RoleManager {
	return &RoleManager{
		registry: registry,
		roles:    make(map[string]Mask64),
	}
}

// RegisterRole composes the named capabilities into a mask for role. With root
// true the role also receives the root bit (the registry must reserve it).
func (rm *RoleManager) RegisterRole(role string, capabilities []string, root bool) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.frozen {
		return ErrFrozen
	}
	if role == "" {
		return errors.New("permission: role name empty")
	}
	if _, exists := rm.roles[role]; exists {
		return fmt.Errorf("%w: role %s", ErrDuplicate, role)
	}

	var mask Mask64
	for _, name := range capabilities {
		bit, ok := rm.registry.Bit(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknown, name)
		}
		mask.Set(bit)
	}
	if root {
		if !rm.registry.RootReserved() {
			return errors.New("permission: root bit not reserved")
		}
		mask.Set(rootBit)
	}

	rm.roles[role] = mask
	return nil
}

// Mask returns the mask registered for role.
func (rm *RoleManager) Mask(role string) (Mask64, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	mask, ok := rm.roles[role]
	return mask, ok
}

// Can reports whether role holds capability. Unknown roles and capabilities
// are denied.
func (rm *RoleManager) Can(role, capability string) bool {
	mask, ok := rm.Mask(role)
	if !ok {
		return false
	}
	bit, ok := rm.registry.Bit(capability)
	if !ok {
		return false
	}
	return mask.Has(bit, rm.registry.RootReserved())
}

// Capabilities lists what role may do.
func (rm *RoleManager) Capabilities(role string) []string {
	mask, ok := rm.Mask(role)
	if !ok {
		return nil
	}
	if rm.registry.RootReserved() && mask.Has(rootBit, false) {
		mask = Mask64(^uint64(0))
	}
	return rm.registry.Names(mask)
}

// Freeze stops further role registrations.
func (rm *RoleManager) Freeze() {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.frozen = true
}

// Count returns the number of roles.
func (rm *RoleManager) Count() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.roles)
}
