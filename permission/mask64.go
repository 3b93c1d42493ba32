package permission

import "math/bits"

// Mask64 is a set of up to 64 capability bits.
type Mask64 uint64

// rootBit is the highest bit. When root is reserved it grants every capability.
const rootBit = 63

// Has reports whether bit is set, or whether the root bit is set when
// rootReserved is true.
func (m Mask64) Has(bit int, rootReserved bool) bool {
	if bit < 0 || bit >= 64 {
		return false
	}
	if rootReserved && m&(1<<rootBit) != 0 {
		return true
	}
	return m&(1<<bit) != 0
}

// Set adds bit. Out-of-range bits are ignored.
func (m *Mask64) Set(bit int) {
	if bit < 0 || bit >= 64 {
		return
	}
	*m |= 1 << bit
}

// Clear removes bit. Out-of-range bits are ignored.
func (m *Mask64) Clear(bit int) {
	if bit < 0 || bit >= 64 {
		return
	}
	*m &^= 1 << bit
}

// Count returns how many bits are set.
func (m Mask64) Count() int {
	return bits.OnesCount64(uint64(m))
}

// Raw returns the underlying integer.
func (m Mask64) Raw() uint64 {
	return uint64(m)
}
