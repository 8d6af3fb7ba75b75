package window

import "unsafe"

// wordPointer returns a pointer to the 4-byte-aligned descriptor word at
// addr within mem, for use with sync/atomic. Descriptor slots are laid out
// on 4-byte boundaries by construction (offTXDescr0/offRXDescr0 plus
// slot*descrSize), so this is always aligned.
func wordPointer(mem *[Size]byte, addr uint16) unsafe.Pointer {
	return unsafe.Pointer(&mem[addr])
}
