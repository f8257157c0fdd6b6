package state

import (
	"errors"
	"fmt"

	"github.com/bassosimone/mips32sim/pkg/endian"
)

// ErrSegfault is returned when an access falls outside the allocated
// memory image, the simulator's stand-in for a SIGSEGV.
var ErrSegfault = errors.New("state: address out of range")

func (s *State) bounds(addr uint32, n int) error {
	if uint64(addr)+uint64(n) > uint64(len(s.Mem)) {
		return fmt.Errorf("%w: addr %#08x len %d mem size %d", ErrSegfault, addr, n, len(s.Mem))
	}
	return nil
}

// LoadWord reads a 32-bit word at addr, byte-swapping from the target's
// order into host order. addr need not be aligned; callers that require
// alignment (ordinary lw/sw) check it themselves so they can report the
// access as unaligned rather than segfaulting.
func (s *State) LoadWord(addr uint32) (uint32, error) {
	if err := s.bounds(addr, 4); err != nil {
		return 0, err
	}
	raw := uint32(s.Mem[addr]) | uint32(s.Mem[addr+1])<<8 | uint32(s.Mem[addr+2])<<16 | uint32(s.Mem[addr+3])<<24
	return endian.Swap32(s.Order, raw), nil
}

// StoreWord writes v at addr in the target's byte order.
func (s *State) StoreWord(addr, v uint32) error {
	if err := s.bounds(addr, 4); err != nil {
		return err
	}
	raw := endian.Swap32(s.Order, v)
	s.Mem[addr] = byte(raw)
	s.Mem[addr+1] = byte(raw >> 8)
	s.Mem[addr+2] = byte(raw >> 16)
	s.Mem[addr+3] = byte(raw >> 24)
	return nil
}

// LoadHalf/StoreHalf are LoadWord/StoreWord's 16-bit counterparts, used
// by lh/lhu/sh.
func (s *State) LoadHalf(addr uint32) (uint16, error) {
	if err := s.bounds(addr, 2); err != nil {
		return 0, err
	}
	raw := uint16(s.Mem[addr]) | uint16(s.Mem[addr+1])<<8
	return endian.Swap16(s.Order, raw), nil
}

func (s *State) StoreHalf(addr uint32, v uint16) error {
	if err := s.bounds(addr, 2); err != nil {
		return err
	}
	raw := endian.Swap16(s.Order, v)
	s.Mem[addr] = byte(raw)
	s.Mem[addr+1] = byte(raw >> 8)
	return nil
}

// LoadByte/StoreByte need no byte-swapping; a single byte has no order.
func (s *State) LoadByte(addr uint32) (uint8, error) {
	if err := s.bounds(addr, 1); err != nil {
		return 0, err
	}
	return s.Mem[addr], nil
}

func (s *State) StoreByte(addr uint32, v uint8) error {
	if err := s.bounds(addr, 1); err != nil {
		return err
	}
	s.Mem[addr] = v
	return nil
}

// RawWordAt and StoreRawWordAt read/write a word at a 4-byte-aligned
// address ignoring target endianness entirely — used by the unaligned
// lwl/lwr/swl/swr helpers in pkg/interp, which do their own byte-order
// reasoning against the raw in-memory representation.
func (s *State) RawWordAt(alignedAddr uint32) (uint32, error) {
	if err := s.bounds(alignedAddr, 4); err != nil {
		return 0, err
	}
	return uint32(s.Mem[alignedAddr]) | uint32(s.Mem[alignedAddr+1])<<8 |
		uint32(s.Mem[alignedAddr+2])<<16 | uint32(s.Mem[alignedAddr+3])<<24, nil
}

func (s *State) StoreRawWordAt(alignedAddr, v uint32) error {
	if err := s.bounds(alignedAddr, 4); err != nil {
		return err
	}
	s.Mem[alignedAddr] = byte(v)
	s.Mem[alignedAddr+1] = byte(v >> 8)
	s.Mem[alignedAddr+2] = byte(v >> 16)
	s.Mem[alignedAddr+3] = byte(v >> 24)
	return nil
}
