/*
 * TS10 - Physical memory store.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package memory implements the linear, bounds-checked physical memory
// backing store (§4.2). It is word-addressed (36-bit words) for the
// PDP-10 and byte-addressed (32-bit longwords) for VAX; both share the
// same flat-array-plus-overlay design the teacher uses for its 370
// memory, generalized from a fixed 4M-word array to a size chosen at
// power-on and from storage-protect keys to a NXM/ROM overlay bitmap.
package memory

import "sync"

// NXM reports an access outside the configured memory size.
type NXM struct {
	Addr uint32
}

func (e *NXM) Error() string {
	return "non-existent memory"
}

// Store is the physical memory contract the MMU and IO bridge adapter
// consume. All addresses are in the store's native unit: bytes for VAX,
// 36-bit words for PDP-10.
type Store interface {
	Size() uint32
	Read(addr uint32) (uint64, error)
	Write(addr uint32, value uint64) error
	ReadBlock(addr uint32, length int) ([]byte, error)
	WriteBlock(addr uint32, data []byte) error
	LoadROM(base uint32, data []byte)
}

// LinearStore is a flat backing array, generalized from the teacher's
// emu/memory package: same bounds-checked Get/Put shape, same per-page
// side table repurposed here as a ROM-write-protect bitmap instead of a
// 370 storage key.
type LinearStore struct {
	mu       sync.Mutex
	words    []uint64 // native-size words (byte for VAX granularity 1, 36-bit for PDP-10)
	size     uint32   // size in native units
	pageBits uint32   // log2(bytes per ROM-protect granule)
	romMask  []bool   // one entry per granule; true => writes silently drop
}

// NewLinearStore allocates a store of `size` native units, with ROM
// overlay tracked at `granule`-unit resolution (granule must be a power
// of two).
func NewLinearStore(size uint32, granule uint32) *LinearStore {
	shift := uint32(0)
	for (uint32(1) << shift) < granule {
		shift++
	}
	granules := (size >> shift) + 1
	return &LinearStore{
		words:    make([]uint64, size),
		size:     size,
		pageBits: shift,
		romMask:  make([]bool, granules),
	}
}

func (m *LinearStore) Size() uint32 { return m.size }

func (m *LinearStore) Read(addr uint32) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if addr >= m.size {
		return 0, &NXM{Addr: addr}
	}
	return m.words[addr], nil
}

func (m *LinearStore) Write(addr uint32, value uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if addr >= m.size {
		return &NXM{Addr: addr}
	}
	if m.romMask[addr>>m.pageBits] {
		// VAX KA630 behavior: writes to ROM silently drop. The
		// machine-check indicator is a CPU concern (§4.2); this layer
		// only declines the write.
		return nil
	}
	m.words[addr] = value
	return nil
}

func (m *LinearStore) ReadBlock(addr uint32, length int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, length)
	for i := 0; i < length; i++ {
		a := addr + uint32(i)
		if a >= m.size {
			return out, &NXM{Addr: a}
		}
		out[i] = byte(m.words[a])
	}
	return out, nil
}

func (m *LinearStore) WriteBlock(addr uint32, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, b := range data {
		a := addr + uint32(i)
		if a >= m.size {
			return &NXM{Addr: a}
		}
		if m.romMask[a>>m.pageBits] {
			continue
		}
		m.words[a] = uint64(b)
	}
	return nil
}

// LoadROM overlays data at a physical base and marks its granules
// write-protected, matching §4.2's "load-ROM" contract.
func (m *LinearStore) LoadROM(base uint32, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, b := range data {
		a := base + uint32(i)
		if a >= m.size {
			break
		}
		m.words[a] = uint64(b)
		m.romMask[a>>m.pageBits] = true
	}
}

// CheckAddr reports whether addr lies within the configured size,
// mirroring the teacher's CheckAddr bounds probe used before a fast-path
// direct access.
func (m *LinearStore) CheckAddr(addr uint32) bool {
	return addr < m.size
}
