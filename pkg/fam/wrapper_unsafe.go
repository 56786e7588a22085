// Copyright 2026 The gVisor Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fam

import (
	"runtime"
	"unsafe"
)

// allocWords allocates n zeroed words. A runtime refusal to allocate, e.g.
// for a length beyond the address space, is reported as
// ErrAllocationFailure.
func allocWords(n int) (mem []uint64, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(runtime.Error); !ok {
				panic(r)
			}
			mem, err = nil, ErrAllocationFailure
		}
	}()
	return make([]uint64, n), nil
}

// base returns the address of the block.
func (w *Wrapper[H, E]) base() unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(w.mem))
}

// Header returns the fixed-size part of the block. Writes through the
// returned pointer go directly to the block, including writes to the count
// field.
func (w *Wrapper[H, E]) Header() *H {
	return (*H)(w.base())
}

// physical returns all Cap() entries, valid or not.
func (w *Wrapper[H, E]) physical() []E {
	if w.capacity == 0 {
		return nil
	}
	return unsafe.Slice((*E)(unsafe.Add(w.base(), w.layout.HeaderSize())), w.capacity)
}

// count reads the count field.
func (w *Wrapper[H, E]) count() uint64 {
	return loadCount(w.base(), w.layout.CountOffset, w.layout.CountSize)
}

// setCount writes the count field. n must fit the field.
func (w *Wrapper[H, E]) setCount(n uint64) {
	p := unsafe.Add(w.base(), w.layout.CountOffset)
	switch w.layout.CountSize {
	case 1:
		*(*uint8)(p) = uint8(n)
	case 2:
		*(*uint16)(p) = uint16(n)
	case 4:
		*(*uint32)(p) = uint32(n)
	case 8:
		*(*uint64)(p) = n
	}
}

// loadCount reads a size-byte unsigned count at offset off from h.
func loadCount(h unsafe.Pointer, off, size uintptr) uint64 {
	p := unsafe.Add(h, off)
	switch size {
	case 1:
		return uint64(*(*uint8)(p))
	case 2:
		return uint64(*(*uint16)(p))
	case 4:
		return uint64(*(*uint32)(p))
	case 8:
		return *(*uint64)(p)
	}
	panic("unreachable")
}

// headerCount reads the count field of a header outside any block.
func (l *Layout[H, E]) headerCount(h *H) uint64 {
	return loadCount(unsafe.Pointer(h), l.CountOffset, l.CountSize)
}

// RawParts returns the address and byte length of the block, for passing to
// an ioctl. Ownership is not transferred: w must stay reachable (see
// runtime.KeepAlive) and must not be modified until the call returns, and
// the pointer must not be retained afterwards.
func (w *Wrapper[H, E]) RawParts() (unsafe.Pointer, uintptr) {
	return w.base(), w.Size()
}

// Bytes returns the block as a byte slice aliasing w's memory.
func (w *Wrapper[H, E]) Bytes() []byte {
	return unsafe.Slice((*byte)(w.base()), w.Size())
}
