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

// Package fam provides owned, contiguous representations of C structures
// with a flexible array member: a fixed-size header immediately followed by
// a runtime-sized array of entries, with the number of entries stored in a
// header field.
//
// Such structures are passed to the kernel as a single pointer, so the header
// and entries must share one allocation, and the count the kernel reads must
// always agree with the memory behind it. A Wrapper keeps both properties: it
// owns one block sized for the header plus its capacity, and it never caches
// the count, reading it from the header on every access instead.
//
// A Wrapper is not safe for concurrent use.
package fam

import (
	"fmt"
	"math"
	"slices"

	"gvisor.dev/kvmfam/pkg/log"
)

// Wrapper owns a block holding one H followed by Cap() entries of type E.
//
// The number of valid entries is the value of the count field in the header.
// It can be changed directly through Header(), e.g. by the kernel writing to
// the block; every entry accessor rechecks it against the physical capacity
// and fails with ErrInconsistentState if it is too large.
//
// The zero value is not usable. Create wrappers with New, WithCapacity,
// FromEntries or Empty.
type Wrapper[H, E comparable] struct {
	layout *Layout[H, E]

	// mem backs the block. It is allocated in 8-byte words so that the
	// header is suitably aligned for the kernel. It always holds at least
	// one header.
	mem []uint64

	// capacity is the number of entries that fit in mem. It is tracked
	// separately from the count in the header.
	capacity int
}

// New returns a zeroed wrapper with room for n entries and its count field
// set to n.
func New[H, E comparable](l *Layout[H, E], n int) (*Wrapper[H, E], error) {
	w, err := alloc(l, "new", n)
	if err != nil {
		return nil, err
	}
	w.setCount(uint64(n))
	return w, nil
}

// WithCapacity returns a zeroed wrapper with room for n entries and its
// count field set to zero.
func WithCapacity[H, E comparable](l *Layout[H, E], n int) (*Wrapper[H, E], error) {
	return alloc(l, "new", n)
}

// FromEntries returns a wrapper holding a copy of entries, with exactly
// len(entries) capacity and the count field set accordingly.
func FromEntries[H, E comparable](l *Layout[H, E], entries []E) (*Wrapper[H, E], error) {
	w, err := alloc(l, "from entries", len(entries))
	if err != nil {
		return nil, err
	}
	copy(w.physical(), entries)
	w.setCount(uint64(len(entries)))
	return w, nil
}

// Empty returns a wrapper with no entries and no capacity. It is typically
// used as a target for decoding.
func Empty[H, E comparable](l *Layout[H, E]) (*Wrapper[H, E], error) {
	if err := l.check(); err != nil {
		return nil, err
	}
	return &Wrapper[H, E]{
		layout: l,
		mem:    make([]uint64, words(l.HeaderSize())),
	}, nil
}

// alloc allocates a zeroed block for n entries.
func alloc[H, E comparable](l *Layout[H, E], op string, n int) (*Wrapper[H, E], error) {
	if err := l.check(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%s %s: negative length %d: %w", op, l.Name, n, ErrOutOfRange)
	}
	if err := l.checkLen(op, uint64(n)); err != nil {
		return nil, err
	}
	mem, err := allocBlock(l, n)
	if err != nil {
		return nil, &Error{Op: op, Layout: l.Name, Requested: uint64(n), Err: err}
	}
	return &Wrapper[H, E]{layout: l, mem: mem, capacity: n}, nil
}

// allocBlock allocates zeroed words for a block of n entries.
func allocBlock[H, E comparable](l *Layout[H, E], n int) ([]uint64, error) {
	size, ok := l.blockSize(uint64(n))
	if !ok {
		return nil, ErrAllocationFailure
	}
	return allocWords(words(size))
}

// words returns the number of words needed to hold size bytes.
func words(size uintptr) int {
	return int((size + maxAlign - 1) / maxAlign)
}

// Layout returns the layout w was created with.
func (w *Wrapper[H, E]) Layout() *Layout[H, E] {
	return w.layout
}

// Len returns the entry count stored in the header. It may exceed Cap() if
// the header was modified externally; see Entries.
func (w *Wrapper[H, E]) Len() int {
	if c := w.count(); c < math.MaxInt {
		return int(c)
	}
	return math.MaxInt
}

// Cap returns the number of entries the block has room for.
func (w *Wrapper[H, E]) Cap() int {
	return w.capacity
}

// IsEmpty returns true if the header reports no entries.
func (w *Wrapper[H, E]) IsEmpty() bool {
	return w.count() == 0
}

// MaxLen returns the largest number of entries w may hold.
func (w *Wrapper[H, E]) MaxLen() int {
	return w.layout.Limit()
}

// Size returns the size of the block in bytes: the header plus Cap()
// entries.
func (w *Wrapper[H, E]) Size() uintptr {
	size, _ := w.layout.blockSize(uint64(w.capacity))
	return size
}

// checkedLen returns the header count, or ErrInconsistentState if it
// exceeds the physical capacity.
func (w *Wrapper[H, E]) checkedLen(op string) (int, error) {
	c := w.count()
	if c > uint64(w.capacity) {
		return 0, &Error{Op: op, Layout: w.layout.Name, Requested: c, Limit: uint64(w.capacity), Err: ErrInconsistentState}
	}
	return int(c), nil
}

// Entries returns the valid entries, in place. The bounds are taken from the
// header on each call, so writes to the returned slice are writes to the
// block, and a count written back by the kernel is visible on the next call.
//
// The slice is invalidated by any operation that changes the capacity.
func (w *Wrapper[H, E]) Entries() ([]E, error) {
	n, err := w.checkedLen("entries")
	if err != nil {
		return nil, err
	}
	return w.physical()[:n:n], nil
}

// Entry returns entry i.
func (w *Wrapper[H, E]) Entry(i int) (E, error) {
	var e E
	entries, err := w.Entries()
	if err != nil {
		return e, err
	}
	if i < 0 || i >= len(entries) {
		return e, w.rangeError("entry", i, len(entries))
	}
	return entries[i], nil
}

// SetEntry replaces entry i.
func (w *Wrapper[H, E]) SetEntry(i int, e E) error {
	entries, err := w.Entries()
	if err != nil {
		return err
	}
	if i < 0 || i >= len(entries) {
		return w.rangeError("set entry", i, len(entries))
	}
	entries[i] = e
	return nil
}

func (w *Wrapper[H, E]) rangeError(op string, i, n int) error {
	if i < 0 {
		return fmt.Errorf("%s %s: negative index %d: %w", op, w.layout.Name, i, ErrOutOfRange)
	}
	return &Error{Op: op, Layout: w.layout.Name, Requested: uint64(i), Limit: uint64(n), Err: ErrOutOfRange}
}

// Push appends e, growing the block if it is full.
func (w *Wrapper[H, E]) Push(e E) error {
	n, err := w.checkedLen("push")
	if err != nil {
		return err
	}
	if err := w.grow("push", n+1); err != nil {
		return err
	}
	w.physical()[n] = e
	w.setCount(uint64(n + 1))
	return nil
}

// Reserve ensures the block has room for at least additional more entries
// beyond the current count. The count is unchanged.
func (w *Wrapper[H, E]) Reserve(additional int) error {
	n, err := w.checkedLen("reserve")
	if err != nil {
		return err
	}
	if additional < 0 {
		return fmt.Errorf("reserve %s: negative length %d: %w", w.layout.Name, additional, ErrOutOfRange)
	}
	if additional > math.MaxInt-n {
		return &Error{Op: "reserve", Layout: w.layout.Name, Requested: uint64(n) + uint64(additional), Limit: uint64(w.layout.Limit()), Err: ErrCapacityExceeded}
	}
	return w.grow("reserve", n+additional)
}

// SetLen sets the count to n. Entries added by growing are zeroed, and
// entries dropped by shrinking are cleared.
func (w *Wrapper[H, E]) SetLen(n int) error {
	cur, err := w.checkedLen("set length")
	if err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("set length %s: negative length %d: %w", w.layout.Name, n, ErrOutOfRange)
	}
	if err := w.grow("set length", n); err != nil {
		return err
	}
	phys := w.physical()
	if n > cur {
		clear(phys[cur:n])
	} else {
		clear(phys[n:cur])
	}
	w.setCount(uint64(n))
	return nil
}

// Truncate shortens the entries to n. It has no effect if n is greater than
// or equal to the current count.
func (w *Wrapper[H, E]) Truncate(n int) error {
	cur, err := w.checkedLen("truncate")
	if err != nil {
		return err
	}
	if n >= cur {
		return nil
	}
	return w.SetLen(n)
}

// Retain keeps only the entries for which keep returns true, preserving
// their order. The capacity is unchanged.
func (w *Wrapper[H, E]) Retain(keep func(E) bool) error {
	entries, err := w.Entries()
	if err != nil {
		return err
	}
	kept := 0
	for _, e := range entries {
		if keep(e) {
			entries[kept] = e
			kept++
		}
	}
	clear(entries[kept:])
	w.setCount(uint64(kept))
	return nil
}

// grow reallocates the block so that it holds at least n entries. The header
// and existing entries are copied; the new space is zeroed. On failure w is
// unchanged.
func (w *Wrapper[H, E]) grow(op string, n int) error {
	if n <= w.capacity {
		return nil
	}
	if err := w.layout.checkLen(op, uint64(n)); err != nil {
		return err
	}
	mem, err := allocBlock(w.layout, n)
	if err != nil {
		return &Error{Op: op, Layout: w.layout.Name, Requested: uint64(n), Err: err}
	}
	copy(mem, w.mem)
	if log.IsLogging(log.Debug) {
		log.Debugf("%s %s: reallocated from %d to %d entries", op, w.layout.Name, w.capacity, n)
	}
	w.mem, w.capacity = mem, n
	return nil
}

// Clone returns a deep copy of w in an independent block of the same
// capacity.
func (w *Wrapper[H, E]) Clone() (*Wrapper[H, E], error) {
	mem, err := allocWords(len(w.mem))
	if err != nil {
		return nil, &Error{Op: "clone", Layout: w.layout.Name, Requested: uint64(w.capacity), Err: err}
	}
	copy(mem, w.mem)
	return &Wrapper[H, E]{layout: w.layout, mem: mem, capacity: w.capacity}, nil
}

// Equal returns true if the headers and the valid entries of w and o are
// equal. Blank (padding) header fields are not compared. A wrapper in an
// inconsistent state is equal to nothing, as is nil.
func (w *Wrapper[H, E]) Equal(o *Wrapper[H, E]) bool {
	if o == nil {
		return false
	}
	if *w.Header() != *o.Header() {
		return false
	}
	a, err := w.Entries()
	if err != nil {
		return false
	}
	b, err := o.Entries()
	if err != nil {
		return false
	}
	return slices.Equal(a, b)
}

// String implements fmt.Stringer.String.
func (w *Wrapper[H, E]) String() string {
	return fmt.Sprintf("%s{len: %d, cap: %d}", w.layout.Name, w.Len(), w.capacity)
}
