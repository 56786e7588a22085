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
	"fmt"
	"math"
	"reflect"
	"unsafe"
)

// maxAlign is the largest alignment a header or entry may require. The
// backing block is allocated in 8-byte words.
const maxAlign = 8

// maxBlockSize bounds the byte size of a single block.
const maxBlockSize = math.MaxInt

// Layout declares how a flexible array member structure is laid out: a
// header of type H, immediately followed by a variable number of entries of
// type E. The count of entries lives in an unsigned integer field of H at
// CountOffset.
//
// A Layout is pure metadata. It is declared once per structure kind, e.g.
//
//	var CPUIDLayout = fam.MustLayout(fam.Layout[CPUID2, CPUIDEntry2]{
//		Name:        "kvm_cpuid2",
//		CountOffset: unsafe.Offsetof(CPUID2{}.Nent),
//		CountSize:   unsafe.Sizeof(CPUID2{}.Nent),
//		MaxLen:      80,
//	})
type Layout[H, E comparable] struct {
	// Name is the name of the structure, used in errors and logs.
	Name string

	// CountOffset is the byte offset of the count field within H.
	CountOffset uintptr

	// CountSize is the width of the count field in bytes.
	CountSize uintptr

	// MaxLen is the maximum number of entries the ABI accepts. Zero means
	// no maximum is declared, in which case the width of the count field is
	// the only bound.
	MaxLen int

	// validated is set by MustLayout so that constructors can skip
	// revalidation.
	validated bool
}

// MustLayout validates l and returns a pointer to a copy of it. It panics if
// l is inconsistent; it is intended for package-level declarations.
func MustLayout[H, E comparable](l Layout[H, E]) *Layout[H, E] {
	if err := l.Validate(); err != nil {
		panic(fmt.Sprintf("invalid layout %q: %v", l.Name, err))
	}
	l.validated = true
	return &l
}

// HeaderSize returns the size of H in bytes.
func (l *Layout[H, E]) HeaderSize() uintptr {
	var h H
	return unsafe.Sizeof(h)
}

// EntrySize returns the size of E in bytes.
func (l *Layout[H, E]) EntrySize() uintptr {
	var e E
	return unsafe.Sizeof(e)
}

// Size returns the size in bytes of a block holding n entries, or false if
// that size is not representable.
func (l *Layout[H, E]) Size(n int) (uintptr, bool) {
	if n < 0 {
		return 0, false
	}
	return l.blockSize(uint64(n))
}

func (l *Layout[H, E]) blockSize(n uint64) (uintptr, bool) {
	hs, es := uint64(l.HeaderSize()), uint64(l.EntrySize())
	if n > (maxBlockSize-hs)/es {
		return 0, false
	}
	return uintptr(hs + n*es), true
}

// Limit returns the largest entry count a wrapper of this layout may hold.
func (l *Layout[H, E]) Limit() int {
	if l.MaxLen > 0 {
		return l.MaxLen
	}
	if m := l.countMax(); m < math.MaxInt {
		return int(m)
	}
	return math.MaxInt
}

// countMax returns the largest value the count field can hold.
func (l *Layout[H, E]) countMax() uint64 {
	if l.CountSize >= 8 {
		return math.MaxUint64
	}
	return 1<<(8*l.CountSize) - 1
}

// check validates l unless it came from MustLayout.
func (l *Layout[H, E]) check() error {
	if l.validated {
		return nil
	}
	if err := l.Validate(); err != nil {
		return fmt.Errorf("invalid layout %q: %w", l.Name, err)
	}
	return nil
}

// checkLen returns ErrCapacityExceeded if n entries are more than the layout
// allows.
func (l *Layout[H, E]) checkLen(op string, n uint64) error {
	if limit := uint64(l.Limit()); n > limit {
		return &Error{Op: op, Layout: l.Name, Requested: n, Limit: limit, Err: ErrCapacityExceeded}
	}
	return nil
}

// Validate checks that the layout is internally consistent.
func (l *Layout[H, E]) Validate() error {
	var (
		h H
		e E
	)
	ht, et := reflect.TypeOf(h), reflect.TypeOf(e)
	hs, es := unsafe.Sizeof(h), unsafe.Sizeof(e)
	switch {
	case l.Name == "":
		return fmt.Errorf("layout has no name")
	case hs == 0:
		return fmt.Errorf("header %v has zero size", ht)
	case es == 0:
		return fmt.Errorf("entry %v has zero size", et)
	case unsafe.Alignof(h) > maxAlign:
		return fmt.Errorf("header %v requires %d-byte alignment, at most %d is supported", ht, unsafe.Alignof(h), maxAlign)
	case unsafe.Alignof(e) > maxAlign:
		return fmt.Errorf("entry %v requires %d-byte alignment, at most %d is supported", et, unsafe.Alignof(e), maxAlign)
	case hs%unsafe.Alignof(e) != 0:
		return fmt.Errorf("header size %d is not a multiple of entry alignment %d", hs, unsafe.Alignof(e))
	case l.MaxLen < 0:
		return fmt.Errorf("negative maximum length %d", l.MaxLen)
	}
	if err := checkPlain(ht); err != nil {
		return fmt.Errorf("header: %w", err)
	}
	if err := checkPlain(et); err != nil {
		return fmt.Errorf("entry: %w", err)
	}

	switch l.CountSize {
	case 1, 2, 4, 8:
	default:
		return fmt.Errorf("unsupported count field width %d", l.CountSize)
	}
	if l.CountOffset+l.CountSize > hs {
		return fmt.Errorf("count field [%d, %d) lies outside the %d-byte header", l.CountOffset, l.CountOffset+l.CountSize, hs)
	}
	if l.CountOffset%l.CountSize != 0 {
		return fmt.Errorf("count field at offset %d is not %d-byte aligned", l.CountOffset, l.CountSize)
	}
	ft := fieldAt(ht, l.CountOffset)
	if ft == nil || ft.Size() != l.CountSize {
		return fmt.Errorf("no %d-byte field starts at header offset %d", l.CountSize, l.CountOffset)
	}
	switch ft.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return fmt.Errorf("count field has kind %v, want an unsigned integer", ft.Kind())
	}
	if l.MaxLen > 0 && uint64(l.MaxLen) > l.countMax() {
		return fmt.Errorf("maximum length %d does not fit a %d-byte count field", l.MaxLen, l.CountSize)
	}
	return nil
}

// checkPlain returns an error if t is not composed solely of fixed-width
// integers, floats, bools, arrays and structs of the same. Such types carry
// no pointers, so they may live in memory the garbage collector does not
// scan, and have the same size on every architecture.
func checkPlain(t reflect.Type) error {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return nil
	case reflect.Array:
		return checkPlain(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if err := checkPlain(t.Field(i).Type); err != nil {
				return fmt.Errorf("field %s: %w", t.Field(i).Name, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("type %v has kind %v, which has no fixed ABI layout", t, t.Kind())
	}
}

// fieldAt returns the scalar type starting exactly at byte offset off within
// t, or nil if no named scalar field starts there.
func fieldAt(t reflect.Type, off uintptr) reflect.Type {
	switch t.Kind() {
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if off >= f.Offset && off < f.Offset+f.Type.Size() {
				if f.Name == "_" {
					return nil
				}
				return fieldAt(f.Type, off-f.Offset)
			}
		}
		return nil
	case reflect.Array:
		es := t.Elem().Size()
		if es == 0 || off >= t.Size() {
			return nil
		}
		return fieldAt(t.Elem(), off%es)
	default:
		if off != 0 {
			return nil
		}
		return t
	}
}

// Description summarizes a layout independently of its type parameters.
type Description struct {
	Name        string  `json:"name" yaml:"name"`
	HeaderSize  uintptr `json:"header_size" yaml:"header_size"`
	EntrySize   uintptr `json:"entry_size" yaml:"entry_size"`
	CountOffset uintptr `json:"count_offset" yaml:"count_offset"`
	CountSize   uintptr `json:"count_size" yaml:"count_size"`
	MaxLen      int     `json:"max_len,omitempty" yaml:"max_len,omitempty"`
}

// Describer is implemented by every *Layout.
type Describer interface {
	Describe() Description
}

// Describe implements Describer.Describe.
func (l *Layout[H, E]) Describe() Description {
	return Description{
		Name:        l.Name,
		HeaderSize:  l.HeaderSize(),
		EntrySize:   l.EntrySize(),
		CountOffset: l.CountOffset,
		CountSize:   l.CountSize,
		MaxLen:      l.MaxLen,
	}
}
