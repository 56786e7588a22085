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
	"errors"
	"fmt"
)

// Errors returned by wrapper operations. Apart from layout validation
// failures, every error produced by this package matches one of these with
// errors.Is.
var (
	// ErrCapacityExceeded is returned when a requested or resulting entry
	// count exceeds the maximum declared by the layout, or the largest value
	// the layout's count field can hold.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrInconsistentState is returned when the count stored in the header
	// exceeds the number of entries physically allocated, for example after
	// the kernel wrote back an unexpected value.
	ErrInconsistentState = errors.New("inconsistent state")

	// ErrAllocationFailure is returned when the backing block cannot be
	// allocated.
	ErrAllocationFailure = errors.New("allocation failure")

	// ErrOutOfRange is returned by single-entry accessors for an index at or
	// beyond the current count.
	ErrOutOfRange = errors.New("index out of range")
)

// Error describes a failed wrapper operation.
type Error struct {
	// Op is the operation that failed, e.g. "push".
	Op string

	// Layout is the name of the structure being operated on.
	Layout string

	// Requested is the entry count or index the operation asked for.
	Requested uint64

	// Limit is the bound that Requested was checked against.
	Limit uint64

	// Err is one of the sentinel errors above.
	Err error
}

// Error implements error.Error.
func (e *Error) Error() string {
	switch e.Err {
	case ErrCapacityExceeded:
		return fmt.Sprintf("%s %s: %v: %d entries requested, maximum is %d", e.Op, e.Layout, e.Err, e.Requested, e.Limit)
	case ErrInconsistentState:
		return fmt.Sprintf("%s %s: %v: header reports %d entries, %d allocated", e.Op, e.Layout, e.Err, e.Requested, e.Limit)
	case ErrOutOfRange:
		return fmt.Sprintf("%s %s: %v: index %d, length %d", e.Op, e.Layout, e.Err, e.Requested, e.Limit)
	default:
		return fmt.Sprintf("%s %s: %v", e.Op, e.Layout, e.Err)
	}
}

// Unwrap returns the sentinel error.
func (e *Error) Unwrap() error {
	return e.Err
}
