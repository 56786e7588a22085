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

package kvm

// CPUIDEntry2 is a single CPUID leaf.
//
// This mirrors kvm_cpuid_entry2.
type CPUIDEntry2 struct {
	Function uint32
	Index    uint32
	Flags    uint32
	EAX      uint32
	EBX      uint32
	ECX      uint32
	EDX      uint32
	_        [3]uint32
}

// Flags for CPUIDEntry2.Flags.
const (
	CPUIDFlagSignificantIndex = 1 << 0
	CPUIDFlagStatefulFunc     = 1 << 1
	CPUIDFlagStateReadNext    = 1 << 2
)

// CPUID2 is the header of kvm_cpuid2. It is followed by Nent CPUIDEntry2.
type CPUID2 struct {
	Nent uint32
	_    uint32
}

// CPUIDEntry is a single CPUID leaf in the legacy KVM_SET_CPUID format.
//
// This mirrors kvm_cpuid_entry.
type CPUIDEntry struct {
	Function uint32
	EAX      uint32
	EBX      uint32
	ECX      uint32
	EDX      uint32
	_        uint32
}

// CPUID is the header of kvm_cpuid. It is followed by Nent CPUIDEntry.
type CPUID struct {
	Nent uint32
	_    uint32
}

// Find returns the entry for the given function and index, if present.
// The index is ignored for leaves without CPUIDFlagSignificantIndex.
func Find(entries []CPUIDEntry2, function, index uint32) (CPUIDEntry2, bool) {
	for _, e := range entries {
		if e.Function != function {
			continue
		}
		if e.Flags&CPUIDFlagSignificantIndex != 0 && e.Index != index {
			continue
		}
		return e, true
	}
	return CPUIDEntry2{}, false
}
