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

// MSREntry is a single model specific register.
//
// This mirrors kvm_msr_entry.
type MSREntry struct {
	Index uint32
	_     uint32
	Data  uint64
}

// MSRs is the header of kvm_msrs. It is followed by NMSRs MSREntry.
type MSRs struct {
	NMSRs uint32
	_     uint32
}

// MSRList is the header of kvm_msr_list. It is followed by NMSRs MSR
// indices.
type MSRList struct {
	NMSRs uint32
}

// MSRsFor returns a kvm_msrs request for the given indices, with all data
// fields zeroed. It is the usual argument to KVM_GET_MSRS.
func MSRsFor(indices []uint32) (*MSRsWrapper, error) {
	entries := make([]MSREntry, len(indices))
	for i, idx := range indices {
		entries[i].Index = idx
	}
	return MSRsFromEntries(entries)
}
