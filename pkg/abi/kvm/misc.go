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

// RegList is the header of kvm_reg_list. It is followed by N register ids.
type RegList struct {
	N uint64
}

// PMU event filter actions.
const (
	PMUEventAllow = 0
	PMUEventDeny  = 1
)

// PMUEventFilter is the header of kvm_pmu_event_filter. It is followed by
// NEvents event selectors.
type PMUEventFilter struct {
	Action             uint32
	NEvents            uint32
	FixedCounterBitmap uint32
	Flags              uint32
	_                  [4]uint32
}

// SignalMask is the header of kvm_signal_mask. It is followed by Len bytes
// of signal set.
type SignalMask struct {
	Len uint32
}

// SignalMaskFor returns a kvm_signal_mask holding the 8-byte kernel sigset
// mask.
func SignalMaskFor(mask uint64) (*SignalMaskWrapper, error) {
	var set [8]uint8
	for i := range set {
		set[i] = uint8(mask >> (8 * i))
	}
	return SignalMaskFromEntries(set[:])
}
