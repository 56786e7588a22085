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

import (
	"unsafe"

	"gvisor.dev/kvmfam/pkg/fam"
)

// Layouts of the structures with a flexible array member.
var (
	// CPUIDLayout binds kvm_cpuid2 to its kvm_cpuid_entry2 array.
	CPUIDLayout = fam.MustLayout(fam.Layout[CPUID2, CPUIDEntry2]{
		Name:        "kvm_cpuid2",
		CountOffset: unsafe.Offsetof(CPUID2{}.Nent),
		CountSize:   unsafe.Sizeof(CPUID2{}.Nent),
		MaxLen:      MaxCPUIDEntries,
	})

	// LegacyCPUIDLayout binds kvm_cpuid to its kvm_cpuid_entry array.
	LegacyCPUIDLayout = fam.MustLayout(fam.Layout[CPUID, CPUIDEntry]{
		Name:        "kvm_cpuid",
		CountOffset: unsafe.Offsetof(CPUID{}.Nent),
		CountSize:   unsafe.Sizeof(CPUID{}.Nent),
		MaxLen:      MaxCPUIDEntries,
	})

	// MSRsLayout binds kvm_msrs to its kvm_msr_entry array.
	MSRsLayout = fam.MustLayout(fam.Layout[MSRs, MSREntry]{
		Name:        "kvm_msrs",
		CountOffset: unsafe.Offsetof(MSRs{}.NMSRs),
		CountSize:   unsafe.Sizeof(MSRs{}.NMSRs),
		MaxLen:      MaxMSREntries,
	})

	// MSRListLayout binds kvm_msr_list to its array of indices.
	MSRListLayout = fam.MustLayout(fam.Layout[MSRList, uint32]{
		Name:        "kvm_msr_list",
		CountOffset: unsafe.Offsetof(MSRList{}.NMSRs),
		CountSize:   unsafe.Sizeof(MSRList{}.NMSRs),
		MaxLen:      MaxMSREntries,
	})

	// IRQRoutingLayout binds kvm_irq_routing to its route array.
	IRQRoutingLayout = fam.MustLayout(fam.Layout[IRQRouting, IRQRoutingEntry]{
		Name:        "kvm_irq_routing",
		CountOffset: unsafe.Offsetof(IRQRouting{}.Nr),
		CountSize:   unsafe.Sizeof(IRQRouting{}.Nr),
		MaxLen:      MaxIRQRoutes,
	})

	// RegListLayout binds kvm_reg_list to its array of register ids.
	RegListLayout = fam.MustLayout(fam.Layout[RegList, uint64]{
		Name:        "kvm_reg_list",
		CountOffset: unsafe.Offsetof(RegList{}.N),
		CountSize:   unsafe.Sizeof(RegList{}.N),
		MaxLen:      MaxRegListEntries,
	})

	// PMUEventFilterLayout binds kvm_pmu_event_filter to its event array.
	PMUEventFilterLayout = fam.MustLayout(fam.Layout[PMUEventFilter, uint64]{
		Name:        "kvm_pmu_event_filter",
		CountOffset: unsafe.Offsetof(PMUEventFilter{}.NEvents),
		CountSize:   unsafe.Sizeof(PMUEventFilter{}.NEvents),
		MaxLen:      MaxPMUEvents,
	})

	// SignalMaskLayout binds kvm_signal_mask to its sigset bytes. The kernel
	// declares no maximum.
	SignalMaskLayout = fam.MustLayout(fam.Layout[SignalMask, uint8]{
		Name:        "kvm_signal_mask",
		CountOffset: unsafe.Offsetof(SignalMask{}.Len),
		CountSize:   unsafe.Sizeof(SignalMask{}.Len),
	})
)

// Wrapper types, one per layout.
type (
	CPUIDWrapper          = fam.Wrapper[CPUID2, CPUIDEntry2]
	LegacyCPUIDWrapper    = fam.Wrapper[CPUID, CPUIDEntry]
	MSRsWrapper           = fam.Wrapper[MSRs, MSREntry]
	MSRListWrapper        = fam.Wrapper[MSRList, uint32]
	IRQRoutingWrapper     = fam.Wrapper[IRQRouting, IRQRoutingEntry]
	RegListWrapper        = fam.Wrapper[RegList, uint64]
	PMUEventFilterWrapper = fam.Wrapper[PMUEventFilter, uint64]
	SignalMaskWrapper     = fam.Wrapper[SignalMask, uint8]
)

// NewCPUID returns a kvm_cpuid2 with n zeroed entries.
func NewCPUID(n int) (*CPUIDWrapper, error) {
	return fam.New(CPUIDLayout, n)
}

// CPUIDFromEntries returns a kvm_cpuid2 holding entries.
func CPUIDFromEntries(entries []CPUIDEntry2) (*CPUIDWrapper, error) {
	return fam.FromEntries(CPUIDLayout, entries)
}

// NewLegacyCPUID returns a kvm_cpuid with n zeroed entries.
func NewLegacyCPUID(n int) (*LegacyCPUIDWrapper, error) {
	return fam.New(LegacyCPUIDLayout, n)
}

// LegacyCPUIDFromEntries returns a kvm_cpuid holding entries.
func LegacyCPUIDFromEntries(entries []CPUIDEntry) (*LegacyCPUIDWrapper, error) {
	return fam.FromEntries(LegacyCPUIDLayout, entries)
}

// NewMSRs returns a kvm_msrs with n zeroed entries.
func NewMSRs(n int) (*MSRsWrapper, error) {
	return fam.New(MSRsLayout, n)
}

// MSRsFromEntries returns a kvm_msrs holding entries.
func MSRsFromEntries(entries []MSREntry) (*MSRsWrapper, error) {
	return fam.FromEntries(MSRsLayout, entries)
}

// NewMSRList returns a kvm_msr_list with room for n indices.
func NewMSRList(n int) (*MSRListWrapper, error) {
	return fam.New(MSRListLayout, n)
}

// MSRListFromEntries returns a kvm_msr_list holding indices.
func MSRListFromEntries(indices []uint32) (*MSRListWrapper, error) {
	return fam.FromEntries(MSRListLayout, indices)
}

// NewIRQRouting returns a kvm_irq_routing with n zeroed routes.
func NewIRQRouting(n int) (*IRQRoutingWrapper, error) {
	return fam.New(IRQRoutingLayout, n)
}

// IRQRoutingFromEntries returns a kvm_irq_routing holding routes.
func IRQRoutingFromEntries(routes []IRQRoutingEntry) (*IRQRoutingWrapper, error) {
	return fam.FromEntries(IRQRoutingLayout, routes)
}

// NewRegList returns a kvm_reg_list with room for n register ids.
func NewRegList(n int) (*RegListWrapper, error) {
	return fam.New(RegListLayout, n)
}

// RegListFromEntries returns a kvm_reg_list holding ids.
func RegListFromEntries(ids []uint64) (*RegListWrapper, error) {
	return fam.FromEntries(RegListLayout, ids)
}

// NewPMUEventFilter returns a kvm_pmu_event_filter with n zeroed events.
func NewPMUEventFilter(n int) (*PMUEventFilterWrapper, error) {
	return fam.New(PMUEventFilterLayout, n)
}

// PMUEventFilterFromEntries returns a kvm_pmu_event_filter for events.
func PMUEventFilterFromEntries(action uint32, events []uint64) (*PMUEventFilterWrapper, error) {
	w, err := fam.FromEntries(PMUEventFilterLayout, events)
	if err != nil {
		return nil, err
	}
	w.Header().Action = action
	return w, nil
}

// NewSignalMask returns a kvm_signal_mask with n zeroed bytes.
func NewSignalMask(n int) (*SignalMaskWrapper, error) {
	return fam.New(SignalMaskLayout, n)
}

// SignalMaskFromEntries returns a kvm_signal_mask holding set.
func SignalMaskFromEntries(set []uint8) (*SignalMaskWrapper, error) {
	return fam.FromEntries(SignalMaskLayout, set)
}

// layouts lists every layout in this package, in declaration order.
var layouts = []fam.Describer{
	CPUIDLayout,
	LegacyCPUIDLayout,
	MSRsLayout,
	MSRListLayout,
	IRQRoutingLayout,
	RegListLayout,
	PMUEventFilterLayout,
	SignalMaskLayout,
}

// Layouts describes every layout in this package, in declaration order.
func Layouts() []fam.Description {
	ds := make([]fam.Description, 0, len(layouts))
	for _, l := range layouts {
		ds = append(ds, l.Describe())
	}
	return ds
}
