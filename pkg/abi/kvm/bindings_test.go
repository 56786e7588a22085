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
	"encoding/json"
	"errors"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
	"gvisor.dev/kvmfam/pkg/fam"
)

func TestLayouts(t *testing.T) {
	want := []fam.Description{
		{Name: "kvm_cpuid2", HeaderSize: 8, EntrySize: 40, CountOffset: 0, CountSize: 4, MaxLen: 80},
		{Name: "kvm_cpuid", HeaderSize: 8, EntrySize: 24, CountOffset: 0, CountSize: 4, MaxLen: 80},
		{Name: "kvm_msrs", HeaderSize: 8, EntrySize: 16, CountOffset: 0, CountSize: 4, MaxLen: 256},
		{Name: "kvm_msr_list", HeaderSize: 4, EntrySize: 4, CountOffset: 0, CountSize: 4, MaxLen: 256},
		{Name: "kvm_irq_routing", HeaderSize: 8, EntrySize: 48, CountOffset: 0, CountSize: 4, MaxLen: 4096},
		{Name: "kvm_reg_list", HeaderSize: 8, EntrySize: 8, CountOffset: 0, CountSize: 8, MaxLen: 500},
		{Name: "kvm_pmu_event_filter", HeaderSize: 32, EntrySize: 8, CountOffset: 4, CountSize: 4, MaxLen: 300},
		{Name: "kvm_signal_mask", HeaderSize: 4, EntrySize: 1, CountOffset: 0, CountSize: 4},
	}
	if diff := cmp.Diff(want, Layouts()); diff != "" {
		t.Errorf("Layouts() mismatch (-want +got):\n%s", diff)
	}
}

func TestMaximums(t *testing.T) {
	if _, err := NewCPUID(MaxCPUIDEntries); err != nil {
		t.Errorf("NewCPUID(%d) failed: %v", MaxCPUIDEntries, err)
	}
	if _, err := NewCPUID(MaxCPUIDEntries + 1); !errors.Is(err, fam.ErrCapacityExceeded) {
		t.Errorf("NewCPUID(%d) = %v, want %v", MaxCPUIDEntries+1, err, fam.ErrCapacityExceeded)
	}
	if _, err := MSRListFromEntries(make([]uint32, MaxMSREntries+1)); !errors.Is(err, fam.ErrCapacityExceeded) {
		t.Errorf("MSRListFromEntries(%d) = %v, want %v", MaxMSREntries+1, err, fam.ErrCapacityExceeded)
	}
	if _, err := NewIRQRouting(MaxIRQRoutes + 1); !errors.Is(err, fam.ErrCapacityExceeded) {
		t.Errorf("NewIRQRouting(%d) = %v, want %v", MaxIRQRoutes+1, err, fam.ErrCapacityExceeded)
	}
	if got, want := SignalMaskLayout.Limit(), 1<<32-1; got != want {
		t.Errorf("SignalMaskLayout.Limit() = %d, want %d", got, want)
	}
}

func TestCPUIDHeader(t *testing.T) {
	w, err := NewCPUID(3)
	if err != nil {
		t.Fatalf("NewCPUID failed: %v", err)
	}
	if got := w.Header().Nent; got != 3 {
		t.Errorf("Nent = %d, want 3", got)
	}
	if got, want := w.Size(), uintptr(8+3*40); got != want {
		t.Errorf("Size() = %d, want %d", got, want)
	}
	// The kernel reports fewer entries than were allocated.
	w.Header().Nent = 1
	entries, err := w.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("len(Entries()) = %d, want 1", len(entries))
	}
}

func TestFind(t *testing.T) {
	entries := []CPUIDEntry2{
		{Function: 0, EAX: 0xd},
		{Function: 7, Index: 0, Flags: CPUIDFlagSignificantIndex, EBX: 1},
		{Function: 7, Index: 1, Flags: CPUIDFlagSignificantIndex, EBX: 2},
	}
	for _, tc := range []struct {
		function, index uint32
		wantOK          bool
		wantEBX         uint32
	}{
		{0, 5, true, 0},
		{7, 0, true, 1},
		{7, 1, true, 2},
		{7, 2, false, 0},
		{0x80000000, 0, false, 0},
	} {
		e, ok := Find(entries, tc.function, tc.index)
		if ok != tc.wantOK || e.EBX != tc.wantEBX {
			t.Errorf("Find(%#x, %d) = %+v, %t, want EBX %d, %t", tc.function, tc.index, e, ok, tc.wantEBX, tc.wantOK)
		}
	}
}

func TestMSRsFor(t *testing.T) {
	w, err := MSRsFor([]uint32{0x10, 0x1b, 0xc0000080})
	if err != nil {
		t.Fatalf("MSRsFor failed: %v", err)
	}
	entries, err := w.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	want := []MSREntry{{Index: 0x10}, {Index: 0x1b}, {Index: 0xc0000080}}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	if got := w.Header().NMSRs; got != 3 {
		t.Errorf("NMSRs = %d, want 3", got)
	}
}

func TestSignalMaskFor(t *testing.T) {
	w, err := SignalMaskFor(0x0102030405060708)
	if err != nil {
		t.Fatalf("SignalMaskFor failed: %v", err)
	}
	set, err := w.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if diff := cmp.Diff([]uint8{8, 7, 6, 5, 4, 3, 2, 1}, set); diff != "" {
		t.Errorf("sigset mismatch (-want +got):\n%s", diff)
	}
	if got := w.Header().Len; got != 8 {
		t.Errorf("Len = %d, want 8", got)
	}
}

func TestPMUEventFilter(t *testing.T) {
	w, err := PMUEventFilterFromEntries(PMUEventDeny, []uint64{0x3c, 0xc0})
	if err != nil {
		t.Fatalf("PMUEventFilterFromEntries failed: %v", err)
	}
	h := w.Header()
	if h.Action != PMUEventDeny || h.NEvents != 2 {
		t.Errorf("header = %+v, want action %d and 2 events", *h, PMUEventDeny)
	}
}

func TestIRQRoutes(t *testing.T) {
	chip := IRQChipRoute(4, 1, 7)
	if chip.Type != IRQRoutingIRQChip || chip.GSI != 4 {
		t.Errorf("IRQChipRoute = %+v", chip)
	}
	if got, want := *chip.IRQChip(), (IRQRoutingIRQChipRoute{IRQChip: 1, Pin: 7}); got != want {
		t.Errorf("IRQChip() = %+v, want %+v", got, want)
	}

	msi := MSIRoute(24, 0x1_fee0_0000, 0x4021)
	if got, want := *msi.MSI(), (IRQRoutingMSIRoute{AddressLo: 0xfee00000, AddressHi: 1, Data: 0x4021}); got != want {
		t.Errorf("MSI() = %+v, want %+v", got, want)
	}

	w, err := IRQRoutingFromEntries([]IRQRoutingEntry{chip, msi})
	if err != nil {
		t.Fatalf("IRQRoutingFromEntries failed: %v", err)
	}
	e, err := w.Entry(1)
	if err != nil {
		t.Fatalf("Entry(1) failed: %v", err)
	}
	if e.MSI().Data != 0x4021 {
		t.Errorf("routed MSI data = %#x, want 0x4021", e.MSI().Data)
	}
}

// roundTrip encodes v as JSON and YAML and checks that both decode to v.
func roundTrip[T comparable](t *testing.T, name string, v T) {
	t.Helper()
	j, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("%s: json.Marshal failed: %v", name, err)
	}
	var fromJSON T
	if err := json.Unmarshal(j, &fromJSON); err != nil {
		t.Fatalf("%s: json.Unmarshal failed: %v", name, err)
	}
	if fromJSON != v {
		t.Errorf("%s: JSON round trip = %+v, want %+v", name, fromJSON, v)
	}

	y, err := yaml.Marshal(v)
	if err != nil {
		t.Fatalf("%s: yaml.Marshal failed: %v", name, err)
	}
	var fromYAML T
	if err := yaml.Unmarshal(y, &fromYAML); err != nil {
		t.Fatalf("%s: yaml.Unmarshal failed: %v", name, err)
	}
	if fromYAML != v {
		t.Errorf("%s: YAML round trip = %+v, want %+v", name, fromYAML, v)
	}
}

func TestFixedStructEncoding(t *testing.T) {
	roundTrip(t, "kvm_regs", Regs{})
	roundTrip(t, "kvm_regs", Regs{RAX: 1, RIP: 0xffffffff81000000, RFLAGS: 2})
	roundTrip(t, "kvm_segment", Segment{Base: 0x1000, Limit: 0xffff, Selector: 8, Type: 11, Present: 1, L: 1})
	roundTrip(t, "kvm_dtable", DTable{Base: 0x2000, Limit: 0xfff})

	sregs := SRegs{CR0: 0x80050033, EFER: 0xd01}
	sregs.CS.Selector = 0x10
	sregs.InterruptBitmap[3] = 1 << 63
	roundTrip(t, "kvm_sregs", SRegs{})
	roundTrip(t, "kvm_sregs", sregs)

	fpu := FPU{FCW: 0x37f, MXCSR: 0x1f80}
	fpu.XMM[15][15] = 0xff
	roundTrip(t, "kvm_fpu", fpu)

	var lapic LAPICState
	lapic.Regs[0x20] = 1
	roundTrip(t, "kvm_lapic_state", lapic)

	var xsave XSave
	xsave.Region[1023] = 0xdeadbeef
	roundTrip(t, "kvm_xsave", xsave)

	xcrs := XCRs{NrXCRs: 1}
	xcrs.XCRs[0] = XCR{XCR: 0, Value: 7}
	roundTrip(t, "kvm_xcrs", xcrs)

	roundTrip(t, "kvm_debugregs", DebugRegs{DB: [4]uint64{1, 2, 3, 4}, DR6: 0xffff0ff0, DR7: 0x400})
	roundTrip(t, "kvm_mp_state", MPState{MPState: MPStateHalted})
	roundTrip(t, "kvm_clock_data", ClockData{Clock: 123456789, Flags: 2})

	var pit PITState2
	pit.Channels[0] = PITChannelState{Count: 0x10000, Mode: 3, Gate: 1, CountLoadTime: -1}
	roundTrip(t, "kvm_pit_state2", pit)

	events := VCPUEvents{SIPIVector: 0x9a, ExceptionHasPayload: 1, ExceptionPayload: 0xfff}
	events.Exception.Nr = 14
	events.SMI.SMM = 1
	roundTrip(t, "kvm_vcpu_events", events)

	chip := IRQChipState{ChipID: 2}
	chip.Chip[511] = 0x80
	roundTrip(t, "kvm_irqchip", chip)

	roundTrip(t, "kvm_msr_entry", MSREntry{Index: 0x10, Data: 42})
	roundTrip(t, "kvm_cpuid_entry2", CPUIDEntry2{Function: 1, EAX: 0x806ec})
}

func emptyWrapper[H, E comparable](t *testing.T, l *fam.Layout[H, E]) *fam.Wrapper[H, E] {
	t.Helper()
	w, err := fam.Empty(l)
	if err != nil {
		t.Fatalf("fam.Empty(%s) failed: %v", l.Name, err)
	}
	return w
}

func TestWrapperEncoding(t *testing.T) {
	orig, err := CPUIDFromEntries([]CPUIDEntry2{
		{Function: 0, EAX: 0xd, EBX: 0x756e6547},
		{Function: 7, Flags: CPUIDFlagSignificantIndex, EBX: 0x29c6fbf},
	})
	if err != nil {
		t.Fatalf("CPUIDFromEntries failed: %v", err)
	}

	j, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	fromJSON := emptyWrapper(t, CPUIDLayout)
	if err := json.Unmarshal(j, fromJSON); err != nil {
		t.Fatalf("json.Unmarshal failed: %v", err)
	}
	if !fromJSON.Equal(orig) {
		t.Errorf("JSON round trip = %s, want %s", j, orig)
	}

	y, err := yaml.Marshal(orig)
	if err != nil {
		t.Fatalf("yaml.Marshal failed: %v", err)
	}
	fromYAML := emptyWrapper(t, CPUIDLayout)
	if err := yaml.Unmarshal(y, fromYAML); err != nil {
		t.Fatalf("yaml.Unmarshal failed: %v", err)
	}
	if !fromYAML.Equal(orig) {
		t.Errorf("YAML round trip of\n%s\ndiffers from original", y)
	}

	// Too many MSR indices for the kernel.
	tooMany, err := json.Marshal(struct {
		Header  MSRList  `json:"header"`
		Entries []uint32 `json:"entries"`
	}{MSRList{NMSRs: MaxMSREntries + 1}, make([]uint32, MaxMSREntries+1)})
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	if err := json.Unmarshal(tooMany, emptyWrapper(t, MSRListLayout)); !errors.Is(err, fam.ErrCapacityExceeded) {
		t.Errorf("decoding %d indices = %v, want %v", MaxMSREntries+1, err, fam.ErrCapacityExceeded)
	}
}

func TestCurrentVersion(t *testing.T) {
	v := CurrentVersion()
	if v.KernelVersion != "v4.20.0" {
		t.Errorf("KernelVersion = %q, want v4.20.0", v.KernelVersion)
	}
	if want := kernelArch(runtime.GOARCH); v.Arch != want {
		t.Errorf("Arch = %q, want %q", v.Arch, want)
	}
	if v.ModuleVersion == "" {
		t.Errorf("ModuleVersion is empty")
	}
	roundTrip(t, "version", v)
}

func TestKernelArch(t *testing.T) {
	for goarch, want := range map[string]string{
		"amd64":   "x86_64",
		"386":     "x86",
		"arm64":   "aarch64",
		"riscv64": "riscv64",
	} {
		if got := kernelArch(goarch); got != want {
			t.Errorf("kernelArch(%q) = %q, want %q", goarch, got, want)
		}
	}
}
