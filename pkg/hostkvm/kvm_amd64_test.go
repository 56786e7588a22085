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

//go:build linux && amd64
// +build linux,amd64

package hostkvm

import (
	"testing"

	"gvisor.dev/kvmfam/pkg/abi/kvm"
)

func TestSupportedCPUID(t *testing.T) {
	s := openOrSkip(t)
	cpuid, err := s.SupportedCPUID()
	if err != nil {
		t.Fatalf("SupportedCPUID failed: %v", err)
	}
	entries, err := cpuid.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) == 0 {
		t.Fatalf("no CPUID entries reported")
	}
	if _, ok := kvm.Find(entries, 0, 0); !ok {
		t.Errorf("leaf 0 missing from %d entries", len(entries))
	}
	if cpuid.Len() > cpuid.Cap() {
		t.Errorf("Len() = %d exceeds Cap() = %d", cpuid.Len(), cpuid.Cap())
	}
}

func TestMSRIndexList(t *testing.T) {
	s := openOrSkip(t)
	list, err := s.MSRIndexList()
	if err != nil {
		t.Fatalf("MSRIndexList failed: %v", err)
	}
	if list.Len() != list.Cap() {
		t.Errorf("Len() = %d, Cap() = %d, want equal", list.Len(), list.Cap())
	}
}

func TestVCPUState(t *testing.T) {
	s := openOrSkip(t)
	vm, err := s.CreateVM()
	if err != nil {
		t.Fatalf("CreateVM failed: %v", err)
	}
	defer vm.Close()
	c, err := vm.CreateVCPU(0)
	if err != nil {
		t.Fatalf("CreateVCPU failed: %v", err)
	}
	defer c.Close()

	cpuid, err := s.SupportedCPUID()
	if err != nil {
		t.Fatalf("SupportedCPUID failed: %v", err)
	}
	if err := c.SetCPUID2(cpuid); err != nil {
		t.Fatalf("SetCPUID2 failed: %v", err)
	}
	got, err := c.GetCPUID2()
	if err != nil {
		t.Fatalf("GetCPUID2 failed: %v", err)
	}
	if got.Len() != cpuid.Len() {
		t.Errorf("GetCPUID2 returned %d entries, want %d", got.Len(), cpuid.Len())
	}

	regs, err := c.GetRegs()
	if err != nil {
		t.Fatalf("GetRegs failed: %v", err)
	}
	regs.RIP = 0x1000
	regs.RAX = 42
	regs.RFLAGS = 2
	if err := c.SetRegs(&regs); err != nil {
		t.Fatalf("SetRegs failed: %v", err)
	}
	after, err := c.GetRegs()
	if err != nil {
		t.Fatalf("GetRegs failed: %v", err)
	}
	if after != regs {
		t.Errorf("GetRegs() = %+v, want %+v", after, regs)
	}

	if _, err := c.GetSRegs(); err != nil {
		t.Errorf("GetSRegs failed: %v", err)
	}
	if _, err := c.GetFPU(); err != nil {
		t.Errorf("GetFPU failed: %v", err)
	}
	if _, err := c.GetMPState(); err != nil {
		t.Errorf("GetMPState failed: %v", err)
	}
}

func TestGetMSRs(t *testing.T) {
	s := openOrSkip(t)
	list, err := s.MSRIndexList()
	if err != nil {
		t.Fatalf("MSRIndexList failed: %v", err)
	}
	indices, err := list.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	indices = indices[:min(len(indices), 8)]

	vm, err := s.CreateVM()
	if err != nil {
		t.Fatalf("CreateVM failed: %v", err)
	}
	defer vm.Close()
	c, err := vm.CreateVCPU(0)
	if err != nil {
		t.Fatalf("CreateVCPU failed: %v", err)
	}
	defer c.Close()

	msrs, err := kvm.MSRsFor(indices)
	if err != nil {
		t.Fatalf("MSRsFor failed: %v", err)
	}
	if err := c.GetMSRs(msrs); err != nil {
		t.Fatalf("GetMSRs failed: %v", err)
	}
	if msrs.Len() > len(indices) {
		t.Errorf("read %d MSRs, asked for %d", msrs.Len(), len(indices))
	}
}

func TestGSIRouting(t *testing.T) {
	s := openOrSkip(t)
	if n, err := s.CheckExtension(kvm.KVM_CAP_IRQ_ROUTING); err != nil || n == 0 {
		t.Skipf("KVM_CAP_IRQ_ROUTING unsupported: %d, %v", n, err)
	}
	vm, err := s.CreateVM()
	if err != nil {
		t.Fatalf("CreateVM failed: %v", err)
	}
	defer vm.Close()
	if err := vm.CreateIRQChip(); err != nil {
		t.Fatalf("CreateIRQChip failed: %v", err)
	}
	routes, err := kvm.IRQRoutingFromEntries([]kvm.IRQRoutingEntry{
		kvm.IRQChipRoute(4, 2, 4),
		kvm.IRQChipRoute(8, 2, 8),
	})
	if err != nil {
		t.Fatalf("IRQRoutingFromEntries failed: %v", err)
	}
	if err := vm.SetGSIRouting(routes); err != nil {
		t.Errorf("SetGSIRouting failed: %v", err)
	}
}
