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
	"fmt"

	"gvisor.dev/kvmfam/pkg/abi/kvm"
)

// initialCPUIDEntries is the first array size tried for CPUID queries. Hosts
// typically report a few dozen leaves.
const initialCPUIDEntries = 32

// SupportedCPUID returns the CPUID leaves KVM supports on this host.
func (s *System) SupportedCPUID() (*kvm.CPUIDWrapper, error) {
	return fetch(s.fd, kvm.KVM_GET_SUPPORTED_CPUID, "KVM_GET_SUPPORTED_CPUID", kvm.CPUIDLayout, initialCPUIDEntries, s.retries)
}

// EmulatedCPUID returns the CPUID leaves KVM emulates regardless of the host.
func (s *System) EmulatedCPUID() (*kvm.CPUIDWrapper, error) {
	return fetch(s.fd, kvm.KVM_GET_EMULATED_CPUID, "KVM_GET_EMULATED_CPUID", kvm.CPUIDLayout, initialCPUIDEntries, s.retries)
}

// MSRIndexList returns the MSRs KVM saves and restores for guests.
func (s *System) MSRIndexList() (*kvm.MSRListWrapper, error) {
	return probe(s.fd, kvm.KVM_GET_MSR_INDEX_LIST, "KVM_GET_MSR_INDEX_LIST", kvm.MSRListLayout, s.retries)
}

// MSRFeatureIndexList returns the MSRs describing host features that can be
// read with KVM_GET_MSRS on the system fd.
func (s *System) MSRFeatureIndexList() (*kvm.MSRListWrapper, error) {
	return probe(s.fd, kvm.KVM_GET_MSR_FEATURE_INDEX_LIST, "KVM_GET_MSR_FEATURE_INDEX_LIST", kvm.MSRListLayout, s.retries)
}

// GetFeatureMSRs reads feature MSRs on the system fd. The entries are
// truncated to the ones the kernel read.
func (s *System) GetFeatureMSRs(msrs *kvm.MSRsWrapper) error {
	return getMSRs(s.fd, msrs, s.retries)
}

// SetCPUID2 sets the CPUID leaves the guest sees.
func (c *VCPU) SetCPUID2(cpuid *kvm.CPUIDWrapper) error {
	if err := checkConsistent(cpuid); err != nil {
		return err
	}
	if _, err := ioctlFAM(c.fd, kvm.KVM_SET_CPUID2, cpuid, c.retries); err != nil {
		return fmt.Errorf("KVM_SET_CPUID2 with %d entries: %w", cpuid.Len(), err)
	}
	return nil
}

// GetCPUID2 returns the CPUID leaves previously set on the vCPU.
func (c *VCPU) GetCPUID2() (*kvm.CPUIDWrapper, error) {
	return fetch(c.fd, kvm.KVM_GET_CPUID2, "KVM_GET_CPUID2", kvm.CPUIDLayout, initialCPUIDEntries, c.retries)
}

// GetMSRs reads the MSRs named by the indices in msrs. The kernel stops at
// the first MSR it cannot read, so the entries are truncated to the ones
// read.
func (c *VCPU) GetMSRs(msrs *kvm.MSRsWrapper) error {
	return getMSRs(c.fd, msrs, c.retries)
}

func getMSRs(fd int, msrs *kvm.MSRsWrapper, retries uint64) error {
	if err := checkConsistent(msrs); err != nil {
		return err
	}
	n, err := ioctlFAM(fd, kvm.KVM_GET_MSRS, msrs, retries)
	if err != nil {
		return fmt.Errorf("KVM_GET_MSRS with %d entries: %w", msrs.Len(), err)
	}
	return msrs.Truncate(int(n))
}

// SetMSRs writes msrs and returns the number of MSRs written. Writing stops
// at the first MSR the kernel rejects.
func (c *VCPU) SetMSRs(msrs *kvm.MSRsWrapper) (int, error) {
	if err := checkConsistent(msrs); err != nil {
		return 0, err
	}
	n, err := ioctlFAM(c.fd, kvm.KVM_SET_MSRS, msrs, c.retries)
	if err != nil {
		return 0, fmt.Errorf("KVM_SET_MSRS with %d entries: %w", msrs.Len(), err)
	}
	return int(n), nil
}

// GetRegs returns the general purpose registers.
func (c *VCPU) GetRegs() (kvm.Regs, error) {
	var regs kvm.Regs
	if _, err := ioctlPtr(c.fd, kvm.KVM_GET_REGS, &regs, c.retries); err != nil {
		return kvm.Regs{}, fmt.Errorf("KVM_GET_REGS: %w", err)
	}
	return regs, nil
}

// SetRegs sets the general purpose registers.
func (c *VCPU) SetRegs(regs *kvm.Regs) error {
	if _, err := ioctlPtr(c.fd, kvm.KVM_SET_REGS, regs, c.retries); err != nil {
		return fmt.Errorf("KVM_SET_REGS: %w", err)
	}
	return nil
}

// GetSRegs returns the system registers.
func (c *VCPU) GetSRegs() (kvm.SRegs, error) {
	var sregs kvm.SRegs
	if _, err := ioctlPtr(c.fd, kvm.KVM_GET_SREGS, &sregs, c.retries); err != nil {
		return kvm.SRegs{}, fmt.Errorf("KVM_GET_SREGS: %w", err)
	}
	return sregs, nil
}

// GetFPU returns the legacy floating point state.
func (c *VCPU) GetFPU() (kvm.FPU, error) {
	var fpu kvm.FPU
	if _, err := ioctlPtr(c.fd, kvm.KVM_GET_FPU, &fpu, c.retries); err != nil {
		return kvm.FPU{}, fmt.Errorf("KVM_GET_FPU: %w", err)
	}
	return fpu, nil
}

// GetMPState returns the multiprocessing state.
func (c *VCPU) GetMPState() (kvm.MPState, error) {
	var mp kvm.MPState
	if _, err := ioctlPtr(c.fd, kvm.KVM_GET_MP_STATE, &mp, c.retries); err != nil {
		return kvm.MPState{}, fmt.Errorf("KVM_GET_MP_STATE: %w", err)
	}
	return mp, nil
}
