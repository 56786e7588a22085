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

//go:build linux
// +build linux

package hostkvm

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
	"gvisor.dev/kvmfam/pkg/abi/kvm"
	"gvisor.dev/kvmfam/pkg/fam"
	"gvisor.dev/kvmfam/pkg/log"
)

// VM is a virtual machine file descriptor.
type VM struct {
	fd      int
	retries uint64
}

// FD returns the VM file descriptor.
func (vm *VM) FD() int {
	return vm.fd
}

// Close closes the VM. vCPUs hold their own reference to it.
func (vm *VM) Close() error {
	return unix.Close(vm.fd)
}

// CreateIRQChip creates the in-kernel interrupt controller model.
func (vm *VM) CreateIRQChip() error {
	if _, err := ioctl(vm.fd, kvm.KVM_CREATE_IRQCHIP, 0, vm.retries); err != nil {
		return fmt.Errorf("KVM_CREATE_IRQCHIP: %w", err)
	}
	return nil
}

// SetGSIRouting replaces the GSI routing table with routes.
func (vm *VM) SetGSIRouting(routes *kvm.IRQRoutingWrapper) error {
	if err := checkConsistent(routes); err != nil {
		return err
	}
	if _, err := ioctlFAM(vm.fd, kvm.KVM_SET_GSI_ROUTING, routes, vm.retries); err != nil {
		return fmt.Errorf("KVM_SET_GSI_ROUTING with %d routes: %w", routes.Len(), err)
	}
	return nil
}

// SetPMUEventFilter installs a PMU event filter for the VM.
func (vm *VM) SetPMUEventFilter(filter *kvm.PMUEventFilterWrapper) error {
	if err := checkConsistent(filter); err != nil {
		return err
	}
	if _, err := ioctlFAM(vm.fd, kvm.KVM_SET_PMU_EVENT_FILTER, filter, vm.retries); err != nil {
		return fmt.Errorf("KVM_SET_PMU_EVENT_FILTER with %d events: %w", filter.Len(), err)
	}
	return nil
}

// CreateVCPU creates vCPU id.
func (vm *VM) CreateVCPU(id int) (*VCPU, error) {
	fd, err := ioctl(vm.fd, kvm.KVM_CREATE_VCPU, id, vm.retries)
	if err != nil {
		return nil, fmt.Errorf("KVM_CREATE_VCPU(%d): %w", id, err)
	}
	log.Debugf("Created vCPU %d as fd %d", id, fd)
	return &VCPU{fd: int(fd), id: id, retries: vm.retries}, nil
}

// VCPU is a vCPU file descriptor.
type VCPU struct {
	fd      int
	id      int
	retries uint64
}

// ID returns the vCPU id.
func (c *VCPU) ID() int {
	return c.id
}

// FD returns the vCPU file descriptor.
func (c *VCPU) FD() int {
	return c.fd
}

// Close closes the vCPU.
func (c *VCPU) Close() error {
	return unix.Close(c.fd)
}

// SetSignalMask sets the signals blocked while the vCPU runs.
func (c *VCPU) SetSignalMask(mask *kvm.SignalMaskWrapper) error {
	if err := checkConsistent(mask); err != nil {
		return err
	}
	if _, err := ioctlFAM(c.fd, kvm.KVM_SET_SIGNAL_MASK, mask, c.retries); err != nil {
		return fmt.Errorf("KVM_SET_SIGNAL_MASK: %w", err)
	}
	return nil
}

// checkConsistent refuses to hand the kernel a block whose count does not
// match its allocation.
func checkConsistent[H, E comparable](w *fam.Wrapper[H, E]) error {
	_, err := w.Entries()
	return err
}

// fetch fills a wrapper through an ioctl that fails with E2BIG when the
// array is too small but does not report the required size. Starting with
// initial entries, the array is doubled until the call succeeds or the
// layout maximum is reached. On success the count is the one the kernel
// wrote back.
func fetch[H, E comparable](fd int, req uintptr, name string, l *fam.Layout[H, E], initial int, retries uint64) (*fam.Wrapper[H, E], error) {
	w, err := fam.New(l, min(initial, l.Limit()))
	if err != nil {
		return nil, err
	}
	for {
		_, err := ioctlFAM(fd, req, w, retries)
		if err == nil {
			break
		}
		if !errors.Is(err, unix.E2BIG) || w.Cap() >= l.Limit() {
			return nil, fmt.Errorf("%s with %d entries: %w", name, w.Cap(), err)
		}
		n := grownSize(w.Cap(), l.Limit())
		log.Debugf("%s: %d entries are too few, retrying with %d", name, w.Cap(), n)
		if err := w.SetLen(n); err != nil {
			return nil, err
		}
	}
	if _, err := w.Entries(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return w, nil
}

// grownSize returns the array size to retry with after n entries were too
// few: double n, at least one entry, at most limit.
func grownSize(n, limit int) int {
	return min(max(1, 2*n), limit)
}

// probe fills a wrapper through an ioctl that fails with E2BIG when the
// array is too small and writes the required count to the header. It first
// asks with an empty array, then with exactly the reported size.
func probe[H, E comparable](fd int, req uintptr, name string, l *fam.Layout[H, E], retries uint64) (*fam.Wrapper[H, E], error) {
	w, err := fam.New(l, 0)
	if err != nil {
		return nil, err
	}
	for attempt := 0; ; attempt++ {
		_, err := ioctlFAM(fd, req, w, retries)
		if err == nil {
			break
		}
		// The required count may grow between calls; allow one more round.
		if !errors.Is(err, unix.E2BIG) || attempt > 1 {
			return nil, fmt.Errorf("%s with %d entries: %w", name, w.Cap(), err)
		}
		n := w.Len()
		log.Debugf("%s: kernel requires %d entries", name, n)
		if w, err = fam.New(l, n); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	if _, err := w.Entries(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return w, nil
}
