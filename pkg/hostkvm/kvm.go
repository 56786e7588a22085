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

// Package hostkvm issues KVM ioctls against the host's /dev/kvm, passing
// flexible array member structures as fam wrappers.
//
// Calls interrupted by a signal are retried. Calls that fail because the
// supplied array is too small are retried with a larger one, up to the
// maximum the kernel accepts for that structure.
package hostkvm

import (
	"fmt"

	"golang.org/x/sys/unix"
	"gvisor.dev/kvmfam/pkg/abi/kvm"
	"gvisor.dev/kvmfam/pkg/log"
)

// DefaultDevice is the path of the KVM device.
const DefaultDevice = "/dev/kvm"

// DefaultRetries is the number of times an ioctl interrupted by a signal is
// retried.
const DefaultRetries = 10

// System is an open KVM device.
type System struct {
	fd int

	// retries is passed on to each VM and vCPU created from this system.
	retries uint64
}

// Open opens the KVM device at path and checks its API version.
func Open(path string) (*System, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	s := &System{fd: fd, retries: DefaultRetries}
	v, err := s.APIVersion()
	if err != nil {
		s.Close()
		return nil, err
	}
	if v != kvm.APIVersion {
		s.Close()
		return nil, fmt.Errorf("%s has KVM API version %d, want %d", path, v, kvm.APIVersion)
	}
	log.Debugf("Opened %s as fd %d", path, fd)
	return s, nil
}

// SetRetries sets the number of times an interrupted ioctl is retried.
func (s *System) SetRetries(n int) {
	s.retries = uint64(max(n, 0))
}

// FD returns the device file descriptor.
func (s *System) FD() int {
	return s.fd
}

// Close closes the device.
func (s *System) Close() error {
	return unix.Close(s.fd)
}

// APIVersion returns the result of KVM_GET_API_VERSION.
func (s *System) APIVersion() (int, error) {
	v, err := ioctl(s.fd, kvm.KVM_GET_API_VERSION, 0, s.retries)
	if err != nil {
		return 0, fmt.Errorf("KVM_GET_API_VERSION: %w", err)
	}
	return int(v), nil
}

// CheckExtension returns the result of KVM_CHECK_EXTENSION for capability
// c. Zero means unsupported; some capabilities return a limit instead of 1.
func (s *System) CheckExtension(c int) (int, error) {
	v, err := ioctl(s.fd, kvm.KVM_CHECK_EXTENSION, c, s.retries)
	if err != nil {
		return 0, fmt.Errorf("KVM_CHECK_EXTENSION(%d): %w", c, err)
	}
	return int(v), nil
}

// VCPUMmapSize returns the size of the shared kvm_run region of a vCPU.
func (s *System) VCPUMmapSize() (int, error) {
	v, err := ioctl(s.fd, kvm.KVM_GET_VCPU_MMAP_SIZE, 0, s.retries)
	if err != nil {
		return 0, fmt.Errorf("KVM_GET_VCPU_MMAP_SIZE: %w", err)
	}
	return int(v), nil
}

// CreateVM creates a new virtual machine of the default type.
func (s *System) CreateVM() (*VM, error) {
	fd, err := ioctl(s.fd, kvm.KVM_CREATE_VM, 0, s.retries)
	if err != nil {
		return nil, fmt.Errorf("KVM_CREATE_VM: %w", err)
	}
	return &VM{fd: int(fd), retries: s.retries}, nil
}
