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

//go:build linux && !amd64
// +build linux,!amd64

package hostkvm

import (
	"errors"
	"fmt"
	"runtime"

	"gvisor.dev/kvmfam/pkg/abi/kvm"
)

func unsupported(op string) error {
	return fmt.Errorf("%s on %s: %w", op, runtime.GOARCH, errors.ErrUnsupported)
}

// SupportedCPUID is only available on x86.
func (s *System) SupportedCPUID() (*kvm.CPUIDWrapper, error) {
	return nil, unsupported("KVM_GET_SUPPORTED_CPUID")
}

// EmulatedCPUID is only available on x86.
func (s *System) EmulatedCPUID() (*kvm.CPUIDWrapper, error) {
	return nil, unsupported("KVM_GET_EMULATED_CPUID")
}

// MSRIndexList is only available on x86.
func (s *System) MSRIndexList() (*kvm.MSRListWrapper, error) {
	return nil, unsupported("KVM_GET_MSR_INDEX_LIST")
}

// MSRFeatureIndexList is only available on x86.
func (s *System) MSRFeatureIndexList() (*kvm.MSRListWrapper, error) {
	return nil, unsupported("KVM_GET_MSR_FEATURE_INDEX_LIST")
}

// GetFeatureMSRs is only available on x86.
func (s *System) GetFeatureMSRs(*kvm.MSRsWrapper) error {
	return unsupported("KVM_GET_MSRS")
}
