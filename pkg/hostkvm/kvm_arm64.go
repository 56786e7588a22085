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

//go:build linux && arm64
// +build linux,arm64

package hostkvm

import (
	"gvisor.dev/kvmfam/pkg/abi/kvm"
)

// RegList returns the ids of the registers accessible through
// KVM_GET_ONE_REG. The vCPU must have been initialized.
func (c *VCPU) RegList() (*kvm.RegListWrapper, error) {
	return probe(c.fd, kvm.KVM_GET_REG_LIST, "KVM_GET_REG_LIST", kvm.RegListLayout, c.retries)
}
