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

// ioctl(2) requests on /dev/kvm, provided by linux/kvm.h.
const (
	KVM_GET_API_VERSION            = 0x0000ae00
	KVM_CREATE_VM                  = 0x0000ae01
	KVM_GET_MSR_INDEX_LIST         = 0xc004ae02
	KVM_CHECK_EXTENSION            = 0x0000ae03
	KVM_GET_VCPU_MMAP_SIZE         = 0x0000ae04
	KVM_GET_SUPPORTED_CPUID        = 0xc008ae05
	KVM_GET_EMULATED_CPUID         = 0xc008ae09
	KVM_GET_MSR_FEATURE_INDEX_LIST = 0xc004ae0a
)

// ioctl(2) requests on a VM file descriptor.
const (
	KVM_CREATE_VCPU          = 0x0000ae41
	KVM_CREATE_IRQCHIP       = 0x0000ae60
	KVM_SET_GSI_ROUTING      = 0x4008ae6a
	KVM_SET_PMU_EVENT_FILTER = 0x4020aeb2
)

// ioctl(2) requests on a vCPU file descriptor.
const (
	KVM_RUN             = 0x0000ae80
	KVM_GET_REGS        = 0x8090ae81
	KVM_SET_REGS        = 0x4090ae82
	KVM_GET_SREGS       = 0x8138ae83
	KVM_SET_SREGS       = 0x4138ae84
	KVM_GET_MSRS        = 0xc008ae88
	KVM_SET_MSRS        = 0x4008ae89
	KVM_SET_CPUID       = 0x4008ae8a
	KVM_SET_SIGNAL_MASK = 0x4004ae8b
	KVM_GET_FPU         = 0x81a0ae8c
	KVM_SET_FPU         = 0x41a0ae8d
	KVM_SET_CPUID2      = 0x4008ae90
	KVM_GET_CPUID2      = 0xc008ae91
	KVM_GET_MP_STATE    = 0x8004ae98
	KVM_GET_REG_LIST    = 0xc008aeb0
)

// Capabilities for KVM_CHECK_EXTENSION.
const (
	KVM_CAP_IRQ_ROUTING      = 25
	KVM_CAP_EXT_CPUID        = 7
	KVM_CAP_EXT_EMUL_CPUID   = 95
	KVM_CAP_GET_MSR_FEATURES = 153
	KVM_CAP_PMU_EVENT_FILTER = 173
)
