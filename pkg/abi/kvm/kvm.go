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

// Package kvm contains the constants and types needed to interface with the
// Linux KVM API on x86-64 and arm64.
//
// Structures that end in a flexible array member are split into a header type
// and an entry type, and bound together by a fam.Layout; see bindings.go.
package kvm

// APIVersion is the KVM_GET_API_VERSION value these definitions target.
const APIVersion = 12

// KernelVersion is the kernel release whose uapi headers these definitions
// mirror.
const KernelVersion = "v4.20.0"

// Maximum entry counts accepted by the kernel for structures with a flexible
// array member.
const (
	// MaxCPUIDEntries is KVM_MAX_CPUID_ENTRIES.
	MaxCPUIDEntries = 80

	// MaxMSREntries is the largest MSR batch the kernel copies in one
	// KVM_GET_MSRS or KVM_SET_MSRS call.
	MaxMSREntries = 256

	// MaxIRQRoutes is KVM_MAX_IRQ_ROUTES.
	MaxIRQRoutes = 4096

	// MaxRegListEntries bounds KVM_GET_REG_LIST on arm64.
	MaxRegListEntries = 500

	// MaxPMUEvents is KVM_PMU_EVENT_FILTER_MAX_EVENTS.
	MaxPMUEvents = 300
)
