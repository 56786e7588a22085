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
)

// IRQChip returns the irqchip view of the routing union.
func (e *IRQRoutingEntry) IRQChip() *IRQRoutingIRQChipRoute {
	return (*IRQRoutingIRQChipRoute)(unsafe.Pointer(&e.U))
}

// MSI returns the MSI view of the routing union.
func (e *IRQRoutingEntry) MSI() *IRQRoutingMSIRoute {
	return (*IRQRoutingMSIRoute)(unsafe.Pointer(&e.U))
}

// S390Adapter returns the s390 adapter view of the routing union.
func (e *IRQRoutingEntry) S390Adapter() *IRQRoutingS390AdapterRoute {
	return (*IRQRoutingS390AdapterRoute)(unsafe.Pointer(&e.U))
}

// HVSint returns the Hyper-V SINT view of the routing union.
func (e *IRQRoutingEntry) HVSint() *IRQRoutingHVSintRoute {
	return (*IRQRoutingHVSintRoute)(unsafe.Pointer(&e.U))
}
