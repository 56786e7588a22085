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

// Routing entry types for IRQRoutingEntry.Type.
const (
	IRQRoutingIRQChip     = 1
	IRQRoutingMSI         = 2
	IRQRoutingS390Adapter = 3
	IRQRoutingHVSint      = 4
)

// MSI routing flags.
const (
	MSIValidDevID = 1 << 0
)

// IRQRoutingEntry is a single GSI route.
//
// This mirrors kvm_irq_routing_entry. The union u is held in U and accessed
// through the typed accessors in irq_unsafe.go.
type IRQRoutingEntry struct {
	GSI   uint32
	Type  uint32
	Flags uint32
	_     uint32
	U     [4]uint64
}

// IRQRoutingIRQChipRoute mirrors kvm_irq_routing_irqchip.
type IRQRoutingIRQChipRoute struct {
	IRQChip uint32
	Pin     uint32
}

// IRQRoutingMSIRoute mirrors kvm_irq_routing_msi.
type IRQRoutingMSIRoute struct {
	AddressLo uint32
	AddressHi uint32
	Data      uint32
	DevID     uint32
}

// IRQRoutingS390AdapterRoute mirrors kvm_irq_routing_s390_adapter.
type IRQRoutingS390AdapterRoute struct {
	IndAddr       uint64
	SummaryAddr   uint64
	IndOffset     uint64
	SummaryOffset uint32
	AdapterID     uint32
}

// IRQRoutingHVSintRoute mirrors kvm_irq_routing_hv_sint.
type IRQRoutingHVSintRoute struct {
	VCPU uint32
	Sint uint32
}

// IRQRouting is the header of kvm_irq_routing. It is followed by Nr
// IRQRoutingEntry.
type IRQRouting struct {
	Nr    uint32
	Flags uint32
}

// IRQChipRoute returns an entry routing gsi to pin of an in-kernel irqchip.
func IRQChipRoute(gsi, chip, pin uint32) IRQRoutingEntry {
	e := IRQRoutingEntry{GSI: gsi, Type: IRQRoutingIRQChip}
	*e.IRQChip() = IRQRoutingIRQChipRoute{IRQChip: chip, Pin: pin}
	return e
}

// MSIRoute returns an entry routing gsi to an MSI message.
func MSIRoute(gsi uint32, addr uint64, data uint32) IRQRoutingEntry {
	e := IRQRoutingEntry{GSI: gsi, Type: IRQRoutingMSI}
	*e.MSI() = IRQRoutingMSIRoute{
		AddressLo: uint32(addr),
		AddressHi: uint32(addr >> 32),
		Data:      data,
	}
	return e
}
