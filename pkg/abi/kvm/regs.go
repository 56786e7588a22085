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

// Regs represents the general purpose registers.
//
// This mirrors kvm_regs.
type Regs struct {
	RAX    uint64
	RBX    uint64
	RCX    uint64
	RDX    uint64
	RSI    uint64
	RDI    uint64
	RSP    uint64
	RBP    uint64
	R8     uint64
	R9     uint64
	R10    uint64
	R11    uint64
	R12    uint64
	R13    uint64
	R14    uint64
	R15    uint64
	RIP    uint64
	RFLAGS uint64
}

// Segment is the expanded form of a segment register.
//
// This mirrors kvm_segment.
type Segment struct {
	Base     uint64
	Limit    uint32
	Selector uint16
	Type     uint8
	Present  uint8
	DPL      uint8
	DB       uint8
	S        uint8
	L        uint8
	G        uint8
	AVL      uint8
	Unusable uint8
	_        uint8
}

// DTable describes a descriptor table.
//
// This mirrors kvm_dtable.
type DTable struct {
	Base  uint64
	Limit uint16
	_     [3]uint16
}

// NrInterrupts is KVM_NR_INTERRUPTS.
const NrInterrupts = 256

// SRegs represents the system registers.
//
// This mirrors kvm_sregs.
type SRegs struct {
	CS              Segment
	DS              Segment
	ES              Segment
	FS              Segment
	GS              Segment
	SS              Segment
	TR              Segment
	LDT             Segment
	GDT             DTable
	IDT             DTable
	CR0             uint64
	CR2             uint64
	CR3             uint64
	CR4             uint64
	CR8             uint64
	EFER            uint64
	APICBase        uint64
	InterruptBitmap [(NrInterrupts + 63) / 64]uint64
}

// FPU is the legacy floating point state.
//
// This mirrors kvm_fpu.
type FPU struct {
	FPR        [8][16]uint8
	FCW        uint16
	FSW        uint16
	FTWX       uint8
	_          uint8
	LastOpcode uint16
	LastIP     uint64
	LastDP     uint64
	XMM        [16][16]uint8
	MXCSR      uint32
	_          uint32
}

// LAPICRegsSize is KVM_APIC_REG_SIZE.
const LAPICRegsSize = 0x400

// LAPICState is the local APIC register page.
//
// This mirrors kvm_lapic_state.
type LAPICState struct {
	Regs [LAPICRegsSize]uint8
}

// XSave is the extended processor state area.
//
// This mirrors kvm_xsave.
type XSave struct {
	Region [1024]uint32
}

// MaxXCRs is KVM_MAX_XCRS.
const MaxXCRs = 16

// XCR is a single extended control register.
//
// This mirrors kvm_xcr.
type XCR struct {
	XCR   uint32
	_     uint32
	Value uint64
}

// XCRs is a set of extended control registers.
//
// This mirrors kvm_xcrs.
type XCRs struct {
	NrXCRs uint32
	Flags  uint32
	XCRs   [MaxXCRs]XCR
	_      [16]uint64
}

// DebugRegs represents the debug registers.
//
// This mirrors kvm_debugregs.
type DebugRegs struct {
	DB    [4]uint64
	DR6   uint64
	DR7   uint64
	Flags uint64
	_     [9]uint64
}

// Multiprocessing states for MPState.MPState.
const (
	MPStateRunnable      = 0
	MPStateUninitialized = 1
	MPStateInitReceived  = 2
	MPStateHalted        = 3
	MPStateSIPIReceived  = 4
)

// MPState is the multiprocessing state of a vCPU.
//
// This mirrors kvm_mp_state.
type MPState struct {
	MPState uint32
}

// ClockData is the kvmclock value.
//
// This mirrors kvm_clock_data.
type ClockData struct {
	Clock uint64
	Flags uint32
	_     [9]uint32
}

// PITChannelState is the state of one i8254 channel.
//
// This mirrors kvm_pit_channel_state.
type PITChannelState struct {
	Count         uint32
	LatchedCount  uint16
	CountLatched  uint8
	StatusLatched uint8
	Status        uint8
	ReadState     uint8
	WriteState    uint8
	WriteLatch    uint8
	RWMode        uint8
	Mode          uint8
	BCD           uint8
	Gate          uint8
	CountLoadTime int64
}

// PITState2 is the state of the in-kernel i8254.
//
// This mirrors kvm_pit_state2.
type PITState2 struct {
	Channels [3]PITChannelState
	Flags    uint32
	_        [9]uint32
}

// VCPUExceptionState mirrors the exception member of kvm_vcpu_events.
type VCPUExceptionState struct {
	Injected     uint8
	Nr           uint8
	HasErrorCode uint8
	Pending      uint8
	ErrorCode    uint32
}

// VCPUInterruptState mirrors the interrupt member of kvm_vcpu_events.
type VCPUInterruptState struct {
	Injected uint8
	Nr       uint8
	Soft     uint8
	Shadow   uint8
}

// VCPUNMIState mirrors the nmi member of kvm_vcpu_events.
type VCPUNMIState struct {
	Injected uint8
	Pending  uint8
	Masked   uint8
	_        uint8
}

// VCPUSMIState mirrors the smi member of kvm_vcpu_events.
type VCPUSMIState struct {
	SMM          uint8
	Pending      uint8
	SMMInsideNMI uint8
	LatchedInit  uint8
}

// VCPUEvents holds pending exceptions, interrupts and NMIs.
//
// This mirrors kvm_vcpu_events.
type VCPUEvents struct {
	Exception           VCPUExceptionState
	Interrupt           VCPUInterruptState
	NMI                 VCPUNMIState
	SIPIVector          uint32
	Flags               uint32
	SMI                 VCPUSMIState
	_                   [27]uint8
	ExceptionHasPayload uint8
	ExceptionPayload    uint64
}

// IRQChipState is the state of an in-kernel interrupt controller. The chip
// union holds a PIC or IOAPIC state depending on ChipID.
//
// This mirrors kvm_irqchip.
type IRQChipState struct {
	ChipID uint32
	_      uint32
	Chip   [512]uint8
}
