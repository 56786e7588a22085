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

package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"gvisor.dev/kvmfam/famctl/config"
	"gvisor.dev/kvmfam/pkg/abi/kvm"
	"gvisor.dev/kvmfam/pkg/hostkvm"
	"gvisor.dev/kvmfam/pkg/log"
)

// CPUID implements subcommands.Command for the "cpuid" command.
type CPUID struct {
	emulated bool
}

// Name implements subcommands.Command.Name.
func (*CPUID) Name() string {
	return "cpuid"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*CPUID) Synopsis() string {
	return "print the CPUID leaves supported by KVM"
}

// Usage implements subcommands.Command.Usage.
func (*CPUID) Usage() string {
	return `cpuid [flags] - print the kvm_cpuid2 returned by KVM_GET_SUPPORTED_CPUID.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (c *CPUID) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.emulated, "emulated", false, "print the leaves KVM emulates (KVM_GET_EMULATED_CPUID) instead.")
}

// Execute implements subcommands.Command.Execute.
func (c *CPUID) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	conf := args[0].(*config.Config)

	s, err := openSystem(conf)
	if err != nil {
		Fatalf("%v", err)
	}
	defer s.Close()
	if err := c.run(s, conf.Format, os.Stdout); err != nil {
		Fatalf("%v", err)
	}
	return subcommands.ExitSuccess
}

func (c *CPUID) run(s *hostkvm.System, format config.Format, w io.Writer) error {
	var (
		cpuid *kvm.CPUIDWrapper
		err   error
	)
	if c.emulated {
		if n, err := s.CheckExtension(kvm.KVM_CAP_EXT_EMUL_CPUID); err != nil || n == 0 {
			return fmt.Errorf("KVM_GET_EMULATED_CPUID is not supported by this host")
		}
		cpuid, err = s.EmulatedCPUID()
	} else {
		cpuid, err = s.SupportedCPUID()
	}
	if err != nil {
		return err
	}
	log.Debugf("Got %v", cpuid)
	return write(w, format, cpuid)
}
