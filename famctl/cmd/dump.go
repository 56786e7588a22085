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
	"errors"
	"flag"
	"io"
	"os"

	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"
	"gvisor.dev/kvmfam/famctl/config"
	"gvisor.dev/kvmfam/pkg/abi/kvm"
	"gvisor.dev/kvmfam/pkg/hostkvm"
	"gvisor.dev/kvmfam/pkg/log"
)

// Dump implements subcommands.Command for the "dump" command.
type Dump struct{}

// Name implements subcommands.Command.Name.
func (*Dump) Name() string {
	return "dump"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Dump) Synopsis() string {
	return "print everything KVM reports about the host"
}

// Usage implements subcommands.Command.Usage.
func (*Dump) Usage() string {
	return `dump - print the API version, capabilities, CPUID leaves and MSR lists of the host.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (*Dump) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (d *Dump) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
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
	if err := d.run(s, conf.Format, os.Stdout); err != nil {
		Fatalf("%v", err)
	}
	return subcommands.ExitSuccess
}

// hostReport is the output of the dump command.
type hostReport struct {
	Version        kvm.Version         `json:"version" yaml:"version"`
	APIVersion     int                 `json:"api_version" yaml:"api_version"`
	Extensions     map[string]int      `json:"extensions" yaml:"extensions"`
	SupportedCPUID *kvm.CPUIDWrapper   `json:"supported_cpuid,omitempty" yaml:"supported_cpuid,omitempty"`
	EmulatedCPUID  *kvm.CPUIDWrapper   `json:"emulated_cpuid,omitempty" yaml:"emulated_cpuid,omitempty"`
	MSRIndexList   *kvm.MSRListWrapper `json:"msr_index_list,omitempty" yaml:"msr_index_list,omitempty"`
	FeatureMSRs    *kvm.MSRsWrapper    `json:"feature_msrs,omitempty" yaml:"feature_msrs,omitempty"`
}

// extensions are the capabilities reported by dump.
var extensions = []struct {
	name string
	cap  int
}{
	{"KVM_CAP_EXT_CPUID", kvm.KVM_CAP_EXT_CPUID},
	{"KVM_CAP_IRQ_ROUTING", kvm.KVM_CAP_IRQ_ROUTING},
	{"KVM_CAP_EXT_EMUL_CPUID", kvm.KVM_CAP_EXT_EMUL_CPUID},
	{"KVM_CAP_GET_MSR_FEATURES", kvm.KVM_CAP_GET_MSR_FEATURES},
	{"KVM_CAP_PMU_EVENT_FILTER", kvm.KVM_CAP_PMU_EVENT_FILTER},
}

// optional drops errors for queries the host architecture does not have.
func optional(what string, err error) error {
	if errors.Is(err, errors.ErrUnsupported) {
		log.Infof("Skipping %s: %v", what, err)
		return nil
	}
	return err
}

func (*Dump) run(s *hostkvm.System, format config.Format, w io.Writer) error {
	r := hostReport{
		Version:    kvm.CurrentVersion(),
		Extensions: make(map[string]int),
	}
	var err error
	if r.APIVersion, err = s.APIVersion(); err != nil {
		return err
	}
	for _, ext := range extensions {
		n, err := s.CheckExtension(ext.cap)
		if err != nil {
			return err
		}
		r.Extensions[ext.name] = n
	}

	// Each query owns its result, so they may run concurrently on the
	// shared system fd.
	var g errgroup.Group
	g.Go(func() error {
		cpuid, err := s.SupportedCPUID()
		r.SupportedCPUID = cpuid
		return optional("supported CPUID", err)
	})
	if r.Extensions["KVM_CAP_EXT_EMUL_CPUID"] != 0 {
		g.Go(func() error {
			cpuid, err := s.EmulatedCPUID()
			r.EmulatedCPUID = cpuid
			return optional("emulated CPUID", err)
		})
	}
	g.Go(func() error {
		list, err := s.MSRIndexList()
		r.MSRIndexList = list
		return optional("MSR index list", err)
	})
	if r.Extensions["KVM_CAP_GET_MSR_FEATURES"] != 0 {
		g.Go(func() error {
			list, err := s.MSRFeatureIndexList()
			if err != nil {
				return optional("feature MSRs", err)
			}
			msrs, err := readFeatureMSRs(s, list)
			r.FeatureMSRs = msrs
			return optional("feature MSRs", err)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return write(w, format, &r)
}
