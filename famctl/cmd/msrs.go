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
	"io"
	"os"

	"github.com/google/subcommands"
	"gvisor.dev/kvmfam/famctl/config"
	"gvisor.dev/kvmfam/pkg/abi/kvm"
	"gvisor.dev/kvmfam/pkg/hostkvm"
)

// MSRs implements subcommands.Command for the "msrs" command.
type MSRs struct {
	features bool
	values   bool
}

// Name implements subcommands.Command.Name.
func (*MSRs) Name() string {
	return "msrs"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*MSRs) Synopsis() string {
	return "print the MSR indices known to KVM"
}

// Usage implements subcommands.Command.Usage.
func (*MSRs) Usage() string {
	return `msrs [flags] - print the kvm_msr_list returned by KVM_GET_MSR_INDEX_LIST.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (m *MSRs) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&m.features, "features", false, "print the feature MSRs (KVM_GET_MSR_FEATURE_INDEX_LIST) instead.")
	f.BoolVar(&m.values, "values", false, "with -features, also read the feature MSR values.")
}

// Execute implements subcommands.Command.Execute.
func (m *MSRs) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 0 || (m.values && !m.features) {
		f.Usage()
		return subcommands.ExitUsageError
	}
	conf := args[0].(*config.Config)

	s, err := openSystem(conf)
	if err != nil {
		Fatalf("%v", err)
	}
	defer s.Close()
	if err := m.run(s, conf.Format, os.Stdout); err != nil {
		Fatalf("%v", err)
	}
	return subcommands.ExitSuccess
}

func (m *MSRs) run(s *hostkvm.System, format config.Format, w io.Writer) error {
	if !m.features {
		list, err := s.MSRIndexList()
		if err != nil {
			return err
		}
		return write(w, format, list)
	}

	list, err := s.MSRFeatureIndexList()
	if err != nil {
		return err
	}
	if !m.values {
		return write(w, format, list)
	}
	msrs, err := readFeatureMSRs(s, list)
	if err != nil {
		return err
	}
	return write(w, format, msrs)
}

// readFeatureMSRs reads the values of the feature MSRs in list.
func readFeatureMSRs(s *hostkvm.System, list *kvm.MSRListWrapper) (*kvm.MSRsWrapper, error) {
	indices, err := list.Entries()
	if err != nil {
		return nil, err
	}
	msrs, err := kvm.MSRsFor(indices)
	if err != nil {
		return nil, err
	}
	if err := s.GetFeatureMSRs(msrs); err != nil {
		return nil, err
	}
	return msrs, nil
}
