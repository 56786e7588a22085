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
	"os"

	"github.com/google/subcommands"
	"gvisor.dev/kvmfam/famctl/config"
	"gvisor.dev/kvmfam/pkg/abi/kvm"
)

// Layouts implements subcommands.Command for the "layouts" command.
type Layouts struct{}

// Name implements subcommands.Command.Name.
func (*Layouts) Name() string {
	return "layouts"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Layouts) Synopsis() string {
	return "print the flexible array structures famctl knows about"
}

// Usage implements subcommands.Command.Usage.
func (*Layouts) Usage() string {
	return `layouts - print the header size, entry size, count field and maximum of each structure.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (*Layouts) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*Layouts) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	conf := args[0].(*config.Config)
	if err := write(os.Stdout, conf.Format, kvm.Layouts()); err != nil {
		Fatalf("%v", err)
	}
	return subcommands.ExitSuccess
}
