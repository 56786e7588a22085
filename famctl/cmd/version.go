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

// version is set at link time with -X.
var version = "VERSION_MISSING"

// Version returns the famctl version.
func Version() string {
	return version
}

// VersionInfo is the output of the version command.
type VersionInfo struct {
	Famctl      string      `json:"famctl" yaml:"famctl"`
	Definitions kvm.Version `json:"definitions" yaml:"definitions"`
}

// PrintVersion implements subcommands.Command for the "version" command.
type PrintVersion struct{}

// Name implements subcommands.Command.Name.
func (*PrintVersion) Name() string {
	return "version"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*PrintVersion) Synopsis() string {
	return "print the famctl and KVM definitions versions"
}

// Usage implements subcommands.Command.Usage.
func (*PrintVersion) Usage() string {
	return `version - print the famctl version and the kernel version of its KVM definitions.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (*PrintVersion) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*PrintVersion) Execute(_ context.Context, _ *flag.FlagSet, args ...any) subcommands.ExitStatus {
	conf := args[0].(*config.Config)
	info := VersionInfo{Famctl: Version(), Definitions: kvm.CurrentVersion()}
	if err := write(os.Stdout, conf.Format, info); err != nil {
		Fatalf("%v", err)
	}
	return subcommands.ExitSuccess
}
