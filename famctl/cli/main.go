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

// Package cli is the main entrypoint for famctl.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/google/subcommands"
	"gvisor.dev/kvmfam/famctl/cmd"
	"gvisor.dev/kvmfam/famctl/config"
	"gvisor.dev/kvmfam/pkg/abi/kvm"
	"gvisor.dev/kvmfam/pkg/log"
)

// versionFlagName is the name of a flag that triggers printing the version.
const versionFlagName = "version"

// Main is the main entrypoint.
func Main() {
	// Register all commands.
	forEachCmd(subcommands.Register)

	// Register with the main command line.
	config.RegisterFlags(flag.CommandLine)

	showVersion := flag.Bool(versionFlagName, false, "show version and exit.")

	// All subcommands must be registered before flag parsing.
	flag.Parse()

	if *showVersion {
		v := kvm.CurrentVersion()
		fmt.Fprintf(os.Stdout, "famctl version %s\n", cmd.Version())
		fmt.Fprintf(os.Stdout, "kvm: %s %s\n", v.Arch, v.KernelVersion)
		os.Exit(0)
	}

	// Create a new Config from the flags.
	conf, err := config.NewFromFlags(flag.CommandLine)
	if err != nil {
		cmd.Fatalf("%v", err)
	}

	if err := setupLogging(conf); err != nil {
		cmd.Fatalf("%v", err)
	}

	log.Infof("Version %s, %s, %s, %s", cmd.Version(), runtime.Version(), runtime.GOARCH, runtime.GOOS)
	log.Infof("Args: %v", os.Args)
	conf.Log()

	// Call the subcommand and pass in the configuration.
	subcmdCode := subcommands.Execute(context.Background(), conf)
	log.Infof("Exiting with status: %v", subcmdCode)
	os.Exit(int(subcmdCode))
}

// setupLogging directs logs to the configured file or stderr. Only warnings
// are logged unless debugging is enabled.
func setupLogging(conf *config.Config) error {
	var target io.Writer = os.Stderr
	if conf.LogFilename != "" {
		f, err := os.OpenFile(conf.LogFilename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("error opening log file %q: %w", conf.LogFilename, err)
		}
		target = f
	}
	if err := log.SetTarget(target, conf.LogFormat); err != nil {
		return err
	}
	if conf.Debug {
		log.SetLevel(log.Debug)
	} else {
		log.SetLevel(log.Warning)
	}
	return nil
}

// forEachCmd invokes the passed callback for each command supported by
// famctl.
func forEachCmd(cb func(cmd subcommands.Command, group string)) {
	// Help and flags commands are generated automatically.
	cb(subcommands.HelpCommand(), "")
	cb(subcommands.FlagsCommand(), "")
	cb(new(cmd.PrintVersion), "")

	// Host queries.
	const hostGroup = "host"
	cb(new(cmd.CPUID), hostGroup)
	cb(new(cmd.MSRs), hostGroup)
	cb(new(cmd.Dump), hostGroup)

	// Offline helpers.
	const offlineGroup = "offline"
	cb(new(cmd.Layouts), offlineGroup)
	cb(new(cmd.Decode), offlineGroup)
}
