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
	"runtime"
	"runtime/debug"
)

// modulePath is the path of the module providing this package.
const modulePath = "gvisor.dev/kvmfam"

// Version identifies the definitions compiled into a binary.
type Version struct {
	// Arch is the kernel name of the architecture, e.g. "x86_64".
	Arch string `json:"arch" yaml:"arch"`

	// KernelVersion is the kernel release the definitions mirror.
	KernelVersion string `json:"kernel_version" yaml:"kernel_version"`

	// ModuleVersion is the version of this module, or "(devel)" when it
	// is not known.
	ModuleVersion string `json:"module_version" yaml:"module_version"`
}

// CurrentVersion returns the version of the definitions in this binary.
func CurrentVersion() Version {
	return Version{
		Arch:          kernelArch(runtime.GOARCH),
		KernelVersion: KernelVersion,
		ModuleVersion: moduleVersion(),
	}
}

// kernelArch maps a GOARCH to the kernel's name for it.
func kernelArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "386":
		return "x86"
	case "arm64":
		return "aarch64"
	default:
		return goarch
	}
}

func moduleVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "(devel)"
	}
	if info.Main.Path == modulePath && info.Main.Version != "" {
		return info.Main.Version
	}
	for _, dep := range info.Deps {
		if dep.Path == modulePath {
			return dep.Version
		}
	}
	return "(devel)"
}
