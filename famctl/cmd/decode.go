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
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/subcommands"
	"gopkg.in/yaml.v3"
	"gvisor.dev/kvmfam/famctl/config"
	"gvisor.dev/kvmfam/pkg/abi/kvm"
	"gvisor.dev/kvmfam/pkg/fam"
)

// block is a decoded structure of any layout.
type block interface {
	fmt.Stringer
	Bytes() []byte
}

type decodeFunc func(data []byte, format config.Format) (block, error)

// decodeAs returns a decodeFunc producing wrappers of layout l.
func decodeAs[H, E comparable](l *fam.Layout[H, E]) decodeFunc {
	return func(data []byte, format config.Format) (block, error) {
		w, err := fam.Empty(l)
		if err != nil {
			return nil, err
		}
		switch format {
		case config.FormatYAML:
			err = yaml.Unmarshal(data, w)
		default:
			err = json.Unmarshal(data, w)
		}
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", l.Name, err)
		}
		return w, nil
	}
}

// decoders maps structure names to their decoder.
var decoders = map[string]decodeFunc{
	kvm.CPUIDLayout.Name:          decodeAs(kvm.CPUIDLayout),
	kvm.LegacyCPUIDLayout.Name:    decodeAs(kvm.LegacyCPUIDLayout),
	kvm.MSRsLayout.Name:           decodeAs(kvm.MSRsLayout),
	kvm.MSRListLayout.Name:        decodeAs(kvm.MSRListLayout),
	kvm.IRQRoutingLayout.Name:     decodeAs(kvm.IRQRoutingLayout),
	kvm.RegListLayout.Name:        decodeAs(kvm.RegListLayout),
	kvm.PMUEventFilterLayout.Name: decodeAs(kvm.PMUEventFilterLayout),
	kvm.SignalMaskLayout.Name:     decodeAs(kvm.SignalMaskLayout),
}

func kinds() string {
	names := make([]string, 0, len(decoders))
	for name := range decoders {
		names = append(names, name)
	}
	slices.Sort(names)
	return strings.Join(names, ", ")
}

// Decode implements subcommands.Command for the "decode" command.
type Decode struct {
	kind string
	hex  bool
}

// Name implements subcommands.Command.Name.
func (*Decode) Name() string {
	return "decode"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Decode) Synopsis() string {
	return "validate and convert a serialized flexible array structure"
}

// Usage implements subcommands.Command.Usage.
func (*Decode) Usage() string {
	return `decode -kind=<structure> <file> - decode a structure saved as JSON or YAML.

The input format is taken from the file extension (.json, .yaml or .yml),
falling back to --format. A file of "-" reads standard input. The structure is
written back in --format, or as the raw block handed to the kernel with -hex.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (d *Decode) SetFlags(f *flag.FlagSet) {
	f.StringVar(&d.kind, "kind", kvm.CPUIDLayout.Name, "structure to decode: "+kinds()+".")
	f.BoolVar(&d.hex, "hex", false, "print a hex dump of the raw block instead of re-encoding it.")
}

// Execute implements subcommands.Command.Execute.
func (d *Decode) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	conf := args[0].(*config.Config)

	path := f.Arg(0)
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		Fatalf("reading %s: %v", path, err)
	}
	if err := d.run(data, inputFormat(path, conf.Format), conf.Format, os.Stdout); err != nil {
		Fatalf("%s: %v", path, err)
	}
	return subcommands.ExitSuccess
}

// inputFormat guesses the format of path from its extension.
func inputFormat(path string, def config.Format) config.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return config.FormatJSON
	case ".yaml", ".yml":
		return config.FormatYAML
	default:
		return def
	}
}

func (d *Decode) run(data []byte, in, out config.Format, w io.Writer) error {
	decode, ok := decoders[d.kind]
	if !ok {
		return fmt.Errorf("unknown structure %q, want one of: %s", d.kind, kinds())
	}
	b, err := decode(data, in)
	if err != nil {
		return err
	}
	if !d.hex {
		return write(w, out, b)
	}
	if _, err := fmt.Fprintf(w, "%v\n", b); err != nil {
		return err
	}
	_, err = io.WriteString(w, hex.Dump(b.Bytes()))
	return err
}
