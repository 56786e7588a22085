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

// Package config provides basic infrastructure to set configuration settings
// for famctl. Each setting is a flag; settings not given on the command line
// may also be read from a TOML file.
package config

import (
	"fmt"
	"reflect"
	"strings"

	"gvisor.dev/kvmfam/pkg/hostkvm"
	"gvisor.dev/kvmfam/pkg/log"
)

// Format is the encoding used for structured output and input.
type Format string

const (
	// FormatJSON is JSON, indented.
	FormatJSON Format = "json"

	// FormatYAML is YAML.
	FormatYAML Format = "yaml"
)

func formatPtr(f Format) *Format {
	return &f
}

// Set implements flag.Value.Set.
func (f *Format) Set(v string) error {
	switch Format(strings.ToLower(v)) {
	case FormatJSON:
		*f = FormatJSON
	case FormatYAML:
		*f = FormatYAML
	default:
		return fmt.Errorf("invalid format %q, must be 'json' or 'yaml'", v)
	}
	return nil
}

// Get implements flag.Getter.Get.
func (f *Format) Get() any {
	return *f
}

// String implements flag.Value.String.
func (f Format) String() string {
	return string(f)
}

// Config holds configuration that is not part of a command's own flags.
type Config struct {
	// ConfigFile is the path of a TOML file holding default flag values.
	ConfigFile string `flag:"config"`

	// Device is the path of the KVM device.
	Device string `flag:"device"`

	// Format is the encoding of structured output.
	Format Format `flag:"format"`

	// LogFilename is the file where logs are written. Empty means stderr.
	LogFilename string `flag:"log"`

	// LogFormat is the log format: text or json.
	LogFormat string `flag:"log-format"`

	// Debug enables debug logging.
	Debug bool `flag:"debug"`

	// IoctlRetries is the number of times an ioctl interrupted by a signal
	// is retried.
	IoctlRetries int `flag:"ioctl-retries"`
}

func (c *Config) validate() error {
	if c.Device == "" {
		return fmt.Errorf("--device must not be empty")
	}
	if _, err := log.NewFormatter(c.LogFormat); err != nil {
		return err
	}
	if c.IoctlRetries < 0 {
		return fmt.Errorf("--ioctl-retries must be non-negative, got %d", c.IoctlRetries)
	}
	return nil
}

// Log logs the configuration.
func (c *Config) Log() {
	log.Infof("Config:")
	obj := reflect.ValueOf(c).Elem()
	st := obj.Type()
	for i := 0; i < st.NumField(); i++ {
		name, ok := st.Field(i).Tag.Lookup("flag")
		if !ok {
			continue
		}
		log.Infof("\t%s: %v", name, getVal(obj.Field(i)))
	}
	log.Infof("Effective flags: %s", strings.Join(c.ToFlags(), " "))
}

// Default returns the configuration famctl runs with when no flags are
// given.
func Default() *Config {
	return &Config{
		Device:       hostkvm.DefaultDevice,
		Format:       FormatJSON,
		LogFormat:    "text",
		IoctlRetries: hostkvm.DefaultRetries,
	}
}
