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

package fam

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// encoded is the structured form of a wrapper: the header fields followed by
// the valid entries. Blank header fields are not encoded.
type encoded[H, E comparable] struct {
	Header  H   `json:"header" yaml:"header"`
	Entries []E `json:"entries" yaml:"entries"`
}

func (w *Wrapper[H, E]) encode() (*encoded[H, E], error) {
	entries, err := w.Entries()
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []E{}
	}
	return &encoded[H, E]{Header: *w.Header(), Entries: entries}, nil
}

// decode replaces the contents of w with enc. The count in enc.Header must
// match the number of entries.
func (w *Wrapper[H, E]) decode(enc *encoded[H, E]) error {
	if w.layout == nil {
		return fmt.Errorf("decoding into a wrapper with no layout")
	}
	l := w.layout
	if err := l.check(); err != nil {
		return err
	}
	n := uint64(len(enc.Entries))
	if err := l.checkLen("decode", n); err != nil {
		return err
	}
	if c := l.headerCount(&enc.Header); c != n {
		return &Error{Op: "decode", Layout: l.Name, Requested: c, Limit: n, Err: ErrInconsistentState}
	}
	nw, err := FromEntries(l, enc.Entries)
	if err != nil {
		return err
	}
	*nw.Header() = enc.Header
	w.mem, w.capacity = nw.mem, nw.capacity
	return nil
}

// MarshalJSON implements json.Marshaler.MarshalJSON.
func (w *Wrapper[H, E]) MarshalJSON() ([]byte, error) {
	enc, err := w.encode()
	if err != nil {
		return nil, err
	}
	return json.Marshal(enc)
}

// UnmarshalJSON implements json.Unmarshaler.UnmarshalJSON. w must have been
// created with a layout, e.g. by Empty.
func (w *Wrapper[H, E]) UnmarshalJSON(data []byte) error {
	var enc encoded[H, E]
	if err := json.Unmarshal(data, &enc); err != nil {
		return err
	}
	return w.decode(&enc)
}

// MarshalYAML implements yaml.Marshaler.MarshalYAML.
func (w *Wrapper[H, E]) MarshalYAML() (any, error) {
	return w.encode()
}

// UnmarshalYAML implements yaml.Unmarshaler.UnmarshalYAML. w must have been
// created with a layout, e.g. by Empty.
func (w *Wrapper[H, E]) UnmarshalYAML(value *yaml.Node) error {
	var enc encoded[H, E]
	if err := value.Decode(&enc); err != nil {
		return err
	}
	return w.decode(&enc)
}

var (
	_ json.Marshaler   = (*Wrapper[uint32, uint32])(nil)
	_ json.Unmarshaler = (*Wrapper[uint32, uint32])(nil)
	_ yaml.Marshaler   = (*Wrapper[uint32, uint32])(nil)
	_ yaml.Unmarshaler = (*Wrapper[uint32, uint32])(nil)
)
