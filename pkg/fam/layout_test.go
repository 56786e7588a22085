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
	"strings"
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"
)

type narrowHeader struct {
	N uint8
	_ [3]uint8
}

type signedHeader struct {
	N int32
	_ uint32
}

type shortHeader struct {
	N uint32
}

type nestedHeader struct {
	Flags uint32
	Inner struct {
		Reserved uint16
		Count    uint16
	}
}

type pointerEntry struct {
	P *uint32
}

type intEntry struct {
	V int
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name    string
		err     error
		wantErr string
	}{
		{
			name: "valid",
			err:  (&Layout[testHeader, uint32]{Name: "ok", CountOffset: 0, CountSize: 4, MaxLen: 10}).Validate(),
		},
		{
			name: "nested count field",
			err:  (&Layout[nestedHeader, uint16]{Name: "nested", CountOffset: 6, CountSize: 2}).Validate(),
		},
		{
			name:    "no name",
			err:     (&Layout[testHeader, uint32]{CountSize: 4}).Validate(),
			wantErr: "no name",
		},
		{
			name:    "count outside header",
			err:     (&Layout[testHeader, uint32]{Name: "x", CountOffset: 8, CountSize: 4}).Validate(),
			wantErr: "outside",
		},
		{
			name:    "misaligned count",
			err:     (&Layout[testHeader, uint32]{Name: "x", CountOffset: 2, CountSize: 4}).Validate(),
			wantErr: "aligned",
		},
		{
			name:    "unsupported width",
			err:     (&Layout[testHeader, uint32]{Name: "x", CountOffset: 0, CountSize: 3}).Validate(),
			wantErr: "width",
		},
		{
			name:    "width mismatch",
			err:     (&Layout[testHeader, uint32]{Name: "x", CountOffset: 0, CountSize: 2}).Validate(),
			wantErr: "no 2-byte field",
		},
		{
			name:    "count in padding",
			err:     (&Layout[narrowHeader, uint32]{Name: "x", CountOffset: 2, CountSize: 1}).Validate(),
			wantErr: "no 1-byte field",
		},
		{
			name:    "signed count",
			err:     (&Layout[signedHeader, uint32]{Name: "x", CountOffset: 0, CountSize: 4}).Validate(),
			wantErr: "unsigned",
		},
		{
			name:    "maximum too wide",
			err:     (&Layout[narrowHeader, uint32]{Name: "x", CountOffset: 0, CountSize: 1, MaxLen: 256}).Validate(),
			wantErr: "does not fit",
		},
		{
			name:    "negative maximum",
			err:     (&Layout[testHeader, uint32]{Name: "x", CountOffset: 0, CountSize: 4, MaxLen: -1}).Validate(),
			wantErr: "negative",
		},
		{
			name:    "entries misaligned after header",
			err:     (&Layout[shortHeader, uint64]{Name: "x", CountOffset: 0, CountSize: 4}).Validate(),
			wantErr: "multiple of entry alignment",
		},
		{
			name:    "pointer entry",
			err:     (&Layout[testHeader, pointerEntry]{Name: "x", CountOffset: 0, CountSize: 4}).Validate(),
			wantErr: "no fixed ABI layout",
		},
		{
			name:    "platform-sized entry",
			err:     (&Layout[testHeader, intEntry]{Name: "x", CountOffset: 0, CountSize: 4}).Validate(),
			wantErr: "no fixed ABI layout",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if tc.wantErr == "" {
				if tc.err != nil {
					t.Fatalf("Validate() = %v, want nil", tc.err)
				}
				return
			}
			if tc.err == nil || !strings.Contains(tc.err.Error(), tc.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", tc.err, tc.wantErr)
			}
		})
	}
}

func TestMustLayoutPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("MustLayout did not panic on an invalid layout")
		}
	}()
	MustLayout(Layout[testHeader, uint32]{Name: "bad", CountOffset: 1, CountSize: 4})
}

func TestUnvalidatedLayout(t *testing.T) {
	bad := &Layout[testHeader, uint32]{Name: "bad", CountOffset: 6, CountSize: 4}
	if _, err := New(bad, 1); err == nil {
		t.Errorf("New with an invalid layout succeeded")
	}
	good := &Layout[testHeader, uint32]{Name: "good", CountOffset: 4, CountSize: 4}
	w, err := New(good, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if w.Header().Flags != 2 || w.Header().Len != 0 {
		t.Errorf("header = %+v, want count in Flags", *w.Header())
	}
}

func TestUnvalidatedLayoutEmpty(t *testing.T) {
	bad := &Layout[testHeader, uint32]{Name: "bad", CountSize: 3}
	if w, err := Empty(bad); err == nil {
		t.Errorf("Empty with an invalid layout = %v, want error", w)
	}
	if _, err := WithCapacity(bad, 1); err == nil {
		t.Errorf("WithCapacity with an invalid layout succeeded")
	}
	if _, err := FromEntries(bad, []uint32{1}); err == nil {
		t.Errorf("FromEntries with an invalid layout succeeded")
	}

	// A wrapper that somehow carries an invalid layout still decodes to an
	// error.
	w := &Wrapper[testHeader, uint32]{layout: bad, mem: make([]uint64, 1)}
	if err := json.Unmarshal([]byte(`{"header":{"len":1},"entries":[1]}`), w); err == nil {
		t.Errorf("Unmarshal into a wrapper with an invalid layout succeeded")
	}
}

func TestLimit(t *testing.T) {
	narrow := MustLayout(Layout[narrowHeader, uint32]{
		Name:        "narrow",
		CountOffset: unsafe.Offsetof(narrowHeader{}.N),
		CountSize:   unsafe.Sizeof(narrowHeader{}.N),
	})
	for _, tc := range []struct {
		name string
		got  int
		want int
	}{
		{name: "declared maximum", got: boundedLayout.Limit(), want: 5},
		{name: "32-bit count", got: testLayout.Limit(), want: 1<<32 - 1},
		{name: "8-bit count", got: narrow.Limit(), want: 255},
	} {
		if tc.got != tc.want {
			t.Errorf("%s: Limit() = %d, want %d", tc.name, tc.got, tc.want)
		}
	}

	if _, err := New(narrow, 255); err != nil {
		t.Errorf("New(255) failed: %v", err)
	}
	if _, err := New(narrow, 256); err == nil {
		t.Errorf("New(256) succeeded with an 8-bit count field")
	}
}

func TestDescribe(t *testing.T) {
	want := Description{
		Name:        "test_bounded",
		HeaderSize:  8,
		EntrySize:   4,
		CountOffset: 0,
		CountSize:   4,
		MaxLen:      5,
	}
	var d Describer = boundedLayout
	if diff := cmp.Diff(want, d.Describe()); diff != "" {
		t.Errorf("Describe() mismatch (-want +got):\n%s", diff)
	}
	if size, ok := boundedLayout.Size(3); !ok || size != 20 {
		t.Errorf("Size(3) = %d, %t, want 20, true", size, ok)
	}
	if _, ok := boundedLayout.Size(-1); ok {
		t.Errorf("Size(-1) succeeded")
	}
}
