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

package log

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

// capture redirects the global logger to a buffer for the duration of the
// test.
func capture(t *testing.T, format string, level Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	if err := SetTarget(&buf, format); err != nil {
		t.Fatalf("SetTarget(%q) failed: %v", format, err)
	}
	SetLevel(level)
	t.Cleanup(func() {
		if err := SetTarget(os.Stderr, "text"); err != nil {
			t.Errorf("SetTarget failed: %v", err)
		}
		SetLevel(Info)
	})
	return &buf
}

func TestGoogleFormat(t *testing.T) {
	buf := capture(t, "text", Info)
	Infof("hello %d", 1)
	Warningf("careful")

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	for i, want := range []*regexp.Regexp{
		regexp.MustCompile(`^I\d{4} \d{2}:\d{2}:\d{2}\.\d{6} +\d+ log_test\.go:\d+\] hello 1$`),
		regexp.MustCompile(`^W\d{4} \d{2}:\d{2}:\d{2}\.\d{6} +\d+ log_test\.go:\d+\] careful$`),
	} {
		if !want.MatchString(lines[i]) {
			t.Errorf("line %d = %q, want match for %v", i, lines[i], want)
		}
	}
}

func TestGoogleFormatFields(t *testing.T) {
	e := &logrus.Entry{
		Level:   logrus.InfoLevel,
		Time:    time.Date(2026, time.May, 7, 13, 4, 5, 6000, time.UTC),
		Message: "msg",
		Data:    logrus.Fields{"b": 2, "a": "x"},
	}
	out, err := GoogleFormatter{}.Format(e)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	want := regexp.MustCompile(`^I0507 13:04:05\.000006 +\d+ x:0\] msg a=x b=2\n$`)
	if !want.Match(out) {
		t.Errorf("Format = %q, want match for %v", out, want)
	}
}

func TestJSONFormat(t *testing.T) {
	buf := capture(t, "json", Debug)
	Debugf("value %s", "v")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("Unmarshal(%q) failed: %v", buf.String(), err)
	}
	if got, want := line["msg"], "value v"; got != want {
		t.Errorf("msg = %v, want %v", got, want)
	}
	if got, want := line["level"], "debug"; got != want {
		t.Errorf("level = %v, want %v", got, want)
	}
	if c, _ := line[callerKey].(string); !strings.HasPrefix(c, "log_test.go:") {
		t.Errorf("caller = %q, want log_test.go:<line>", c)
	}
	if _, err := time.Parse(time.RFC3339Nano, line["time"].(string)); err != nil {
		t.Errorf("time %v does not parse: %v", line["time"], err)
	}
}

func TestLevels(t *testing.T) {
	buf := capture(t, "text", Warning)
	Infof("dropped")
	Debugf("dropped")
	if buf.Len() != 0 {
		t.Errorf("got output at Warning level: %q", buf.String())
	}
	if IsLogging(Info) || IsLogging(Debug) || !IsLogging(Warning) {
		t.Errorf("IsLogging inconsistent with level Warning")
	}

	SetLevel(Debug)
	if !IsLogging(Debug) {
		t.Errorf("IsLogging(Debug) = false at level Debug")
	}
	Debugf("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("debug message not logged: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Level
	}{
		{"warning", Warning},
		{"WARN", Warning},
		{"info", Info},
		{"Debug", Debug},
	} {
		got, err := ParseLevel(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, %v, want %v", tc.in, got, err, tc.want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Errorf("ParseLevel(loud) succeeded")
	}
}

func TestSetTargetInvalid(t *testing.T) {
	if err := SetTarget(io.Discard, "json-k8s"); err == nil {
		t.Errorf("SetTarget with an unknown format succeeded")
	}
}
