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

// Package log implements a library for logging.
//
// This is separate from the standard logging package because logging may be a
// high-impact activity, and therefore we wanted to provide as much flexibility
// as possible in the underlying implementation. Messages are routed through a
// logrus.Logger so that any logrus formatter or hook may be attached.
package log

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// Level is the log level.
type Level uint32

// The following levels are fixed, and can never be changed. Since some control
// RPCs allow for changing the level as an integer, it is only possible to add
// additional levels, and the existing one cannot be removed.
const (
	// Warning indicates that output should always be emitted.
	Warning Level = iota

	// Info indicates that output should normally be emitted.
	Info

	// Debug indicates that output should not normally be emitted.
	Debug
)

// String implements fmt.Stringer.String.
func (l Level) String() string {
	switch l {
	case Warning:
		return "Warning"
	case Info:
		return "Info"
	case Debug:
		return "Debug"
	default:
		return fmt.Sprintf("Invalid level: %d", l)
	}
}

// ParseLevel parses a level name as accepted by flags and config files.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "warning", "warn":
		return Warning, nil
	case "info":
		return Info, nil
	case "debug":
		return Debug, nil
	default:
		return Warning, fmt.Errorf("unknown log level %q", s)
	}
}

func (l Level) logrus() logrus.Level {
	switch l {
	case Warning:
		return logrus.WarnLevel
	case Info:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}

// callerKey is the field holding the file:line of the logging call.
const callerKey = "caller"

// logger is the global logger.
var logger = newLogger(os.Stderr, GoogleFormatter{})

func newLogger(w io.Writer, f logrus.Formatter) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(f)
	l.SetLevel(Info.logrus())
	return l
}

// SetLevel sets the log level.
func SetLevel(l Level) {
	logger.SetLevel(l.logrus())
}

// IsLogging returns true iff this level is being logged. This may be used to
// short-circuit expensive operations for debugging calls.
func IsLogging(l Level) bool {
	return logger.IsLevelEnabled(l.logrus())
}

// SetTarget sets the log destination and format. Format is "text" for glog
// style lines or "json" for one JSON object per line.
func SetTarget(w io.Writer, format string) error {
	f, err := NewFormatter(format)
	if err != nil {
		return err
	}
	logger.SetOutput(w)
	logger.SetFormatter(f)
	return nil
}

// NewFormatter returns the formatter for the given format name.
func NewFormatter(format string) (logrus.Formatter, error) {
	switch format {
	case "text":
		return GoogleFormatter{}, nil
	case "json":
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("invalid log format %q, must be 'text' or 'json'", format)
	}
}

// caller returns "file:line" for the frame depth levels above its caller.
func caller(depth int) string {
	_, file, line, ok := runtime.Caller(depth + 1)
	if !ok {
		return "x:0"
	}
	if slash := strings.LastIndexByte(file, byte('/')); slash >= 0 {
		file = file[slash+1:] // Trim any directory path from the file.
	}
	return fmt.Sprintf("%s:%d", file, line)
}

func logf(l Level, format string, v ...any) {
	if !IsLogging(l) {
		return
	}
	logger.WithField(callerKey, caller(2)).Logf(l.logrus(), format, v...)
}

// Debugf logs to the global logger.
func Debugf(format string, v ...any) {
	logf(Debug, format, v...)
}

// Infof logs to the global logger.
func Infof(format string, v ...any) {
	logf(Info, format, v...)
}

// Warningf logs to the global logger.
func Warningf(format string, v ...any) {
	logf(Warning, format, v...)
}
