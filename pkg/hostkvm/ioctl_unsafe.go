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

//go:build linux
// +build linux

package hostkvm

import (
	"runtime"
	"unsafe"

	"github.com/cenkalti/backoff"
	"golang.org/x/exp/constraints"
	"golang.org/x/sys/unix"
	"gvisor.dev/kvmfam/pkg/fam"
)

// ioctl issues an ioctl with an integer argument, retrying up to retries
// times if it is interrupted.
func ioctl[Arg constraints.Integer](fd int, req uintptr, arg Arg, retries uint64) (uintptr, error) {
	var r uintptr
	op := func() error {
		n, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
		switch errno {
		case 0:
			r = n
			return nil
		case unix.EINTR:
			return errno
		default:
			return backoff.Permanent(errno)
		}
	}
	if err := backoff.Retry(op, backoff.WithMaxRetries(&backoff.ZeroBackOff{}, retries)); err != nil {
		return 0, err
	}
	return r, nil
}

// ioctlPtr issues an ioctl whose argument points to v.
func ioctlPtr[T any](fd int, req uintptr, v *T, retries uint64) (uintptr, error) {
	n, err := ioctl(fd, req, uintptr(unsafe.Pointer(v)), retries)
	runtime.KeepAlive(v)
	return n, err
}

// ioctlFAM issues an ioctl whose argument is the block held by w. The kernel
// may rewrite the header, including the count.
func ioctlFAM[H, E comparable](fd int, req uintptr, w *fam.Wrapper[H, E], retries uint64) (uintptr, error) {
	p, _ := w.RawParts()
	n, err := ioctl(fd, req, uintptr(p), retries)
	runtime.KeepAlive(w)
	return n, err
}
