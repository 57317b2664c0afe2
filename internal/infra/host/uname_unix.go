//go:build linux || darwin || freebsd || netbsd || openbsd

package host

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// machine returns the hardware name reported by uname(2)
func machine() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return runtime.GOARCH
	}
	if m := unix.ByteSliceToString(u.Machine[:]); m != "" {
		return m
	}
	return runtime.GOARCH
}
