//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package host

import "runtime"

func machine() string {
	return runtime.GOARCH
}
