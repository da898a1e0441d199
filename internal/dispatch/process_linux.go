//go:build linux

package dispatch

import "syscall"

// setPdeathsig ensures the search process dies with us on Linux.
func setPdeathsig(attr *syscall.SysProcAttr) {
	attr.Pdeathsig = syscall.SIGKILL
}
