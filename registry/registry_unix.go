//go:build !windows

package registry

import (
	"errors"
	"syscall"

	"golang.org/x/sys/unix"
)

func sendSignal(pid int, sig syscall.Signal) error {
	return unix.Kill(pid, sig)
}

func alive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}
