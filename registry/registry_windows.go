//go:build windows

package registry

import (
	"errors"
	"os"
	"syscall"
)

// Windows has no user signals; listeners there use the file-watch channel.
func sendSignal(int, syscall.Signal) error {
	return errors.ErrUnsupported
}

func alive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	p.Release()
	return true
}
