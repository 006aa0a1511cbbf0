//go:build windows

package notify

import (
	"context"
	"errors"

	"soundviz/registry"
)

const signalsSupported = false

// Signal is unavailable on Windows; Open never hands it out.
type Signal struct {
	reg *registry.Registry
}

func NewSignal(root string) *Signal {
	return &Signal{reg: registry.New(root)}
}

func (s *Signal) Registry() *registry.Registry { return s.reg }

func (s *Signal) Broadcast() error { return errors.ErrUnsupported }

func (s *Signal) Listen(context.Context, func()) (<-chan struct{}, error) {
	return nil, errors.ErrUnsupported
}
