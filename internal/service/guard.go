package service

import (
	"context"
	"fmt"
	"sync/atomic"
)

// RunGuard admits at most one sync run at a time.
type RunGuard interface {
	TryAcquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// LocalGuard is the in-process flag.
type LocalGuard struct {
	running atomic.Bool
}

func NewLocalGuard() *LocalGuard {
	return &LocalGuard{}
}

func (g *LocalGuard) TryAcquire(ctx context.Context) (bool, error) {
	return g.running.CompareAndSwap(false, true), nil
}

func (g *LocalGuard) Release(ctx context.Context) error {
	g.running.Store(false)
	return nil
}

// ChainGuard acquires every guard in order and releases them in reverse.
// If one refuses, the guards already held are released again.
type ChainGuard []RunGuard

func (c ChainGuard) TryAcquire(ctx context.Context) (bool, error) {
	for i, g := range c {
		ok, err := g.TryAcquire(ctx)
		if err != nil || !ok {
			c[:i].release(ctx)
			return false, err
		}
	}
	return true, nil
}

func (c ChainGuard) Release(ctx context.Context) error {
	return c.release(ctx)
}

func (c ChainGuard) release(ctx context.Context) error {
	var first error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].Release(ctx); err != nil && first == nil {
			first = fmt.Errorf("failed to release run guard: %w", err)
		}
	}
	return first
}
