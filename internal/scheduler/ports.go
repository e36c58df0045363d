package scheduler

import (
	"context"
	"time"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

//counterfeiter:generate -o fake -fake-name Finalizer . Finalizer
type Finalizer interface {
	FinalizeDue(ctx context.Context, now time.Time) error
}

//counterfeiter:generate -o fake -fake-name Sweeper . Sweeper
type Sweeper interface {
	SweepExpired(ctx context.Context, now time.Time) error
}
