package server

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestShutdownHooks_IgnoresNil(t *testing.T) {
	hooks := &ShutdownHooks{}
	hooks.AddContext("nil-hook", nil)
	hooks.AddClose("nil-closer", nil)

	assert.Empty(t, hooks.hooks)
	assert.NoError(t, hooks.Execute(context.Background()))
}

func TestShutdownHooks_ExecutesInOrder(t *testing.T) {
	hooks := &ShutdownHooks{}
	var order []string

	hooks.AddContext("telemetry", func(context.Context) error {
		order = append(order, "telemetry")
		return nil
	})
	hooks.AddClose("catalog", closerFunc(func() error {
		order = append(order, "catalog")
		return nil
	}))

	require.NoError(t, hooks.Execute(context.Background()))
	assert.Equal(t, []string{"telemetry", "catalog"}, order)
}

func TestShutdownHooks_ContinuesAfterFailure(t *testing.T) {
	hooks := &ShutdownHooks{}
	var executed []string
	closeErr := errors.New("cache close failed")

	hooks.AddClose("horoscope-cache", closerFunc(func() error {
		executed = append(executed, "horoscope-cache")
		return closeErr
	}))
	hooks.AddContext("telemetry", func(context.Context) error {
		executed = append(executed, "telemetry")
		return nil
	})

	err := hooks.Execute(context.Background())

	assert.Equal(t, []string{"horoscope-cache", "telemetry"}, executed)
	assert.ErrorIs(t, err, closeErr)
	assert.ErrorContains(t, err, "horoscope-cache: cache close failed")
}

func TestShutdownHooks_PassesContext(t *testing.T) {
	type ctxKey struct{}

	hooks := &ShutdownHooks{}
	var received any
	hooks.AddContext("ctx-check", func(ctx context.Context) error {
		received = ctx.Value(ctxKey{})
		return nil
	})

	ctx := context.WithValue(context.Background(), ctxKey{}, "deadline-bound")
	require.NoError(t, hooks.Execute(ctx))

	assert.Equal(t, "deadline-bound", received)
}
