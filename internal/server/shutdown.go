package server

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
)

type hookDefinition struct {
	name string
	fn   func(context.Context) error
}

// ShutdownHooks runs cleanup in registration order once the server has
// stopped accepting requests. A failing hook does not stop later hooks.
type ShutdownHooks struct {
	hooks []hookDefinition
}

// AddContext registers a hook that honours the shutdown deadline. Nil hooks
// are ignored with a warning.
func (s *ShutdownHooks) AddContext(name string, hook func(context.Context) error) {
	if hook == nil {
		log.Warn().Str("hook", name).Msg("attempted to add nil shutdown hook; ignoring")
		return
	}

	log.Debug().Str("hook", name).Msg("adding shutdown hook")
	s.hooks = append(s.hooks, hookDefinition{name: name, fn: hook})
}

// AddClose registers a resource to close, such as a cache or the resolver
// catalog.
func (s *ShutdownHooks) AddClose(name string, closer io.Closer) {
	if closer == nil {
		log.Warn().Str("hook", name).Msg("attempted to add nil shutdown hook; ignoring")
		return
	}

	s.AddContext(name, func(context.Context) error {
		return closer.Close()
	})
}

// Execute runs every hook and returns the failures joined together.
func (s *ShutdownHooks) Execute(ctx context.Context) error {
	var errs []error

	l := log.Ctx(ctx)
	for _, hook := range s.hooks {
		hookLog := l.With().Str("hook", hook.name).Logger()

		hookLog.Info().Msg("shutdown started")
		if err := hook.fn(ctx); err != nil {
			hookLog.Warn().Err(err).Msg("shutdown failed")
			errs = append(errs, fmt.Errorf("%s: %w", hook.name, err))
		} else {
			hookLog.Info().Msg("shutdown complete")
		}
	}

	return errors.Join(errs...)
}
