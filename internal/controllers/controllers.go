// Package controllers binds screen views to the executor and the navigation
// state machine. A controller listens for clicks on its view, issues one
// asynchronous request per click and, when the request completes, either
// shows an error on the view's notifier or asks the state machine to move on.
package controllers

import (
	"errors"
	"log/slog"

	"github.com/smileynet/taigaterm/internal/signals"
	"github.com/smileynet/taigaterm/internal/taiga"
)

// Notifier shows short messages to the user.
type Notifier interface {
	InfoMsg(text string)
	ErrorMsg(text string)
}

// Option configures a controller.
type Option func(*base)

// WithLogger sets the logger used for rejected transitions.
func WithLogger(l *slog.Logger) Option {
	return func(b *base) { b.logger = l }
}

// base holds what every controller shares.
type base struct {
	bus    *signals.Bus
	logger *slog.Logger
}

func newBase(bus *signals.Bus, opts []Option) base {
	if bus == nil {
		bus = signals.Default
	}
	b := base{bus: bus, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// OutdatedMsg is shown when a response arrives for a screen the user has
// already left and can no longer be applied.
const OutdatedMsg = "Ignored an outdated response"

// transitioned reports a transition the state machine refused: it is logged
// and the user is told the response was dropped.
func (b base) transitioned(n Notifier, name string, err error) {
	if err == nil {
		return
	}
	b.logger.Warn("transition rejected", slog.String("transition", name), slog.Any("error", err))
	n.InfoMsg(OutdatedMsg)
}

// describe turns a request error into a short user-facing reason.
func describe(err error) string {
	var apiErr *taiga.APIError
	switch {
	case taiga.IsUnauthorized(err):
		return "session expired, log in again"
	case errors.As(err, &apiErr) && apiErr.Detail != "":
		return apiErr.Detail
	case errors.As(err, &apiErr):
		return "server error"
	default:
		return "connection problem"
	}
}
