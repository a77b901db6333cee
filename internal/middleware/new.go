package middleware

import (
	"calendar-assistant/pkg/log"
)

// Middleware bundles the HTTP middlewares the server mounts on its routes.
type Middleware struct {
	l             log.Logger
	webhookSecret string
}

func New(l log.Logger, webhookSecret string) Middleware {
	return Middleware{
		l:             l,
		webhookSecret: webhookSecret,
	}
}
