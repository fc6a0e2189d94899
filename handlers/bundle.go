package handlers

import (
	"sparkathon/middleware"
)

// HandlerBundle groups the endpoint handlers with what the routes need to guard them.
type HandlerBundle struct {
	Auth         middleware.Authenticator
	RateLimit    int
	AuthHandler  *AuthHandler
	SchedHandler *SchedulingHandler
}
