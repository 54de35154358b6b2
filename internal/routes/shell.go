package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/authshell/authshell/internal/shell"
)

// ShellGuards are optional per-route handlers placed before form submits.
type ShellGuards struct {
	Submit      fiber.Handler
	SignInLimit fiber.Handler
}

// RegisterShellRoutes wires the presentation intents.
func RegisterShellRoutes(r fiber.Router, h *shell.Handler, g ShellGuards) {
	group := r.Group("/shell")
	group.Get("/screen", h.Screen)
	group.Get("/home", h.Home)
	group.Post("/launch", h.Launch)
	group.Post("/navigate/:target", h.Navigate)
	group.Post("/logout", h.Logout)

	group.Post("/sign-in", chain(h.SignIn, g.SignInLimit, g.Submit)...)
	group.Post("/sign-up", chain(h.SignUp, g.Submit)...)
}

// chain returns the non-nil guards followed by the final handler.
func chain(final fiber.Handler, guards ...fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(guards)+1)
	for _, g := range guards {
		if g != nil {
			out = append(out, g)
		}
	}
	return append(out, final)
}
