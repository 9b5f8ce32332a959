package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"

	"github.com/rentnest/rentnest-server/internal/handlers"
	"github.com/rentnest/rentnest-server/internal/metrics"
	wsocket "github.com/rentnest/rentnest-server/internal/ws"
)

type Deps struct {
	Auth      *handlers.AuthHandler
	Props     *handlers.PropertyHandler
	Chat      *handlers.ChatHandler
	Billing   *handlers.BillingHandler
	WS        *wsocket.Handler
	JWT       fiber.Handler
	RateLimit fiber.Handler
}

func Register(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	v1 := app.Group("/api/v1", d.RateLimit)

	v1.Post("/auth/signup", d.Auth.Signup)
	v1.Post("/auth/login", d.Auth.Login)
	v1.Get("/me", d.JWT, d.Auth.Me)
	v1.Put("/me", d.JWT, d.Auth.UpdateMe)

	v1.Get("/plans", d.Billing.Plans)
	v1.Post("/subscriptions", d.JWT, d.Billing.Subscribe)
	v1.Get("/subscriptions", d.JWT, d.Billing.History)

	v1.Get("/properties", d.Props.List)
	v1.Get("/properties/:id", optionalIdentity(d.JWT), d.Props.Get)
	v1.Post("/properties", d.JWT, d.Props.Create)
	v1.Put("/properties/:id", d.JWT, d.Props.Update)
	v1.Delete("/properties/:id", d.JWT, d.Props.Delete)
	v1.Put("/properties/:id/interest", d.JWT, d.Props.AddInterest)
	v1.Delete("/properties/:id/interest", d.JWT, d.Props.RemoveInterest)

	v1.Post("/conversations", d.JWT, d.Chat.Resolve)
	v1.Get("/conversations", d.JWT, d.Chat.List)
	v1.Get("/conversations/:id", d.JWT, d.Chat.Detail)
	v1.Get("/conversations/:id/messages", d.JWT, d.Chat.Messages)
	v1.Post("/conversations/:id/messages", d.JWT, d.Chat.Send)
	v1.Post("/conversations/:id/read", d.JWT, d.Chat.MarkRead)

	app.Get("/ws/conversations/:id", d.JWT, wsUpgrade, websocket.New(d.WS.Serve))
}

// optionalIdentity runs the JWT middleware only when credentials are present;
// anonymous property views are allowed and tracked by session ID.
func optionalIdentity(jwtMw fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get("Authorization") == "" && c.Query("token") == "" {
			return c.Next()
		}
		return jwtMw(c)
	}
}

func wsUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}
