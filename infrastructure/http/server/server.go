package server

import (
	"bank-lab/auth"
	"bank-lab/contract"
	"bank-lab/domain"
	"bank-lab/errors"
	"bank-lab/services"
	"context"
	stdErrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// Dependencies are built once in main and shared by every request.
type Dependencies struct {
	Log             *slog.Logger
	Auth            services.IAuthService
	Ledger          services.ILedger
	Transactions    services.ITransactionService
	Verifier        contract.IdentityVerifier
	Registry        contract.IRegistry
	Notifier        contract.INotifier
	BufferSize      int
	DeliveryTimeout time.Duration
}

// Server exposes the REST API and the live WebSocket channels on one fiber app.
type Server struct {
	log  *slog.Logger
	app  *fiber.App
	live *LiveServer
}

func New(deps Dependencies) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "bank-lab",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(deps.Log),
	})
	live := NewLiveServer(deps.Log, deps.Registry, deps.BufferSize, deps.DeliveryTimeout)
	h := handlers{
		log:          deps.Log,
		auth:         deps.Auth,
		ledger:       deps.Ledger,
		transactions: deps.Transactions,
		registry:     deps.Registry,
		notifier:     deps.Notifier,
	}

	app.Get("/", h.root)
	app.Get("/health", h.health)

	api := app.Group("/api/v1")
	api.Post("/auth/register", h.register)
	api.Post("/auth/login", h.login)

	protected := auth.Protected(deps.Verifier)
	api.Get("/users/me", protected, h.me)

	api.Post("/accounts", protected, h.createAccount)
	api.Get("/accounts/me", protected, h.myAccount)
	api.Get("/accounts/:id", protected, h.account)

	api.Post("/transactions", protected, h.createTransaction)
	api.Get("/transactions", protected, h.listTransactions)
	api.Get("/transactions/:id", protected, h.transaction)

	api.Get("/ws/connections", h.connectionStats)
	api.Post("/ws/announcements", protected, auth.RequireRole(domain.RoleAdmin), h.announce)
	api.Get("/ws", auth.WebSocketGuard(deps.Verifier), websocket.New(live.authenticated))
	api.Get("/ws/public", auth.UpgradeOnly(), websocket.New(live.public))

	return &Server{log: deps.Log, app: app, live: live}
}

func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks until the server stops.
func (s *Server) Listen(addr string) error {
	s.log.Info("HTTP server listening", "addr", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// errorHandler renders every failure as {"detail": "..."} with the status of
// its domain error. Server errors are logged and never leak their cause.
func errorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if stdErrors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"detail": fiberErr.Message})
		}

		status := errors.MapToHTTPStatus(err)
		detail := err.Error()
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("Request failed", "method", c.Method(), "path", c.Path(), "error", err)
			detail = "internal server error"
		case status == http.StatusUnauthorized:
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		}
		return c.Status(status).JSON(fiber.Map{"detail": detail})
	}
}
