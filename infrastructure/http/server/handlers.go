package server

import (
	"bank-lab/auth"
	"bank-lab/contract"
	"bank-lab/domain"
	"bank-lab/domain/event"
	"bank-lab/errors"
	"bank-lab/observability"
	"bank-lab/services"
	"bank-lab/sink"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type handlers struct {
	log          *slog.Logger
	auth         services.IAuthService
	ledger       services.ILedger
	transactions services.ITransactionService
	registry     contract.IRegistry
	notifier     contract.INotifier
}

func (h handlers) root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Welcome to bank-lab",
		"api":     "/api/v1",
		"health":  "/health",
	})
}

// health reports liveness with the live session count and the process footprint.
// Process metrics are best effort and left out when unavailable.
func (h handlers) health(c *fiber.Ctx) error {
	body := fiber.Map{
		"status":      "healthy",
		"connections": h.registry.Stats(),
	}
	if stats, err := observability.SelfStats(); err == nil {
		body["process"] = stats
	} else {
		h.log.Debug("Unable to inspect own process", "error", err)
	}
	return c.JSON(body)
}

func (h handlers) register(c *fiber.Ctx) error {
	var req auth.RegisterRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	user, err := h.auth.Register(req.Email, req.Username, req.Password)
	if err != nil {
		return err
	}
	h.log.Info("User registered", "user_id", user.ID)
	return c.Status(fiber.StatusCreated).JSON(toUserResponse(user))
}

func (h handlers) login(c *fiber.Ctx) error {
	var req auth.LoginRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(TokenResponse{AccessToken: token.String(), TokenType: "bearer"})
}

func (h handlers) me(c *fiber.Ctx) error {
	identity := mustIdentity(c)
	user, err := h.auth.Me(identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(toUserResponse(user))
}

func (h handlers) createAccount(c *fiber.Ctx) error {
	var req auth.CreateAccountRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	identity := mustIdentity(c)
	account, err := h.ledger.CreateAccount(c.UserContext(), identity.UserID, req.AccountType, req.Currency)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toAccountResponse(account))
}

func (h handlers) myAccount(c *fiber.Ctx) error {
	account, err := h.ledger.GetAccount(mustIdentity(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(toAccountResponse(account))
}

func (h handlers) account(c *fiber.Ctx) error {
	id, err := uuidParam(c)
	if err != nil {
		return err
	}
	account, err := h.ledger.GetAccountByID(id)
	if err != nil {
		return err
	}
	if account.UserID != mustIdentity(c).UserID {
		return errors.ErrForbidden
	}
	return c.JSON(toAccountResponse(account))
}

func (h handlers) createTransaction(c *fiber.Ctx) error {
	var req auth.CreateTransactionRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	tx, err := h.transactions.CreateTransaction(c.UserContext(), mustIdentity(c).UserID,
		req.TransactionType, req.Amount, req.Description)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(tx))
}

func (h handlers) listTransactions(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 0)
	transactions, err := h.transactions.ListTransactions(mustIdentity(c).UserID, skip, limit)
	if err != nil {
		return err
	}
	return c.JSON(toTransactionResponses(transactions))
}

func (h handlers) transaction(c *fiber.Ctx) error {
	id, err := uuidParam(c)
	if err != nil {
		return err
	}
	tx, err := h.transactions.GetTransaction(mustIdentity(c).UserID, id)
	if err != nil {
		return err
	}
	return c.JSON(toTransactionResponse(tx))
}

func (h handlers) connectionStats(c *fiber.Ctx) error {
	return c.JSON(h.registry.Stats())
}

func (h handlers) announce(c *fiber.Ctx) error {
	var req auth.AnnouncementRequest
	if err := parse(c, &req); err != nil {
		return err
	}
	results := h.notifier.Broadcast(c.UserContext(), event.NewAnnouncement(req.Message))
	delivered := lo.CountBy(results, func(r sink.DeliveryResult) bool { return r.OK() })
	h.log.Info("Announcement broadcast", "by", mustIdentity(c).Username, "delivered", delivered)
	return c.JSON(AnnouncementResponse{Delivered: delivered, Dropped: len(results) - delivered})
}

// parse decodes a JSON or form body and runs its validation tags.
func parse(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err)
	}
	return auth.Validate(req)
}

func uuidParam(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed id", errors.ErrInvalidRequest)
	}
	return id, nil
}

// mustIdentity is only called behind auth.Protected.
func mustIdentity(c *fiber.Ctx) domain.Identity {
	identity, _ := auth.IdentityFrom(c)
	return identity
}
