package internal

import (
	"bank-lab/repositories"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/gofiber/fiber/v2"
)

const defaultInspectLimit = 500

// StatsProvider feeds the live counters shown next to the scanned rows.
type StatsProvider func() map[string]any

// NewInspector returns a read-only debug app listing decoded badger keys:
// GET {endpoint}?prefix=account:&limit=50
func NewInspector(log *slog.Logger, db *badger.DB, endpoint string, stats StatsProvider) *fiber.App {
	app := fiber.New(fiber.Config{AppName: "bank-lab-inspector", DisableStartupMessage: true})
	app.Get(endpoint, func(c *fiber.Ctx) error {
		prefix := c.Query("prefix")
		rows, err := repositories.Scan(db, prefix, c.QueryInt("limit", defaultInspectLimit))
		if err != nil {
			log.Error("Inspection failed", "prefix", prefix, "error", err)
			return fiber.NewError(fiber.StatusInternalServerError, "inspection failed")
		}
		body := fiber.Map{"prefix": prefix, "count": len(rows), "items": rows}
		if stats != nil {
			body["stats"] = stats()
		}
		return c.JSON(body)
	})
	return app
}
