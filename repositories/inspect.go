package repositories

import (
	"bank-lab/domain"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/shopspring/decimal"
)

// InspectRow is a human readable view of one stored key.
// Password hashes never leave the repository through it.
type InspectRow struct {
	Key       string `json:"key"`
	Kind      string `json:"kind"`
	EntityID  string `json:"entity_id"`
	Timestamp string `json:"timestamp"`
	Detail    string `json:"detail"`
}

// DescribeEntry decodes a raw badger entry according to its key namespace.
func DescribeEntry(key string, val []byte) InspectRow {
	namespace, rest, _ := strings.Cut(key, ":")
	row := InspectRow{
		Key:       key,
		Kind:      "raw",
		EntityID:  rest,
		Timestamp: "-",
		Detail:    "size: " + strconv.Itoa(len(val)) + " bytes",
	}

	switch namespace {
	case "account":
		var d DiskAccount
		if decode(val, &d, &row) {
			row.Kind = "account"
			row.Timestamp = formatNanos(d.UpdatedAt)
			row.Detail = fmt.Sprintf("%s %s %s %s user=%s", d.AccountNumber, d.AccountType,
				money(d.Balance), d.Currency, d.UserID)
		}
	case "txn":
		var d DiskTransaction
		if decode(val, &d, &row) {
			row.Kind = "transaction"
			row.Timestamp = formatNanos(d.CreatedAt)
			row.Detail = fmt.Sprintf("%s %s %s account=%s", d.ReferenceNumber, d.Type, money(d.Amount), d.AccountID)
		}
	case "user":
		var d DiskUser
		if decode(val, &d, &row) {
			row.Kind = "user"
			row.Timestamp = formatNanos(d.CreatedAt)
			row.Detail = fmt.Sprintf("%s <%s> roles=%s active=%t", d.Username, d.Email,
				strings.Join(d.Roles, ","), d.IsActive)
		}
	case "compliance":
		var d DiskReview
		if decode(val, &d, &row) {
			row.Kind = "review"
			row.Timestamp = formatNanos(d.ReviewedAt)
			row.Detail = fmt.Sprintf("%s %s", d.Status, money(d.Amount))
		}
	case "account_txn":
		row.Kind = "index"
		if parts := strings.Split(rest, ":"); len(parts) == 3 {
			row.EntityID = parts[2]
			if nanos, err := strconv.ParseInt(parts[1], 10, 64); err == nil {
				row.Timestamp = formatNanos(nanos)
			}
		}
		row.Detail = "-> " + string(val)
	case "account_user", "account_number", "txn_ref", "user_name", "user_email":
		row.Kind = "index"
		row.Detail = "-> " + string(val)
	}
	return row
}

// Scan describes every key under prefix in key order. limit <= 0 means no limit.
func Scan(db *badger.DB, prefix string, limit int) ([]InspectRow, error) {
	rows := make([]InspectRow, 0)
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			if limit > 0 && len(rows) >= limit {
				return nil
			}
			item := it.Item()
			key := string(item.KeyCopy(nil))
			if err := item.Value(func(val []byte) error {
				rows = append(rows, DescribeEntry(key, val))
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	return rows, err
}

func decode(val []byte, record any, row *InspectRow) bool {
	if err := cbor.Unmarshal(val, record); err != nil {
		row.Detail = "error: unmarshal failed"
		return false
	}
	return true
}

func money(s string) string {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	return domain.FormatMoney(d)
}

func formatNanos(nanos int64) string {
	return time.Unix(0, nanos).UTC().Format(time.RFC3339)
}
