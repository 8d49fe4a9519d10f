package main

import (
	"bank-lab/domain"
	"bank-lab/repositories"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/pflag"
)

// inspect prints the content of a bank-lab badger directory without writing to it.
//
//	inspect --db ./data                       accounts with their latest transactions
//	inspect --db ./data --raw --prefix txn:   decoded keys under a prefix
func main() {
	dbPath := pflag.String("db", "./data", "Path to the badger directory")
	raw := pflag.Bool("raw", false, "Dump decoded keys instead of accounts")
	prefix := pflag.String("prefix", "", "Key prefix scanned in raw mode")
	limit := pflag.Int("limit", 20, "Maximum rows per table (0 = all)")
	colours := pflag.Bool("colours", true, "Colour the headings")
	pflag.Parse()

	if err := run(*dbPath, *raw, *prefix, *limit, *colours); err != nil {
		fmt.Fprintf(os.Stderr, "inspect: %v\n", err)
		os.Exit(1)
	}
}

func run(dbPath string, raw bool, prefix string, limit int, colours bool) error {
	// Read-only with the lock guard bypassed so a running server keeps its lock.
	db, err := badger.Open(badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("opening badger: %w", err)
	}
	defer db.Close()

	if raw {
		rows, err := repositories.Scan(db, prefix, limit)
		if err != nil {
			return err
		}
		heading(os.Stdout, fmt.Sprintf("%d keys under %q", len(rows), prefix), colours)
		renderRows(os.Stdout, rows)
		return nil
	}

	repository := repositories.NewAccountRepository(db, logs.GetLoggerFromLevel(slog.LevelWarn))
	accounts, err := repository.ListAccounts()
	if err != nil {
		return err
	}
	heading(os.Stdout, fmt.Sprintf("%d accounts", len(accounts)), colours)
	renderAccounts(os.Stdout, accounts)

	for _, account := range accounts {
		count, err := repository.CountTransactions(account.ID)
		if err != nil {
			return err
		}
		offset := 0
		if limit > 0 && count > limit {
			offset = count - limit
		}
		transactions, err := repository.ListTransactions(account.ID, offset, limit)
		if err != nil {
			return err
		}
		heading(os.Stdout, fmt.Sprintf("%s: %d of %d transactions", account.AccountNumber, len(transactions), count), colours)
		renderTransactions(os.Stdout, transactions)
	}
	return nil
}

func heading(w io.Writer, title string, colours bool) {
	header := fmt.Sprintf("  ====== %s ======", title)
	if colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	fmt.Fprintln(w, "\n"+header)
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func renderAccounts(w io.Writer, accounts []domain.Account) {
	table := newTable(w, []string{"Number", "Type", "Balance", "Currency", "User", "Updated"})
	for _, a := range accounts {
		table.Append([]string{
			a.AccountNumber, a.AccountType, domain.FormatMoney(a.Balance), a.Currency,
			a.UserID.String(), a.UpdatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	table.Render()
}

func renderTransactions(w io.Writer, transactions []domain.Transaction) {
	table := newTable(w, []string{"Reference", "Type", "Amount", "Description", "Created"})
	for _, t := range transactions {
		description := "-"
		if t.Description != nil {
			description = *t.Description
		}
		table.Append([]string{
			t.ReferenceNumber, string(t.Type), domain.FormatMoney(t.Amount), description,
			t.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	table.Render()
}

func renderRows(w io.Writer, rows []repositories.InspectRow) {
	table := newTable(w, []string{"Key", "Kind", "Timestamp", "Entity ID", "Detail"})
	for _, r := range rows {
		table.Append([]string{r.Key, r.Kind, r.Timestamp, r.EntityID, r.Detail})
	}
	table.Render()
}
