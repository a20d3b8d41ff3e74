// Command rentctl signs in to a rentdesk server and either prints the
// dashboard or follows the live mutation feeds, keeping a local cache of
// every collection in step.
//
// Usage:
//
//	rentctl dashboard
//	rentctl watch
//	rentctl report [search]
//
// RENTDESK_URL, RENTDESK_EMAIL and RENTDESK_PASSWORD select the server and
// account; a .env file in the working directory is read first.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/gosuda/rentdesk/internal/client"
	"github.com/gosuda/rentdesk/internal/session"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if err := run(logger, os.Args[1:]); err != nil {
		logger.Fatal().Err(err).Msg("rentctl failed")
	}
}

func run(logger zerolog.Logger, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	if len(args) == 0 {
		return errors.New("usage: rentctl dashboard|watch|report [search]")
	}

	baseURL := os.Getenv("RENTDESK_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := client.New(baseURL, "")
	if err := c.Login(ctx, os.Getenv("RENTDESK_EMAIL"), os.Getenv("RENTDESK_PASSWORD")); err != nil {
		return err
	}
	s := session.New(c, logger)

	switch args[0] {
	case "dashboard":
		ov, err := s.LoadDashboard(ctx, time.Now())
		if err != nil {
			return err
		}
		fmt.Printf("tenants %d  apartments %d  incoming due %d  overdue %d\n",
			ov.TotalTenants, ov.TotalApartments, ov.IncomingDue, ov.Overdue)
		for _, row := range ov.Rows {
			fmt.Printf("%-24s %-16s %s  %s\n", row.Tenant.Name, row.ApartmentName, row.DueDate.Format(time.DateOnly), row.Status)
		}
		return nil
	case "watch":
		if _, err := s.LoadDashboard(ctx, time.Now()); err != nil {
			return err
		}
		logger.Info().Msg("watching collections")
		return s.Watch(ctx)
	case "report":
		q := client.ReportQuery{}
		if len(args) > 1 {
			q.Search = args[1]
		}
		rows, err := c.Report(ctx, q)
		if err != nil {
			return err
		}
		for _, r := range rows {
			fmt.Printf("%s  %-8s %-20s %10.2f  %s\n", r.Date.Format(time.DateOnly), r.Kind, r.Name, float64(r.AmountCents)/100, r.Description)
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}
