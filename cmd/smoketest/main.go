package main

import (
	"context"
	"github.com/myrjola/crimewatch/internal/e2etest"
	"github.com/myrjola/crimewatch/internal/errors"
	"github.com/myrjola/crimewatch/internal/logging"
	"log/slog"
	"net/http"
	"os"
	"time"
)

// TestReportFlow checks that the landing page renders and that a visitor gets a fresh wizard.
func TestReportFlow(client *e2etest.Client) error {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()

	if err := client.WaitForReady(ctx, "/api/healthy"); err != nil {
		return errors.Wrap(err, "wait for healthy")
	}

	doc, err := client.GetDoc(ctx, "/")
	if err != nil {
		return errors.Wrap(err, "get landing page")
	}
	if doc.Find("a[href='/report']").Length() == 0 {
		return errors.New("landing page does not link to the report wizard")
	}

	if doc, err = client.GetDoc(ctx, "/report"); err != nil {
		return errors.Wrap(err, "get report page")
	}
	if doc.Find(".transcript .message").Length() == 0 {
		return errors.New("report wizard has no greeting")
	}

	var resp *http.Response
	if resp, err = client.Get(ctx, "/status/CW000000000"); err != nil {
		return errors.Wrap(err, "get unknown status")
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		return errors.New("unexpected status for unknown report", slog.Int("status", resp.StatusCode))
	}
	return nil
}

func main() {
	logger := logging.NewLogger(os.Stdout, slog.LevelDebug, nil)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		url    = "https://" + os.Args[1]
		client *e2etest.Client
		err    error
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", url))

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	if err = TestReportFlow(client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing report flow", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
