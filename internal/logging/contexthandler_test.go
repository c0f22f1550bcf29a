package logging_test

import (
	"bytes"
	"context"
	"github.com/myrjola/crimewatch/internal/logging"
	"github.com/stretchr/testify/require"
	"log/slog"
	"testing"
)

func TestContextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&buf, slog.LevelDebug, nil).With(slog.String("component", "wizard"))

	ctx := logging.WithAttrs(context.Background(), slog.String("wizard_id", "abc"))
	sibling := logging.WithAttrs(ctx, slog.String("step", "name"))
	ctx = logging.WithAttrs(ctx, slog.String("step", "age"))

	logger.InfoContext(ctx, "answer recorded")
	out := buf.String()
	require.Contains(t, out, "component=wizard")
	require.Contains(t, out, "wizard_id=abc")
	require.Contains(t, out, "step=age")
	require.NotContains(t, out, "step=name")

	buf.Reset()
	logger.InfoContext(sibling, "answer recorded")
	require.Contains(t, buf.String(), "step=name")
}
