package classify_test

import (
	"bytes"
	"context"
	"github.com/myrjola/crimewatch/cmd/cli/classify"
	"github.com/myrjola/crimewatch/internal/e2etest"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"io"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	fake := e2etest.NewFakeOpenAI()
	defer fake.Close()
	t.Setenv("OPENAI_API_KEY", "test-key")

	root := &cobra.Command{Use: "crimewatch-cli", SilenceUsage: true, SilenceErrors: true}
	root.AddGroup(classify.Group)
	root.AddCommand(classify.Classify)
	execute := func(args ...string) (string, error) {
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(io.Discard)
		root.SetArgs(append([]string{"classify", "--base-url", fake.URL}, args...))
		err := root.ExecuteContext(context.Background())
		return strings.TrimSpace(out.String()), err
	}

	out, err := execute("Someone", "stole", "my", "bicycle")
	require.NoError(t, err)
	require.Equal(t, "Yes", out)

	out, err = execute("theft")
	require.NoError(t, err)
	require.Equal(t, "No", out)

	fake.Fail(true)
	out, err = execute("Someone", "stole", "my", "bicycle")
	require.Error(t, err)
	require.Equal(t, "Error", out)
	require.Len(t, fake.Requests(), 3)
}
