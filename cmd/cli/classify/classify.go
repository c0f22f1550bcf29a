package classify

import (
	"fmt"
	"github.com/myrjola/crimewatch/internal/ai"
	"github.com/myrjola/crimewatch/internal/logging"
	"github.com/spf13/cobra"
	"log/slog"
	"os"
	"strings"
)

var Group = &cobra.Group{
	ID:    "ai",
	Title: "AI operations",
}

func init() {
	Classify.Flags().String("model", "", "chat completion model, defaults to $CRIMEWATCH_OPENAI_MODEL")
	Classify.Flags().String("base-url", "", "OpenAI compatible API base URL, defaults to $CRIMEWATCH_OPENAI_BASE_URL")
}

var Classify = &cobra.Command{
	Use:     "classify [description]",
	GroupID: "ai",
	Short:   "Classify an incident description",
	Long:    `Asks the model whether the description is a valid crime to report, the same way the report wizard does`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, _ := cmd.Flags().GetString("model")
		baseURL, _ := cmd.Flags().GetString("base-url")
		if model == "" {
			model = os.Getenv("CRIMEWATCH_OPENAI_MODEL")
		}
		if baseURL == "" {
			baseURL = os.Getenv("CRIMEWATCH_OPENAI_BASE_URL")
		}
		logger := logging.NewLogger(cmd.ErrOrStderr(), slog.LevelWarn, nil)
		client := ai.NewClient(os.Getenv("OPENAI_API_KEY"), baseURL, model, logger)

		description := strings.Join(args, " ")
		verdict, err := client.ClassifyCrime(cmd.Context(), description)
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), verdict)
		return err
	},
}
