package main

import (
	"context"
	"fmt"
	"github.com/joho/godotenv"
	"github.com/myrjola/crimewatch/cmd/cli/classify"
	"github.com/myrjola/crimewatch/cmd/cli/reports"
	"github.com/myrjola/crimewatch/internal/errors"
	"github.com/spf13/cobra"
	"io/fs"
	"os"
)

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(reports.Group)
	rootCmd.AddCommand(reports.Reports, reports.Status)
	rootCmd.AddGroup(classify.Group)
	rootCmd.AddCommand(classify.Classify)
}

var rootCmd = &cobra.Command{
	Use:          "crimewatch-cli",
	Long:         `Command line utilities for operating CrimeWatch`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
