// Package cli implements the bookrec command line tool.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/juman-j/book-recommender/internal/logger"
	"github.com/juman-j/book-recommender/internal/output"
)

const envPrefix = "BOOKREC"

// app holds the per-invocation configuration shared by subcommands
type app struct {
	v *viper.Viper
}

// NewRootCommand builds the command tree. Every flag can also be set through
// a BOOKREC_* environment variable, e.g. BOOKREC_RATINGS or BOOKREC_OUTPUT.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "bookrec",
		Short: "Book recommendations from Book-Crossing style ratings",
		Long: `bookrec finds books that readers of a given book also rated highly,
using the Pearson correlation of their ratings. Datasets are read from local
CSV files or s3://bucket/key locations.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			if _, err := output.ParseFormat(a.v.GetString("output")); err != nil {
				return err
			}
			level := "warn"
			if a.v.GetBool("verbose") {
				level = "debug"
			}
			return logger.Initialize(logger.Options{Level: level, Console: cmd.ErrOrStderr()})
		},
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	root.PersistentFlags().String("output", "text", "Output format: text, json, table")
	root.PersistentFlags().String("region", "us-east-1", "AWS region for s3:// paths")

	root.AddCommand(a.recommendCommand())
	root.AddCommand(a.seedCommand())
	return root
}

func (a *app) printer(cmd *cobra.Command) *output.Printer {
	format, _ := output.ParseFormat(a.v.GetString("output"))
	return output.NewPrinter(cmd.OutOrStdout(), format)
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
