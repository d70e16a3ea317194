// Package cli implements the emoscore command line tool.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bertygi/HibiLog-EmotionScore/internal/emoji"
	"github.com/bertygi/HibiLog-EmotionScore/internal/platform/logging"
	"github.com/bertygi/HibiLog-EmotionScore/internal/platform/version"
)

type rootOptions struct {
	jsonOutput bool
	priorsFile string
	logLevel   string
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "emoscore",
		Short: "Score how positive a diary entry feels",
		Long: `emoscore fuses an emoji with the emotions read from a text sample into a
single 0-100 score.

Subcommands:
  fuse    Fuse an emoji with emotion logits you already have
  score   Classify a text sample with the model server and fuse it
  priors  List the emoji prior table`,
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// stdout carries results; logs go to stderr.
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), opts.logLevel, "text"))
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.jsonOutput, "json", "j", false, "Write JSON instead of text")
	cmd.PersistentFlags().StringVar(&opts.priorsFile, "priors", os.Getenv("EMOJI_PRIORS_FILE"), "YAML emoji prior table (default: built-in)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newFuseCmd(opts))
	cmd.AddCommand(newScoreCmd(opts))
	cmd.AddCommand(newPriorsCmd(opts))

	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

func (o *rootOptions) loadPriors() (*emoji.Table, error) {
	return emoji.LoadFile(o.priorsFile)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
