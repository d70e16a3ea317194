package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bertygi/HibiLog-EmotionScore/internal/domain"
	"github.com/bertygi/HibiLog-EmotionScore/internal/fusion"
)

type fuseOptions struct {
	emoji              string
	logits             string
	alpha              float64
	beta               float64
	anticipationWeight float64
}

func newFuseCmd(root *rootOptions) *cobra.Command {
	opts := &fuseOptions{}

	cmd := &cobra.Command{
		Use:   "fuse",
		Short: "Fuse an emoji with precomputed emotion logits",
		Long: `Fuse an emoji with emotion logits without calling the model server.

Logits are comma separated in label order (joy, sadness, anticipation,
surprise, anger, fear, disgust, trust). Sixteen values are read as a writer
half followed by a reader half; only the reader half is used.

Examples:
  emoscore fuse --emoji 🙂 --logits 2,-1,0.5,0,-2,-1.5,-2.5,1
  emoscore fuse --emoji 😢 --logits "$(cat logits.csv)" --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFuse(cmd.OutOrStdout(), root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.emoji, "emoji", "e", "", "Emoji to fuse (required)")
	cmd.Flags().StringVarP(&opts.logits, "logits", "l", "", "Comma separated logits, 8 or 16 values (required)")
	cmd.Flags().Float64Var(&opts.alpha, "alpha", fusion.DefaultAlpha, "Confidence slope of the text weight")
	cmd.Flags().Float64Var(&opts.beta, "beta", fusion.DefaultBeta, "Base text weight")
	cmd.Flags().Float64Var(&opts.anticipationWeight, "anticipation-weight", fusion.DefaultAnticipationWeight, "Linear weight of anticipation in the positive group")
	return cmd
}

func runFuse(w io.Writer, root *rootOptions, opts *fuseOptions) error {
	emoji := strings.TrimSpace(opts.emoji)
	if emoji == "" {
		return errors.New("--emoji is required")
	}
	if strings.TrimSpace(opts.logits) == "" {
		return errors.New("--logits is required")
	}

	raw, err := parseLogits(opts.logits)
	if err != nil {
		return err
	}

	priors, err := root.loadPriors()
	if err != nil {
		return err
	}

	engine, err := fusion.NewEngine(priors, fusion.Params{
		Alpha:              opts.alpha,
		Beta:               opts.beta,
		AnticipationWeight: opts.anticipationWeight,
		Epsilon:            fusion.DefaultEpsilon,
	})
	if err != nil {
		return err
	}

	result, err := engine.FuseRaw(raw, emoji)
	if err != nil {
		return err
	}

	return writeResult(w, result.Rounded(), root.jsonOutput)
}

// parseLogits reads comma separated floats. Blank items are rejected so a
// stray comma cannot shift the label order.
func parseLogits(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("logit %d is empty", i+1)
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("logit %d: %q is not a number", i+1, part)
		}
		out = append(out, v)
	}
	return out, nil
}

func writeResult(w io.Writer, r domain.FusionResult, asJSON bool) error {
	if asJSON {
		return printJSON(w, r)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Score:\t%.2f\n", r.Combined100)
	fmt.Fprintf(tw, "Emoji:\t%s (%+.3f)\n", r.Emoji, r.EmojiScore)
	fmt.Fprintf(tw, "Text sentiment:\t%+.3f\n", r.TextSentScore)
	fmt.Fprintf(tw, "Confidence:\t%.3f\n", r.Confidence)
	fmt.Fprintf(tw, "Weights:\temoji %.3f, text %.3f\n", r.W1, r.W2)
	fmt.Fprintln(tw, "Emotions:\t")
	for _, e := range domain.Emotions() {
		fmt.Fprintf(tw, "  %s\t%+.3f\n", e, r.Emotions.Get(e))
	}
	return tw.Flush()
}
