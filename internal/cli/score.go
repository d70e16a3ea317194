package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bertygi/HibiLog-EmotionScore/internal/adapter/classifier"
	"github.com/bertygi/HibiLog-EmotionScore/internal/adapter/tokenizer"
	"github.com/bertygi/HibiLog-EmotionScore/internal/app"
	"github.com/bertygi/HibiLog-EmotionScore/internal/fusion"
	"github.com/bertygi/HibiLog-EmotionScore/internal/inference"
)

const defaultScoreTimeout = 30 * time.Second

type scoreOptions struct {
	emoji         string
	text          string
	classifierURL string
	encoding      string
	maxTokens     int
	timeout       time.Duration
}

func newScoreCmd(root *rootOptions) *cobra.Command {
	opts := &scoreOptions{}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score an emoji and a text sample using the model server",
		Long: `Classify a text sample with the emotion model server and fuse the result
with an emoji. Text is read from --text, or from stdin when --text is "-".

Examples:
  emoscore score --emoji 🙂 --text "今日は楽しかった"
  echo "疲れた" | emoscore score --emoji 😢 --text - --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := opts.text
			if text == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = strings.TrimRight(string(data), "\r\n")
			}
			return runScore(cmd.Context(), cmd.OutOrStdout(), root, opts, text)
		},
	}

	cmd.Flags().StringVarP(&opts.emoji, "emoji", "e", "", "Emoji to fuse (required)")
	cmd.Flags().StringVarP(&opts.text, "text", "t", "", `Text sample, or "-" for stdin`)
	cmd.Flags().StringVar(&opts.classifierURL, "classifier-url", os.Getenv("CLASSIFIER_URL"), "Model server base URL (default $CLASSIFIER_URL)")
	cmd.Flags().StringVar(&opts.encoding, "encoding", tokenizer.DefaultEncoding, "Tokenizer encoding used to bound input length")
	cmd.Flags().IntVar(&opts.maxTokens, "max-tokens", inference.DefaultMaxTokens, "Maximum tokens sent to the classifier")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", defaultScoreTimeout, "Overall time limit")
	return cmd
}

func runScore(ctx context.Context, w io.Writer, root *rootOptions, opts *scoreOptions, text string) error {
	emoji := strings.TrimSpace(opts.emoji)
	if emoji == "" {
		return errors.New("--emoji is required")
	}
	if opts.classifierURL == "" {
		return errors.New("--classifier-url or CLASSIFIER_URL is required")
	}

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	priors, err := root.loadPriors()
	if err != nil {
		return err
	}

	tok, err := tokenizer.Load(opts.encoding)
	if err != nil {
		return err
	}

	client, err := classifier.Load(ctx, classifier.Config{BaseURL: opts.classifierURL})
	if err != nil {
		return err
	}

	inferer, err := inference.NewAdapter(client, tok, inference.WithMaxTokens(opts.maxTokens))
	if err != nil {
		return err
	}

	engine, err := fusion.NewEngine(priors, fusion.DefaultParams())
	if err != nil {
		return err
	}

	svc := app.NewService(inferer, engine, priors, nil, nil)
	result, err := svc.Score(ctx, emoji, text)
	if err != nil {
		return err
	}

	return writeResult(w, result.Rounded(), root.jsonOutput)
}
