package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newPriorsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "priors",
		Short: "List the emoji prior table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPriors(cmd.OutOrStdout(), root)
		},
	}
}

func runPriors(w io.Writer, root *rootOptions) error {
	priors, err := root.loadPriors()
	if err != nil {
		return err
	}

	entries := priors.Entries()
	if root.jsonOutput {
		return printJSON(w, map[string]any{"priors": entries})
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EMOJI\tSCORE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%+.2f\n", e.Emoji, e.Score)
	}
	return tw.Flush()
}
