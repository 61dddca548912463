package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/OCAP2/hunter/internal/placement"
)

// autoExamples are the maxTraps values shown in the Auto mapping.
var autoExamples = []int{1, 2, 3, 4, 5, 8}

func newStrategiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List placement strategies and the Auto mapping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeStrategies(cmd.OutOrStdout())
		},
	}
}

func writeStrategies(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "KIND\tNAME\tDESCRIPTION")
	for _, k := range placement.Kinds {
		s, err := placement.New(k, 5)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", k, s.Name(), s.Description())
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "MAXTRAPS\tAUTO PICKS")
	for _, n := range autoExamples {
		fmt.Fprintf(tw, "%d\t%s\n", n, placement.AutoKindFor(n))
	}

	return tw.Flush()
}
