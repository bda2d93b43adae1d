package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTokensCommand(root *rootOptions) *cobra.Command {
	var globs []string
	cmd := &cobra.Command{
		Use:   "tokens [files...]",
		Short: "Estimate token and chunk counts without calling a model",
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := collectJobs(args, globs, nil)
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				return cmd.Help()
			}
			svc, _, _, err := newService(root)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FILE\tTOKENS\tCHUNKS")
			for _, j := range jobs {
				data, err := os.ReadFile(j.path)
				if err != nil {
					return err
				}
				est, err := svc.Estimate(cmd.Context(), string(data))
				if err != nil {
					return fmt.Errorf("%s: %w", j.name, err)
				}
				fmt.Fprintf(tw, "%s\t%d\t%d\n", j.name, est.Tokens, est.Chunks)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringSliceVarP(&globs, "glob", "g", nil, "glob of transcript files, ** supported (repeatable)")
	return cmd
}
