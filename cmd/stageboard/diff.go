package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/stageboard/internal/datasource"
)

var errSourcesDiffer = errors.New("sources differ")

func newDiffCmd(a *app) *cobra.Command {
	var fail bool

	cmd := &cobra.Command{
		Use:   "diff <source-a> <source-b>",
		Short: "Compare the tiles two snapshots build",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			buildOpts, err := a.cfg.ViewModelOptions()
			if err != nil {
				return err
			}
			srcA, err := datasource.SourceFromPath(a.cfg.ResolveSource(args[0]))
			if err != nil {
				return err
			}
			srcB, err := datasource.SourceFromPath(a.cfg.ResolveSource(args[1]))
			if err != nil {
				return err
			}
			diff, err := datasource.CompareSources(srcA, srcB, buildOpts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), diff.Summary())
			if fail && diff.HasInconsistencies() {
				return errSourcesDiffer
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&fail, "fail", false, "exit non-zero when the sources differ")
	return cmd
}
