package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/xenking/velostore/internal/search"
)

func newSearchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search bikes and help pages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.openCatalog()
			if err != nil {
				return err
			}
			results, err := search.NewIndex(c, c).Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printResults(cmd.OutOrStdout(), results)
		},
	}
}
