package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xxxsen/fuzzyac/internal/levenshtein"
)

var distanceCmd = &cobra.Command{
	Use:   "distance <a> <b>",
	Short: "Print the Levenshtein distance between two strings",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), levenshtein.Distance(args[0], args[1]))
		return err
	},
}
