package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/meikuraledutech/canvas"
	"github.com/spf13/cobra"
)

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List the reply personas",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SLOT\tID\tNAME\tROLE")
		for i, p := range canvas.Personas() {
			fmt.Fprintf(w, "%d\t%s\t%s %s\t%s\n", i, p.ID, p.ShortLabel, p.Name, p.Role)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(personasCmd)
}
