package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/rpcore/internal/taxdata"
)

func tablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tax tables and the years each one covers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := tableLoader()
			out := cmd.OutOrStdout()
			for _, table := range taxdata.AllTables {
				years, err := loader.AvailableYears(table)
				if err != nil {
					return err
				}
				labels := make([]string, len(years))
				for i, y := range years {
					labels[i] = fmt.Sprintf("%d", y)
				}
				if len(labels) == 0 {
					labels = []string{"missing"}
				}
				fmt.Fprintf(out, "%-28s %s\n", table, strings.Join(labels, ", "))
			}
			return nil
		},
	}
}
