package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List every route in declaration order",
		Long: `Routes prints every terminal route of the compiled table: the full
pattern chain, the qualified view name and the handler reference.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, _, err := loadTable()
			if err != nil {
				return err
			}
			infos, err := table.Routes()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PATTERN\tNAME\tHANDLER")
			for _, ri := range infos {
				name := ri.ViewName
				if name == "" {
					name = "-"
				}
				handler := ri.HandlerRef
				if handler == "" {
					handler = fmt.Sprintf("%T", ri.Handler)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Pattern, name, handler)
			}
			return w.Flush()
		},
	}
}
