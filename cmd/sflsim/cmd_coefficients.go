package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/sflsim/internal/similarity"
)

func newCoefficientsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "coefficients",
		Short: "List the available similarity coefficients",
		RunE: func(cmd *cobra.Command, args []string) error {
			all := similarity.All()

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				type entry struct {
					Name        string `json:"name"`
					Family      string `json:"family"`
					Recommended bool   `json:"recommended"`
				}
				entries := make([]entry, 0, len(all))
				for _, co := range all {
					entries = append(entries, entry{Name: co.Name, Family: string(co.Family), Recommended: co.Recommended})
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(entries)
			}

			w := cmd.OutOrStdout()
			for _, co := range all {
				mark := ""
				if !co.Recommended {
					mark = " (not recommended)"
				}
				fmt.Fprintf(w, "%-10s %-10s%s\n", co.Name, co.Family, mark)
			}
			return nil
		},
	}
}
