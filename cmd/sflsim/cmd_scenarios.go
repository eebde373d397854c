package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/sflsim/internal/simulation"
)

func newScenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the built-in scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			type entry struct {
				Name        string `json:"name"`
				Description string `json:"description"`
				Components  int    `json:"components"`
				Links       int    `json:"links"`
			}
			var entries []entry
			for _, name := range simulation.BuiltinNames() {
				sc, err := simulation.Builtin(name)
				if err != nil {
					return err
				}
				entries = append(entries, entry{
					Name:        sc.Name,
					Description: sc.Description,
					Components:  len(sc.Components),
					Links:       len(sc.Links),
				})
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(entries)
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %2d components, %2d links  %s\n", e.Name, e.Components, e.Links, e.Description)
			}
			return nil
		},
	}
}
