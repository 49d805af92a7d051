package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/eduscript/internal/llm"
	"github.com/abhisek/eduscript/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show model usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}

		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		stats, err := s.EventRepo().UsageStats(context.Background())
		if err != nil {
			return fmt.Errorf("query usage stats: %w", err)
		}

		if len(stats) == 0 {
			fmt.Println("No model usage recorded yet.")
			return nil
		}

		fmt.Printf("%-12s  %-28s  %-7s  %-7s  %-10s  %-10s  %s\n",
			"Provider", "Model", "Calls", "Fails", "In", "Out", "Est. Cost")
		fmt.Println(strings.Repeat("─", 92))

		var total float64
		for _, st := range stats {
			cost := "n/a"
			if c := llm.LookupCost(st.Model); c != nil {
				v := c.Cost(int(st.InputTokens), int(st.OutputTokens))
				total += v
				cost = fmt.Sprintf("$%.4f", v)
			}
			model := st.Model
			if len(model) > 28 {
				model = model[:28]
			}
			fmt.Printf("%-12s  %-28s  %-7d  %-7d  %-10d  %-10d  %s\n",
				st.Provider, model, st.Calls, st.Failures,
				st.InputTokens, st.OutputTokens, cost)
		}

		fmt.Println(strings.Repeat("─", 92))
		fmt.Printf("Total estimated cost: $%.4f\n", total)
		return nil
	},
}
