package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/eduscript/internal/script"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a teaching-script JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}

		var candidate any
		if err := json.Unmarshal(data, &candidate); err != nil {
			return fmt.Errorf("parse JSON: %w", err)
		}

		allowExtra, _ := cmd.Flags().GetBool("allow-extra-sections")
		v := script.NewValidator()
		v.AllowExtraSections = allowExtra

		violations := v.Validate(candidate)
		if len(violations) == 0 {
			fmt.Printf("%s: valid (schema version %s)\n", args[0], script.SchemaVersion)
			return nil
		}

		fmt.Printf("%s: %d violation(s)\n", args[0], len(violations))
		for _, viol := range violations {
			fmt.Printf("  %s\n", viol)
		}
		os.Exit(1)
		return nil
	},
}

func init() {
	validateCmd.Flags().Bool("allow-extra-sections", false, "Accept unknown top-level sections")
}
