package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grinzing/jukei-line-yesterday/pkg/rules"
)

// rulesCmd inspects a rule source offline: how many rows loaded, which rows
// are triggers, and which rows would be skipped during expansion.
var rulesCmd = &cobra.Command{
	Use:   "rules <csv-path>",
	Short: "Inspect and validate a rule table",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		table, err := rules.Load(args[0], slog.Default())
		if err != nil {
			fmt.Printf("failed to load rule table: %v\n", err)
			return
		}

		fmt.Printf("%d rules loaded from %s\n", table.Len(), table.Source)
		for i, rule := range table.Rules {
			fmt.Println(describeRule(i, rule))
		}
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

// describeRule renders one table row for terminal output.
func describeRule(index int, rule rules.Rule) string {
	role := "continuation"
	if rule.IsTrigger() {
		role = "trigger " + strings.Join(rule.Variants(), ", ")
	}

	note := ""
	if !rule.Renderable() {
		note = " [not renderable]"
	}

	return fmt.Sprintf("%3d  %-12s %s%s", index, rule.Type, role, note)
}
