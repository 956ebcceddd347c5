package main

import (
	"os"

	"github.com/spf13/cobra"
)

// cfg holds the flag-driven runtime configuration shared by subcommands.
// The engine itself takes no configuration beyond its fixed lookup tables.
var cfg struct {
	LogFormat    string
	PriorityMode string
	Surgeon      string
}

var rootCmd = &cobra.Command{
	Use:   "slateplan",
	Short: "Surgical waitlist → operating-day slate planner",
	Long: "Normalizes a CSV waitlist of pending procedures and fills one or more " +
		"operating-day blocks with the highest-value case selection.",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&cfg.PriorityMode, "priority-mode", "urgency_then_ttt", "Export ordering: ttt or urgency_then_ttt")
	pf.StringVar(&cfg.Surgeon, "surgeon", "", "Restrict the pool to one surgeon ID before planning")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
