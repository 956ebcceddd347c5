package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpwcollins/SlateBuilderPro/formatter"
	"github.com/jpwcollins/SlateBuilderPro/logging"
)

var priorityCmd = &cobra.Command{
	Use:   "priority",
	Short: "Export the waitlist as a priority-ordered CSV (no allocation)",
	RunE:  runPriority,
}

var priorityInput string

func init() {
	priorityCmd.Flags().StringVar(&priorityInput, "input", "", "Input waitlist CSV file (required)")
	_ = priorityCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(priorityCmd)
}

func runPriority(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)

	mode := formatter.PriorityMode(cfg.PriorityMode)
	if !mode.Valid() {
		return fmt.Errorf("priority-mode must be ttt or urgency_then_ttt (got: %s)", cfg.PriorityMode)
	}

	cases, err := loadCases(priorityInput, log)
	if err != nil {
		return err
	}
	fmt.Print(formatter.PriorityCSV(cases, mode))
	return nil
}
