package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpwcollins/SlateBuilderPro/formatter"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Print a sample waitlist CSV with the recognized columns",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(formatter.Template())
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)
}
