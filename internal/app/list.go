package app

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/noteports/noteports/internal/monitor"
	"github.com/noteports/noteports/internal/output"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the reconciled port status once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		mon, err := newMonitor(logger)
		if err != nil {
			return err
		}

		report, err := mon.Status(context.Background(), monitor.Filter{})
		if err != nil {
			return err
		}

		if listJSON {
			s, err := output.ToJSON(report)
			if err != nil {
				return err
			}
			fmt.Println(s)
			return nil
		}
		return output.RenderTable(os.Stdout, report)
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON instead of a table")
	rootCmd.AddCommand(listCmd)
}
