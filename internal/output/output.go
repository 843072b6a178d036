// Package output renders a status report for one-shot command-line use.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/noteports/noteports/pkg/model"
)

// ToJSON renders the report as indented JSON.
func ToJSON(r model.StatusReport) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// RenderTable writes an aligned text table of the report.
func RenderTable(w io.Writer, r model.StatusReport) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PORT\tPROTO\tSTATUS\tSERVICE\tPROCESS\tPID\tNOTE")
	for _, row := range r.Ports {
		pid := ""
		if row.PID > 0 {
			pid = fmt.Sprintf("%d", row.PID)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			row.Port, row.Protocol, row.State, row.ServiceName, row.Process, pid, row.Note)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d in use (%d TCP, %d UDP)\n", r.TotalUsed, r.TCPUsed, r.UDPUsed)
	return err
}
