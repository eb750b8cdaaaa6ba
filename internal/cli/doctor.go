package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/utafrali/productconsole/pkg/health"
)

func (c *console) doctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the products API, the session backend and the circuit breaker",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			report := a.Health().Run(cmd.Context())
			if err := c.emit(cmd, report, func(w io.Writer) error { return printReport(w, report) }); err != nil {
				return err
			}
			if report.Status == health.StatusDown {
				return errors.New("one or more critical checks failed")
			}
			return nil
		},
	}
}

func printReport(w io.Writer, r health.Report) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "CHECK\tSTATUS\tCRITICAL\tDURATION\tERROR")
	for _, c := range r.Checks {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\n",
			c.Name, c.Status, c.Critical, c.Duration.Round(time.Millisecond), orDash(c.Error))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nOverall: %s\n", r.Status)
	return err
}
