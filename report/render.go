package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

const nameWidth = 24

var (
	headerColor  = color.New(color.Bold, color.FgCyan)
	okColor      = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	problemColor = color.New(color.FgRed)
	pinMark      = color.New(color.FgMagenta).Sprint("*")
)

// WriteText renders the report as aligned text tables.
//
// Color is applied through fatih/color, which disables itself automatically
// when the writer is not a terminal, so piping output to a file yields
// plain text.
func (r *Report) WriteText(w io.Writer) error {
	if r.Method != "" {
		headerColor.Fprintf(w, "Assignment results (%s)\n\n", r.Method)
	} else {
		headerColor.Fprintln(w, "Assignment results")
		fmt.Fprintln(w)
	}

	if err := r.writeAssignments(w); err != nil {
		return err
	}
	if err := r.writeTPMs(w); err != nil {
		return err
	}
	r.writeIssues(w)
	r.writeSummary(w)

	return nil
}

func (r *Report) writeAssignments(w io.Writer) error {
	headerColor.Fprintln(w, "Assignments")

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROGRAM\tTPM\tTZ GAP\tSCORE\t")
	for _, row := range r.Assignments {
		name := abbreviate(row.ProgramName, nameWidth)
		if row.Fixed {
			name += pinMark
		}
		fmt.Fprintf(tw, "%s\t%s\t%.1fh\t%.3f\t\n",
			name, abbreviate(row.TPMName, nameWidth), row.TimezoneGapHours, row.Score)
	}
	for _, progID := range r.Unassigned {
		fmt.Fprintf(tw, "%s\t%s\t\t\t\n", progID, problemColor.Sprint("UNASSIGNED"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)

	return nil
}

func (r *Report) writeTPMs(w io.Writer) error {
	headerColor.Fprintln(w, "TPM utilization")

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TPM\tLEVEL\tTIMEZONE\tLOAD\tUTIL\tPROGRAMS\t")
	for _, row := range r.TPMs {
		util := fmt.Sprintf("%.0f%%", percent(row.Utilization()))
		switch {
		case row.Overloaded():
			util = problemColor.Sprint(util)
		case len(row.Programs) == 0:
			util = warnColor.Sprint(util)
		default:
			util = okColor.Sprint(util)
		}
		fmt.Fprintf(tw, "%s\tL%d\t%s\t%.2f/%.2f\t%s\t%s\t\n",
			abbreviate(row.Name, nameWidth), row.Level, row.Timezone,
			row.Load, row.AvailableTime, util, strings.Join(row.Programs, ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)

	return nil
}

func (r *Report) writeIssues(w io.Writer) {
	if len(r.FixedIssues) == 0 {
		return
	}

	headerColor.Fprintln(w, "Fixed assignment issues")
	for _, issue := range r.FixedIssues {
		fmt.Fprintf(w, "  %s %s\n", warnColor.Sprint("!"), issue)
	}
	fmt.Fprintln(w)
}

func (r *Report) writeSummary(w io.Writer) {
	s := r.Summary

	headerColor.Fprintln(w, "Summary")
	fmt.Fprintf(w, "  Coverage:            %d/%d programs (%.0f%%)\n",
		s.AssignedPrograms, s.TotalPrograms, percent(s.Coverage()))
	fmt.Fprintf(w, "  Mean utilization:    %.0f%%\n", percent(s.MeanUtilization))
	fmt.Fprintf(w, "  Unused TPMs:         %d/%d\n", s.UnusedTPMs, s.TotalTPMs)
	fmt.Fprintf(w, "  Avg timezone gap:    %.1fh\n", s.AvgTimezoneSpread)
	fmt.Fprintf(w, "  Timezone respect:    %.0f%%\n", percent(s.TimezoneRespect()))
	fmt.Fprintf(w, "  Portfolio diversity: %.1f per active TPM\n", s.AvgPortfolioDiversity)

	violations := func(n int, label string) string {
		line := fmt.Sprintf("%d %s", n, label)
		if n > 0 {
			return problemColor.Sprint(line)
		}

		return okColor.Sprint(line)
	}
	fmt.Fprintf(w, "  Hard violations:     %s\n", violations(s.OverloadedTPMs, "overloaded TPMs"))
	fmt.Fprintf(w, "  Timezone stretches:  %s\n", violations(s.TimezoneViolations, "beyond max spread"))
	fmt.Fprintf(w, "  Portfolio overflow:  %s\n", violations(s.PortfolioViolations, "past the cap"))

	if len(r.Objectives) > 0 {
		parts := make([]string, 0, len(r.Objectives))
		for _, o := range r.Objectives {
			parts = append(parts, fmt.Sprintf("%s %.1f", o.Name, o.Score))
		}
		fmt.Fprintf(w, "  Objective scores:    %s\n", strings.Join(parts, ", "))
	}
}
