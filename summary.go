package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgnsrekt/voxcue/internal/batch"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"
)

// printSummary writes one line per unit followed by totals. Styles are only
// applied when styled is set, e.g. when stdout is a terminal.
func printSummary(w io.Writer, report *batch.Report, styled bool) {
	if report == nil {
		return
	}
	_, _ = fmt.Fprint(w, renderSummary(report, styled))
}

func renderSummary(report *batch.Report, styled bool) string {
	render := func(s interface{ Render(...string) string }, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	b.WriteString(render(headingStyle, "voxcue"))
	b.WriteString(" " + render(subtleStyle, "run "+report.RunID) + "\n\n")

	for _, res := range report.Results() {
		var status string
		switch res.Status {
		case batch.StatusOK:
			status = render(okStyle, "ok  ")
		case batch.StatusFailed:
			status = render(failStyle, "fail")
		default:
			status = render(skipStyle, "skip")
		}

		unit := res.Document
		if res.Line > 0 {
			unit = fmt.Sprintf("%s#%d", res.Document, res.Line)
		}
		fmt.Fprintf(&b, "  %s %-7s %-24s %s", status, res.Kind, res.Voice, unit)

		switch {
		case res.Status == batch.StatusOK:
			detail := filepath.ToSlash(res.Path) + " " + humanize.Bytes(uint64(res.Size))
			if res.Cached {
				detail += " cached"
			}
			b.WriteString("  " + render(subtleStyle, detail))
		case res.Err != nil:
			b.WriteString("  " + truncate.StringWithTail(res.Err.Error(), 120, "…"))
		case res.Reason != "":
			b.WriteString("  " + render(subtleStyle, res.Reason))
		}
		b.WriteByte('\n')
	}

	s := report.Summary()
	fmt.Fprintf(&b, "\n  %s succeeded, %s failed, %s skipped, %d cached, %s written\n",
		render(okStyle, fmt.Sprint(s.Succeeded)),
		render(failStyle, fmt.Sprint(s.Failed)),
		render(skipStyle, fmt.Sprint(s.Skipped)),
		s.Cached, humanize.Bytes(uint64(s.Bytes)))
	return b.String()
}
