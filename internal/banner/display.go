// Package banner provides colored banner display functions for the sqlverify CLI.
//
// Banners mark the start of a run, the selected winner, a run without a
// winner and interruptions. They write to the supplied writer so the
// orchestrator can keep stdout free for the selected SQL.
package banner

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/CodexForgeBR/sqlverify/internal/logging"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold).SprintFunc()
	successColor = color.New(color.FgGreen, color.Bold).SprintFunc()
	errorColor   = color.New(color.FgRed, color.Bold).SprintFunc()
	warnColor    = color.New(color.FgYellow, color.Bold).SprintFunc()
)

const rule = "═══════════════════════════════════════════════════"

// StartupInfo is the run description shown by PrintStartupBanner.
type StartupInfo struct {
	RunID      string
	Provider   string
	Model      string
	JudgeModel string
	TaskFile   string
	Verifiers  []string
	Candidates int
}

// PrintStartupBanner displays the startup banner with run info.
//
// Example output:
//
//	═══════════════════════════════════════════════════
//	  sqlverify - NL-to-SQL Candidate Verification
//	═══════════════════════════════════════════════════
//	  Run:        0b7c...
//	  Provider:   anthropic
//	  Model:      claude-sonnet-4-5
//	  Judge:      claude-sonnet-4-5
//	  Task:       task.json (4 candidates)
//	  Verifiers:  mock_db -> reverse
//	═══════════════════════════════════════════════════
func PrintStartupBanner(w io.Writer, info StartupInfo) {
	sep := headerColor(rule)
	fmt.Fprintln(w, sep)
	fmt.Fprintln(w, headerColor("  sqlverify - NL-to-SQL Candidate Verification"))
	fmt.Fprintln(w, sep)
	fmt.Fprintf(w, "  Run:        %s\n", info.RunID)
	fmt.Fprintf(w, "  Provider:   %s\n", info.Provider)
	fmt.Fprintf(w, "  Model:      %s\n", info.Model)
	fmt.Fprintf(w, "  Judge:      %s\n", info.JudgeModel)
	fmt.Fprintf(w, "  Task:       %s (%d candidates)\n", info.TaskFile, info.Candidates)
	fmt.Fprintf(w, "  Verifiers:  %s\n", strings.Join(info.Verifiers, " -> "))
	fmt.Fprintln(w, sep)
}

// PrintWinnerBanner displays the selected candidate.
func PrintWinnerBanner(w io.Writer, bucket, sql string, durationSecs int) {
	sep := successColor(rule)
	fmt.Fprintln(w, sep)
	fmt.Fprintln(w, successColor("  ✓ Candidate selected"))
	fmt.Fprintf(w, "  Bucket:     %s\n", bucket)
	fmt.Fprintf(w, "  Duration:   %s (%ds)\n", logging.FormatDuration(durationSecs), durationSecs)
	fmt.Fprintln(w, "  SQL:")
	for _, line := range strings.Split(sql, "\n") {
		fmt.Fprintf(w, "    %s\n", line)
	}
	fmt.Fprintln(w, sep)
}

// PrintNoWinnerBanner displays a run that ended without a candidate.
func PrintNoWinnerBanner(w io.Writer, reason string) {
	sep := errorColor(rule)
	fmt.Fprintln(w, sep)
	fmt.Fprintln(w, errorColor("  ✗ NO CANDIDATE SELECTED"))
	fmt.Fprintln(w, sep)
	if reason != "" {
		fmt.Fprintln(w, "  Reason:")
		fmt.Fprintf(w, "  %s\n", reason)
		fmt.Fprintln(w, sep)
	}
}

// PrintInterruptedBanner displays when the run is interrupted.
func PrintInterruptedBanner(w io.Writer, stage string) {
	sep := warnColor(rule)
	fmt.Fprintln(w, sep)
	fmt.Fprintln(w, warnColor("  ⚠ Run interrupted"))
	fmt.Fprintf(w, "  Stage:      %s\n", stage)
	fmt.Fprintln(w, sep)
}

// PrintErrorSummary lists the last diagnostic recorded per component.
// Components are printed in the given order; components without a
// diagnostic are skipped.
func PrintErrorSummary(w io.Writer, order []string, errs map[string]string) {
	var printed bool
	for _, component := range order {
		msg := errs[component]
		if msg == "" {
			continue
		}
		if !printed {
			fmt.Fprintln(w, strings.Repeat("─", 50))
			fmt.Fprintln(w, warnColor("  Diagnostics"))
			printed = true
		}
		fmt.Fprintf(w, "  %s: %s\n", component, msg)
	}
	if printed {
		fmt.Fprintln(w, strings.Repeat("─", 50))
	}
}
