// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"

	"github.com/elastic/execlog/internal/es/executions"
)

type displayColumn struct {
	Label string
	Width int // 0 = flex
	Value func(*executions.RuleExecutionResult) string
}

type tableRenderer struct {
	columns []displayColumn
	widths  []int
	sep     string
	color   bool
}

var (
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	partialStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
)

func newTableRenderer(totalWidth int, color bool) *tableRenderer {
	cols := executionColumns()
	return &tableRenderer{
		columns: cols,
		widths:  computeColumnWidths(cols, totalWidth),
		sep:     " ",
		color:   color,
	}
}

func executionColumns() []displayColumn {
	return []displayColumn{
		{Label: "TIMESTAMP", Width: 24, Value: func(r *executions.RuleExecutionResult) string { return r.Timestamp }},
		{Label: "STATUS", Width: 15, Value: func(r *executions.RuleExecutionResult) string { return string(displayStatus(r)) }},
		{Label: "DURATION", Width: 10, Value: func(r *executions.RuleExecutionResult) string { return formatMs(r.DurationMs) }},
		{Label: "SEARCH", Width: 10, Value: func(r *executions.RuleExecutionResult) string { return formatMs(r.SearchDurationMs) }},
		{Label: "INDEXING", Width: 10, Value: func(r *executions.RuleExecutionResult) string { return formatMs(r.IndexingDurationMs) }},
		{Label: "GAP", Width: 8, Value: func(r *executions.RuleExecutionResult) string { return formatSeconds(r.GapDurationS) }},
		{Label: "ACTIONS", Width: 9, Value: formatActions},
		{Label: "EXECUTION", Width: 36, Value: func(r *executions.RuleExecutionResult) string { return r.ExecutionUUID }},
		{Label: "MESSAGE", Width: 0, Value: displayMessage},
	}
}

func computeColumnWidths(columns []displayColumn, totalWidth int) []int {
	if totalWidth <= 0 {
		totalWidth = 80
	}
	widths := make([]int, len(columns))
	separators := len(columns) - 1
	if separators < 0 {
		separators = 0
	}
	fixed := 0
	flexIdx := -1
	for i, col := range columns {
		if col.Width > 0 {
			fixed += col.Width
		} else if flexIdx < 0 {
			flexIdx = i
		}
	}
	available := totalWidth - fixed - separators
	if available < 10 {
		available = 10
	}
	for i, col := range columns {
		switch {
		case col.Width > 0:
			widths[i] = col.Width
		case i == flexIdx:
			widths[i] = available
		default:
			widths[i] = 10
		}
	}
	return widths
}

func detectTerminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	if env := os.Getenv("COLUMNS"); env != "" {
		if val, err := strconv.Atoi(env); err == nil && val > 0 {
			return val
		}
	}
	return 80
}

// Render writes a summary line followed by one row per execution.
func (t *tableRenderer) Render(w io.Writer, rr ruleResults) {
	fmt.Fprintf(w, "Rule %s: %d executions\n", rr.RuleID, rr.Total)
	if len(rr.Events) == 0 {
		fmt.Fprintln(w, "  no executions in range")
		return
	}

	parts := make([]string, len(t.columns))
	for i, col := range t.columns {
		parts[i] = padOrTruncate(col.Label, t.widths[i])
	}
	header := strings.TrimRight(strings.Join(parts, t.sep), " ")
	if t.color {
		header = headerStyle.Render(header)
	}
	fmt.Fprintln(w, header)

	for i := range rr.Events {
		ev := &rr.Events[i]
		for j, col := range t.columns {
			value := strings.NewReplacer("\n", " ", "\r", " ").Replace(col.Value(ev))
			parts[j] = padOrTruncate(value, t.widths[j])
			if t.color && col.Label == "STATUS" {
				parts[j] = statusStyle(displayStatus(ev)).Render(parts[j])
			}
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, t.sep), " "))
	}
}

func statusStyle(s executions.RuleExecutionStatus) lipgloss.Style {
	switch s {
	case executions.StatusFailed:
		return failedStyle
	case executions.StatusPartialFailure:
		return partialStyle
	case executions.StatusSucceeded:
		return okStyle
	default:
		return lipgloss.NewStyle()
	}
}

// displayStatus prefers the security status over the platform outcome.
func displayStatus(r *executions.RuleExecutionResult) executions.RuleExecutionStatus {
	if r.SecurityStatus != "" {
		return r.SecurityStatus
	}
	if s, ok := executions.MapPlatformStatusToRuleExecutionStatus(r.Status); ok {
		return s
	}
	return executions.RuleExecutionStatus(r.Status)
}

func displayMessage(r *executions.RuleExecutionResult) string {
	msg := r.SecurityMessage
	if msg == "" {
		msg = r.Message
	}
	if r.TimedOut {
		msg = "[timed out] " + msg
	}
	if r.Backfill != nil {
		msg = fmt.Sprintf("[backfill %s..%s] %s", r.Backfill.From, r.Backfill.To, msg)
	}
	return strings.TrimSpace(msg)
}

func formatMs(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "ms"
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "s"
}

func formatActions(r *executions.RuleExecutionResult) string {
	return fmt.Sprintf("%d/%d/%d", r.NumSucceededActions, r.NumErroredActions, r.NumTriggeredActions)
}

// padOrTruncate fits value to width terminal cells.
func padOrTruncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	w := lipgloss.Width(value)
	if w > width {
		return ansi.Truncate(value, width, "")
	}
	return value + strings.Repeat(" ", width-w)
}

// printResults writes results in the requested format.
func printResults(w io.Writer, format string, results []ruleResults, table *tableRenderer) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case outputYAML:
		return writeYAML(w, results)
	default:
		for i, rr := range results {
			if i > 0 {
				fmt.Fprintln(w)
			}
			table.Render(w, rr)
		}
		return nil
	}
}
