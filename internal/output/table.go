// Package output provides terminal output utilities for envlink.
//
// This package includes:
//   - Rendering of link verification reports and doctor check lines
//   - The link history table
//   - A spinner for subprocess waits
//
// Color follows fatih/color, which already honours NO_COLOR and non-TTY stdout.
package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/blackwell-systems/envlink/internal/link"
	"github.com/blackwell-systems/envlink/internal/store"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

// IsColorEnabled returns true if ANSI color codes will be emitted.
func IsColorEnabled() bool {
	return !color.NoColor
}

// Status is the outcome of a single doctor check.
type Status int

const (
	StatusOK Status = iota
	StatusWarn
	StatusFail
)

// CheckLine renders one doctor line, e.g. "✓ poetry found: /usr/bin/poetry".
func CheckLine(status Status, label, detail string) string {
	var mark string
	switch status {
	case StatusOK:
		mark = green("✓")
	case StatusWarn:
		mark = yellow("⚠")
	default:
		mark = red("✗")
	}
	if detail == "" {
		return fmt.Sprintf("%s %s\n", mark, label)
	}
	return fmt.Sprintf("%s %s: %s\n", mark, label, detail)
}

// RenderReport renders a verification report, coloring the verdict line.
func RenderReport(r link.Report) string {
	lines := strings.Split(r.String(), "\n")
	for i, line := range lines {
		switch line {
		case "OK!":
			lines[i] = green(line)
		case "NOT OK!":
			lines[i] = red(line)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

// RenderHistoryTable renders link events newest first. The project column is
// shown only when events span more than one project.
func RenderHistoryTable(events []*store.LinkEvent, showProject bool) string {
	if len(events) == 0 {
		return "No link events recorded.\n"
	}

	var sb strings.Builder

	if showProject {
		sb.WriteString(fmt.Sprintf("%-5s %-16s %-28s %-36s %s\n", "ID", "When", "Project", "Target", "Poetry"))
		sb.WriteString(strings.Repeat("─", 96))
	} else {
		sb.WriteString(fmt.Sprintf("%-5s %-16s %-44s %s\n", "ID", "When", "Target", "Poetry"))
		sb.WriteString(strings.Repeat("─", 76))
	}
	sb.WriteString("\n")

	for _, e := range events {
		toolVersion := e.ToolVersion
		if toolVersion == "" {
			toolVersion = gray("explicit")
		}
		when := formatRelativeTime(e.CreatedAt)
		if showProject {
			sb.WriteString(fmt.Sprintf("%-5d %-16s %-28s %-36s %s\n",
				e.ID, when, truncatePath(e.ProjectDir, 28), truncatePath(e.Target, 36), toolVersion))
		} else {
			sb.WriteString(fmt.Sprintf("%-5d %-16s %-44s %s\n",
				e.ID, when, truncatePath(e.Target, 44), toolVersion))
		}
	}

	return sb.String()
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// truncatePath shortens a path from the left so its most specific segments
// stay visible: "/home/me/.cache/pypoetry/virtualenvs/x" -> ".../virtualenvs/x".
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	return "..." + path[len(path)-(maxLen-3):]
}
