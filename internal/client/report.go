// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MKhiriev/go-task-sync/models"
)

var (
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle   = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Faint(true).Width(14)
	okStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	conflictLine = lipgloss.NewStyle().PaddingLeft(2)
)

// renderReport formats the outcome of a one-shot sync together with the
// device status read after it.
func renderReport(result models.SyncResult, status models.SyncStatusReport) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Sync report"))
	b.WriteString("\n\n")

	row(&b, "Outcome", outcomeStyle(result.Status).Render(string(result.Status)))
	if result.Status == models.SyncStatusSuccess || result.Status == models.SyncStatusConflict {
		row(&b, "Pushed", fmt.Sprint(result.Pushed))
		row(&b, "Pulled", fmt.Sprint(result.Pulled))
		row(&b, "Resolved", fmt.Sprint(result.ConflictsResolved))
	}
	if msg := reportMessage(result); msg != "" {
		row(&b, "Message", msg)
	}
	if result.WillRetry && status.NextRetryAt != nil {
		row(&b, "Next retry", status.NextRetryAt.Local().Format(time.DateTime))
	}

	row(&b, "Device", deviceLabel(status))
	row(&b, "Pending", fmt.Sprint(status.PendingOperations))
	if status.LastSyncAt != nil {
		row(&b, "Last sync", status.LastSyncAt.Local().Format(time.DateTime))
	} else {
		row(&b, "Last sync", "never")
	}

	if len(result.Conflicts) > 0 {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render(fmt.Sprintf("%d conflict(s) need attention", len(result.Conflicts))))
		for _, c := range result.Conflicts {
			b.WriteString("\n")
			b.WriteString(conflictLine.Render("- " + c.EntityID))
		}
	}

	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func row(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(label))
	b.WriteString(value)
	b.WriteString("\n")
}

func outcomeStyle(status models.SyncStatus) lipgloss.Style {
	switch status {
	case models.SyncStatusSuccess:
		return okStyle
	case models.SyncStatusConflict, models.SyncStatusAlreadyRunning:
		return warnStyle
	default:
		return failStyle
	}
}

func reportMessage(result models.SyncResult) string {
	if result.Message != "" {
		return result.Message
	}
	return result.Error
}

func deviceLabel(status models.SyncStatusReport) string {
	name := valueOrNA(status.DeviceName)
	if status.DeviceID == "" {
		return name
	}
	return name + " (" + status.DeviceID + ")"
}

func valueOrNA(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "N/A"
	}
	return v
}
