package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jan-sykora/api-demo/internal/api"
	"github.com/jan-sykora/api-demo/internal/gallery"
)

const (
	emptyGallery   = "No images uploaded yet"
	pendingLabel   = "Classifying..."
	emptyEvents    = "No events found"
	loadingEvents  = "Loading events..."
	failedEvents   = "Failed to load events. Is the server running?"
	missingValue   = "-"
	timestampStyle = "2006-01-02 15:04:05"
)

var eventHeaders = []string{"Name", "Subject", "Source", "Action", "Duration", "Created"}

// RenderGallery lists the gallery newest first.
func RenderGallery(th Theme, state gallery.State) string {
	if len(state.Items) == 0 {
		return th.Empty.Render(emptyGallery)
	}
	var b strings.Builder
	for i, item := range state.Items {
		if i > 0 {
			b.WriteByte('\n')
		}
		label := th.Pending.Render(pendingLabel)
		if !item.Pending() {
			label = th.Classification.Render(item.Classification)
		}
		fmt.Fprintf(&b, "%s  %s  %s", th.Name.Render(item.ID), item.Name, label)
	}
	return b.String()
}

// RenderEvents draws events as a table in local time.
func RenderEvents(th Theme, events []*api.Event) string {
	if len(events) == 0 {
		return th.Empty.Render(emptyEvents)
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(th.Border).
		Headers(eventHeaders...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return th.Header
			case col == 0:
				return th.Name
			case col == 4:
				return th.Duration
			default:
				return th.Cell
			}
		})
	for _, ev := range events {
		t.Row(ev.Name, ev.Subject, ev.Source, ev.Action, FormatDuration(ev.ExecutionDuration), FormatTimestamp(ev.CreateTime))
	}
	return t.Render()
}

// FormatDuration prints whole milliseconds, e.g. 1500ms.
func FormatDuration(d *api.Duration) string {
	if d == nil {
		return missingValue
	}
	ms := float64(d.Duration) / float64(time.Millisecond)
	return fmt.Sprintf("%.0fms", ms)
}

func FormatTimestamp(ts *api.Timestamp) string {
	if ts == nil || ts.IsZero() {
		return missingValue
	}
	return ts.Local().Format(timestampStyle)
}
