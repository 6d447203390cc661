package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"task-planner/internal/config"
	"task-planner/internal/domain"
)

const shortIDLength = 8

// Renderer formats tasks for terminal output. Priority colors follow
// domain.Priority.Color and are dropped when color is disabled.
type Renderer struct {
	display config.DisplayConfig
	lg      *lipgloss.Renderer

	doneStyle    lipgloss.Style
	dimStyle     lipgloss.Style
	warningStyle lipgloss.Style
	headerStyle  lipgloss.Style
}

// NewRenderer creates a renderer writing to out
func NewRenderer(out io.Writer, display config.DisplayConfig) *Renderer {
	lg := lipgloss.NewRenderer(out)
	return &Renderer{
		display:      display,
		lg:           lg,
		doneStyle:    lg.NewStyle().Foreground(lipgloss.Color("245")).Strikethrough(true),
		dimStyle:     lg.NewStyle().Foreground(lipgloss.Color("245")),
		warningStyle: lg.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		headerStyle:  lg.NewStyle().Bold(true),
	}
}

func (r *Renderer) render(style lipgloss.Style, text string) string {
	if !r.display.Color {
		return text
	}
	return style.Render(text)
}

func (r *Renderer) priority(p domain.Priority, text string) string {
	return r.render(r.lg.NewStyle().Foreground(lipgloss.Color(p.Color())), text)
}

// FormatTime formats t with the configured date layout
func (r *Renderer) FormatTime(t time.Time) string {
	return t.Format(r.display.DateFormat)
}

// FormatDue formats d in the location of now
func (r *Renderer) FormatDue(d domain.DueDate, now time.Time) string {
	return d.Format(r.display.DateFormat, now.Location())
}

// ShortID returns the leading characters of id used in listings
func ShortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}

// TaskLine renders one list row: position, check box, title and a summary
// of priority, due date and reminder state.
func (r *Renderer) TaskLine(pos int, item domain.TaskItem, now time.Time) string {
	check := "[ ]"
	title := item.Title
	if item.IsCompleted {
		check = "[x]"
		title = r.render(r.doneStyle, title)
	}

	meta := []string{r.priority(item.Priority, item.Priority.Title())}
	if !item.DueDate.IsZero() {
		due := "due " + r.FormatDue(item.DueDate, now)
		if !item.IsCompleted && !item.DueDateIsValid(now) {
			due = r.render(r.warningStyle, due+" (overdue)")
		}
		meta = append(meta, due)
	}
	switch {
	case item.ReminderActive(now):
		meta = append(meta, "reminder")
	case item.ReminderExpired(now):
		meta = append(meta, r.render(r.dimStyle, "reminder expired"))
	}

	return fmt.Sprintf("%3d. %s %s  (%s)  %s", pos, check, title, strings.Join(meta, ", "), r.render(r.dimStyle, ShortID(item.ID)))
}

// Details renders every field of item
func (r *Renderer) Details(item domain.TaskItem, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", r.render(r.headerStyle, item.Title))
	fmt.Fprintf(&b, "  ID:          %s\n", item.ID)
	if item.Description != "" {
		fmt.Fprintf(&b, "  Description: %s\n", item.Description)
	}
	fmt.Fprintf(&b, "  Priority:    %s\n", r.priority(item.Priority, item.Priority.Title()))

	status := "open"
	if item.IsCompleted {
		status = "completed"
	}
	fmt.Fprintf(&b, "  Status:      %s\n", status)

	due := "none"
	if !item.DueDate.IsZero() {
		due = r.FormatDue(item.DueDate, now)
	}
	fmt.Fprintf(&b, "  Due:         %s\n", due)

	reminder := "off"
	switch {
	case item.ReminderActive(now):
		reminder = "on"
	case item.ReminderExpired(now):
		reminder = "expired"
	}
	fmt.Fprintf(&b, "  Reminder:    %s\n", reminder)

	return b.String()
}
