// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the skribe TUI.
//
// Toasts are non-blocking corner notifications that auto-dismiss, so a
// transport error never interrupts typing the next prompt.
package components

import (
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/halvard/skribe/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind is the severity of a toast notification.
type ToastKind int

const (
	// ToastStatus is an informational toast.
	ToastStatus ToastKind = iota
	// ToastError is an error toast.
	ToastError
	// ToastWarning is a warning toast.
	ToastWarning
	// ToastSuccess is a success toast.
	ToastSuccess
)

// Auto-dismiss durations. Errors linger longer so they can be read.
const (
	StatusToastDuration  = 4 * time.Second
	WarningToastDuration = 6 * time.Second
	ErrorToastDuration   = 8 * time.Second
)

// Toast is one notification.
type Toast struct {
	ID        int
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired reports whether the toast is past its dismiss time.
func (t *Toast) IsExpired() bool {
	return time.Since(t.CreatedAt) >= t.Duration
}

// TimeRemaining returns the time left before auto-dismiss.
func (t *Toast) TimeRemaining() time.Duration {
	remaining := t.Duration - time.Since(t.CreatedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// maxVisibleToasts bounds the stacked notifications on screen.
const maxVisibleToasts = 5

// ToastManager owns the active toasts. It lives on the UI model and is
// only touched from the update loop, so IDs are plain fields rather than
// process-wide counters.
type ToastManager struct {
	toasts []Toast
	nextID int
}

// NewToastManager creates an empty manager.
func NewToastManager() *ToastManager {
	return &ToastManager{nextID: 1}
}

// Add creates a toast of the given kind and returns its ID.
func (m *ToastManager) Add(kind ToastKind, message string) int {
	duration := StatusToastDuration
	switch kind {
	case ToastError:
		duration = ErrorToastDuration
	case ToastWarning:
		duration = WarningToastDuration
	}

	toast := Toast{
		ID:        m.nextID,
		Message:   message,
		Kind:      kind,
		CreatedAt: time.Now(),
		Duration:  duration,
	}
	m.nextID++

	// Newest first; drop the oldest beyond the cap.
	m.toasts = append([]Toast{toast}, m.toasts...)
	if len(m.toasts) > maxVisibleToasts {
		m.toasts = m.toasts[:maxVisibleToasts]
	}

	return toast.ID
}

// AddError adds an error toast.
func (m *ToastManager) AddError(message string) int {
	return m.Add(ToastError, message)
}

// AddStatus adds an informational toast.
func (m *ToastManager) AddStatus(message string) int {
	return m.Add(ToastStatus, message)
}

// AddSuccess adds a success toast.
func (m *ToastManager) AddSuccess(message string) int {
	return m.Add(ToastSuccess, message)
}

// Remove dismisses a toast by ID.
func (m *ToastManager) Remove(id int) {
	for i, toast := range m.toasts {
		if toast.ID == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// Tick drops expired toasts and returns what remains.
func (m *ToastManager) Tick() []Toast {
	active := m.toasts[:0]
	for _, toast := range m.toasts {
		if !toast.IsExpired() {
			active = append(active, toast)
		}
	}
	m.toasts = active
	return m.toasts
}

// Toasts returns a copy of the active toasts.
func (m *ToastManager) Toasts() []Toast {
	out := make([]Toast, len(m.toasts))
	copy(out, m.toasts)
	return out
}

// HasToasts reports whether anything is on screen.
func (m *ToastManager) HasToasts() bool {
	return len(m.toasts) > 0
}

// Clear removes all toasts.
func (m *ToastManager) Clear() {
	m.toasts = nil
}

// =============================================================================
// TOAST MESSAGES
// =============================================================================

// ToastTickMsg is sent periodically to expire toasts.
type ToastTickMsg struct {
	Time time.Time
}

// ToastTickCmd ticks the toast manager every 100ms while toasts are shown.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}

// =============================================================================
// TOAST RENDERING
// =============================================================================

// RenderToast renders one toast box.
func RenderToast(toast Toast, width int) string {
	maxWidth := 60
	if width > 0 && width-8 < maxWidth {
		maxWidth = width - 8
	}
	if maxWidth < 30 {
		maxWidth = 30
	}

	var accent lipgloss.AdaptiveColor
	var icon string
	switch toast.Kind {
	case ToastError:
		accent, icon = styles.Rose, styles.StatusIndicators.Error
	case ToastWarning:
		accent, icon = styles.Amber, styles.StatusIndicators.Warning
	case ToastSuccess:
		accent, icon = styles.Emerald, styles.StatusIndicators.Success
	default:
		accent, icon = styles.Cyan, styles.StatusIndicators.Info
	}

	iconStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)
	messageStyle := lipgloss.NewStyle().Foreground(styles.TextPrimary)

	message := wordwrap.String(toast.Message, maxWidth-10)
	content := iconStyle.Render(icon+" ") + messageStyle.Render(message)

	hintStyle := lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
	hints := []string{"[x] Dismiss"}
	if secs := int(toast.TimeRemaining().Seconds()); secs > 0 {
		hints = append(hints, strconv.Itoa(secs)+"s")
	}
	content += "\n" + hintStyle.Render(strings.Join(hints, "  "))

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 2).
		MaxWidth(maxWidth).
		Render(content)
}

// RenderToastStack stacks toasts in the bottom-right corner.
func RenderToastStack(toasts []Toast, width, height int) string {
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for _, toast := range toasts {
		rendered = append(rendered, RenderToast(toast, width))
	}

	stack := lipgloss.NewStyle().
		MarginRight(2).
		MarginBottom(1).
		Render(lipgloss.JoinVertical(lipgloss.Right, rendered...))

	if width > 0 && height > 0 {
		return lipgloss.Place(width, height, lipgloss.Right, lipgloss.Bottom, stack)
	}
	return stack
}
