package tui

import (
	"fmt"
	"strings"

	"sparkathon/models"

	"github.com/charmbracelet/lipgloss"
)

const (
	brandName    = "BitSnatchers"
	shellTitle   = "Smart Delivery Management System"
	loadingText  = "AI is analyzing optimal delivery windows..."
	submittingTx = "Scheduling your delivery..."
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n\n")
	b.WriteString(m.tabsView())
	b.WriteString("\n\n")

	switch models.Tabs()[m.activeTab].ID {
	case models.TabSchedule:
		b.WriteString(m.scheduleView())
	case models.TabTracking:
		b.WriteString(placeholder("Live Tracking", "Live delivery tracking will appear here."))
	case models.TabAnalytics:
		b.WriteString(placeholder("Analytics", "Delivery analytics will appear here."))
	}

	if n := m.notification; n != nil {
		b.WriteString("\n\n")
		if n.Kind == models.NotificationSuccess {
			b.WriteString(successStyle.Render("✓ " + n.Message))
		} else {
			b.WriteString(errorStyle.Render("✗ " + n.Message))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("1-3/tab switch tabs · e edit details · ↑/↓ move · enter select · s schedule · r retry · q quit"))
	return b.String()
}

func (m Model) headerView() string {
	left := brandStyle.Render(brandName) + "  " + titleStyle.Render(shellTitle)
	if m.account == nil {
		return left
	}
	right := avatarStyle.Render(m.account.Initial()) + " " + mutedStyle.Render(m.account.Email)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) tabsView() string {
	parts := make([]string, 0, 3)
	for i, tab := range models.Tabs() {
		label := fmt.Sprintf("%d %s", i+1, tab.Label)
		if i == m.activeTab {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) detailsView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Delivery Information"))
	b.WriteString("\n")
	b.WriteString(m.nameInput.View())
	b.WriteString("\n")
	b.WriteString(m.addressInput.View())
	b.WriteString("\n")
	if m.editing {
		b.WriteString(mutedStyle.Render("enter save · esc cancel · tab next field"))
	} else {
		b.WriteString(mutedStyle.Render("press e to edit"))
	}
	return panelStyle.Render(b.String())
}

func (m Model) scheduleView() string {
	var b strings.Builder
	b.WriteString(m.detailsView())
	b.WriteString("\n")
	b.WriteString(titleStyle.Render("AI-Recommended Delivery Windows"))
	b.WriteString("\n")

	switch m.state.Phase {
	case models.PhaseIdle, models.PhaseLoading:
		b.WriteString(mutedStyle.Render(loadingText))
		return b.String()
	case models.PhaseFailed:
		if m.state.Failure != nil && m.state.Failure.Stage == models.StageLoad {
			b.WriteString(errorStyle.Render(models.MsgRecommendationFail))
			b.WriteString("\n")
			b.WriteString(mutedStyle.Render("press r to try again"))
			return b.String()
		}
	}

	for i, slot := range m.state.SlotViews() {
		b.WriteString(m.slotLine(i, slot))
		b.WriteString("\n")
	}

	if m.state.SubmissionInFlight {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(submittingTx))
	}

	b.WriteString("\n")
	b.WriteString(insightsView())
	return b.String()
}

func (m Model) slotLine(i int, slot models.SlotView) string {
	pointer := "  "
	if i == m.cursor {
		pointer = cursorStyle.Render("> ")
	}
	mark := "( )"
	window := fmt.Sprintf("%s · %s", slot.Date, slot.Time)
	if slot.Selected {
		mark = cursorStyle.Render("(•)")
		window = selectedStyle.Render(window)
	}
	rate := lipgloss.NewStyle().Foreground(tierColor(slot.Tier)).Render(slot.SuccessLabel)

	line := fmt.Sprintf("%s%s %s  %s", pointer, mark, window, rate)
	if slot.Badge != "" {
		line += "  " + badgeStyle.Render(slot.Badge)
	}
	return line + "\n      " + mutedStyle.Render(slot.Reason)
}

func insightsView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Smart Insights"))
	for _, in := range models.Insights() {
		b.WriteString("\n")
		b.WriteString(selectedStyle.Render(in.Title))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(in.Detail))
	}
	return panelStyle.Render(b.String())
}

func placeholder(title, body string) string {
	return panelStyle.Render(titleStyle.Render(title) + "\n" + mutedStyle.Render(body))
}
