// Package tui is the terminal rendition of the delivery scheduling shell.
package tui

import (
	"errors"
	"time"

	"sparkathon/models"
	"sparkathon/services/scheduling"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// NotificationTTL is how long a notification stays on screen.
const NotificationTTL = 4 * time.Second

type eventMsg scheduling.Event

type sessionClosedMsg struct{}

type clearNotificationMsg struct{ seq int }

type errMsg struct{ err error }

// Model drives one scheduling session from the keyboard.
type Model struct {
	session     *scheduling.Session
	events      <-chan scheduling.Event
	unsubscribe func()
	account     *models.User

	state        models.SchedulingState
	nameInput    textinput.Model
	addressInput textinput.Model
	editing      bool
	focus        int
	activeTab    int
	cursor       int
	notification *models.Notification
	noteSeq      int
	width        int
	quitting     bool
}

// New subscribes to session. The session is started by Init and closed on quit.
func New(session *scheduling.Session, account *models.User) Model {
	events, unsubscribe := session.Subscribe(16)
	m := Model{
		session:      session,
		events:       events,
		unsubscribe:  unsubscribe,
		account:      account,
		state:        session.Snapshot(),
		nameInput:    newInput("Customer Name: ", "Enter customer name"),
		addressInput: newInput("Delivery Address: ", "Enter delivery address"),
	}
	m.syncInputs()
	return m
}

func newInput(prompt, placeholder string) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = 120
	return in
}

// syncInputs copies the session's delivery details into the form.
func (m *Model) syncInputs() {
	m.nameInput.SetValue(m.state.CustomerName)
	m.addressInput.SetValue(m.state.Address)
}

func (m Model) Init() tea.Cmd {
	session := m.session
	return tea.Batch(
		waitForEvent(m.events),
		func() tea.Msg {
			if err := session.Start(); err != nil && !errors.Is(err, scheduling.ErrInvalidTransition) {
				return errMsg{err}
			}
			return nil
		},
	)
}

func waitForEvent(events <-chan scheduling.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return sessionClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case eventMsg:
		m.state = msg.State
		m.clampCursor()
		if !m.editing {
			m.syncInputs()
		}
		next := waitForEvent(m.events)
		if msg.Notification != nil {
			return m, tea.Batch(next, m.showNotification(*msg.Notification))
		}
		return m, next

	case sessionClosedMsg:
		return m, nil

	case clearNotificationMsg:
		if msg.seq == m.noteSeq {
			m.notification = nil
		}
		return m, nil

	case errMsg:
		return m, m.showNotification(models.Notification{
			Kind:    models.NotificationError,
			Message: msg.err.Error(),
			At:      time.Now(),
		})

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) showNotification(n models.Notification) tea.Cmd {
	m.noteSeq++
	m.notification = &n
	seq := m.noteSeq
	return tea.Tick(NotificationTTL, func(time.Time) tea.Msg {
		return clearNotificationMsg{seq: seq}
	})
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing && msg.String() != "ctrl+c" {
		return m.handleFormKey(msg)
	}
	tabs := models.Tabs()
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		m.unsubscribe()
		m.session.Close()
		return m, tea.Quit
	case "1", "2", "3":
		m.activeTab = int(msg.String()[0] - '1')
		return m, nil
	case "tab":
		m.activeTab = (m.activeTab + 1) % len(tabs)
		return m, nil
	case "shift+tab":
		m.activeTab = (m.activeTab + len(tabs) - 1) % len(tabs)
		return m, nil
	}

	if tabs[m.activeTab].ID != models.TabSchedule {
		return m, nil
	}

	switch msg.String() {
	case "e":
		m.editing = true
		m.focus = 0
		cmd := m.focusInputs()
		return m, cmd
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.state.Slots)-1 {
			m.cursor++
		}
	case "enter", " ", "space":
		if m.cursor < len(m.state.Slots) {
			// The new selection arrives as an event.
			_, _ = m.session.SelectSlot(m.state.Slots[m.cursor].ID)
		}
	case "s":
		// Validation failures are published as notifications.
		_, _ = m.session.Submit()
	case "r":
		if err := m.session.Retry(); err != nil && !errors.Is(err, scheduling.ErrInvalidTransition) {
			return m, func() tea.Msg { return errMsg{err} }
		}
	}
	return m, nil
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.state.Slots) {
		m.cursor = len(m.state.Slots) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// handleFormKey edits the delivery details. Enter saves them to the session,
// esc discards the edit.
func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.syncInputs()
		m.focusInputs()
		return m, nil
	case "tab", "shift+tab", "up", "down":
		m.focus = 1 - m.focus
		cmd := m.focusInputs()
		return m, cmd
	case "enter":
		m.editing = false
		m.focusInputs()
		if _, err := m.session.UpdateDetails(m.nameInput.Value(), m.addressInput.Value()); err != nil {
			return m, func() tea.Msg { return errMsg{err} }
		}
		return m, nil
	}
	var cmd tea.Cmd
	if m.focus == 0 {
		m.nameInput, cmd = m.nameInput.Update(msg)
	} else {
		m.addressInput, cmd = m.addressInput.Update(msg)
	}
	return m, cmd
}

// focusInputs focuses the active field while editing and blurs both otherwise.
func (m *Model) focusInputs() tea.Cmd {
	m.nameInput.Blur()
	m.addressInput.Blur()
	if !m.editing {
		return nil
	}
	if m.focus == 0 {
		return m.nameInput.Focus()
	}
	return m.addressInput.Focus()
}
