// Package tui is the interactive airline menu: pick an operation, fill in
// its form, see the result, repeat.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/marshallshelly/airline/pkg/airline"
	"github.com/marshallshelly/airline/pkg/runtime"
)

// Operations is the part of *airline.Service the menu drives.
type Operations interface {
	AddPlane(ctx context.Context, in airline.PlaneInput) (airline.Plane, error)
	AddPilot(ctx context.Context, in airline.PilotInput) (airline.Pilot, error)
	AddFlight(ctx context.Context, in airline.FlightInput) (airline.Flight, error)
	AddTechnician(ctx context.Context, in airline.TechnicianInput) (airline.Technician, error)
	AddCustomer(ctx context.Context, in airline.CustomerInput) (airline.Customer, error)
	AddRepair(ctx context.Context, in airline.RepairInput) (airline.Repair, error)
	BookFlight(ctx context.Context, customerID, fnum int) (airline.Reservation, error)
	ListAvailableSeats(ctx context.Context, fnum int, departure time.Time) (int, error)
	ListRepairsPerPlane(ctx context.Context) ([]airline.PlaneRepairCount, error)
	ListRepairsPerYear(ctx context.Context) ([]airline.YearRepairCount, error)
	CountPassengersWithStatus(ctx context.Context, fnum int, status airline.ReservationStatus) (int, error)
}

type mode int

const (
	modeMenu mode = iota
	modeForm
	modeConfirm
	modeRunning
	modeResult
	modeError
)

type resultMsg struct {
	title string
	body  string
}

type failedMsg struct {
	err error
}

// Model is the bubbletea model for the airline menu.
type Model struct {
	ctx     context.Context
	ops     Operations
	mode    mode
	menu    list.Model
	form    *Form
	confirm ConfirmationDialog
	result  resultMsg
	err     error
	width   int
	height  int
}

// New creates the menu model. ctx bounds every operation it runs.
func New(ctx context.Context, ops Operations) Model {
	l := list.New(menuItems(), menuDelegate{}, 72, 24)
	l.Title = "Airline Management"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle

	return Model{ctx: ctx, ops: ops, mode: modeMenu, menu: l}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.menu.SetSize(msg.Width-4, msg.Height-4)
		return m, nil

	case resultMsg:
		m.mode = modeResult
		m.result = msg
		m.form = nil
		return m, nil

	case failedMsg:
		var ve *runtime.ValidationError
		if errors.As(msg.err, &ve) && m.form != nil {
			m.mode = modeForm
			m.form.Fail(msg.err)
			return m, nil
		}
		m.mode = modeError
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	if m.mode == modeMenu {
		var cmd tea.Cmd
		m.menu, cmd = m.menu.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeMenu:
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "enter":
			item, ok := m.menu.SelectedItem().(menuItem)
			if !ok {
				return m, nil
			}
			return m.start(item.action)
		}
		var cmd tea.Cmd
		m.menu, cmd = m.menu.Update(msg)
		return m, cmd

	case modeForm:
		if msg.String() == "esc" {
			m.mode = modeMenu
			m.form = nil
			return m, nil
		}
		cmd, submitted := m.form.Update(msg)
		if submitted {
			m.mode = modeRunning
		}
		return m, cmd

	case modeConfirm:
		if msg.String() == "esc" {
			m.mode = modeMenu
			return m, nil
		}
		answered, yes := m.confirm.Update(msg)
		if !answered {
			return m, nil
		}
		m.form = m.bookForm(yes)
		m.mode = modeForm
		return m, nil

	case modeResult, modeError:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "enter", "esc", " ":
			m.mode = modeMenu
			m.err = nil
			return m, nil
		}
	}

	return m, nil
}

// start opens the form for an action, or runs it directly when it takes
// no input.
func (m Model) start(a action) (tea.Model, tea.Cmd) {
	switch a {
	case actionBookFlight:
		m.confirm = NewConfirmationDialog("Book Flight", "Create new customer?")
		m.mode = modeConfirm
		return m, nil
	case actionRepairsPerPlane:
		m.mode = modeRunning
		return m, m.repairsPerPlane()
	case actionRepairsPerYear:
		m.mode = modeRunning
		return m, m.repairsPerYear()
	}

	m.form = m.formFor(a)
	if m.form == nil {
		return m, nil
	}
	m.mode = modeForm
	return m, nil
}

// View renders the UI
func (m Model) View() string {
	switch m.mode {
	case modeMenu:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.menu.View(),
			helpLine("↑/↓", "navigate", "enter", "select", "q", "quit"),
		)

	case modeForm:
		return m.place(m.form.View())

	case modeConfirm:
		return m.place(m.confirm.View())

	case modeRunning:
		return m.place(boxStyle.Render(mutedStyle.Render("Working...")))

	case modeResult:
		var b strings.Builder
		b.WriteString(titleStyle.Render(m.result.title))
		b.WriteString("\n")
		b.WriteString(m.result.body)
		b.WriteString("\n")
		b.WriteString(helpLine("enter", "menu", "q", "quit"))
		return m.place(boxStyle.Render(b.String()))

	case modeError:
		msg := titleStyle.Render("Operation Failed") + "\n" +
			dangerStyle.Render(m.err.Error()) + "\n" +
			helpLine("enter", "menu", "q", "quit")
		return m.place(errorBoxStyle.Render(msg))
	}

	return "Unknown mode"
}

func (m Model) place(s string) string {
	if m.width == 0 || m.height == 0 {
		return s
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, s)
}

// Run starts the interactive menu and blocks until the user quits.
func Run(ctx context.Context, ops Operations) error {
	p := tea.NewProgram(New(ctx, ops), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
