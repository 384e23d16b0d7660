// Package fleetmon is a Bubble Tea model that polls a robotd fleet
// snapshot endpoint and renders one row per connected robot, in the
// style of the reference configtool's node monitor displays.
package fleetmon

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stlalpha/robotd/internal/robotsession"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var columns = []table.Column{
	{Title: "ID", Width: 36},
	{Title: "Remote", Width: 21},
	{Title: "Phase", Width: 12},
	{Title: "Position", Width: 10},
	{Title: "Heading", Width: 8},
	{Title: "Connected", Width: 10},
}

type tickMsg time.Time

type fleetMsg struct {
	snapshots []robotsession.Snapshot
	err       error
}

// Model polls endpointURL on an interval and renders the fleet it reports.
type Model struct {
	endpointURL string
	client      *http.Client
	interval    time.Duration

	table      table.Model
	lastUpdate time.Time
	robotCount int
	err        error
}

// New constructs a Model that polls GET <endpointURL>/fleet every interval.
func New(endpointURL string, interval time.Duration) Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	style := table.DefaultStyles()
	style.Header = style.Header.Bold(true).Foreground(lipgloss.Color("15"))
	style.Selected = style.Selected.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("14"))
	t.SetStyles(style)

	return Model{
		endpointURL: strings.TrimSuffix(endpointURL, "/"),
		client:      &http.Client{Timeout: 3 * time.Second},
		interval:    interval,
		table:       t,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.tick())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.fetch()
		}
	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 6)
	case tickMsg:
		return m, tea.Batch(m.fetch(), m.tick())
	case fleetMsg:
		m.lastUpdate = time.Now()
		if msg.err != nil {
			m.err = msg.err
			break
		}
		m.err = nil
		m.robotCount = len(msg.snapshots)
		m.table.SetRows(snapshotRows(msg.snapshots))
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func snapshotRows(snaps []robotsession.Snapshot) []table.Row {
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].RemoteAddr < snaps[j].RemoteAddr
	})
	rows := make([]table.Row, 0, len(snaps))
	for _, s := range snaps {
		rows = append(rows, table.Row{
			s.ID.String(),
			s.RemoteAddr,
			s.Phase,
			fmt.Sprintf("(%d,%d)", s.Position.X, s.Position.Y),
			s.Orientation,
			s.ConnectedFor.Round(time.Second).String(),
		})
	}
	return rows
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetch() tea.Cmd {
	return func() tea.Msg {
		resp, err := m.client.Get(m.endpointURL + "/fleet")
		if err != nil {
			return fleetMsg{err: fmt.Errorf("fetch fleet snapshot: %w", err)}
		}
		defer resp.Body.Close()

		var snaps []robotsession.Snapshot
		if err := json.NewDecoder(resp.Body).Decode(&snaps); err != nil {
			return fleetMsg{err: fmt.Errorf("decode fleet snapshot: %w", err)}
		}
		return fleetMsg{snapshots: snaps}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("robotd fleet monitor") + "\n")
	b.WriteString(fmt.Sprintf("source: %s\n\n", m.endpointURL))

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("error: %v", m.err)) + "\n")
	} else if m.robotCount == 0 {
		b.WriteString("no robots connected\n")
	} else {
		b.WriteString(m.table.View() + "\n")
	}

	footer := fmt.Sprintf("\n%d robot(s) | last update %s | q:quit r:refresh",
		m.robotCount, m.lastUpdate.Format("15:04:05"))
	b.WriteString(footerStyle.Render(footer))

	return b.String()
}
