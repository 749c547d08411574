package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-brawler/internal/storage"
)

const maxResultRows = 100

// resultsTab selects between the match history and per-character stats.
type resultsTab int

const (
	tabMatches resultsTab = iota
	tabCharacters
)

// ResultsKeyMap defines the key bindings for the results board.
type ResultsKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextTab key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ResultsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextTab, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k ResultsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextTab},
		{k.Back, k.Quit},
	}
}

// DefaultResultsKeyMap returns default key bindings.
func DefaultResultsKeyMap() ResultsKeyMap {
	return ResultsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch view"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ResultsModel is the Bubble Tea model for the match results board.
type ResultsModel struct {
	store     *storage.Store
	tab       resultsTab
	table     table.Model
	help      help.Model
	keys      ResultsKeyMap
	width     int
	height    int
	quitting  bool
	goingBack bool
}

// NewResultsModel creates a results board over the given store.
func NewResultsModel(store *storage.Store, width, height int) ResultsModel {
	h := help.New()
	h.ShowAll = false

	m := ResultsModel{
		store:  store,
		keys:   DefaultResultsKeyMap(),
		help:   h,
		width:  width,
		height: height,
	}
	m.table = m.createTable()
	m.loadRows()
	return m
}

func (m *ResultsModel) createTable() table.Model {
	var columns []table.Column
	if m.tab == tabMatches {
		columns = []table.Column{
			{Title: "When", Width: 16},
			{Title: "Stage", Width: 12},
			{Title: "Players", Width: 26},
			{Title: "Winner", Width: 12},
			{Title: "End", Width: 7},
		}
	} else {
		columns = []table.Column{
			{Title: "Character", Width: 14},
			{Title: "Matches", Width: 8},
			{Title: "Wins", Width: 6},
			{Title: "Avg Dmg", Width: 8},
			{Title: "Last Played", Width: 16},
		}
	}

	height := m.height - 8
	if height < 3 {
		height = 3
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadRows refreshes the table from storage for the current tab.
func (m *ResultsModel) loadRows() {
	if m.store == nil {
		m.table.SetRows(nil)
		return
	}
	if m.tab == tabMatches {
		m.table.SetRows(matchRows(m.store))
	} else {
		m.table.SetRows(characterRows(m.store))
	}
	m.table.GotoTop()
}

func matchRows(store *storage.Store) []table.Row {
	matches, err := store.RecentMatches(maxResultRows)
	if err != nil {
		return nil
	}
	rows := make([]table.Row, len(matches))
	for i, rec := range matches {
		winner := "draw"
		for _, p := range rec.Players {
			if p.Won {
				winner = fmt.Sprintf("P%d %s", p.Port+1, p.Character)
			}
		}
		rows[i] = table.Row{
			rec.CreatedAt.Format("Jan 02 15:04"),
			rec.Stage,
			playerSummary(rec.Players),
			winner,
			rec.EndReason,
		}
	}
	return rows
}

func characterRows(store *storage.Store) []table.Row {
	stats, err := store.GetAllCharacterStats()
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]table.Row, len(names))
	for i, name := range names {
		s := stats[name]
		rows[i] = table.Row{
			name,
			fmt.Sprintf("%d", s.Matches),
			fmt.Sprintf("%d", s.Wins),
			fmt.Sprintf("%.1f", s.AvgDamage),
			s.LastPlayed.Format("Jan 02 15:04"),
		}
	}
	return rows
}

func playerSummary(players []storage.PlayerResult) string {
	parts := make([]string, len(players))
	for i, p := range players {
		parts[i] = p.Character
	}
	return strings.Join(parts, " vs ")
}

// Init implements tea.Model.
func (m ResultsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the results board.
func (m ResultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextTab):
			if m.tab == tabMatches {
				m.tab = tabCharacters
			} else {
				m.tab = tabMatches
			}
			m.table = m.createTable()
			m.loadRows()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.loadRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the results board.
func (m ResultsModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)

	title := "MATCH RESULTS"
	if m.tab == tabCharacters {
		title = "CHARACTER STATS"
	}
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	if len(m.table.Rows()) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		b.WriteString(centerText(tableStyle.Render(
			emptyStyle.Render("No matches recorded yet.\nPlay a match to fill the board!")), m.width))
	} else {
		b.WriteString(centerText(tableStyle.Render(m.table.View()), m.width))
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// IsGoingBack reports whether the user wants to return to the menu.
func (m ResultsModel) IsGoingBack() bool { return m.goingBack }

// RunResults runs the results board screen.
// Returns true if the user wants to go back rather than quit.
func RunResults(store *storage.Store, width, height int) (goBack bool, err error) {
	model := NewResultsModel(store, width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if err != nil {
		return false, err
	}
	if m, ok := final.(ResultsModel); ok {
		return m.IsGoingBack(), nil
	}
	return false, nil
}
