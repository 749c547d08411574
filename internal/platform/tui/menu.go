package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-brawler/internal/roster"
)

// pickPhase is which list the menu is currently choosing from.
type pickPhase int

const (
	phaseCharacter pickPhase = iota
	phaseOpponent
	phaseStage
	phaseDone
)

// Pick is the completed menu selection.
type Pick struct {
	Character string
	Opponent  string
	Stage     string
}

// MenuModel walks the player through character, opponent and stage choice.
type MenuModel struct {
	roster *roster.Roster
	phase  pickPhase
	cursor int
	width  int
	height int

	pick            Pick
	quitting        bool
	showingResults  bool
	selectionByStep [3]int // remembered cursor per phase for back navigation
}

// NewMenuModel creates the picker over the loaded roster.
func NewMenuModel(r *roster.Roster, width, height int) MenuModel {
	return MenuModel{
		roster: r,
		width:  width,
		height: height,
	}
}

// items returns the list for the current phase.
func (m MenuModel) items() []string {
	switch m.phase {
	case phaseCharacter, phaseOpponent:
		return m.roster.Characters()
	case phaseStage:
		return m.roster.StageNames()
	}
	return nil
}

func (m MenuModel) title() string {
	switch m.phase {
	case phaseCharacter:
		return "Choose your fighter"
	case phaseOpponent:
		return "Choose the CPU opponent"
	case phaseStage:
		return "Choose the stage"
	}
	return ""
}

// Init implements tea.Model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles menu navigation.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "tab" {
			m.showingResults = true
			return m, tea.Quit
		}
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.items()

	switch MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		if len(items) == 0 {
			return m, nil
		}
		choice := items[m.cursor]
		m.selectionByStep[m.phase] = m.cursor
		switch m.phase {
		case phaseCharacter:
			m.pick.Character = choice
		case phaseOpponent:
			m.pick.Opponent = choice
		case phaseStage:
			m.pick.Stage = choice
		}
		m.phase++
		if m.phase == phaseDone {
			return m, tea.Quit
		}
		m.cursor = m.selectionByStep[m.phase]

	case MenuActionBack:
		if m.phase == phaseCharacter {
			m.quitting = true
			return m, tea.Quit
		}
		m.phase--
		m.cursor = m.selectionByStep[m.phase]
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting || m.phase == phaseDone || m.showingResults {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText("  B R A W L E R  ", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(m.title(), m.width))
	b.WriteString("\n\n")

	for i, item := range m.items() {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		b.WriteString(centerText(cursor+item, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Select  |  Esc: Back  |  Tab: Results  |  Q: Quit"
	b.WriteString(centerText(controls, m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the completed pick, or nil if the menu was abandoned.
func (m MenuModel) Selected() *Pick {
	if m.phase != phaseDone {
		return nil
	}
	pick := m.pick
	return &pick
}

// IsQuitting reports whether the user asked to quit.
func (m MenuModel) IsQuitting() bool { return m.quitting }

// WantsResults reports whether the user asked for the results board.
func (m MenuModel) WantsResults() bool { return m.showingResults }

// RunMenu runs the picker and returns the selection, or nil on quit.
func RunMenu(r *roster.Roster, width, height int) (*Pick, error) {
	model := NewMenuModel(r, width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	if mm, ok := final.(MenuModel); ok {
		return mm.Selected(), nil
	}
	return nil, nil
}
