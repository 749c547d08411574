package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/tui-brawler/internal/config"
	"github.com/vovakirdan/tui-brawler/internal/roster"
	"github.com/vovakirdan/tui-brawler/internal/sim"
	"github.com/vovakirdan/tui-brawler/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.brawler/host_key.
	HostKeyPath string

	// DBPath is the path to the results database.
	DBPath string

	// DataDir is the optional directory with user characters and stages.
	DataDir string

	// TickRate is the simulation rate for hosted matches.
	TickRate int

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DBPath:      "~/.brawler/results.db",
		TickRate:    60,
		IdleTimeout: 30 * time.Minute,
	}
}

// SSHServer wraps a Wish SSH server hosting matches for remote players.
type SSHServer struct {
	config   SSHServerConfig
	server   *ssh.Server
	store    *storage.Store
	roster   *roster.Roster
	matchCfg config.MatchConfig
	logger   *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "brawler-ssh",
	})

	r, err := roster.Load(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("cannot load roster: %w", err)
	}

	matchCfg, err := config.LoadMatch("")
	if err != nil {
		return nil, fmt.Errorf("cannot load match config: %w", err)
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open results database", "error", err)
		// Continue without storage
	}

	srv := &SSHServer{
		config:   cfg,
		store:    store,
		roster:   r,
		matchCfg: matchCfg,
		logger:   logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".brawler", "host_key")
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	model := NewSessionModel(SessionParams{
		Roster:   s.roster,
		MatchCfg: s.matchCfg,
		Store:    s.store,
		TickRate: s.config.TickRate,
		Width:    pty.Window.Width,
		Height:   pty.Window.Height,
	})

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.store != nil {
		s.store.Close()
	}

	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// SessionParams configures one hosted session.
type SessionParams struct {
	Roster   *roster.Roster
	MatchCfg config.MatchConfig
	Store    *storage.Store
	TickRate int
	Width    int
	Height   int
}

// SessionModel manages the full session flow: picker -> match -> picker,
// with the results board reachable from the picker. This is the top-level
// model used for SSH sessions.
type SessionModel struct {
	params    SessionParams
	menu      MenuModel
	matchUI   *MatchModel
	results   *ResultsModel
	inMatch   bool
	inResults bool
	quitting  bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(params SessionParams) SessionModel {
	return SessionModel{
		params: params,
		menu:   NewMenuModel(params.Roster, params.Width, params.Height),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update routes messages to whichever screen is active.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.params.Width = wsm.Width
		m.params.Height = wsm.Height
	}

	switch {
	case m.inMatch && m.matchUI != nil:
		return m.updateMatch(msg)
	case m.inResults && m.results != nil:
		return m.updateResults(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.menu.WantsResults() {
		results := NewResultsModel(m.params.Store, m.params.Width, m.params.Height)
		m.results = &results
		m.inResults = true
		m.menu = NewMenuModel(m.params.Roster, m.params.Width, m.params.Height)
		return m, m.results.Init()
	}

	if pick := m.menu.Selected(); pick != nil {
		matchUI, err := NewMatchModel(MatchParams{
			Roster:   m.params.Roster,
			MatchCfg: m.params.MatchCfg,
			Stage:    pick.Stage,
			Entrants: []sim.Entrant{
				{Character: pick.Character},
				{Character: pick.Opponent, Team: 1},
			},
			TickRate: m.params.TickRate,
			Store:    m.params.Store,
		}, m.params.Width, m.params.Height)
		if err != nil {
			// Roster and picker agree on names, so this is unexpected;
			// drop back to a fresh menu.
			m.menu = NewMenuModel(m.params.Roster, m.params.Width, m.params.Height)
			return m, nil
		}

		m.matchUI = matchUI
		m.inMatch = true
		return m, m.matchUI.Init()
	}

	return m, cmd
}

func (m SessionModel) updateMatch(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.matchUI.Update(msg)
	if matchModel, ok := newModel.(*MatchModel); ok {
		m.matchUI = matchModel
	}

	if m.matchUI.BackToMenu() {
		m.inMatch = false
		m.matchUI = nil
		m.menu = NewMenuModel(m.params.Roster, m.params.Width, m.params.Height)
		return m, m.menu.Init()
	}

	return m, cmd
}

func (m SessionModel) updateResults(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.results.Update(msg)
	if resultsModel, ok := newModel.(ResultsModel); ok {
		m.results = &resultsModel
	}

	if m.results.IsGoingBack() {
		m.inResults = false
		m.results = nil
		m.menu = NewMenuModel(m.params.Roster, m.params.Width, m.params.Height)
		return m, m.menu.Init()
	}

	return m, cmd
}

// View renders whichever screen is active.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	switch {
	case m.inMatch && m.matchUI != nil:
		return m.matchUI.View()
	case m.inResults && m.results != nil:
		return m.results.View()
	default:
		return m.menu.View()
	}
}
