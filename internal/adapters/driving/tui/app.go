package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/murmur/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/murmur/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/murmur/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/murmur/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/murmur/internal/adapters/driving/tui/views/recordings"
	"github.com/custodia-labs/murmur/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/murmur/internal/adapters/driving/tui/views/transcript"
)

// modelPollInterval is how often the model status is polled until ready.
const modelPollInterval = 2 * time.Second

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	menuView       *menu.View
	searchView     *search.View
	recordingsView *recordings.View
	transcriptView *transcript.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// previousView is the view shown before the last switch.
	previousView messages.ViewType

	err    error
	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// AppOption configures an App.
type AppOption func(*App)

// WithSearchLimit sets the number of results a search returns.
func WithSearchLimit(limit int) AppOption {
	return func(a *App) {
		a.searchView = search.NewView(a.styles, a.keymap, a.ports.Search, limit)
	}
}

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports, opts ...AppOption) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	a := &App{
		ports:          ports,
		ctx:            context.Background(),
		styles:         s,
		keymap:         km,
		menuView:       menu.NewView(s),
		searchView:     search.NewView(s, km, ports.Search, 0),
		recordingsView: recordings.NewView(s, ports.Recordings),
		transcriptView: transcript.NewView(s, ports.Recordings),
		currentView:    messages.ViewMenu,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.recordingsView.WithContext(ctx)
	a.transcriptView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("murmur"),
		a.modelStatus(),
	)
}

// modelStatus reads the model status immediately.
func (a *App) modelStatus() tea.Cmd {
	if a.ports.Model == nil {
		return nil
	}
	model := a.ports.Model
	return func() tea.Msg {
		return messages.ModelStatusUpdated{Status: model.Status()}
	}
}

// pollModel reads the model status after the poll interval.
func (a *App) pollModel() tea.Cmd {
	if a.ports.Model == nil {
		return nil
	}
	model := a.ports.Model
	return tea.Tick(modelPollInterval, func(time.Time) tea.Msg {
		return messages.ModelStatusUpdated{Status: model.Status()}
	})
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.handleKey(msg)

	case messages.ViewChanged:
		return a, a.switchView(msg.View)

	case messages.RecordingSelected:
		a.previousView = a.currentView
		a.currentView = messages.ViewTranscript
		return a, a.transcriptView.Open(msg.ID, msg.From)

	case messages.RecordingLoaded:
		a.transcriptView, cmd = a.transcriptView.Update(msg)
		return a, cmd

	case messages.RecordingsLoaded, messages.RecordingRemoved:
		a.recordingsView, cmd = a.recordingsView.Update(msg)
		return a, cmd

	case messages.SearchCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
		return a, cmd

	case messages.ModelStatusUpdated:
		a.menuView, _ = a.menuView.Update(msg)
		a.searchView, _ = a.searchView.Update(msg)
		if msg.Status.IsReady() {
			return a, nil
		}
		return a, a.pollModel()

	case messages.ErrorOccurred:
		a.err = msg.Err
		switch a.currentView {
		case messages.ViewSearch:
			a.searchView, cmd = a.searchView.Update(msg)
		case messages.ViewRecordings:
			a.recordingsView, cmd = a.recordingsView.Update(msg)
		case messages.ViewTranscript:
			a.transcriptView, cmd = a.transcriptView.Update(msg)
		case messages.ViewMenu, messages.ViewHelp:
			// Shown on next search
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages (cursor blink etc.) to the active view
	if a.currentView == messages.ViewSearch {
		a.searchView, cmd = a.searchView.Update(msg)
	}
	return a, cmd
}

// handleKey routes a key press to the active view.
func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
	case messages.ViewRecordings:
		a.recordingsView, cmd = a.recordingsView.Update(msg)
	case messages.ViewTranscript:
		a.transcriptView, cmd = a.transcriptView.Update(msg)
	case messages.ViewHelp:
		switch msg.String() {
		case "esc":
			return a.switchView(messages.ViewMenu)
		case "q":
			return tea.Quit
		}
	}
	return cmd
}

// switchView activates a view and runs its initialisation.
func (a *App) switchView(view messages.ViewType) tea.Cmd {
	from := a.currentView
	a.previousView = from
	a.currentView = view

	switch view {
	case messages.ViewSearch:
		if from == messages.ViewTranscript {
			a.searchView.Resume()
			return nil
		}
		a.searchView.Reset()
		return a.searchView.Init()
	case messages.ViewRecordings:
		return a.recordingsView.Init()
	case messages.ViewMenu, messages.ViewTranscript, messages.ViewHelp:
		// No initialisation
	}
	return nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewRecordings:
		return a.recordingsView.View()
	case messages.ViewTranscript:
		return a.transcriptView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

// viewHelp renders the keybinding reference.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Muted.Render("Search modes: hybrid fuses keyword and semantic ranks; " +
		"semantic needs the embedding model."))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Help.Render("[esc] back to menu"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// PreviousView returns the view shown before the current one.
func (a *App) PreviousView() messages.ViewType {
	return a.previousView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.recordingsView.SetDimensions(width, height)
	a.transcriptView.SetDimensions(width, height)
}
