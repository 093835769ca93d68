// Package recordings provides the recording list view for the TUI.
package recordings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/murmur/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/murmur/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driving"
)

// ErrNoRecordingService indicates that no recording service was provided.
var ErrNoRecordingService = errors.New("recording service is required")

// View lists recordings newest first.
type View struct {
	styles     *styles.Styles
	recordings driving.RecordingService
	ctx        context.Context

	items         []domain.Recording
	selected      int
	scrollOffset  int
	width         int
	height        int
	err           error
	loading       bool
	confirmDelete bool
}

// NewView creates a new recordings view.
func NewView(s *styles.Styles, recordings driving.RecordingService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:     s,
		recordings: recordings,
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the recordings.
func (v *View) Init() tea.Cmd {
	return v.load()
}

// load returns a command that lists recordings.
func (v *View) load() tea.Cmd {
	v.loading = true
	ctx := v.ctx
	svc := v.recordings
	return func() tea.Msg {
		if svc == nil {
			return messages.RecordingsLoaded{Err: ErrNoRecordingService}
		}
		recs, err := svc.List(ctx)
		return messages.RecordingsLoaded{Recordings: recs, Err: err}
	}
}

// remove returns a command that deletes a recording.
func (v *View) remove(id string) tea.Cmd {
	ctx := v.ctx
	svc := v.recordings
	return func() tea.Msg {
		if svc == nil {
			return messages.RecordingRemoved{ID: id, Err: ErrNoRecordingService}
		}
		return messages.RecordingRemoved{ID: id, Err: svc.Remove(ctx, id)}
	}
}

// Update handles messages for the recordings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.confirmDelete {
			return v.handleConfirmKey(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.RecordingsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.items = msg.Recordings
		if v.selected >= len(v.items) {
			v.selected = max(len(v.items)-1, 0)
		}
		v.adjustScroll()
		return v, nil

	case messages.RecordingRemoved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		return v, v.load()

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses in list mode.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.items)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "enter":
		if rec := v.SelectedRecording(); rec != nil {
			id := rec.ID
			return v, func() tea.Msg {
				return messages.RecordingSelected{ID: id, From: messages.ViewRecordings}
			}
		}
	case "d":
		if len(v.items) > 0 {
			v.confirmDelete = true
		}
	case "r":
		return v, v.load()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	return v, nil
}

// handleConfirmKey handles the delete confirmation prompt.
func (v *View) handleConfirmKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	v.confirmDelete = false
	if msg.String() != "y" {
		return v, nil
	}
	rec := v.SelectedRecording()
	if rec == nil {
		return v, nil
	}
	return v, v.remove(rec.ID)
}

// adjustScroll keeps the selected item visible.
func (v *View) adjustScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

// visibleItemCount returns the number of items that can be displayed.
func (v *View) visibleItemCount() int {
	// title, help, prompt and padding
	return max(v.height-7, 1)
}

// View renders the recordings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Recordings (%d)", len(v.items))))
	b.WriteString("\n\n")

	switch {
	case v.loading && len(v.items) == 0:
		b.WriteString(v.styles.Muted.Render("Loading recordings..."))
		b.WriteString("\n")
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	case len(v.items) == 0:
		b.WriteString(v.styles.Muted.Render("No recordings yet. Add one with 'murmur record add'."))
		b.WriteString("\n")
	default:
		end := min(v.scrollOffset+v.visibleItemCount(), len(v.items))
		for i := v.scrollOffset; i < end; i++ {
			b.WriteString(v.renderItem(i))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if v.confirmDelete {
		if rec := v.SelectedRecording(); rec != nil {
			b.WriteString(v.styles.Error.Render(fmt.Sprintf("Delete %q? [y/N]", displayTitle(rec))))
			b.WriteString("\n")
		}
	}
	b.WriteString(v.styles.Help.Render("[j/k] navigate  [enter] transcript  [d] delete  [r] reload  [esc] back"))

	return b.String()
}

// renderItem renders a single list row.
func (v *View) renderItem(i int) string {
	rec := &v.items[i]
	date := rec.CreatedAt.Format("2006-01-02 15:04")

	titleWidth := max(v.width-24, 10)
	title := domain.Truncate(displayTitle(rec), titleWidth-len(domain.Ellipsis))

	if i == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("> %s  %s", date, title))
	}
	return "  " + v.styles.Muted.Render(date) + "  " + v.styles.Normal.Render(title)
}

func displayTitle(rec *domain.Recording) string {
	if rec.Title != "" {
		return rec.Title
	}
	return "(Untitled)"
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.adjustScroll()
}

// SelectedRecording returns the selected recording, or nil when empty.
func (v *View) SelectedRecording() *domain.Recording {
	if v.selected < 0 || v.selected >= len(v.items) {
		return nil
	}
	return &v.items[v.selected]
}

// Recordings returns the loaded recordings.
func (v *View) Recordings() []domain.Recording {
	return v.items
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
