// Package transcript provides the recording transcript view for the TUI.
package transcript

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

// View shows one recording with its metadata and a scrollable transcript.
type View struct {
	styles     *styles.Styles
	recordings driving.RecordingService
	ctx        context.Context

	recording    *domain.Recording
	back         messages.ViewType
	lines        []string
	scrollOffset int
	width        int
	height       int
	err          error
	loading      bool
}

// NewView creates a new transcript view.
func NewView(s *styles.Styles, recordings driving.RecordingService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:     s,
		recordings: recordings,
		ctx:        context.Background(),
		back:       messages.ViewMenu,
		width:      80,
		height:     24,
	}
}

// WithContext sets the context used to load recordings.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Open starts loading a recording. Esc returns to the back view.
func (v *View) Open(id string, back messages.ViewType) tea.Cmd {
	v.recording = nil
	v.lines = nil
	v.scrollOffset = 0
	v.err = nil
	v.loading = true
	v.back = back

	ctx := v.ctx
	svc := v.recordings
	return func() tea.Msg {
		if svc == nil {
			return messages.RecordingLoaded{Err: ErrNoRecordingService}
		}
		rec, err := svc.Get(ctx, id)
		return messages.RecordingLoaded{Recording: rec, Err: err}
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the transcript view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.RecordingLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.recording = msg.Recording
		v.wrapContent()
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case "down", "j":
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case "pgup", "ctrl+u":
		v.scrollOffset = max(v.scrollOffset-v.visibleLines(), 0)
	case "pgdown", "ctrl+d":
		v.scrollOffset = min(v.scrollOffset+v.visibleLines(), v.maxScrollOffset())
	case "home", "g":
		v.scrollOffset = 0
	case "end", "G":
		v.scrollOffset = v.maxScrollOffset()
	case "esc":
		back := v.back
		return v, func() tea.Msg {
			return messages.ViewChanged{View: back}
		}
	}

	return v, nil
}

// wrapContent word-wraps the recording body to the view width.
func (v *View) wrapContent() {
	v.lines = nil
	if v.recording == nil {
		return
	}

	text := body(v.recording)
	if strings.TrimSpace(text) == "" {
		return
	}

	contentWidth := max(v.width-4, 20)
	for _, para := range strings.Split(text, "\n") {
		v.lines = append(v.lines, wrap(para, contentWidth)...)
	}
}

// body is the text shown below the header.
func body(rec *domain.Recording) string {
	var b strings.Builder
	if rec.Context != "" {
		b.WriteString("Context: " + rec.Context + "\n")
	}
	if rec.Summary != "" {
		b.WriteString("Summary: " + rec.Summary + "\n")
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(rec.Transcript)
	return b.String()
}

// wrap splits a paragraph into lines of at most width runes, breaking on
// spaces. Words longer than width are cut.
func wrap(para string, width int) []string {
	words := strings.Fields(para)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var line []rune
	for _, w := range words {
		word := []rune(w)
		for len(word) > width {
			if len(line) > 0 {
				lines = append(lines, string(line))
				line = nil
			}
			lines = append(lines, string(word[:width]))
			word = word[width:]
		}
		switch {
		case len(line) == 0:
			line = append(line, word...)
		case len(line)+1+len(word) <= width:
			line = append(line, ' ')
			line = append(line, word...)
		default:
			lines = append(lines, string(line))
			line = append([]rune(nil), word...)
		}
	}
	if len(line) > 0 {
		lines = append(lines, string(line))
	}
	return lines
}

// visibleLines returns the number of transcript lines that fit.
func (v *View) visibleLines() int {
	// title, metadata, separator, help and padding
	return max(v.height-7, 1)
}

// maxScrollOffset returns the maximum scroll offset.
func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the transcript view.
func (v *View) View() string {
	var b strings.Builder

	title := "Transcript"
	if v.recording != nil && v.recording.Title != "" {
		title = v.recording.Title
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")

	if v.recording != nil {
		meta := v.recording.CreatedAt.Format("Monday 2 January 2006, 15:04")
		if len(v.recording.Tags) > 0 {
			meta += "  #" + strings.Join(v.recording.Tags, " #")
		}
		b.WriteString(v.styles.Subtitle.Render(meta))
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat("─", min(v.width-4, 60)))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading transcript..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.lines) == 0:
		b.WriteString(v.styles.Muted.Render("(Empty transcript)"))
	default:
		visible := v.visibleLines()
		end := min(v.scrollOffset+visible, len(v.lines))
		for i := v.scrollOffset; i < end; i++ {
			b.WriteString(v.styles.Normal.Render(v.lines[i]))
			b.WriteString("\n")
		}
		if len(v.lines) > visible {
			percentage := v.scrollOffset * 100 / v.maxScrollOffset()
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("\n  [%d%%] Line %d-%d of %d",
				percentage, v.scrollOffset+1, end, len(v.lines))))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [esc] back"))

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.wrapContent()
	v.scrollOffset = min(v.scrollOffset, v.maxScrollOffset())
}

// Recording returns the loaded recording.
func (v *View) Recording() *domain.Recording {
	return v.recording
}

// Back returns the view esc returns to.
func (v *View) Back() messages.ViewType {
	return v.back
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
