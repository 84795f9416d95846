// SPDX-License-Identifier: MIT
package tui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"freqlab/internal/analysis"
	"freqlab/internal/edit"
	"freqlab/internal/pipeline"
	"freqlab/internal/spectrum"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E0475B"))
)

// pollInterval is how often the model checks for a new result.
const pollInterval = 30 * time.Millisecond

// ramp maps gray levels to characters, darkest first.
const ramp = " .:-=+*#%@"

// ScreenType defines which image is shown.
type ScreenType int

const (
	SpectrumScreen ScreenType = iota
	ResultScreen
)

// Session is the editing engine the UI drives.
type Session interface {
	Submit(e edit.Edit) error
	Reset() error
	Clear() error
	TryLatest() (*pipeline.Result, bool)
	SpectrumView() (*image.Gray, error)
	Bands() ([]analysis.FrequencyBand, error)
	ExportPNG(path string) error
	Dims() (rows, cols int, err error)
}

type keyMap struct {
	Quit, Up, Down, Left, Right, Apply, Reset, Clear, Export, Screen, More, Less key.Binding
}

var keys = keyMap{
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c")),
	Up:     key.NewBinding(key.WithKeys("up", "k")),
	Down:   key.NewBinding(key.WithKeys("down", "j")),
	Left:   key.NewBinding(key.WithKeys("left", "h")),
	Right:  key.NewBinding(key.WithKeys("right", "l")),
	Apply:  key.NewBinding(key.WithKeys("enter", " ")),
	Reset:  key.NewBinding(key.WithKeys("R")),
	Clear:  key.NewBinding(key.WithKeys("c")),
	Export: key.NewBinding(key.WithKeys("w")),
	Screen: key.NewBinding(key.WithKeys("tab")),
	More:   key.NewBinding(key.WithKeys("+", "=")),
	Less:   key.NewBinding(key.WithKeys("-")),
}

type tickMsg time.Time

// EditorModel is the Bubble Tea model for one editing session.
type EditorModel struct {
	session   Session
	outputDir string

	tool   edit.Tool
	params edit.Params
	cursor spectrum.Coord
	step   int
	rows   int
	cols   int

	result   *pipeline.Result
	spectrum *image.Gray
	bands    []analysis.FrequencyBand
	exports  int

	viewport     viewport.Model
	ready        bool
	activeScreen ScreenType
	status       string
	err          error
}

// NewEditorModel creates a model with the cursor on the zero-frequency bin.
func NewEditorModel(s Session, tool edit.Tool, params edit.Params, step int, outputDir string) (EditorModel, error) {
	rows, cols, err := s.Dims()
	if err != nil {
		return EditorModel{}, err
	}
	return EditorModel{
		session:   s,
		outputDir: outputDir,
		tool:      tool,
		params:    params,
		cursor:    spectrum.Center(rows, cols),
		step:      max(step, 1),
		rows:      rows,
		cols:      cols,
		status:    "Ready.",
	}, nil
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init starts result polling.
func (m EditorModel) Init() tea.Cmd {
	return tick()
}

// Update handles input and result polling.
func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, max(msg.Height-6, 1))
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = max(msg.Height-6, 1)
		}
		m.refresh()

	case tickMsg:
		if r, ok := m.session.TryLatest(); ok {
			m.result = r
			m.refresh()
		}
		cmds = append(cmds, tick())

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}
		// Keys move the cursor, so they never reach the viewport.
		m.handleKey(msg)
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *EditorModel) handleKey(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, keys.Up):
		m.cursor.Row = max(m.cursor.Row-m.step, 0)
	case key.Matches(msg, keys.Down):
		m.cursor.Row = min(m.cursor.Row+m.step, m.rows-1)
	case key.Matches(msg, keys.Left):
		m.cursor.Col = max(m.cursor.Col-m.step, 0)
	case key.Matches(msg, keys.Right):
		m.cursor.Col = min(m.cursor.Col+m.step, m.cols-1)
	case key.Matches(msg, keys.Screen):
		m.activeScreen = (m.activeScreen + 1) % 2
	case key.Matches(msg, keys.More):
		m.adjust(1)
	case key.Matches(msg, keys.Less):
		m.adjust(-1)
	case key.Matches(msg, keys.Apply):
		e := edit.Edit{Tool: m.tool, Target: m.cursor, Params: m.params}
		m.report(m.session.Submit(e), fmt.Sprintf("Applied %s.", e))
	case key.Matches(msg, keys.Reset):
		m.report(m.session.Reset(), "Spectrum and mask reset.")
	case key.Matches(msg, keys.Clear):
		m.report(m.session.Clear(), "Mask cleared.")
	case key.Matches(msg, keys.Export):
		m.exports++
		path := filepath.Join(m.outputDir, fmt.Sprintf("result-%03d.png", m.exports))
		m.report(m.session.ExportPNG(path), "Saved "+path)
	default:
		// Number keys pick a tool.
		if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] < '1'+byte(len(edit.Tools)) {
			m.tool = edit.Tools[s[0]-'1']
			m.status = "Tool: " + m.tool.String()
		}
	}
}

// adjust nudges the parameter the current tool uses most.
func (m *EditorModel) adjust(dir float64) {
	switch m.tool {
	case edit.Paint, edit.Erase:
		m.params.Radius = max(m.params.Radius+dir, 0)
	case edit.Point:
		m.params.Magnitude = max(m.params.Magnitude+10*dir, 0)
	case edit.Grid:
		m.params.U = max(m.params.U+int(dir), 0)
		m.params.V = max(m.params.V+int(dir), 0)
	case edit.Ripple:
		m.params.Wavelength = max(m.params.Wavelength+dir, 1)
	default:
		m.params.Amplitude += 5 * dir
	}
}

func (m *EditorModel) report(err error, ok string) {
	m.err = err
	if err == nil {
		m.status = ok
	}
}

// refresh re-reads the spectrum view and band energy and redraws.
func (m *EditorModel) refresh() {
	if img, err := m.session.SpectrumView(); err == nil {
		m.spectrum = img
	}
	if bands, err := m.session.Bands(); err == nil {
		m.bands = bands
	}
	if m.ready {
		m.viewport.SetContent(m.render())
	}
}

func (m EditorModel) render() string {
	w, h := m.viewport.Width, m.viewport.Height
	if m.activeScreen == ResultScreen {
		if m.result == nil {
			return "Waiting for the first result..."
		}
		return renderGray(m.result.Gray(pipeline.Normalize), w, h, nil)
	}
	if m.spectrum == nil {
		return "No spectrum."
	}
	return renderGray(m.spectrum, w, h, &m.cursor)
}

// renderGray draws img as characters, scaled down to fit w x h cells. The
// cell holding cursor (in image rows/cols) is highlighted.
func renderGray(img *image.Gray, w, h int, cursor *spectrum.Coord) string {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || w < 1 || h < 1 {
		return ""
	}
	// Terminal cells are about twice as tall as wide.
	cols := min(b.Dx(), w)
	rows := min(b.Dy(), h, max(cols*b.Dy()/(2*b.Dx()), 1))

	curR, curC := -1, -1
	if cursor != nil {
		curR = cursor.Row * rows / b.Dy()
		curC = cursor.Col * cols / b.Dx()
	}

	var sb strings.Builder
	for r := 0; r < rows; r++ {
		y := b.Min.Y + r*b.Dy()/rows
		for c := 0; c < cols; c++ {
			x := b.Min.X + c*b.Dx()/cols
			ch := string(ramp[int(img.GrayAt(x, y).Y)*(len(ramp)-1)/255])
			if r == curR && c == curC {
				ch = highlightStyle.Render("X")
			}
			sb.WriteString(ch)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// View renders the UI
func (m EditorModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	title := "Spectrum"
	if m.activeScreen == ResultScreen {
		title = "Result"
	}

	var status string
	if m.err != nil {
		status = errorStyle.Render("Error: " + m.err.Error())
	} else {
		status = infoStyle.Render(m.status)
	}

	line := fmt.Sprintf("tool %s  cursor %v  radius %.0f  magnitude %.0f  amplitude %.0f  grid %d,%d",
		highlightStyle.Render(m.tool.String()), m.cursor, m.params.Radius, m.params.Magnitude,
		m.params.Amplitude, m.params.U, m.params.V)
	var energy []string
	for _, b := range m.bands {
		energy = append(energy, fmt.Sprintf("%s %.0f%%", b.Name, 100*b.Share))
	}

	help := infoStyle.Render("arrows: move • 1-7: tool • enter: apply • +/-: size • tab: view • c: clear • R: reset • w: save • q: quit")
	return fmt.Sprintf("%s  %s\n%s\n%s\n%s\n%s",
		titleStyle.Render(title), strings.Join(energy, "  "), m.viewport.View(), line, status, help)
}

// Run launches the editor until the user quits or ctx is cancelled.
func Run(ctx context.Context, m EditorModel) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
