// Package tui implements the interactive skill browser: a two-pane view
// over discovered bundles with install, package, and filter actions. The
// update loop owns all UI state; every filesystem operation runs on the
// engine queue's worker and comes back as a message, so the interface
// never blocks on I/O.
package tui

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/pkg/errors"

	"github.com/skilldeck/skilldeck/pkg/engine"
	"github.com/skilldeck/skilldeck/pkg/install"
	"github.com/skilldeck/skilldeck/pkg/skills"
)

// Config carries the policy knobs the browser needs.
type Config struct {
	// OutputDir is where packaged archives land (default "dist").
	OutputDir string
}

// pendingConflict tracks an install waiting on the user's overwrite
// decision.
type pendingConflict struct {
	bundleID string
	target   install.Target
	dest     string
}

// Model is the bubbletea model for the skill browser.
type Model struct {
	ctx    context.Context
	engine *engine.Engine
	queue  *engine.Queue
	config Config

	summaries []skills.Summary
	visible   []skills.Summary
	cursor    int

	filterInput textinput.Model
	filtering   bool

	detailsVP   viewport.Model
	renderer    *glamour.TermRenderer
	detailsFor  string
	detailsBody string

	conflict *pendingConflict

	status string
	width  int
	height int
	ready  bool
}

// NewModel creates the browser model and submits the initial discovery
// scan to the queue.
func NewModel(ctx context.Context, eng *engine.Engine, cfg Config) Model {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "dist"
	}

	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.CharLimit = 64

	// Renderer failure falls back to plain text in loadDetails.
	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	queue := engine.NewQueue(eng, 1)
	queue.SubmitDiscover(ctx)

	return Model{
		ctx:         ctx,
		engine:      eng,
		queue:       queue,
		config:      cfg,
		filterInput: ti,
		detailsVP:   viewport.New(0, 0),
		renderer:    renderer,
		status:      "Scanning " + eng.Root() + "...",
	}
}

// Init starts the single result-channel reader.
func (m Model) Init() tea.Cmd {
	return waitForResult(m.queue.Results())
}

// Update handles input events and operation results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.detailsVP.Width = m.detailsWidth()
		m.detailsVP.Height = m.paneHeight() - detailsHeaderLines
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case opResultMsg:
		return m.handleResult(engine.Result(msg))

	case queueClosedMsg:
		return m, tea.Quit

	case detailsMsg:
		if msg.id == m.selectedID() {
			m.detailsFor = msg.id
			m.detailsBody = msg.body
			m.detailsVP.SetContent(msg.body)
			m.detailsVP.GotoTop()
		}
		return m, nil

	case detailsErrMsg:
		if msg.id == m.selectedID() {
			m.detailsFor = msg.id
			m.detailsBody = fmt.Sprintf("failed to load %s: %v", skills.EntryFileName, msg.err)
			m.detailsVP.SetContent(m.detailsBody)
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		switch msg.String() {
		case "enter":
			m.filtering = false
			m.filterInput.Blur()
			return m, nil
		case "esc":
			m.filtering = false
			m.filterInput.Blur()
			m.filterInput.SetValue("")
			m.applyFilter()
			return m, m.reloadDetails()
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			m.applyFilter()
			return m, tea.Batch(cmd, m.reloadDetails())
		}
	}

	if m.conflict != nil {
		switch msg.String() {
		case "y", "Y":
			c := m.conflict
			m.conflict = nil
			m.queue.SubmitInstall(m.ctx, c.bundleID, c.target, true)
			m.status = fmt.Sprintf("Overwriting %s...", c.dest)
			return m, nil
		case "n", "N", "esc":
			m.conflict = nil
			m.status = "Install cancelled"
			return m, nil
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, m.reloadDetails()

	case "down", "j":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
		return m, m.reloadDetails()

	case "i":
		return m.submitInstall(install.ProjectTarget())

	case "g":
		target, err := install.GlobalTarget()
		if err != nil {
			m.status = "✗ " + err.Error()
			return m, nil
		}
		return m.submitInstall(target)

	case "z":
		sum := m.selected()
		if sum == nil {
			return m, nil
		}
		output := filepath.Join(m.config.OutputDir, sum.ID+".zip")
		m.queue.SubmitPackage(m.ctx, sum.ID, output)
		m.status = fmt.Sprintf("Packaging %s...", sum.ID)
		return m, nil

	case "/", "f":
		if m.filterInput.Value() != "" && msg.String() == "f" {
			m.filterInput.SetValue("")
			m.applyFilter()
			m.status = "Filter cleared"
			return m, m.reloadDetails()
		}
		m.filtering = true
		return m, m.filterInput.Focus()

	case "r":
		m.queue.SubmitDiscover(m.ctx)
		m.status = "Rescanning..."
		return m, nil
	}

	return m, nil
}

func (m Model) submitInstall(target install.Target) (tea.Model, tea.Cmd) {
	sum := m.selected()
	if sum == nil {
		return m, nil
	}
	if sum.Status != skills.StatusValid {
		m.status = fmt.Sprintf("✗ %s is %s and cannot be installed", sum.ID, sum.Status)
		return m, nil
	}
	m.queue.SubmitInstall(m.ctx, sum.ID, target, false)
	m.status = fmt.Sprintf("Installing %s to %s...", sum.ID, target)
	return m, nil
}

func (m Model) handleResult(res engine.Result) (tea.Model, tea.Cmd) {
	next := waitForResult(m.queue.Results())

	switch res.Kind {
	case engine.OpDiscover:
		if res.Err != nil {
			m.status = "✗ Scan failed: " + res.Err.Error()
			return m, next
		}
		m.summaries = res.Summaries
		m.applyFilter()
		m.status = fmt.Sprintf("%d bundle(s) in %s", len(m.summaries), m.engine.Root())
		return m, tea.Batch(next, m.reloadDetails())

	case engine.OpInstall:
		outcome := res.Outcome
		switch {
		case outcome == nil:
			m.status = "✗ Install failed: " + errString(res.Err)
		case outcome.Code == install.Installed:
			m.status = "✓ Installed to " + outcome.Path
		case outcome.Code == install.Conflict:
			// The destination decides; re-submission with overwrite is a
			// user decision, not a default.
			m.conflict = &pendingConflict{bundleID: res.BundleID, dest: outcome.Path}
			m.conflict.target = install.CustomTarget(filepath.Dir(outcome.Path))
			m.status = fmt.Sprintf("%s already exists. Overwrite? (y/n)", outcome.Path)
		default:
			m.status = fmt.Sprintf("✗ Install failed (%s): %v", outcome.ErrKind, outcome.Err)
		}
		return m, next

	case engine.OpPackage:
		if res.Err != nil {
			m.status = "✗ Package failed: " + res.Err.Error()
		} else {
			m.status = fmt.Sprintf("✓ Packaged %d file(s) to %s", res.Archive.Entries, res.Archive.Path)
		}
		return m, next
	}

	return m, next
}

// applyFilter recomputes the visible list from the full summary set and
// the current query, clamping the cursor.
func (m *Model) applyFilter() {
	m.visible = skills.Filter(m.summaries, m.filterInput.Value())
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selected() *skills.Summary {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return nil
	}
	sum := m.visible[m.cursor]
	return &sum
}

func (m Model) selectedID() string {
	if sum := m.selected(); sum != nil {
		return sum.ID
	}
	return ""
}

// reloadDetails schedules a body load when the selection moved to a
// bundle whose details are not already shown.
func (m Model) reloadDetails() tea.Cmd {
	sum := m.selected()
	if sum == nil || sum.Status == skills.StatusMissing || sum.ID == m.detailsFor {
		return nil
	}
	return loadDetails(*sum, m.renderer)
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// Run starts the browser on the alternate screen and blocks until the
// user quits. The queue is drained and closed on the way out.
func Run(ctx context.Context, eng *engine.Engine, cfg Config) error {
	model := NewModel(ctx, eng, cfg)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := program.Run()
	model.queue.Close()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "browser exited abnormally")
	}
	return nil
}
