package tui

import (
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/skilldeck/skilldeck/pkg/engine"
	"github.com/skilldeck/skilldeck/pkg/skills"
)

// waitForResult blocks on the queue's result channel and forwards the
// next completion as a message. The update loop re-issues it after every
// received result so exactly one reader exists at a time.
func waitForResult(results <-chan engine.Result) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-results
		if !ok {
			return queueClosedMsg{}
		}
		return opResultMsg(res)
	}
}

// loadDetails reads the selected bundle's entry file body and renders it
// as terminal markdown. The body is only read here, on demand, never
// during discovery.
func loadDetails(sum skills.Summary, renderer *glamour.TermRenderer) tea.Cmd {
	return func() tea.Msg {
		raw, err := os.ReadFile(filepath.Join(sum.Path, skills.EntryFileName))
		if err != nil {
			return detailsErrMsg{id: sum.ID, err: err}
		}

		body := stripFrontmatter(string(raw))
		if renderer != nil {
			if rendered, err := renderer.Render(body); err == nil {
				body = rendered
			}
		}
		return detailsMsg{id: sum.ID, body: body}
	}
}

// stripFrontmatter drops the leading metadata block, returning only the
// markdown body.
func stripFrontmatter(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.TrimLeft(strings.Join(lines[i+1:], "\n"), "\n")
		}
	}
	return content
}
