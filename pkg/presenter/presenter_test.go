package presenter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func newTestPresenter() (*TerminalPresenter, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return NewWithOptions(out, errOut, ColorNever), out, errOut
}

func TestErrorOutput(t *testing.T) {
	p, out, errOut := newTestPresenter()

	p.Error(errors.New("boom"), "installing bundle")

	assert.Empty(t, out.String())
	assert.Equal(t, "[ERROR] installing bundle: boom\n", errOut.String())
}

func TestErrorWithoutContext(t *testing.T) {
	p, _, errOut := newTestPresenter()

	p.Error(errors.New("boom"), "")

	assert.Equal(t, "[ERROR] boom\n", errOut.String())
}

func TestNilErrorIgnored(t *testing.T) {
	p, _, errOut := newTestPresenter()

	p.Error(nil, "context")

	assert.Empty(t, errOut.String())
}

func TestMessages(t *testing.T) {
	p, out, _ := newTestPresenter()

	p.Success("installed")
	p.Warning("conflict ahead")
	p.Info("3 bundles found")
	p.Section("Bundles")

	output := out.String()
	assert.Contains(t, output, "✓ installed\n")
	assert.Contains(t, output, "⚠ conflict ahead\n")
	assert.Contains(t, output, "3 bundles found\n")
	assert.Contains(t, output, "Bundles\n-------\n")
}

func TestQuietSuppressesAllButErrors(t *testing.T) {
	p, out, errOut := newTestPresenter()
	p.SetQuiet(true)
	assert.True(t, p.IsQuiet())

	p.Success("installed")
	p.Warning("conflict")
	p.Info("detail")
	p.Section("Bundles")
	p.Error(errors.New("boom"), "")

	assert.Empty(t, out.String())
	assert.Equal(t, "[ERROR] boom\n", errOut.String())
}

func TestPrompt(t *testing.T) {
	p, out, _ := newTestPresenter()
	p.input = strings.NewReader("y\n")

	response := p.Prompt("Overwrite?", "y", "N")

	assert.Equal(t, "y", response)
	assert.Equal(t, "Overwrite? [y/N]: ", out.String())
}

func TestPromptEmptyInput(t *testing.T) {
	p, _, _ := newTestPresenter()
	p.input = strings.NewReader("")

	assert.Equal(t, "", p.Prompt("Continue?"))
}
