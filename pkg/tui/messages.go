package tui

import "github.com/skilldeck/skilldeck/pkg/engine"

// opResultMsg delivers a queued operation's completion to the update loop.
type opResultMsg engine.Result

// queueClosedMsg signals that the result channel was closed.
type queueClosedMsg struct{}

// detailsMsg carries the rendered entry-file body for a bundle.
type detailsMsg struct {
	id   string
	body string
}

// detailsErrMsg reports that the entry-file body could not be loaded.
type detailsErrMsg struct {
	id  string
	err error
}
