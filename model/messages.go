package model

import (
	tea "github.com/charmbracelet/bubbletea"

	"mori/ollama"
)

// ReplyMsg carries a finished turn back to the terminal client together with
// a snapshot of the history taken right after it.
type ReplyMsg struct {
	Reply    string
	Model    string
	Messages []Message
	Err      error
}

type ModelsListMsg struct {
	Models []ollama.ModelInfo
	Err    error
}

type ClipboardMsg struct {
	Err error
}

// PullProgressMsg reports one step of a model download. Next waits for the
// following step; it is nil once Done is set.
type PullProgressMsg struct {
	Model     string
	Status    string
	Completed int64
	Total     int64
	Done      bool
	Err       error
	Next      tea.Cmd
}
