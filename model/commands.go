package model

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"mori/config"
)

// SendMessage runs one turn in the background. The caller must not touch
// conv until the ReplyMsg arrives.
func SendMessage(bot *Chatbot, sessionID string, conv *Conversation, text, modelName string) tea.Cmd {
	return func() tea.Msg {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Model] turn started with %s", modelName)
		}

		reply, err := bot.Reply(context.Background(), sessionID, conv, text, modelName)
		return ReplyMsg{
			Reply:    reply,
			Model:    modelName,
			Messages: conv.Messages(),
			Err:      err,
		}
	}
}

// FetchModelList retrieves the models the provider has locally.
func FetchModelList(p Provider) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		models, err := p.ListModels(ctx)
		return ModelsListMsg{Models: models, Err: err}
	}
}

// CopyToClipboard writes text to the system clipboard.
func CopyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		return ClipboardMsg{Err: clipboard.WriteAll(text)}
	}
}

// PullModel downloads name in the background and streams its progress as
// PullProgressMsg values; the receiver runs each Next to keep reading.
func PullModel(p Puller, name string) tea.Cmd {
	return func() tea.Msg {
		updates := make(chan PullProgressMsg, 16)

		go func() {
			defer close(updates)
			err := p.Pull(context.Background(), name, func(status string, completed, total int64) {
				updates <- PullProgressMsg{Model: name, Status: status, Completed: completed, Total: total}
			})
			if err != nil && config.DebugLog != nil {
				config.DebugLog.Printf("[Model] pull %s failed: %v", name, err)
			}
			updates <- PullProgressMsg{Model: name, Done: true, Err: err}
		}()

		return waitForPull(updates)()
	}
}

func waitForPull(updates <-chan PullProgressMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-updates
		if !ok {
			return nil
		}
		if !msg.Done {
			msg.Next = waitForPull(updates)
		}
		return msg
	}
}
