// Package ui is the terminal chat client: the same conversation as the web
// page, rendered with bubbletea.
package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"mori/config"
	appmodel "mori/model"
	"mori/ollama"
	"mori/persona"
	"mori/provider"
)

// headerHeight and footerHeight are the rows around the viewport.
const (
	headerHeight = 3
	footerHeight = 3
)

type ChatView struct {
	bot       *appmodel.Chatbot
	sessionID string

	// conv belongs to the in-flight SendMessage while waiting is set;
	// messages is the snapshot rendered in the meantime.
	conv     *appmodel.Conversation
	messages []appmodel.Message
	waiting  bool

	modelName string
	installed []ollama.ModelInfo
	pulling   string

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	width    int
	height   int
	ready    bool
	showHelp bool

	status    string
	statusErr bool
}

func NewChatView(bot *appmodel.Chatbot) ChatView {
	input := textinput.New()
	input.Placeholder = persona.InputHint
	input.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = AssistantStyle

	return ChatView{
		bot:       bot,
		sessionID: uuid.NewString(),
		conv:      appmodel.NewConversation(),
		modelName: bot.DefaultModel(),
		input:     input,
		spinner:   s,
	}
}

func (c ChatView) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		provider.PingProvider(c.bot.Provider(), c.bot.Models()),
		appmodel.FetchModelList(c.bot.Provider()),
	)
}

func (c ChatView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
		vpHeight := max(msg.Height-headerHeight-footerHeight, 1)
		if !c.ready {
			c.viewport = viewport.New(msg.Width, vpHeight)
			c.ready = true
		} else {
			c.viewport.Width = msg.Width
			c.viewport.Height = vpHeight
		}
		c.input.Width = max(msg.Width-4, 10)
		c.refresh()
		return c, nil

	case tea.KeyMsg:
		return c.handleKey(msg)

	case appmodel.ReplyMsg:
		c.waiting = false
		c.messages = msg.Messages
		switch {
		case errors.Is(msg.Err, appmodel.ErrEmptyMessage):
			c.setStatus("Say something.", false)
		case msg.Err != nil:
			c.setStatus(msg.Err.Error(), true)
		default:
			c.setStatus("", false)
		}
		c.refresh()
		return c, nil

	case appmodel.ModelsListMsg:
		if msg.Err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[UI] model list failed: %v", msg.Err)
			}
			return c, nil
		}
		c.installed = msg.Models
		return c, nil

	case provider.PingProviderMsg:
		switch {
		case !msg.Valid:
			c.setStatus(fmt.Sprintf("Ollama unreachable (%v). Run mori setup.", msg.Err), true)
		case len(msg.Missing) > 0:
			c.setStatus("Missing models: "+strings.Join(msg.Missing, ", ")+". Run mori setup or press Ctrl+P.", true)
		}
		return c, nil

	case appmodel.PullProgressMsg:
		return c.handlePull(msg)

	case appmodel.ClipboardMsg:
		if msg.Err != nil {
			c.setStatus("Copy failed: "+msg.Err.Error(), true)
		} else {
			c.setStatus("Copied last reply.", false)
		}
		return c, nil

	case spinner.TickMsg:
		if !c.waiting {
			return c, nil
		}
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(msg)
		c.refresh()
		return c, cmd
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c ChatView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return c, tea.Quit

	case "f1":
		c.showHelp = !c.showHelp
		return c, nil

	case "enter":
		if c.waiting {
			return c, nil
		}
		text := c.input.Value()
		if strings.TrimSpace(text) == "" {
			return c, nil
		}
		c.input.Reset()
		c.messages = append(c.conv.Messages(), appmodel.Message{Role: appmodel.RoleUser, Content: text})
		c.waiting = true
		c.setStatus("", false)
		c.refresh()
		return c, tea.Batch(
			appmodel.SendMessage(c.bot, c.sessionID, c.conv, text, c.modelName),
			c.spinner.Tick,
		)

	case "ctrl+l":
		if c.waiting {
			return c, nil
		}
		c.conv.Clear()
		c.messages = nil
		c.setStatus("Conversation cleared.", false)
		c.refresh()
		return c, nil

	case "ctrl+n":
		if c.waiting {
			return c, nil
		}
		c.modelName = c.bot.NextModel(c.modelName)
		if !c.isInstalled(c.modelName) && len(c.installed) > 0 {
			c.setStatus(c.modelName+" is not pulled yet. Ctrl+P pulls it.", true)
		} else {
			c.setStatus("Model: "+c.modelName, false)
		}
		return c, nil

	case "ctrl+p":
		if c.pulling != "" {
			return c, nil
		}
		puller, ok := c.bot.Provider().(appmodel.Puller)
		if !ok {
			c.setStatus("This provider cannot pull models.", true)
			return c, nil
		}
		c.pulling = c.modelName
		c.setStatus("Pulling "+c.pulling+"...", false)
		return c, appmodel.PullModel(puller, c.pulling)

	case "ctrl+y":
		reply := appmodel.LastReply(c.messages)
		if reply == "" {
			c.setStatus("Nothing to copy.", false)
			return c, nil
		}
		return c, appmodel.CopyToClipboard(reply)

	case "pgup", "pgdown", "up", "down":
		var cmd tea.Cmd
		c.viewport, cmd = c.viewport.Update(msg)
		return c, cmd
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c ChatView) handlePull(msg appmodel.PullProgressMsg) (tea.Model, tea.Cmd) {
	if !msg.Done {
		status := fmt.Sprintf("Pulling %s: %s", msg.Model, msg.Status)
		if msg.Total > 0 {
			status += fmt.Sprintf(" %d%%", msg.Completed*100/msg.Total)
		}
		c.setStatus(status, false)
		return c, msg.Next
	}

	c.pulling = ""
	if msg.Err != nil {
		c.setStatus(fmt.Sprintf("Failed to pull %s: %v", msg.Model, msg.Err), true)
		return c, nil
	}
	c.setStatus(msg.Model+" model ready", false)
	return c, appmodel.FetchModelList(c.bot.Provider())
}

func (c ChatView) isInstalled(name string) bool {
	for _, m := range c.installed {
		if ollama.SameModel(m.Name, name) {
			return true
		}
	}
	return false
}

func (c *ChatView) setStatus(text string, isErr bool) {
	c.status = text
	c.statusErr = isErr
}

func (c *ChatView) refresh() {
	if !c.ready {
		return
	}
	c.viewport.SetContent(renderHistory(c.messages, c.width, c.waiting, c.spinner.View()))
	c.viewport.GotoBottom()
}

func (c ChatView) View() string {
	if !c.ready {
		return "Climbing..."
	}
	if c.showHelp {
		return renderHelp(c.width)
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render(persona.Title)+" "+DimStyle.Render(persona.Subtitle),
		QuoteStyle.Render(persona.Quote),
		BorderStyle.Render(strings.Repeat("─", c.width)),
	)

	status := c.status
	if status == "" {
		status = "Model: " + c.modelName
	}
	status = truncate(status, c.width)
	if c.statusErr {
		status = ErrorStyle.Render(status)
	} else {
		status = StatusStyle.Render(status)
	}

	footer := lipgloss.JoinVertical(lipgloss.Left,
		c.input.View(),
		status,
		FormatFooter("Enter", "Send", "Ctrl+N", "Model", "Ctrl+P", "Pull", "Ctrl+L", "Clear", "Ctrl+Y", "Copy", "F1", "Help", "Esc", "Quit"),
	)

	return lipgloss.JoinVertical(lipgloss.Left, header, c.viewport.View(), footer)
}

// Run starts the terminal client and blocks until the user quits.
func Run(bot *appmodel.Chatbot) error {
	p := tea.NewProgram(NewChatView(bot), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
