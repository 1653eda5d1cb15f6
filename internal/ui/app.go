package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"ai-stream/internal/assistant"
	"ai-stream/internal/config"
	"ai-stream/internal/export"
	"ai-stream/internal/openai"
	"ai-stream/internal/state"
	"ai-stream/internal/store"
)

type page int

const (
	pageChat page = iota
	pageFunctions
)

// Model is the root program model. It owns the two pages and routes
// messages: keys go to the active page only, everything else to both.
type Model struct {
	page      page
	chat      chatModel
	functions functionsModel
}

func New(cfg config.AppConfig, app *state.AppState, st *store.Store, responder *assistant.Responder, client *openai.Client, exporter *export.Exporter, log *zap.Logger) Model {
	return Model{
		chat:      newChatModel(cfg, app, responder, exporter, log),
		functions: newFunctionsModel(cfg, app, st, client, log),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.chat.init(), m.functions.init())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		var chatCmd, fnCmd tea.Cmd
		m.chat, chatCmd = m.chat.update(msg)
		m.functions, fnCmd = m.functions.update(msg)
		return m, tea.Batch(chatCmd, fnCmd)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "tab":
			// Tab only flips pages when the active page is at rest;
			// otherwise it stays a field-cycling key.
			if m.switchAllowed() {
				if m.page == pageChat {
					m.page = pageFunctions
				} else {
					m.page = pageChat
				}
				return m, nil
			}
		}
		if m.page == pageFunctions {
			var cmd tea.Cmd
			m.functions, cmd = m.functions.update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.chat, cmd = m.chat.update(msg)
		return m, cmd
	}

	var chatCmd, fnCmd tea.Cmd
	m.chat, chatCmd = m.chat.update(msg)
	m.functions, fnCmd = m.functions.update(msg)
	return m, tea.Batch(chatCmd, fnCmd)
}

func (m Model) switchAllowed() bool {
	if m.page == pageChat {
		return m.chat.allowsPageSwitch()
	}
	return m.functions.allowsPageSwitch()
}

func (m Model) View() string {
	if m.chat.width == 0 {
		return "Starting..."
	}
	if m.page == pageFunctions {
		return m.functions.View()
	}
	return m.chat.View()
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
