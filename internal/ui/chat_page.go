package ui

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"ai-stream/internal/assistant"
	"ai-stream/internal/chat"
	"ai-stream/internal/clipboard"
	"ai-stream/internal/config"
	"ai-stream/internal/export"
	"ai-stream/internal/highlight"
	"ai-stream/internal/state"
)

const chatEntryLines = 3

type chatFocus int

const (
	chatFocusCompose chatFocus = iota
	chatFocusBrowse
	chatFocusWidget
	chatFocusSearch
)

type responseMsg struct{ reply chat.Message }

type exportDoneMsg struct {
	path string
	err  error
}

type copyDoneMsg struct{ err error }

type chatModel struct {
	cfg       config.AppConfig
	app       *state.AppState
	responder *assistant.Responder
	exporter  *export.Exporter
	log       *zap.Logger

	viewport viewport.Model
	entry    textarea.Model
	search   textinput.Model
	spinner  spinner.Model
	help     help.Model
	keys     chatKeyMap

	widgetInput textinput.Model
	widgetArea  textarea.Model
	active      *chat.InputWidgetMessage
	selectIdx   int
	sliderVal   float64
	checkboxOn  bool

	renderer   *glamour.TermRenderer
	cache      *lru.Cache[uint64, string]
	transcript string

	focus       chatFocus
	busy        bool
	searchQuery string
	matchCount  int

	width  int
	height int
	status string
}

func newChatModel(cfg config.AppConfig, app *state.AppState, responder *assistant.Responder, exporter *export.Exporter, log *zap.Logger) chatModel {
	vp := viewport.New(80, 20)
	vp.SetContent("Start the conversation below.")

	entry := textarea.New()
	entry.Placeholder = "Type a message and press enter..."
	entry.ShowLineNumbers = false
	entry.CharLimit = 4096
	entry.SetHeight(chatEntryLines)
	entry.Focus()

	search := textinput.New()
	search.Placeholder = "Search transcript..."
	search.Prompt = "/ "
	search.CharLimit = 256

	wi := textinput.New()
	wi.CharLimit = 512

	wa := textarea.New()
	wa.ShowLineNumbers = false
	wa.CharLimit = 4096
	wa.SetHeight(chatEntryLines - 1)

	sp := spinner.New()
	sp.Spinner = spinner.Points

	cache, _ := lru.New[uint64, string](512)

	return chatModel{
		cfg:         cfg,
		app:         app,
		responder:   responder,
		exporter:    exporter,
		log:         log,
		viewport:    vp,
		entry:       entry,
		search:      search,
		spinner:     sp,
		help:        help.New(),
		keys:        defaultChatKeys(),
		widgetInput: wi,
		widgetArea:  wa,
		cache:       cache,
	}
}

func (m chatModel) init() tea.Cmd {
	return textarea.Blink
}

func (m chatModel) allowsPageSwitch() bool {
	return m.focus == chatFocusCompose || m.focus == chatFocusBrowse
}

func (m chatModel) update(msg tea.Msg) (chatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case responseMsg:
		m.busy = false
		m.app.AppendMessage(msg.reply)
		var cmd tea.Cmd
		if w, ok := msg.reply.(*chat.InputWidgetMessage); ok {
			cmd = m.focusWidget(w)
		}
		m.rebuildTranscript(true)
		return m, cmd

	case exportDoneMsg:
		if msg.err != nil {
			m.status = "export failed: " + msg.err.Error()
			m.log.Error("transcript export failed", zap.Error(msg.err))
		} else {
			m.status = "exported " + msg.path
			m.log.Info("transcript exported", zap.String("path", msg.path))
		}
		return m, nil

	case copyDoneMsg:
		if msg.err != nil {
			if errors.Is(msg.err, clipboard.ErrToolNotFound) {
				m.status = "copy failed: no clipboard tool"
			} else {
				m.status = "copy failed: " + msg.err.Error()
			}
		} else {
			m.status = "transcript copied"
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	if m.busy {
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.entry, cmd = m.entry.Update(msg)
	cmds = append(cmds, cmd)
	m.search, cmd = m.search.Update(msg)
	cmds = append(cmds, cmd)
	m.widgetInput, cmd = m.widgetInput.Update(msg)
	cmds = append(cmds, cmd)
	m.widgetArea, cmd = m.widgetArea.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m chatModel) handleKey(msg tea.KeyMsg) (chatModel, tea.Cmd) {
	switch m.focus {
	case chatFocusSearch:
		return m.handleSearchKey(msg)
	case chatFocusWidget:
		return m.handleWidgetKey(msg)
	case chatFocusCompose:
		return m.handleComposeKey(msg)
	default:
		return m.handleBrowseKey(msg)
	}
}

func (m chatModel) handleSearchKey(msg tea.KeyMsg) (chatModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.focus = chatFocusBrowse
		m.searchQuery = ""
		m.search.SetValue("")
		m.search.Blur()
		m.applyHighlight(false)
		m.status = ""
		return m, nil
	case "enter":
		m.focus = chatFocusBrowse
		m.search.Blur()
		m.searchQuery = strings.TrimSpace(m.search.Value())
		m.applyHighlight(false)
		if m.searchQuery != "" {
			m.status = fmt.Sprintf("%d matches", m.matchCount)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m chatModel) handleComposeKey(msg tea.KeyMsg) (chatModel, tea.Cmd) {
	// A pending blocking widget hides the entry box, so its keys behave
	// like browse mode until the widget is answered.
	if m.app.ChatBlocked() {
		return m.handleBrowseKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Send):
		return m.send()
	case key.Matches(msg, m.keys.Browse):
		m.focus = chatFocusBrowse
		m.entry.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.entry, cmd = m.entry.Update(msg)
	return m, cmd
}

func (m chatModel) handleBrowseKey(msg tea.KeyMsg) (chatModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Compose):
		if m.app.ChatBlocked() {
			return m.focusActiveWidget()
		}
		m.focus = chatFocusCompose
		return m, m.entry.Focus()

	case key.Matches(msg, m.keys.Widget):
		return m.focusActiveWidget()

	case key.Matches(msg, m.keys.Search):
		m.focus = chatFocusSearch
		m.search.SetValue(m.searchQuery)
		m.search.CursorEnd()
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Export):
		now := time.Now()
		md := export.BuildTranscriptMarkdown(m.app.History, now)
		exp := m.exporter
		m.status = "exporting..."
		return m, func() tea.Msg {
			path, err := exp.WriteMarkdown(md, now)
			return exportDoneMsg{path: path, err: err}
		}

	case key.Matches(msg, m.keys.Copy):
		plain := ansi.Strip(m.transcript)
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			return copyDoneMsg{err: clipboard.Copy(ctx, plain)}
		}

	case msg.String() == "esc":
		if m.searchQuery != "" {
			m.searchQuery = ""
			m.matchCount = 0
			m.applyHighlight(false)
			m.status = ""
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m chatModel) send() (chatModel, tea.Cmd) {
	text := strings.TrimSpace(m.entry.Value())
	if text == "" {
		return m, nil
	}
	m.app.AppendMessage(chat.NewUserMessage(text))
	m.entry.Reset()
	m.busy = true
	m.status = ""
	m.rebuildTranscript(true)
	m.log.Debug("user message", zap.Int("history_len", len(m.app.History)))

	// Respond advances the widget counter, which only the update loop may
	// touch; the command just delivers the precomputed reply.
	reply := m.responder.Respond(text, m.app.NextWidgetKey)
	deliver := func() tea.Msg { return responseMsg{reply: reply} }
	return m, tea.Batch(m.spinner.Tick, deliver)
}

func (m chatModel) focusActiveWidget() (chatModel, tea.Cmd) {
	w := m.app.ActiveInputWidget()
	if w == nil {
		m.status = "no pending input"
		return m, nil
	}
	cmd := m.focusWidget(w)
	return m, cmd
}

func (m *chatModel) focusWidget(w *chat.InputWidgetMessage) tea.Cmd {
	m.active = w
	m.focus = chatFocusWidget
	m.entry.Blur()
	m.status = ""

	switch w.Kind {
	case chat.InputText:
		m.widgetInput.Placeholder = ""
		m.widgetInput.SetValue(w.Value)
		m.widgetInput.CursorEnd()
		return m.widgetInput.Focus()
	case chat.InputDate:
		m.widgetInput.Placeholder = "YYYY-MM-DD"
		m.widgetInput.SetValue(w.Value)
		m.widgetInput.CursorEnd()
		return m.widgetInput.Focus()
	case chat.InputTime:
		m.widgetInput.Placeholder = "HH:MM"
		m.widgetInput.SetValue(w.Value)
		m.widgetInput.CursorEnd()
		return m.widgetInput.Focus()
	case chat.InputNumber:
		m.widgetInput.Placeholder = chat.FormatNumber(w.Spec.Min) + " to " + chat.FormatNumber(w.Spec.Max)
		m.widgetInput.SetValue(w.Value)
		m.widgetInput.CursorEnd()
		return m.widgetInput.Focus()
	case chat.InputTextArea:
		m.widgetArea.SetValue(w.Value)
		return m.widgetArea.Focus()
	case chat.InputSelect:
		m.selectIdx = 0
		for i, opt := range w.Spec.Options {
			if opt == w.Value {
				m.selectIdx = i
				break
			}
		}
	case chat.InputSlider:
		m.sliderVal = w.Spec.Default
		if v, err := strconv.ParseFloat(w.Value, 64); err == nil {
			m.sliderVal = v
		}
	case chat.InputCheckbox:
		m.checkboxOn = w.Value == "true"
	}
	return nil
}

func (m chatModel) handleWidgetKey(msg tea.KeyMsg) (chatModel, tea.Cmd) {
	w := m.active
	if w == nil {
		m.focus = chatFocusCompose
		return m, m.entry.Focus()
	}

	switch msg.String() {
	case "esc":
		return m.abandonWidget()
	case "enter":
		return m.commitWidget()
	}

	switch w.Kind {
	case chat.InputText, chat.InputDate, chat.InputTime, chat.InputNumber:
		var cmd tea.Cmd
		m.widgetInput, cmd = m.widgetInput.Update(msg)
		return m, cmd
	case chat.InputTextArea:
		var cmd tea.Cmd
		m.widgetArea, cmd = m.widgetArea.Update(msg)
		return m, cmd
	case chat.InputSelect:
		if len(w.Spec.Options) == 0 {
			return m, nil
		}
		switch msg.String() {
		case "left", "h":
			m.selectIdx = (m.selectIdx - 1 + len(w.Spec.Options)) % len(w.Spec.Options)
		case "right", "l":
			m.selectIdx = (m.selectIdx + 1) % len(w.Spec.Options)
		}
	case chat.InputSlider:
		switch msg.String() {
		case "left", "h":
			if m.sliderVal > w.Spec.Min {
				m.sliderVal--
			}
		case "right", "l":
			if m.sliderVal < w.Spec.Max {
				m.sliderVal++
			}
		}
	case chat.InputCheckbox:
		if msg.String() == " " {
			m.checkboxOn = !m.checkboxOn
		}
	}
	return m, nil
}

func (m chatModel) abandonWidget() (chatModel, tea.Cmd) {
	m.active = nil
	m.widgetInput.Blur()
	m.widgetArea.Blur()
	m.widgetInput.SetValue("")
	m.widgetArea.Reset()
	if m.app.ChatBlocked() {
		m.focus = chatFocusBrowse
		return m, nil
	}
	m.focus = chatFocusCompose
	return m, m.entry.Focus()
}

func (m chatModel) commitWidget() (chatModel, tea.Cmd) {
	w := m.active
	var value string

	switch w.Kind {
	case chat.InputText:
		value = strings.TrimSpace(m.widgetInput.Value())
	case chat.InputTextArea:
		value = strings.TrimSpace(m.widgetArea.Value())
	case chat.InputSelect:
		if len(w.Spec.Options) > 0 {
			value = w.Spec.Options[m.selectIdx]
		}
	case chat.InputSlider:
		value = chat.FormatNumber(m.sliderVal)
	case chat.InputCheckbox:
		value = strconv.FormatBool(m.checkboxOn)
	case chat.InputDate:
		raw := strings.TrimSpace(m.widgetInput.Value())
		if _, err := time.Parse(chat.DateLayout, raw); err != nil {
			m.status = "invalid date, use YYYY-MM-DD"
			return m, nil
		}
		value = raw
	case chat.InputTime:
		raw := strings.TrimSpace(m.widgetInput.Value())
		if _, err := time.Parse(chat.TimeLayout, raw); err != nil {
			m.status = "invalid time, use HH:MM"
			return m, nil
		}
		value = raw
	case chat.InputNumber:
		raw := strings.TrimSpace(m.widgetInput.Value())
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			m.status = "invalid number"
			return m, nil
		}
		if v < w.Spec.Min {
			v = w.Spec.Min
		}
		if v > w.Spec.Max {
			v = w.Spec.Max
		}
		value = chat.FormatNumber(v)
	}

	w.Value = value
	w.Submitted = true
	m.app.SetWidgetValue(w.Key, value)
	m.log.Debug("widget answered",
		zap.String("key", w.Key),
		zap.String("kind", w.Kind.String()))

	m.active = nil
	m.widgetInput.Blur()
	m.widgetArea.Blur()
	m.widgetInput.SetValue("")
	m.widgetArea.Reset()
	m.status = ""
	m.rebuildTranscript(true)

	m.focus = chatFocusCompose
	return m, m.entry.Focus()
}

func (m *chatModel) resize(w, h int) {
	m.width, m.height = w, h

	body := h - chatEntryLines - 6
	if body < 6 {
		body = 6
	}
	m.viewport.Width = w - 4
	m.viewport.Height = body
	m.entry.SetWidth(w - 4)
	m.widgetArea.SetWidth(w - 4)
	m.widgetInput.Width = w - 8
	m.search.Width = w - 8
	m.help.Width = w

	wrap := m.viewport.Width - 2
	if wrap < 20 {
		wrap = 20
	}
	if r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.glamourStyle()),
		glamour.WithWordWrap(wrap),
	); err == nil {
		m.renderer = r
	}
	m.rebuildTranscript(false)
}

func (m chatModel) glamourStyle() string {
	if m.cfg.GlamourStyle != "" {
		return m.cfg.GlamourStyle
	}
	return config.DefaultGlamourStyle
}

func (m *chatModel) rebuildTranscript(gotoBottom bool) {
	if len(m.app.History) == 0 {
		m.transcript = hintStyle.Render("Start the conversation below.")
		m.matchCount = 0
		m.viewport.SetContent(m.transcript)
		return
	}

	var b strings.Builder
	for i, msg := range m.app.History {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.speakerLabel(msg))
		b.WriteString("\n")
		b.WriteString(m.renderMessage(msg))
	}
	m.transcript = b.String()
	m.applyHighlight(gotoBottom)
}

func (m *chatModel) applyHighlight(gotoBottom bool) {
	query := strings.TrimSpace(m.searchQuery)
	if query == "" {
		m.matchCount = 0
		m.viewport.SetContent(m.transcript)
		if gotoBottom {
			m.viewport.GotoBottom()
		}
		return
	}

	res := highlight.ApplyANSI(m.transcript, query, func(s string) string {
		return searchMatchStyle.Render(s)
	})
	m.matchCount = res.Count
	m.viewport.SetContent(res.Text)
	if first := res.FirstLine(); first >= 0 {
		m.viewport.SetYOffset(first)
	} else if gotoBottom {
		m.viewport.GotoBottom()
	}
}

func (m chatModel) speakerLabel(msg chat.Message) string {
	if msg.Role() == chat.RoleUser {
		return userLabelStyle.Render("You")
	}
	return assistantLabelStyle.Render("Assistant")
}

func (m *chatModel) renderMessage(msg chat.Message) string {
	md := msg.Markdown()
	key := renderKey(msg.Role(), md, m.viewport.Width)
	if cached, ok := m.cache.Get(key); ok {
		return cached
	}

	out := md + "\n"
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(md); err == nil {
			out = rendered
		}
	}
	m.cache.Add(key, out)
	return out
}

func renderKey(role, md string, width int) uint64 {
	h := fnv.New64a()
	h.Write([]byte(role))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(width)))
	h.Write([]byte{0})
	h.Write([]byte(md))
	return h.Sum64()
}

func (m chatModel) View() string {
	transcript := panelStyle(m.focus == chatFocusBrowse).
		Width(m.width - 2).
		Height(m.viewport.Height).
		Render(m.viewport.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		transcript,
		m.entryView(),
		m.statusLine(),
		m.help.View(m.keys),
	)
}

func (m chatModel) entryView() string {
	var inner string
	switch {
	case m.focus == chatFocusWidget && m.active != nil:
		inner = m.widgetControlView(m.active)
	case m.focus == chatFocusSearch:
		inner = m.search.View()
	case m.app.ChatBlocked():
		inner = hintStyle.Render("The assistant is waiting for input. Press w to answer.")
	default:
		inner = m.entry.View()
	}
	return panelStyle(m.focus != chatFocusBrowse).
		Width(m.width - 2).
		Height(chatEntryLines).
		Render(inner)
}

func (m chatModel) widgetControlView(w *chat.InputWidgetMessage) string {
	label := fieldLabelStyle.Render(w.Spec.Label)
	hint := hintStyle.Render("enter confirms, esc cancels")

	var control string
	switch w.Kind {
	case chat.InputText, chat.InputDate, chat.InputTime, chat.InputNumber:
		control = m.widgetInput.View()
	case chat.InputTextArea:
		return lipgloss.JoinVertical(lipgloss.Left, label, m.widgetArea.View())
	case chat.InputSelect:
		parts := make([]string, 0, len(w.Spec.Options))
		for i, opt := range w.Spec.Options {
			if i == m.selectIdx {
				parts = append(parts, focusedFieldStyle.Render("["+opt+"]"))
			} else {
				parts = append(parts, " "+opt+" ")
			}
		}
		control = strings.Join(parts, " ")
		hint = hintStyle.Render("←/→ choose, enter confirms, esc cancels")
	case chat.InputSlider:
		control = sliderGauge(w.Spec, m.sliderVal)
		hint = hintStyle.Render("←/→ adjust, enter confirms, esc cancels")
	case chat.InputCheckbox:
		box := "[ ]"
		if m.checkboxOn {
			box = "[x]"
		}
		control = focusedFieldStyle.Render(box)
		hint = hintStyle.Render("space toggles, enter confirms, esc cancels")
	}
	return lipgloss.JoinVertical(lipgloss.Left, label, control, hint)
}

func sliderGauge(spec chat.InputSpec, val float64) string {
	span := spec.Max - spec.Min
	filled := 0
	if span > 0 {
		filled = int((val-spec.Min)/span*10 + 0.5)
	}
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	bar := strings.Repeat("■", filled) + strings.Repeat("□", 10-filled)
	return fmt.Sprintf("%s  %s / %s", bar, chat.FormatNumber(val), chat.FormatNumber(spec.Max))
}

func (m chatModel) statusLine() string {
	status := "[chat]"
	if m.busy {
		status += "  " + m.spinner.View() + " thinking"
	}
	if m.focus == chatFocusWidget && m.active != nil {
		status += "  [answering " + m.active.Key + "]"
	} else if m.app.ChatBlocked() {
		status += "  [input required]"
	}
	if strings.TrimSpace(m.searchQuery) != "" {
		status += fmt.Sprintf("  [%d matches]", m.matchCount)
	}
	if strings.TrimSpace(m.status) != "" {
		status += "  " + shorten(strings.TrimSpace(m.status), 80)
	}
	return statusStyle.Render(status)
}
