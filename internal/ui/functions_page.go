package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"ai-stream/internal/clipboard"
	"ai-stream/internal/config"
	"ai-stream/internal/openai"
	"ai-stream/internal/schema"
	"ai-stream/internal/state"
	"ai-stream/internal/store"
)

type fnFocus int

const (
	fnFocusList fnFocus = iota
	fnFocusEditor
	fnFocusExpert
)

type fieldKind int

const (
	fieldSchemaName fieldKind = iota
	fieldFnName
	fieldDescription
	fieldParamName
	fieldParamDesc
	fieldParamType
	fieldParamRequired
	fieldParamEnum
	fieldParamItems
)

// fieldRef addresses one editable cell of the form. param is -1 for the
// function-level fields.
type fieldRef struct {
	param int
	kind  fieldKind
}

type functionItem struct {
	id         string
	name       string
	params     int
	usedBy     int
	schemaJSON string
}

func (i functionItem) Title() string { return i.name }
func (i functionItem) Description() string {
	return fmt.Sprintf("%d params · %d assistants", i.params, i.usedBy)
}
func (i functionItem) FilterValue() string { return i.name }

type functionsLoadedMsg struct {
	items []list.Item
	err   error
}

type functionLoadedMsg struct {
	fn  schema.Function
	err error
}

type functionSavedMsg struct {
	fn  schema.Function
	err error
}

type functionDeletedMsg struct {
	id  string
	err error
}

type propagateDoneMsg struct{ results []openai.PropagationResult }

type schemaCopiedMsg struct{ err error }

type functionsModel struct {
	cfg    config.AppConfig
	app    *state.AppState
	store  *store.Store
	client *openai.Client
	log    *zap.Logger

	list    list.Model
	preview viewport.Model
	field   textinput.Model
	expert  textarea.Model
	help    help.Model
	keys    functionsKeyMap

	fn        schema.Function
	savedName string
	focused   fieldRef
	deleteID  string

	focus      fnFocus
	confirming bool

	renderer *glamour.TermRenderer

	width  int
	height int
	status string
}

func newFunctionsModel(cfg config.AppConfig, app *state.AppState, st *store.Store, client *openai.Client, log *zap.Logger) functionsModel {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Functions"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	field := textinput.New()
	field.CharLimit = 512

	expert := textarea.New()
	expert.CharLimit = 0

	return functionsModel{
		cfg:     cfg,
		app:     app,
		store:   st,
		client:  client,
		log:     log,
		list:    l,
		preview: viewport.New(40, 10),
		field:   field,
		expert:  expert,
		help:    help.New(),
		keys:    defaultFunctionsKeys(),
		focused: fieldRef{param: -1, kind: fieldSchemaName},
	}
}

func (m functionsModel) init() tea.Cmd {
	return tea.Batch(m.loadFunctionsCmd(), textinput.Blink)
}

func (m functionsModel) allowsPageSwitch() bool {
	return m.focus == fnFocusList && !m.confirming
}

func (m functionsModel) loadFunctionsCmd() tea.Cmd {
	st := m.store
	return func() tea.Msg {
		recs, err := st.List(store.KindFunction)
		if err != nil {
			return functionsLoadedMsg{err: err}
		}
		items := make([]list.Item, 0, len(recs))
		for _, rec := range recs {
			fn, err := store.DecodeFunction(rec)
			if err != nil {
				return functionsLoadedMsg{err: err}
			}
			_, text, err := fn.BuildSchema()
			if err != nil {
				return functionsLoadedMsg{err: err}
			}
			items = append(items, functionItem{
				id:         fn.ID,
				name:       fn.SchemaName,
				params:     len(fn.Parameters),
				usedBy:     len(fn.UsedBy),
				schemaJSON: text,
			})
		}
		return functionsLoadedMsg{items: items}
	}
}

func (m functionsModel) loadOneCmd(id string) tea.Cmd {
	st := m.store
	return func() tea.Msg {
		fn, err := st.GetFunction(id)
		if errors.Is(err, store.ErrNotFound) {
			// A missing record edits as a new function under the same id.
			fn = schema.NewFunction()
			fn.ID = id
			err = nil
		}
		return functionLoadedMsg{fn: fn, err: err}
	}
}

func (m functionsModel) saveCmd(fn schema.Function) tea.Cmd {
	st := m.store
	return func() tea.Msg {
		return functionSavedMsg{fn: fn, err: st.PutFunction(fn)}
	}
}

func (m functionsModel) deleteCmd(id string) tea.Cmd {
	st := m.store
	return func() tea.Msg {
		return functionDeletedMsg{id: id, err: st.DeleteFunction(id)}
	}
}

func (m functionsModel) propagateCmd(fn schema.Function, oldName string, schemaMap map[string]any) tea.Cmd {
	client := m.client
	ids := append([]string(nil), fn.UsedBy...)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		return propagateDoneMsg{results: client.PropagateFunction(ctx, ids, oldName, schemaMap)}
	}
}

func copySchemaCmd(text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return schemaCopiedMsg{err: clipboard.Copy(ctx, text)}
	}
}

func (m functionsModel) update(msg tea.Msg) (functionsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case functionsLoadedMsg:
		if msg.err != nil {
			m.status = shorten("load failed: "+msg.err.Error(), 100)
			m.log.Error("list functions failed", zap.Error(msg.err))
			return m, nil
		}
		for _, it := range msg.items {
			if fi, ok := it.(functionItem); ok {
				m.app.PutFunctionName(fi.id, fi.name)
			}
		}
		return m, m.list.SetItems(msg.items)

	case functionLoadedMsg:
		if msg.err != nil {
			m.status = shorten("load failed: "+msg.err.Error(), 100)
			m.log.Error("load function failed", zap.Error(msg.err))
			return m, nil
		}
		return m, m.openEditor(msg.fn)

	case functionSavedMsg:
		if msg.err != nil {
			m.status = shorten("save failed: "+msg.err.Error(), 100)
			m.log.Error("save function failed", zap.String("id", msg.fn.ID), zap.Error(msg.err))
			return m, nil
		}
		m.app.PutFunctionName(msg.fn.ID, msg.fn.SchemaName)
		m.app.CurrentFunctionID = msg.fn.ID
		m.status = "saved " + msg.fn.SchemaName
		m.log.Info("function saved",
			zap.String("id", msg.fn.ID),
			zap.String("name", msg.fn.SchemaName))
		cmds := []tea.Cmd{m.loadFunctionsCmd()}
		// Propagation runs only once the local write is confirmed, replacing
		// the tool entry still registered under the pre-save name.
		if len(msg.fn.UsedBy) > 0 {
			if !m.client.Configured() {
				m.status += " (propagation skipped, no api key)"
			} else if schemaMap, _, err := msg.fn.BuildSchema(); err != nil {
				m.log.Error("build schema for propagation", zap.Error(err))
			} else {
				cmds = append(cmds, m.propagateCmd(msg.fn, m.savedName, schemaMap))
			}
		}
		m.savedName = msg.fn.Name
		return m, tea.Batch(cmds...)

	case functionDeletedMsg:
		if msg.err != nil {
			m.status = shorten("delete failed: "+msg.err.Error(), 100)
			m.log.Error("delete function failed", zap.String("id", msg.id), zap.Error(msg.err))
			return m, nil
		}
		m.app.DeleteFunction(msg.id)
		if m.fn.ID == msg.id {
			m.fn = schema.Function{}
			m.preview.SetContent("")
			m.focus = fnFocusList
		}
		m.status = "deleted"
		return m, m.loadFunctionsCmd()

	case propagateDoneMsg:
		ok := 0
		for _, r := range msg.results {
			if r.Err != nil {
				m.log.Warn("assistant update failed",
					zap.String("assistant_id", r.AssistantID),
					zap.Error(r.Err))
				continue
			}
			ok++
		}
		m.status = fmt.Sprintf("updated %d/%d assistants", ok, len(msg.results))
		return m, nil

	case schemaCopiedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, clipboard.ErrToolNotFound) {
				m.status = "copy failed: no clipboard tool"
			} else {
				m.status = "copy failed: " + msg.err.Error()
			}
		} else {
			m.status = "schema copied"
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.field, cmd = m.field.Update(msg)
	cmds = append(cmds, cmd)
	m.expert, cmd = m.expert.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m functionsModel) handleKey(msg tea.KeyMsg) (functionsModel, tea.Cmd) {
	if m.confirming {
		return m.handleConfirmKey(msg)
	}
	switch m.focus {
	case fnFocusExpert:
		return m.handleExpertKey(msg)
	case fnFocusEditor:
		return m.handleEditorKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

func (m functionsModel) handleConfirmKey(msg tea.KeyMsg) (functionsModel, tea.Cmd) {
	switch msg.String() {
	case "y":
		id := m.deleteID
		m.confirming = false
		m.deleteID = ""
		m.status = ""
		return m, m.deleteCmd(id)
	case "n", "esc":
		m.confirming = false
		m.deleteID = ""
		m.status = ""
	}
	return m, nil
}

func (m functionsModel) handleListKey(msg tea.KeyMsg) (functionsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NewFunction):
		return m, m.openEditor(schema.NewFunction())

	case key.Matches(msg, m.keys.Load):
		item, ok := m.list.SelectedItem().(functionItem)
		if !ok {
			return m, nil
		}
		if item.id == m.fn.ID && item.id == m.app.CurrentFunctionID {
			// Already the active function; reopening keeps unsaved edits.
			m.focus = fnFocusEditor
			return m, m.loadField()
		}
		return m, m.loadOneCmd(item.id)

	case key.Matches(msg, m.keys.Delete):
		item, ok := m.list.SelectedItem().(functionItem)
		if !ok {
			return m, nil
		}
		m.confirming = true
		m.deleteID = item.id
		m.status = "delete " + item.name + "? y/n"
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		item, ok := m.list.SelectedItem().(functionItem)
		if !ok {
			return m, nil
		}
		return m, copySchemaCmd(item.schemaJSON)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *functionsModel) openEditor(fn schema.Function) tea.Cmd {
	for i := range fn.Parameters {
		fn.Parameters[i] = schema.Normalize(fn.Parameters[i])
	}
	m.fn = fn
	m.savedName = fn.Name
	m.app.CurrentFunctionID = fn.ID
	m.focus = fnFocusEditor
	m.focused = fieldRef{param: -1, kind: fieldSchemaName}
	m.status = ""
	m.rebuildPreview()
	return m.loadField()
}

func (m functionsModel) handleEditorKey(msg tea.KeyMsg) (functionsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.commitField()
		m.field.Blur()
		m.focus = fnFocusList
		m.status = ""
		return m, m.loadFunctionsCmd()

	case key.Matches(msg, m.keys.NextField):
		return m, m.moveFocus(1)

	case key.Matches(msg, m.keys.PrevField):
		return m, m.moveFocus(-1)

	case key.Matches(msg, m.keys.AddParam):
		m.commitField()
		m.fn.Parameters = append(m.fn.Parameters, schema.NewParameter())
		m.focused = fieldRef{param: len(m.fn.Parameters) - 1, kind: fieldParamName}
		m.rebuildPreview()
		return m, m.loadField()

	case key.Matches(msg, m.keys.DeleteParam):
		if m.focused.param < 0 || m.focused.param >= len(m.fn.Parameters) {
			return m, nil
		}
		i := m.focused.param
		m.fn.Parameters = schema.RemoveParameter(m.fn.Parameters, m.fn.Parameters[i].ID)
		if i >= len(m.fn.Parameters) {
			i = len(m.fn.Parameters) - 1
		}
		if i < 0 {
			m.focused = fieldRef{param: -1, kind: fieldSchemaName}
		} else {
			m.focused = fieldRef{param: i, kind: fieldParamName}
		}
		m.rebuildPreview()
		return m, m.loadField()

	case key.Matches(msg, m.keys.Save):
		return m.save()

	case key.Matches(msg, m.keys.Expert):
		return m.openExpert()
	}

	if isTextField(m.focused.kind) {
		var cmd tea.Cmd
		m.field, cmd = m.field.Update(msg)
		m.setFieldValue(m.focused, m.field.Value())
		m.rebuildPreview()
		return m, cmd
	}

	if m.focused.param < 0 || m.focused.param >= len(m.fn.Parameters) {
		return m, nil
	}
	p := m.fn.Parameters[m.focused.param]
	switch m.focused.kind {
	case fieldParamType:
		switch msg.String() {
		case "left", "h":
			p.Type = cycleType(p.Type, -1)
		case "right", "l", " ":
			p.Type = cycleType(p.Type, 1)
		default:
			return m, nil
		}
		m.fn.Parameters[m.focused.param] = schema.Normalize(p)
	case fieldParamItems:
		switch msg.String() {
		case "left", "h":
			p.ItemsType = cycleType(p.ItemsType, -1)
		case "right", "l", " ":
			p.ItemsType = cycleType(p.ItemsType, 1)
		default:
			return m, nil
		}
		m.fn.Parameters[m.focused.param] = p
	case fieldParamRequired:
		switch msg.String() {
		case " ", "left", "right", "h", "l":
			p.Required = !p.Required
			m.fn.Parameters[m.focused.param] = p
		default:
			return m, nil
		}
	default:
		return m, nil
	}
	m.rebuildPreview()
	return m, nil
}

func cycleType(current string, delta int) string {
	n := len(schema.ParamTypes)
	return schema.ParamTypes[(schema.TypeIndex(current)+delta+n)%n]
}

func (m functionsModel) save() (functionsModel, tea.Cmd) {
	m.commitField()
	if strings.TrimSpace(m.fn.SchemaName) == "" {
		m.status = "schema name is required"
		return m, nil
	}
	if err := m.fn.Validate(); err != nil {
		m.status = shorten("invalid: "+err.Error(), 100)
		return m, nil
	}
	m.status = "saving..."
	return m, m.saveCmd(m.fn)
}

func (m functionsModel) openExpert() (functionsModel, tea.Cmd) {
	m.commitField()
	_, text, err := m.fn.BuildSchema()
	if err != nil {
		m.status = "build schema: " + err.Error()
		return m, nil
	}
	m.expert.SetValue(text)
	m.field.Blur()
	m.focus = fnFocusExpert
	m.status = "expert mode: ctrl+s applies, esc discards"
	return m, m.expert.Focus()
}

func (m functionsModel) handleExpertKey(msg tea.KeyMsg) (functionsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.expert.Blur()
		m.focus = fnFocusEditor
		m.status = ""
		return m, m.loadField()

	case key.Matches(msg, m.keys.Save):
		parsed, err := schema.FromOpenAI(m.fn.SchemaName, []byte(m.expert.Value()))
		if err != nil {
			m.status = shorten(err.Error(), 100)
			return m, nil
		}
		parsed.ID = m.fn.ID
		parsed.UsedBy = m.fn.UsedBy
		for i := range parsed.Parameters {
			parsed.Parameters[i] = schema.Normalize(parsed.Parameters[i])
		}
		m.fn = parsed
		m.expert.Blur()
		m.focus = fnFocusEditor
		m.focused = fieldRef{param: -1, kind: fieldSchemaName}
		m.rebuildPreview()
		m.status = "schema applied"
		return m, m.loadField()
	}

	var cmd tea.Cmd
	m.expert, cmd = m.expert.Update(msg)
	return m, cmd
}

func (m functionsModel) fieldList() []fieldRef {
	refs := []fieldRef{
		{param: -1, kind: fieldSchemaName},
		{param: -1, kind: fieldFnName},
		{param: -1, kind: fieldDescription},
	}
	for i, p := range m.fn.Parameters {
		refs = append(refs,
			fieldRef{param: i, kind: fieldParamName},
			fieldRef{param: i, kind: fieldParamDesc},
			fieldRef{param: i, kind: fieldParamType},
			fieldRef{param: i, kind: fieldParamRequired},
		)
		if schema.CanHaveEnum(p.Type) {
			refs = append(refs, fieldRef{param: i, kind: fieldParamEnum})
		}
		if p.Type == "array" {
			refs = append(refs, fieldRef{param: i, kind: fieldParamItems})
		}
	}
	return refs
}

func isTextField(kind fieldKind) bool {
	switch kind {
	case fieldSchemaName, fieldFnName, fieldDescription, fieldParamName, fieldParamDesc, fieldParamEnum:
		return true
	}
	return false
}

func (m *functionsModel) moveFocus(delta int) tea.Cmd {
	m.commitField()
	refs := m.fieldList()
	idx := 0
	for i, r := range refs {
		if r == m.focused {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(refs)) % len(refs)
	m.focused = refs[idx]
	return m.loadField()
}

func (m *functionsModel) loadField() tea.Cmd {
	if !isTextField(m.focused.kind) {
		m.field.Blur()
		return nil
	}
	m.field.Placeholder = fieldPlaceholder(m.focused.kind)
	m.field.SetValue(m.fieldValue(m.focused))
	m.field.CursorEnd()
	return m.field.Focus()
}

func fieldPlaceholder(kind fieldKind) string {
	switch kind {
	case fieldSchemaName:
		return "schema name"
	case fieldFnName:
		return "function name"
	case fieldDescription:
		return "what the function does"
	case fieldParamName:
		return "parameter name"
	case fieldParamDesc:
		return "parameter description"
	case fieldParamEnum:
		return "comma-separated values"
	}
	return ""
}

func (m *functionsModel) commitField() {
	if !isTextField(m.focused.kind) {
		return
	}
	m.setFieldValue(m.focused, strings.TrimSpace(m.field.Value()))
	m.rebuildPreview()
}

func (m functionsModel) fieldValue(ref fieldRef) string {
	if ref.param < 0 {
		switch ref.kind {
		case fieldSchemaName:
			return m.fn.SchemaName
		case fieldFnName:
			return m.fn.Name
		case fieldDescription:
			return m.fn.Description
		}
		return ""
	}
	if ref.param >= len(m.fn.Parameters) {
		return ""
	}
	p := m.fn.Parameters[ref.param]
	switch ref.kind {
	case fieldParamName:
		return p.Name
	case fieldParamDesc:
		return p.Description
	case fieldParamEnum:
		return schema.EnumText(p.Enum)
	}
	return ""
}

func (m *functionsModel) setFieldValue(ref fieldRef, value string) {
	if ref.param < 0 {
		switch ref.kind {
		case fieldSchemaName:
			m.fn.SchemaName = value
		case fieldFnName:
			m.fn.Name = value
		case fieldDescription:
			m.fn.Description = value
		}
		return
	}
	if ref.param >= len(m.fn.Parameters) {
		return
	}
	switch ref.kind {
	case fieldParamName:
		m.fn.Parameters[ref.param].Name = value
	case fieldParamDesc:
		m.fn.Parameters[ref.param].Description = value
	case fieldParamEnum:
		m.fn.Parameters[ref.param].Enum = schema.ParseEnum(value)
	}
}

func (m *functionsModel) rebuildPreview() {
	_, text, err := m.fn.BuildSchema()
	if err != nil {
		m.preview.SetContent("schema error: " + err.Error())
		return
	}
	body := "```json\n" + text + "\n```"
	if m.renderer != nil {
		if rendered, rerr := m.renderer.Render(body); rerr == nil {
			m.preview.SetContent(rendered)
			return
		}
	}
	m.preview.SetContent(text)
}

func (m *functionsModel) resize(w, h int) {
	m.width, m.height = w, h
	left, right := paneWidths(w)

	innerH := h - 2
	if innerH < 10 {
		innerH = 10
	}
	m.list.SetSize(left-2, innerH-2)

	formH := innerH/2 - 2
	if formH < 5 {
		formH = 5
	}
	previewH := innerH - formH - 4
	if previewH < 3 {
		previewH = 3
	}
	m.preview.Width = right - 4
	m.preview.Height = previewH
	m.field.Width = right - 24
	if m.field.Width < 16 {
		m.field.Width = 16
	}
	m.expert.SetWidth(right - 4)
	m.expert.SetHeight(formH)
	m.help.Width = w

	wrap := right - 6
	if wrap < 20 {
		wrap = 20
	}
	if r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.glamourStyle()),
		glamour.WithWordWrap(wrap),
	); err == nil {
		m.renderer = r
	}
	m.rebuildPreview()
}

func (m functionsModel) glamourStyle() string {
	if m.cfg.GlamourStyle != "" {
		return m.cfg.GlamourStyle
	}
	return config.DefaultGlamourStyle
}

func (m functionsModel) View() string {
	left, right := paneWidths(m.width)
	innerH := m.height - 2
	if innerH < 10 {
		innerH = 10
	}
	formH := innerH/2 - 2
	if formH < 5 {
		formH = 5
	}

	listPane := panelStyle(m.focus == fnFocusList).
		Width(left - 2).
		Height(innerH - 2).
		Render(m.list.View())

	var formBody string
	if m.focus == fnFocusExpert {
		formBody = m.expert.View()
	} else {
		formBody = m.formView()
	}
	formPane := panelStyle(m.focus != fnFocusList).
		Width(right - 2).
		Height(formH).
		Render(formBody)
	previewPane := panelStyle(false).
		Width(right - 2).
		Height(m.preview.Height).
		Render(m.preview.View())

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		listPane,
		lipgloss.JoinVertical(lipgloss.Left, formPane, previewPane),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		body,
		m.statusLine(),
		m.help.View(m.keys),
	)
}

func (m functionsModel) formView() string {
	if m.fn.ID == "" {
		return hintStyle.Render("n creates a function, enter edits the selection")
	}

	var b strings.Builder
	b.WriteString(m.fieldLine("Schema Name", fieldRef{param: -1, kind: fieldSchemaName}))
	b.WriteString("\n")
	b.WriteString(m.fieldLine("Function Name", fieldRef{param: -1, kind: fieldFnName}))
	b.WriteString("\n")
	b.WriteString(m.fieldLine("Description", fieldRef{param: -1, kind: fieldDescription}))
	b.WriteString("\n")

	for i := range m.fn.Parameters {
		p := m.fn.Parameters[i]
		b.WriteString("\n")
		b.WriteString(fieldLabelStyle.Render(fmt.Sprintf("param %d", i+1)))
		b.WriteString("  ")
		b.WriteString(m.fieldCell(fieldRef{param: i, kind: fieldParamName}))
		b.WriteString("  ")
		b.WriteString(m.fieldCell(fieldRef{param: i, kind: fieldParamType}))
		b.WriteString("  ")
		b.WriteString(m.fieldCell(fieldRef{param: i, kind: fieldParamRequired}))
		b.WriteString("\n  ")
		b.WriteString(m.fieldCell(fieldRef{param: i, kind: fieldParamDesc}))
		if schema.CanHaveEnum(p.Type) {
			b.WriteString("  enum: ")
			b.WriteString(m.fieldCell(fieldRef{param: i, kind: fieldParamEnum}))
		}
		if p.Type == "array" {
			b.WriteString("  items: ")
			b.WriteString(m.fieldCell(fieldRef{param: i, kind: fieldParamItems}))
		}
	}

	if len(m.fn.UsedBy) > 0 {
		names := make([]string, 0, len(m.fn.UsedBy))
		for _, id := range m.fn.UsedBy {
			if name, ok := m.app.Assistants[id]; ok {
				names = append(names, name)
			} else {
				names = append(names, id)
			}
		}
		b.WriteString("\n\n")
		b.WriteString(hintStyle.Render("Used by: " + strings.Join(names, ", ")))
	}
	return b.String()
}

func (m functionsModel) fieldLine(label string, ref fieldRef) string {
	return fieldLabelStyle.Render(label+":") + " " + m.fieldCell(ref)
}

func (m functionsModel) fieldCell(ref fieldRef) string {
	focused := m.focus == fnFocusEditor && ref == m.focused
	if focused && isTextField(ref.kind) {
		return m.field.View()
	}
	text := m.displayValue(ref)
	if focused {
		return focusedFieldStyle.Render(text)
	}
	return text
}

func (m functionsModel) displayValue(ref fieldRef) string {
	if ref.param >= 0 && ref.param < len(m.fn.Parameters) {
		p := m.fn.Parameters[ref.param]
		switch ref.kind {
		case fieldParamType:
			return p.Type
		case fieldParamRequired:
			if p.Required {
				return "required"
			}
			return "optional"
		case fieldParamItems:
			return p.ItemsType
		case fieldParamEnum:
			if len(p.Enum) == 0 {
				return "(any)"
			}
			return schema.EnumText(p.Enum)
		}
	}
	v := m.fieldValue(ref)
	if v == "" {
		return "(empty)"
	}
	return v
}

func (m functionsModel) statusLine() string {
	status := "[functions]"
	switch m.focus {
	case fnFocusEditor:
		status += "  [editing " + shorten(m.fn.SchemaName, 30) + "]"
	case fnFocusExpert:
		status += "  [expert]"
	}
	if strings.TrimSpace(m.status) != "" {
		status += "  " + shorten(strings.TrimSpace(m.status), 100)
	}
	return statusStyle.Render(status)
}
