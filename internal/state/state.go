package state

import (
	"fmt"

	"ai-stream/internal/chat"
	"ai-stream/internal/store"
)

// AppState is the single session-state handle. It is created once at
// startup and passed explicitly to everything that needs it; nothing in
// the program keeps session state anywhere else.
type AppState struct {
	History       []chat.Message
	WidgetCounter int
	WidgetValues  map[string]string

	Functions  map[string]string
	Assistants map[string]string
	Prompts    map[string]string

	CurrentFunctionID string
	ThreadID          string
}

func New(st *store.Store) (*AppState, error) {
	s := &AppState{WidgetValues: map[string]string{}}

	var err error
	if s.Functions, err = st.Names(store.KindFunction); err != nil {
		return nil, fmt.Errorf("load function names: %w", err)
	}
	if s.Assistants, err = st.Names(store.KindAssistant); err != nil {
		return nil, fmt.Errorf("load assistant names: %w", err)
	}
	if s.Prompts, err = st.Names(store.KindPrompt); err != nil {
		return nil, fmt.Errorf("load prompt names: %w", err)
	}
	return s, nil
}

// NextWidgetKey advances the widget counter. This is the only place the
// counter changes, so keys never repeat within a session.
func (s *AppState) NextWidgetKey() string {
	s.WidgetCounter++
	return fmt.Sprintf("widget_%d", s.WidgetCounter)
}

func (s *AppState) AppendMessage(m chat.Message) {
	s.History = append(s.History, m)
}

func (s *AppState) SetWidgetValue(key, value string) {
	s.WidgetValues[key] = value
}

func (s *AppState) WidgetValue(key string) (string, bool) {
	v, ok := s.WidgetValues[key]
	return v, ok
}

// ActiveInputWidget returns the newest unsubmitted input widget, the one
// user interaction should go to.
func (s *AppState) ActiveInputWidget() *chat.InputWidgetMessage {
	for i := len(s.History) - 1; i >= 0; i-- {
		if w, ok := s.History[i].(*chat.InputWidgetMessage); ok && !w.Submitted {
			return w
		}
	}
	return nil
}

// ChatBlocked reports whether any pending widget suppresses the chat
// entry box.
func (s *AppState) ChatBlocked() bool {
	for _, m := range s.History {
		if w, ok := m.(*chat.InputWidgetMessage); ok && !w.Submitted && w.Blocking() {
			return true
		}
	}
	return false
}

func (s *AppState) PutFunctionName(id, name string) {
	s.Functions[id] = name
}

func (s *AppState) DeleteFunction(id string) {
	delete(s.Functions, id)
	if s.CurrentFunctionID == id {
		s.CurrentFunctionID = ""
	}
}
