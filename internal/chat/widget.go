package chat

import (
	"fmt"
	"strconv"
)

type OutputKind int

const (
	OutputLineChart OutputKind = iota
	OutputBarChart
	OutputImage
	OutputTable
	OutputMarkdown
)

var outputKindTags = map[OutputKind]string{
	OutputLineChart: "line_chart",
	OutputBarChart:  "bar_chart",
	OutputImage:     "image",
	OutputTable:     "table",
	OutputMarkdown:  "markdown",
}

func (k OutputKind) String() string {
	if tag, ok := outputKindTags[k]; ok {
		return tag
	}
	return fmt.Sprintf("output(%d)", int(k))
}

func ParseOutputKind(tag string) (OutputKind, error) {
	for k, t := range outputKindTags {
		if t == tag {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown output widget type %q", tag)
}

type InputKind int

const (
	InputText InputKind = iota
	InputSelect
	InputSlider
	InputCheckbox
	InputDate
	InputTime
	InputNumber
	InputTextArea
)

var inputKindTags = map[InputKind]string{
	InputText:     "text_input",
	InputSelect:   "selectbox",
	InputSlider:   "slider",
	InputCheckbox: "checkbox",
	InputDate:     "date_input",
	InputTime:     "time_input",
	InputNumber:   "number_input",
	InputTextArea: "text_area",
}

func (k InputKind) String() string {
	if tag, ok := inputKindTags[k]; ok {
		return tag
	}
	return fmt.Sprintf("input(%d)", int(k))
}

func ParseInputKind(tag string) (InputKind, error) {
	for k, t := range inputKindTags {
		if t == tag {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown input widget type %q", tag)
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type TableColumn struct {
	Name  string
	Cells []string
}

type OutputData struct {
	Series  [][]float64
	URL     string
	Caption string
	Columns []TableColumn
	Body    string
}

type OutputWidgetMessage struct {
	Kind OutputKind
	Data OutputData
}

func (m *OutputWidgetMessage) Role() string { return RoleAssistant }

type InputSpec struct {
	Label   string
	Options []string
	Min     float64
	Max     float64
	Default float64
}

type InputWidgetMessage struct {
	Kind      InputKind
	Key       string
	Spec      InputSpec
	Value     string
	Submitted bool
}

// NewInputWidget seeds the value the way each widget presents it before the
// user touches it: first option for selects, the configured default for
// slider and number, unchecked for checkbox, empty otherwise.
func NewInputWidget(kind InputKind, key string, spec InputSpec) *InputWidgetMessage {
	w := &InputWidgetMessage{Kind: kind, Key: key, Spec: spec}
	switch kind {
	case InputSelect:
		if len(spec.Options) > 0 {
			w.Value = spec.Options[0]
		}
	case InputSlider, InputNumber:
		w.Value = FormatNumber(spec.Default)
	case InputCheckbox:
		w.Value = "false"
	}
	return w
}

func (m *InputWidgetMessage) Role() string { return RoleAssistant }

// Blocking reports whether the surrounding chat loop should suppress its
// text entry while this widget is pending. Free-text widgets block; the
// loop, not the widget, decides what to do about it.
func (m *InputWidgetMessage) Blocking() bool {
	return m.Kind == InputText || m.Kind == InputTextArea
}

func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
