package assistant

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"ai-stream/internal/chat"
)

const unknownWidgetReply = "Sorry, I encountered an unknown widget type."

var textTemplates = []string{
	"Thanks for sharing: %s",
	"Could you elaborate on that?",
	"Interesting point!",
	"I appreciate your input.",
	"Let's discuss further.",
	"That's a great question.",
	"I see. Tell me more.",
	"You said: %s. Let's explore that.",
	"What makes you say that?",
	"How does that make you feel?",
}

type outputDescriptor struct {
	tag  string
	data func(rng *rand.Rand) chat.OutputData
}

var outputPool = []outputDescriptor{
	{tag: "line_chart", data: randomSeries},
	{tag: "bar_chart", data: randomSeries},
	{tag: "image", data: func(*rand.Rand) chat.OutputData {
		return chat.OutputData{
			URL:     "https://via.placeholder.com/150",
			Caption: "A placeholder image",
		}
	}},
	{tag: "table", data: func(*rand.Rand) chat.OutputData {
		return chat.OutputData{Columns: []chat.TableColumn{
			{Name: "Column 1", Cells: []string{"A", "B", "C"}},
			{Name: "Column 2", Cells: []string{"1", "2", "3"}},
			{Name: "Column 3", Cells: []string{"4.5", "5.5", "6.5"}},
		}}
	}},
	{tag: "markdown", data: func(*rand.Rand) chat.OutputData {
		return chat.OutputData{
			Body: "### This is a Markdown header\n\nHere is some **bold** text and *italic* text.",
		}
	}},
}

type inputDescriptor struct {
	tag  string
	spec chat.InputSpec
}

var inputPool = []inputDescriptor{
	{tag: "text_input", spec: chat.InputSpec{
		Label: "Assistant asks: Please provide your name:",
	}},
	{tag: "selectbox", spec: chat.InputSpec{
		Label:   "Assistant asks: Choose your favorite color:",
		Options: []string{"Red", "Green", "Blue", "Yellow", "Purple", "Orange"},
	}},
	{tag: "slider", spec: chat.InputSpec{
		Label: "Assistant asks: Rate your experience from 1 to 10:",
		Min:   1, Max: 10, Default: 5,
	}},
	{tag: "checkbox", spec: chat.InputSpec{
		Label: "Assistant asks: Do you agree with the terms?",
	}},
	{tag: "date_input", spec: chat.InputSpec{
		Label: "Assistant asks: Select your birth date:",
	}},
	{tag: "time_input", spec: chat.InputSpec{
		Label: "Assistant asks: What time works best for you?",
	}},
	{tag: "number_input", spec: chat.InputSpec{
		Label: "Assistant asks: Enter a number:",
		Min:   0, Max: 100, Default: 50,
	}},
	{tag: "text_area", spec: chat.InputSpec{
		Label: "Assistant asks: Please describe your issue in detail:",
	}},
}

type Responder struct {
	rng *rand.Rand
}

// New builds a responder; seed 0 means time-seeded, any other value makes
// the response sequence reproducible.
func New(seed int64) *Responder {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Responder{rng: rand.New(rand.NewSource(seed))}
}

// Respond picks uniformly between a canned text reply, an output widget and
// an input widget. nextWidgetKey is called only when an input widget is
// actually produced, so the caller's widget counter never skips.
func (r *Responder) Respond(userText string, nextWidgetKey func() string) chat.Message {
	switch r.rng.Intn(3) {
	case 0:
		return r.textReply(userText)
	case 1:
		return r.outputWidget()
	default:
		return r.inputWidget(nextWidgetKey)
	}
}

func (r *Responder) textReply(userText string) chat.Message {
	tpl := textTemplates[r.rng.Intn(len(textTemplates))]
	if strings.Contains(tpl, "%s") {
		return chat.NewAssistantMessage(fmt.Sprintf(tpl, userText))
	}
	return chat.NewAssistantMessage(tpl)
}

func (r *Responder) outputWidget() chat.Message {
	d := outputPool[r.rng.Intn(len(outputPool))]
	kind, err := chat.ParseOutputKind(d.tag)
	if err != nil {
		return chat.NewAssistantMessage(unknownWidgetReply)
	}
	return &chat.OutputWidgetMessage{Kind: kind, Data: d.data(r.rng)}
}

func (r *Responder) inputWidget(nextWidgetKey func() string) chat.Message {
	d := inputPool[r.rng.Intn(len(inputPool))]
	kind, err := chat.ParseInputKind(d.tag)
	if err != nil {
		return chat.NewAssistantMessage(unknownWidgetReply)
	}
	return chat.NewInputWidget(kind, nextWidgetKey(), d.spec)
}

func randomSeries(rng *rand.Rand) chat.OutputData {
	rows := make([][]float64, 20)
	for i := range rows {
		rows[i] = []float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
	}
	return chat.OutputData{Series: rows}
}
