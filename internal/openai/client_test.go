package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-stream/internal/config"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.OpenAI{APIKey: "sk-test", BaseURL: srv.URL})
}

func TestRetrieveAssistant(t *testing.T) {
	var gotAuth, gotBeta, gotPath string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBeta = r.Header.Get("OpenAI-Beta")
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"id":"asst_1","name":"Helper","tools":[{"type":"code_interpreter"}]}`))
	}))

	asst, err := client.RetrieveAssistant(context.Background(), "asst_1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "assistants=v2", gotBeta)
	assert.Equal(t, "/assistants/asst_1", gotPath)
	assert.Equal(t, "asst_1", asst.ID)
	assert.Equal(t, "Helper", asst.Name)
	assert.Len(t, asst.Tools, 1)
}

func TestRetrieveAssistantError(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"no such assistant"}}`))
	}))

	_, err := client.RetrieveAssistant(context.Background(), "asst_missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=404")
	assert.Contains(t, err.Error(), "no such assistant")
}

func TestUpdateAssistantTools(t *testing.T) {
	var gotBody struct {
		Tools []json.RawMessage `json:"tools"`
	}
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"id":"asst_1","name":"Helper","tools":[{"type":"code_interpreter"}]}`))
	}))

	tools := []json.RawMessage{json.RawMessage(`{"type":"code_interpreter"}`)}
	asst, err := client.UpdateAssistantTools(context.Background(), "asst_1", tools)
	require.NoError(t, err)
	assert.Equal(t, "asst_1", asst.ID)
	require.Len(t, gotBody.Tools, 1)
	assert.JSONEq(t, `{"type":"code_interpreter"}`, string(gotBody.Tools[0]))
}

func TestUpdateAssistantToolsNilSendsEmptyList(t *testing.T) {
	var raw map[string]json.RawMessage
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"id":"asst_1","name":"Helper","tools":[]}`))
	}))

	_, err := client.UpdateAssistantTools(context.Background(), "asst_1", nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw["tools"]))
}

func TestMissingAPIKey(t *testing.T) {
	client := New(config.OpenAI{})
	_, err := client.RetrieveAssistant(context.Background(), "asst_1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
	assert.False(t, client.Configured())
}

func TestReplaceFunctionTool(t *testing.T) {
	tools := []json.RawMessage{
		json.RawMessage(`{"type":"code_interpreter"}`),
		json.RawMessage(`{"type":"function","function":{"name":"get_weather","parameters":{}}}`),
		json.RawMessage(`{"type":"function","function":{"name":"get_time","parameters":{}}}`),
	}
	schema := map[string]any{"name": "get_weather", "parameters": map[string]any{"type": "object"}}

	out, err := ReplaceFunctionTool(tools, "get_weather", schema)
	require.NoError(t, err)
	require.Len(t, out, 3)

	// Untouched tools keep their relative order, the replacement goes last.
	assert.JSONEq(t, `{"type":"code_interpreter"}`, string(out[0]))
	assert.Contains(t, string(out[1]), "get_time")

	var last struct {
		Type     string `json:"type"`
		Function struct {
			Name string `json:"name"`
		} `json:"function"`
	}
	require.NoError(t, json.Unmarshal(out[2], &last))
	assert.Equal(t, "function", last.Type)
	assert.Equal(t, "get_weather", last.Function.Name)
}

func TestReplaceFunctionToolEmptyList(t *testing.T) {
	out, err := ReplaceFunctionTool(nil, "anything", map[string]any{"name": "fresh"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Contains(t, string(out[0]), `"fresh"`)
}

func TestPropagateFunction(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/assistants/asst_bad" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"asst_ok","name":"Helper","tools":[]}`))
	}))

	results := client.PropagateFunction(context.Background(), []string{"asst_ok", "asst_bad"},
		"get_weather", map[string]any{"name": "get_weather"})
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, "asst_ok", results[0].AssistantID)
	require.Error(t, results[1].Err)
	assert.Contains(t, results[1].Err.Error(), "status=500")
}
