package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-stream/internal/config"
)

const defaultBaseURL = "https://api.openai.com/v1"

type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
}

func New(cfg config.OpenAI) *Client {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if cfg.TimeoutSeconds <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		hc:      &http.Client{Timeout: timeout},
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type Assistant struct {
	ID    string            `json:"id"`
	Name  string            `json:"name"`
	Tools []json.RawMessage `json:"tools"`
}

func (c *Client) RetrieveAssistant(ctx context.Context, id string) (Assistant, error) {
	return c.do(ctx, http.MethodGet, "/assistants/"+id, nil)
}

func (c *Client) UpdateAssistantTools(ctx context.Context, id string, tools []json.RawMessage) (Assistant, error) {
	if tools == nil {
		tools = []json.RawMessage{}
	}
	return c.do(ctx, http.MethodPost, "/assistants/"+id, map[string]any{"tools": tools})
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (Assistant, error) {
	if c.apiKey == "" {
		return Assistant{}, fmt.Errorf("openai api key not configured")
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return Assistant{}, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return Assistant{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", "assistants=v2")
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return Assistant{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Assistant{}, fmt.Errorf("%s %s: status=%d body=%s",
			method, path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var asst Assistant
	if err := json.Unmarshal(raw, &asst); err != nil {
		return Assistant{}, fmt.Errorf("decode assistant: %w", err)
	}
	return asst, nil
}

// ReplaceFunctionTool drops any function tool whose name matches oldName
// and appends the new schema as a function tool. Non-function tools pass
// through untouched.
func ReplaceFunctionTool(tools []json.RawMessage, oldName string, schema map[string]any) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(tools)+1)
	for _, raw := range tools {
		var tool struct {
			Type     string `json:"type"`
			Function struct {
				Name string `json:"name"`
			} `json:"function"`
		}
		if err := json.Unmarshal(raw, &tool); err == nil &&
			tool.Type == "function" && tool.Function.Name == oldName {
			continue
		}
		out = append(out, raw)
	}

	entry, err := json.Marshal(map[string]any{"type": "function", "function": schema})
	if err != nil {
		return nil, fmt.Errorf("encode function tool: %w", err)
	}
	return append(out, json.RawMessage(entry)), nil
}

type PropagationResult struct {
	AssistantID string
	Err         error
}

// PropagateFunction pushes a saved schema to every assistant that uses it,
// replacing the tool entry registered under the function's previous name.
// Failures are collected per assistant, never aborting the rest.
func (c *Client) PropagateFunction(ctx context.Context, assistantIDs []string, oldName string, schema map[string]any) []PropagationResult {
	results := make([]PropagationResult, 0, len(assistantIDs))
	for _, id := range assistantIDs {
		results = append(results, PropagationResult{
			AssistantID: id,
			Err:         c.propagateOne(ctx, id, oldName, schema),
		})
	}
	return results
}

func (c *Client) propagateOne(ctx context.Context, id, oldName string, schema map[string]any) error {
	asst, err := c.RetrieveAssistant(ctx, id)
	if err != nil {
		return err
	}
	tools, err := ReplaceFunctionTool(asst.Tools, oldName, schema)
	if err != nil {
		return err
	}
	if _, err := c.UpdateAssistantTools(ctx, id, tools); err != nil {
		return err
	}
	return nil
}
