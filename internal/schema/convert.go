package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// BuildJSONSchema assembles the OpenAI function-calling schema from the
// given fields and returns it together with its 2-space-indented JSON
// text. Unnamed parameters are skipped; enum applies only to string,
// number and integer types; items only to arrays; required is present
// only when non-empty, in parameter order. The text keeps properties in
// parameter order as well, so FromOpenAI on it restores the form rows in
// the order they were edited.
func BuildJSONSchema(name, description string, params []Parameter) (map[string]any, string, error) {
	properties := map[string]any{}
	var propOrder orderedObj
	var required []string
	for _, p := range params {
		if p.Name == "" {
			continue
		}
		if p.Required {
			required = append(required, p.Name)
		}
		prop := map[string]any{"type": p.Type, "description": p.Description}
		if CanHaveEnum(p.Type) && len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		if p.Type == "array" {
			itemsType := p.ItemsType
			if itemsType == "" {
				itemsType = "string"
			}
			prop["items"] = map[string]any{"type": itemsType}
		}
		if _, seen := properties[p.Name]; seen {
			// A repeated name overwrites in place, keeping its slot.
			for i := range propOrder {
				if propOrder[i].key == p.Name {
					propOrder[i].val = prop
					break
				}
			}
		} else {
			propOrder = append(propOrder, orderedField{key: p.Name, val: prop})
		}
		properties[p.Name] = prop
	}

	parameters := map[string]any{"type": "object", "properties": properties}
	textParams := orderedObj{{key: "type", val: "object"}, {key: "properties", val: propOrder}}
	if len(required) > 0 {
		parameters["required"] = required
		textParams = append(textParams, orderedField{key: "required", val: required})
	}
	schema := map[string]any{
		"name":        name,
		"description": description,
		"parameters":  parameters,
	}

	text, err := json.MarshalIndent(orderedObj{
		{key: "name", val: name},
		{key: "description", val: description},
		{key: "parameters", val: textParams},
	}, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("encode schema: %w", err)
	}
	return schema, string(text), nil
}

type orderedField struct {
	key string
	val any
}

// orderedObj marshals its fields in slice order, where a map would
// alphabetize them.
type orderedObj []orderedField

func (o orderedObj) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		v, err := json.Marshal(f.val)
		if err != nil {
			return nil, err
		}
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func (f Function) BuildSchema() (map[string]any, string, error) {
	return BuildJSONSchema(f.Name, f.Description, f.Parameters)
}

type rawProperty struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Enum        []any  `json:"enum"`
	Items       struct {
		Type string `json:"type"`
	} `json:"items"`
}

// FromOpenAI parses a function-calling schema (generated or hand-written
// in expert mode) into a Function with freshly generated parameter ids.
// Property order in the JSON text is preserved.
func FromOpenAI(schemaName string, raw []byte) (Function, error) {
	var doc struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Parameters  struct {
			Properties json.RawMessage `json:"properties"`
			Required   []string        `json:"required"`
		} `json:"parameters"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Function{}, fmt.Errorf("parse function schema: %w", err)
	}

	fn := Function{
		ID:          NewID(),
		SchemaName:  schemaName,
		Name:        doc.Name,
		Description: doc.Description,
	}

	requiredSet := map[string]bool{}
	for _, name := range doc.Parameters.Required {
		requiredSet[name] = true
	}

	if len(doc.Parameters.Properties) == 0 {
		return fn, nil
	}

	dec := json.NewDecoder(bytes.NewReader(doc.Parameters.Properties))
	tok, err := dec.Token()
	if err != nil {
		return Function{}, fmt.Errorf("parse properties: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return Function{}, fmt.Errorf("parse properties: expected object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Function{}, fmt.Errorf("parse properties: %w", err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return Function{}, fmt.Errorf("parse properties: bad key %v", keyTok)
		}
		var prop rawProperty
		if err := dec.Decode(&prop); err != nil {
			return Function{}, fmt.Errorf("parse property %q: %w", name, err)
		}
		if prop.Type == "" {
			return Function{}, fmt.Errorf("property %q has no type", name)
		}
		if TypeIndex(prop.Type) == 0 && prop.Type != ParamTypes[0] {
			return Function{}, fmt.Errorf("property %q has unsupported type %q", name, prop.Type)
		}
		itemsType := prop.Items.Type
		if itemsType == "" {
			itemsType = "string"
		}
		fn.Parameters = append(fn.Parameters, Parameter{
			ID:          NewID(),
			Name:        name,
			Description: prop.Description,
			Type:        prop.Type,
			Required:    requiredSet[name],
			Enum:        stringifyEnum(prop.Enum),
			ItemsType:   itemsType,
		})
	}

	return fn, nil
}

func stringifyEnum(values []any) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		switch val := v.(type) {
		case string:
			out = append(out, val)
		case float64:
			out = append(out, strconv.FormatFloat(val, 'f', -1, 64))
		default:
			out = append(out, fmt.Sprint(val))
		}
	}
	return out
}

// ParseEnum turns the editor's comma-separated enum field into a value
// list. Values are trimmed and empties dropped; blank input means none.
func ParseEnum(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func EnumText(enum []string) string {
	return strings.Join(enum, ", ")
}
