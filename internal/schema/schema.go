package schema

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ParamTypes is the closed list of parameter types. Order matters: the
// editor cycles through types in this order.
var ParamTypes = []string{"string", "number", "integer", "boolean", "array", "object"}

var validate = validator.New()

type Parameter struct {
	ID          string   `json:"id" validate:"required"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        string   `json:"type" validate:"required,oneof=string number integer boolean array object"`
	Required    bool     `json:"required"`
	Enum        []string `json:"enum,omitempty"`
	ItemsType   string   `json:"items_type,omitempty" validate:"omitempty,oneof=string number integer boolean array object"`
}

// Function is a stored function-schema record. SchemaName is the record
// name shown in lists; Name is the function name inside the generated
// schema. UsedBy lists assistants referencing the function and is never
// edited here.
type Function struct {
	ID          string      `json:"id" validate:"required"`
	SchemaName  string      `json:"schema_name" validate:"required"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
	UsedBy      []string    `json:"used_by,omitempty"`
}

func NewID() string {
	return uuid.NewString()
}

func NewParameter() Parameter {
	return Parameter{ID: NewID(), Type: "string", Required: true, ItemsType: "string"}
}

func NewFunction() Function {
	return Function{ID: NewID(), SchemaName: "NewFunction"}
}

func (f Function) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("invalid function: %w", err)
	}
	for _, p := range f.Parameters {
		if err := validate.Struct(p); err != nil {
			return fmt.Errorf("invalid parameter %q: %w", p.Name, err)
		}
	}
	return nil
}

func CanHaveEnum(paramType string) bool {
	return paramType == "string" || paramType == "number" || paramType == "integer"
}

// Normalize clears fields that do not apply to the parameter's type, the
// same way the editor resets them when the type selection changes.
func Normalize(p Parameter) Parameter {
	if !CanHaveEnum(p.Type) {
		p.Enum = nil
	}
	if p.Type != "array" || p.ItemsType == "" {
		p.ItemsType = "string"
	}
	return p
}

// RemoveParameter drops the parameter with the given id and leaves the
// rest in order. Unknown ids are a no-op.
func RemoveParameter(params []Parameter, id string) []Parameter {
	out := make([]Parameter, 0, len(params))
	for _, p := range params {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

// TypeIndex locates a type in ParamTypes; unknown types map to 0 so the
// editor always has a valid selection.
func TypeIndex(paramType string) int {
	for i, t := range ParamTypes {
		if t == paramType {
			return i
		}
	}
	return 0
}
