package trace

import (
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

// Validator checks trace documents against DocumentSchema.
type Validator struct {
	schemaLoader gojsonschema.JSONLoader
}

// NewValidator creates a validator.
func NewValidator() *Validator {
	return &Validator{
		schemaLoader: gojsonschema.NewStringLoader(DocumentSchema),
	}
}

// Validate checks raw document bytes. An unterminated document fails
// before schema validation with a hint to run repair.
func (v *Validator) Validate(data []byte) error {
	if !IsTerminated(data) {
		return fmt.Errorf("document is not terminated (missing ]} footer), run repair first")
	}

	documentLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(v.schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var errMsg string
		for i, resultErr := range result.Errors() {
			if i > 0 {
				errMsg += "; "
			}
			errMsg += resultErr.String()
		}
		return fmt.Errorf("schema validation errors: %s", errMsg)
	}

	return nil
}

// ValidateFile checks a trace file on disk.
func (v *Validator) ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read trace file: %w", err)
	}
	return v.Validate(data)
}
