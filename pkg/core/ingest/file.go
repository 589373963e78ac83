// Package ingest is the boundary between external extraction pipelines and
// the modeling core. It loads statement bundles from JSON/HJSON files or
// HTML filing tables and enforces structural validity, so everything
// downstream can assume well-typed numeric fields.
package ingest

import (
	"fmt"
	"os"

	"finmodeler/pkg/core/utils"
	"finmodeler/pkg/core/validate"
	"finmodeler/pkg/models"
)

// LoadStatements reads a statement bundle from a JSON or HJSON file.
// Hand-edited files with comments, trailing commas or unquoted keys are
// accepted; structurally invalid statements are rejected.
func LoadStatements(path string) (*models.FinancialStatements, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read statements file: %w", err)
	}
	return ParseStatements(data)
}

// ParseStatements decodes and structurally validates a statement bundle.
func ParseStatements(data []byte) (*models.FinancialStatements, error) {
	var fs models.FinancialStatements
	if err := utils.FlexibleParse(data, &fs); err != nil {
		return nil, fmt.Errorf("parse statements: %w", err)
	}
	if err := validate.CheckStructure(&fs); err != nil {
		return nil, fmt.Errorf("invalid statements: %w", err)
	}
	return &fs, nil
}

// LoadAssumptions reads a named assumption-set file (JSON or HJSON).
// Validation of driver ranges is left to the forecast engine, which
// fails fast before computing any period.
func LoadAssumptions(path string, target interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read assumptions file: %w", err)
	}
	if err := utils.FlexibleParse(data, target); err != nil {
		return fmt.Errorf("parse assumptions: %w", err)
	}
	return nil
}
