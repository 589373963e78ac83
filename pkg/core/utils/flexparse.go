// Package utils holds small shared helpers: lenient JSON/HJSON parsing for
// human-edited input files and markdown rendering for report output.
package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON attempts to fix common JSON defects in hand-edited files:
// single quotes, unquoted keys, trailing commas, comments, unclosed
// containers.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	return repaired, nil
}

// ParseHJSON parses human-friendly JSON (comments, unquoted keys, optional
// commas) directly into the target struct.
func ParseHJSON(data []byte, target interface{}) error {
	if err := hjson.Unmarshal(data, target); err != nil {
		return fmt.Errorf("hjson parse: %w", err)
	}
	return nil
}

// FlexibleParse tries strict JSON first, then JSON repair, then HJSON.
// Statement and assumption files are routinely hand-edited, so the
// ingestion boundary accepts all three.
func FlexibleParse(data []byte, target interface{}) error {
	if err := json.Unmarshal(data, target); err == nil {
		return nil
	}

	if repaired, err := RepairJSON(string(data)); err == nil {
		if err := json.Unmarshal([]byte(repaired), target); err == nil {
			return nil
		}
	}

	if err := hjson.Unmarshal(data, target); err == nil {
		return nil
	}

	return fmt.Errorf("flexible parse: input is not valid JSON, repairable JSON, or HJSON")
}
