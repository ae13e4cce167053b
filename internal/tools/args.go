package tools

import (
	"encoding/json"
	"fmt"
)

// decodeArgs converts the loosely typed tool input map into a typed request
// struct via a JSON round trip, so each tool validates one concrete shape at
// its execution boundary.
func decodeArgs(params map[string]any, dst any) error {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode tool input: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("invalid tool input: %w", err)
	}
	return nil
}

func missingField(name string) error {
	return fmt.Errorf("missing required field: %s", name)
}
