package permit

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
)

// DecodeStructured turns a stored JSON column back into a slice or object.
// It never fails: absent, malformed or scalar content yields an empty slice
// and the problem is logged.
func DecodeStructured(logger *slog.Logger, field string, raw *string) any {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return []any{}
	}

	decoded, err := decodeJSON(*raw)
	if err != nil {
		logger.Warn("stored structured field is not valid JSON",
			"field", field,
			"error", err)
		return []any{}
	}

	switch decoded.(type) {
	case []any, map[string]any:
		return decoded
	default:
		logger.Warn("stored structured field is not an array or object", "field", field)
		return []any{}
	}
}

// decodeJSON reads exactly one JSON value, keeping numbers as their literal text.
func decodeJSON(raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON value")
	}
	return decoded, nil
}
