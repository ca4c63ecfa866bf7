package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Coordinate is a longitude or latitude that station feeds publish either
// as a JSON number or as a numeric string
type Coordinate float64

// UnmarshalJSON accepts 42.36, "42.36" and null
func (c *Coordinate) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}

	s := string(b)
	if b[0] == '"' {
		var unquoted string
		if err := json.Unmarshal(b, &unquoted); err != nil {
			return err
		}
		s = strings.TrimSpace(unquoted)
		if s == "" {
			return nil
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("unable to parse coordinate %s: %w", string(b), err)
	}
	*c = Coordinate(v)
	return nil
}

// MarshalJSON always writes a JSON number
func (c Coordinate) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(c), 'f', -1, 64)), nil
}
