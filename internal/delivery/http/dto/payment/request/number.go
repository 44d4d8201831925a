package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Int64 accepts integers sent as JSON numbers or numeric strings. Callers
// of the relay are not consistent about it.
type Int64 struct {
	Value int64
	Set   bool
}

func (n *Int64) UnmarshalJSON(b []byte) error {
	v, ok, err := parseInt64(b)
	if err != nil {
		return err
	}
	n.Value, n.Set = v, ok
	return nil
}

// parseInt64 reads a JSON number or numeric string holding a whole value.
// Fractions and values outside the int64 range are errors, never truncated.
func parseInt64(b []byte) (int64, bool, error) {
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return 0, false, nil
	}
	raw := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return 0, false, err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return 0, false, nil
		}
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v, true, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%q is not a number", raw)
	}
	if f != math.Trunc(f) {
		return 0, false, fmt.Errorf("%s is not a whole amount", raw)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false, fmt.Errorf("%s is out of range", raw)
	}
	return int64(f), true, nil
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
