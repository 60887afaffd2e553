package models

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Quantity is a numeric field that the export may write as a JSON number,
// a numeric string ("102.5"), an empty string or null. The text is kept as
// exported; Float and Int coerce it on demand.
type Quantity string

var (
	floatPrefixRe = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`)
	intPrefixRe   = regexp.MustCompile(`^[-+]?\d+`)
)

// QuantityFromFloat formats f the way the export writes numbers.
func QuantityFromFloat(f float64) Quantity {
	return Quantity(strconv.FormatFloat(f, 'f', -1, 64))
}

// QuantityFromInt formats n as a Quantity.
func QuantityFromInt(n int) Quantity {
	return Quantity(strconv.Itoa(n))
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*q = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = Quantity(strings.TrimSpace(s))
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		*q = Quantity(data)
	default:
		// booleans, objects and arrays carry no number
		*q = ""
	}
	return nil
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	if q == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseFloat(string(q), 64); err == nil {
		return []byte(q), nil
	}
	return json.Marshal(string(q))
}

// IsZero reports whether the quantity is absent or numerically zero.
func (q Quantity) IsZero() bool {
	f, ok := q.Float()
	return !ok || f == 0
}

// Float parses the leading decimal number of the text. It reports false
// when the text is empty or does not start with a number.
func (q Quantity) Float() (float64, bool) {
	m := floatPrefixRe.FindString(strings.TrimSpace(string(q)))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Int parses the leading integer of the text, ignoring any fraction.
func (q Quantity) Int() int {
	m := intPrefixRe.FindString(strings.TrimSpace(string(q)))
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// FloatOrZero is Float with absent or unparsable values coerced to zero.
func (q Quantity) FloatOrZero() float64 {
	f, _ := q.Float()
	return f
}
