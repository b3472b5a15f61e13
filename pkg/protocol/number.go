package protocol

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a lenient float for capture payloads.
// It accepts JSON numbers and numeric strings; null, missing, non-numeric
// and non-finite values decode to 0 instead of failing the message.
type Number float64

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(b []byte) error {
	*n = 0
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	s := string(b)
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return nil
		}
		s = strings.TrimSpace(str)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	*n = Number(v)
	return nil
}

// Float64 returns the value as a float64
func (n Number) Float64() float64 {
	return float64(n)
}
