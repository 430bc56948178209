package order

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Quantity is a requested item count. It decodes leniently from JSON numbers
// and strings; anything that is not a positive integer becomes 1.
type Quantity int

func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			*q = 1
			return nil
		}
	} else {
		s = string(data)
	}
	*q = Quantity(ParseQuantity(s))
	return nil
}

// ParseQuantity reads the leading integer of s, the way a form field is read:
// "3" and "3 pcs" give 3, "2.7" gives 2. Missing, non-numeric, zero or
// negative input gives 1.
func ParseQuantity(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 1
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n <= 0 {
		return 1
	}
	return n
}
