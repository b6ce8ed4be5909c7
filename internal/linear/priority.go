package linear

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/raphi011/linear/internal/errs"
)

// Priority is an issue priority. Lower non-zero values are more urgent.
type Priority int

const (
	PriorityNone Priority = iota
	PriorityUrgent
	PriorityHigh
	PriorityMedium
	PriorityLow
)

var priorityLabels = [...]string{"None", "Urgent", "High", "Medium", "Low"}

// Valid reports whether p is one of the five known priorities.
func (p Priority) Valid() bool {
	return p >= PriorityNone && p <= PriorityLow
}

// String returns the priority label. Unknown values render as "P<n>".
func (p Priority) String() string {
	if !p.Valid() {
		return "P" + strconv.Itoa(int(p))
	}
	return priorityLabels[p]
}

// UnmarshalJSON accepts integral numbers, which the API sends as floats.
func (p *Priority) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = PriorityNone
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*p = Priority(math.Round(f))
	return nil
}

// ParsePriority accepts 0-4 or a label such as "high" (case-insensitive).
func ParsePriority(s string) (Priority, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		p := Priority(n)
		if !p.Valid() {
			return 0, invalidPriority(s)
		}
		return p, nil
	}
	for i, label := range priorityLabels {
		if strings.EqualFold(s, label) {
			return Priority(i), nil
		}
	}
	return 0, invalidPriority(s)
}

func invalidPriority(s string) error {
	return errs.WithSuggestion(
		errs.Validation("invalid priority %q", s),
		"Use 0-4 or one of: none, urgent, high, medium, low",
	)
}
