package offload

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// unboundedText is the wire form of an unbounded Ratio in JSON.
const unboundedText = "+Inf"

// Ratio is a non-negative quantity that may be unbounded. The unbounded
// variant is represented as +Inf so arithmetic stays total; it marshals to
// the string "+Inf" in JSON because encoding/json rejects infinities.
type Ratio float64

// Unbounded returns the unbounded Ratio.
func Unbounded() Ratio {
	return Ratio(math.Inf(1))
}

// IsUnbounded reports whether r is the unbounded variant.
func (r Ratio) IsUnbounded() bool {
	return math.IsInf(float64(r), 1)
}

// String renders the ratio with two decimals, or ∞ when unbounded.
func (r Ratio) String() string {
	if r.IsUnbounded() {
		return "∞"
	}
	return strconv.FormatFloat(float64(r), 'f', 2, 64)
}

// Percent renders the ratio as a percentage with one decimal.
func (r Ratio) Percent() string {
	if r.IsUnbounded() {
		return "∞"
	}
	return fmt.Sprintf("%.1f%%", float64(r)*100)
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	if r.IsUnbounded() {
		return json.Marshal(unboundedText)
	}
	return json.Marshal(float64(r))
}

func (r *Ratio) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != unboundedText {
			return fmt.Errorf("invalid ratio %q", s)
		}
		*r = Unbounded()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid ratio %s: %w", data, err)
	}
	*r = Ratio(f)
	return nil
}

// divide returns num/den, or Unbounded when den is not positive.
func divide(num, den float64) Ratio {
	if den > 0 {
		return Ratio(num / den)
	}
	return Unbounded()
}
