package decision

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Num is an optional number: a value that may be absent ("no data").
// The zero value is None.
type Num struct {
	v  float64
	ok bool
}

// None is the absent number.
var None = Num{}

// Some wraps a finite value. Non-finite input yields None.
func Some(v float64) Num {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return None
	}
	return Num{v: v, ok: true}
}

func (n Num) Get() (float64, bool) { return n.v, n.ok }
func (n Num) Valid() bool          { return n.ok }

// Or returns the value, or def when absent.
func (n Num) Or(def float64) float64 {
	if !n.ok {
		return def
	}
	return n.v
}

func (n Num) MarshalJSON() ([]byte, error) {
	if !n.ok {
		return []byte("null"), nil
	}
	return json.Marshal(n.v)
}

func (n *Num) UnmarshalJSON(b []byte) error {
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*n = ToNumber(raw)
	return nil
}

// ToNumber coerces a loosely typed value to a number. nil, empty strings and anything
// that does not parse to a finite float become None; it never panics.
func ToNumber(v interface{}) Num {
	switch x := v.(type) {
	case nil:
		return None
	case Num:
		return x
	case float64:
		return Some(x)
	case float32:
		return Some(float64(x))
	case int:
		return Some(float64(x))
	case int8:
		return Some(float64(x))
	case int16:
		return Some(float64(x))
	case int32:
		return Some(float64(x))
	case int64:
		return Some(float64(x))
	case uint:
		return Some(float64(x))
	case uint8:
		return Some(float64(x))
	case uint16:
		return Some(float64(x))
	case uint32:
		return Some(float64(x))
	case uint64:
		return Some(float64(x))
	case bool:
		if x {
			return Some(1)
		}
		return Some(0)
	case json.Number:
		return parseNumber(string(x))
	case string:
		return parseNumber(x)
	default:
		return None
	}
}

func parseNumber(s string) Num {
	s = strings.TrimSpace(s)
	if s == "" {
		return None
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return None
	}
	return Some(f)
}
