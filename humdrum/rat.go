package humdrum

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rat is an exact rational number used for timestamps and durations,
// measured in quarter notes. The zero value is 0. Rats are kept in lowest
// terms with a positive denominator, so two equal Rats compare equal with ==.
type Rat struct {
	n  int64
	d1 int64 // denominator minus one, so that the zero value means 0/1
}

// NewRat returns num/den in lowest terms. It panics if den is zero.
func NewRat(num, den int64) Rat {
	if den == 0 {
		panic("humdrum: zero denominator")
	}
	if den < 0 {
		num, den = -num, -den
	}
	g := gcd(abs(num), den)
	return Rat{n: num / g, d1: den/g - 1}
}

// Int returns n/1.
func Int(n int64) Rat {
	return Rat{n: n}
}

func (r Rat) Num() int64 { return r.n }
func (r Rat) Den() int64 { return r.d1 + 1 }

func (r Rat) Add(o Rat) Rat {
	return NewRat(r.n*o.Den()+o.n*r.Den(), r.Den()*o.Den())
}

func (r Rat) Sub(o Rat) Rat {
	return NewRat(r.n*o.Den()-o.n*r.Den(), r.Den()*o.Den())
}

func (r Rat) Mul(o Rat) Rat {
	return NewRat(r.n*o.n, r.Den()*o.Den())
}

// Div returns r/o. It panics if o is zero.
func (r Rat) Div(o Rat) Rat {
	return NewRat(r.n*o.Den(), r.Den()*o.n)
}

func (r Rat) Neg() Rat {
	return Rat{n: -r.n, d1: r.d1}
}

// Cmp returns -1, 0 or 1 when r is less than, equal to or greater than o.
func (r Rat) Cmp(o Rat) int {
	a, b := r.n*o.Den(), o.n*r.Den()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (r Rat) Less(o Rat) bool { return r.Cmp(o) < 0 }

func (r Rat) Sign() int {
	switch {
	case r.n < 0:
		return -1
	case r.n > 0:
		return 1
	}
	return 0
}

func (r Rat) IsZero() bool { return r.n == 0 }

func (r Rat) Float64() float64 {
	return float64(r.n) / float64(r.Den())
}

func (r Rat) String() string {
	if r.d1 == 0 {
		return strconv.FormatInt(r.n, 10)
	}
	return strconv.FormatInt(r.n, 10) + "/" + strconv.FormatInt(r.Den(), 10)
}

// ParseRat parses "n", "n/d" or a decimal such as "1.5".
func ParseRat(s string) (Rat, error) {
	s = strings.TrimSpace(s)
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(num), 10, 64)
		if err != nil {
			return Rat{}, fmt.Errorf("invalid rational %q: %w", s, err)
		}
		d, err := strconv.ParseInt(strings.TrimSpace(den), 10, 64)
		if err != nil {
			return Rat{}, fmt.Errorf("invalid rational %q: %w", s, err)
		}
		if d == 0 {
			return Rat{}, fmt.Errorf("invalid rational %q: zero denominator", s)
		}
		return NewRat(n, d), nil
	}
	if whole, frac, ok := strings.Cut(s, "."); ok {
		digits := whole + frac
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return Rat{}, fmt.Errorf("invalid rational %q: %w", s, err)
		}
		d := int64(1)
		for range frac {
			d *= 10
		}
		return NewRat(n, d), nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Rat{}, fmt.Errorf("invalid rational %q: %w", s, err)
	}
	return Int(n), nil
}

func (r Rat) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Rat) UnmarshalText(text []byte) error {
	v, err := ParseRat(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// UnmarshalJSON accepts both JSON numbers and strings such as "2/3".
func (r *Rat) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return r.UnmarshalText([]byte(s))
	}
	return r.UnmarshalText(data)
}

func (r Rat) MarshalYAML() (interface{}, error) {
	if r.d1 == 0 {
		return r.n, nil
	}
	return r.String(), nil
}

func (r *Rat) UnmarshalYAML(value *yaml.Node) error {
	return r.UnmarshalText([]byte(value.Value))
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func abs(a int64) int64 {
	if a < 0 {
		return -a
	}
	return a
}
