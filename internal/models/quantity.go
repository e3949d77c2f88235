package models

import (
	"cmp"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Unit is the magnitude suffix of a displayed count.
type Unit int

const (
	UnitNone Unit = iota
	UnitThousand
	UnitMillion
)

// QuantityGrammar is reported in FormatError when ParseQuantity rejects its input.
const QuantityGrammar = `digits with optional decimal part followed by K or M, or digits only`

var (
	scaledQuantityPattern = regexp.MustCompile(`^(\d+)(?:\.(\d+))?([KM])$`)
	plainQuantityPattern  = regexp.MustCompile(`^\d+$`)
)

// Factor returns the multiplier the unit applies to a magnitude.
func (u Unit) Factor() int64 {
	switch u {
	case UnitThousand:
		return 1_000
	case UnitMillion:
		return 1_000_000
	default:
		return 1
	}
}

func (u Unit) String() string {
	switch u {
	case UnitThousand:
		return "K"
	case UnitMillion:
		return "M"
	default:
		return ""
	}
}

// Quantity is a count such as "1.2K" or "800". The magnitude is kept as an
// exact decimal (digits / 10^scale) so Int never suffers float drift.
type Quantity struct {
	digits int64
	scale  int
	unit   Unit
}

// NewQuantity builds a Quantity from whole units. Fractional magnitudes only
// come from ParseQuantity.
func NewQuantity(magnitude int64, unit Unit) Quantity {
	return Quantity{digits: magnitude, unit: unit}
}

// ParseQuantity accepts "1.5K", "2M" or "42". Thousands separators, signs
// and any other letters are rejected with a *FormatError.
func ParseQuantity(s string) (Quantity, error) {
	if plainQuantityPattern.MatchString(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Quantity{}, &FormatError{Input: s, Grammar: QuantityGrammar}
		}
		return Quantity{digits: n, unit: UnitNone}, nil
	}

	m := scaledQuantityPattern.FindStringSubmatch(s)
	if m == nil {
		return Quantity{}, &FormatError{Input: s, Grammar: QuantityGrammar}
	}

	n, err := strconv.ParseInt(m[1]+m[2], 10, 64)
	if err != nil {
		return Quantity{}, &FormatError{Input: s, Grammar: QuantityGrammar}
	}

	unit := UnitThousand
	if m[3] == "M" {
		unit = UnitMillion
	}
	if n > math.MaxInt64/unit.Factor() {
		return Quantity{}, &FormatError{Input: s, Grammar: QuantityGrammar}
	}

	return Quantity{digits: n, scale: len(m[2]), unit: unit}, nil
}

// Magnitude returns the displayed number without its unit.
func (q Quantity) Magnitude() float64 {
	f, _ := strconv.ParseFloat(q.magnitudeString(), 64)
	return f
}

func (q Quantity) Unit() Unit {
	return q.unit
}

// Int expands the quantity, truncating any fraction left after scaling.
func (q Quantity) Int() int64 {
	v := q.digits * q.unit.Factor()
	for i := 0; i < q.scale; i++ {
		v /= 10
	}
	return v
}

// Compare orders quantities by their expanded integer value.
func (q Quantity) Compare(other Quantity) int {
	return cmp.Compare(q.Int(), other.Int())
}

func (q Quantity) String() string {
	return q.magnitudeString() + q.unit.String()
}

func (q Quantity) magnitudeString() string {
	s := strconv.FormatInt(q.digits, 10)
	if q.scale == 0 {
		return s
	}
	if len(s) <= q.scale {
		s = strings.Repeat("0", q.scale-len(s)+1) + s
	}
	return s[:len(s)-q.scale] + "." + s[len(s)-q.scale:]
}

func (q Quantity) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

func (q *Quantity) UnmarshalText(text []byte) error {
	parsed, err := ParseQuantity(string(text))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
