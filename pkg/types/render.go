package types

import (
	"bytes"
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
)

// String renders v in its canonical JSON-like display form.
func (v Value) String() string {
	var sb strings.Builder
	v.render(&sb)
	return sb.String()
}

func (v Value) render(sb *strings.Builder) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindInteger:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case KindDecimal:
		sb.WriteString(FormatDecimal(v.f))
	case KindString:
		sb.WriteString(Quote(v.s))
	case KindBoolean:
		sb.WriteString(strconv.FormatBool(v.b))
	case KindVector:
		if !v.seq.multiple {
			sb.WriteByte('[')
		}
		renderItems(sb, v.seq.items)
		if !v.seq.multiple {
			sb.WriteByte(']')
		}
	case KindEnclosed:
		sb.WriteByte('(')
		renderItems(sb, v.seq.items)
		sb.WriteByte(')')
	case KindMap:
		sb.WriteByte('{')
		for i, k := range SortedKeys(v.fields) {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(Quote(k))
			sb.WriteString(": ")
			v.fields[k].render(sb)
		}
		sb.WriteByte('}')
	case KindExpression:
		sb.WriteString(v.block.String())
	case KindDateTime:
		s, err := FormatDateTime(v.date.t, v.date.pattern)
		if err != nil {
			s, _ = FormatDateTime(v.date.t, DefaultDateTimePattern)
		}
		sb.WriteString(Quote(s))
	}
}

func renderItems(sb *strings.Builder, items []Value) {
	for i, it := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		it.render(sb)
	}
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Quote returns s as a JSON string literal without HTML escaping.
func Quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return strconv.Quote(s)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// FormatDecimal renders f the way the JVM prints doubles: plain notation with
// at least one fraction digit inside [1e-3, 1e7), scientific notation with
// an upper-case E outside it.
func FormatDecimal(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}

	if abs := math.Abs(f); abs >= 1e-3 && abs < 1e7 {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}

	mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'E', -1, 64), "E")
	if !strings.Contains(mant, ".") {
		mant += ".0"
	}
	neg := strings.HasPrefix(exp, "-")
	exp = strings.TrimLeft(strings.TrimLeft(exp, "+-"), "0")
	if exp == "" {
		exp = "0"
	}
	if neg {
		exp = "-" + exp
	}
	return mant + "E" + exp
}
