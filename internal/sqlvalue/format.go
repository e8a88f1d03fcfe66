// Package sqlvalue renders database and decoded values as canonical text.
//
// String produces the element text used when comparing result rows against
// an expected answer table. Repr produces a quoted form that is stable
// enough to serve as a result signature.
package sqlvalue

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// String converts a scanned or decoded value to its comparison text.
// Integral floats keep a trailing ".0" so that 1 and 1.0 stay distinct,
// matching how most SQL drivers report REAL columns.
func String(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		if x {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(x)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return formatFloat(float64(x))
	case float64:
		return formatFloat(x)
	case json.Number:
		return x.String()
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	abs := math.Abs(f)
	if f == math.Trunc(f) && abs < 1e16 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Row stringifies every element of row, keeping at most limit leading
// columns. A negative limit keeps the whole row.
func Row(row []any, limit int) []string {
	if limit < 0 || limit > len(row) {
		limit = len(row)
	}
	out := make([]string, limit)
	for i := 0; i < limit; i++ {
		out[i] = String(row[i])
	}
	return out
}

// Repr renders v in a quoted, unambiguous form: strings are single-quoted,
// rows render as tuples and row lists as bracketed sequences.
func Repr(v any) string {
	var b strings.Builder
	writeRepr(&b, v)
	return b.String()
}

// ReprRows renders a result set as a list of tuples.
func ReprRows(rows [][]any) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		writeTuple(&b, row)
	}
	b.WriteByte(']')
	return b.String()
}

func writeRepr(b *strings.Builder, v any) {
	switch x := v.(type) {
	case string:
		b.WriteString(quote(x))
	case []byte:
		b.WriteString("b" + quote(string(x)))
	case []any:
		b.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				b.WriteString(", ")
			}
			writeRepr(b, e)
		}
		b.WriteByte(']')
	case [][]any:
		b.WriteString(ReprRows(x))
	default:
		b.WriteString(String(x))
	}
}

func writeTuple(b *strings.Builder, row []any) {
	b.WriteByte('(')
	for i, e := range row {
		if i > 0 {
			b.WriteString(", ")
		}
		writeRepr(b, e)
	}
	if len(row) == 1 {
		b.WriteByte(',')
	}
	b.WriteByte(')')
}

func quote(s string) string {
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\t", `\t`)
	return "'" + r.Replace(s) + "'"
}
