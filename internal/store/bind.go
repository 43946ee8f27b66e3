package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/jsonsearch/internal/ir"
)

// binder collects positional arguments and spells their placeholders.
type binder struct {
	style PlaceholderStyle
	// textTimes binds dates and timestamps as text, for drivers that
	// compare them against TEXT columns.
	textTimes bool
	args      []any
}

func (b *binder) arg(v any) string {
	b.args = append(b.args, v)
	if b.style == PlaceholderDollar {
		return "$" + strconv.Itoa(len(b.args))
	}
	return "?"
}

// Bind rewrites the :name parameters in text to positional placeholders
// and returns the arguments in placeholder order.
func Bind(text string, params map[string]ir.Value, style PlaceholderStyle) (string, []any, error) {
	b := &binder{style: style}
	query, err := b.rewrite(text, params)
	if err != nil {
		return "", nil, err
	}
	return query, b.args, nil
}

func (b *binder) rewrite(text string, params map[string]ir.Value) (string, error) {
	var out strings.Builder
	out.Grow(len(text))

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			end := closingQuote(text, i)
			out.WriteString(text[i:end])
			i = end - 1

		case c == ':' && i+1 < len(text) && text[i+1] == ':':
			out.WriteString("::")
			i++

		case c == ':' && i+1 < len(text) && isNameStart(text[i+1]):
			j := i + 1
			for j < len(text) && isNamePart(text[j]) {
				j++
			}
			name := text[i+1 : j]
			v, ok := params[name]
			if !ok {
				return "", fmt.Errorf("no value bound for parameter :%s", name)
			}
			out.WriteString(b.placeholders(v))
			i = j - 1

		default:
			out.WriteByte(c)
		}
	}
	return out.String(), nil
}

// placeholders binds v, expanding lists element-wise.
func (b *binder) placeholders(v ir.Value) string {
	list, ok := v.(ir.List)
	if !ok {
		return b.arg(b.value(v))
	}
	if len(list) == 0 {
		return "NULL"
	}
	parts := make([]string, len(list))
	for i, elem := range list {
		parts[i] = b.arg(b.value(elem))
	}
	return strings.Join(parts, ", ")
}

// value converts v to its driver argument.
func (b *binder) value(v ir.Value) any {
	if b.textTimes {
		switch val := v.(type) {
		case ir.Date:
			return time.Time(val).Format(ir.DateLayout)
		case ir.DateTime:
			return time.Time(val).Format(time.RFC3339Nano)
		case ir.EntityRef:
			return b.value(val.ID)
		}
	}
	return ir.Native(v)
}

// closingQuote returns the index just past the quoted section starting at
// i. A doubled quote character inside the section is an escape.
func closingQuote(text string, i int) int {
	q := text[i]
	for j := i + 1; j < len(text); j++ {
		if text[j] != q {
			continue
		}
		if j+1 < len(text) && text[j+1] == q {
			j++
			continue
		}
		return j + 1
	}
	return len(text)
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNamePart(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}
