// Package prayer enumerates the six obligatory prayer categories tracked as qazo.
package prayer

import (
	"fmt"
	"strings"
)

// Type names a prayer category. Values are the persisted prayer_name keys.
type Type string

const (
	Bomdod Type = "bomdod"
	Peshin Type = "peshin"
	Asr    Type = "asr"
	Shom   Type = "shom"
	Xufton Type = "xufton"
	Vitr   Type = "vitr"
)

var all = [...]Type{Bomdod, Peshin, Asr, Shom, Xufton, Vitr}

// All returns the categories in display order.
func All() []Type {
	return all[:]
}

// Parse validates a stored or callback-supplied name.
func Parse(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range all {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("prayer: unknown type %q", s)
}

// Label is the capitalised display name.
func (t Type) Label() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// Counts maps every category to its outstanding qazo count.
type Counts map[Type]int

// Get returns the count for t, zero when absent.
func (c Counts) Get(t Type) int {
	return c[t]
}

// Total sums all categories.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}
