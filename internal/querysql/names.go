package querysql

import (
	"strconv"
	"strings"
)

// Allocator issues bound-parameter names for one compilation.
//
// Names are <field>_<n> where n counts every name issued in the scope, so
// two conditions on the same field never share a name. Field names are
// reduced to [A-Za-z0-9_] first.
//
// Every compilation takes a new Allocator, so compiling an unchanged tree
// twice yields the same names. Fragments from separate compilations are
// independent and must not be merged into one statement.
type Allocator struct {
	counter int
	issued  map[string]struct{}
}

// NewAllocator returns an allocator with a fresh scope.
func NewAllocator() *Allocator {
	return &Allocator{issued: make(map[string]struct{})}
}

// Allocate returns a name derived from field that has not been issued
// by this allocator before.
func (a *Allocator) Allocate(field string) string {
	base := sanitize(field)
	for {
		a.counter++
		name := base + "_" + strconv.Itoa(a.counter)
		if _, taken := a.issued[name]; !taken {
			a.issued[name] = struct{}{}
			return name
		}
	}
}

// Issued returns how many names the allocator has handed out.
func (a *Allocator) Issued() int {
	return len(a.issued)
}

func sanitize(field string) string {
	var b strings.Builder
	for _, r := range field {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := b.String()
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		s = "p" + s
	}
	return s
}
