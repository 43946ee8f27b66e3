package filter

// Direction is a sort direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// String returns "ASC" or "DESC".
func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// ParseDirection resolves a document direction token. Only the exact
// upper-case tokens ASC and DESC are accepted.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "ASC":
		return Asc, true
	case "DESC":
		return Desc, true
	}
	return Asc, false
}

// Sort orders results by one declared field.
type Sort struct {
	Field     string
	Direction Direction
}
