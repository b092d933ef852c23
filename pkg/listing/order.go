package listing

import (
	"fmt"
	"strings"
)

// Direction is the sort direction of a listing query.
// Values are the upper-snake-case tokens the API expects.
type Direction string

const (
	// Asc sorts ascending.
	Asc Direction = "ASC"

	// Desc sorts descending.
	Desc Direction = "DESC"
)

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// ParseDirection parses "asc"/"desc" in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ASC", "":
		return Asc, nil
	case "DESC":
		return Desc, nil
	default:
		return "", fmt.Errorf("invalid sort direction %q", s)
	}
}

// Order is the active sort field and direction.
type Order[F comparable] struct {
	Field     F         `json:"field"`
	Direction Direction `json:"direction"`
}

// Toggle applies a click on a sortable column.
//
// Clicking the active field flips the direction; clicking any other field
// makes it active in ascending order.
func Toggle[F comparable](current Order[F], clicked F) Order[F] {
	if current.Field == clicked {
		dir := current.Direction
		if dir == "" {
			dir = Asc
		}
		return Order[F]{Field: clicked, Direction: dir.Flip()}
	}
	return Order[F]{Field: clicked, Direction: Asc}
}
