package types

import (
	"fmt"
	"strings"
)

// Record is a storage-neutral entity value keyed by column name. To-one
// relationship fields hold a Record (or nil), to-many fields hold []Record.
type Record = map[string]any

type Order int

const (
	ASC Order = iota
	DESC
)

func (o Order) String() string {
	if o == DESC {
		return "DESC"
	}
	return "ASC"
}

// ParseOrder accepts "asc"/"desc" in any case. Empty means ascending.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return ASC, nil
	case "desc":
		return DESC, nil
	default:
		return ASC, fmt.Errorf("invalid sort direction: %s", s)
	}
}
