package joinguard

import "strings"

// Flag is a bitset of join validation constraints. Atomic flags describe one
// cardinality or totality requirement of a join; presets are fixed unions of
// atomics. Combine flags with |.
type Flag uint8

const (
	// OneToMany requires each right-relation row to match at most one
	// left-relation row.
	OneToMany Flag = 1 << iota
	// ManyToOne requires each left-relation row to match at most one
	// right-relation row.
	ManyToOne
	// LeftTotal requires every left-relation row to have at least one match
	// on the right.
	LeftTotal
	// RightTotal requires every right-relation row to have at least one match
	// on the left.
	RightTotal
)

// Preset unions.
const (
	// OneToOne requires a strict 1:1 correspondence between matched rows.
	OneToOne = OneToMany | ManyToOne
	// Total requires full coverage in both directions.
	Total = LeftTotal | RightTotal
	// Mandatory requires a total 1:1 correspondence.
	Mandatory = OneToOne | Total
)

// atomOrder fixes the order in which atomic flags are checked and reported.
var atomOrder = [...]Flag{OneToMany, ManyToOne, LeftTotal, RightTotal}

var flagNames = map[Flag]string{
	OneToMany:  "ONE_TO_MANY",
	ManyToOne:  "MANY_TO_ONE",
	LeftTotal:  "LEFT_TOTAL",
	RightTotal: "RIGHT_TOTAL",
}

// Has reports whether every atomic flag in atom is present in f.
func (f Flag) Has(atom Flag) bool {
	return atom != 0 && f&atom == atom
}

// Atoms decomposes the set into its atomic flags, always in the order
// ONE_TO_MANY, MANY_TO_ONE, LEFT_TOTAL, RIGHT_TOTAL regardless of how the
// set was built.
func (f Flag) Atoms() []Flag {
	var atoms []Flag
	for _, a := range atomOrder {
		if f.Has(a) {
			atoms = append(atoms, a)
		}
	}
	return atoms
}

// valid reports whether f carries no bits outside the four atomic flags.
func (f Flag) valid() bool {
	return f&^Mandatory == 0
}

// String renders the set as pipe-joined atomic names, e.g.
// "ONE_TO_MANY|LEFT_TOTAL". The empty set renders as "NONE".
func (f Flag) String() string {
	if f == 0 {
		return "NONE"
	}
	if !f.valid() {
		return "INVALID"
	}
	names := make([]string, 0, 4)
	for _, a := range f.Atoms() {
		names = append(names, flagNames[a])
	}
	return strings.Join(names, "|")
}
