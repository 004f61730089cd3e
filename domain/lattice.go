// Package domain implements the abstract value lattices (sign, nullability,
// integer range) and the per-variable abstract state the fixpoint engines
// iterate over. Every operation here is total and monotone; combinations the
// algebra cannot represent go to Top, never to an error.
package domain

// WidenThreshold is the loop-header visit count past which joins are replaced
// by widening. Three plain joins are enough to stabilize straight-line
// increments; anything still moving after that is forced to ±∞.
const WidenThreshold = 3

// Sign is the five-point sign lattice.
type Sign int

const (
	SignBottom Sign = iota
	SignNegative
	SignZero
	SignPositive
	SignTop
)

func (s Sign) String() string {
	switch s {
	case SignBottom:
		return "⊥"
	case SignNegative:
		return "-"
	case SignZero:
		return "0"
	case SignPositive:
		return "+"
	case SignTop:
		return "⊤"
	}
	return "?"
}

// JoinSign returns the least upper bound of two signs.
func JoinSign(a, b Sign) Sign {
	if a == SignBottom {
		return b
	}
	if b == SignBottom {
		return a
	}
	if a == b {
		return a
	}
	return SignTop
}

// MeetSign returns the greatest lower bound of two signs.
func MeetSign(a, b Sign) Sign {
	if a == SignTop {
		return b
	}
	if b == SignTop {
		return a
	}
	if a == b {
		return a
	}
	return SignBottom
}

// SignAdd is the sign transfer function for addition.
func SignAdd(a, b Sign) Sign {
	if a == SignBottom || b == SignBottom {
		return SignBottom
	}
	switch {
	case a == SignZero:
		return b
	case b == SignZero:
		return a
	case a == b && a != SignTop:
		return a
	}
	// Mixed or unknown signs can land anywhere.
	return SignTop
}

// SignMul is the sign transfer function for multiplication. Zero absorbs.
func SignMul(a, b Sign) Sign {
	if a == SignBottom || b == SignBottom {
		return SignBottom
	}
	if a == SignZero || b == SignZero {
		return SignZero
	}
	if a == SignTop || b == SignTop {
		return SignTop
	}
	if a == b {
		return SignPositive
	}
	return SignNegative
}

// SignNeg is the sign transfer function for unary minus.
func SignNeg(a Sign) Sign {
	switch a {
	case SignNegative:
		return SignPositive
	case SignPositive:
		return SignNegative
	}
	return a
}

// SignOfConst abstracts a concrete integer.
func SignOfConst(v int64) Sign {
	switch {
	case v < 0:
		return SignNegative
	case v == 0:
		return SignZero
	}
	return SignPositive
}

// Nullability is the four-point nullness lattice. Nullable is its top.
type Nullability int

const (
	NullBottom Nullability = iota
	NotNull
	DefinitelyNull
	Nullable
)

func (n Nullability) String() string {
	switch n {
	case NullBottom:
		return "⊥"
	case NotNull:
		return "notnull"
	case DefinitelyNull:
		return "null"
	case Nullable:
		return "nullable"
	}
	return "?"
}

// JoinNull returns the least upper bound of two nullabilities.
func JoinNull(a, b Nullability) Nullability {
	if a == NullBottom {
		return b
	}
	if b == NullBottom {
		return a
	}
	if a == b {
		return a
	}
	return Nullable
}

// MeetNull returns the greatest lower bound of two nullabilities.
func MeetNull(a, b Nullability) Nullability {
	if a == Nullable {
		return b
	}
	if b == Nullable {
		return a
	}
	if a == b {
		return a
	}
	return NullBottom
}
