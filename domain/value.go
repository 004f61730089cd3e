package domain

import "fmt"

// Value is the abstract value tracked per variable: a (sign, nullability,
// range) triple. The three components move independently; joins and widening
// are pointwise.
type Value struct {
	Sign  Sign
	Null  Nullability
	Range Interval
}

func TopValue() Value {
	return Value{Sign: SignTop, Null: Nullable, Range: TopInterval()}
}

func BottomValue() Value {
	return Value{Sign: SignBottom, Null: NullBottom, Range: BottomInterval()}
}

// IntValue abstracts a concrete integer constant.
func IntValue(v int64) Value {
	return Value{Sign: SignOfConst(v), Null: NotNull, Range: ConstInterval(v)}
}

// NullValue is the abstraction of the null literal.
func NullValue() Value {
	return Value{Sign: SignBottom, Null: DefinitelyNull, Range: BottomInterval()}
}

// ObjectValue abstracts a non-numeric, non-null object (string, instance).
func ObjectValue() Value {
	return Value{Sign: SignTop, Null: NotNull, Range: TopInterval()}
}

func JoinValue(a, b Value) Value {
	return Value{
		Sign:  JoinSign(a.Sign, b.Sign),
		Null:  JoinNull(a.Null, b.Null),
		Range: JoinInterval(a.Range, b.Range),
	}
}

// WidenValue widens the range component; sign and nullability lattices are
// finite and need only the join.
func WidenValue(old, new Value) Value {
	return Value{
		Sign:  JoinSign(old.Sign, new.Sign),
		Null:  JoinNull(old.Null, new.Null),
		Range: WidenInterval(old.Range, new.Range),
	}
}

func (v Value) Equal(o Value) bool {
	if v.Range.IsBottom() && o.Range.IsBottom() {
		return v.Sign == o.Sign && v.Null == o.Null
	}
	return v == o
}

func (v Value) IsTop() bool {
	return v.Sign == SignTop && v.Null == Nullable && v.Range.IsTop()
}

// Fingerprint is the stable textual form used in call-context keys. Two
// values with equal fingerprints are structurally equal.
func (v Value) Fingerprint() string {
	return fmt.Sprintf("%s|%s|%s", v.Sign, v.Null, v.Range)
}

func (v Value) String() string {
	return fmt.Sprintf("(sign=%s null=%s range=%s)", v.Sign, v.Null, v.Range)
}
