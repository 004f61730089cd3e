package domain

import (
	"fmt"
	"math"
)

// Interval bounds use int64 sentinels for the two infinities. All arithmetic
// saturates toward them, so bounds never wrap.
const (
	NegInf = math.MinInt64
	PosInf = math.MaxInt64
)

// Interval is an integer range [Lo, Hi] extended with ±∞. An empty interval
// (Lo > Hi) is the lattice bottom.
type Interval struct {
	Lo, Hi int64
}

func TopInterval() Interval    { return Interval{Lo: NegInf, Hi: PosInf} }
func BottomInterval() Interval { return Interval{Lo: 1, Hi: 0} }
func ConstInterval(v int64) Interval {
	return Interval{Lo: v, Hi: v}
}

func (iv Interval) IsBottom() bool { return iv.Lo > iv.Hi }
func (iv Interval) IsTop() bool    { return iv.Lo == NegInf && iv.Hi == PosInf }

// IsConst reports whether the interval pins down a single finite value.
func (iv Interval) IsConst() (int64, bool) {
	if !iv.IsBottom() && iv.Lo == iv.Hi && iv.Lo != NegInf && iv.Lo != PosInf {
		return iv.Lo, true
	}
	return 0, false
}

func (iv Interval) String() string {
	if iv.IsBottom() {
		return "[]"
	}
	lo, hi := "-inf", "+inf"
	if iv.Lo != NegInf {
		lo = fmt.Sprintf("%d", iv.Lo)
	}
	if iv.Hi != PosInf {
		hi = fmt.Sprintf("%d", iv.Hi)
	}
	return fmt.Sprintf("[%s,%s]", lo, hi)
}

// JoinInterval returns the smallest interval covering both inputs.
func JoinInterval(a, b Interval) Interval {
	if a.IsBottom() {
		return b
	}
	if b.IsBottom() {
		return a
	}
	return Interval{Lo: minInt(a.Lo, b.Lo), Hi: maxInt(a.Hi, b.Hi)}
}

// MeetInterval returns the intersection of both inputs.
func MeetInterval(a, b Interval) Interval {
	if a.IsBottom() || b.IsBottom() {
		return BottomInterval()
	}
	m := Interval{Lo: maxInt(a.Lo, b.Lo), Hi: minInt(a.Hi, b.Hi)}
	return m
}

// WidenInterval extrapolates any still-moving bound to infinity. It is only
// applied once a loop header has been visited more than WidenThreshold times;
// before that, plain joins preserve precision.
func WidenInterval(old, new Interval) Interval {
	if old.IsBottom() {
		return new
	}
	if new.IsBottom() {
		return old
	}
	w := old
	if new.Lo < old.Lo {
		w.Lo = NegInf
	}
	if new.Hi > old.Hi {
		w.Hi = PosInf
	}
	return w
}

// AddInterval is the interval transfer function for addition.
func AddInterval(a, b Interval) Interval {
	if a.IsBottom() || b.IsBottom() {
		return BottomInterval()
	}
	return Interval{Lo: satAdd(a.Lo, b.Lo), Hi: satAdd(a.Hi, b.Hi)}
}

// SubInterval is the interval transfer function for subtraction.
func SubInterval(a, b Interval) Interval {
	if a.IsBottom() || b.IsBottom() {
		return BottomInterval()
	}
	return Interval{Lo: satSub(a.Lo, b.Hi), Hi: satSub(a.Hi, b.Lo)}
}

// MulInterval is the interval transfer function for multiplication. The
// result covers all four corner products.
func MulInterval(a, b Interval) Interval {
	if a.IsBottom() || b.IsBottom() {
		return BottomInterval()
	}
	c1 := satMul(a.Lo, b.Lo)
	c2 := satMul(a.Lo, b.Hi)
	c3 := satMul(a.Hi, b.Lo)
	c4 := satMul(a.Hi, b.Hi)
	return Interval{
		Lo: minInt(minInt(c1, c2), minInt(c3, c4)),
		Hi: maxInt(maxInt(c1, c2), maxInt(c3, c4)),
	}
}

// NegInterval is the interval transfer function for unary minus.
func NegInterval(a Interval) Interval {
	if a.IsBottom() {
		return a
	}
	return Interval{Lo: satNeg(a.Hi), Hi: satNeg(a.Lo)}
}

// LimitHi narrows the interval to values ≤ hi.
func (iv Interval) LimitHi(hi int64) Interval {
	return MeetInterval(iv, Interval{Lo: NegInf, Hi: hi})
}

// LimitLo narrows the interval to values ≥ lo.
func (iv Interval) LimitLo(lo int64) Interval {
	return MeetInterval(iv, Interval{Lo: lo, Hi: PosInf})
}

// LimitLT narrows to values strictly below k; LimitGT mirrors it. Both are
// no-ops against an infinite bound.
func (iv Interval) LimitLT(k int64) Interval {
	if k == PosInf {
		return iv
	}
	return iv.LimitHi(satSub(k, 1))
}

// LimitGT narrows to values strictly above k.
func (iv Interval) LimitGT(k int64) Interval {
	if k == NegInf {
		return iv
	}
	return iv.LimitLo(satAdd(k, 1))
}

// ExcludeConst trims k off the interval when k sits on a bound; interior
// holes are not representable and leave the interval unchanged.
func (iv Interval) ExcludeConst(k int64) Interval {
	if iv.IsBottom() {
		return iv
	}
	out := iv
	if out.Lo == k {
		out.Lo = satAdd(k, 1)
	}
	if out.Hi == k {
		out.Hi = satSub(k, 1)
	}
	return out
}

// Contains reports whether v may be a value of the interval.
func (iv Interval) Contains(v int64) bool {
	return !iv.IsBottom() && iv.Lo <= v && v <= iv.Hi
}

// SignOfInterval abstracts an interval into the sign lattice.
func SignOfInterval(iv Interval) Sign {
	switch {
	case iv.IsBottom():
		return SignBottom
	case iv.Lo > 0:
		return SignPositive
	case iv.Hi < 0:
		return SignNegative
	case iv.Lo == 0 && iv.Hi == 0:
		return SignZero
	}
	return SignTop
}

func minInt(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func satAdd(a, b int64) int64 {
	if a == NegInf || b == NegInf {
		return NegInf
	}
	if a == PosInf || b == PosInf {
		return PosInf
	}
	s := a + b
	// Overflow saturates.
	if (b > 0 && s < a) || (b < 0 && s > a) {
		if b > 0 {
			return PosInf
		}
		return NegInf
	}
	return s
}

func satSub(a, b int64) int64 {
	return satAdd(a, satNeg(b))
}

func satNeg(a int64) int64 {
	switch a {
	case NegInf:
		return PosInf
	case PosInf:
		return NegInf
	}
	return -a
}

func satMul(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	neg := (a < 0) != (b < 0)
	if a == NegInf || a == PosInf || b == NegInf || b == PosInf {
		if neg {
			return NegInf
		}
		return PosInf
	}
	p := a * b
	if p/b != a {
		if neg {
			return NegInf
		}
		return PosInf
	}
	return p
}
