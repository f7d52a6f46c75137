package fixed

var (
	Zero    = FromInt(0, 0)
	One     = FromInt(1, 0)
	Hundred = FromInt(100, 0)
)

func Min(a, b Point) Point {
	if a.Lte(b) {
		return a
	}
	return b
}

func Max(a, b Point) Point {
	if a.Gte(b) {
		return a
	}
	return b
}

func Clamp(p, low, high Point) Point {
	if p.Lt(low) {
		return low
	}
	if p.Gt(high) {
		return high
	}
	return p
}
