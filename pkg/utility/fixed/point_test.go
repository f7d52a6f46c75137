package fixed

import (
	"testing"
)

func Test_PointArithmetic(t *testing.T) {
	a := FromInt(12345, 2) // 123.45
	b := FromInt(6789, 2)  // 67.89

	expectedAdd := FromInt(19134, 2)
	expectedSub := FromInt(5556, 2)
	expectedMul := FromInt64(83810205, 4)

	if res := a.Add(b); !res.Eq(expectedAdd) {
		t.Errorf("Add failed: got %v, want %v", res.String(), expectedAdd.String())
	}
	if res := a.Sub(b); !res.Eq(expectedSub) {
		t.Errorf("Sub failed: got %v, want %v", res.String(), expectedSub.String())
	}
	if res := a.Mul(b); !res.Eq(expectedMul) {
		t.Errorf("Mul failed: got %v, want %v", res.String(), expectedMul.String())
	}
}

func Test_PointIntOps(t *testing.T) {
	a := FromInt(10000, 2) // 100.00

	if res := a.MulInt64(3); !res.Eq(FromInt(30000, 2)) {
		t.Errorf("MulInt64 failed: got %v", res.String())
	}
	if res := a.DivInt64(4); !res.Eq(FromInt(2500, 2)) {
		t.Errorf("DivInt64 failed: got %v", res.String())
	}
	if res := a.MulInt(2); !res.Eq(FromInt(20000, 2)) {
		t.Errorf("MulInt failed: got %v", res.String())
	}
	if res := a.DivInt(5); !res.Eq(FromInt(2000, 2)) {
		t.Errorf("DivInt failed: got %v", res.String())
	}
}

func Test_PointComparison(t *testing.T) {
	a := FromInt(5000, 2)
	b := FromInt(7500, 2)
	c := FromInt(5000, 2)

	if !a.Lt(b) {
		t.Errorf("Expected a < b")
	}
	if !b.Gt(a) {
		t.Errorf("Expected b > a")
	}
	if !a.Eq(c) {
		t.Errorf("Expected a == c")
	}
	if !a.Lte(c) {
		t.Errorf("Expected a <= c")
	}
	if !b.Gte(a) {
		t.Errorf("Expected b >= a")
	}
}

func Test_PointPredicates(t *testing.T) {
	if !Zero.IsZero() {
		t.Errorf("Expected Zero.IsZero")
	}
	if !One.IsPos() {
		t.Errorf("Expected One.IsPos")
	}
	if !One.Neg().IsNeg() {
		t.Errorf("Expected -1 IsNeg")
	}
}

func Test_PointParsing(t *testing.T) {
	p, err := FromString("178.5")
	if err != nil {
		t.Fatal(err)
	}
	if !p.Eq(FromInt(1785, 1)) {
		t.Errorf("FromString failed: got %v", p.String())
	}

	if _, err := FromString("not-a-number"); err == nil {
		t.Errorf("Expected parse error")
	}
}

func Test_PointMinMaxClamp(t *testing.T) {
	a := FromInt(1, 0)
	b := FromInt(9, 0)

	if res := Min(a, b); !res.Eq(a) {
		t.Errorf("Min failed: got %v", res.String())
	}
	if res := Max(a, b); !res.Eq(b) {
		t.Errorf("Max failed: got %v", res.String())
	}
	if res := Clamp(FromInt(15, 0), a, b); !res.Eq(b) {
		t.Errorf("Clamp above failed: got %v", res.String())
	}
	if res := Clamp(FromInt(-3, 0), a, b); !res.Eq(a) {
		t.Errorf("Clamp below failed: got %v", res.String())
	}
	if res := Clamp(FromInt(5, 0), a, b); !res.Eq(FromInt(5, 0)) {
		t.Errorf("Clamp inside failed: got %v", res.String())
	}
}

func Test_PointText(t *testing.T) {
	p := MustFromString("0.000025")
	data, err := p.MarshalText()
	if err != nil {
		t.Fatal(err)
	}

	var back Point
	if err := back.UnmarshalText(data); err != nil {
		t.Fatal(err)
	}
	if !back.Eq(p) {
		t.Errorf("Round trip failed: got %v, want %v", back.String(), p.String())
	}
}
