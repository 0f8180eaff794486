package field

import "testing"

const mersenne31 = 1<<31 - 1

// TestModInverse_Identity checks v * inv(v) == 1 for a spread of residues.
func TestModInverse_Identity(t *testing.T) {
	primes := []uint64{3, 101, 65537, mersenne31, 4294967291}
	for _, p := range primes {
		for _, a := range []uint64{1, 2, 3, 255, 256, p / 2, p - 2, p - 1} {
			if a == 0 || a >= p {
				continue
			}
			inv := ModInverse(a, p)
			if inv >= p {
				t.Errorf("ModInverse(%d, %d) = %d, out of range", a, p, inv)
			}
			if a*inv%p != 1 {
				t.Errorf("ModInverse(%d, %d) = %d, product %d", a, p, inv, a*inv%p)
			}
		}
	}
}

func TestNew_PairsValueWithInverse(t *testing.T) {
	v := New(12345, mersenne31)
	if v.V*v.Inv%mersenne31 != 1 {
		t.Fatalf("New(12345): val*inv = %d, want 1", v.V*v.Inv%mersenne31)
	}
}

func TestMul_PreservesInverseInvariant(t *testing.T) {
	const p = mersenne31
	a := New(987654321, p)
	b := New(123456789, p)
	c := Mul(a, b, p)
	if c.V != a.V*b.V%p {
		t.Errorf("Mul value = %d, want %d", c.V, a.V*b.V%p)
	}
	if c.V*c.Inv%p != 1 {
		t.Errorf("Mul broke the inverse invariant: %d", c.V*c.Inv%p)
	}
}

func TestDiv_UndoesMul(t *testing.T) {
	const p = mersenne31
	a := New(31337, p)
	b := New(271828, p)
	got := Div(Mul(a, b, p), b, p)
	if got.V != a.V || got.Inv != a.Inv {
		t.Errorf("Div(Mul(a,b), b) = %+v, want %+v", got, a)
	}
}

// TestDiv_Aliasing mirrors the aliasing hazard: dividing a value by itself
// must not read a clobbered denominator. With value semantics the hazard is
// gone, but the identity x/x == 1 still pins the ordering.
func TestDiv_Aliasing(t *testing.T) {
	const p = mersenne31
	x := New(424242, p)
	got := Div(x, x, p)
	if got.V != 1 || got.Inv != 1 {
		t.Errorf("Div(x, x) = %+v, want One()", got)
	}
}
