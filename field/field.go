// Package field implements arithmetic in a prime field with cached inverses.
//
// Karp-Rabin fingerprinting divides by powers of the base as often as it
// multiplies with them, so every field value carries its modular inverse
// alongside it. A division is then two multiplications instead of an
// extended-Euclid walk on the hot path.
//
// The modulus must satisfy p*p < 2^64 so that products of two values never
// overflow a 64-bit word; callers pick primes below 2^32.
package field

// Val is a field value paired with its modular inverse.
//
// Invariant: for a Val v produced by this package, v.V is in [0, p) and
// v.V * v.Inv == 1 (mod p).
type Val struct {
	V   uint64
	Inv uint64
}

// One is the multiplicative identity. It is its own inverse in every field.
func One() Val {
	return Val{V: 1, Inv: 1}
}

// Mul multiplies two field values componentwise mod p.
func Mul(a, b Val, p uint64) Val {
	return Val{
		V:   a.V * b.V % p,
		Inv: a.Inv * b.Inv % p,
	}
}

// Div divides num by den in the field. Since every value carries its
// inverse, the quotient is num.V*den.Inv and its inverse den.V*num.Inv.
func Div(num, den Val, p uint64) Val {
	return Val{
		V:   num.V * den.Inv % p,
		Inv: den.V * num.Inv % p,
	}
}

// New builds a field value from a raw residue, computing its inverse.
// The caller guarantees gcd(v, p) == 1, which holds for any v in [1, p)
// when p is prime.
func New(v, p uint64) Val {
	return Val{V: v % p, Inv: ModInverse(v%p, p)}
}

// ModInverse returns the multiplicative inverse of a mod p via the extended
// Euclidean recurrence.
//
// The loop maintains t*a == r (mod p) and tt*a == rr (mod p) while (r, rr)
// descend as in Euclid's algorithm. When rr reaches 0, r is gcd(a, p); for
// prime p that gcd is 1, so t*a == 1 (mod p) and t is the inverse.
//
// All arithmetic is unsigned, so the update of tt takes the detour through
// +p when a direct subtraction would wrap.
func ModInverse(a, p uint64) uint64 {
	r, t := p, uint64(0)
	rr, tt := a, uint64(1)
	for rr != 0 {
		q := r / rr
		r, rr = rr, r-q*rr
		if qt := q * tt % p; t >= qt {
			t, tt = tt, t-qt
		} else {
			t, tt = tt, t+p-qt
		}
	}
	return t
}
