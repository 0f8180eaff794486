// Package fingerprint implements Karp-Rabin rolling fingerprints over byte
// sequences in a prime field.
//
// The fingerprint of s[0..n) with base r is sum(s[i] * r^i) mod p. Storing
// the exponent base-side (rather than the conventional high-order-first
// form) makes the composition identities directional in the way a stream
// matcher needs them:
//
//	fp(a++b) = fp(a) + r^|a| * fp(b)
//	fp(b)    = (fp(a++b) - fp(a)) * r^-|a|
//	fp(a)    = fp(a++b) - r^|a| * fp(b)
//
// Every function takes the r^|a| factor as a field.Val so the inverse power
// needed by Suffix is available without any inversion at match time.
//
// All subtractions go through the p-complement when they would wrap, and
// every sum is reduced after each multiplication: the only guarantee is
// p*p < 2^64.
package fingerprint

import "github.com/coregx/streambench/field"

// Calc computes the fingerprint of seq in one pass. It also returns
// r^len(seq), which callers thread into the composition helpers.
func Calc(seq []byte, r field.Val, p uint64) (fp uint64, rn field.Val) {
	rn = field.One()
	for _, c := range seq {
		fp = (fp + uint64(c)*rn.V%p) % p
		rn = field.Mul(rn, r, p)
	}
	return fp, rn
}

// CalcWithPrefix extends a known prefix fingerprint over the rest of seq.
// prefixRN must be r^prefixLen as produced by a previous Calc or
// CalcWithPrefix over seq[:prefixLen]. Returns the fingerprint of all of
// seq and r^len(seq).
func CalcWithPrefix(seq []byte, prefixLen int, prefixFP uint64, prefixRN field.Val, r field.Val, p uint64) (fp uint64, rn field.Val) {
	fp, rn = prefixFP, prefixRN
	for _, c := range seq[prefixLen:] {
		fp = (fp + uint64(c)*rn.V%p) % p
		rn = field.Mul(rn, r, p)
	}
	return fp, rn
}

// Suffix recovers fp(b) from fp(a++b) and fp(a), where rPrefix is r^|a|.
func Suffix(allFP, prefixFP uint64, rPrefix field.Val, p uint64) uint64 {
	d := allFP
	if d < prefixFP {
		d += p
	}
	return (d - prefixFP) * rPrefix.Inv % p
}

// Prefix recovers fp(a) from fp(a++b) and fp(b), where rPrefix is r^|a|.
func Prefix(allFP, suffixFP uint64, rPrefix field.Val, p uint64) uint64 {
	part := suffixFP * rPrefix.V % p
	d := allFP
	if d < part {
		d += p
	}
	return d - part
}

// Concat combines fp(a) and fp(b) into fp(a++b), where rPrefix is r^|a|.
func Concat(prefixFP, suffixFP uint64, rPrefix field.Val, p uint64) uint64 {
	return (prefixFP + suffixFP*rPrefix.V%p) % p
}
