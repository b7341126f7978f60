// Package gf256 implements byte-wise arithmetic over the finite field
// GF(256) with the primitive polynomial 0x11d and generator 2. It is the
// field-arithmetic kernel that the cm256 Cauchy matrix code is built on:
// a single scalar multiply/divide/inverse plus a handful of bulk
// memory operations (mul, multiply-add, add, and their XOR-combined
// variants) that the encoder and decoder apply across whole block
// buffers instead of byte by byte.
package gf256

import (
	"fmt"
	"sync"
)

const (
	// polynomial is the degree-8 irreducible polynomial used to reduce
	// products back into the field. Matches the reference cm256/gf256
	// C library so results are bit-identical across implementations.
	polynomial = 0x11d

	// generator seeds the exp/log tables; its powers cover every
	// nonzero field element exactly once.
	generator = 2
)

var (
	expTable [510]byte // doubled so expTable[log(a)+log(b)] never needs a modulo
	logTable [256]byte
	mulTable [256][256]byte

	initOnce sync.Once
	initErr  error
)

// Init builds the log/exp/multiplication tables. It is idempotent and
// safe to call from multiple goroutines; only the first call does any
// work. Every other function in this package assumes Init has already
// run to completion (the cm256 package calls it from its own Init).
func Init() error {
	initOnce.Do(func() {
		x := 1
		for i := 0; i < 255; i++ {
			expTable[i] = byte(x)
			logTable[byte(x)] = byte(i)
			x <<= 1
			if x&0x100 != 0 {
				x ^= polynomial
			}
		}
		for i := 255; i < 510; i++ {
			expTable[i] = expTable[i-255]
		}
		if expTable[0] != 1 || logTable[1] != 0 {
			initErr = fmt.Errorf("gf256: table construction invariant violated")
			return
		}
		for a := 1; a < 256; a++ {
			for b := 1; b < 256; b++ {
				mulTable[a][b] = expTable[int(logTable[byte(a)])+int(logTable[byte(b)])]
			}
		}
	})
	return initErr
}

// Add returns a XOR b, which is addition (and subtraction) in GF(256).
func Add(a, b byte) byte {
	return a ^ b
}

// Mul returns the product of a and b in GF(256).
func Mul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return mulTable[a][b]
}

// Inv returns the multiplicative inverse of a. Callers must never pass
// zero; zero has no inverse and the cm256 algorithms never need one.
func Inv(a byte) byte {
	if a == 0 {
		panic("gf256: Inv(0) is undefined")
	}
	return expTable[255-int(logTable[a])]
}

// Div returns a divided by b. Callers must never pass a zero divisor.
func Div(a, b byte) byte {
	if a == 0 {
		return 0
	}
	if b == 0 {
		panic("gf256: Div by zero is undefined")
	}
	return expTable[int(logTable[a])-int(logTable[b])+255]
}

// MulMem sets dst[i] = c * src[i] for every byte. dst and src may be
// the same slice; len(dst) bytes are written and must not exceed
// len(src).
func MulMem(dst, src []byte, c byte) {
	if c == 0 {
		for i := range dst {
			dst[i] = 0
		}
		return
	}
	if c == 1 {
		copy(dst, src)
		return
	}
	row := &mulTable[c]
	for i, s := range src[:len(dst)] {
		dst[i] = row[s]
	}
}

// MulAddMem sets dst[i] ^= c * src[i] for every byte: a fused
// multiply-add over GF(256), the workhorse of both the encoder and
// decoder.
func MulAddMem(dst []byte, c byte, src []byte) {
	if c == 0 {
		return
	}
	if c == 1 {
		AddMem(dst, src)
		return
	}
	row := &mulTable[c]
	for i, s := range src[:len(dst)] {
		dst[i] ^= row[s]
	}
}

// AddMem sets dst[i] ^= src[i] for every byte.
func AddMem(dst, src []byte) {
	n := len(dst)
	i := 0
	for ; i+8 <= n; i += 8 {
		d := dst[i : i+8]
		s := src[i : i+8]
		d[0] ^= s[0]
		d[1] ^= s[1]
		d[2] ^= s[2]
		d[3] ^= s[3]
		d[4] ^= s[4]
		d[5] ^= s[5]
		d[6] ^= s[6]
		d[7] ^= s[7]
	}
	for ; i < n; i++ {
		dst[i] ^= src[i]
	}
}

// Add2Mem sets dst[i] ^= a[i] ^ b[i] for every byte.
func Add2Mem(dst, a, b []byte) {
	for i := range dst {
		dst[i] ^= a[i] ^ b[i]
	}
}

// AddSetMem sets dst[i] = a[i] ^ b[i] for every byte, without reading
// the previous contents of dst.
func AddSetMem(dst, a, b []byte) {
	for i := range dst {
		dst[i] = a[i] ^ b[i]
	}
}
