// Package raptorqcompare wraps github.com/xssnick/raptorq behind the
// same Symbol-in/Symbol-out shape as the cm256 benchmark harness, so
// cmd/cm256bench can run the same loss-pattern trials against a
// fountain code and report how it compares to the Cauchy MDS code.
// It exists for the benchmark only; the cm256 package itself never
// imports this package.
package raptorqcompare

import (
	"errors"

	rqq "github.com/xssnick/raptorq"
)

// Symbol is one RaptorQ-encoded unit: an id (source symbol below K,
// repair symbol at or above K) and its bytes.
type Symbol struct {
	ID   uint32
	Data []byte
}

// Encoder wraps one RaptorQ generation for a single block of data.
type Encoder struct {
	k int
	l int
	e *rqq.Encoder
}

// NewEncoder builds an encoder for data (at most K*L bytes; the
// library pads internally if data is shorter).
func NewEncoder(data []byte, k, l int) (*Encoder, error) {
	if k <= 0 || l <= 0 {
		return nil, errors.New("raptorqcompare: bad K or L")
	}
	rq := rqq.NewRaptorQ(uint32(l))
	enc, err := rq.CreateEncoder(data)
	if err != nil {
		return nil, err
	}
	return &Encoder{k: k, l: l, e: enc}, nil
}

// GenSymbol returns the symbol for the given id; ids below K are the
// systematic source symbols, ids at or above K are repair symbols.
func (e *Encoder) GenSymbol(id uint32) []byte { return e.e.GenSymbol(id) }

// EncodeN produces n symbols with ids 0..n-1.
func (e *Encoder) EncodeN(n int) []Symbol {
	out := make([]Symbol, n)
	for i := 0; i < n; i++ {
		out[i] = Symbol{ID: uint32(i), Data: e.GenSymbol(uint32(i))}
	}
	return out
}

// Decoder wraps one RaptorQ decode attempt for a generation of known
// original size.
type Decoder struct {
	d *rqq.Decoder
}

// NewDecoder builds a decoder expecting an original payload of
// dataSize bytes, symbol length l.
func NewDecoder(dataSize, l int) (*Decoder, error) {
	if dataSize < 0 || l <= 0 {
		return nil, errors.New("raptorqcompare: bad dataSize or L")
	}
	rq := rqq.NewRaptorQ(uint32(l))
	dec, err := rq.CreateDecoder(uint32(dataSize))
	if err != nil {
		return nil, err
	}
	return &Decoder{d: dec}, nil
}

// Add feeds one received symbol in; it returns whether Decode may now
// succeed.
func (d *Decoder) Add(sym Symbol) (bool, error) {
	return d.d.AddSymbol(sym.ID, sym.Data)
}

// Decode attempts to reconstruct the original payload from every
// symbol added so far.
func (d *Decoder) Decode() (bool, []byte, error) {
	return d.d.Decode()
}
