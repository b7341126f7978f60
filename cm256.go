// Package cm256 implements a systematic maximum-distance-separable (MDS)
// erasure code over GF(256) using a column-normalized Cauchy matrix.
//
// Given N original fixed-size blocks, Encode produces M recovery blocks
// such that any N of the N+M blocks are enough to reconstruct all N
// originals via Decode, provided N+M <= 256. The field arithmetic
// itself lives in the sibling gf256 package; this package only builds
// and applies the Cauchy matrix.
package cm256

import (
	"fmt"

	"github.com/lalawue/cm256/gf256"
)

// Version identifies the wire/ABI contract of this package, mirroring
// the version handshake of the C library this code is a Go rendition
// of. Callers that persist or exchange Params across process
// boundaries should check it matches.
const Version = 2

// Error is returned by Init, Encode and Decode. Code mirrors the
// distinct negative return values of the reference implementation so
// callers porting from it can match on a stable integer if they need
// to, while Go callers can just use errors.Is against the sentinels
// below.
type Error struct {
	Code int
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

var (
	// ErrVersionMismatch is returned by Init when the caller's version
	// does not match Version.
	ErrVersionMismatch = &Error{Code: -10, Msg: "cm256: version mismatch"}
	// ErrFieldInit is returned by Init when the GF(256) table
	// construction fails its internal sanity check.
	ErrFieldInit = &Error{Code: -11, Msg: "cm256: field library init failed"}
	// ErrInvalidDimension is returned when OriginalCount, RecoveryCount
	// or BlockBytes is non-positive, or an input slice has the wrong
	// length or an out-of-range block index.
	ErrInvalidDimension = &Error{Code: -1, Msg: "cm256: invalid dimension"}
	// ErrCapacityExceeded is returned when OriginalCount+RecoveryCount
	// exceeds 256, the number of symbols GF(256) can address.
	ErrCapacityExceeded = &Error{Code: -2, Msg: "cm256: original+recovery count exceeds 256"}
	// ErrNilInput is returned when a required slice argument is nil.
	ErrNilInput = &Error{Code: -3, Msg: "cm256: nil input"}
)

// Params describes one encode/decode call: N original blocks, M
// recovery blocks, each B bytes.
type Params struct {
	OriginalCount int
	RecoveryCount int
	BlockBytes    int
}

func (p Params) validate() error {
	if p.OriginalCount <= 0 || p.RecoveryCount <= 0 || p.BlockBytes <= 0 {
		return ErrInvalidDimension
	}
	if p.OriginalCount+p.RecoveryCount > 256 {
		return ErrCapacityExceeded
	}
	return nil
}

// Block pairs a payload with the index it represents. Index in
// [0, OriginalCount) names an original; Index in
// [OriginalCount, OriginalCount+RecoveryCount) names a recovery row
// (row number = Index - OriginalCount).
//
// Decode mutates both Payload and Index of the blocks it is given, in
// place: slots that held a recovery block end up holding a
// reconstructed original's payload with Index rewritten to match.
type Block struct {
	Index   int
	Payload []byte
}

// Init builds the process-wide GF(256) tables this package's Encode
// and Decode calls rely on. It must complete before the first
// Encode/Decode call; concurrent first calls are the caller's
// responsibility to serialize, though Init itself is safe to call
// more than once. version must equal Version.
func Init(version int) error {
	if version != Version {
		return ErrVersionMismatch
	}
	if err := gf256.Init(); err != nil {
		return fmt.Errorf("%w: %v", ErrFieldInit, err)
	}
	return nil
}
