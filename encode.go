package cm256

import "github.com/lalawue/cm256/gf256"

// Encode computes params.RecoveryCount recovery blocks from
// params.OriginalCount original blocks and writes them end-to-end,
// row-major, into recoveryOut (recovery row 0 first).
//
// originals must have exactly OriginalCount elements, each exactly
// BlockBytes long. recoveryOut must be exactly RecoveryCount*BlockBytes
// long. Encode reads originals and writes recoveryOut only; it never
// allocates and never touches any other caller memory.
func Encode(params Params, originals [][]byte, recoveryOut []byte) error {
	if err := params.validate(); err != nil {
		return err
	}
	if originals == nil || recoveryOut == nil {
		return ErrNilInput
	}
	n, m, b := params.OriginalCount, params.RecoveryCount, params.BlockBytes
	if len(originals) != n || len(recoveryOut) != m*b {
		return ErrInvalidDimension
	}
	for _, o := range originals {
		if o == nil {
			return ErrNilInput
		}
		if len(o) != b {
			return ErrInvalidDimension
		}
	}

	// Degenerate case: a single original has nothing to combine with,
	// so every recovery row is just a copy of it.
	if n == 1 {
		for i := 0; i < m; i++ {
			copy(recoveryOut[i*b:(i+1)*b], originals[0])
		}
		return nil
	}

	// Recovery row 0 is the all-ones row of the normalized matrix: a
	// plain XOR parity, far cheaper than the general multiply-add path
	// below.
	row0 := recoveryOut[0:b]
	gf256.AddSetMem(row0, originals[0], originals[1])
	for j := 2; j < n; j++ {
		gf256.AddMem(row0, originals[j])
	}

	x0 := byte(n)
	for i := 1; i < m; i++ {
		xi := byte(n + i)
		row := recoveryOut[i*b : (i+1)*b]
		gf256.MulMem(row, originals[0], element(xi, x0, 0))
		for j := 1; j < n; j++ {
			gf256.MulAddMem(row, element(xi, x0, byte(j)), originals[j])
		}
	}
	return nil
}
