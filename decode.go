package cm256

import "github.com/lalawue/cm256/gf256"

// stackMatrixBytes is the scratch-matrix size below which Decode
// prefers a fixed-size local array over a heap allocation. It is a
// performance hint, not a correctness requirement: K*K never exceeds
// it for K<=45, which comfortably covers the vast majority of
// real-world (N, M) choices.
const stackMatrixBytes = 2048

// Decode takes exactly params.OriginalCount blocks, each tagged with
// the index it represents (see Block), and rewrites it in place so
// that, for every row k in [0, OriginalCount), some block in blocks
// holds original k's payload with Index == k. Blocks that were
// already original are left untouched; blocks that were recovery rows
// are overwritten with reconstructed original payloads and relabeled.
//
// If blocks already contains every original (no erasures), Decode is
// a no-op.
func Decode(params Params, blocks []Block) error {
	if err := params.validate(); err != nil {
		return err
	}
	if blocks == nil {
		return ErrNilInput
	}
	n, m, b := params.OriginalCount, params.RecoveryCount, params.BlockBytes
	if len(blocks) != n {
		return ErrInvalidDimension
	}
	for _, blk := range blocks {
		if blk.Payload == nil {
			return ErrNilInput
		}
		if len(blk.Payload) != b || blk.Index < 0 || blk.Index >= n+m {
			return ErrInvalidDimension
		}
	}

	// A single original block is trivially "decoded": whatever arrived
	// is original 0, originals and recoveries being identical for N=1.
	if n == 1 {
		blocks[0].Index = 0
		return nil
	}

	// Phase 1-2: classify the received blocks and enumerate erasures.
	present := make([]bool, n)
	originalRows := make([]int, 0, n)
	recoveryRows := make([]int, 0, n)
	for i, blk := range blocks {
		if blk.Index < n {
			present[blk.Index] = true
			originalRows = append(originalRows, i)
		} else {
			recoveryRows = append(recoveryRows, i)
		}
	}
	k := len(recoveryRows)
	if k == 0 {
		return nil
	}
	erasures := make([]byte, 0, k)
	for r := 0; r < n && len(erasures) < k; r++ {
		if !present[r] {
			erasures = append(erasures, byte(r))
		}
	}

	x0 := byte(n)

	// M=1 (so K=1): the lone recovery row is the XOR-parity of every
	// original. XOR in the received originals and what is left is the
	// single missing one.
	if m == 1 {
		out := blocks[recoveryRows[0]].Payload
		var pending []byte
		for _, oi := range originalRows {
			cur := blocks[oi].Payload
			if pending == nil {
				pending = cur
				continue
			}
			gf256.Add2Mem(out, pending, cur)
			pending = nil
		}
		if pending != nil {
			gf256.AddMem(out, pending)
		}
		blocks[recoveryRows[0]].Index = int(erasures[0])
		return nil
	}

	// Phase 4: cancel each received original's known contribution out
	// of every recovery row, leaving each recovery row a function of
	// only the unknown (erased) columns.
	for _, oi := range originalRows {
		r := byte(blocks[oi].Index)
		payload := blocks[oi].Payload
		for _, ri := range recoveryRows {
			xi := byte(blocks[ri].Index)
			gf256.MulAddMem(blocks[ri].Payload, element(xi, x0, r), payload)
		}
	}

	// Phase 5: build the K x K sub-matrix over the erased columns.
	var stackMatrix [stackMatrixBytes]byte
	var matrix []byte
	if k*k <= stackMatrixBytes {
		matrix = stackMatrix[:k*k]
	} else {
		matrix = make([]byte, k*k)
	}
	for i, ri := range recoveryRows {
		xi := byte(blocks[ri].Index)
		rowOff := i * k
		for j := 0; j < k; j++ {
			matrix[rowOff+j] = element(xi, x0, erasures[j])
		}
	}

	// Phase 6: Gauss-Jordan forward elimination with row pivoting via
	// a permutation array; the matrix bytes and the recovery payloads
	// are rewritten in lockstep.
	pivots := make([]int, k)
	for i := range pivots {
		pivots[i] = i
	}
	for j := 0; j < k; j++ {
		pivotPos := -1
		for rem := j; rem < k; rem++ {
			if matrix[pivots[rem]*k+j] != 0 {
				pivotPos = rem
				break
			}
		}
		if pivotPos == -1 {
			panic("cm256: no pivot found; every Cauchy sub-matrix is invertible by construction")
		}
		pivots[j], pivots[pivotPos] = pivots[pivotPos], pivots[j]

		i := pivots[j]
		ri := recoveryRows[i]
		e := matrix[i*k+j]
		blocks[ri].Index = int(erasures[j])

		if e != 1 {
			inv := gf256.Inv(e)
			gf256.MulMem(matrix[i*k+j+1:i*k+k], matrix[i*k+j+1:i*k+k], inv)
			gf256.MulMem(blocks[ri].Payload, blocks[ri].Payload, inv)
		}

		for kk := j + 1; kk < k; kk++ {
			i2 := pivots[kk]
			f := matrix[i2*k+j]
			if f == 0 {
				continue
			}
			ri2 := recoveryRows[i2]
			gf256.MulAddMem(matrix[i2*k+j+1:i2*k+k], f, matrix[i*k+j+1:i*k+k])
			gf256.MulAddMem(blocks[ri2].Payload, f, blocks[ri].Payload)
		}
	}

	// Phase 7: back-substitute. Only the payloads are observable from
	// here on, so the matrix itself need not be updated further.
	for j := k - 2; j >= 0; j-- {
		i := pivots[j]
		ri := recoveryRows[i]
		for kk := k - 1; kk > j; kk-- {
			coeff := matrix[i*k+kk]
			if coeff == 0 {
				continue
			}
			i2 := pivots[kk]
			ri2 := recoveryRows[i2]
			gf256.MulAddMem(blocks[ri].Payload, coeff, blocks[ri2].Payload)
		}
	}
	return nil
}
