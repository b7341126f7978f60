package cm256

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func init() {
	if err := Init(Version); err != nil {
		panic(err)
	}
}

func randomBlocks(n, b int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = make([]byte, b)
		if _, err := rand.Read(out[i]); err != nil {
			panic(err)
		}
	}
	return out
}

// roundTrip encodes originals, drops the original indices named by
// erase and fills their places with recovery blocks (lowest row
// first), then decodes and checks every original is restored exactly.
func roundTrip(t *testing.T, n, m, b int, originals [][]byte, erase []int) {
	t.Helper()
	params := Params{OriginalCount: n, RecoveryCount: m, BlockBytes: b}
	recovery := make([]byte, m*b)
	require.NoError(t, Encode(params, originals, recovery))

	erased := make(map[int]bool, len(erase))
	for _, e := range erase {
		erased[e] = true
	}

	blocks := make([]Block, 0, n)
	for i := 0; i < n; i++ {
		if !erased[i] {
			blocks = append(blocks, Block{Index: i, Payload: append([]byte(nil), originals[i]...)})
		}
	}
	need := n - len(blocks)
	for i := 0; i < need; i++ {
		row := recovery[i*b : (i+1)*b]
		blocks = append(blocks, Block{Index: n + i, Payload: append([]byte(nil), row...)})
	}
	require.Len(t, blocks, n)

	require.NoError(t, Decode(params, blocks))

	byIndex := make(map[int][]byte, n)
	for _, blk := range blocks {
		byIndex[blk.Index] = blk.Payload
	}
	for i := 0; i < n; i++ {
		require.Equal(t, originals[i], byIndex[i], "original %d mismatch", i)
	}
}

// TestS1ThreeTwo matches spec scenario S1.
func TestS1ThreeTwo(t *testing.T) {
	originals := [][]byte{
		{0x11, 0x22, 0x33, 0x44},
		{0x55, 0x66, 0x77, 0x88},
		{0x99, 0xAA, 0xBB, 0xCC},
	}
	params := Params{OriginalCount: 3, RecoveryCount: 2, BlockBytes: 4}
	recovery := make([]byte, 2*4)
	require.NoError(t, Encode(params, originals, recovery))
	require.Equal(t, []byte{0xDD, 0xEE, 0xFF, 0x00}, recovery[0:4])

	roundTrip(t, 3, 2, 4, originals, []int{1})
}

// TestS2SingleOriginal matches spec scenario S2.
func TestS2SingleOriginal(t *testing.T) {
	original := []byte{0x01, 0x02, 0x03, 0x04}
	params := Params{OriginalCount: 1, RecoveryCount: 3, BlockBytes: 4}
	recovery := make([]byte, 3*4)
	require.NoError(t, Encode(params, [][]byte{original}, recovery))
	for i := 0; i < 3; i++ {
		require.Equal(t, original, recovery[i*4:(i+1)*4])
	}

	for idx := 0; idx < 4; idx++ {
		var payload []byte
		var sourceIndex int
		if idx == 0 {
			payload, sourceIndex = append([]byte(nil), original...), 0
		} else {
			payload, sourceIndex = append([]byte(nil), recovery[(idx-1)*4:idx*4]...), 1+(idx-1)
		}
		blocks := []Block{{Index: sourceIndex, Payload: payload}}
		require.NoError(t, Decode(params, blocks))
		require.Equal(t, 0, blocks[0].Index)
		require.Equal(t, original, blocks[0].Payload)
	}
}

// TestS3FourOne matches spec scenario S3.
func TestS3FourOne(t *testing.T) {
	originals := randomBlocks(4, 4)
	roundTrip(t, 4, 1, 4, originals, []int{2})
}

// TestS4TwoTwoBothErased matches spec scenario S4.
func TestS4TwoTwoBothErased(t *testing.T) {
	originals := [][]byte{
		{0xFF, 0x00},
		{0x00, 0xFF},
	}
	roundTrip(t, 2, 2, 2, originals, []int{0, 1})
}

// TestS5ParameterRejection matches spec scenario S5.
func TestS5ParameterRejection(t *testing.T) {
	b := make([]byte, 4)
	err := Encode(Params{OriginalCount: 0, RecoveryCount: 1, BlockBytes: 4}, [][]byte{}, b)
	require.ErrorIs(t, err, ErrInvalidDimension)

	err = Encode(Params{OriginalCount: 200, RecoveryCount: 100, BlockBytes: 4}, make([][]byte, 200), make([]byte, 100*4))
	require.ErrorIs(t, err, ErrCapacityExceeded)

	err = Encode(Params{OriginalCount: 3, RecoveryCount: 2, BlockBytes: 4}, nil, b)
	require.ErrorIs(t, err, ErrNilInput)
}

// TestFirstRecoveryRowIsParity checks invariant 4: row 0 is the XOR
// of every original.
func TestFirstRecoveryRowIsParity(t *testing.T) {
	originals := randomBlocks(6, 32)
	params := Params{OriginalCount: 6, RecoveryCount: 3, BlockBytes: 32}
	recovery := make([]byte, 3*32)
	require.NoError(t, Encode(params, originals, recovery))

	want := make([]byte, 32)
	for _, o := range originals {
		for i := range want {
			want[i] ^= o[i]
		}
	}
	require.Equal(t, want, recovery[0:32])
}

// TestNoErasuresIsNoOp checks invariant 3.
func TestNoErasuresIsNoOp(t *testing.T) {
	originals := randomBlocks(5, 16)
	params := Params{OriginalCount: 5, RecoveryCount: 2, BlockBytes: 16}
	recovery := make([]byte, 2*16)
	require.NoError(t, Encode(params, originals, recovery))

	blocks := make([]Block, 5)
	for i := range blocks {
		blocks[i] = Block{Index: i, Payload: append([]byte(nil), originals[i]...)}
	}
	snapshot := make([]Block, 5)
	for i := range blocks {
		snapshot[i] = Block{Index: blocks[i].Index, Payload: append([]byte(nil), blocks[i].Payload...)}
	}

	require.NoError(t, Decode(params, blocks))
	for i := range blocks {
		require.Equal(t, snapshot[i].Index, blocks[i].Index)
		require.True(t, bytes.Equal(snapshot[i].Payload, blocks[i].Payload))
	}
}

// TestEncodeIsDeterministic checks invariant 2.
func TestEncodeIsDeterministic(t *testing.T) {
	originals := randomBlocks(7, 24)
	params := Params{OriginalCount: 7, RecoveryCount: 4, BlockBytes: 24}
	a := make([]byte, 4*24)
	b := make([]byte, 4*24)
	require.NoError(t, Encode(params, originals, a))
	require.NoError(t, Encode(params, originals, b))
	require.Equal(t, a, b)
}

// TestExhaustiveErasurePatterns checks invariant 7 for small (N, M).
func TestExhaustiveErasurePatterns(t *testing.T) {
	for n := 1; n <= 6; n++ {
		for m := 1; m <= 6; m++ {
			if n+m > 256 {
				continue
			}
			originals := randomBlocks(n, 3)
			for mask := 0; mask < (1 << n); mask++ {
				erase := make([]int, 0, n)
				for i := 0; i < n; i++ {
					if mask&(1<<i) != 0 {
						erase = append(erase, i)
					}
				}
				if len(erase) > m {
					continue
				}
				roundTrip(t, n, m, 3, originals, erase)
			}
		}
	}
}

// TestLargeBlock matches spec scenario S6.
func TestLargeBlock(t *testing.T) {
	const n, m, b = 10, 6, 65536
	originals := randomBlocks(n, b)
	roundTrip(t, n, m, b, originals, []int{1, 3, 4, 6, 7, 9})
}
