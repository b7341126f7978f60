package cm256

import "github.com/lalawue/cm256/gf256"

// element returns one entry of the column-normalized Cauchy matrix:
//
//	a_ij = (y_j + x_0) / (x_i + y_j)   in GF(256)
//
// x_i is a recovery row parameter (x_i = OriginalCount + i), x_0 is
// the fixed normalization parameter (x_0 = OriginalCount, i.e. the
// x_i of recovery row 0), and y_j is an original column parameter
// (y_j = the original's index). The x_i and y_j parameter sets never
// intersect (x_i >= OriginalCount > y_j), so x_i+y_j is never zero
// and the division is always defined.
//
// For row 0 (x_i == x_0) it evaluates to 1 for every column. The
// encoder special-cases that row as a plain XOR of the originals
// instead of a table of multiplies; the decoder passes it through here
// like any other row and gets that 1.
func element(xi, x0, yj byte) byte {
	return gf256.Div(gf256.Add(yj, x0), gf256.Add(xi, yj))
}
