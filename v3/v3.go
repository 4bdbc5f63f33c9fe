/*
 * v3.go, part of pwtraj.
 *
 * Copyright 2024 The pwtraj authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package v3

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

//Matrix is a set of vectors in 3D space. Within the package it is understood
//that a "vector" is a row vector, i.e. the cartesian coordinates of a point
//in 3D space, or one lattice vector of a cell.
type Matrix struct {
	*mat.Dense
}

//Matrix2Dense returns the underlying gonum Dense.
func Matrix2Dense(A *Matrix) *mat.Dense {
	return A.Dense
}

//Dense2Matrix wraps a gonum Dense with 3 columns. Panics otherwise.
func Dense2Matrix(A *mat.Dense) *Matrix {
	if _, c := A.Dims(); c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return &Matrix{A}
}

//NewMatrix generates and returns a Matrix with 3 columns from data.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	rows := l / cols
	if l%cols != 0 || l == 0 {
		return nil, Error{fmt.Sprintf("Input slice lenght %d not divisible by %d, or empty", l, cols), []string{"NewMatrix"}, true}
	}
	r := mat.NewDense(rows, cols, data)
	return &Matrix{r}, nil
}

//Zeros returns a zero-filled Matrix with vecs vectors and 3 in the other dimension.
func Zeros(vecs int) *Matrix {
	const cols int = 3
	f := make([]float64, cols*vecs)
	return &Matrix{mat.NewDense(vecs, cols, f)}
}

//NVecs returns the number of vecs in F.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return r
}

//VecView returns view of the given vector of the matrix. Changes in the
//view are reflected in F and vice-versa.
func (F *Matrix) VecView(i int) *Matrix {
	r := F.Dense.Slice(i, i+1, 0, 3).(*mat.Dense)
	return &Matrix{r}
}

//Vec returns a copy of the ith vector of F as a 3-element array.
func (F *Matrix) Vec(i int) [3]float64 {
	var ret [3]float64
	copy(ret[:], F.RawRowView(i))
	return ret
}

//SetVec sets the ith vector of F to v.
func (F *Matrix) SetVec(i int, v [3]float64) {
	copy(F.RawRowView(i), v[:])
}

//Clone returns a deep copy of F.
func (F *Matrix) Clone() *Matrix {
	if F == nil {
		return nil
	}
	return &Matrix{mat.DenseCopyOf(F.Dense)}
}

//Norm returns the euclidean norm of the ith vector of F.
func (F *Matrix) Norm(i int) float64 {
	v := F.RawRowView(i)
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

//MaxNorm returns the largest euclidean norm among the vectors of F.
func (F *Matrix) MaxNorm() float64 {
	max := 0.0
	for i := 0; i < F.NVecs(); i++ {
		if n := F.Norm(i); n > max {
			max = n
		}
	}
	return max
}

//String returns a neat string representation of a Matrix
func (F *Matrix) String() string {
	r, _ := F.Dims()
	v := make([]string, 0, r+2)
	v = append(v, "[")
	for i := 0; i < r; i++ {
		row := F.RawRowView(i)
		v = append(v, fmt.Sprintf(" %10.5f %10.5f %10.5f", row[0], row[1], row[2]))
	}
	v = append(v, " ]")
	return strings.Join(v, "\n")
}

//Cell helpers. A cell is a 3-vector Matrix where each vector is a lattice vector.

//Volume returns the volume of the cell, i.e. the absolute value of its determinant.
//Panics if cell is not 3x3.
func Volume(cell *Matrix) float64 {
	if cell.NVecs() != 3 {
		panic(ErrDeterminant)
	}
	return math.Abs(mat.Det(cell.Dense))
}

//Frac2Cart returns the cartesian coordinates corresponding to the fractional
//(crystal) coordinates frac in the given cell.
func Frac2Cart(frac, cell *Matrix) *Matrix {
	ret := Zeros(frac.NVecs())
	ret.Mul(frac.Dense, cell.Dense)
	return ret
}

//Cart2Frac returns the fractional coordinates corresponding to the cartesian
//coordinates in the given cell. It returns an error if the cell is singular.
func Cart2Frac(cart, cell *Matrix) (*Matrix, error) {
	inv := mat.NewDense(3, 3, nil)
	if err := inv.Inverse(cell.Dense); err != nil {
		return nil, Error{"Singular cell: " + err.Error(), []string{"Cart2Frac"}, true}
	}
	ret := Zeros(cart.NVecs())
	ret.Mul(cart.Dense, inv)
	return ret, nil
}

//AllClose returns true if A and B have the same shape and every pair of elements
//satisfies |a-b| <= atol + rtol*|b|.
func AllClose(A, B *Matrix, rtol, atol float64) bool {
	if A == nil || B == nil {
		return A == B
	}
	ar, ac := A.Dims()
	br, bc := B.Dims()
	if ar != br || ac != bc {
		return false
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			a, b := A.At(i, j), B.At(i, j)
			if math.Abs(a-b) > atol+rtol*math.Abs(b) {
				return false
			}
		}
	}
	return true
}

//Errors

//Error is the error type of the package. It has the same behavior as chem.Error but
//it is defined here to avoid a circular import.
type Error struct {
	message  string
	deco     []string
	critical bool
}

//Error returns a string with an error message.
func (err Error) Error() string {
	return err.message
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Critical return whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }

//PanicMsg is a message used for panics, even though it does satisfy the error interface.
//for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix = PanicMsg("pwtraj/v3: A v3.Matrix should have 3 columns")
	ErrDeterminant  = PanicMsg("pwtraj/v3: Determinants are only available for 3x3 matrices")
	ErrShape        = PanicMsg("pwtraj/v3: Dimension mismatch")
)
