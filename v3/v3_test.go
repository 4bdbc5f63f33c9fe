/*
 * v3_test.go, part of pwtraj.
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
	"testing"
)

func TestNewMatrix(Te *testing.T) {
	if _, err := NewMatrix([]float64{1, 2, 3, 4}); err == nil {
		Te.Error("A 4-element slice should not make a Matrix")
	}
	if _, err := NewMatrix(nil); err == nil {
		Te.Error("An empty slice should not make a Matrix")
	}
	A, err := NewMatrix([]float64{1, 2, 3, 4, 5, 6})
	if err != nil {
		Te.Fatal(err)
	}
	if A.NVecs() != 2 {
		Te.Errorf("Expected 2 vectors, got %d", A.NVecs())
	}
	fmt.Println(A)
}

func TestVecView(Te *testing.T) {
	A, _ := NewMatrix([]float64{1, 2, 3, 4, 5, 6})
	v := A.VecView(1)
	v.Set(0, 2, 60)
	if A.At(1, 2) != 60 {
		Te.Errorf("Changes in the view were not reflected in the matrix: %v", A)
	}
	c := A.Vec(0)
	c[0] = 100
	if A.At(0, 0) != 1 {
		Te.Error("Vec should return a copy")
	}
	A.SetVec(0, [3]float64{7, 8, 9})
	if A.At(0, 1) != 8 {
		Te.Errorf("SetVec failed: %v", A)
	}
	B := A.Clone()
	B.Set(0, 0, -1)
	if A.At(0, 0) != 7 {
		Te.Error("Clone should not share memory")
	}
}

func TestNorms(Te *testing.T) {
	A, _ := NewMatrix([]float64{3, 4, 0, 0, 0, 1})
	if A.Norm(0) != 5 {
		Te.Errorf("Norm of (3,4,0) should be 5, got %f", A.Norm(0))
	}
	if A.MaxNorm() != 5 {
		Te.Errorf("MaxNorm should be 5, got %f", A.MaxNorm())
	}
}

func TestFracCart(Te *testing.T) {
	cell, _ := NewMatrix([]float64{
		4, 0, 0,
		1, 5, 0,
		0, 0, 6})
	if math.Abs(Volume(cell)-120) > 1e-10 {
		Te.Errorf("Volume should be 120, got %f", Volume(cell))
	}
	frac, _ := NewMatrix([]float64{0.5, 0.5, 0.5, 0.25, 0, 1})
	cart := Frac2Cart(frac, cell)
	if math.Abs(cart.At(0, 0)-2.5) > 1e-12 || math.Abs(cart.At(0, 1)-2.5) > 1e-12 || math.Abs(cart.At(0, 2)-3) > 1e-12 {
		Te.Errorf("Wrong cartesian coordinates: %v", cart)
	}
	back, err := Cart2Frac(cart, cell)
	if err != nil {
		Te.Fatal(err)
	}
	if !AllClose(back, frac, 1e-10, 1e-12) {
		Te.Errorf("Round trip failed: %v vs %v", back, frac)
	}
	sing, _ := NewMatrix([]float64{1, 0, 0, 1, 0, 0, 0, 0, 1})
	if _, err := Cart2Frac(cart, sing); err == nil {
		Te.Error("A singular cell should give an error")
	}
}

func TestAllClose(Te *testing.T) {
	A, _ := NewMatrix([]float64{1, 2, 3})
	B, _ := NewMatrix([]float64{1 + 1e-9, 2, 3})
	C, _ := NewMatrix([]float64{1.1, 2, 3})
	D, _ := NewMatrix([]float64{1, 2, 3, 1, 2, 3})
	if !AllClose(A, B, 1e-5, 1e-8) {
		Te.Error("A and B should be close")
	}
	if AllClose(A, C, 1e-5, 1e-8) {
		Te.Error("A and C should not be close")
	}
	if AllClose(A, D, 1e-5, 1e-8) {
		Te.Error("Matrices of different shape can't be close")
	}
}
