/*
 * frame.go, part of pwtraj.
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

package chem

import (
	"fmt"
	"sort"
	"strings"

	v3 "github.com/rmera/pwtraj/v3"
)

//Atom contains the identity of one atom in a frame. Coordinates are kept
//in the frame's matrix, not here.
type Atom struct {
	Label  string //as given in the source, e.g. "Fe1"
	Symbol string
	Tag    int
	Mass   float64
}

//NewAtom builds an Atom from a label, decoding the symbol and tag and
//assigning the standard atomic mass.
func NewAtom(label string) (*Atom, error) {
	symbol, tag, err := DecodeLabel(label)
	if err != nil {
		return nil, ErrDecorate(err, "NewAtom")
	}
	mass, _ := Mass(symbol)
	return &Atom{Label: strings.TrimSpace(label), Symbol: symbol, Tag: tag, Mass: mass}, nil
}

//Copy returns a copy of the atom.
func (A *Atom) Copy() *Atom {
	if A == nil {
		return nil
	}
	r := *A
	return &r
}

//Frame is one structural snapshot: atoms, cartesian coordinates (A), cell
//vectors as rows (A), periodicity, per-axis constraints and, optionally,
//the results computed for that structure.
type Frame struct {
	Atoms          []*Atom
	Coords         *v3.Matrix
	Cell           *v3.Matrix
	PBC            [3]bool
	Fixed          [][3]bool //nil if no atom is constrained. True means the axis is fixed.
	InitialMagmoms []float64 //nil if not set.
	Results        *Results  //nil if no results were found for the frame.
	Line           int       //0-based line where the frame was read from, -1 if not applicable.
}

//NewFrame returns a frame with the given atoms, coordinates and cell, checking
//that the number of atoms and coordinates match. The cell can be nil. The
//frame is periodic in all directions if a cell is given.
func NewFrame(atoms []*Atom, coords, cell *v3.Matrix) (*Frame, error) {
	if coords == nil {
		return nil, CError{"Nil coordinates given", []string{"NewFrame"}}
	}
	if coords.NVecs() != len(atoms) {
		return nil, CError{fmt.Sprintf("Inconsistent frame: %d atoms, %d coordinates", len(atoms), coords.NVecs()), []string{"NewFrame"}}
	}
	if cell != nil && cell.NVecs() != 3 {
		return nil, CError{fmt.Sprintf("A cell needs 3 vectors, got %d", cell.NVecs()), []string{"NewFrame"}}
	}
	F := &Frame{Atoms: atoms, Coords: coords, Cell: cell, Line: -1}
	if cell != nil {
		F.PBC = [3]bool{true, true, true}
	}
	return F, nil
}

//Len returns the number of atoms in the frame.
func (F *Frame) Len() int {
	return len(F.Atoms)
}

//Atom returns the ith atom of the frame.
func (F *Frame) Atom(i int) *Atom {
	return F.Atoms[i]
}

//Symbols returns the chemical symbols of all atoms.
func (F *Frame) Symbols() []string {
	ret := make([]string, len(F.Atoms))
	for i, a := range F.Atoms {
		ret[i] = a.Symbol
	}
	return ret
}

//Labels returns the labels of all atoms.
func (F *Frame) Labels() []string {
	ret := make([]string, len(F.Atoms))
	for i, a := range F.Atoms {
		ret[i] = a.Label
	}
	return ret
}

//Tags returns the integer tags of all atoms.
func (F *Frame) Tags() []int {
	ret := make([]int, len(F.Atoms))
	for i, a := range F.Atoms {
		ret[i] = a.Tag
	}
	return ret
}

//Masses returns the masses of all atoms.
func (F *Frame) Masses() []float64 {
	ret := make([]float64, len(F.Atoms))
	for i, a := range F.Atoms {
		ret[i] = a.Mass
	}
	return ret
}

//Formula returns the chemical formula of the frame, in Hill order.
func (F *Frame) Formula() string {
	count := make(map[string]int)
	for _, a := range F.Atoms {
		count[a.Symbol]++
	}
	syms := make([]string, 0, len(count))
	for s := range count {
		syms = append(syms, s)
	}
	_, hasC := count["C"]
	sort.Slice(syms, func(i, j int) bool {
		if hasC {
			for _, first := range []string{"C", "H"} {
				if syms[i] == first {
					return syms[j] != first
				}
				if syms[j] == first {
					return false
				}
			}
		}
		return syms[i] < syms[j]
	})
	var b strings.Builder
	for _, s := range syms {
		b.WriteString(s)
		if count[s] > 1 {
			fmt.Fprintf(&b, "%d", count[s])
		}
	}
	return b.String()
}

//HasConstraints returns true if at least one axis of one atom is fixed.
func (F *Frame) HasConstraints() bool {
	for _, f := range F.Fixed {
		if f[0] || f[1] || f[2] {
			return true
		}
	}
	return false
}

//FixedAtoms returns the indexes of the atoms with all three axes fixed.
func (F *Frame) FixedAtoms() []int {
	var ret []int
	for i, f := range F.Fixed {
		if f[0] && f[1] && f[2] {
			ret = append(ret, i)
		}
	}
	return ret
}

//Volume returns the volume of the cell in A^3, or 0 if the frame has no cell.
func (F *Frame) Volume() float64 {
	if F.Cell == nil {
		return 0
	}
	return v3.Volume(F.Cell)
}

//ScaledPositions returns the coordinates of the atoms as fractions of the cell vectors.
func (F *Frame) ScaledPositions() (*v3.Matrix, error) {
	if F.Cell == nil {
		return nil, CError{"Frame has no cell", []string{"ScaledPositions"}}
	}
	r, err := v3.Cart2Frac(F.Coords, F.Cell)
	if err != nil {
		return nil, ErrDecorate(err, "ScaledPositions")
	}
	return r, nil
}

//Copy returns a deep copy of the frame, results included.
func (F *Frame) Copy() *Frame {
	if F == nil {
		return nil
	}
	r := &Frame{
		Atoms:  make([]*Atom, len(F.Atoms)),
		Coords: F.Coords.Clone(),
		Cell:   F.Cell.Clone(),
		PBC:    F.PBC,
		Line:   F.Line,
	}
	for i, a := range F.Atoms {
		r.Atoms[i] = a.Copy()
	}
	if F.Fixed != nil {
		r.Fixed = append([][3]bool(nil), F.Fixed...)
	}
	if F.InitialMagmoms != nil {
		r.InitialMagmoms = append([]float64(nil), F.InitialMagmoms...)
	}
	r.Results = F.Results.Copy()
	return r
}

//Check verifies that atoms, coordinates, constraints and magnetic moments
//have consistent lengths.
func (F *Frame) Check() error {
	n := len(F.Atoms)
	if F.Coords == nil || F.Coords.NVecs() != n {
		return CError{"Inconsistent number of coordinates", []string{"Check"}}
	}
	if F.Fixed != nil && len(F.Fixed) != n {
		return CError{"Inconsistent number of constraints", []string{"Check"}}
	}
	if F.InitialMagmoms != nil && len(F.InitialMagmoms) != n {
		return CError{"Inconsistent number of initial magnetic moments", []string{"Check"}}
	}
	if F.Results != nil {
		if F.Results.Forces != nil && F.Results.Forces.NVecs() != n {
			return CError{"Inconsistent number of forces", []string{"Check"}}
		}
		if F.Results.Magmoms != nil && len(F.Results.Magmoms) != n {
			return CError{"Inconsistent number of magnetic moments", []string{"Check"}}
		}
	}
	return nil
}
