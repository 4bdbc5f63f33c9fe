/*
 * builder.go, part of pwtraj.
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

package qe

import (
	"sort"

	chem "github.com/rmera/pwtraj"
	v3 "github.com/rmera/pwtraj/v3"
)

//Tolerances used to decide whether two cells are the same.
const (
	cellRTol = 1e-5
	cellATol = 1e-8
)

//cellOffset is the number of lines between a CELL_PARAMETERS card and the
//ATOMIC_POSITIONS card that follows it in variable-cell runs.
const cellOffset = 5

//runStartOf returns the last kept run start at or before line.
func runStartOf(starts []int, line int) (int, bool) {
	i := sort.SearchInts(starts, line+1)
	if i == 0 {
		return -1, false
	}
	return starts[i-1], true
}

//structure builds the structure (no results) of the candidate frame at line,
//and returns it with the header of its run.
func (T *Trajectory) structure(line int) (*chem.Frame, *RunHeader, error) {
	L := T.log
	start, ok := runStartOf(T.starts, line)
	if !ok {
		return nil, nil, newError(ErrMalformedHeader, line, "Trajectory.structure", "atomic positions found before any run start")
	}
	H, err := L.headers.get(L.lines, start)
	if err != nil {
		return nil, nil, errDecorate(err, "Trajectory.structure")
	}
	if line == start {
		return H.Frame.Copy(), H, nil
	}
	cell := H.Cell
	if c := line - cellOffset; c >= 0 && L.index.At(Cell, c) {
		//A card alat, if any, applies to the cell only. The positions stay in units
		//of the alat of the run.
		cell, _, err = parseCellCard(L.lines, c, H.Alat, ErrMalformedBlock)
		if err != nil {
			return nil, nil, errDecorate(err, "Trajectory.structure")
		}
	}
	P, err := parsePositionsCard(L.lines, line, H.NAtoms, cell, H.Alat, ErrMalformedBlock)
	if err != nil {
		return nil, nil, errDecorate(err, "Trajectory.structure")
	}
	atoms, err := P.atoms(line, ErrMalformedBlock)
	if err != nil {
		return nil, nil, errDecorate(err, "Trajectory.structure")
	}
	F, err := chem.NewFrame(atoms, P.coords, cell.Clone())
	if err != nil {
		return nil, nil, newError(ErrMalformedBlock, line, "Trajectory.structure", "%s", err.Error())
	}
	F.Fixed = P.fixed
	F.Line = line
	return F, H, nil
}

//frame builds the full frame, structure and results, of the candidate at line.
func (T *Trajectory) frame(line int) (*chem.Frame, error) {
	F, H, err := T.structure(line)
	if err != nil {
		return nil, errDecorate(err, "Trajectory.frame")
	}
	if T.single {
		if err := T.checkConsistency(F); err != nil {
			return nil, errDecorate(err, "Trajectory.frame")
		}
	}
	start, _ := runStartOf(T.starts, line)
	w := window{lo: line, hi: nextCandidate(T.cands, line, T.log.index.NLines()), start: start}
	F.Results = T.extractor.results(F, H, w)
	return F, nil
}

//checkConsistency compares the number of atoms and the cell of F with those of the first
//frame of the trajectory, which is built the first time it is needed.
func (T *Trajectory) checkConsistency(F *chem.Frame) error {
	if T.ref == nil {
		if len(T.qualified) == 0 {
			return nil
		}
		ref, _, err := T.structure(T.qualified[0])
		if err != nil {
			return errDecorate(err, "Trajectory.checkConsistency")
		}
		T.ref = ref
	}
	if F.Len() != T.ref.Len() {
		return newError(ErrTrajectoryConsistency, F.Line, "Trajectory.checkConsistency",
			"frame has %d atoms, the first frame has %d", F.Len(), T.ref.Len())
	}
	if !sameCell(F.Cell, T.ref.Cell) {
		return newError(ErrTrajectoryConsistency, F.Line, "Trajectory.checkConsistency",
			"the cell of the frame differs from that of the first frame")
	}
	return nil
}

func sameCell(A, B *v3.Matrix) bool {
	if A == nil || B == nil {
		return A == nil && B == nil
	}
	return v3.AllClose(A, B, cellRTol, cellATol)
}
