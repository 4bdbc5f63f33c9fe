/*
 * markers.go, part of pwtraj.
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
	"strings"
)

//Marker is a kind of line that pw.x prints at the beginning of a section
//or next to a computed value.
type Marker int

const (
	RunStart Marker = iota
	RunEnd
	Cell
	Positions
	Magmom
	Force
	TotalEnergy
	Stress
	Fermi
	HighestOccupied
	HighestOccupiedLowestFree
	KPoints
	Bands
	BandStructure
	Dipole
	DipoleDirection
	RestartPositions
	NonConverged
	nMarkers
)

//The substring that identifies each marker.
var markerText = [nMarkers]string{
	RunStart:                  "Program PWSCF",
	RunEnd:                    "JOB DONE.",
	Cell:                      "CELL_PARAMETERS",
	Positions:                 "ATOMIC_POSITIONS",
	Magmom:                    "Magnetic moment per site",
	Force:                     "Forces acting on atoms",
	TotalEnergy:               "!    total energy",
	Stress:                    "total   stress",
	Fermi:                     "the Fermi energy is",
	HighestOccupied:           "highest occupied level",
	HighestOccupiedLowestFree: "highest occupied, lowest unoccupied level",
	KPoints:                   "number of k points=",
	Bands:                     "End of self-consistent calculation",
	BandStructure:             "End of band structure calculation",
	Dipole:                    "Debye",
	DipoleDirection:           "Computed dipole along edir",
	RestartPositions:          "Atomic positions from file used, from input discarded",
	NonConverged:              "convergence NOT achieved",
}

var markerNames = [nMarkers]string{
	"run-start", "run-end", "cell", "positions", "magmom", "force", "total-energy",
	"stress", "fermi", "highest-occupied", "highest-occupied-lowest-free", "k-points",
	"bands", "band-structure", "dipole", "dipole-direction", "restart-positions",
	"non-converged",
}

//Markers returns all the markers, in order.
func Markers() []Marker {
	r := make([]Marker, nMarkers)
	for i := range r {
		r[i] = Marker(i)
	}
	return r
}

func (m Marker) String() string {
	if m < 0 || m >= nMarkers {
		return "unknown"
	}
	return markerNames[m]
}

//Text returns the substring that identifies the marker.
func (m Marker) Text() string {
	return markerText[m]
}

//Index holds, for each marker, the 0-based numbers of the lines where it
//appears, in increasing order. It is read-only after Scan.
type Index struct {
	lines  [nMarkers][]int
	nlines int
}

//Scan indexes all the markers in lines in one pass. A line can match several markers.
func Scan(lines []string) *Index {
	I := &Index{nlines: len(lines)}
	for n, line := range lines {
		for m := Marker(0); m < nMarkers; m++ {
			if strings.Contains(line, markerText[m]) {
				I.lines[m] = append(I.lines[m], n)
			}
		}
	}
	return I
}

//NLines returns the number of lines that were scanned.
func (I *Index) NLines() int {
	return I.nlines
}

//Lines returns the lines where m appears. The slice must not be modified.
func (I *Index) Lines(m Marker) []int {
	return I.lines[m]
}

//Count returns the number of times m appears.
func (I *Index) Count(m Marker) int {
	return len(I.lines[m])
}

//At returns true if marker m appears in line.
func (I *Index) At(m Marker, line int) bool {
	l := I.lines[m]
	i := sort.SearchInts(l, line)
	return i < len(l) && l[i] == line
}

//bounds returns the range [i,j) of the positions in the list for m with lo < line < hi.
func (I *Index) bounds(m Marker, lo, hi int) (int, int) {
	l := I.lines[m]
	i := sort.SearchInts(l, lo+1)
	j := sort.SearchInts(l, hi)
	if j < i {
		j = i
	}
	return i, j
}

//Between returns the lines where m appears strictly between lo and hi.
//The slice must not be modified.
func (I *Index) Between(m Marker, lo, hi int) []int {
	i, j := I.bounds(m, lo, hi)
	return I.lines[m][i:j]
}

//CountBetween returns the number of times m appears strictly between lo and hi.
func (I *Index) CountBetween(m Marker, lo, hi int) int {
	i, j := I.bounds(m, lo, hi)
	return j - i
}

//LastBetween returns the last line where m appears strictly between lo and hi,
//and false if there is none.
func (I *Index) LastBetween(m Marker, lo, hi int) (int, bool) {
	i, j := I.bounds(m, lo, hi)
	if j == i {
		return -1, false
	}
	return I.lines[m][j-1], true
}

//LastBefore returns the last line before hi where m appears, and false if there is none.
func (I *Index) LastBefore(m Marker, hi int) (int, bool) {
	return I.LastBetween(m, -1, hi)
}
