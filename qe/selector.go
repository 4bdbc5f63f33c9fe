/*
 * selector.go, part of pwtraj.
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
	"fmt"
	"sort"
	"strconv"
	"strings"
)

//Selection picks frames from the list of the frames that qualify. It is either a single index,
//where negative values count from the end, or a slice start:stop:step with the usual
//Python semantics, where each part is optional.
type Selection struct {
	slice             bool
	index             int
	start, stop, step *int
}

//Single selects the frame with index i. Negative indexes count from the end, so -1 is the last frame.
func Single(i int) Selection {
	return Selection{index: i}
}

//Last selects the last frame.
func Last() Selection {
	return Single(-1)
}

//All selects every frame.
func All() Selection {
	return Selection{slice: true}
}

//Slice selects frames from start to stop (excluded) every step frames. A nil value
//takes the default of a Python slice.
func Slice(start, stop, step *int) Selection {
	return Selection{slice: true, start: start, stop: stop, step: step}
}

//IsSlice returns true if the selection is a slice, false if it is a single index.
func (S Selection) IsSlice() bool {
	return S.slice
}

func (S Selection) String() string {
	if !S.slice {
		return strconv.Itoa(S.index)
	}
	p := func(i *int) string {
		if i == nil {
			return ""
		}
		return strconv.Itoa(*i)
	}
	if S.step == nil {
		return p(S.start) + ":" + p(S.stop)
	}
	return p(S.start) + ":" + p(S.stop) + ":" + p(S.step)
}

//ParseSelection parses strings such as "-1", "3", ":", "::2" or "1:-1".
func ParseSelection(s string) (Selection, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ":") {
		i, err := strconv.Atoi(s)
		if err != nil {
			return Selection{}, fmt.Errorf("qe: invalid frame index %q", s)
		}
		return Single(i), nil
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return Selection{}, fmt.Errorf("qe: invalid frame slice %q", s)
	}
	vals := make([]*int, 3)
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return Selection{}, fmt.Errorf("qe: invalid frame slice %q", s)
		}
		vals[i] = &v
	}
	if vals[2] != nil && *vals[2] == 0 {
		return Selection{}, fmt.Errorf("qe: slice step can't be zero in %q", s)
	}
	return Slice(vals[0], vals[1], vals[2]), nil
}

//Apply returns the positions, in a list of n elements, that the selection picks.
//A single index out of range is an ErrIndexOutOfRange error. A slice never fails,
//but it can select nothing.
func (S Selection) Apply(n int) ([]int, error) {
	if !S.slice {
		i := S.index
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return nil, newError(ErrIndexOutOfRange, -1, "Selection.Apply",
				"index %d requested, but only %d frames qualify", S.index, n)
		}
		return []int{i}, nil
	}
	step := 1
	if S.step != nil {
		step = *S.step
	}
	if step == 0 {
		return nil, newError(ErrIndexOutOfRange, -1, "Selection.Apply", "slice step can't be zero")
	}
	lower, upper := 0, n
	if step < 0 {
		lower, upper = -1, n-1
	}
	clamp := func(v *int, def int) int {
		if v == nil {
			return def
		}
		x := *v
		if x < 0 {
			x += n
			if x < lower {
				x = lower
			}
		} else if x > upper {
			x = upper
		}
		return x
	}
	var start, stop int
	if step > 0 {
		start, stop = clamp(S.start, lower), clamp(S.stop, upper)
	} else {
		start, stop = clamp(S.start, upper), clamp(S.stop, lower)
	}
	var ret []int
	for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
		ret = append(ret, i)
	}
	return ret, nil
}

//candidates returns the sorted union of the kept run starts and the positions blocks.
func candidates(I *Index, starts []int) []int {
	pos := I.Lines(Positions)
	c := make([]int, 0, len(starts)+len(pos))
	c = append(c, starts...)
	c = append(c, pos...)
	sort.Ints(c)
	return c
}

//convergedBands returns the band markers that are not followed, two lines later, by
//a non-convergence message. Those blocks are left incomplete by pw.x.
func convergedBands(I *Index) []int {
	var ret []int
	for _, b := range I.Lines(Bands) {
		if !I.At(NonConverged, b+2) {
			ret = append(ret, b)
		}
	}
	return ret
}

//resultMarkers are the markers that show that results were computed for a structure.
var resultMarkers = []Marker{TotalEnergy, Force, Stress, Magmom, BandStructure}

//hasResults returns true if there is a result marker strictly between lo and hi.
//bands is the sorted list of usable band markers.
func hasResults(I *Index, bands []int, lo, hi int) bool {
	for _, m := range resultMarkers {
		if I.CountBetween(m, lo, hi) > 0 {
			return true
		}
	}
	i := sort.SearchInts(bands, lo+1)
	return i < len(bands) && bands[i] < hi
}

//nextCandidate returns the first candidate after line, or nlines if there is none.
func nextCandidate(cands []int, line, nlines int) int {
	i := sort.SearchInts(cands, line+1)
	if i < len(cands) {
		return cands[i]
	}
	return nlines
}

//qualify returns the candidates that can be returned as frames. If resultsRequired is
//true only those with results before the next candidate qualify.
func qualify(I *Index, cands, bands []int, resultsRequired bool) []int {
	if !resultsRequired {
		return append([]int(nil), cands...)
	}
	var ret []int
	for i, c := range cands {
		next := I.NLines()
		if i+1 < len(cands) {
			next = cands[i+1]
		}
		if hasResults(I, bands, c, next) {
			ret = append(ret, c)
		}
	}
	return ret
}
