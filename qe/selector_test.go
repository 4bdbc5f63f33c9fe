/*
 * selector_test.go, part of pwtraj.
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
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestScan(Te *testing.T) {
	lines := []string{
		"     Program PWSCF v.7.2 starts on",
		"ATOMIC_POSITIONS (angstrom)",
		"!    total energy              =     -10.0 Ry",
		"     End of self-consistent calculation",
		"",
		"     convergence NOT achieved after 100 iterations: stopping",
		"     End of self-consistent calculation",
		"CELL_PARAMETERS (alat=  7.50000000)",
		"ATOMIC_POSITIONS (crystal)",
		"     JOB DONE.",
	}
	I := Scan(lines)
	if I.NLines() != len(lines) {
		Te.Errorf("Wrong number of lines %d", I.NLines())
	}
	if fmt.Sprint(I.Lines(Positions)) != "[1 8]" || I.Count(Bands) != 2 || I.Count(RunEnd) != 1 {
		Te.Errorf("Wrong index: positions %v, bands %v", I.Lines(Positions), I.Lines(Bands))
	}
	if !I.At(Cell, 7) || I.At(Cell, 8) {
		Te.Error("Wrong cell marker lookup")
	}
	if n := I.CountBetween(Positions, 1, 8); n != 0 {
		Te.Errorf("Bounds must be exclusive, got %d", n)
	}
	if l, ok := I.LastBetween(Bands, 0, 9); !ok || l != 6 {
		Te.Errorf("Expected the last band marker at 6, got %d", l)
	}
	if _, ok := I.LastBefore(TotalEnergy, 2); ok {
		Te.Error("No energy before line 2")
	}
	if b := convergedBands(I); fmt.Sprint(b) != "[6]" {
		Te.Errorf("The band block before a convergence failure should be dropped, got %v", b)
	}
	for _, m := range Markers() {
		for i := 1; i < len(I.Lines(m)); i++ {
			if I.Lines(m)[i] <= I.Lines(m)[i-1] {
				Te.Errorf("Lines of %s not increasing", m)
			}
		}
	}
}

func ip(i int) *int { return &i }

func TestSelectionApply(Te *testing.T) {
	cases := []struct {
		s    Selection
		n    int
		want string
	}{
		{Last(), 4, "[3]"},
		{Single(0), 4, "[0]"},
		{Single(-4), 4, "[0]"},
		{All(), 3, "[0 1 2]"},
		{Slice(nil, nil, ip(2)), 5, "[0 2 4]"},
		{Slice(ip(1), ip(-1), nil), 5, "[1 2 3]"},
		{Slice(nil, nil, ip(-1)), 3, "[2 1 0]"},
		{Slice(ip(-2), nil, nil), 5, "[3 4]"},
		{Slice(ip(10), nil, nil), 5, "[]"},
		{Slice(ip(-10), ip(2), nil), 5, "[0 1]"},
		{Slice(ip(3), ip(0), ip(-2)), 5, "[3 1]"},
	}
	for _, c := range cases {
		got, err := c.s.Apply(c.n)
		if err != nil {
			Te.Errorf("%s on %d: %v", c.s, c.n, err)
			continue
		}
		if fmt.Sprint(got) != c.want && !(len(got) == 0 && c.want == "[]") {
			Te.Errorf("%s on %d: expected %s, got %v", c.s, c.n, c.want, got)
		}
	}
	for _, s := range []Selection{Single(4), Single(-5)} {
		_, err := s.Apply(4)
		if !errors.Is(err, ErrIndexOutOfRange) {
			Te.Errorf("%s on 4 frames should be out of range, got %v", s, err)
		}
		if err != nil && !strings.Contains(err.Error(), "only 4 frames") {
			Te.Errorf("The error should report the number of frames: %v", err)
		}
	}
}

func TestParseSelection(Te *testing.T) {
	for _, s := range []string{"-1", "3", ":", "::2", "1:-1", "2:10:3"} {
		sel, err := ParseSelection(s)
		if err != nil {
			Te.Errorf("%s: %v", s, err)
			continue
		}
		if back := sel.String(); back != s {
			Te.Errorf("Selection %q printed as %q", s, sel)
		}
	}
	for _, s := range []string{"", "a", "1:2:3:4", "::0"} {
		if _, err := ParseSelection(s); err == nil {
			Te.Errorf("%q should not parse", s)
		}
	}
}

func TestQualify(Te *testing.T) {
	lines := []string{
		"     Program PWSCF v.7.2 starts on", //0
		"!    total energy  =  -1.0 Ry",
		"ATOMIC_POSITIONS (angstrom)", //2
		"     End of self-consistent calculation",
		"",
		"     convergence NOT achieved after 100 iterations: stopping",
		"ATOMIC_POSITIONS (angstrom)", //6
		"     End of band structure calculation",
		"ATOMIC_POSITIONS (angstrom)", //8
	}
	I := Scan(lines)
	cands := candidates(I, I.Lines(RunStart))
	if fmt.Sprint(cands) != "[0 2 6 8]" {
		Te.Fatalf("Wrong candidates %v", cands)
	}
	q := qualify(I, cands, convergedBands(I), true)
	if fmt.Sprint(q) != "[0 6]" {
		Te.Errorf("Expected frames 0 and 6 to qualify, got %v", q)
	}
	if q = qualify(I, cands, convergedBands(I), false); len(q) != 4 {
		Te.Errorf("All candidates should qualify, got %v", q)
	}
	if n := nextCandidate(cands, 8, len(lines)); n != len(lines) {
		Te.Errorf("The window of the last frame should end at the end of the file, got %d", n)
	}
	if fmt.Sprint(mergeSorted([]int{1, 5, 9}, []int{2, 3, 10})) != "[1 2 3 5 9 10]" {
		Te.Error("mergeSorted failed")
	}
	if fmt.Sprint(windowLines([]int{1, 3, 5, 7}, 3, 7)) != "[5]" {
		Te.Error("windowLines bounds must be exclusive")
	}
}
