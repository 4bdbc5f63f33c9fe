/*
 * bands.go, part of pwtraj.
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
	"strconv"
	"strings"
)

const bandsVerbosityWarning = "Number of k-points >= 100: set verbosity='high' to print the bands."

//bandState is the state of the band block scanner.
type bandState int

const (
	scanningKBlock      bandState = iota //finding where the eigenvalues start
	accumulatingBands                    //reading eigenvalues, k-point headers and spin headers
	skippingOccupations                  //skipping the occupation numbers of a k-point
	blockDone
)

func (s bandState) String() string {
	switch s {
	case scanningKBlock:
		return "scanning-k-block"
	case accumulatingBands:
		return "accumulating-bands"
	case skippingOccupations:
		return "skipping-occupations"
	case blockDone:
		return "block-done"
	}
	return "unknown"
}

//bandScanner reads the eigenvalues printed after an "End of self-consistent calculation"
//or "End of band structure calculation" line.
type bandScanner struct {
	lines     []string
	pos       int
	state     bandState
	spin      int
	current   []float64     //eigenvalues of the k-point being read
	eigen     [][][]float64 //[spin][k-point][band]
	skip      int
	abandoned bool //pw.x did not print the bands
}

//newBandScanner returns a scanner for the block that follows the marker at line marker.
func newBandScanner(lines []string, marker int) *bandScanner {
	return &bandScanner{lines: lines, pos: marker + 1, eigen: make([][][]float64, 1)}
}

//run steps the scanner until the block is done.
func (S *bandScanner) run() *bandScanner {
	for S.state != blockDone {
		S.step()
	}
	return S
}

//flush stores the eigenvalues of the current k-point, if any.
func (S *bandScanner) flush() {
	if len(S.current) > 0 {
		S.eigen[S.spin] = append(S.eigen[S.spin], S.current)
		S.current = nil
	}
}

//occupationLines returns the number of lines pw.x uses to print the occupation
//numbers of one k-point, 8 per line.
func (S *bandScanner) occupationLines() int {
	n := len(S.current)
	if len(S.eigen[S.spin]) > 0 {
		n = len(S.eigen[S.spin][0])
	}
	return n/8 + 1
}

func hasToken(L []string, t string) bool {
	for _, v := range L {
		if v == t {
			return true
		}
	}
	return false
}

//step processes one line, or a group of lines when skipping a DFT+U block.
func (S *bandScanner) step() {
	if S.pos >= len(S.lines) {
		S.flush()
		S.state = blockDone
		return
	}
	line := S.lines[S.pos]
	switch S.state {
	case scanningKBlock:
		if strings.Contains(line, "enter write_ns") {
			for S.pos < len(S.lines) && !strings.Contains(S.lines[S.pos], "exit write_ns") {
				S.pos++
			}
		}
		S.pos++
		if S.pos < len(S.lines) && strings.TrimSpace(S.lines[S.pos]) == bandsVerbosityWarning {
			S.abandoned = true
			S.state = blockDone
			return
		}
		S.state = accumulatingBands
	case skippingOccupations:
		S.pos++
		S.skip--
		if S.skip <= 0 {
			S.state = accumulatingBands
		}
	case accumulatingBands:
		//pw.x does not always leave a space before negative numbers
		L := strings.Fields(strings.ReplaceAll(line, "-", " -"))
		switch {
		case len(L) == 0:
			S.flush()
		case len(L) == 2 && L[0] == "occupation" && L[1] == "numbers":
			S.skip = S.occupationLines()
			S.state = skippingOccupations
		case L[0] == "k" && len(L) > 1 && strings.HasPrefix(L[1], "="):
		case hasToken(L, "SPIN"):
			if hasToken(L, "DOWN") {
				S.flush()
				S.spin++
				for len(S.eigen) <= S.spin {
					S.eigen = append(S.eigen, nil)
				}
			}
		default:
			vals := make([]float64, 0, len(L))
			for _, s := range L {
				v, err := strconv.ParseFloat(s, 64)
				if err != nil {
					S.state = blockDone
					return
				}
				vals = append(vals, v)
			}
			S.current = append(S.current, vals...)
		}
		S.pos++
	}
}

//bands checks the eigenvalues read against the number of k-points and returns them.
func (S *bandScanner) bands(nkpoints int, haveKPoints bool) ([][][]float64, error) {
	if !haveKPoints {
		return nil, fmt.Errorf("eigenvalues found, but no k-points")
	}
	if len(S.eigen) > 2 {
		return nil, fmt.Errorf("%d spin channels found", len(S.eigen))
	}
	if len(S.eigen) == 2 && len(S.eigen[0]) != len(S.eigen[1]) {
		return nil, fmt.Errorf("%d k-points for spin up and %d for spin down", len(S.eigen[0]), len(S.eigen[1]))
	}
	if len(S.eigen[0]) != nkpoints {
		return nil, fmt.Errorf("%d k-points with eigenvalues, but %d k-points", len(S.eigen[0]), nkpoints)
	}
	return S.eigen, nil
}
