/*
 * results.go, part of pwtraj.
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
	"regexp"
	"strconv"
	"strings"

	chem "github.com/rmera/pwtraj"
	v3 "github.com/rmera/pwtraj/v3"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

const kpointsVerbosityWarning = "Number of k-points >= 100: set verbosity='high' to print them."

var firstInt = regexp.MustCompile(`\b\d+\b`)

//window is the part of the log that belongs to one frame: the lines strictly between
//the frame line (lo) and the next candidate frame (hi).
type window struct {
	lo, hi int
	start  int //the run start that gives the context of the frame
}

//extractor reads the results for frames of one log.
type extractor struct {
	lines  []string
	index  *Index
	bands  []int //usable band and band structure markers, sorted
	logger *zap.Logger
}

//token returns the field i of line, counting from the end if i is negative.
func token(line string, i int) (string, bool) {
	f := strings.Fields(line)
	if i < 0 {
		i += len(f)
	}
	if i < 0 || i >= len(f) {
		return "", false
	}
	return f[i], true
}

//floatToken parses the field i of line, see token.
func floatToken(line string, i int) (float64, error) {
	t, ok := token(line, i)
	if !ok {
		return 0, fmt.Errorf("field %d not found in %q", i, strings.TrimSpace(line))
	}
	return strconv.ParseFloat(t, 64)
}

//warn logs a quantity that could not be read. The quantity is left unset.
func (E *extractor) warn(what string, line int, err error) {
	E.logger.Warn("could not read a result, leaving it unset",
		zap.String("quantity", what), zap.Int("line", line+1), zap.Error(err))
}

//results extracts all the results in the window w for the frame F. It returns nil
//if there are none.
func (E *extractor) results(F *chem.Frame, H *RunHeader, w window) *chem.Results {
	R := &chem.Results{}
	nat := F.Len()
	E.energy(R, w)
	E.forces(R, w, nat)
	E.stress(R, w)
	E.magmoms(R, w, nat)
	E.dipole(R, w)
	E.fermi(R, w)
	E.kpoints(R, w, F, H)
	E.eigenvalues(R, w)
	if R.Empty() {
		return nil
	}
	return R
}

func (E *extractor) energy(R *chem.Results, w window) {
	l, ok := E.index.LastBetween(TotalEnergy, w.lo, w.hi)
	if !ok {
		return
	}
	e, err := floatToken(E.lines[l], -2)
	if err != nil {
		E.warn("energy", l, err)
		return
	}
	//For pw.x the total energy is the one consistent with the forces,
	//so it is also the free energy.
	R.Energy = chem.Float(e * chem.Ry2eV)
	R.FreeEnergy = chem.Float(e * chem.Ry2eV)
}

func (E *extractor) forces(R *chem.Results, w window, nat int) {
	l, ok := E.index.LastBetween(Force, w.lo, w.hi)
	if !ok {
		return
	}
	first := l + 2
	//older versions print two more lines (negative rho) before the forces
	if first < len(E.lines) && strings.TrimSpace(E.lines[first]) == "" {
		first = l + 4
	}
	if first+nat > len(E.lines) {
		E.warn("forces", l, fmt.Errorf("file ends before the %d forces", nat))
		return
	}
	f := v3.Zeros(nat)
	for i := 0; i < nat; i++ {
		line := E.lines[first+i]
		for j := 0; j < 3; j++ {
			v, err := floatToken(line, j-3)
			if err != nil {
				E.warn("forces", first+i, err)
				return
			}
			f.Set(i, j, v*chem.RyBohr2eVA)
		}
	}
	R.Forces = f
}

func (E *extractor) stress(R *chem.Results, w window) {
	l, ok := E.index.LastBetween(Stress, w.lo, w.hi)
	if !ok {
		return
	}
	if l+3 >= len(E.lines) {
		E.warn("stress", l, fmt.Errorf("file ends before the stress tensor"))
		return
	}
	var t [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v, err := floatToken(E.lines[l+1+i], j)
			if err != nil {
				E.warn("stress", l+1+i, err)
				return
			}
			t[i][j] = v
		}
	}
	//pw.x prints the stress with the opposite sign.
	s := [6]float64{t[0][0], t[1][1], t[2][2], t[1][2], t[0][2], t[0][1]}
	for i := range s {
		s[i] *= -chem.RyBohr32eVA3
	}
	R.Stress = &s
}

func (E *extractor) magmoms(R *chem.Results, w window, nat int) {
	l, ok := E.index.LastBetween(Magmom, w.lo, w.hi)
	if !ok {
		return
	}
	if l+nat >= len(E.lines) {
		E.warn("magnetic moments", l, fmt.Errorf("file ends before the %d magnetic moments", nat))
		return
	}
	m := make([]float64, nat)
	for i := range m {
		v, err := floatToken(E.lines[l+1+i], -1)
		if err != nil {
			E.warn("magnetic moments", l+1+i, err)
			return
		}
		m[i] = v
	}
	R.Magmoms = m
}

func (E *extractor) dipole(R *chem.Results, w window) {
	dl, ok := E.index.LastBetween(DipoleDirection, w.lo, w.hi)
	if !ok {
		return
	}
	line := E.lines[dl]
	i := strings.Index(line, "edir(")
	if i < 0 || i+5 >= len(line) || line[i+5] < '1' || line[i+5] > '3' {
		E.warn("dipole", dl, fmt.Errorf("can't read the direction from %q", strings.TrimSpace(line)))
		return
	}
	axis := int(line[i+5] - '1')
	magnitude := 0.0
	if l, ok := E.index.LastBetween(Dipole, w.lo, w.hi); ok {
		if v, err := floatToken(E.lines[l], -2); err == nil {
			magnitude = v
		}
	}
	var d [3]float64
	d[axis] = magnitude * chem.Debye2eA
	R.Dipole = &d
}

func (E *extractor) fermi(R *chem.Results, w window) {
	tiers := []struct {
		m     Marker
		field int
	}{
		{Fermi, -2},
		{HighestOccupied, -1},
		{HighestOccupiedLowestFree, -2},
	}
	for _, t := range tiers {
		l, ok := E.index.LastBetween(t.m, w.lo, w.hi)
		if !ok {
			continue
		}
		v, err := floatToken(E.lines[l], t.field)
		if err != nil {
			E.warn("Fermi level", l, err)
			continue
		}
		R.Fermi = chem.Float(v)
		return
	}
}

//kpoints reads the last list of k-points printed before the end of the window,
//in the run of the frame. pw.x prints them in cartesian coordinates in units of 2pi/alat;
//they are returned in fractional coordinates of the reciprocal cell.
func (E *extractor) kpoints(R *chem.Results, w window, F *chem.Frame, H *RunHeader) {
	l, ok := E.index.LastBetween(KPoints, w.start-1, w.hi)
	if !ok {
		return
	}
	m := firstInt.FindString(E.lines[l])
	nk, err := strconv.Atoi(m)
	if err != nil {
		E.warn("k-points", l, fmt.Errorf("can't read the number of k-points"))
		return
	}
	first := l + 2
	if first < len(E.lines) && strings.TrimSpace(E.lines[first]) == kpointsVerbosityWarning {
		return
	}
	if first+nk > len(E.lines) || F.Cell == nil || H.Alat == 0 {
		E.warn("k-points", l, fmt.Errorf("not enough data to read %d k-points", nk))
		return
	}
	//scaled = k_cart (2pi/alat) . cell^T / 2pi
	cart := mat.NewDense(nk, 3, nil)
	weights := make([]float64, nk)
	for i := 0; i < nk; i++ {
		L := strings.Fields(E.lines[first+i])
		if len(L) < 6 {
			E.warn("k-points", first+i, fmt.Errorf("expected a k-point, got %q", strings.TrimSpace(E.lines[first+i])))
			return
		}
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(strings.Trim(L[len(L)-6+j], "),"), 64)
			if err != nil {
				E.warn("k-points", first+i, err)
				return
			}
			cart.Set(i, j, v/H.Alat)
		}
		if weights[i], err = strconv.ParseFloat(L[len(L)-1], 64); err != nil {
			E.warn("k-points", first+i, err)
			return
		}
	}
	var scaled mat.Dense
	scaled.Mul(cart, F.Cell.Dense.T())
	R.KPoints = make([]chem.KPoint, nk)
	for i := range R.KPoints {
		R.KPoints[i] = chem.KPoint{K: [3]float64{scaled.At(i, 0), scaled.At(i, 1), scaled.At(i, 2)}, Weight: weights[i]}
	}
}

//eigenvalues reads the bands printed after the last usable band marker in the
//window. Inconsistent band data is dropped with a warning.
func (E *extractor) eigenvalues(R *chem.Results, w window) {
	for _, b := range windowLines(E.bands, w.lo, w.hi) {
		S := newBandScanner(E.lines, b).run()
		if S.abandoned {
			continue
		}
		bands, err := S.bands(len(R.KPoints), R.KPoints != nil)
		if err != nil {
			E.logger.Warn("bands were not read", zap.Int("line", b+1), zap.Error(err))
			R.Bands = nil
			return
		}
		R.Bands = bands
	}
}

//windowLines returns the elements of the sorted list l strictly between lo and hi.
func windowLines(l []int, lo, hi int) []int {
	i := 0
	for i < len(l) && l[i] <= lo {
		i++
	}
	j := i
	for j < len(l) && l[j] < hi {
		j++
	}
	return l[i:j]
}
