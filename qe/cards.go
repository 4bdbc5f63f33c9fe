/*
 * cards.go, part of pwtraj.
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
	"strconv"
	"strings"

	chem "github.com/rmera/pwtraj"
	v3 "github.com/rmera/pwtraj/v3"
)

//The CELL_PARAMETERS and ATOMIC_POSITIONS cards have the same format in the input
//files and in the output logs, so the functions here serve both readers.

//fortranFloat parses a number as written in pw.x files. It accepts "d" exponents
//(1.0d-3) and simple fractions (1/3, -2/3).
func fortranFloat(s string) (float64, error) {
	s = strings.NewReplacer("d", "e", "D", "e").Replace(strings.TrimSpace(s))
	if i := strings.Index(s, "/"); i > 0 {
		num, err := strconv.ParseFloat(s[:i], 64)
		if err != nil {
			return 0, err
		}
		den, err := strconv.ParseFloat(s[i+1:], 64)
		if err != nil {
			return 0, err
		}
		if den == 0 {
			return 0, strconv.ErrRange
		}
		return num / den, nil
	}
	return strconv.ParseFloat(s, 64)
}

//isDataLine returns false for blank and comment lines inside cards.
func isDataLine(line string) bool {
	t := strings.TrimSpace(line)
	return t != "" && t[0] != '#' && t[0] != '!'
}

//nextData returns the index of the first data line after from, or -1.
func nextData(lines []string, from int) int {
	for i := from + 1; i < len(lines); i++ {
		if isDataLine(lines[i]) {
			return i
		}
	}
	return -1
}

//parseCellCard parses the CELL_PARAMETERS card whose header is lines[at]. alat is the
//lattice parameter in A (0 if unknown). It returns the cell, in A, and the lattice parameter
//given in the card header ("alat= x", in Bohr in the file) or 0 if there is none.
func parseCellCard(lines []string, at int, alat float64, kind ErrorKind) (*v3.Matrix, float64, error) {
	header := strings.ToLower(lines[at])
	var scale, cardAlat float64
	switch {
	case strings.Contains(header, "bohr"):
		scale = chem.Bohr2A
	case strings.Contains(header, "angstrom"):
		scale = 1
	case strings.Contains(header, "alat"):
		if strings.Contains(header, "=") {
			rest := header[strings.Index(header, "=")+1:]
			f := strings.Fields(strings.NewReplacer(")", " ", "}", " ").Replace(rest))
			if len(f) == 0 {
				return nil, 0, newError(kind, at, "parseCellCard", "can't parse the lattice parameter in %q", strings.TrimSpace(lines[at]))
			}
			a, err := fortranFloat(f[0])
			if err != nil {
				return nil, 0, newError(kind, at, "parseCellCard", "can't parse the lattice parameter in %q", strings.TrimSpace(lines[at]))
			}
			cardAlat = a * chem.Bohr2A
			scale = cardAlat
		} else if alat == 0 {
			return nil, 0, newError(ErrUnsupportedCell, at, "parseCellCard", "cell in alat units, but no lattice parameter was set")
		} else {
			scale = alat
		}
	case alat == 0:
		scale = chem.Bohr2A
	default:
		scale = alat
	}
	data := make([]float64, 0, 9)
	i := at
	for j := 0; j < 3; j++ {
		if i = nextData(lines, i); i < 0 {
			return nil, 0, newError(kind, at, "parseCellCard", "the cell card ends after %d vectors", j)
		}
		f := strings.Fields(lines[i])
		if len(f) < 3 {
			return nil, 0, newError(kind, i, "parseCellCard", "expected a cell vector, got %q", strings.TrimSpace(lines[i]))
		}
		for _, s := range f[:3] {
			v, err := fortranFloat(s)
			if err != nil {
				return nil, 0, newError(kind, i, "parseCellCard", "can't parse %q", s)
			}
			data = append(data, v*scale)
		}
	}
	cell, _ := v3.NewMatrix(data)
	return cell, cardAlat, nil
}

//positionsCard holds a parsed ATOMIC_POSITIONS card.
type positionsCard struct {
	labels []string
	coords *v3.Matrix //A
	fixed  [][3]bool  //nil if no atom had flags
}

//parsePositionsCard parses the nat atoms of the ATOMIC_POSITIONS card whose header is lines[at].
//cell (A) is needed for crystal coordinates, alat (A) for alat ones, which are the default.
//Flags of 0 after the coordinates mark a fixed axis.
func parsePositionsCard(lines []string, at, nat int, cell *v3.Matrix, alat float64, kind ErrorKind) (*positionsCard, error) {
	header := strings.ToLower(lines[at])
	var scale float64
	crystal := false
	switch {
	case strings.Contains(header, "crystal_sg"):
		return nil, newError(ErrUnsupportedCell, at, "parsePositionsCard", "crystal_sg positions are not supported")
	case strings.Contains(header, "crystal"):
		if cell == nil {
			return nil, newError(ErrUnsupportedCell, at, "parsePositionsCard", "crystal positions without a cell")
		}
		crystal = true
	case strings.Contains(header, "bohr"):
		scale = chem.Bohr2A
	case strings.Contains(header, "angstrom"):
		scale = 1
	default:
		if alat == 0 {
			return nil, newError(ErrUnsupportedCell, at, "parsePositionsCard", "positions in alat units, but no lattice parameter was set")
		}
		scale = alat
	}
	P := &positionsCard{labels: make([]string, 0, nat), coords: v3.Zeros(nat)}
	flags := make([][3]bool, nat)
	anyFlags := false
	i := at
	for n := 0; n < nat; n++ {
		if i = nextData(lines, i); i < 0 {
			return nil, newError(kind, at, "parsePositionsCard", "the positions card ends after %d of %d atoms", n, nat)
		}
		f := strings.Fields(lines[i])
		if len(f) < 4 {
			return nil, newError(kind, i, "parsePositionsCard", "expected an atom position, got %q", strings.TrimSpace(lines[i]))
		}
		P.labels = append(P.labels, f[0])
		for j := 0; j < 3; j++ {
			v, err := fortranFloat(f[1+j])
			if err != nil {
				return nil, newError(kind, i, "parsePositionsCard", "can't parse coordinate %q", f[1+j])
			}
			P.coords.Set(n, j, v)
		}
		if len(f) > 4 {
			if len(f) < 7 {
				return nil, newError(kind, i, "parsePositionsCard", "expected 3 fixed-coordinate flags, got %d", len(f)-4)
			}
			for j := 0; j < 3; j++ {
				flag, err := strconv.Atoi(f[4+j])
				if err != nil {
					return nil, newError(kind, i, "parsePositionsCard", "can't parse flag %q", f[4+j])
				}
				flags[n][j] = flag == 0
			}
			anyFlags = true
		}
	}
	if crystal {
		P.coords = v3.Frac2Cart(P.coords, cell)
	} else {
		P.coords.Scale(scale, P.coords.Dense)
	}
	if anyFlags {
		P.fixed = flags
	}
	return P, nil
}

//atoms builds the atoms for the labels in the card.
func (P *positionsCard) atoms(line int, kind ErrorKind) ([]*chem.Atom, error) {
	ret := make([]*chem.Atom, len(P.labels))
	for i, l := range P.labels {
		a, err := chem.NewAtom(l)
		if err != nil {
			return nil, newError(kind, line, "positionsCard.atoms", "%s", err.Error())
		}
		ret[i] = a
	}
	return ret, nil
}
