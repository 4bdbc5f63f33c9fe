/*
 * header.go, part of pwtraj.
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
	"regexp"
	"strconv"
	"strings"
	"sync"

	chem "github.com/rmera/pwtraj"
	v3 "github.com/rmera/pwtraj/v3"
)

//Species is one entry of the species table of a run.
type Species struct {
	Label   string
	Valence float64
	Mass    float64
	Pseudo  string
}

//RunHeader contains the information pw.x prints at the start of a run, up to
//the initial atomic positions. Lengths are in A, cutoffs in Ry. The headers kept
//by a Log are never modified; (*Log).RunHeader returns copies of them.
type RunHeader struct {
	Line       int //0-based line of the run start
	Version    string
	Ibrav      int
	Alat       float64 //the lattice parameter, from celldm(1) when available
	Celldm1    float64 //0 if not printed
	Cell       *v3.Matrix
	NAtoms     int
	NTypes     int
	NElectrons float64
	NBands     int
	EcutWfc    float64
	EcutRho    float64
	Species    []Species
	Frame      *chem.Frame //initial structure
}

//Copy returns a deep copy of H.
func (H *RunHeader) Copy() *RunHeader {
	r := *H
	r.Cell = H.Cell.Clone()
	r.Species = append([]Species(nil), H.Species...)
	if H.Frame != nil {
		r.Frame = H.Frame.Copy()
	}
	return &r
}

//   1           Fe1 tau(   1) = (   0.0000000   0.0000000   0.0000000  )
var tauRegexp = regexp.MustCompile(`^\s*(\d+)\s+(\S+)\s+tau\(\s*(\d+)\)\s*=\s*\(\s*(\S+)\s+(\S+)\s+(\S+)\s*\)`)

//lastInt parses the last field of line as an integer.
func lastInt(line string) (int, error) {
	f := strings.Fields(line)
	if len(f) == 0 {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(f[len(f)-1])
}

//valueAfter parses the first field after the first "=" in line as a float.
func valueAfter(line string) (float64, error) {
	i := strings.Index(line, "=")
	if i < 0 {
		return 0, strconv.ErrSyntax
	}
	f := strings.Fields(line[i+1:])
	if len(f) == 0 {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(f[0], 64)
}

//ReadRunHeader parses the header of the run that starts at line at. It reads forward
//until the initial positions are found. A header without the number of atoms or types
//is an ErrMalformedHeader error, one without crystal axes an ErrUnsupportedCell error.
func ReadRunHeader(lines []string, at int) (*RunHeader, error) {
	if at < 0 || at >= len(lines) {
		return nil, newError(ErrMalformedHeader, at, "ReadRunHeader", "no line %d in a %d-line file", at, len(lines))
	}
	H := &RunHeader{Line: at, Ibrav: -1}
	if f := strings.Fields(lines[at]); len(f) > 0 {
		for i, w := range f[:len(f)-1] {
			if w == "PWSCF" {
				H.Version = strings.TrimPrefix(f[i+1], "v.")
				break
			}
		}
	}
	var err error
	bad := func(i int, what string) error {
		return newError(ErrMalformedHeader, i, "ReadRunHeader", "can't parse the %s", what)
	}
	for i := at; i < len(lines); i++ {
		line := lines[i]
		switch {
		case i > at && strings.Contains(line, RunStart.Text()):
			return nil, newError(ErrMalformedHeader, at, "ReadRunHeader", "a new run starts at line %d before the initial positions", i+1)
		case strings.Contains(line, "celldm(1)"):
			f := strings.Fields(line)
			if len(f) < 2 {
				return nil, bad(i, "celldm(1)")
			}
			c, err := strconv.ParseFloat(f[1], 64)
			if err != nil {
				return nil, bad(i, "celldm(1)")
			}
			H.Celldm1 = c * chem.Bohr2A
			H.Alat = H.Celldm1
		case strings.Contains(line, "lattice parameter (alat)"):
			if H.Celldm1 != 0 {
				continue
			}
			a, err := valueAfter(line)
			if err != nil {
				return nil, bad(i, "lattice parameter")
			}
			H.Alat = a * chem.Bohr2A
		case strings.Contains(line, "bravais-lattice index"):
			if H.Ibrav, err = lastInt(line); err != nil {
				return nil, bad(i, "bravais-lattice index")
			}
		case strings.Contains(line, "number of atoms/cell"):
			if H.NAtoms, err = lastInt(line); err != nil {
				return nil, bad(i, "number of atoms")
			}
		case strings.Contains(line, "number of atomic types"):
			if H.NTypes, err = lastInt(line); err != nil {
				return nil, bad(i, "number of atomic types")
			}
		case strings.Contains(line, "number of electrons"):
			if H.NElectrons, err = valueAfter(line); err != nil {
				return nil, bad(i, "number of electrons")
			}
		case strings.Contains(line, "number of Kohn-Sham states"):
			if H.NBands, err = lastInt(line); err != nil {
				return nil, bad(i, "number of Kohn-Sham states")
			}
		case strings.Contains(line, "kinetic-energy cutoff"):
			if H.EcutWfc, err = valueAfter(line); err != nil {
				return nil, bad(i, "kinetic-energy cutoff")
			}
		case strings.Contains(line, "charge density cutoff"):
			if H.EcutRho, err = valueAfter(line); err != nil {
				return nil, bad(i, "charge density cutoff")
			}
		case strings.Contains(line, "crystal axes:"):
			if H.Alat == 0 {
				return nil, newError(ErrUnsupportedCell, i, "ReadRunHeader", "crystal axes without a lattice parameter")
			}
			if i+3 >= len(lines) {
				return nil, bad(i, "crystal axes")
			}
			data := make([]float64, 0, 9)
			for j := 1; j <= 3; j++ {
				f := strings.Fields(lines[i+j])
				if len(f) < 6 {
					return nil, bad(i+j, "crystal axes")
				}
				for _, s := range f[3:6] {
					v, err := strconv.ParseFloat(s, 64)
					if err != nil {
						return nil, bad(i+j, "crystal axes")
					}
					data = append(data, v*H.Alat)
				}
			}
			H.Cell, _ = v3.NewMatrix(data)
			i += 3
		case strings.Contains(line, "atomic species") && strings.Contains(line, "valence"):
			H.Species = readSpeciesTable(lines, i+1, H.NTypes)
		case strings.Contains(line, "positions (alat units)"):
			if err := H.readPositions(lines, i); err != nil {
				return nil, err
			}
			return H, nil
		}
	}
	return nil, newError(ErrMalformedHeader, at, "ReadRunHeader", "no initial positions found for this run")
}

//readSpeciesTable reads up to n lines of the species table. It stops at the first line
//that can't be parsed.
func readSpeciesTable(lines []string, from, n int) []Species {
	var ret []Species
	for i := from; i < from+n && i < len(lines); i++ {
		f := strings.Fields(lines[i])
		if len(f) < 3 {
			break
		}
		val, err1 := strconv.ParseFloat(f[1], 64)
		mass, err2 := strconv.ParseFloat(f[2], 64)
		if err1 != nil || err2 != nil {
			break
		}
		ret = append(ret, Species{Label: f[0], Valence: val, Mass: mass, Pseudo: strings.Join(f[3:], " ")})
	}
	return ret
}

//readPositions reads the initial positions, which start after line at, and builds the
//initial frame.
func (H *RunHeader) readPositions(lines []string, at int) error {
	if H.NAtoms <= 0 || H.NTypes <= 0 {
		return newError(ErrMalformedHeader, at, "readPositions", "number of atoms or atomic types missing")
	}
	if H.Cell == nil {
		return newError(ErrUnsupportedCell, at, "readPositions", "no crystal axes in the header")
	}
	if at+H.NAtoms >= len(lines) {
		return newError(ErrMalformedHeader, at, "readPositions", "file ends before the %d initial positions", H.NAtoms)
	}
	atoms := make([]*chem.Atom, 0, H.NAtoms)
	coords := v3.Zeros(H.NAtoms)
	for i := 0; i < H.NAtoms; i++ {
		n := at + 1 + i
		m := tauRegexp.FindStringSubmatch(lines[n])
		if m == nil {
			return newError(ErrMalformedHeader, n, "readPositions", "expected an atom position, got %q", strings.TrimSpace(lines[n]))
		}
		a, err := chem.NewAtom(m[2])
		if err != nil {
			return newError(ErrMalformedHeader, n, "readPositions", "%s", err.Error())
		}
		atoms = append(atoms, a)
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(m[4+j], 64)
			if err != nil {
				return newError(ErrMalformedHeader, n, "readPositions", "can't parse coordinate %q", m[4+j])
			}
			coords.Set(i, j, v*H.Alat)
		}
	}
	F, err := chem.NewFrame(atoms, coords, H.Cell.Clone())
	if err != nil {
		return newError(ErrMalformedHeader, at, "readPositions", "%s", err.Error())
	}
	F.Line = H.Line
	H.Frame = F
	return nil
}

//headerCache keeps the headers already parsed, by start line. It can be shared
//by several trajectories over the same lines.
type headerCache struct {
	mu      sync.Mutex
	headers map[int]*RunHeader
}

func (C *headerCache) get(lines []string, at int) (*RunHeader, error) {
	C.mu.Lock()
	defer C.mu.Unlock()
	if H, ok := C.headers[at]; ok {
		return H, nil
	}
	H, err := ReadRunHeader(lines, at)
	if err != nil {
		return nil, errDecorate(err, "headerCache.get")
	}
	if C.headers == nil {
		C.headers = make(map[int]*RunHeader)
	}
	C.headers[at] = H
	return H, nil
}
