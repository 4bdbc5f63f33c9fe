/*
 * input.go, part of pwtraj.
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
	"io"
	"strconv"
	"strings"

	chem "github.com/rmera/pwtraj"
)

//The cards that can follow the namelists in a pw.x input.
var cardNames = map[string]bool{
	"ATOMIC_SPECIES":      true,
	"ATOMIC_POSITIONS":    true,
	"K_POINTS":            true,
	"ADDITIONAL_K_POINTS": true,
	"CELL_PARAMETERS":     true,
	"CONSTRAINTS":         true,
	"OCCUPATIONS":         true,
	"ATOMIC_VELOCITIES":   true,
	"ATOMIC_FORCES":       true,
	"SOLVENTS":            true,
	"HUBBARD":             true,
}

//cardName returns the name of the card that starts in line, or an empty string.
func cardName(line string) string {
	f := strings.Fields(stripComment(line))
	if len(f) == 0 {
		return ""
	}
	name := strings.ToUpper(f[0])
	if i := strings.IndexAny(name, "({"); i > 0 {
		name = name[:i]
	}
	if cardNames[name] {
		return name
	}
	return ""
}

//Input is a parsed pw.x input file.
type Input struct {
	Frame   *chem.Frame
	Params  *Namelist
	Species []Species //in the order of the ATOMIC_SPECIES card. Valence is not set.
	KPoints *KPointsCard //nil if there is no K_POINTS card
	//Cards other than ATOMIC_SPECIES, ATOMIC_POSITIONS, CELL_PARAMETERS
	//and K_POINTS, verbatim, header included.
	Cards []string
}

//Pseudopotentials returns the label and pseudopotential file of each species.
func (I *Input) Pseudopotentials() []Pseudopotential {
	ret := make([]Pseudopotential, len(I.Species))
	for i, s := range I.Species {
		ret[i] = Pseudopotential{Label: s.Label, File: s.Pseudo}
	}
	return ret
}

//ReadInput reads a pw.x input and returns the structure and the namelists.
func ReadInput(r io.Reader) (*chem.Frame, *Namelist, error) {
	I, err := ParseInput(r)
	if err != nil {
		return nil, nil, errDecorate(err, "ReadInput")
	}
	return I.Frame, I.Params, nil
}

//ParseInput reads a pw.x input. Only ibrav=0 inputs, with an explicit cell, are supported.
//Atom labels such as "Fe1" are kept, and their number is used as the atom tag. The initial
//magnetic moments are the starting_magnetization of the species of each atom.
func ParseInput(r io.Reader) (*Input, error) {
	L, err := NewLog(r)
	if err != nil {
		return nil, err
	}
	lines := L.lines
	params, end, err := ParseNamelist(lines, 0)
	if err != nil {
		return nil, errDecorate(err, "ParseInput")
	}
	sys := params.Section("system")
	if sys == nil {
		return nil, newError(ErrMalformedInput, -1, "ParseInput", "required namelist &SYSTEM not found")
	}
	ibrav, ok := sys.Int("ibrav")
	if !ok {
		return nil, newError(ErrMalformedInput, -1, "ParseInput", "ibrav is required in &SYSTEM")
	}
	if ibrav != 0 {
		return nil, newError(ErrUnsupportedCell, -1, "ParseInput", "ibrav=%d not supported, only ibrav=0", ibrav)
	}
	nat, ok1 := sys.Int("nat")
	ntyp, ok2 := sys.Int("ntyp")
	if !ok1 || !ok2 {
		return nil, newError(ErrMalformedInput, -1, "ParseInput", "nat and ntyp are required in &SYSTEM")
	}
	alat := 0.0
	if c, ok := sys.Float("celldm(1)"); ok {
		alat = c * chem.Bohr2A
	} else if a, ok := sys.Float("a"); ok {
		alat = a
	}
	cards := make(map[string]int)
	I := &Input{Params: params}
	for i := end; i < len(lines); i++ {
		name := cardName(lines[i])
		if name == "" {
			continue
		}
		cards[name] = i
		switch name {
		case "ATOMIC_SPECIES", "ATOMIC_POSITIONS", "CELL_PARAMETERS", "K_POINTS":
			continue
		}
		j := i + 1
		for j < len(lines) && cardName(lines[j]) == "" {
			j++
		}
		I.Cards = append(I.Cards, strings.TrimRight(strings.Join(lines[i:j], "\n"), "\n "))
	}
	at, ok := cards["CELL_PARAMETERS"]
	if !ok {
		return nil, newError(ErrUnsupportedCell, -1, "ParseInput", "ibrav=0 requires a CELL_PARAMETERS card")
	}
	cell, _, err := parseCellCard(lines, at, alat, ErrMalformedInput)
	if err != nil {
		return nil, errDecorate(err, "ParseInput")
	}
	if at, ok := cards["ATOMIC_SPECIES"]; ok {
		if I.Species, err = readSpeciesCard(lines, at, ntyp); err != nil {
			return nil, errDecorate(err, "ParseInput")
		}
	}
	at, ok = cards["ATOMIC_POSITIONS"]
	if !ok {
		return nil, newError(ErrMalformedInput, -1, "ParseInput", "no ATOMIC_POSITIONS card")
	}
	P, err := parsePositionsCard(lines, at, nat, cell, alat, ErrMalformedInput)
	if err != nil {
		return nil, errDecorate(err, "ParseInput")
	}
	atoms, err := P.atoms(at, ErrMalformedInput)
	if err != nil {
		return nil, errDecorate(err, "ParseInput")
	}
	F, err := chem.NewFrame(atoms, P.coords, cell)
	if err != nil {
		return nil, newError(ErrMalformedInput, at, "ParseInput", "%s", err.Error())
	}
	F.Fixed = P.fixed
	I.setMagmoms(F, sys)
	I.Frame = F
	if at, ok := cards["K_POINTS"]; ok {
		if I.KPoints, err = readKPointsCard(lines, at); err != nil {
			return nil, errDecorate(err, "ParseInput")
		}
	}
	return I, nil
}

//setMagmoms sets the initial magnetic moments of the atoms of F from the
//starting_magnetization of their species, matched by label or, failing that, by symbol.
//Species masses are also copied to the atoms.
func (I *Input) setMagmoms(F *chem.Frame, sys *Section) {
	bylabel := make(map[string]int, len(I.Species))
	for i, s := range I.Species {
		bylabel[s.Label] = i
	}
	magmoms := make([]float64, F.Len())
	found := false
	for i, a := range F.Atoms {
		idx, ok := bylabel[a.Label]
		if !ok {
			idx, ok = bylabel[a.Symbol]
		}
		if !ok {
			continue
		}
		if I.Species[idx].Mass > 0 {
			a.Mass = I.Species[idx].Mass
		}
		if m, ok := sys.Float(fmt.Sprintf("starting_magnetization(%d)", idx+1)); ok {
			magmoms[i] = m
			found = true
		}
	}
	if found {
		F.InitialMagmoms = magmoms
	}
}

//readSpeciesCard reads the n species of the ATOMIC_SPECIES card at line at.
func readSpeciesCard(lines []string, at, n int) ([]Species, error) {
	ret := make([]Species, 0, n)
	i := at
	for len(ret) < n {
		if i = nextData(lines, i); i < 0 || cardName(lines[i]) != "" {
			return nil, newError(ErrMalformedInput, at, "readSpeciesCard", "expected %d species, found %d", n, len(ret))
		}
		f := strings.Fields(lines[i])
		if len(f) < 3 {
			return nil, newError(ErrMalformedInput, i, "readSpeciesCard", "expected label, mass and pseudopotential, got %q", strings.TrimSpace(lines[i]))
		}
		mass, err := fortranFloat(f[1])
		if err != nil {
			return nil, newError(ErrMalformedInput, i, "readSpeciesCard", "can't parse the mass %q", f[1])
		}
		ret = append(ret, Species{Label: f[0], Mass: mass, Pseudo: f[2]})
	}
	return ret, nil
}

//readKPointsCard reads the K_POINTS card at line at.
func readKPointsCard(lines []string, at int) (*KPointsCard, error) {
	f := strings.Fields(strings.NewReplacer("{", " ", "}", " ", "(", " ", ")", " ").Replace(lines[at]))
	K := &KPointsCard{Mode: "tpiba"}
	if len(f) > 1 {
		K.Mode = strings.ToLower(f[1])
	}
	bad := func(i int) error {
		return newError(ErrMalformedInput, i, "readKPointsCard", "can't parse %q", strings.TrimSpace(lines[i]))
	}
	switch K.Mode {
	case "gamma":
		return K, nil
	case "automatic":
		i := nextData(lines, at)
		if i < 0 {
			return nil, bad(at)
		}
		g := strings.Fields(lines[i])
		if len(g) < 6 {
			return nil, bad(i)
		}
		for j := 0; j < 3; j++ {
			var err1, err2 error
			K.Grid[j], err1 = strconv.Atoi(g[j])
			K.Offset[j], err2 = strconv.Atoi(g[3+j])
			if err1 != nil || err2 != nil {
				return nil, bad(i)
			}
		}
		return K, nil
	}
	i := nextData(lines, at)
	if i < 0 {
		return nil, bad(at)
	}
	n, err := strconv.Atoi(strings.TrimSpace(lines[i]))
	if err != nil {
		return nil, bad(i)
	}
	K.Points = make([]chem.KPoint, 0, n)
	for len(K.Points) < n {
		if i = nextData(lines, i); i < 0 {
			return nil, bad(at)
		}
		p := strings.Fields(lines[i])
		if len(p) < 4 {
			return nil, bad(i)
		}
		var k chem.KPoint
		for j := 0; j < 4; j++ {
			v, err := fortranFloat(p[j])
			if err != nil {
				return nil, bad(i)
			}
			if j < 3 {
				k.K[j] = v
			} else {
				k.Weight = v
			}
		}
		K.Points = append(K.Points, k)
	}
	return K, nil
}
