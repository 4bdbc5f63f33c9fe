/*
 * writer.go, part of pwtraj.
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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	chem "github.com/rmera/pwtraj"
	v3 "github.com/rmera/pwtraj/v3"
)

//Pseudopotential assigns a pseudopotential file to an atom label, such as "Fe" or "Fe1".
type Pseudopotential struct {
	Label string
	File  string
}

//KPointsCard is the content of a K_POINTS card.
type KPointsCard struct {
	//gamma, automatic, or the units of an explicit list
	//(tpiba, crystal, tpiba_b, crystal_b...).
	Mode   string
	Grid   [3]int
	Offset [3]int //0 or 1
	Points []chem.KPoint
}

//GammaPoint returns the K_POINTS card for a gamma-only calculation.
func GammaPoint() *KPointsCard {
	return &KPointsCard{Mode: "gamma"}
}

//MonkhorstPack returns the K_POINTS card for an automatic grid.
func MonkhorstPack(grid, offset [3]int) *KPointsCard {
	return &KPointsCard{Mode: "automatic", Grid: grid, Offset: offset}
}

//WriteOptions are the optional parts of a pw.x input.
type WriteOptions struct {
	KPoints         *KPointsCard //gamma if nil
	Crystal         bool     //write the positions in crystal coordinates
	AdditionalCards []string //written verbatim at the end
}

//atomLabel returns the label used in the input for atom a.
func atomLabel(a *chem.Atom) string {
	if a.Label != "" {
		return a.Label
	}
	return chem.EncodeLabel(a.Symbol, a.Tag)
}

//WriteInput writes a pw.x input for the frame F. params is not modified; nat, ntyp and
//ibrav are set in the written &SYSTEM. The ATOMIC_SPECIES card lists pseudos in the given
//order, and every atom label must be among them. Only ibrav=0 is supported.
func WriteInput(w io.Writer, F *chem.Frame, params *Namelist, pseudos []Pseudopotential, opts WriteOptions) error {
	if F.Cell == nil {
		return newError(ErrUnsupportedCell, -1, "WriteInput", "the frame has no cell")
	}
	P := params.Copy()
	sys := P.AddSection("system")
	if v, ok := sys.Get("ibrav"); ok {
		if i, isint := v.(int); !isint || i != 0 {
			return newError(ErrUnsupportedCell, -1, "WriteInput", "ibrav=%v not supported, only ibrav=0", v)
		}
	} else {
		sys.Set("ibrav", 0)
	}
	sys.Set("nat", F.Len())
	sys.Set("ntyp", len(pseudos))
	known := make(map[string]bool, len(pseudos))
	for _, p := range pseudos {
		known[p.Label] = true
	}
	for i, a := range F.Atoms {
		if l := atomLabel(a); !known[l] {
			return newError(ErrMalformedInput, -1, "WriteInput", "no pseudopotential for atom %d, label %s", i, l)
		}
	}
	out := bufio.NewWriter(w)
	if _, err := P.WriteTo(out); err != nil {
		return err
	}
	fmt.Fprintln(out, "ATOMIC_SPECIES")
	for _, p := range pseudos {
		symbol, err := chem.LabelToSymbol(p.Label)
		if err != nil {
			return errDecorate(err, "WriteInput")
		}
		mass, err := chem.Mass(symbol)
		if err != nil {
			return errDecorate(err, "WriteInput")
		}
		fmt.Fprintf(out, "%s %s %s\n", p.Label, strconv.FormatFloat(mass, 'g', -1, 64), p.File)
	}
	fmt.Fprintln(out)
	writeKPoints(out, opts.KPoints)
	fmt.Fprintln(out, "CELL_PARAMETERS angstrom")
	for i := 0; i < 3; i++ {
		fmt.Fprintf(out, "%.14f %.14f %.14f\n", F.Cell.At(i, 0), F.Cell.At(i, 1), F.Cell.At(i, 2))
	}
	fmt.Fprintln(out)
	coords := F.Coords
	if opts.Crystal {
		var err error
		if coords, err = v3.Cart2Frac(F.Coords, F.Cell); err != nil {
			return errDecorate(err, "WriteInput")
		}
		fmt.Fprintln(out, "ATOMIC_POSITIONS crystal")
	} else {
		fmt.Fprintln(out, "ATOMIC_POSITIONS angstrom")
	}
	for i, a := range F.Atoms {
		fmt.Fprintf(out, "%s %.10f %.10f %.10f%s\n", atomLabel(a), coords.At(i, 0), coords.At(i, 1), coords.At(i, 2), moveMask(F, i))
	}
	fmt.Fprintln(out)
	for _, c := range opts.AdditionalCards {
		fmt.Fprintln(out, strings.TrimRight(c, "\n"))
	}
	return out.Flush()
}

//moveMask returns the "1 1 0"-like flags for atom i, where 0 is a fixed axis, or an
//empty string if no axis of the atom is fixed.
func moveMask(F *chem.Frame, i int) string {
	if F.Fixed == nil || !(F.Fixed[i][0] || F.Fixed[i][1] || F.Fixed[i][2]) {
		return ""
	}
	m := " "
	for j, fixed := range F.Fixed[i] {
		if j > 0 {
			m += " "
		}
		if fixed {
			m += "0"
		} else {
			m += "1"
		}
	}
	return m
}

func writeKPoints(out io.Writer, K *KPointsCard) {
	if K == nil {
		K = GammaPoint()
	}
	switch K.Mode {
	case "gamma":
		fmt.Fprintln(out, "K_POINTS gamma")
	case "automatic":
		fmt.Fprintln(out, "K_POINTS automatic")
		fmt.Fprintf(out, "%d %d %d  %d %d %d\n", K.Grid[0], K.Grid[1], K.Grid[2], K.Offset[0], K.Offset[1], K.Offset[2])
	default:
		mode := K.Mode
		if mode == "" {
			mode = "crystal"
		}
		fmt.Fprintf(out, "K_POINTS %s\n", mode)
		fmt.Fprintf(out, "%d\n", len(K.Points))
		for _, k := range K.Points {
			if strings.HasSuffix(mode, "_b") {
				//band paths take the number of points to the next vertex
				fmt.Fprintf(out, "%.14f %.14f %.14f %d\n", k.K[0], k.K[1], k.K[2], int(k.Weight))
				continue
			}
			fmt.Fprintf(out, "%.14f %.14f %.14f %.14f\n", k.K[0], k.K[1], k.K[2], k.Weight)
		}
	}
	fmt.Fprintln(out)
}
