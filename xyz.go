/*
 * xyz.go, part of pwtraj.
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

package chem

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

func boolT(b bool) string {
	if b {
		return "T"
	}
	return "F"
}

//xyzComment builds the extended XYZ comment line for F, and the list of
//per-atom properties written after the coordinates.
func xyzComment(F *Frame) (string, []string) {
	var b strings.Builder
	props := []string{"species:S:1", "pos:R:3"}
	extra := []string{}
	if F.Cell != nil {
		c := make([]string, 0, 9)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				c = append(c, fmt.Sprintf("%.8f", F.Cell.At(i, j)))
			}
		}
		fmt.Fprintf(&b, "Lattice=\"%s\" ", strings.Join(c, " "))
	}
	for _, a := range F.Atoms {
		if a.Tag != 0 {
			props = append(props, "tags:I:1")
			extra = append(extra, "tags")
			break
		}
	}
	R := F.Results
	if R != nil && R.Forces != nil {
		props = append(props, "forces:R:3")
		extra = append(extra, "forces")
	}
	if R != nil && R.Magmoms != nil {
		props = append(props, "magmoms:R:1")
		extra = append(extra, "magmoms")
	}
	fmt.Fprintf(&b, "Properties=%s", strings.Join(props, ":"))
	if R != nil {
		if R.Energy != nil {
			fmt.Fprintf(&b, " energy=%.8f", *R.Energy)
		}
		if R.FreeEnergy != nil {
			fmt.Fprintf(&b, " free_energy=%.8f", *R.FreeEnergy)
		}
		if s := R.Stress; s != nil {
			//full 3x3 from the packed xx yy zz yz xz xy
			fmt.Fprintf(&b, " stress=\"%.8f %.8f %.8f %.8f %.8f %.8f %.8f %.8f %.8f\"",
				s[0], s[5], s[4], s[5], s[1], s[3], s[4], s[3], s[2])
		}
		if d := R.Dipole; d != nil {
			fmt.Fprintf(&b, " dipole=\"%.8f %.8f %.8f\"", d[0], d[1], d[2])
		}
		if R.Fermi != nil {
			fmt.Fprintf(&b, " fermi_energy=%.8f", *R.Fermi)
		}
	}
	fmt.Fprintf(&b, " pbc=\"%s %s %s\"", boolT(F.PBC[0]), boolT(F.PBC[1]), boolT(F.PBC[2]))
	return b.String(), extra
}

//XYZWrite writes the frame F in extended XYZ format to out.
func XYZWrite(out io.Writer, F *Frame) error {
	if err := F.Check(); err != nil {
		return ErrDecorate(err, "XYZWrite")
	}
	comment, extra := xyzComment(F)
	if _, err := fmt.Fprintf(out, "%d\n%s\n", F.Len(), comment); err != nil {
		return CError{err.Error(), []string{"XYZWrite"}}
	}
	for i, a := range F.Atoms {
		c := F.Coords.RawRowView(i)
		line := fmt.Sprintf("%-2s %15.8f %15.8f %15.8f", a.Symbol, c[0], c[1], c[2])
		for _, e := range extra {
			switch e {
			case "tags":
				line += fmt.Sprintf(" %5d", a.Tag)
			case "forces":
				f := F.Results.Forces.RawRowView(i)
				line += fmt.Sprintf(" %15.8f %15.8f %15.8f", f[0], f[1], f[2])
			case "magmoms":
				line += fmt.Sprintf(" %12.8f", F.Results.Magmoms[i])
			}
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return CError{err.Error(), []string{"XYZWrite"}}
		}
	}
	return nil
}

//XYZFileWrite writes the given frames, one after the other, to a new file with
//name xyzname. If the file exists it will be overwritten.
func XYZFileWrite(xyzname string, frames ...*Frame) error {
	out, err := os.Create(xyzname)
	if err != nil {
		return CError{err.Error(), []string{"os.Create", "XYZFileWrite"}}
	}
	defer out.Close()
	w := bufio.NewWriter(out)
	for _, F := range frames {
		if err := XYZWrite(w, F); err != nil {
			return ErrDecorate(err, "XYZFileWrite")
		}
	}
	if err := w.Flush(); err != nil {
		return CError{err.Error(), []string{"Flush", "XYZFileWrite"}}
	}
	return nil
}
