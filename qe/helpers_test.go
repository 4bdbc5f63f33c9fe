/*
 * helpers_test.go, part of pwtraj.
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
	"math"
	"os"
	"strings"
	"testing"

	v3 "github.com/rmera/pwtraj/v3"
)

//Synthetic pw.x logs for the tests. Cells are cubic with celldm(1)=7.5.

const testCelldm = 7.5

//runHeader returns the start of a pw.x run with the given atoms, positions in alat units.
func runHeader(labels []string, tau [][3]float64) string {
	var b strings.Builder
	species := make([]string, 0)
	seen := make(map[string]bool)
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			species = append(species, l)
		}
	}
	b.WriteString("\n     Program PWSCF v.7.2 starts on 19Oct2024 at 10:12:31 \n\n")
	b.WriteString("     bravais-lattice index     =            0\n")
	fmt.Fprintf(&b, "     lattice parameter (alat)  =       %.4f  a.u.\n", testCelldm)
	fmt.Fprintf(&b, "     number of atoms/cell      = %12d\n", len(labels))
	fmt.Fprintf(&b, "     number of atomic types    = %12d\n", len(species))
	b.WriteString("     number of electrons       =        22.00\n")
	b.WriteString("     number of Kohn-Sham states=           13\n")
	b.WriteString("     kinetic-energy cutoff     =      45.0000  Ry\n")
	b.WriteString("     charge density cutoff     =     360.0000  Ry\n\n")
	fmt.Fprintf(&b, "     celldm(1)=   %.6f  celldm(2)=   0.000000  celldm(3)=   0.000000\n\n", testCelldm)
	b.WriteString("     crystal axes: (cart. coord. in units of alat)\n")
	b.WriteString("               a(1) = (   1.000000   0.000000   0.000000 )  \n")
	b.WriteString("               a(2) = (   0.000000   1.000000   0.000000 )  \n")
	b.WriteString("               a(3) = (   0.000000   0.000000   1.000000 )  \n\n")
	b.WriteString("     atomic species   valence    mass     pseudopotential\n")
	for _, s := range species {
		fmt.Fprintf(&b, "        %-4s          6.00    15.99900     %s( 1.00)\n", s, s)
	}
	b.WriteString("\n   Cartesian axes\n\n     site n.     atom                  positions (alat units)\n")
	for i, l := range labels {
		fmt.Fprintf(&b, "         %d           %-3s tau(   %d) = (   %.7f   %.7f   %.7f  )\n", i+1, l, i+1, tau[i][0], tau[i][1], tau[i][2])
	}
	b.WriteString("\n     number of k points=     1\n")
	b.WriteString("                       cart. coord. in units 2pi/alat\n")
	b.WriteString("        k(    1) = (   0.0000000   0.0000000   0.0000000), wk =   2.0000000\n\n")
	return b.String()
}

//energyBlock returns a converged total energy and the forces on nat atoms.
func energyBlock(energy float64, nat int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "!    total energy              =    %.8f Ry\n\n", energy)
	b.WriteString("     Forces acting on atoms (cartesian axes, Ry/au):\n\n")
	for i := 0; i < nat; i++ {
		fmt.Fprintf(&b, "     atom    %d type  1   force =     0.00100000    0.00000000   -0.00200000\n", i+1)
	}
	b.WriteString("\n")
	return b.String()
}

//positionsBlock returns an ATOMIC_POSITIONS card in angstrom.
func positionsBlock(labels []string, pos [][3]float64) string {
	var b strings.Builder
	b.WriteString("\nATOMIC_POSITIONS (angstrom)\n")
	for i, l := range labels {
		fmt.Fprintf(&b, "%-4s %16.10f %16.10f %16.10f\n", l, pos[i][0], pos[i][1], pos[i][2])
	}
	b.WriteString("\n")
	return b.String()
}

func logFromString(s string) *Log {
	return NewLogFromLines(strings.Split(s, "\n"))
}

func openTestLog(Te *testing.T, name string) *Log {
	f, err := os.Open("testdata/" + name)
	if err != nil {
		Te.Fatal(err)
	}
	defer f.Close()
	L, err := NewLog(f)
	if err != nil {
		Te.Fatal(err)
	}
	return L
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= 1e-8+1e-6*math.Abs(b)
}

func cubic(a float64) *v3.Matrix {
	c, _ := v3.NewMatrix([]float64{a, 0, 0, 0, a, 0, 0, 0, a})
	return c
}
