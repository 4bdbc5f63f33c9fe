/*
 * results_test.go, part of pwtraj.
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
	"strings"
	"testing"

	chem "github.com/rmera/pwtraj"
	v3 "github.com/rmera/pwtraj/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

//eigenLines prints n eigenvalues, 8 per line, as pw.x does.
func eigenLines(n int, first float64) []string {
	var ret []string
	var line strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&line, "%9.4f", first+float64(i))
		if (i+1)%8 == 0 || i == n-1 {
			ret = append(ret, "   "+line.String())
			line.Reset()
		}
	}
	return ret
}

//bandBlock returns a band block for nk k-points with nbnd bands, with occupations.
func bandBlock(nk, nbnd int, spin bool) []string {
	lines := []string{"     End of self-consistent calculation"}
	channels := 1
	if spin {
		channels = 2
	}
	for s := 0; s < channels; s++ {
		if spin {
			lines = append(lines, "", map[int]string{0: " ------ SPIN UP ------------", 1: " ------ SPIN DOWN ----------"}[s], "")
		}
		for k := 0; k < nk; k++ {
			lines = append(lines, "", fmt.Sprintf("          k = 0.%d000 0.0000 0.0000 (  3071 PWs)   bands (ev):", k), "")
			lines = append(lines, eigenLines(nbnd, -10+float64(s))...)
			lines = append(lines, "", "     occupation numbers ")
			for i := 0; i < nbnd/8+1; i++ {
				lines = append(lines, "   1.0000   1.0000   1.0000   1.0000   1.0000   1.0000   1.0000   1.0000")
			}
		}
	}
	return append(lines, "", "     the Fermi energy is     3.1234 ev", "")
}

func TestBandScanner(Te *testing.T) {
	lines := bandBlock(2, 17, false)
	S := newBandScanner(lines, 0).run()
	if S.abandoned || S.state != blockDone {
		Te.Fatalf("Scanner finished in state %s", S.state)
	}
	b, err := S.bands(2, true)
	if err != nil {
		Te.Fatal(err)
	}
	if len(b) != 1 || len(b[0]) != 2 || len(b[0][1]) != 17 {
		Te.Fatalf("Expected 2 k-points with 17 bands, got %v", b)
	}
	if b[0][1][16] != 6 {
		Te.Errorf("Wrong last eigenvalue %f", b[0][1][16])
	}
	if _, err := S.bands(3, true); err == nil {
		Te.Error("The number of k-points should be checked")
	}
	if _, err := S.bands(0, false); err == nil {
		Te.Error("Bands without k-points should be an error")
	}
	S = newBandScanner(bandBlock(3, 9, true), 0).run()
	b, err = S.bands(3, true)
	if err != nil {
		Te.Fatal(err)
	}
	if len(b) != 2 || len(b[1]) != 3 || b[1][0][0] != -9 || b[0][0][0] != -10 {
		Te.Errorf("Wrong spin-polarized bands %v", b)
	}
}

func TestBandScannerSpecialCases(Te *testing.T) {
	warn := []string{"     End of band structure calculation", "", "     Number of k-points >= 100: set verbosity='high' to print the bands.", ""}
	if S := newBandScanner(warn, 0).run(); !S.abandoned {
		Te.Error("A block without printed bands should be abandoned")
	}
	hubbard := []string{
		"     End of self-consistent calculation",
		"     --- enter write_ns ---",
		"     Hubbard U ...",
		"     --- exit write_ns ---",
		"",
		"          k = 0.0000 0.0000 0.0000 (  3071 PWs)   bands (ev):",
		"",
		"   -10.0000-9.5000  -9.0000",
		"",
		"     highest occupied level (ev):    -9.0000",
	}
	S := newBandScanner(hubbard, 0).run()
	b, err := S.bands(1, true)
	if err != nil {
		Te.Fatal(err)
	}
	if fmt.Sprint(b) != "[[[-10 -9.5 -9]]]" {
		Te.Errorf("Wrong bands after a DFT+U block %v", b)
	}
	//a log cut in the middle of the bands
	cut := []string{"     End of self-consistent calculation", "", "          k = 0.0000 0.0000 0.0000 bands (ev):", "", "   1.0   2.0"}
	S = newBandScanner(cut, 0).run()
	if b, err = S.bands(1, true); err != nil || len(b[0][0]) != 2 {
		Te.Errorf("Bands at the end of the file should be kept, got %v %v", b, err)
	}
}

func extract(Te *testing.T, text string, nat int, logger *zap.Logger) *chem.Results {
	lines := strings.Split(text, "\n")
	I := Scan(lines)
	E := &extractor{lines: lines, index: I, bands: mergeSorted(convergedBands(I), I.Lines(BandStructure)), logger: logger}
	atoms := make([]*chem.Atom, nat)
	for i := range atoms {
		atoms[i], _ = chem.NewAtom("O")
	}
	alat := testCelldm * chem.Bohr2A
	H := &RunHeader{Alat: alat}
	H.Frame, _ = chem.NewFrame(atoms, v3.Zeros(nat), cubic(alat))
	return E.results(H.Frame, H, window{lo: -1, hi: len(lines), start: 0})
}

func TestStressAndEnergy(Te *testing.T) {
	text := `!    total energy              =     -10.00000000 Ry
     total   stress  (Ry/bohr**3)                   (kbar)     P=       -0.29
   1.00000000   0.00000000   0.00000000            0.15        0.00        0.00
   0.00000000   2.00000000   0.00000000            0.00        0.29        0.00
   0.00000000   0.00000000   3.00000000            0.00        0.00        0.44
`
	R := extract(Te, text, 1, zap.NewNop())
	want := [6]float64{-1, -2, -3, 0, 0, 0}
	for i := range want {
		if !near(R.Stress[i], want[i]*chem.RyBohr32eVA3) {
			Te.Errorf("Wrong stress component %d: %v", i, R.Stress)
		}
	}
	if !near(*R.Energy, -10*chem.Ry2eV) {
		Te.Errorf("Wrong energy %f", *R.Energy)
	}
	if p, ok := R.Pressure(); !ok || !near(p, 2*chem.RyBohr32eVA3) {
		Te.Errorf("Wrong pressure %f", p)
	}
}

func TestDipoleAndFermi(Te *testing.T) {
	text := `     Computed dipole along edir(3) :
        Elec. dipole         0.1234 Ry au,         0.3137 Debye
        Dipole               0.2000 Ry au,         0.5083 Debye
     highest occupied, lowest unoccupied level (ev):    -1.0000   0.5000
     highest occupied level (ev):    -1.5000
`
	R := extract(Te, text, 1, zap.NewNop())
	if R.Dipole == nil || R.Dipole[0] != 0 || !near(R.Dipole[2], 0.5083*chem.Debye2eA) {
		Te.Errorf("Wrong dipole %v", R.Dipole)
	}
	//the highest occupied level takes precedence over the pair
	if R.Fermi == nil || *R.Fermi != -1.5 {
		Te.Errorf("Wrong Fermi level %v", R.Fermi)
	}
	R = extract(Te, "     highest occupied, lowest unoccupied level (ev):    -1.0000   0.5000\n", 1, zap.NewNop())
	if R.Fermi == nil || *R.Fermi != -1 {
		Te.Errorf("Wrong Fermi level from the HOMO/LUMO pair %v", R.Fermi)
	}
	core, logs := observer.New(zap.WarnLevel)
	R = extract(Te, "     Computed dipole along edir(x) :\n", 1, zap.New(core))
	if R != nil {
		Te.Errorf("A dipole with no valid direction should be unset, got %v", R.Dipole)
	}
	if logs.Len() != 1 {
		Te.Errorf("Expected one warning, got %d", logs.Len())
	}
}

func TestKPointsAndBadBlocks(Te *testing.T) {
	text := `     number of k points=   150
                       cart. coord. in units 2pi/alat
     Number of k-points >= 100: set verbosity='high' to print them.
`
	if R := extract(Te, text, 1, zap.NewNop()); R != nil {
		Te.Errorf("K-points that were not printed should be unset, got %v", R.KPoints)
	}
	core, logs := observer.New(zap.WarnLevel)
	bad := `     Forces acting on atoms (cartesian axes, Ry/au):

     atom    1 type  1   force =     0.00100000    abc    0.00000000
!    total energy              =     -10.00000000 Ry
`
	R := extract(Te, bad, 1, zap.New(core))
	if R == nil || R.Forces != nil || R.Energy == nil {
		Te.Errorf("Unreadable forces should be unset, the energy kept: %v", R)
	}
	if logs.FilterField(zap.String("quantity", "forces")).Len() != 1 {
		Te.Errorf("Expected a warning about the forces, got %v", logs.All())
	}
	//bands with a wrong number of k-points are dropped
	block := append([]string{
		"     number of k points=     1",
		"                       cart. coord. in units 2pi/alat",
		"        k(    1) = (   0.0000000   0.0000000   0.0000000), wk =   2.0000000",
	}, bandBlock(2, 4, false)...)
	core, logs = observer.New(zap.WarnLevel)
	R = extract(Te, strings.Join(block, "\n"), 1, zap.New(core))
	if R == nil || R.Bands != nil || R.NKPoints() != 1 || R.Fermi == nil {
		Te.Errorf("Inconsistent bands should be dropped, the rest kept: %v", R)
	}
	if logs.FilterMessageSnippet("bands").Len() != 1 {
		Te.Errorf("Expected a warning about the bands, got %v", logs.All())
	}
}

func TestForceLayouts(Te *testing.T) {
	current := `     Forces acting on atoms (cartesian axes, Ry/au):

     atom    1 type  1   force =     0.00100000    0.00000000   -0.00200000
     atom    2 type  1   force =    -0.00100000    0.00000000    0.00200000
`
	//before QE 5.3 two more lines come before the forces
	old := `     Forces acting on atoms (Ry/au):


     negative rho (up, down):  0.139E-02 0.000E+00
     atom    1 type  1   force =     0.00100000    0.00000000   -0.00200000
     atom    2 type  1   force =    -0.00100000    0.00000000    0.00200000
`
	for name, text := range map[string]string{"current": current, "old": old} {
		core, logs := observer.New(zap.WarnLevel)
		R := extract(Te, text, 2, zap.New(core))
		if R.Forces == nil {
			Te.Fatalf("%s layout: no forces read, warnings: %v", name, logs.All())
		}
		if !near(R.Forces.At(0, 0), 0.001*chem.RyBohr2eVA) || !near(R.Forces.At(1, 2), 0.002*chem.RyBohr2eVA) {
			Te.Errorf("%s layout: wrong forces %v", name, R.Forces)
		}
		if logs.Len() != 0 {
			Te.Errorf("%s layout: unexpected warnings %v", name, logs.All())
		}
	}
}
