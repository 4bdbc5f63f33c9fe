/*
 * input_test.go, part of pwtraj.
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
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	chem "github.com/rmera/pwtraj"
)

const feoInput = `&CONTROL
   calculation = 'relax'
   prefix = 'feo', pseudo_dir = './pseudo' ! where the UPF files are
/
&SYSTEM
   ibrav = 0, nat = 3, ntyp = 2
   ecutwfc = 45
   starting_magnetization(1) = 0.5
   occupations = 'smearing', degauss = 1.0d-2
/
&ELECTRONS
   conv_thr = 1e-8
/
ATOMIC_SPECIES
Fe1 55.845 Fe.UPF
O   15.999 O.UPF

CELL_PARAMETERS angstrom
4.0 0.0 0.0
0.0 4.0 0.0
0.0 0.0 4.0

ATOMIC_POSITIONS angstrom
Fe1 0.0 0.0 0.0 0 0 0
O   2.0 0.0 0.0
O   0.0 2.0 0.0 1 1 0

K_POINTS automatic
4 4 4 1 1 1

HUBBARD {ortho-atomic}
U Fe1-3d 4.0
`

func checkFeO(Te *testing.T, I *Input) {
	Te.Helper()
	F := I.Frame
	if F.Len() != 3 || fmt.Sprint(F.Labels()) != "[Fe1 O O]" || F.Atoms[0].Tag != 1 || F.Atoms[0].Symbol != "Fe" {
		Te.Fatalf("Wrong atoms %v", F.Labels())
	}
	if !near(F.Coords.At(1, 0), 2) || !near(F.Coords.At(2, 1), 2) || !near(F.Cell.At(2, 2), 4) {
		Te.Errorf("Wrong geometry %v %v", F.Coords, F.Cell)
	}
	if fmt.Sprint(F.Fixed) != "[[true true true] [false false false] [false false true]]" {
		Te.Errorf("Wrong constraints %v", F.Fixed)
	}
	if fmt.Sprint(F.InitialMagmoms) != "[0.5 0 0]" {
		Te.Errorf("Wrong initial magnetic moments %v", F.InitialMagmoms)
	}
	if I.KPoints == nil || I.KPoints.Mode != "automatic" || I.KPoints.Grid != [3]int{4, 4, 4} || I.KPoints.Offset != [3]int{1, 1, 1} {
		Te.Errorf("Wrong k-points %+v", I.KPoints)
	}
	if len(I.Cards) != 1 || I.Cards[0] != "HUBBARD {ortho-atomic}\nU Fe1-3d 4.0" {
		Te.Errorf("Wrong additional cards %q", I.Cards)
	}
	sys := I.Params.Section("system")
	if e, ok := sys.Int("ecutwfc"); !ok || e != 45 {
		Te.Errorf("Wrong ecutwfc %v", e)
	}
	if d, ok := sys.Float("degauss"); !ok || d != 0.01 {
		Te.Errorf("Wrong degauss %v", d)
	}
	if c, ok := I.Params.Section("electrons").Float("conv_thr"); !ok || c != 1e-8 {
		Te.Errorf("Wrong conv_thr %v", c)
	}
	if p, _ := I.Params.Section("control").String("pseudo_dir"); p != "./pseudo" {
		Te.Errorf("Wrong pseudo_dir %q", p)
	}
}

func TestParseInput(Te *testing.T) {
	I, err := ParseInput(strings.NewReader(feoInput))
	if err != nil {
		Te.Fatal(err)
	}
	checkFeO(Te, I)
	if I.Frame.Atoms[1].Mass != 15.999 {
		Te.Errorf("The species mass should be used, got %f", I.Frame.Atoms[1].Mass)
	}
	if p := I.Pseudopotentials(); len(p) != 2 || p[0] != (Pseudopotential{"Fe1", "Fe.UPF"}) {
		Te.Errorf("Wrong pseudopotentials %v", p)
	}
	F, params, err := ReadInput(strings.NewReader(feoInput))
	if err != nil || F.Len() != 3 || params.Section("&SYSTEM") == nil {
		Te.Errorf("ReadInput failed: %v", err)
	}
}

func TestInputRoundTrip(Te *testing.T) {
	I, err := ParseInput(strings.NewReader(feoInput))
	if err != nil {
		Te.Fatal(err)
	}
	for _, crystal := range []bool{false, true} {
		var buf bytes.Buffer
		opts := WriteOptions{KPoints: I.KPoints, Crystal: crystal, AdditionalCards: I.Cards}
		if err := WriteInput(&buf, I.Frame, I.Params, I.Pseudopotentials(), opts); err != nil {
			Te.Fatal(err)
		}
		I2, err := ParseInput(&buf)
		if err != nil {
			Te.Fatalf("Can't read back the input (crystal: %v): %v\n%s", crystal, err, buf.String())
		}
		checkFeO(Te, I2)
		if n, _ := I2.Params.Section("system").Int("nat"); n != 3 {
			Te.Errorf("Wrong nat %d", n)
		}
	}
}

func TestWriteInputErrors(Te *testing.T) {
	I, err := ParseInput(strings.NewReader(feoInput))
	if err != nil {
		Te.Fatal(err)
	}
	var buf bytes.Buffer
	err = WriteInput(&buf, I.Frame, I.Params, []Pseudopotential{{"Fe1", "Fe.UPF"}}, WriteOptions{})
	if !errors.Is(err, ErrMalformedInput) {
		Te.Errorf("An atom without a pseudopotential should be an error, got %v", err)
	}
	P := I.Params.Copy()
	P.Section("system").Set("ibrav", 2)
	if err := WriteInput(&buf, I.Frame, P, I.Pseudopotentials(), WriteOptions{}); !errors.Is(err, ErrUnsupportedCell) {
		Te.Errorf("ibrav=2 should not be written, got %v", err)
	}
	if v, _ := I.Params.Section("system").Int("ibrav"); v != 0 {
		Te.Error("WriteInput must not modify its parameters")
	}
	ibrav2 := strings.Replace(feoInput, "ibrav = 0", "ibrav = 2", 1)
	if _, err := ParseInput(strings.NewReader(ibrav2)); !errors.Is(err, ErrUnsupportedCell) {
		Te.Errorf("ibrav=2 should not be read, got %v", err)
	}
	nocell := strings.Replace(feoInput, "CELL_PARAMETERS angstrom", "", 1)
	if _, err := ParseInput(strings.NewReader(nocell)); !errors.Is(err, ErrUnsupportedCell) {
		Te.Errorf("An input without a cell should not be read, got %v", err)
	}
	F := I.Frame.Copy()
	F.Cell = nil
	if err := WriteInput(&buf, F, I.Params, I.Pseudopotentials(), WriteOptions{}); !errors.Is(err, ErrUnsupportedCell) {
		Te.Errorf("A frame without a cell should not be written, got %v", err)
	}
}

func TestNamelist(Te *testing.T) {
	lines := strings.Split("&system\n nat = 1, name = 'a,b/c'\n lspinorb = .TRUE.\n/\n\n&custom\n x = 1.5 /\nATOMIC_SPECIES", "\n")
	N, end, err := ParseNamelist(lines, 0)
	if err != nil {
		Te.Fatal(err)
	}
	if end != 7 {
		Te.Errorf("The namelists should end at line 7, not %d", end)
	}
	S := N.Section("SYSTEM")
	if s, _ := S.String("name"); s != "a,b/c" {
		Te.Errorf("Wrong quoted value %q", s)
	}
	if v, _ := S.Get("lspinorb"); v != true {
		Te.Errorf("Wrong logical value %v", v)
	}
	if fmt.Sprint(S.Keys()) != "[nat name lspinorb]" {
		Te.Errorf("Keys out of order %v", S.Keys())
	}
	S.Delete("name")
	var buf bytes.Buffer
	if _, err := N.WriteTo(&buf); err != nil {
		Te.Fatal(err)
	}
	want := "&CONTROL\n/\n&SYSTEM\n   nat = 1\n   lspinorb = .true.\n/\n&ELECTRONS\n/\n&CUSTOM\n   x = 1.5\n/\n"
	if buf.String() != want {
		Te.Errorf("Wrong namelist output:\n%s", buf.String())
	}
	if formatValue(2.0) != "2.0" || formatValue(1e-10) != "1e-10" {
		Te.Errorf("Wrong float formatting %s %s", formatValue(2.0), formatValue(1e-10))
	}
	for _, bad := range []string{"&system\n nat = 1\n", "&system\n nat\n/"} {
		if _, _, err := ParseNamelist(strings.Split(bad, "\n"), 0); !errors.Is(err, ErrMalformedInput) {
			Te.Errorf("%q should not parse, got %v", bad, err)
		}
	}
}

func TestKPointsCard(Te *testing.T) {
	path := &KPointsCard{Mode: "crystal_b", Points: []chem.KPoint{{K: [3]float64{0, 0, 0}, Weight: 20}, {K: [3]float64{0.5, 0, 0}, Weight: 1}}}
	var buf bytes.Buffer
	writeKPoints(&buf, path)
	if !strings.Contains(buf.String(), "0.50000000000000 0.00000000000000 0.00000000000000 1\n") {
		Te.Errorf("Band path weights should be integers:\n%s", buf.String())
	}
	K, err := readKPointsCard(strings.Split(buf.String(), "\n"), 0)
	if err != nil {
		Te.Fatal(err)
	}
	if K.Mode != "crystal_b" || len(K.Points) != 2 || K.Points[0].Weight != 20 {
		Te.Errorf("Wrong k-points %+v", K)
	}
	buf.Reset()
	writeKPoints(&buf, nil)
	if buf.String() != "K_POINTS gamma\n\n" {
		Te.Errorf("The default should be the gamma point, got %q", buf.String())
	}
	if K, err := readKPointsCard([]string{"K_POINTS", "1", "0 0 0 1"}, 0); err != nil || K.Mode != "tpiba" {
		Te.Errorf("The default units should be tpiba, got %+v %v", K, err)
	}
}
