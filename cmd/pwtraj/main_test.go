/*
 * main_test.go, part of pwtraj.
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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const relax = "../../qe/testdata/relax.pwo"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInfo(t *testing.T) {
	out, err := run(t, "info", relax)
	require.NoError(t, err)
	assert.Contains(t, out, "runs: 1, finished: yes")
	assert.Contains(t, out, "frames: 2 qualified, 1 selected")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[3], "129 "), lines[3])
	assert.Contains(t, lines[3], "FeO")

	out, err = run(t, "info", "--index", ":", relax)
	require.NoError(t, err)
	assert.Contains(t, out, "frames: 2 qualified, 2 selected")

	_, err = run(t, "info", "--index", "5", relax)
	assert.Error(t, err)
	_, err = run(t, "info", "missing.pwo")
	assert.Error(t, err)
}

func TestHeader(t *testing.T) {
	out, err := run(t, "header", relax)
	require.NoError(t, err)
	assert.Contains(t, out, "run 1, line 2: pw.x 7.2")
	assert.Contains(t, out, "atoms: 2, types: 2")
	assert.Contains(t, out, "Fe1")
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	xyz := filepath.Join(dir, "relax.xyz")
	_, err := run(t, "convert", "-i", ":", relax, xyz)
	require.NoError(t, err)
	b, err := os.ReadFile(xyz)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(b), "energy="))

	tmpl := filepath.Join(dir, "template.pwi")
	require.NoError(t, os.WriteFile(tmpl, []byte(`&CONTROL
  calculation = 'scf'
/
&SYSTEM
  ibrav = 0, nat = 2, ntyp = 2
  ecutwfc = 45
/
&ELECTRONS
/
ATOMIC_SPECIES
Fe1 55.845 Fe.pbe-spn-rrkjus.UPF
O 15.999 O.pbe-n-rrkjus.UPF
CELL_PARAMETERS angstrom
4.0 0.0 0.0
0.0 4.0 0.0
0.0 0.0 4.0
ATOMIC_POSITIONS angstrom
Fe1 0.0 0.0 0.0
O 2.0 0.0 0.0
K_POINTS automatic
4 4 4 0 0 0
`), 0o644))
	pwi := filepath.Join(dir, "last.pwi")
	_, err = run(t, "convert", "--template", tmpl, relax, pwi)
	require.NoError(t, err)
	b, err = os.ReadFile(pwi)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Fe.pbe-spn-rrkjus.UPF")
	assert.Contains(t, string(b), "K_POINTS automatic")

	_, err = run(t, "convert", relax, filepath.Join(dir, "out.cif"))
	assert.Error(t, err)
	_, err = run(t, "convert", "--to", "espresso-out", relax, filepath.Join(dir, "out.pwo"))
	assert.Error(t, err, "espresso-out can't be written")
}

func TestExportAndPlot(t *testing.T) {
	dir := t.TempDir()
	arrow := filepath.Join(dir, "relax.arrow")
	out, err := run(t, "export", "-i", ":", relax, arrow)
	require.NoError(t, err)
	assert.Contains(t, out, "2 frames written")
	st, err := os.Stat(arrow)
	require.NoError(t, err)
	assert.Greater(t, st.Size(), int64(0))

	for _, kind := range []string{"energy", "bands", "structure"} {
		name := filepath.Join(dir, kind+".png")
		_, err := run(t, "plot", kind, "--title", kind, relax, name)
		require.NoError(t, err, kind)
		_, err = os.Stat(name)
		assert.NoError(t, err, kind)
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "pwtraj.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[read]\nindex = \":\"\n"), 0o644))
	out, err := run(t, "--config", cfg, "info", relax)
	require.NoError(t, err)
	assert.Contains(t, out, "2 selected")
	_, err = run(t, "--config", filepath.Join(dir, "missing.toml"), "info", relax)
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	out, err := run(t, "stats", "--acf", "energy", "--bins", "2", relax)
	require.NoError(t, err)
	found := false
	for _, l := range strings.Split(out, "\n") {
		if f := strings.Fields(l); len(f) == 7 && f[0] == "energy" {
			found = true
			assert.Equal(t, "2", f[1])
		}
	}
	assert.True(t, found, out)
	assert.Contains(t, out, "histogram of energy")
	assert.Contains(t, out, "autocorrelation of energy")
	assert.Contains(t, out, "     0   1.00000")
	_, err = run(t, "stats", "--acf", "entropy", relax)
	assert.Error(t, err)
}
