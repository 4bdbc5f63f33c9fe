/*
 * plots_test.go, part of pwtraj.
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

package chemplot

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	chem "github.com/rmera/pwtraj"
	"github.com/rmera/pwtraj/config"
	"github.com/rmera/pwtraj/qe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func relaxFrames(t *testing.T) []*chem.Frame {
	t.Helper()
	f, err := os.Open("../qe/testdata/relax.pwo")
	require.NoError(t, err)
	defer f.Close()
	frames, err := qe.ReadFrames(f, qe.WithSelection(qe.All()))
	require.NoError(t, err)
	return frames
}

func nonEmpty(t *testing.T, name string) {
	t.Helper()
	st, err := os.Stat(name)
	require.NoError(t, err)
	assert.Greater(t, st.Size(), int64(0))
}

func TestPlots(t *testing.T) {
	frames := relaxFrames(t)
	dir := t.TempDir()

	require.NoError(t, EnergyPlot(frames, "FeO relaxation", filepath.Join(dir, "energy")))
	nonEmpty(t, filepath.Join(dir, "energy.png"))

	require.NoError(t, BandsPlot(frames[1], "FeO bands", filepath.Join(dir, "bands.svg")))
	nonEmpty(t, filepath.Join(dir, "bands.svg"))

	S := config.Default().Plot
	S.AtomicColors = map[string]string{"O": "#ff0000"}
	require.NoError(t, StructurePlot(frames[1], S, filepath.Join(dir, "structure.png")))
	nonEmpty(t, filepath.Join(dir, "structure.png"))
}

func TestPlotErrors(t *testing.T) {
	frames := relaxFrames(t)
	bare := frames[0].Copy()
	bare.Results = nil
	_, err := EnergyFigure([]*chem.Frame{bare}, "")
	assert.Error(t, err)
	_, err = BandsFigure(bare, "")
	assert.Error(t, err)
	S := config.Default().Plot
	S.AtomicColors = map[string]string{"Fe": "not-a-color"}
	_, err = StructureFigure(frames[0], S, "")
	assert.Error(t, err)
}

func TestColors(t *testing.T) {
	c, err := ParseColor("#b07030")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xb0, G: 0x70, B: 0x30, A: 255}, c)
	c, err = ParseColor("Red")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, c)
	for _, bad := range []string{"#12345", "#gg0000", "reddish"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
	S := config.Default().Plot
	jmolO, err := ElementColor(S, "O")
	require.NoError(t, err)
	S.ColorScheme = "vesta"
	vestaO, err := ElementColor(S, "O")
	require.NoError(t, err)
	assert.NotEqual(t, jmolO, vestaO)
	S.ColorScheme = "rasmol"
	_, err = ElementColor(S, "O")
	assert.Error(t, err)
	assert.NotEqual(t, seriesColor(0, 2), seriesColor(1, 2))
}
