/*
 * plots.go, part of pwtraj.
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

//Package chemplot draws figures from pw.x trajectories: the energy profile of a
//relaxation, the band energies of a frame and a projection of its structure.
package chemplot

import (
	"fmt"
	"image/color"
	"math"

	chem "github.com/rmera/pwtraj"
	"github.com/rmera/pwtraj/config"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

func basicPlot(title, x, y string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = x
	p.Y.Label.Text = y
	p.Add(plotter.NewGrid())
	return p
}

//EnergyFigure plots the energy of each frame, relative to the lowest one, against the
//frame index. Frames without energy are skipped.
func EnergyFigure(frames []*chem.Frame, title string) (*plot.Plot, error) {
	pts := make(plotter.XYs, 0, len(frames))
	emin := math.Inf(1)
	for i, F := range frames {
		if F.Results == nil || F.Results.Energy == nil {
			continue
		}
		e := *F.Results.Energy
		emin = math.Min(emin, e)
		pts = append(pts, plotter.XY{X: float64(i), Y: e})
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("chemplot: no frame has an energy")
	}
	for i := range pts {
		pts[i].Y -= emin
	}
	p := basicPlot(title, "Frame", "E - Emin (eV)")
	l, s, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, err
	}
	l.Color = seriesColor(0, 1)
	s.GlyphStyle.Color = l.Color
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(l, s)
	return p, nil
}

//EnergyPlot saves the energy profile of frames to filename.
func EnergyPlot(frames []*chem.Frame, title, filename string) error {
	p, err := EnergyFigure(frames, title)
	if err != nil {
		return err
	}
	return Save(p, filename, config.Default().Plot)
}

//BandsFigure plots each band of F across the k-points, one color per spin channel, with
//the Fermi level, if known, as a dashed line.
func BandsFigure(F *chem.Frame, title string) (*plot.Plot, error) {
	R := F.Results
	if R.NBands() == 0 {
		return nil, fmt.Errorf("chemplot: the frame has no band energies")
	}
	p := basicPlot(title, "k-point", "E (eV)")
	nk := len(R.Bands[0])
	names := []string{"spin up", "spin down"}
	for s, channel := range R.Bands {
		c := seriesColor(s, len(R.Bands))
		for b := 0; b < R.NBands(); b++ {
			pts := make(plotter.XYs, nk)
			for k := range pts {
				pts[k].X = float64(k)
				pts[k].Y = channel[k][b]
			}
			l, err := plotter.NewLine(pts)
			if err != nil {
				return nil, err
			}
			l.Color = c
			p.Add(l)
			if b == 0 && len(R.Bands) == 2 {
				p.Legend.Add(names[s], l)
			}
		}
	}
	if R.Fermi != nil {
		ef := plotter.XYs{{X: 0, Y: *R.Fermi}, {X: math.Max(float64(nk-1), 1), Y: *R.Fermi}}
		l, err := plotter.NewLine(ef)
		if err != nil {
			return nil, err
		}
		l.Color = color.Black
		l.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(l)
		p.Legend.Add("Fermi level", l)
	}
	return p, nil
}

//BandsPlot saves the bands of F to filename.
func BandsPlot(F *chem.Frame, title, filename string) error {
	p, err := BandsFigure(F, title)
	if err != nil {
		return err
	}
	return Save(p, filename, config.Default().Plot)
}

//glyph radius, in points, of an atom with a covalent radius of 1 A.
const pointsPerA = 8

//StructureFigure draws the atoms of F projected on the xy plane, colored by element,
//with a size proportional to their covalent radii. The projection of the a and b cell
//vectors is drawn too.
func StructureFigure(F *chem.Frame, S config.Plot, title string) (*plot.Plot, error) {
	if F.Len() == 0 {
		return nil, fmt.Errorf("chemplot: the frame has no atoms")
	}
	styles := make([]draw.GlyphStyle, F.Len())
	pts := make(plotter.XYs, F.Len())
	for i, a := range F.Atoms {
		c, err := ElementColor(S, a.Symbol)
		if err != nil {
			return nil, err
		}
		r := chem.CovalentRadius(a.Symbol) * S.AtomicRadius * pointsPerA
		styles[i] = draw.GlyphStyle{Color: c, Radius: vg.Points(r), Shape: draw.CircleGlyph{}}
		pts[i].X = F.Coords.At(i, 0)
		pts[i].Y = F.Coords.At(i, 1)
	}
	p := basicPlot(title, "x (A)", "y (A)")
	if F.Cell != nil {
		a := F.Cell.Vec(0)
		b := F.Cell.Vec(1)
		box := plotter.XYs{{X: 0, Y: 0}, {X: a[0], Y: a[1]}, {X: a[0] + b[0], Y: a[1] + b[1]}, {X: b[0], Y: b[1]}, {X: 0, Y: 0}}
		l, err := plotter.NewLine(box)
		if err != nil {
			return nil, err
		}
		l.Color = color.Gray{Y: 128}
		p.Add(l)
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle { return styles[i] }
	p.Add(sc)
	//same scale on both axes
	span := math.Max(p.X.Max-p.X.Min, p.Y.Max-p.Y.Min) / 2
	cx, cy := (p.X.Max+p.X.Min)/2, (p.Y.Max+p.Y.Min)/2
	p.X.Min, p.X.Max = cx-span-1, cx+span+1
	p.Y.Min, p.Y.Max = cy-span-1, cy+span+1
	return p, nil
}

//StructurePlot saves the xy projection of F to filename, with the settings S.
func StructurePlot(F *chem.Frame, S config.Plot, filename string) error {
	p, err := StructureFigure(F, S, F.Formula())
	if err != nil {
		return err
	}
	return Save(p, filename, S)
}
