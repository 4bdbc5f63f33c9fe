/*
 * plotutils.go, part of pwtraj.
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
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	chem "github.com/rmera/pwtraj"
	"github.com/rmera/pwtraj/config"
	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

//Some internal convenience functions.

//takes hue (0-360), v and s (0-1), returns r,g,b (0-255)
func hsv2RGB(h, v, s float64) (uint8, uint8, uint8) {
	conversion := 255.0 * v
	if s == 0.0 {
		return uint8(conversion), uint8(conversion), uint8(conversion)
	}
	h = h / 60
	i := math.Floor(h)
	f := h - i
	p := 1 - s
	q := 1 - s*f
	t := 1 - s*(1-f)
	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = 1, t, p
	case 1:
		r, g, b = q, 1, p
	case 2:
		r, g, b = p, 1, t
	case 3:
		r, g, b = p, q, 1
	case 4:
		r, g, b = t, p, 1
	default:
		r, g, b = 1, p, q
	}
	return uint8(r * conversion), uint8(g * conversion), uint8(b * conversion)
}

//seriesColor returns the color for series key of steps, spread over the hues
//from red to violet, skipping the yellows, which are hard to see on white.
func seriesColor(key, steps int) color.RGBA {
	if steps < 1 {
		steps = 1
	}
	hp := float64(key)*260.0/float64(steps) + 20.0
	h := hp + 20.0
	if hp < 55 {
		h = hp - 20.0
	}
	r, g, b := hsv2RGB(h, 0.9, 1)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

//ParseColor reads a color as "#rrggbb" or as an SVG color name, such as "red".
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		if len(s) != 7 {
			return color.RGBA{}, fmt.Errorf("chemplot: invalid color %q", s)
		}
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("chemplot: invalid color %q", s)
		}
		return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
	}
	c, ok := colornames.Map[strings.ToLower(s)]
	if !ok {
		return color.RGBA{}, fmt.Errorf("chemplot: unknown color name %q", s)
	}
	return c, nil
}

//ElementColor returns the color for an element: the override in the settings, if
//any, or the color of the element in the settings' scheme.
func ElementColor(S config.Plot, symbol string) (color.RGBA, error) {
	if c, ok := S.AtomicColors[symbol]; ok {
		return ParseColor(c)
	}
	rgb, err := chem.ElementColor(S.ColorScheme, symbol)
	if err != nil {
		return color.RGBA{}, err
	}
	return color.RGBA{R: uint8(rgb[0]*255 + 0.5), G: uint8(rgb[1]*255 + 0.5), B: uint8(rgb[2]*255 + 0.5), A: 255}, nil
}

//Save writes p to filename, with the size (cm) in the settings. A ".png" extension is
//added to names without one. The format follows the extension (png, svg, pdf, eps...).
func Save(p *plot.Plot, filename string, S config.Plot) error {
	if filepath.Ext(filename) == "" {
		filename += ".png"
	}
	w, h := S.Width, S.Height
	if w <= 0 || h <= 0 {
		d := config.Default().Plot
		w, h = d.Width, d.Height
	}
	return p.Save(vg.Length(w)*vg.Centimeter, vg.Length(h)*vg.Centimeter, filename)
}
