/*
 * stats.go, part of pwtraj.
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

//Package chemstat summarizes the quantities computed along a trajectory: their
//statistics, histograms and time autocorrelation.
package chemstat

import (
	"fmt"
	"math/cmplx"
	"sort"
	"strings"

	chem "github.com/rmera/pwtraj"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//Quantity is a per-frame scalar.
type Quantity string

const (
	Energy   Quantity = "energy"    //eV
	MaxForce Quantity = "max_force" //eV/A
	Pressure Quantity = "pressure"  //GPa
	Magmom   Quantity = "magmom"    //total, Bohr magnetons
	Fermi    Quantity = "fermi"     //eV
	Volume   Quantity = "volume"    //A^3
)

var quantities = []Quantity{Energy, MaxForce, Pressure, Magmom, Fermi, Volume}

//Quantities returns all the known quantities.
func Quantities() []Quantity {
	return append([]Quantity(nil), quantities...)
}

//ParseQuantity returns the quantity called name.
func ParseQuantity(name string) (Quantity, error) {
	q := Quantity(strings.ToLower(strings.TrimSpace(name)))
	for _, v := range quantities {
		if q == v {
			return q, nil
		}
	}
	names := make([]string, len(quantities))
	for i, v := range quantities {
		names[i] = string(v)
	}
	sort.Strings(names)
	return "", fmt.Errorf("chemstat: unknown quantity %q, known: %s", name, strings.Join(names, ", "))
}

//value returns q for F, and false if F doesn't have it.
func (q Quantity) value(F *chem.Frame) (float64, bool) {
	R := F.Results
	switch q {
	case Energy:
		if R != nil && R.Energy != nil {
			return *R.Energy, true
		}
	case MaxForce:
		return R.MaxForce()
	case Pressure:
		p, ok := R.Pressure()
		return chem.EVA32GPa(p), ok
	case Magmom:
		return R.TotalMagmom()
	case Fermi:
		if R != nil && R.Fermi != nil {
			return *R.Fermi, true
		}
	case Volume:
		if F.Cell != nil {
			return F.Volume(), true
		}
	}
	return 0, false
}

//Series returns the values of q along frames, and the index in frames of each
//value. Frames lacking q are skipped.
func Series(frames []*chem.Frame, q Quantity) (values []float64, index []int) {
	for i, F := range frames {
		if v, ok := q.value(F); ok {
			values = append(values, v)
			index = append(index, i)
		}
	}
	return values, index
}

//Summary contains the statistics of a quantity along a trajectory.
type Summary struct {
	Quantity Quantity
	N        int
	Mean     float64
	StdDev   float64 //sample standard deviation, 0 for a single value
	Min      float64
	Max      float64
	Drift    float64 //last minus first value
}

//Summarize returns the statistics of q along frames. N is 0 if no frame has q.
func Summarize(frames []*chem.Frame, q Quantity) Summary {
	v, _ := Series(frames, q)
	S := Summary{Quantity: q, N: len(v)}
	if len(v) == 0 {
		return S
	}
	S.Mean = stat.Mean(v, nil)
	if len(v) > 1 {
		S.StdDev = stat.StdDev(v, nil)
	}
	S.Min = floats.Min(v)
	S.Max = floats.Max(v)
	S.Drift = v[len(v)-1] - v[0]
	return S
}

//Histogram distributes values in nbins bins of equal width between their minimum
//and maximum. It returns the nbins+1 bin limits and the counts.
func Histogram(values []float64, nbins int) ([]float64, []float64, error) {
	if nbins < 1 {
		return nil, nil, fmt.Errorf("chemstat: at least one bin is needed, got %d", nbins)
	}
	if len(values) == 0 {
		return nil, nil, fmt.Errorf("chemstat: no values to bin")
	}
	x := append([]float64(nil), values...)
	sort.Float64s(x)
	lo, hi := x[0], x[len(x)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	dividers := make([]float64, nbins+1)
	floats.Span(dividers, lo, hi)
	//the last divider is exclusive in stat.Histogram
	dividers[nbins] = hi + (hi-lo)*1e-9
	counts := stat.Histogram(nil, dividers, x, nil)
	dividers[nbins] = hi
	return dividers, counts, nil
}

//Autocorrelation returns the normalized autocorrelation of values for lags
//0 to len(values)-1, so the first element is 1. It is computed by FFT on the
//series padded with zeros to twice its length.
func Autocorrelation(values []float64) ([]float64, error) {
	n := len(values)
	if n < 2 {
		return nil, fmt.Errorf("chemstat: at least 2 values are needed for an autocorrelation, got %d", n)
	}
	mean, variance := stat.PopMeanVariance(values, nil)
	if variance == 0 {
		return nil, fmt.Errorf("chemstat: the series is constant")
	}
	pad := make([]complex128, 2*n)
	for i, v := range values {
		pad[i] = complex(v-mean, 0)
	}
	f := fourier.NewCmplxFFT(len(pad))
	f.Coefficients(pad, pad)
	for i, v := range pad {
		pad[i] = v * cmplx.Conj(v)
	}
	f.Sequence(pad, pad)
	norm := float64(len(pad)) * float64(n) * variance
	ret := make([]float64, n)
	for i := range ret {
		ret[i] = real(pad[i]) / norm
	}
	return ret, nil
}
