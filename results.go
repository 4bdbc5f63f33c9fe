/*
 * results.go, part of pwtraj.
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
	"math"

	v3 "github.com/rmera/pwtraj/v3"
)

//KPoint is one irreducible k-point, in fractional reciprocal coordinates,
//with its weight.
type KPoint struct {
	K      [3]float64
	Weight float64
}

//Results holds the quantities computed for one frame. Every field is
//optional: a nil value means the quantity was not found.
type Results struct {
	Energy     *float64    //eV
	FreeEnergy *float64    //eV
	Forces     *v3.Matrix  //eV/A
	Stress     *[6]float64 //eV/A^3, packed as xx, yy, zz, yz, xz, xy
	Magmoms    []float64   //Bohr magnetons, one per atom
	Dipole     *[3]float64 //e*A
	Fermi      *float64    //eV
	KPoints    []KPoint
	//Eigenvalues, in eV, indexed as [spin][k-point][band]. When present, the number of
	//k-points equals len(KPoints).
	Bands [][][]float64
}

//Float returns a pointer to a copy of f, handy to fill Results.
func Float(f float64) *float64 {
	return &f
}

//Empty returns true if R is nil or holds no quantity at all.
func (R *Results) Empty() bool {
	if R == nil {
		return true
	}
	return R.Energy == nil && R.FreeEnergy == nil && R.Forces == nil && R.Stress == nil &&
		R.Magmoms == nil && R.Dipole == nil && R.Fermi == nil && R.KPoints == nil && R.Bands == nil
}

//NSpins returns the number of spin channels with band data, 0 if there are no bands.
func (R *Results) NSpins() int {
	if R == nil {
		return 0
	}
	return len(R.Bands)
}

//NKPoints returns the number of k-points.
func (R *Results) NKPoints() int {
	if R == nil {
		return 0
	}
	return len(R.KPoints)
}

//NBands returns the number of bands per k-point, 0 if there are no bands.
func (R *Results) NBands() int {
	if R == nil || len(R.Bands) == 0 || len(R.Bands[0]) == 0 {
		return 0
	}
	return len(R.Bands[0][0])
}

//MaxForce returns the largest atomic force norm and true, or 0 and false if
//there are no forces.
func (R *Results) MaxForce() (float64, bool) {
	if R == nil || R.Forces == nil {
		return 0, false
	}
	return R.Forces.MaxNorm(), true
}

//Pressure returns minus one third of the stress trace and true, or 0 and false
//if there is no stress.
func (R *Results) Pressure() (float64, bool) {
	if R == nil || R.Stress == nil {
		return 0, false
	}
	s := R.Stress
	return -(s[0] + s[1] + s[2]) / 3, true
}

//TotalMagmom returns the sum of the atomic magnetic moments and true, or 0 and
//false if there are no moments.
func (R *Results) TotalMagmom() (float64, bool) {
	if R == nil || R.Magmoms == nil {
		return 0, false
	}
	t := 0.0
	for _, m := range R.Magmoms {
		t += m
	}
	return t, true
}

//DipoleNorm returns the norm of the dipole and true, or 0 and false if there is
//no dipole.
func (R *Results) DipoleNorm() (float64, bool) {
	if R == nil || R.Dipole == nil {
		return 0, false
	}
	d := R.Dipole
	return math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2]), true
}

//Copy returns a deep copy of R.
func (R *Results) Copy() *Results {
	if R == nil {
		return nil
	}
	r := &Results{Forces: R.Forces.Clone()}
	if R.Energy != nil {
		r.Energy = Float(*R.Energy)
	}
	if R.FreeEnergy != nil {
		r.FreeEnergy = Float(*R.FreeEnergy)
	}
	if R.Fermi != nil {
		r.Fermi = Float(*R.Fermi)
	}
	if R.Stress != nil {
		s := *R.Stress
		r.Stress = &s
	}
	if R.Dipole != nil {
		d := *R.Dipole
		r.Dipole = &d
	}
	if R.Magmoms != nil {
		r.Magmoms = append([]float64(nil), R.Magmoms...)
	}
	if R.KPoints != nil {
		r.KPoints = append([]KPoint(nil), R.KPoints...)
	}
	if R.Bands != nil {
		r.Bands = make([][][]float64, len(R.Bands))
		for s, spin := range R.Bands {
			r.Bands[s] = make([][]float64, len(spin))
			for k, e := range spin {
				r.Bands[s][k] = append([]float64(nil), e...)
			}
		}
	}
	return r
}
