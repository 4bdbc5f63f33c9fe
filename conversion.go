/*
 * conversion.go, part of pwtraj.
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

//This provides useful conversion factors and other constants.
//Quantities returned by the library are in Angstrom, eV, eV/A, eV/A^3, and e*A.
//The factors follow CODATA 2014.

//Fundamental
const (
	Bohr2A     = 0.52917721067 //Bohr radius in A
	A2Bohr     = 1 / Bohr2A
	Ry2eV      = 13.605693009 //Rydberg in eV
	H2eV       = 2 * Ry2eV
	eCharge    = 1.6021766208e-19
	lightSpeed = 299792458.0
	Debye2eA   = 1e-11 / (eCharge * lightSpeed) //1 Debye in e*A
	eVA32GPa   = eCharge * 1e21
	Deg2Rad    = 0.0174533
	Rad2Deg    = 1 / 0.0174533
)

//Derived, for the units pw.x prints.
const (
	RyBohr2eVA   = Ry2eV / Bohr2A                     //forces
	RyBohr32eVA3 = Ry2eV / (Bohr2A * Bohr2A * Bohr2A) //stress
)

//EVA32GPa returns the pressure in GPa corresponding to p in eV/A^3.
func EVA32GPa(p float64) float64 {
	return p * eVA32GPa
}
