/*
 * atomicdata.go, part of pwtraj.
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
	"fmt"
	"strings"
)

//Element symbols, indexed by atomic number. "X" is a dummy atom.
var elementSymbols = []string{
	"X",
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd",
	"In", "Sn", "Sb", "Te", "I", "Xe",
	"Cs", "Ba", "La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy",
	"Ho", "Er", "Tm", "Yb", "Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt",
	"Au", "Hg", "Tl", "Pb", "Bi", "Po", "At", "Rn",
	"Fr", "Ra", "Ac", "Th", "Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf",
	"Es", "Fm", "Md", "No", "Lr", "Rf", "Db", "Sg", "Bh", "Hs", "Mt", "Ds",
	"Rg", "Cn", "Nh", "Fl", "Mc", "Lv", "Ts", "Og",
}

//Standard atomic weights (IUPAC 2016), in the same order as elementSymbols.
var elementMasses = []float64{
	1.0,
	1.008, 4.002602,
	6.94, 9.0121831, 10.81, 12.011, 14.007, 15.999, 18.998403163, 20.1797,
	22.98976928, 24.305, 26.9815385, 28.085, 30.973761998, 32.06, 35.45, 39.948,
	39.0983, 40.078, 44.955908, 47.867, 50.9415, 51.9961, 54.938044, 55.845, 58.933194, 58.6934, 63.546, 65.38,
	69.723, 72.630, 74.921595, 78.971, 79.904, 83.798,
	85.4678, 87.62, 88.90584, 91.224, 92.90637, 95.95, 97.90721, 101.07, 102.90550, 106.42, 107.8682, 112.414,
	114.818, 118.710, 121.760, 127.60, 126.90447, 131.293,
	132.90545196, 137.327, 138.90547, 140.116, 140.90766, 144.242, 144.91276, 150.36, 151.964, 157.25, 158.92535, 162.500,
	164.93033, 167.259, 168.93422, 173.054, 174.9668, 178.49, 180.94788, 183.84, 186.207, 190.23, 192.217, 195.084,
	196.966569, 200.592, 204.38, 207.2, 208.98040, 208.98243, 209.98715, 222.01758,
	223.01974, 226.02541, 227.02775, 232.0377, 231.03588, 238.02891, 237.04817, 244.06421, 243.06138, 247.07035, 247.07031, 251.07959,
	252.0830, 257.09511, 258.09843, 259.1010, 262.110, 267.122, 268.126, 271.134, 270.133, 269.1338, 278.156, 281.165,
	281.166, 285.177, 286.182, 289.190, 289.194, 293.0, 294.0, 294.0,
}

var symbolNumber = func() map[string]int {
	m := make(map[string]int, len(elementSymbols))
	for i, s := range elementSymbols {
		m[s] = i
	}
	return m
}()

//A map for assigning covalent radii to elements, used to size atoms in plots.
//Values from Cordero et al., 2008 (DOI:10.1039/B801115J)
//Elements not present get defaultCovrad.
var symbolCovrad = map[string]float64{
	"H":  0.31,
	"He": 0.28,
	"Li": 1.28,
	"Be": 0.96,
	"B":  0.84,
	"C":  0.76, //the sp3 radius
	"N":  0.71,
	"O":  0.66,
	"F":  0.57,
	"Ne": 0.58,
	"Na": 1.66,
	"Mg": 1.41,
	"Al": 1.21,
	"Si": 1.11,
	"P":  1.07,
	"S":  1.05,
	"Cl": 1.02,
	"Ar": 1.06,
	"K":  2.03,
	"Ca": 1.76,
	"Sc": 1.70,
	"Ti": 1.60,
	"V":  1.53,
	"Cr": 1.39,
	"Mn": 1.61, //hs
	"Fe": 1.52, //hs
	"Co": 1.50, //hs
	"Ni": 1.24,
	"Cu": 1.32,
	"Zn": 1.22,
	"Ga": 1.22,
	"Ge": 1.20,
	"As": 1.19,
	"Se": 1.20,
	"Br": 1.20,
	"Kr": 1.16,
	"Mo": 1.54,
	"Ru": 1.46,
	"Pd": 1.39,
	"Ag": 1.45,
	"I":  1.39,
	"Pt": 1.36,
	"Au": 1.36,
}

const defaultCovrad = 1.5

//Jmol colors (RGB, 0-1) indexed by atomic number, up to Kr.
var jmolColors = [][3]float64{
	{1.000, 0.000, 0.000},
	{1.000, 1.000, 1.000}, {0.851, 1.000, 1.000},
	{0.800, 0.502, 1.000}, {0.761, 1.000, 0.000}, {1.000, 0.710, 0.710}, {0.565, 0.565, 0.565},
	{0.188, 0.314, 0.973}, {1.000, 0.051, 0.051}, {0.565, 0.878, 0.314}, {0.702, 0.890, 0.961},
	{0.671, 0.361, 0.949}, {0.541, 1.000, 0.000}, {0.749, 0.651, 0.651}, {0.941, 0.784, 0.627},
	{1.000, 0.502, 0.000}, {1.000, 1.000, 0.188}, {0.122, 0.941, 0.122}, {0.502, 0.820, 0.890},
	{0.561, 0.251, 0.831}, {0.239, 1.000, 0.000}, {0.902, 0.902, 0.902}, {0.749, 0.761, 0.780},
	{0.651, 0.651, 0.671}, {0.541, 0.600, 0.780}, {0.612, 0.478, 0.780}, {0.878, 0.400, 0.200},
	{0.941, 0.565, 0.627}, {0.314, 0.816, 0.314}, {0.784, 0.502, 0.200}, {0.490, 0.502, 0.690},
	{0.761, 0.561, 0.561}, {0.400, 0.561, 0.561}, {0.741, 0.502, 0.890}, {1.000, 0.631, 0.000},
	{0.651, 0.161, 0.161}, {0.361, 0.722, 0.820},
}

//VESTA colors (RGB, 0-1) indexed by atomic number, up to Kr.
var vestaColors = [][3]float64{
	{1.00000, 0.00000, 0.00000},
	{1.00000, 0.80000, 0.80000}, {0.98907, 0.91312, 0.81091},
	{0.52731, 0.87953, 0.45670}, {0.37147, 0.84590, 0.48292}, {0.12490, 0.63612, 0.05948}, {0.50430, 0.28659, 0.16236},
	{0.69139, 0.72934, 0.90280}, {0.99997, 0.01328, 0.00000}, {0.69139, 0.72934, 0.90280}, {0.99954, 0.21788, 0.71035},
	{0.97955, 0.86618, 0.23787}, {0.98773, 0.48452, 0.08470}, {0.50718, 0.70056, 0.84062}, {0.10596, 0.23226, 0.98096},
	{0.75557, 0.61256, 0.76425}, {1.00000, 0.98071, 0.00000}, {0.19583, 0.98828, 0.01167}, {0.81349, 0.99731, 0.77075},
	{0.63255, 0.13281, 0.96858}, {0.35642, 0.58863, 0.74498}, {0.71209, 0.38930, 0.67279}, {0.47237, 0.79393, 1.00000},
	{0.90000, 0.10000, 0.00000}, {0.00000, 0.00000, 0.62000}, {0.66148, 0.03412, 0.62036}, {0.71051, 0.44662, 0.00136},
	{0.00000, 0.00000, 0.68666}, {0.72032, 0.73631, 0.74339}, {0.13390, 0.28022, 0.86606}, {0.56123, 0.56445, 0.50799},
	{0.62292, 0.89293, 0.45486}, {0.49557, 0.43499, 0.65193}, {0.45814, 0.81694, 0.34249}, {0.60420, 0.93874, 0.06122},
	{0.49645, 0.19333, 0.01076}, {0.98102, 0.75805, 0.95413},
}

var colorSchemes = map[string][][3]float64{
	"jmol":  jmolColors,
	"vesta": vestaColors,
}

//Color for elements beyond the tabulated ones.
var defaultColor = [3]float64{1.0, 0.078, 0.576}

//IsElement returns true if symbol is the symbol of a chemical element. "X" is not.
func IsElement(symbol string) bool {
	n, ok := symbolNumber[symbol]
	return ok && n > 0
}

//AtomicNumber returns the atomic number for the given symbol, and false if
//the symbol is not a chemical element.
func AtomicNumber(symbol string) (int, bool) {
	n, ok := symbolNumber[symbol]
	if !ok || n == 0 {
		return 0, false
	}
	return n, true
}

//Symbol returns the element symbol with the atomic number z, or "X" if out of range.
func Symbol(z int) string {
	if z <= 0 || z >= len(elementSymbols) {
		return "X"
	}
	return elementSymbols[z]
}

//Mass returns the standard atomic weight of the element, or an error if the symbol
//is not an element.
func Mass(symbol string) (float64, error) {
	n, ok := AtomicNumber(symbol)
	if !ok {
		return 0, fmt.Errorf("chem: %q is not a chemical element", symbol)
	}
	return elementMasses[n], nil
}

//CovalentRadius returns the covalent radius of the element in A.
func CovalentRadius(symbol string) float64 {
	if r, ok := symbolCovrad[symbol]; ok {
		return r
	}
	return defaultCovrad
}

//ColorSchemes returns the names of the color schemes available.
func ColorSchemes() []string {
	return []string{"jmol", "vesta"}
}

//ElementColor returns the RGB color (0-1) for the element in the given scheme.
//The scheme name is case-insensitive. An unknown scheme is an error.
func ElementColor(scheme, symbol string) ([3]float64, error) {
	colors, ok := colorSchemes[strings.ToLower(scheme)]
	if !ok {
		return defaultColor, fmt.Errorf("chem: unknown color scheme %q", scheme)
	}
	n, ok := symbolNumber[symbol]
	if !ok || n >= len(colors) {
		return defaultColor, nil
	}
	return colors[n], nil
}
