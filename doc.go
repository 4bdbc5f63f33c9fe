/*
 * doc.go, part of pwtraj.
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

/*Package chem is the main package of the pwtraj library. It provides the atom and
frame structures shared by the readers and writers, the periodic table data, the unit
conversion factors, and the error interfaces implemented by all the packages in the library.


	**pwtraj Capabilities**


    Reads trajectories (positions, cells, constraints) from Quantum ESPRESSO pw.x
	output logs, including concatenated and restarted runs, together with the
	computed results: energies, forces, stress, magnetic moments, dipoles,
	Fermi levels, k-points and band eigenvalues (package qe).

    Reads and writes pw.x input files, keeping per-atom labels such as "Fe1" so
	species with different pseudopotentials or starting magnetizations survive
	a round trip (package qe).

    Writes extended XYZ files.

    Exports the per-frame results to Apache Arrow IPC files (package export).

    Plots energy profiles, band structures and structure projections using the
	gonum plot library (package chemplot).

    Summarizes quantities along a trajectory: statistics, histograms and
	autocorrelation functions (package chemstat).

    Opens local, compressed and S3-hosted logs (package source).

*/
package chem
