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

/*Package qe reads the output logs of the pw.x program of Quantum ESPRESSO, and reads and
writes pw.x input files.

A log is read once and indexed (see Log). Trajectories are then built from it lazily,
one frame per run start or ATOMIC_POSITIONS card:

	T, err := qe.ReadTrajectory(f, qe.WithSelection(qe.All()), qe.WithSingleTrajectory(true))
	if err != nil {
		return err
	}
	for {
		F, err := T.Next()
		if chem.IsLastFrame(err) {
			break
		} else if err != nil {
			return err
		}
		//use F
	}

All lengths are in A, energies in eV, forces in eV/A and stresses in eV/A^3.

Errors can be checked with errors.Is against the ErrorKind constants of this package.

*/
package qe
