/*
 * restart.go, part of pwtraj.
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

package qe

import "go.uber.org/zap"

//When pw.x restarts from a checkpoint it prints the header, with the positions from the
//input, and then reads and uses the positions from the previous run. Those initial positions
//are not a frame of the trajectory.
//
//The case where a calculation dies after writing new positions but before writing the
//checkpoint is not handled. The first frame of the next run then repeats the last one of
//the previous run, with energies and forces that only match within numerical noise.

//reconcileStarts returns the run starts that begin a new structure. The first start is
//always kept. A later start is kept if no "positions read from file" message follows it
//before the next start, and dropped if exactly one does. More than one is an error.
func reconcileStarts(I *Index, logger *zap.Logger) ([]int, error) {
	all := I.Lines(RunStart)
	if len(all) == 0 {
		return nil, nil
	}
	kept := []int{all[0]}
	for i, start := range all[1:] {
		next := I.NLines()
		if i+2 < len(all) {
			next = all[i+2]
		}
		switch n := I.CountBetween(RestartPositions, start, next); {
		case n == 0:
			kept = append(kept, start)
		case n == 1:
			logger.Info("run restarted from a checkpoint, skipping the initial positions",
				zap.Int("line", start+1))
		default:
			return nil, newError(ErrRestartAmbiguity, start, "reconcileStarts",
				"%d restart position messages in the run starting here, expected at most 1", n)
		}
	}
	return kept, nil
}
