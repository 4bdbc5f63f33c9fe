/*
 * errors.go, part of pwtraj.
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

import (
	"fmt"

	chem "github.com/rmera/pwtraj"
)

//ErrorKind classifies the errors of the package, so they can be checked with errors.Is.
type ErrorKind string

func (k ErrorKind) Error() string { return string(k) }

const (
	ErrMalformedHeader       = ErrorKind("malformed run header")
	ErrMalformedBlock        = ErrorKind("malformed block")
	ErrUnsupportedCell       = ErrorKind("unsupported cell specification")
	ErrRestartAmbiguity      = ErrorKind("ambiguous restart")
	ErrTrajectoryConsistency = ErrorKind("inconsistent trajectory")
	ErrIndexOutOfRange       = ErrorKind("frame index out of range")
	ErrMalformedInput        = ErrorKind("malformed pw.x input")
)

//errDecorate is a helper function that asserts that the error
//implements chem.Error and decorates the error with the caller's name before returning it.
//Other errors are returned unchanged.
func errDecorate(err error, caller string) error {
	return chem.ErrDecorate(err, caller)
}

//Error is the general structure for pw.x file errors. It fullfills chem.Error and chem.TrajError
type Error struct {
	message  string
	filename string //the file that has problems, or empty string if none.
	line     int    //0-based line where the problem was found, -1 if none.
	deco     []string
	critical bool
	kind     ErrorKind
}

//newError returns a critical Error of the given kind.
func newError(kind ErrorKind, line int, caller string, format string, args ...interface{}) Error {
	return Error{message: fmt.Sprintf(format, args...), line: line, deco: []string{caller}, critical: true, kind: kind}
}

func (err Error) Error() string {
	where := ""
	if err.filename != "" {
		where = " " + err.filename
	}
	if err.line >= 0 {
		where += fmt.Sprintf(" (line %d)", err.line+1)
	}
	return fmt.Sprintf("pw.x file%s error: %s: %s", where, err.kind, err.message)
}

//Unwrap returns the kind of the error.
func (err Error) Unwrap() error {
	if err.kind == "" {
		return nil
	}
	return err.kind
}

//Decorate Adds new information to the error
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//FileName returns the file to which the failing trajectory was associated
func (err Error) FileName() string { return err.filename }

//Line returns the 0-based line where the error was found, or -1.
func (err Error) Line() int { return err.line }

//Format returns the format of the file associated to the error
func (err Error) Format() string { return "espresso-out" }

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

//Kind returns the kind of error.
func (err Error) Kind() ErrorKind { return err.kind }

//withFile returns a copy of err associated to the given file name, if err is an Error.
func withFile(err error, filename string) error {
	if e, ok := err.(Error); ok && e.filename == "" {
		e.filename = filename
		return e
	}
	return err
}

//lastFrameError implements chem.LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
}

//NormalLastFrameTermination does nothing
func (E lastFrameError) NormalLastFrameTermination() {}

func (E lastFrameError) FileName() string { return E.fileName }

func (E lastFrameError) Error() string { return "EOF" }

func (E lastFrameError) Critical() bool { return false }

func (E lastFrameError) Format() string { return "espresso-out" }

func (E lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}
