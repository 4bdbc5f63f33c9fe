/*
 * interfaces.go, part of pwtraj.
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

import "errors"

//FrameSource is an interface for any trajectory that yields full frames
//(structure plus results) one at a time.
type FrameSource interface {
	//Next returns the next frame. When the trajectory is exhausted it returns
	//a nil frame and an error implementing LastFrameError.
	Next() (*Frame, error)
}

//FrameWriter is implemented by the objects that can write a frame in some format.
type FrameWriter interface {
	WriteFrame(F *Frame) error
}

//Errors

//Error is the interface for errors that all packages in this library implement. The Decorate method allows to add and retrieve info from the
//error, without changing it's type or wrapping it around something else.
type Error interface {
	Error() string
	Decorate(string) []string //Each call returns the "decoration" slice of strings resulting from the current call. If passed an empty string, it should just return the current value.
}

//TrajError is the interface for errors in trajectories
type TrajError interface {
	Error
	Critical() bool
	FileName() string
	Format() string
}

//LastFrameError has a useless function to distinguish the harmless errors (i.e. last frame) so  they can be
//filtered in a typeswith that looks for this interface.
type LastFrameError interface {
	TrajError
	NormalLastFrameTermination() //does nothing, just to separate this interface from other TrajError's
}

//IsLastFrame returns true if err, or any error it wraps, is a LastFrameError.
func IsLastFrame(err error) bool {
	var l LastFrameError
	return errors.As(err, &l)
}

//CError is the error type of the chem package. It implements Error.
type CError struct {
	msg  string
	deco []string
}

func (err CError) Error() string { return err.msg }

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err CError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//ErrDecorate decorates err with the caller's name if it implements Error.
//Other errors are returned unchanged.
func ErrDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(Error); ok {
		e.Decorate(caller)
	}
	return err
}
