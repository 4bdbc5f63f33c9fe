/*
 * reader.go, part of pwtraj.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	chem "github.com/rmera/pwtraj"
	"go.uber.org/zap"
)

//Log is a pw.x output log held in memory, with its markers indexed. It is
//read-only, and can be shared by several trajectories, also concurrently.
type Log struct {
	lines    []string
	index    *Index
	filename string
	headers  headerCache
}

//NewLog reads all of r and indexes it.
func NewLog(r io.Reader) (*Log, error) {
	var lines []string
	in := bufio.NewReader(r)
	for {
		line, err := in.ReadString('\n')
		if line != "" {
			lines = append(lines, strings.TrimRight(line, "\r\n"))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("qe: reading log: %w", err)
		}
	}
	return NewLogFromLines(lines), nil
}

//NewLogFromLines indexes the given lines, which must not be modified afterwards.
func NewLogFromLines(lines []string) *Log {
	return &Log{lines: lines, index: Scan(lines)}
}

//OpenLog reads and indexes the log in the file name.
func OpenLog(name string) (*Log, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	L, err := NewLog(f)
	if err != nil {
		return nil, withFile(err, name)
	}
	L.filename = name
	return L, nil
}

//FileName returns the name of the file the log was read from, or an empty string.
func (L *Log) FileName() string { return L.filename }

//SetFileName sets the file name reported in the errors of the log and its trajectories.
func (L *Log) SetFileName(name string) { L.filename = name }

//Lines returns the lines of the log. The slice must not be modified.
func (L *Log) Lines() []string { return L.lines }

//Index returns the marker index of the log.
func (L *Log) Index() *Index { return L.index }

//RunHeader returns the header of the run that starts at the 0-based line at.
//The header is a copy, and can be modified freely.
func (L *Log) RunHeader(at int) (*RunHeader, error) {
	H, err := L.headers.get(L.lines, at)
	if err != nil {
		return nil, withFile(errDecorate(err, "RunHeader"), L.filename)
	}
	return H.Copy(), nil
}

//RunHeaders returns the headers of all the runs in the log, restarted ones included.
func (L *Log) RunHeaders() ([]*RunHeader, error) {
	starts := L.index.Lines(RunStart)
	ret := make([]*RunHeader, 0, len(starts))
	for _, s := range starts {
		H, err := L.RunHeader(s)
		if err != nil {
			return nil, errDecorate(err, "RunHeaders")
		}
		ret = append(ret, H)
	}
	return ret, nil
}

//NormalTermination returns true if the last run in the log finished.
func (L *Log) NormalTermination() bool {
	start, ok := L.index.LastBefore(RunStart, L.index.NLines())
	if !ok {
		return false
	}
	return L.index.CountBetween(RunEnd, start, L.index.NLines()) > 0
}

type options struct {
	selection       Selection
	resultsRequired bool
	single          bool
	logger          *zap.Logger
	filename        string
}

//Option sets a reading option for a trajectory.
type Option func(*options)

//WithSelection sets the frames to return. The default is the last one.
func WithSelection(s Selection) Option {
	return func(o *options) { o.selection = s }
}

//WithResultsRequired sets whether only structures followed by computed results are
//returned. It is true by default, and always true for single trajectories.
func WithResultsRequired(b bool) Option {
	return func(o *options) { o.resultsRequired = b }
}

//WithSingleTrajectory sets whether consecutive runs, as in restarted calculations,
//are joined in a single trajectory. In that case the initial structure of a run that
//continues a previous one is skipped, and every frame must have the same atoms and
//cell as the first one.
func WithSingleTrajectory(b bool) Option {
	return func(o *options) { o.single = b }
}

//WithLogger sets the logger for the warnings found while reading. The default
//discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

//WithFilename sets the file name reported in errors.
func WithFilename(name string) Option {
	return func(o *options) { o.filename = name }
}

//Trajectory returns the frames of a log, one at a time. It implements chem.FrameSource.
//Frames are only built when requested.
type Trajectory struct {
	log       *Log
	single    bool
	filename  string
	logger    *zap.Logger
	starts    []int //kept run starts
	cands     []int
	qualified []int
	selected  []int //lines of the frames to return
	pos       int
	ref       *chem.Frame
	extractor *extractor
	err       error
}

//Trajectory selects the frames of the log according to opts.
func (L *Log) Trajectory(opts ...Option) (*Trajectory, error) {
	o := options{selection: Last(), resultsRequired: true, logger: zap.NewNop(), filename: L.filename}
	for _, opt := range opts {
		opt(&o)
	}
	T := &Trajectory{log: L, single: o.single, filename: o.filename, logger: o.logger}
	T.starts = L.index.Lines(RunStart)
	if o.single {
		o.resultsRequired = true
		starts, err := reconcileStarts(L.index, o.logger)
		if err != nil {
			return nil, withFile(errDecorate(err, "Trajectory"), o.filename)
		}
		T.starts = starts
	}
	bands := convergedBands(L.index)
	T.cands = candidates(L.index, T.starts)
	T.qualified = qualify(L.index, T.cands, bands, o.resultsRequired)
	if len(T.qualified) == 0 {
		return nil, withFile(newError(ErrIndexOutOfRange, -1, "Trajectory",
			"frames %s requested, but no frame qualifies", o.selection), o.filename)
	}
	sel, err := o.selection.Apply(len(T.qualified))
	if err != nil {
		return nil, withFile(errDecorate(err, "Trajectory"), o.filename)
	}
	T.selected = make([]int, len(sel))
	for i, s := range sel {
		T.selected[i] = T.qualified[s]
	}
	usable := mergeSorted(bands, L.index.Lines(BandStructure))
	T.extractor = &extractor{lines: L.lines, index: L.index, bands: usable, logger: o.logger}
	return T, nil
}

//mergeSorted returns the sorted union of two sorted lists with no common elements.
func mergeSorted(a, b []int) []int {
	ret := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		if j >= len(b) || (i < len(a) && a[i] < b[j]) {
			ret = append(ret, a[i])
			i++
		} else {
			ret = append(ret, b[j])
			j++
		}
	}
	return ret
}

//Len returns the number of frames selected.
func (T *Trajectory) Len() int { return len(T.selected) }

//Qualified returns the 0-based lines of all the frames that can be selected.
func (T *Trajectory) Qualified() []int { return append([]int(nil), T.qualified...) }

//Readable returns true if there are frames left to read.
func (T *Trajectory) Readable() bool {
	return T.err == nil && T.pos < len(T.selected)
}

//Next returns the next selected frame. When there are no frames left it returns
//an error that implements chem.LastFrameError. Any other error is fatal: it is returned
//again in all later calls.
func (T *Trajectory) Next() (*chem.Frame, error) {
	if T.err != nil {
		return nil, T.err
	}
	if T.pos >= len(T.selected) {
		return nil, lastFrameError{fileName: T.filename, deco: []string{"Next"}}
	}
	F, err := T.frame(T.selected[T.pos])
	if err != nil {
		T.err = withFile(errDecorate(err, "Next"), T.filename)
		return nil, T.err
	}
	T.pos++
	return F, nil
}

//ReadTrajectory reads a log from r and returns its trajectory.
func ReadTrajectory(r io.Reader, opts ...Option) (*Trajectory, error) {
	L, err := NewLog(r)
	if err != nil {
		return nil, errDecorate(err, "ReadTrajectory")
	}
	T, err := L.Trajectory(opts...)
	if err != nil {
		return nil, errDecorate(err, "ReadTrajectory")
	}
	return T, nil
}

//ReadFrames reads a log from r and returns all the selected frames.
func ReadFrames(r io.Reader, opts ...Option) ([]*chem.Frame, error) {
	T, err := ReadTrajectory(r, opts...)
	if err != nil {
		return nil, errDecorate(err, "ReadFrames")
	}
	return Drain(T)
}

//Drain reads all the frames left in T.
func Drain(T chem.FrameSource) ([]*chem.Frame, error) {
	var ret []*chem.Frame
	for {
		F, err := T.Next()
		if err != nil {
			if chem.IsLastFrame(err) {
				return ret, nil
			}
			return nil, errDecorate(err, "Drain")
		}
		ret = append(ret, F)
	}
}
