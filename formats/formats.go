/*
 * formats.go, part of pwtraj.
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

//Package formats keeps a registry of the file formats that pwtraj can read and write,
//so tools can choose a reader or writer by name or by file name.
package formats

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	chem "github.com/rmera/pwtraj"
	"github.com/rmera/pwtraj/qe"
	"github.com/rmera/pwtraj/source"
	"go.uber.org/zap"
)

//Options are the settings passed to readers and writers. Each format uses the
//ones that make sense for it.
type Options struct {
	Selection        *qe.Selection //the last frame if nil
	AllCandidates    bool          //read frames without results too
	SingleTrajectory bool
	Logger           *zap.Logger
	Name             string //file name, for error messages

	Params  *qe.Namelist //for pw.x inputs
	Pseudos []qe.Pseudopotential
	Input   qe.WriteOptions
}

//ReadFunc reads all the selected frames from r.
type ReadFunc func(r io.Reader, o Options) ([]*chem.Frame, error)

//WriteFunc writes frames to w.
type WriteFunc func(w io.Writer, frames []*chem.Frame, o Options) error

//Handler describes one format. Read or Write are nil if the format can't
//be read or written.
type Handler struct {
	Name        string
	Description string
	Extensions  []string //with the leading dot
	Read        ReadFunc
	Write       WriteFunc
}

//Registry maps format names and file extensions to handlers. It is safe for
//concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]*Handler
	byExt    map[string]string
}

//NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]*Handler), byExt: make(map[string]string)}
}

//Register adds H to the registry. Registering a name or an extension twice is an error.
func (R *Registry) Register(H Handler) error {
	if H.Name == "" {
		return fmt.Errorf("formats: handler without a name")
	}
	if H.Read == nil && H.Write == nil {
		return fmt.Errorf("formats: %s can neither read nor write", H.Name)
	}
	R.mu.Lock()
	defer R.mu.Unlock()
	if _, ok := R.handlers[H.Name]; ok {
		return fmt.Errorf("formats: %s is already registered", H.Name)
	}
	for _, e := range H.Extensions {
		if prev, ok := R.byExt[strings.ToLower(e)]; ok {
			return fmt.Errorf("formats: extension %s of %s already belongs to %s", e, H.Name, prev)
		}
	}
	for _, e := range H.Extensions {
		R.byExt[strings.ToLower(e)] = H.Name
	}
	R.handlers[H.Name] = &H
	return nil
}

//Lookup returns the handler with the given name.
func (R *Registry) Lookup(name string) (*Handler, bool) {
	R.mu.RLock()
	defer R.mu.RUnlock()
	H, ok := R.handlers[name]
	return H, ok
}

//ForFile returns the handler for a file, from its extension. Compression
//suffixes (.gz, .zst) are ignored.
func (R *Registry) ForFile(path string) (*Handler, error) {
	ext := strings.ToLower(filepath.Ext(source.TrimCompression(path)))
	R.mu.RLock()
	defer R.mu.RUnlock()
	name, ok := R.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("formats: no format for %s files (%s)", ext, path)
	}
	return R.handlers[name], nil
}

//Names returns the registered format names, sorted.
func (R *Registry) Names() []string {
	R.mu.RLock()
	defer R.mu.RUnlock()
	ret := make([]string, 0, len(R.handlers))
	for n := range R.handlers {
		ret = append(ret, n)
	}
	sort.Strings(ret)
	return ret
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

//Default returns a registry with the built-in formats: espresso-out, espresso-in and extxyz.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = NewRegistry()
		for _, H := range builtins() {
			if err := defaultReg.Register(H); err != nil {
				panic(err.Error())
			}
		}
	})
	return defaultReg
}

func builtins() []Handler {
	return []Handler{
		{
			Name:        "espresso-out",
			Description: "pw.x output log",
			Extensions:  []string{".pwo", ".out"},
			Read:        readEspressoOut,
		},
		{
			Name:        "espresso-in",
			Description: "pw.x input",
			Extensions:  []string{".pwi", ".in"},
			Read:        readEspressoIn,
			Write:       writeEspressoIn,
		},
		{
			Name:        "extxyz",
			Description: "extended XYZ",
			Extensions:  []string{".xyz", ".extxyz"},
			Write:       writeExtXYZ,
		},
	}
}

func readEspressoOut(r io.Reader, o Options) ([]*chem.Frame, error) {
	opts := []qe.Option{
		qe.WithResultsRequired(!o.AllCandidates),
		qe.WithSingleTrajectory(o.SingleTrajectory),
		qe.WithLogger(o.Logger),
		qe.WithFilename(o.Name),
	}
	if o.Selection != nil {
		opts = append(opts, qe.WithSelection(*o.Selection))
	}
	return qe.ReadFrames(r, opts...)
}

func readEspressoIn(r io.Reader, o Options) ([]*chem.Frame, error) {
	F, _, err := qe.ReadInput(r)
	if err != nil {
		return nil, err
	}
	return []*chem.Frame{F}, nil
}

//defaultPseudos assigns a "<label>.UPF" file to each label in F.
func defaultPseudos(F *chem.Frame) []qe.Pseudopotential {
	var ret []qe.Pseudopotential
	seen := make(map[string]bool)
	for _, a := range F.Atoms {
		l := a.Label
		if l == "" {
			l = chem.EncodeLabel(a.Symbol, a.Tag)
		}
		if !seen[l] {
			seen[l] = true
			ret = append(ret, qe.Pseudopotential{Label: l, File: l + ".UPF"})
		}
	}
	return ret
}

//writeEspressoIn writes the last of the frames as a pw.x input.
func writeEspressoIn(w io.Writer, frames []*chem.Frame, o Options) error {
	if len(frames) == 0 {
		return fmt.Errorf("formats: no frame to write")
	}
	F := frames[len(frames)-1]
	pseudos := o.Pseudos
	if pseudos == nil {
		pseudos = defaultPseudos(F)
	}
	return qe.WriteInput(w, F, o.Params, pseudos, o.Input)
}

func writeExtXYZ(w io.Writer, frames []*chem.Frame, o Options) error {
	out := bufio.NewWriter(w)
	for _, F := range frames {
		if err := chem.XYZWrite(out, F); err != nil {
			return err
		}
	}
	return out.Flush()
}
