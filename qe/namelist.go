/*
 * namelist.go, part of pwtraj.
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
	"strconv"
	"strings"
)

//Section is one Fortran namelist, such as &SYSTEM. Keys are lower case, and keep
//the order in which they were set. Values are string, bool, int or float64.
type Section struct {
	Name   string //lower case, without the "&"
	keys   []string
	values map[string]interface{}
}

func newSection(name string) *Section {
	return &Section{Name: strings.ToLower(name), values: make(map[string]interface{})}
}

//Keys returns the keys of the section in order.
func (S *Section) Keys() []string {
	return append([]string(nil), S.keys...)
}

//Get returns the value of key, and false if it is not set.
func (S *Section) Get(key string) (interface{}, bool) {
	v, ok := S.values[strings.ToLower(key)]
	return v, ok
}

//Set sets the value of key, which must be a string, bool, int or float64.
func (S *Section) Set(key string, value interface{}) {
	key = strings.ToLower(key)
	if _, ok := S.values[key]; !ok {
		S.keys = append(S.keys, key)
	}
	S.values[key] = value
}

//Delete removes key from the section.
func (S *Section) Delete(key string) {
	key = strings.ToLower(key)
	if _, ok := S.values[key]; !ok {
		return
	}
	delete(S.values, key)
	for i, k := range S.keys {
		if k == key {
			S.keys = append(S.keys[:i], S.keys[i+1:]...)
			break
		}
	}
}

//Int returns the value of key as an integer.
func (S *Section) Int(key string) (int, bool) {
	v, ok := S.Get(key)
	if !ok {
		return 0, false
	}
	i, ok := v.(int)
	return i, ok
}

//Float returns the value of key as a float. Integer values are converted.
func (S *Section) Float(key string) (float64, bool) {
	v, ok := S.Get(key)
	if !ok {
		return 0, false
	}
	switch f := v.(type) {
	case float64:
		return f, true
	case int:
		return float64(f), true
	}
	return 0, false
}

//String returns the value of key as a string.
func (S *Section) String(key string) (string, bool) {
	v, ok := S.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

//Namelist is the set of namelists at the top of a pw.x input, in order.
type Namelist struct {
	sections []*Section
}

//NewNamelist returns an empty namelist set.
func NewNamelist() *Namelist {
	return &Namelist{}
}

//Section returns the section with the given name, or nil.
func (N *Namelist) Section(name string) *Section {
	if N == nil {
		return nil
	}
	name = strings.ToLower(strings.TrimPrefix(name, "&"))
	for _, s := range N.sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

//AddSection returns the section with the given name, creating it if needed.
func (N *Namelist) AddSection(name string) *Section {
	if s := N.Section(name); s != nil {
		return s
	}
	s := newSection(strings.TrimPrefix(name, "&"))
	N.sections = append(N.sections, s)
	return s
}

//Sections returns all the sections, in order.
func (N *Namelist) Sections() []*Section {
	return append([]*Section(nil), N.sections...)
}

//Copy returns a deep copy of N.
func (N *Namelist) Copy() *Namelist {
	r := NewNamelist()
	if N == nil {
		return r
	}
	for _, s := range N.sections {
		c := r.AddSection(s.Name)
		for _, k := range s.keys {
			c.Set(k, s.values[k])
		}
	}
	return r
}

//stripComment removes a "!" comment from line, unless it is inside quotes.
func stripComment(line string) string {
	var quote rune
	for i, c := range line {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '!':
			return line[:i]
		}
	}
	return line
}

//namelistValue interprets a value as written in a Fortran namelist.
func namelistValue(s string) interface{} {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	switch strings.ToLower(s) {
	case ".true.", ".t.", "true":
		return true
	case ".false.", ".f.", "false":
		return false
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := fortranFloat(s); err == nil && !strings.Contains(s, "/") {
		return f
	}
	return s
}

//ParseNamelist parses the namelists that start at lines[from]. It stops at the first
//line, outside a namelist, that is not blank and does not start one, and returns the
//index of that line (len(lines) if there is none).
func ParseNamelist(lines []string, from int) (*Namelist, int, error) {
	N := NewNamelist()
	var S *Section
	for i := from; i < len(lines); i++ {
		line := strings.TrimSpace(stripComment(lines[i]))
		if S == nil {
			if line == "" {
				continue
			}
			if line[0] != '&' {
				return N, i, nil
			}
			f := strings.Fields(line[1:])
			if len(f) == 0 {
				return nil, i, newError(ErrMalformedInput, i, "ParseNamelist", "namelist without a name")
			}
			S = N.AddSection(f[0])
			line = strings.TrimSpace(line[1+strings.Index(line[1:], f[0])+len(f[0]):])
		}
		var item strings.Builder
		var quote rune
		closed := false
		flush := func() error {
			t := strings.TrimSpace(item.String())
			item.Reset()
			if t == "" {
				return nil
			}
			eq := strings.Index(t, "=")
			if eq <= 0 {
				return newError(ErrMalformedInput, i, "ParseNamelist", "expected key = value, got %q", t)
			}
			key := strings.ReplaceAll(strings.TrimSpace(t[:eq]), " ", "")
			S.Set(key, namelistValue(t[eq+1:]))
			return nil
		}
		for _, c := range line {
			switch {
			case quote != 0:
				if c == quote {
					quote = 0
				}
				item.WriteRune(c)
			case c == '\'' || c == '"':
				quote = c
				item.WriteRune(c)
			case c == ',':
				if err := flush(); err != nil {
					return nil, i, err
				}
			case c == '/':
				closed = true
			default:
				item.WriteRune(c)
			}
			if closed {
				break
			}
		}
		if err := flush(); err != nil {
			return nil, i, err
		}
		if closed {
			S = nil
		}
	}
	if S != nil {
		return nil, len(lines), newError(ErrMalformedInput, len(lines)-1, "ParseNamelist", "namelist &%s is not closed", S.Name)
	}
	return N, len(lines), nil
}

//sectionOrder is the order in which pw.x expects its namelists.
var sectionOrder = []string{"control", "system", "electrons", "ions", "cell"}

//formatValue writes a namelist value in Fortran syntax.
func formatValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return "'" + t + "'"
	case bool:
		if t {
			return ".true."
		}
		return ".false."
	case int:
		return strconv.Itoa(t)
	case float64:
		s := strconv.FormatFloat(t, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return s
	}
	return fmt.Sprint(v)
}

//WriteTo writes the namelists in the order pw.x expects: control, system, electrons,
//ions and cell first, then any other, in their own order. Empty pw.x sections are
//written too, as pw.x requires some of them.
func (N *Namelist) WriteTo(w io.Writer) (int64, error) {
	out := bufio.NewWriter(w)
	var n int64
	write := func(S *Section, name string) error {
		c, err := fmt.Fprintf(out, "&%s\n", strings.ToUpper(name))
		n += int64(c)
		if err != nil {
			return err
		}
		if S != nil {
			for _, k := range S.keys {
				c, err = fmt.Fprintf(out, "   %s = %s\n", k, formatValue(S.values[k]))
				n += int64(c)
				if err != nil {
					return err
				}
			}
		}
		c, err = fmt.Fprint(out, "/\n")
		n += int64(c)
		return err
	}
	known := make(map[string]bool)
	for _, name := range sectionOrder {
		known[name] = true
		S := N.Section(name)
		if S == nil && (name == "ions" || name == "cell") {
			continue
		}
		if err := write(S, name); err != nil {
			return n, err
		}
	}
	if N != nil {
		for _, S := range N.sections {
			if known[S.Name] {
				continue
			}
			if err := write(S, S.Name); err != nil {
				return n, err
			}
		}
	}
	return n, out.Flush()
}
