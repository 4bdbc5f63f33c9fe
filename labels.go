/*
 * labels.go, part of pwtraj.
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
	"strconv"
	"strings"
)

//A label is the free-form species name used by pw.x, an element symbol followed
//by an optional integer that tells apart otherwise identical species ("Fe", "Fe1", "H12").

//capitalize returns s with the first letter upper-case and the rest lower-case.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

//LabelToSymbol returns the chemical symbol for the given label. The first two
//characters are tried first, so "Fe1" is iron, not fluorine. Case is not significant.
func LabelToSymbol(label string) (string, error) {
	label = strings.TrimSpace(label)
	if len(label) >= 2 {
		if s := capitalize(label[:2]); IsElement(s) {
			return s, nil
		}
	}
	if len(label) >= 1 {
		if s := capitalize(label[:1]); IsElement(s) {
			return s, nil
		}
	}
	return "", CError{fmt.Sprintf("Can't get an element symbol from label %q", label), []string{"LabelToSymbol"}}
}

//DecodeLabel splits a label into its chemical symbol and integer tag. The tag is the
//first run of digits after the symbol, or 0 if there is none. Other trailing characters
//("Fe_up") are ignored.
func DecodeLabel(label string) (string, int, error) {
	symbol, err := LabelToSymbol(label)
	if err != nil {
		return "", 0, ErrDecorate(err, "DecodeLabel")
	}
	rest := strings.TrimSpace(label)[len(symbol):]
	start := strings.IndexAny(rest, "0123456789")
	if start < 0 {
		return symbol, 0, nil
	}
	end := start
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	tag, err := strconv.Atoi(rest[start:end])
	if err != nil {
		return "", 0, CError{fmt.Sprintf("Tag in label %q out of range", label), []string{"DecodeLabel"}}
	}
	return symbol, tag, nil
}

//EncodeLabel builds a label from a symbol and a tag. A tag of 0 gives the bare symbol.
func EncodeLabel(symbol string, tag int) string {
	if tag == 0 {
		return symbol
	}
	return symbol + strconv.Itoa(tag)
}
