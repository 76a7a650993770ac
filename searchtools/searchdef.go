/*
NaiveSystems Analyze - A tool for static code analysis
Copyright (C) 2023  Naive Systems Ltd.

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package searchtools runs tagged regular expressions over the files of
// a snapshot root in a single pass and collects the matching lines.
package searchtools

import (
	"fmt"
)

// SearchDef describes one pattern of interest. Hint, when set, is a
// substring that must appear on any line Expr could match; lines
// without it are rejected before the regexp runs.
type SearchDef struct {
	Expr string
	Tag  string
	Hint string
}

// PatternError reports a SearchDef or file glob rejected by
// AddSearchTerm.
type PatternError struct {
	Tag  string
	Expr string
	Glob string
	Err  error
}

func (e *PatternError) Error() string {
	if e.Glob != "" {
		return fmt.Sprintf("search %q: invalid file glob %q: %v", e.Tag, e.Glob, e.Err)
	}
	return fmt.Sprintf("search %q: invalid expression %q: %v", e.Tag, e.Expr, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}
