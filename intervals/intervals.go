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

// Package intervals parses, compresses and relates sets of integer ids
// such as CPU core numbers written as "0-4,8,9,28-32".
package intervals

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/exp/slices"
)

// FormatError is returned by Parse when a token is neither an integer
// nor an "a-b" range.
type FormatError struct {
	Spec  string
	Token string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid interval token %q in %q", e.Token, e.Spec)
}

// Parse expands a comma-separated list of ids and inclusive ranges.
// Duplicates from overlapping ranges are kept. A range whose start is
// greater than its end expands to nothing.
func Parse(spec string) ([]int, error) {
	var ids []int
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		start, end, isRange := strings.Cut(token, "-")
		if !isRange {
			v, err := parseID(token)
			if err != nil {
				return nil, errors.WithStack(&FormatError{Spec: spec, Token: token})
			}
			ids = append(ids, v)
			continue
		}
		lo, err := parseID(strings.TrimSpace(start))
		if err != nil {
			return nil, errors.WithStack(&FormatError{Spec: spec, Token: token})
		}
		hi, err := parseID(strings.TrimSpace(end))
		if err != nil {
			return nil, errors.WithStack(&FormatError{Spec: spec, Token: token})
		}
		for v := lo; v <= hi; v++ {
			ids = append(ids, v)
		}
	}
	return ids, nil
}

func parseID(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty id")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, errors.Newf("non-digit %q", c)
		}
	}
	return strconv.Atoi(s)
}

// MustParse is like Parse but panics on malformed input. Intended for
// constants in tests and tables.
func MustParse(spec string) []int {
	ids, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return ids
}

// Token is one element of a compressed id list: a single id when
// Start == End, an inclusive range otherwise.
type Token struct {
	Start int
	End   int
}

func (t Token) IsRange() bool {
	return t.End != t.Start
}

func (t Token) String() string {
	if t.IsRange() {
		return fmt.Sprintf("%d-%d", t.Start, t.End)
	}
	return strconv.Itoa(t.Start)
}

// MarshalYAML renders ranges as strings and single ids as integers.
func (t Token) MarshalYAML() (interface{}, error) {
	if t.IsRange() {
		return t.String(), nil
	}
	return t.Start, nil
}

// Compress groups maximal runs of consecutive ids. The input is not
// sorted first, so only sorted input gives a canonical result.
func Compress(ids []int) []Token {
	var tokens []Token
	for i, v := range ids {
		if i > 0 && v == tokens[len(tokens)-1].End+1 {
			tokens[len(tokens)-1].End = v
			continue
		}
		tokens = append(tokens, Token{Start: v, End: v})
	}
	return tokens
}

// Format compresses ids and joins the tokens with sep ("," when empty).
func Format(ids []int, sep string) string {
	if sep == "" {
		sep = ","
	}
	tokens := Compress(ids)
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		parts = append(parts, t.String())
	}
	return strings.Join(parts, sep)
}

// Unique returns the sorted, duplicate-free copy of ids.
func Unique(ids []int) []int {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// Intersection returns the sorted ids present in both a and b.
func Intersection(a, b []int) []int {
	var out []int
	for _, v := range Unique(a) {
		if slices.Contains(b, v) {
			out = append(out, v)
		}
	}
	return out
}

// Union returns the sorted ids present in a or b.
func Union(a, b []int) []int {
	return Unique(append(slices.Clone(a), b...))
}

func Intersects(a, b []int) bool {
	for _, v := range a {
		if slices.Contains(b, v) {
			return true
		}
	}
	return false
}

// IsSubsetOfUnion reports whether every id of a is covered by
// (a∩b) ∪ (a∩c).
func IsSubsetOfUnion(a, b, c []int) bool {
	for _, v := range a {
		if !slices.Contains(b, v) && !slices.Contains(c, v) {
			return false
		}
	}
	return true
}

// SpanCount returns how many groups share at least one id with a.
func SpanCount(a []int, groups map[int][]int) int {
	n := 0
	for _, members := range groups {
		if Intersects(a, members) {
			n++
		}
	}
	return n
}
