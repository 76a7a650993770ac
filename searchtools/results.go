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

package searchtools

import (
	"iter"
	"sort"

	"github.com/cockroachdb/errors"
)

// Hit is one line matched by one SearchDef. Group 0 is the whole match,
// groups 1..NumGroups() are the parenthesised subexpressions.
type Hit struct {
	Tag        string
	Source     string
	LineNumber int
	Line       string
	groups     []string
	present    []bool
}

func newHit(tag, source string, lineNumber int, line string, loc []int) *Hit {
	n := len(loc) / 2
	h := &Hit{
		Tag:        tag,
		Source:     source,
		LineNumber: lineNumber,
		Line:       line,
		groups:     make([]string, n),
		present:    make([]bool, n),
	}
	for i := 0; i < n; i++ {
		if loc[2*i] < 0 {
			continue
		}
		h.groups[i] = line[loc[2*i]:loc[2*i+1]]
		h.present[i] = true
	}
	return h
}

func (h *Hit) NumGroups() int {
	return len(h.groups) - 1
}

// Get returns the text captured by group i. ok is false when the group
// is optional and did not take part in the match. Asking for a group the
// expression does not define panics with an assertion failure.
func (h *Hit) Get(i int) (text string, ok bool) {
	if i < 0 || i >= len(h.groups) {
		panic(errors.AssertionFailedf("search %q has %d group(s), group %d requested", h.Tag, h.NumGroups(), i))
	}
	return h.groups[i], h.present[i]
}

// Value is Get without the presence flag.
func (h *Hit) Value(i int) string {
	v, _ := h.Get(i)
	return v
}

// Stats counts the work done by one Search.
type Stats struct {
	FilesScanned     int
	FilesSkipped     int
	LinesScanned     int
	HintRejections   int
	RegexEvaluations int
	Hits             int
}

func (s *Stats) add(o Stats) {
	s.FilesScanned += o.FilesScanned
	s.FilesSkipped += o.FilesSkipped
	s.LinesScanned += o.LinesScanned
	s.HintRejections += o.HintRejections
	s.RegexEvaluations += o.RegexEvaluations
	s.Hits += o.Hits
}

// ResultSet holds the hits of one Search in file and line order. It is
// read-only once returned.
type ResultSet struct {
	hits  []*Hit
	byTag map[string][]*Hit
	tags  []string
	files []string
	stats Stats
}

func newResultSet() *ResultSet {
	return &ResultSet{byTag: make(map[string][]*Hit)}
}

func (r *ResultSet) add(h *Hit) {
	if _, ok := r.byTag[h.Tag]; !ok {
		r.tags = append(r.tags, h.Tag)
	}
	r.byTag[h.Tag] = append(r.byTag[h.Tag], h)
	r.hits = append(r.hits, h)
}

// FindByTag yields the hits recorded under tag. The sequence can be
// ranged over any number of times.
func (r *ResultSet) FindByTag(tag string) iter.Seq[*Hit] {
	return func(yield func(*Hit) bool) {
		for _, h := range r.byTag[tag] {
			if !yield(h) {
				return
			}
		}
	}
}

// Hits returns a copy of the hits recorded under tag.
func (r *ResultSet) Hits(tag string) []*Hit {
	return append([]*Hit(nil), r.byTag[tag]...)
}

// SortedByGroup returns the hits of tag stably sorted by the text of
// group i, typically a leading timestamp. Like Get, it panics when i is
// not a group of the tag's expression, however many hits there are.
func (r *ResultSet) SortedByGroup(tag string, i int) []*Hit {
	hits := r.Hits(tag)
	if len(hits) > 0 {
		hits[0].Get(i)
	}
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Value(i) < hits[b].Value(i)
	})
	return hits
}

// Tags lists the tags that produced at least one hit, in first-hit order.
func (r *ResultSet) Tags() []string {
	return append([]string(nil), r.tags...)
}

func (r *ResultSet) Len() int {
	return len(r.hits)
}

// Files lists the files read, relative to the root, in scan order.
func (r *ResultSet) Files() []string {
	return append([]string(nil), r.files...)
}

func (r *ResultSet) Stats() Stats {
	return r.stats
}
