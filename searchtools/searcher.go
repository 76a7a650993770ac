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
	"os"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"
	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

type term struct {
	def SearchDef
	re  *regexp.Regexp
}

// FileSearcher holds the searches registered against a snapshot root.
// Globs are resolved only when Search runs.
type FileSearcher struct {
	root     string
	allLogs  bool
	workers  int
	decoder  encoding.Encoding
	terms    []term
	globs    []string
	globTerm map[string][]int
}

type Option func(*FileSearcher)

// WithAllLogs makes every glob also match rotated siblings of the live
// file, e.g. "ceph.log.1" and "ceph.log.2.gz" next to "ceph.log".
func WithAllLogs(allLogs bool) Option {
	return func(s *FileSearcher) {
		s.allLogs = allLogs
	}
}

// WithWorkers reads up to n files concurrently. Hits are still ordered
// as if files were read one after another.
func WithWorkers(n int) Option {
	return func(s *FileSearcher) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithCharset decodes files from the named IANA charset to UTF-8.
func WithCharset(name string) Option {
	return func(s *FileSearcher) {
		if name == "" || strings.EqualFold(name, "utf-8") {
			return
		}
		enc, err := ianaindex.MIME.Encoding(name)
		if err != nil || enc == nil {
			glog.Warningf("unsupported charset %q, reading files as UTF-8", name)
			return
		}
		s.decoder = enc
	}
}

func NewFileSearcher(root string, opts ...Option) *FileSearcher {
	s := &FileSearcher{
		root:     root,
		workers:  1,
		globTerm: make(map[string][]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddSearchTerm registers def against every file matching glob. The glob
// is relative to the root; a leading "/" is ignored.
func (s *FileSearcher) AddSearchTerm(def SearchDef, glob string) error {
	if def.Tag == "" {
		return errors.WithStack(&PatternError{Expr: def.Expr, Err: errors.New("empty tag")})
	}
	re, err := regexp.Compile(def.Expr)
	if err != nil {
		return errors.WithStack(&PatternError{Tag: def.Tag, Expr: def.Expr, Err: err})
	}
	glob = s.cleanGlob(glob)
	if !doublestar.ValidatePattern(glob) {
		return errors.WithStack(&PatternError{Tag: def.Tag, Expr: def.Expr, Glob: glob, Err: doublestar.ErrBadPattern})
	}
	s.terms = append(s.terms, term{def: def, re: re})
	s.addGlob(glob)
	s.globTerm[glob] = append(s.globTerm[glob], len(s.terms)-1)
	return nil
}

// AddGlob registers glob without a search: matching files are opened and
// listed by ResultSet.Files, but their lines are not read unless another
// search covers them.
func (s *FileSearcher) AddGlob(glob string) error {
	glob = s.cleanGlob(glob)
	if !doublestar.ValidatePattern(glob) {
		return errors.WithStack(&PatternError{Glob: glob, Err: doublestar.ErrBadPattern})
	}
	s.addGlob(glob)
	return nil
}

func (s *FileSearcher) cleanGlob(glob string) string {
	glob = path.Clean(strings.TrimLeft(glob, "/"))
	if s.allLogs {
		glob += "*"
	}
	return glob
}

func (s *FileSearcher) addGlob(glob string) {
	if _, ok := s.globTerm[glob]; !ok {
		s.globs = append(s.globs, glob)
		s.globTerm[glob] = nil
	}
}

type target struct {
	name  string
	terms []int
}

// resolve expands the registered globs in registration order. A file
// matched by several globs is read once, at its first position, with the
// searches of all those globs.
func (s *FileSearcher) resolve() []target {
	var targets []target
	index := make(map[string]int)
	fsys := os.DirFS(s.root)
	for _, glob := range s.globs {
		matches, err := doublestar.Glob(fsys, glob, doublestar.WithFilesOnly())
		if err != nil {
			glog.Warningf("failed to expand %s under %s: %v", glob, s.root, err)
			continue
		}
		sort.Strings(matches)
		glog.V(1).Infof("%s matched %d file(s) under %s", glob, len(matches), s.root)
		for _, name := range matches {
			i, seen := index[name]
			if !seen {
				i = len(targets)
				index[name] = i
				targets = append(targets, target{name: name})
			}
			targets[i].terms = mergeTerms(targets[i].terms, s.globTerm[glob])
		}
	}
	return targets
}

func mergeTerms(a, b []int) []int {
	out := append(a, b...)
	sort.Ints(out)
	n := 0
	for i, v := range out {
		if i == 0 || v != out[n-1] {
			out[n] = v
			n++
		}
	}
	return out[:n]
}

// Search reads every resolved file once and returns the hits. Missing
// or unreadable files contribute nothing.
func (s *FileSearcher) Search() *ResultSet {
	targets := s.resolve()
	scans := make([]fileScan, len(targets))
	if s.workers <= 1 || len(targets) <= 1 {
		for i, t := range targets {
			scans[i] = s.scanFile(t)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(s.workers)
		for i, t := range targets {
			g.Go(func() error {
				scans[i] = s.scanFile(t)
				return nil
			})
		}
		_ = g.Wait()
	}
	rs := newResultSet()
	for i, scan := range scans {
		rs.stats.add(scan.stats)
		if scan.skipped {
			continue
		}
		rs.files = append(rs.files, targets[i].name)
		for _, h := range scan.hits {
			rs.add(h)
		}
	}
	return rs
}
