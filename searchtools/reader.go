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
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/golang/glog"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"golang.org/x/text/transform"
)

// Enough bytes for filetype to recognise the compressed formats.
const headerSize = 262

type fileScan struct {
	hits    []*Hit
	stats   Stats
	skipped bool
}

// openFile returns a reader over the decoded text of name, transparently
// decompressing gzip and bzip2 rotations.
func (s *FileSearcher) openFile(name string) (io.Reader, io.Closer, error) {
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(name)))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open %s", name)
	}
	br := bufio.NewReader(f)
	head, err := br.Peek(headerSize)
	if err != nil && err != io.EOF && !errors.Is(err, bufio.ErrBufferFull) {
		f.Close()
		return nil, nil, errors.Wrapf(err, "read %s", name)
	}
	var r io.Reader = br
	kind, _ := filetype.Match(head)
	switch kind {
	case matchers.TypeGz:
		zr, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, nil, errors.Wrapf(err, "gzip %s", name)
		}
		r = zr
	case matchers.TypeBz2:
		r = bzip2.NewReader(br)
	}
	if s.decoder != nil {
		r = transform.NewReader(r, s.decoder.NewDecoder())
	}
	return r, f, nil
}

func (s *FileSearcher) scanFile(t target) fileScan {
	var scan fileScan
	r, closer, err := s.openFile(t.name)
	if err != nil {
		glog.Warningf("skipping %s: %v", t.name, err)
		scan.skipped = true
		scan.stats.FilesSkipped++
		return scan
	}
	defer closer.Close()
	if len(t.terms) == 0 {
		scan.stats.FilesScanned++
		return scan
	}

	br := bufio.NewReader(r)
	lineNumber := 0
	for {
		line, readErr := br.ReadString('\n')
		if line != "" {
			lineNumber++
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			scan.stats.LinesScanned++
			for _, i := range t.terms {
				if h := s.terms[i].match(t.name, lineNumber, line, &scan.stats); h != nil {
					scan.hits = append(scan.hits, h)
				}
			}
		}
		if readErr != nil {
			if readErr != io.EOF {
				glog.Warningf("stopped reading %s at line %d: %v", t.name, lineNumber, readErr)
			}
			break
		}
	}
	scan.stats.FilesScanned++
	glog.V(2).Infof("%s: %d line(s), %d hit(s)", t.name, lineNumber, len(scan.hits))
	return scan
}

func (t term) match(source string, lineNumber int, line string, stats *Stats) *Hit {
	if t.def.Hint != "" && !strings.Contains(line, t.def.Hint) {
		stats.HintRejections++
		return nil
	}
	stats.RegexEvaluations++
	loc := t.re.FindStringSubmatchIndex(line)
	if loc == nil {
		return nil
	}
	stats.Hits++
	return newHit(t.def.Tag, source, lineNumber, line, loc)
}
