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

// Package testlib builds snapshot roots for check tests and compares
// check output against golden files.
package testlib

import (
	"bytes"
	"compress/gzip"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"naive.systems/sosinspect/check"
	"naive.systems/sosinspect/report"
)

var update = flag.Bool("update", false, "rewrite golden files with the current output")

// Snapshot is a temporary data root removed at the end of the test.
type Snapshot struct {
	t    testing.TB
	Root string
}

func NewSnapshot(t testing.TB) *Snapshot {
	return &Snapshot{t: t, Root: t.TempDir()}
}

func (s *Snapshot) write(name string, data []byte) *Snapshot {
	s.t.Helper()
	path := filepath.Join(s.Root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		s.t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		s.t.Fatal(err)
	}
	return s
}

// Write creates name, relative to the root, with content.
func (s *Snapshot) Write(name, content string) *Snapshot {
	s.t.Helper()
	return s.write(name, []byte(content))
}

// WriteGzip creates name with content gzip-compressed, as logrotate
// leaves older rotations.
func (s *Snapshot) WriteGzip(name, content string) *Snapshot {
	s.t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(content)); err != nil {
		s.t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		s.t.Fatal(err)
	}
	return s.write(name, buf.Bytes())
}

func (s *Snapshot) Context() *check.Context {
	return &check.Context{DataRoot: s.Root, ScanWorkers: 1}
}

// RunCheck runs c and folds its state into a fresh report, failing the
// test if the check returns an error.
func RunCheck(t testing.TB, c check.Check, ctx *check.Context) (*check.State, *report.Report) {
	t.Helper()
	st := check.NewState(ctx)
	if err := c.Run(ctx, st); err != nil {
		t.Fatalf("%s: %v", check.ID(c), err)
	}
	rep := report.New()
	rep.Fold(c.Plugin(), c.Name(), st.Sections(), st.Issues.Finalize(), st.KnownBugs.Entries())
	return st, rep
}

// EncodeYAML returns the full YAML report.
func EncodeYAML(t testing.TB, rep *report.Report) string {
	t.Helper()
	var buf bytes.Buffer
	if err := rep.Encode(&buf, report.YAML, false); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

// CompareGolden compares got with testdata/<name>, or rewrites the file
// when the test runs with -update.
func CompareGolden(t testing.TB, got, name string) {
	t.Helper()
	path := filepath.Join("testdata", name)
	if *update {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(got), 0644); err != nil {
			t.Fatal(err)
		}
		return
	}
	expected, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden file: %v", err)
	}
	if got != string(expected) {
		t.Errorf("output differs from %s.\ngot:\n%s\nexpected:\n%s", path, got, expected)
	}
}
