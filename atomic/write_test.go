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

package atomic

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestWrite(t *testing.T) {
	name := filepath.Join(t.TempDir(), "out", "report.yaml")
	if err := Write(name, []byte("first\n")); err != nil {
		t.Fatal(err)
	}
	if err := Write(name, []byte("second\n")); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second\n" {
		t.Errorf("unexpected content %q", data)
	}
	entries, err := os.ReadDir(filepath.Dir(name))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestWriteFuncFailureKeepsOldContent(t *testing.T) {
	name := filepath.Join(t.TempDir(), "report.yaml")
	if err := Write(name, []byte("good\n")); err != nil {
		t.Fatal(err)
	}
	err := WriteFunc(name, func(w io.Writer) error {
		io.WriteString(w, "partial")
		return errors.New("encoder failed")
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	data, _ := os.ReadFile(name)
	if string(data) != "good\n" {
		t.Errorf("content replaced after failure: %q", data)
	}
}
