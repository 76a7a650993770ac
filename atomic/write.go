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

// Package atomic replaces output files so readers never see a partial
// report.
package atomic

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

func Write(name string, data []byte) error {
	return WriteFunc(name, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// WriteFunc streams the content produced by fn into a temporary file
// next to name and renames it over name once fn succeeds.
func WriteFunc(name string, fn func(w io.Writer) error) error {
	dir := filepath.Dir(name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "os.MkdirAll %s", dir)
	}
	f, err := os.CreateTemp(dir, "tmp-*-"+filepath.Base(name))
	if err != nil {
		return errors.Wrap(err, "os.CreateTemp")
	}
	defer os.Remove(f.Name())
	defer f.Close()
	if err := os.Chmod(f.Name(), 0644); err != nil {
		return errors.Wrap(err, "os.Chmod")
	}
	bw := bufio.NewWriter(f)
	if err := fn(bw); err != nil {
		return errors.Wrapf(err, "failed to write to file %s", f.Name())
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrapf(err, "failed to write to file %s", f.Name())
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "failed to close file %s", f.Name())
	}
	if err := os.Rename(f.Name(), name); err != nil {
		return errors.Wrapf(err, "failed to rename file %s to %s", f.Name(), name)
	}
	return nil
}
