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

package check

import (
	"path/filepath"
	"testing"
)

func TestStateSet(t *testing.T) {
	st := NewState(&Context{})
	st.Set("a", 1)
	st.Set("b", 2)
	st.Set("a", 3)
	sections := st.Sections()
	if len(sections) != 2 || sections[0].Key != "a" || sections[0].Value != 3 || sections[1].Key != "b" {
		t.Errorf("unexpected sections %v", sections)
	}
}

func TestNewSearcherUsesRoot(t *testing.T) {
	ctx := &Context{DataRoot: filepath.Join(t.TempDir(), "missing")}
	s := ctx.NewSearcher()
	if s == nil {
		t.Fatal("nil searcher")
	}
	if rs := s.Search(); rs.Len() != 0 {
		t.Errorf("expected no hits from an empty searcher")
	}
}
