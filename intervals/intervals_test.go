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

package intervals

import (
	"errors"
	"reflect"
	"testing"

	"gopkg.in/yaml.v2"
)

func TestParse(t *testing.T) {
	for _, testCase := range [...]struct {
		name     string
		spec     string
		expected []int
	}{
		{
			name:     "mixed ranges and singles",
			spec:     "0-4,8,9,28-32",
			expected: []int{0, 1, 2, 3, 4, 8, 9, 28, 29, 30, 31, 32},
		},
		{
			name:     "single id",
			spec:     "7",
			expected: []int{7},
		},
		{
			name:     "overlapping ranges keep duplicates",
			spec:     "1-3,2-4",
			expected: []int{1, 2, 3, 2, 3, 4},
		},
		{
			name:     "blanks around tokens",
			spec:     " 1 , 3-4 ",
			expected: []int{1, 3, 4},
		},
		{
			name:     "reversed range expands to nothing",
			spec:     "5-3,9",
			expected: []int{9},
		},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			ids, err := Parse(testCase.spec)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", testCase.spec, err)
			}
			if !reflect.DeepEqual(ids, testCase.expected) {
				t.Errorf("unexpected result for %q. got: %v. expected: %v.", testCase.spec, ids, testCase.expected)
			}
		})
	}
}

func TestParseRejectsMalformedTokens(t *testing.T) {
	for _, spec := range []string{"", "a", "1,,2", "1-", "-3", "1-2-3", "0x10", "4;5"} {
		t.Run(spec, func(t *testing.T) {
			_, err := Parse(spec)
			var formatErr *FormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("Parse(%q) error = %v, expected *FormatError", spec, err)
			}
			if formatErr.Spec != spec {
				t.Errorf("FormatError.Spec = %q, expected %q", formatErr.Spec, spec)
			}
		})
	}
}

func TestCompress(t *testing.T) {
	tokens := Compress([]int{1, 2, 3, 5, 7, 8})
	out, err := yaml.Marshal(tokens)
	if err != nil {
		t.Fatal(err)
	}
	expected := "- 1-3\n- 5\n- 7-8\n"
	if string(out) != expected {
		t.Errorf("unexpected yaml. got: %q. expected: %q.", out, expected)
	}
	if s := Format([]int{1, 2, 3, 5, 7, 8}, ""); s != "1-3,5,7-8" {
		t.Errorf("Format = %q", s)
	}
	if s := Format(nil, ""); s != "" {
		t.Errorf("Format(nil) = %q, expected empty", s)
	}
}

func TestCompressDoesNotSort(t *testing.T) {
	got := Format([]int{3, 1, 2}, ",")
	if got != "3,1-2" {
		t.Errorf("Format of unsorted input = %q, expected %q", got, "3,1-2")
	}
}

func TestRoundTrip(t *testing.T) {
	for _, ids := range [][]int{
		{0},
		{0, 1},
		{0, 2, 4},
		{1, 2, 3, 5, 7, 8},
		{0, 1, 2, 3, 4, 8, 9, 28, 29, 30, 31, 32},
		{10, 11, 12, 13, 100},
	} {
		for _, sep := range []string{",", ""} {
			got, err := Parse(Format(ids, sep))
			if err != nil {
				t.Fatalf("Parse(Format(%v)) error: %v", ids, err)
			}
			if !reflect.DeepEqual(got, ids) {
				t.Errorf("round trip of %v gave %v", ids, got)
			}
		}
	}
}

func TestSetOperations(t *testing.T) {
	a := MustParse("0-5")
	b := MustParse("4-8,2")
	if got := Intersection(a, b); !reflect.DeepEqual(got, []int{2, 4, 5}) {
		t.Errorf("Intersection = %v", got)
	}
	if got := Union(a, b); !reflect.DeepEqual(got, MustParse("0-8")) {
		t.Errorf("Union = %v", got)
	}
	if got := Unique([]int{3, 1, 3, 2, 1}); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("Unique = %v", got)
	}
}

func TestRelationships(t *testing.T) {
	for _, testCase := range [...]struct {
		name       string
		a, b, c    []int
		intersects bool
		covered    bool
	}{
		{name: "covered by b", a: MustParse("2-3"), b: MustParse("0-7"), c: nil, intersects: true, covered: true},
		{name: "covered by b and c", a: MustParse("2-5"), b: MustParse("2-3"), c: MustParse("4-5"), intersects: true, covered: true},
		{name: "partially covered", a: MustParse("2-6"), b: MustParse("2-3"), c: MustParse("4-5"), intersects: true, covered: false},
		{name: "disjoint", a: MustParse("8-9"), b: MustParse("2-3"), c: MustParse("4-5"), intersects: false, covered: false},
		{name: "empty a", a: nil, b: MustParse("2-3"), c: nil, intersects: false, covered: true},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			if got := Intersects(testCase.a, testCase.b); got != testCase.intersects {
				t.Errorf("Intersects = %v, expected %v", got, testCase.intersects)
			}
			if got := IsSubsetOfUnion(testCase.a, testCase.b, testCase.c); got != testCase.covered {
				t.Errorf("IsSubsetOfUnion = %v, expected %v", got, testCase.covered)
			}
		})
	}
}

func TestSpanCount(t *testing.T) {
	nodes := map[int][]int{0: MustParse("0-7"), 1: MustParse("8-15"), 2: MustParse("16-23")}
	for _, testCase := range [...]struct {
		spec     string
		expected int
	}{
		{"1-3", 1},
		{"6-9", 2},
		{"0,8,16", 3},
		{"30-31", 0},
	} {
		if got := SpanCount(MustParse(testCase.spec), nodes); got != testCase.expected {
			t.Errorf("SpanCount(%s) = %d, expected %d", testCase.spec, got, testCase.expected)
		}
	}
}
