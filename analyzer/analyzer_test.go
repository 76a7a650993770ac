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

package analyzer

import (
	"bytes"
	"flag"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"naive.systems/sosinspect/check"
	"naive.systems/sosinspect/checklib/options"
	"naive.systems/sosinspect/checklib/testlib"
	"naive.systems/sosinspect/plugins"
	"naive.systems/sosinspect/report"
)

type fakeCheck struct {
	plugin, name string
	err          error
}

func (f fakeCheck) Plugin() string {
	return f.plugin
}

func (f fakeCheck) Name() string {
	return f.name
}

func (f fakeCheck) Run(ctx *check.Context, st *check.State) error {
	if f.err != nil {
		return f.err
	}
	st.Issues.AddInfo(f.name+" ran", nil)
	return nil
}

func newOptions(t *testing.T, args ...string) *options.SharedOptions {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := options.NewSharedOptions(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	return opts
}

func ids(checks []check.Check) []string {
	var out []string
	for _, c := range checks {
		out = append(out, check.ID(c))
	}
	return out
}

func TestSelect(t *testing.T) {
	all := []check.Check{
		fakeCheck{plugin: "a", name: "one"},
		fakeCheck{plugin: "b", name: "two"},
		fakeCheck{plugin: "a", name: "three"},
	}
	for _, testCase := range []struct {
		name     string
		ids      []string
		expected []string
	}{
		{"all", nil, []string{"a/one", "b/two", "a/three"}},
		{"subset keeps registration order", []string{"a/three", "a/one"}, []string{"a/one", "a/three"}},
		{"duplicates", []string{"b/two", "b/two"}, []string{"b/two"}},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			selected, err := Select(all, testCase.ids)
			if err != nil {
				t.Fatal(err)
			}
			if got := ids(selected); !reflect.DeepEqual(got, testCase.expected) {
				t.Errorf("got %v, expected %v", got, testCase.expected)
			}
		})
	}
}

func TestSelectUnknown(t *testing.T) {
	all := []check.Check{fakeCheck{plugin: "a", name: "one"}}
	_, err := Select(all, []string{"a/one", "a/two"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "a/two") {
		t.Errorf("error %q does not name the unknown check", err)
	}
	if hints := errors.GetAllHints(err); len(hints) != 1 || !strings.Contains(hints[0], "a/one") {
		t.Errorf("unexpected hints %q", hints)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	all := []check.Check{
		fakeCheck{plugin: "a", name: "one"},
		fakeCheck{plugin: "a", name: "broken", err: errors.New("bad input")},
		fakeCheck{plugin: "b", name: "two"},
	}
	result, err := Run(all, newOptions(t, "-data_root", t.TempDir(), "-num_workers", "2"))
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0].Error(), "a/broken") {
		t.Errorf("unexpected errors %v", result.Errors)
	}
	if got, expected := result.Report.Checks(), []string{"a/one", "b/two"}; !reflect.DeepEqual(got, expected) {
		t.Errorf("folded checks %v, expected %v", got, expected)
	}
	if result.Report.Counts().Info != 2 {
		t.Errorf("unexpected counts %+v", result.Report.Counts())
	}
}

func TestRunUnknownCheck(t *testing.T) {
	all := []check.Check{fakeCheck{plugin: "a", name: "one"}}
	if _, err := Run(all, newOptions(t, "-checks", "a/zero")); err == nil {
		t.Error("expected an error")
	}
}

func TestRunBundledChecks(t *testing.T) {
	snap := testlib.NewSnapshot(t).
		Write("etc/nova/nova.conf", "[DEFAULT]\nvcpu_pin_set = 2-5\n").
		Write("var/log/ceph/ceph.log",
			"2021-02-03 01:00:00.000 7f1d mon.juju-1 [WRN] Health check update: 7 slow requests are blocked > 32 sec (REQUEST_SLOW)\n")
	expected := `openstack:
  cpu-pinning-checks:
    input:
      nova:
        vcpu_pin_set: 2-5
    results:
      errors:
      - vcpu_pin_set is neither a subset of isolcpus nor cpuaffinity
  known-bugs:
  - https://pad.lv/1897275: 'cpu pinning check: vcpu_pin_set is neither a subset of isolcpus nor cpuaffinity'
storage:
  daemon-events:
    slow-requests:
      "2021-02-03": 7
`
	for _, workers := range []string{"1", "4"} {
		t.Run("workers="+workers, func(t *testing.T) {
			result, err := Run(plugins.All(), newOptions(t, "-data_root", snap.Root, "-num_workers", workers))
			if err != nil {
				t.Fatal(err)
			}
			if len(result.Errors) != 0 {
				t.Fatalf("unexpected errors %v", result.Errors)
			}
			var buf bytes.Buffer
			if err := result.Report.Encode(&buf, report.YAML, false); err != nil {
				t.Fatal(err)
			}
			if got := buf.String(); got != expected {
				t.Errorf("unexpected report.\ngot:\n%s\nexpected:\n%s", got, expected)
			}
		})
	}
}
