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

package units

import (
	"reflect"
	"testing"

	"gopkg.in/yaml.v2"
	"naive.systems/sosinspect/checklib/testlib"
)

const psDumpText = `USER         PID %CPU %MEM    VSZ   RSS TTY      STAT START   TIME COMMAND
root        2801  0.1  0.2 812164 71280 ?        Ssl  Feb01   9:12 /var/lib/juju/tools/unit-ceph-osd-0/jujud unit --data-dir /var/lib/juju --unit-name ceph-osd/0 --debug
root        2900  0.0  0.1 737340 52012 ?        Ssl  Feb01   3:02 /var/lib/juju/tools/unit-ntp-3/jujud unit --data-dir /var/lib/juju --unit-name ntp/3 --debug
root        3100  0.0  0.1 737340 52012 ?        Ssl  Feb01   3:02 /var/lib/juju/tools/unit-keystone-1/jujud unit --data-dir /var/lib/juju --unit-name keystone/1 --debug
root        3101  0.0  0.1 737340 52012 ?        Ssl  Feb01   3:02 /var/lib/juju/tools/unit-keystone-2/jujud unit --data-dir /var/lib/juju --unit-name keystone/2 --debug
root        3200  0.0  0.0  10052  3312 ?        Ss   Feb01   0:00 /usr/sbin/cron -f
`

func withJujuLogs(s *testlib.Snapshot) *testlib.Snapshot {
	return s.
		Write("var/log/juju/machine-1.log", "2021-02-01 10:00:00 INFO juju.cmd supercommand.go:56 running jujud\n").
		Write("var/log/juju/unit-ceph-osd-0.log", "").
		Write("var/log/juju/unit-ntp-3.log", "").
		Write("var/log/juju/unit-ntp-2.log", "").
		Write("var/log/juju/unit-nova-compute-0.log", "").
		WriteGzip("var/log/juju/unit-ceph-osd-0.log.1.gz", "rotated\n")
}

func TestUnits(t *testing.T) {
	snap := withJujuLogs(testlib.NewSnapshot(t)).Write("ps", psDumpText)
	_, rep := testlib.RunCheck(t, UnitChecks{}, snap.Context())
	testlib.CompareGolden(t, testlib.EncodeYAML(t, rep), "units.yaml")
}

func TestUnitsWithoutJujuLogs(t *testing.T) {
	snap := testlib.NewSnapshot(t).Write("ps", psDumpText)
	st, _ := testlib.RunCheck(t, UnitChecks{}, snap.Context())
	if len(st.Sections()) != 0 {
		t.Errorf("unexpected sections without a juju log directory: %v", st.Sections())
	}
}

func TestUnitsWithoutProcessList(t *testing.T) {
	snap := withJujuLogs(testlib.NewSnapshot(t))
	st, _ := testlib.RunCheck(t, UnitChecks{}, snap.Context())
	expected := yaml.MapSlice{
		{Key: "stopped", Value: []string{"ceph-osd-0", "nova-compute-0", "ntp-2", "ntp-3"}},
	}
	if got := st.Sections(); len(got) != 1 || !reflect.DeepEqual(got[0].Value, expected) {
		t.Errorf("got sections %v, expected units %v", got, expected)
	}
}

func TestClassify(t *testing.T) {
	set := func(units ...string) map[string]bool {
		m := make(map[string]bool)
		for _, u := range units {
			m[u] = true
		}
		return m
	}
	for _, testCase := range []struct {
		name     string
		logged   map[string]bool
		running  map[string]bool
		expected yaml.MapSlice
	}{
		{
			name:     "nothing",
			expected: nil,
		},
		{
			name:    "only containers",
			running: set("mysql-0", "mysql-10", "mysql-9", "vault-1"),
			expected: yaml.MapSlice{
				{Key: "lxd", Value: []string{"mysql-10", "vault-1"}},
			},
		},
		{
			name:    "old unit of a local application",
			logged:  set("ntp-2", "ntp-3", "ceph-osd-1"),
			running: set("ntp-3"),
			expected: yaml.MapSlice{
				{Key: "local", Value: []string{"ntp-3"}},
				{Key: "stopped", Value: []string{"ceph-osd-1"}},
			},
		},
		{
			name:    "unparsable stopped unit",
			logged:  set("weird"),
			running: set(),
			expected: yaml.MapSlice{
				{Key: "stopped", Value: []string{"weird"}},
			},
		},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			if got := classify(testCase.logged, testCase.running); !reflect.DeepEqual(got, testCase.expected) {
				t.Errorf("got %v, expected %v", got, testCase.expected)
			}
		})
	}
}

func TestSplitUnit(t *testing.T) {
	for _, testCase := range []struct {
		unit string
		app  string
		n    int
		ok   bool
	}{
		{"ceph-osd-12", "ceph-osd", 12, true},
		{"ntp-0", "ntp", 0, true},
		{"nova-compute-kvm-3", "nova-compute-kvm", 3, true},
		{"weird", "", 0, false},
	} {
		t.Run(testCase.unit, func(t *testing.T) {
			app, n, ok := splitUnit(testCase.unit)
			if app != testCase.app || n != testCase.n || ok != testCase.ok {
				t.Errorf("got %q, %d, %v", app, n, ok)
			}
		})
	}
}
