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

// Package units reports the juju units of a host: those running with a
// local log, those that left a log but no longer run, and those only
// seen in the process list, i.e. running in containers on the host.
package units

import (
	"path"
	"regexp"
	"sort"
	"strconv"

	"gopkg.in/yaml.v2"
	"naive.systems/sosinspect/check"
	"naive.systems/sosinspect/searchtools"
)

const (
	jujuLogs = "var/log/juju"
	psDump   = "ps"
	unitsKey = "units"
)

var agentSearch = searchtools.SearchDef{
	Expr: `.+unit-([0-9a-z\-]+-[0-9]+).*`,
	Tag:  "unit-agent",
	Hint: "unit-",
}

var (
	unitLogName = regexp.MustCompile(`^unit-(.+)\.log$`)
	unitName    = regexp.MustCompile(`^([0-9a-z\-]+)-([0-9]+)`)
)

// UnitChecks classifies the units found in the process list and in the
// juju log directory.
type UnitChecks struct{}

func (UnitChecks) Plugin() string {
	return "juju"
}

func (UnitChecks) Name() string {
	return "unit-info"
}

func (UnitChecks) Run(ctx *check.Context, st *check.State) error {
	// Log names are listed, not read, so rotated logs do not matter.
	s := searchtools.NewFileSearcher(ctx.DataRoot,
		searchtools.WithWorkers(ctx.ScanWorkers),
		searchtools.WithCharset(ctx.Charset))
	if err := s.AddSearchTerm(agentSearch, psDump); err != nil {
		return err
	}
	if err := s.AddGlob(path.Join(jujuLogs, "*")); err != nil {
		return err
	}
	results := s.Search()

	haveLogDir := false
	logged := make(map[string]bool)
	for _, name := range results.Files() {
		if path.Dir(name) != jujuLogs {
			continue
		}
		haveLogDir = true
		if m := unitLogName.FindStringSubmatch(path.Base(name)); m != nil {
			logged[m[1]] = true
		}
	}
	if !haveLogDir {
		return nil
	}
	running := make(map[string]bool)
	for h := range results.FindByTag(agentSearch.Tag) {
		running[h.Value(1)] = true
	}

	if section := classify(logged, running); len(section) > 0 {
		st.Set(unitsKey, section)
	}
	return nil
}

// classify sorts units into local ones (log and process), stopped ones
// (log only) and lxd ones (process only). A stopped unit of an
// application that still has a local unit is an older unit of it and is
// left out, as is a container unit of an application with a newer one.
func classify(logged, running map[string]bool) yaml.MapSlice {
	var local, stopped, lxd []string
	localApps := make(map[string]bool)
	newest := make(map[string]int)
	for unit := range logged {
		if running[unit] {
			local = append(local, unit)
			if app, _, ok := splitUnit(unit); ok {
				localApps[app] = true
			}
		}
	}
	for unit := range running {
		if logged[unit] {
			continue
		}
		if app, n, ok := splitUnit(unit); ok {
			if v, seen := newest[app]; !seen || n > v {
				newest[app] = n
			}
		}
	}
	for unit := range logged {
		if running[unit] {
			continue
		}
		if app, _, ok := splitUnit(unit); !ok || !localApps[app] {
			stopped = append(stopped, unit)
		}
	}
	for unit := range running {
		if logged[unit] {
			continue
		}
		if app, n, ok := splitUnit(unit); ok && newest[app] == n {
			lxd = append(lxd, unit)
		}
	}

	var section yaml.MapSlice
	for _, group := range []struct {
		key   string
		units []string
	}{
		{"local", local},
		{"stopped", stopped},
		{"lxd", lxd},
	} {
		if len(group.units) > 0 {
			sort.Strings(group.units)
			section = append(section, yaml.MapItem{Key: group.key, Value: group.units})
		}
	}
	return section
}

// splitUnit splits a unit name such as "ceph-osd-12" into its
// application and unit number.
func splitUnit(unit string) (app string, n int, ok bool) {
	m := unitName.FindStringSubmatch(unit)
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], n, true
}
