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

// Package report merges the output of finished checks into the run
// report.
package report

import (
	"sort"
	"sync"

	"gopkg.in/yaml.v2"
	"naive.systems/sosinspect/issues"
	"naive.systems/sosinspect/knownbugs"
)

const (
	KnownBugsKey       = "known-bugs"
	PotentialIssuesKey = "potential-issues"
)

type bugEntry struct {
	checkID string
	bug     knownbugs.Bug
}

type resultEntry struct {
	checkID string
	result  issues.Result
}

type pluginEntry struct {
	name    string
	items   yaml.MapSlice
	bugs    []bugEntry
	results []resultEntry
}

// Report is shared by all checks of a run. Every method takes the report
// lock for its whole duration.
type Report struct {
	mu      sync.Mutex
	plugins []*pluginEntry
	checks  []string
}

func New() *Report {
	return &Report{}
}

func (r *Report) plugin(name string) *pluginEntry {
	for _, p := range r.plugins {
		if p.name == name {
			return p
		}
	}
	p := &pluginEntry{name: name}
	r.plugins = append(r.plugins, p)
	return p
}

func setItem(items yaml.MapSlice, key string, value interface{}) yaml.MapSlice {
	for i := range items {
		if items[i].Key == key {
			items[i].Value = value
			return items
		}
	}
	return append(items, yaml.MapItem{Key: key, Value: value})
}

// Fold adds the output of a successful check run. sections are placed
// directly under the plugin, the issue block under the check name and
// bugs in the plugin's known-bugs list.
func (r *Report) Fold(plugin, name string, sections yaml.MapSlice, block *issues.Block, bugs []knownbugs.Bug) {
	r.mu.Lock()
	defer r.mu.Unlock()
	checkID := plugin + "/" + name
	r.checks = append(r.checks, checkID)
	if len(sections) == 0 && block == nil && len(bugs) == 0 {
		return
	}
	p := r.plugin(plugin)
	for _, s := range sections {
		p.items = setItem(p.items, s.Key.(string), s.Value)
	}
	if block != nil {
		p.items = setItem(p.items, name, block)
		for _, res := range block.Results {
			p.results = append(p.results, resultEntry{checkID: checkID, result: res})
		}
	}
	for _, b := range bugs {
		p.bugs = append(p.bugs, bugEntry{checkID: checkID, bug: b})
	}
}

// Checks lists the ids of the checks folded so far, sorted.
func (r *Report) Checks() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := append([]string(nil), r.checks...)
	sort.Strings(ids)
	return ids
}

// Document returns the full report keyed by plugin.
func (r *Report) Document() yaml.MapSlice {
	r.mu.Lock()
	defer r.mu.Unlock()
	var doc yaml.MapSlice
	for _, p := range r.plugins {
		items := append(yaml.MapSlice(nil), p.items...)
		if len(p.bugs) > 0 {
			var list []interface{}
			for _, b := range p.bugs {
				list = append(list, yaml.MapSlice{{Key: b.bug.URL(), Value: b.bug.Description}})
			}
			items = append(items, yaml.MapItem{Key: KnownBugsKey, Value: list})
		}
		doc = append(doc, yaml.MapItem{Key: p.name, Value: items})
	}
	return doc
}

// Summary returns only the known bugs and issues of all checks, each key
// prefixed with the id of the check that raised it.
func (r *Report) Summary() yaml.MapSlice {
	r.mu.Lock()
	defer r.mu.Unlock()
	var bugs, potential yaml.MapSlice
	for _, p := range r.plugins {
		for _, b := range p.bugs {
			bugs = setItem(bugs, "("+b.checkID+") "+b.bug.URL(), b.bug.Description)
		}
		for _, res := range p.results {
			potential = setItem(potential, "("+res.checkID+") "+res.result.Label, res.result.Messages())
		}
	}
	var summary yaml.MapSlice
	if len(bugs) > 0 {
		summary = append(summary, yaml.MapItem{Key: KnownBugsKey, Value: bugs})
	}
	if len(potential) > 0 {
		summary = append(summary, yaml.MapItem{Key: PotentialIssuesKey, Value: potential})
	}
	return summary
}

type LevelCount struct {
	Info     int `json:"info"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// Counts returns the number of messages per level across all checks.
func (r *Report) Counts() LevelCount {
	r.mu.Lock()
	defer r.mu.Unlock()
	var cnt LevelCount
	for _, p := range r.plugins {
		for _, res := range p.results {
			n := len(res.result.Messages())
			switch res.result.Label {
			case issues.Info.Label():
				cnt.Info += n
			case issues.Warning.Label():
				cnt.Warnings += n
			case issues.Error.Label():
				cnt.Errors += n
			}
		}
	}
	return cnt
}

func (r *Report) KnownBugs() []knownbugs.Bug {
	r.mu.Lock()
	defer r.mu.Unlock()
	var bugs []knownbugs.Bug
	for _, p := range r.plugins {
		for _, b := range p.bugs {
			bugs = append(bugs, b.bug)
		}
	}
	return bugs
}
