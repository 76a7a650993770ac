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

// Package check defines the interface implemented by every inspection
// and the state a check accumulates while it runs.
package check

import (
	"gopkg.in/yaml.v2"
	"naive.systems/sosinspect/issues"
	"naive.systems/sosinspect/knownbugs"
	"naive.systems/sosinspect/searchtools"
)

// Context describes the snapshot being inspected.
type Context struct {
	DataRoot    string
	UseAllLogs  bool
	ShowExtras  bool
	ScanWorkers int
	Charset     string
}

// NewSearcher returns a FileSearcher rooted at the snapshot.
func (c *Context) NewSearcher() *searchtools.FileSearcher {
	return searchtools.NewFileSearcher(c.DataRoot,
		searchtools.WithAllLogs(c.UseAllLogs),
		searchtools.WithWorkers(c.ScanWorkers),
		searchtools.WithCharset(c.Charset))
}

// State is everything one check run produces. It is created fresh for
// each run and folded into the report afterwards.
type State struct {
	Issues    *issues.Aggregator
	KnownBugs *knownbugs.Registry
	sections  yaml.MapSlice
}

func NewState(ctx *Context) *State {
	return &State{
		Issues:    issues.NewAggregator(ctx.ShowExtras),
		KnownBugs: knownbugs.New(),
	}
}

// Set adds a data section to the check output, replacing an earlier
// section with the same key in place.
func (s *State) Set(key string, value interface{}) {
	for i := range s.sections {
		if s.sections[i].Key == key {
			s.sections[i].Value = value
			return
		}
	}
	s.sections = append(s.sections, yaml.MapItem{Key: key, Value: value})
}

func (s *State) Sections() yaml.MapSlice {
	return append(yaml.MapSlice(nil), s.sections...)
}

type Check interface {
	// Plugin groups related checks in the report, e.g. "storage".
	Plugin() string
	Name() string
	Run(ctx *Context, st *State) error
}

func ID(c Check) string {
	return c.Plugin() + "/" + c.Name()
}
