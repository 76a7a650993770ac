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

package issues

import (
	"gopkg.in/yaml.v2"
)

// Block is the finalized output of one check:
//
//	input:
//	  <component>: {<key>: <value>}
//	results:
//	  info|warnings|errors: [<message>, {extra-info: [<line>]}]
type Block struct {
	Input   []Section
	Results []Result
}

type Section struct {
	Name   string
	Values yaml.MapSlice
}

// Result lists the messages of one level. Entries holds message strings,
// each optionally followed by an ExtraEntry.
type Result struct {
	Label   string
	Entries []interface{}
}

type ExtraEntry struct {
	Lines []string
}

func (e ExtraEntry) MarshalYAML() (interface{}, error) {
	return yaml.MapSlice{{Key: "extra-info", Value: e.Lines}}, nil
}

// Messages returns the message strings of the result without extras.
func (r Result) Messages() []string {
	var msgs []string
	for _, entry := range r.Entries {
		if msg, ok := entry.(string); ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

func (b *Block) MarshalYAML() (interface{}, error) {
	var out yaml.MapSlice
	if len(b.Input) > 0 {
		var input yaml.MapSlice
		for _, s := range b.Input {
			input = append(input, yaml.MapItem{Key: s.Name, Value: s.Values})
		}
		out = append(out, yaml.MapItem{Key: "input", Value: input})
	}
	if len(b.Results) > 0 {
		var results yaml.MapSlice
		for _, r := range b.Results {
			results = append(results, yaml.MapItem{Key: r.Label, Value: r.Entries})
		}
		out = append(out, yaml.MapItem{Key: "results", Value: results})
	}
	return out, nil
}
