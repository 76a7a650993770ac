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

package cephlogs

import (
	"gopkg.in/yaml.v2"
)

// counter keeps its keys in first-seen order.
type counter struct {
	keys   []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string, n int) {
	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.counts[key] += n
}

func (c *counter) empty() bool {
	return len(c.keys) == 0
}

func (c *counter) MarshalYAML() (interface{}, error) {
	out := make(yaml.MapSlice, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, yaml.MapItem{Key: k, Value: c.counts[k]})
	}
	return out, nil
}

type nestedCounter struct {
	keys  []string
	inner map[string]*counter
}

func newNestedCounter() *nestedCounter {
	return &nestedCounter{inner: make(map[string]*counter)}
}

func (c *nestedCounter) add(outer, inner string) {
	in, ok := c.inner[outer]
	if !ok {
		in = newCounter()
		c.inner[outer] = in
		c.keys = append(c.keys, outer)
	}
	in.add(inner, 1)
}

func (c *nestedCounter) empty() bool {
	return len(c.keys) == 0
}

func (c *nestedCounter) MarshalYAML() (interface{}, error) {
	out := make(yaml.MapSlice, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, yaml.MapItem{Key: k, Value: c.inner[k]})
	}
	return out, nil
}
