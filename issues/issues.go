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

// Package issues collects the leveled findings of one check together
// with the configuration values the check based them on.
package issues

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v2"
)

type Level int

const (
	Info Level = iota
	Warning
	Error
)

var levelLabels = [...]string{Info: "info", Warning: "warnings", Error: "errors"}

// Levels lists the levels in report order.
var Levels = []Level{Info, Warning, Error}

// Label is the results key used for the level in a report.
func (l Level) Label() string {
	if l < Info || l > Error {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelLabels[l]
}

func (l Level) String() string {
	return l.Label()
}

// Field is one key/value line of a structured Extra.
type Field struct {
	Key   string
	Value string
}

// Extra is the optional detail attached to an Issue: either free text or
// an ordered list of fields.
type Extra struct {
	text   string
	fields []Field
}

func TextExtra(text string) *Extra {
	if text == "" {
		return nil
	}
	return &Extra{text: text}
}

func FieldsExtra(fields ...Field) *Extra {
	if len(fields) == 0 {
		return nil
	}
	return &Extra{fields: fields}
}

func (e *Extra) IsStructured() bool {
	return e != nil && e.fields != nil
}

// Lines renders the extra one entry per line.
func (e *Extra) Lines() []string {
	if e == nil {
		return nil
	}
	if e.fields == nil {
		return strings.Split(e.text, "\n")
	}
	lines := make([]string, 0, len(e.fields))
	for _, f := range e.fields {
		lines = append(lines, f.Key+": "+f.Value)
	}
	return lines
}

type Issue struct {
	ID      string
	Level   Level
	Message string
	Extra   *Extra
}

type configEntry struct {
	component string
	keys      []string
	values    map[string]string
}

// Aggregator is owned by a single check for the duration of its run and
// is not safe for concurrent use.
type Aggregator struct {
	showExtras bool
	config     []*configEntry
	issues     [len(levelLabels)][]Issue
}

func NewAggregator(showExtras bool) *Aggregator {
	return &Aggregator{showExtras: showExtras}
}

// AddConfig records a value the check used to reach its findings. Empty
// values are dropped; setting an existing key replaces its value in
// place.
func (a *Aggregator) AddConfig(component, key, value string) {
	if value == "" {
		return
	}
	var entry *configEntry
	for _, e := range a.config {
		if e.component == component {
			entry = e
			break
		}
	}
	if entry == nil {
		entry = &configEntry{component: component, values: make(map[string]string)}
		a.config = append(a.config, entry)
	}
	if _, ok := entry.values[key]; !ok {
		entry.keys = append(entry.keys, key)
	}
	entry.values[key] = value
}

// Config returns the value recorded for component and key.
func (a *Aggregator) Config(component, key string) (string, bool) {
	for _, e := range a.config {
		if e.component == component {
			v, ok := e.values[key]
			return v, ok
		}
	}
	return "", false
}

// Add records a new issue under a fresh id. Identical messages are kept
// as separate issues.
func (a *Aggregator) Add(level Level, msg string, extra *Extra) Issue {
	if level < Info || level > Error {
		panic(fmt.Sprintf("issues: invalid level %d", int(level)))
	}
	issue := Issue{ID: uuid.NewString(), Level: level, Message: msg, Extra: extra}
	a.issues[level] = append(a.issues[level], issue)
	return issue
}

func (a *Aggregator) AddInfo(msg string, extra *Extra) Issue {
	return a.Add(Info, msg, extra)
}

func (a *Aggregator) AddWarn(msg string, extra *Extra) Issue {
	return a.Add(Warning, msg, extra)
}

func (a *Aggregator) AddError(msg string, extra *Extra) Issue {
	return a.Add(Error, msg, extra)
}

// Issues returns a copy of the issues recorded at level.
func (a *Aggregator) Issues(level Level) []Issue {
	return append([]Issue(nil), a.issues[level]...)
}

// HasResults ignores configuration records.
func (a *Aggregator) HasResults() bool {
	for _, list := range a.issues {
		if len(list) > 0 {
			return true
		}
	}
	return false
}

// Finalize returns the report block of the check, or nil when neither
// configuration nor issues were recorded.
func (a *Aggregator) Finalize() *Block {
	if len(a.config) == 0 && !a.HasResults() {
		return nil
	}
	b := &Block{}
	for _, e := range a.config {
		section := Section{Name: e.component}
		for _, k := range e.keys {
			section.Values = append(section.Values, yaml.MapItem{Key: k, Value: e.values[k]})
		}
		b.Input = append(b.Input, section)
	}
	for _, level := range Levels {
		if len(a.issues[level]) == 0 {
			continue
		}
		result := Result{Label: level.Label()}
		for _, issue := range a.issues[level] {
			result.Entries = append(result.Entries, issue.Message)
			if a.showExtras && issue.Extra != nil {
				result.Entries = append(result.Entries, ExtraEntry{Lines: issue.Extra.Lines()})
			}
		}
		b.Results = append(b.Results, result)
	}
	return b
}
