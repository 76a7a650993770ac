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

// Package knownbugs records external bug tracker references raised by
// checks.
package knownbugs

import (
	"fmt"
	"sync"
)

// Launchpad short link prefix used as the report key of a bug.
const bugURLPrefix = "https://pad.lv/"

type Bug struct {
	ID          string
	Description string
}

func BugURL(id string) string {
	return bugURLPrefix + id
}

func (b Bug) URL() string {
	return BugURL(b.ID)
}

// Registry keeps bugs in insertion order without deduplication. It is
// safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	entries []Bug
}

func New() *Registry {
	return &Registry{}
}

// Add accepts any id printable with %v, such as a Launchpad bug number.
func (r *Registry) Add(id interface{}, description string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Bug{ID: fmt.Sprint(id), Description: description})
}

func (r *Registry) Entries() []Bug {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Bug(nil), r.entries...)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
