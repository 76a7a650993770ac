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

// Package cephlogs summarises notable ceph daemon events found in the
// cluster logs of a snapshot.
package cephlogs

import (
	"path"
	"strconv"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v2"
	"naive.systems/sosinspect/check"
	"naive.systems/sosinspect/searchtools"
)

const (
	cephLogs  = "var/log/ceph"
	eventsKey = "daemon-events"
)

var searches = []searchtools.SearchDef{
	{
		Expr: `^([0-9-]+)\S* \S+ .+ (osd.[0-9]+) reported failed by osd.[0-9]+`,
		Tag:  "osd-reported-failed",
		Hint: "reported failed",
	},
	{
		Expr: `^([0-9-]+)\S* \S+ .+ (mon.\S+) calling monitor election`,
		Tag:  "mon-election-called",
		Hint: "calling monitor election",
	},
	{
		Expr: `^([0-9-]+)\S* \S+ .+ ([0-9]+) slow requests are blocked .+ \(REQUEST_SLOW\)`,
		Tag:  "slow-requests",
		Hint: "REQUEST_SLOW",
	},
	{
		Expr: `^([0-9-]+)\S* .+ _verify_csum bad .+`,
		Tag:  "crc-err-bluestore",
		Hint: "_verify_csum",
	},
	{
		Expr: `^([0-9-]+)\S* .+ rocksdb: .+block checksum mismatch:.+`,
		Tag:  "crc-err-rocksdb",
		Hint: "checksum mismatch",
	},
	{
		Expr: `^([0-9-]+)\S* \S+ .+ Long heartbeat ping times on \S+ interface seen, longest is ([0-9.]+) msec.+`,
		Tag:  "long-heartbeat",
		Hint: "Long heartbeat ping",
	},
	{
		Expr: `^([0-9-]+)\S* \S+ \S+ \S+ osd.[0-9]+ .+ heartbeat_check: no reply from [0-9.:]+ (osd.[0-9]+)`,
		Tag:  "heartbeat-no-reply",
		Hint: "heartbeat_check",
	},
}

// DaemonLogChecks counts, per day, the ceph events matched by searches.
type DaemonLogChecks struct{}

func (DaemonLogChecks) Plugin() string {
	return "storage"
}

func (DaemonLogChecks) Name() string {
	return "ceph-daemon-logs"
}

func (DaemonLogChecks) Run(ctx *check.Context, st *check.State) error {
	s := ctx.NewSearcher()
	for _, def := range searches {
		if err := s.AddSearchTerm(def, path.Join(cephLogs, "ceph*.log")); err != nil {
			return err
		}
	}
	results := s.Search()

	var events yaml.MapSlice
	add := func(key string, c interface{ empty() bool }) {
		if !c.empty() {
			events = append(events, yaml.MapItem{Key: key, Value: c})
		}
	}
	add("osd-reported-failed", countByGroups(results, "osd-reported-failed", 2, 1))
	add("mon-elections-called", countByGroups(results, "mon-election-called", 2, 1))
	slow, err := sumByDate(results, "slow-requests", 2)
	if err != nil {
		return err
	}
	add("slow-requests", slow)
	add("crc-err-bluestore", countByDate(results, "crc-err-bluestore"))
	add("crc-err-rocksdb", countByDate(results, "crc-err-rocksdb"))
	add("long-heartbeat-pings", countByDate(results, "long-heartbeat"))
	add("heartbeat-no-reply", countByGroups(results, "heartbeat-no-reply", 1, 2))

	if len(events) > 0 {
		st.Set(eventsKey, events)
	}
	return nil
}

// Every search captures the date of the event in group 1.
const dateGroup = 1

func countByDate(results *searchtools.ResultSet, tag string) *counter {
	c := newCounter()
	for _, h := range results.SortedByGroup(tag, dateGroup) {
		c.add(h.Value(dateGroup), 1)
	}
	return c
}

func sumByDate(results *searchtools.ResultSet, tag string, group int) (*counter, error) {
	c := newCounter()
	for _, h := range results.SortedByGroup(tag, dateGroup) {
		n, err := strconv.Atoi(h.Value(group))
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", h.Source, h.LineNumber)
		}
		c.add(h.Value(dateGroup), n)
	}
	return c, nil
}

// countByGroups counts hits by the text of outer, then inner group.
func countByGroups(results *searchtools.ResultSet, tag string, outer, inner int) *nestedCounter {
	c := newNestedCounter()
	for _, h := range results.SortedByGroup(tag, dateGroup) {
		c.add(h.Value(outer), h.Value(inner))
	}
	return c
}
