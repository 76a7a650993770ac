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

// Package cpupinning cross-checks the nova cpu pinning settings of a
// compute host against the kernel, systemd and NUMA layout captured in
// the snapshot.
package cpupinning

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/golang/glog"
	"github.com/google/shlex"
	"naive.systems/sosinspect/check"
	"naive.systems/sosinspect/intervals"
	"naive.systems/sosinspect/issues"
	"naive.systems/sosinspect/searchtools"
)

const (
	novaConf      = "etc/nova/nova.conf"
	kernelCmdline = "proc/cmdline"
	systemdConf   = "etc/systemd/system.conf"
	numactl       = "sos_commands/numa/numactl_--hardware"
)

const (
	tagDedicated     = "cpu_dedicated_set"
	tagShared        = "cpu_shared_set"
	tagVcpuPinSet    = "vcpu_pin_set"
	tagIsolcpus      = "isolcpus"
	tagCPUAffinity   = "cpuaffinity"
	tagNumaAvailable = "numa-available"
	tagNumaNodeCPUs  = "numa-node-cpus"
)

// Hosts pinning this many cores or fewer are warned about.
const minUnpinned = 4

const bugUnisolatedDedicatedSet = 1897275

var inputs = []struct {
	def  searchtools.SearchDef
	glob string
}{
	{searchtools.SearchDef{Expr: `^cpu_dedicated_set\s*=\s*([0-9\-,]+)`, Tag: tagDedicated, Hint: "cpu_dedicated_set"}, novaConf},
	{searchtools.SearchDef{Expr: `^cpu_shared_set\s*=\s*([0-9\-,]+)`, Tag: tagShared, Hint: "cpu_shared_set"}, novaConf},
	{searchtools.SearchDef{Expr: `^vcpu_pin_set\s*=\s*([0-9\-,]+)`, Tag: tagVcpuPinSet, Hint: "vcpu_pin_set"}, novaConf},
	{searchtools.SearchDef{Expr: `(?:^|\s)isolcpus=\S`, Tag: tagIsolcpus, Hint: "isolcpus="}, kernelCmdline},
	{searchtools.SearchDef{Expr: `^CPUAffinity\s*=\s*([0-9\-,]+)`, Tag: tagCPUAffinity, Hint: "CPUAffinity"}, systemdConf},
	{searchtools.SearchDef{Expr: `^available:\s+[0-9]+\s+nodes\s+\(([0-9\-]+)\)`, Tag: tagNumaAvailable, Hint: "available:"}, numactl},
	{searchtools.SearchDef{Expr: `^node\s+([0-9]+)\s+cpus:\s([0-9\s]+)`, Tag: tagNumaNodeCPUs, Hint: "cpus:"}, numactl},
}

type CPUPinningChecks struct{}

func (CPUPinningChecks) Plugin() string {
	return "openstack"
}

func (CPUPinningChecks) Name() string {
	return "cpu-pinning-checks"
}

func (CPUPinningChecks) Run(ctx *check.Context, st *check.State) error {
	// Configuration files are never rotated, so all-logs mode does not
	// apply here.
	s := searchtools.NewFileSearcher(ctx.DataRoot,
		searchtools.WithWorkers(ctx.ScanWorkers),
		searchtools.WithCharset(ctx.Charset))
	for _, in := range inputs {
		if err := s.AddSearchTerm(in.def, in.glob); err != nil {
			return err
		}
	}
	host, err := loadHost(s.Search())
	if err != nil {
		return errors.Wrap(err, "cpu pinning inputs")
	}
	host.record(st.Issues)
	host.evaluate(st)
	return nil
}

// hostConfig holds the core lists read from the snapshot. Lists taken
// from nova keep their written order; kernel and systemd lists are
// deduplicated and sorted.
type hostConfig struct {
	cpuDedicatedSet []int
	cpuSharedSet    []int
	vcpuPinSet      []int
	isolcpus        []int
	cpuAffinity     []int
	numaNodes       map[int][]int

	// dedicated is cpu_dedicated_set when set, vcpu_pin_set otherwise.
	dedicated     []int
	dedicatedName string
}

func firstHit(results *searchtools.ResultSet, tag string) (*searchtools.Hit, bool) {
	for h := range results.FindByTag(tag) {
		return h, true
	}
	return nil, false
}

func parseHit(results *searchtools.ResultSet, tag string) ([]int, error) {
	h, ok := firstHit(results, tag)
	if !ok {
		return nil, nil
	}
	ids, err := intervals.Parse(h.Value(1))
	if err != nil {
		return nil, errors.Wrapf(err, "%s:%d", h.Source, h.LineNumber)
	}
	return ids, nil
}

func loadHost(results *searchtools.ResultSet) (*hostConfig, error) {
	host := &hostConfig{}
	var err error
	if host.cpuDedicatedSet, err = parseHit(results, tagDedicated); err != nil {
		return nil, err
	}
	if host.cpuSharedSet, err = parseHit(results, tagShared); err != nil {
		return nil, err
	}
	if host.vcpuPinSet, err = parseHit(results, tagVcpuPinSet); err != nil {
		return nil, err
	}
	if host.cpuAffinity, err = parseHit(results, tagCPUAffinity); err != nil {
		return nil, err
	}
	host.cpuAffinity = intervals.Unique(host.cpuAffinity)
	if h, ok := firstHit(results, tagIsolcpus); ok {
		if cores := isolcpusValue(h.Line); cores != "" {
			ids, err := intervals.Parse(cores)
			if err != nil {
				return nil, errors.Wrapf(err, "%s:%d", h.Source, h.LineNumber)
			}
			host.isolcpus = intervals.Unique(ids)
		}
	}
	if host.numaNodes, err = numaNodes(results); err != nil {
		return nil, err
	}

	if len(host.cpuDedicatedSet) > 0 {
		host.dedicated, host.dedicatedName = intervals.Unique(host.cpuDedicatedSet), tagDedicated
	} else {
		host.dedicated, host.dedicatedName = intervals.Unique(host.vcpuPinSet), tagVcpuPinSet
	}
	return host, nil
}

// isolcpusFlags may precede the core list of isolcpus=.
var isolcpusFlags = map[string]bool{
	"domain":      true,
	"managed_irq": true,
	"nohz":        true,
}

// isolcpusValue returns the core list given to isolcpus= on a kernel
// command line, or "" when the parameter is absent. A line that does
// not split as shell words, e.g. with an unbalanced quote, is split on
// white space instead.
func isolcpusValue(cmdline string) string {
	args, err := shlex.Split(cmdline)
	if err != nil {
		glog.Warningf("splitting kernel command line on spaces: %v", err)
		args = strings.Fields(cmdline)
	}
	for _, arg := range args {
		value, ok := strings.CutPrefix(arg, "isolcpus=")
		if !ok {
			continue
		}
		parts := strings.Split(value, ",")
		for len(parts) > 0 && isolcpusFlags[parts[0]] {
			parts = parts[1:]
		}
		return strings.Join(parts, ",")
	}
	return ""
}

// numaNodes maps each node listed as available to its cores. A node
// line outside the available range is ignored.
func numaNodes(results *searchtools.ResultSet) (map[int][]int, error) {
	nodes := make(map[int][]int)
	h, ok := firstHit(results, tagNumaAvailable)
	if !ok {
		return nodes, nil
	}
	ids, err := intervals.Parse(h.Value(1))
	if err != nil {
		return nil, errors.Wrapf(err, "%s:%d", h.Source, h.LineNumber)
	}
	for h := range results.FindByTag(tagNumaNodeCPUs) {
		node, err := strconv.Atoi(h.Value(1))
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", h.Source, h.LineNumber)
		}
		if _, seen := nodes[node]; seen || !containsID(ids, node) {
			continue
		}
		var cores []int
		for _, f := range strings.Fields(h.Value(2)) {
			core, err := strconv.Atoi(f)
			if err != nil {
				return nil, errors.Wrapf(err, "%s:%d", h.Source, h.LineNumber)
			}
			cores = append(cores, core)
		}
		nodes[node] = cores
	}
	return nodes, nil
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (h *hostConfig) sortedNodes() []int {
	ids := make([]int, 0, len(h.numaNodes))
	for id := range h.numaNodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (h *hostConfig) record(agg *issues.Aggregator) {
	agg.AddConfig("nova", tagDedicated, intervals.Format(h.cpuDedicatedSet, ""))
	agg.AddConfig("nova", tagVcpuPinSet, intervals.Format(h.vcpuPinSet, ""))
	agg.AddConfig("nova", tagShared, intervals.Format(h.cpuSharedSet, ""))
	agg.AddConfig("kernel", tagIsolcpus, intervals.Format(h.isolcpus, ""))
	agg.AddConfig("systemd", tagCPUAffinity, intervals.Format(h.cpuAffinity, ""))
	for _, id := range h.sortedNodes() {
		agg.AddConfig("numa", fmt.Sprintf("node%d", id), intervals.Format(h.numaNodes[id], ""))
	}
}

func (h *hostConfig) evaluate(st *check.State) {
	agg := st.Issues
	if len(h.dedicated) > 0 {
		withIsolcpus := intervals.Intersection(h.dedicated, h.isolcpus)
		withAffinity := intervals.Intersection(h.dedicated, h.cpuAffinity)
		switch {
		case len(withIsolcpus) > 0 && len(withAffinity) > 0:
			agg.AddError(h.dedicatedName+" is a subset of both isolcpus AND cpuaffinity",
				issues.TextExtra(fmt.Sprintf("intersection with isolcpus: %s\nintersection with cpuaffinity: %s",
					intervals.Format(withIsolcpus, ""), intervals.Format(withAffinity, ""))))
		case len(withIsolcpus) == 0 && len(withAffinity) == 0:
			msg := h.dedicatedName + " is neither a subset of isolcpus nor cpuaffinity"
			agg.AddError(msg, nil)
			st.KnownBugs.Add(bugUnisolatedDedicatedSet, "cpu pinning check: "+msg)
		}
		// Isolation by exactly one of the two mechanisms is not reported.
	}

	if both := intervals.Intersection(h.cpuSharedSet, h.isolcpus); len(both) > 0 {
		agg.AddError("cpu_shared_set contains cores from isolcpus",
			issues.TextExtra("intersection: "+intervals.Format(both, "")))
	}
	if both := intervals.Intersection(h.dedicated, h.cpuSharedSet); len(both) > 0 {
		agg.AddError("cpu_shared_set and "+h.dedicatedName+" overlap",
			issues.TextExtra("intersection: "+intervals.Format(both, "")))
	}
	if both := intervals.Intersection(h.isolcpus, h.cpuAffinity); len(both) > 0 {
		agg.AddError("isolcpus and cpuaffinity overlap",
			issues.TextExtra("intersection: "+intervals.Format(both, "")))
	}

	if intervals.SpanCount(h.dedicated, h.numaNodes) > 1 {
		var fields []issues.Field
		for _, id := range h.sortedNodes() {
			fields = append(fields, issues.Field{Key: fmt.Sprintf("node%d", id), Value: intervals.Format(h.numaNodes[id], "")})
		}
		fields = append(fields, issues.Field{Key: h.dedicatedName, Value: intervals.Format(h.dedicated, "")})
		agg.AddInfo(h.dedicatedName+" has cores from > 1 numa node", issues.FieldsExtra(fields...))
	}

	// The count is of cores pinned by isolcpus or CPUAffinity, which the
	// message has always reported as unpinned.
	if len(h.isolcpus) > 0 || len(h.cpuAffinity) > 0 {
		if n := len(intervals.Union(h.isolcpus, h.cpuAffinity)); n <= minUnpinned {
			agg.AddWarn(fmt.Sprintf("Host has only %d cores unpinned. This might cause unintended performance problems", n), nil)
		}
	}
}
