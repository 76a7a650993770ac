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

// Package analyzer selects the checks of a run and executes them against
// a snapshot.
package analyzer

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang/glog"
	"naive.systems/sosinspect/check"
	"naive.systems/sosinspect/checklib/budget"
	"naive.systems/sosinspect/checklib/options"
	"naive.systems/sosinspect/checklib/runner"
	"naive.systems/sosinspect/checklib/stats"
	"naive.systems/sosinspect/report"
)

// Result of a run. Errors holds one entry per failed check, in the order
// the checks were selected.
type Result struct {
	Report      *report.Report
	Checks      []check.Check
	Errors      []error
	Interrupted bool
}

// Select returns the checks of all whose ids are listed in ids, keeping
// the order of all. An empty ids selects everything.
func Select(all []check.Check, ids []string) ([]check.Check, error) {
	if len(ids) == 0 {
		return all, nil
	}
	known := make(map[string]bool, len(all))
	for _, c := range all {
		known[check.ID(c)] = true
	}
	var unknown []string
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !known[id] {
			unknown = append(unknown, id)
		}
		wanted[id] = true
	}
	if len(unknown) > 0 {
		available := make([]string, 0, len(all))
		for _, c := range all {
			available = append(available, check.ID(c))
		}
		return nil, errors.WithHint(errors.Newf("unknown check(s): %s", strings.Join(unknown, ", ")),
			"available checks: "+strings.Join(available, ", "))
	}
	var selected []check.Check
	for _, c := range all {
		if wanted[check.ID(c)] {
			selected = append(selected, c)
		}
	}
	return selected, nil
}

// Run executes the selected checks of all through a ParaTaskRunner. A
// failing check does not stop the others; its error is returned in
// Result.Errors and its output is left out of the report.
func Run(all []check.Check, opts *options.SharedOptions) (*Result, error) {
	start := time.Now()
	if opts.GetCheckProgress() {
		stats.WriteProgress(opts.GetResultsDir(), stats.SC, "0%", start)
	}
	selected, err := Select(all, opts.GetChecks())
	if err != nil {
		return nil, err
	}
	glog.Infof("running %d check(s) against %s", len(selected), opts.GetDataRoot())

	ctx := opts.CheckContext()
	paraRunner := runner.NewParaTaskRunner(runner.Config{
		NumWorkers:   int32(opts.GetNumWorkers()),
		TaskNums:     len(selected),
		ShowProgress: opts.GetCheckProgress(),
		Lang:         opts.GetLang(),
		ResultsDir:   opts.GetResultsDir(),
		Budget:       budget.New(opts.GetMaxOpenFiles()),
	})
	result := &Result{Checks: selected}
	var taskErrors []error
	for i, c := range selected {
		if rep, errs := paraRunner.CheckSignalExiting(); rep != nil {
			glog.Warningf("interrupted after %d of %d check(s)", i, len(selected))
			result.Report, taskErrors, result.Interrupted = rep, errs, true
			break
		}
		paraRunner.AddTask(runner.CheckTask{Id: i, Check: c, Ctx: ctx})
	}
	if !result.Interrupted {
		result.Report, taskErrors = paraRunner.CollectResultsAndErrors()
		if paraRunner.Interrupted() {
			glog.Warningf("interrupted while collecting %d check(s)", len(selected))
			result.Interrupted = true
		}
	}
	for _, err := range taskErrors {
		if err != nil {
			result.Errors = append(result.Errors, err)
		}
	}
	if opts.GetCheckProgress() {
		stats.WriteProgress(opts.GetResultsDir(), stats.END, "100%", start)
	}
	glog.Infof("%d check(s) finished in %v, %d failed", len(selected), time.Since(start), len(result.Errors))
	return result, nil
}
