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

package runner

import (
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/golang/glog"
	"golang.org/x/text/message"
	"naive.systems/sosinspect/check"
	"naive.systems/sosinspect/checklib/basic"
	"naive.systems/sosinspect/checklib/budget"
	"naive.systems/sosinspect/checklib/i18n"
	"naive.systems/sosinspect/checklib/stats"
	"naive.systems/sosinspect/report"
)

// ErrInterrupted marks the checks whose results were lost to a SIGINT.
var ErrInterrupted = errors.New("interrupted")

// The task for Runner to run in parallels
type CheckTask struct {
	Id    int
	Check check.Check
	Ctx   *check.Context
}

type checkResult struct {
	id      int
	checkID string
	check   check.Check
	state   *check.State
	err     error
}

// Config of a ParaTaskRunner. NumWorkers 0 means one worker per CPU. A
// nil Budget means no limit on open files.
type Config struct {
	NumWorkers   int32
	TaskNums     int
	ShowProgress bool
	Lang         string
	ResultsDir   string
	Report       *report.Report
	Budget       *budget.Budget
}

// A goroutine workgroup to run checks in parallel. Each task gets its
// own check.State; only successful states are folded into the report,
// once all results are collected.
type ParaTaskRunner struct {
	showProgress   bool
	resultsDir     string
	workerWg       sync.WaitGroup
	collectorWg    sync.WaitGroup
	jobs_chan      chan CheckTask
	results_chan   chan checkResult
	sigs_exiting   chan bool
	report         *report.Report
	states         []*checkResult
	errors         []error
	collected      []bool
	taskIDs        []string
	stopping       atomic.Bool
	interrupted    bool
	budget         *budget.Budget
	processPrinter *basic.CheckingProcessPrinter
}

// runCheck runs one task and turns a panic into an error so that the
// other checks of the run are unaffected.
func runCheck(j CheckTask, files *budget.Budget) (st *check.State, err error) {
	checkID := check.ID(j.Check)
	n := j.Ctx.ScanWorkers
	if n < 1 {
		n = 1
	}
	if err := files.Acquire(n, checkID); err != nil {
		return nil, err
	}
	defer files.Release(n)
	defer func() {
		// recover from possible panic
		if r := recover(); r != nil {
			glog.Error("Recovered in check: ", r, string(debug.Stack()))
			if rerr, ok := r.(error); ok {
				err = errors.Wrapf(rerr, "panic in check %s", checkID)
			} else {
				err = errors.Newf("panic in check %s: %v", checkID, r)
			}
			st = nil
		}
	}()
	st = check.NewState(j.Ctx)
	if err := j.Check.Run(j.Ctx, st); err != nil {
		return nil, errors.Wrapf(err, "check %s", checkID)
	}
	return st, nil
}

func (pt *ParaTaskRunner) worker(jobs <-chan CheckTask, results chan<- checkResult, printer *message.Printer) {
	defer pt.workerWg.Done()
	for j := range jobs {
		if pt.stopping.Load() {
			continue
		}
		checkID := check.ID(j.Check)
		if pt.showProgress {
			pt.processPrinter.StartCheck(checkID, printer)
		}
		st, err := runCheck(j, pt.budget)
		results <- checkResult{id: j.Id, checkID: checkID, check: j.Check, state: st, err: err}
		if pt.showProgress {
			pt.processPrinter.FinishCheck(checkID, printer)
			stats.WriteProgress(pt.resultsDir, stats.RC, pt.processPrinter.GetPercentString(), pt.processPrinter.GetStartedAt())
		}
	}
}

// Create a new task runner and results collectors.
func NewParaTaskRunner(cfg Config) *ParaTaskRunner {
	printer := i18n.GetPrinter(cfg.Lang)
	numWorkers := cfg.NumWorkers
	if numWorkers <= 0 {
		numWorkers = int32(runtime.NumCPU())
		if cfg.ShowProgress {
			basic.PrintfWithTimeStamp(printer.Sprintf("Use %d worker(s)", numWorkers))
		}
	}
	rep := cfg.Report
	if rep == nil {
		rep = report.New()
	}
	paraRunner := &ParaTaskRunner{
		showProgress:   cfg.ShowProgress,
		resultsDir:     cfg.ResultsDir,
		jobs_chan:      make(chan CheckTask, numWorkers),
		results_chan:   make(chan checkResult, numWorkers),
		sigs_exiting:   make(chan bool, 1),
		report:         rep,
		states:         make([]*checkResult, cfg.TaskNums),
		errors:         make([]error, cfg.TaskNums),
		collected:      make([]bool, cfg.TaskNums),
		taskIDs:        make([]string, cfg.TaskNums),
		budget:         cfg.Budget,
		processPrinter: basic.NewCheckingProcessPrinter(cfg.TaskNums),
	}
	for w := 0; w < int(numWorkers); w++ {
		paraRunner.workerWg.Add(1)
		go paraRunner.worker(paraRunner.jobs_chan, paraRunner.results_chan, printer)
	}

	sigs := make(chan os.Signal, 1)
	// if a signal is received, notify the loop to stop sending new checks
	signal.Notify(sigs, syscall.SIGINT)
	// collect results
	paraRunner.collectorWg.Add(1)
	go func() {
		defer paraRunner.collectorWg.Done()
		defer signal.Stop(sigs)
		for job_result := range paraRunner.results_chan {
			paraRunner.record(&job_result)
			select {
			case <-sigs:
				if paraRunner.showProgress {
					basic.PrintfWithTimeStamp(printer.Sprintf("Ctrl C Pressed. Stop inspection"))
				}
				// queued tasks are skipped from now on
				paraRunner.stopping.Store(true)
				// notify the task loop to exit
				paraRunner.sigs_exiting <- true
				return
			default:
			}
		}
	}()
	return paraRunner
}

func (pt *ParaTaskRunner) record(res *checkResult) {
	if res.err == nil {
		pt.states[res.id] = res
	} else {
		glog.Errorf("Check %v got error %v", res.checkID, res.err)
	}
	pt.errors[res.id] = res.err
	pt.collected[res.id] = true
}

// drain lets the workers still running after an interruption exit.
// Their results are dropped.
func (pt *ParaTaskRunner) drain() {
	go func() {
		for range pt.results_chan {
		}
	}()
}

// markInterrupted gives every task without a collected result an error
// wrapping ErrInterrupted.
func (pt *ParaTaskRunner) markInterrupted() {
	pt.interrupted = true
	for id, done := range pt.collected {
		if done {
			continue
		}
		if pt.taskIDs[id] == "" {
			pt.errors[id] = errors.Wrapf(ErrInterrupted, "task %d was not started", id)
		} else {
			pt.errors[id] = errors.Wrapf(ErrInterrupted, "check %s", pt.taskIDs[id])
		}
	}
}

// Interrupted reports whether a SIGINT stopped the run before every
// task was collected.
func (pt *ParaTaskRunner) Interrupted() bool {
	return pt.interrupted
}

// check for the SIGINT exiting signal
// If the signal was received, it returns the report and errors collected
// so far; otherwise it returns nil for both.
func (pt *ParaTaskRunner) CheckSignalExiting() (rep *report.Report, errors []error) {
	select {
	case <-pt.sigs_exiting:
		// close the jobs_chan to let workers end
		close(pt.jobs_chan)
		go func() {
			pt.workerWg.Wait()
			close(pt.results_chan)
		}()
		pt.collectorWg.Wait()
		pt.drain()
		pt.markInterrupted()
		pt.fold()
		return pt.report, pt.errors
	default:
		return nil, nil
	}
}

// Add a task to the task runner and start running the task.
func (pt *ParaTaskRunner) AddTask(task CheckTask) {
	pt.taskIDs[task.Id] = check.ID(task.Check)
	pt.jobs_chan <- task
}

// Wait until all the task workers and the collector are finished.
// errors[i] is the error of the task with Id i, nil on success. If a
// SIGINT stopped the collector, Interrupted reports true and the tasks
// it never collected carry an ErrInterrupted error.
func (pt *ParaTaskRunner) CollectResultsAndErrors() (rep *report.Report, errors []error) {
	go func() {
		pt.workerWg.Wait()
		close(pt.results_chan)
	}()
	close(pt.jobs_chan)
	pt.collectorWg.Wait()
	select {
	case <-pt.sigs_exiting:
		pt.drain()
		pt.markInterrupted()
	default:
	}
	pt.fold()
	return pt.report, pt.errors
}

// fold merges the successful states into the report in task order, so
// the report does not depend on which worker finished first.
func (pt *ParaTaskRunner) fold() {
	for _, res := range pt.states {
		if res == nil {
			continue
		}
		st := res.state
		pt.report.Fold(res.check.Plugin(), res.check.Name(),
			st.Sections(), st.Issues.Finalize(), st.KnownBugs.Entries())
	}
}
