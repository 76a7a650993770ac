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

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/golang/glog"
	"golang.org/x/text/message"
	"naive.systems/sosinspect/analyzer"
	"naive.systems/sosinspect/checklib/i18n"
	"naive.systems/sosinspect/checklib/options"
	"naive.systems/sosinspect/checklib/stats"
	"naive.systems/sosinspect/plugins"
	"naive.systems/sosinspect/report"
)

const (
	exitUsage       = 2
	exitCheckFailed = 3
	exitInterrupted = 130
)

func exit(code int) {
	glog.Flush()
	os.Exit(code)
}

// fail prints err with its hints before any glog output is set up.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "sosinspect: %v\n", err)
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
	}
	exit(exitUsage)
}

func main() {
	sharedOptions := options.NewSharedOptions(flag.CommandLine)
	flag.Parse()
	defer glog.Flush()

	if path := sharedOptions.GetConfig(); path != "" {
		if err := options.LoadConfigFile(path, flag.CommandLine); err != nil {
			fail(err)
		}
	}

	// Do not call any logging functions of glog before this part.
	if resultsDir := sharedOptions.GetResultsDir(); resultsDir != "" {
		logDir := flag.Lookup("log_dir")
		if logDir.Value.String() == "" {
			if err := flag.Set("log_dir", filepath.Join(resultsDir, "logs")); err != nil {
				fail(errors.Wrap(err, "failed to set default log_dir"))
			}
		}
		if err := os.MkdirAll(logDir.Value.String(), 0755); err != nil {
			fail(errors.Wrap(err, "failed to create log dir"))
		}
	}
	if !sharedOptions.GetDebugMode() {
		if err := flag.Set("stderrthreshold", "FATAL"); err != nil {
			fail(errors.Wrap(err, "failed to set default stderrthreshold"))
		}
	}
	if err := sharedOptions.Validate(); err != nil {
		fail(err)
	}
	format, err := report.ParseFormat(sharedOptions.GetFormat())
	if err != nil {
		fail(err)
	}
	if sharedOptions.GetNoColor() {
		color.NoColor = true
	}
	printer := i18n.GetPrinter(sharedOptions.GetLang())

	result, err := analyzer.Run(plugins.All(), sharedOptions)
	if err != nil {
		fail(err)
	}
	rep := result.Report

	if output := sharedOptions.GetOutput(); output != "" {
		if err := rep.WriteFile(output, format, sharedOptions.GetSummary()); err != nil {
			glog.Fatalf("failed to write report: %v", err)
		}
		glog.Infof("report written to %s", output)
		if sharedOptions.GetCheckProgress() {
			fmt.Fprintln(color.Error, printer.Sprintf("Report written to %s", output))
		}
	} else if err := rep.Encode(os.Stdout, format, sharedOptions.GetSummary()); err != nil {
		glog.Fatalf("failed to encode report: %v", err)
	}

	// count results by level and save stats to level_stats.sosinspect_metadata
	stats.CountLevelsAndWrite(rep, sharedOptions.GetResultsDir())

	printSummary(color.Error, printer, result)

	switch {
	case result.Interrupted:
		exit(exitInterrupted)
	case len(result.Errors) > 0:
		exit(exitCheckFailed)
	}
}

func printSummary(w io.Writer, printer *message.Printer, result *analyzer.Result) {
	fmt.Fprintln(w, printer.Sprintf("%d check(s) run, %d failed", len(result.Checks), len(result.Errors)))
	for _, err := range result.Errors {
		color.New(color.FgRed).Fprintln(w, printer.Sprintf("Check failed: %v", err))
	}

	counts := result.Report.Counts()
	levelColor := color.New(color.FgGreen)
	switch {
	case counts.Errors > 0:
		levelColor = color.New(color.FgRed, color.Bold)
	case counts.Warnings > 0:
		levelColor = color.New(color.FgYellow)
	}
	levelColor.Fprintln(w, printer.Sprintf("%d error(s), %d warning(s), %d info", counts.Errors, counts.Warnings, counts.Info))

	if n := len(result.Report.KnownBugs()); n > 0 {
		color.New(color.FgMagenta).Fprintln(w, printer.Sprintf("%d known bug(s) matched", n))
	}
}
