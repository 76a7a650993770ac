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

package options

import (
	"flag"
	"strings"
)

type SharedOptions struct {
	Charset       *string
	CheckProgress *bool
	Checks        *string
	Config        *string
	DataRoot      *string
	DebugMode     *bool
	Format        *string
	Lang          *string
	MaxOpenFiles  *int
	NoColor       *bool
	NumWorkers    *int
	Output        *string
	ResultsDir    *string
	ScanWorkers   *int
	ShowExtras    *bool
	Summary       *bool
	UseAllLogs    *bool
}

func (s SharedOptions) GetCharset() string {
	return *s.Charset
}

func (s SharedOptions) GetCheckProgress() bool {
	return *s.CheckProgress
}

// GetChecks returns the check ids selected with -checks, or nil for all.
func (s SharedOptions) GetChecks() []string {
	var ids []string
	for _, id := range strings.Split(*s.Checks, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s SharedOptions) GetConfig() string {
	return *s.Config
}

func (s SharedOptions) GetDataRoot() string {
	return *s.DataRoot
}

func (s SharedOptions) GetDebugMode() bool {
	return *s.DebugMode
}

func (s SharedOptions) GetFormat() string {
	return *s.Format
}

func (s SharedOptions) GetLang() string {
	return *s.Lang
}

func (s SharedOptions) GetMaxOpenFiles() int {
	return *s.MaxOpenFiles
}

func (s SharedOptions) GetNoColor() bool {
	return *s.NoColor
}

func (s SharedOptions) GetNumWorkers() int {
	return *s.NumWorkers
}

func (s SharedOptions) GetOutput() string {
	return *s.Output
}

func (s SharedOptions) GetResultsDir() string {
	return *s.ResultsDir
}

func (s SharedOptions) GetScanWorkers() int {
	return *s.ScanWorkers
}

func (s SharedOptions) GetShowExtras() bool {
	return *s.ShowExtras
}

func (s SharedOptions) GetSummary() bool {
	return *s.Summary
}

func (s SharedOptions) GetUseAllLogs() bool {
	return *s.UseAllLogs
}

type DefaultOptionValues struct {
	Charset       string
	CheckProgress bool
	Checks        string
	Config        string
	DataRoot      string
	DebugMode     bool
	Format        string
	Lang          string
	MaxOpenFiles  int
	NoColor       bool
	NumWorkers    int
	Output        string
	ResultsDir    string
	ScanWorkers   int
	ShowExtras    bool
	Summary       bool
	UseAllLogs    bool
}

var Defaults = DefaultOptionValues{
	Charset:       "",
	CheckProgress: false,
	Checks:        "",
	Config:        "",
	DataRoot:      "/",
	DebugMode:     false,
	Format:        "yaml",
	Lang:          "en",
	MaxOpenFiles:  64,
	NoColor:       false,
	NumWorkers:    0,
	Output:        "",
	ResultsDir:    "",
	ScanWorkers:   1,
	ShowExtras:    false,
	Summary:       false,
	UseAllLogs:    false,
}

// NewSharedOptions registers the options on fs, normally flag.CommandLine.
func NewSharedOptions(fs *flag.FlagSet) *SharedOptions {
	option := &SharedOptions{}
	option.Charset = fs.String("charset", Defaults.Charset, "IANA charset of the snapshot files, UTF-8 when empty")
	option.CheckProgress = fs.Bool("check_progress", Defaults.CheckProgress, "Show the checking progress")
	option.Checks = fs.String("checks", Defaults.Checks, "Comma separated ids of the checks to run, e.g. storage/ceph-daemon-logs. Empty runs all checks")
	option.Config = fs.String("config", Defaults.Config, "TOML file providing defaults for the options not set on the command line")
	option.DataRoot = fs.String("data_root", Defaults.DataRoot, "Root of the filesystem snapshot to inspect")
	option.DebugMode = fs.Bool("debug_mode", Defaults.DebugMode, "Print logs to stderr")
	option.Format = fs.String("format", Defaults.Format, "Report format: yaml or json")
	option.Lang = fs.String("lang", Defaults.Lang, "Language of progress messages: en or zh")
	option.MaxOpenFiles = fs.Int("max_open_files", Defaults.MaxOpenFiles, "Files all checks may read at the same time, 0 for no limit")
	option.NoColor = fs.Bool("no_color", Defaults.NoColor, "Disable colored summary output")
	option.NumWorkers = fs.Int("num_workers", Defaults.NumWorkers, "Checks run in parallel, 0 for the number of CPUs")
	option.Output = fs.String("output", Defaults.Output, "Report file, stdout when empty")
	option.ResultsDir = fs.String("results_dir", Defaults.ResultsDir, "Directory for logs and metadata files, none when empty")
	option.ScanWorkers = fs.Int("scan_workers", Defaults.ScanWorkers, "Files each check reads in parallel")
	option.ShowExtras = fs.Bool("show_extras", Defaults.ShowExtras, "Add the extra-info details of each finding to the report")
	option.Summary = fs.Bool("summary", Defaults.Summary, "Only report known bugs and potential issues of all checks")
	option.UseAllLogs = fs.Bool("use_all_logs", Defaults.UseAllLogs, "Also read rotated and compressed log files")
	return option
}
