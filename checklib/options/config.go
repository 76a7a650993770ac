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
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/golang/glog"
	"golang.org/x/exp/slices"
	"naive.systems/sosinspect/check"
)

var supportedFormats = []string{"yaml", "json"}
var supportedLangs = []string{"en", "zh"}

// ConfigError reports an option that cannot be applied.
type ConfigError struct {
	Path string
	Key  string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("option %s: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("%s: option %s: %v", e.Path, e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// LoadConfigFile applies the top-level keys of a TOML file to the flags
// of fs that were not set on the command line. Keys are flag names, e.g.
//
//	data_root = "/tmp/sosreport-host1"
//	use_all_logs = true
//	checks = ["storage/ceph-daemon-logs"]
//
// It runs before the log directory is known and must not log.
func LoadConfigFile(path string, fs *flag.FlagSet) error {
	var values map[string]interface{}
	meta, err := toml.DecodeFile(path, &values)
	if err != nil {
		return errors.WithStack(&ConfigError{Path: path, Key: "*", Err: err})
	}
	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		explicit[f.Name] = true
	})
	for _, key := range meta.Keys() {
		if len(key) != 1 {
			continue
		}
		name := key[0]
		if name == "config" || fs.Lookup(name) == nil {
			return errors.WithStack(&ConfigError{Path: path, Key: name, Err: errors.New("unknown option")})
		}
		// the command line wins
		if explicit[name] {
			continue
		}
		value, err := flagValue(values[name])
		if err != nil {
			return errors.WithStack(&ConfigError{Path: path, Key: name, Err: err})
		}
		if err := fs.Set(name, value); err != nil {
			return errors.WithStack(&ConfigError{Path: path, Key: name, Err: err})
		}
	}
	return nil
}

func flagValue(v interface{}) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case bool, int64, float64:
		return fmt.Sprint(t), nil
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return "", errors.Newf("list element %v is not a string", e)
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), nil
	}
	return "", errors.Newf("unsupported value type %T", v)
}

// Validate checks the option values that flag parsing cannot.
func (s SharedOptions) Validate() error {
	if !slices.Contains(supportedFormats, s.GetFormat()) {
		return errors.WithHint(errors.WithStack(&ConfigError{Key: "format", Err: errors.Newf("unsupported format %q", s.GetFormat())}),
			"supported formats: "+strings.Join(supportedFormats, ", "))
	}
	if !slices.Contains(supportedLangs, s.GetLang()) {
		return errors.WithStack(&ConfigError{Key: "lang", Err: errors.Newf("unsupported language %q", s.GetLang())})
	}
	if s.GetNumWorkers() < 0 {
		return errors.WithStack(&ConfigError{Key: "num_workers", Err: errors.New("must not be negative")})
	}
	if s.GetScanWorkers() < 1 {
		return errors.WithStack(&ConfigError{Key: "scan_workers", Err: errors.New("must be at least 1")})
	}
	if s.GetMaxOpenFiles() > 0 && s.GetMaxOpenFiles() < s.GetScanWorkers() {
		return errors.WithStack(&ConfigError{Key: "max_open_files", Err: errors.Newf("%d is less than scan_workers %d", s.GetMaxOpenFiles(), s.GetScanWorkers())})
	}
	if _, err := os.Stat(s.GetDataRoot()); err != nil {
		glog.Warningf("data root %s is not readable, checks will find no data: %v", s.GetDataRoot(), err)
	}
	return nil
}

// CheckContext returns the snapshot description handed to every check.
func (s SharedOptions) CheckContext() *check.Context {
	return &check.Context{
		DataRoot:    s.GetDataRoot(),
		UseAllLogs:  s.GetUseAllLogs(),
		ShowExtras:  s.GetShowExtras(),
		ScanWorkers: s.GetScanWorkers(),
		Charset:     s.GetCharset(),
	}
}
