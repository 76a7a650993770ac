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

package report

import (
	"fmt"
	"io"
	"reflect"

	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v2"
	"naive.systems/sosinspect/atomic"
)

func init() {
	// Long messages stay on one line.
	yaml.FutureLineWrap()
}

type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case YAML, JSON:
		return Format(s), nil
	}
	return "", errors.WithHint(errors.Newf("unknown report format %q", s), "use yaml or json")
}

// Encode writes the report, or its summary, to w. An empty report
// produces no output.
func (r *Report) Encode(w io.Writer, format Format, summary bool) error {
	var doc yaml.MapSlice
	if summary {
		doc = r.Summary()
	} else {
		doc = r.Document()
	}
	if len(doc) == 0 {
		return nil
	}
	switch format {
	case YAML:
		out, err := yaml.Marshal(doc)
		if err != nil {
			return errors.Wrap(err, "yaml.Marshal")
		}
		_, err = w.Write(out)
		return err
	case JSON:
		plain, err := toPlain(doc)
		if err != nil {
			return err
		}
		v, err := structpb.NewValue(plain)
		if err != nil {
			return errors.Wrap(err, "structpb.NewValue")
		}
		out, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(v)
		if err != nil {
			return errors.Wrap(err, "protojson.Marshal")
		}
		_, err = w.Write(append(out, '\n'))
		return err
	}
	return errors.Newf("unknown report format %q", format)
}

// WriteFile replaces path with the encoded report.
func (r *Report) WriteFile(path string, format Format, summary bool) error {
	return atomic.WriteFunc(path, func(w io.Writer) error {
		return r.Encode(w, format, summary)
	})
}

// toPlain converts a report tree into the map/slice/scalar values
// accepted by structpb.
func toPlain(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case nil, string, bool, int, int32, int64, uint32, uint64, float32, float64:
		return t, nil
	case yaml.MapSlice:
		m := make(map[string]interface{}, len(t))
		for _, item := range t {
			value, err := toPlain(item.Value)
			if err != nil {
				return nil, err
			}
			m[fmt.Sprint(item.Key)] = value
		}
		return m, nil
	case yaml.Marshaler:
		value, err := t.MarshalYAML()
		if err != nil {
			return nil, err
		}
		return toPlain(value)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		list := make([]interface{}, rv.Len())
		for i := range list {
			value, err := toPlain(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			list[i] = value
		}
		return list, nil
	case reflect.Map:
		m := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			value, err := toPlain(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			m[fmt.Sprint(iter.Key().Interface())] = value
		}
		return m, nil
	case reflect.Ptr:
		if rv.IsNil() {
			return nil, nil
		}
		return toPlain(rv.Elem().Interface())
	}
	return nil, errors.AssertionFailedf("unsupported report value of type %T", v)
}
