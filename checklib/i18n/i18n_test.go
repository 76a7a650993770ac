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

package i18n

import (
	"testing"
)

func TestGetPrinter(t *testing.T) {
	for _, testCase := range [...]struct {
		lang     string
		expected string
	}{
		{lang: "en", expected: "Report written to out.yaml"},
		{lang: "zh", expected: "报告已写入 out.yaml"},
		{lang: "fr", expected: "Report written to out.yaml"},
	} {
		t.Run(testCase.lang, func(t *testing.T) {
			if got := GetPrinter(testCase.lang).Sprintf("Report written to %s", "out.yaml"); got != testCase.expected {
				t.Errorf("got %q, expected %q", got, testCase.expected)
			}
		})
	}
}
