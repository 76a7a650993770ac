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
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var languageMap = map[string]language.Tag{"en": language.English, "zh": language.Chinese}

var zhMessages = map[string]string{
	"Use %d worker(s)":                    "使用 %d 个工作线程",
	"Start running %s (%v/%v)":            "开始运行 %s (%v/%v)",
	"%s completed (%s, %v/%v) [%s]":       "%s 已完成 (%s, %v/%v) [%s]",
	"Ctrl C Pressed. Stop inspection":     "已按下 Ctrl C，停止检查",
	"%d check(s) run, %d failed":          "已运行 %d 项检查，%d 项失败",
	"%d error(s), %d warning(s), %d info": "%d 个错误，%d 个警告，%d 条信息",
	"%d known bug(s) matched":             "匹配到 %d 个已知缺陷",
	"Report written to %s":                "报告已写入 %s",
	"Check failed: %v":                    "检查失败：%v",
}

func init() {
	for key, msg := range zhMessages {
		if err := message.SetString(language.Chinese, key, msg); err != nil {
			panic(err)
		}
	}
}

// GetPrinter returns a printer for lang, falling back to English.
func GetPrinter(lang string) *message.Printer {
	langTag, exist := languageMap[lang]
	if !exist {
		langTag = language.English
	}
	return message.NewPrinter(langTag)
}
