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

// Message keys are the English format strings.
var zhMessages = map[string]string{
	"Start analyzing %s (%d/%d)":         "开始分析 %s (%d/%d)",
	"Analysis of %s %s (%s, %d/%d) [%s]": "%[1]s 分析%[2]s (%[3]s, %[4]d/%[5]d) [%[6]s]",
	"Skip %s: %s (%s, %d/%d)":            "跳过 %s: %s (%s, %d/%d)",
	"Folder not found: %s":               "目录不存在: %s",
	"Found %d artifacts in %s":           "在 %[2]s 中找到 %[1]d 个待分析文件",
	"Batch finished in %s: %d analyzed, %d skipped, %d failed, %d timed out": "批处理完成, 耗时 %s: 分析 %d 个, 跳过 %d 个, 失败 %d 个, 超时 %d 个",
	"completed":     "完成",
	"failed":        "失败",
	"timed out":     "超时",
	"output exists": "结果已存在",
	"excluded":      "已排除",
}

func init() {
	for key, msg := range zhMessages {
		if err := message.SetString(language.Chinese, key, msg); err != nil {
			panic(err)
		}
	}
}

func IsSupported(lang string) bool {
	_, exist := languageMap[lang]
	return exist
}

// GetPrinter falls back to English for unknown languages.
func GetPrinter(lang string) *message.Printer {
	langTag, exist := languageMap[lang]
	if !exist {
		langTag = language.English
	}
	return message.NewPrinter(langTag)
}
