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

import "testing"

func TestGetPrinter(t *testing.T) {
	for _, testCase := range []struct {
		lang string
		want string
	}{
		{"en", "Found 2 artifacts in /apks"},
		{"zh", "在 /apks 中找到 2 个待分析文件"},
		{"fr", "Found 2 artifacts in /apks"},
	} {
		t.Run(testCase.lang, func(t *testing.T) {
			got := GetPrinter(testCase.lang).Sprintf("Found %d artifacts in %s", 2, "/apks")
			if got != testCase.want {
				t.Errorf("unexpected message. Get %q, Expect %q", got, testCase.want)
			}
		})
	}
}

func TestIsSupported(t *testing.T) {
	if !IsSupported("zh") || !IsSupported("en") {
		t.Errorf("en and zh must be supported")
	}
	if IsSupported("de") {
		t.Errorf("de is not supported")
	}
}
