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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFakeJava(t *testing.T) string {
	t.Helper()
	java := filepath.Join(t.TempDir(), "java")
	// $5 is the artifact path after -Xmx, -cp, the classpath and the main class.
	script := "#!/bin/sh\necho \"analyzed $5\"\n"
	if err := os.WriteFile(java, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return java
}

func TestRunWithoutArguments(t *testing.T) {
	var stderr bytes.Buffer
	if code := run(context.Background(), nil, &stderr); code != 1 {
		t.Errorf("unexpected exit code. Get %d, Expect 1", code)
	}
	if !strings.Contains(stderr.String(), "Usage:") {
		t.Errorf("usage not printed: %q", stderr.String())
	}
}

func TestRunInvalidFlags(t *testing.T) {
	dir := t.TempDir()
	for _, testCase := range []struct {
		name string
		args []string
	}{
		{"missing output", []string{"-s", dir}},
		{"missing source", []string{"--output", dir}},
		{"unknown flag", []string{"-s", dir, "-o", dir, "-no_such_flag"}},
		{"bad timeout", []string{"-s", dir, "-o", dir, "-timeout", "0"}},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			var stderr bytes.Buffer
			if code := run(context.Background(), testCase.args, &stderr); code != 2 {
				t.Errorf("unexpected exit code. Get %d, Expect 2", code)
			}
			if !strings.Contains(stderr.String(), "Usage:") {
				t.Errorf("usage not printed: %q", stderr.String())
			}
		})
	}
}

func TestRunMissingSourceDir(t *testing.T) {
	java := writeFakeJava(t)
	sourceDir := filepath.Join(t.TempDir(), "missing")
	for _, testCase := range []struct {
		name  string
		extra []string
		want  int
	}{
		{"continue", nil, 0},
		{"abort", []string{"-abort_on_missing_source"}, 1},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			outputDir := filepath.Join(t.TempDir(), "out")
			args := append([]string{"-s", sourceDir, "-o", outputDir, "-java_bin", java, "-tool_dir", t.TempDir()}, testCase.extra...)
			if code := run(context.Background(), args, &bytes.Buffer{}); code != testCase.want {
				t.Errorf("unexpected exit code. Get %d, Expect %d", code, testCase.want)
			}
			_, err := os.Stat(outputDir)
			if testCase.want == 0 && err != nil {
				t.Errorf("output dir not created: %v", err)
			}
		})
	}
}

func TestRunAnalyzesArtifacts(t *testing.T) {
	java := writeFakeJava(t)
	sourceDir := t.TempDir()
	outputDir := t.TempDir()
	for _, name := range []string{"sample.apk", "assets_lib.apk"} {
		if err := os.WriteFile(filepath.Join(sourceDir, name), []byte("PK"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	args := []string{"--source", sourceDir, "--output", outputDir, "-java_bin", java, "-tool_dir", t.TempDir()}
	if code := run(context.Background(), args, &bytes.Buffer{}); code != 0 {
		t.Fatalf("unexpected exit code. Get %d, Expect 0", code)
	}
	contents, err := os.ReadFile(filepath.Join(outputDir, "sample.json"))
	if err != nil {
		t.Fatal(err)
	}
	want := "analyzed " + filepath.Join(sourceDir, "sample.apk") + "\n"
	if string(contents) != want {
		t.Errorf("unexpected output. Get %q, Expect %q", contents, want)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "assets_lib.json")); !os.IsNotExist(err) {
		t.Errorf("excluded artifact was analyzed")
	}
}
