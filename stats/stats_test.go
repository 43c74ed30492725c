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

package stats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v2"
)

func TestRecorderPersists(t *testing.T) {
	outputDir := t.TempDir()
	r := NewRecorder("/apks", outputDir, 3, true)
	r.Add(RunRecord{Artifact: "/apks/a.apk", Output: filepath.Join(outputDir, "a.json"), Status: Completed})
	r.Add(RunRecord{Artifact: "/apks/b.apk", Output: filepath.Join(outputDir, "b.json"), Status: TimedOut, ExitCode: -1})
	r.Add(RunRecord{Artifact: "/apks/assets_x.apk", Output: filepath.Join(outputDir, "assets_x.json"), Status: SkippedExcluded})
	summary := r.Finish()

	want := Summary{Total: 3, Completed: 1, TimedOut: 1, Skipped: 1}
	if summary != want {
		t.Errorf("unexpected summary. Get %+v, Expect %+v", summary, want)
	}
	if summary.Analyzed() != 2 {
		t.Errorf("unexpected analyzed count %d", summary.Analyzed())
	}

	contents, err := os.ReadFile(filepath.Join(outputDir, RunRecordsFile))
	if err != nil {
		t.Fatalf("os.ReadFile: %v", err)
	}
	var parsed batchFile
	if err := yaml.Unmarshal(contents, &parsed); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if parsed.BatchID != r.BatchID() || len(parsed.Records) != 3 || parsed.FinishedAt == nil {
		t.Errorf("unexpected records file: %s", contents)
	}
	if parsed.Records[1].Status != TimedOut {
		t.Errorf("unexpected status %q", parsed.Records[1].Status)
	}

	contents, err = os.ReadFile(filepath.Join(outputDir, ProgressFile))
	if err != nil {
		t.Fatalf("os.ReadFile: %v", err)
	}
	var progress Progress
	if err := json.Unmarshal(contents, &progress); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if progress.Done != 3 || progress.Total != 3 || progress.DoneRatio != "100%" {
		t.Errorf("unexpected progress %+v", progress)
	}
}

func TestRecorderWithoutPersist(t *testing.T) {
	outputDir := t.TempDir()
	r := NewRecorder("/apks", outputDir, 1, false)
	r.Add(RunRecord{Artifact: "/apks/a.apk", Status: Failed})
	if summary := r.Finish(); summary.Failed != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("nothing should be written, got %v", entries)
	}
	if len(r.batch.Records) != 1 {
		t.Errorf("records not kept in memory")
	}
}

func TestWriteProgressMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	WriteProgress(dir, Progress{Done: 1, Total: 2})
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("result dir must not be created")
	}
}
