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
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"gopkg.in/yaml.v2"
	"naive.systems/flowbatch/atomic"
	"naive.systems/flowbatch/basic"
)

const (
	ProgressFile   = "progress.nsa_metadata"
	RunRecordsFile = "run_records.nsa_metadata"
)

type Status string

const (
	Completed       Status = "completed"
	Failed          Status = "failed"
	TimedOut        Status = "timeout"
	SkippedExisting Status = "skipped_existing"
	SkippedExcluded Status = "skipped_excluded"
)

func (s Status) Skipped() bool {
	return s == SkippedExisting || s == SkippedExcluded
}

// RunRecord is what happened to one artifact. It sits next to the raw output
// file, which is never annotated.
type RunRecord struct {
	Artifact  string    `yaml:"artifact"`
	Output    string    `yaml:"output"`
	Status    Status    `yaml:"status"`
	ExitCode  int       `yaml:"exit_code,omitempty"`
	StartedAt time.Time `yaml:"started_at,omitempty"`
	Duration  string    `yaml:"duration,omitempty"`
	Error     string    `yaml:"error,omitempty"`
}

type batchFile struct {
	BatchID    string      `yaml:"batch_id"`
	SourceDir  string      `yaml:"source_dir"`
	OutputDir  string      `yaml:"output_dir"`
	StartedAt  time.Time   `yaml:"started_at"`
	FinishedAt *time.Time  `yaml:"finished_at,omitempty"`
	Records    []RunRecord `yaml:"records"`
}

type Progress struct {
	BatchID   string    `json:"batch_id"`
	Done      int       `json:"done"`
	Total     int       `json:"total"`
	DoneRatio string    `json:"done_ratio"`
	StartedAt time.Time `json:"started_at"`
}

type Summary struct {
	Total     int
	Completed int
	Failed    int
	TimedOut  int
	Skipped   int
}

// Analyzed counts the artifacts a process was launched for.
func (s Summary) Analyzed() int {
	return s.Completed + s.Failed + s.TimedOut
}

// Recorder keeps the run records of one batch and, when persist is set,
// mirrors them and the progress into the output directory after every
// artifact.
type Recorder struct {
	mutex   sync.Mutex
	persist bool
	total   int
	batch   batchFile
	summary Summary
}

func NewRecorder(sourceDir, outputDir string, total int, persist bool) *Recorder {
	return &Recorder{
		persist: persist,
		total:   total,
		batch: batchFile{
			BatchID:   uuid.NewString(),
			SourceDir: sourceDir,
			OutputDir: outputDir,
			StartedAt: time.Now(),
			Records:   []RunRecord{},
		},
		summary: Summary{Total: total},
	}
}

func (r *Recorder) BatchID() string {
	return r.batch.BatchID
}

func (r *Recorder) Add(record RunRecord) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.batch.Records = append(r.batch.Records, record)
	switch {
	case record.Status == Completed:
		r.summary.Completed++
	case record.Status == Failed:
		r.summary.Failed++
	case record.Status == TimedOut:
		r.summary.TimedOut++
	case record.Status.Skipped():
		r.summary.Skipped++
	default:
		glog.Warningf("undefined status %q of %s", record.Status, record.Artifact)
	}
	if !r.persist {
		return
	}
	done := len(r.batch.Records)
	WriteProgress(r.batch.OutputDir, Progress{
		BatchID:   r.batch.BatchID,
		Done:      done,
		Total:     r.total,
		DoneRatio: basic.GetPercentString(done, r.total),
		StartedAt: r.batch.StartedAt,
	})
	r.writeRecords()
}

// Finish stamps the batch end and returns the counts.
func (r *Recorder) Finish() Summary {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	now := time.Now()
	r.batch.FinishedAt = &now
	if r.persist {
		r.writeRecords()
	}
	return r.summary
}

func (r *Recorder) writeRecords() {
	path := filepath.Join(r.batch.OutputDir, RunRecordsFile)
	contents, err := yaml.Marshal(&r.batch)
	if err != nil {
		glog.Errorf("yaml.Marshal: %v", err)
		return
	}
	if err := atomic.Write(path, contents); err != nil {
		glog.Errorf("failed to write to file %s: %v", path, err)
	}
}

func WriteProgress(resultDir string, progress Progress) {
	// skip writing it if resultDir does not exist
	_, err := os.Stat(resultDir)
	if os.IsNotExist(err) {
		glog.Warningf("result dir %s does not exist", resultDir)
		return
	}
	path := filepath.Join(resultDir, ProgressFile)
	contents, err := json.Marshal(progress)
	if err != nil {
		glog.Errorf("failed to marshal progress %+v: %v", progress, err)
		return
	}
	if err := atomic.Write(path, contents); err != nil {
		glog.Errorf("failed to write to file %s: %v", path, err)
	}
}
