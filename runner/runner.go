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

// Package runner drives one batch: discover artifacts, skip the finished and
// excluded ones, analyze the rest one at a time and store each output.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/glog"
	"golang.org/x/text/message"
	"naive.systems/flowbatch/atomic"
	"naive.systems/flowbatch/basic"
	"naive.systems/flowbatch/discover"
	"naive.systems/flowbatch/i18n"
	"naive.systems/flowbatch/stats"
)

var ErrSourceNotFound = errors.New("source directory not found")

// Analyzer runs the external analysis on one artifact. The returned output
// must be filled in even when err is not nil.
type Analyzer interface {
	Analyze(ctx context.Context, artifactPath string, timeout time.Duration) (basic.ExecResult, error)
}

type Config struct {
	SourceDir string
	OutputDir string
	InputExt  string
	OutputExt string
	// Artifacts whose base name contains Exclude are skipped. Empty disables it.
	Exclude              string
	IgnorePatterns       []string
	Timeout              time.Duration
	AbortOnMissingSource bool
	// Write progress and run records into OutputDir.
	CheckProgress bool
	Lang          string
}

// OutputPath maps an artifact to its result file: same base name, input
// extension swapped for the output extension, inside outputDir.
func OutputPath(outputDir, artifactPath, inputExt, outputExt string) string {
	base := strings.TrimSuffix(filepath.Base(artifactPath), inputExt)
	return filepath.Join(outputDir, base+outputExt)
}

// skipStatus returns the reason artifactPath must not be analyzed, or "".
func skipStatus(cfg *Config, artifactPath, outputPath string) stats.Status {
	if _, err := os.Stat(outputPath); err == nil {
		return stats.SkippedExisting
	}
	if cfg.Exclude != "" && strings.Contains(filepath.Base(artifactPath), cfg.Exclude) {
		return stats.SkippedExcluded
	}
	return ""
}

// Run processes the batch sequentially. Per-artifact failures are recorded,
// never returned; the error is only set for setup problems or when ctx is
// done before the batch finished.
func Run(ctx context.Context, cfg *Config, analyzer Analyzer) (stats.Summary, error) {
	printer := i18n.GetPrinter(cfg.Lang)

	artifacts, err := discover.Artifacts(cfg.SourceDir, cfg.InputExt, cfg.IgnorePatterns)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return stats.Summary{}, fmt.Errorf("discover.Artifacts: %v", err)
		}
		basic.PrintfWithTimeStamp("%s", printer.Sprintf("Folder not found: %s", cfg.SourceDir))
		if cfg.AbortOnMissingSource {
			return stats.Summary{}, fmt.Errorf("%w: %s", ErrSourceNotFound, cfg.SourceDir)
		}
		artifacts = nil
	}
	if err := os.MkdirAll(cfg.OutputDir, os.ModePerm); err != nil {
		return stats.Summary{}, fmt.Errorf("os.MkdirAll(%s): %v", cfg.OutputDir, err)
	}
	removeStaleTemps(cfg.OutputDir)
	basic.PrintfWithTimeStamp("%s", printer.Sprintf("Found %d artifacts in %s", len(artifacts), cfg.SourceDir))

	recorder := stats.NewRecorder(cfg.SourceDir, cfg.OutputDir, len(artifacts), cfg.CheckProgress)
	glog.Infof("batch %s started", recorder.BatchID())
	progress := basic.NewCheckingProcessPrinter(len(artifacts), printer)
	for _, artifactPath := range artifacts {
		if ctx.Err() != nil {
			glog.Warningf("batch %s interrupted: %v", recorder.BatchID(), ctx.Err())
			break
		}
		recorder.Add(processArtifact(ctx, cfg, analyzer, artifactPath, progress, printer))
	}
	summary := recorder.Finish()
	basic.PrintfWithTimeStamp("%s", printer.Sprintf("Batch finished in %s: %d analyzed, %d skipped, %d failed, %d timed out",
		basic.FormatTimeDuration(time.Since(progress.GetStartedAt())),
		summary.Analyzed(), summary.Skipped, summary.Failed, summary.TimedOut))
	return summary, ctx.Err()
}

func processArtifact(
	ctx context.Context,
	cfg *Config,
	analyzer Analyzer,
	artifactPath string,
	progress *basic.CheckingProcessPrinter,
	printer *message.Printer,
) stats.RunRecord {
	name := filepath.Base(artifactPath)
	outputPath := OutputPath(cfg.OutputDir, artifactPath, cfg.InputExt, cfg.OutputExt)
	record := stats.RunRecord{Artifact: artifactPath, Output: outputPath}

	if status := skipStatus(cfg, artifactPath, outputPath); status != "" {
		record.Status = status
		progress.SkipTask(name, statusText(printer, status))
		return record
	}

	progress.StartTask(name)
	record.StartedAt = time.Now()
	result, err := analyzer.Analyze(ctx, artifactPath, cfg.Timeout)
	record.ExitCode = result.ExitCode
	record.Duration = basic.FormatTimeDuration(result.Duration)

	switch {
	case result.TimedOut:
		record.Status = stats.TimedOut
		if err != nil {
			record.Error = err.Error()
		}
	case ctx.Err() != nil:
		// An interrupted run leaves no output so the next batch retries it.
		record.Status = stats.Failed
		record.Error = fmt.Sprintf("interrupted: %v", ctx.Err())
		progress.FinishTask(name, statusText(printer, record.Status))
		return record
	case err != nil:
		record.Status = stats.Failed
		record.Error = err.Error()
	default:
		record.Status = stats.Completed
	}

	output := result.Output
	if errors.Is(err, basic.ErrNotStarted) {
		output = []byte(err.Error())
	}
	if err := atomic.Write(outputPath, output); err != nil {
		glog.Errorf("failed to write output of %s: %v", artifactPath, err)
		record.Status = stats.Failed
		record.Error = err.Error()
	}
	progress.FinishTask(name, statusText(printer, record.Status))
	return record
}

// removeStaleTemps deletes the temporary files of writes a killed batch never
// finished.
func removeStaleTemps(outputDir string) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		glog.Warningf("os.ReadDir(%s): %v", outputDir, err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !atomic.IsTemp(entry.Name()) {
			continue
		}
		path := filepath.Join(outputDir, entry.Name())
		if err := os.Remove(path); err != nil {
			glog.Warningf("failed to remove stale file %s: %v", path, err)
			continue
		}
		glog.V(1).Infof("removed stale file %s", path)
	}
}

func statusText(p *message.Printer, status stats.Status) string {
	switch status {
	case stats.Completed:
		return p.Sprintf("completed")
	case stats.Failed:
		return p.Sprintf("failed")
	case stats.TimedOut:
		return p.Sprintf("timed out")
	case stats.SkippedExisting:
		return p.Sprintf("output exists")
	case stats.SkippedExcluded:
		return p.Sprintf("excluded")
	}
	return string(status)
}
