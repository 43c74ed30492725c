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
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/golang/glog"
	"naive.systems/flowbatch/cpumem"
	"naive.systems/flowbatch/flowdroid"
	"naive.systems/flowbatch/options"
	"naive.systems/flowbatch/runner"
	"naive.systems/flowbatch/utils"
)

func newFlagSet(name string, output io.Writer) (*flag.FlagSet, *options.Options) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	opts := options.NewOptions(fs)
	// glog registers -v, -logtostderr and friends on the default set.
	flag.CommandLine.VisitAll(func(f *flag.Flag) {
		if fs.Lookup(f.Name) == nil {
			fs.Var(f.Value, f.Name, f.Usage)
		}
	})
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Launches FlowDroid over every APK under a source directory.\n\n"+
			"Usage: %s -s <source dir> -o <output dir> [options]\n\n", name)
		fs.PrintDefaults()
	}
	return fs, opts
}

// run returns the process exit code: 1 for no arguments or a failed batch,
// 2 for invalid flags.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs, opts := newFlagSet(filepath.Base(os.Args[0]), stderr)
	if len(args) == 0 {
		fs.Usage()
		return 1
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *opts.ConfigFile != "" {
		config, err := options.LoadConfigFile(*opts.ConfigFile)
		if err != nil {
			glog.Errorf("options.LoadConfigFile: %v", err)
			return 2
		}
		opts.ApplyConfig(config)
	}
	if err := opts.Validate(); err != nil {
		fmt.Fprintf(stderr, "%v\n\n", err)
		fs.Usage()
		return 2
	}

	cwd, err := os.Getwd()
	if err != nil {
		glog.Errorf("os.Getwd: %v", err)
		return 1
	}
	javaBin, err := utils.ResolveBinaryPath(opts.GetJavaBin())
	if err != nil {
		glog.Errorf("utils.ResolveBinaryPath: %v", err)
		return 1
	}
	toolDir := opts.GetToolDir(cwd)
	platformsDir := opts.GetPlatformsDir(cwd)
	utils.CheckToolLayout(toolDir, platformsDir, opts.GetLibraries())

	heapGB := opts.GetMaxMemory()
	if opts.GetLimitMemory() {
		heapGB, err = cpumem.HeapBudget(heapGB, opts.GetAvailMemRatio())
		if err != nil {
			glog.Warningf("cpumem.HeapBudget: %v, keeping %d GB", err, heapGB)
		}
	}
	extraOptions, err := flowdroid.ParseExtraOptions(opts.GetExtraOptions())
	if err != nil {
		glog.Errorf("flowdroid.ParseExtraOptions: %v", err)
		return 2
	}

	tool := &flowdroid.Tool{
		JavaBin:       javaBin,
		MaxMemoryGB:   heapGB,
		Libraries:     opts.GetLibraries(),
		MainClass:     opts.GetMainClass(),
		PlatformsDir:  platformsDir,
		ToolDir:       toolDir,
		ExtraOptions:  extraOptions,
		OutputCharset: opts.GetOutputCharset(),
	}
	cfg := &runner.Config{
		SourceDir:            opts.GetSourceDir(),
		OutputDir:            opts.GetOutputDir(),
		InputExt:             opts.GetInputExt(),
		OutputExt:            opts.GetOutputExt(),
		Exclude:              opts.GetExclude(),
		IgnorePatterns:       opts.GetIgnoreDirPatterns(),
		Timeout:              opts.GetTimeout(),
		AbortOnMissingSource: opts.GetAbortOnMissingSource(),
		CheckProgress:        opts.GetCheckProgress(),
		Lang:                 opts.GetLang(),
	}
	summary, err := runner.Run(ctx, cfg, tool)
	if err != nil {
		glog.Errorf("runner.Run: %v", err)
		return 1
	}
	glog.Infof("batch summary: %+v", summary)
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	glog.Flush()
	os.Exit(code)
}
