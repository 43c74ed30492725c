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

package options

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/exp/slices"
	"naive.systems/flowbatch/i18n"
)

// ArrayFlags collects every occurrence of a repeatable flag.
type ArrayFlags []string

func (i *ArrayFlags) String() string {
	return strings.Join(*i, ",")
}

func (i *ArrayFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

type Options struct {
	AbortOnMissingSource *bool
	AvailMemRatio        *float64
	CheckProgress        *bool
	ConfigFile           *string
	Exclude              *string
	ExtraOptions         *string
	IgnoreDirPatterns    ArrayFlags
	InputExt             *string
	JavaBin              *string
	Lang                 *string
	Libraries            *string
	LimitMemory          *bool
	MainClass            *string
	MaxMemory            *int
	OutputCharset        *string
	OutputDir            *string
	OutputExt            *string
	PlatformsDir         *string
	SourceDir            *string
	Timeout              *int
	ToolDir              *string

	fs *flag.FlagSet
}

type DefaultOptionValues struct {
	AbortOnMissingSource bool
	AvailMemRatio        float64
	CheckProgress        bool
	Exclude              string
	InputExt             string
	JavaBin              string
	Lang                 string
	Libraries            string
	LimitMemory          bool
	MainClass            string
	MaxMemory            int
	OutputExt            string
	Timeout              int
	ToolDir              string
}

var Defaults = DefaultOptionValues{
	AbortOnMissingSource: false,
	AvailMemRatio:        0.9,
	CheckProgress:        true,
	Exclude:              "assets",
	InputExt:             ".apk",
	JavaBin:              "java",
	Lang:                 "en",
	Libraries: "soot-trunk.jar,soot-infoflow.jar,soot-infoflow-android.jar," +
		"slf4j-api-1.7.5.jar,slf4j-simple-1.7.5.jar,axml-2.0.jar",
	LimitMemory: false,
	MainClass:   "soot.jimple.infoflow.android.TestApps.Test",
	MaxMemory:   80,
	OutputExt:   ".json",
	Timeout:     30,
	ToolDir:     "FlowDroid",
}

// The platforms directory lives inside the tool directory unless overridden.
const defaultPlatformsSubdir = "android-platforms/platforms"

// NewOptions registers every flag on fs. Short and long forms of a flag
// share one variable.
func NewOptions(fs *flag.FlagSet) *Options {
	option := &Options{fs: fs}
	option.SourceDir = fs.String("source", "", "Source directory for APKs (required)")
	fs.StringVar(option.SourceDir, "s", "", "Shorthand for -source")
	option.OutputDir = fs.String("output", "", "Output directory (required)")
	fs.StringVar(option.OutputDir, "o", "", "Shorthand for -output")

	option.AbortOnMissingSource = fs.Bool("abort_on_missing_source", Defaults.AbortOnMissingSource, "Exit with an error when the source directory does not exist instead of continuing")
	option.AvailMemRatio = fs.Float64("avail_mem_ratio", Defaults.AvailMemRatio, "The ratio of available memory the analysis heap may use when -limit_memory is set")
	option.CheckProgress = fs.Bool("check_progress", Defaults.CheckProgress, "Write progress and run records into the output directory")
	option.ConfigFile = fs.String("config", "", "YAML file overriding the tool settings. Flags given on the command line take precedence")
	option.Exclude = fs.String("exclude", Defaults.Exclude, "Artifacts whose name contains this substring are never analyzed. Empty disables it")
	option.ExtraOptions = fs.String("extra_options", "", "Extra options appended to the analysis command, shell quoted")
	option.InputExt = fs.String("input_ext", Defaults.InputExt, "Extension of input artifacts")
	option.JavaBin = fs.String("java_bin", Defaults.JavaBin, "Java binary location")
	option.Lang = fs.String("lang", Defaults.Lang, "Language of status lines. Support en and zh")
	option.Libraries = fs.String("libraries", Defaults.Libraries, "Comma separated library archives forming the classpath, relative to -tool_dir")
	option.LimitMemory = fs.Bool("limit_memory", Defaults.LimitMemory, "Clamp the heap size to the available memory")
	option.MainClass = fs.String("main_class", Defaults.MainClass, "Entry point of the analysis tool")
	option.MaxMemory = fs.Int("max_memory", Defaults.MaxMemory, "Maximum heap size of the analysis in gigabytes")
	option.OutputCharset = fs.String("output_charset", "", "Charset of the tool output, converted to UTF-8 before writing. Empty keeps raw bytes")
	option.OutputExt = fs.String("output_ext", Defaults.OutputExt, "Extension of result files")
	option.PlatformsDir = fs.String("platforms_dir", "", "Android platforms directory. Default is android-platforms/platforms under -tool_dir")
	option.Timeout = fs.Int("timeout", Defaults.Timeout, "Minutes of timeout for analyzing a single artifact")
	option.ToolDir = fs.String("tool_dir", Defaults.ToolDir, "Directory holding the analysis tool, relative to the current directory")
	fs.Var(&option.IgnoreDirPatterns, "ignore_dir", "Doublestar pattern of paths under the source directory to ignore. Repeatable")
	return option
}

// IsSet reports whether any of the given flag names was passed explicitly.
func (o *Options) IsSet(names ...string) bool {
	set := false
	o.fs.Visit(func(f *flag.Flag) {
		if slices.Contains(names, f.Name) {
			set = true
		}
	})
	return set
}

func (o *Options) Validate() error {
	if *o.SourceDir == "" {
		return fmt.Errorf("-source is required")
	}
	if *o.OutputDir == "" {
		return fmt.Errorf("-output is required")
	}
	if *o.MaxMemory <= 0 {
		return fmt.Errorf("-max_memory must be positive, got %d", *o.MaxMemory)
	}
	if *o.Timeout <= 0 {
		return fmt.Errorf("-timeout must be positive, got %d", *o.Timeout)
	}
	if *o.AvailMemRatio <= 0 || *o.AvailMemRatio > 1 {
		return fmt.Errorf("-avail_mem_ratio must be in (0, 1], got %v", *o.AvailMemRatio)
	}
	if !i18n.IsSupported(*o.Lang) {
		return fmt.Errorf("unsupported -lang %q, support en and zh", *o.Lang)
	}
	if len(o.GetLibraries()) == 0 {
		return fmt.Errorf("-libraries is empty")
	}
	if normalizeExt(*o.InputExt) == normalizeExt(*o.OutputExt) {
		return fmt.Errorf("-input_ext and -output_ext must differ, both are %q", *o.InputExt)
	}
	return nil
}

func (o *Options) GetSourceDir() string {
	return *o.SourceDir
}

func (o *Options) GetOutputDir() string {
	return *o.OutputDir
}

func (o *Options) GetAbortOnMissingSource() bool {
	return *o.AbortOnMissingSource
}

func (o *Options) GetAvailMemRatio() float64 {
	return *o.AvailMemRatio
}

func (o *Options) GetCheckProgress() bool {
	return *o.CheckProgress
}

func (o *Options) GetExclude() string {
	return *o.Exclude
}

func (o *Options) GetExtraOptions() string {
	return *o.ExtraOptions
}

func (o *Options) GetIgnoreDirPatterns() []string {
	return o.IgnoreDirPatterns
}

func (o *Options) GetInputExt() string {
	return normalizeExt(*o.InputExt)
}

func (o *Options) GetOutputExt() string {
	return normalizeExt(*o.OutputExt)
}

func (o *Options) GetJavaBin() string {
	return *o.JavaBin
}

func (o *Options) GetLang() string {
	return *o.Lang
}

// GetLibraries splits -libraries, dropping blanks.
func (o *Options) GetLibraries() []string {
	var libs []string
	for _, lib := range strings.Split(*o.Libraries, ",") {
		if lib = strings.TrimSpace(lib); lib != "" {
			libs = append(libs, lib)
		}
	}
	return libs
}

func (o *Options) GetLimitMemory() bool {
	return *o.LimitMemory
}

func (o *Options) GetMainClass() string {
	return *o.MainClass
}

func (o *Options) GetMaxMemory() int {
	return *o.MaxMemory
}

func (o *Options) GetOutputCharset() string {
	return *o.OutputCharset
}

func (o *Options) GetTimeout() time.Duration {
	return time.Duration(*o.Timeout) * time.Minute
}

// GetToolDir resolves -tool_dir against cwd, the working directory at start.
func (o *Options) GetToolDir(cwd string) string {
	if filepath.IsAbs(*o.ToolDir) {
		return filepath.Clean(*o.ToolDir)
	}
	return filepath.Join(cwd, *o.ToolDir)
}

func (o *Options) GetPlatformsDir(cwd string) string {
	if *o.PlatformsDir == "" {
		return filepath.Join(o.GetToolDir(cwd), defaultPlatformsSubdir)
	}
	if filepath.IsAbs(*o.PlatformsDir) {
		return filepath.Clean(*o.PlatformsDir)
	}
	return filepath.Join(cwd, *o.PlatformsDir)
}

func normalizeExt(ext string) string {
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}
