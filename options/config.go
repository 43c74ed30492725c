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
	"fmt"
	"os"
	"strings"

	"github.com/golang/glog"
	"gopkg.in/yaml.v2"
)

// ToolConfig is the YAML form of the tool settings. Absent keys leave the
// corresponding flag value alone.
type ToolConfig struct {
	ToolDir       *string  `yaml:"tool_dir"`
	PlatformsDir  *string  `yaml:"platforms_dir"`
	JavaBin       *string  `yaml:"java_bin"`
	MainClass     *string  `yaml:"main_class"`
	Libraries     []string `yaml:"libraries"`
	MaxMemory     *int     `yaml:"max_memory"`
	Timeout       *int     `yaml:"timeout"`
	ExtraOptions  *string  `yaml:"extra_options"`
	Exclude       *string  `yaml:"exclude"`
	IgnoreDir     []string `yaml:"ignore_dir"`
	OutputCharset *string  `yaml:"output_charset"`
}

func LoadConfigFile(path string) (*ToolConfig, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile: %v", err)
	}
	config := &ToolConfig{}
	if err := yaml.UnmarshalStrict(contents, config); err != nil {
		return nil, fmt.Errorf("yaml.UnmarshalStrict %s: %v", path, err)
	}
	return config, nil
}

// ApplyConfig overlays c onto o. Flags passed explicitly win over the file;
// ignore_dir patterns from both sources are kept.
func (o *Options) ApplyConfig(c *ToolConfig) {
	applyString(o, "tool_dir", o.ToolDir, c.ToolDir)
	applyString(o, "platforms_dir", o.PlatformsDir, c.PlatformsDir)
	applyString(o, "java_bin", o.JavaBin, c.JavaBin)
	applyString(o, "main_class", o.MainClass, c.MainClass)
	applyString(o, "extra_options", o.ExtraOptions, c.ExtraOptions)
	applyString(o, "exclude", o.Exclude, c.Exclude)
	applyString(o, "output_charset", o.OutputCharset, c.OutputCharset)
	if len(c.Libraries) != 0 {
		libs := strings.Join(c.Libraries, ",")
		applyString(o, "libraries", o.Libraries, &libs)
	}
	if c.MaxMemory != nil && !o.IsSet("max_memory") {
		*o.MaxMemory = *c.MaxMemory
	}
	if c.Timeout != nil && !o.IsSet("timeout") {
		*o.Timeout = *c.Timeout
	}
	o.IgnoreDirPatterns = append(o.IgnoreDirPatterns, c.IgnoreDir...)
}

func applyString(o *Options, name string, dst, src *string) {
	if src == nil {
		return
	}
	if o.IsSet(name) {
		glog.V(1).Infof("-%s given on the command line, ignoring %q from the config file", name, *src)
		return
	}
	*dst = *src
}
