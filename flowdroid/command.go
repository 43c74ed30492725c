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

package flowdroid

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/shlex"
)

// Tool describes how to launch FlowDroid for one artifact.
type Tool struct {
	JavaBin      string
	MaxMemoryGB  int
	Libraries    []string
	MainClass    string
	PlatformsDir string
	// Working directory of the launched process. Library archives are
	// resolved against it by the JVM.
	ToolDir       string
	ExtraOptions  []string
	OutputCharset string
}

// ParseExtraOptions splits a shell quoted option string.
func ParseExtraOptions(options string) ([]string, error) {
	if strings.TrimSpace(options) == "" {
		return nil, nil
	}
	args, err := shlex.Split(options)
	if err != nil {
		return nil, fmt.Errorf("shlex.Split(%q): %v", options, err)
	}
	return args, nil
}

func (t *Tool) Classpath() string {
	return strings.Join(t.Libraries, string(os.PathListSeparator))
}

// Args returns the invocation tokens in order: interpreter, heap flag,
// classpath, entry point, artifact, platforms directory, extra options.
func (t *Tool) Args(artifactPath string) ([]string, error) {
	absPath, err := filepath.Abs(artifactPath)
	if err != nil {
		return nil, fmt.Errorf("filepath.Abs(%s): %v", artifactPath, err)
	}
	args := []string{
		t.JavaBin,
		"-Xmx" + strconv.Itoa(t.MaxMemoryGB) + "g",
		"-cp",
		t.Classpath(),
		t.MainClass,
		absPath,
		t.PlatformsDir,
	}
	return append(args, t.ExtraOptions...), nil
}

// Command joins Args into the single string handed to the shell.
func (t *Tool) Command(artifactPath string) (string, error) {
	args, err := t.Args(artifactPath)
	if err != nil {
		return "", err
	}
	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = shellQuote(arg)
	}
	return strings.Join(quoted, " "), nil
}

var shellSafe = regexp.MustCompile(`^[A-Za-z0-9_@%+=:,./-]+$`)

func shellQuote(s string) string {
	if shellSafe.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
