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

package utils

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
)

// ResolveBinaryPath checks that binPath can be executed. Bare names are
// looked up in $PATH and returned unchanged; relative paths are made
// absolute so they survive a change of working directory.
func ResolveBinaryPath(binPath string) (string, error) {
	if filepath.IsAbs(binPath) {
		if _, err := os.Stat(binPath); err != nil {
			return binPath, fmt.Errorf("when resolving %s, os.Stat failed: %v", binPath, err)
		}
		return binPath, nil
	}
	// exec.LookPath will silently allow relative path, so we manually check it.
	if strings.Contains(binPath, string(filepath.Separator)) {
		absBinPath, err := filepath.Abs(binPath)
		if err != nil {
			return binPath, fmt.Errorf("when resolving %s, failed to convert to abs path: %v", binPath, err)
		}
		if _, err := os.Stat(absBinPath); err != nil {
			return absBinPath, fmt.Errorf("when resolving %s, os.Stat failed: %v", binPath, err)
		}
		return absBinPath, nil
	}
	if _, err := exec.LookPath(binPath); err != nil {
		return binPath, fmt.Errorf("when resolving %s, not found in $PATH: %v", binPath, err)
	}
	return binPath, nil
}

// CheckToolLayout returns the entries the analysis tool needs but that are
// missing: the tool directory itself, each library archive inside it and the
// platforms directory.
func CheckToolLayout(toolDir, platformsDir string, libraries []string) []string {
	var missing []string
	info, err := os.Stat(toolDir)
	if err != nil || !info.IsDir() {
		return append(missing, toolDir)
	}
	for _, lib := range libraries {
		path := lib
		if !filepath.IsAbs(path) {
			path = filepath.Join(toolDir, lib)
		}
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, path)
		}
	}
	if info, err := os.Stat(platformsDir); err != nil || !info.IsDir() {
		missing = append(missing, platformsDir)
	}
	for _, m := range missing {
		glog.Warningf("analysis tool layout: %s not found", m)
	}
	return missing
}
