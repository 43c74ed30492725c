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

package discover

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/golang/glog"
)

// Artifacts walks sourceDir recursively and returns the regular files whose
// name ends with ext, in walk order. Paths matching any of ignorePatterns,
// either relative to sourceDir or as given, are left out; a matching
// directory is not descended into.
//
// A missing sourceDir yields an error wrapping fs.ErrNotExist.
func Artifacts(sourceDir, ext string, ignorePatterns []string) ([]string, error) {
	var artifacts []string
	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == sourceDir {
				return err
			}
			glog.Warningf("skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path != sourceDir {
			ignored, err := MatchIgnoreDirPatterns(ignorePatterns, sourceDir, path)
			if err != nil {
				return err
			}
			if ignored {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ext) {
			artifacts = append(artifacts, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", sourceDir, err)
	}
	return artifacts, nil
}

func MatchIgnoreDirPatterns(ignorePatterns []string, sourceDir, path string) (bool, error) {
	if len(ignorePatterns) == 0 {
		return false, nil
	}
	candidates := []string{filepath.ToSlash(path)}
	if rel, err := filepath.Rel(sourceDir, path); err == nil {
		candidates = append(candidates, filepath.ToSlash(rel))
	}
	for _, pattern := range ignorePatterns {
		for _, candidate := range candidates {
			matched, err := doublestar.Match(pattern, candidate)
			if err != nil {
				return false, fmt.Errorf("malformed ignore_dir pattern %s", pattern)
			}
			if matched {
				glog.Infof("%s ignored due to pattern %s", path, pattern)
				return true, nil
			}
		}
	}
	return false, nil
}
