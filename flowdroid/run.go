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
	"bytes"
	"context"
	"io"
	"os/exec"
	"time"

	"github.com/golang/glog"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
	"naive.systems/flowbatch/basic"
)

// Analyze runs FlowDroid on one artifact through the shell, inside ToolDir,
// and returns its combined output. The output is returned even when the
// process fails or is killed at timeout.
func (t *Tool) Analyze(ctx context.Context, artifactPath string, timeout time.Duration) (basic.ExecResult, error) {
	command, err := t.Command(artifactPath)
	if err != nil {
		return basic.ExecResult{ExitCode: -1}, err
	}
	cmd := exec.Command("sh", "-c", command)
	cmd.Dir = t.ToolDir
	glog.Infof("in %s, executing: %s", t.ToolDir, command)
	result, err := basic.CombinedOutput(ctx, cmd, timeout)
	if err != nil {
		glog.Errorf("in %s, executing: %s, reported: %v", t.ToolDir, command, err)
	}
	result.Output = DecodeOutput(result.Output, t.OutputCharset)
	return result, err
}

// DecodeOutput converts b from charset to UTF-8. An empty or unknown charset
// leaves b untouched.
func DecodeOutput(b []byte, charset string) []byte {
	if charset == "" || len(b) == 0 {
		return b
	}
	e, err := ianaindex.MIME.Encoding(charset)
	if err != nil {
		glog.Warningf("ianaindex.MIME.Encoding(%s): %v, the output is kept as is", charset, err)
		return b
	}
	if e == nil {
		glog.Warningf("charset %s not supported, the output is kept as is", charset)
		return b
	}
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(b), e.NewDecoder()))
	if err != nil {
		glog.Warningf("failed to decode output as %s: %v", charset, err)
		return b
	}
	return decoded
}
