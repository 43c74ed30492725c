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

package basic

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/golang/glog"
)

// ErrTimedOut is returned by CombinedOutput when the deadline killed the command.
var ErrTimedOut = errors.New("timed out")

// ErrNotStarted is returned by CombinedOutput when the command could not be
// spawned at all. The output is empty in that case.
var ErrNotStarted = errors.New("not started")

// How long Wait may keep blocking on inherited pipes after the process group
// has been killed.
var waitDelay = 5 * time.Second

type ExecResult struct {
	Output   []byte
	ExitCode int
	TimedOut bool
	Duration time.Duration
}

// CombinedOutput runs c with stdout and stderr merged into one in-memory
// buffer. A timeout <= 0 means no deadline. When the deadline passes, or ctx
// is done, the whole process group of c is killed and whatever was buffered
// so far is returned along with the error.
func CombinedOutput(ctx context.Context, c *exec.Cmd, timeout time.Duration) (ExecResult, error) {
	if c.Stdout != nil {
		return ExecResult{ExitCode: -1}, errors.New("exec: Stdout already set")
	}
	if c.Stderr != nil {
		return ExecResult{ExitCode: -1}, errors.New("exec: Stderr already set")
	}
	var b bytes.Buffer
	c.Stdout = &b
	c.Stderr = &b
	c.WaitDelay = waitDelay
	setProcessGroup(c)

	start := time.Now()
	if err := c.Start(); err != nil {
		return ExecResult{ExitCode: -1}, fmt.Errorf("%w: cmd.Start: %v", ErrNotStarted, err)
	}

	killer := &groupKiller{cmd: c}
	var timer *time.Timer
	if timeout > 0 {
		timer = time.AfterFunc(timeout, func() {
			if killer.kill(true) {
				glog.Warningf("%s exceeded %v, killed pid %d", c.Path, timeout, c.Process.Pid)
			}
		})
	}
	stopCtxKill := context.AfterFunc(ctx, func() {
		killer.kill(false)
	})

	waitErr := c.Wait()
	timedOut := killer.markWaited()
	if timer != nil {
		timer.Stop()
	}
	stopCtxKill()

	result := ExecResult{
		Output:   b.Bytes(),
		ExitCode: c.ProcessState.ExitCode(),
		TimedOut: timedOut,
		Duration: time.Since(start),
	}
	switch {
	case result.TimedOut:
		return result, fmt.Errorf("%w: over %v", ErrTimedOut, timeout)
	case ctx.Err() != nil:
		return result, ctx.Err()
	case waitErr != nil:
		return result, waitErr
	}
	return result, nil
}

// groupKiller kills the process group of a started command. Once the command
// has been waited for, kill does nothing.
type groupKiller struct {
	mutex    sync.Mutex
	cmd      *exec.Cmd
	waited   bool
	timedOut bool
}

// kill reports whether the group was signaled.
func (k *groupKiller) kill(timedOut bool) bool {
	k.mutex.Lock()
	defer k.mutex.Unlock()
	if k.waited {
		return false
	}
	if timedOut {
		k.timedOut = true
	}
	killProcessGroup(k.cmd)
	return true
}

// markWaited returns whether a deadline kill happened before Wait returned.
func (k *groupKiller) markWaited() bool {
	k.mutex.Lock()
	defer k.mutex.Unlock()
	k.waited = true
	return k.timedOut
}
