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

/*
This package should not import any other package of this module, it sits
at the bottom of the import graph.
*/
package basic

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/text/message"
)

func PrintfWithTimeStamp(format string, arg ...any) {
	prefix := fmt.Sprintf("%v ", time.Now().Format("2006-01-02 15:04:05"))
	message := fmt.Sprintf(prefix+format, arg...)
	fmt.Println(message)
	glog.Info(message)
}

func GetPercentString(v1, v2 int) string {
	if v2 <= 0 {
		return "100%"
	}
	percent := (v1 * 100) / v2
	return fmt.Sprintf("%d%%", percent)
}

// FormatTimeDuration renders d as seconds with at most three decimals,
// e.g. "12s" or "1.25s".
func FormatTimeDuration(d time.Duration) string {
	s := d / time.Second
	ms := (d - s*time.Second) / time.Millisecond
	if ms == 0 {
		return fmt.Sprintf("%ds", s)
	}
	frac := fmt.Sprintf("%03d", ms)
	frac = strings.TrimRight(frac, "0")
	return fmt.Sprintf("%d.%ss", s, frac)
}

// Prints the progress of a batch of tasks. Goroutine safe.
type CheckingProcessPrinter struct {
	mutex        sync.Mutex
	printer      *message.Printer
	startedAt    time.Time
	taskStarted  map[string]time.Time
	startedNum   int
	finishedNum  int
	totalTaskNum int
}

func NewCheckingProcessPrinter(totalTaskNum int, printer *message.Printer) *CheckingProcessPrinter {
	return &CheckingProcessPrinter{
		printer:      printer,
		totalTaskNum: totalTaskNum,
		taskStarted:  make(map[string]time.Time),
		startedAt:    time.Now(),
	}
}

// Called before a task starts.
func (c *CheckingProcessPrinter) StartTask(taskName string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.startedNum++
	c.taskStarted[taskName] = time.Now()
	PrintfWithTimeStamp("%s", c.printer.Sprintf("Start analyzing %s (%d/%d)", taskName, c.startedNum, c.totalTaskNum))
}

// Called after a task finishes, whatever its outcome. status is printed as is.
func (c *CheckingProcessPrinter) FinishTask(taskName, status string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	elapsed := time.Since(c.taskStarted[taskName])
	delete(c.taskStarted, taskName)
	c.finishedNum++
	PrintfWithTimeStamp("%s", c.printer.Sprintf("Analysis of %s %s (%s, %d/%d) [%s]",
		taskName, status, GetPercentString(c.finishedNum, c.totalTaskNum),
		c.finishedNum, c.totalTaskNum, FormatTimeDuration(elapsed)))
}

// Called for tasks that are counted but never started.
func (c *CheckingProcessPrinter) SkipTask(taskName, reason string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.finishedNum++
	PrintfWithTimeStamp("%s", c.printer.Sprintf("Skip %s: %s (%s, %d/%d)",
		taskName, reason, GetPercentString(c.finishedNum, c.totalTaskNum),
		c.finishedNum, c.totalTaskNum))
}

func (c *CheckingProcessPrinter) GetStartedAt() time.Time {
	return c.startedAt
}

// GetTotalAvailMem returns MemAvailable from /proc/meminfo in KB.
func GetTotalAvailMem() (int, error) {
	return getAvailMemFrom("/proc/meminfo")
}

func getAvailMemFrom(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, found := strings.Cut(scanner.Text(), ":")
		if !found || key != "MemAvailable" {
			continue
		}
		fields := strings.Fields(value)
		if len(fields) == 0 {
			break
		}
		kb, err := strconv.Atoi(fields[0])
		if err != nil {
			return 0, fmt.Errorf("malformed MemAvailable %q: %v", value, err)
		}
		return kb, nil
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("failed to find MemAvailable in %s", path)
}
