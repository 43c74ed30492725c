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

package cpumem

import (
	"fmt"

	"github.com/golang/glog"
	"naive.systems/flowbatch/basic"
)

const kbPerGB = 1024 * 1024

// HeapBudget returns the heap size in GB an analysis may use: requestedGB,
// clamped to availMemRatio of the memory currently available.
func HeapBudget(requestedGB int, availMemRatio float64) (int, error) {
	availKB, err := basic.GetTotalAvailMem()
	if err != nil {
		return requestedGB, fmt.Errorf("basic.GetTotalAvailMem: %v", err)
	}
	return clampHeap(requestedGB, availKB, availMemRatio), nil
}

func clampHeap(requestedGB, availKB int, availMemRatio float64) int {
	limitGB := int(float64(availKB) * availMemRatio / kbPerGB)
	if limitGB < 1 {
		limitGB = 1
	}
	if requestedGB <= limitGB {
		return requestedGB
	}
	glog.Warningf("requested %d GB heap, but only %d KB memory available (ratio %v), using %d GB",
		requestedGB, availKB, availMemRatio, limitGB)
	return limitGB
}
