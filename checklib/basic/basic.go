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
This package should not import any other package of this module to
avoid recursive import.
*/
package basic

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/text/message"
)

// Progress lines go to stderr so that a report written to stdout stays
// parseable.
var progressOut io.Writer = os.Stderr

func PrintfWithTimeStamp(format string, arg ...any) {
	prefix := fmt.Sprintf("%v ", time.Now().Format("2006-01-02 15:04:05"))
	message := fmt.Sprintf(prefix+format, arg...)
	fmt.Fprintln(progressOut, message)
	glog.Info(message)
}

func GetPercentString(v1, v2 int) string {
	if v2 == 0 {
		return "100%"
	}
	return fmt.Sprintf("%d%%", (v1*100)/v2)
}

func FormatTimeDuration(d time.Duration) string {
	s := d / time.Second
	d -= s * time.Second
	ms := d / time.Millisecond
	if ms == 0 {
		return fmt.Sprintf("%ds", s)
	}
	return fmt.Sprintf("%d.%03ds", s, ms)
}

// print checking process serialized, goroutine safe
type CheckingProcessPrinter struct {
	mutex          sync.Mutex
	startedAt      time.Time
	timeElapsed    map[string]time.Time
	startCheckNum  int
	finishCheckNum int
	totalCheckNum  int
}

func NewCheckingProcessPrinter(totalCheckNum int) *CheckingProcessPrinter {
	return &CheckingProcessPrinter{
		totalCheckNum: totalCheckNum,
		timeElapsed:   make(map[string]time.Time),
		startedAt:     time.Now(),
	}
}

// Called before a check starts
func (c *CheckingProcessPrinter) StartCheck(checkID string, printer *message.Printer) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.startCheckNum++
	PrintfWithTimeStamp(printer.Sprintf("Start running %s (%v/%v)", checkID, c.startCheckNum, c.totalCheckNum))
	c.timeElapsed[checkID] = time.Now()
}

// Called after a check returns, successfully or not
func (c *CheckingProcessPrinter) FinishCheck(checkID string, printer *message.Printer) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	elapsed := time.Since(c.timeElapsed[checkID])
	c.finishCheckNum++
	percent := GetPercentString(c.finishCheckNum, c.totalCheckNum)
	PrintfWithTimeStamp(printer.Sprintf("%s completed (%s, %v/%v) [%s]", checkID, percent, c.finishCheckNum, c.totalCheckNum, FormatTimeDuration(elapsed)))
}

func (c *CheckingProcessPrinter) GetPercentString() string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return GetPercentString(c.finishCheckNum, c.totalCheckNum)
}

func (c *CheckingProcessPrinter) GetStartedAt() time.Time {
	return c.startedAt
}
