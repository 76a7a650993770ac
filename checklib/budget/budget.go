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

// Package budget bounds the number of files checks may hold open at the
// same time.
package budget

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang/glog"
	"naive.systems/sosinspect/checklib/basic"
)

type Budget struct {
	lock   sync.Mutex
	cond   *sync.Cond
	remain int
	total  int
}

// New returns a budget of files open descriptors. A non-positive total
// disables the limit.
func New(files int) *Budget {
	b := &Budget{remain: files, total: files}
	b.cond = sync.NewCond(&b.lock)
	return b
}

func (b *Budget) Unlimited() bool {
	return b == nil || b.total <= 0
}

// Acquire blocks until n descriptors are available to taskName.
func (b *Budget) Acquire(n int, taskName string) error {
	if b.Unlimited() {
		return nil
	}
	if n > b.total {
		return errors.Newf("%s acquired %d files, but total %d files available", taskName, n, b.total)
	}
	start := time.Now()
	b.lock.Lock()
	for b.remain < n {
		b.cond.Wait()
	}
	b.remain -= n
	b.lock.Unlock()
	glog.V(1).Infof("%s waited for [%s] to acquire %d file(s)", taskName, basic.FormatTimeDuration(time.Since(start)), n)
	b.cond.Signal()
	return nil
}

func (b *Budget) Release(n int) {
	if b.Unlimited() {
		return
	}
	b.lock.Lock()
	b.remain += n
	b.lock.Unlock()
	b.cond.Broadcast()
}

func (b *Budget) Remaining() int {
	if b.Unlimited() {
		return -1
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.remain
}
