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

package stats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang/glog"
	"naive.systems/sosinspect/atomic"
	"naive.systems/sosinspect/report"
)

// inspection stages
const (
	SC  int = iota // Selecting checks
	RC             // Running checks
	END
)

const (
	progressFile   = "progress.sosinspect_metadata"
	levelStatsFile = "level_stats.sosinspect_metadata"
)

type Progress struct {
	StageID   int       `json:"stage_id"`
	DoneRatio string    `json:"done_ratio"`
	StartedAt time.Time `json:"started_at"`
}

func WriteProgress(resultDir string, stageID int, doneRatio string, startedAt time.Time) {
	if resultDir == "" {
		return
	}
	// skip writing it if resultDir does not exist
	_, err := os.Stat(resultDir)
	if os.IsNotExist(err) {
		glog.Warningf("result dir %s does not exist", resultDir)
		return
	}
	path := filepath.Join(resultDir, progressFile)
	progress, err := json.Marshal(Progress{StageID: stageID, DoneRatio: doneRatio, StartedAt: startedAt})
	if err != nil {
		glog.Errorf("failed to marshal json stageID %d and doneRatio %s: %v", stageID, doneRatio, err)
		return
	}
	err = atomic.Write(path, progress)
	if err != nil {
		glog.Errorf("failed to write to file %s: %v", path, err)
	}
}

func GetLevelCountBytes(rep *report.Report) ([]byte, error) {
	statsBytes, err := json.Marshal(rep.Counts())
	if err != nil {
		return nil, errors.Wrap(err, "json.Marshal")
	}
	return statsBytes, nil
}

func CountLevelsAndWrite(rep *report.Report, resultDir string) {
	if resultDir == "" {
		return
	}
	statsBytes, err := GetLevelCountBytes(rep)
	if err != nil {
		glog.Errorf("failed to get level count bytes: %v", err)
		return
	}
	statsFile := filepath.Join(resultDir, levelStatsFile)
	err = atomic.Write(statsFile, statsBytes)
	if err != nil {
		glog.Errorf("failed to write to file %s: %v", statsFile, err)
	}
}
