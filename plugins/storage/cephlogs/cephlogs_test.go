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

package cephlogs

import (
	"testing"

	"naive.systems/sosinspect/checklib/testlib"
)

const cephLog = `2021-02-02 10:26:42.123 7f1d mon.juju-1 (mon.0) 123 : cluster [DBG] osd.41 reported failed by osd.12
2021-02-02 10:26:43.123 7f1d mon.juju-1 (mon.0) 124 : cluster [DBG] osd.41 reported failed by osd.13
2021-02-01 09:00:00.000 7f1d mon.juju-1 (mon.0) 100 : cluster [DBG] osd.7 reported failed by osd.12
2021-02-02 08:26:23.330 7f4a mon.juju-2@1(electing).elector(54) 0 log [INF] : mon.juju-2 calling monitor election
2021-02-03 01:00:00.000 7f1d mon.juju-1 [WRN] Health check update: 7 slow requests are blocked > 32 sec (REQUEST_SLOW)
2021-02-03 01:00:05.000 7f1d mon.juju-1 [WRN] Health check update: 3 slow requests are blocked > 32 sec (REQUEST_SLOW)
2021-02-03 01:00:10.000 7f1d mon.juju-1 [INF] Health check cleared: REQUEST_SLOW (was: 3 slow requests are blocked > 32 sec)
2021-02-04 09:00:00.000 7f1d mon.juju-1 [WRN] Health check update: Long heartbeat ping times on back interface seen, longest is 1234.567 msec (OSD_SLOW_PING_TIME_BACK)
`

const osdLog = `2021-02-02 11:00:00.000 7f2b -1 bluestore(/var/lib/ceph/osd/ceph-3) _verify_csum bad crc32c/0x1000 checksum at blob offset 0x0
2021-02-02 11:05:00.000 7f2b -1 rocksdb: submit_common error: Corruption: block checksum mismatch: expected 1, got 2
2021-02-04 10:00:00.000 7f1d -1 osd.3 2005 heartbeat_check: no reply from 10.0.0.2:6802 osd.5 since back 2021-02-04
2021-02-04 10:00:01.000 7f1d -1 osd.3 2005 heartbeat_check: no reply from 10.0.0.2:6802 osd.5 since back 2021-02-04
`

const rotatedLog = `2021-01-31 23:59:00.000 7f1d mon.juju-1 [WRN] Health check update: 2 slow requests are blocked > 32 sec (REQUEST_SLOW)
`

func TestDaemonEvents(t *testing.T) {
	for _, testCase := range []struct {
		name       string
		useAllLogs bool
		golden     string
	}{
		{"current logs", false, "daemon_events.yaml"},
		{"all logs", true, "daemon_events_all_logs.yaml"},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			snap := testlib.NewSnapshot(t).
				Write("var/log/ceph/ceph.log", cephLog).
				Write("var/log/ceph/ceph-osd.3.log", osdLog).
				WriteGzip("var/log/ceph/ceph.log.1.gz", rotatedLog)
			ctx := snap.Context()
			ctx.UseAllLogs = testCase.useAllLogs
			_, rep := testlib.RunCheck(t, DaemonLogChecks{}, ctx)
			testlib.CompareGolden(t, testlib.EncodeYAML(t, rep), testCase.golden)
		})
	}
}

func TestNoEventsLeavesNoSection(t *testing.T) {
	snap := testlib.NewSnapshot(t).
		Write("var/log/ceph/ceph.log", "2021-02-02 10:00:00.000 7f1d mon.juju-1 [INF] all good\n")
	st, rep := testlib.RunCheck(t, DaemonLogChecks{}, snap.Context())
	if len(st.Sections()) != 0 {
		t.Errorf("unexpected sections: %v", st.Sections())
	}
	if got := testlib.EncodeYAML(t, rep); got != "" {
		t.Errorf("expected empty report, got:\n%s", got)
	}
}

func TestMissingLogDirectory(t *testing.T) {
	snap := testlib.NewSnapshot(t)
	st, _ := testlib.RunCheck(t, DaemonLogChecks{}, snap.Context())
	if len(st.Sections()) != 0 {
		t.Errorf("unexpected sections: %v", st.Sections())
	}
}

func TestSearchesCompile(t *testing.T) {
	snap := testlib.NewSnapshot(t)
	s := snap.Context().NewSearcher()
	for _, def := range searches {
		if err := s.AddSearchTerm(def, "var/log/ceph/ceph.log"); err != nil {
			t.Errorf("%s: %v", def.Tag, err)
		}
	}
}
