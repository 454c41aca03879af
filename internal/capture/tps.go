// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package capture

import (
	"regexp"
	"strconv"
)

// tpsPattern matches the TPS report emitted by common server forks, e.g.
// "TPS from last 5 minutes: 19.98, 20.0, 20.0". The three groups are the
// rolling averages.
var tpsPattern = regexp.MustCompile(`TPS from last \d+ \w+: ([0-9.]+), ([0-9.]+), ([0-9.]+)`)

// ParseTPS scans a finalized output for a TPS report and returns the three
// rolling averages in order. Returns false when no line matches.
func ParseTPS(out Output) ([3]float64, bool) {
	for _, line := range out.Lines {
		m := tpsPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		var tps [3]float64
		ok := true
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(m[i+1], 64)
			if err != nil {
				ok = false
				break
			}
			tps[i] = v
		}
		if ok {
			return tps, true
		}
	}
	return [3]float64{}, false
}
