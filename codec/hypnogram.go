/*
 * Copyright (c) 2018 XLAB d.o.o
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package codec

import (
	"bufio"
	"io"
	"math/big"
	"strings"

	"github.com/fentec-project/spade/data"
	"github.com/pkg/errors"
)

// ReadHypnogram reads one sleep stage per line.
func ReadHypnogram(r io.Reader) (data.Vector, error) {
	var vec data.Vector
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		x, ok := new(big.Int).SetString(text, 10)
		if !ok {
			return nil, errors.Errorf("line %d: %q is not a sleep stage", line, text)
		}
		vec = append(vec, x)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "cannot read hypnogram")
	}

	return vec, nil
}

// HypnogramStats summarizes where a queried sleep stage occurs.
type HypnogramStats struct {
	// Count is the number of epochs in the stage.
	Count int
	// Breaks is the number of times the stage is left.
	Breaks int
	// Runs holds the lengths of the consecutive stretches in the stage.
	Runs []int
}

// AnalyzeHypnogram computes HypnogramStats from decrypted matches.
func AnalyzeHypnogram(matches []bool) *HypnogramStats {
	stats := &HypnogramStats{}
	run := 0
	for i, m := range matches {
		if !m {
			if run > 0 {
				stats.Runs = append(stats.Runs, run)
				run = 0
			}
			continue
		}
		stats.Count++
		run++
		if i+1 < len(matches) && !matches[i+1] {
			stats.Breaks++
		}
	}
	if run > 0 {
		stats.Runs = append(stats.Runs, run)
	}

	return stats
}

// MatchIndices returns the positions of the matches.
func MatchIndices(matches []bool) []int {
	var idx []int
	for i, m := range matches {
		if m {
			idx = append(idx, i)
		}
	}

	return idx
}
