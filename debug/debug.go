/*
 * Copyright 2022 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package debug

import (
	"sync/atomic"

	"github.com/cloudwego/kernopt/internal/hoist"
	"github.com/cloudwego/kernopt/internal/kernel"
)

// A Stats records statistics about the optimizations.
type Stats struct {
	Hoist HoistStats
	Axiom AxiomStats
}

// A HoistStats records statistics about loop invariant hoisting.
type HoistStats struct {
	Loops       int
	NoPreheader int
	Hoisted     int
}

// An AxiomStats records statistics about launch geometry extraction.
type AxiomStats struct {
	Candidates int
	Matched    int
}

// GetStats returns statistics of the optimizations since the process started.
func GetStats() Stats {
	return Stats{
		Hoist: HoistStats{
			Loops:       int(atomic.LoadUint64(&hoist.LoopCount)),
			NoPreheader: int(atomic.LoadUint64(&hoist.NoPreheaderCount)),
			Hoisted:     int(atomic.LoadUint64(&hoist.HoistCount)),
		},
		Axiom: AxiomStats{
			Candidates: int(atomic.LoadUint64(&kernel.CandidateCount)),
			Matched:    int(atomic.LoadUint64(&kernel.MatchCount)),
		},
	}
}
