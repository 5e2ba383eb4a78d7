// Copyright 2025 go-pstl Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pstl

import "github.com/prometheus/client_golang/prometheus"

var (
	dispatchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pstl",
		Name:      "dispatch_total",
		Help:      "The total number of algorithm calls per selected backend.",
	}, []string{"algorithm", "backend"})

	dispatchRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pstl",
		Name:      "dispatch_rejected_total",
		Help:      "The total number of algorithm calls rejected as infeasible per policy mode.",
	}, []string{"algorithm", "mode"})
)

// RegisterMetrics registers the dispatch counters with reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{dispatchTotal, dispatchRejected} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
