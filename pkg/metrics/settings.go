// Copyright 2025 Lily Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lily"

// Resolution results.
const (
	ResultHit      = "hit"
	ResultMiss     = "miss"
	ResultBypass   = "bypass"
	ResultError    = "error"
	ResultExplain  = "explain"
	ResultNotFound = "not_found"
)

// SettingsMetrics holds the settings resolver vectors. A nil *SettingsMetrics
// records nothing.
type SettingsMetrics struct {
	resolves      *prometheus.CounterVec
	duration      prometheus.Histogram
	rejected      *prometheus.CounterVec
	loadErrors    *prometheus.CounterVec
	cacheErrors   *prometheus.CounterVec
	invalidations prometheus.Counter
}

// NewSettingsMetrics creates the settings vectors and registers them on reg.
func NewSettingsMetrics(reg prometheus.Registerer) *SettingsMetrics {
	m := &SettingsMetrics{
		resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settings",
			Name:      "resolve_total",
			Help:      "Settings resolutions by result",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "settings",
			Name:      "resolve_duration_seconds",
			Help:      "Settings resolution latency",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settings",
			Name:      "level_rejected_total",
			Help:      "Level contributions discarded because the merged namespace failed validation",
		}, []string{"namespace", "level"}),
		loadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settings",
			Name:      "entity_load_errors_total",
			Help:      "Entity settings loads that failed and were treated as empty",
		}, []string{"level"}),
		cacheErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settings",
			Name:      "cache_errors_total",
			Help:      "Settings cache operations that failed",
		}, []string{"op"}),
		invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settings",
			Name:      "invalidations_total",
			Help:      "Organization cache invalidations",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.resolves, m.duration, m.rejected, m.loadErrors, m.cacheErrors, m.invalidations)
	}
	return m
}

func (m *SettingsMetrics) ObserveResolve(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.resolves.WithLabelValues(result).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *SettingsMetrics) LevelRejected(namespace, level string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(namespace, level).Inc()
}

func (m *SettingsMetrics) EntityLoadError(level string) {
	if m == nil {
		return
	}
	m.loadErrors.WithLabelValues(level).Inc()
}

// CacheError counts a failed cache operation. Its shape matches the
// versioned query error hook.
func (m *SettingsMetrics) CacheError(op string, _ error) {
	if m == nil {
		return
	}
	m.cacheErrors.WithLabelValues(op).Inc()
}

func (m *SettingsMetrics) Invalidated() {
	if m == nil {
		return
	}
	m.invalidations.Inc()
}

// Counter values, for tests and the debug endpoint.

func (m *SettingsMetrics) Resolves() *prometheus.CounterVec    { return m.resolves }
func (m *SettingsMetrics) Rejected() *prometheus.CounterVec    { return m.rejected }
func (m *SettingsMetrics) LoadErrors() *prometheus.CounterVec  { return m.loadErrors }
func (m *SettingsMetrics) CacheErrors() *prometheus.CounterVec { return m.cacheErrors }
func (m *SettingsMetrics) Invalidations() prometheus.Counter   { return m.invalidations }
