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

package cache

import (
	"time"

	"github.com/lily-ai/lily/pkg/log"
	"github.com/robfig/cron"
)

const (
	defaultSweepSpec = "@every 1m"
	sweepJobName     = "local_cache_sweep"
)

// JobRecorder receives the outcome of every sweep.
type JobRecorder interface {
	RecordJobRun(jobName string, duration time.Duration, err error)
	UpdateNextRun(jobName string, nextRun time.Time)
}

// Sweepable is a cache that can drop its expired entries on demand.
type Sweepable interface {
	Sweep() int
}

// Sweeper periodically removes expired entries from a local cache.
type Sweeper struct {
	cron     *cron.Cron
	target   Sweepable
	recorder JobRecorder
}

// NewSweeper schedules target.Sweep on spec. An empty spec runs every minute.
func NewSweeper(spec string, target Sweepable) (*Sweeper, error) {
	if spec == "" {
		spec = defaultSweepSpec
	}
	s := &Sweeper{cron: cron.New(), target: target}
	if err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, err
	}
	return s, nil
}

// SetRecorder reports every run to r. Call before Start.
func (s *Sweeper) SetRecorder(r JobRecorder) {
	s.recorder = r
}

func (s *Sweeper) run() {
	start := time.Now()
	if n := s.target.Sweep(); n > 0 {
		log.Debugw("local cache swept", "removed", n)
	}
	if s.recorder == nil {
		return
	}
	s.recorder.RecordJobRun(sweepJobName, time.Since(start), nil)
	for _, e := range s.cron.Entries() {
		s.recorder.UpdateNextRun(sweepJobName, e.Next)
	}
}

// Start begins the schedule in the background.
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule. A sweep already running is not interrupted.
func (s *Sweeper) Stop() {
	s.cron.Stop()
}
