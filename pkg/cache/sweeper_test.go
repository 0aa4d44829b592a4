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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweep struct{ calls int }

func (c *countingSweep) Sweep() int {
	c.calls++
	return 2
}

type recordingJobs struct{ runs []string }

func (r *recordingJobs) RecordJobRun(jobName string, _ time.Duration, _ error) {
	r.runs = append(r.runs, jobName)
}

func (r *recordingJobs) UpdateNextRun(string, time.Time) {}

func TestSweeper(t *testing.T) {
	t.Run("Should reject an invalid schedule", func(t *testing.T) {
		_, err := NewSweeper("not a schedule", &countingSweep{})
		assert.Error(t, err)
	})

	t.Run("Should sweep the target on each run", func(t *testing.T) {
		target := &countingSweep{}
		s, err := NewSweeper("", target)
		require.NoError(t, err)
		s.run()
		s.run()
		assert.Equal(t, 2, target.calls)
	})

	t.Run("Should report runs to the recorder", func(t *testing.T) {
		rec := &recordingJobs{}
		s, err := NewSweeper("", &countingSweep{})
		require.NoError(t, err)
		s.SetRecorder(rec)
		s.run()
		assert.Equal(t, []string{sweepJobName}, rec.runs)
	})

	t.Run("Should start and stop", func(t *testing.T) {
		s, err := NewSweeper("@every 1h", &countingSweep{})
		require.NoError(t, err)
		s.Start()
		s.Stop()
	})
}
