package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJobs struct {
	sweeps atomic.Int32
	pushes atomic.Int32
}

func (j *countingJobs) ExpireInvitations(context.Context) int {
	j.sweeps.Add(1)
	return 1
}

func (j *countingJobs) PushActiveStatuses(context.Context) int {
	j.pushes.Add(1)
	return 0
}

func TestScheduler_RunsJobs(t *testing.T) {
	jobs := &countingJobs{}
	s := New(jobs, nil)
	require.NoError(t, s.Start(Config{StatusPushSpec: "@every 1s", InvitationSweepSpec: "@every 1s"}))
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool {
		return jobs.sweeps.Load() > 0 && jobs.pushes.Load() > 0
	}, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_RejectsBadSpec(t *testing.T) {
	s := New(&countingJobs{}, nil)
	err := s.Start(Config{StatusPushSpec: "@every 1s", InvitationSweepSpec: "sometimes"})
	assert.Error(t, err)
}

func TestScheduler_JobsCallDirectly(t *testing.T) {
	jobs := &countingJobs{}
	s := New(jobs, nil)
	s.runInvitationSweep()
	s.runStatusPush()
	assert.Equal(t, int32(1), jobs.sweeps.Load())
	assert.Equal(t, int32(1), jobs.pushes.Load())
}
