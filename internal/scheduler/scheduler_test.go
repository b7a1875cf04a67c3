package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yourdailydose/dailydose/internal/delivery"
)

func TestHealth_SetHealthy(t *testing.T) {
	h := NewHealth()

	h.SetHealthy("sms", "credentials valid")

	status := h.GetStatus("sms")
	assert.True(t, status.Healthy)
	assert.Equal(t, "credentials valid", status.Message)
	assert.Nil(t, status.LastError)
	assert.WithinDuration(t, time.Now(), status.LastCheck, time.Second)
	assert.WithinDuration(t, time.Now(), status.LastSuccess, time.Second)
}

func TestHealth_SetUnhealthy(t *testing.T) {
	h := NewHealth()

	err := assert.AnError
	h.SetUnhealthy("database", err)

	status := h.GetStatus("database")
	assert.False(t, status.Healthy)
	assert.Equal(t, err, status.LastError)
	assert.Equal(t, err.Error(), status.Message)
	assert.WithinDuration(t, time.Now(), status.LastCheck, time.Second)
}

func TestHealth_GetStatus_NotFound(t *testing.T) {
	h := NewHealth()
	assert.Nil(t, h.GetStatus("nonexistent"))
}

func TestHealth_GetAllStatuses(t *testing.T) {
	h := NewHealth()

	h.SetHealthy("sms", "ok")
	h.SetHealthy("email", "ok")
	h.SetUnhealthy("database", assert.AnError)

	statuses := h.GetAllStatuses()
	assert.Len(t, statuses, 3)
	assert.True(t, statuses["sms"].Healthy)
	assert.True(t, statuses["email"].Healthy)
	assert.False(t, statuses["database"].Healthy)
}

func TestHealth_IsOverallHealthy(t *testing.T) {
	t.Run("all healthy", func(t *testing.T) {
		h := NewHealth()
		h.SetHealthy("sms", "ok")
		h.SetHealthy("email", "ok")

		assert.True(t, h.IsOverallHealthy())
	})

	t.Run("one unhealthy", func(t *testing.T) {
		h := NewHealth()
		h.SetHealthy("sms", "ok")
		h.SetUnhealthy("email", assert.AnError)

		assert.False(t, h.IsOverallHealthy())
	})

	t.Run("empty", func(t *testing.T) {
		h := NewHealth()
		assert.True(t, h.IsOverallHealthy())
	})
}

func TestHealth_Report(t *testing.T) {
	h := NewHealth()
	h.SetHealthy("sms", "credentials valid")
	h.SetUnhealthy("database", assert.AnError)

	overall, components := h.Report()
	assert.False(t, overall)
	assert.Len(t, components, 2)
	assert.True(t, components["sms"].Healthy)
	assert.Equal(t, assert.AnError.Error(), components["database"].Message)
}

type fakeSweeper struct {
	summary delivery.Summary
	calls   int
}

func (f *fakeSweeper) Sweep(context.Context) delivery.Summary {
	f.calls++
	return f.summary
}

type fakeStore struct {
	pingErr    error
	deleted    int64
	deleteErr  error
	gotCutoffs []time.Time
}

func (f *fakeStore) PingContext(context.Context) error { return f.pingErr }

func (f *fakeStore) DeleteSentQuotesBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.gotCutoffs = append(f.gotCutoffs, cutoff)
	return f.deleted, f.deleteErr
}

func TestScheduler_SweepCycle(t *testing.T) {
	t.Run("successful sweep marks delivery healthy", func(t *testing.T) {
		sweeper := &fakeSweeper{summary: delivery.Summary{Total: 3, Success: 3}}
		s := New(Config{Store: &fakeStore{}, Sweeper: sweeper})

		s.runSweepCycle(context.Background())

		assert.Equal(t, 1, sweeper.calls)
		assert.True(t, s.Health().GetStatus("delivery").Healthy)
		assert.WithinDuration(t, time.Now(), s.LastSweep(), time.Second)
	})

	t.Run("total failure marks delivery unhealthy", func(t *testing.T) {
		sweeper := &fakeSweeper{summary: delivery.Summary{Total: 2, Failed: 2}}
		s := New(Config{Store: &fakeStore{}, Sweeper: sweeper})

		s.runSweepCycle(context.Background())

		assert.False(t, s.Health().GetStatus("delivery").Healthy)
	})

	t.Run("empty subscriber list stays healthy", func(t *testing.T) {
		s := New(Config{Store: &fakeStore{}, Sweeper: &fakeSweeper{}})

		s.runSweepCycle(context.Background())

		assert.True(t, s.Health().GetStatus("delivery").Healthy)
	})
}

func TestScheduler_CleanupCycle(t *testing.T) {
	store := &fakeStore{deleted: 12}
	s := New(Config{Store: store, Sweeper: &fakeSweeper{}, RetentionDays: 90})

	s.runCleanupCycle(context.Background())

	assert.Len(t, store.gotCutoffs, 1)
	wantCutoff := time.Now().AddDate(0, 0, -90)
	assert.WithinDuration(t, wantCutoff, store.gotCutoffs[0], time.Minute)
}

func TestNew_Defaults(t *testing.T) {
	s := New(Config{Store: &fakeStore{}, Sweeper: &fakeSweeper{}})
	assert.Equal(t, 24*time.Hour, s.sweepInterval)
	assert.Equal(t, 365, s.retentionDays)
}
