package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// Test Helpers
// ---------------------------------------------------------------------------

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

type mockExecutor struct {
	execCount   int32
	executeFunc func(ctx context.Context, job *Job) error
}

func (m *mockExecutor) Execute(ctx context.Context, job *Job) error {
	atomic.AddInt32(&m.execCount, 1)
	if m.executeFunc != nil {
		return m.executeFunc(ctx, job)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Job Tests
// ---------------------------------------------------------------------------

func TestNewJob(t *testing.T) {
	companyID := uuid.New()
	asOf := time.Now()

	job := NewJob(companyID, JobTypeLateFeeAccrual, asOf, 3)

	assert.NotEqual(t, uuid.Nil, job.ID)
	assert.Equal(t, companyID, job.CompanyID)
	assert.Equal(t, JobTypeLateFeeAccrual, job.Type)
	assert.Equal(t, asOf, job.AsOf)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, 3, job.MaxRetries)
	assert.Nil(t, job.StartedAt)
	assert.Nil(t, job.CompletedAt)
}

func TestJob_Start(t *testing.T) {
	job := NewJob(uuid.New(), JobTypeDueReminder, time.Now(), 3)
	job.Error = "previous error"

	job.Start()

	assert.Equal(t, JobStatusRunning, job.Status)
	assert.NotNil(t, job.StartedAt)
	assert.Empty(t, job.Error)
}

func TestJob_Complete(t *testing.T) {
	job := NewJob(uuid.New(), JobTypeLateFeeAccrual, time.Now(), 3)
	job.Start()

	job.Complete()

	assert.Equal(t, JobStatusSuccess, job.Status)
	assert.NotNil(t, job.CompletedAt)
}

func TestJob_Fail(t *testing.T) {
	job := NewJob(uuid.New(), JobTypeLateFeeAccrual, time.Now(), 3)
	job.Start()

	job.Fail("database unavailable")

	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "database unavailable", job.Error)
	assert.NotNil(t, job.CompletedAt)
}

func TestJob_ShouldRetry(t *testing.T) {
	job := NewJob(uuid.New(), JobTypeLateFeeAccrual, time.Now(), 2)

	// Pending jobs don't retry
	assert.False(t, job.ShouldRetry())

	job.Fail("boom")
	assert.True(t, job.ShouldRetry())

	job.ScheduleRetry(time.Millisecond)
	job.Fail("boom")
	assert.True(t, job.ShouldRetry())

	job.ScheduleRetry(time.Millisecond)
	job.Fail("boom")
	assert.False(t, job.ShouldRetry())
}

func TestJob_ScheduleRetry(t *testing.T) {
	job := NewJob(uuid.New(), JobTypeDueReminder, time.Now(), 3)
	job.Fail("boom")

	job.ScheduleRetry(time.Minute)

	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, 1, job.RetryCount)
	assert.NotNil(t, job.NextRetryAt)
	assert.Empty(t, job.Error)
}

// ---------------------------------------------------------------------------
// Scheduler Tests
// ---------------------------------------------------------------------------

func TestScheduler_SubmitJob_NotRunning(t *testing.T) {
	scheduler := NewScheduler(DefaultWorkerPoolConfig(), &mockExecutor{}, newTestLogger())

	job := NewJob(uuid.New(), JobTypeLateFeeAccrual, time.Now(), 3)
	err := scheduler.SubmitJob(job)

	assert.Equal(t, ErrSchedulerNotRunning, err)
}

func TestScheduler_SubmitJob_Success(t *testing.T) {
	executor := &mockExecutor{}
	scheduler := NewScheduler(DefaultWorkerPoolConfig(), executor, newTestLogger())

	ctx := context.Background()
	require.NoError(t, scheduler.Start(ctx))

	job := NewJob(uuid.New(), JobTypeLateFeeAccrual, time.Now(), 3)
	require.NoError(t, scheduler.SubmitJob(job))

	// Wait for job to be processed
	time.Sleep(100 * time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, scheduler.Stop(stopCtx))

	assert.Equal(t, int32(1), atomic.LoadInt32(&executor.execCount))
}

func TestScheduler_JobRetry(t *testing.T) {
	config := DefaultWorkerPoolConfig()
	config.RetryDelay = 10 * time.Millisecond // Short delay for test
	config.JobTimeout = time.Minute

	callCount := int32(0)
	executor := &mockExecutor{
		executeFunc: func(ctx context.Context, job *Job) error {
			if atomic.AddInt32(&callCount, 1) < 3 {
				return errors.New("temporary failure")
			}
			return nil
		},
	}

	scheduler := NewScheduler(config, executor, newTestLogger())

	ctx := context.Background()
	require.NoError(t, scheduler.Start(ctx))

	job := NewJob(uuid.New(), JobTypeLateFeeAccrual, time.Now(), 5)
	require.NoError(t, scheduler.SubmitJob(job))

	// Wait for retries
	time.Sleep(500 * time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, scheduler.Stop(stopCtx))

	// Two failures followed by a success
	assert.GreaterOrEqual(t, atomic.LoadInt32(&callCount), int32(3))
}

func TestScheduler_StartStop_Idempotent(t *testing.T) {
	scheduler := NewScheduler(DefaultWorkerPoolConfig(), &mockExecutor{}, newTestLogger())

	ctx := context.Background()
	require.NoError(t, scheduler.Start(ctx))
	require.NoError(t, scheduler.Start(ctx))

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, scheduler.Stop(stopCtx))
	require.NoError(t, scheduler.Stop(stopCtx))
}

// ---------------------------------------------------------------------------
// Cron Parsing Tests
// ---------------------------------------------------------------------------

func TestParseCronSchedule(t *testing.T) {
	fallback := CronSpec{Minute: 0, Hour: 2}

	t.Run("monthly schedule with day of month", func(t *testing.T) {
		spec, err := ParseCronSchedule("10 0 1 * *", fallback)
		require.NoError(t, err)
		assert.Equal(t, CronSpec{Minute: 10, Hour: 0, DayOfMonth: 1}, spec)
	})

	t.Run("daily schedule", func(t *testing.T) {
		spec, err := ParseCronSchedule("0 8 * * *", fallback)
		require.NoError(t, err)
		assert.Equal(t, CronSpec{Minute: 0, Hour: 8, DayOfMonth: 0}, spec)
	})

	t.Run("empty expression returns fallback", func(t *testing.T) {
		spec, err := ParseCronSchedule("", fallback)
		require.NoError(t, err)
		assert.Equal(t, fallback, spec)
	})

	t.Run("too few fields", func(t *testing.T) {
		_, err := ParseCronSchedule("5", fallback)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("non-numeric minute", func(t *testing.T) {
		_, err := ParseCronSchedule("x 8 * * *", fallback)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("hour out of range", func(t *testing.T) {
		_, err := ParseCronSchedule("0 24 * * *", fallback)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("minute out of range", func(t *testing.T) {
		_, err := ParseCronSchedule("60 8 * * *", fallback)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestCronSpec_Matches(t *testing.T) {
	monthly := CronSpec{Minute: 10, Hour: 0, DayOfMonth: 1}
	daily := CronSpec{Minute: 0, Hour: 8}

	firstOfMonth := time.Date(2026, 3, 1, 0, 10, 0, 0, time.UTC)
	midMonth := time.Date(2026, 3, 15, 0, 10, 0, 0, time.UTC)
	eightAM := time.Date(2026, 3, 15, 8, 0, 30, 0, time.UTC)

	assert.True(t, monthly.Matches(firstOfMonth))
	assert.False(t, monthly.Matches(midMonth))
	assert.True(t, daily.Matches(eightAM))
	assert.False(t, daily.Matches(firstOfMonth))
}

// ---------------------------------------------------------------------------
// BillingCronScheduler Tests
// ---------------------------------------------------------------------------

type mockCompanyProvider struct {
	ids []uuid.UUID
	err error
}

func (m *mockCompanyProvider) ActiveCompanyIDs(ctx context.Context) ([]uuid.UUID, error) {
	return m.ids, m.err
}

func TestBillingCronScheduler_TriggerManualRun(t *testing.T) {
	companyID := uuid.New()
	executor := &mockExecutor{}
	provider := &mockCompanyProvider{ids: []uuid.UUID{companyID}}

	cron := NewBillingCronScheduler(DefaultBillingCronConfig(), executor, provider, nil, newTestLogger())

	ctx := context.Background()
	require.NoError(t, cron.Start(ctx))

	require.NoError(t, cron.TriggerManualRun(ctx, JobTypeLateFeeAccrual))

	// Wait for the job to fan out and execute
	time.Sleep(200 * time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, cron.Stop(stopCtx))

	assert.Equal(t, int32(1), atomic.LoadInt32(&executor.execCount))
}

func TestBillingCronScheduler_TriggerManualRun_NotRunning(t *testing.T) {
	cron := NewBillingCronScheduler(DefaultBillingCronConfig(), &mockExecutor{}, &mockCompanyProvider{}, nil, newTestLogger())

	err := cron.TriggerManualRun(context.Background(), JobTypeLateFeeAccrual)
	assert.Equal(t, ErrSchedulerNotRunning, err)
}

func TestBillingCronScheduler_TriggerManualRun_InvalidType(t *testing.T) {
	cron := NewBillingCronScheduler(DefaultBillingCronConfig(), &mockExecutor{}, &mockCompanyProvider{}, nil, newTestLogger())

	err := cron.TriggerManualRun(context.Background(), JobType("BOGUS"))
	assert.Equal(t, ErrInvalidJobType, err)
}

func TestBillingCronScheduler_TriggerCompanyRun(t *testing.T) {
	executor := &mockExecutor{}
	cron := NewBillingCronScheduler(DefaultBillingCronConfig(), executor, &mockCompanyProvider{}, nil, newTestLogger())

	ctx := context.Background()
	require.NoError(t, cron.Start(ctx))

	require.NoError(t, cron.TriggerCompanyRun(ctx, uuid.New(), JobTypeDueReminder, time.Now()))

	time.Sleep(100 * time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, cron.Stop(stopCtx))

	assert.Equal(t, int32(1), atomic.LoadInt32(&executor.execCount))
}

func TestBillingCronScheduler_GetStatus(t *testing.T) {
	cron := NewBillingCronScheduler(DefaultBillingCronConfig(), &mockExecutor{}, &mockCompanyProvider{}, nil, newTestLogger())

	status := cron.GetStatus()

	assert.Equal(t, true, status["enabled"])
	assert.Equal(t, false, status["is_running"])
	assert.Equal(t, AllJobTypes(), status["job_types"])
}
