package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"CONDO_APP_NAME":                      os.Getenv("CONDO_APP_NAME"),
		"CONDO_APP_ENV":                       os.Getenv("CONDO_APP_ENV"),
		"CONDO_APP_PORT":                      os.Getenv("CONDO_APP_PORT"),
		"CONDO_APP_COMPANY_ID":                os.Getenv("CONDO_APP_COMPANY_ID"),
		"CONDO_DATABASE_HOST":                 os.Getenv("CONDO_DATABASE_HOST"),
		"CONDO_DATABASE_PORT":                 os.Getenv("CONDO_DATABASE_PORT"),
		"CONDO_DATABASE_USER":                 os.Getenv("CONDO_DATABASE_USER"),
		"CONDO_DATABASE_PASSWORD":             os.Getenv("CONDO_DATABASE_PASSWORD"),
		"CONDO_DATABASE_DBNAME":               os.Getenv("CONDO_DATABASE_DBNAME"),
		"CONDO_DATABASE_SSLMODE":              os.Getenv("CONDO_DATABASE_SSLMODE"),
		"CONDO_DATABASE_MAX_OPEN_CONNS":       os.Getenv("CONDO_DATABASE_MAX_OPEN_CONNS"),
		"CONDO_DATABASE_MAX_IDLE_CONNS":       os.Getenv("CONDO_DATABASE_MAX_IDLE_CONNS"),
		"CONDO_BILLING_DEFAULT_JOURNAL_ID":    os.Getenv("CONDO_BILLING_DEFAULT_JOURNAL_ID"),
		"CONDO_BILLING_SETTLEMENT_JOURNAL_ID": os.Getenv("CONDO_BILLING_SETTLEMENT_JOURNAL_ID"),
		"CONDO_BILLING_FEE_JOURNAL_ID":        os.Getenv("CONDO_BILLING_FEE_JOURNAL_ID"),
		"CONDO_BILLING_CURRENCY":              os.Getenv("CONDO_BILLING_CURRENCY"),
		"CONDO_IDEMPOTENCY_ENABLED":           os.Getenv("CONDO_IDEMPOTENCY_ENABLED"),
		"CONDO_REMINDER_DAYS_AHEAD":           os.Getenv("CONDO_REMINDER_DAYS_AHEAD"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "condo-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "condo", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "DOP", cfg.Billing.Currency)
		assert.Equal(t, "10 0 1 * *", cfg.Scheduler.LateFeeCronSchedule)
		assert.Equal(t, "0 8 * * *", cfg.Scheduler.ReminderCronSchedule)
		assert.True(t, cfg.Idempotency.Enabled)
		assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
		assert.Equal(t, 7, cfg.Reminder.DaysAhead)
	})

	t.Run("loads values from environment variables with CONDO prefix", func(t *testing.T) {
		clearEnv()
		companyID := uuid.New().String()
		journalID := uuid.New().String()
		os.Setenv("CONDO_APP_NAME", "test-app")
		os.Setenv("CONDO_APP_PORT", "9000")
		os.Setenv("CONDO_APP_COMPANY_ID", companyID)
		os.Setenv("CONDO_DATABASE_HOST", "testdb.local")
		os.Setenv("CONDO_DATABASE_PORT", "5433")
		os.Setenv("CONDO_BILLING_DEFAULT_JOURNAL_ID", journalID)
		os.Setenv("CONDO_BILLING_CURRENCY", "USD")
		os.Setenv("CONDO_REMINDER_DAYS_AHEAD", "3")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, companyID, cfg.App.CompanyID)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, journalID, cfg.Billing.DefaultJournalID)
		assert.Equal(t, "USD", cfg.Billing.Currency)
		assert.Equal(t, 3, cfg.Reminder.DaysAhead)
	})

	t.Run("rejects malformed journal ID", func(t *testing.T) {
		clearEnv()
		os.Setenv("CONDO_BILLING_FEE_JOURNAL_ID", "not-a-uuid")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "billing.fee_journal_id")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("CONDO_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("CONDO_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("production requires credentials and journals", func(t *testing.T) {
		clearEnv()
		os.Setenv("CONDO_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("idempotency can be disabled", func(t *testing.T) {
		clearEnv()
		os.Setenv("CONDO_IDEMPOTENCY_ENABLED", "false")

		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.Idempotency.Enabled)
	})
}

func TestDatabaseConfigDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "condo",
		Password: "p@ss/word",
		DBName:   "condo",
		SSLMode:  "disable",
	}

	dsn := d.DSN()

	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "sslmode=disable")
	// Special characters in the password must be escaped
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestBillingConfigJournalUUIDs(t *testing.T) {
	id := uuid.New()
	b := BillingConfig{DefaultJournalID: id.String()}

	defaultJournal, settlementJournal, feeJournal := b.JournalUUIDs()

	assert.Equal(t, id, defaultJournal)
	assert.Equal(t, uuid.Nil, settlementJournal)
	assert.Equal(t, uuid.Nil, feeJournal)
}
