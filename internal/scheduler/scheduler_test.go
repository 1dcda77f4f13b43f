package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mamadbah2/ranch/internal/config"
	"github.com/mamadbah2/ranch/internal/domain/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeReporter struct {
	calls int
	err   error
}

func (f *fakeReporter) HerdReport(context.Context) (models.HerdReport, error) {
	f.calls++
	return models.HerdReport{
		PeriodStart: time.Date(2024, 4, 4, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC),
		TotalHead:   12,
	}, f.err
}

type fakeSender struct {
	to, text string
	err      error
}

func (f *fakeSender) SendReport(_ context.Context, to, text string) error {
	f.to, f.text = to, text
	return f.err
}

func testConfig(recipient string) config.Config {
	return config.Config{
		Reporting: config.ReportingConfig{CronSchedule: "0 20 * * 5", Timezone: "UTC"},
		WhatsApp:  config.WhatsAppConfig{ReportRecipient: recipient},
	}
}

func TestRunHerdReportSends(t *testing.T) {
	rep, snd := &fakeReporter{}, &fakeSender{}
	s, err := NewScheduler(testConfig("+15550001"), rep, snd, nil)
	require.NoError(t, err)

	require.NoError(t, s.runHerdReport(context.Background()))
	assert.Equal(t, "+15550001", snd.to)
	assert.Contains(t, snd.text, "Herd report (2024-04-04 to 2024-04-10)")
	assert.Contains(t, snd.text, "Head: 12")
}

func TestRunHerdReportWithoutRecipient(t *testing.T) {
	rep, snd := &fakeReporter{}, &fakeSender{}
	s, err := NewScheduler(testConfig(""), rep, snd, nil)
	require.NoError(t, err)

	require.NoError(t, s.runHerdReport(context.Background()))
	assert.Equal(t, 1, rep.calls)
	assert.Empty(t, snd.text)

	s, err = NewScheduler(testConfig("+1"), rep, nil, nil)
	require.NoError(t, err)
	assert.NoError(t, s.runHerdReport(context.Background()))
}

func TestRunHerdReportErrors(t *testing.T) {
	s, err := NewScheduler(testConfig("+1"), &fakeReporter{err: errors.New("mongo down")}, &fakeSender{}, nil)
	require.NoError(t, err)
	assert.ErrorContains(t, s.runHerdReport(context.Background()), "generate herd report")

	s, err = NewScheduler(testConfig("+1"), &fakeReporter{}, &fakeSender{err: errors.New("rate limited")}, nil)
	require.NoError(t, err)
	assert.ErrorContains(t, s.runHerdReport(context.Background()), "send herd report")
}

func TestNewSchedulerRejectsUnknownTimezone(t *testing.T) {
	cfg := testConfig("")
	cfg.Reporting.Timezone = "Mars/Olympus"
	_, err := NewScheduler(cfg, &fakeReporter{}, nil, nil)
	assert.Error(t, err)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	cfg := testConfig("")
	cfg.Reporting.CronSchedule = "every friday"
	s, err := NewScheduler(cfg, &fakeReporter{}, nil, nil)
	require.NoError(t, err)
	assert.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	s, err := NewScheduler(testConfig(""), &fakeReporter{}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	s.Stop()
}
