package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/unclebandit/outreach-backend/internal/bridge"
	"github.com/unclebandit/outreach-backend/internal/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestQueue() *InMemoryQueue {
	q := NewInMemoryQueue(zap.NewNop())
	q.Backoff = time.Millisecond
	return q
}

func TestPublishWithoutSubscribers(t *testing.T) {
	q := newTestQueue()
	defer q.Close()

	assert.Error(t, q.Publish("nobody", 1))
}

func TestPublishDeliversToEverySubscriber(t *testing.T) {
	q := newTestQueue()

	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		require.NoError(t, q.Subscribe("t", func(payload any) error {
			calls.Add(1)
			return nil
		}))
	}

	require.NoError(t, q.Publish("t", "hello"))
	require.NoError(t, q.Close())
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetriesUntilSuccess(t *testing.T) {
	q := newTestQueue()

	var attempts atomic.Int32
	require.NoError(t, q.Subscribe("t", func(payload any) error {
		if attempts.Add(1) < 3 {
			return errors.New("boom")
		}
		return nil
	}))

	require.NoError(t, q.Publish("t", nil))
	require.Eventually(t, func() bool { return attempts.Load() == 3 }, time.Second, time.Millisecond)
	require.NoError(t, q.Close())
}

func TestGivesUpAfterMaxRetries(t *testing.T) {
	q := newTestQueue()
	q.MaxRetries = 2

	var attempts atomic.Int32
	var wg sync.WaitGroup
	wg.Add(3)
	require.NoError(t, q.Subscribe("t", func(payload any) error {
		attempts.Add(1)
		wg.Done()
		return errors.New("boom")
	}))

	require.NoError(t, q.Publish("t", nil))
	wg.Wait()
	require.NoError(t, q.Close())
	assert.Equal(t, int32(3), attempts.Load())
}

func TestCloseAbandonsPendingRetries(t *testing.T) {
	q := NewInMemoryQueue(zap.NewNop())
	q.Backoff = time.Hour

	started := make(chan struct{}, 1)
	require.NoError(t, q.Subscribe("t", func(payload any) error {
		started <- struct{}{}
		return errors.New("boom")
	}))
	require.NoError(t, q.Publish("t", nil))
	<-started

	require.NoError(t, q.Close())
	assert.ErrorIs(t, q.Publish("t", nil), ErrClosed)
	assert.ErrorIs(t, q.Subscribe("t", func(any) error { return nil }), ErrClosed)
}

type fakeReporter struct {
	mu      sync.Mutex
	fail    int
	reports []ConversionReport
}

func (f *fakeReporter) ReportConversion(ctx context.Context, projectID string, ev bridge.ConversionEvidence) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail > 0 {
		f.fail--
		return errors.New("upstream down")
	}
	f.reports = append(f.reports, ConversionReport{ProjectID: projectID, Evidence: ev})
	return nil
}

func (f *fakeReporter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reports)
}

func TestConversionReportSubscriber(t *testing.T) {
	q := newTestQueue()
	rep := &fakeReporter{fail: 1}
	m := metrics.New()

	require.NoError(t, StartConversionReportSubscriber(q, rep, m, zap.NewNop(), time.Second))
	require.NoError(t, q.Publish(TopicConversionReports, ConversionReport{
		ProjectID: "p1",
		Evidence:  bridge.ConversionEvidence{CampaignID: "c1", Converted: 1},
	}))

	require.Eventually(t, func() bool { return rep.count() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, q.Close())

	assert.Equal(t, "p1", rep.reports[0].ProjectID)
	assert.Equal(t, "c1", rep.reports[0].Evidence.CampaignID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConversionReportsTotal.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConversionReportsTotal.WithLabelValues("ok")))
}

func TestConversionReportHandlerDecodesJSON(t *testing.T) {
	rep := &fakeReporter{}
	h := ConversionReportHandler(rep, nil, nil, time.Second)

	require.NoError(t, h([]byte(`{"project_id":"p2","evidence":{"campaign_id":"c9","total_contacts":10}}`)))
	require.NoError(t, h(42))
	require.NoError(t, h([]byte(`{"evidence":{}}`)))

	require.Equal(t, 1, rep.count())
	assert.Equal(t, 10, rep.reports[0].Evidence.TotalContacts)
}

func TestRetryCountHeader(t *testing.T) {
	assert.Equal(t, 0, retryCount(nil))
	assert.Equal(t, 2, retryCount(map[string]any{retryHeader: int32(2)}))
	assert.Equal(t, 3, retryCount(map[string]any{retryHeader: int64(3)}))
}
