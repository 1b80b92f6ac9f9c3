package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/outreach-backend/internal/bridge"
	"github.com/unclebandit/outreach-backend/internal/logger"
	"github.com/unclebandit/outreach-backend/internal/metrics"
)

// TopicConversionReports carries won-deal evidence to the project tracker.
const TopicConversionReports = "conversion_reports"

// ConversionReport is the message published when a campaign contact converts
// on a campaign linked to an AI-PM project.
type ConversionReport struct {
	ProjectID string                    `json:"project_id"`
	Evidence  bridge.ConversionEvidence `json:"evidence"`
}

func decodeReport(payload any) (ConversionReport, error) {
	switch v := payload.(type) {
	case ConversionReport:
		return v, nil
	case *ConversionReport:
		return *v, nil
	case []byte:
		var r ConversionReport
		err := json.Unmarshal(v, &r)
		return r, err
	default:
		return ConversionReport{}, fmt.Errorf("unexpected payload type %T", payload)
	}
}

// ConversionReportHandler returns the queue handler that forwards reports to
// reporter. Malformed payloads are dropped without retry. A zero timeout
// leaves the call unbounded.
func ConversionReportHandler(reporter bridge.ProjectReporter, m *metrics.Metrics, l *zap.Logger, timeout time.Duration) func(payload any) error {
	l = logger.OrNop(l)
	return func(payload any) error {
		report, err := decodeReport(payload)
		if err != nil || report.ProjectID == "" {
			l.Warn("invalid conversion report payload", zap.Error(err))
			return nil
		}

		ctx, cancel := context.Background(), context.CancelFunc(func() {})
		if timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, timeout)
		}
		defer cancel()

		if err := reporter.ReportConversion(ctx, report.ProjectID, report.Evidence); err != nil {
			m.TrackConversionReport("failed")
			return err
		}
		m.TrackConversionReport("ok")
		l.Info("conversion reported",
			zap.String("project_id", report.ProjectID),
			zap.String("campaign_id", report.Evidence.CampaignID))
		return nil
	}
}

// StartConversionReportSubscriber wires the conversion handler onto q.
func StartConversionReportSubscriber(q Queue, reporter bridge.ProjectReporter, m *metrics.Metrics, l *zap.Logger, timeout time.Duration) error {
	if err := q.Subscribe(TopicConversionReports, ConversionReportHandler(reporter, m, l, timeout)); err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicConversionReports, err)
	}
	return nil
}
