// Package metrics publishes alarm query statistics as CloudWatch custom metrics.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	MetricPages   = "AlarmQueryPages"
	MetricRecords = "AlarmQueryRecords"
	MetricLatency = "AlarmQueryLatency"

	dimensionCamera = "Camera"

	// maxDatumsPerCall is the PutMetricData request limit.
	maxDatumsPerCall = 1000
)

// CloudWatchAPI defines the CloudWatch operations required for publishing metrics.
type CloudWatchAPI interface {
	PutMetricData(
		ctx context.Context,
		params *cloudwatch.PutMetricDataInput,
		optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Recorder buffers query statistics and publishes them on Flush.
type Recorder struct {
	cw        CloudWatchAPI
	namespace string
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	pending []types.MetricDatum
}

// NewRecorder creates a new Recorder publishing to namespace.
func NewRecorder(cw CloudWatchAPI, namespace string, logger *slog.Logger) *Recorder {
	return &Recorder{
		cw:        cw,
		namespace: namespace,
		logger:    logger,
		now:       time.Now,
	}
}

// RecordQuery buffers the statistics of one single-camera query.
func (r *Recorder) RecordQuery(_ context.Context, camera string, pages, records int, elapsed time.Duration) {
	ts := aws.Time(r.now())
	dims := []types.Dimension{{Name: aws.String(dimensionCamera), Value: aws.String(camera)}}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending = append(r.pending,
		types.MetricDatum{
			MetricName: aws.String(MetricPages),
			Dimensions: dims,
			Timestamp:  ts,
			Unit:       types.StandardUnitCount,
			Value:      aws.Float64(float64(pages)),
		},
		types.MetricDatum{
			MetricName: aws.String(MetricRecords),
			Dimensions: dims,
			Timestamp:  ts,
			Unit:       types.StandardUnitCount,
			Value:      aws.Float64(float64(records)),
		},
		types.MetricDatum{
			MetricName: aws.String(MetricLatency),
			Dimensions: dims,
			Timestamp:  ts,
			Unit:       types.StandardUnitMilliseconds,
			Value:      aws.Float64(float64(elapsed.Milliseconds())),
		},
	)
}

// Flush publishes all buffered statistics. Failed batches are dropped and logged.
func (r *Recorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()

	var firstErr error
	for start := 0; start < len(pending); start += maxDatumsPerCall {
		end := min(start+maxDatumsPerCall, len(pending))

		_, err := r.cw.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(r.namespace),
			MetricData: pending[start:end],
		})
		if err != nil {
			r.logger.WarnContext(
				ctx,
				"cannot publish query metrics",
				slog.String("namespace", r.namespace),
				slog.Int("datums", end-start),
				slog.String("error", err.Error()),
			)
			if firstErr == nil {
				firstErr = fmt.Errorf("cannot put metric data to %q: %w", r.namespace, err)
			}
		}
	}

	return firstErr
}

// Nop discards all statistics.
type Nop struct{}

func (Nop) RecordQuery(context.Context, string, int, int, time.Duration) {}

func (Nop) Flush(context.Context) error { return nil }
