// Package alarm retrieves the most recent alarm frames recorded by ZoneMinder cameras.
//
// Frames are indexed in a DynamoDB table partitioned by camera name and sorted by event time.
// A single-camera query pages through the table newest first and stops as soon as the requested
// number of alert frames is collected; a multi-camera query runs one such query per camera and
// merges the results into one list ordered by event time.
package alarm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("github.com/ab0utbla-k/zm-alarm-skill/internal/alarm")

const (
	// DefaultTable is the table the ZoneMinder uploader writes alarm frames to.
	DefaultTable = "ZmAlarmFrames"
	// DefaultRoundTripTimeout bounds a single page request.
	DefaultRoundTripTimeout = 45 * time.Second
	// DefaultConcurrency bounds the number of cameras queried at once.
	DefaultConcurrency = 4

	alertState = "true"
	projection = "ZmCameraName, ZmEventDateTime, S3Key, ZmEventId, ZmFrameId, ZmLocalEventPath, Alert"
)

// Fetcher retrieves the most recent alert frames for one or more cameras.
type Fetcher interface {
	// Fetch returns up to q.Count alert frames of q.Camera, newest first.
	Fetch(ctx context.Context, q Query) ([]Record, error)

	// FetchAcrossCameras runs one Fetch per camera and merges the results newest first.
	// It fails if any single camera fails.
	FetchAcrossCameras(ctx context.Context, cameras []string, filter Filter, perCameraCount int) ([]Record, error)
}

// DynamoDBAPI defines the DynamoDB operations required for alarm queries.
type DynamoDBAPI interface {
	Query(
		ctx context.Context,
		params *dynamodb.QueryInput,
		optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Recorder receives per-query statistics.
type Recorder interface {
	RecordQuery(ctx context.Context, camera string, pages, records int, elapsed time.Duration)
}

// EngineConfig tunes an Engine. Zero values select the defaults.
type EngineConfig struct {
	Table            string
	PageLimit        int32
	RoundTripTimeout time.Duration
	Concurrency      int
}

// Engine implements Fetcher on top of a DynamoDB table.
type Engine struct {
	db       DynamoDBAPI
	cfg      EngineConfig
	recorder Recorder
	logger   *slog.Logger
}

// NewEngine creates a new Engine instance. recorder may be nil.
func NewEngine(db DynamoDBAPI, cfg EngineConfig, recorder Recorder, logger *slog.Logger) *Engine {
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}
	if cfg.RoundTripTimeout <= 0 {
		cfg.RoundTripTimeout = DefaultRoundTripTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}

	return &Engine{
		db:       db,
		cfg:      cfg,
		recorder: recorder,
		logger:   logger,
	}
}

// Fetch pages through the camera's partition newest first, keeping only alert frames that
// match the filter. It stops requesting pages once q.Count records are collected and drops
// whatever else the last page held. Fewer than q.Count records is not an error.
func (e *Engine) Fetch(ctx context.Context, q Query) ([]Record, error) {
	ctx, span := tracer.Start(ctx, "alarm.fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("alarm.camera", q.Camera),
		attribute.Int("alarm.count", q.Count),
	)

	if err := q.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	paginator := dynamodb.NewQueryPaginator(e.db, e.buildInput(q))

	found := make([]Record, 0, q.Count)
	pages := 0

	for paginator.HasMorePages() && len(found) < q.Count {
		page, err := e.nextPage(ctx, paginator, q.Camera)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		pages++

		for _, item := range page.Items {
			rec, err := decodeRecord(item, q.Camera)
			if err != nil {
				return nil, &StoreQueryError{Camera: q.Camera, Err: err}
			}

			found = append(found, rec)
			if len(found) == q.Count {
				break
			}
		}
	}

	SortNewestFirst(found)

	span.SetAttributes(
		attribute.Int("alarm.pages", pages),
		attribute.Int("alarm.returned", len(found)),
	)

	if e.recorder != nil {
		e.recorder.RecordQuery(ctx, q.Camera, pages, len(found), time.Since(start))
	}

	e.logger.DebugContext(
		ctx,
		"alarm query completed",
		slog.String("camera", q.Camera),
		slog.Int("pages", pages),
		slog.Int("returned", len(found)),
	)

	return found, nil
}

func (e *Engine) nextPage(ctx context.Context, paginator *dynamodb.QueryPaginator, camera string) (*dynamodb.QueryOutput, error) {
	pageCtx, cancel := context.WithTimeout(ctx, e.cfg.RoundTripTimeout)
	defer cancel()

	page, err := paginator.NextPage(pageCtx)
	if err == nil {
		return page, nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(pageCtx.Err(), context.DeadlineExceeded) {
		return nil, &TimeoutError{Camera: camera, Timeout: e.cfg.RoundTripTimeout}
	}

	return nil, &StoreQueryError{Camera: camera, Err: err}
}

func (e *Engine) buildInput(q Query) *dynamodb.QueryInput {
	filterExpression := "Alert = :state"
	projectionExpression := projection
	values := map[string]types.AttributeValue{
		":name":  &types.AttributeValueMemberS{Value: q.Camera},
		":state": &types.AttributeValueMemberS{Value: alertState},
	}

	if placeholder, value, ok := q.Filter.label(); ok {
		filterExpression += " AND contains(Labels, " + placeholder + ")"
		projectionExpression += ", Labels"
		values[placeholder] = &types.AttributeValueMemberS{Value: value}
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(e.cfg.Table),
		KeyConditionExpression:    aws.String("ZmCameraName = :name"),
		FilterExpression:          aws.String(filterExpression),
		ProjectionExpression:      aws.String(projectionExpression),
		ExpressionAttributeValues: values,
		ScanIndexForward:          aws.Bool(false),
	}

	if e.cfg.PageLimit > 0 {
		input.Limit = aws.Int32(e.cfg.PageLimit)
	}

	return input
}

func decodeRecord(item map[string]types.AttributeValue, camera string) (Record, error) {
	var raw struct {
		Record
		Alert string `dynamodbav:"Alert"`
	}

	if err := attributevalue.UnmarshalMap(item, &raw); err != nil {
		return Record{}, fmt.Errorf("cannot unmarshal alarm frame: %w", err)
	}

	rec := raw.Record
	rec.IsAlert = raw.Alert == alertState
	if rec.CameraName == "" {
		rec.CameraName = camera
	}

	eventTime, err := ParseEventTime(rec.EventDateTime)
	if err != nil {
		return Record{}, err
	}
	rec.EventTime = eventTime

	return rec, nil
}

type cameraResult struct {
	index   int
	records []Record
}

// FetchAcrossCameras queries every camera concurrently and waits for all of them before
// merging. Results are concatenated in camera order and then stably sorted newest first,
// so equal timestamps resolve the same way on every call. The first camera error cancels
// the remaining queries and is returned; no partial list is ever produced.
func (e *Engine) FetchAcrossCameras(
	ctx context.Context,
	cameras []string,
	filter Filter,
	perCameraCount int,
) ([]Record, error) {
	ctx, span := tracer.Start(ctx, "alarm.fetch_across_cameras")
	defer span.End()
	span.SetAttributes(
		attribute.StringSlice("alarm.cameras", cameras),
		attribute.Int("alarm.per_camera_count", perCameraCount),
	)

	if len(cameras) == 0 {
		return nil, fmt.Errorf("%w: no cameras given", ErrInvalidQuery)
	}

	p := pool.NewWithResults[cameraResult]().
		WithContext(ctx).
		WithMaxGoroutines(e.cfg.Concurrency).
		WithCancelOnError().
		WithFirstError()

	for i, camera := range cameras {
		p.Go(func(ctx context.Context) (cameraResult, error) {
			records, err := e.Fetch(ctx, Query{Camera: camera, Filter: filter, Count: perCameraCount})
			if err != nil {
				return cameraResult{}, err
			}
			return cameraResult{index: i, records: records}, nil
		})
	}

	results, err := p.Wait()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return merge(results, len(cameras)), nil
}

func merge(results []cameraResult, cameras int) []Record {
	byCamera := make([][]Record, cameras)
	total := 0
	for _, r := range results {
		byCamera[r.index] = r.records
		total += len(r.records)
	}

	merged := make([]Record, 0, total)
	for _, records := range byCamera {
		merged = append(merged, records...)
	}

	SortNewestFirst(merged)

	return merged
}
