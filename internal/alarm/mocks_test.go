package alarm

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/mock"
)

// DynamoDBAPIMock is a mock implementation of the DynamoDBAPI interface.
type DynamoDBAPIMock struct {
	mock.Mock
}

func (m *DynamoDBAPIMock) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.QueryOutput), args.Error(1)
}

// RecorderMock is a mock implementation of the Recorder interface.
type RecorderMock struct {
	mock.Mock
}

func (m *RecorderMock) RecordQuery(ctx context.Context, camera string, pages, records int, elapsed time.Duration) {
	m.Called(ctx, camera, pages, records, elapsed)
}

// frame is a row of the in-memory alarm table.
type frame struct {
	camera   string
	dateTime string
	eventID  int64
	frameID  int64
	alert    bool
	labels   []string
}

// fakeTable is an in-memory stand-in for the alarm-frames table. It evaluates pageSize
// rows per request before filtering, the way DynamoDB applies Limit, and hands out
// LastEvaluatedKey while rows remain.
type fakeTable struct {
	mu       sync.Mutex
	frames   []frame
	pageSize int
	failOn   map[string]error
	calls    map[string]int
}

func newFakeTable(pageSize int, frames ...frame) *fakeTable {
	return &fakeTable{
		frames:   frames,
		pageSize: pageSize,
		failOn:   map[string]error{},
		calls:    map[string]int{},
	}
}

func (f *fakeTable) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	camera := stringValue(params.ExpressionAttributeValues[":name"])
	f.calls[camera]++

	if err, ok := f.failOn[camera]; ok {
		return nil, err
	}

	var rows []frame
	for _, fr := range f.frames {
		if fr.camera == camera {
			rows = append(rows, fr)
		}
	}

	descending := params.ScanIndexForward != nil && !*params.ScanIndexForward
	slices.SortStableFunc(rows, func(a, b frame) int {
		if descending {
			return compareStrings(b.dateTime, a.dateTime)
		}
		return compareStrings(a.dateTime, b.dateTime)
	})

	start := 0
	if params.ExclusiveStartKey != nil {
		last := stringValue(params.ExclusiveStartKey["ZmEventDateTime"])
		for i, fr := range rows {
			if fr.dateTime == last {
				start = i + 1
				break
			}
		}
	}

	size := f.pageSize
	if params.Limit != nil {
		size = int(*params.Limit)
	}
	end := min(start+size, len(rows))

	label := ""
	if v, ok := params.ExpressionAttributeValues[":face"]; ok {
		label = stringValue(v)
	} else if v, ok := params.ExpressionAttributeValues[":object"]; ok {
		label = stringValue(v)
	}

	out := &dynamodb.QueryOutput{}
	for _, fr := range rows[start:end] {
		if !fr.alert {
			continue
		}
		if label != "" && !slices.Contains(fr.labels, label) {
			continue
		}
		out.Items = append(out.Items, fr.item())
	}

	if end < len(rows) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"ZmCameraName":    &types.AttributeValueMemberS{Value: camera},
			"ZmEventDateTime": &types.AttributeValueMemberS{Value: rows[end-1].dateTime},
		}
	}

	return out, nil
}

func (f *fakeTable) callsFor(camera string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[camera]
}

func (fr frame) item() map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"ZmCameraName":     &types.AttributeValueMemberS{Value: fr.camera},
		"ZmEventDateTime":  &types.AttributeValueMemberS{Value: fr.dateTime},
		"ZmEventId":        &types.AttributeValueMemberN{Value: strconv.FormatInt(fr.eventID, 10)},
		"ZmFrameId":        &types.AttributeValueMemberN{Value: strconv.FormatInt(fr.frameID, 10)},
		"S3Key":            &types.AttributeValueMemberS{Value: fr.camera + "/" + fr.dateTime + ".jpg"},
		"ZmLocalEventPath": &types.AttributeValueMemberS{Value: "/events/" + fr.camera + "/" + fr.dateTime + ".jpg"},
		"Alert":            &types.AttributeValueMemberS{Value: strconv.FormatBool(fr.alert)},
	}
	if len(fr.labels) > 0 {
		item["Labels"] = &types.AttributeValueMemberSS{Value: fr.labels}
	}
	return item
}

func stringValue(v types.AttributeValue) string {
	if s, ok := v.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
