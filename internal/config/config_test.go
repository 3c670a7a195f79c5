package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ab0utbla-k/zm-alarm-skill/internal/env"
)

type SSMAPIMock struct {
	mock.Mock
}

func (m *SSMAPIMock) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ssm.GetParameterOutput), args.Error(1)
}

func setBaseEnv(t *testing.T) {
	t.Helper()

	t.Setenv("AWS_REGION", "us-west-2")
	t.Setenv("LOCAL_PATH_BASE", "https://zm.example.com/events")
	t.Setenv("CGI_HOST", "zm.example.com")
	t.Setenv("CGI_USER", "alexa")
	t.Setenv("CGI_PASSWORD", "hunter2")
	t.Setenv("CLIP_VIDEO_URI", "https://zm.example.com/clips/alarm-video.mp4")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "us-west-2", cfg.AWSRegion)
	assert.Equal(t, "ZmAlarmFrames", cfg.TableName)
	assert.Equal(t, "./catalog.yaml", cfg.CatalogPath)
	assert.Equal(t, int32(0), cfg.PageLimit)
	assert.Equal(t, 45*time.Second, cfg.QueryTimeout)
	assert.Equal(t, 4, cfg.QueryConcurrency)
	assert.Equal(t, "America/Los_Angeles", cfg.DisplayLocation.String())
	assert.True(t, cfg.UseLocalPath)
	assert.Equal(t, "https://zm.example.com/events", cfg.LocalPathBase)
	assert.Equal(t, TargetCGI, cfg.ClipTarget)
	assert.Equal(t, 443, cfg.CGIPort)
	assert.Equal(t, "alexa", cfg.CGIUser)
	assert.Equal(t, "hunter2", cfg.CGIPassword)
	assert.Empty(t, cfg.MetricsNamespace)
}

func TestLoad_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ALARM_TABLE_NAME", "Frames")
	t.Setenv("CATALOG_PATH", "/opt/catalog.yaml")
	t.Setenv("QUERY_PAGE_LIMIT", "50")
	t.Setenv("QUERY_TIMEOUT", "10s")
	t.Setenv("QUERY_CONCURRENCY", "8")
	t.Setenv("DISPLAY_TIMEZONE", "UTC")
	t.Setenv("CGI_PORT", "8443")
	t.Setenv("METRICS_NAMESPACE", "ZoneMinder/Skill")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Frames", cfg.TableName)
	assert.Equal(t, "/opt/catalog.yaml", cfg.CatalogPath)
	assert.Equal(t, int32(50), cfg.PageLimit)
	assert.Equal(t, 10*time.Second, cfg.QueryTimeout)
	assert.Equal(t, 8, cfg.QueryConcurrency)
	assert.Equal(t, time.UTC, cfg.DisplayLocation)
	assert.Equal(t, 8443, cfg.CGIPort)
	assert.Equal(t, "ZoneMinder/Skill", cfg.MetricsNamespace)
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("QUERY_TIMEOUT", "soon")
	t.Setenv("QUERY_CONCURRENCY", "-1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.QueryTimeout)
	assert.Equal(t, 4, cfg.QueryConcurrency)
}

func TestLoad_S3Media(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("USE_LOCAL_PATH", "false")
	t.Setenv("S3_BUCKET", "zm-alarm-frames")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.UseLocalPath)
	assert.Equal(t, "zm-alarm-frames", cfg.S3Bucket)
}

func TestLoad_MissingS3Bucket(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("USE_LOCAL_PATH", "false")

	cfg, err := Load()
	require.Error(t, err)
	require.Nil(t, cfg)
	assert.ErrorIs(t, err, env.ErrMissing)
	assert.Contains(t, err.Error(), "S3_BUCKET")
}

func TestLoad_EventBridgeTarget(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CLIP_TARGET", "eventbridge")
	t.Setenv("EVENT_BUS_NAME", "zoneminder")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, TargetEventBridge, cfg.ClipTarget)
	assert.Equal(t, "zoneminder", cfg.EventBusName)
	assert.Empty(t, cfg.CGIHost)
	assert.Empty(t, cfg.SNSTopicARN)
}

func TestLoad_SNSTarget(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CLIP_TARGET", "sns")
	t.Setenv("SNS_TOPIC_ARN", "arn:aws:sns:us-west-2:123456789012:zm-clips")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, TargetSNS, cfg.ClipTarget)
	assert.Equal(t, "arn:aws:sns:us-west-2:123456789012:zm-clips", cfg.SNSTopicARN)
	assert.Empty(t, cfg.EventBusName)
}

func TestLoad_MissingAWSRegion(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("AWS_REGION", "")

	cfg, err := Load()
	require.Error(t, err)
	require.Nil(t, cfg)
	assert.Contains(t, err.Error(), "AWS_REGION")
}

func TestLoad_MissingEventBusName(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CLIP_TARGET", "eventbridge")

	cfg, err := Load()
	require.Error(t, err)
	require.Nil(t, cfg)
	assert.Contains(t, err.Error(), "EVENT_BUS_NAME")
}

func TestLoad_MissingCGIPassword(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CGI_PASSWORD", "")

	cfg, err := Load()
	require.Error(t, err)
	require.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestLoad_InvalidTimezone(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DISPLAY_TIMEZONE", "Nowhere/Special")

	cfg, err := Load()
	require.Error(t, err)
	require.Nil(t, cfg)
	assert.ErrorIs(t, err, env.ErrParsing)
}

func TestLoad_InvalidClipTarget(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CLIP_TARGET", "pigeon")

	cfg, err := Load()
	require.Error(t, err)
	require.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid clip target")
}

func TestResolveSecrets(t *testing.T) {
	mockSSM := new(SSMAPIMock)
	cfg := &Config{ClipTarget: TargetCGI, CGIPasswordParam: "/zm/cgi-password"}

	mockSSM.On("GetParameter",
		mock.MatchedBy(func(ctx context.Context) bool { return ctx != nil }),
		mock.MatchedBy(func(in *ssm.GetParameterInput) bool {
			return aws.ToString(in.Name) == "/zm/cgi-password" && aws.ToBool(in.WithDecryption)
		}),
	).Return(&ssm.GetParameterOutput{
		Parameter: &types.Parameter{Value: aws.String("s3cret")},
	}, nil).Once()

	require.NoError(t, cfg.ResolveSecrets(context.Background(), mockSSM))
	assert.Equal(t, "s3cret", cfg.CGIPassword)
	mockSSM.AssertExpectations(t)
}

func TestResolveSecrets_DirectPasswordWins(t *testing.T) {
	mockSSM := new(SSMAPIMock)
	cfg := &Config{ClipTarget: TargetCGI, CGIPassword: "direct", CGIPasswordParam: "/zm/cgi-password"}

	require.NoError(t, cfg.ResolveSecrets(context.Background(), mockSSM))
	assert.Equal(t, "direct", cfg.CGIPassword)
	mockSSM.AssertNotCalled(t, "GetParameter", mock.Anything, mock.Anything)
}

func TestResolveSecrets_Error(t *testing.T) {
	mockSSM := new(SSMAPIMock)
	cfg := &Config{ClipTarget: TargetCGI, CGIPasswordParam: "/zm/cgi-password"}
	expectedError := errors.New("parameter not found")

	mockSSM.On("GetParameter", mock.Anything, mock.Anything).
		Return(nil, expectedError).Once()

	err := cfg.ResolveSecrets(context.Background(), mockSSM)
	require.Error(t, err)
	assert.ErrorIs(t, err, expectedError)
	assert.Empty(t, cfg.CGIPassword)
	mockSSM.AssertExpectations(t)
}

func TestResolveSecrets_EmptyParameter(t *testing.T) {
	mockSSM := new(SSMAPIMock)
	cfg := &Config{ClipTarget: TargetCGI, CGIPasswordParam: "/zm/cgi-password"}

	mockSSM.On("GetParameter", mock.Anything, mock.Anything).
		Return(&ssm.GetParameterOutput{Parameter: &types.Parameter{}}, nil).Once()

	err := cfg.ResolveSecrets(context.Background(), mockSSM)
	assert.ErrorIs(t, err, ErrMissingSecret)
	mockSSM.AssertExpectations(t)
}
