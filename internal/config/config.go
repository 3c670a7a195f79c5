// Package config loads the skill configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/ab0utbla-k/zm-alarm-skill/internal/alarm"
	"github.com/ab0utbla-k/zm-alarm-skill/internal/env"
)

// ClipTarget selects where alarm clip requests are sent.
type ClipTarget string

const (
	TargetCGI         ClipTarget = "cgi"
	TargetEventBridge ClipTarget = "eventbridge"
	TargetSNS         ClipTarget = "sns"
)

const (
	defaultCatalogPath = "./catalog.yaml"
	defaultTimezone    = "America/Los_Angeles"
	defaultCGIPort     = 443
)

// ErrMissingSecret indicates the CGI password is neither set nor referenced in Parameter Store.
var ErrMissingSecret = errors.New("cgi password not configured")

type Config struct {
	AWSRegion string

	TableName        string
	CatalogPath      string
	PageLimit        int32
	QueryTimeout     time.Duration
	QueryConcurrency int
	DisplayLocation  *time.Location

	UseLocalPath  bool
	LocalPathBase string
	S3Bucket      string

	ClipTarget       ClipTarget
	CGIHost          string
	CGIPort          int
	CGIUser          string
	CGIPassword      string
	CGIPasswordParam string
	ClipVideoURI     string
	EventBusName     string
	SNSTopicARN      string

	MetricsNamespace string
}

func Load() (*Config, error) {
	cfg := &Config{}

	region, err := env.GetRequired("AWS_REGION", env.ParseNonEmptyString)
	if err != nil {
		return nil, err
	}
	cfg.AWSRegion = region

	cfg.TableName = env.Get("ALARM_TABLE_NAME", alarm.DefaultTable, env.ParseNonEmptyString)
	cfg.CatalogPath = env.Get("CATALOG_PATH", defaultCatalogPath, env.ParseNonEmptyString)
	cfg.PageLimit = int32(env.Get("QUERY_PAGE_LIMIT", 0, env.ParsePositiveInt))
	cfg.QueryTimeout = env.Get("QUERY_TIMEOUT", alarm.DefaultRoundTripTimeout, env.ParsePositiveDuration)
	cfg.QueryConcurrency = env.Get("QUERY_CONCURRENCY", alarm.DefaultConcurrency, env.ParsePositiveInt)
	cfg.MetricsNamespace = env.Get("METRICS_NAMESPACE", "", env.ParseString)

	tz := env.Get("DISPLAY_TIMEZONE", defaultTimezone, env.ParseNonEmptyString)
	cfg.DisplayLocation, err = env.ParseLocation(tz)
	if err != nil {
		return nil, &env.Error{Key: "DISPLAY_TIMEZONE", Err: errors.Join(env.ErrParsing, err)}
	}

	if err := cfg.loadMedia(); err != nil {
		return nil, err
	}

	if err := cfg.loadClipTarget(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadMedia() error {
	c.UseLocalPath = env.Get("USE_LOCAL_PATH", true, env.ParseBool)

	if c.UseLocalPath {
		base, err := env.GetRequired("LOCAL_PATH_BASE", env.ParseNonEmptyString)
		if err != nil {
			return err
		}
		c.LocalPathBase = base
		return nil
	}

	bucket, err := env.GetRequired("S3_BUCKET", env.ParseNonEmptyString)
	if err != nil {
		return err
	}
	c.S3Bucket = bucket
	return nil
}

func (c *Config) loadClipTarget() error {
	target := env.Get("CLIP_TARGET", string(TargetCGI), env.ParseNonEmptyString)
	c.ClipTarget = ClipTarget(target)

	var err error
	switch c.ClipTarget {
	case TargetCGI:
		if c.CGIHost, err = env.GetRequired("CGI_HOST", env.ParseNonEmptyString); err != nil {
			return err
		}
		if c.CGIUser, err = env.GetRequired("CGI_USER", env.ParseNonEmptyString); err != nil {
			return err
		}
		if c.ClipVideoURI, err = env.GetRequired("CLIP_VIDEO_URI", env.ParseNonEmptyString); err != nil {
			return err
		}
		c.CGIPort = env.Get("CGI_PORT", defaultCGIPort, env.ParsePositiveInt)
		c.CGIPassword = env.Get("CGI_PASSWORD", "", env.ParseString)
		c.CGIPasswordParam = env.Get("CGI_PASSWORD_PARAM", "", env.ParseString)
		if c.CGIPassword == "" && c.CGIPasswordParam == "" {
			return fmt.Errorf("%w: set CGI_PASSWORD or CGI_PASSWORD_PARAM", ErrMissingSecret)
		}

	case TargetEventBridge:
		if c.EventBusName, err = env.GetRequired("EVENT_BUS_NAME", env.ParseNonEmptyString); err != nil {
			return err
		}

	case TargetSNS:
		if c.SNSTopicARN, err = env.GetRequired("SNS_TOPIC_ARN", env.ParseNonEmptyString); err != nil {
			return err
		}

	default:
		return fmt.Errorf("invalid clip target: %s", target)
	}

	return nil
}
