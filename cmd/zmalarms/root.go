package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ab0utbla-k/zm-alarm-skill/internal/alarm"
	"github.com/ab0utbla-k/zm-alarm-skill/internal/catalog"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	v       *viper.Viper
	logger  *slog.Logger
	awsCfg  aws.Config
	catalog *catalog.Catalog
	engine  *alarm.Engine
	loc     *time.Location
	json    bool
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "zmalarms",
		Short: "Query ZoneMinder alarm frames from the command line",
		Long: `Runs the same alarm queries as the voice skill against the alarm-frames table.
Flags can also be set through ZMALARMS_* environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.String("region", "", "AWS region (default from the AWS environment)")
	flags.String("table", alarm.DefaultTable, "alarm-frames table name")
	flags.String("catalog", "./catalog.yaml", "camera and face catalog file")
	flags.String("timezone", "America/Los_Angeles", "time zone used to print event times")
	flags.Duration("timeout", alarm.DefaultRoundTripTimeout, "per-page query timeout")
	flags.Bool("json", false, "print results as JSON")
	flags.Bool("debug", false, "enable debug logging")

	_ = a.v.BindPFlags(flags)
	a.v.SetEnvPrefix("zmalarms")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		newCamerasCmd(a),
		newLatestCmd(a),
		newListCmd(a),
		newClipCmd(a),
	)

	return root
}

func (a *app) init(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	level := slog.LevelWarn
	if a.v.GetBool("debug") {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	a.json = a.v.GetBool("json")

	loc, err := time.LoadLocation(a.v.GetString("timezone"))
	if err != nil {
		return fmt.Errorf("cannot load time zone: %w", err)
	}
	a.loc = loc

	cat, err := catalog.Load(a.v.GetString("catalog"))
	if err != nil {
		return err
	}
	a.catalog = cat

	var opts []func(*awsconfig.LoadOptions) error
	if region := a.v.GetString("region"); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("cannot load aws config: %w", err)
	}
	a.awsCfg = awsCfg

	a.engine = alarm.NewEngine(
		dynamodb.NewFromConfig(awsCfg),
		alarm.EngineConfig{
			Table:            a.v.GetString("table"),
			RoundTripTimeout: a.v.GetDuration("timeout"),
		},
		nil,
		a.logger,
	)

	return nil
}

// resolveCameras maps a spoken or configured camera name to catalog names. An empty name
// selects every camera.
func (a *app) resolveCameras(name string) ([]string, error) {
	if name == "" {
		return a.catalog.CameraNames(), nil
	}

	camera, ok := a.catalog.ResolveCamera(name)
	if !ok {
		return nil, fmt.Errorf("unknown camera %q", name)
	}
	return []string{camera}, nil
}
