package main

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/spf13/cobra"

	"github.com/ab0utbla-k/zm-alarm-skill/internal/alarm"
	"github.com/ab0utbla-k/zm-alarm-skill/internal/clip"
	"github.com/ab0utbla-k/zm-alarm-skill/internal/config"
	"github.com/ab0utbla-k/zm-alarm-skill/internal/dispatch"
)

func newCamerasCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cameras",
		Short: "List the cameras in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printCameras(cmd.OutOrStdout(), a.catalog, a.json)
		},
	}
}

func newLatestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "latest [camera]",
		Short: "Show the most recent alarm of one camera or of all cameras",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}

			cameras, err := a.resolveCameras(name)
			if err != nil {
				return err
			}

			records, err := a.engine.FetchAcrossCameras(cmd.Context(), cameras, alarm.Filter{}, 1)
			if err != nil {
				return err
			}

			latest, ok := alarm.Latest(records)
			if !ok {
				return alarm.ErrNoAlarms
			}

			return printRecords(cmd.OutOrStdout(), []alarm.Record{latest}, a.loc, a.json)
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var (
		camera string
		count  int
		face   string
		object string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent alarms, optionally filtered by a recognized face or object",
		Example: `  zmalarms list
  zmalarms list --camera "front porch" --count 20
  zmalarms list --camera driveway --face lindo`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cameras, err := a.resolveCameras(camera)
			if err != nil {
				return err
			}

			var filter alarm.Filter
			switch {
			case face != "":
				filter = a.catalog.ResolveSubject(face).Filter
			case object != "":
				filter = a.catalog.ResolveSubject(object).Filter
			}

			records, err := a.engine.FetchAcrossCameras(cmd.Context(), cameras, filter, count)
			if err != nil {
				return err
			}

			return printRecords(cmd.OutOrStdout(), records, a.loc, a.json)
		},
	}

	cmd.Flags().StringVar(&camera, "camera", "", "camera name (default all cameras)")
	cmd.Flags().IntVar(&count, "count", 10, "alarms per camera")
	cmd.Flags().StringVar(&face, "face", "", "only alarms in which this person was recognized")
	cmd.Flags().StringVar(&object, "object", "", "only alarms in which this object was detected")
	cmd.MarkFlagsMutuallyExclusive("face", "object")

	return cmd
}

func newClipCmd(a *app) *cobra.Command {
	var send bool

	cmd := &cobra.Command{
		Use:   "clip <camera>",
		Short: "Compute the clip range of a camera's latest event and optionally request it",
		Long: `Computes the frame range of the newest alarm event of a camera. With --send the
request goes to the clip target configured through the skill's environment variables.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cameras, err := a.resolveCameras(args[0])
			if err != nil {
				return err
			}

			records, err := a.engine.Fetch(cmd.Context(), alarm.Query{Camera: cameras[0], Count: clip.LookbackRecords})
			if err != nil {
				return err
			}

			r, err := clip.FromRecords(records)
			if err != nil {
				return err
			}

			if err := printRange(cmd.OutOrStdout(), r, a.json); err != nil {
				return err
			}

			if !send {
				return nil
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if err := cfg.ResolveSecrets(cmd.Context(), ssm.NewFromConfig(a.awsCfg)); err != nil {
				return err
			}

			sender, err := dispatch.NewSender(a.awsCfg, cfg)
			if err != nil {
				return err
			}

			if err := sender.Send(cmd.Context(), r); err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Clip requested via %s.\n", cfg.ClipTarget)
			return nil
		},
	}

	cmd.Flags().BoolVar(&send, "send", false, "send the clip request to the configured target")

	return cmd
}
