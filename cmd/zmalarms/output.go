package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ab0utbla-k/zm-alarm-skill/internal/alarm"
	"github.com/ab0utbla-k/zm-alarm-skill/internal/catalog"
	"github.com/ab0utbla-k/zm-alarm-skill/internal/clip"
)

const timeLayout = "2006-01-02 15:04:05 MST"

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRecords(w io.Writer, records []alarm.Record, loc *time.Location, asJSON bool) error {
	if asJSON {
		return printJSON(w, records)
	}

	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No alarms were found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "CAMERA\tTIME\tEVENT\tFRAME\tLABELS")
	fmt.Fprintln(tw, "------\t----\t-----\t-----\t------")

	for _, r := range records {
		labels := strings.Join(r.Labels, ",")
		if labels == "" {
			labels = "-"
		}

		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
			r.CameraName,
			r.EventTime.In(loc).Format(timeLayout),
			r.EventID,
			r.FrameID,
			labels,
		)
	}
	return tw.Flush()
}

func printCameras(w io.Writer, c *catalog.Catalog, asJSON bool) error {
	if asJSON {
		return printJSON(w, c.Cameras)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "CAMERA\tSPOKEN AS")
	fmt.Fprintln(tw, "------\t---------")
	for _, e := range c.Cameras {
		fmt.Fprintf(tw, "%s\t%s\n", e.Name, strings.Join(e.FriendlyNames, ", "))
	}
	return tw.Flush()
}

func printRange(w io.Writer, r clip.Range, asJSON bool) error {
	if asJSON {
		return printJSON(w, map[string]int64{
			"event":       r.EventID,
			"start_frame": r.StartFrame,
			"end_frame":   r.EndFrame,
		})
	}

	_, err := fmt.Fprintf(w, "event %d frames %d-%d (%d frames)\n", r.EventID, r.StartFrame, r.EndFrame, r.Frames())
	return err
}
