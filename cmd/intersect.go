package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"go-poll-scheduler/core/config"
	"go-poll-scheduler/core/interval"
	availability "go-poll-scheduler/modules/availability/service"
	"go-poll-scheduler/modules/poll/service"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// intersectInput is the file read by the intersect command. Window is
// optional and derived from --now and --weeks when absent.
type intersectInput struct {
	Window  *interval.Window                  `json:"window"`
	Parties map[string][]interval.RawInterval `json:"parties"`
}

type intersectOutput struct {
	Window   interval.Window `json:"window"`
	Missing  []string        `json:"missing"`
	Sessions interval.Party  `json:"sessions"`
}

type intersectOptions struct {
	MinimumLength time.Duration
	Weeks         int
	Now           time.Time
}

func newIntersectCommand() *cobra.Command {
	var (
		file          string
		minimumLength string
		weeks         int
		now           string
	)
	cmd := &cobra.Command{
		Use:   "intersect",
		Short: "Intersect party records read from a JSON file, without any remote call",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Get()
			opts := intersectOptions{Weeks: weeks, Now: time.Now()}
			if opts.Weeks <= 0 {
				opts.Weeks = cfg.Poll.DefaultWeeks
			}
			if minimumLength == "" {
				minimumLength = cfg.Poll.DefaultMinimumLength
			}
			d, err := service.ParseMinimumLength(minimumLength)
			if err != nil {
				return err
			}
			opts.MinimumLength = d
			if now != "" {
				if opts.Now, err = time.Parse(time.RFC3339, now); err != nil {
					return fmt.Errorf("invalid --now: %w", err)
				}
			}

			in := cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return runIntersect(in, cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON file with the party records, - for stdin")
	cmd.Flags().StringVarP(&minimumLength, "min", "t", "", "minimum session length as HH:MM")
	cmd.Flags().IntVarP(&weeks, "weeks", "w", 0, "number of weeks to look ahead")
	cmd.Flags().StringVar(&now, "now", "", "reference time in RFC 3339, defaults to the current time")
	return cmd
}

func runIntersect(r io.Reader, w io.Writer, opts intersectOptions) error {
	var input intersectInput
	if err := json.NewDecoder(r).Decode(&input); err != nil {
		return errors.Wrap(err, "decode input")
	}
	if len(input.Parties) == 0 {
		return errors.New("input has no parties")
	}

	window := availability.NewWindow(opts.Now, opts.Weeks)
	if input.Window != nil {
		window = *input.Window
	}

	names := make([]string, 0, len(input.Parties))
	for name := range input.Parties {
		names = append(names, name)
	}
	slices.Sort(names)

	out := intersectOutput{Window: window, Missing: []string{}, Sessions: interval.Party{}}
	avail := make([]interval.Availability, 0, len(names))
	for _, name := range names {
		a, err := interval.Normalize(input.Parties[name], window)
		if err != nil {
			return errors.Wrapf(err, "party %s", name)
		}
		if !a.IsPresent() {
			out.Missing = append(out.Missing, name)
		}
		avail = append(avail, a)
	}

	sessions, err := interval.IntersectAvailability(avail, opts.MinimumLength.Milliseconds())
	if err != nil {
		return err
	}
	if sessions != nil {
		out.Sessions = sessions
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
