package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sarops/medkit/pkg/adapter"
	"github.com/sarops/medkit/pkg/usecase/chat"
	"github.com/sarops/medkit/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func chatCommand() *cli.Command {
	var (
		cfg config
		lat float64
		lon float64
	)

	flags := []cli.Flag{
		&cli.FloatFlag{
			Name:        "lat",
			Usage:       "Rescuee latitude",
			Sources:     cli.EnvVars("MEDKIT_LAT"),
			Destination: &lat,
		},
		&cli.FloatFlag{
			Name:        "lon",
			Usage:       "Rescuee longitude",
			Sources:     cli.EnvVars("MEDKIT_LON"),
			Destination: &lon,
		},
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "Cloud Storage bucket for session archives",
			Sources:     cli.EnvVars("MEDKIT_BUCKET"),
			Destination: &cfg.bucket,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive first-aid guidance session",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.New(cfg.logLevel, os.Stderr)
			logging.SetDefault(logger)
			ctx = logging.With(ctx, logger)

			if err := cfg.loadSettings(); err != nil {
				return err
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			session := chat.New(chat.NewInput{
				Gemini:    gemini,
				Knowledge: cfg.newKnowledge(repo, gemini),
				Weather:   adapter.NewWeather(),
				Hospitals: adapter.NewHospitalDirectory(),
				TopK:      cfg.settings.TopK,
			})

			if c.IsSet("lat") && c.IsSet("lon") {
				session.SetPosition(ctx, lat, lon)
			}

			rl, err := readline.New("> ")
			if err != nil {
				return goerr.Wrap(err, "failed to initialize input")
			}
			defer rl.Close()

			out := c.Root().Writer
			fmt.Fprintln(out, "Enter a first-aid-related request. Commands: /position <lat> <lon>, /map, exit")

			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read input")
				}

				line = strings.TrimSpace(line)
				switch {
				case line == "":
					continue
				case line == "exit":
					goto done
				case strings.HasPrefix(line, "/position"):
					handlePosition(ctx, session, line, out)
					continue
				case line == "/map":
					handleMap(session, out)
					continue
				}

				sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				sp.Suffix = " thinking..."
				sp.Start()
				response, err := session.Send(ctx, line)
				sp.Stop()

				if err != nil {
					// Surface as an error string, keep the session alive
					fmt.Fprintf(out, "Error: %v\n", err)
					continue
				}
				fmt.Fprintf(out, "%s\n", response)
			}

		done:
			if cfg.bucket != "" {
				storage, err := cfg.newStorage(ctx)
				if err != nil {
					return err
				}
				if err := session.Archive(ctx, storage); err != nil {
					return goerr.Wrap(err, "failed to archive session")
				}
				logger.Info("session archived", "session_id", session.ID())
			}

			fmt.Fprintln(out, "Session completed")
			return nil
		},
	}
}

func handlePosition(ctx context.Context, session *chat.Session, line string, out io.Writer) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		fmt.Fprintln(out, "Usage: /position <lat> <lon>")
		return
	}

	lat, errLat := strconv.ParseFloat(fields[1], 64)
	lon, errLon := strconv.ParseFloat(fields[2], 64)
	if errLat != nil || errLon != nil {
		fmt.Fprintln(out, "Usage: /position <lat> <lon>")
		return
	}

	session.SetPosition(ctx, lat, lon)
	env := session.State().Environment()
	fmt.Fprintf(out, "Weather: %s\nNearest hospital: %s\n", env.WeatherSummary, env.NearestHospitalSummary)
}

func handleMap(session *chat.Session, out io.Writer) {
	path, err := session.GenerateMap()
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Map written to %s\n", path)
}
