package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/VictoriaMetrics/metrics"
	"github.com/urfave/cli/v2"
	"hashpick.dev/hashpick/bench"
	"hashpick.dev/hashpick/chooser"
	"hashpick.dev/hashpick/logging"
)

func main() {
	app := &cli.App{
		Name:  "hashpick",
		Usage: "Compare strategies for routing messages to workers",
		Commands: []*cli.Command{{
			Name:  "bench",
			Usage: "Time each chooser and report how evenly it spreads messages",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "workers",
					Value: 16,
					Usage: "number of worker identities to route across",
				},
				&cli.IntFlag{
					Name:  "messages",
					Value: 100000,
					Usage: "number of messages to route through each chooser",
				},
				&cli.IntFlag{
					Name:  "vnodes",
					Value: 250,
					Usage: "ring positions per worker for the ring chooser",
				},
				&cli.StringFlag{
					Name:  "choosers",
					Value: "trie,ring,rendezvous,shuffle,modulo",
					Usage: "comma separated choosers to run",
				},
				&cli.BoolFlag{
					Name:  "metrics",
					Usage: "dump pick latency histograms in prometheus text format",
				},
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "log setup progress",
				},
			},
			Action: func(ctx *cli.Context) error {
				slog.SetDefault(slog.New(logging.NewTextHandler()))
				if ctx.Bool("verbose") {
					logging.SetLevel(slog.LevelDebug)
				} else {
					logging.SetLevel(slog.LevelWarn)
				}
				return runBench(ctx)
			},
		}},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runBench(ctx *cli.Context) error {
	choosers, err := choosersFromNames(ctx.String("choosers"), ctx.Int("vnodes"))
	if err != nil {
		return err
	}

	results, err := bench.Run(bench.Options{
		Choosers: choosers,
		Workers:  ctx.Int("workers"),
		Messages: ctx.Int("messages"),
	})
	if err != nil {
		return err
	}
	fmt.Print(bench.Report(results))

	if ctx.Bool("metrics") {
		metrics.WritePrometheus(os.Stdout, false)
	}
	return nil
}

func choosersFromNames(names string, vnodes int) ([]chooser.Chooser, error) {
	var choosers []chooser.Chooser
	for _, name := range strings.Split(names, ",") {
		switch strings.TrimSpace(name) {
		case "trie":
			choosers = append(choosers, &chooser.Trie{})
		case "ring":
			choosers = append(choosers, &chooser.Ring{VNodes: vnodes})
		case "rendezvous":
			choosers = append(choosers, &chooser.Rendezvous{})
		case "shuffle":
			choosers = append(choosers, &chooser.Shuffle{})
		case "modulo":
			choosers = append(choosers, &chooser.Modulo{})
		default:
			return nil, fmt.Errorf("unknown chooser %q", name)
		}
	}
	return choosers, nil
}
