// Package bench compares chooser strategies over the same worker and message
// sets, reporting per-pick latency and how evenly each strategy spreads the
// messages across the workers.
package bench

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/segmentio/ksuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"hashpick.dev/hashpick/chooser"
)

type Options struct {
	Choosers []chooser.Chooser
	Workers  int // number of worker identities to route across
	Messages int // number of messages to route
}

// Result summarizes one chooser's run.
type Result struct {
	Name       string
	PerMessage time.Duration
	MinPicks   int // messages routed to the least loaded worker
	MaxPicks   int // messages routed to the most loaded worker
}

// Balance is the min/max pick ratio: 1 is a perfectly even spread.
func (r Result) Balance() float64 {
	if r.MaxPicks == 0 {
		return 0
	}
	return float64(r.MinPicks) / float64(r.MaxPicks)
}

// Run builds every chooser over one shared worker set, routes the same
// messages through each, and returns results sorted fastest first. Pick
// latencies are also recorded in the chooser_pick_duration_seconds histogram,
// labeled per chooser.
func Run(opts Options) ([]Result, error) {
	if opts.Workers < 1 {
		return nil, fmt.Errorf("bench needs at least one worker, got %d", opts.Workers)
	}
	if opts.Messages < 1 {
		return nil, fmt.Errorf("bench needs at least one message, got %d", opts.Messages)
	}

	workers := randomIDs(opts.Workers)
	messages := randomIDs(opts.Messages)

	slog.Debug("bench setup done", "workers", len(workers), "messages", len(messages))

	picks := make([]chooser.PickFunc, len(opts.Choosers))
	for i, c := range opts.Choosers {
		start := time.Now()
		picks[i] = c.Build(workers)
		slog.Debug("built chooser", "chooser", c.Name(), "elapsed", time.Since(start))
	}

	// Balance phase. The choosers are independent, so count concurrently.
	counts := make([]map[string]int, len(opts.Choosers))
	var g errgroup.Group
	for i, c := range opts.Choosers {
		g.Go(func() error {
			counted := make(map[string]int, len(workers))
			for _, w := range workers {
				counted[string(w)] = 0
			}
			for _, m := range messages {
				w := picks[i](m)
				if _, ok := counted[string(w)]; !ok {
					return fmt.Errorf("chooser %q picked unknown worker %x", c.Name(), w)
				}
				counted[string(w)]++
			}
			counts[i] = counted
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Latency phase, sequential so choosers don't contend with each other.
	results := make([]Result, len(opts.Choosers))
	for i, c := range opts.Choosers {
		hist := metrics.GetOrCreateHistogram(
			fmt.Sprintf(`chooser_pick_duration_seconds{chooser=%q}`, c.Name()))

		start := time.Now()
		for _, m := range messages {
			pickStart := time.Now()
			picks[i](m)
			hist.UpdateDuration(pickStart)
		}
		elapsed := time.Since(start)

		minPicks, maxPicks := -1, 0
		for _, n := range counts[i] {
			if minPicks == -1 || n < minPicks {
				minPicks = n
			}
			maxPicks = max(maxPicks, n)
		}

		results[i] = Result{
			Name:       c.Name(),
			PerMessage: elapsed / time.Duration(len(messages)),
			MinPicks:   minPicks,
			MaxPicks:   maxPicks,
		}
	}

	slices.SortFunc(results, func(a, b Result) int {
		return cmp.Compare(a.PerMessage, b.PerMessage)
	})
	return results, nil
}

// Report formats results for people, one line per chooser.
func Report(results []Result) string {
	p := message.NewPrinter(language.English)
	var sb strings.Builder
	for _, r := range results {
		p.Fprintf(&sb, "%-12s 1 message ~%v, balance (%d, %d) %.0f%%\n",
			r.Name, r.PerMessage, r.MinPicks, r.MaxPicks, r.Balance()*100)
	}
	return sb.String()
}

func randomIDs(n int) [][]byte {
	ids := make([][]byte, n)
	for i := range ids {
		ids[i] = ksuid.New().Bytes()
	}
	return ids
}
