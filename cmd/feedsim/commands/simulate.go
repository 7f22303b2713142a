package commands

import (
	"fmt"
	"io"
	"math/rand"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/rushteam/feedkit/feed"
	"github.com/rushteam/feedkit/scoring"
	"github.com/rushteam/feedkit/session"
)

var (
	simRounds    int
	simFavorites int
	simSeed      int64
	simFormat    string
)

// NewSimulateCmd 用脚本化的观看者跑一个会话
func NewSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a scripted viewer against one session",
		Long: `Run a scripted viewer against one in-process session.

The viewer picks a random set of favorite items. Favorites are watched to
the end and liked; everything else is skipped after a second.

Examples:
  feedsim simulate --catalog items.json
  feedsim simulate --catalog items.json --rounds 10 --seed 7 --format json`,
		Args: cobra.NoArgs,
		RunE: runSimulate,
	}
	cmd.Flags().IntVar(&simRounds, "rounds", 6, "number of batches to request")
	cmd.Flags().IntVar(&simFavorites, "favorites", 5, "number of favorite items")
	cmd.Flags().Int64Var(&simSeed, "seed", 1, "random seed")
	cmd.Flags().StringVar(&simFormat, "format", "table", "output format: table, json")
	return cmd
}

// roundResult 是一轮的输出
type roundResult struct {
	Round    int          `json:"round"`
	Mode     feed.Mode    `json:"mode"`
	Fallback bool         `json:"fallback"`
	Entries  []feed.Entry `json:"entries"`
	Hits     int          `json:"hits"`
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	if simRounds <= 0 {
		return fmt.Errorf("rounds must be positive, got %d", simRounds)
	}
	if simFormat != "table" && simFormat != "json" {
		return fmt.Errorf("unknown format %q", simFormat)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Session.Seed = simSeed
	cfg.Store.Backend = "none"

	ctx := cmd.Context()
	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	rng := rand.New(rand.NewSource(simSeed))
	favorites := make(map[string]bool)
	for _, id := range a.catalog.SampleUniform(rng, nil, simFavorites) {
		favorites[id] = true
	}

	sess := a.manager.Create(ctx)
	results := make([]roundResult, 0, simRounds)
	for round := 1; round <= simRounds; round++ {
		batch, err := sess.RequestBatch(ctx)
		if err != nil {
			return err
		}
		res := roundResult{Round: round, Mode: batch.Mode, Fallback: batch.Fallback, Entries: batch.Entries}
		for _, e := range batch.Entries {
			if err := watch(cmd, sess, e.ItemID, favorites[e.ItemID]); err != nil {
				return err
			}
			if favorites[e.ItemID] {
				res.Hits++
			}
		}
		results = append(results, res)
	}

	out := cmd.OutOrStdout()
	if simFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	printRounds(out, results, sess.Stats())
	return nil
}

func watch(cmd *cobra.Command, sess *session.Session, itemID string, favorite bool) error {
	ctx := cmd.Context()
	if !favorite {
		_, err := sess.ReportDuration(ctx, itemID, 1000)
		return err
	}
	if _, err := sess.ToggleInteraction(ctx, itemID, scoring.KindLike, true); err != nil {
		return err
	}
	_, err := sess.ReportDuration(ctx, itemID, 12000)
	return err
}

func printRounds(w io.Writer, results []roundResult, stats session.Stats) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROUND\tMODE\tHITS\tITEMS")
	for _, r := range results {
		mode := string(r.Mode)
		if r.Fallback {
			mode += "*"
		}
		ids := make([]string, len(r.Entries))
		for i, e := range r.Entries {
			ids[i] = e.ItemID
		}
		fmt.Fprintf(tw, "%d\t%s\t%d/%d\t%v\n", r.Round, mode, r.Hits, len(r.Entries), ids)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\nhistory=%d shown=%d refreshes=%d preference=%v\n",
		stats.HistoryCount, stats.Shown, stats.Refreshes, stats.PreferencePresent)
}
