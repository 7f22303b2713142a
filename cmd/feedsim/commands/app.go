package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rushteam/feedkit/catalog"
	"github.com/rushteam/feedkit/config"
	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/feast"
	"github.com/rushteam/feedkit/feed"
	"github.com/rushteam/feedkit/pkg/logging"
	"github.com/rushteam/feedkit/session"
	"github.com/rushteam/feedkit/store"
	"github.com/rushteam/feedkit/vector"
)

// app 持有一次运行所需的全部组件
type app struct {
	cfg     *config.Config
	catalog *catalog.MemoryCatalog
	manager *session.Manager
	closers []func() error
	logger  zerolog.Logger
}

func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, logger: logging.Component("feedsim")}

	c, err := a.loadCatalog(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.catalog = c

	mem, err := store.NewMemoryVectorIndexFromCatalog(ctx, c, cfg.Index.Metric)
	if err != nil {
		a.Close()
		return nil, err
	}
	var index core.VectorService = mem
	if cfg.Index.Breaker {
		b := vector.NewBreakerIndex(mem, cfg.BreakerConfig(), logging.Component("index"))
		a.closers = append(a.closers, b.Close)
		index = b
	}

	assembler, err := feed.NewAssembler(c, index, cfg.Feed, logging.Component("feed"))
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []session.ManagerOption{session.WithManagerLogger(logging.Component("session"))}
	snaps, kv, err := cfg.OpenStore()
	if err != nil {
		a.Close()
		return nil, err
	}
	if snaps != nil {
		a.closers = append(a.closers, kv.Close)
		opts = append(opts, session.WithManagerSnapshotSink(snaps))
	}

	a.manager, err = session.NewManager(c, assembler, cfg.ManagerConfig(), opts...)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.logger.Info().
		Int("items", c.Len()).
		Int("dimension", c.Dimension()).
		Str("store", cfg.Store.Backend).
		Bool("breaker", cfg.Index.Breaker).
		Msg("feed ready")
	return a, nil
}

func (a *app) loadCatalog(ctx context.Context) (*catalog.MemoryCatalog, error) {
	fc := a.cfg.Catalog.Feast
	if fc.Host == "" {
		if a.cfg.Catalog.Path == "" {
			return nil, errors.New("catalog path is required (--catalog or catalog.path)")
		}
		return catalog.LoadJSON(a.cfg.Catalog.Path)
	}

	ids, err := readLines(fc.IDsPath)
	if err != nil {
		return nil, err
	}
	client, err := feast.NewGrpcClient(fc.Host, fc.Port, fc.Project)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)
	return catalog.LoadFromFeatures(ctx, client, ids, catalog.FeatureOptions{
		EntityKey:       fc.EntityKey,
		VectorFeature:   fc.VectorFeature,
		PayloadFeatures: fc.PayloadFeatures,
		ChunkSize:       fc.ChunkSize,
		Concurrency:     fc.Concurrency,
	})
}

// Close 逆序释放资源
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn().Err(err).Msg("close failed")
		}
	}
	a.closers = nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ids: %w", err)
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" && !strings.HasPrefix(line, "#") {
			out = append(out, line)
		}
	}
	return out, sc.Err()
}
