// NC News
// =======
// A PostgreSQL backed REST API serving articles, comments, topics and users.
//
// Configuration comes from defaults, an optional config.yaml and NCNEWS_*
// environment variables (see internal/config). Route docs are printed with
// `go run . -routes`.
//
// Boot the server:
// ----------------
// $ NCNEWS_DATABASE_URL=postgres://localhost:5432/nc_news go run .
//
// Client requests:
// ----------------
// $ curl http://localhost:9090/api/articles?topic=cats&sort_by=votes&order=asc
// {"articles":[{"article_id":5,...,"comment_count":"2"}],"total_count":"1"}
//
// $ curl -X PATCH -d '{"inc_votes":4}' http://localhost:9090/api/articles/3
// {"article":{"article_id":3,...,"votes":4,...}}
//
// $ curl -X DELETE http://localhost:9090/api/comments/1
// (204, empty body)
//
// $ curl http://localhost:9999/metrics
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/docgen"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SergeyParamoshkin/ncnews/internal/config"
	"github.com/SergeyParamoshkin/ncnews/internal/logger"
	"github.com/SergeyParamoshkin/ncnews/internal/server"
	"github.com/SergeyParamoshkin/ncnews/internal/store"
	"github.com/SergeyParamoshkin/ncnews/internal/telemetry"
)

const ServiceName = "ncnews"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var (
		routes   = flag.Bool("routes", false, "Generate router documentation")
		addr     = flag.String("addr", cfg.Server.Addr, "application address")
		diagAddr = flag.String("diag_addr", cfg.Server.DiagAddr, "diag address")
	)

	flag.Parse()

	// Passing -routes prints Markdown docs for the router without touching
	// the database.
	if *routes {
		r := server.NewRouter(server.Deps{
			Articles: store.NewArticles(nil),
			Comments: store.NewComments(nil),
			Topics:   store.NewTopics(nil),
			Users:    store.NewUsers(nil),
		})
		fmt.Println(docgen.MarkdownRoutesDoc(r, docgen.MarkdownOpts{
			ProjectPath: "github.com/SergeyParamoshkin/ncnews",
			Intro:       "NC News API generated docs.",
		}))

		return nil
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Database.Migrate {
		if err := store.Migrate(pool, log); err != nil {
			return err
		}
	}

	metrics, err := telemetry.New(ServiceName)
	if err != nil {
		return err
	}

	api := &http.Server{
		Addr: *addr,
		Handler: server.NewRouter(server.Deps{
			Articles:  store.NewArticles(pool),
			Comments:  store.NewComments(pool),
			Topics:    store.NewTopics(pool),
			Users:     store.NewUsers(pool),
			Logger:    log,
			Metrics:   metrics,
			RateLimit: cfg.RateLimit,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	diag := &http.Server{
		Addr:        *diagAddr,
		Handler:     server.NewDiagRouter(metrics, pool),
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range []*http.Server{api, diag} {
		srv := srv
		g.Go(func() error {
			log.Info("listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", srv.Addr, err)
			}

			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		return errors.Join(api.Shutdown(shutdownCtx), diag.Shutdown(shutdownCtx))
	})

	return g.Wait()
}
