package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"

	"github.com/secure-blog/blog"
	"github.com/secure-blog/blog/activitymap"
	"github.com/secure-blog/blog/config"
	"github.com/secure-blog/blog/middleware/metrics"
)

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("blogd"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	if err := run(context.Background(), lgr); err != nil {
		lgr.GetLogger("app").Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, lgr *glog.BaseLogger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Println("============")
	fmt.Println(print.MaybePrettyJSON(cfg.Redacted()))
	fmt.Println("============")

	logger := lgr.GetLogger("app")
	persistence := cfg.GetPersistence()

	db, err := blog.OpenDB(ctx, persistence.Driver, persistence.DSN, blog.PoolOptions{
		MaxOpenConns:    persistence.MaxOpenConns,
		MaxIdleConns:    persistence.MaxIdleConns,
		ConnMaxIdleTime: persistence.ConnMaxIdleTime,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("database connected", "driver", persistence.Driver)

	if persistence.Migrate {
		group, err := blog.Migrate(ctx, db)
		if err != nil {
			return err
		}
		if group.IsZero() {
			logger.Info("database schema up to date")
		} else {
			logger.Info("database migrated", "group", group.String())
		}
	}

	authCfg := cfg.GetAuth()
	repo := blog.NewRepositoryManager(db,
		blog.WithPasswordHasher(blog.NewBcryptHasher(authCfg.GetPasswordCost())),
	)
	repo.MustValidate()

	auther, err := blog.NewAuthenticator(repo, authCfg)
	if err != nil {
		return err
	}

	activity := activitymap.NewLogSink(lgr.GetLogger("activity"))
	auther.WithLogger(lgr.GetLogger("auth")).WithActivitySink(activity)

	server := cfg.GetServer()
	opts := blog.HTTPOptions{
		Name:            cfg.Name,
		Version:         cfg.Version,
		Environment:     cfg.Environment,
		CORSOrigins:     server.FrontendURL,
		RateLimitMax:    server.RateLimitMax,
		RateLimitWindow: server.RateLimitWindow,
		BodyLimit:       server.BodyLimit,
		Metrics:         metrics.New("blog"),
		Logger:          lgr.GetLogger("http"),
		ActivitySink:    activity,
	}
	if server.AccessLog {
		opts.AccessLog = os.Stdout
	}

	app := blog.NewHTTPApp(auther, repo, opts)

	errc := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", server.GetAddress(), "environment", cfg.Environment)
		errc <- app.Listen(server.GetAddress())
	}()

	select {
	case err := <-errc:
		return err
	case sig := <-waitExitSignal():
		logger.Info("shutting down", "signal", sig.String())
	}

	if err := app.ShutdownWithTimeout(server.ShutdownTimeout); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}

func waitExitSignal() <-chan os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return ch
}
