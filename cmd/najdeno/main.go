package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/erazemk/najdeno/internal/api"
	"github.com/erazemk/najdeno/internal/config"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/items"
	"github.com/erazemk/najdeno/internal/store"
	"github.com/erazemk/najdeno/internal/upload"
	"github.com/erazemk/najdeno/internal/web"
)

// levelRouter is a logrus hook that routes INFO/WARN to stdout and ERROR+ to
// stderr. The logger's own output is discarded.
type levelRouter struct {
	stdout io.Writer
	stderr io.Writer
}

func (lr *levelRouter) Levels() []logrus.Level { return logrus.AllLevels }

func (lr *levelRouter) Fire(entry *logrus.Entry) error {
	line, err := entry.Logger.Formatter.Format(entry)
	if err != nil {
		return err
	}
	w := lr.stdout
	if entry.Level <= logrus.ErrorLevel {
		w = lr.stderr
	}
	_, err = w.Write(line)
	return err
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If logPath is non-empty, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func setupLogger(logPath, level string) (*logrus.Logger, func(), error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing log level: %w", err)
	}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	logger := logrus.New()
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	logger.SetOutput(io.Discard)
	logger.AddHook(&levelRouter{stdout: stdoutW, stderr: stderrW})
	return logger, cleanup, nil
}

// openBackend selects the storage backend once at startup. The returned
// closer releases the database handle, if any.
func openBackend(ctx context.Context, cfg *config.Config) (store.Backend, func(), error) {
	var (
		database *sql.DB
		dialect  db.Dialect
		err      error
	)

	switch cfg.Backend() {
	case config.StorageJSON:
		backend, err := store.NewJSONFile(cfg.DataFile)
		if err != nil {
			return nil, nil, err
		}
		return backend, func() {}, nil
	case "postgres":
		dialect = db.Postgres
		database, err = db.OpenPostgres(ctx, cfg.DatabaseURL)
	default:
		dialect = db.SQLite
		database, err = db.Open(cfg.DBPath)
	}
	if err != nil {
		return nil, nil, err
	}

	if err := db.Migrate(ctx, database, dialect); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("migrating database: %w", err)
	}
	return store.NewSQL(database, dialect), func() { database.Close() }, nil
}

// openSink selects where photos are stored.
func openSink(ctx context.Context, cfg *config.Config) (upload.Sink, error) {
	if cfg.RemoteUploads() {
		return upload.NewRemote(ctx, upload.RemoteConfig{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.S3PublicURL,
		})
	}
	return upload.NewDisk(cfg.UploadDir, cfg.MaxUploadBytes)
}

// newHandler wires the API, pages and (for the disk sink) uploaded files.
func newHandler(cfg *config.Config, repo *items.Repository, sink upload.Sink, logger logrus.FieldLogger) (http.Handler, error) {
	apiRouter := api.NewRouter(repo, sink, logger)
	webRouter, err := web.NewRouter(repo, sink, logger)
	if err != nil {
		return nil, fmt.Errorf("setting up web router: %w", err)
	}

	// Combine: API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	if disk, ok := sink.(*upload.Disk); ok {
		mux.Handle("GET "+upload.URLPrefix, disk.Handler())
	}
	mux.Handle("/", webRouter)

	return api.RequestID(api.LoggingMiddleware(logger)(api.CORS(cfg.CORSOrigins)(mux))), nil
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("najdeno", flag.ContinueOnError)

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "")

	fs.StringVar(&cfg.Storage, "storage", cfg.Storage, "")
	fs.StringVar(&cfg.Storage, "s", cfg.Storage, "")

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "")

	fs.StringVar(&cfg.DataFile, "data", cfg.DataFile, "")
	fs.StringVar(&cfg.UploadDir, "uploads", cfg.UploadDir, "")

	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: najdeno [flags]

Settings are read from the environment and an optional .env file; flags
override them.

Flags:
  -a, -addr <host:port>   listen address (default: :$PORT, :3000)
  -s, -storage <name>     sqlite or json, unless DATABASE_URL is set (default: sqlite)
  -d, -db <path>          SQLite database path (default: najdeno.sqlite3)
      -data <path>        JSON data file (default: items.json)
      -uploads <dir>      upload directory for the disk sink (default: uploads)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := setupLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	ctx := context.Background()

	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		logger.WithError(err).Error("failed to open storage")
		os.Exit(1)
	}
	defer closeBackend()
	logger.WithField("storage", backend.Name()).Info("storage ready")

	sink, err := openSink(ctx, cfg)
	if err != nil {
		logger.WithError(err).Error("failed to set up upload storage")
		os.Exit(1)
	}
	logger.WithField("uploads", sink.Name()).Info("upload storage ready")

	repo := items.NewRepository(backend, cfg.RequireImage)

	handler, err := newHandler(cfg, repo, sink, logger)
	if err != nil {
		logger.WithError(err).Error("failed to set up routes")
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		logger.WithField("signal", sig.String()).Info("shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.WithError(err).Error("server forced to shutdown")
		}
	}()

	logger.WithField("addr", cfg.Addr).Info("server started")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.WithError(err).Error("server error")
		os.Exit(1)
	}

	logger.Info("server stopped, closing storage")
}
