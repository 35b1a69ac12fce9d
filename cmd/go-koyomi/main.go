package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	_ "time/tzdata"

	"github.com/tartampluch/go-koyomi/internal/app"
	"github.com/tartampluch/go-koyomi/internal/calendar"
	"github.com/tartampluch/go-koyomi/internal/config"
	"github.com/tartampluch/go-koyomi/internal/engine"
	"github.com/tartampluch/go-koyomi/internal/history"
	"github.com/tartampluch/go-koyomi/internal/i18n"
	"github.com/tartampluch/go-koyomi/internal/server"
)

// main delegates to runMain so deferred calls run before os.Exit.
func main() {
	os.Exit(runMain(os.Args[1:]))
}

// runMain parses args, sets up logging and runs the service until a signal
// arrives. It returns the process exit code.
func runMain(args []string) int {
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	showVersion := fs.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := fs.Bool(config.FlagDebug, false, config.FlagDescDebug)
	envFile := fs.String(config.FlagEnv, "", config.FlagDescEnv)
	if err := fs.Parse(args); err != nil {
		return config.ExitCodeError
	}

	if *showVersion {
		printVersion(os.Stdout)
		return config.ExitCodeSuccess
	}

	logCloser := setupLogging(*debugMode)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close()
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	settings, err := config.Load(*envFile)
	if err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	if err := run(ctx, settings); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run wires the stores, the server and the sync worker, then blocks until
// the server stops.
func run(ctx context.Context, settings *config.Settings) error {
	clock := calendar.RealClock{}

	historyPath := settings.HistoryPath
	if settings.HistoryDriver == config.HistorySQLite && historyPath == "" {
		dir, err := appCacheDir()
		if err != nil {
			return err
		}
		historyPath = filepath.Join(dir, config.HistoryDBFile)
	}
	store, err := history.Open(ctx, settings.HistoryDriver, historyPath, settings.HistoryMax, clock)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	tr := i18n.New(config.DefaultLanguage)

	srv := server.New(server.Options{
		BindAddr:   settings.BindAddr,
		Port:       settings.Port,
		Clock:      clock,
		History:    store,
		Translator: tr,
	})

	worker := app.New(settings, srv, engine.NewHTTPFetcher(), tr)
	worker.Clock = clock
	go worker.Run(ctx)

	return srv.Start(ctx)
}

func printVersion(w io.Writer) {
	_, _ = fmt.Fprintf(w, config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging installs a JSON slog logger writing to stdout and, when
// possible, to a log file in the user cache directory.
func setupLogging(debugMode bool) io.Closer {
	writers := []io.Writer{os.Stdout}
	var logFile *os.File

	if dir, err := appCacheDir(); err == nil {
		logPath := filepath.Join(dir, config.LogFileName)
		// O_TRUNC resets the log on restart.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// appCacheDir returns the per-user application directory, creating it with
// owner-only permissions.
func appCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	dir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(dir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}
	return dir, nil
}
