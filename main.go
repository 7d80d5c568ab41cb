package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/u16-io/FindPangram/config"
	"github.com/u16-io/FindPangram/db"
	"github.com/u16-io/FindPangram/handler"
	"github.com/u16-io/FindPangram/service"
	"github.com/u16-io/FindPangram/syllable"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath string
	verbose    bool
	addr       string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "findpangram",
	Short: "Pangram haiku web form",
	Long: `findpangram serves a small web form for three-line pangram haiku.
Each submission must use every letter of the alphabet and follow the
5-7-5 syllable pattern before it is stored.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	RunE:  runServe,
}

var checkCmd = &cobra.Command{
	Use:   "check <line1> <line2> <line3>",
	Short: "Validate three lines without storing them",
	Args:  cobra.ExactArgs(3),
	RunE:  runCheck,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the TOML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")

	rootCmd.AddCommand(serveCmd, checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newCounter builds the syllable counter, memoised when a cache dir is set.
// The returned func releases the cache.
func newCounter() (syllable.Counter, func(), error) {
	conf := config.GetConf()
	client := syllable.NewClient(conf.WordsAPI.URL, conf.WordsAPI.Key, conf.WordsAPI.Host,
		conf.WordsAPI.Timeout.Duration, logger)
	if conf.SyllableCache.Dir == "" {
		return client, func() {}, nil
	}
	cached, err := syllable.NewCachedCounter(client, conf.SyllableCache.Dir, conf.SyllableCache.TTL.Duration, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Syllable cache enabled", zap.String("dir", conf.SyllableCache.Dir))
	return cached, cached.Close, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if _, err := config.Load(configPath, logger); err != nil {
		return err
	}
	conf := config.GetConf()
	if err := conf.RequireDatabase(); err != nil {
		return err
	}
	if addr != "" {
		conf.Server.Addr = addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.Open(ctx, conf.Database.URL, conf.Database.Mongo, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	counter, closeCounter, err := newCounter()
	if err != nil {
		return err
	}
	defer closeCounter()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := service.New(store, counter, logger, reg)
	srv := &http.Server{
		Addr:              conf.Server.Addr,
		Handler:           handler.New(svc, logger).Routes(reg, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// errRejected makes check exit non-zero after printing the reasons.
var errRejected = errors.New("pangram rejected")

func runCheck(cmd *cobra.Command, args []string) error {
	if _, err := config.Load(configPath, logger); err != nil {
		return err
	}

	counter, closeCounter, err := newCounter()
	if err != nil {
		return err
	}
	defer closeCounter()

	svc := service.New(nil, counter, logger, nil)
	err = svc.Check(cmd.Context(), args[0], args[1], args[2])
	out := cmd.OutOrStdout()
	if ve, ok := service.IsValidationError(err); ok {
		for _, msg := range ve.Messages {
			fmt.Fprintln(out, msg)
		}
		return errRejected
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "OK")
	return nil
}
