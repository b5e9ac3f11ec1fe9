// Package cmd implements the relay's command line surface (spec.md §6).
package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/relaycore/groupcast/internal/registry"
	"github.com/relaycore/groupcast/internal/relay"
	"github.com/relaycore/groupcast/internal/sweeper"
	"github.com/relaycore/groupcast/internal/transport"
)

var (
	verbosity int

	host               string
	port               int
	emptyTTLSeconds    int
	sweepSeconds       int
	heartbeatSeconds   int
	defaultCap         int
	maxGroupsPerClient int
	metricsAddress     string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:          "groupcast",
	Short:        "Runs the connectionless group-messaging relay.",
	Long:         "Runs the connectionless group-messaging relay: a UDP server that maintains ephemeral group membership and fans out payload datagrams to co-members of the sender's group.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		logger, zapLogger, err := createLogger(verbosity)
		if err != nil {
			return err
		}
		defer zapLogger.Sync() //nolint:errcheck

		logger.Info("Application startup")

		registerer := prometheus.DefaultRegisterer
		if err := registry.RegisterMetrics(registerer); err != nil {
			return err
		}
		if err := sweeper.RegisterMetrics(registerer); err != nil {
			return err
		}
		if err := transport.RegisterMetrics(registerer); err != nil {
			return err
		}
		if err := relay.RegisterMetrics(registerer); err != nil {
			return err
		}

		r := relay.New(
			relay.WithLogger(logger),
			relay.WithHost(net.JoinHostPort(host, strconv.Itoa(port))),
			relay.WithEmptyTTL(time.Duration(emptyTTLSeconds)*time.Second),
			relay.WithSweepInterval(time.Duration(sweepSeconds)*time.Second),
			relay.WithHeartbeatInterval(time.Duration(heartbeatSeconds)*time.Second),
			relay.WithDefaultCap(defaultCap),
			relay.WithMaxGroupsPerClient(maxGroupsPerClient),
		)
		if err := r.Startup(); err != nil {
			return err
		}

		var metricsServer *http.Server
		if metricsAddress != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			metricsServer = &http.Server{Addr: metricsAddress, Handler: mux}
			go func() {
				if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error(err, "Metrics server failed.")
				}
			}()
			logger.Info("Metrics server listening", "address", metricsAddress)
		}

		logger.Info("Application running", "host", host, "port", port)
		<-ctx.Done()

		logger.Info("Application shutdown")
		if metricsServer != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error(err, "Metrics server shutdown.")
			}
		}
		return r.Shutdown()
	},
}

func createLogger(verbosity int) (logr.Logger, *zap.Logger, error) {
	zapConfig := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapcore.Level(-verbosity)),
		Development: true,
		Encoding:    "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "T",
			LevelKey:       "L",
			NameKey:        "N",
			CallerKey:      zapcore.OmitKey,
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "M",
			StacktraceKey:  "S",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05"),
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	zapLogger, err := zapConfig.Build()
	if err != nil {
		return logr.Logger{}, nil, err
	}
	return zapr.NewLogger(zapLogger), zapLogger, nil
}

// Execute adds all child commands to the root command and sets flags appropriately. This is called by main.main().
// It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVarP(
		&verbosity,
		"verbosity",
		"v",
		0,
		"Sets the verbosity for log output. 0 reports info and error messages, while 1 and up report more detailed logs.",
	)
	rootCmd.Flags().StringVar(&host, "host", "0.0.0.0", "Bind address.")
	rootCmd.Flags().IntVar(&port, "port", 5000, "Bind port.")
	rootCmd.Flags().IntVar(&emptyTTLSeconds, "empty-ttl", 300, "Seconds before an empty group is reaped.")
	rootCmd.Flags().IntVar(&sweepSeconds, "sweep", 30, "Sweep interval in seconds.")
	rootCmd.Flags().IntVar(&heartbeatSeconds, "heartbeat", 60, "Advertised heartbeat seconds, used in PONG and the 3x inactivity rule.")
	rootCmd.Flags().IntVar(&defaultCap, "cap", 128, "Default per-group member cap.")
	rootCmd.Flags().IntVar(&maxGroupsPerClient, "max-groups-per-client", 3, "Maximum number of groups a single client may own.")
	rootCmd.Flags().StringVar(&metricsAddress, "metrics-addr", "", "If set, serve Prometheus metrics on this address (e.g. :9090).")
}
