package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"olistdw/internal/config"
	"olistdw/internal/metrics"
	"olistdw/internal/metrics/prompush"
	"olistdw/internal/pipeline"
)

// main is the entry point for the pipeline binary. It loads the run config,
// optionally initializes a metrics backend, and executes the batch run.
func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/pipeline.yaml", "pipeline config path")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, none; overrides config)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides config)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatalf("load config: %v", err)
	}

	// Validate pipeline config.
	issues := config.ValidatePipeline(cfg)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		fatalf("configuration is invalid: %v", cfgPath)
	}

	// If validate flag is set, only validate the configuration and exit
	if validate {
		fmt.Printf("configuration is valid: %v\n", cfgPath)
		os.Exit(0)
	}

	log, err := buildLogger(cfg.Log, *verbose)
	if err != nil {
		fatalf("logger: %v", err)
	}
	defer log.Sync()

	// Decide metrics backend: flag → config → disabled.
	backendName := metricsBackendFlg
	if backendName == "" {
		backendName = cfg.Metrics.Backend
	}
	switch backendName {
	case "pushgateway":
		gwURL := pushGatewayURLFlg
		if gwURL == "" {
			gwURL = cfg.Metrics.PushgatewayURL
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}

		b, err := prompush.NewBackend(cfg.Job, gwURL)
		if err != nil {
			log.Warn("metrics backend init failed, using nop", zap.Error(err))
		} else {
			log.Info("metrics enabled", zap.String("backend", backendName), zap.String("url", gwURL), zap.String("job", cfg.Job))
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Warn("metrics flush", zap.Error(err))
				}
			}()
		}

	case "", "none":
		// metrics disabled; nop backend remains

	default:
		log.Warn("unknown metrics backend, metrics disabled", zap.String("backend", backendName))
	}

	ctx := context.Background()
	start := time.Now()

	runner := pipeline.NewRunner(cfg.Job, log)
	if err := runner.Run(ctx, pipeline.Stages(cfg, log)); err != nil {
		log.Error("pipeline failed", zap.Error(err))
		os.Exit(1)
	}

	log.Info("pipeline completed", zap.Duration("elapsed", time.Since(start).Truncate(time.Millisecond)))
}

func buildLogger(cfg config.Log, verbose bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(cfg.Level); err != nil {
			return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
		}
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	var zcfg zap.Config
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
