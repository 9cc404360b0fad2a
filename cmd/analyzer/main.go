package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"stockanalyzer/internal/analyzer"
	"stockanalyzer/internal/collector"
	"stockanalyzer/internal/config"
	"stockanalyzer/internal/prompt"
	"stockanalyzer/internal/recorder"
	"stockanalyzer/internal/report"
	"stockanalyzer/internal/schedule"
)

func init() {
	// Optional; real deployments pass environment variables directly.
	_ = godotenv.Load()
}

func main() {
	var (
		period     string
		outputDir  string
		noPlots    bool
		configPath string
		cronSpec   string
	)
	flag.StringVar(&period, "period", "", "history period (1d 5d 1mo 3mo 6mo 1y 2y 5y 10y ytd max)")
	flag.StringVar(&period, "p", "", "shorthand for --period")
	flag.StringVar(&outputDir, "output", "", "output directory for results")
	flag.StringVar(&outputDir, "o", "", "shorthand for --output")
	flag.BoolVar(&noPlots, "no-plots", false, "skip candlestick chart generation")
	flag.StringVar(&configPath, "config", "config.json", "path to config file")
	flag.StringVar(&cronSpec, "schedule", "", "cron expression (with seconds) to re-run the batch unattended")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if noPlots {
		cfg.GeneratePlots = false
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	setupLogger(cfg.LogLevel)

	fmt.Print(report.Banner())

	tickers := flag.Args()
	for i, t := range tickers {
		tickers[i] = strings.ToUpper(t)
	}

	p := prompt.New(os.Stdin, os.Stdout)
	interactive := len(tickers) == 0

	if cronSpec == "" {
		types, err := p.SelectDataTypes()
		if err != nil {
			exitOnPromptErr(err)
		}
		cfg.DataTypes = types
	}

	if interactive {
		if cronSpec != "" {
			log.Fatal().Msg("--schedule requires tickers on the command line")
		}
		tickers, err = p.AskTickers()
		if err != nil {
			exitOnPromptErr(err)
		}
		if len(tickers) == 0 {
			log.Fatal().Msg("no tickers entered")
		}
		if period == "" {
			period, err = p.AskPeriod(cfg.DefaultPeriod)
			if err != nil {
				exitOnPromptErr(err)
			}
		}
		if outputDir == "" {
			outputDir, err = p.AskOutputDir(cfg.OutputDirectory)
			if err != nil {
				exitOnPromptErr(err)
			}
		}
	}
	if period == "" {
		period = cfg.DefaultPeriod
	}
	if !config.ValidPeriod(period) {
		log.Fatal().Str("period", period).Msg("invalid period")
	}
	if outputDir == "" {
		outputDir = cfg.OutputDirectory
	}

	provider := collector.NewYahooProvider(cfg.Proxy)

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.HistoryDB != "" {
		sqlRec, err := recorder.NewSQLiteRecorder(cfg.HistoryDB)
		if err != nil {
			log.Warn().Err(err).Msg("run history disabled")
		} else {
			rec = sqlRec
		}
	}
	defer rec.Close()

	a := analyzer.New(provider, cfg, rec, os.Stdout)

	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
		defer cancel()

		fmt.Print(report.BatchStart(len(tickers)))
		res := a.Run(ctx, tickers, period, outputDir)
		log.Info().Int("succeeded", res.Succeeded).Int("failed", res.Failed).Msg("batch finished")
		fmt.Print(report.Completion(outputDir))
	}

	run()

	if cronSpec != "" {
		sched, err := schedule.New(cronSpec, run)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid schedule")
		}
		sched.Start()
		defer sched.Stop()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutting down")
	}
}

func setupLogger(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func exitOnPromptErr(err error) {
	if err == prompt.ErrExit {
		os.Exit(0)
	}
	log.Fatal().Err(err).Msg("read input")
}
