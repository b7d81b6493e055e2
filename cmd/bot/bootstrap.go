package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"kis-trading-bot/internal/broker/brokerobs"
	"kis-trading-bot/internal/broker/kis"
	"kis-trading-bot/internal/engine"
	"kis-trading-bot/internal/eod"
	"kis-trading-bot/internal/eod/eodobs"
	"kis-trading-bot/internal/interfaces"
	"kis-trading-bot/internal/llm/noop"
	"kis-trading-bot/internal/logger"
	"kis-trading-bot/internal/store"
	"kis-trading-bot/internal/trace"
	"kis-trading-bot/internal/tradelog"
)

// system holds everything a subcommand needs.
type system struct {
	cfg      *store.Config
	broker   interfaces.Broker
	executor *engine.Executor
	decider  interfaces.Decider
	tlog     *tradelog.Logger
}

// initializeSystem wires config, credentials, broker, and executor.
// Call shutdown when done.
func initializeSystem(ctx context.Context, configPath string) (*system, func(), error) {
	// A missing .env is fine; real deployments export the variables.
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		return nil, nil, fmt.Errorf("init tracing: %w", err)
	}

	cfg, err := store.LoadOrDefault(configPath)
	if err != nil {
		return nil, nil, err
	}

	mode, err := kis.ParseMode(cfg.Mode)
	if err != nil {
		return nil, nil, err
	}

	creds, err := credentialsFromEnv(mode)
	if err != nil {
		return nil, nil, err
	}

	client, err := kis.NewClient(creds, mode, kis.WithRequestTimeout(cfg.RequestTimeout()))
	if err != nil {
		return nil, nil, err
	}
	brk := brokerobs.Wrap(client)

	tlog := tradelog.New("")
	exec := engine.NewExecutor(brk,
		engine.WithMaxAutoBuyQty(cfg.MaxAutoBuyQty),
		engine.WithTradeLog(tlog),
	)
	eod.SetDefault(eodobs.Wrap(eod.NewSummarizer(tlog, "")))

	logger.Info(ctx, "System initialized", "mode", string(mode), "tracing", trace.Enabled())

	shutdown := func() {
		_ = trace.Shutdown(context.Background())
		_ = logger.Sync()
	}
	return &system{
		cfg:      cfg,
		broker:   brk,
		executor: exec,
		decider:  noop.New(),
		tlog:     tlog,
	}, shutdown, nil
}

// credentialsFromEnv reads the per-environment credential set. Paper
// and live keys live under different names so a paper run can never
// pick up live credentials by accident.
func credentialsFromEnv(mode kis.Mode) (kis.Credentials, error) {
	suffix := "_PAPER"
	if mode == kis.ModeLive {
		suffix = "_LIVE"
	}

	appKey := os.Getenv("KIS_APP_KEY" + suffix)
	appSecret := os.Getenv("KIS_APP_SECRET" + suffix)
	account := os.Getenv("KIS_ACCOUNT" + suffix)
	if appKey == "" || appSecret == "" || account == "" {
		return kis.Credentials{}, fmt.Errorf(
			"missing credentials: set KIS_APP_KEY%s, KIS_APP_SECRET%s, KIS_ACCOUNT%s",
			suffix, suffix, suffix)
	}

	prefix, acctSuffix, err := kis.ParseAccount(account)
	if err != nil {
		return kis.Credentials{}, err
	}
	return kis.Credentials{
		AppKey:        appKey,
		AppSecret:     appSecret,
		AccountPrefix: prefix,
		AccountSuffix: acctSuffix,
	}, nil
}
