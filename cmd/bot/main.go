package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"kis-trading-bot/internal/engine"
	"kis-trading-bot/internal/eod"
	"kis-trading-bot/internal/logger"
	"kis-trading-bot/internal/market"
	"kis-trading-bot/internal/news"
	"kis-trading-bot/internal/types"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: bot [flags] <command> [args]

Commands:
  execute <ticker> <BUY|SELL|HOLD> [qty] [limitPrice]
        Execute one decision. qty 0 auto-sizes, limitPrice 0 is market.
  decide <ticker>
        Run the decision pipeline for a ticker and execute its output.
  monitor
        Poll positions and apply stop-loss/take-profit rules.
  check [execute]
        One pass of the exit rules, printed and done. With "execute",
        triggered SELLs are placed.
  portfolio
        Print the account portfolio report.
  news <ticker>
        Print recent headlines for a ticker.
  candles <ticker> [days]
        Print daily OHLCV bars and indicators for a ticker.
  eod
        Write the end-of-day trade summary.

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sys, shutdown, err := initializeSystem(ctx, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}
	defer shutdown()

	if err := run(ctx, sys, flag.Args()); err != nil {
		logger.ErrorWithErr(ctx, "Command failed", err, "command", flag.Arg(0))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, sys *system, args []string) error {
	switch args[0] {
	case "execute":
		return runExecute(ctx, sys, args[1:])
	case "decide":
		return runDecide(ctx, sys, args[1:])
	case "monitor":
		return runMonitor(ctx, sys)
	case "check":
		return runCheck(ctx, sys, args[1:])
	case "portfolio":
		return runPortfolio(ctx, sys)
	case "news":
		return runNews(ctx, sys, args[1:])
	case "candles":
		return runCandles(ctx, args[1:])
	case "eod":
		return runEod(ctx, sys)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runExecute(ctx context.Context, sys *system, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("execute needs <ticker> <BUY|SELL|HOLD> [qty] [limitPrice]")
	}
	ticker, decision := args[0], args[1]

	qty, limitPrice := 0, 0
	var err error
	if len(args) > 2 {
		if qty, err = strconv.Atoi(args[2]); err != nil {
			return fmt.Errorf("invalid qty %q: %w", args[2], err)
		}
	}
	if len(args) > 3 {
		if limitPrice, err = strconv.Atoi(args[3]); err != nil {
			return fmt.Errorf("invalid limitPrice %q: %w", args[3], err)
		}
	}

	res, err := sys.executor.Execute(ctx, ticker, decision, qty, limitPrice)
	if err != nil {
		return err
	}
	if res.Status == types.StatusHold {
		fmt.Printf("%s: holding, no order placed\n", res.Ticker)
		return nil
	}
	fmt.Printf("%s: %s %d shares (order %s)\n", res.Ticker, res.Decision, res.Quantity, res.OrderNo)
	return nil
}

func runDecide(ctx context.Context, sys *system, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("decide needs <ticker>")
	}
	ticker := args[0]

	decision, err := sys.decider.Decide(ctx, ticker)
	if err != nil {
		return fmt.Errorf("decide %s: %w", ticker, err)
	}
	fmt.Printf("%s: %s (%s)\n", ticker, decision.Action, decision.Reason)

	res, err := sys.executor.Execute(ctx, ticker, decision.Action, decision.Qty, 0)
	if err != nil {
		return err
	}
	if res.Status == types.StatusHold {
		fmt.Printf("%s: holding, no order placed\n", res.Ticker)
		return nil
	}
	fmt.Printf("%s: %s %d shares (order %s)\n", res.Ticker, res.Decision, res.Quantity, res.OrderNo)
	return nil
}

func runMonitor(ctx context.Context, sys *system) error {
	mon := engine.NewMonitor(sys.broker, sys.executor, engine.MonitorConfig{
		Rules: engine.ExitRules{
			StopLossPct:   sys.cfg.Monitor.StopLossPct,
			TakeProfitPct: sys.cfg.Monitor.TakeProfitPct,
		},
		Interval:      sys.cfg.Monitor.Interval(),
		MaxIterations: sys.cfg.Monitor.MaxIterations,
		AutoExecute:   sys.cfg.Monitor.AutoExecute,
	})

	err := mon.Run(ctx, exitPrinter{sys: sys})
	if err == context.Canceled {
		return nil
	}
	return err
}

// exitPrinter reports triggered exits on stdout and to the trade log.
type exitPrinter struct {
	sys *system
}

func (p exitPrinter) OnExitDecisions(ctx context.Context, decisions []types.ExitDecision) {
	for _, d := range decisions {
		fmt.Printf("EXIT %s (%s): %s\n", d.Position.Ticker, d.Position.Name, d.Reason)
		if err := p.sys.tlog.AppendExit(d); err != nil {
			logger.ErrorWithErr(ctx, "Failed to log exit decision", err, "ticker", d.Position.Ticker)
		}
	}
}

func runCheck(ctx context.Context, sys *system, args []string) error {
	dryRun := !(len(args) > 0 && args[0] == "execute")

	mon := engine.NewMonitor(sys.broker, sys.executor, engine.MonitorConfig{
		Rules: engine.ExitRules{
			StopLossPct:   sys.cfg.Monitor.StopLossPct,
			TakeProfitPct: sys.cfg.Monitor.TakeProfitPct,
		},
	})
	decisions, err := mon.ExecuteExitRules(ctx, dryRun)
	if err != nil {
		return err
	}
	if len(decisions) == 0 {
		fmt.Println("No positions.")
		return nil
	}
	for _, d := range decisions {
		fmt.Printf("%-6s %s %s\n", d.Position.Ticker, d.Action, d.Reason)
	}
	return nil
}

func runPortfolio(ctx context.Context, sys *system) error {
	report, err := sys.broker.PortfolioSummary(ctx)
	if err != nil {
		return err
	}
	fmt.Println(report)
	return nil
}

func runNews(ctx context.Context, sys *system, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("news needs <ticker>")
	}

	svc := news.NewService(news.ServiceConfig{
		Enabled:        sys.cfg.News.Enabled,
		MaxArticles:    sys.cfg.News.MaxArticles,
		CacheDuration:  time.Duration(sys.cfg.News.CacheMinutes) * time.Minute,
		ScraperTimeout: time.Duration(sys.cfg.News.TimeoutSeconds) * time.Second,
	})
	articles, err := svc.Headlines(ctx, args[0])
	if err != nil {
		return err
	}
	if len(articles) == 0 {
		fmt.Println("No headlines.")
		return nil
	}
	for _, a := range articles {
		fmt.Printf("%s  %s (%s)\n", a.Date, a.Title, a.Source)
	}
	return nil
}

func runCandles(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("candles needs <ticker> [days]")
	}
	days := 30
	if len(args) > 1 {
		var err error
		if days, err = strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("invalid days %q: %w", args[1], err)
		}
	}

	candles, err := market.NewFetcher().DailyCandles(ctx, args[0], days)
	if err != nil {
		return err
	}
	for _, c := range candles {
		fmt.Printf("%s  O %.0f H %.0f L %.0f C %.0f V %.0f\n",
			time.Unix(c.Ts, 0).Format("2006-01-02"), c.Open, c.High, c.Low, c.Close, c.Vol)
	}
	ind := market.Indicators(candles)
	fmt.Printf("SMA5 %.1f  SMA20 %.1f  RSI %.1f  ATR %.1f\n",
		ind.SMA[5], ind.SMA[20], ind.RSI, ind.ATR)
	return nil
}

func runEod(ctx context.Context, sys *system) error {
	sum := eod.Default()
	if ok, reason := sum.ShouldRunNow(); !ok {
		return fmt.Errorf("eod summary skipped: %s", reason)
	}
	path, err := sum.SummarizeToday()
	if err != nil {
		return err
	}
	fmt.Printf("EOD summary written to %s\n", path)

	if err := sys.tlog.CompressOlder(sys.cfg.LogRetentionDays); err != nil {
		logger.Warn(ctx, "Trade log compression failed", "retention_days", sys.cfg.LogRetentionDays, "error", err)
	}
	return nil
}
