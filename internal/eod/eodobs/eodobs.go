// Package eodobs wraps an EOD summarizer with tracing and logging so
// the summarizer itself stays free of observability concerns.
package eodobs

import (
	"context"
	"time"

	"kis-trading-bot/internal/interfaces"
	"kis-trading-bot/internal/logger"
	"kis-trading-bot/internal/trace"
)

type observed struct {
	inner interfaces.EodSummarizer
}

// Wrap decorates a summarizer with spans and logs around each call.
func Wrap(inner interfaces.EodSummarizer) interfaces.EodSummarizer {
	return &observed{inner: inner}
}

func (o *observed) SummarizeDay(t time.Time) (string, error) {
	ctx, span := trace.StartSpan(context.Background(), "eod.SummarizeDay")
	defer span.End()

	logger.DebugSkip(ctx, 1, "EOD summary starting", "day", t.Format("2006-01-02"))
	path, err := o.inner.SummarizeDay(t)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "EOD summary failed", err, "day", t.Format("2006-01-02"))
		return "", err
	}
	logger.InfoSkip(ctx, 1, "EOD summary written", "path", path)
	return path, nil
}

func (o *observed) SummarizeToday() (string, error) {
	ctx, span := trace.StartSpan(context.Background(), "eod.SummarizeToday")
	defer span.End()

	path, err := o.inner.SummarizeToday()
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "EOD summary failed", err)
		return "", err
	}
	logger.InfoSkip(ctx, 1, "EOD summary written", "path", path)
	return path, nil
}

func (o *observed) ShouldRunNow() (bool, string) {
	ok, reason := o.inner.ShouldRunNow()
	if !ok {
		logger.WarnSkip(context.Background(), 1, "EOD summary not due", "reason", reason)
	}
	return ok, reason
}
