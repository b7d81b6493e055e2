package tradelog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"kis-trading-bot/internal/types"
)

// kst is the Korea Standard Time zone all log timestamps and file
// rollovers use, regardless of host timezone.
var kst = time.FixedZone("KST", 9*60*60)

// Entry is one line in the daily JSONL trade log.
type Entry struct {
	Timestamp    string  `json:"ts"`
	Kind         string  `json:"kind"` // "fill" or "exit"
	Ticker       string  `json:"ticker"`
	Side         string  `json:"side,omitempty"`
	Quantity     int     `json:"qty,omitempty"`
	Price        int     `json:"price,omitempty"`
	CurrentPrice int     `json:"current_price,omitempty"`
	OrderNo      string  `json:"order_no,omitempty"`
	ProfitRate   float64 `json:"profit_rate,omitempty"`
	Reason       string  `json:"reason,omitempty"`
}

// Logger appends entries to one JSONL file per KST trading day.
type Logger struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

// New creates a trade log writing under dir. An empty dir falls back to
// the TRADER_LOG_DIR environment variable, then "logs".
func New(dir string) *Logger {
	if dir == "" {
		dir = os.Getenv("TRADER_LOG_DIR")
	}
	if dir == "" {
		dir = "logs"
	}
	return &Logger{dir: dir, now: time.Now}
}

func (l *Logger) pathFor(t time.Time) string {
	return filepath.Join(l.dir, fmt.Sprintf("trades-%s.jsonl", t.In(kst).Format("2006-01-02")))
}

// PathFor exposes the file a given day's entries land in.
func (l *Logger) PathFor(t time.Time) string {
	return l.pathFor(t)
}

func (l *Logger) append(e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e.Timestamp == "" {
		e.Timestamp = now.In(kst).Format(time.RFC3339)
	}

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("create trade log dir: %w", err)
	}
	f, err := os.OpenFile(l.pathFor(now), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open trade log: %w", err)
	}
	defer f.Close()

	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal trade log entry: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write trade log entry: %w", err)
	}
	return nil
}

// AppendFill records a completed order.
func (l *Logger) AppendFill(res types.ExecutionResult) error {
	return l.append(Entry{
		Kind:         "fill",
		Ticker:       res.Ticker,
		Side:         res.Decision,
		Quantity:     res.Quantity,
		Price:        res.Price,
		CurrentPrice: res.CurrentPrice,
		OrderNo:      res.OrderNo,
	})
}

// AppendExit records an exit-rule decision from the position monitor.
func (l *Logger) AppendExit(d types.ExitDecision) error {
	return l.append(Entry{
		Kind:       "exit",
		Ticker:     d.Position.Ticker,
		Side:       d.Action,
		Quantity:   d.Position.Quantity,
		ProfitRate: d.Position.ProfitRate,
		Reason:     d.Reason,
	})
}

// ReadDay returns all entries logged on the KST day of t.
func (l *Logger) ReadDay(t time.Time) ([]Entry, error) {
	data, err := os.ReadFile(l.pathFor(t))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue // skip torn lines
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// CompressOlder gzips log files older than the given number of KST
// days and removes the originals.
func (l *Logger) CompressOlder(days int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().In(kst).AddDate(0, 0, -days).Format("2006-01-02")

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, de := range entries {
		name := de.Name()
		if !strings.HasPrefix(name, "trades-") || !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		day := strings.TrimSuffix(strings.TrimPrefix(name, "trades-"), ".jsonl")
		if day >= cutoff {
			continue
		}
		if err := gzipFile(filepath.Join(l.dir, name)); err != nil {
			return fmt.Errorf("compress %s: %w", name, err)
		}
	}
	return nil
}

func gzipFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	gz := gzip.NewWriter(dst)
	if _, err := io.Copy(gz, src); err != nil {
		dst.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}
