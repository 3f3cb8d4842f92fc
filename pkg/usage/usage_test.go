package usage

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/textailor/textailor/pkg/llm"
)

func TestCost(t *testing.T) {
	l := NewLog("", 3.0, 15.0)

	u := llm.Usage{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	if cost := l.Cost(u); math.Abs(cost-18.0) > 1e-9 {
		t.Errorf("Expected cost 18.0, got %v", cost)
	}

	u = llm.Usage{InputTokens: 500_000, OutputTokens: 100_000}
	if cost := l.Cost(u); math.Abs(cost-3.0) > 1e-9 {
		t.Errorf("Expected cost 3.0, got %v", cost)
	}

	if cost := l.Cost(llm.Usage{}); cost != 0 {
		t.Errorf("Expected zero cost for zero usage, got %v", cost)
	}
}

func TestRecordWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token_usage.csv")
	l := NewLog(path, 3.0, 15.0)

	err := l.Record("analyze", "Senior Engineer", llm.Usage{InputTokens: 1000, OutputTokens: 200})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	err = l.Record("customize", "Senior Engineer", llm.Usage{InputTokens: 2000, OutputTokens: 900})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d rows", len(rows))
	}

	if rows[0][0] != "timestamp" || rows[0][6] != "cost_estimate_usd" {
		t.Errorf("Unexpected header: %v", rows[0])
	}

	if rows[1][1] != "analyze" || rows[1][2] != "Senior Engineer" {
		t.Errorf("Unexpected first row: %v", rows[1])
	}

	if rows[1][3] != "1000" || rows[1][4] != "200" || rows[1][5] != "1200" {
		t.Errorf("Unexpected token columns: %v", rows[1])
	}

	if rows[1][6] != "0.006000" {
		t.Errorf("Expected cost 0.006000, got %s", rows[1][6])
	}

	if rows[2][1] != "customize" {
		t.Errorf("Unexpected second row: %v", rows[2])
	}
}

func TestRecordUnknownJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token_usage.csv")
	l := NewLog(path, 3.0, 15.0)

	err := l.Record("analyze", "", llm.Usage{InputTokens: 10, OutputTokens: 5})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	if rows[1][2] != "unknown" {
		t.Errorf("Expected job column 'unknown', got %q", rows[1][2])
	}
}

func TestRecordCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "token_usage.csv")
	l := NewLog(path, 3.0, 15.0)

	err := l.Record("analyze", "Engineer", llm.Usage{InputTokens: 1, OutputTokens: 1})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if _, err = os.Stat(path); err != nil {
		t.Errorf("Expected log file to exist: %v", err)
	}
}
