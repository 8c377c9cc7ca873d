package ticksource

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSourceLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticks.jsonl")
	content := `{"tick_index":-60,"liquidity_net":"100","liquidity_gross":"100"}

{"tick_index":0,"liquidity_net":"-50","liquidity_gross":"50"}
{"tick_index":60,"liquidity_net":"200","liquidity_gross":"200"}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	records, err := NewFileSource(path).Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records: got %d, want 3", len(records))
	}
	if records[0].TickIndex != -60 || records[0].LiquidityNet != "100" {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
}

func TestFileSourceLoadInvalidLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticks.jsonl")
	if err := os.WriteFile(path, []byte("{not json}\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := NewFileSource(path).Load(); err == nil {
		t.Fatalf("expected error for invalid line")
	}
}

func TestFileSourceLoadMissingFile(t *testing.T) {
	if _, err := NewFileSource(filepath.Join(t.TempDir(), "missing.jsonl")).Load(); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
