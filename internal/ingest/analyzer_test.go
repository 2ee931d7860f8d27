package ingest

import (
	"context"
	"testing"

	"github.com/eargollo/stdfload/internal/stdfrec"
)

// TestAnalyzeCountsEnqueuedRecordTypes covers the histogram variant of the
// pipeline: it counts records by code and treats STD_EOF as success.
func TestAnalyzeCountsEnqueuedRecordTypes(t *testing.T) {
	raw := new(recordBuilder).
		rec(typFAR, subFAR, farPayload()).
		rec(typMIR, subMIR, mirPayload(1000, 1000)).
		rec(typPIR, subPIR, pirPayload(1, 1)).
		rec(typPTR, subPTR, ptrPayload(100, 1, 1, 0, 1.23, "")).
		rec(typPTR, subPTR, ptrPayload(101, 1, 1, 0, 4.56, "")).
		rec(typPRR, subPRR, prrPayload(1, 1, 0, 2, 1, 1, 5, 6, 10, "DUT1")).
		bytes()
	path := writeStdfFile(t, raw)

	hist, err := Analyze(context.Background(), path)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if got := hist[stdfrec.CodePTR]; got != 2 {
		t.Errorf("PTR count: got %d, want 2", got)
	}
	if got := hist[stdfrec.CodeMIR]; got != 1 {
		t.Errorf("MIR count: got %d, want 1", got)
	}
	if got := hist[stdfrec.CodePRR]; got != 1 {
		t.Errorf("PRR count: got %d, want 1", got)
	}
}

// TestAnalyzeEmptyFileTreatsEOFAsSuccess covers a file with only a FAR: analyzing
// it should not surface an error (EOF is expected, not a failure).
func TestAnalyzeEmptyFileTreatsEOFAsSuccess(t *testing.T) {
	raw := new(recordBuilder).rec(typFAR, subFAR, farPayload()).bytes()
	path := writeStdfFile(t, raw)

	hist, err := Analyze(context.Background(), path)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(hist) != 0 {
		t.Errorf("hist: got %d entries, want 0", len(hist))
	}
}
