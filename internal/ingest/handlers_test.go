package ingest

import (
	"testing"

	"github.com/eargollo/stdfload/internal/queue"
)

func newTestSummarizer(t *testing.T) (*Summarizer, func()) {
	t.Helper()
	db := mustOpenDB(t)
	q := queue.New[Message](16)
	s, err := NewSummarizer(db, q)
	if err != nil {
		t.Fatalf("NewSummarizer: %v", err)
	}
	return s, func() { _ = s.finalize() }
}

// TestTsrAccumulatesIgnoringSentinel covers P4: FAIL_CNT accumulates across
// TSRs for the same test number, ignoring the 0xFFFFFFFF "not applicable"
// sentinel.
func TestTsrAccumulatesIgnoringSentinel(t *testing.T) {
	s, done := newTestSummarizer(t)
	defer done()

	tsr := func(failCnt uint32) []byte {
		return concat(u1(1), u1(1), u1(0), u4le(100), u4le(0), u4le(failCnt), u4le(0), cn("test1"))
	}

	if err := s.handleTsr(tsr(3)); err != nil {
		t.Fatalf("handleTsr: %v", err)
	}
	if err := s.handleTsr(tsr(2)); err != nil {
		t.Fatalf("handleTsr: %v", err)
	}
	if err := s.handleTsr(tsr(0xFFFFFFFF)); err != nil {
		t.Fatalf("handleTsr: %v", err)
	}

	if got := s.corr.testFailCount[100]; got != 5 {
		t.Errorf("testFailCount[100]: got %d, want 5", got)
	}
}

// TestSbrUnknownPassFailBecomesU covers the HBR/SBR pass/fail validation
// rule: anything other than 'P' or 'F' normalizes to 'U'.
func TestSbrUnknownPassFailBecomesU(t *testing.T) {
	s, done := newTestSummarizer(t)
	defer done()

	if err := s.handleSbr(concat(u1(1), u1(1), u2le(5), u4le(10), u1('X'), cn("WEIRD"))); err != nil {
		t.Fatalf("handleSbr: %v", err)
	}

	var pf string
	if err := s.db.QueryRow(`SELECT BIN_PF FROM Bin_Info WHERE BIN_TYPE='S' AND BIN_NUM=5`).Scan(&pf); err != nil {
		t.Fatalf("query Bin_Info: %v", err)
	}
	if pf != "U" {
		t.Errorf("BIN_PF: got %q, want U", pf)
	}
}

// TestSbrMissingNameDefaultsToMissingName covers the "missing name" rule
// shared by HBR/SBR.
func TestSbrMissingNameDefaultsToMissingName(t *testing.T) {
	s, done := newTestSummarizer(t)
	defer done()

	if err := s.handleSbr(concat(u1(1), u1(1), u2le(5), u4le(10), u1('P'), cn(""))); err != nil {
		t.Fatalf("handleSbr: %v", err)
	}

	var name string
	if err := s.db.QueryRow(`SELECT BIN_NAME FROM Bin_Info WHERE BIN_TYPE='S' AND BIN_NUM=5`).Scan(&name); err != nil {
		t.Fatalf("query Bin_Info: %v", err)
	}
	if name != "MissingName" {
		t.Errorf("BIN_NAME: got %q, want MissingName", name)
	}
}

// TestWrrSentinelSubstitution covers B3: 0xFFFFFFFF counts store as -1.
func TestWrrSentinelSubstitution(t *testing.T) {
	s, done := newTestSummarizer(t)
	defer done()

	if err := s.handleWir(concat(u1(1), u1(0), u4le(1000), cn("W1"))); err != nil {
		t.Fatalf("handleWir: %v", err)
	}
	wrr := concat(u1(1), u1(0), u4le(2000),
		u4le(0xFFFFFFFF), u4le(0xFFFFFFFF), u4le(0xFFFFFFFF), u4le(0xFFFFFFFF), u4le(0xFFFFFFFF),
		cn("W1"), cn(""), cn(""), cn(""), cn(""), cn(""))
	if err := s.handleWrr(wrr); err != nil {
		t.Fatalf("handleWrr: %v", err)
	}

	var partCnt int64
	if err := s.db.QueryRow(`SELECT PART_CNT FROM Wafer_Info WHERE WaferIndex=1`).Scan(&partCnt); err != nil {
		t.Fatalf("query Wafer_Info: %v", err)
	}
	if partCnt != -1 {
		t.Errorf("PART_CNT: got %d, want -1", partCnt)
	}
}

// TestPtrSecondOccurrenceDoesNotOverwriteLimits covers B1: the first
// observation of a test number wins; later occurrences with omitted limits
// must not clobber it. Since the cache is keyed purely on test number
// (seenTestNums), a second PTR for the same test is a no-op on Test_Info.
func TestPtrSecondOccurrenceDoesNotOverwriteLimits(t *testing.T) {
	s, done := newTestSummarizer(t)
	defer done()

	if err := s.handlePir(pirPayload(1, 1)); err != nil {
		t.Fatalf("handlePir: %v", err)
	}

	first := ptrPayload(100, 1, 1, 0, 1.0, "first")
	if err := s.handleTR(3850 /* CodePTR */, 0, len(first), first); err != nil {
		t.Fatalf("handleTR first: %v", err)
	}

	second := ptrPayload(100, 1, 1, 0, 2.0, "second")
	if err := s.handleTR(3850, 100, len(second), second); err != nil {
		t.Fatalf("handleTR second: %v", err)
	}

	var testTxt string
	if err := s.db.QueryRow(`SELECT TEST_NAME FROM Test_Info WHERE TEST_NUM=100`).Scan(&testTxt); err != nil {
		t.Fatalf("query Test_Info: %v", err)
	}
	if testTxt != "first" {
		t.Errorf("TEST_NAME: got %q, want %q (first occurrence must win)", testTxt, "first")
	}
}
