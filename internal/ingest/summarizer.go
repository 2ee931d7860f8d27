package ingest

import (
	"context"
	"database/sql"

	"github.com/eargollo/stdfload/internal/byteorder"
	"github.com/eargollo/stdfload/internal/queue"
	"github.com/eargollo/stdfload/internal/stdfrec"
)

// Summarizer drains the queue fed by the reader, dispatches each PARSE
// message by record code, and maintains the ingestion-lifetime correlation
// state. It owns the single SQL transaction for the whole load (interrupted
// only by the PRR-delimited commit points).
type Summarizer struct {
	db       *sql.DB
	q        *queue.Queue[Message]
	corr     *correlation
	needSwap bool

	stmtInsertFileInfo        *sql.Stmt
	stmtInsertWafer           *sql.Stmt
	stmtUpdateWafer           *sql.Stmt
	stmtInsertDut             *sql.Stmt
	stmtUpdateDut             *sql.Stmt
	stmtInsertCounts          *sql.Stmt
	stmtInsertTestInfo        *sql.Stmt
	stmtUpsertOffset          *sql.Stmt
	stmtUpsertBinProvisional  *sql.Stmt
	stmtUpsertBinAuthoritative *sql.Stmt
}

// NewSummarizer prepares every statement the dispatch table needs and opens
// the ingestion-wide transaction. Run calls finalize once the queue is
// drained; a caller that does not call Run must call finalize itself,
// exactly once.
func NewSummarizer(db *sql.DB, q *queue.Queue[Message]) (*Summarizer, error) {
	s := &Summarizer{db: db, q: q, corr: newCorrelation()}

	if _, err := db.Exec("BEGIN"); err != nil {
		return nil, wrapSQL(err, "begin ingestion transaction")
	}

	stmts := []struct {
		dst  **sql.Stmt
		text string
	}{
		{&s.stmtInsertFileInfo, `INSERT INTO File_Info (Field, Value) VALUES (?, ?)`},
		{&s.stmtInsertWafer, `INSERT INTO Wafer_Info (HEAD_NUM, WaferIndex, WAFER_ID) VALUES (?, ?, ?)`},
		{&s.stmtUpdateWafer, `UPDATE Wafer_Info SET PART_CNT=?, RTST_CNT=?, ABRT_CNT=?, GOOD_CNT=?, FUNC_CNT=?,
			FABWF_ID=?, FRAME_ID=?, MASK_ID=?, USR_DESC=?, EXC_DESC=? WHERE WaferIndex=?`},
		{&s.stmtInsertDut, `INSERT INTO Dut_Info (HEAD_NUM, SITE_NUM, DUTIndex) VALUES (?, ?, ?)`},
		{&s.stmtUpdateDut, `UPDATE Dut_Info SET TestCount=?, TestTime=?, PartID=?, HBIN=?, SBIN=?, Flag=?,
			WaferIndex=?, XCOORD=?, YCOORD=? WHERE DUTIndex=?`},
		{&s.stmtInsertCounts, `INSERT INTO Dut_Counts (HEAD_NUM, SITE_NUM, PART_CNT, RTST_CNT, ABRT_CNT, GOOD_CNT, FUNC_CNT)
			VALUES (?, ?, ?, ?, ?, ?, ?)`},
		{&s.stmtInsertTestInfo, `INSERT INTO Test_Info (TEST_NUM, recHeader, TEST_NAME, RES_SCAL, LLimit, HLimit, Unit, OPT_FLAG, FailCount)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, -1)`},
		{&s.stmtUpsertOffset, `INSERT INTO Test_Offsets (DUTIndex, TEST_NUM, Offset, BinaryLen) VALUES (?, ?, ?, ?)
			ON CONFLICT(DUTIndex, TEST_NUM) DO UPDATE SET Offset=excluded.Offset, BinaryLen=excluded.BinaryLen`},
		{&s.stmtUpsertBinProvisional, `INSERT INTO Bin_Info (BIN_TYPE, BIN_NUM, BIN_NAME, BIN_PF) VALUES (?, ?, ?, ?)
			ON CONFLICT(BIN_TYPE, BIN_NUM) DO NOTHING`},
		{&s.stmtUpsertBinAuthoritative, `INSERT INTO Bin_Info (BIN_TYPE, BIN_NUM, BIN_NAME, BIN_PF) VALUES (?, ?, ?, ?)
			ON CONFLICT(BIN_TYPE, BIN_NUM) DO UPDATE SET BIN_NAME=excluded.BIN_NAME, BIN_PF=excluded.BIN_PF`},
	}
	for _, st := range stmts {
		prepared, err := db.Prepare(st.text)
		if err != nil {
			s.closeStatements()
			return nil, wrapSQL(err, "prepare statement")
		}
		*st.dst = prepared
	}

	return s, nil
}

func (s *Summarizer) closeStatements() {
	for _, st := range []*sql.Stmt{
		s.stmtInsertFileInfo, s.stmtInsertWafer, s.stmtUpdateWafer,
		s.stmtInsertDut, s.stmtUpdateDut, s.stmtInsertCounts,
		s.stmtInsertTestInfo, s.stmtUpsertOffset,
		s.stmtUpsertBinProvisional, s.stmtUpsertBinAuthoritative,
	} {
		if st != nil {
			st.Close()
		}
	}
}

// Run drains the queue until FINISH, dispatching each PARSE message by
// record code. It short-circuits on the first handler error (swallowing
// STD_EOF, which is expected end-of-file, not a failure) and always runs
// finalize.
func (s *Summarizer) Run(ctx context.Context) error {
	var firstErr error

	for {
		msg, ok, err := s.q.Pop(ctx)
		if err != nil {
			firstErr = newErr(ErrOSFail, "queue pop", err)
			break
		}
		if !ok {
			break
		}

		switch msg.Op {
		case OpSetEndian:
			s.needSwap = msg.NeedSwap
			if err := s.putFileInfo("BYTE_ORD", byteorder.HumanReadable(s.needSwap)); err != nil && firstErr == nil {
				firstErr = err
			}

		case OpFinish:
			if msg.Err != nil && !IsEOF(msg.Err) {
				firstErr = msg.Err
			}

		case OpParse:
			if firstErr != nil {
				continue // drain remaining messages without doing more work
			}
			if err := s.dispatch(msg); err != nil {
				firstErr = err
			}
		}
	}

	if finErr := s.finalize(); finErr != nil && firstErr == nil {
		firstErr = finErr
	}
	return firstErr
}

func (s *Summarizer) dispatch(msg Message) error {
	recLen := len(msg.RawBytes)
	switch msg.RecordCode {
	case stdfrec.CodePTR, stdfrec.CodeMPR, stdfrec.CodeFTR:
		return s.handleTR(msg.RecordCode, msg.FileOffset, recLen, msg.RawBytes)
	case stdfrec.CodePIR:
		return s.handlePir(msg.RawBytes)
	case stdfrec.CodePRR:
		return s.handlePrr(msg.RawBytes)
	case stdfrec.CodeWIR:
		return s.handleWir(msg.RawBytes)
	case stdfrec.CodeWRR:
		return s.handleWrr(msg.RawBytes)
	case stdfrec.CodeHBR:
		return s.handleHbr(msg.RawBytes)
	case stdfrec.CodeSBR:
		return s.handleSbr(msg.RawBytes)
	case stdfrec.CodeMIR:
		return s.handleMir(msg.RawBytes)
	case stdfrec.CodeWCR:
		return s.handleWcr(msg.RawBytes)
	case stdfrec.CodePCR:
		return s.handlePcr(msg.RawBytes)
	case stdfrec.CodeTSR:
		return s.handleTsr(msg.RawBytes)
	case stdfrec.CodePMR:
		return s.handlePmr(msg.RawBytes)
	default:
		return nil
	}
}

// finalize flushes accumulated TSR fail counts into Test_Info, builds the
// post-ingest DUT lookup index, finalizes every prepared statement, and
// commits the final transaction segment. It always runs, even on an error
// path, so the database is left consistent up to the last committed PRR.
func (s *Summarizer) finalize() error {
	for testNum, count := range s.corr.testFailCount {
		if _, err := s.db.Exec(`UPDATE Test_Info SET FailCount=? WHERE TEST_NUM=?`, count, testNum); err != nil {
			s.closeStatements()
			return wrapSQL(err, "flush test fail counts")
		}
	}

	s.closeStatements()

	if _, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS dutKey ON Dut_Info(HEAD_NUM, SITE_NUM)`); err != nil {
		return wrapSQL(err, "create dutKey index")
	}
	if _, err := s.db.Exec("COMMIT"); err != nil {
		return wrapSQL(err, "final commit")
	}
	return nil
}
