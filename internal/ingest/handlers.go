package ingest

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/eargollo/stdfload/internal/stdfrec"
)

// handleMir emits File_Info rows for the subset of MIR fields worth
// surfacing as run metadata. Single-character codes are only emitted when
// the byte is not ASCII space.
func (s *Summarizer) handleMir(raw []byte) error {
	m := stdfrec.DecodeMir(raw, s.needSwap)

	if err := s.putFileInfo("SETUP_T", formatEpoch(m.SetupT)); err != nil {
		return err
	}
	if err := s.putFileInfo("START_T", formatEpoch(m.StartT)); err != nil {
		return err
	}
	if err := s.putFileInfo("STAT_NUM", fmt.Sprintf("%d", m.StatNum)); err != nil {
		return err
	}
	for name, b := range map[string]byte{
		"MODE_COD": m.ModeCod, "RTST_COD": m.RtstCod,
		"PROT_COD": m.ProtCod, "CMOD_COD": m.CmodCod,
	} {
		if b != ' ' {
			if err := s.putFileInfo(name, string(b)); err != nil {
				return err
			}
		}
	}
	if m.BurnTim != 65535 {
		if err := s.putFileInfo("BURN_TIM", fmt.Sprintf("%d", m.BurnTim)); err != nil {
			return err
		}
	}
	return nil
}

// handleWcr formats the wafer-configuration scalars into File_Info.
func (s *Summarizer) handleWcr(raw []byte) error {
	w := stdfrec.DecodeWcr(raw, s.needSwap)

	rows := map[string]string{
		"WAFR_SIZ": fmt.Sprintf("%g", w.WafrSiz),
		"DIE_HT":   fmt.Sprintf("%g", w.DieHt),
		"DIE_WID":  fmt.Sprintf("%g", w.DieWid),
		"WF_UNITS": wfUnitsLabel(w.WfUnits),
		"CENTER_X": fmt.Sprintf("%d", w.CenterX),
		"CENTER_Y": fmt.Sprintf("%d", w.CenterY),
	}
	if w.WfFlat != ' ' {
		rows["WF_FLAT"] = string(w.WfFlat)
	}
	if w.PosX != ' ' {
		rows["POS_X"] = string(w.PosX)
	}
	if w.PosY != ' ' {
		rows["POS_Y"] = string(w.PosY)
	}
	for name, val := range rows {
		if err := s.putFileInfo(name, val); err != nil {
			return err
		}
	}
	return nil
}

// handleWir opens a new wafer and records head → wafer_index.
func (s *Summarizer) handleWir(raw []byte) error {
	w := stdfrec.DecodeWir(raw, s.needSwap)
	s.corr.waferIndex++
	idx := s.corr.waferIndex
	s.corr.headToWafer[w.HeadNum] = idx

	_, err := s.stmtInsertWafer.Exec(w.HeadNum, idx, nullIfEmpty(w.WaferID))
	return wrapSQL(err, "insert Wafer_Info")
}

// handleWrr finalizes the wafer row opened by the matching WIR.
func (s *Summarizer) handleWrr(raw []byte) error {
	w := stdfrec.DecodeWrr(raw, s.needSwap)
	idx, ok := s.corr.headToWafer[w.HeadNum]
	if !ok {
		return newErr(ErrMapMissing, fmt.Sprintf("WRR head %d has no WIR", w.HeadNum), nil)
	}

	_, err := s.stmtUpdateWafer.Exec(
		sentinel32(w.PartCnt), sentinel32(w.RtstCnt), sentinel32(w.AbrtCnt),
		sentinel32(w.GoodCnt), sentinel32(w.FuncCnt),
		nullIfEmpty(w.FabwfID), nullIfEmpty(w.FrameID), nullIfEmpty(w.MaskID),
		nullIfEmpty(w.UsrDesc), nullIfEmpty(w.ExcDesc), idx,
	)
	return wrapSQL(err, "update Wafer_Info")
}

// handlePmr retains the pin index → name mapping; nothing is persisted.
func (s *Summarizer) handlePmr(raw []byte) error {
	p := stdfrec.DecodePmr(raw, s.needSwap)
	name := p.PhyNam
	if name == "" {
		name = p.LogNam
	}
	s.corr.pinNames[p.PmrIndx] = name
	return nil
}

// handlePir opens a new DUT and records (head,site) → dut_index.
func (s *Summarizer) handlePir(raw []byte) error {
	p := stdfrec.DecodePir(raw, s.needSwap)
	s.corr.dutIndex++
	idx := s.corr.dutIndex
	s.corr.headSiteToDUT[headSiteKey(p.HeadNum, p.SiteNum)] = idx

	_, err := s.stmtInsertDut.Exec(p.HeadNum, p.SiteNum, idx)
	return wrapSQL(err, "insert Dut_Info")
}

// handlePrr finalizes the DUT row, infers a provisional bin pair, and
// bounds the WAL footprint with a commit.
func (s *Summarizer) handlePrr(raw []byte) error {
	p := stdfrec.DecodePrr(raw, s.needSwap)
	idx, ok := s.corr.headSiteToDUT[headSiteKey(p.HeadNum, p.SiteNum)]
	if !ok {
		return newErr(ErrMapMissing, fmt.Sprintf("PRR (head %d, site %d) has no PIR", p.HeadNum, p.SiteNum), nil)
	}
	waferIdx, hasWafer := s.corr.headToWafer[p.HeadNum]

	_, err := s.stmtUpdateDut.Exec(
		p.NumTest, p.TestT, nullIfEmpty(p.PartID),
		p.HardBin, p.SoftBin, p.PartFlg,
		nullableInt64(hasWafer, waferIdx),
		coordOrNull(p.XCoord), coordOrNull(p.YCoord),
		idx,
	)
	if err := wrapSQL(err, "update Dut_Info"); err != nil {
		return err
	}

	pf := partFlgPassFail(p.PartFlg)
	if err := s.upsertProvisionalBin("H", p.HardBin, pf); err != nil {
		return err
	}
	if err := s.upsertProvisionalBin("S", p.SoftBin, pf); err != nil {
		return err
	}

	if _, err := s.db.Exec("COMMIT"); err != nil {
		return wrapSQL(err, "commit after PRR")
	}
	if _, err := s.db.Exec("BEGIN"); err != nil {
		return wrapSQL(err, "begin after PRR commit")
	}
	return nil
}

// handleTR dispatches PTR/FTR/MPR through a single TR-family path: they
// share the Test_Offsets/Test_Info contract and differ only in which
// scalar fields get captured on first occurrence.
func (s *Summarizer) handleTR(code stdfrec.Code, fileOffset uint64, recLen int, raw []byte) error {
	var testNum uint32
	var head, site uint8
	var testTxt string
	var resScal, optFlag int8
	var loLimit, hiLimit float32
	var units string
	hasScale := false

	switch code {
	case stdfrec.CodePTR:
		p := stdfrec.DecodePtr(raw, s.needSwap)
		testNum, head, site, testTxt = p.TestNum, p.HeadNum, p.SiteNum, p.TestTxt
		resScal, loLimit, hiLimit, units = p.ResScal, p.LoLimit, p.HiLimit, p.Units
		optFlag = int8(p.OptFlag)
		hasScale = true
	case stdfrec.CodeMPR:
		m := stdfrec.DecodeMpr(raw, s.needSwap)
		testNum, head, site, testTxt = m.TestNum, m.HeadNum, m.SiteNum, m.TestTxt
		resScal, loLimit, hiLimit, units = m.ResScal, m.LoLimit, m.HiLimit, m.Units
		optFlag = int8(m.OptFlag)
		hasScale = true
	case stdfrec.CodeFTR:
		f := stdfrec.DecodeFtr(raw, s.needSwap)
		testNum, head, site, testTxt = f.TestNum, f.HeadNum, f.SiteNum, f.TestTxt
	}

	idx, ok := s.corr.headSiteToDUT[headSiteKey(head, site)]
	if !ok {
		return newErr(ErrMapMissing, fmt.Sprintf("%s (head %d, site %d) has no PIR", code.Name(), head, site), nil)
	}

	// fileOffset is the payload start (header already consumed by the
	// reader); recLen is the payload length alone. Seeking to Offset-4 and
	// reading BinaryLen+4 bytes reproduces the record including its header.
	if _, err := s.stmtUpsertOffset.Exec(idx, testNum, int64(fileOffset), recLen); err != nil {
		return wrapSQL(err, "upsert Test_Offsets")
	}

	if !s.corr.seenTestNums[testNum] {
		s.corr.seenTestNums[testNum] = true
		var args []any
		if hasScale {
			args = []any{testNum, int(code), testTxt, resScal, loLimit, hiLimit, units, optFlag}
		} else {
			args = []any{testNum, int(code), testTxt, 0, 0.0, 0.0, "", 0}
		}
		if _, err := s.stmtInsertTestInfo.Exec(args...); err != nil {
			return wrapSQL(err, "insert Test_Info")
		}
	}
	return nil
}

// handleHbr upserts an authoritative hard-bin row, overriding any
// PRR-inferred placeholder.
func (s *Summarizer) handleHbr(raw []byte) error {
	h := stdfrec.DecodeHbr(raw, s.needSwap)
	return s.upsertAuthoritativeBin("H", h.HbinNum, h.HbinNam, h.HbinPF)
}

// handleSbr upserts an authoritative soft-bin row.
func (s *Summarizer) handleSbr(raw []byte) error {
	sb := stdfrec.DecodeSbr(raw, s.needSwap)
	return s.upsertAuthoritativeBin("S", sb.SbinNum, sb.SbinNam, sb.SbinPF)
}

// handleTsr accumulates FAIL_CNT, ignoring the "not applicable" sentinel.
func (s *Summarizer) handleTsr(raw []byte) error {
	t := stdfrec.DecodeTsr(raw, s.needSwap)
	if t.FailCnt != 0xFFFFFFFF {
		s.corr.testFailCount[t.TestNum] += int64(t.FailCnt)
	}
	return nil
}

// handlePcr inserts one Dut_Counts row per (head,site).
func (s *Summarizer) handlePcr(raw []byte) error {
	p := stdfrec.DecodePcr(raw, s.needSwap)
	_, err := s.stmtInsertCounts.Exec(
		p.HeadNum, p.SiteNum,
		sentinel32(p.PartCnt), sentinel32(p.RtstCnt), sentinel32(p.AbrtCnt),
		sentinel32(p.GoodCnt), sentinel32(p.FuncCnt),
	)
	return wrapSQL(err, "insert Dut_Counts")
}

// --- shared helpers ---

func (s *Summarizer) putFileInfo(field, value string) error {
	_, err := s.stmtInsertFileInfo.Exec(field, value)
	return wrapSQL(err, "insert File_Info")
}

func (s *Summarizer) upsertProvisionalBin(binType string, num uint16, pf byte) error {
	_, err := s.stmtUpsertBinProvisional.Exec(binType, num, "MissingName", string(pf))
	return wrapSQL(err, "upsert provisional Bin_Info")
}

func (s *Summarizer) upsertAuthoritativeBin(binType string, num uint16, name string, pf byte) error {
	if name == "" {
		name = "MissingName"
	}
	if pf != 'P' && pf != 'F' {
		pf = 'U'
	}
	_, err := s.stmtUpsertBinAuthoritative.Exec(binType, num, name, string(pf))
	return wrapSQL(err, "upsert authoritative Bin_Info")
}

func partFlgPassFail(flg byte) byte {
	const mask = 0b00011000
	if flg&mask == 0 {
		return 'P'
	}
	if flg&0b00010000 == 0 {
		return 'F'
	}
	return 'U'
}

func wfUnitsLabel(u uint8) string {
	switch u {
	case 1:
		return "inch"
	case 2:
		return "cm"
	case 3:
		return "mm"
	default:
		return "mil"
	}
}

func formatEpoch(secs uint32) string {
	return time.Unix(int64(secs), 0).UTC().Format("2006-01-02 15:04:05 (UTC)")
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableInt64(valid bool, v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: valid}
}

func coordOrNull(v int16) sql.NullInt64 {
	if v == -32768 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(v), Valid: true}
}

// sentinel32 maps STDF's "missing count" value to -1.
func sentinel32(v uint32) int64 {
	if v == 0xFFFFFFFF {
		return -1
	}
	return int64(v)
}

func wrapSQL(err error, detail string) error {
	if err == nil {
		return nil
	}
	return newErr(ErrSQL, detail, err)
}
