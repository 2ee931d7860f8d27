package stdfrec

// Far is the decoded File Attributes Record.
type Far struct {
	CPUType uint8
	STDFVer uint8
}

// Mir is the decoded Master Information Record, trimmed to the fields the
// summarizer's MIR handler consumes.
type Mir struct {
	SetupT  uint32
	StartT  uint32
	StatNum uint8
	ModeCod byte
	RtstCod byte
	ProtCod byte
	BurnTim uint16
	CmodCod byte
}

// Wcr is the decoded Wafer Configuration Record.
type Wcr struct {
	WafrSiz float32
	DieHt   float32
	DieWid  float32
	WfUnits uint8
	WfFlat  byte
	CenterX int16
	CenterY int16
	PosX    byte
	PosY    byte
}

// Wir is the decoded Wafer Information Record.
type Wir struct {
	HeadNum uint8
	SiteGrp uint8
	StartT  uint32
	WaferID string
}

// Wrr is the decoded Wafer Results Record.
type Wrr struct {
	HeadNum  uint8
	SiteGrp  uint8
	FinishT  uint32
	PartCnt  uint32
	RtstCnt  uint32
	AbrtCnt  uint32
	GoodCnt  uint32
	FuncCnt  uint32
	WaferID  string
	FabwfID  string
	FrameID  string
	MaskID   string
	UsrDesc  string
	ExcDesc  string
}

// Pmr is the decoded Pin Map Record — kept only for pin-index to name
// lookups, never persisted to the database.
type Pmr struct {
	PmrIndx uint16
	ChanTyp uint16
	ChanNam string
	PhyNam  string
	LogNam  string
}

// Pir is the decoded Part Information Record.
type Pir struct {
	HeadNum uint8
	SiteNum uint8
}

// Prr is the decoded Part Results Record.
type Prr struct {
	HeadNum  uint8
	SiteNum  uint8
	PartFlg  byte
	NumTest  uint16
	HardBin  uint16
	SoftBin  uint16
	XCoord   int16
	YCoord   int16
	TestT    uint32
	PartID   string
}

// Hbr is the decoded Hardware Bin Record.
type Hbr struct {
	HeadNum uint8
	SiteNum uint8
	HbinNum uint16
	HbinCnt uint32
	HbinPF  byte
	HbinNam string
}

// Sbr is the decoded Software Bin Record.
type Sbr struct {
	HeadNum uint8
	SiteNum uint8
	SbinNum uint16
	SbinCnt uint32
	SbinPF  byte
	SbinNam string
}

// Tsr is the decoded Test Synopsis Record.
type Tsr struct {
	HeadNum uint8
	SiteNum uint8
	TestTyp byte
	TestNum uint32
	ExecCnt uint32
	FailCnt uint32
	AlrmCnt uint32
	TestNam string
}

// Pcr is the decoded Part Count Record.
type Pcr struct {
	HeadNum uint8
	SiteNum uint8
	PartCnt uint32
	RtstCnt uint32
	AbrtCnt uint32
	GoodCnt uint32
	FuncCnt uint32
}

// Ptr is the decoded Parametric Test Record, trimmed to the fields used by
// the summarizer's TR-family handler and by the parametric reader.
type Ptr struct {
	TestNum uint32
	HeadNum uint8
	SiteNum uint8
	TestFlg byte
	Result  float32
	TestTxt string
	OptFlag byte
	ResScal int8
	LoLimit float32
	HiLimit float32
	Units   string
}

// Mpr is the decoded Multiple-Result Parametric Record.
type Mpr struct {
	TestNum uint32
	HeadNum uint8
	SiteNum uint8
	TestFlg byte
	TestTxt string
	OptFlag byte
	ResScal int8
	LoLimit float32
	HiLimit float32
	Units   string
}

// Ftr is the decoded Functional Test Record.
type Ftr struct {
	TestNum uint32
	HeadNum uint8
	SiteNum uint8
	TestFlg byte
	TestTxt string
}

// DecodeFar decodes an FAR payload.
func DecodeFar(raw []byte, needSwap bool) Far {
	c := NewCursor(raw, needSwap)
	return Far{CPUType: c.U1(), STDFVer: c.U1()}
}

// DecodeMir decodes an MIR payload, stopping after CMOD_COD — every field
// the MIR handler needs.
func DecodeMir(raw []byte, needSwap bool) Mir {
	c := NewCursor(raw, needSwap)
	return Mir{
		SetupT:  c.U4(),
		StartT:  c.U4(),
		StatNum: c.U1(),
		ModeCod: c.B1(),
		RtstCod: c.B1(),
		ProtCod: c.B1(),
		BurnTim: c.U2(),
		CmodCod: c.B1(),
	}
}

// DecodeWcr decodes a WCR payload.
func DecodeWcr(raw []byte, needSwap bool) Wcr {
	c := NewCursor(raw, needSwap)
	return Wcr{
		WafrSiz: c.R4(),
		DieHt:   c.R4(),
		DieWid:  c.R4(),
		WfUnits: c.U1(),
		WfFlat:  c.B1(),
		CenterX: c.I2(),
		CenterY: c.I2(),
		PosX:    c.B1(),
		PosY:    c.B1(),
	}
}

// DecodeWir decodes a WIR payload.
func DecodeWir(raw []byte, needSwap bool) Wir {
	c := NewCursor(raw, needSwap)
	return Wir{
		HeadNum: c.U1(),
		SiteGrp: c.U1(),
		StartT:  c.U4(),
		WaferID: c.Cn(),
	}
}

// DecodeWrr decodes a WRR payload.
func DecodeWrr(raw []byte, needSwap bool) Wrr {
	c := NewCursor(raw, needSwap)
	return Wrr{
		HeadNum: c.U1(),
		SiteGrp: c.U1(),
		FinishT: c.U4(),
		PartCnt: c.U4(),
		RtstCnt: c.U4(),
		AbrtCnt: c.U4(),
		GoodCnt: c.U4(),
		FuncCnt: c.U4(),
		WaferID: c.Cn(),
		FabwfID: c.Cn(),
		FrameID: c.Cn(),
		MaskID:  c.Cn(),
		UsrDesc: c.Cn(),
		ExcDesc: c.Cn(),
	}
}

// DecodePmr decodes a PMR payload.
func DecodePmr(raw []byte, needSwap bool) Pmr {
	c := NewCursor(raw, needSwap)
	return Pmr{
		PmrIndx: c.U2(),
		ChanTyp: c.U2(),
		ChanNam: c.Cn(),
		PhyNam:  c.Cn(),
		LogNam:  c.Cn(),
	}
}

// DecodePir decodes a PIR payload.
func DecodePir(raw []byte, needSwap bool) Pir {
	c := NewCursor(raw, needSwap)
	return Pir{HeadNum: c.U1(), SiteNum: c.U1()}
}

// DecodePrr decodes a PRR payload, stopping after PART_ID.
func DecodePrr(raw []byte, needSwap bool) Prr {
	c := NewCursor(raw, needSwap)
	return Prr{
		HeadNum: c.U1(),
		SiteNum: c.U1(),
		PartFlg: c.B1(),
		NumTest: c.U2(),
		HardBin: c.U2(),
		SoftBin: c.U2(),
		XCoord:  c.I2(),
		YCoord:  c.I2(),
		TestT:   c.U4(),
		PartID:  c.Cn(),
	}
}

// DecodeHbr decodes an HBR payload.
func DecodeHbr(raw []byte, needSwap bool) Hbr {
	c := NewCursor(raw, needSwap)
	return Hbr{
		HeadNum: c.U1(),
		SiteNum: c.U1(),
		HbinNum: c.U2(),
		HbinCnt: c.U4(),
		HbinPF:  c.B1(),
		HbinNam: c.Cn(),
	}
}

// DecodeSbr decodes an SBR payload.
func DecodeSbr(raw []byte, needSwap bool) Sbr {
	c := NewCursor(raw, needSwap)
	return Sbr{
		HeadNum: c.U1(),
		SiteNum: c.U1(),
		SbinNum: c.U2(),
		SbinCnt: c.U4(),
		SbinPF:  c.B1(),
		SbinNam: c.Cn(),
	}
}

// DecodeTsr decodes a TSR payload, stopping after TEST_NAM.
func DecodeTsr(raw []byte, needSwap bool) Tsr {
	c := NewCursor(raw, needSwap)
	return Tsr{
		HeadNum: c.U1(),
		SiteNum: c.U1(),
		TestTyp: c.B1(),
		TestNum: c.U4(),
		ExecCnt: c.U4(),
		FailCnt: c.U4(),
		AlrmCnt: c.U4(),
		TestNam: c.Cn(),
	}
}

// DecodePcr decodes a PCR payload.
func DecodePcr(raw []byte, needSwap bool) Pcr {
	c := NewCursor(raw, needSwap)
	return Pcr{
		HeadNum: c.U1(),
		SiteNum: c.U1(),
		PartCnt: c.U4(),
		RtstCnt: c.U4(),
		AbrtCnt: c.U4(),
		GoodCnt: c.U4(),
		FuncCnt: c.U4(),
	}
}

// DecodePtr decodes a PTR payload, stopping after UNITS.
func DecodePtr(raw []byte, needSwap bool) Ptr {
	c := NewCursor(raw, needSwap)
	p := Ptr{
		TestNum: c.U4(),
		HeadNum: c.U1(),
		SiteNum: c.U1(),
		TestFlg: c.B1(),
	}
	_ = c.B1() // PARM_FLG, not surfaced anywhere
	p.Result = c.R4()
	p.TestTxt = c.Cn()
	_ = c.Cn() // ALARM_ID, unused
	p.OptFlag = c.B1()
	p.ResScal = c.I1()
	_ = c.I1() // LLM_SCAL, unused
	_ = c.I1() // HLM_SCAL, unused
	p.LoLimit = c.R4()
	p.HiLimit = c.R4()
	p.Units = c.Cn()
	return p
}

// DecodeMpr decodes an MPR payload, skipping the variable-length result
// arrays to reach TEST_TXT and the scale/limit/unit fields.
func DecodeMpr(raw []byte, needSwap bool) Mpr {
	c := NewCursor(raw, needSwap)
	m := Mpr{
		TestNum: c.U4(),
		HeadNum: c.U1(),
		SiteNum: c.U1(),
		TestFlg: c.B1(),
	}
	_ = c.B1() // PARM_FLG, unused
	rtnICnt := int(c.U2())
	rsltCnt := int(c.U2())
	c.SkipNibbleArray(rtnICnt) // RTN_STAT
	c.SkipR4Array(rsltCnt)     // RTN_RSLT
	m.TestTxt = c.Cn()
	_ = c.Cn() // ALARM_ID, unused
	m.OptFlag = c.B1()
	m.ResScal = c.I1()
	_ = c.I1() // LLM_SCAL, unused
	_ = c.I1() // HLM_SCAL, unused
	m.LoLimit = c.R4()
	m.HiLimit = c.R4()
	_ = c.R4() // START_IN, unused
	_ = c.R4() // INCR_IN, unused
	c.SkipU2Array(rtnICnt) // RTN_INDX
	m.Units = c.Cn()
	return m
}

// DecodeFtr decodes an FTR payload, skipping the variable-length vector
// arrays to reach TEST_TXT.
func DecodeFtr(raw []byte, needSwap bool) Ftr {
	c := NewCursor(raw, needSwap)
	f := Ftr{
		TestNum: c.U4(),
		HeadNum: c.U1(),
		SiteNum: c.U1(),
		TestFlg: c.B1(),
	}
	_ = c.B1() // OPT_FLAG, unused here (FTR carries no scale/limit fields)
	_ = c.U4() // CYCL_CNT
	_ = c.U4() // REL_VADR
	_ = c.U4() // RPT_CNT
	_ = c.U4() // NUM_FAIL
	_ = c.I4() // XFAIL_AD
	_ = c.I4() // YFAIL_AD
	_ = c.I2() // VECT_OFF
	rtnICnt := int(c.U2())
	pgmICnt := int(c.U2())
	c.SkipU2Array(rtnICnt)     // RTN_INDX
	c.SkipNibbleArray(rtnICnt) // RTN_STAT
	c.SkipU2Array(pgmICnt)     // PGM_INDX
	c.SkipNibbleArray(pgmICnt) // PGM_STAT
	c.Dn()                     // FAIL_PIN
	_ = c.Cn()                 // VECT_NAM
	_ = c.Cn()                 // TIME_SET
	_ = c.Cn()                 // OP_CODE
	f.TestTxt = c.Cn()
	return f
}
