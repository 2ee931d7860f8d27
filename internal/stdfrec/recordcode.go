// Package stdfrec decodes STDF V4 record payloads into typed views. Callers
// hand it a raw payload and a record code and get back a struct with the
// fields the ingestion handlers need, never the full field set of the
// format.
package stdfrec

// Code is the composite record code (rec_typ<<8 | rec_sub) used for handler
// dispatch throughout the engine.
type Code uint16

const (
	CodeFAR Code = 10
	CodeATR Code = 20
	CodeMIR Code = 266
	CodeMRR Code = 276
	CodePCR Code = 286
	CodeHBR Code = 296
	CodeSBR Code = 306
	CodePMR Code = 316
	CodePGR Code = 318
	CodePLR Code = 319
	CodeRDR Code = 326
	CodeSDR Code = 336
	CodeWIR Code = 522
	CodeWRR Code = 532
	CodeWCR Code = 542
	CodePIR Code = 1290
	CodePRR Code = 1300
	CodeTSR Code = 2590
	CodePTR Code = 3850
	CodeMPR Code = 3855
	CodeFTR Code = 3860
	CodeBPS Code = 5130
	CodeEPS Code = 5140
	CodeGDR Code = 12810
	CodeDTR Code = 12830
)

// MakeCode composes a record code from its wire rec_typ/rec_sub pair.
func MakeCode(recTyp, recSub uint8) Code {
	return Code(uint16(recTyp)<<8 | uint16(recSub))
}

// Enqueued reports whether the reader thread must hand this record code to
// the summarizer. Every other code is skipped on the wire: its bytes are
// seeked past without allocation.
func (c Code) Enqueued() bool {
	switch c {
	case CodeMIR, CodeWCR, CodeWIR, CodeWRR,
		CodePTR, CodeFTR, CodeMPR, CodeTSR,
		CodePIR, CodePRR, CodeHBR, CodeSBR,
		CodePCR, CodePMR:
		return true
	default:
		return false
	}
}

// Name returns a short mnemonic for logging and the analyzer's histogram.
// Unknown codes are reported as "UNK".
func (c Code) Name() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return "UNK"
}

var codeNames = map[Code]string{
	CodeFAR: "FAR", CodeATR: "ATR", CodeMIR: "MIR", CodeMRR: "MRR",
	CodePCR: "PCR", CodeHBR: "HBR", CodeSBR: "SBR", CodePMR: "PMR",
	CodePGR: "PGR", CodePLR: "PLR", CodeRDR: "RDR", CodeSDR: "SDR",
	CodeWIR: "WIR", CodeWRR: "WRR", CodeWCR: "WCR", CodePIR: "PIR",
	CodePRR: "PRR", CodeTSR: "TSR", CodePTR: "PTR", CodeMPR: "MPR",
	CodeFTR: "FTR", CodeBPS: "BPS", CodeEPS: "EPS", CodeGDR: "GDR",
	CodeDTR: "DTR",
}
