package stdfrec

import "testing"

func TestDecodeFar(t *testing.T) {
	raw := []byte{2, 4} // CPU_TYPE=2, STDF_VER=4
	far := DecodeFar(raw, false)
	if far.CPUType != 2 || far.STDFVer != 4 {
		t.Fatalf("got %+v", far)
	}
}

func TestDecodeMir(t *testing.T) {
	var raw []byte
	raw = append(raw, u4le(1000)...) // SETUP_T
	raw = append(raw, u4le(1001)...) // START_T
	raw = append(raw, 7)             // STAT_NUM
	raw = append(raw, 'P')           // MODE_COD
	raw = append(raw, ' ')           // RTST_COD
	raw = append(raw, 'B')           // PROT_COD
	raw = append(raw, u2le(65535)...) // BURN_TIM (missing sentinel)
	raw = append(raw, ' ')           // CMOD_COD

	mir := DecodeMir(raw, false)
	if mir.SetupT != 1000 || mir.StartT != 1001 || mir.StatNum != 7 {
		t.Fatalf("got %+v", mir)
	}
	if mir.ModeCod != 'P' || mir.ProtCod != 'B' {
		t.Fatalf("got %+v", mir)
	}
	if mir.BurnTim != 65535 {
		t.Fatalf("expected missing BURN_TIM sentinel, got %d", mir.BurnTim)
	}
	if mir.CmodCod != ' ' {
		t.Fatalf("expected space CMOD_COD, got %q", mir.CmodCod)
	}
}

func TestDecodePrrCoordSentinels(t *testing.T) {
	var raw []byte
	raw = append(raw, 1, 1)               // HEAD_NUM, SITE_NUM
	raw = append(raw, 0x00)               // PART_FLG
	raw = append(raw, u2le(1)...)         // NUM_TEST
	raw = append(raw, u2le(1)...)         // HARD_BIN
	raw = append(raw, u2le(1)...)         // SOFT_BIN
	sentinel16 := int16(-32768)
	raw = append(raw, u2le(uint16(sentinel16))...) // X_COORD
	raw = append(raw, u2le(uint16(sentinel16))...) // Y_COORD
	raw = append(raw, u4le(500)...)       // TEST_T
	raw = append(raw, 4, 'D', 'U', 'T', '1')

	prr := DecodePrr(raw, false)
	if prr.XCoord != -32768 || prr.YCoord != -32768 {
		t.Fatalf("got %+v", prr)
	}
	if prr.PartID != "DUT1" {
		t.Fatalf("got part id %q", prr.PartID)
	}
}

func TestDecodePtrByteSwap(t *testing.T) {
	var raw []byte
	raw = append(raw, u4be(100)...) // TEST_NUM, big-endian
	raw = append(raw, 1, 1)         // HEAD_NUM, SITE_NUM
	raw = append(raw, 0x00)         // TEST_FLG
	raw = append(raw, 0x00)         // PARM_FLG
	raw = append(raw, 0, 0, 0, 0)   // RESULT placeholder (not asserted)
	raw = append(raw, 3, 'a', 'b', 'c')

	ptr := DecodePtr(raw, true)
	if ptr.TestNum != 100 {
		t.Fatalf("expected swapped TEST_NUM=100, got %d", ptr.TestNum)
	}
	if ptr.TestTxt != "abc" {
		t.Fatalf("got test txt %q", ptr.TestTxt)
	}
}

func u2le(v uint16) []byte { return []byte{byte(v), byte(v >> 8)} }
func u4le(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}
func u4be(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}
