package gcdisc

import "testing"

func buildImage(t *testing.T) []byte {
	t.Helper()
	data := make([]byte, Size)
	copy(data[0:], []byte("GALE"))
	copy(data[4:], []byte("01"))
	data[6] = 0
	data[7] = 0

	putU32 := func(offset int, v uint32) {
		data[offset] = byte(v >> 24)
		data[offset+1] = byte(v >> 16)
		data[offset+2] = byte(v >> 8)
		data[offset+3] = byte(v)
	}

	const dolOffset = 0x100000
	putU32(mainExecutableOffset, dolOffset)

	// A minimal one-section DOL at dolOffset.
	putU32(dolOffset+0x00, uint32(0x100)) // section 0 file offset (rel. to dol start)
	putU32(dolOffset+0x48, uint32(0x80003000))
	putU32(dolOffset+0x90, uint32(4))
	putU32(dolOffset+0xe0, uint32(0x80003000))
	putU32(dolOffset+0x100, uint32(0x4e800020)) // blr

	return data
}

func TestHeaderFields(t *testing.T) {
	r := NewReader(buildImage(t))
	h := r.Header()
	if got := h.GameCode(); got != "GALE" {
		t.Errorf("GameCode() = %q, want GALE", got)
	}
	if got := h.MakerCode(); got != "01" {
		t.Errorf("MakerCode() = %q, want 01", got)
	}
}

func TestMainExecutableLocatesEmbeddedDol(t *testing.T) {
	r := NewReader(buildImage(t))
	dolReader := r.MainExecutable()
	if got := dolReader.EntryPoint(); got != 0x80003000 {
		t.Errorf("EntryPoint() = %#x, want 0x80003000", got)
	}
	if got := dolReader.Read(0x80003000); got != 0x4e800020 {
		t.Errorf("Read(entry) = %#x, want 0x4e800020", got)
	}
}
