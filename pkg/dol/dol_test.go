package dol

import "testing"

func buildImage(t *testing.T) []byte {
	t.Helper()
	data := make([]byte, 0x100+8)
	putU32 := func(offset int, v uint32) {
		data[offset] = byte(v >> 24)
		data[offset+1] = byte(v >> 16)
		data[offset+2] = byte(v >> 8)
		data[offset+3] = byte(v)
	}
	// One populated section: slot 0, file offset 0x100, load address
	// 0x80003000, size 8 (two words).
	putU32(sectionOffsetTableOffset, 0x100)
	putU32(sectionLoadAddressTableOffset, 0x80003000)
	putU32(sectionSizeTableOffset, 8)
	putU32(entryPointOffset, 0x80003000)
	putU32(0x100, 0xdeadbeef)
	putU32(0x104, 0xcafef00d)
	return data
}

func TestReadWithinSection(t *testing.T) {
	r := NewReader(buildImage(t))
	if got := r.Read(0x80003000); got != 0xdeadbeef {
		t.Errorf("Read(0x80003000) = %#x, want 0xdeadbeef", got)
	}
	if got := r.Read(0x80003004); got != 0xcafef00d {
		t.Errorf("Read(0x80003004) = %#x, want 0xcafef00d", got)
	}
}

func TestReadOutsideSectionPanics(t *testing.T) {
	r := NewReader(buildImage(t))
	defer func() {
		if recover() == nil {
			t.Error("expected a panic reading an unmapped address")
		}
	}()
	r.Read(0x80009000)
}

func TestEntryPoint(t *testing.T) {
	r := NewReader(buildImage(t))
	if got := r.EntryPoint(); got != 0x80003000 {
		t.Errorf("EntryPoint() = %#x, want 0x80003000", got)
	}
}

func TestIterSectionsCount(t *testing.T) {
	r := NewReader(buildImage(t))
	if got := len(r.IterSections()); got != SectionCount {
		t.Errorf("len(IterSections()) = %d, want %d", got, SectionCount)
	}
}
