package ppc

import "testing"

func TestNewSpr(t *testing.T) {
	cases := []struct {
		raw  uint32
		want Spr
		ok   bool
	}{
		{1, SprXER, true},
		{8, SprLR, true},
		{9, SprCTR, true},
		{912, 0, false}, // GQR0 is not recognized
		{913, SprGQR1, true},
		{914, SprGQR2, true},
		{915, SprGQR3, true},
		{916, SprGQR4, true},
		{917, SprGQR5, true},
		{918, SprGQR6, true},
		{919, SprGQR7, true},
	}
	for _, c := range cases {
		got, ok := NewSpr(c.raw)
		if ok != c.ok {
			t.Errorf("NewSpr(%d): ok = %v, want %v", c.raw, ok, c.ok)
			continue
		}
		if ok && got != c.want {
			t.Errorf("NewSpr(%d) = %v, want %v", c.raw, got, c.want)
		}
	}
}
