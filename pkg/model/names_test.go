package model

import (
	"testing"

	"github.com/Faultbox/kforge/pkg/spec"
)

func TestHashNameDeterministic(t *testing.T) {
	if HashName("torso", 64) != HashName("torso", 64) {
		t.Error("hash must be deterministic")
	}
	if h := HashName("x", 8); h < 0 || h >= 8 {
		t.Errorf("hash out of range: %d", h)
	}
	// djb2 of "a": 5381*33 + 'a' = 177670
	if got := HashName("a", 1 << 30); got != 177670 {
		t.Errorf("djb2 of \"a\": got %d, want 177670", got)
	}
}

func TestFindNameLinearProbing(t *testing.T) {
	// two bodies whose names collide modulo the map capacity force a
	// probe chain
	m := New(Sizes{Nbody: 2, Nnames: 64, NnamesMap: LoadMultiple * 2})
	names := []string{"", ""}

	// find two distinct names with equal hash modulo capacity
	capacity := int32(LoadMultiple * 2)
	base := HashName("b0", capacity)
	names[0] = "b0"
	for i := 1; ; i++ {
		cand := "b" + string(rune('0'+i%10)) + string(rune('a'+i/10))
		if cand != names[0] && HashName(cand, capacity) == base {
			names[1] = cand
			break
		}
	}

	adr := int32(1) // slot 0 is the model name terminator
	for i := range m.NamesMap {
		m.NamesMap[i] = -1
	}
	for i, n := range names {
		j := HashName(n, capacity)
		for m.NamesMap[j] != -1 {
			j = (j + 1) % capacity
		}
		m.NamesMap[j] = int32(i)
		m.NameBodyAdr[i] = adr
		copy(m.Names[adr:], n)
		adr += int32(len(n)) + 1
	}

	for i, n := range names {
		if got := m.FindName(spec.ObjBody, n); got != int32(i) {
			t.Errorf("FindName(%q): got %d, want %d", n, got, i)
		}
	}
	if got := m.FindName(spec.ObjBody, "absent"); got != -1 {
		t.Errorf("FindName(absent): got %d, want -1", got)
	}
}

func TestNameAt(t *testing.T) {
	m := New(Sizes{Nnames: 16})
	copy(m.Names[0:], "model")
	copy(m.Names[6:], "arm")
	if got := m.NameAt(6); got != "arm" {
		t.Errorf("NameAt(6): got %q, want arm", got)
	}
	if got := m.NameAt(-1); got != "" {
		t.Errorf("NameAt(-1): got %q, want empty", got)
	}
}
