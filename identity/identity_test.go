package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Milano", "milano"},
		{"  Milano  ", "milano"},
		{"Porta   Nuova", "porta nuova"},
		{"SAN\tSIRO", "san siro"},
		{"", ""},
	}

	for _, tt := range tests {
		got := NormalizeLabel(tt.input)
		if got != tt.expected {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSameLabel(t *testing.T) {
	if !SameLabel("Milano ", " milano") {
		t.Error("expected labels to match")
	}
	if SameLabel("", "") {
		t.Error("empty labels should never match")
	}
	if SameLabel("Roma", "Milano") {
		t.Error("different labels should not match")
	}
}

func TestContainsLabel(t *testing.T) {
	cities := []string{"Roma", "Milano"}
	if !ContainsLabel(cities, "MILANO") {
		t.Error("expected Milano to be found")
	}
	if ContainsLabel(cities, "Torino") {
		t.Error("Torino should not be found")
	}
	if ContainsLabel(nil, "Roma") {
		t.Error("nil list should not match")
	}
}

func TestContainsFold(t *testing.T) {
	if !ContainsFold("Posto Auto Coperto", "posto auto") {
		t.Error("expected substring match")
	}
	if ContainsFold("Balcone", "") {
		t.Error("empty needle should not match")
	}
}

func TestMatchKeyDeterministic(t *testing.T) {
	p := uuid.New()
	c := uuid.New()

	k1 := MatchKey(p, c)
	k2 := MatchKey(p, c)
	if k1 != k2 {
		t.Errorf("keys differ for same pair: %s vs %s", k1, k2)
	}
	if k1 == MatchKey(c, p) {
		t.Error("key should depend on argument order")
	}
	if k1.Version() != 5 {
		t.Errorf("expected version 5 uuid, got %d", k1.Version())
	}
}
