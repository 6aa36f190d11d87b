package model

import "testing"

func TestTierFor_Boundaries(t *testing.T) {
	risk := RiskConfig{Medium: 0.3, High: 0.6}

	tests := []struct {
		score float64
		want  RiskTier
		desc  string
	}{
		{0.0, TierLow, "zero score"},
		{0.29, TierLow, "just below medium cut"},
		{0.3, TierMedium, "exactly at medium cut"},
		{0.45, TierMedium, "mid band"},
		{0.59, TierMedium, "just below high cut"},
		{0.6, TierHigh, "exactly at high cut"},
		{0.72, TierHigh, "high band"},
		{1.0, TierHigh, "maximum score"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := TierFor(tt.score, risk); got != tt.want {
				t.Errorf("Expected %s for score %v, got %s", tt.want, tt.score, got)
			}
		})
	}
}

func TestNLIVerdict_Risk(t *testing.T) {
	if got := NLISupported.Risk(); got != 0.0 {
		t.Errorf("Expected 0.0 for supported, got %v", got)
	}
	if got := NLINotEnoughInfo.Risk(); got != 0.5 {
		t.Errorf("Expected 0.5 for not enough info, got %v", got)
	}
	if got := NLIContradicted.Risk(); got != 1.0 {
		t.Errorf("Expected 1.0 for contradicted, got %v", got)
	}
}

func TestParseNLIVerdict(t *testing.T) {
	tests := []struct {
		input   string
		want    NLIVerdict
		wantErr bool
	}{
		{"SUPPORTED", NLISupported, false},
		{"supported", NLISupported, false},
		{" Supported ", NLISupported, false},
		{"IMPLIED", NLISupported, false},
		{"CONTRADICTED", NLIContradicted, false},
		{"refuted", NLIContradicted, false},
		{"NOT_ENOUGH_INFO", NLINotEnoughInfo, false},
		{"NOT-ENOUGH-INFO", NLINotEnoughInfo, false},
		{"NOT_MENTIONED", NLINotEnoughInfo, false},
		{"not mentioned", NLINotEnoughInfo, false},
		{"NO_EVIDENCE", NLINotEnoughInfo, false},
		{"maybe", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseNLIVerdict(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Expected error for %q, got verdict %s", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Expected no error for %q, got %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Expected %s for %q, got %s", tt.want, tt.input, got)
		}
	}
}

func TestHallucinationVerdict_Signal(t *testing.T) {
	v := HallucinationVerdict{
		Signals: []VerificationSignal{
			{Kind: SignalCitation, Score: 1.0},
			{Kind: SignalNLI, Score: 0.5},
		},
	}

	if sig := v.Signal(SignalNLI); sig == nil || sig.Score != 0.5 {
		t.Errorf("Expected nli signal with score 0.5, got %+v", sig)
	}
	if sig := v.Signal(SignalConsistency); sig != nil {
		t.Errorf("Expected nil for absent signal, got %+v", sig)
	}
}

func TestContextChunk_Label(t *testing.T) {
	c := ContextChunk{ID: 7, Content: "some text"}
	if got := c.Label(); got != "Chunk 7" {
		t.Errorf("Expected 'Chunk 7', got %q", got)
	}
}
