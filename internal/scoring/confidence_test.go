package scoring

import (
	"math"
	"testing"

	"github.com/opensource-health/heron/internal/domain"
)

func TestConfidenceScore(t *testing.T) {
	medicine := domain.MedicalItem{Category: "Medicine", Name: "Paracetamol 500mg"}
	surgery := domain.MedicalItem{Category: "Surgery, O.R. & Delivery", Name: "Minor Surgery"}

	tests := []struct {
		name  string
		items []domain.MedicalItem
		want  float64
	}{
		{
			name:  "SingleCommonItem",
			items: []domain.MedicalItem{medicine},
			want:  0.90, // 0.80 base + full common fraction
		},
		{
			name:  "SingleUncommonItem",
			items: []domain.MedicalItem{surgery},
			want:  0.80,
		},
		{
			name:  "ThreeUncommonItems",
			items: []domain.MedicalItem{surgery, surgery, surgery},
			want:  0.90, // +0.10 count bonus
		},
		{
			name:  "SevenCommonItemsClamped",
			items: []domain.MedicalItem{medicine, medicine, medicine, medicine, medicine, medicine, medicine},
			want:  0.95, // 0.80+0.10+0.05+0.10 = 1.05, clamped
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConfidenceScore(tt.items)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %.2f, got %.4f", tt.want, got)
			}
			if got < 0 || got > 1 {
				t.Errorf("confidence out of [0,1]: %.4f", got)
			}
		})
	}
}

func TestConfidenceCommonFraction(t *testing.T) {
	// Discharge Medicine is not an exact match for the common list.
	items := []domain.MedicalItem{
		{Category: "Discharge Medicine", Name: "Antibiotic Course"},
		{Category: "Medicine", Name: "Aspirin 75mg"},
	}
	got := ConfidenceScore(items)
	want := 0.80 + 0.5*0.10
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %.3f, got %.4f", want, got)
	}
}
