package staging

import (
	"errors"
	"math"
	"testing"

	"github.com/Adi-aygd/liver-cirrhosis/internal/domain/clinic"
)

func healthyPanel() FirstPanel {
	return FirstPanel{
		Age: 45, Sex: "M", Albumin: 4.2, Bilirubin: 0.8,
		ALT: 30, AST: 25, ALP: 80, INR: 1.0,
		Platelets: 250, Sodium: 140, Creatinine: 0.9,
	}
}

func decompensatedPanel() FirstPanel {
	return FirstPanel{
		Age: 62, Sex: "F", Albumin: 2.4, Bilirubin: 4.1,
		ALT: 40, AST: 95, ALP: 210, INR: 2.6,
		Platelets: 70, Sodium: 128, Creatinine: 1.8,
		Ascites: 1, Hepatomegaly: 1, Spiders: 1, Edema: 1,
	}
}

func TestPredictFirstHealthy(t *testing.T) {
	svc := NewService()
	pred, err := svc.PredictFirst(healthyPanel())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if pred.PredictedStage != "1" {
		t.Errorf("expected stage 1 for a healthy panel, got %s", pred.PredictedStage)
	}
}

func TestPredictFirstDecompensated(t *testing.T) {
	svc := NewService()
	pred, err := svc.PredictFirst(decompensatedPanel())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if pred.PredictedStage != "4" {
		t.Errorf("expected stage 4 for a decompensated panel, got %s", pred.PredictedStage)
	}
}

func TestProbabilitiesSumToOne(t *testing.T) {
	svc := NewService()
	pred, err := svc.PredictFirst(healthyPanel())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if len(pred.StageProbabilities) != 4 {
		t.Fatalf("expected four stage probabilities, got %d", len(pred.StageProbabilities))
	}
	var sum float64
	for _, p := range pred.StageProbabilities {
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("probabilities sum to %f, want 1", sum)
	}
	if top := pred.StageProbabilities[pred.PredictedStage]; top <= 0.25 {
		t.Errorf("predicted stage should carry the largest share, got %f", top)
	}
}

func TestPredictIsDeterministic(t *testing.T) {
	svc := NewService()
	a, err := svc.PredictFirst(decompensatedPanel())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	b, err := svc.PredictFirst(decompensatedPanel())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if a.PredictedStage != b.PredictedStage {
		t.Errorf("same panel produced different stages: %s vs %s", a.PredictedStage, b.PredictedStage)
	}
	for k, v := range a.StageProbabilities {
		if b.StageProbabilities[k] != v {
			t.Errorf("probability for stage %s drifted between runs", k)
		}
	}
}

func TestPredictFollowupTreatmentLowersScore(t *testing.T) {
	svc := NewService()
	moderate := FirstPanel{
		Age: 55, Sex: "M", Albumin: 3.0, Bilirubin: 2.5,
		ALT: 50, AST: 45, ALP: 150, INR: 1.8,
		Platelets: 120, Sodium: 133, Creatinine: 1.1,
	}
	base := FollowupPanel{FirstPanel: moderate, PreviousStage: 3}
	treated := base
	treated.BedRest = 1
	treated.Drugs = 1

	untreated, err := svc.PredictFollowup(base)
	if err != nil {
		t.Fatalf("predict untreated: %v", err)
	}
	withCare, err := svc.PredictFollowup(treated)
	if err != nil {
		t.Fatalf("predict treated: %v", err)
	}
	if withCare.StageProbabilities["4"] > untreated.StageProbabilities["4"] {
		t.Error("treatment should not raise the probability of the worst stage")
	}
}

func TestPredictFollowupAnchorsOnPreviousStage(t *testing.T) {
	svc := NewService()
	mild := FollowupPanel{FirstPanel: healthyPanel(), PreviousStage: 4}
	pred, err := svc.PredictFollowup(mild)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if pred.PredictedStage == "1" {
		t.Error("a stage 4 history should pull the estimate above stage 1")
	}
}

func TestPredictValidation(t *testing.T) {
	svc := NewService()
	bad := healthyPanel()
	bad.Albumin = 0
	if _, err := svc.PredictFirst(bad); !errors.Is(err, clinic.ErrValidation) {
		t.Errorf("expected validation error for zero albumin, got %v", err)
	}

	fp := FollowupPanel{FirstPanel: healthyPanel(), PreviousStage: 7}
	if _, err := svc.PredictFollowup(fp); !errors.Is(err, clinic.ErrValidation) {
		t.Errorf("expected validation error for out-of-range previous stage, got %v", err)
	}
}
