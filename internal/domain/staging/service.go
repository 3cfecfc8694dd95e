package staging

import (
	"fmt"
	"strconv"

	"github.com/Adi-aygd/liver-cirrhosis/internal/domain/clinic"
)

// Service estimates a cirrhosis stage (1 to 4) from a lab panel with a
// Child-Pugh style point system: synthetic function and portal hypertension
// markers each contribute points, and the total maps onto a stage band.
// The scoring is deterministic, so the same panel always yields the same
// stage and probability spread.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Stage band centres on the point scale. A panel's distance to each centre
// drives the probability spread.
var stageCentres = [4]float64{1, 4, 7, 10}

func (s *Service) PredictFirst(p FirstPanel) (*Prediction, error) {
	if err := validatePanel(p); err != nil {
		return nil, err
	}
	return predictionFor(scorePanel(p)), nil
}

func (s *Service) PredictFollowup(p FollowupPanel) (*Prediction, error) {
	if err := validatePanel(p.FirstPanel); err != nil {
		return nil, err
	}
	if p.PreviousStage < 1 || p.PreviousStage > 4 {
		return nil, fmt.Errorf("%w: previous_stage must be between 1 and 4", clinic.ErrValidation)
	}
	score := scorePanel(p.FirstPanel)

	// A follow-up anchors on the prior stage and credits treatment: disease
	// rarely jumps bands between visits, and bed rest or medication pulls
	// the estimate down by a point each.
	score += float64(p.PreviousStage-1) * 1.5
	if p.BedRest != 0 {
		score--
	}
	if p.Drugs != 0 {
		score--
	}
	if score < 0 {
		score = 0
	}
	return predictionFor(score), nil
}

func validatePanel(p FirstPanel) error {
	switch {
	case p.Age <= 0:
		return fmt.Errorf("%w: Age must be positive", clinic.ErrValidation)
	case p.Albumin <= 0:
		return fmt.Errorf("%w: Albumin must be positive", clinic.ErrValidation)
	case p.Bilirubin < 0:
		return fmt.Errorf("%w: Bilirubin cannot be negative", clinic.ErrValidation)
	case p.INR <= 0:
		return fmt.Errorf("%w: INR must be positive", clinic.ErrValidation)
	case p.Platelets <= 0:
		return fmt.Errorf("%w: Platelets must be positive", clinic.ErrValidation)
	}
	return nil
}

func scorePanel(p FirstPanel) float64 {
	var score float64

	switch {
	case p.Bilirubin > 3:
		score += 2
	case p.Bilirubin >= 2:
		score++
	}
	switch {
	case p.Albumin < 2.8:
		score += 2
	case p.Albumin <= 3.5:
		score++
	}
	switch {
	case p.INR > 2.3:
		score += 2
	case p.INR >= 1.7:
		score++
	}
	if p.Ascites != 0 {
		score += 2
	}
	switch {
	case p.Platelets < 100:
		score += 2
	case p.Platelets < 150:
		score++
	}
	switch {
	case p.Sodium < 130:
		score += 2
	case p.Sodium < 135:
		score++
	}
	// An AST/ALT ratio above 1 is the classic cirrhosis flip.
	if p.ALT > 0 && p.AST/p.ALT > 1 {
		score++
	}
	if p.Edema != 0 {
		score++
	}
	if p.Spiders != 0 {
		score++
	}
	if p.Hepatomegaly != 0 {
		score++
	}
	if p.Creatinine > 1.5 {
		score++
	}
	return score
}

func stageForScore(score float64) int {
	switch {
	case score <= 2:
		return 1
	case score <= 5:
		return 2
	case score <= 8:
		return 3
	default:
		return 4
	}
}

func predictionFor(score float64) *Prediction {
	probs := make(map[string]float64, 4)
	var total float64
	weights := [4]float64{}
	for i, centre := range stageCentres {
		d := score - centre
		if d < 0 {
			d = -d
		}
		weights[i] = 1 / (1 + d)
		total += weights[i]
	}
	for i := range weights {
		probs[strconv.Itoa(i+1)] = weights[i] / total
	}
	return &Prediction{
		PredictedStage:     strconv.Itoa(stageForScore(score)),
		StageProbabilities: probs,
	}
}
