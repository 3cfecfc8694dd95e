package staging

// FirstPanel is the lab panel scored for a patient's first visit. Field names
// mirror the intake form.
type FirstPanel struct {
	Age          float64 `json:"Age"`
	Sex          string  `json:"Sex"`
	Albumin      float64 `json:"Albumin"`
	Bilirubin    float64 `json:"Bilirubin"`
	ALT          float64 `json:"ALT"`
	AST          float64 `json:"AST"`
	ALP          float64 `json:"ALP"`
	INR          float64 `json:"INR"`
	Platelets    float64 `json:"Platelets"`
	Sodium       float64 `json:"Sodium"`
	Creatinine   float64 `json:"Creatinine"`
	Ascites      int     `json:"Ascites"`
	Hepatomegaly int     `json:"Hepatomegaly"`
	Spiders      int     `json:"Spiders"`
	Edema        int     `json:"Edema"`
}

// FollowupPanel extends the first-visit panel with the treatment context a
// follow-up visit carries.
type FollowupPanel struct {
	FirstPanel
	PreviousStage int `json:"previous_stage"`
	BedRest       int `json:"bed_rest"`
	Drugs         int `json:"drugs"`
}

// Prediction is the scoring result. Stage labels are strings so the payload
// matches what the dashboard already renders.
type Prediction struct {
	PredictedStage     string             `json:"predicted_stage"`
	StageProbabilities map[string]float64 `json:"stage_probabilities"`
}
