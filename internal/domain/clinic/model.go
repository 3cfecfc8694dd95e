package clinic

import "time"

// Doctor is a clinician available for appointments. Credentials are stored
// in plaintext for demo parity with the seeded dataset.
type Doctor struct {
	ID       int64   `db:"id" json:"id"`
	Name     string  `db:"name" json:"name"`
	Hospital string  `db:"hospital" json:"hospital"`
	Rating   float64 `db:"rating" json:"rating"`
	Timing   string  `db:"timing" json:"timing"`
	Status   string  `db:"status" json:"status"`
	Username string  `db:"username" json:"username"`
	Password string  `db:"password" json:"password"`
	Age      string  `db:"age" json:"age"`
	Gender   string  `db:"gender" json:"gender"`
	Contact  string  `db:"contact" json:"contact"`
}

// DoctorStatusAvailable is the only status the booking surface acts on;
// anything else renders as unavailable.
const DoctorStatusAvailable = "Available"

// LabAssistant shares the doctor intake form, minus the clinical fields'
// significance; hospital, rating and timing are carried but optional.
type LabAssistant struct {
	ID       int64   `db:"id" json:"id"`
	Name     string  `db:"name" json:"name"`
	Hospital string  `db:"hospital" json:"hospital,omitempty"`
	Rating   float64 `db:"rating" json:"rating,omitempty"`
	Timing   string  `db:"timing" json:"timing,omitempty"`
	Username string  `db:"username" json:"username"`
	Password string  `db:"password" json:"password"`
	Age      string  `db:"age" json:"age"`
	Gender   string  `db:"gender" json:"gender"`
	Contact  string  `db:"contact" json:"contact"`
}

// Prescription is one entry in a patient's append-only prescription log.
// Entries are never mutated or removed after being recorded.
type Prescription struct {
	DoctorID     int64  `db:"doctor_id" json:"doctor_id"`
	Prescription string `db:"prescription" json:"prescription"`
	Precautions  string `db:"precautions" json:"precautions"`
	NextDate     string `db:"next_date" json:"next_date"`
}

// Patient owns its prescription log; the log is independent of lab report
// annotations, which live on the report itself.
type Patient struct {
	ID            int64          `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	Username      string         `db:"username" json:"username"`
	Age           int            `db:"age" json:"age"`
	Gender        string         `db:"gender" json:"gender"`
	Contact       string         `db:"contact" json:"contact"`
	Prescriptions []Prescription `json:"prescriptions"`
}

// Appointment statuses. An appointment transitions booked -> prescribed and
// has no cancellation state.
const AppointmentStatusBooked = "booked"

// Appointment links one patient to one doctor on a date. IDs are assigned at
// creation and are the only handle used for later updates.
type Appointment struct {
	ID         int64  `db:"id" json:"id"`
	PatientID  int64  `db:"patient_id" json:"patient_id"`
	DoctorID   int64  `db:"doctor_id" json:"doctor_id"`
	Date       string `db:"date" json:"date"`
	Status     string `db:"status" json:"status"`
	Prescribed bool   `db:"prescribed" json:"prescribed"`
	NextDate   string `db:"next_date" json:"next_date"`
}

// ReportKind distinguishes the two lab panel shapes. The kind is decided at
// creation time from the patient's existing report count and never changes.
type ReportKind string

const (
	// ReportKindFirst is the basic panel recorded on a patient's first visit.
	ReportKindFirst ReportKind = "first"
	// ReportKindFollowup extends the basic panel with stage, bed rest and
	// drug history from the previous course.
	ReportKindFollowup ReportKind = "followup"
)

// LabValues is the measurement panel recorded by lab staff. Values are
// free-form text; the store performs no range validation. Stage, BedRest and
// Drugs are only populated on follow-up reports.
type LabValues struct {
	Age          string `db:"age" json:"age"`
	Sex          string `db:"sex" json:"sex"`
	Albumin      string `db:"albumin" json:"albumin"`
	Bilirubin    string `db:"bilirubin" json:"bilirubin"`
	ALT          string `db:"alt" json:"alt"`
	AST          string `db:"ast" json:"ast"`
	ALP          string `db:"alp" json:"alp"`
	INR          string `db:"inr" json:"inr"`
	Platelets    string `db:"platelets" json:"platelets"`
	Sodium       string `db:"sodium" json:"sodium"`
	Creatinine   string `db:"creatinine" json:"creatinine"`
	Ascites      string `db:"ascites" json:"ascites"`
	Hepatomegaly string `db:"hepatomegaly" json:"hepatomegaly"`
	Spiders      string `db:"spiders" json:"spiders"`
	Edema        string `db:"edema" json:"edema"`
	Stage        string `db:"stage" json:"stage,omitempty"`
	BedRest      string `db:"bedrest" json:"bedrest,omitempty"`
	Drugs        string `db:"drugs" json:"drugs,omitempty"`
}

// Annotation is the prescription block a doctor attaches to a lab report.
// Re-annotating replaces the whole block; there is no field-level merge.
type Annotation struct {
	Prescription string `db:"rx_prescription" json:"prescription"`
	Precautions  string `db:"rx_precautions" json:"precautions"`
	BedRest      string `db:"rx_bed_rest" json:"bed_rest"`
	Drugs        string `db:"rx_drugs" json:"drugs"`
	NextDate     string `db:"rx_next_date" json:"next_date"`
}

// LabReport is a tagged variant: a base report carries lab values only, an
// annotated report additionally carries the doctor's prescription block.
type LabReport struct {
	ID         int64       `db:"id" json:"id"`
	PatientID  int64       `db:"patient_id" json:"patient_id"`
	DoctorID   int64       `db:"doctor_id" json:"doctor_id"`
	Kind       ReportKind  `db:"kind" json:"kind"`
	Values     LabValues   `json:"values"`
	Annotation *Annotation `json:"annotation,omitempty"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
}

// Annotated reports whether a prescription block has been attached.
func (r *LabReport) Annotated() bool { return r.Annotation != nil }

// Clone returns a deep copy so callers can't reach into stored state.
func (r *LabReport) Clone() *LabReport {
	out := *r
	if r.Annotation != nil {
		a := *r.Annotation
		out.Annotation = &a
	}
	return &out
}

// Clone returns a deep copy including the prescription log.
func (p *Patient) Clone() *Patient {
	out := *p
	out.Prescriptions = make([]Prescription, len(p.Prescriptions))
	copy(out.Prescriptions, p.Prescriptions)
	return &out
}
