package clinic

import (
	"context"
	"errors"
	"fmt"
)

// Service owns every cross-entity write so appointment and report state stays
// consistent with patient records regardless of which surface calls in.
type Service struct {
	doctors       DoctorRepository
	labAssistants LabAssistantRepository
	patients      PatientRepository
	appointments  AppointmentRepository
	reports       LabReportRepository
}

func NewService(r Repos) *Service {
	return &Service{
		doctors:       r.Doctors,
		labAssistants: r.LabAssistants,
		patients:      r.Patients,
		appointments:  r.Appointments,
		reports:       r.Reports,
	}
}

// -- Admin intake --

func (s *Service) AddDoctor(ctx context.Context, d *Doctor) error {
	if err := requireFields(map[string]string{
		"name":     d.Name,
		"hospital": d.Hospital,
		"timing":   d.Timing,
		"username": d.Username,
		"password": d.Password,
		"age":      d.Age,
		"gender":   d.Gender,
		"contact":  d.Contact,
	}); err != nil {
		return err
	}
	if d.Rating <= 0 {
		return fmt.Errorf("%w: rating is required", ErrValidation)
	}
	if d.Status == "" {
		d.Status = DoctorStatusAvailable
	}
	return s.doctors.Add(ctx, d)
}

func (s *Service) AddLabAssistant(ctx context.Context, la *LabAssistant) error {
	if err := requireFields(map[string]string{
		"name":     la.Name,
		"username": la.Username,
		"password": la.Password,
		"age":      la.Age,
		"gender":   la.Gender,
		"contact":  la.Contact,
	}); err != nil {
		return err
	}
	return s.labAssistants.Add(ctx, la)
}

// RemoveDoctor deletes by list position, not id. Out-of-range indices are a
// no-op reported as false; captured positions are valid only within one
// rendering pass of the admin surface.
func (s *Service) RemoveDoctor(ctx context.Context, index int) (bool, error) {
	if index < 0 {
		return false, fmt.Errorf("%w: negative index %d", ErrInvalidState, index)
	}
	return s.doctors.RemoveAt(ctx, index)
}

func (s *Service) RemoveLabAssistant(ctx context.Context, index int) (bool, error) {
	if index < 0 {
		return false, fmt.Errorf("%w: negative index %d", ErrInvalidState, index)
	}
	return s.labAssistants.RemoveAt(ctx, index)
}

// -- Patients --

func (s *Service) RegisterPatient(ctx context.Context, p *Patient) error {
	if err := requireFields(map[string]string{
		"name":     p.Name,
		"username": p.Username,
		"gender":   p.Gender,
		"contact":  p.Contact,
	}); err != nil {
		return err
	}
	if p.Age <= 0 {
		return fmt.Errorf("%w: age is required", ErrValidation)
	}
	return s.patients.Add(ctx, p)
}

// -- Booking --

// BookAppointment enforces referential integrity: both the patient and the
// doctor must exist. It deliberately does not check doctor availability,
// date plausibility or duplicate bookings; those are caller policy, and the
// patient surface exposes CanBook for its own gate.
func (s *Service) BookAppointment(ctx context.Context, patientID, doctorID int64, date string) (*Appointment, error) {
	if date == "" {
		return nil, fmt.Errorf("%w: date is required", ErrValidation)
	}
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, wrapNotFound(err, "patient", patientID)
	}
	if _, err := s.doctors.GetByID(ctx, doctorID); err != nil {
		return nil, wrapNotFound(err, "doctor", doctorID)
	}
	a := &Appointment{
		PatientID:  patientID,
		DoctorID:   doctorID,
		Date:       date,
		Status:     AppointmentStatusBooked,
		Prescribed: false,
		NextDate:   "",
	}
	if err := s.appointments.Add(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// CanBook mirrors the patient dashboard gate: a patient may book only while
// they have no appointment on record at all.
func (s *Service) CanBook(ctx context.Context, patientID int64) (bool, error) {
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return false, wrapNotFound(err, "patient", patientID)
	}
	n, err := s.appointments.CountByPatient(ctx, patientID)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// -- Prescriptions --

// PrescriptionOutcome names what AddPrescription actually touched. Matched
// is false when the prescription was recorded on the patient's log without
// any open appointment to close, a legitimate detached prescription rather
// than a silent no-op.
type PrescriptionOutcome struct {
	Recorded    Prescription `json:"recorded"`
	Matched     bool         `json:"matched"`
	Appointment *Appointment `json:"appointment,omitempty"`
}

// AddPrescription performs two synchronized writes: it always appends to the
// patient's append-only prescription log, then marks the earliest
// unprescribed appointment for the (patient, doctor) pair as prescribed. The
// asymmetry is deliberate: the log entry lands even when no appointment
// matches.
func (s *Service) AddPrescription(ctx context.Context, patientID, doctorID int64, prescription, precautions, nextDate string) (*PrescriptionOutcome, error) {
	if prescription == "" {
		return nil, fmt.Errorf("%w: prescription text is required", ErrValidation)
	}
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, wrapNotFound(err, "patient", patientID)
	}
	if _, err := s.doctors.GetByID(ctx, doctorID); err != nil {
		return nil, wrapNotFound(err, "doctor", doctorID)
	}

	rx := Prescription{
		DoctorID:     doctorID,
		Prescription: prescription,
		Precautions:  precautions,
		NextDate:     nextDate,
	}
	if err := s.patients.AppendPrescription(ctx, patientID, rx); err != nil {
		return nil, err
	}

	appt, err := s.appointments.MarkFirstUnprescribed(ctx, patientID, doctorID, nextDate)
	if err != nil {
		return nil, err
	}
	return &PrescriptionOutcome{
		Recorded:    rx,
		Matched:     appt != nil,
		Appointment: appt,
	}, nil
}

// -- Lab reports --

// AddLabReport stores a new report for the pair. The field shape is decided
// here, at creation time: a patient with no prior reports gets the basic
// panel, any later report keeps the extended stage/bedrest/drugs fields.
func (s *Service) AddLabReport(ctx context.Context, patientID, doctorID int64, values LabValues) (*LabReport, error) {
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, wrapNotFound(err, "patient", patientID)
	}
	if _, err := s.doctors.GetByID(ctx, doctorID); err != nil {
		return nil, wrapNotFound(err, "doctor", doctorID)
	}

	prior, err := s.reports.CountByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	kind := ReportKindFollowup
	if prior == 0 {
		kind = ReportKindFirst
		// First-visit shape carries the basic panel only.
		values.Stage = ""
		values.BedRest = ""
		values.Drugs = ""
	}

	r := &LabReport{
		PatientID: patientID,
		DoctorID:  doctorID,
		Kind:      kind,
		Values:    values,
	}
	if err := s.reports.Add(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// AddPrescriptionToReport attaches the doctor's prescription block to one
// report by its stable id. Lab values stay untouched and report order is
// preserved; repeating the call replaces the block wholesale.
func (s *Service) AddPrescriptionToReport(ctx context.Context, reportID int64, a Annotation) (*LabReport, error) {
	if a.Prescription == "" {
		return nil, fmt.Errorf("%w: prescription text is required", ErrValidation)
	}
	r, err := s.reports.Annotate(ctx, reportID, a)
	if err != nil {
		return nil, wrapNotFound(err, "lab report", reportID)
	}
	return r, nil
}

// -- Queries --

func (s *Service) Doctors(ctx context.Context) ([]*Doctor, error) { return s.doctors.List(ctx) }

func (s *Service) LabAssistants(ctx context.Context) ([]*LabAssistant, error) {
	return s.labAssistants.List(ctx)
}

func (s *Service) Patients(ctx context.Context) ([]*Patient, error) { return s.patients.List(ctx) }

func (s *Service) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) GetDoctor(ctx context.Context, id int64) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) PatientAppointments(ctx context.Context, patientID int64) ([]*Appointment, error) {
	return s.appointments.ListByPatient(ctx, patientID)
}

// DoctorAppointments lists a doctor's appointments, optionally split by
// prescription state the way the doctor dashboard renders new vs existing
// patients. prescribed == nil returns both.
func (s *Service) DoctorAppointments(ctx context.Context, doctorID int64, prescribed *bool) ([]*Appointment, error) {
	all, err := s.appointments.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if prescribed == nil {
		return all, nil
	}
	var out []*Appointment
	for _, a := range all {
		if a.Prescribed == *prescribed {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Service) PatientReports(ctx context.Context, patientID int64) ([]*LabReport, error) {
	return s.reports.ListByPatient(ctx, patientID)
}

func (s *Service) Reports(ctx context.Context) ([]*LabReport, error) { return s.reports.List(ctx) }

func (s *Service) GetReport(ctx context.Context, id int64) (*LabReport, error) {
	return s.reports.GetByID(ctx, id)
}

// ResolveReport returns the report together with its patient and doctor,
// fully resolved for the document formatter.
func (s *Service) ResolveReport(ctx context.Context, reportID int64) (*LabReport, *Patient, *Doctor, error) {
	r, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, nil, nil, wrapNotFound(err, "lab report", reportID)
	}
	p, err := s.patients.GetByID(ctx, r.PatientID)
	if err != nil {
		return nil, nil, nil, wrapNotFound(err, "patient", r.PatientID)
	}
	d, err := s.doctors.GetByID(ctx, r.DoctorID)
	if err != nil {
		return nil, nil, nil, wrapNotFound(err, "doctor", r.DoctorID)
	}
	return r, p, d, nil
}

// wrapNotFound names the entity a missing-row error is about. Any other
// repository failure (connection, scan) passes through unchanged so the
// HTTP layer reports it as a server error, not a 404.
func wrapNotFound(err error, entity string, id int64) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: %s %d", ErrNotFound, entity, id)
	}
	return err
}

func requireFields(fields map[string]string) error {
	for name, v := range fields {
		if v == "" {
			return fmt.Errorf("%w: %s is required", ErrValidation, name)
		}
	}
	return nil
}
