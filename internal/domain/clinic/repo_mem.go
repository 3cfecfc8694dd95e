package clinic

import (
	"context"
	"sync"
	"time"
)

// memState is the process-local clinical record store. One mutex serialises
// every read and write: the store has a single-writer discipline even when
// exposed to concurrent HTTP callers.
type memState struct {
	mu sync.Mutex

	doctors       []*Doctor
	labAssistants []*LabAssistant
	patients      []*Patient
	appointments  []*Appointment
	reports       []*LabReport

	nextDoctorID       int64
	nextLabAssistantID int64
	nextPatientID      int64
	nextAppointmentID  int64
	nextReportID       int64
}

// NewMemRepos builds an isolated in-memory store and returns repositories
// sharing its state. Data lives for the process lifetime only.
func NewMemRepos() Repos {
	s := &memState{
		nextDoctorID:       1,
		nextLabAssistantID: 1,
		nextPatientID:      1,
		nextAppointmentID:  1,
		nextReportID:       1,
	}
	return Repos{
		Doctors:       &memDoctorRepo{s},
		LabAssistants: &memLabAssistantRepo{s},
		Patients:      &memPatientRepo{s},
		Appointments:  &memAppointmentRepo{s},
		Reports:       &memReportRepo{s},
	}
}

// -- Doctors --

type memDoctorRepo struct{ s *memState }

func (r *memDoctorRepo) Add(_ context.Context, d *Doctor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d.ID = r.s.nextDoctorID
	r.s.nextDoctorID++
	stored := *d
	r.s.doctors = append(r.s.doctors, &stored)
	return nil
}

func (r *memDoctorRepo) List(_ context.Context) ([]*Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*Doctor, len(r.s.doctors))
	for i, d := range r.s.doctors {
		c := *d
		out[i] = &c
	}
	return out, nil
}

func (r *memDoctorRepo) GetByID(_ context.Context, id int64) (*Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.doctors {
		if d.ID == id {
			c := *d
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memDoctorRepo) GetByUsername(_ context.Context, username string) (*Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.doctors {
		if d.Username == username {
			c := *d
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memDoctorRepo) RemoveAt(_ context.Context, index int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if index < 0 || index >= len(r.s.doctors) {
		return false, nil
	}
	r.s.doctors = append(r.s.doctors[:index], r.s.doctors[index+1:]...)
	return true, nil
}

// -- Lab assistants --

type memLabAssistantRepo struct{ s *memState }

func (r *memLabAssistantRepo) Add(_ context.Context, la *LabAssistant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	la.ID = r.s.nextLabAssistantID
	r.s.nextLabAssistantID++
	stored := *la
	r.s.labAssistants = append(r.s.labAssistants, &stored)
	return nil
}

func (r *memLabAssistantRepo) List(_ context.Context) ([]*LabAssistant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*LabAssistant, len(r.s.labAssistants))
	for i, la := range r.s.labAssistants {
		c := *la
		out[i] = &c
	}
	return out, nil
}

func (r *memLabAssistantRepo) GetByUsername(_ context.Context, username string) (*LabAssistant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, la := range r.s.labAssistants {
		if la.Username == username {
			c := *la
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memLabAssistantRepo) RemoveAt(_ context.Context, index int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if index < 0 || index >= len(r.s.labAssistants) {
		return false, nil
	}
	r.s.labAssistants = append(r.s.labAssistants[:index], r.s.labAssistants[index+1:]...)
	return true, nil
}

// -- Patients --

type memPatientRepo struct{ s *memState }

func (r *memPatientRepo) Add(_ context.Context, p *Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.nextPatientID
	r.s.nextPatientID++
	if p.Prescriptions == nil {
		p.Prescriptions = []Prescription{}
	}
	r.s.patients = append(r.s.patients, p.Clone())
	return nil
}

func (r *memPatientRepo) List(_ context.Context) ([]*Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*Patient, len(r.s.patients))
	for i, p := range r.s.patients {
		out[i] = p.Clone()
	}
	return out, nil
}

func (r *memPatientRepo) GetByID(_ context.Context, id int64) (*Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.patients {
		if p.ID == id {
			return p.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memPatientRepo) GetByUsername(_ context.Context, username string) (*Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.patients {
		if p.Username == username {
			return p.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memPatientRepo) AppendPrescription(_ context.Context, patientID int64, rx Prescription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.patients {
		if p.ID == patientID {
			p.Prescriptions = append(p.Prescriptions, rx)
			return nil
		}
	}
	return ErrNotFound
}

// -- Appointments --

type memAppointmentRepo struct{ s *memState }

func (r *memAppointmentRepo) Add(_ context.Context, a *Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = r.s.nextAppointmentID
	r.s.nextAppointmentID++
	stored := *a
	r.s.appointments = append(r.s.appointments, &stored)
	return nil
}

func (r *memAppointmentRepo) ListByPatient(_ context.Context, patientID int64) ([]*Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*Appointment
	for _, a := range r.s.appointments {
		if a.PatientID == patientID {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memAppointmentRepo) ListByDoctor(_ context.Context, doctorID int64) ([]*Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*Appointment
	for _, a := range r.s.appointments {
		if a.DoctorID == doctorID {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memAppointmentRepo) CountByPatient(_ context.Context, patientID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, a := range r.s.appointments {
		if a.PatientID == patientID {
			n++
		}
	}
	return n, nil
}

func (r *memAppointmentRepo) MarkFirstUnprescribed(_ context.Context, patientID, doctorID int64, nextDate string) (*Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	// Insertion order is id order, so the first slice match is the earliest.
	for _, a := range r.s.appointments {
		if a.PatientID == patientID && a.DoctorID == doctorID && !a.Prescribed {
			a.Prescribed = true
			a.NextDate = nextDate
			c := *a
			return &c, nil
		}
	}
	return nil, nil
}

// -- Lab reports --

type memReportRepo struct{ s *memState }

func (r *memReportRepo) Add(_ context.Context, rep *LabReport) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rep.ID = r.s.nextReportID
	r.s.nextReportID++
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = time.Now().UTC()
	}
	r.s.reports = append(r.s.reports, rep.Clone())
	return nil
}

func (r *memReportRepo) List(_ context.Context) ([]*LabReport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*LabReport, len(r.s.reports))
	for i, rep := range r.s.reports {
		out[i] = rep.Clone()
	}
	return out, nil
}

func (r *memReportRepo) GetByID(_ context.Context, id int64) (*LabReport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rep := range r.s.reports {
		if rep.ID == id {
			return rep.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memReportRepo) ListByPatient(_ context.Context, patientID int64) ([]*LabReport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*LabReport
	for _, rep := range r.s.reports {
		if rep.PatientID == patientID {
			out = append(out, rep.Clone())
		}
	}
	return out, nil
}

func (r *memReportRepo) CountByPatient(_ context.Context, patientID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, rep := range r.s.reports {
		if rep.PatientID == patientID {
			n++
		}
	}
	return n, nil
}

func (r *memReportRepo) Annotate(_ context.Context, id int64, a Annotation) (*LabReport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rep := range r.s.reports {
		if rep.ID == id {
			block := a
			rep.Annotation = &block
			return rep.Clone(), nil
		}
	}
	return nil, ErrNotFound
}
