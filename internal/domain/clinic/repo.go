package clinic

import "context"

// Repositories return defensive copies: mutating a returned value never
// changes stored state. All writes go through explicit methods so the same
// contract can be served by the in-memory store or PostgreSQL.

type DoctorRepository interface {
	Add(ctx context.Context, d *Doctor) error
	List(ctx context.Context) ([]*Doctor, error)
	GetByID(ctx context.Context, id int64) (*Doctor, error)
	GetByUsername(ctx context.Context, username string) (*Doctor, error)
	// RemoveAt deletes the doctor at the given list position. It reports
	// false, without error, when the index is out of range. Positions are
	// ephemeral: any concurrent intake or removal invalidates them.
	RemoveAt(ctx context.Context, index int) (bool, error)
}

type LabAssistantRepository interface {
	Add(ctx context.Context, la *LabAssistant) error
	List(ctx context.Context) ([]*LabAssistant, error)
	GetByUsername(ctx context.Context, username string) (*LabAssistant, error)
	RemoveAt(ctx context.Context, index int) (bool, error)
}

type PatientRepository interface {
	Add(ctx context.Context, p *Patient) error
	List(ctx context.Context) ([]*Patient, error)
	GetByID(ctx context.Context, id int64) (*Patient, error)
	GetByUsername(ctx context.Context, username string) (*Patient, error)
	// AppendPrescription appends to the patient's prescription log.
	// The log is append-only; there is no update or delete.
	AppendPrescription(ctx context.Context, patientID int64, rx Prescription) error
}

type AppointmentRepository interface {
	Add(ctx context.Context, a *Appointment) error
	ListByPatient(ctx context.Context, patientID int64) ([]*Appointment, error)
	ListByDoctor(ctx context.Context, doctorID int64) ([]*Appointment, error)
	CountByPatient(ctx context.Context, patientID int64) (int, error)
	// MarkFirstUnprescribed marks the earliest unprescribed appointment for
	// the (patient, doctor) pair as prescribed and records the follow-up
	// date. It returns (nil, nil) when no open appointment exists; that
	// case is an outcome, not an error.
	MarkFirstUnprescribed(ctx context.Context, patientID, doctorID int64, nextDate string) (*Appointment, error)
}

type LabReportRepository interface {
	Add(ctx context.Context, r *LabReport) error
	List(ctx context.Context) ([]*LabReport, error)
	GetByID(ctx context.Context, id int64) (*LabReport, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*LabReport, error)
	CountByPatient(ctx context.Context, patientID int64) (int, error)
	// Annotate replaces the report's prescription block wholesale, leaving
	// every lab value and the report's id and order untouched. Annotating
	// an already annotated report overwrites the previous block.
	Annotate(ctx context.Context, id int64, a Annotation) (*LabReport, error)
}

// Repos bundles the five collections of one clinical record store. A Repos
// value is constructed once in main and handed to every surface; tests build
// isolated instances.
type Repos struct {
	Doctors       DoctorRepository
	LabAssistants LabAssistantRepository
	Patients      PatientRepository
	Appointments  AppointmentRepository
	Reports       LabReportRepository
}
