package clinic

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPGRepos returns PostgreSQL-backed implementations of the clinic
// repositories. The external contract is identical to the in-memory store;
// only durability differs.
func NewPGRepos(pool *pgxpool.Pool) Repos {
	return Repos{
		Doctors:       &doctorRepoPG{pool: pool},
		LabAssistants: &labAssistantRepoPG{pool: pool},
		Patients:      &patientRepoPG{pool: pool},
		Appointments:  &appointmentRepoPG{pool: pool},
		Reports:       &labReportRepoPG{pool: pool},
	}
}

// =========== Doctor Repository ===========

type doctorRepoPG struct{ pool *pgxpool.Pool }

const doctorCols = `id, name, hospital, rating, timing, status, username, password, age, gender, contact`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Name, &d.Hospital, &d.Rating, &d.Timing, &d.Status,
		&d.Username, &d.Password, &d.Age, &d.Gender, &d.Contact)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &d, err
}

func (r *doctorRepoPG) Add(ctx context.Context, d *Doctor) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO doctor (name, hospital, rating, timing, status, username, password, age, gender, contact)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id`,
		d.Name, d.Hospital, d.Rating, d.Timing, d.Status,
		d.Username, d.Password, d.Age, d.Gender, d.Contact).Scan(&d.ID)
}

func (r *doctorRepoPG) List(ctx context.Context) ([]*Doctor, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+doctorCols+` FROM doctor ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	return scanDoctor(r.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor WHERE id = $1`, id))
}

func (r *doctorRepoPG) GetByUsername(ctx context.Context, username string) (*Doctor, error) {
	return scanDoctor(r.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor WHERE username = $1 ORDER BY id LIMIT 1`, username))
}

func (r *doctorRepoPG) RemoveAt(ctx context.Context, index int) (bool, error) {
	if index < 0 {
		return false, nil
	}
	// Positional removal: position is defined by id order, matching List.
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM doctor
		WHERE id = (SELECT id FROM doctor ORDER BY id OFFSET $1 LIMIT 1)`, index)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// =========== Lab Assistant Repository ===========

type labAssistantRepoPG struct{ pool *pgxpool.Pool }

const labAssistantCols = `id, name, hospital, rating, timing, username, password, age, gender, contact`

func scanLabAssistant(row pgx.Row) (*LabAssistant, error) {
	var la LabAssistant
	err := row.Scan(&la.ID, &la.Name, &la.Hospital, &la.Rating, &la.Timing,
		&la.Username, &la.Password, &la.Age, &la.Gender, &la.Contact)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &la, err
}

func (r *labAssistantRepoPG) Add(ctx context.Context, la *LabAssistant) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO lab_assistant (name, hospital, rating, timing, username, password, age, gender, contact)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id`,
		la.Name, la.Hospital, la.Rating, la.Timing,
		la.Username, la.Password, la.Age, la.Gender, la.Contact).Scan(&la.ID)
}

func (r *labAssistantRepoPG) List(ctx context.Context) ([]*LabAssistant, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+labAssistantCols+` FROM lab_assistant ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*LabAssistant
	for rows.Next() {
		la, err := scanLabAssistant(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, la)
	}
	return items, rows.Err()
}

func (r *labAssistantRepoPG) GetByUsername(ctx context.Context, username string) (*LabAssistant, error) {
	return scanLabAssistant(r.pool.QueryRow(ctx, `SELECT `+labAssistantCols+` FROM lab_assistant WHERE username = $1 ORDER BY id LIMIT 1`, username))
}

func (r *labAssistantRepoPG) RemoveAt(ctx context.Context, index int) (bool, error) {
	if index < 0 {
		return false, nil
	}
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM lab_assistant
		WHERE id = (SELECT id FROM lab_assistant ORDER BY id OFFSET $1 LIMIT 1)`, index)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// =========== Patient Repository ===========

type patientRepoPG struct{ pool *pgxpool.Pool }

func (r *patientRepoPG) Add(ctx context.Context, p *Patient) error {
	if p.Prescriptions == nil {
		p.Prescriptions = []Prescription{}
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO patient (name, username, age, gender, contact)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id`,
		p.Name, p.Username, p.Age, p.Gender, p.Contact).Scan(&p.ID)
}

func (r *patientRepoPG) List(ctx context.Context) ([]*Patient, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, username, age, gender, contact FROM patient ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.Name, &p.Username, &p.Age, &p.Gender, &p.Contact); err != nil {
			return nil, err
		}
		items = append(items, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range items {
		if err := r.loadPrescriptions(ctx, p); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r *patientRepoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	return r.get(ctx, `SELECT id, name, username, age, gender, contact FROM patient WHERE id = $1`, id)
}

func (r *patientRepoPG) GetByUsername(ctx context.Context, username string) (*Patient, error) {
	return r.get(ctx, `SELECT id, name, username, age, gender, contact FROM patient WHERE username = $1 ORDER BY id LIMIT 1`, username)
}

func (r *patientRepoPG) get(ctx context.Context, query string, arg interface{}) (*Patient, error) {
	var p Patient
	err := r.pool.QueryRow(ctx, query, arg).Scan(&p.ID, &p.Name, &p.Username, &p.Age, &p.Gender, &p.Contact)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadPrescriptions(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// loadPrescriptions fills the patient's log in insertion order.
func (r *patientRepoPG) loadPrescriptions(ctx context.Context, p *Patient) error {
	rows, err := r.pool.Query(ctx, `
		SELECT doctor_id, prescription, precautions, next_date
		FROM prescription WHERE patient_id = $1 ORDER BY id`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	p.Prescriptions = []Prescription{}
	for rows.Next() {
		var rx Prescription
		if err := rows.Scan(&rx.DoctorID, &rx.Prescription, &rx.Precautions, &rx.NextDate); err != nil {
			return err
		}
		p.Prescriptions = append(p.Prescriptions, rx)
	}
	return rows.Err()
}

func (r *patientRepoPG) AppendPrescription(ctx context.Context, patientID int64, rx Prescription) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM patient WHERE id = $1)`, patientID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO prescription (patient_id, doctor_id, prescription, precautions, next_date)
		VALUES ($1,$2,$3,$4,$5)`,
		patientID, rx.DoctorID, rx.Prescription, rx.Precautions, rx.NextDate)
	return err
}

// =========== Appointment Repository ===========

type appointmentRepoPG struct{ pool *pgxpool.Pool }

const appointmentCols = `id, patient_id, doctor_id, appt_date, status, prescribed, next_date`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Date, &a.Status, &a.Prescribed, &a.NextDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *appointmentRepoPG) Add(ctx context.Context, a *Appointment) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO appointment (patient_id, doctor_id, appt_date, status, prescribed, next_date)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id`,
		a.PatientID, a.DoctorID, a.Date, a.Status, a.Prescribed, a.NextDate).Scan(&a.ID)
}

func (r *appointmentRepoPG) list(ctx context.Context, query string, arg int64) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, patientID int64) ([]*Appointment, error) {
	return r.list(ctx, `SELECT `+appointmentCols+` FROM appointment WHERE patient_id = $1 ORDER BY id`, patientID)
}

func (r *appointmentRepoPG) ListByDoctor(ctx context.Context, doctorID int64) ([]*Appointment, error) {
	return r.list(ctx, `SELECT `+appointmentCols+` FROM appointment WHERE doctor_id = $1 ORDER BY id`, doctorID)
}

func (r *appointmentRepoPG) CountByPatient(ctx context.Context, patientID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM appointment WHERE patient_id = $1`, patientID).Scan(&n)
	return n, err
}

func (r *appointmentRepoPG) MarkFirstUnprescribed(ctx context.Context, patientID, doctorID int64, nextDate string) (*Appointment, error) {
	a, err := scanAppointment(r.pool.QueryRow(ctx, `
		UPDATE appointment SET prescribed = TRUE, next_date = $3
		WHERE id = (
			SELECT id FROM appointment
			WHERE patient_id = $1 AND doctor_id = $2 AND NOT prescribed
			ORDER BY id LIMIT 1
		)
		RETURNING `+appointmentCols, patientID, doctorID, nextDate))
	if errors.Is(err, ErrNotFound) {
		// No open appointment for the pair: an outcome, not an error.
		return nil, nil
	}
	return a, err
}

// =========== Lab Report Repository ===========

type labReportRepoPG struct{ pool *pgxpool.Pool }

const labReportCols = `id, patient_id, doctor_id, kind,
	age, sex, albumin, bilirubin, alt, ast, alp, inr, platelets, sodium, creatinine,
	ascites, hepatomegaly, spiders, edema, stage, bedrest, drugs,
	annotated, rx_prescription, rx_precautions, rx_bed_rest, rx_drugs, rx_next_date, created_at`

func scanLabReport(row pgx.Row) (*LabReport, error) {
	var (
		r         LabReport
		annotated bool
		a         Annotation
		createdAt time.Time
	)
	err := row.Scan(&r.ID, &r.PatientID, &r.DoctorID, &r.Kind,
		&r.Values.Age, &r.Values.Sex, &r.Values.Albumin, &r.Values.Bilirubin,
		&r.Values.ALT, &r.Values.AST, &r.Values.ALP, &r.Values.INR,
		&r.Values.Platelets, &r.Values.Sodium, &r.Values.Creatinine,
		&r.Values.Ascites, &r.Values.Hepatomegaly, &r.Values.Spiders, &r.Values.Edema,
		&r.Values.Stage, &r.Values.BedRest, &r.Values.Drugs,
		&annotated, &a.Prescription, &a.Precautions, &a.BedRest, &a.Drugs, &a.NextDate,
		&createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	r.CreatedAt = createdAt
	if annotated {
		r.Annotation = &a
	}
	return &r, nil
}

func (r *labReportRepoPG) Add(ctx context.Context, rep *LabReport) error {
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = time.Now().UTC()
	}
	v := rep.Values
	return r.pool.QueryRow(ctx, `
		INSERT INTO lab_report (patient_id, doctor_id, kind,
			age, sex, albumin, bilirubin, alt, ast, alp, inr, platelets, sodium, creatinine,
			ascites, hepatomegaly, spiders, edema, stage, bedrest, drugs, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
		RETURNING id`,
		rep.PatientID, rep.DoctorID, rep.Kind,
		v.Age, v.Sex, v.Albumin, v.Bilirubin, v.ALT, v.AST, v.ALP, v.INR,
		v.Platelets, v.Sodium, v.Creatinine, v.Ascites, v.Hepatomegaly,
		v.Spiders, v.Edema, v.Stage, v.BedRest, v.Drugs, rep.CreatedAt).Scan(&rep.ID)
}

func (r *labReportRepoPG) list(ctx context.Context, query string, args ...interface{}) ([]*LabReport, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*LabReport
	for rows.Next() {
		rep, err := scanLabReport(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rep)
	}
	return items, rows.Err()
}

func (r *labReportRepoPG) List(ctx context.Context) ([]*LabReport, error) {
	return r.list(ctx, `SELECT `+labReportCols+` FROM lab_report ORDER BY id`)
}

func (r *labReportRepoPG) GetByID(ctx context.Context, id int64) (*LabReport, error) {
	return scanLabReport(r.pool.QueryRow(ctx, `SELECT `+labReportCols+` FROM lab_report WHERE id = $1`, id))
}

func (r *labReportRepoPG) ListByPatient(ctx context.Context, patientID int64) ([]*LabReport, error) {
	return r.list(ctx, `SELECT `+labReportCols+` FROM lab_report WHERE patient_id = $1 ORDER BY id`, patientID)
}

func (r *labReportRepoPG) CountByPatient(ctx context.Context, patientID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM lab_report WHERE patient_id = $1`, patientID).Scan(&n)
	return n, err
}

func (r *labReportRepoPG) Annotate(ctx context.Context, id int64, a Annotation) (*LabReport, error) {
	return scanLabReport(r.pool.QueryRow(ctx, `
		UPDATE lab_report SET annotated = TRUE,
			rx_prescription = $2, rx_precautions = $3, rx_bed_rest = $4, rx_drugs = $5, rx_next_date = $6
		WHERE id = $1
		RETURNING `+labReportCols,
		id, a.Prescription, a.Precautions, a.BedRest, a.Drugs, a.NextDate))
}
