package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Adi-aygd/liver-cirrhosis/internal/domain/clinic"
	"github.com/Adi-aygd/liver-cirrhosis/internal/domain/identity"
	"github.com/Adi-aygd/liver-cirrhosis/internal/domain/staging"
	"github.com/Adi-aygd/liver-cirrhosis/internal/platform/auth"
	"github.com/Adi-aygd/liver-cirrhosis/internal/platform/middleware"
	"github.com/Adi-aygd/liver-cirrhosis/internal/platform/report"
	"github.com/Adi-aygd/liver-cirrhosis/internal/platform/sandbox"
	"github.com/rs/zerolog"
)

// newServer wires the full API surface on the in-memory store, the same way
// the serve command does, including the seeded demo dataset.
func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	repos := clinic.NewMemRepos()
	clinicSvc := clinic.NewService(repos)
	if err := sandbox.Seed(context.Background(), clinicSvc, zerolog.Nop()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	signer := auth.NewSigner("integration-secret", time.Minute)

	e := echo.New()
	e.Use(middleware.RequestID())
	apiV1 := e.Group("/api/v1")
	clinic.NewHandler(clinicSvc, report.NewRenderer("Liver Care Clinic")).RegisterRoutes(apiV1)
	identity.NewHandler(identity.NewService(repos, signer)).RegisterRoutes(apiV1)
	staging.NewHandler(staging.NewService()).RegisterRoutes(apiV1)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

// TestFullClinicFlow walks the demo scenario end to end: the seeded patient
// logs in, books with a seeded doctor, the lab records two reports, the
// doctor prescribes against the appointment and annotates the follow-up
// report, and the patient downloads the printable document.
func TestFullClinicFlow(t *testing.T) {
	srv := newServer(t)

	// Seeded data is visible through the API.
	status, raw := call(t, srv, http.MethodGet, "/api/v1/doctors", nil)
	if status != http.StatusOK {
		t.Fatalf("list doctors: %d %s", status, raw)
	}
	page := decode[struct {
		Data  []clinic.Doctor `json:"data"`
		Total int             `json:"total"`
	}](t, raw)
	if page.Total != 2 {
		t.Fatalf("expected 2 seeded doctors, got %d", page.Total)
	}
	doctorID := page.Data[0].ID

	// Patient login by username.
	status, raw = call(t, srv, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"role": "patient", "username": "aditya_v",
	})
	if status != http.StatusOK {
		t.Fatalf("patient login: %d %s", status, raw)
	}
	session := decode[identity.Session](t, raw)
	if session.Token == "" {
		t.Fatal("expected a session token")
	}
	patientID := session.ID

	// Fresh patient can book, and booking closes the gate.
	status, raw = call(t, srv, http.MethodGet, fmt.Sprintf("/api/v1/patients/%d/can-book", patientID), nil)
	if status != http.StatusOK || !decode[map[string]bool](t, raw)["can_book"] {
		t.Fatalf("expected open booking gate: %d %s", status, raw)
	}
	status, raw = call(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/patients/%d/appointments", patientID), map[string]any{
		"doctor_id": doctorID, "date": "2026-09-01",
	})
	if status != http.StatusCreated {
		t.Fatalf("book: %d %s", status, raw)
	}
	appt := decode[clinic.Appointment](t, raw)
	status, raw = call(t, srv, http.MethodGet, fmt.Sprintf("/api/v1/patients/%d/can-book", patientID), nil)
	if status != http.StatusOK || decode[map[string]bool](t, raw)["can_book"] {
		t.Fatalf("expected closed booking gate: %d %s", status, raw)
	}

	// Lab records a first report; extended fields are dropped.
	status, raw = call(t, srv, http.MethodPost, "/api/v1/lab/reports", map[string]any{
		"patient_id": patientID, "doctor_id": doctorID,
		"values": map[string]string{
			"age": "35", "sex": "M", "albumin": "3.1", "bilirubin": "2.4",
			"alt": "58", "ast": "72", "alp": "190", "inr": "1.6",
			"platelets": "140", "sodium": "134", "creatinine": "1.1",
			"ascites": "0", "hepatomegaly": "1", "spiders": "0", "edema": "0",
			"stage": "2", "bedrest": "yes", "drugs": "diuretics",
		},
	})
	if status != http.StatusCreated {
		t.Fatalf("first report: %d %s", status, raw)
	}
	first := decode[clinic.LabReport](t, raw)
	if first.Kind != clinic.ReportKindFirst || first.Values.Stage != "" {
		t.Fatalf("expected trimmed first-visit report, got %+v", first)
	}

	// Second report for the same patient is a follow-up and keeps them.
	status, raw = call(t, srv, http.MethodPost, "/api/v1/lab/reports", map[string]any{
		"patient_id": patientID, "doctor_id": doctorID,
		"values": map[string]string{
			"age": "35", "sex": "M", "albumin": "3.0", "bilirubin": "2.6",
			"stage": "2", "bedrest": "yes", "drugs": "diuretics",
		},
	})
	if status != http.StatusCreated {
		t.Fatalf("followup report: %d %s", status, raw)
	}
	followup := decode[clinic.LabReport](t, raw)
	if followup.Kind != clinic.ReportKindFollowup || followup.Values.Stage != "2" {
		t.Fatalf("expected extended follow-up report, got %+v", followup)
	}

	// Doctor prescribes: log entry plus the open appointment closes.
	status, raw = call(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/doctors/%d/prescriptions", doctorID), map[string]any{
		"patient_id": patientID, "prescription": "Low sodium diet",
		"precautions": "No alcohol", "next_date": "2026-09-15",
	})
	if status != http.StatusCreated {
		t.Fatalf("prescribe: %d %s", status, raw)
	}
	outcome := decode[clinic.PrescriptionOutcome](t, raw)
	if !outcome.Matched || outcome.Appointment == nil || outcome.Appointment.ID != appt.ID {
		t.Fatalf("expected appointment %d closed, got %+v", appt.ID, outcome)
	}

	// Doctor annotates the follow-up report.
	status, raw = call(t, srv, http.MethodPut, fmt.Sprintf("/api/v1/lab/reports/%d/prescription", followup.ID), map[string]string{
		"prescription": "Continue diuretics", "bed_rest": "2 weeks", "next_date": "2026-10-01",
	})
	if status != http.StatusOK {
		t.Fatalf("annotate: %d %s", status, raw)
	}
	annotated := decode[clinic.LabReport](t, raw)
	if !annotated.Annotated() || annotated.ID != followup.ID || annotated.Values.Bilirubin != "2.6" {
		t.Fatalf("annotation broke the report: %+v", annotated)
	}

	// The patient sees both reports in order with stable ids.
	status, raw = call(t, srv, http.MethodGet, fmt.Sprintf("/api/v1/patients/%d/reports", patientID), nil)
	if status != http.StatusOK {
		t.Fatalf("patient reports: %d %s", status, raw)
	}
	reports := decode[[]clinic.LabReport](t, raw)
	if len(reports) != 2 || reports[0].ID != first.ID || reports[1].ID != followup.ID {
		t.Fatalf("report order not stable: %+v", reports)
	}

	// Printable document resolves the full triple.
	status, raw = call(t, srv, http.MethodGet, fmt.Sprintf("/api/v1/lab/reports/%d/document", followup.ID), nil)
	if status != http.StatusOK {
		t.Fatalf("document: %d %s", status, raw)
	}
	doc := string(raw)
	for _, want := range []string{"Aditya Verma", "Continue diuretics", "Liver Care Clinic"} {
		if !bytes.Contains(raw, []byte(want)) {
			t.Errorf("document missing %q:\n%s", want, doc)
		}
	}

	// Staging estimate for the follow-up panel.
	status, raw = call(t, srv, http.MethodPost, "/api/v1/predict/followup", map[string]any{
		"Age": 35.0, "Sex": "M", "Albumin": 3.0, "Bilirubin": 2.6,
		"ALT": 58.0, "AST": 72.0, "ALP": 190.0, "INR": 1.6,
		"Platelets": 140.0, "Sodium": 134.0, "Creatinine": 1.1,
		"Ascites": 0, "Hepatomegaly": 1, "Spiders": 0, "Edema": 0,
		"previous_stage": 2, "bed_rest": 1, "drugs": 1,
	})
	if status != http.StatusOK {
		t.Fatalf("predict: %d %s", status, raw)
	}
	pred := decode[staging.Prediction](t, raw)
	if pred.PredictedStage == "" || len(pred.StageProbabilities) != 4 {
		t.Fatalf("unexpected prediction %+v", pred)
	}
}

// TestDoctorLoginAndRoster checks the seeded doctor credentials and the
// admin removal semantics over HTTP.
func TestDoctorLoginAndRoster(t *testing.T) {
	srv := newServer(t)

	status, raw := call(t, srv, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"role": "doctor", "username": "priya", "password": "password",
	})
	if status != http.StatusOK {
		t.Fatalf("doctor login: %d %s", status, raw)
	}

	status, _ = call(t, srv, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"role": "doctor", "username": "priya", "password": "wrong",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", status)
	}

	// Removing position 0 leaves the second seeded doctor.
	status, _ = call(t, srv, http.MethodDelete, "/api/v1/admin/doctors/0", nil)
	if status != http.StatusNoContent {
		t.Fatalf("remove doctor: %d", status)
	}
	status, raw = call(t, srv, http.MethodGet, "/api/v1/doctors", nil)
	if status != http.StatusOK {
		t.Fatalf("list doctors: %d", status)
	}
	page := decode[struct {
		Data []clinic.Doctor `json:"data"`
	}](t, raw)
	if len(page.Data) != 1 || page.Data[0].Username != "rajesh" {
		t.Fatalf("unexpected roster after removal: %+v", page.Data)
	}
}
