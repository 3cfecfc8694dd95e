package clinic

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMemRepoAssignsSequentialIDs(t *testing.T) {
	repos := NewMemRepos()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		d := &Doctor{Name: "D", Hospital: "H", Rating: 4, Timing: "9-5", Username: "u", Password: "p", Age: "40", Gender: "F", Contact: "1"}
		if err := repos.Doctors.Add(ctx, d); err != nil {
			t.Fatalf("add: %v", err)
		}
		if d.ID != int64(i) {
			t.Errorf("expected id %d, got %d", i, d.ID)
		}
	}
}

func TestMemRepoIDsSurviveRemoval(t *testing.T) {
	repos := NewMemRepos()
	ctx := context.Background()

	a := &Doctor{Name: "A", Hospital: "H", Rating: 4, Timing: "9-5", Username: "a", Password: "p", Age: "40", Gender: "F", Contact: "1"}
	b := &Doctor{Name: "B", Hospital: "H", Rating: 4, Timing: "9-5", Username: "b", Password: "p", Age: "40", Gender: "F", Contact: "1"}
	_ = repos.Doctors.Add(ctx, a)
	_ = repos.Doctors.Add(ctx, b)

	if _, err := repos.Doctors.RemoveAt(ctx, 0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	c := &Doctor{Name: "C", Hospital: "H", Rating: 4, Timing: "9-5", Username: "c", Password: "p", Age: "40", Gender: "F", Contact: "1"}
	_ = repos.Doctors.Add(ctx, c)
	// IDs never recycle, even after removals.
	if c.ID != 3 {
		t.Errorf("expected id 3 for third doctor ever added, got %d", c.ID)
	}
}

func TestMemRepoReturnsCopies(t *testing.T) {
	repos := NewMemRepos()
	ctx := context.Background()

	p := &Patient{Name: "Arun", Username: "arun", Age: 40, Gender: "M", Contact: "1"}
	if err := repos.Patients.Add(ctx, p); err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := repos.Patients.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.Name = "Mutated"
	got.Prescriptions = append(got.Prescriptions, Prescription{Prescription: "stray"})

	again, err := repos.Patients.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if again.Name != "Arun" || len(again.Prescriptions) != 0 {
		t.Errorf("store state leaked through a returned copy: %+v", again)
	}
}

func TestMemReportRepoAnnotateCopies(t *testing.T) {
	repos := NewMemRepos()
	ctx := context.Background()

	r := &LabReport{PatientID: 1, DoctorID: 1, Kind: ReportKindFirst}
	if err := repos.Reports.Add(ctx, r); err != nil {
		t.Fatalf("add: %v", err)
	}
	got, err := repos.Reports.Annotate(ctx, r.ID, Annotation{Prescription: "X"})
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}
	got.Annotation.Prescription = "tampered"

	again, err := repos.Reports.GetByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.Annotation.Prescription != "X" {
		t.Errorf("annotation block leaked: %+v", again.Annotation)
	}
}

func TestMarkFirstUnprescribedNoMatch(t *testing.T) {
	repos := NewMemRepos()
	ctx := context.Background()

	a, err := repos.Appointments.MarkFirstUnprescribed(ctx, 1, 1, "2026-09-15")
	if err != nil {
		t.Fatalf("expected no error on empty store, got %v", err)
	}
	if a != nil {
		t.Errorf("expected nil appointment, got %+v", a)
	}
}

func TestMarkFirstUnprescribedScopedToPair(t *testing.T) {
	repos := NewMemRepos()
	ctx := context.Background()

	other := &Appointment{PatientID: 1, DoctorID: 2, Date: "2026-09-01", Status: AppointmentStatusBooked}
	mine := &Appointment{PatientID: 1, DoctorID: 1, Date: "2026-09-02", Status: AppointmentStatusBooked}
	_ = repos.Appointments.Add(ctx, other)
	_ = repos.Appointments.Add(ctx, mine)

	got, err := repos.Appointments.MarkFirstUnprescribed(ctx, 1, 1, "next")
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if got == nil || got.ID != mine.ID {
		t.Fatalf("expected appointment %d, got %+v", mine.ID, got)
	}

	list, _ := repos.Appointments.ListByDoctor(ctx, 2)
	if list[0].Prescribed {
		t.Error("another doctor's appointment must stay open")
	}
}

func TestMemRepoNotFound(t *testing.T) {
	repos := NewMemRepos()
	ctx := context.Background()

	if _, err := repos.Doctors.GetByID(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("doctors: expected ErrNotFound, got %v", err)
	}
	if _, err := repos.Patients.GetByUsername(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("patients: expected ErrNotFound, got %v", err)
	}
	if _, err := repos.Reports.Annotate(ctx, 9, Annotation{Prescription: "X"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("reports: expected ErrNotFound, got %v", err)
	}
	if err := repos.Patients.AppendPrescription(ctx, 9, Prescription{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("append: expected ErrNotFound, got %v", err)
	}
}

func TestMemRepoConcurrentWrites(t *testing.T) {
	repos := NewMemRepos()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := &Patient{Name: "P", Username: "p", Age: 30, Gender: "M", Contact: "1"}
			if err := repos.Patients.Add(ctx, p); err != nil {
				t.Errorf("add: %v", err)
			}
		}()
	}
	wg.Wait()

	list, err := repos.Patients.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 20 {
		t.Fatalf("expected 20 patients, got %d", len(list))
	}
	seen := make(map[int64]bool)
	for _, p := range list {
		if seen[p.ID] {
			t.Fatalf("duplicate id %d under concurrency", p.ID)
		}
		seen[p.ID] = true
	}
}
