package sandbox

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Adi-aygd/liver-cirrhosis/internal/domain/clinic"
)

func TestSeed(t *testing.T) {
	svc := clinic.NewService(clinic.NewMemRepos())
	if err := Seed(context.Background(), svc, zerolog.Nop()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	doctors, err := svc.Doctors(context.Background())
	if err != nil {
		t.Fatalf("list doctors: %v", err)
	}
	if len(doctors) != 2 {
		t.Fatalf("expected 2 seeded doctors, got %d", len(doctors))
	}
	if doctors[0].Name != "Dr. Priya Sharma" || doctors[0].Status != clinic.DoctorStatusAvailable {
		t.Errorf("unexpected first doctor %+v", doctors[0])
	}

	patients, err := svc.Patients(context.Background())
	if err != nil {
		t.Fatalf("list patients: %v", err)
	}
	if len(patients) != 1 || patients[0].Username != "aditya_v" {
		t.Errorf("unexpected patients %+v", patients)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	svc := clinic.NewService(clinic.NewMemRepos())
	for i := 0; i < 2; i++ {
		if err := Seed(context.Background(), svc, zerolog.Nop()); err != nil {
			t.Fatalf("seed run %d: %v", i+1, err)
		}
	}
	doctors, err := svc.Doctors(context.Background())
	if err != nil {
		t.Fatalf("list doctors: %v", err)
	}
	if len(doctors) != 2 {
		t.Errorf("second seed run duplicated doctors: got %d", len(doctors))
	}
}
