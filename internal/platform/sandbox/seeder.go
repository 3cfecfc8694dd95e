// Package sandbox seeds the clinical record store with the demo dataset the
// dashboards expect: two doctors and one registered patient. It is used by
// the seed command against PostgreSQL and, behind a config flag, at startup
// with the in-memory store.
package sandbox

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Adi-aygd/liver-cirrhosis/internal/domain/clinic"
)

func demoDoctors() []*clinic.Doctor {
	return []*clinic.Doctor{
		{
			Name: "Dr. Priya Sharma", Hospital: "City Hospital", Rating: 4.8,
			Timing: "10:00 AM - 2:00 PM", Status: clinic.DoctorStatusAvailable,
			Username: "priya", Password: "password",
			Age: "40", Gender: "Female", Contact: "9999999999",
		},
		{
			Name: "Dr. Rajesh Kumar", Hospital: "Metro Clinic", Rating: 4.6,
			Timing: "2:00 PM - 6:00 PM", Status: clinic.DoctorStatusAvailable,
			Username: "rajesh", Password: "password",
			Age: "45", Gender: "Male", Contact: "8888888888",
		},
	}
}

func demoPatients() []*clinic.Patient {
	return []*clinic.Patient{
		{
			Name: "Aditya Verma", Username: "aditya_v",
			Age: 35, Gender: "Male", Contact: "9876543210",
		},
	}
}

// Seed loads the demo dataset through the service so every record passes the
// same validation as live intake. It is a no-op when doctors already exist,
// so restarting a seeded server never duplicates the data.
func Seed(ctx context.Context, svc *clinic.Service, log zerolog.Logger) error {
	existing, err := svc.Doctors(ctx)
	if err != nil {
		return fmt.Errorf("checking existing doctors: %w", err)
	}
	if len(existing) > 0 {
		log.Info().Int("doctors", len(existing)).Msg("store already seeded, skipping")
		return nil
	}

	for _, d := range demoDoctors() {
		if err := svc.AddDoctor(ctx, d); err != nil {
			return fmt.Errorf("seeding doctor %q: %w", d.Name, err)
		}
	}
	for _, p := range demoPatients() {
		if err := svc.RegisterPatient(ctx, p); err != nil {
			return fmt.Errorf("seeding patient %q: %w", p.Name, err)
		}
	}
	log.Info().
		Int("doctors", len(demoDoctors())).
		Int("patients", len(demoPatients())).
		Msg("demo data seeded")
	return nil
}
