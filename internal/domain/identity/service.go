package identity

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Adi-aygd/liver-cirrhosis/internal/domain/clinic"
	"github.com/Adi-aygd/liver-cirrhosis/internal/platform/auth"
)

// Roles a session token can carry. The admin surface has no stored identity
// in this demo and does not log in.
const (
	RolePatient      = "patient"
	RoleDoctor       = "doctor"
	RoleLabAssistant = "lab"
)

// ErrInvalidCredentials covers unknown usernames and wrong passwords alike,
// so a login probe can't distinguish the two.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Session is what a successful login returns to the caller.
type Session struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	ID    int64  `json:"id"`
	Name  string `json:"name"`
}

// Service resolves role logins against the clinical record store. Doctor and
// lab credentials are the plaintext intake values; patients identify by
// username alone, matching the demo UI.
type Service struct {
	doctors       clinic.DoctorRepository
	labAssistants clinic.LabAssistantRepository
	patients      clinic.PatientRepository
	signer        *auth.Signer
}

func NewService(r clinic.Repos, signer *auth.Signer) *Service {
	return &Service{
		doctors:       r.Doctors,
		labAssistants: r.LabAssistants,
		patients:      r.Patients,
		signer:        signer,
	}
}

func (s *Service) Login(ctx context.Context, role, username, password string) (*Session, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", clinic.ErrValidation)
	}

	var (
		id   int64
		name string
	)
	switch role {
	case RoleDoctor:
		d, err := s.doctors.GetByUsername(ctx, username)
		if err != nil || d.Password != password {
			return nil, ErrInvalidCredentials
		}
		id, name = d.ID, d.Name
	case RoleLabAssistant:
		la, err := s.labAssistants.GetByUsername(ctx, username)
		if err != nil || la.Password != password {
			return nil, ErrInvalidCredentials
		}
		id, name = la.ID, la.Name
	case RolePatient:
		p, err := s.patients.GetByUsername(ctx, username)
		if err != nil {
			return nil, ErrInvalidCredentials
		}
		id, name = p.ID, p.Name
	default:
		return nil, fmt.Errorf("%w: unknown role %q", clinic.ErrValidation, role)
	}

	token, err := s.signer.Sign(strconv.FormatInt(id, 10), role, name)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, Role: role, ID: id, Name: name}, nil
}
