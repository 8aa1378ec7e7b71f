package device

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/device"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/employee"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/audit"
)

type ServiceImpl struct {
	repo         device.DeviceRepository
	employeeRepo employee.EmployeeRepository
	auditor      audit.Sink
}

func NewService(repo device.DeviceRepository, employeeRepo employee.EmployeeRepository, auditor audit.Sink) device.Service {
	return &ServiceImpl{repo: repo, employeeRepo: employeeRepo, auditor: auditor}
}

// Register implements device.Service. The claim secret is stored hashed;
// fingerprint uniqueness is enforced by the store.
func (s *ServiceImpl) Register(ctx context.Context, req device.RegisterRequest) (device.Device, error) {
	existing, err := s.repo.GetByFingerprint(ctx, req.Fingerprint)
	if err != nil {
		return device.Device{}, fmt.Errorf("lookup fingerprint: %w", err)
	}
	if existing != nil {
		return device.Device{}, device.ErrDeviceAlreadyClaimed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.ClaimSecret), bcrypt.DefaultCost)
	if err != nil {
		return device.Device{}, fmt.Errorf("hash claim secret: %w", err)
	}

	d := device.Device{
		ID:              uuid.New().String(),
		Fingerprint:     req.Fingerprint,
		Name:            req.Name,
		ClaimSecretHash: string(hash),
		Active:          true,
	}
	created, err := s.repo.Create(ctx, d)
	if err != nil {
		return device.Device{}, fmt.Errorf("create device: %w", err)
	}
	return created, nil
}

// Claim implements device.Service.
func (s *ServiceImpl) Claim(ctx context.Context, req device.ClaimRequest) (device.Device, error) {
	d, err := s.repo.GetByID(ctx, req.DeviceID)
	if err != nil {
		return device.Device{}, err
	}
	if d.Claimed() {
		return device.Device{}, device.ErrDeviceAlreadyClaimed
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return device.Device{}, err
	}
	if !emp.Active || emp.DeletedAt != nil {
		return device.Device{}, employee.ErrEmployeeInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(d.ClaimSecretHash), []byte(req.ClaimSecret)); err != nil {
		return device.Device{}, device.ErrInvalidClaimSecret
	}

	if err := s.repo.Claim(ctx, d.ID, emp.ID); err != nil {
		return device.Device{}, fmt.Errorf("claim device: %w", err)
	}

	s.auditor.Record(ctx, audit.Entry{
		Actor: emp.ID, Action: "device.claim", Entity: "device",
		EntityID: d.ID, Success: true,
		Details: map[string]any{"fingerprint": d.Fingerprint},
	})

	d.EmployeeID = &emp.ID
	return d, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (device.Device, error) {
	return s.repo.GetByID(ctx, id)
}
