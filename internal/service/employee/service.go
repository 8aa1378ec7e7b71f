package employee

import (
	"context"
	"fmt"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/employee"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/audit"
)

type ServiceImpl struct {
	repo    employee.EmployeeRepository
	auditor audit.Sink
}

func NewService(repo employee.EmployeeRepository, auditor audit.Sink) employee.Service {
	return &ServiceImpl{repo: repo, auditor: auditor}
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (employee.Employee, error) {
	return s.repo.GetByID(ctx, id)
}

// SetHomeLocation implements employee.Service.
func (s *ServiceImpl) SetHomeLocation(ctx context.Context, id string, lat, lon float64, radiusMeters int) error {
	emp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !emp.Active || emp.DeletedAt != nil {
		return employee.ErrEmployeeInactive
	}
	if emp.HomePoint() != nil {
		return employee.ErrHomeLocationAlreadySet
	}

	if err := s.repo.SetHomeLocation(ctx, id, lat, lon, radiusMeters); err != nil {
		return fmt.Errorf("set home location: %w", err)
	}

	s.auditor.Record(ctx, audit.Entry{
		Actor: id, Action: "employee.set_home_location", Entity: "employee",
		EntityID: id, Success: true,
		Details: map[string]any{"radius_m": radiusMeters},
	})
	return nil
}
