package employee

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/employee"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/audit"
)

type fakeRepo struct {
	employees map[string]employee.Employee
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	emp, ok := f.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (f *fakeRepo) ListActive(context.Context) ([]employee.Employee, error) {
	return nil, nil
}

func (f *fakeRepo) SetHomeLocation(_ context.Context, id string, lat, lon float64, radiusMeters int) error {
	emp := f.employees[id]
	emp.HomeLatitude = &lat
	emp.HomeLongitude = &lon
	emp.HomeRadiusMeters = &radiusMeters
	f.employees[id] = emp
	return nil
}

type nopAudit struct{}

func (nopAudit) Record(context.Context, audit.Entry) {}

func TestSetHomeLocationOnce(t *testing.T) {
	repo := &fakeRepo{employees: map[string]employee.Employee{
		"emp-1": {ID: "emp-1", Active: true},
	}}
	svc := NewService(repo, nopAudit{})
	ctx := context.Background()

	require.NoError(t, svc.SetHomeLocation(ctx, "emp-1", -6.2, 106.8, 100))

	emp, err := svc.Get(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, emp.HomePoint())
	assert.Equal(t, 100, emp.HomePoint().RadiusMeters)

	// Second attempt is rejected; the point is immutable from the
	// employee side.
	err = svc.SetHomeLocation(ctx, "emp-1", -6.3, 106.9, 50)
	assert.ErrorIs(t, err, employee.ErrHomeLocationAlreadySet)
}

func TestSetHomeLocationInactiveEmployee(t *testing.T) {
	repo := &fakeRepo{employees: map[string]employee.Employee{
		"emp-1": {ID: "emp-1", Active: false},
	}}
	svc := NewService(repo, nopAudit{})

	err := svc.SetHomeLocation(context.Background(), "emp-1", -6.2, 106.8, 100)
	assert.ErrorIs(t, err, employee.ErrEmployeeInactive)
}

func TestSetHomeLocationUnknownEmployee(t *testing.T) {
	repo := &fakeRepo{employees: map[string]employee.Employee{}}
	svc := NewService(repo, nopAudit{})

	err := svc.SetHomeLocation(context.Background(), "missing", -6.2, 106.8, 100)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}
