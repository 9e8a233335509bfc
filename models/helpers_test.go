package models

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(All()...), "failed to auto-migrate")
	freezeClock(t, testNow)
	return db
}

func freezeClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := Now
	Now = func() time.Time { return at }
	t.Cleanup(func() { Now = prev })
}

func day(offset int) time.Time {
	return Today().AddDate(0, 0, offset)
}

type fixture struct {
	t   *testing.T
	db  *gorm.DB
	ctx context.Context
	seq int
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, db: setupTestDB(t), ctx: context.Background()}
}

func (f *fixture) next() int {
	f.seq++
	return f.seq
}

func (f *fixture) admin() AdminPrincipal {
	f.t.Helper()
	user, err := CreateUser(f.ctx, f.db, NewUserInput{
		Email:    fmt.Sprintf("admin%d@nhs.test", f.next()),
		Password: "admin-password",
		Role:     RoleAdmin,
	})
	require.NoError(f.t, err)
	return AdminPrincipal{User: user}
}

func (f *fixture) trust(name string) *NHSTrust {
	f.t.Helper()
	trust, err := CreateTrust(f.ctx, f.db, f.admin(), NewTrustInput{Name: name, Region: "London"})
	require.NoError(f.t, err)
	return trust
}

func (f *fixture) hospital(trust *NHSTrust) HospitalPrincipal {
	f.t.Helper()
	n := f.next()
	hospital, err := CreateHospital(f.ctx, f.db, f.admin(), NewHospitalInput{
		TrustID:  trust.ID,
		Email:    fmt.Sprintf("hospital%d@nhs.test", n),
		Password: "hospital-password",
		Name:     fmt.Sprintf("Hospital %d", n),
	})
	require.NoError(f.t, err)
	return f.resolve(hospital.UserID).(HospitalPrincipal)
}

func (f *fixture) agency() AgencyPrincipal {
	f.t.Helper()
	n := f.next()
	agency, err := RegisterAgency(f.ctx, f.db, NewAgencyInput{
		Email:    fmt.Sprintf("agency%d@staffing.test", n),
		Password: "agency-password",
		Name:     fmt.Sprintf("Agency %d", n),
	})
	require.NoError(f.t, err)
	return f.resolve(agency.UserID).(AgencyPrincipal)
}

func (f *fixture) resolve(userID uint) Principal {
	f.t.Helper()
	p, err := ResolvePrincipal(f.ctx, f.db, userID)
	require.NoError(f.t, err)
	return p
}

func (f *fixture) grant(trust *NHSTrust, agency AgencyPrincipal, approve bool) *TrustAgencyAccess {
	f.t.Helper()
	grant, err := RequestAccess(f.ctx, f.db, agency, trust.ID, "")
	require.NoError(f.t, err)
	if approve {
		grant, err = ApproveGrant(f.ctx, f.db, f.admin(), grant.ID)
		require.NoError(f.t, err)
	}
	return grant
}

func (f *fixture) nurse(agency AgencyPrincipal, approve bool) *Nurse {
	f.t.Helper()
	n := f.next()
	nurse, err := RegisterNurse(f.ctx, f.db, agency, NewNurseInput{
		FullName:           fmt.Sprintf("Nurse %d", n),
		DOB:                time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC),
		RegistrationNumber: fmt.Sprintf("NMC%06d", n),
		Specialty:          "ICU",
	})
	require.NoError(f.t, err)
	if approve {
		nurse, err = ApproveNurse(f.ctx, f.db, f.admin(), nurse.ID)
		require.NoError(f.t, err)
	}
	return nurse
}

func (f *fixture) shift(hospital HospitalPrincipal) *Shift {
	f.t.Helper()
	shift, err := CreateShift(f.ctx, f.db, hospital, NewShiftInput{
		Ward:              "Ward 7",
		SpecialtyRequired: "ICU",
		PONumber:          fmt.Sprintf("PO-%d", f.next()),
		ShiftDate:         day(2),
		ShiftTime:         "07:30",
		DurationHours:     12,
		RatePerHour:       42.5,
	})
	require.NoError(f.t, err)
	return shift
}

func shiftIDs(shifts []Shift) []uint {
	ids := make([]uint, 0, len(shifts))
	for _, s := range shifts {
		ids = append(ids, s.ID)
	}
	return ids
}
