package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRegisterNurse_DOB(t *testing.T) {
	f := newFixture(t)
	agency := f.agency()

	cases := []struct {
		name    string
		dob     time.Time
		wantErr bool
	}{
		{"tomorrow", day(1), true},
		{"far future", day(400), true},
		{"today", day(0), false},
		{"adult", time.Date(1985, 1, 31, 0, 0, 0, 0, time.UTC), false},
	}

	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			nurse, err := RegisterNurse(f.ctx, f.db, agency, NewNurseInput{
				FullName:           "Ada Nightingale",
				DOB:                tc.dob,
				RegistrationNumber: "DOB" + string(rune('A'+i)),
			})
			if tc.wantErr {
				require.ErrorIs(t, err, ErrValidation)
				var verr *ValidationError
				require.True(t, errors.As(err, &verr))
				require.Equal(t, "dob", verr.Field)
				return
			}
			require.NoError(t, err)
			require.False(t, nurse.IsApproved)
			require.Equal(t, agency.Agency.ID, nurse.AgencyID)
		})
	}
}

func TestRegisterNurse_RegistrationNumberGloballyUnique(t *testing.T) {
	f := newFixture(t)
	agencyA := f.agency()
	agencyB := f.agency()

	_, err := RegisterNurse(f.ctx, f.db, agencyA, NewNurseInput{
		FullName:           "First Nurse",
		DOB:                time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		RegistrationNumber: "12a3456e",
	})
	require.NoError(t, err)

	_, err = RegisterNurse(f.ctx, f.db, agencyB, NewNurseInput{
		FullName:           "Second Nurse",
		DOB:                time.Date(1991, 1, 1, 0, 0, 0, 0, time.UTC),
		RegistrationNumber: " 12A3456E ",
	})
	require.ErrorIs(t, err, ErrUniqueness)
}

func TestRegisterNurse_RequiredFields(t *testing.T) {
	f := newFixture(t)

	_, err := RegisterNurse(f.ctx, f.db, f.agency(), NewNurseInput{DOB: day(-9000), RegistrationNumber: "X1"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = RegisterNurse(f.ctx, f.db, f.agency(), NewNurseInput{FullName: "No Number", DOB: day(-9000)})
	require.ErrorIs(t, err, ErrValidation)
}

func TestApproveNurse_Idempotent(t *testing.T) {
	f := newFixture(t)
	nurse := f.nurse(f.agency(), false)

	first, err := ApproveNurse(f.ctx, f.db, f.admin(), nurse.ID)
	require.NoError(t, err)
	require.True(t, first.IsApproved)
	require.NotNil(t, first.ApprovedAt)

	freezeClock(t, testNow.Add(24*time.Hour))
	second, err := ApproveNurse(f.ctx, f.db, f.admin(), nurse.ID)
	require.NoError(t, err)
	require.True(t, second.ApprovedAt.Equal(*first.ApprovedAt))
}

func TestListNurses_ScopedToAgency(t *testing.T) {
	f := newFixture(t)
	agency := f.agency()
	approved := f.nurse(agency, true)
	f.nurse(agency, false)
	f.nurse(f.agency(), true)

	all, err := ListNurses(f.ctx, f.db, agency)
	require.NoError(t, err)
	require.Len(t, all, 2)

	bookable, err := ListBookableNurses(f.ctx, f.db, agency)
	require.NoError(t, err)
	require.Len(t, bookable, 1)
	require.Equal(t, approved.ID, bookable[0].ID)

	pending, err := ListPendingNurses(f.ctx, f.db, f.admin())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, agency.Agency.ID, pending[0].Agency.ID)
}
