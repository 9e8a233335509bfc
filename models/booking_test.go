package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type bookingScene struct {
	*fixture
	hospital HospitalPrincipal
	agency   AgencyPrincipal
	nurse    *Nurse
	shift    *Shift
}

func newBookingScene(t *testing.T) *bookingScene {
	f := newFixture(t)
	trust := f.trust("Trust T")
	agency := f.agency()
	f.grant(trust, agency, true)
	hospital := f.hospital(trust)
	return &bookingScene{
		fixture:  f,
		hospital: hospital,
		agency:   agency,
		nurse:    f.nurse(agency, true),
		shift:    f.shift(hospital),
	}
}

func (s *bookingScene) book() *Booking {
	s.t.Helper()
	booking, err := BookShift(s.ctx, s.db, s.agency, s.shift.ID, s.nurse.ID)
	require.NoError(s.t, err)
	return booking
}

func (s *bookingScene) shiftStatus() ShiftStatus {
	s.t.Helper()
	var shift Shift
	require.NoError(s.t, s.db.First(&shift, s.shift.ID).Error)
	return shift.Status
}

func TestBookShift_OpenShift(t *testing.T) {
	s := newBookingScene(t)

	booking := s.book()
	require.False(t, booking.Confirmed)
	require.False(t, booking.Cancelled)
	require.Equal(t, BookingPending, booking.State())
	require.Equal(t, s.agency.Agency.ID, booking.AgencyID)
	require.Equal(t, s.nurse.ID, booking.NurseID)
	require.Equal(t, ShiftBooked, booking.Shift.Status)
	require.Equal(t, ShiftBooked, s.shiftStatus())
}

func TestBookShift_SecondBookingFails(t *testing.T) {
	s := newBookingScene(t)
	s.book()

	_, err := BookShift(s.ctx, s.db, s.agency, s.shift.ID, s.nurse.ID)
	require.ErrorIs(t, err, ErrInvalidState)

	other := s.fixture.nurse(s.agency, true)
	_, err = BookShift(s.ctx, s.db, s.agency, s.shift.ID, other.ID)
	require.ErrorIs(t, err, ErrInvalidState)

	var count int64
	require.NoError(t, s.db.Model(&Booking{}).Where("shift_id = ?", s.shift.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestBookShift_NonOpenShift(t *testing.T) {
	s := newBookingScene(t)
	_, err := CancelShift(s.ctx, s.db, s.hospital, s.shift.ID)
	require.NoError(t, err)

	_, err = BookShift(s.ctx, s.db, s.agency, s.shift.ID, s.nurse.ID)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestBookShift_NurseOfAnotherAgency(t *testing.T) {
	s := newBookingScene(t)
	stranger := s.fixture.nurse(s.fixture.agency(), true)

	_, err := BookShift(s.ctx, s.db, s.agency, s.shift.ID, stranger.ID)
	require.ErrorIs(t, err, ErrPermissionDenied)
	require.Equal(t, ShiftOpen, s.shiftStatus())
}

// Approval is enforced by what ListBookableNurses offers, not by BookShift.
func TestBookShift_DoesNotRecheckNurseApproval(t *testing.T) {
	s := newBookingScene(t)
	unapproved := s.fixture.nurse(s.agency, false)

	booking, err := BookShift(s.ctx, s.db, s.agency, s.shift.ID, unapproved.ID)
	require.NoError(t, err)
	require.Equal(t, unapproved.ID, booking.NurseID)
}

func TestConfirmBooking(t *testing.T) {
	s := newBookingScene(t)
	booking := s.book()

	other := s.fixture.hospital(s.fixture.trust("Elsewhere"))
	_, err := ConfirmBooking(s.ctx, s.db, other, booking.ID)
	require.ErrorIs(t, err, ErrPermissionDenied)

	first, err := ConfirmBooking(s.ctx, s.db, s.hospital, booking.ID)
	require.NoError(t, err)
	require.True(t, first.Confirmed)
	require.NotNil(t, first.ConfirmedAt)
	require.Equal(t, BookingConfirmed, first.State())

	freezeClock(t, testNow.Add(time.Hour))
	second, err := ConfirmBooking(s.ctx, s.db, s.hospital, booking.ID)
	require.NoError(t, err)
	require.True(t, second.ConfirmedAt.Equal(*first.ConfirmedAt))
}

func TestCancelBooking_DoesNotReopenShift(t *testing.T) {
	s := newBookingScene(t)
	booking := s.book()

	cancelled, err := CancelBooking(s.ctx, s.db, s.agency, booking.ID, " nurse unwell ")
	require.NoError(t, err)
	require.True(t, cancelled.Cancelled)
	require.NotNil(t, cancelled.CancelledAt)
	require.Equal(t, "nurse unwell", cancelled.CancellationReason)
	require.Equal(t, BookingCancelled, cancelled.State())
	require.Equal(t, ShiftBooked, s.shiftStatus())

	visible, err := ListAvailableShifts(s.ctx, s.db, s.agency.Agency.ID)
	require.NoError(t, err)
	require.Empty(t, visible)

	freezeClock(t, testNow.Add(time.Hour))
	again, err := CancelBooking(s.ctx, s.db, s.hospital, booking.ID, "different reason")
	require.NoError(t, err)
	require.True(t, again.CancelledAt.Equal(*cancelled.CancelledAt))
	require.Equal(t, "nurse unwell", again.CancellationReason)

	_, err = ConfirmBooking(s.ctx, s.db, s.hospital, booking.ID)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelBooking_Ownership(t *testing.T) {
	s := newBookingScene(t)
	booking := s.book()

	_, err := CancelBooking(s.ctx, s.db, s.fixture.agency(), booking.ID, "")
	require.ErrorIs(t, err, ErrPermissionDenied)

	_, err = CancelBooking(s.ctx, s.db, s.fixture.admin(), booking.ID, "")
	require.ErrorIs(t, err, ErrPermissionDenied)

	_, err = CancelBooking(s.ctx, s.db, s.hospital, booking.ID, "ward closed")
	require.NoError(t, err)
}

func TestListBookings(t *testing.T) {
	s := newBookingScene(t)
	booking := s.book()

	agencyBookings, err := ListAgencyBookings(s.ctx, s.db, s.agency)
	require.NoError(t, err)
	require.Len(t, agencyBookings, 1)
	require.Equal(t, booking.ID, agencyBookings[0].ID)
	require.Equal(t, s.hospital.Hospital.ID, agencyBookings[0].Shift.Hospital.ID)

	hospitalBookings, err := ListHospitalBookings(s.ctx, s.db, s.hospital)
	require.NoError(t, err)
	require.Len(t, hospitalBookings, 1)
	require.Equal(t, s.agency.Agency.ID, hospitalBookings[0].Agency.ID)

	empty, err := ListAgencyBookings(s.ctx, s.db, s.fixture.agency())
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestBookingJSON_OmitsUnloadedAssociations(t *testing.T) {
	s := newBookingScene(t)
	s.book()

	bookings, err := ListAgencyBookings(s.ctx, s.db, s.agency)
	require.NoError(t, err)
	require.Len(t, bookings, 1)

	raw, err := json.Marshal(bookings[0])
	require.NoError(t, err)
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	require.Contains(t, fields, "shift")
	require.Contains(t, fields, "nurse")
	require.NotContains(t, fields, "agency")
}
