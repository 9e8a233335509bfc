package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRequestAccess_CreatesUnapprovedGrant(t *testing.T) {
	f := newFixture(t)
	trust := f.trust("Barts Health")
	agency := f.agency()

	grant, err := RequestAccess(f.ctx, f.db, agency, trust.ID, "  covering winter pressures ")
	require.NoError(t, err)
	require.False(t, grant.Approved)
	require.Nil(t, grant.ApprovedAt)
	require.Equal(t, "covering winter pressures", grant.Notes)
	require.Equal(t, trust.ID, grant.TrustID)
	require.Equal(t, agency.Agency.ID, grant.AgencyID)
}

func TestRequestAccess_DuplicatePair(t *testing.T) {
	f := newFixture(t)
	trust := f.trust("Barts Health")
	agency := f.agency()
	f.grant(trust, agency, true)

	_, err := RequestAccess(f.ctx, f.db, agency, trust.ID, "again")
	require.ErrorIs(t, err, ErrDuplicateGrant)

	// A different agency may still ask for the same trust.
	_, err = RequestAccess(f.ctx, f.db, f.agency(), trust.ID, "")
	require.NoError(t, err)
}

func TestRequestAccess_UnknownTrust(t *testing.T) {
	f := newFixture(t)

	_, err := RequestAccess(f.ctx, f.db, f.agency(), 9999, "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestApproveGrant_Idempotent(t *testing.T) {
	f := newFixture(t)
	grant := f.grant(f.trust("Guy's and St Thomas'"), f.agency(), false)
	admin := f.admin()

	first, err := ApproveGrant(f.ctx, f.db, admin, grant.ID)
	require.NoError(t, err)
	require.True(t, first.Approved)
	require.NotNil(t, first.ApprovedAt)
	require.Equal(t, admin.UserID(), *first.ApprovedByID)

	freezeClock(t, testNow.Add(3*time.Hour))
	second, err := ApproveGrant(f.ctx, f.db, f.admin(), grant.ID)
	require.NoError(t, err)
	require.True(t, second.ApprovedAt.Equal(*first.ApprovedAt))
	require.Equal(t, *first.ApprovedByID, *second.ApprovedByID)
}

func TestApproveGrant_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := ApproveGrant(f.ctx, f.db, f.admin(), 42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListApprovedTrusts_OnlyApprovedGrants(t *testing.T) {
	f := newFixture(t)
	approved := f.trust("Approved Trust")
	requested := f.trust("Requested Trust")
	f.trust("Untouched Trust")
	agency := f.agency()
	f.grant(approved, agency, true)
	f.grant(requested, agency, false)

	trusts, err := ListApprovedTrusts(f.ctx, f.db, agency.Agency.ID)
	require.NoError(t, err)
	require.Len(t, trusts, 1)
	require.Equal(t, approved.ID, trusts[0].ID)

	ids, err := ListApprovedTrustIDs(f.ctx, f.db, agency.Agency.ID)
	require.NoError(t, err)
	require.Equal(t, []uint{approved.ID}, ids)

	other, err := ListApprovedTrustIDs(f.ctx, f.db, f.agency().Agency.ID)
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestListGrants_Filter(t *testing.T) {
	f := newFixture(t)
	trust := f.trust("Trust")
	agencyA := f.agency()
	agencyB := f.agency()
	f.grant(trust, agencyA, true)
	f.grant(trust, agencyB, false)

	pending := false
	grants, err := ListGrants(f.ctx, f.db, f.admin(), GrantFilter{Approved: &pending})
	require.NoError(t, err)
	require.Len(t, grants, 1)
	require.Equal(t, agencyB.Agency.ID, grants[0].AgencyID)
	require.Equal(t, "Trust", grants[0].Trust.Name)

	all, err := ListGrants(f.ctx, f.db, f.admin(), GrantFilter{TrustID: trust.ID})
	require.NoError(t, err)
	require.Len(t, all, 2)

	own, err := ListAgencyGrants(f.ctx, f.db, agencyA)
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.True(t, own[0].Approved)
}
