package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUploadDocument_ExpiryMustBeStrictlyFuture(t *testing.T) {
	f := newFixture(t)
	agency := f.agency()
	nurse := f.nurse(agency, false)

	for _, offset := range []int{-30, -1, 0} {
		_, err := UploadDocument(f.ctx, f.db, agency, nurse.ID, NewDocumentInput{
			DocumentType: DocumentDBSCheck,
			FileURL:      "https://files.test/dbs.pdf",
			ExpiryDate:   day(offset),
		})
		require.ErrorIs(t, err, ErrValidation, "offset %d", offset)
	}

	doc, err := UploadDocument(f.ctx, f.db, agency, nurse.ID, NewDocumentInput{
		DocumentType: DocumentDBSCheck,
		FileURL:      "https://files.test/dbs.pdf",
		ExpiryDate:   day(1),
	})
	require.NoError(t, err)
	require.False(t, doc.Verified)
	require.Equal(t, nurse.ID, doc.NurseID)
}

func TestUploadDocument_TodayIgnoresTimeOfDay(t *testing.T) {
	f := newFixture(t)
	agency := f.agency()
	nurse := f.nurse(agency, false)

	lateToday := Today().Add(23 * time.Hour)
	_, err := UploadDocument(f.ctx, f.db, agency, nurse.ID, NewDocumentInput{
		DocumentType: DocumentRightToWork,
		FileURL:      "https://files.test/rtw.pdf",
		ExpiryDate:   lateToday,
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestUploadDocument_Rejections(t *testing.T) {
	f := newFixture(t)
	agency := f.agency()
	nurse := f.nurse(agency, false)

	_, err := UploadDocument(f.ctx, f.db, agency, nurse.ID, NewDocumentInput{
		DocumentType: "passport_photo",
		FileURL:      "https://files.test/x.pdf",
		ExpiryDate:   day(10),
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = UploadDocument(f.ctx, f.db, f.agency(), nurse.ID, NewDocumentInput{
		DocumentType: DocumentReference,
		FileURL:      "https://files.test/ref.pdf",
		ExpiryDate:   day(10),
	})
	require.ErrorIs(t, err, ErrPermissionDenied)

	_, err = UploadDocument(f.ctx, f.db, agency, 9999, NewDocumentInput{
		DocumentType: DocumentReference,
		FileURL:      "https://files.test/ref.pdf",
		ExpiryDate:   day(10),
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestVerifyDocument_Idempotent(t *testing.T) {
	f := newFixture(t)
	agency := f.agency()
	nurse := f.nurse(agency, false)
	doc, err := UploadDocument(f.ctx, f.db, agency, nurse.ID, NewDocumentInput{
		DocumentType: DocumentNMCRegistration,
		FileURL:      "https://files.test/nmc.pdf",
		ExpiryDate:   day(365),
	})
	require.NoError(t, err)

	admin := f.admin()
	first, err := VerifyDocument(f.ctx, f.db, admin, doc.ID)
	require.NoError(t, err)
	require.True(t, first.Verified)
	require.NotNil(t, first.VerifiedAt)
	require.Equal(t, admin.UserID(), *first.VerifiedByID)

	freezeClock(t, testNow.Add(time.Hour))
	second, err := VerifyDocument(f.ctx, f.db, f.admin(), doc.ID)
	require.NoError(t, err)
	require.True(t, second.VerifiedAt.Equal(*first.VerifiedAt))
	require.Equal(t, admin.UserID(), *second.VerifiedByID)

	docs, err := ListNurseDocuments(f.ctx, f.db, agency, nurse.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
}

func TestExpiringDocuments_Window(t *testing.T) {
	f := newFixture(t)
	agency := f.agency()
	nurse := f.nurse(agency, false)

	upload := func(offset int) *NurseDocument {
		doc, err := UploadDocument(f.ctx, f.db, agency, nurse.ID, NewDocumentInput{
			DocumentType: DocumentMandatoryTraining,
			FileURL:      "https://files.test/training.pdf",
			ExpiryDate:   day(offset),
		})
		require.NoError(t, err)
		return doc
	}
	inOne := upload(1)
	inThirty := upload(30)
	upload(31)

	docs, err := ExpiringDocuments(f.ctx, f.db, Today(), 30)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, inOne.ID, docs[0].ID)
	require.Equal(t, inThirty.ID, docs[1].ID)
	require.Equal(t, agency.Agency.ContactEmail, docs[0].Nurse.Agency.ContactEmail)

	// The day a document expires it is no longer reported.
	later, err := ExpiringDocuments(f.ctx, f.db, day(1), 30)
	require.NoError(t, err)
	require.Len(t, later, 2)
	require.NotContains(t, []uint{later[0].ID, later[1].ID}, inOne.ID)

	_, err = ExpiringDocuments(f.ctx, f.db, Today(), -1)
	require.ErrorIs(t, err, ErrValidation)
}
