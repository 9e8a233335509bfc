package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/meinhoongagan/nhs-staffing/config"
	"github.com/meinhoongagan/nhs-staffing/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(&config.Config{
		DBDriver:   "sqlite",
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "mysql"})
	require.ErrorContains(t, err, "unsupported database driver")
}

func TestSeed_DefaultFixtureIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	data, err := ParseSeed(nil)
	require.NoError(t, err)
	require.NoError(t, Seed(ctx, db, data))
	require.NoError(t, Seed(ctx, db, data))

	var users, trusts, hospitals, agencies int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.NHSTrust{}).Count(&trusts).Error)
	require.NoError(t, db.Model(&models.Hospital{}).Count(&hospitals).Error)
	require.NoError(t, db.Model(&models.Agency{}).Count(&agencies).Error)
	require.EqualValues(t, 4, users)
	require.EqualValues(t, 2, trusts)
	require.EqualValues(t, 2, hospitals)
	require.EqualValues(t, 1, agencies)

	var agency models.Agency
	require.NoError(t, db.Take(&agency).Error)
	approved, err := models.ListApprovedTrusts(ctx, db, agency.ID)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	require.Equal(t, "Manchester University NHS Foundation Trust", approved[0].Name)
}

func TestSeed_UnknownTrust(t *testing.T) {
	db := openTestDB(t)

	data, err := ParseSeed([]byte(`
admins:
  - email: root@nhs.test
    password: pw
agencies:
  - name: Lost Agency
    email: lost@agency.test
    password: pw
    approved_trusts: [Nowhere Trust]
`))
	require.NoError(t, err)
	require.ErrorContains(t, Seed(context.Background(), db, data), "unknown trust")

	var agencies int64
	require.NoError(t, db.Model(&models.Agency{}).Count(&agencies).Error)
	require.Zero(t, agencies)
}

func TestParseSeed_Malformed(t *testing.T) {
	_, err := ParseSeed([]byte("admins: [unclosed"))
	require.Error(t, err)
}
