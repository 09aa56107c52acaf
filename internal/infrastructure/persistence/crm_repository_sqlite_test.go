package persistence

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
)

func setupCRMTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.UserModel{},
		&models.ContactModel{},
		&models.DealModel{},
	))
	return db
}

func TestGormContactRepositorySQLiteClearsOptionalFields(t *testing.T) {
	db := setupCRMTestDB(t)
	repo := NewGormContactRepository(db)
	ctx := context.Background()

	contact, err := crm.NewContact(crm.ContactTypeClient, "Acme", "Jane", "Doe", "jane@acme.test")
	require.NoError(t, err)
	phone := "555-0100"
	contact.SetPhone(&phone)
	notes := "met at the expo"
	contact.SetNotes(&notes)
	require.NoError(t, repo.Save(ctx, contact))

	loaded, err := repo.FindByID(ctx, contact.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Phone)
	loadedVersion := loaded.Version

	loaded.SetPhone(nil)
	loaded.SetNotes(nil)
	require.NoError(t, repo.SaveWithLock(ctx, loaded, loadedVersion))

	found, err := repo.FindByID(ctx, contact.ID)
	require.NoError(t, err)
	assert.Nil(t, found.Phone)
	assert.Nil(t, found.Notes)
}

func TestGormDealRepositorySQLitePersistsZeroValues(t *testing.T) {
	db := setupCRMTestDB(t)
	repo := NewGormDealRepository(db)
	ctx := context.Background()

	deal, err := crm.NewDeal("Annual license renewal", decimal.NewFromInt(12000), 40)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, deal))

	loaded, err := repo.FindByID(ctx, deal.ID)
	require.NoError(t, err)
	require.Equal(t, 40, loaded.Probability)
	loadedVersion := loaded.Version

	require.NoError(t, loaded.ChangeProbability(0))
	require.NoError(t, repo.SaveWithLock(ctx, loaded, loadedVersion))

	found, err := repo.FindByID(ctx, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, found.Probability)
	assert.Equal(t, crm.StageLead, found.Stage)
}
