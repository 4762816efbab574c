package service

import (
	"fmt"
	"os"
	"testing"

	"go-sarpras-api/internal/model"
	"go-sarpras-api/internal/ws"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB connects to the database named by TEST_DATABASE_URL, migrates
// the schema and wipes all rows. Tests are skipped when the variable is not
// set so the suite stays runnable without infrastructure.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database test")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "failed to connect to test database")

	require.NoError(t, db.AutoMigrate(
		&model.Material{},
		&model.StockTransaction{},
		&model.FixedAsset{},
		&model.AssetBorrow{},
		&model.Notification{},
		&model.PurchaseRequest{},
		&model.PurchaseRequestItem{},
		&model.User{},
		&model.Privilege{},
		&model.Role{},
	))

	cleanupTables(t, db)
	t.Cleanup(func() { cleanupTables(t, db) })

	return db
}

// cleanupTables deletes rows child-first so foreign keys never complain.
func cleanupTables(t *testing.T, db *gorm.DB) {
	t.Helper()
	tables := []string{
		"stock_transactions",
		"notifications",
		"purchase_request_items",
		"purchase_requests",
		"asset_borrows",
		"fixed_assets",
		"materials",
		"user_privileges",
		"users",
		"role_privileges",
		"roles",
	}
	for _, table := range tables {
		db.Exec(fmt.Sprintf("DELETE FROM %s", table))
	}
}

// testHub returns a running hub with no connected clients, so broadcasts
// are drained and never block the services under test.
func testHub() *ws.Hub {
	hub := ws.NewHub(nil)
	go hub.Run()
	return hub
}

func seedUser(t *testing.T, db *gorm.DB, email string, roleID *uint) *model.User {
	t.Helper()
	user := &model.User{
		Email:    email,
		FullName: "Test User " + email,
		RoleID:   roleID,
		IsActive: true,
	}
	require.NoError(t, user.SetPassword("secret123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedRole(t *testing.T, db *gorm.DB, code string) *model.Role {
	t.Helper()
	role := &model.Role{Code: code, Name: code}
	require.NoError(t, db.Create(role).Error)
	return role
}

// seedAdmin creates an ADMIN role plus a user holding it, the audience for
// low-stock alerts.
func seedAdmin(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()
	role := seedRole(t, db, model.RoleAdmin)
	return seedUser(t, db, "admin@test.local", &role.ID)
}

func actorFor(user *model.User) Actor {
	return Actor{ID: user.ID, Name: user.FullName, Email: user.Email}
}
