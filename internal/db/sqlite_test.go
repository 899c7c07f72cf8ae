package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/mealsnap/internal/models"
	embeddedmigrations "github.com/terraincognita07/mealsnap/migrations"
	"gorm.io/gorm"
)

func openTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := OpenSQLite(filepath.Join(t.TempDir(), "mealsnap-test.db"))
	require.NoError(t, err, "open sqlite")
	sqlDB, err := database.DB()
	require.NoError(t, err, "open sql db")
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return database
}

func createTestUser(t *testing.T, database *gorm.DB, email string) models.User {
	t.Helper()

	user := models.User{
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, database.Create(&user).Error, "create user %s", email)
	return user
}

func TestOpenSQLiteAppliesEmbeddedMigrations(t *testing.T) {
	t.Parallel()

	database := openTestDatabase(t)

	migrations, err := readMigrations(embeddedmigrations.Files)
	require.NoError(t, err, "read migrations")
	require.GreaterOrEqual(t, len(migrations), 2)

	var applied []string
	require.NoError(t, database.Raw(`SELECT version FROM schema_migrations ORDER BY version`).Scan(&applied).Error)
	require.Len(t, applied, len(migrations))
	for index, migration := range migrations {
		assert.Equal(t, migration.Version, applied[index], "migration at position %d", index)
	}

	exists, err := columnAlreadyAdded(database, "ALTER TABLE meals ADD COLUMN adjustments TEXT")
	require.NoError(t, err, "inspect meals columns")
	assert.True(t, exists, "meals.adjustments column must exist")
}

func TestOpenSQLiteIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mealsnap-reopen.db")
	for attempt := 0; attempt < 2; attempt++ {
		database, err := OpenSQLite(path)
		require.NoError(t, err, "open sqlite attempt %d", attempt)
		sqlDB, err := database.DB()
		require.NoError(t, err)
		_ = sqlDB.Close()
	}
}

func TestOpenSQLiteRejectsCaseInsensitiveDuplicateEmail(t *testing.T) {
	t.Parallel()

	database := openTestDatabase(t)
	createTestUser(t, database, "Someone@Example.com")

	duplicate := models.User{Email: "someone@example.com", PasswordHash: "hash", CreatedAt: time.Now().UTC()}
	assert.Error(t, database.Create(&duplicate).Error, "duplicate normalized email insert must fail")
}

func TestSplitStatements(t *testing.T) {
	t.Parallel()

	statements := splitStatements("CREATE TABLE a (id INTEGER);\n\n ;CREATE INDEX b ON a(id);")
	require.Len(t, statements, 2)
	assert.Equal(t, "CREATE INDEX b ON a(id)", statements[1])
}
