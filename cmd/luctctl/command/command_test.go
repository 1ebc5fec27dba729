package command

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/luct-report-api/internal/database"
	"github.com/noah-isme/luct-report-api/internal/models"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func setupCLIStore(t *testing.T) string {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "luct.db") + "?_foreign_keys=on"
	t.Setenv("LUCT_JWT_SECRET", "cli-secret")
	t.Setenv("LUCT_DATABASE_DRIVER", "sqlite")
	t.Setenv("LUCT_DATABASE_URL", dsn)
	return dsn
}

func TestMigrateCommand(t *testing.T) {
	setupCLIStore(t)

	out, err := runCLI(t, "migrate")
	require.NoError(t, err)
	require.Contains(t, out, "schema up to date (sqlite)")
}

func TestAuditCommandPrintsNewestFirst(t *testing.T) {
	dsn := setupCLIStore(t)

	db, err := database.ConnectSQLite(dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	events := []models.AuditEvent{
		{ActorID: 1, ActorRole: models.RoleLecturer, Action: models.AuditActionSubmittedReport, Target: "report #1", CreatedAt: base},
		{ActorID: 2, ActorRole: models.RolePRL, Action: models.AuditActionGaveFeedback, Target: "report #1", CreatedAt: base.Add(time.Minute)},
		{ActorID: 3, ActorRole: models.RolePL, Action: models.AuditActionGaveFeedback, Target: "report #1", CreatedAt: base.Add(2 * time.Minute)},
	}
	require.NoError(t, db.Create(&events).Error)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	out, err := runCLI(t, "audit", "--json", "--batch", "1")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	var first models.AuditEvent
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.Equal(t, uint(3), first.ActorID)

	out, err = runCLI(t, "audit", "--role", "prl")
	require.NoError(t, err)
	require.Contains(t, out, "PRL")
	require.Contains(t, out, "gave feedback")
	require.NotContains(t, out, "LECTURER")

	_, err = runCLI(t, "audit", "--role", "dean")
	require.Error(t, err)
}

func TestAggregateCommand(t *testing.T) {
	dsn := setupCLIStore(t)

	db, err := database.ConnectSQLite(dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	ratings := []models.Rating{
		{RaterID: 1, RatedEntity: models.RatedEntityClass, EntityID: 12, Value: 5},
		{RaterID: 2, RatedEntity: models.RatedEntityClass, EntityID: 12, Value: 2},
	}
	require.NoError(t, db.Create(&ratings).Error)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	out, err := runCLI(t, "aggregate", "class", "12")
	require.NoError(t, err)
	require.Contains(t, out, "class #12: average 3.50 over 2 rating(s)")

	_, err = runCLI(t, "aggregate", "course", "12")
	require.Error(t, err)

	_, err = runCLI(t, "aggregate", "class", "zero")
	require.Error(t, err)
}
