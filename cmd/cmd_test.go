package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"purchase-manager/core/database"
	"purchase-manager/core/entitlement"
	"purchase-manager/core/kvstore"
	"purchase-manager/core/platform"
	"purchase-manager/core/verifier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func execute(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetArgs(args)
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetArgs(nil)
	})
	err := RootCmd.Execute()
	return out.String(), err
}

func useSQLite(t *testing.T) string {
	name := filepath.Join(t.TempDir(), "cmd.db")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_NAME", name)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("STORE_BACKEND", "database")
	return name
}

func TestMigrateCommand(t *testing.T) {
	useSQLite(t)

	out, err := execute(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema is up to date")
}

func TestBalanceCommand(t *testing.T) {
	useSQLite(t)

	out, err := execute(t, "balance")
	require.NoError(t, err)
	assert.Equal(t, "gachaStone: 0\n", out)
}

func TestBalanceCommand_InvalidBackend(t *testing.T) {
	useSQLite(t)
	t.Setenv("STORE_BACKEND", "etcd")

	_, err := execute(t, "balance")
	assert.ErrorContains(t, err, "unsupported store backend")
}

func TestCatalogPublishCommand_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err := execute(t, "catalog", "publish", path)
	assert.ErrorContains(t, err, "failed to parse catalog file")
}

// seedDrift journals a 500 stone purchase but persists a balance of 1000.
func seedDrift(t *testing.T, name string) {
	t.Helper()
	ctx := context.Background()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: name})
	require.NoError(t, err)
	require.NoError(t, platform.Migrate(db))
	require.NoError(t, kvstore.Migrate(db))

	tx, err := verifier.NewHMACSigner("cmd-secret", "").Sign(entitlement.PurchaseRecord{
		ID:          "tx-1",
		ProductID:   "consumable.gachaStone.500",
		ProductKind: entitlement.KindConsumable,
		Quantity:    1,
	})
	require.NoError(t, err)
	require.NoError(t, platform.NewJournal(db, zap.NewNop()).Ingest(ctx, tx))
	require.NoError(t, kvstore.NewGormStore(db, "purchase-manager:").Set(ctx, "gachaStone", 1000))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func resetReconcileFlags(t *testing.T) {
	t.Cleanup(func() {
		syncBalance, dryRunBalance, yesConfirm = false, false, false
		RootCmd.SetIn(nil)
	})
}

func TestReconcileBalanceCommand(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		input string
		want  string
	}{
		{name: "Report only", args: nil, want: "gachaStone: 1000\n"},
		{name: "Dry run", args: []string{"--sync", "--dry-run"}, want: "gachaStone: 1000\n"},
		{name: "Declined", args: []string{"--sync"}, input: "no\n", want: "gachaStone: 1000\n"},
		{name: "Confirmed by prompt", args: []string{"--sync"}, input: "yes\n", want: "gachaStone: 500\n"},
		{name: "Auto-confirmed", args: []string{"--sync", "--yes"}, want: "gachaStone: 500\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seedDrift(t, useSQLite(t))
			t.Setenv("VERIFIER_SECRET", "cmd-secret")
			resetReconcileFlags(t)
			RootCmd.SetIn(strings.NewReader(tt.input))

			_, err := execute(t, append([]string{"reconcile", "balance"}, tt.args...)...)
			require.NoError(t, err)
			syncBalance, dryRunBalance, yesConfirm = false, false, false

			out, err := execute(t, "balance")
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}
