package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockledger/internal/config"
	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/repository/blob"
	"github.com/mamadbah2/stockledger/internal/service/auth"
)

func localConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Ledger:      config.LedgerConfig{Backend: config.BackendXLSX, File: filepath.Join(dir, "inventory.xlsx"), Sheet: "Inventory", StrictLoad: true},
		Attachments: config.AttachmentConfig{Driver: config.DriverFS, Dir: filepath.Join(dir, "attachments")},
		Admin:       config.AdminConfig{Username: "boss", Password: "pw"},
		Digest:      config.DigestConfig{Timezone: "UTC"},
	}
}

func TestBuild_LocalBackends(t *testing.T) {
	ctx := context.Background()
	a, err := Build(ctx, localConfig(t), nil)
	require.NoError(t, err)
	defer func() { assert.NoError(t, a.Close(ctx)) }()

	assert.Equal(t, blob.DriverFilesystem, a.Archive.Driver())

	id, err := a.Auth.Authenticate(ctx, "boss", "pw", models.ScopeAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.ScopeAdmin, id.Scope)

	records, err := a.Engine.ListInventory(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestBuild_NoAdminConfigured(t *testing.T) {
	ctx := context.Background()
	cfg := localConfig(t)
	cfg.Admin = config.AdminConfig{}

	a, err := Build(ctx, cfg, nil)
	require.NoError(t, err)
	_, err = a.Auth.Authenticate(ctx, "boss", "pw", models.ScopeAdmin)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestOpenTable_UnknownBackend(t *testing.T) {
	cfg := localConfig(t)
	cfg.Ledger.Backend = "csv"
	_, err := OpenTable(context.Background(), cfg, nil)
	assert.Error(t, err)
}
