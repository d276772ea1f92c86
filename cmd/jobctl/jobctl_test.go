package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/deckgen-api/internal/config"
	"github.com/phrazzld/deckgen-api/internal/domain"
	"github.com/phrazzld/deckgen-api/internal/platform/sqlite"
	"github.com/phrazzld/deckgen-api/internal/service/auth"
)

const testSecret = "thisisasecretkeythatis32charslong!!"

// setupEnv points configuration at a fresh SQLite file with Redis disabled.
func setupEnv(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.db")
	for k, v := range map[string]string{
		"DECKGEN_DATABASE_DRIVER":  "sqlite",
		"DECKGEN_DATABASE_URL":     path,
		"DECKGEN_AUTH_JWT_SECRET":  testSecret,
		"DECKGEN_REDIS_ENABLED":    "false",
		"DECKGEN_QUEUE_DRIVER":     "memory",
		"DECKGEN_SERVER_LOG_LEVEL": "error",
	} {
		t.Setenv(k, v)
	}
	return path
}

func runJobctl(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root, e := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	require.NoError(t, e.close())
	return out.String(), err
}

// insertStaleJob writes a PROCESSING job last touched two hours ago.
func insertStaleJob(t *testing.T, path, principal string) string {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	then := time.Now().Add(-2 * time.Hour).UTC()
	job := &domain.Job{
		ID:          uuid.NewString(),
		PrincipalID: principal,
		Prompt:      "Explain quantum computing basics",
		SlideCount:  10,
		Style:       domain.StyleModern,
		Status:      domain.JobStatusProcessing,
		CreatedAt:   then,
		UpdatedAt:   then,
	}
	require.NoError(t, sqlite.NewJobStore(db, nil).Create(ctx, job))
	return job.ID
}

func TestMigrateCommands(t *testing.T) {
	setupEnv(t)

	out, err := runJobctl(t, "migrate", "up")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "OK "), out)

	out, err = runJobctl(t, "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "no pending migrations")

	out, err = runJobctl(t, "migrate", "status")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "applied"), out)

	out, err = runJobctl(t, "migrate", "down")
	require.NoError(t, err)
	assert.Contains(t, out, "DOWN 00002")
}

func TestTokenCommand(t *testing.T) {
	setupEnv(t)

	out, err := runJobctl(t, "token", "principal-7")
	require.NoError(t, err)

	svc, err := auth.NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(context.Background(), strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "principal-7", claims.PrincipalID())
}

func TestReapFailsStaleJobs(t *testing.T) {
	path := setupEnv(t)
	_, err := runJobctl(t, "migrate", "up")
	require.NoError(t, err)

	out, err := runJobctl(t, "list", "principal-1")
	require.NoError(t, err)
	assert.Contains(t, out, "no jobs for principal-1")

	id := insertStaleJob(t, path, "principal-1")

	out, err = runJobctl(t, "reap", "--older-than", "1h")
	require.NoError(t, err)
	assert.Equal(t, "examined=1 settled=0 failed=1 skipped=0\n", out)

	out, err = runJobctl(t, "status", id, "--stored")
	require.NoError(t, err)
	assert.Equal(t, "FAILED\n", out)

	out, err = runJobctl(t, "reap", "--older-than", "1h")
	require.NoError(t, err)
	assert.Equal(t, "examined=0 settled=0 failed=0 skipped=0\n", out, "failed jobs stay failed")

	out, err = runJobctl(t, "list", "principal-1")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "FAILED")
}

func TestStatusUnknownJob(t *testing.T) {
	setupEnv(t)
	_, err := runJobctl(t, "migrate", "up")
	require.NoError(t, err)

	_, err = runJobctl(t, "status", "unknown-id")
	assert.Error(t, err)
}
