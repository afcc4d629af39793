package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gembotdev/gembot/internal/cache"
	"github.com/gembotdev/gembot/internal/models"
	"github.com/gembotdev/gembot/internal/storage"
	"github.com/gembotdev/gembot/internal/utils"
)

type fakeUploader struct {
	objects map[string][]byte
}

func (u *fakeUploader) Upload(_ context.Context, objectName, _ string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return "", err
	}
	if u.objects == nil {
		u.objects = map[string][]byte{}
	}
	u.objects[objectName] = buf.Bytes()
	return "https://storage.example.com/" + objectName, nil
}

func newExportFixture(t *testing.T, uploader *fakeUploader) (ChatService, *fakeLogRepo) {
	t.Helper()
	repo := &fakeLogRepo{}
	hist := NewHistoryService(cache.NewMemoryCache(), repo, time.Hour, 10, quietLogger())

	// avoid a typed-nil Uploader sneaking past the nil check
	var up storage.Uploader
	if uploader != nil {
		up = uploader
	}
	svc := NewChatService(hist, repo, &fakeSettings{prompt: "p"}, &fakeProvider{}, up, 10, quietLogger())

	seedRow(repo, "u1", models.RoleUser, "hello")
	seedRow(repo, "u1", models.RoleModel, "hi there")
	seedRow(repo, "u1", models.RoleSystem, "llm: upstream status 503")
	seedRow(repo, "u2", models.RoleUser, "not exported")
	return svc, repo
}

func TestExportValidatesArgs(t *testing.T) {
	svc, _ := newExportFixture(t, nil)
	ctx := context.Background()

	_, err := svc.Export(ctx, "", "json", false)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = svc.Export(ctx, "u1", "xml", false)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestExportJSONSkipsDiagnostics(t *testing.T) {
	svc, _ := newExportFixture(t, nil)

	res, err := svc.Export(context.Background(), "u1", "json", false)
	require.NoError(t, err)
	assert.Equal(t, "conversation-u1.json", res.Filename)
	assert.Equal(t, "application/json", res.ContentType)

	var rows []models.ChatLog
	require.NoError(t, json.Unmarshal(res.Data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, models.RoleUser, rows[0].Role)
	assert.Equal(t, models.RoleModel, rows[1].Role)
}

func TestExportCSV(t *testing.T) {
	svc, _ := newExportFixture(t, nil)

	res, err := svc.Export(context.Background(), "u1", "csv", false)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(res.Data)), "\n")
	require.Len(t, lines, 3) // header + 2 conversation rows
	assert.Equal(t, "timestamp,user_id,role,text,token_count", lines[0])
	assert.Contains(t, lines[1], "hello")
	assert.Contains(t, lines[2], "hi there")
}

func TestExportText(t *testing.T) {
	svc, _ := newExportFixture(t, nil)

	res, err := svc.Export(context.Background(), "u1", "text", false)
	require.NoError(t, err)
	assert.Contains(t, string(res.Data), "user: hello")
	assert.Contains(t, string(res.Data), "model: hi there")
	assert.NotContains(t, string(res.Data), "503")
}

func TestExportUpload(t *testing.T) {
	up := &fakeUploader{}
	svc, _ := newExportFixture(t, up)

	res, err := svc.Export(context.Background(), "u1", "text", true)
	require.NoError(t, err)
	assert.Equal(t, "https://storage.example.com/exports/conversation-u1.txt", res.URL)
	assert.Contains(t, up.objects, "exports/conversation-u1.txt")
}

func TestExportUploadUnconfigured(t *testing.T) {
	svc, _ := newExportFixture(t, nil)

	_, err := svc.Export(context.Background(), "u1", "text", true)
	assert.True(t, utils.IsCode(err, utils.CodeConfig))
}
