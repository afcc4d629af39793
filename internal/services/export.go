package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gembotdev/gembot/internal/models"
	"github.com/gembotdev/gembot/internal/utils"
)

// ExportResult is a rendered conversation export. URL is set only when
// the rendering was uploaded.
type ExportResult struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
	URL         string `json:"url,omitempty"`
}

func (s *chatService) Export(ctx context.Context, userID, format string, upload bool) (*ExportResult, error) {
	const op = "ChatService.Export"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	switch format {
	case "json", "csv", "text":
	default:
		return nil, utils.E(utils.CodeInvalidArgument, op, "format must be json, csv, or text", nil)
	}

	rows, err := s.logs.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to read conversation log", err)
	}

	// Diagnostic rows are internal; exports carry the conversation only.
	conv := rows[:0]
	for _, row := range rows {
		if row.Role != models.RoleSystem {
			conv = append(conv, row)
		}
	}

	res, err := renderExport(userID, format, conv)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to render export", err)
	}

	if upload {
		if s.uploader == nil {
			return nil, utils.E(utils.CodeConfig, op, "export upload is not configured", nil)
		}
		url, err := s.uploader.Upload(ctx, "exports/"+res.Filename, res.ContentType, bytes.NewReader(res.Data))
		if err != nil {
			return nil, utils.E(utils.CodeUnavailable, op, "failed to upload export", err)
		}
		res.URL = url
	}
	return res, nil
}

func renderExport(userID, format string, rows []models.ChatLog) (*ExportResult, error) {
	switch format {
	case "json":
		b, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			Filename:    "conversation-" + userID + ".json",
			ContentType: "application/json",
			Data:        b,
		}, nil

	case "csv":
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		_ = w.Write([]string{"timestamp", "user_id", "role", "text", "token_count"})
		for _, row := range rows {
			_ = w.Write([]string{
				row.Timestamp.UTC().Format("2006-01-02 15:04:05"),
				row.UserID,
				row.Role,
				row.Text,
				strconv.Itoa(row.TokenCount),
			})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		return &ExportResult{
			Filename:    "conversation-" + userID + ".csv",
			ContentType: "text/csv",
			Data:        buf.Bytes(),
		}, nil

	default: // text
		var buf bytes.Buffer
		for _, row := range rows {
			fmt.Fprintf(&buf, "[%s] %s: %s\n",
				row.Timestamp.UTC().Format("2006-01-02 15:04"), row.Role, row.Text)
		}
		return &ExportResult{
			Filename:    "conversation-" + userID + ".txt",
			ContentType: "text/plain; charset=utf-8",
			Data:        buf.Bytes(),
		}, nil
	}
}
