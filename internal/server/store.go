// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/jeranaias/aura-tui/internal/model"
)

// ErrNotFound is returned when a conversation or message does not exist.
var ErrNotFound = errors.New("not found")

// =============================================================================
// STORE
// =============================================================================

// Store persists conversations in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// OpenStore opens (creating if needed) the database at path. ":memory:"
// gives a private in-memory database.
func OpenStore(path string) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, errors.Wrap(err, "create database directory")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	// SQLite only supports one writer at a time; one connection also keeps
	// an in-memory database alive and shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "set pragma %q", pragma)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initialize schema")
	}
	if _, err := db.Exec(
		`INSERT OR REPLACE INTO metadata(key, value) VALUES ('schema_version', ?)`,
		strconv.Itoa(SchemaVersion),
	); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "record schema version")
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) stamp() int64 {
	return s.now().UTC().UnixNano()
}

func fromStamp(ns int64) model.Timestamp {
	return model.Timestamp{Time: time.Unix(0, ns).UTC()}
}

func formatID(id int64) model.ID {
	return model.ID(strconv.FormatInt(id, 10))
}

// parseID converts a path or body id; non-numeric ids never exist.
func parseID(id model.ID) (int64, error) {
	n, err := strconv.ParseInt(id.String(), 10, 64)
	if err != nil {
		return 0, ErrNotFound
	}
	return n, nil
}

func formatTemperature(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}

// parseTemperature tolerates legacy text values; anything unparsable
// reads as the default.
func parseTemperature(s string) float64 {
	t, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return model.DefaultTemperature
	}
	return t
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

// NewConversation holds creation parameters; nil fields take defaults.
type NewConversation struct {
	Title         *string             `json:"title"`
	SystemPrompt  *string             `json:"system_prompt"`
	Temperature   *float64            `json:"temperature"`
	SelectedModel *model.ModelVariant `json:"selected_model"`
}

// CreateConversation inserts a conversation and returns it.
func (s *Store) CreateConversation(ctx context.Context, in NewConversation) (*model.Conversation, error) {
	settings := model.DefaultSettings()
	title := model.DefaultTitle
	if in.Title != nil {
		title = *in.Title
	}
	if in.SystemPrompt != nil {
		settings.SystemPrompt = *in.SystemPrompt
	}
	if in.Temperature != nil {
		settings.Temperature = *in.Temperature
	}
	if in.SelectedModel != nil && *in.SelectedModel != "" {
		settings.Model = *in.SelectedModel
	}

	now := s.stamp()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations(title, system_prompt, temperature, selected_model, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		title, settings.SystemPrompt, formatTemperature(settings.Temperature), string(settings.Model), now, now)
	if err != nil {
		return nil, errors.Wrap(err, "insert conversation")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "conversation id")
	}
	return s.GetConversation(ctx, formatID(id))
}

// ListConversations returns summaries ordered by last update, newest first.
func (s *Store) ListConversations(ctx context.Context, skip, limit int) ([]model.Summary, error) {
	if limit <= 0 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, updated_at FROM conversations
		 ORDER BY updated_at DESC, id DESC LIMIT ? OFFSET ?`, limit, skip)
	if err != nil {
		return nil, errors.Wrap(err, "query conversations")
	}
	defer rows.Close()

	list := make([]model.Summary, 0)
	for rows.Next() {
		var (
			id      int64
			title   string
			updated int64
		)
		if err := rows.Scan(&id, &title, &updated); err != nil {
			return nil, errors.Wrap(err, "scan conversation")
		}
		list = append(list, model.Summary{ID: formatID(id), Title: title, UpdatedAt: fromStamp(updated)})
	}
	return list, errors.Wrap(rows.Err(), "iterate conversations")
}

// GetConversation returns a conversation with its messages and attachments.
func (s *Store) GetConversation(ctx context.Context, id model.ID) (*model.Conversation, error) {
	n, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var (
		conv             model.Conversation
		temp             string
		selected         string
		created, updated int64
	)
	err = s.db.QueryRowContext(ctx,
		`SELECT title, system_prompt, temperature, selected_model, created_at, updated_at
		 FROM conversations WHERE id = ?`, n).
		Scan(&conv.Title, &conv.SystemPrompt, &temp, &selected, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query conversation")
	}
	t := parseTemperature(temp)
	conv.ID = formatID(n)
	conv.Temperature = &t
	conv.SelectedModel = model.ModelVariant(selected)
	conv.CreatedAt = fromStamp(created)
	conv.UpdatedAt = fromStamp(updated)

	if conv.Messages, err = s.messages(ctx, n); err != nil {
		return nil, err
	}
	if conv.Attachments, err = s.attachments(ctx, n); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *Store) messages(ctx context.Context, convID int64) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.id, m.role, m.content, m.created_at, f.is_positive, f.comment
		 FROM messages m LEFT JOIN feedback f ON f.message_id = m.id
		 WHERE m.conversation_id = ? ORDER BY m.id`, convID)
	if err != nil {
		return nil, errors.Wrap(err, "query messages")
	}
	defer rows.Close()

	msgs := make([]model.Message, 0)
	for rows.Next() {
		var (
			id       int64
			role     string
			content  string
			created  int64
			positive sql.NullBool
			comment  sql.NullString
		)
		if err := rows.Scan(&id, &role, &content, &created, &positive, &comment); err != nil {
			return nil, errors.Wrap(err, "scan message")
		}
		msg := model.Message{
			ID:        formatID(id),
			Role:      model.Role(role),
			Content:   content,
			CreatedAt: fromStamp(created),
		}
		if positive.Valid {
			msg.Feedback = &model.Feedback{IsPositive: positive.Bool, Comment: comment.String}
		}
		msgs = append(msgs, msg)
	}
	return msgs, errors.Wrap(rows.Err(), "iterate messages")
}

func (s *Store) attachments(ctx context.Context, convID int64) ([]model.Attachment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, size, created_at FROM attachments
		 WHERE conversation_id = ? ORDER BY id`, convID)
	if err != nil {
		return nil, errors.Wrap(err, "query attachments")
	}
	defer rows.Close()

	atts := make([]model.Attachment, 0)
	for rows.Next() {
		var (
			id       int64
			filename string
			size     int64
			created  int64
		)
		if err := rows.Scan(&id, &filename, &size, &created); err != nil {
			return nil, errors.Wrap(err, "scan attachment")
		}
		atts = append(atts, model.Attachment{
			ID:        formatID(id),
			Filename:  filename,
			CreatedAt: fromStamp(created),
			Metadata:  map[string]any{"size": size},
		})
	}
	return atts, errors.Wrap(rows.Err(), "iterate attachments")
}

// UpdateConversation applies a partial update and returns the result.
func (s *Store) UpdateConversation(ctx context.Context, id model.ID, patch model.ConversationPatch) (*model.Conversation, error) {
	n, err := parseID(id)
	if err != nil {
		return nil, err
	}

	sets := []string{"updated_at = ?"}
	args := []any{s.stamp()}
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.SystemPrompt != nil {
		sets = append(sets, "system_prompt = ?")
		args = append(args, *patch.SystemPrompt)
	}
	if patch.Temperature != nil {
		sets = append(sets, "temperature = ?")
		args = append(args, formatTemperature(*patch.Temperature))
	}
	if patch.SelectedModel != nil {
		sets = append(sets, "selected_model = ?")
		args = append(args, string(*patch.SelectedModel))
	}
	args = append(args, n)

	res, err := s.db.ExecContext(ctx,
		"UPDATE conversations SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, errors.Wrap(err, "update conversation")
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, ErrNotFound
	}
	return s.GetConversation(ctx, id)
}

// DeleteConversation removes a conversation with its messages, feedback
// and attachments.
func (s *Store) DeleteConversation(ctx context.Context, id model.ID) error {
	n, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, n)
	if err != nil {
		return errors.Wrap(err, "delete conversation")
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// =============================================================================
// MESSAGES
// =============================================================================

// AddMessage appends a message and bumps the conversation's updated_at.
func (s *Store) AddMessage(ctx context.Context, convID model.ID, role model.Role, content string) (*model.Message, error) {
	n, err := parseID(convID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	now := s.stamp()
	res, err := tx.ExecContext(ctx, `UPDATE conversations SET updated_at = ? WHERE id = ?`, now, n)
	if err != nil {
		return nil, errors.Wrap(err, "touch conversation")
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, ErrNotFound
	}

	res, err = tx.ExecContext(ctx,
		`INSERT INTO messages(conversation_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		n, string(role), content, now)
	if err != nil {
		return nil, errors.Wrap(err, "insert message")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "message id")
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit message")
	}

	return &model.Message{
		ID:        formatID(id),
		Role:      role,
		Content:   content,
		CreatedAt: fromStamp(now),
	}, nil
}

// Settings returns the generation settings of a conversation.
func (s *Store) Settings(ctx context.Context, convID model.ID) (model.Settings, error) {
	n, err := parseID(convID)
	if err != nil {
		return model.Settings{}, err
	}
	var (
		prompt, temp, selected string
	)
	err = s.db.QueryRowContext(ctx,
		`SELECT system_prompt, temperature, selected_model FROM conversations WHERE id = ?`, n).
		Scan(&prompt, &temp, &selected)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Settings{}, ErrNotFound
	}
	if err != nil {
		return model.Settings{}, errors.Wrap(err, "query settings")
	}
	settings := model.Settings{
		SystemPrompt: prompt,
		Temperature:  parseTemperature(temp),
		Model:        model.ModelVariant(selected),
	}
	if settings.Model == "" {
		settings.Model = model.DefaultModel
	}
	return settings, nil
}

// =============================================================================
// ATTACHMENTS
// =============================================================================

// AddAttachment stores an uploaded file's extracted text.
func (s *Store) AddAttachment(ctx context.Context, convID model.ID, filename, content string, size int64) (*model.Attachment, error) {
	n, err := parseID(convID)
	if err != nil {
		return nil, err
	}
	if exists, err := s.exists(ctx, "conversations", n); err != nil {
		return nil, err
	} else if !exists {
		return nil, ErrNotFound
	}

	now := s.stamp()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO attachments(conversation_id, filename, content, size, created_at) VALUES (?, ?, ?, ?, ?)`,
		n, filename, content, size, now)
	if err != nil {
		return nil, errors.Wrap(err, "insert attachment")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "attachment id")
	}
	return &model.Attachment{
		ID:        formatID(id),
		Filename:  filename,
		CreatedAt: fromStamp(now),
		Metadata:  map[string]any{"size": size},
	}, nil
}

// AttachmentContext joins the extracted text of every attachment of a
// conversation, one per line.
func (s *Store) AttachmentContext(ctx context.Context, convID model.ID) (string, error) {
	n, err := parseID(convID)
	if err != nil {
		return "", err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT content FROM attachments WHERE conversation_id = ? ORDER BY id`, n)
	if err != nil {
		return "", errors.Wrap(err, "query attachment content")
	}
	defer rows.Close()

	var parts []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return "", errors.Wrap(err, "scan attachment content")
		}
		parts = append(parts, content)
	}
	return strings.Join(parts, "\n"), errors.Wrap(rows.Err(), "iterate attachment content")
}

// =============================================================================
// FEEDBACK AND USAGE
// =============================================================================

// FeedbackRecord is a stored rating.
type FeedbackRecord struct {
	ID             model.ID        `json:"id"`
	MessageID      model.ID        `json:"message_id"`
	ConversationID model.ID        `json:"conversation_id"`
	IsPositive     bool            `json:"is_positive"`
	Comment        *string         `json:"comment"`
	CreatedAt      model.Timestamp `json:"created_at"`
}

// SetFeedback records a rating for a message, replacing any earlier one.
func (s *Store) SetFeedback(ctx context.Context, messageID, convID model.ID, positive bool, comment string) (*FeedbackRecord, error) {
	msgN, err := parseID(messageID)
	if err != nil {
		return nil, err
	}
	convN, err := parseID(convID)
	if err != nil {
		return nil, err
	}

	var owner int64
	err = s.db.QueryRowContext(ctx, `SELECT conversation_id FROM messages WHERE id = ?`, msgN).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != convN) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query message")
	}

	var commentArg any
	if comment != "" {
		commentArg = comment
	}
	now := s.stamp()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback(message_id, conversation_id, is_positive, comment, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(message_id) DO UPDATE SET
		   is_positive = excluded.is_positive,
		   comment = excluded.comment,
		   created_at = excluded.created_at`,
		msgN, convN, positive, commentArg, now); err != nil {
		return nil, errors.Wrap(err, "upsert feedback")
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM feedback WHERE message_id = ?`, msgN).Scan(&id); err != nil {
		return nil, errors.Wrap(err, "feedback id")
	}
	rec := &FeedbackRecord{
		ID:             formatID(id),
		MessageID:      messageID,
		ConversationID: convID,
		IsPositive:     positive,
		CreatedAt:      fromStamp(now),
	}
	if comment != "" {
		rec.Comment = &comment
	}
	return rec, nil
}

// RecordUsage stores a usage metric for an endpoint call.
func (s *Store) RecordUsage(ctx context.Context, endpoint string, variant model.ModelVariant, tokens int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage_metrics(endpoint, model_used, token_count, created_at) VALUES (?, ?, ?, ?)`,
		endpoint, string(variant), tokens, s.stamp())
	return errors.Wrap(err, "insert usage metric")
}

// Analytics aggregates message, token, model and feedback statistics.
func (s *Store) Analytics(ctx context.Context) (*model.Analytics, error) {
	a := &model.Analytics{ModelDistribution: make(map[string]int)}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&a.TotalMessages); err != nil {
		return nil, errors.Wrap(err, "count messages")
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(token_count), 0) FROM usage_metrics`).Scan(&a.TotalTokens); err != nil {
		return nil, errors.Wrap(err, "sum tokens")
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(is_positive = 1), 0), COALESCE(SUM(is_positive = 0), 0) FROM feedback`).
		Scan(&a.PositiveFeedback, &a.NegativeFeedback); err != nil {
		return nil, errors.Wrap(err, "count feedback")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(model_used, ''), COUNT(*) FROM usage_metrics GROUP BY model_used`)
	if err != nil {
		return nil, errors.Wrap(err, "query model distribution")
	}
	defer rows.Close()
	for rows.Next() {
		var (
			name  string
			count int
		)
		if err := rows.Scan(&name, &count); err != nil {
			return nil, errors.Wrap(err, "scan model distribution")
		}
		a.ModelDistribution[name] = count
	}
	return a, errors.Wrap(rows.Err(), "iterate model distribution")
}

func (s *Store) exists(ctx context.Context, table string, id int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "query %s", table)
	}
	return true, nil
}
