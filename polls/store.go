// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/youjianchi/quickPoll/db"
	"github.com/youjianchi/quickPoll/models"
)

// MinOptions is the smallest number of options a poll may have.
const MinOptions = 2

// ValidationError reports input rejected before any store call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Store is the only component that reads or writes poll state.
type Store struct {
	db      *sql.DB
	dialect db.Dialect
	now     func() time.Time
}

func NewStore(conn *sql.DB, dialect db.Dialect) *Store {
	return &Store{db: conn, dialect: dialect, now: time.Now}
}

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CleanOptions trims every option and drops the ones left empty.
func CleanOptions(options []string) []string {
	out := make([]string, 0, len(options))
	for _, opt := range options {
		if opt = strings.TrimSpace(opt); opt != "" {
			out = append(out, opt)
		}
	}
	return out
}

// Create inserts a poll and its options in a single transaction. Callers
// never observe a poll without options: if any option insert fails the whole
// transaction is rolled back.
func (s *Store) Create(ctx context.Context, question string, options []string, creatorID *string) (models.Poll, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return models.Poll{}, &ValidationError{Message: "Question is required."}
	}
	options = CleanOptions(options)
	if len(options) < MinOptions {
		return models.Poll{}, &ValidationError{Message: "Provide at least two options."}
	}

	// Postgres keeps microseconds; truncate so the returned value matches a re-fetch.
	createdAt := s.now().UTC().Truncate(time.Microsecond)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	pollID, err := s.insertID(ctx, tx,
		`INSERT INTO polls (question, created_by, created_at) VALUES (?, ?, ?)`,
		question, creatorID, createdAt)
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to insert poll: %w", err)
	}

	poll := models.Poll{
		ID:        pollID,
		Question:  question,
		CreatedAt: createdAt,
		CreatedBy: creatorID,
		Options:   make([]models.Option, 0, len(options)),
	}

	for _, text := range options {
		optionID, err := s.insertID(ctx, tx,
			`INSERT INTO options (poll_id, text, votes) VALUES (?, ?, 0)`,
			pollID, text)
		if err != nil {
			return models.Poll{}, fmt.Errorf("failed to insert option: %w", err)
		}
		poll.Options = append(poll.Options, models.Option{ID: optionID, PollID: pollID, Text: text})
	}

	if err := tx.Commit(); err != nil {
		return models.Poll{}, fmt.Errorf("failed to commit poll: %w", err)
	}

	normalize(&poll)
	return poll, nil
}

// FetchByID returns the poll with its options. found is false, with a nil
// error, when no poll has that ID.
func (s *Store) FetchByID(ctx context.Context, pollID int64) (poll models.Poll, found bool, err error) {
	var createdBy sql.NullString
	err = s.db.QueryRowContext(ctx, s.dialect.Rebind(`
		SELECT id, question, created_by, created_at
		FROM polls
		WHERE id = ?
	`), pollID).Scan(&poll.ID, &poll.Question, &createdBy, &poll.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Poll{}, false, nil
	}
	if err != nil {
		return models.Poll{}, false, fmt.Errorf("failed to query poll: %w", err)
	}
	if createdBy.Valid {
		poll.CreatedBy = &createdBy.String
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(`
		SELECT id, poll_id, text, votes
		FROM options
		WHERE poll_id = ?
		ORDER BY id
	`), pollID)
	if err != nil {
		return models.Poll{}, false, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	poll.Options = []models.Option{}
	for rows.Next() {
		var opt models.Option
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Text, &opt.Votes); err != nil {
			return models.Poll{}, false, fmt.Errorf("failed to scan option: %w", err)
		}
		poll.Options = append(poll.Options, opt)
	}
	if err := rows.Err(); err != nil {
		return models.Poll{}, false, fmt.Errorf("failed to read options: %w", err)
	}

	normalize(&poll)
	return poll, true, nil
}

// Vote increments one option's counter with a single conditional UPDATE, so
// concurrent votes never lose an increment. It reports false when optionID
// does not exist or belongs to another poll.
func (s *Store) Vote(ctx context.Context, pollID, optionID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(`
		UPDATE options SET votes = votes + 1
		WHERE id = ? AND poll_id = ?
	`), optionID, pollID)
	if err != nil {
		return false, fmt.Errorf("failed to apply vote: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read vote result: %w", err)
	}
	return n > 0, nil
}

func (s *Store) insertID(ctx context.Context, q queryer, query string, args ...any) (int64, error) {
	if s.dialect.Returning {
		var id int64
		err := q.QueryRowContext(ctx, s.dialect.Rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}

	res, err := q.ExecContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// normalize sorts options ascending by ID, the only display order.
func normalize(poll *models.Poll) {
	if poll.Options == nil {
		poll.Options = []models.Option{}
	}
	sort.SliceStable(poll.Options, func(i, j int) bool {
		return poll.Options[i].ID < poll.Options[j].ID
	})
}
