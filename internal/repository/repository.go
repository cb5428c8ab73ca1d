package repository

import (
	"database/sql"
	"fmt"

	"github.com/Ostapenko-Vasilii/TgBot-fork/internal/models"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InitSchema creates the three tables if they do not exist yet.
func (r *Repository) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY,
		timesStarted INTEGER DEFAULT 0,
		lastSeen TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS interactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		userId INTEGER,
		interactionTime TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		userId INTEGER,
		message TEXT,
		media_type TEXT,
		media_id TEXT,
		replied INTEGER DEFAULT 0,
		first_name TEXT,
		username TEXT,
		timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// User methods

// UpsertStart registers a /start: the first one creates the row,
// every following one increments the counter and refreshes lastSeen.
func (r *Repository) UpsertStart(userID int64) error {
	_, err := r.db.Exec(`
		INSERT INTO users (id, timesStarted, lastSeen)
		VALUES (?, 0, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			timesStarted = timesStarted + 1,
			lastSeen = CURRENT_TIMESTAMP
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", userID, err)
	}
	return nil
}

func (r *Repository) RecordInteraction(userID int64) error {
	_, err := r.db.Exec(`
		INSERT INTO interactions (userId, interactionTime)
		VALUES (?, CURRENT_TIMESTAMP)
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to record interaction for user %d: %w", userID, err)
	}
	return nil
}

// UsageStats counts starts and interactions, total and for the current
// calendar day. "Today" is a date() string comparison inside SQLite, so
// both sides of it come from the same clock.
func (r *Repository) UsageStats() (models.Stats, error) {
	var stats models.Stats
	err := r.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE date(lastSeen) = date('now')),
			(SELECT COUNT(*) FROM interactions),
			(SELECT COUNT(*) FROM interactions WHERE date(interactionTime) = date('now'))
	`).Scan(&stats.TotalStarts, &stats.TodayStarts, &stats.TotalInteractions, &stats.TodayInteractions)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to query usage stats: %w", err)
	}
	return stats, nil
}

// Submission methods

// InsertSubmission appends a new submission row. Exactly one of the
// content's text or file ID is stored, depending on its kind.
func (r *Repository) InsertSubmission(userID int64, firstName, username string, c models.Content) (int64, error) {
	var res sql.Result
	var err error
	if c.Kind == models.KindText {
		res, err = r.db.Exec(`
			INSERT INTO messages (userId, message, first_name, username)
			VALUES (?, ?, ?, ?)
		`, userID, c.Text, firstName, username)
	} else {
		res, err = r.db.Exec(`
			INSERT INTO messages (userId, media_type, media_id, first_name, username)
			VALUES (?, ?, ?, ?, ?)
		`, userID, string(c.Kind), c.FileID, firstName, username)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert submission from user %d: %w", userID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read submission id: %w", err)
	}
	return id, nil
}

// ListSubmissions returns submissions in insertion order, optionally
// filtered to those not yet replied to.
func (r *Repository) ListSubmissions(onlyUnreplied bool) ([]models.Submission, error) {
	query := `
		SELECT id, userId, COALESCE(message, ''), COALESCE(media_type, ''),
		       COALESCE(media_id, ''), replied, COALESCE(first_name, ''),
		       COALESCE(username, ''), timestamp
		FROM messages
	`
	if onlyUnreplied {
		query += ` WHERE replied = 0`
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		var sub models.Submission
		var replied int
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.Text, &sub.MediaType,
			&sub.MediaID, &replied, &sub.FirstName, &sub.Username, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission row: %w", err)
		}
		sub.Replied = replied != 0
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (r *Repository) MarkReplied(id int64) error {
	_, err := r.db.Exec(`UPDATE messages SET replied = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark submission %d replied: %w", id, err)
	}
	return nil
}

// SubmissionOwner resolves the user who sent the given submission.
// The second return is false when no such submission exists.
func (r *Repository) SubmissionOwner(id int64) (int64, bool, error) {
	var userID int64
	err := r.db.QueryRow(`SELECT userId FROM messages WHERE id = ?`, id).Scan(&userID)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up submission %d: %w", id, err)
	}
	return userID, true, nil
}
