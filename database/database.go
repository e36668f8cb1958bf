// forum/database/database.go
package database

import (
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/depsterr/slutprojektWSP21/models"
	"github.com/depsterr/slutprojektWSP21/utils"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// ForumService is the central struct for all engine operations. All
// services share the single connection pool it wraps.
type ForumService struct {
	DB       *sql.DB
	logger   *slog.Logger
	attempts *models.AttemptLimiter
	avatars  models.AvatarStore
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so lookup helpers can run
// inside or outside a transaction.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// InitDB connects to the database, creates the schema and seeds the
// reserved default avatar image (row id 1). Failure to enable foreign-key
// enforcement is fatal: the cascade rules depend on it.
func InitDB(dataSourceName string, attempts *models.AttemptLimiter, avatars models.AvatarStore, logger *slog.Logger) (*ForumService, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, err
	}

	var fkEnabled int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled); err != nil {
		return nil, fmt.Errorf("could not read foreign_keys pragma: %w", err)
	}
	if fkEnabled != 1 {
		return nil, fmt.Errorf("foreign key enforcement is disabled; add _foreign_keys=on to the DSN")
	}

	if _, err = db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to execute base schema: %w", err)
	}

	fs := &ForumService{
		DB:       db,
		logger:   logger,
		attempts: attempts,
		avatars:  avatars,
	}

	if err := fs.seedDefaultAvatar(); err != nil {
		return nil, fmt.Errorf("failed to seed default avatar: %w", err)
	}

	logger.Info("Database initialized")
	return fs, nil
}

// seedDefaultAvatar stores the built-in placeholder through the avatar
// store and records it as Image row 1. Idempotent across restarts.
func (fs *ForumService) seedDefaultAvatar() error {
	var count int
	if err := fs.DB.QueryRow("SELECT COUNT(*) FROM images").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	data, err := utils.DefaultAvatar()
	if err != nil {
		return fmt.Errorf("could not decode built-in avatar: %w", err)
	}
	digest := contentDigest(data)
	path, err := fs.avatars.Save(digest+".png", data, "image/png")
	if err != nil {
		return fmt.Errorf("could not store default avatar: %w", err)
	}
	_, err = fs.DB.Exec("INSERT INTO images (id, md5, filepath) VALUES (1, ?, ?)", digest, path)
	return err
}

// contentDigest returns the hex MD5 of data. Avatars are content-addressed
// by this digest so identical uploads resolve to one Image row.
func contentDigest(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

func now() int64 {
	return time.Now().Unix()
}

// isUniqueViolation reports whether err is a sqlite UNIQUE constraint
// failure, the signal for lost check-then-insert races on names and
// digests.
func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// --- Point lookup helpers ---
// These run against a dbtx so permission checks can share a transaction
// with the mutation they guard.

func getUser(q dbtx, userID int64) (*models.User, error) {
	var u models.User
	err := q.QueryRow("SELECT id, name, footer, privilege, registered, image_id FROM users WHERE id = ?", userID).
		Scan(&u.ID, &u.Name, &u.Footer, &u.Privilege, &u.Registered, &u.ImageID)
	if err == sql.ErrNoRows {
		return nil, models.ErrNoUser
	}
	if err != nil {
		return nil, fmt.Errorf("db error getting user %d: %w", userID, err)
	}
	return &u, nil
}

func getBoard(q dbtx, boardID int64) (*models.Board, error) {
	var b models.Board
	err := q.QueryRow("SELECT id, name, created, user_id FROM boards WHERE id = ?", boardID).
		Scan(&b.ID, &b.Name, &b.Created, &b.UserID)
	if err == sql.ErrNoRows {
		return nil, models.ErrNoBoard
	}
	if err != nil {
		return nil, fmt.Errorf("db error getting board %d: %w", boardID, err)
	}
	return &b, nil
}

func getThread(q dbtx, threadID int64) (*models.Thread, error) {
	var t models.Thread
	err := q.QueryRow("SELECT id, name, created, sticky, board_id, user_id FROM threads WHERE id = ?", threadID).
		Scan(&t.ID, &t.Name, &t.Created, &t.Sticky, &t.BoardID, &t.UserID)
	if err == sql.ErrNoRows {
		return nil, models.ErrNoThread
	}
	if err != nil {
		return nil, fmt.Errorf("db error getting thread %d: %w", threadID, err)
	}
	return &t, nil
}

func getPost(q dbtx, postID int64) (*models.Post, error) {
	var p models.Post
	err := q.QueryRow("SELECT id, content, created, user_id, thread_id FROM posts WHERE id = ?", postID).
		Scan(&p.ID, &p.Content, &p.Created, &p.UserID, &p.ThreadID)
	if err == sql.ErrNoRows {
		return nil, models.ErrNoPost
	}
	if err != nil {
		return nil, fmt.Errorf("db error getting post %d: %w", postID, err)
	}
	return &p, nil
}

// rollback is the deferred cleanup for every write transaction.
func (fs *ForumService) rollback(tx *sql.Tx, op string) {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		fs.logger.Error("Failed to rollback transaction", "op", op, "error", err)
	}
}
