// forum/database/content.go
package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/depsterr/slutprojektWSP21/config"
	"github.com/depsterr/slutprojektWSP21/models"
	"github.com/depsterr/slutprojektWSP21/validate"
)

// cleanName sanitizes a board or thread title and reports whether anything
// displayable survived.
func cleanName(raw string) (string, error) {
	name := strings.TrimSpace(validate.SanitizeName(raw))
	if name == "" || len(name) > config.MaxNameLen {
		return "", models.ErrBadName
	}
	return name, nil
}

// cleanContent sanitizes post markup the same way.
func cleanContent(raw string) (string, error) {
	content := strings.TrimSpace(validate.SanitizeContent(raw))
	if content == "" || len(content) > config.MaxContentLen {
		return "", models.ErrBadContent
	}
	return content, nil
}

// CreateBoard creates a top-level board. Admin only.
func (fs *ForumService) CreateBoard(name string, callerID int64) (int64, error) {
	caller, err := getUser(fs.DB, callerID)
	if err != nil {
		return 0, err
	}
	if caller.Privilege <= 0 {
		return 0, models.ErrBadPerm
	}
	name, err = cleanName(name)
	if err != nil {
		return 0, err
	}

	res, err := fs.DB.Exec("INSERT INTO boards (name, created, user_id) VALUES (?, ?, ?)", name, now(), callerID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, models.ErrBoardTaken
		}
		return 0, fmt.Errorf("failed to insert board: %w", err)
	}
	boardID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	fs.logger.Info("Board created", "board_id", boardID, "user_id", callerID)
	return boardID, nil
}

// DeleteBoard removes a board and, through the cascade, every thread and
// post under it. Allowed for admins and the board's owner.
func (fs *ForumService) DeleteBoard(boardID, callerID int64) error {
	board, err := getBoard(fs.DB, boardID)
	if err != nil {
		return err
	}
	caller, err := getUser(fs.DB, callerID)
	if err != nil {
		return err
	}
	if caller.Privilege <= 0 && board.UserID != callerID {
		return models.ErrBadPerm
	}

	if _, err := fs.DB.Exec("DELETE FROM boards WHERE id = ?", boardID); err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}

	fs.logger.Info("Board deleted", "board_id", boardID, "caller_id", callerID)
	return nil
}

// createThread inserts a thread row inside q. Thread names are unique
// across the whole forum, not per board.
func (fs *ForumService) createThread(q dbtx, name string, boardID, callerID int64) (int64, error) {
	name, err := cleanName(name)
	if err != nil {
		return 0, err
	}
	if _, err := getBoard(q, boardID); err != nil {
		return 0, err
	}

	res, err := q.Exec("INSERT INTO threads (name, created, sticky, board_id, user_id) VALUES (?, ?, 0, ?, ?)",
		name, now(), boardID, callerID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, models.ErrThreadTaken
		}
		return 0, fmt.Errorf("failed to insert thread: %w", err)
	}
	return res.LastInsertId()
}

// CreateThread starts an empty thread on a board.
func (fs *ForumService) CreateThread(name string, boardID, callerID int64) (int64, error) {
	if _, err := getUser(fs.DB, callerID); err != nil {
		return 0, err
	}
	threadID, err := fs.createThread(fs.DB, name, boardID, callerID)
	if err != nil {
		return 0, err
	}
	fs.logger.Info("Thread created", "thread_id", threadID, "board_id", boardID, "user_id", callerID)
	return threadID, nil
}

// CreateThreadWithPost starts a thread and its opening post atomically: a
// rejected opening post leaves no empty thread behind.
func (fs *ForumService) CreateThreadWithPost(name, content string, boardID, callerID int64) (int64, int64, error) {
	if _, err := getUser(fs.DB, callerID); err != nil {
		return 0, 0, err
	}

	tx, err := fs.DB.Begin()
	if err != nil {
		return 0, 0, err
	}
	defer fs.rollback(tx, "CreateThreadWithPost")

	threadID, err := fs.createThread(tx, name, boardID, callerID)
	if err != nil {
		return 0, 0, err
	}
	postID, err := fs.createPost(tx, content, threadID, callerID)
	if err != nil {
		return 0, 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}

	fs.logger.Info("Thread created", "thread_id", threadID, "board_id", boardID, "user_id", callerID, "post_id", postID)
	return threadID, postID, nil
}

// DeleteThread removes a thread and its posts. Allowed for admins and the
// thread's owner.
func (fs *ForumService) DeleteThread(threadID, callerID int64) error {
	thread, err := getThread(fs.DB, threadID)
	if err != nil {
		return err
	}
	caller, err := getUser(fs.DB, callerID)
	if err != nil {
		return err
	}
	if caller.Privilege <= 0 && thread.UserID != callerID {
		return models.ErrBadPerm
	}

	if _, err := fs.DB.Exec("DELETE FROM threads WHERE id = ?", threadID); err != nil {
		return fmt.Errorf("failed to delete thread: %w", err)
	}

	fs.logger.Info("Thread deleted", "thread_id", threadID, "caller_id", callerID)
	return nil
}

// createPost inserts a post inside q and fans it out to every watcher of
// the thread as unread rows in the same transaction. Watchers include the
// author when they watch their own thread.
func (fs *ForumService) createPost(q dbtx, content string, threadID, callerID int64) (int64, error) {
	content, err := cleanContent(content)
	if err != nil {
		return 0, err
	}
	if _, err := getThread(q, threadID); err != nil {
		return 0, err
	}

	res, err := q.Exec("INSERT INTO posts (content, created, user_id, thread_id) VALUES (?, ?, ?, ?)",
		content, now(), callerID, threadID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert post: %w", err)
	}
	postID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	_, err = q.Exec(`INSERT OR IGNORE INTO unreads (user_id, post_id)
		SELECT user_id, ? FROM watches WHERE thread_id = ?`,
		postID, threadID)
	if err != nil {
		return 0, fmt.Errorf("failed to fan out unreads: %w", err)
	}
	return postID, nil
}

// CreatePost appends a post to a thread and notifies its watchers.
func (fs *ForumService) CreatePost(content string, threadID, callerID int64) (int64, error) {
	if _, err := getUser(fs.DB, callerID); err != nil {
		return 0, err
	}

	tx, err := fs.DB.Begin()
	if err != nil {
		return 0, err
	}
	defer fs.rollback(tx, "CreatePost")

	postID, err := fs.createPost(tx, content, threadID, callerID)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	fs.logger.Info("Post created", "post_id", postID, "thread_id", threadID, "user_id", callerID)
	return postID, nil
}

// EditPost replaces a post's content. Strictly author-only: admins may
// delete other people's posts but never rewrite them.
func (fs *ForumService) EditPost(postID, callerID int64, content string) error {
	post, err := getPost(fs.DB, postID)
	if err != nil {
		return err
	}
	if post.UserID != callerID {
		return models.ErrBadPerm
	}
	content, err = cleanContent(content)
	if err != nil {
		return err
	}

	if _, err := fs.DB.Exec("UPDATE posts SET content = ? WHERE id = ?", content, postID); err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	fs.logger.Info("Post edited", "post_id", postID, "user_id", callerID)
	return nil
}

// rootPostID returns the id of a thread's opening post: oldest creation
// time, lowest id on ties.
func rootPostID(q dbtx, threadID int64) (int64, error) {
	var id int64
	err := q.QueryRow("SELECT id FROM posts WHERE thread_id = ? ORDER BY created ASC, id ASC LIMIT 1", threadID).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("db error finding root post: %w", err)
	}
	return id, nil
}

// DeletePost removes a post, allowed for its author and admins. Deleting a
// thread's opening post deletes the whole thread; the returned bool
// reports whether the thread survived.
func (fs *ForumService) DeletePost(postID, callerID int64) (bool, error) {
	post, err := getPost(fs.DB, postID)
	if err != nil {
		return false, err
	}
	caller, err := getUser(fs.DB, callerID)
	if err != nil {
		return false, err
	}
	if caller.Privilege <= 0 && post.UserID != callerID {
		return false, models.ErrBadPerm
	}

	root, err := rootPostID(fs.DB, post.ThreadID)
	if err != nil {
		return false, err
	}
	if root == postID {
		if _, err := fs.DB.Exec("DELETE FROM threads WHERE id = ?", post.ThreadID); err != nil {
			return false, fmt.Errorf("failed to delete thread: %w", err)
		}
		fs.logger.Info("Root post deleted, thread removed", "post_id", postID, "thread_id", post.ThreadID, "caller_id", callerID)
		return false, nil
	}

	if _, err := fs.DB.Exec("DELETE FROM posts WHERE id = ?", postID); err != nil {
		return false, fmt.Errorf("failed to delete post: %w", err)
	}
	fs.logger.Info("Post deleted", "post_id", postID, "caller_id", callerID)
	return true, nil
}

// UpdateStickyThread pins or unpins a thread. Allowed for admins and the
// owner of the board the thread lives on.
func (fs *ForumService) UpdateStickyThread(threadID int64, sticky bool, callerID int64) error {
	thread, err := getThread(fs.DB, threadID)
	if err != nil {
		return err
	}
	board, err := getBoard(fs.DB, thread.BoardID)
	if err != nil {
		return err
	}
	caller, err := getUser(fs.DB, callerID)
	if err != nil {
		return err
	}
	if caller.Privilege <= 0 && board.UserID != callerID {
		return models.ErrBadPerm
	}

	if _, err := fs.DB.Exec("UPDATE threads SET sticky = ? WHERE id = ?", sticky, threadID); err != nil {
		return fmt.Errorf("failed to update sticky flag: %w", err)
	}

	fs.logger.Info("Thread sticky updated", "thread_id", threadID, "sticky", sticky, "caller_id", callerID)
	return nil
}

// Report flags a post for moderation by pushing it onto every admin's
// unread ledger. Idempotent per admin and post.
func (fs *ForumService) Report(postID, callerID int64) error {
	if _, err := getUser(fs.DB, callerID); err != nil {
		return err
	}
	if _, err := getPost(fs.DB, postID); err != nil {
		return err
	}

	_, err := fs.DB.Exec(`INSERT OR IGNORE INTO unreads (user_id, post_id)
		SELECT id, ? FROM users WHERE privilege > 0`, postID)
	if err != nil {
		return fmt.Errorf("failed to record report: %w", err)
	}

	fs.logger.Info("Post reported", "post_id", postID, "caller_id", callerID)
	return nil
}
