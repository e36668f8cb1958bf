// forum/database/watch.go
package database

import (
	"fmt"

	"github.com/depsterr/slutprojektWSP21/models"
)

// StartWatching subscribes a user to a thread. Watching a thread you
// already watch is a no-op.
func (fs *ForumService) StartWatching(userID, threadID int64) error {
	if _, err := getUser(fs.DB, userID); err != nil {
		return err
	}
	if _, err := getThread(fs.DB, threadID); err != nil {
		return err
	}

	_, err := fs.DB.Exec("INSERT OR IGNORE INTO watches (user_id, thread_id) VALUES (?, ?)", userID, threadID)
	if err != nil {
		return fmt.Errorf("failed to insert watch: %w", err)
	}
	return nil
}

// StopWatching unsubscribes a user from a thread. Already-delivered unread
// entries stay put until the user reads the thread. Stopping a watch that
// does not exist is a no-op.
func (fs *ForumService) StopWatching(userID, threadID int64) error {
	if _, err := getUser(fs.DB, userID); err != nil {
		return err
	}
	if _, err := getThread(fs.DB, threadID); err != nil {
		return err
	}

	_, err := fs.DB.Exec("DELETE FROM watches WHERE user_id = ? AND thread_id = ?", userID, threadID)
	if err != nil {
		return fmt.Errorf("failed to delete watch: %w", err)
	}
	return nil
}

// GetWatched lists the threads a user is subscribed to, newest first. A
// missing user simply has no watches.
func (fs *ForumService) GetWatched(userID int64) ([]models.Thread, error) {
	rows, err := fs.DB.Query(`SELECT t.id, t.name, t.created, t.sticky, t.board_id, t.user_id
		FROM threads t JOIN watches w ON w.thread_id = t.id
		WHERE w.user_id = ? ORDER BY t.created DESC, t.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("db error listing watched threads: %w", err)
	}
	defer rows.Close()

	threads := []models.Thread{}
	for rows.Next() {
		var t models.Thread
		if err := rows.Scan(&t.ID, &t.Name, &t.Created, &t.Sticky, &t.BoardID, &t.UserID); err != nil {
			return nil, err
		}
		threads = append(threads, t)
	}
	return threads, rows.Err()
}

// GetUnread returns a user's unread ledger, newest post first, with thread
// and author context joined in. A missing user has an empty ledger.
func (fs *ForumService) GetUnread(userID int64) ([]models.UnreadPost, error) {
	rows, err := fs.DB.Query(`SELECT p.id, p.content, p.created, t.id, t.name,
			COALESCE(au.id, 0), COALESCE(au.name, ?), COALESCE(ai.filepath, di.filepath)
		FROM unreads u
		JOIN posts p ON p.id = u.post_id
		JOIN threads t ON t.id = p.thread_id
		LEFT JOIN users au ON au.id = p.user_id
		LEFT JOIN images ai ON ai.id = au.image_id
		JOIN images di ON di.id = 1
		WHERE u.user_id = ?
		ORDER BY p.created DESC, p.id DESC`, models.DeletedUserName, userID)
	if err != nil {
		return nil, fmt.Errorf("db error listing unreads: %w", err)
	}
	defer rows.Close()

	unread := []models.UnreadPost{}
	for rows.Next() {
		var up models.UnreadPost
		if err := rows.Scan(&up.PostID, &up.Content, &up.Created, &up.ThreadID, &up.ThreadName,
			&up.Author.ID, &up.Author.Name, &up.Author.Avatar); err != nil {
			return nil, err
		}
		unread = append(unread, up)
	}
	return unread, rows.Err()
}

// MarkThreadRead clears every unread entry the user has in the given
// thread with one bulk delete. Reading a thread with no unreads is a
// no-op.
func (fs *ForumService) MarkThreadRead(userID, threadID int64) error {
	if _, err := getUser(fs.DB, userID); err != nil {
		return err
	}
	if _, err := getThread(fs.DB, threadID); err != nil {
		return err
	}

	_, err := fs.DB.Exec(`DELETE FROM unreads WHERE user_id = ? AND post_id IN
		(SELECT id FROM posts WHERE thread_id = ?)`, userID, threadID)
	if err != nil {
		return fmt.Errorf("failed to mark thread read: %w", err)
	}
	return nil
}
