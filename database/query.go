// forum/database/query.go
package database

import (
	"database/sql"
	"fmt"

	"github.com/depsterr/slutprojektWSP21/models"
)

// Read-side queries. Owner and author context is joined with LEFT JOINs:
// content rows keep their dangling user_id after the author's account is
// deleted, and these views paper over the gap with the fallback name and
// the default avatar.

// GetBoards lists all boards with owner context, newest first.
func (fs *ForumService) GetBoards() ([]models.BoardView, error) {
	rows, err := fs.DB.Query(`SELECT b.id, b.name, b.created, b.user_id,
			COALESCE(u.id, 0), COALESCE(u.name, ?), COALESCE(i.filepath, di.filepath)
		FROM boards b
		LEFT JOIN users u ON u.id = b.user_id
		LEFT JOIN images i ON i.id = u.image_id
		JOIN images di ON di.id = 1
		ORDER BY b.created DESC, b.id DESC`, models.DeletedUserName)
	if err != nil {
		return nil, fmt.Errorf("db error listing boards: %w", err)
	}
	defer rows.Close()

	boards := []models.BoardView{}
	for rows.Next() {
		var bv models.BoardView
		if err := rows.Scan(&bv.ID, &bv.Name, &bv.Created, &bv.UserID,
			&bv.Owner.ID, &bv.Owner.Name, &bv.Owner.Avatar); err != nil {
			return nil, err
		}
		boards = append(boards, bv)
	}
	return boards, rows.Err()
}

// GetThreads returns a board and its threads, sticky threads first, then
// oldest first.
func (fs *ForumService) GetThreads(boardID int64) (*models.BoardPage, error) {
	board, err := getBoard(fs.DB, boardID)
	if err != nil {
		return nil, err
	}

	rows, err := fs.DB.Query(`SELECT t.id, t.name, t.created, t.sticky, t.board_id, t.user_id,
			COALESCE(u.id, 0), COALESCE(u.name, ?), COALESCE(i.filepath, di.filepath)
		FROM threads t
		LEFT JOIN users u ON u.id = t.user_id
		LEFT JOIN images i ON i.id = u.image_id
		JOIN images di ON di.id = 1
		WHERE t.board_id = ?
		ORDER BY t.sticky DESC, t.created ASC, t.id ASC`, models.DeletedUserName, boardID)
	if err != nil {
		return nil, fmt.Errorf("db error listing threads: %w", err)
	}
	defer rows.Close()

	page := &models.BoardPage{Board: *board, Threads: []models.ThreadView{}}
	for rows.Next() {
		var tv models.ThreadView
		if err := rows.Scan(&tv.ID, &tv.Name, &tv.Created, &tv.Sticky, &tv.BoardID, &tv.UserID,
			&tv.Owner.ID, &tv.Owner.Name, &tv.Owner.Avatar); err != nil {
			return nil, err
		}
		page.Threads = append(page.Threads, tv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return page, nil
}

// GetPosts returns a thread, its board and its posts in posting order.
func (fs *ForumService) GetPosts(threadID int64) (*models.ThreadPage, error) {
	thread, err := getThread(fs.DB, threadID)
	if err != nil {
		return nil, err
	}
	board, err := getBoard(fs.DB, thread.BoardID)
	if err != nil {
		return nil, err
	}

	rows, err := fs.DB.Query(`SELECT p.id, p.content, p.created, p.user_id, p.thread_id,
			COALESCE(u.id, 0), COALESCE(u.name, ?), COALESCE(i.filepath, di.filepath)
		FROM posts p
		LEFT JOIN users u ON u.id = p.user_id
		LEFT JOIN images i ON i.id = u.image_id
		JOIN images di ON di.id = 1
		WHERE p.thread_id = ?
		ORDER BY p.created ASC, p.id ASC`, models.DeletedUserName, threadID)
	if err != nil {
		return nil, fmt.Errorf("db error listing posts: %w", err)
	}
	defer rows.Close()

	page := &models.ThreadPage{Thread: *thread, Board: *board, Posts: []models.PostView{}}
	for rows.Next() {
		var pv models.PostView
		if err := rows.Scan(&pv.ID, &pv.Content, &pv.Created, &pv.UserID, &pv.ThreadID,
			&pv.Author.ID, &pv.Author.Name, &pv.Author.Avatar); err != nil {
			return nil, err
		}
		page.Posts = append(page.Posts, pv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return page, nil
}

// GetUser returns a user by id.
func (fs *ForumService) GetUser(userID int64) (*models.User, error) {
	return getUser(fs.DB, userID)
}

// GetImage returns the avatar image a user currently points at.
func (fs *ForumService) GetImage(userID int64) (*models.Image, error) {
	user, err := getUser(fs.DB, userID)
	if err != nil {
		return nil, err
	}

	var img models.Image
	err = fs.DB.QueryRow("SELECT id, md5, filepath FROM images WHERE id = ?", user.ImageID).
		Scan(&img.ID, &img.MD5, &img.Filepath)
	if err == sql.ErrNoRows {
		return nil, models.ErrNoImage
	}
	if err != nil {
		return nil, fmt.Errorf("db error getting image %d: %w", user.ImageID, err)
	}
	return &img, nil
}

// GetPost returns a post by id.
func (fs *ForumService) GetPost(postID int64) (*models.Post, error) {
	return getPost(fs.DB, postID)
}

// GetBoard returns a board by id.
func (fs *ForumService) GetBoard(boardID int64) (*models.Board, error) {
	return getBoard(fs.DB, boardID)
}

// GetThread returns a thread by id.
func (fs *ForumService) GetThread(threadID int64) (*models.Thread, error) {
	return getThread(fs.DB, threadID)
}
