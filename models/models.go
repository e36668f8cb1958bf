// forum/models/models.go
package models

// --- Core Data Models ---
// Dates are stored as unix epoch seconds, booleans as 1/0 integers.
// Privilege levels: 0 = normal user, 1 = admin.

type User struct {
	ID         int64
	Name       string
	Footer     string
	Privilege  int
	Registered int64
	ImageID    int64
}

type Image struct {
	ID       int64
	MD5      string
	Filepath string
}

type Board struct {
	ID      int64
	Name    string
	Created int64
	UserID  int64
}

type Thread struct {
	ID      int64
	Name    string
	Created int64
	Sticky  bool
	BoardID int64
	UserID  int64
}

type Post struct {
	ID       int64
	Content  string
	Created  int64
	UserID   int64
	ThreadID int64
}

// --- View Models ---

// Author is the owner context joined onto view rows. Content outlives its
// author, so a deleted owner shows up as ID 0 with the fallback name and
// the default avatar.
type Author struct {
	ID     int64
	Name   string
	Avatar string
}

// DeletedUserName is the fallback shown for authors whose account is gone.
const DeletedUserName = "deleted user"

type BoardView struct {
	Board
	Owner Author
}

type ThreadView struct {
	Thread
	Owner Author
}

type PostView struct {
	Post
	Author Author
}

// BoardPage is the composite result of the threads-of-a-board view.
type BoardPage struct {
	Board   Board
	Threads []ThreadView
}

// ThreadPage is the composite result of the posts-of-a-thread view.
type ThreadPage struct {
	Thread Thread
	Board  Board
	Posts  []PostView
}

// UnreadPost is one row of a user's unread ledger, joined with its thread
// and author context.
type UnreadPost struct {
	PostID     int64
	Content    string
	Created    int64
	ThreadID   int64
	ThreadName string
	Author     Author
}

// UserUpdate carries the optional fields of a profile update. An empty
// string means "leave this field alone". AvatarPath points at a staged
// upload on the local filesystem.
type UserUpdate struct {
	Name       string
	Footer     string
	AvatarPath string
}
