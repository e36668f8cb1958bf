// forum/database/watch_test.go
package database

import (
	"testing"

	"github.com/depsterr/slutprojektWSP21/models"
)

func TestWatchLifecycle(t *testing.T) {
	fs := setupTestService(t)
	admin := registerAdmin(t, fs, "admin1")
	alice := registerUser(t, fs, "alice1")
	boardID, _ := fs.CreateBoard("general", admin)
	threadID, _, _ := fs.CreateThreadWithPost("hello", "hi there", boardID, admin)

	err := fs.StartWatching(alice, 99)
	wantCode(t, err, models.CodeNoThread)
	err = fs.StartWatching(99, threadID)
	wantCode(t, err, models.CodeNoUser)

	if err := fs.StartWatching(alice, threadID); err != nil {
		t.Fatalf("Expected watch to succeed, got: %v", err)
	}
	// Watching twice leaves a single row.
	if err := fs.StartWatching(alice, threadID); err != nil {
		t.Fatalf("Expected repeat watch to succeed, got: %v", err)
	}
	var count int
	if err := fs.DB.QueryRow("SELECT COUNT(*) FROM watches WHERE user_id = ?", alice).Scan(&count); err != nil {
		t.Fatalf("Failed to count watches: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected one watch row, got %d", count)
	}

	watched, err := fs.GetWatched(alice)
	if err != nil {
		t.Fatalf("Failed to list watched threads: %v", err)
	}
	if len(watched) != 1 || watched[0].ID != threadID {
		t.Errorf("Expected watched list [%d], got %+v", threadID, watched)
	}

	if err := fs.StopWatching(alice, threadID); err != nil {
		t.Fatalf("Expected unwatch to succeed, got: %v", err)
	}
	// Unwatching twice is a no-op.
	if err := fs.StopWatching(alice, threadID); err != nil {
		t.Fatalf("Expected repeat unwatch to succeed, got: %v", err)
	}
	watched, _ = fs.GetWatched(alice)
	if len(watched) != 0 {
		t.Errorf("Expected empty watched list, got %+v", watched)
	}
}

func TestGetWatchedMissingUser(t *testing.T) {
	fs := setupTestService(t)

	watched, err := fs.GetWatched(99)
	if err != nil {
		t.Fatalf("Expected no error for missing user, got: %v", err)
	}
	if len(watched) != 0 {
		t.Errorf("Expected empty list for missing user, got %+v", watched)
	}

	unread, err := fs.GetUnread(99)
	if err != nil {
		t.Fatalf("Expected no error for missing user, got: %v", err)
	}
	if len(unread) != 0 {
		t.Errorf("Expected empty ledger for missing user, got %+v", unread)
	}
}

func TestUnreadFanout(t *testing.T) {
	fs := setupTestService(t)
	admin := registerAdmin(t, fs, "admin1")
	alice := registerUser(t, fs, "alice1")
	bobby := registerUser(t, fs, "bobby1")
	boardID, _ := fs.CreateBoard("general", admin)
	threadID, _, _ := fs.CreateThreadWithPost("hello", "hi there", boardID, admin)

	// No watchers yet: no fan-out.
	if _, err := fs.CreatePost("second post", threadID, admin); err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}
	unread, _ := fs.GetUnread(alice)
	if len(unread) != 0 {
		t.Fatalf("Expected no unreads before watching, got %d", len(unread))
	}

	if err := fs.StartWatching(alice, threadID); err != nil {
		t.Fatalf("Failed to watch: %v", err)
	}
	if err := fs.StartWatching(bobby, threadID); err != nil {
		t.Fatalf("Failed to watch: %v", err)
	}

	postID, err := fs.CreatePost("third", threadID, bobby)
	if err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}

	// Alice gets exactly the new post; past posts are not backfilled.
	unread, err = fs.GetUnread(alice)
	if err != nil {
		t.Fatalf("Failed to load unreads: %v", err)
	}
	if len(unread) != 1 || unread[0].PostID != postID {
		t.Fatalf("Expected exactly the new post unread, got %+v", unread)
	}
	if unread[0].ThreadID != threadID || unread[0].ThreadName != "hello" {
		t.Errorf("Expected thread context on the unread row, got %+v", unread[0])
	}
	if unread[0].Author.Name != "bobby1" {
		t.Errorf("Expected author context on the unread row, got %+v", unread[0].Author)
	}

	// Fan-out covers every watcher, the author included: bobby watches the
	// thread, so his own post lands in his ledger too.
	unread, err = fs.GetUnread(bobby)
	if err != nil {
		t.Fatalf("Failed to load unreads: %v", err)
	}
	if len(unread) != 1 || unread[0].PostID != postID {
		t.Errorf("Expected the watching author to receive an unread row, got %+v", unread)
	}
}

func TestMarkThreadRead(t *testing.T) {
	fs := setupTestService(t)
	admin := registerAdmin(t, fs, "admin1")
	alice := registerUser(t, fs, "alice1")
	boardID, _ := fs.CreateBoard("general", admin)
	threadOne, _, _ := fs.CreateThreadWithPost("first thread", "op", boardID, admin)
	threadTwo, _, _ := fs.CreateThreadWithPost("second thread", "op", boardID, admin)

	fs.StartWatching(alice, threadOne)
	fs.StartWatching(alice, threadTwo)
	fs.CreatePost("one", threadOne, admin)
	fs.CreatePost("two", threadOne, admin)
	otherPost, _ := fs.CreatePost("elsewhere", threadTwo, admin)

	if err := fs.MarkThreadRead(alice, threadOne); err != nil {
		t.Fatalf("Expected mark-read to succeed, got: %v", err)
	}

	// Only the other thread's post remains unread.
	unread, err := fs.GetUnread(alice)
	if err != nil {
		t.Fatalf("Failed to load unreads: %v", err)
	}
	if len(unread) != 1 || unread[0].PostID != otherPost {
		t.Fatalf("Expected only the other thread's post unread, got %+v", unread)
	}

	// Marking again changes nothing and errors nothing.
	if err := fs.MarkThreadRead(alice, threadOne); err != nil {
		t.Fatalf("Expected repeat mark-read to succeed, got: %v", err)
	}
	unread, _ = fs.GetUnread(alice)
	if len(unread) != 1 {
		t.Errorf("Expected mark-read to be idempotent, got %d rows", len(unread))
	}

	err = fs.MarkThreadRead(alice, 99)
	wantCode(t, err, models.CodeNoThread)
}

// TestForumScenario walks the full register-to-notification flow.
func TestForumScenario(t *testing.T) {
	fs := setupTestService(t)

	aliceID, err := fs.Register("alice1", "secret12", "secret12", "1.2.3.4")
	if err != nil {
		t.Fatalf("Failed to register: %v", err)
	}
	if aliceID != 1 {
		t.Fatalf("Expected first user id 1, got %d", aliceID)
	}
	if err := fs.SetPrivilege(aliceID, 1); err != nil {
		t.Fatalf("Failed to promote: %v", err)
	}

	boardID, err := fs.CreateBoard("general", aliceID)
	if err != nil {
		t.Fatalf("Failed to create board: %v", err)
	}
	threadID, _, err := fs.CreateThreadWithPost("hello", "hi there", boardID, aliceID)
	if err != nil {
		t.Fatalf("Failed to create thread: %v", err)
	}
	if _, err := fs.CreatePost("second post", threadID, aliceID); err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}

	bobbyID := registerUser(t, fs, "bobby1")
	if err := fs.StartWatching(bobbyID, threadID); err != nil {
		t.Fatalf("Failed to watch: %v", err)
	}
	thirdID, err := fs.CreatePost("third", threadID, aliceID)
	if err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}

	unread, err := fs.GetUnread(bobbyID)
	if err != nil {
		t.Fatalf("Failed to load unreads: %v", err)
	}
	if len(unread) != 1 {
		t.Fatalf("Expected exactly one unread post, got %d", len(unread))
	}
	if unread[0].PostID != thirdID || unread[0].Content != "third" {
		t.Errorf("Expected the third post to be unread, got %+v", unread[0])
	}
}
