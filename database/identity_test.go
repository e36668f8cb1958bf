// forum/database/identity_test.go
package database

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/depsterr/slutprojektWSP21/models"
	"github.com/depsterr/slutprojektWSP21/utils"
)

func TestRegister(t *testing.T) {
	fs := setupTestService(t)

	id, err := fs.Register("alice1", "secret12", "secret12", "1.2.3.4")
	if err != nil {
		t.Fatalf("Expected registration to succeed, got: %v", err)
	}
	if id != 1 {
		t.Errorf("Expected first user id 1, got %d", id)
	}

	user, err := fs.GetUser(id)
	if err != nil {
		t.Fatalf("Failed to load new user: %v", err)
	}
	if user.Name != "alice1" || user.Privilege != 0 || user.ImageID != 1 {
		t.Errorf("Unexpected new user row: %+v", user)
	}
	if user.Footer == "" {
		t.Error("Expected new user to carry the default footer")
	}

	var digest string
	if err := fs.DB.QueryRow("SELECT digest FROM credentials WHERE user_id = ?", id).Scan(&digest); err != nil {
		t.Fatalf("Expected a credential row: %v", err)
	}
	if digest == "secret12" || digest == "" {
		t.Error("Expected a hashed credential, not the raw password")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	fs := setupTestService(t)

	registerUser(t, fs, "alice1")
	_, err := fs.Register("alice1", "secret12", "secret12", "other-ip")
	wantCode(t, err, models.CodeUserTaken)
}

func TestRegisterMismatchedPasswords(t *testing.T) {
	fs := setupTestService(t)

	_, err := fs.Register("alice1", "secret12", "different", "1.2.3.4")
	wantCode(t, err, models.CodeNoMatch)

	var count int
	if err := fs.DB.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		t.Fatalf("Failed to count users: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no user row after NOMATCH, got %d", count)
	}
}

func TestRegisterValidation(t *testing.T) {
	fs := setupTestService(t)

	cases := []struct {
		name     string
		username string
		password string
		want     models.Code
	}{
		{"digit-leading username", "1alice", "secret12", models.CodeBadUser},
		{"too short username", "ab", "secret12", models.CodeBadUser},
		{"markup in username", "<b>alice</b>", "secret12", models.CodeBadUser},
		{"short password", "alice1", "short", models.CodeBadPass},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fs.Register(tc.username, tc.password, tc.password, "ip-"+tc.name)
			wantCode(t, err, tc.want)
		})
	}
}

func TestRegisterThrottled(t *testing.T) {
	fs := setupTestService(t)

	// Three attempts pass, the fourth within the window does not.
	for i := 0; i < 3; i++ {
		fs.Register("alice1", "secret12", "different", "9.9.9.9")
	}
	_, err := fs.Register("alice1", "secret12", "secret12", "9.9.9.9")
	wantCode(t, err, models.CodeTimeout)
}

func TestLogin(t *testing.T) {
	fs := setupTestService(t)
	id := registerUser(t, fs, "alice1")

	got, err := fs.Login("alice1", "secret12", "5.6.7.8")
	if err != nil {
		t.Fatalf("Expected login to succeed, got: %v", err)
	}
	if got != id {
		t.Errorf("Expected user id %d, got %d", id, got)
	}

	_, err = fs.Login("nosuchuser", "secret12", "5.6.7.8")
	wantCode(t, err, models.CodeNoUser)

	_, err = fs.Login("alice1", "wrongpass", "5.6.7.8")
	wantCode(t, err, models.CodeWrongPass)
}

func TestUpdateUserNameAndFooter(t *testing.T) {
	fs := setupTestService(t)
	alice := registerUser(t, fs, "alice1")
	registerUser(t, fs, "bobby1")

	err := fs.UpdateUser(alice, models.UserUpdate{Name: "bobby1"})
	wantCode(t, err, models.CodeUserTaken)

	// Re-asserting your own name is allowed.
	if err := fs.UpdateUser(alice, models.UserUpdate{Name: "alice1"}); err != nil {
		t.Fatalf("Expected own-name update to succeed, got: %v", err)
	}

	if err := fs.UpdateUser(alice, models.UserUpdate{Name: "alice2", Footer: "hello <script>x</script>world"}); err != nil {
		t.Fatalf("Expected update to succeed, got: %v", err)
	}
	user, err := fs.GetUser(alice)
	if err != nil {
		t.Fatalf("Failed to reload user: %v", err)
	}
	if user.Name != "alice2" {
		t.Errorf("Expected renamed user, got %q", user.Name)
	}
	if strings.Contains(user.Footer, "<script>") {
		t.Errorf("Expected sanitized footer, got %q", user.Footer)
	}

	err = fs.UpdateUser(alice, models.UserUpdate{Footer: "<script>only markup</script>"})
	wantCode(t, err, models.CodeBadContent)
}

func TestAvatarDedup(t *testing.T) {
	fs := setupTestService(t)
	alice := registerUser(t, fs, "alice1")
	bobby := registerUser(t, fs, "bobby1")

	// Identical bytes from two users resolve to one Image row.
	if err := fs.UpdateUser(alice, models.UserUpdate{AvatarPath: stagePNG(t, color.White)}); err != nil {
		t.Fatalf("Failed to set alice's avatar: %v", err)
	}
	if err := fs.UpdateUser(bobby, models.UserUpdate{AvatarPath: stagePNG(t, color.White)}); err != nil {
		t.Fatalf("Failed to set bobby's avatar: %v", err)
	}

	var count int
	if err := fs.DB.QueryRow("SELECT COUNT(*) FROM images WHERE id != 1").Scan(&count); err != nil {
		t.Fatalf("Failed to count images: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected one deduplicated image row, got %d", count)
	}

	aliceUser, _ := fs.GetUser(alice)
	bobbyUser, _ := fs.GetUser(bobby)
	if aliceUser.ImageID != bobbyUser.ImageID {
		t.Errorf("Expected both users to share an image, got %d and %d", aliceUser.ImageID, bobbyUser.ImageID)
	}
}

func TestAvatarGarbageCollection(t *testing.T) {
	fs := setupTestService(t)
	alice := registerUser(t, fs, "alice1")
	bobby := registerUser(t, fs, "bobby1")

	if err := fs.UpdateUser(alice, models.UserUpdate{AvatarPath: stagePNG(t, color.White)}); err != nil {
		t.Fatalf("Failed to set alice's avatar: %v", err)
	}
	if err := fs.UpdateUser(bobby, models.UserUpdate{AvatarPath: stagePNG(t, color.White)}); err != nil {
		t.Fatalf("Failed to set bobby's avatar: %v", err)
	}
	sharedID := func() int64 {
		u, _ := fs.GetUser(alice)
		return u.ImageID
	}()

	var sharedPath string
	if err := fs.DB.QueryRow("SELECT filepath FROM images WHERE id = ?", sharedID).Scan(&sharedPath); err != nil {
		t.Fatalf("Failed to read shared image path: %v", err)
	}
	store := fs.avatars.(*utils.LocalStorage)
	onDisk := filepath.Join(store.AvatarDir, filepath.Base(sharedPath))
	if _, err := os.Stat(onDisk); err != nil {
		t.Fatalf("Expected avatar file on disk: %v", err)
	}

	// Alice moves on; bobby still references the image, so it survives.
	if err := fs.UpdateUser(alice, models.UserUpdate{AvatarPath: stagePNG(t, color.Black)}); err != nil {
		t.Fatalf("Failed to change alice's avatar: %v", err)
	}
	var exists int
	if err := fs.DB.QueryRow("SELECT COUNT(*) FROM images WHERE id = ?", sharedID).Scan(&exists); err != nil {
		t.Fatalf("Failed to check image row: %v", err)
	}
	if exists != 1 {
		t.Fatal("Expected still-referenced image to survive")
	}

	// Bobby moves on too; now the image is orphaned and collected.
	if err := fs.UpdateUser(bobby, models.UserUpdate{AvatarPath: stagePNG(t, color.Black)}); err != nil {
		t.Fatalf("Failed to change bobby's avatar: %v", err)
	}
	if err := fs.DB.QueryRow("SELECT COUNT(*) FROM images WHERE id = ?", sharedID).Scan(&exists); err != nil {
		t.Fatalf("Failed to check image row: %v", err)
	}
	if exists != 0 {
		t.Error("Expected orphaned image row to be collected")
	}
	if _, err := os.Stat(onDisk); !os.IsNotExist(err) {
		t.Error("Expected orphaned avatar file to be removed from disk")
	}
}

func TestSetAvatarRejectsGarbage(t *testing.T) {
	fs := setupTestService(t)
	alice := registerUser(t, fs, "alice1")

	staged := filepath.Join(t.TempDir(), "notanimage.png")
	if err := os.WriteFile(staged, []byte("this is not an image"), 0644); err != nil {
		t.Fatalf("Failed to write bogus file: %v", err)
	}
	err := fs.UpdateUser(alice, models.UserUpdate{AvatarPath: staged})
	wantCode(t, err, models.CodeNoImage)

	err = fs.UpdateUser(alice, models.UserUpdate{AvatarPath: filepath.Join(t.TempDir(), "missing.png")})
	wantCode(t, err, models.CodeNoImage)
}

func TestDeleteUser(t *testing.T) {
	fs := setupTestService(t)
	alice := registerUser(t, fs, "alice1")
	bobby := registerUser(t, fs, "bobby1")
	admin := registerAdmin(t, fs, "admin1")

	// A stranger may not delete someone else's account.
	err := fs.DeleteUser(alice, bobby)
	wantCode(t, err, models.CodeBadPerm)

	// Self-deletion works and cascades the credential.
	if err := fs.DeleteUser(alice, alice); err != nil {
		t.Fatalf("Expected self-deletion to succeed, got: %v", err)
	}
	var count int
	if err := fs.DB.QueryRow("SELECT COUNT(*) FROM credentials WHERE user_id = ?", alice).Scan(&count); err != nil {
		t.Fatalf("Failed to count credentials: %v", err)
	}
	if count != 0 {
		t.Error("Expected credential to cascade with the user")
	}
	_, err = fs.GetUser(alice)
	wantCode(t, err, models.CodeNoUser)

	// Admins may delete anyone.
	if err := fs.DeleteUser(bobby, admin); err != nil {
		t.Fatalf("Expected admin deletion to succeed, got: %v", err)
	}

	err = fs.DeleteUser(99, admin)
	wantCode(t, err, models.CodeNoUser)
}

func TestDeletedAuthorContentSurvives(t *testing.T) {
	fs := setupTestService(t)
	admin := registerAdmin(t, fs, "admin1")
	alice := registerUser(t, fs, "alice1")

	boardID, err := fs.CreateBoard("general", admin)
	if err != nil {
		t.Fatalf("Failed to create board: %v", err)
	}
	threadID, _, err := fs.CreateThreadWithPost("hello", "hi there", boardID, alice)
	if err != nil {
		t.Fatalf("Failed to create thread: %v", err)
	}

	if err := fs.DeleteUser(alice, alice); err != nil {
		t.Fatalf("Failed to delete alice: %v", err)
	}

	page, err := fs.GetPosts(threadID)
	if err != nil {
		t.Fatalf("Expected thread to survive its author: %v", err)
	}
	if len(page.Posts) != 1 {
		t.Fatalf("Expected 1 surviving post, got %d", len(page.Posts))
	}
	if page.Posts[0].Author.Name != models.DeletedUserName {
		t.Errorf("Expected fallback author name, got %q", page.Posts[0].Author.Name)
	}
	if page.Posts[0].Author.ID != 0 {
		t.Errorf("Expected zero author id for deleted user, got %d", page.Posts[0].Author.ID)
	}
	if page.Posts[0].Author.Avatar == "" {
		t.Error("Expected the default avatar for a deleted author")
	}
}

func TestSetPrivilege(t *testing.T) {
	fs := setupTestService(t)
	alice := registerUser(t, fs, "alice1")

	if err := fs.SetPrivilege(alice, 1); err != nil {
		t.Fatalf("Failed to set privilege: %v", err)
	}
	user, err := fs.GetUser(alice)
	if err != nil {
		t.Fatalf("Failed to reload user: %v", err)
	}
	if user.Privilege != 1 {
		t.Errorf("Expected privilege 1, got %d", user.Privilege)
	}
}

func TestPromoteByName(t *testing.T) {
	fs := setupTestService(t)
	alice := registerUser(t, fs, "alice1")

	if err := fs.PromoteByName("alice1"); err != nil {
		t.Fatalf("Failed to promote by name: %v", err)
	}
	user, _ := fs.GetUser(alice)
	if user.Privilege != 1 {
		t.Errorf("Expected promoted user, got privilege %d", user.Privilege)
	}

	err := fs.PromoteByName("nosuchuser")
	wantCode(t, err, models.CodeNoUser)
}

func TestLoginMissingCredential(t *testing.T) {
	fs := setupTestService(t)
	alice := registerUser(t, fs, "alice1")

	// A user row without a credential is an internal inconsistency, not a
	// WRONGPASS.
	if _, err := fs.DB.Exec("DELETE FROM credentials WHERE user_id = ?", alice); err != nil {
		t.Fatalf("Failed to break credential: %v", err)
	}
	_, err := fs.Login("alice1", "secret12", "1.1.1.1")
	if err == nil {
		t.Fatal("Expected an error for a credential-less user")
	}
	if code, ok := models.CodeOf(err); ok {
		t.Errorf("Expected an internal error, got engine code %s", code)
	}
}
