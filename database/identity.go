// forum/database/identity.go
package database

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/depsterr/slutprojektWSP21/config"
	"github.com/depsterr/slutprojektWSP21/models"
	"github.com/depsterr/slutprojektWSP21/utils"
	"github.com/depsterr/slutprojektWSP21/validate"

	"golang.org/x/crypto/bcrypt"
)

// Register creates a new account and its credential. The identifier is an
// opaque key (usually the caller's IP) fed to the attempt limiter; every
// call counts as an attempt whether it succeeds or not.
func (fs *ForumService) Register(username, password, repeat, identifier string) (int64, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	repeat = strings.TrimSpace(repeat)

	if !fs.attempts.Allow(identifier) {
		return 0, models.ErrTimeout
	}
	if password != repeat {
		return 0, models.ErrNoMatch
	}
	if !validate.Username(username) {
		return 0, models.ErrBadUser
	}
	if !validate.Password(password) {
		return 0, models.ErrBadPass
	}

	var existing int64
	err := fs.DB.QueryRow("SELECT id FROM users WHERE name = ?", username).Scan(&existing)
	if err == nil {
		return 0, models.ErrUserTaken
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("db error checking username: %w", err)
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	tx, err := fs.DB.Begin()
	if err != nil {
		return 0, err
	}
	defer fs.rollback(tx, "Register")

	res, err := tx.Exec("INSERT INTO users (name, footer, privilege, registered, image_id) VALUES (?, ?, 0, ?, 1)",
		username, config.DefaultFooter, now())
	if err != nil {
		// A concurrent registration may have taken the name since the check.
		if isUniqueViolation(err) {
			return 0, models.ErrUserTaken
		}
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	userID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec("INSERT INTO credentials (digest, user_id) VALUES (?, ?)", string(digest), userID); err != nil {
		return 0, fmt.Errorf("failed to insert credential: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	fs.logger.Info("New user registered", "user_id", userID)
	return userID, nil
}

// Login verifies credentials and returns the user id. It never reveals
// more than whether the username or the password was wrong.
func (fs *ForumService) Login(username, password, identifier string) (int64, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	if !fs.attempts.Allow(identifier) {
		return 0, models.ErrTimeout
	}

	var userID int64
	err := fs.DB.QueryRow("SELECT id FROM users WHERE name = ?", username).Scan(&userID)
	if err == sql.ErrNoRows {
		return 0, models.ErrNoUser
	}
	if err != nil {
		return 0, fmt.Errorf("db error looking up user: %w", err)
	}

	var digest string
	if err := fs.DB.QueryRow("SELECT digest FROM credentials WHERE user_id = ?", userID).Scan(&digest); err != nil {
		return 0, fmt.Errorf("db error looking up credential: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) != nil {
		return 0, models.ErrWrongPass
	}
	return userID, nil
}

// UpdateUser applies the non-empty fields of upd to the caller's own
// profile. Fields are independent; the first failing field aborts the
// call.
func (fs *ForumService) UpdateUser(callerID int64, upd models.UserUpdate) error {
	if _, err := getUser(fs.DB, callerID); err != nil {
		return err
	}

	if upd.Name != "" {
		name := strings.TrimSpace(upd.Name)
		if !validate.Username(name) {
			return models.ErrBadUser
		}
		var existing int64
		err := fs.DB.QueryRow("SELECT id FROM users WHERE name = ?", name).Scan(&existing)
		switch {
		case err == nil && existing != callerID:
			return models.ErrUserTaken
		case err == nil:
			// Caller already holds this name.
		case err == sql.ErrNoRows:
			if _, uerr := fs.DB.Exec("UPDATE users SET name = ? WHERE id = ?", name, callerID); uerr != nil {
				if isUniqueViolation(uerr) {
					return models.ErrUserTaken
				}
				return fmt.Errorf("failed to update username: %w", uerr)
			}
		default:
			return fmt.Errorf("db error checking username: %w", err)
		}
	}

	if upd.Footer != "" {
		footer := validate.SanitizeContent(strings.TrimSpace(upd.Footer))
		if footer == "" {
			return models.ErrBadContent
		}
		if _, err := fs.DB.Exec("UPDATE users SET footer = ? WHERE id = ?", footer, callerID); err != nil {
			return fmt.Errorf("failed to update footer: %w", err)
		}
	}

	if upd.AvatarPath != "" {
		return fs.setAvatar(callerID, upd.AvatarPath)
	}
	return nil
}

// setAvatar runs the content-addressed dedup algorithm: identical bytes
// resolve to one Image row regardless of how many users upload them, and
// the caller's previous image is collected once unreferenced.
func (fs *ForumService) setAvatar(userID int64, stagingPath string) error {
	data, err := os.ReadFile(stagingPath)
	if err != nil {
		fs.logger.Warn("Could not read staged avatar", "path", stagingPath, "error", err)
		return models.ErrNoImage
	}
	contentType, err := utils.ValidateAvatar(data)
	if err != nil {
		fs.logger.Warn("Rejected avatar upload", "error", err)
		return models.ErrNoImage
	}

	digest := contentDigest(data)
	filename := digest + utils.AvatarExt(contentType)

	tx, err := fs.DB.Begin()
	if err != nil {
		return err
	}
	defer fs.rollback(tx, "setAvatar")

	var oldImageID int64
	if err := tx.QueryRow("SELECT image_id FROM users WHERE id = ?", userID).Scan(&oldImageID); err != nil {
		if err == sql.ErrNoRows {
			return models.ErrNoUser
		}
		return fmt.Errorf("db error reading current avatar: %w", err)
	}

	var imageID int64
	err = tx.QueryRow("SELECT id FROM images WHERE md5 = ?", digest).Scan(&imageID)
	switch {
	case err == sql.ErrNoRows:
		// First sight of these bytes: persist them, then record the row.
		path, serr := fs.avatars.Save(filename, data, contentType)
		if serr != nil {
			return fmt.Errorf("failed to store avatar: %w", serr)
		}
		if thumb, terr := utils.AvatarThumb(data, config.ThumbnailWidth, config.ThumbnailHeight); terr != nil {
			fs.logger.Warn("Failed to render avatar thumbnail", "error", terr)
		} else if _, terr := fs.avatars.Save(utils.ThumbName(filename), thumb, "image/jpeg"); terr != nil {
			fs.logger.Warn("Failed to store avatar thumbnail", "error", terr)
		}
		// The unique digest column resolves check-then-insert races: a
		// concurrent identical upload leaves exactly one row behind.
		if _, ierr := tx.Exec("INSERT INTO images (md5, filepath) VALUES (?, ?) ON CONFLICT(md5) DO NOTHING", digest, path); ierr != nil {
			return fmt.Errorf("failed to insert image row: %w", ierr)
		}
		if qerr := tx.QueryRow("SELECT id FROM images WHERE md5 = ?", digest).Scan(&imageID); qerr != nil {
			return fmt.Errorf("db error resolving image row: %w", qerr)
		}
	case err != nil:
		return fmt.Errorf("db error checking image digest: %w", err)
	}

	if _, err := tx.Exec("UPDATE users SET image_id = ? WHERE id = ?", imageID, userID); err != nil {
		return fmt.Errorf("failed to repoint avatar: %w", err)
	}

	orphan, err := fs.collectImageIfUnused(tx, oldImageID)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	fs.removeAvatarFiles(orphan)

	fs.logger.Info("Avatar updated", "user_id", userID, "image_id", imageID)
	return nil
}

// DeleteUser removes an account. Only the subject themselves or an admin
// may do this. The account's credential, watches and unread rows cascade;
// boards, threads and posts the user authored stay behind.
func (fs *ForumService) DeleteUser(userID, callerID int64) error {
	subject, err := getUser(fs.DB, userID)
	if err != nil {
		return err
	}
	caller, err := getUser(fs.DB, callerID)
	if err != nil {
		return err
	}
	if callerID != userID && caller.Privilege <= 0 {
		return models.ErrBadPerm
	}

	tx, err := fs.DB.Begin()
	if err != nil {
		return err
	}
	defer fs.rollback(tx, "DeleteUser")

	if _, err := tx.Exec("DELETE FROM users WHERE id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	orphan, err := fs.collectImageIfUnused(tx, subject.ImageID)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	fs.removeAvatarFiles(orphan)

	fs.logger.Info("User deleted", "user_id", userID, "caller_id", callerID)
	return nil
}

// SetPrivilege assigns a privilege level directly. Debug hook: no
// validation, no permission check.
func (fs *ForumService) SetPrivilege(userID int64, level int) error {
	_, err := fs.DB.Exec("UPDATE users SET privilege = ? WHERE id = ?", level, userID)
	return err
}

// PromoteByName grants admin privilege to the named user. Bootstrap path
// so a fresh deployment can mint its first admin from the environment.
func (fs *ForumService) PromoteByName(username string) error {
	var id int64
	err := fs.DB.QueryRow("SELECT id FROM users WHERE name = ?", username).Scan(&id)
	if err == sql.ErrNoRows {
		return models.ErrNoUser
	}
	if err != nil {
		return fmt.Errorf("db error looking up user: %w", err)
	}
	return fs.SetPrivilege(id, 1)
}

// collectImageIfUnused deletes the Image row when no user references it
// anymore and returns the filepath to remove from storage after the
// surrounding transaction commits. The reserved default (id 1) is never
// collected.
func (fs *ForumService) collectImageIfUnused(tx dbtx, imageID int64) (string, error) {
	if imageID <= 1 {
		return "", nil
	}
	var refs int
	if err := tx.QueryRow("SELECT COUNT(*) FROM users WHERE image_id = ?", imageID).Scan(&refs); err != nil {
		return "", fmt.Errorf("db error counting image references: %w", err)
	}
	if refs > 0 {
		return "", nil
	}
	var path string
	err := tx.QueryRow("SELECT filepath FROM images WHERE id = ?", imageID).Scan(&path)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("db error reading image path: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM images WHERE id = ?", imageID); err != nil {
		return "", fmt.Errorf("failed to delete image row: %w", err)
	}
	return path, nil
}

// removeAvatarFiles drops an orphaned avatar and its thumbnail from
// storage. Failures are logged, not surfaced: the rows are already gone.
func (fs *ForumService) removeAvatarFiles(path string) {
	if path == "" {
		return
	}
	if err := fs.avatars.Delete(path); err != nil {
		fs.logger.Warn("Failed to remove avatar file", "path", path, "error", err)
	}
	if err := fs.avatars.Delete(utils.ThumbName(path)); err != nil {
		fs.logger.Warn("Failed to remove avatar thumbnail", "path", path, "error", err)
	}
}
