// forum/handlers/actions.go

package handlers

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/depsterr/slutprojektWSP21/config"
	"github.com/depsterr/slutprojektWSP21/models"
	"github.com/depsterr/slutprojektWSP21/utils"

	"github.com/google/uuid"
)

// setSessionCookie opens a session for userID and hands the token to the
// client.
func setSessionCookie(w http.ResponseWriter, r *http.Request, app App, userID int64) {
	token := app.Sessions().Create(userID)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// HandleRegister creates an account and logs the new user in.
func HandleRegister(w http.ResponseWriter, r *http.Request, app App) {
	userID, err := app.Engine().Register(
		r.FormValue("username"),
		r.FormValue("password"),
		r.FormValue("repeat_password"),
		utils.GetIPAddress(r),
	)
	if err != nil {
		respondError(w, err, app)
		return
	}
	setSessionCookie(w, r, app, userID)
	respondJSON(w, http.StatusCreated, map[string]int64{"id": userID}, app)
}

// HandleLogin authenticates and opens a session.
func HandleLogin(w http.ResponseWriter, r *http.Request, app App) {
	userID, err := app.Engine().Login(
		r.FormValue("username"),
		r.FormValue("password"),
		utils.GetIPAddress(r),
	)
	if err != nil {
		respondError(w, err, app)
		return
	}
	setSessionCookie(w, r, app, userID)
	respondJSON(w, http.StatusOK, map[string]int64{"id": userID}, app)
}

// HandleLogout drops the caller's session.
func HandleLogout(w http.ResponseWriter, r *http.Request, app App) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		app.Sessions().Destroy(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true}, app)
}

// stageAvatar copies an uploaded avatar to the staging directory and
// returns its path, or "" when no file was sent.
func stageAvatar(r *http.Request, app App) (string, error) {
	if r.MultipartForm == nil {
		return "", nil
	}
	file, header, err := r.FormFile("avatar")
	if err == http.ErrMissingFile {
		return "", nil
	}
	if err != nil {
		return "", models.ErrBadReq
	}
	defer file.Close()

	// A transport-limit failure, not an image problem: the bytes are never
	// inspected.
	if header.Size > config.MaxAvatarSize {
		return "", models.ErrBadReq
	}
	data, err := io.ReadAll(io.LimitReader(file, config.MaxAvatarSize))
	if err != nil {
		return "", models.ErrNoImage
	}

	staged := filepath.Join(app.StagingDir(), uuid.New().String()+filepath.Ext(header.Filename))
	if err := os.WriteFile(staged, data, 0644); err != nil {
		return "", err
	}
	return staged, nil
}

// HandleUpdateUser applies profile changes for the logged-in user. Name,
// footer and avatar are all optional; an uploaded avatar is staged to disk
// first and handed to the engine by path.
func HandleUpdateUser(w http.ResponseWriter, r *http.Request, app App) {
	callerID, _ := sessionUser(r, app)

	if err := r.ParseMultipartForm(config.MaxAvatarSize); err != nil && err != http.ErrNotMultipart {
		respondError(w, models.ErrBadReq, app)
		return
	}

	staged, err := stageAvatar(r, app)
	if err != nil {
		respondError(w, err, app)
		return
	}
	if staged != "" {
		defer func() {
			if err := os.Remove(staged); err != nil {
				app.Logger().Warn("Failed to remove staged avatar", "path", staged, "error", err)
			}
		}()
	}

	err = app.Engine().UpdateUser(callerID, models.UserUpdate{
		Name:       r.FormValue("name"),
		Footer:     r.FormValue("footer"),
		AvatarPath: staged,
	})
	if err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true}, app)
}

// HandleDeleteUser deletes an account (own account, or any account for
// admins) and invalidates its sessions.
func HandleDeleteUser(w http.ResponseWriter, r *http.Request, app App) {
	callerID, _ := sessionUser(r, app)
	userID, err := urlID(r, "userID")
	if err != nil {
		respondError(w, err, app)
		return
	}
	if err := app.Engine().DeleteUser(userID, callerID); err != nil {
		respondError(w, err, app)
		return
	}
	app.Sessions().DestroyUser(userID)
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true}, app)
}

// --- Watch actions ---

// HandleWatch subscribes the caller to a thread.
func HandleWatch(w http.ResponseWriter, r *http.Request, app App) {
	callerID, _ := sessionUser(r, app)
	threadID, err := urlID(r, "threadID")
	if err != nil {
		respondError(w, err, app)
		return
	}
	if err := app.Engine().StartWatching(callerID, threadID); err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true}, app)
}

// HandleUnwatch unsubscribes the caller from a thread.
func HandleUnwatch(w http.ResponseWriter, r *http.Request, app App) {
	callerID, _ := sessionUser(r, app)
	threadID, err := urlID(r, "threadID")
	if err != nil {
		respondError(w, err, app)
		return
	}
	if err := app.Engine().StopWatching(callerID, threadID); err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true}, app)
}

// HandleWatched lists the caller's watched threads.
func HandleWatched(w http.ResponseWriter, r *http.Request, app App) {
	callerID, _ := sessionUser(r, app)
	threads, err := app.Engine().GetWatched(callerID)
	if err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"threads": threads}, app)
}

// HandleUnread lists the caller's unread ledger.
func HandleUnread(w http.ResponseWriter, r *http.Request, app App) {
	callerID, _ := sessionUser(r, app)
	unread, err := app.Engine().GetUnread(callerID)
	if err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"unread": unread}, app)
}

// HandleMarkRead clears the caller's unreads in one thread.
func HandleMarkRead(w http.ResponseWriter, r *http.Request, app App) {
	callerID, _ := sessionUser(r, app)
	threadID, err := urlID(r, "threadID")
	if err != nil {
		respondError(w, err, app)
		return
	}
	if err := app.Engine().MarkThreadRead(callerID, threadID); err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true}, app)
}
