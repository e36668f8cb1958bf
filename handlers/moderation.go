// forum/handlers/moderation.go

package handlers

import (
	"net/http"
	"strconv"

	"github.com/depsterr/slutprojektWSP21/models"
)

// Content creation and moderation actions. Permission decisions live in
// the engine; these handlers only move form values across.

// HandleCreateBoard creates a board. Admin only, enforced by the engine.
func HandleCreateBoard(w http.ResponseWriter, r *http.Request, app App) {
	callerID, _ := sessionUser(r, app)
	boardID, err := app.Engine().CreateBoard(r.FormValue("name"), callerID)
	if err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{"id": boardID}, app)
}

// HandleDeleteBoard removes a board and everything under it.
func HandleDeleteBoard(w http.ResponseWriter, r *http.Request, app App) {
	callerID, _ := sessionUser(r, app)
	boardID, err := urlID(r, "boardID")
	if err != nil {
		respondError(w, err, app)
		return
	}
	if err := app.Engine().DeleteBoard(boardID, callerID); err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true}, app)
}

// HandleCreateThread starts a thread with its opening post.
func HandleCreateThread(w http.ResponseWriter, r *http.Request, app App) {
	callerID, _ := sessionUser(r, app)
	boardID, err := urlID(r, "boardID")
	if err != nil {
		respondError(w, err, app)
		return
	}
	threadID, postID, err := app.Engine().CreateThreadWithPost(
		r.FormValue("name"), r.FormValue("content"), boardID, callerID)
	if err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{"id": threadID, "post_id": postID}, app)
}

// HandleDeleteThread removes a thread and its posts.
func HandleDeleteThread(w http.ResponseWriter, r *http.Request, app App) {
	callerID, _ := sessionUser(r, app)
	threadID, err := urlID(r, "threadID")
	if err != nil {
		respondError(w, err, app)
		return
	}
	if err := app.Engine().DeleteThread(threadID, callerID); err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true}, app)
}

// HandleCreatePost appends a post to a thread.
func HandleCreatePost(w http.ResponseWriter, r *http.Request, app App) {
	callerID, _ := sessionUser(r, app)
	threadID, err := urlID(r, "threadID")
	if err != nil {
		respondError(w, err, app)
		return
	}
	postID, err := app.Engine().CreatePost(r.FormValue("content"), threadID, callerID)
	if err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{"id": postID}, app)
}

// HandleEditPost rewrites a post's content. Author only.
func HandleEditPost(w http.ResponseWriter, r *http.Request, app App) {
	callerID, _ := sessionUser(r, app)
	postID, err := urlID(r, "postID")
	if err != nil {
		respondError(w, err, app)
		return
	}
	if err := app.Engine().EditPost(postID, callerID, r.FormValue("content")); err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true}, app)
}

// HandleDeletePost removes a post; deleting a thread's opening post removes
// the thread. The response tells the client which happened.
func HandleDeletePost(w http.ResponseWriter, r *http.Request, app App) {
	callerID, _ := sessionUser(r, app)
	postID, err := urlID(r, "postID")
	if err != nil {
		respondError(w, err, app)
		return
	}
	threadSurvives, err := app.Engine().DeletePost(postID, callerID)
	if err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true, "thread_survives": threadSurvives}, app)
}

// HandleToggleSticky pins or unpins a thread.
func HandleToggleSticky(w http.ResponseWriter, r *http.Request, app App) {
	callerID, _ := sessionUser(r, app)
	threadID, err := urlID(r, "threadID")
	if err != nil {
		respondError(w, err, app)
		return
	}
	sticky, err := strconv.ParseBool(r.FormValue("sticky"))
	if err != nil {
		respondError(w, models.ErrBadReq, app)
		return
	}
	if err := app.Engine().UpdateStickyThread(threadID, sticky, callerID); err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true}, app)
}

// HandleReport flags a post for every admin's attention.
func HandleReport(w http.ResponseWriter, r *http.Request, app App) {
	callerID, _ := sessionUser(r, app)
	postID, err := urlID(r, "postID")
	if err != nil {
		respondError(w, err, app)
		return
	}
	if err := app.Engine().Report(postID, callerID); err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true}, app)
}

// HandleSetPrivilege assigns a privilege level directly. Only reachable
// from the LAN-restricted debug route.
func HandleSetPrivilege(w http.ResponseWriter, r *http.Request, app App) {
	userID, err := urlID(r, "userID")
	if err != nil {
		respondError(w, err, app)
		return
	}
	level, err := strconv.Atoi(r.FormValue("level"))
	if err != nil {
		respondError(w, models.ErrBadReq, app)
		return
	}
	if err := app.Engine().SetPrivilege(userID, level); err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true}, app)
}
