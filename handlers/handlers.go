// forum/handlers/handlers.go

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/depsterr/slutprojektWSP21/database"
	"github.com/depsterr/slutprojektWSP21/models"

	"github.com/go-chi/chi/v5"
)

// App is an interface that defines the dependencies our handlers need.
type App interface {
	Engine() *database.ForumService
	Writes() *models.WriteLimiter
	Sessions() *SessionStore
	Logger() *slog.Logger
	StagingDir() string
	AvatarDir() string
}

// MakeHandler adapts an App-aware handler function to http.HandlerFunc.
func MakeHandler(app App, fn func(http.ResponseWriter, *http.Request, App)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fn(w, r, app)
	}
}

// respondJSON sends a JSON response with a given status code.
func respondJSON(w http.ResponseWriter, status int, payload interface{}, app App) {
	response, err := json.Marshal(payload)
	if err != nil {
		app.Logger().Error("Failed to marshal JSON payload", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		if _, werr := w.Write([]byte(`{"error":"Failed to marshal JSON response"}`)); werr != nil {
			app.Logger().Error("Failed to write internal server error response", "error", werr)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(response); err != nil {
		app.Logger().Error("Failed to write JSON response", "error", err)
	}
}

// statusFor maps an engine error code to an HTTP status.
func statusFor(code models.Code) int {
	switch code {
	case models.CodeTimeout:
		return http.StatusTooManyRequests
	case models.CodeBadPerm:
		return http.StatusForbidden
	case models.CodeWrongPass:
		return http.StatusUnauthorized
	case models.CodeNoUser, models.CodeNoBoard, models.CodeNoThread, models.CodeNoPost, models.CodeNoImage:
		return http.StatusNotFound
	case models.CodeUserTaken, models.CodeBoardTaken, models.CodeThreadTaken:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// respondError translates an engine error into a JSON error response.
// Errors without an engine code are internal and deliberately opaque to the
// client.
func respondError(w http.ResponseWriter, err error, app App) {
	code, ok := models.CodeOf(err)
	if !ok {
		app.Logger().Error("Internal error handling request", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"}, app)
		return
	}
	respondJSON(w, statusFor(code), map[string]string{
		"code":  string(code),
		"error": models.Messages[code],
	}, app)
}

// urlID parses a numeric chi URL parameter.
func urlID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, models.ErrBadReq
	}
	return id, nil
}

// --- Read handlers ---

// HandleBoards lists all boards with owner context.
func HandleBoards(w http.ResponseWriter, r *http.Request, app App) {
	boards, err := app.Engine().GetBoards()
	if err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"boards": boards}, app)
}

// HandleBoard serves one board and its threads.
func HandleBoard(w http.ResponseWriter, r *http.Request, app App) {
	boardID, err := urlID(r, "boardID")
	if err != nil {
		respondError(w, err, app)
		return
	}
	page, err := app.Engine().GetThreads(boardID)
	if err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusOK, page, app)
}

// HandleThread serves one thread and its posts. A logged-in viewer has the
// thread marked read as a side effect, mirroring what reading it means.
func HandleThread(w http.ResponseWriter, r *http.Request, app App) {
	threadID, err := urlID(r, "threadID")
	if err != nil {
		respondError(w, err, app)
		return
	}
	page, err := app.Engine().GetPosts(threadID)
	if err != nil {
		respondError(w, err, app)
		return
	}
	if userID, ok := sessionUser(r, app); ok {
		if err := app.Engine().MarkThreadRead(userID, threadID); err != nil {
			app.Logger().Error("Failed to mark thread read", "thread_id", threadID, "user_id", userID, "error", err)
		}
	}
	respondJSON(w, http.StatusOK, page, app)
}

// HandleUser serves a public user profile.
func HandleUser(w http.ResponseWriter, r *http.Request, app App) {
	userID, err := urlID(r, "userID")
	if err != nil {
		respondError(w, err, app)
		return
	}
	user, err := app.Engine().GetUser(userID)
	if err != nil {
		respondError(w, err, app)
		return
	}
	img, err := app.Engine().GetImage(userID)
	if err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":         user.ID,
		"name":       user.Name,
		"footer":     user.Footer,
		"privilege":  user.Privilege,
		"registered": user.Registered,
		"avatar":     img.Filepath,
	}, app)
}

// HandlePost serves a single post, used for previews.
func HandlePost(w http.ResponseWriter, r *http.Request, app App) {
	postID, err := urlID(r, "postID")
	if err != nil {
		respondError(w, err, app)
		return
	}
	post, err := app.Engine().GetPost(postID)
	if err != nil {
		respondError(w, err, app)
		return
	}
	respondJSON(w, http.StatusOK, post, app)
}
