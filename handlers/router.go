package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func SetupRouter(app App) *chi.Mux {
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(NewStructuredLogger(app.Logger()))
	mux.Use(middleware.Recoverer)
	mux.Use(SessionMiddleware(app))
	mux.Use(WriteLimitMiddleware(app))

	// Locally stored avatars. When avatars live in S3 the store reports
	// absolute URLs and this mount goes unused.
	if dir := app.AvatarDir(); dir != "" {
		mux.Handle("/avatars/*", http.StripPrefix("/avatars/", http.FileServer(http.Dir(dir))))
	}

	mux.Route("/api", func(r chi.Router) {
		// Public reads
		r.Get("/boards", MakeHandler(app, HandleBoards))
		r.Get("/boards/{boardID}", MakeHandler(app, HandleBoard))
		r.Get("/threads/{threadID}", MakeHandler(app, HandleThread))
		r.Get("/users/{userID}", MakeHandler(app, HandleUser))
		r.Get("/posts/{postID}", MakeHandler(app, HandlePost))

		// Authentication
		r.Post("/register", MakeHandler(app, HandleRegister))
		r.Post("/login", MakeHandler(app, HandleLogin))
		r.Post("/logout", MakeHandler(app, HandleLogout))

		// Logged-in actions
		r.Group(func(r chi.Router) {
			r.Use(RequireUser)
			r.Post("/user", MakeHandler(app, HandleUpdateUser))
			r.Post("/users/{userID}/delete", MakeHandler(app, HandleDeleteUser))

			r.Post("/boards", MakeHandler(app, HandleCreateBoard))
			r.Post("/boards/{boardID}/delete", MakeHandler(app, HandleDeleteBoard))
			r.Post("/boards/{boardID}/threads", MakeHandler(app, HandleCreateThread))
			r.Post("/threads/{threadID}/delete", MakeHandler(app, HandleDeleteThread))
			r.Post("/threads/{threadID}/posts", MakeHandler(app, HandleCreatePost))
			r.Post("/threads/{threadID}/sticky", MakeHandler(app, HandleToggleSticky))
			r.Post("/posts/{postID}/edit", MakeHandler(app, HandleEditPost))
			r.Post("/posts/{postID}/delete", MakeHandler(app, HandleDeletePost))
			r.Post("/posts/{postID}/report", MakeHandler(app, HandleReport))

			r.Post("/threads/{threadID}/watch", MakeHandler(app, HandleWatch))
			r.Post("/threads/{threadID}/unwatch", MakeHandler(app, HandleUnwatch))
			r.Post("/threads/{threadID}/read", MakeHandler(app, HandleMarkRead))
			r.Get("/watched", MakeHandler(app, HandleWatched))
			r.Get("/unread", MakeHandler(app, HandleUnread))
		})
	})

	// Debug hooks, LAN only
	mux.Route("/debug", func(r chi.Router) {
		r.Use(RequireLAN)
		r.Post("/users/{userID}/privilege", MakeHandler(app, HandleSetPrivilege))
	})

	return mux
}
