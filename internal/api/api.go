// Package api is the development backend: it serves the task service
// endpoints on sqlite so the client can run without the hosted service.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sundowners/taskhub/internal/auth"
	"github.com/sundowners/taskhub/internal/config"
	"github.com/sundowners/taskhub/internal/push"
)

// NewRouter returns the API routes rooted at "/". Mount it under the API
// base path with http.StripPrefix.
func NewRouter(cfg config.Config, sender push.Sender) *mux.Router {
	r := mux.NewRouter()
	private := func(h http.HandlerFunc) http.Handler { return auth.Require(h) }
	admin := func(h http.HandlerFunc) http.Handler { return auth.Require(auth.RequireAdmin(h)) }

	// Users
	r.HandleFunc("/users/register", handleRegister(cfg)).Methods(http.MethodPost)
	r.HandleFunc("/users/login", handleLogin).Methods(http.MethodPost)
	r.Handle("/users/logout", private(handleLogout)).Methods(http.MethodGet)
	r.Handle("/users/getUser", private(handleGetUser)).Methods(http.MethodGet)
	r.Handle("/users/getAllUsers", admin(handleGetAllUsers)).Methods(http.MethodGet)
	r.Handle("/users/update/{id}", private(handleUpdateUser)).Methods(http.MethodPatch)
	r.Handle("/users/delete/{id}", private(handleDeleteUser)).Methods(http.MethodDelete)
	r.Handle("/users/updateFcmToken", private(handleUpdateFCMToken)).Methods(http.MethodPatch)
	r.Handle("/users/sendTestNotification", private(handleSendTestNotification(sender))).Methods(http.MethodPost)

	// Tasks
	r.Handle("/tasks/register", private(handleCreateTask)).Methods(http.MethodPost)
	r.Handle("/tasks/getTasks", private(handleGetTasks)).Methods(http.MethodGet)
	r.Handle("/tasks/import", private(handleImportTasks)).Methods(http.MethodPost)
	r.Handle("/tasks/export", private(handleExportTasks)).Methods(http.MethodGet)

	// Other users and posts
	r.Handle("/oUser/getUser/{id}", private(handleOtherUser)).Methods(http.MethodGet)
	r.Handle("/oUser/getUserPosts/{id}", private(handleOtherUserPosts)).Methods(http.MethodGet)
	r.Handle("/oUser/getUserPost/{id}", private(handleGetPost)).Methods(http.MethodGet)
	r.Handle("/post/create", private(handleCreatePost)).Methods(http.MethodPost)
	r.Handle("/post/addComment/{id}", private(handleAddComment)).Methods(http.MethodPost)
	r.Handle("/post/deleteComment", private(handleDeleteComment)).Methods(http.MethodDelete)
	r.Handle("/follow/{id}", private(handleFollow)).Methods(http.MethodGet)
	r.Handle("/unfollow/{id}", private(handleUnfollow)).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeData writes the {"message", "data"} envelope of /users and /tasks.
func writeData(w http.ResponseWriter, status int, msg string, data any) {
	writeJSON(w, status, map[string]any{"message": msg, "data": data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func decode(r *http.Request, v any) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}
