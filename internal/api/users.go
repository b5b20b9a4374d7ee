package api

import (
	"errors"
	"log"
	"net/http"
	"slices"
	"strings"

	"github.com/gorilla/mux"

	"github.com/sundowners/taskhub/internal/auth"
	"github.com/sundowners/taskhub/internal/config"
	"github.com/sundowners/taskhub/internal/db"
	"github.com/sundowners/taskhub/internal/model"
	"github.com/sundowners/taskhub/internal/push"
	"github.com/sundowners/taskhub/internal/rest"
	"github.com/sundowners/taskhub/internal/validate"
)

func handleRegister(cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rest.Registration
		if !decode(r, &req) {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if err := validate.Name(req.Name); err != nil {
			writeError(w, http.StatusBadRequest, rest.Message(err))
			return
		}
		if err := validate.Credentials(req.Email, req.Password); err != nil {
			writeError(w, http.StatusBadRequest, rest.Message(err))
			return
		}

		role := model.RoleMember
		if slices.Contains(cfg.AdminEmails, req.Email) {
			role = model.RoleAdmin
		}
		user, err := db.CreateUser(strings.TrimSpace(req.Name), req.Email, req.Password, role)
		if errors.Is(err, db.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "User already exists")
			return
		}
		if err != nil {
			log.Printf("error creating user: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		writeData(w, http.StatusCreated, "User registered successfully", user)
	}
}

func handleLogin(w http.ResponseWriter, r *http.Request) {
	var req rest.Credentials
	if !decode(r, &req) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := db.Authenticate(req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, db.ErrInvalidCredentials) {
			log.Printf("error authenticating: %v", err)
		}
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := db.CreateSession(user.ID)
	if err != nil {
		log.Printf("error creating session: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	auth.SetSessionCookie(w, token)
	writeData(w, http.StatusOK, "Login successful", rest.LoginResult{Token: token, User: user})
}

func handleLogout(w http.ResponseWriter, r *http.Request) {
	auth.Logout(w, r)
	writeData(w, http.StatusOK, "Logout successful", nil)
}

func handleGetUser(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, "User fetched successfully", auth.CurrentUser(r))
}

func handleGetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := db.ListUsers()
	if err != nil {
		log.Printf("error listing users: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeData(w, http.StatusOK, "Users fetched successfully", users)
}

// canManage reports whether the caller may change the account id.
func canManage(r *http.Request, id string) bool {
	u := auth.CurrentUser(r)
	return u != nil && (u.ID == id || u.IsAdmin())
}

func handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !canManage(r, id) {
		writeError(w, http.StatusForbidden, "You can only update your own account")
		return
	}
	var req rest.UserUpdate
	if !decode(r, &req) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email != "" {
		if err := validate.Email(req.Email); err != nil {
			writeError(w, http.StatusBadRequest, rest.Message(err))
			return
		}
	}
	if req.Password != "" {
		if err := validate.Password(req.Password); err != nil {
			writeError(w, http.StatusBadRequest, rest.Message(err))
			return
		}
	}

	user, err := db.UpdateUser(id, strings.TrimSpace(req.Name), req.Email, req.Password)
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, "User not found")
		return
	case errors.Is(err, db.ErrEmailTaken):
		writeError(w, http.StatusConflict, "Email already in use")
		return
	case err != nil:
		log.Printf("error updating user: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeData(w, http.StatusOK, "User updated successfully", user)
}

func handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !canManage(r, id) {
		writeError(w, http.StatusForbidden, "You can only delete your own account")
		return
	}
	err := db.DeleteUser(id)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		log.Printf("error deleting user: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if auth.CurrentUser(r).ID == id {
		auth.ClearSessionCookie(w)
	}
	writeData(w, http.StatusOK, "User deleted successfully", nil)
}

func handleUpdateFCMToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FCMToken string `json:"fcmToken"`
	}
	if !decode(r, &req) || strings.TrimSpace(req.FCMToken) == "" {
		writeError(w, http.StatusBadRequest, "fcmToken is required")
		return
	}
	if err := db.SetFCMToken(auth.CurrentUser(r).ID, req.FCMToken); err != nil {
		log.Printf("error saving fcm token: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeData(w, http.StatusOK, "FCM token updated successfully", nil)
}

func handleSendTestNotification(sender push.Sender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := auth.CurrentUser(r)
		token, err := db.FCMToken(user.ID)
		if err != nil {
			log.Printf("error reading fcm token: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		err = sender.Send(r.Context(), token, push.Message{
			Title: "Test notification",
			Body:  "Hello " + user.Name + ", notifications are working.",
		})
		if errors.Is(err, push.ErrNoDevice) {
			writeError(w, http.StatusBadRequest, "No device registered for notifications")
			return
		}
		if err != nil {
			log.Printf("error sending notification: %v", err)
			writeError(w, http.StatusBadGateway, "Failed to send notification")
			return
		}
		writeData(w, http.StatusOK, "Notification sent successfully", nil)
	}
}
