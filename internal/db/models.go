package db

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sundowners/taskhub/internal/model"
)

const sessionTTL = 30 * 24 * time.Hour

// Users

func CreateUser(name, email, password string, role model.Role) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var exists int
	if err := DB.QueryRow("SELECT COUNT(*) FROM users WHERE email = ?", email).Scan(&exists); err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	if exists > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if role == "" {
		role = model.RoleMember
	}

	u := &model.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Role:      role,
		Followers: []string{},
		Following: []string{},
	}
	_, err = DB.Exec(
		"INSERT INTO users (id, name, email, password_hash, role) VALUES (?, ?, ?, ?, ?)",
		u.ID, u.Name, u.Email, string(hash), string(u.Role),
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func Authenticate(email, password string) (*model.User, error) {
	var id, hash string
	err := DB.QueryRow(
		"SELECT id, password_hash FROM users WHERE email = ?",
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return GetUser(id)
}

func GetUser(id string) (*model.User, error) {
	var u model.User
	var role string
	err := DB.QueryRow(
		"SELECT id, name, username, email, role, image FROM users WHERE id = ?", id,
	).Scan(&u.ID, &u.Name, &u.Username, &u.Email, &role, &u.Image)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.Role = model.Role(role)

	if u.Followers, err = userIDs("SELECT follower_id FROM follows WHERE followee_id = ? ORDER BY created_at, follower_id", id); err != nil {
		return nil, err
	}
	if u.Following, err = userIDs("SELECT followee_id FROM follows WHERE follower_id = ? ORDER BY created_at, followee_id", id); err != nil {
		return nil, err
	}
	return &u, nil
}

func userIDs(query, id string) ([]string, error) {
	rows, err := DB.Query(query, id)
	if err != nil {
		return nil, fmt.Errorf("query follows: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		ids = append(ids, s)
	}
	return ids, rows.Err()
}

func ListUsers() ([]model.User, error) {
	rows, err := DB.Query("SELECT id FROM users ORDER BY created_at, name")
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	users := make([]model.User, 0, len(ids))
	for _, id := range ids {
		u, err := GetUser(id)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, nil
}

// UpdateUser changes name and email, and the password when non-empty.
func UpdateUser(id, name, email, password string) (*model.User, error) {
	existing, err := GetUser(id)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = existing.Name
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		email = existing.Email
	}
	if email != existing.Email {
		var taken int
		if err := DB.QueryRow("SELECT COUNT(*) FROM users WHERE email = ? AND id != ?", email, id).Scan(&taken); err != nil {
			return nil, fmt.Errorf("query user: %w", err)
		}
		if taken > 0 {
			return nil, ErrEmailTaken
		}
	}

	if _, err := DB.Exec("UPDATE users SET name = ?, email = ? WHERE id = ?", name, email, id); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		if _, err := DB.Exec("UPDATE users SET password_hash = ? WHERE id = ?", string(hash), id); err != nil {
			return nil, fmt.Errorf("update password: %w", err)
		}
	}
	return GetUser(id)
}

// PromoteAdmins gives the admin role to existing users with the given emails.
func PromoteAdmins(emails []string) (int, error) {
	n := 0
	for _, email := range emails {
		email = strings.TrimSpace(strings.ToLower(email))
		if email == "" {
			continue
		}
		res, err := DB.Exec("UPDATE users SET role = 'admin' WHERE email = ? AND role != 'admin'", email)
		if err != nil {
			return n, fmt.Errorf("promote %s: %w", email, err)
		}
		if c, _ := res.RowsAffected(); c > 0 {
			n += int(c)
		}
	}
	return n, nil
}

func DeleteUser(id string) error {
	res, err := DB.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func SetFCMToken(id, token string) error {
	_, err := DB.Exec("UPDATE users SET fcm_token = ? WHERE id = ?", token, id)
	if err != nil {
		return fmt.Errorf("update fcm token: %w", err)
	}
	return nil
}

func FCMToken(id string) (string, error) {
	var token string
	err := DB.QueryRow("SELECT fcm_token FROM users WHERE id = ?", id).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return token, err
}

// Sessions

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func CreateSession(userID string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	expires := time.Now().Add(sessionTTL)

	_, err = DB.Exec(
		"INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)",
		token, userID, expires,
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return token, nil
}

func GetUserBySession(token string) (*model.User, error) {
	var userID string
	var expiresAt time.Time
	err := DB.QueryRow(
		"SELECT user_id, expires_at FROM sessions WHERE token = ?", token,
	).Scan(&userID, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	if time.Now().After(expiresAt) {
		DeleteSession(token)
		return nil, ErrSessionExpired
	}
	return GetUser(userID)
}

func DeleteSession(token string) {
	DB.Exec("DELETE FROM sessions WHERE token = ?", token)
}

// Follows

func Follow(followerID, followeeID string) error {
	if followerID == followeeID {
		return ErrSelfFollow
	}
	if _, err := GetUser(followeeID); err != nil {
		return err
	}
	_, err := DB.Exec(
		"INSERT OR IGNORE INTO follows (follower_id, followee_id) VALUES (?, ?)",
		followerID, followeeID,
	)
	if err != nil {
		return fmt.Errorf("insert follow: %w", err)
	}
	return nil
}

func Unfollow(followerID, followeeID string) error {
	_, err := DB.Exec(
		"DELETE FROM follows WHERE follower_id = ? AND followee_id = ?",
		followerID, followeeID,
	)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	return nil
}
