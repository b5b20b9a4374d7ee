package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sundowners/taskhub/internal/model"
)

// Posts

func CreatePost(userID, image string) (model.Post, error) {
	p := model.Post{ID: uuid.NewString(), Image: image, Comments: []model.Comment{}}
	_, err := DB.Exec("INSERT INTO posts (id, user_id, image) VALUES (?, ?, ?)", p.ID, userID, image)
	if err != nil {
		return model.Post{}, fmt.Errorf("insert post: %w", err)
	}
	return GetPost(p.ID)
}

// author is the public part of a user embedded in posts and comments.
func author(id string) (model.User, error) {
	var u model.User
	err := DB.QueryRow("SELECT id, name, username, image FROM users WHERE id = ?", id).
		Scan(&u.ID, &u.Name, &u.Username, &u.Image)
	if err != nil {
		return model.User{}, fmt.Errorf("query author: %w", err)
	}
	return u, nil
}

func PostsByUser(userID string) ([]model.Post, error) {
	rows, err := DB.Query("SELECT id FROM posts WHERE user_id = ? ORDER BY created_at DESC, rowid DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
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

	posts := make([]model.Post, 0, len(ids))
	for _, id := range ids {
		p, err := GetPost(id)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// GetPost returns the post with its author and comments in posting order.
func GetPost(id string) (model.Post, error) {
	var p model.Post
	var userID string
	err := DB.QueryRow("SELECT id, user_id, image FROM posts WHERE id = ?", id).Scan(&p.ID, &userID, &p.Image)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Post{}, ErrNotFound
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("query post: %w", err)
	}
	if p.User, err = author(userID); err != nil {
		return model.Post{}, err
	}

	rows, err := DB.Query("SELECT id, user_id, text FROM comments WHERE post_id = ? ORDER BY created_at, rowid", id)
	if err != nil {
		return model.Post{}, fmt.Errorf("query comments: %w", err)
	}
	type row struct{ id, userID, text string }
	var crows []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.userID, &r.text); err != nil {
			rows.Close()
			return model.Post{}, err
		}
		crows = append(crows, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return model.Post{}, err
	}

	p.Comments = make([]model.Comment, 0, len(crows))
	for _, r := range crows {
		u, err := author(r.userID)
		if err != nil {
			return model.Post{}, err
		}
		p.Comments = append(p.Comments, model.Comment{ID: r.id, User: u, Text: r.text})
	}
	return p, nil
}

// Comments

func AddComment(postID, userID, text string) (model.Comment, error) {
	if _, err := GetPost(postID); err != nil {
		return model.Comment{}, err
	}
	c := model.Comment{ID: uuid.NewString(), Text: text}
	_, err := DB.Exec("INSERT INTO comments (id, post_id, user_id, text) VALUES (?, ?, ?, ?)", c.ID, postID, userID, text)
	if err != nil {
		return model.Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	if c.User, err = author(userID); err != nil {
		return model.Comment{}, err
	}
	return c, nil
}

// CommentAuthor returns who wrote the comment, scoped to postID.
func CommentAuthor(commentID, postID string) (string, error) {
	var userID string
	err := DB.QueryRow("SELECT user_id FROM comments WHERE id = ? AND post_id = ?", commentID, postID).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query comment: %w", err)
	}
	return userID, nil
}

func DeleteComment(commentID string) error {
	if _, err := DB.Exec("DELETE FROM comments WHERE id = ?", commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}
