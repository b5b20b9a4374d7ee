package api

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/sundowners/taskhub/internal/auth"
	"github.com/sundowners/taskhub/internal/db"
	"github.com/sundowners/taskhub/internal/model"
)

// The /oUser and /post endpoints reply with bare bodies, not the envelope.

func handleOtherUser(w http.ResponseWriter, r *http.Request) {
	user, err := db.GetUser(mux.Vars(r)["id"])
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		log.Printf("error getting user: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func handleOtherUserPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := db.PostsByUser(mux.Vars(r)["id"])
	if err != nil {
		log.Printf("error getting posts: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if posts == nil {
		posts = []model.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

func handleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := db.GetPost(mux.Vars(r)["id"])
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		log.Printf("error getting post: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Image string `json:"image"`
	}
	if !decode(r, &req) || strings.TrimSpace(req.Image) == "" {
		writeError(w, http.StatusBadRequest, "Image is required")
		return
	}
	post, err := db.CreatePost(auth.CurrentUser(r).ID, strings.TrimSpace(req.Image))
	if err != nil {
		log.Printf("error creating post: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Comment string `json:"comment"`
	}
	if !decode(r, &req) || strings.TrimSpace(req.Comment) == "" {
		writeError(w, http.StatusBadRequest, "Comment is required")
		return
	}
	c, err := db.AddComment(mux.Vars(r)["id"], auth.CurrentUser(r).ID, strings.TrimSpace(req.Comment))
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		log.Printf("error adding comment: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID := r.URL.Query().Get("commentId")
	postID := r.URL.Query().Get("postId")
	if commentID == "" || postID == "" {
		writeError(w, http.StatusBadRequest, "commentId and postId are required")
		return
	}
	authorID, err := db.CommentAuthor(commentID, postID)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Comment not found")
		return
	}
	if err != nil {
		log.Printf("error getting comment: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if authorID != auth.CurrentUser(r).ID {
		writeError(w, http.StatusForbidden, "You can only delete your own comments")
		return
	}
	if err := db.DeleteComment(commentID); err != nil {
		log.Printf("error deleting comment: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted"})
}

func handleFollow(w http.ResponseWriter, r *http.Request) {
	err := db.Follow(auth.CurrentUser(r).ID, mux.Vars(r)["id"])
	switch {
	case errors.Is(err, db.ErrSelfFollow):
		writeError(w, http.StatusBadRequest, "You cannot follow yourself")
		return
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, "User not found")
		return
	case err != nil:
		log.Printf("error following user: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Followed"})
}

func handleUnfollow(w http.ResponseWriter, r *http.Request) {
	if err := db.Unfollow(auth.CurrentUser(r).ID, mux.Vars(r)["id"]); err != nil {
		log.Printf("error unfollowing user: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Unfollowed"})
}
