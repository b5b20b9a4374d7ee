package views

import (
	"context"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/sundowners/taskhub/internal/model"
	"github.com/sundowners/taskhub/internal/rest"
)

const (
	MsgNotCommentAuthor = "You can only delete your own comments"
	MsgEmptyComment     = "Comment cannot be empty"

	msgFetchProfileFailed = "Failed to fetch user profile"
	msgFetchPostsFailed   = "Failed to fetch posts"
	msgFetchPostFailed    = "Failed to fetch post"
	msgFollowFailed       = "Failed to update follow status"
	msgCommentFailed      = "Failed to add comment"
	msgDeleteCommentFail  = "Failed to delete comment"
)

// OtherUserProfile shows another user's posts and lets the viewer follow
// them and comment.
type OtherUserProfile struct {
	env  *Env
	host Host
	ctx  context.Context

	UserID string
	User   *model.User
	Posts  []model.Post

	Selected    *model.Post
	CommentText string
	Busy        bool
}

func NewOtherUserProfile(env *Env, host Host) *OtherUserProfile {
	return &OtherUserProfile{env: env, host: host}
}

func (o *OtherUserProfile) Mount(ctx context.Context, userID string) {
	if !requireSession(o.env, o.host) {
		return
	}
	o.ctx = ctx
	o.UserID = userID
	o.loadUser()
	o.loadPosts()
}

// ViewerID is the signed-in user's id.
func (o *OtherUserProfile) ViewerID() string {
	return o.env.Session.State().UserID
}

func (o *OtherUserProfile) IsSelf() bool {
	return o.UserID != "" && o.UserID == o.ViewerID()
}

func (o *OtherUserProfile) Following() bool {
	return o.User.FollowedBy(o.ViewerID())
}

func (o *OtherUserProfile) FollowerCount() string {
	if o.User == nil {
		return "0"
	}
	return humanize.Comma(int64(len(o.User.Followers)))
}

func (o *OtherUserProfile) FollowingCount() string {
	if o.User == nil {
		return "0"
	}
	return humanize.Comma(int64(len(o.User.Following)))
}

func (o *OtherUserProfile) loadUser() {
	ctx, id := o.ctx, o.UserID
	o.host.Async(func() {
		u, err := o.env.API.OtherUser(ctx, id)
		o.host.Dispatch(func() {
			if err != nil {
				o.env.Notify.Error(rest.MessageOr(err, msgFetchProfileFailed))
				return
			}
			o.User = u
		})
	})
}

func (o *OtherUserProfile) loadPosts() {
	ctx, id := o.ctx, o.UserID
	o.host.Async(func() {
		posts, err := o.env.API.OtherUserPosts(ctx, id)
		o.host.Dispatch(func() {
			if err != nil {
				o.env.Notify.Error(rest.MessageOr(err, msgFetchPostsFailed))
				return
			}
			o.Posts = posts
		})
	})
}

func (o *OtherUserProfile) ToggleFollow() {
	if o.Busy || o.IsSelf() || o.User == nil {
		return
	}
	o.Busy = true
	ctx, id, following := o.ctx, o.UserID, o.Following()
	o.host.Async(func() {
		var err error
		if following {
			err = o.env.API.Unfollow(ctx, id)
		} else {
			err = o.env.API.Follow(ctx, id)
		}
		o.host.Dispatch(func() {
			o.Busy = false
			if err != nil {
				o.env.Notify.Error(rest.MessageOr(err, msgFollowFailed))
				return
			}
			o.loadUser()
		})
	})
}

// OpenPost loads a post with its comments.
func (o *OtherUserProfile) OpenPost(postID string) {
	ctx := o.ctx
	o.host.Async(func() {
		p, err := o.env.API.Post(ctx, postID)
		o.host.Dispatch(func() {
			if err != nil {
				o.env.Notify.Error(rest.MessageOr(err, msgFetchPostFailed))
				return
			}
			o.Selected = p
		})
	})
}

func (o *OtherUserProfile) ClosePost() {
	o.Selected = nil
	o.CommentText = ""
}

func (o *OtherUserProfile) AddComment() {
	if o.Busy || o.Selected == nil {
		return
	}
	text := strings.TrimSpace(o.CommentText)
	if text == "" {
		o.env.Notify.Error(MsgEmptyComment)
		return
	}

	o.Busy = true
	ctx, postID := o.ctx, o.Selected.ID
	o.host.Async(func() {
		err := o.env.API.AddComment(ctx, postID, text)
		o.host.Dispatch(func() {
			o.Busy = false
			if err != nil {
				o.env.Notify.Error(rest.MessageOr(err, msgCommentFailed))
				return
			}
			o.CommentText = ""
			o.OpenPost(postID)
		})
	})
}

// DeleteComment is only offered to the comment's author; the server checks
// authorship again.
func (o *OtherUserProfile) DeleteComment(c model.Comment) {
	if o.Busy || o.Selected == nil {
		return
	}
	if !c.CanDelete(o.ViewerID()) {
		o.env.Notify.Error(MsgNotCommentAuthor)
		return
	}

	o.Busy = true
	ctx, postID := o.ctx, o.Selected.ID
	o.host.Async(func() {
		err := o.env.API.DeleteComment(ctx, c.ID, postID)
		o.host.Dispatch(func() {
			o.Busy = false
			if err != nil {
				o.env.Notify.Error(rest.MessageOr(err, msgDeleteCommentFail))
				return
			}
			o.OpenPost(postID)
		})
	})
}
