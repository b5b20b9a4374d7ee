package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/sundowners/taskhub/internal/model"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
	Message string      `json:"-"`
}

// UserID returns the id of the signed-in user, or "" when the server omitted it.
func (r LoginResult) UserID() string {
	if r.User == nil {
		return ""
	}
	return r.User.ID
}

type UserUpdate struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

type NewTask struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    model.Category `json:"category"`
	AssignTo    string         `json:"assignTo"`
}

// Register creates an account. The returned message is the server's.
func (c *Client) Register(ctx context.Context, reg Registration) (string, error) {
	body, err := jsonBody(reg)
	if err != nil {
		return "", err
	}
	return c.call(ctx, request{
		method: http.MethodPost, path: "/users/register",
		body: body, contentType: "application/json",
	}, nil)
}

func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	body, err := jsonBody(creds)
	if err != nil {
		return LoginResult{}, err
	}
	var res LoginResult
	msg, err := c.call(ctx, request{
		method: http.MethodPost, path: "/users/login",
		body: body, contentType: "application/json",
	}, &res)
	if err != nil {
		return LoginResult{}, err
	}
	if res.Token == "" {
		return LoginResult{}, fmt.Errorf("login: %w", errMissingData)
	}
	res.Message = msg
	return res, nil
}

func (c *Client) Logout(ctx context.Context) (string, error) {
	return c.call(ctx, request{method: http.MethodGet, path: "/users/logout", auth: true}, nil)
}

func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	var u model.User
	if _, err := c.call(ctx, request{method: http.MethodGet, path: "/users/getUser", auth: true}, &u); err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, fmt.Errorf("current user: %w", errMissingData)
	}
	return &u, nil
}

func (c *Client) Users(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if _, err := c.call(ctx, request{method: http.MethodGet, path: "/users/getAllUsers", auth: true}, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, upd UserUpdate) (*model.User, error) {
	body, err := jsonBody(upd)
	if err != nil {
		return nil, err
	}
	var u model.User
	if _, err := c.call(ctx, request{
		method: http.MethodPatch, path: pathID("/users/update/", id),
		body: body, contentType: "application/json", auth: true,
	}, &u); err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, nil
	}
	return &u, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) (string, error) {
	return c.call(ctx, request{method: http.MethodDelete, path: pathID("/users/delete/", id), auth: true}, nil)
}

func (c *Client) UpdateFCMToken(ctx context.Context, token string) error {
	body, err := jsonBody(map[string]string{"fcmToken": token})
	if err != nil {
		return err
	}
	_, err = c.call(ctx, request{
		method: http.MethodPatch, path: "/users/updateFcmToken",
		body: body, contentType: "application/json", auth: true,
	}, nil)
	return err
}

func (c *Client) SendTestNotification(ctx context.Context) (string, error) {
	return c.call(ctx, request{method: http.MethodPost, path: "/users/sendTestNotification", auth: true}, nil)
}

// CreateTask returns the task as stored by the server.
func (c *Client) CreateTask(ctx context.Context, t NewTask) (model.Task, error) {
	body, err := jsonBody(t)
	if err != nil {
		return model.Task{}, err
	}
	var task model.Task
	if _, err := c.call(ctx, request{
		method: http.MethodPost, path: "/tasks/register",
		body: body, contentType: "application/json", auth: true,
	}, &task); err != nil {
		return model.Task{}, err
	}
	if task.ID == "" {
		return model.Task{}, fmt.Errorf("create task: %w", errMissingData)
	}
	return task, nil
}

func (c *Client) Tasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if _, err := c.call(ctx, request{method: http.MethodGet, path: "/tasks/getTasks", auth: true}, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ImportTasks uploads a CSV file as the multipart field "file".
func (c *Client) ImportTasks(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("copy import file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}
	return c.call(ctx, request{
		method: http.MethodPost, path: "/tasks/import",
		body: &buf, contentType: mw.FormDataContentType(), auth: true,
	}, nil)
}

// ExportTasks returns the CSV export as raw bytes.
func (c *Client) ExportTasks(ctx context.Context) ([]byte, error) {
	return c.do(ctx, request{method: http.MethodGet, path: "/tasks/export", auth: true})
}

func (c *Client) OtherUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := c.raw(ctx, request{method: http.MethodGet, path: pathID("/oUser/getUser/", id), auth: true}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) OtherUserPosts(ctx context.Context, id string) ([]model.Post, error) {
	var posts []model.Post
	if err := c.raw(ctx, request{method: http.MethodGet, path: pathID("/oUser/getUserPosts/", id), auth: true}, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) Post(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	if err := c.raw(ctx, request{method: http.MethodGet, path: pathID("/oUser/getUserPost/", id), auth: true}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) AddComment(ctx context.Context, postID, text string) error {
	body, err := jsonBody(map[string]string{"comment": text})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, request{
		method: http.MethodPost, path: pathID("/post/addComment/", postID),
		body: body, contentType: "application/json", auth: true,
	})
	return err
}

func (c *Client) DeleteComment(ctx context.Context, commentID, postID string) error {
	q := url.Values{}
	q.Set("commentId", commentID)
	q.Set("postId", postID)
	_, err := c.do(ctx, request{method: http.MethodDelete, path: "/post/deleteComment", query: q, auth: true})
	return err
}

func (c *Client) Follow(ctx context.Context, id string) error {
	_, err := c.do(ctx, request{method: http.MethodGet, path: pathID("/follow/", id), auth: true})
	return err
}

func (c *Client) Unfollow(ctx context.Context, id string) error {
	_, err := c.do(ctx, request{method: http.MethodGet, path: pathID("/unfollow/", id), auth: true})
	return err
}
