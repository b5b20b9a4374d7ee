package views

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/sundowners/taskhub/internal/model"
	"github.com/sundowners/taskhub/internal/notify"
	"github.com/sundowners/taskhub/internal/realtime"
	"github.com/sundowners/taskhub/internal/rest"
	"github.com/sundowners/taskhub/internal/session"
)

// syncHost runs everything inline.
type syncHost struct {
	paths []string
}

func (h *syncHost) Navigate(path string) { h.paths = append(h.paths, path) }
func (h *syncHost) Dispatch(fn func())   { fn() }
func (h *syncHost) Async(fn func())      { fn() }

func (h *syncHost) last() string {
	if len(h.paths) == 0 {
		return ""
	}
	return h.paths[len(h.paths)-1]
}

// loopFeed delivers published tasks straight to its subscribers.
type loopFeed struct {
	realtime.Bus
	err       error
	published []model.Task
}

func (f *loopFeed) Publish(ctx context.Context, t model.Task) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, t)
	f.Deliver(t)
	return nil
}

var errOffline = &rest.Error{Kind: rest.KindNetwork, Message: rest.NetworkMessage, Err: errors.New("connection refused")}

type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	me    *model.User
	users []model.User
	tasks []model.Task

	userErr   error
	tasksErr  error
	createErr error
	logoutErr error

	created  []rest.NewTask
	imported string
	export   []byte
	pushTok  string

	other    *model.User
	posts    []model.Post
	post     *model.Post
	comments []string
	deleted  []string
}

func newFakeAPI(me *model.User) *fakeAPI {
	return &fakeAPI{calls: make(map[string]int), me: me}
}

func (f *fakeAPI) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeAPI) Register(ctx context.Context, reg rest.Registration) (string, error) {
	f.hit("Register")
	return "User registered successfully", nil
}

func (f *fakeAPI) Login(ctx context.Context, creds rest.Credentials) (rest.LoginResult, error) {
	f.hit("Login")
	return rest.LoginResult{Token: "tok", User: f.me, Message: "Login successful"}, nil
}

func (f *fakeAPI) Logout(ctx context.Context) (string, error) {
	f.hit("Logout")
	return "", f.logoutErr
}

func (f *fakeAPI) CurrentUser(ctx context.Context) (*model.User, error) {
	f.hit("CurrentUser")
	if f.userErr != nil {
		return nil, f.userErr
	}
	return f.me, nil
}

func (f *fakeAPI) DeleteUser(ctx context.Context, id string) (string, error) {
	f.hit("DeleteUser")
	return "User deleted", nil
}

func (f *fakeAPI) Users(ctx context.Context) ([]model.User, error) {
	f.hit("Users")
	return f.users, nil
}

func (f *fakeAPI) UpdateUser(ctx context.Context, id string, upd rest.UserUpdate) (*model.User, error) {
	f.hit("UpdateUser")
	u := *f.me
	u.Name, u.Email = upd.Name, upd.Email
	return &u, nil
}

func (f *fakeAPI) UpdateFCMToken(ctx context.Context, token string) error {
	f.hit("UpdateFCMToken")
	f.pushTok = token
	return nil
}

func (f *fakeAPI) SendTestNotification(ctx context.Context) (string, error) {
	f.hit("SendTestNotification")
	return "", nil
}

func (f *fakeAPI) CreateTask(ctx context.Context, t rest.NewTask) (model.Task, error) {
	f.hit("CreateTask")
	if f.createErr != nil {
		return model.Task{}, f.createErr
	}
	f.created = append(f.created, t)
	return model.Task{ID: "new-1", Title: t.Title, Category: t.Category, AssignedTo: t.AssignTo}, nil
}

func (f *fakeAPI) Tasks(ctx context.Context) ([]model.Task, error) {
	f.hit("Tasks")
	if f.tasksErr != nil {
		return nil, f.tasksErr
	}
	return append([]model.Task(nil), f.tasks...), nil
}

func (f *fakeAPI) ImportTasks(ctx context.Context, filename string, r io.Reader) (string, error) {
	f.hit("ImportTasks")
	b, _ := io.ReadAll(r)
	f.imported = string(b)
	return "", nil
}

func (f *fakeAPI) ExportTasks(ctx context.Context) ([]byte, error) {
	f.hit("ExportTasks")
	return f.export, nil
}

func (f *fakeAPI) OtherUser(ctx context.Context, id string) (*model.User, error) {
	f.hit("OtherUser")
	return f.other, nil
}

func (f *fakeAPI) OtherUserPosts(ctx context.Context, id string) ([]model.Post, error) {
	f.hit("OtherUserPosts")
	return f.posts, nil
}

func (f *fakeAPI) Post(ctx context.Context, id string) (*model.Post, error) {
	f.hit("Post")
	return f.post, nil
}

func (f *fakeAPI) AddComment(ctx context.Context, postID, text string) error {
	f.hit("AddComment")
	f.comments = append(f.comments, text)
	return nil
}

func (f *fakeAPI) DeleteComment(ctx context.Context, commentID, postID string) error {
	f.hit("DeleteComment")
	f.deleted = append(f.deleted, commentID)
	return nil
}

func (f *fakeAPI) Follow(ctx context.Context, id string) error {
	f.hit("Follow")
	return nil
}

func (f *fakeAPI) Unfollow(ctx context.Context, id string) error {
	f.hit("Unfollow")
	return nil
}

type memSaver struct {
	name string
	data []byte
}

func (m *memSaver) Save(name string, data []byte) error {
	m.name, m.data = name, data
	return nil
}

type testEnv struct {
	env   *Env
	host  *syncHost
	api   *fakeAPI
	feed  *loopFeed
	notes *notify.Recorder
	files *memSaver
}

// setupEnv returns an environment signed in as me, or signed out when me is nil.
func setupEnv(t *testing.T, me *model.User) *testEnv {
	t.Helper()
	api := newFakeAPI(me)
	notes := &notify.Recorder{}
	store := session.NewStore(session.NewMemoryBackend(), session.NewMemoryBackend())
	mgr := session.NewManager(store, api, notes, session.WithAsync(func(f func()) { f() }))
	t.Cleanup(mgr.Close)

	if me != nil {
		store.Save(session.Session{Token: "tok", UserID: me.ID})
		mgr.Initialize(context.Background())
	}
	api.calls = make(map[string]int)

	te := &testEnv{
		host:  &syncHost{},
		api:   api,
		feed:  &loopFeed{},
		notes: notes,
		files: &memSaver{},
	}
	te.env = &Env{
		Session: mgr,
		API:     api,
		Feed:    te.feed,
		Notify:  notes,
		Files:   te.files,
		Logf:    t.Logf,
	}
	return te
}

func lastNote(t *testing.T, r *notify.Recorder) notify.Message {
	t.Helper()
	m, ok := r.Last()
	if !ok {
		t.Fatal("expected a notification")
	}
	return m
}

var (
	member = &model.User{ID: "m1", Name: "Mia", Email: "mia@example.com", Role: model.RoleMember}
	admin  = &model.User{ID: "a1", Name: "Ada", Email: "ada@example.com", Role: model.RoleAdmin}
)

func TestProtectedViewsRedirectWithoutSession(t *testing.T) {
	te := setupEnv(t, nil)
	ctx := context.Background()

	NewHome(te.env, te.host).Mount(ctx)
	NewAddTask(te.env, te.host).Mount(ctx)
	NewProfile(te.env, te.host).Mount(ctx)
	NewOtherUserProfile(te.env, te.host).Mount(ctx, "x")

	if len(te.host.paths) != 4 {
		t.Fatalf("expected 4 redirects, got %v", te.host.paths)
	}
	for _, p := range te.host.paths {
		if p != PathSignin {
			t.Errorf("expected redirect to %s, got %s", PathSignin, p)
		}
	}
	if te.api.total() != 0 {
		t.Errorf("expected no requests, got %v", te.api.calls)
	}
	if te.feed.Len() != 0 {
		t.Error("expected no feed subscription")
	}
}

func TestHome_LoadsAndSorts(t *testing.T) {
	te := setupEnv(t, member)
	te.api.tasks = []model.Task{
		{ID: "a", Category: model.CategoryLow},
		{ID: "b", Category: model.CategoryHigh, IsCompleted: true},
		{ID: "c", Category: model.CategoryHigh},
	}

	h := NewHome(te.env, te.host)
	h.Mount(context.Background())

	if h.User == nil || h.User.ID != "m1" {
		t.Errorf("expected user loaded, got %+v", h.User)
	}
	got := []string{h.Tasks[0].ID, h.Tasks[1].ID, h.Tasks[2].ID}
	if got[0] != "c" || got[1] != "a" || got[2] != "b" {
		t.Errorf("expected order [c a b], got %v", got)
	}
}

func TestHome_PartialFailure(t *testing.T) {
	te := setupEnv(t, member)
	te.api.userErr = errOffline
	te.api.tasks = []model.Task{{ID: "a", Category: model.CategoryLow}}

	h := NewHome(te.env, te.host)
	h.Mount(context.Background())

	if !h.TasksReady || len(h.Tasks) != 1 {
		t.Errorf("task list should load despite the user fetch failing, got %+v", h.Tasks)
	}
	if h.UserErr != msgFetchUserFailed {
		t.Errorf("expected user error, got %q", h.UserErr)
	}
	if !te.env.Session.HasSession() {
		t.Error("a failed fetch must not clear the session")
	}
}

func TestHome_RealtimeUpsert(t *testing.T) {
	te := setupEnv(t, member)
	te.api.tasks = []model.Task{{ID: "t1", Title: "old", Category: model.CategoryLow}}

	h := NewHome(te.env, te.host)
	h.Mount(context.Background())

	te.feed.Publish(context.Background(), model.Task{ID: "t1", Title: "new", Category: model.CategoryLow})
	te.feed.Publish(context.Background(), model.Task{ID: "t2", Title: "urgent", Category: model.CategoryHigh})

	if len(h.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %+v", h.Tasks)
	}
	if h.Tasks[0].ID != "t2" || h.Tasks[1].Title != "new" {
		t.Errorf("expected [t2 t1(new)], got %+v", h.Tasks)
	}
	if m := lastNote(t, te.notes); m.Text != MsgTaskUpdated {
		t.Errorf("expected real-time toast, got %q", m.Text)
	}

	h.Dismount()
	if te.feed.Len() != 0 {
		t.Errorf("expected handler removed on dismount, %d left", te.feed.Len())
	}
	te.feed.Publish(context.Background(), model.Task{ID: "t3"})
	if len(h.Tasks) != 2 {
		t.Error("unmounted view must not change")
	}
}

// deferredHost queues async work so a test can interleave events.
type deferredHost struct {
	syncHost
	queued []func()
}

func (h *deferredHost) Async(fn func()) { h.queued = append(h.queued, fn) }

func (h *deferredHost) drain() {
	for len(h.queued) > 0 {
		fn := h.queued[0]
		h.queued = h.queued[1:]
		fn()
	}
}

func TestHome_UpdateBeforeFetchCompletes(t *testing.T) {
	te := setupEnv(t, member)
	te.api.tasks = []model.Task{{ID: "t1", Title: "stale", Category: model.CategoryLow}}
	host := &deferredHost{}

	h := NewHome(te.env, host)
	h.Mount(context.Background())
	te.feed.Publish(context.Background(), model.Task{ID: "t1", Title: "fresh", Category: model.CategoryLow})
	host.drain()

	if len(h.Tasks) != 1 || h.Tasks[0].Title != "fresh" {
		t.Errorf("expected the early update to win, got %+v", h.Tasks)
	}
}

type fakePush struct {
	token string
	fns   []func(title, body string)
}

func (p *fakePush) Token(ctx context.Context) (string, error) {
	if p.token == "" {
		return "", errors.New("push not supported")
	}
	return p.token, nil
}

func (p *fakePush) OnMessage(fn func(title, body string)) func() {
	p.fns = append(p.fns, fn)
	return func() { p.fns = nil }
}

func TestHome_Push(t *testing.T) {
	te := setupEnv(t, member)
	push := &fakePush{token: "fcm-1"}
	te.env.Push = push

	h := NewHome(te.env, te.host)
	h.Mount(context.Background())
	if te.api.pushTok != "fcm-1" {
		t.Errorf("expected push token registered, got %q", te.api.pushTok)
	}

	te.api.tasks = []model.Task{{ID: "p1"}}
	push.fns[0]("New task", "You were assigned a task")
	if te.api.count("Tasks") != 2 || len(h.Tasks) != 1 {
		t.Errorf("expected push to trigger a refetch, got %d fetches", te.api.count("Tasks"))
	}

	h.SendTestNotification()
	if m := lastNote(t, te.notes); m.Level != notify.LevelSuccess || m.Text != msgTestNotification {
		t.Errorf("unexpected notification %+v", m)
	}

	h.Dismount()
	if push.fns != nil {
		t.Error("expected push listener removed")
	}
}

func TestAddTask_RoleGating(t *testing.T) {
	t.Run("member always assigns to self", func(t *testing.T) {
		te := setupEnv(t, member)
		a := NewAddTask(te.env, te.host)
		a.Mount(context.Background())
		defer a.Dismount()

		if a.ShowAssignee {
			t.Error("members must not see the assignee picker")
		}
		a.Title = "Write report"
		a.AssignTo = "someone-else"
		a.Submit()

		if len(te.api.created) != 1 || te.api.created[0].AssignTo != "m1" {
			t.Fatalf("expected self assignment, got %+v", te.api.created)
		}
		if te.api.created[0].Category != model.CategoryMedium {
			t.Errorf("expected default category medium, got %q", te.api.created[0].Category)
		}
		if te.api.count("Users") != 0 {
			t.Error("members must not load the user list")
		}
	})

	t.Run("admin picks an assignee", func(t *testing.T) {
		te := setupEnv(t, admin)
		te.api.users = []model.User{*admin, *member}
		a := NewAddTask(te.env, te.host)
		a.Mount(context.Background())
		defer a.Dismount()

		if !a.ShowAssignee || len(a.Users) != 2 {
			t.Fatalf("expected assignee picker with users, got show=%v users=%d", a.ShowAssignee, len(a.Users))
		}
		if a.AssignTo != "a1" {
			t.Errorf("expected default assignee self, got %q", a.AssignTo)
		}
		a.Title = "Review"
		a.AssignTo = "m1"
		a.Submit()

		if te.api.created[0].AssignTo != "m1" {
			t.Errorf("expected assignment to m1, got %q", te.api.created[0].AssignTo)
		}
	})
}

func TestAddTask_PublishesOnlyAfterSuccess(t *testing.T) {
	te := setupEnv(t, member)
	a := NewAddTask(te.env, te.host)
	a.Mount(context.Background())
	defer a.Dismount()

	a.Submit()
	if m := lastNote(t, te.notes); m.Text != MsgTitleRequired {
		t.Errorf("expected title required, got %q", m.Text)
	}
	if te.api.count("CreateTask") != 0 {
		t.Error("blank title must not reach the server")
	}

	te.api.createErr = &rest.Error{Kind: rest.KindRejected, Status: 400, Message: "Invalid category"}
	a.Title = "X"
	a.Submit()
	if len(te.feed.published) != 0 {
		t.Error("failed creation must not be published")
	}
	if m := lastNote(t, te.notes); m.Text != "Invalid category" {
		t.Errorf("expected server message, got %q", m.Text)
	}

	te.api.createErr = nil
	a.Submit()
	if len(te.feed.published) != 1 || te.feed.published[0].ID != "new-1" {
		t.Errorf("expected created task published, got %+v", te.feed.published)
	}
	if te.host.last() != PathHome {
		t.Errorf("expected navigation home, got %q", te.host.last())
	}
}

func TestAddTask_PublishFailureIsDegraded(t *testing.T) {
	te := setupEnv(t, member)
	te.feed.err = realtime.ErrDisconnected
	a := NewAddTask(te.env, te.host)
	a.Mount(context.Background())
	defer a.Dismount()

	a.Title = "Offline relay"
	a.Submit()

	if m := lastNote(t, te.notes); m.Level != notify.LevelSuccess {
		t.Errorf("task creation should succeed without the relay, got %+v", m)
	}
}

func TestPublishedTaskReachesOpenHome(t *testing.T) {
	te := setupEnv(t, member)
	h := NewHome(te.env, te.host)
	h.Mount(context.Background())
	defer h.Dismount()

	a := NewAddTask(te.env, te.host)
	a.Mount(context.Background())
	defer a.Dismount()
	a.Title = "Shared"
	a.Submit()

	n := 0
	for _, task := range h.Tasks {
		if task.ID == "new-1" {
			n++
		}
	}
	if n != 1 {
		t.Errorf("expected exactly one entry for the new task, got %d", n)
	}
}

func TestSignin(t *testing.T) {
	te := setupEnv(t, nil)
	te.api.me = member
	s := NewSignin(te.env, te.host)

	s.Email, s.Password = "mia@example", "Secret1!"
	s.Submit(context.Background())
	if te.api.total() != 0 {
		t.Fatalf("invalid email must not reach the server")
	}
	if m := lastNote(t, te.notes); m.Level != notify.LevelError {
		t.Errorf("expected error toast, got %+v", m)
	}

	s.Email = "mia@example.com"
	s.Submit(context.Background())
	if !te.env.Session.State().LoggedIn {
		t.Error("expected logged in")
	}
	if te.host.last() != PathHome {
		t.Errorf("expected navigation home, got %q", te.host.last())
	}
	if s.Password != "" {
		t.Error("expected password cleared")
	}
}

func TestSignup(t *testing.T) {
	te := setupEnv(t, nil)
	s := NewSignup(te.env, te.host)

	s.Name, s.Email, s.Password = "Mia", "mia@example.com", "weak"
	s.Submit(context.Background())
	if te.api.count("Register") != 0 {
		t.Fatal("weak password must not reach the server")
	}

	s.Password = "Secret1!"
	s.Submit(context.Background())
	if te.host.last() != PathSignin {
		t.Errorf("expected navigation to sign in, got %q", te.host.last())
	}
}

func TestLogoutFailure(t *testing.T) {
	te := setupEnv(t, member)
	te.api.logoutErr = errOffline
	l := NewLogout(te.env, te.host)
	l.Ask()
	l.Confirm(context.Background())

	if m := lastNote(t, te.notes); m.Text != session.MsgLogoutFailed {
		t.Errorf("expected logout failure toast, got %q", m.Text)
	}
	if !te.env.Session.HasSession() {
		t.Error("failed logout must keep the session")
	}

	te.api.logoutErr = nil
	l.Confirm(context.Background())
	if te.env.Session.HasSession() || te.host.last() != PathSignin {
		t.Error("expected session cleared and redirect after logout")
	}
}

func TestProfile(t *testing.T) {
	te := setupEnv(t, member)
	p := NewProfile(te.env, te.host)
	p.Mount(context.Background())
	defer p.Dismount()

	if p.Name != "Mia" || p.Email != "mia@example.com" {
		t.Fatalf("expected form prefilled, got %q %q", p.Name, p.Email)
	}

	t.Run("invalid new password", func(t *testing.T) {
		p.Password = "short"
		p.Save()
		if te.api.count("UpdateUser") != 0 {
			t.Error("invalid password must not reach the server")
		}
		p.Password = ""
	})

	t.Run("update", func(t *testing.T) {
		p.Name = "Mia Rossi"
		p.Save()
		if got := te.env.Session.State().User; got == nil || got.Name != "Mia Rossi" {
			t.Errorf("expected session user updated, got %+v", got)
		}
	})

	t.Run("import without file", func(t *testing.T) {
		p.Import()
		if m := lastNote(t, te.notes); m.Text != MsgSelectImportFile {
			t.Errorf("unexpected message %q", m.Text)
		}
		if te.api.count("ImportTasks") != 0 {
			t.Error("expected no import request")
		}
	})

	t.Run("import", func(t *testing.T) {
		csv := "title,description,category,isCompleted\nA,,low,false\n"
		p.SelectImport("tasks.csv", []byte(csv))
		p.Import()
		if te.api.imported != csv {
			t.Errorf("expected file uploaded, got %q", te.api.imported)
		}
		if p.ImportName != "" {
			t.Error("expected selection cleared after import")
		}
	})

	t.Run("export", func(t *testing.T) {
		te.api.export = []byte(strings.Repeat("x", 2048))
		p.Export()
		if te.files.name != ExportFilename || len(te.files.data) != 2048 {
			t.Errorf("expected %s saved, got %q (%d bytes)", ExportFilename, te.files.name, len(te.files.data))
		}
		if p.LastExport != "2.0 kB" {
			t.Errorf("unexpected export size %q", p.LastExport)
		}
	})

	t.Run("delete", func(t *testing.T) {
		p.AskDelete()
		p.Delete()
		if te.env.Session.HasSession() {
			t.Error("expected session cleared")
		}
		if te.host.last() != PathSignup {
			t.Errorf("unexpected navigation %q", te.host.last())
		}
	})
}

func TestOtherUserProfile(t *testing.T) {
	te := setupEnv(t, member)
	te.api.other = &model.User{ID: "o1", Name: "Oli", Followers: []string{"m1"}, Following: []string{"x", "y"}}
	te.api.posts = []model.Post{{ID: "p1"}}
	te.api.post = &model.Post{ID: "p1", Comments: []model.Comment{
		{ID: "c-mine", User: model.User{ID: "m1"}, Text: "nice"},
		{ID: "c-theirs", User: model.User{ID: "o1"}, Text: "thanks"},
	}}

	o := NewOtherUserProfile(te.env, te.host)
	o.Mount(context.Background(), "o1")

	if o.User == nil || len(o.Posts) != 1 {
		t.Fatalf("expected user and posts loaded, got %+v %+v", o.User, o.Posts)
	}
	if !o.Following() || o.IsSelf() {
		t.Error("expected viewer to follow o1 and not be o1")
	}
	if o.FollowerCount() != "1" || o.FollowingCount() != "2" {
		t.Errorf("unexpected counts %s/%s", o.FollowerCount(), o.FollowingCount())
	}

	o.ToggleFollow()
	if te.api.count("Unfollow") != 1 {
		t.Error("expected unfollow when already following")
	}

	o.OpenPost("p1")
	o.DeleteComment(o.Selected.Comments[1])
	if te.api.count("DeleteComment") != 0 {
		t.Error("deleting someone else's comment must not reach the server")
	}
	if m := lastNote(t, te.notes); m.Text != MsgNotCommentAuthor {
		t.Errorf("unexpected message %q", m.Text)
	}

	o.DeleteComment(o.Selected.Comments[0])
	if len(te.api.deleted) != 1 || te.api.deleted[0] != "c-mine" {
		t.Errorf("expected own comment deleted, got %v", te.api.deleted)
	}

	o.CommentText = "   "
	o.AddComment()
	if te.api.count("AddComment") != 0 {
		t.Error("blank comment must not be sent")
	}
	o.CommentText = "great shot"
	o.AddComment()
	if len(te.api.comments) != 1 || o.CommentText != "" {
		t.Errorf("expected comment sent and input cleared, got %v", te.api.comments)
	}
}

func TestOtherUserProfile_Self(t *testing.T) {
	te := setupEnv(t, member)
	te.api.other = member
	o := NewOtherUserProfile(te.env, te.host)
	o.Mount(context.Background(), "m1")

	o.ToggleFollow()
	if te.api.count("Follow")+te.api.count("Unfollow") != 0 {
		t.Error("cannot follow yourself")
	}
}

func TestDescriptionHTML(t *testing.T) {
	got := DescriptionHTML("**ship** it <script>alert(1)</script>")
	if !strings.Contains(got, "<strong>ship</strong>") {
		t.Errorf("expected markdown rendered, got %q", got)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("expected raw html dropped, got %q", got)
	}
}
