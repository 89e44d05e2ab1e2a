package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/roksva123/go-matrix-tasks/internal/extract"
	"github.com/roksva123/go-matrix-tasks/internal/model"
	"github.com/roksva123/go-matrix-tasks/internal/normalize"
	"github.com/roksva123/go-matrix-tasks/internal/notify"
	"github.com/roksva123/go-matrix-tasks/internal/store"
	"github.com/roksva123/go-matrix-tasks/internal/webhook"
)

// fakeWebhook answers every POST with a fixed body and records request bodies.
type fakeWebhook struct {
	mu     sync.Mutex
	status int
	body   string
	bodies []string
	server *httptest.Server
}

func newFakeWebhook(t *testing.T, body string) *fakeWebhook {
	t.Helper()
	f := &fakeWebhook{status: http.StatusOK, body: body}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.bodies = append(f.bodies, string(b))
		status, resp := f.status, f.body
		f.mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeWebhook) respond(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.body = status, body
}

func (f *fakeWebhook) requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.bodies...)
}

// recordingNotifier captures notifications instead of sending them.
type recordingNotifier struct {
	mu   sync.Mutex
	reqs []webhook.Request
}

func (r *recordingNotifier) Notify(_ string, req webhook.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
}

func (r *recordingNotifier) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.reqs))
	for _, req := range r.reqs {
		out = append(out, req.Action)
	}
	return out
}

type fakeArchive struct {
	mu      sync.Mutex
	entries []model.ConnectionLogEntry
}

func (a *fakeArchive) Archive(_ context.Context, e model.ConnectionLogEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	return nil
}

type testEnv struct {
	store    *store.Store
	hook     *fakeWebhook
	notifier *recordingNotifier
	archive  *fakeArchive
	toasts   *notify.Hub
	ep       *Endpoints
	sync     *SyncService
	deps     *DepartmentService
	staff    *StaffService
	tasks    *TaskService
	now      time.Time
}

var testNow = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

func newTestEnv(t *testing.T, body string) *testEnv {
	t.Helper()
	st, err := store.Open(context.Background(), store.NewMemoryBackend(), zap.NewNop())
	require.NoError(t, err)

	hook := newFakeWebhook(t, body)
	ep := &Endpoints{Store: st, Defaults: map[model.EntityKind]string{
		model.EntityTasks:       hook.server.URL + "/tasks",
		model.EntityStaff:       hook.server.URL + "/staff",
		model.EntityDepartments: hook.server.URL + "/departments",
	}}
	norm := normalize.New(normalize.AcceptUnknown, time.UTC)
	norm.Now = func() time.Time { return testNow }

	env := &testEnv{
		store:    st,
		hook:     hook,
		notifier: &recordingNotifier{},
		archive:  &fakeArchive{},
		toasts:   notify.NewHub(time.Minute, st),
		ep:       ep,
		now:      testNow,
	}
	env.sync = NewSyncService(st, webhook.NewClient(0, nil), ep, norm, env.toasts, env.archive, extract.DefaultBudget(), zap.NewNop())
	env.sync.Now = func() time.Time { return testNow }
	env.deps = NewDepartmentService(st, env.notifier, ep)
	env.staff = NewStaffService(st, env.deps, env.notifier, ep)
	env.tasks = NewTaskService(st, env.deps, env.notifier, ep, time.UTC, zap.NewNop())
	env.tasks.Now = func() time.Time { return testNow }
	return env
}

var (
	admin   = model.User{ID: "admin", Username: "admin", FullName: "Administrator", Role: model.RoleAdmin}
	alice   = model.User{ID: "s1", Username: "alice", FullName: "Alice Tran", Role: model.RoleStaff, Department: "1"}
	bob     = model.User{ID: "s2", Username: "bob", FullName: "Bob Le", Role: model.RoleStaff, Department: "Sales"}
	manager = model.User{ID: "m1", Username: "mia", FullName: "Mia Pham", Role: model.RoleManager, Department: "Engineering"}
)

// seedOrg stores two departments and a small roster.
func (e *testEnv) seedOrg(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.store.ReplaceDepartments(ctx, []model.Department{
		{ID: 1, Name: "Engineering"},
		{ID: 2, Name: "Sales"},
	}))
	require.NoError(t, e.store.ReplaceStaff(ctx, []model.StaffMember{
		{ID: "s1", Username: "alice", FullName: "Alice Tran", Password: "pw1", Role: model.RoleStaff, Active: true, Department: "1"},
		{ID: "s2", Username: "bob", FullName: "Bob Le", Password: "pw2", Role: model.RoleStaff, Active: true, Department: "Sales"},
		{ID: "m1", Username: "mia", FullName: "Mia Pham", Password: "pw3", Role: model.RoleManager, Active: true, Department: "Engineering"},
		{ID: "s9", Username: "old", FullName: "Old Timer", Password: "pw9", Role: model.RoleStaff, Active: false},
	}))
}
