package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roksva123/go-matrix-tasks/internal/decode"
	"github.com/roksva123/go-matrix-tasks/internal/extract"
	"github.com/roksva123/go-matrix-tasks/internal/model"
	"github.com/roksva123/go-matrix-tasks/internal/normalize"
	"github.com/roksva123/go-matrix-tasks/internal/notify"
	"github.com/roksva123/go-matrix-tasks/internal/store"
	"github.com/roksva123/go-matrix-tasks/internal/webhook"
)

const (
	ActionSyncTasks       = "SYNC_TASKS"
	ActionAdminFetchTasks = "admin_fetch_all_tasks"
	ActionSyncStaff       = "SYNC_STAFF"
	ActionSyncDepartments = "SYNC_DEPARTMENTS"
)

// Poster performs one webhook round trip. *webhook.Client satisfies it.
type Poster interface {
	Post(ctx context.Context, url string, req webhook.Request) (string, error)
}

// HistoryArchive keeps connection-log entries beyond the in-store ring.
type HistoryArchive interface {
	Archive(ctx context.Context, e model.ConnectionLogEntry) error
}

type SyncService struct {
	Store      *store.Store
	Client     Poster
	Endpoints  *Endpoints
	Normalizer *normalize.Normalizer
	Toasts     *notify.Hub
	History    HistoryArchive
	Budget     extract.Budget
	Logger     *zap.Logger
	Now        func() time.Time

	locks map[model.EntityKind]*sync.Mutex
}

func NewSyncService(
	st *store.Store,
	client Poster,
	endpoints *Endpoints,
	normalizer *normalize.Normalizer,
	toasts *notify.Hub,
	history HistoryArchive,
	budget extract.Budget,
	logger *zap.Logger,
) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	locks := make(map[model.EntityKind]*sync.Mutex, len(model.EntityKinds))
	for _, k := range model.EntityKinds {
		locks[k] = &sync.Mutex{}
	}
	return &SyncService{
		Store:      st,
		Client:     client,
		Endpoints:  endpoints,
		Normalizer: normalizer,
		Toasts:     toasts,
		History:    history,
		Budget:     budget,
		Logger:     logger,
		Now:        time.Now,
		locks:      locks,
	}
}

func (s *SyncService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// pipeline is the per-entity part of a sync; everything else is shared.
type pipeline[T any] struct {
	entity    model.EntityKind
	action    string
	extract   func(any, extract.Budget) extract.Result
	normalize func(map[string]any) (T, error)
	// finish runs over the whole normalized batch before it is stored.
	finish  func([]T) []T
	key     func(T) string
	local   func() []T
	replace func(context.Context, []T) error
}

type fetched[T any] struct {
	url       string
	records   []T
	rejected  int
	truncated bool
}

// fetch runs request, decode, extract and normalize without touching the store.
func fetch[T any](ctx context.Context, s *SyncService, p pipeline[T], actor model.User) (fetched[T], error) {
	var out fetched[T]
	url, ok := s.Endpoints.URL(p.entity)
	if !ok {
		return out, &SyncError{Kind: KindConfig, Entity: p.entity, Err: webhook.ErrInvalidURL}
	}
	out.url = url

	text, err := s.Client.Post(ctx, url, webhook.NewRequest(p.action, actor.Username, nil))
	if err != nil {
		return out, &SyncError{Kind: KindTransport, Entity: p.entity, Err: err}
	}

	value, err := decode.Decode(text)
	if err != nil {
		if errors.Is(err, decode.ErrEmpty) {
			return out, &SyncError{Kind: KindEmpty, Entity: p.entity, Err: ErrNoValidData}
		}
		return out, &SyncError{Kind: KindDecode, Entity: p.entity, Err: err}
	}

	res := p.extract(value, s.Budget)
	out.truncated = res.Truncated
	for _, raw := range res.Records {
		rec, err := p.normalize(raw)
		if err != nil {
			out.rejected++
			s.Logger.Debug("record rejected", zap.String("entity", string(p.entity)), zap.Error(err))
			continue
		}
		out.records = append(out.records, rec)
	}
	if len(out.records) == 0 {
		return out, &SyncError{Kind: KindEmpty, Entity: p.entity, Err: ErrNoValidData}
	}
	if p.finish != nil {
		out.records = p.finish(out.records)
	}
	return out, nil
}

// runSync fetches and, on success only, replaces the local collection
// wholesale. Every attempt that reaches the network or fails its
// preconditions is recorded in the connection log.
func runSync[T any](ctx context.Context, s *SyncService, p pipeline[T], actor model.User) (model.SyncResult, error) {
	lock := s.locks[p.entity]
	if !lock.TryLock() {
		return model.SyncResult{}, &SyncError{Kind: KindInFlight, Entity: p.entity, Err: ErrSyncInFlight}
	}
	defer lock.Unlock()

	start := s.now()
	result := model.SyncResult{Entity: p.entity, Action: p.action}

	f, err := fetch(ctx, s, p, actor)
	result.Rejected = f.rejected
	result.Truncated = f.truncated
	if err == nil {
		if rerr := p.replace(ctx, f.records); rerr != nil {
			err = &SyncError{Kind: KindStore, Entity: p.entity, Err: rerr}
		} else {
			result.Records = len(f.records)
		}
	}

	entry := model.ConnectionLogEntry{
		ID:         uuid.NewString(),
		Time:       start,
		Entity:     p.entity,
		Action:     p.action,
		URL:        f.url,
		OK:         err == nil,
		Records:    result.Records,
		DurationMs: s.now().Sub(start).Milliseconds(),
	}
	if err != nil {
		entry.Message = err.Error()
	} else {
		entry.Message = fmt.Sprintf("synced %d %s", result.Records, p.entity)
		if f.rejected > 0 {
			entry.Message += fmt.Sprintf(", %d rejected", f.rejected)
		}
		if f.truncated {
			entry.Message += " (truncated)"
		}
	}
	s.record(ctx, entry)

	if err != nil {
		s.Logger.Warn("sync failed", zap.String("entity", string(p.entity)), zap.Error(err))
		return result, err
	}
	s.Logger.Info("sync finished",
		zap.String("entity", string(p.entity)),
		zap.Int("records", result.Records),
		zap.Int("rejected", result.Rejected),
		zap.Bool("truncated", result.Truncated))
	return result, nil
}

func (s *SyncService) record(ctx context.Context, e model.ConnectionLogEntry) {
	if err := s.Store.AppendConnectionLog(ctx, e); err != nil {
		s.Logger.Error("append connection log", zap.Error(err))
	}
	if s.Toasts != nil {
		if e.OK {
			s.Toasts.Success(e.Message)
		} else {
			s.Toasts.Error(e.Message)
		}
	}
	if s.History != nil {
		if err := s.History.Archive(ctx, e); err != nil {
			s.Logger.Warn("archive sync history", zap.Error(err))
		}
	}
}

func (s *SyncService) taskPipeline(actor model.User) pipeline[model.Task] {
	action := ActionSyncTasks
	if actor.Role == model.RoleAdmin {
		action = ActionAdminFetchTasks
	}
	return pipeline[model.Task]{
		entity:    model.EntityTasks,
		action:    action,
		extract:   extract.Tasks,
		normalize: s.Normalizer.Task,
		key:       func(t model.Task) string { return t.ID },
		local:     s.Store.Tasks,
		replace:   s.Store.ReplaceTasks,
	}
}

func (s *SyncService) staffPipeline() pipeline[model.StaffMember] {
	return pipeline[model.StaffMember]{
		entity:    model.EntityStaff,
		action:    ActionSyncStaff,
		extract:   extract.Staff,
		normalize: s.Normalizer.Staff,
		key:       func(m model.StaffMember) string { return m.ID },
		local:     s.Store.Staff,
		replace:   s.Store.ReplaceStaff,
	}
}

func (s *SyncService) departmentPipeline() pipeline[model.Department] {
	return pipeline[model.Department]{
		entity:    model.EntityDepartments,
		action:    ActionSyncDepartments,
		extract:   extract.Departments,
		normalize: s.Normalizer.Department,
		finish:    assignDepartmentIDs,
		key:       func(d model.Department) string { return strconv.FormatInt(d.ID, 10) },
		local:     s.Store.Departments,
		replace:   s.Store.ReplaceDepartments,
	}
}

// assignDepartmentIDs gives records without an id the next free id of the
// incoming batch.
func assignDepartmentIDs(deps []model.Department) []model.Department {
	var max int64
	for _, d := range deps {
		if d.ID > max {
			max = d.ID
		}
	}
	for i := range deps {
		if deps[i].ID == 0 {
			max++
			deps[i].ID = max
		}
	}
	return deps
}

func (s *SyncService) SyncTasks(ctx context.Context, actor model.User) (model.SyncResult, error) {
	return runSync(ctx, s, s.taskPipeline(actor), actor)
}

func (s *SyncService) SyncStaff(ctx context.Context, actor model.User) (model.SyncResult, error) {
	return runSync(ctx, s, s.staffPipeline(), actor)
}

func (s *SyncService) SyncDepartments(ctx context.Context, actor model.User) (model.SyncResult, error) {
	return runSync(ctx, s, s.departmentPipeline(), actor)
}

func (s *SyncService) Sync(ctx context.Context, kind model.EntityKind, actor model.User) (model.SyncResult, error) {
	switch kind {
	case model.EntityTasks:
		return s.SyncTasks(ctx, actor)
	case model.EntityStaff:
		return s.SyncStaff(ctx, actor)
	case model.EntityDepartments:
		return s.SyncDepartments(ctx, actor)
	}
	return model.SyncResult{}, invalidInput("unknown entity %q", kind)
}

// SyncAll runs the three entity syncs concurrently. One failing does not
// cancel the others; the returned error joins every failure.
func (s *SyncService) SyncAll(ctx context.Context, actor model.User) (model.FullSync, error) {
	results := make([]model.SyncResult, len(model.EntityKinds))
	errs := make([]error, len(model.EntityKinds))

	var g errgroup.Group
	for i, kind := range model.EntityKinds {
		g.Go(func() error {
			results[i], errs[i] = s.Sync(ctx, kind, actor)
			return nil
		})
	}
	_ = g.Wait()

	full := model.FullSync{Results: results}
	for i, err := range errs {
		if err == nil {
			continue
		}
		if full.Errors == nil {
			full.Errors = map[model.EntityKind]string{}
		}
		full.Errors[model.EntityKinds[i]] = err.Error()
	}
	return full, errors.Join(errs...)
}

// Preview fetches like a sync but only reports which local records the
// wholesale replace would discard. Nothing is stored or logged.
func (s *SyncService) Preview(ctx context.Context, kind model.EntityKind, actor model.User) (model.SyncPreview, error) {
	switch kind {
	case model.EntityTasks:
		return preview(ctx, s, s.taskPipeline(actor), actor)
	case model.EntityStaff:
		return preview(ctx, s, s.staffPipeline(), actor)
	case model.EntityDepartments:
		return preview(ctx, s, s.departmentPipeline(), actor)
	}
	return model.SyncPreview{}, invalidInput("unknown entity %q", kind)
}

func preview[T any](ctx context.Context, s *SyncService, p pipeline[T], actor model.User) (model.SyncPreview, error) {
	f, err := fetch(ctx, s, p, actor)
	if err != nil {
		return model.SyncPreview{}, err
	}
	incoming := make(map[string]bool, len(f.records))
	for _, r := range f.records {
		incoming[p.key(r)] = true
	}
	local := p.local()
	out := model.SyncPreview{
		Entity:    p.entity,
		Incoming:  len(f.records),
		Local:     len(local),
		LocalOnly: []string{},
		Truncated: f.truncated,
	}
	for _, r := range local {
		if k := p.key(r); !incoming[k] {
			out.LocalOnly = append(out.LocalOnly, k)
		}
	}
	sort.Strings(out.LocalOnly)
	return out, nil
}

// ConnectionLog returns the recorded attempts, newest first.
func (s *SyncService) ConnectionLog() []model.ConnectionLogEntry {
	return s.Store.ConnectionLog()
}

func (s *SyncService) ClearConnectionLog(ctx context.Context, confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}
	return s.Store.ClearConnectionLog(ctx)
}
