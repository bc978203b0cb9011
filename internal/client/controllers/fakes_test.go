package controllers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/ecoflow/internal/client/client"
	"github.com/dmitrijs2005/ecoflow/internal/client/debounce"
	"github.com/dmitrijs2005/ecoflow/internal/client/models"
	"github.com/dmitrijs2005/ecoflow/internal/client/workflow"
)

/*************
 * Identity
 *************/

type fakeIdentity struct {
	sess models.Session
}

func (f *fakeIdentity) Current() models.Session { return f.sess }

func admin() *fakeIdentity {
	return &fakeIdentity{sess: models.Session{Token: "t", Username: "root", IsAdmin: true}}
}

func user() *fakeIdentity {
	return &fakeIdentity{sess: models.Session{Token: "t", Username: "alice"}}
}

/*************
 * Manual scheduler for the debouncer
 *************/

type manualTimer struct {
	mu      sync.Mutex
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (t *manualTimer) fire() {
	t.mu.Lock()
	if t.stopped || t.fired {
		t.mu.Unlock()
		return
	}
	t.fired = true
	t.mu.Unlock()
	t.f()
}

type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (s *manualScheduler) after(_ time.Duration, f func()) debounce.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) fireAll() {
	s.mu.Lock()
	timers := append([]*manualTimer(nil), s.timers...)
	s.mu.Unlock()
	for _, t := range timers {
		t.fire()
	}
}

/*************
 * Lister
 *************/

type fakeLister struct {
	mu      sync.Mutex
	calls   []client.ListParams
	respond func(p client.ListParams) ([]models.EcoSummary, error)
}

func (f *fakeLister) ListEcos(ctx context.Context, p client.ListParams) ([]models.EcoSummary, error) {
	f.mu.Lock()
	f.calls = append(f.calls, p)
	respond := f.respond
	f.mu.Unlock()
	if respond == nil {
		return nil, nil
	}
	return respond(p)
}

func (f *fakeLister) Calls() []client.ListParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]client.ListParams(nil), f.calls...)
}

func rows(n int, status models.Status) []models.EcoSummary {
	out := make([]models.EcoSummary, n)
	for i := range out {
		out[i] = models.EcoSummary{ID: int64(i + 1), Title: fmt.Sprintf("eco %d", i+1), Status: status}
	}
	return out
}

/*************
 * In-memory ECO server
 *************/

type fakeEcoAPI struct {
	mu            sync.Mutex
	ecos          map[int64]*models.Eco
	nextID        int64
	actor         string
	transitions   int
	transitionErr error
	getErr        error
	updateErr     error
	deleteErr     error
	files         map[string][]byte
}

func newFakeEcoAPI(ecos ...*models.Eco) *fakeEcoAPI {
	f := &fakeEcoAPI{ecos: map[int64]*models.Eco{}, nextID: 100, actor: "alice", files: map[string][]byte{}}
	for _, e := range ecos {
		f.ecos[e.ID] = e
	}
	return f
}

func (f *fakeEcoAPI) GetEco(ctx context.Context, id int64) (*models.Eco, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	e, ok := f.ecos[id]
	if !ok {
		return nil, &client.APIError{Status: 404, Detail: "ECO not found", Kind: client.ErrNotFound}
	}
	return e.Clone(), nil
}

func (f *fakeEcoAPI) CreateEco(ctx context.Context, in models.EcoInput) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.ecos[f.nextID] = &models.Eco{
		ID: f.nextID, Title: in.Title, Description: in.Description, Status: models.StatusDraft,
		CreatedBy: f.actor,
		History:   []models.HistoryEntry{{Action: "created", Actor: f.actor}},
	}
	return f.nextID, nil
}

func (f *fakeEcoAPI) UpdateEco(ctx context.Context, id int64, in models.EcoInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	e := f.ecos[id]
	e.Title, e.Description = in.Title, in.Description
	e.History = append(e.History, models.HistoryEntry{Action: "edited", Actor: f.actor})
	return nil
}

func (f *fakeEcoAPI) DeleteEco(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.ecos, id)
	return nil
}

func (f *fakeEcoAPI) Transition(ctx context.Context, id int64, action workflow.Action, comment string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transitions++
	if f.transitionErr != nil {
		return f.transitionErr
	}
	e := f.ecos[id]
	next, err := workflow.Next(e.Status, action)
	if err != nil {
		return &client.APIError{Status: 400, Detail: "Invalid status transition", Kind: client.ErrValidation}
	}
	e.Status = next
	e.History = append(e.History, models.HistoryEntry{Action: string(action), Actor: f.actor, Comment: comment})
	return nil
}

func (f *fakeEcoAPI) UploadAttachment(ctx context.Context, id int64, filename string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[fmt.Sprintf("%d/%s", id, filename)] = data
	if e, ok := f.ecos[id]; ok {
		e.Attachments = append(e.Attachments, models.Attachment{Filename: filename, UploadedBy: f.actor, Size: int64(len(data))})
	}
	return nil
}

func (f *fakeEcoAPI) DownloadAttachment(ctx context.Context, id int64, filename string) (*models.BinaryPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[fmt.Sprintf("%d/%s", id, filename)]
	if !ok {
		return nil, &client.APIError{Status: 404, Detail: "File not found", Kind: client.ErrNotFound}
	}
	return &models.BinaryPayload{Name: filename, ContentType: "application/pdf", Data: bytes.Clone(data)}, nil
}

func (f *fakeEcoAPI) DownloadReport(ctx context.Context, id int64) (*models.BinaryPayload, error) {
	return &models.BinaryPayload{Name: client.ReportName(id), ContentType: "text/markdown", Data: []byte("# ECO Report")}, nil
}

/*************
 * Users
 *************/

type fakeUserAPI struct {
	mu        sync.Mutex
	users     []models.User
	deleted   []int64
	listCalls int
	regErr    error
}

func (f *fakeUserAPI) ListUsers(ctx context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return append([]models.User(nil), f.users...), nil
}

func (f *fakeUserAPI) DeleteUser(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	kept := f.users[:0]
	for _, u := range f.users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	f.users = kept
	return nil
}

func (f *fakeUserAPI) Register(ctx context.Context, u models.NewUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.regErr != nil {
		return f.regErr
	}
	f.users = append(f.users, models.User{ID: int64(len(f.users) + 1), Username: u.Username})
	return nil
}
