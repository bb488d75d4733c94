// Package repotest provides an in-memory RepositoryManager that applies the
// same owner, expiry and burn filters as the SQL repositories.
package repotest

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cocoinbox/cocoinbox/internal/common"
	"github.com/cocoinbox/cocoinbox/internal/dbx"
	"github.com/cocoinbox/cocoinbox/internal/server/models"
	"github.com/cocoinbox/cocoinbox/internal/server/repositories/files"
	"github.com/cocoinbox/cocoinbox/internal/server/repositories/mailboxes"
	"github.com/cocoinbox/cocoinbox/internal/server/repositories/notes"
	"github.com/cocoinbox/cocoinbox/internal/server/repositories/repomanager"
	"github.com/cocoinbox/cocoinbox/internal/server/repositories/users"
	"github.com/google/uuid"
)

type Store struct {
	mu        sync.Mutex
	users     map[string]*models.User
	notes     map[string]*models.Note
	files     map[string]*models.File
	mailboxes map[string]*models.Mailbox
	seq       int
	fail      error
}

func NewStore() *Store {
	return &Store{
		users:     map[string]*models.User{},
		notes:     map[string]*models.Note{},
		files:     map[string]*models.File{},
		mailboxes: map[string]*models.Mailbox{},
	}
}

func (s *Store) stamp() time.Time {
	s.seq++
	return time.Now().Add(time.Duration(s.seq) * time.Millisecond)
}

func live(exp *time.Time) bool { return exp == nil || exp.After(time.Now()) }

type manager struct{ s *Store }

func (m manager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m manager) Users(dbx.DBTX) users.Repository              { return userRepo{m.s} }
func (m manager) Notes(dbx.DBTX) notes.Repository              { return noteRepo{m.s} }
func (m manager) Files(dbx.DBTX) files.Repository              { return fileRepo{m.s} }
func (m manager) Mailboxes(dbx.DBTX) mailboxes.Repository      { return mailboxRepo{m.s} }

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}
	for _, e := range r.s.users {
		if strings.EqualFold(e.Email, u.Email) {
			return nil, common.ErrorUserExists
		}
	}
	u.ID, u.CreatedAt = uuid.NewString(), r.s.stamp()
	cp := *u
	r.s.users[u.ID] = &cp
	return u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r userRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}
	if u, ok := r.s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

type noteRepo struct{ s *Store }

func (r noteRepo) Create(_ context.Context, n *models.Note) (*models.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}
	n.ID, n.CreatedAt = uuid.NewString(), r.s.stamp()
	cp := *n
	r.s.notes[n.ID] = &cp
	return n, nil
}

func (r noteRepo) ListByUser(_ context.Context, userID string) ([]*models.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}
	out := []*models.Note{}
	for _, n := range r.s.notes {
		if n.UserID != userID || !live(n.ExpiresAt) || (n.AutoDeleteAfterRead && n.HasBeenRead) {
			continue
		}
		cp := *n
		cp.EncryptedContent = ""
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r noteRepo) Read(_ context.Context, id, userID string) (*models.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}
	n, ok := r.s.notes[id]
	if !ok || n.UserID != userID || !live(n.ExpiresAt) || (n.AutoDeleteAfterRead && n.HasBeenRead) {
		return nil, common.ErrorNotFound
	}
	n.HasBeenRead = true
	cp := *n
	return &cp, nil
}

func (r noteRepo) Delete(_ context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return r.s.fail
	}
	n, ok := r.s.notes[id]
	if !ok || n.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.s.notes, id)
	return nil
}

func (r noteRepo) Purge(context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return 0, r.s.fail
	}
	var n int64
	for id, note := range r.s.notes {
		if (note.AutoDeleteAfterRead && note.HasBeenRead) || !live(note.ExpiresAt) {
			delete(r.s.notes, id)
			n++
		}
	}
	return n, nil
}

type fileRepo struct{ s *Store }

func (r fileRepo) Create(_ context.Context, f *models.File) (*models.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}
	f.ID, f.CreatedAt = uuid.NewString(), r.s.stamp()
	cp := *f
	r.s.files[f.ID] = &cp
	return f, nil
}

func (r fileRepo) ListByUser(_ context.Context, userID string) ([]*models.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}
	out := []*models.File{}
	for _, f := range r.s.files {
		if f.UserID == userID && live(f.ExpiresAt) {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r fileRepo) GetForOwner(_ context.Context, id, userID string) (*models.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}
	f, ok := r.s.files[id]
	if !ok || f.UserID != userID || !live(f.ExpiresAt) {
		return nil, common.ErrorNotFound
	}
	cp := *f
	return &cp, nil
}

func (r fileRepo) MarkUploaded(_ context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.files[id]
	if !ok || f.UserID != userID || f.UploadStatus != models.UploadStatusPending || !live(f.ExpiresAt) {
		return common.ErrorNotFound
	}
	f.UploadStatus = models.UploadStatusCompleted
	return nil
}

func (r fileRepo) ConsumeDownload(_ context.Context, id, userID string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.files[id]
	if !ok || f.UserID != userID || f.UploadStatus != models.UploadStatusCompleted || !live(f.ExpiresAt) ||
		(f.MaxDownloads != nil && f.DownloadCount >= *f.MaxDownloads) {
		return "", common.ErrorNotFound
	}
	f.DownloadCount++
	return f.StorageKey, nil
}

func (r fileRepo) Delete(_ context.Context, id, userID string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.files[id]
	if !ok || f.UserID != userID {
		return "", common.ErrorNotFound
	}
	delete(r.s.files, id)
	return f.StorageKey, nil
}

func (r fileRepo) PurgeExpired(context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var keys []string
	for id, f := range r.s.files {
		if !live(f.ExpiresAt) {
			keys = append(keys, f.StorageKey)
			delete(r.s.files, id)
		}
	}
	return keys, nil
}

type mailboxRepo struct{ s *Store }

func (r mailboxRepo) Create(_ context.Context, mb *models.Mailbox) (*models.Mailbox, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.fail != nil {
		return nil, r.s.fail
	}
	mb.ID, mb.CreatedAt, mb.IsActive = uuid.NewString(), r.s.stamp(), true
	cp := *mb
	r.s.mailboxes[mb.ID] = &cp
	return mb, nil
}

func (r mailboxRepo) ListActive(_ context.Context, userID string) ([]*models.Mailbox, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Mailbox{}
	for _, mb := range r.s.mailboxes {
		if mb.UserID == userID && mb.IsActive && live(&mb.ExpiresAt) {
			cp := *mb
			cp.EncryptedPassword, cp.Nonce = nil, nil
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r mailboxRepo) GetActive(_ context.Context, id, userID string) (*models.Mailbox, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	mb, ok := r.s.mailboxes[id]
	if !ok || mb.UserID != userID || !mb.IsActive || !live(&mb.ExpiresAt) {
		return nil, common.ErrorNotFound
	}
	cp := *mb
	return &cp, nil
}

func (r mailboxRepo) Deactivate(_ context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	mb, ok := r.s.mailboxes[id]
	if !ok || mb.UserID != userID || !mb.IsActive {
		return common.ErrorNotFound
	}
	mb.IsActive = false
	return nil
}

func (r mailboxRepo) DeactivateExpired(context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, mb := range r.s.mailboxes {
		if mb.IsActive && !live(&mb.ExpiresAt) {
			mb.IsActive = false
			n++
		}
	}
	return n, nil
}

// Manager returns a RepositoryManager backed by s. The DBTX passed to its
// factories is ignored.
func (s *Store) Manager() repomanager.RepositoryManager { return manager{s} }

// Fail makes every subsequent user, note, file and mailbox create or lookup
// call return err. Pass nil to recover.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

// SeedUser stores a user without hashing a password.
func (s *Store) SeedUser(email string) *models.User {
	u, _ := userRepo{s}.Create(context.Background(), &models.User{Email: email, Roles: models.Roles{common.DefaultRole}})
	return u
}

// ExpireFile moves a file's expiry into the past.
func (s *Store) ExpireFile(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.files[id]; ok {
		past := time.Now().Add(-time.Second)
		f.ExpiresAt = &past
	}
}
