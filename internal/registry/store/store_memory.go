package store

import (
	"context"
	"sort"
	"sync"

	"impactledger/internal/registry/models"
	id "impactledger/pkg/domain"
	dErrors "impactledger/pkg/domain-errors"
)

// InMemory keeps both collections under one RWMutex. RunInTx holds the write
// lock for the whole callback and stages writes, applying them only when the
// callback succeeds; readers take the read lock and never see staged state.
type InMemory struct {
	mu             sync.RWMutex
	delegates      map[id.DelegateID]models.Delegate
	credentials    map[id.CredentialID]models.Credential
	byDelegate     map[id.DelegateID][]id.CredentialID
	lastDelegate   id.DelegateID
	lastCredential id.CredentialID
}

func NewInMemory() *InMemory {
	return &InMemory{
		delegates:   make(map[id.DelegateID]models.Delegate),
		credentials: make(map[id.CredentialID]models.Credential),
		byDelegate:  make(map[id.DelegateID][]id.CredentialID),
	}
}

func (s *InMemory) RunInTx(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	tx := &memoryTx{
		store:          s,
		lastDelegate:   s.lastDelegate,
		lastCredential: s.lastCredential,
		delegates:      make(map[id.DelegateID]models.Delegate),
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *InMemory) FindDelegate(_ context.Context, delegateID id.DelegateID) (*models.Delegate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.delegates[delegateID]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (s *InMemory) ListDelegates(_ context.Context) ([]*models.Delegate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Delegate, 0, len(s.delegates))
	for _, d := range s.delegates {
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) FindCredential(_ context.Context, credentialID id.CredentialID) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.credentials[credentialID]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *InMemory) ListCredentialsByDelegate(_ context.Context, delegateID id.DelegateID) ([]*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.delegates[delegateID]; !ok {
		return nil, ErrNotFound
	}
	ids := s.byDelegate[delegateID]
	out := make([]*models.Credential, 0, len(ids))
	for _, credentialID := range ids {
		c := s.credentials[credentialID]
		out = append(out, &c)
	}
	return out, nil
}

func (s *InMemory) TotalImpacts(_ context.Context, delegateIDs []id.DelegateID) (map[id.DelegateID]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.DelegateID]uint64, len(delegateIDs))
	for _, delegateID := range delegateIDs {
		if d, ok := s.delegates[delegateID]; ok {
			out[delegateID] = d.TotalImpact
		}
	}
	return out, nil
}

// memoryTx stages writes against the store. The store's write lock is held
// for the lifetime of the transaction.
type memoryTx struct {
	store          *InMemory
	lastDelegate   id.DelegateID
	lastCredential id.CredentialID
	delegates      map[id.DelegateID]models.Delegate
	credentials    []models.Credential
}

func (t *memoryTx) NextDelegateID(_ context.Context) (id.DelegateID, error) {
	t.lastDelegate++
	return t.lastDelegate, nil
}

func (t *memoryTx) NextCredentialID(_ context.Context) (id.CredentialID, error) {
	t.lastCredential++
	return t.lastCredential, nil
}

func (t *memoryTx) InsertDelegate(_ context.Context, delegate *models.Delegate) error {
	if _, err := t.lookup(delegate.ID); err == nil {
		return dErrors.New(dErrors.CodeConflict, "delegate already exists")
	}
	t.delegates[delegate.ID] = *delegate
	return nil
}

func (t *memoryTx) InsertCredential(_ context.Context, credential *models.Credential) error {
	if _, err := t.lookup(credential.DelegateID); err != nil {
		return err
	}
	t.credentials = append(t.credentials, *credential)
	return nil
}

func (t *memoryTx) FindDelegate(_ context.Context, delegateID id.DelegateID) (*models.Delegate, error) {
	d, err := t.lookup(delegateID)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (t *memoryTx) UpdateTotalImpact(_ context.Context, delegateID id.DelegateID, total uint64) error {
	d, err := t.lookup(delegateID)
	if err != nil {
		return err
	}
	d.TotalImpact = total
	t.delegates[delegateID] = d
	return nil
}

func (t *memoryTx) lookup(delegateID id.DelegateID) (models.Delegate, error) {
	if d, ok := t.delegates[delegateID]; ok {
		return d, nil
	}
	if d, ok := t.store.delegates[delegateID]; ok {
		return d, nil
	}
	return models.Delegate{}, ErrNotFound
}

func (t *memoryTx) commit() {
	s := t.store
	for delegateID, d := range t.delegates {
		s.delegates[delegateID] = d
	}
	for _, c := range t.credentials {
		s.credentials[c.ID] = c
		s.byDelegate[c.DelegateID] = append(s.byDelegate[c.DelegateID], c.ID)
	}
	s.lastDelegate = t.lastDelegate
	s.lastCredential = t.lastCredential
}
