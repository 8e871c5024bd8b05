package accounts

import "sync"

// accountDirectory keeps accounts in memory, keyed by canonical email.
// The single mutex is what makes InsertIfAbsent a true test-and-set.
type accountDirectory struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

func NewAccountDirectory() Directory {
	return &accountDirectory{accounts: map[string]*Account{}}
}

func (dir *accountDirectory) Exists(email string) (bool, error) {
	dir.mu.RLock()
	defer dir.mu.RUnlock()

	_, ok := dir.accounts[CanonicalEmail(email)]
	return ok, nil
}

func (dir *accountDirectory) InsertIfAbsent(acc *Account) error {
	dir.mu.Lock()
	defer dir.mu.Unlock()

	key := CanonicalEmail(acc.Email)
	if _, ok := dir.accounts[key]; ok {
		return ErrExistingEmail
	}
	dir.accounts[key] = acc
	return nil
}

// Finders hand out copies, never the stored record: a fetched account is
// a snapshot, and updates are observed by re-fetching.
func (dir *accountDirectory) FindByEmail(email string) (*Account, error) {
	dir.mu.RLock()
	defer dir.mu.RUnlock()

	if acc, ok := dir.accounts[CanonicalEmail(email)]; ok {
		cp := *acc
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (dir *accountDirectory) FindByID(id ID) (*Account, error) {
	dir.mu.RLock()
	defer dir.mu.RUnlock()

	acc, err := dir.findByID(id)
	if err != nil {
		return nil, err
	}
	cp := *acc
	return &cp, nil
}

func (dir *accountDirectory) UpdateState(id ID, state ActivationState) error {
	dir.mu.Lock()
	defer dir.mu.Unlock()

	acc, err := dir.findByID(id)
	if err != nil {
		return err
	}
	acc.State = state
	return nil
}

func (dir *accountDirectory) UpdateRole(email string, role Role) error {
	dir.mu.Lock()
	defer dir.mu.Unlock()

	acc, ok := dir.accounts[CanonicalEmail(email)]
	if !ok {
		return ErrNotFound
	}
	acc.Role = role
	return nil
}

func (dir *accountDirectory) UpdateProficiency(id ID, profile string) error {
	dir.mu.Lock()
	defer dir.mu.Unlock()

	acc, err := dir.findByID(id)
	if err != nil {
		return err
	}
	acc.Proficiency = profile
	return nil
}

// findByID assumes the caller holds the lock.
func (dir *accountDirectory) findByID(id ID) (*Account, error) {
	for _, acc := range dir.accounts {
		if acc.ID == id {
			return acc, nil
		}
	}
	return nil, ErrNotFound
}

type integrationStore struct {
	mu      sync.Mutex
	current *LMSIntegration
}

func NewIntegrationStore() IntegrationStore {
	return &integrationStore{}
}

func (s *integrationStore) Save(integration *LMSIntegration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = integration
	return nil
}

func (s *integrationStore) Current() (*LMSIntegration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoIntegration
	}
	return s.current, nil
}
