package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/qamaits/identity-server/internal/domain"
	"github.com/qamaits/identity-server/internal/mailer"
)

// fakeUserRepo is an in-memory stand-in for the users collection. It
// returns copies so callers mutate the store only through Update, the
// same way the real driver behaves.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	if u.Verification != nil {
		v := *u.Verification
		c.Verification = &v
	}
	if u.AccessRecord != nil {
		r := *u.AccessRecord
		c.AccessRecord = &r
	}
	return &c
}

func (f *fakeUserRepo) FindUser(_ context.Context, username, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if u, ok := f.users[username]; ok {
		return cloneUser(u), nil
	}
	if email != "" {
		for _, u := range f.users {
			if u.Email == email {
				return cloneUser(u), nil
			}
		}
	}
	return nil, domain.ErrNotFound(fmt.Sprintf("%s was not found", username))
}

func (f *fakeUserRepo) Insert(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[user.Username]; ok {
		return domain.ErrAlreadyExists("there is already someone with that username")
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return domain.ErrAlreadyExists("there is already an account with that email address")
		}
	}
	f.users[user.Username] = cloneUser(user)
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, username string, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[username]; !ok {
		return domain.ErrNotFound(fmt.Sprintf("%s was not found", username))
	}
	f.users[username] = cloneUser(user)
	return nil
}

func (f *fakeUserRepo) Any(_ context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users) > 0, nil
}

// mutate applies fn to the stored document directly, bypassing the
// repository API. Tests use it to age records.
func (f *fakeUserRepo) mutate(username string, fn func(*domain.User)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[username]; ok {
		fn(u)
	}
}

type fakeObjectRepo struct {
	mu   sync.Mutex
	next int
}

func (f *fakeObjectRepo) Insert(_ context.Context, objType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	return fmt.Sprintf("%s-%d", objType, f.next), nil
}

type fakeOAuthRepo struct {
	mu    sync.Mutex
	next  int
	links map[string]*domain.ProviderLink
}

func newFakeOAuthRepo() *fakeOAuthRepo {
	return &fakeOAuthRepo{links: make(map[string]*domain.ProviderLink)}
}

func (f *fakeOAuthRepo) FindByName(_ context.Context, name string) (*domain.ProviderLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.links[name]; ok {
		c := *l
		return &c, nil
	}
	return nil, domain.ErrNotFound(fmt.Sprintf("oauth config for %s was not found", name))
}

func (f *fakeOAuthRepo) Insert(_ context.Context, link *domain.ProviderLink) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.links[link.Name]; ok {
		return "", domain.ErrAlreadyExists(fmt.Sprintf("oauth config for %s already exists", link.Name))
	}
	f.next++
	c := *link
	c.ID = fmt.Sprintf("oauth-%d", f.next)
	f.links[link.Name] = &c
	return c.ID, nil
}

// fakeDispatcher records sent messages and reports a configured outcome.
type fakeDispatcher struct {
	mu      sync.Mutex
	sent    []mailer.Message
	links   []domain.ProviderLink
	sendErr error
}

func (f *fakeDispatcher) Send(msg mailer.Message, link domain.ProviderLink) <-chan error {
	f.mu.Lock()
	f.sent = append(f.sent, msg)
	f.links = append(f.links, link)
	f.mu.Unlock()

	result := make(chan error, 1)
	result <- f.sendErr
	return result
}
