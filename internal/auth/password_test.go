package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/jsandh/splitbook/internal/models"
	"github.com/jsandh/splitbook/internal/storage"
)

// fakeUserStorage is an in-memory UserStorage for authenticator tests.
type fakeUserStorage struct {
	byEmail map[string]*models.User
}

func newFakeUserStorage() *fakeUserStorage {
	return &fakeUserStorage{byEmail: make(map[string]*models.User)}
}

func (f *fakeUserStorage) CreateUser(_ context.Context, user *models.User) error {
	if _, exists := f.byEmail[user.Email]; exists {
		return storage.ErrDuplicateUser
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserStorage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserStorage) GetUserByID(_ context.Context, id string) (*models.User, error) {
	for _, user := range f.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, storage.ErrNotFound
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	authn := NewPasswordAuthenticator(newFakeUserStorage())

	user, err := authn.Register(ctx, "alice", "alice@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.ID == "" {
		t.Error("Expected user ID to be set")
	}
	if user.PasswordHash == "correct horse battery" {
		t.Error("Password stored in plaintext")
	}

	t.Run("authenticate with correct password", func(t *testing.T) {
		got, err := authn.Authenticate(ctx, "alice@example.com", "correct horse battery")
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if got.ID != user.ID {
			t.Errorf("ID = %s, want %s", got.ID, user.ID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := authn.Authenticate(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("err = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		if _, err := authn.Authenticate(ctx, "nobody@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("err = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("weak password rejected", func(t *testing.T) {
		if _, err := authn.Register(ctx, "bob", "bob@example.com", "short"); !errors.Is(err, ErrWeakPassword) {
			t.Errorf("err = %v, want ErrWeakPassword", err)
		}
	})

	t.Run("duplicate registration", func(t *testing.T) {
		if _, err := authn.Register(ctx, "alice", "alice@example.com", "another password"); !errors.Is(err, ErrUserExists) {
			t.Errorf("err = %v, want ErrUserExists", err)
		}
	})
}

func TestHashCredential(t *testing.T) {
	authn := NewPasswordAuthenticator(newFakeUserStorage())

	hash, err := authn.HashCredential("long enough password")
	if err != nil {
		t.Fatalf("HashCredential failed: %v", err)
	}
	if hash == "" || hash == "long enough password" {
		t.Errorf("unexpected hash %q", hash)
	}

	if _, err := authn.HashCredential("nope"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("err = %v, want ErrWeakPassword", err)
	}
}
