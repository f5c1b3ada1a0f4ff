package auth

import (
	"context"

	authdomain "github.com/mzotova/threadline/internal/auth/domain"
	authrepo "github.com/mzotova/threadline/internal/auth/repository"
	userdomain "github.com/mzotova/threadline/internal/user/domain"
	userrepo "github.com/mzotova/threadline/internal/user/repository"
)

type mockUserRepo struct {
	createFunc         func(ctx context.Context, user userdomain.User) error
	findByUsernameFunc func(ctx context.Context, username string) (userdomain.User, error)
	findByIDFunc       func(ctx context.Context, id userdomain.ID) (userdomain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user userdomain.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (userdomain.User, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *mockUserRepo) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

type mockSessionRepo struct {
	createFunc               func(ctx context.Context, session authdomain.Session) error
	findByTokenHashFunc      func(ctx context.Context, hash string) (authdomain.Session, error)
	deleteByTokenHashFunc    func(ctx context.Context, hash string) error
	countByUserIDFunc        func(ctx context.Context, userID string) (int, error)
	deleteOldestByUserIDFunc func(ctx context.Context, userID string) error
	deleteExpiredFunc        func(ctx context.Context) (int64, error)
}

func (m *mockSessionRepo) Create(ctx context.Context, session authdomain.Session) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, session)
	}
	return nil
}

func (m *mockSessionRepo) FindByTokenHash(ctx context.Context, hash string) (authdomain.Session, error) {
	if m.findByTokenHashFunc != nil {
		return m.findByTokenHashFunc(ctx, hash)
	}
	return authdomain.Session{}, authrepo.ErrSessionNotFound
}

func (m *mockSessionRepo) DeleteByTokenHash(ctx context.Context, hash string) error {
	if m.deleteByTokenHashFunc != nil {
		return m.deleteByTokenHashFunc(ctx, hash)
	}
	return nil
}

func (m *mockSessionRepo) CountByUserID(ctx context.Context, userID string) (int, error) {
	if m.countByUserIDFunc != nil {
		return m.countByUserIDFunc(ctx, userID)
	}
	return 0, nil
}

func (m *mockSessionRepo) DeleteOldestByUserID(ctx context.Context, userID string) error {
	if m.deleteOldestByUserIDFunc != nil {
		return m.deleteOldestByUserIDFunc(ctx, userID)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	if m.deleteExpiredFunc != nil {
		return m.deleteExpiredFunc(ctx)
	}
	return 0, nil
}

type mockHasher struct {
	hashFunc    func(password string) (string, error)
	compareFunc func(hash string, password string) error
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *mockHasher) Compare(hash string, password string) error {
	if m.compareFunc != nil {
		return m.compareFunc(hash, password)
	}
	return nil
}

type mockIDGenerator struct {
	newIDFunc func() (string, error)
}

func (m *mockIDGenerator) NewID() (string, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	return "id-1", nil
}
