package repository

import (
	"errors"
	"strings"
	"sync"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/utils"
)

// ErrEmailExists is returned by Create for a duplicate email.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when no user matches a lookup.
var ErrUserNotFound = errors.New("user not found")

// UserRepo keeps demo accounts in memory.  Passwords are stored as
// bcrypt hashes only.
type UserRepo struct {
	mu      sync.RWMutex
	byEmail map[string]model.User
	cost    int
}

// NewUserRepo returns an empty user store hashing with the given bcrypt
// cost.
func NewUserRepo(cost int) *UserRepo {
	return &UserRepo{byEmail: make(map[string]model.User), cost: cost}
}

// Create hashes password and stores the user.
func (r *UserRepo) Create(id, email, name, password, role string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, r.cost)
	if err != nil {
		return model.User{}, err
	}
	u := model.User{ID: id, Email: email, Name: name, PasswordHash: hash, Role: role}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[email]; ok {
		return model.User{}, ErrEmailExists
	}
	r.byEmail[email] = u
	return u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byEmail[email]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return u, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(id string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, ErrUserNotFound
}

// SeedDemoUsers creates the accounts the demo front end advertises.
func (r *UserRepo) SeedDemoUsers() error {
	seeds := []struct{ id, email, name, pass, role string }{
		{"1", "demo@cinema.com", "Demo User", "123456", model.RoleCustomer},
		{"2", "sara@cinema.com", "Sara", "password", model.RoleCustomer},
		{"99", "admin@cinema.com", "Admin", "admin123", model.RoleAdmin},
	}
	for _, s := range seeds {
		if _, err := r.Create(s.id, s.email, s.name, s.pass, s.role); err != nil && !errors.Is(err, ErrEmailExists) {
			return err
		}
	}
	return nil
}
