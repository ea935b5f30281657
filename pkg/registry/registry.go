// ABOUTME: Registry of users and repositories
// ABOUTME: Explicit store passed to callers instead of process-wide globals

package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/nainya/docvcs/internal/logger"
	"github.com/nainya/docvcs/internal/metrics"
	"github.com/nainya/docvcs/pkg/repo"
	"github.com/nainya/docvcs/pkg/result"
	"github.com/nainya/docvcs/pkg/user"
)

// ErrInvalidArgument is returned for absent or malformed inputs
var ErrInvalidArgument = errors.New("registry: invalid argument")

const nameRule = "required,max=128,entityname"

// Registry owns every user and repository of a run. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	users map[string]*user.User
	repos map[string]*repo.Repo

	validate *validator.Validate
	base     *logger.Logger
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// New creates an empty registry. log and m may be nil.
func New(log *logger.Logger, m *metrics.Metrics) *Registry {
	if log == nil {
		log = logger.NewNop()
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegisterNameRule(v, "entityname")

	return &Registry{
		users:    make(map[string]*user.User),
		repos:    make(map[string]*repo.Repo),
		validate: v,
		base:     log,
		log:      log.RegistryLogger(),
		metrics:  m,
	}
}

// ValidateName checks a user, repository or document name
func (r *Registry) ValidateName(name string) error {
	if err := r.validate.Var(name, nameRule); err != nil {
		return fmt.Errorf("%w: name %q: %v", ErrInvalidArgument, name, err)
	}
	return nil
}

// AddUser registers a new user
func (r *Registry) AddUser(name string) (*user.User, result.Code, error) {
	if err := r.ValidateName(name); err != nil {
		return nil, result.InternalError, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[name]; ok {
		return nil, result.UserNameAlreadyExists, nil
	}

	u, err := user.New(name, r)
	if err != nil {
		return nil, result.InternalError, err
	}
	r.users[name] = u
	r.statsLocked()

	r.log.Info("User registered").Str("user", name).Send()
	return u, result.Success, nil
}

// FindUser looks up a user by name
func (r *Registry) FindUser(name string) (*user.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[name]
	return u, ok
}

// DelUser removes a user together with every repository the user
// administers, so a later account with the same name inherits nothing.
func (r *Registry) DelUser(name string) result.Code {
	r.mu.Lock()
	if _, ok := r.users[name]; !ok {
		r.mu.Unlock()
		return result.UserNotFound
	}
	delete(r.users, name)

	var orphaned []string
	for repoName, rp := range r.repos {
		if rp.Admin() == name {
			orphaned = append(orphaned, repoName)
			delete(r.repos, repoName)
		}
	}
	r.statsLocked()
	users := r.usersLocked()
	r.mu.Unlock()

	sort.Strings(orphaned)
	r.forgetRepos(users, orphaned...)

	r.log.Info("User removed").Str("user", name).Strs("repos_removed", orphaned).Send()
	return result.Success
}

// Users lists user names in order
func (r *Registry) Users() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.users)
}

// AddRepo creates a repository administered by admin and subscribes admin to it
func (r *Registry) AddRepo(name string, admin *user.User) (*repo.Repo, result.Code, error) {
	if admin == nil {
		return nil, result.InternalError, fmt.Errorf("%w: admin is required", ErrInvalidArgument)
	}
	if err := r.ValidateName(name); err != nil {
		return nil, result.InternalError, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if registered, ok := r.users[admin.Name()]; !ok || registered != admin {
		return nil, result.UserNotFound, nil
	}
	if _, ok := r.repos[name]; ok {
		return nil, result.RepoNameAlreadyExists, nil
	}

	rp, err := repo.New(admin, name, repo.WithLogger(r.base), repo.WithMetrics(r.metrics))
	if err != nil {
		return nil, result.InternalError, err
	}
	if err := admin.SubscribeRepo(name); err != nil {
		return nil, result.InternalError, err
	}
	r.repos[name] = rp
	r.statsLocked()

	r.log.Info("Repository created").Str("repo", name).Str("admin", admin.Name()).Send()
	return rp, result.Success, nil
}

// FindRepo looks up a repository by name
func (r *Registry) FindRepo(name string) (*repo.Repo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rp, ok := r.repos[name]
	return rp, ok
}

// DelRepo deletes a repository; only its admin may do so
func (r *Registry) DelRepo(name string, requester *user.User) result.Code {
	if requester == nil {
		return result.AccessDenied
	}

	r.mu.Lock()
	rp, ok := r.repos[name]
	if !ok {
		r.mu.Unlock()
		return result.RepoNotFound
	}
	if !rp.IsAdmin(requester) {
		r.mu.Unlock()
		return result.AccessDenied
	}
	delete(r.repos, name)
	r.statsLocked()
	users := r.usersLocked()
	r.mu.Unlock()

	r.forgetRepos(users, name)

	r.log.Info("Repository deleted").Str("repo", name).Str("user", requester.Name()).Send()
	return result.Success
}

// Repos lists repository names in order
func (r *Registry) Repos() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.repos)
}

// Subscribe lets the admin of repoName grant userName access to it
func (r *Registry) Subscribe(repoName string, requester *user.User, userName string) result.Code {
	rp, ok := r.FindRepo(repoName)
	if !ok {
		return result.RepoNotFound
	}
	if requester == nil || !rp.IsAdmin(requester) {
		return result.AccessDenied
	}

	u, ok := r.FindUser(userName)
	if !ok {
		return result.UserNotFound
	}
	if err := u.SubscribeRepo(repoName); err != nil {
		return result.InternalError
	}

	r.log.Info("User subscribed").Str("repo", repoName).Str("user", userName).Send()
	return result.Success
}

// mustRegisterNameRule installs tag as the single-line identifier rule:
// no surrounding blanks and no control characters
func mustRegisterNameRule(v *validator.Validate, tag string) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if strings.TrimSpace(s) != s {
			return false
		}
		return strings.IndexFunc(s, unicode.IsControl) < 0
	})
	if err != nil {
		panic(fmt.Sprintf("registry: register %q validation: %v", tag, err))
	}
}

func (r *Registry) usersLocked() []*user.User {
	users := make([]*user.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	return users
}

// forgetRepos drops deleted repositories from users and metrics; called
// without r.mu held since users take their own locks
func (r *Registry) forgetRepos(users []*user.User, repoNames ...string) {
	for _, name := range repoNames {
		for _, u := range users {
			u.ForgetRepo(name)
		}
		r.metrics.ForgetRepo(name)
	}
}

func (r *Registry) statsLocked() {
	r.metrics.UpdateRegistryStats(len(r.users), len(r.repos))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
