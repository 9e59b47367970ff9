package console

import (
	"context"
	"log/slog"
	"sync"

	"github.com/user/clawconsole/internal/gateway"
)

const defaultUserName = "admin"

// UserInfo shows who is signed in. It is non-critical: every error is
// swallowed and the previous name kept.
type UserInfo struct {
	api    *gateway.API
	logger *slog.Logger

	mu          sync.RWMutex
	name        string
	authorities []string
}

func newUserInfo(api *gateway.API) *UserInfo {
	return &UserInfo{
		api:    api,
		logger: slog.Default().With("component", "userinfo"),
		name:   defaultUserName,
	}
}

func (u *UserInfo) Load(ctx context.Context) {
	info, err := u.api.UserInfo(ctx)
	if err != nil {
		u.logger.Debug("user info unavailable", "error", err)
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.name = info.Name
	if u.name == "" {
		u.name = defaultUserName
	}
	u.authorities = info.Authorities
}

func (u *UserInfo) Name() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.name
}

func (u *UserInfo) Authorities() []string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return append([]string(nil), u.authorities...)
}
