package state

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"storefront/internal/api"
	"storefront/internal/httpclient"
	"storefront/internal/models"
	"storefront/internal/session"
)

// AuthState is the client session. IsAuthenticated holds only together with a User.
type AuthState struct {
	User                 *models.User `json:"user"`
	IsAuthenticated      bool         `json:"isAuthenticated"`
	InitialCheckComplete bool         `json:"initialCheckComplete"`
}

// Operations that replace the session share one key.
const (
	keySession  = "session"
	keyLoadUser = "loadUser"
	keyProfile  = "profile"
	keyPassword = "password"
	keyRefresh  = "refresh"
)

type AuthSlice struct {
	*slice[AuthState]
	api     *api.Auth
	session *session.Store

	// ends counts logouts and expiries; scheduled numbers durable writes. Both are
	// guarded by the slice lock.
	ends      uint64
	scheduled uint64

	writeMu   sync.Mutex
	recordSeq uint64
	tokenSeq  uint64
}

// durableWrite is a storage change decided inside a transition and flushed after
// it. A zero seq means nothing to write.
type durableWrite struct {
	seq   uint64
	clear bool
	user  *models.User
	token string
}

// NewAuthSlice hydrates {user, isAuthenticated} from the session store before any
// request is made.
func NewAuthSlice(ctx context.Context, auth *api.Auth, store *session.Store) *AuthSlice {
	initial := AuthState{}
	rec, ok, err := store.Load(ctx)
	if err != nil {
		slog.Warn("session hydrate failed", "err", err)
	}
	if ok && rec.User != nil && rec.IsAuthenticated {
		initial.User = rec.User
		initial.IsAuthenticated = true
	}
	return &AuthSlice{
		slice:   newSlice("auth", initial),
		api:     auth,
		session: store,
	}
}

func (a *AuthSlice) Login(ctx context.Context, creds models.Credentials) error {
	return a.authenticate(ctx, func(ctx context.Context) (api.AuthResult, error) {
		return a.api.Login(ctx, creds)
	})
}

func (a *AuthSlice) Register(ctx context.Context, reg models.Registration) error {
	return a.authenticate(ctx, func(ctx context.Context) (api.AuthResult, error) {
		return a.api.Register(ctx, reg)
	})
}

func (a *AuthSlice) AdminLogin(ctx context.Context, creds models.Credentials) error {
	return a.authenticate(ctx, func(ctx context.Context) (api.AuthResult, error) {
		return a.api.AdminLogin(ctx, creds)
	})
}

func (a *AuthSlice) AdminRegister(ctx context.Context, reg models.Registration) error {
	return a.authenticate(ctx, func(ctx context.Context) (api.AuthResult, error) {
		return a.api.AdminRegister(ctx, reg)
	})
}

// authenticate persists the session and token whenever the result is applied.
func (a *AuthSlice) authenticate(ctx context.Context, call func(context.Context) (api.AuthResult, error)) error {
	var w durableWrite
	_, err := run(ctx, a.slice, keySession, call, func(data *AuthState, result api.AuthResult) {
		data.User = result.User
		data.IsAuthenticated = true
		w = a.scheduleLocked(durableWrite{user: result.User, token: result.Token})
	})
	a.flush(ctx, w)
	return err
}

func (a *AuthSlice) scheduleLocked(w durableWrite) durableWrite {
	a.scheduled++
	w.seq = a.scheduled
	return w
}

// flush writes w unless a later write already reached the same key. It runs outside
// the slice lock and survives cancellation of ctx.
func (a *AuthSlice) flush(ctx context.Context, w durableWrite) {
	if w.seq == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)

	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	saveRecord := w.seq > a.recordSeq && (w.clear || w.user != nil)
	saveToken := w.seq > a.tokenSeq && (w.clear || w.token != "")
	if saveRecord {
		a.recordSeq = w.seq
	}
	if saveToken {
		a.tokenSeq = w.seq
	}

	var err error
	switch {
	case w.clear && saveRecord && saveToken:
		err = a.session.Clear(ctx)
	case w.clear && saveRecord:
		err = a.session.DeleteRecord(ctx)
	case saveRecord:
		err = a.session.Save(ctx, session.Record{User: w.user, IsAuthenticated: true})
	}
	if saveToken && !(w.clear && saveRecord) {
		err = errors.Join(err, a.session.SetToken(ctx, w.token))
	}
	if err != nil {
		slog.Warn("writing session failed", "clear", w.clear, "err", err)
	}
}

func (a *AuthSlice) sessionEnds() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ends
}

func (a *AuthSlice) Logout(ctx context.Context) error {
	return a.logout(ctx, a.api.Logout)
}

func (a *AuthSlice) AdminLogout(ctx context.Context) error {
	return a.logout(ctx, a.api.AdminLogout)
}

// logout ends the local session whatever the server answers. The server error is
// returned but not stored.
func (a *AuthSlice) logout(ctx context.Context, call func(context.Context) error) error {
	t := a.begin(keySession)
	err := call(ctx)
	if err != nil {
		slog.Info("server logout failed, clearing local session anyway", "err", err)
	}

	var w durableWrite
	a.transition(func(lc *Lifecycle, data *AuthState) {
		if a.currentLocked(t) {
			lc.IsLoading = false
			lc.Error = ""
		}
		w = a.endLocked(data)
	})
	a.flush(ctx, w)
	return err
}

// Expire drops the local session after the backend rejected it. No request is made.
func (a *AuthSlice) Expire(ctx context.Context) {
	var w durableWrite
	a.transition(func(_ *Lifecycle, data *AuthState) {
		w = a.endLocked(data)
	})
	a.flush(ctx, w)
}

// endLocked signs the user out. Probes, refreshes and profile updates still in
// flight are ignored when they settle.
func (a *AuthSlice) endLocked(data *AuthState) durableWrite {
	data.User = nil
	data.IsAuthenticated = false
	a.ends++
	return a.scheduleLocked(durableWrite{clear: true})
}

// settleBound is settle for operations that belong to the current session: a result
// that arrives after a logout or expiry only finishes the pending phase.
func (a *AuthSlice) settleBound(t token, ends uint64, err error, reduce func(data *AuthState)) {
	a.transition(func(lc *Lifecycle, data *AuthState) {
		if !a.currentLocked(t) {
			return
		}
		lc.IsLoading = false
		if a.ends != ends {
			return
		}
		if err != nil {
			lc.Error = httpclient.Message(err)
			return
		}
		lc.Error = ""
		if reduce != nil {
			reduce(data)
		}
	})
}

// LoadUser probes the session. Success refreshes the stored user. Failure clears the
// session only when no user is present locally. Either way the initial check is
// complete afterwards.
func (a *AuthSlice) LoadUser(ctx context.Context) error {
	ends := a.sessionEnds()
	t := a.begin(keyLoadUser)
	user, err := a.api.Profile(ctx)

	var w durableWrite
	a.transition(func(lc *Lifecycle, data *AuthState) {
		data.InitialCheckComplete = true
		if !a.currentLocked(t) {
			return
		}
		lc.IsLoading = false
		if a.ends != ends {
			return
		}
		if err == nil {
			lc.Error = ""
			data.User = user
			data.IsAuthenticated = true
			w = a.scheduleLocked(durableWrite{user: user})
			return
		}
		lc.Error = httpclient.Message(err)
		if data.User == nil {
			data.IsAuthenticated = false
			w = a.scheduleLocked(durableWrite{clear: true})
		}
	})
	a.flush(ctx, w)
	return err
}

func (a *AuthSlice) UpdateProfile(ctx context.Context, update models.ProfileUpdate) error {
	ends := a.sessionEnds()
	t := a.begin(keyProfile)
	user, err := a.api.UpdateProfile(ctx, update)

	var w durableWrite
	a.settleBound(t, ends, err, func(data *AuthState) {
		if !data.IsAuthenticated {
			return
		}
		data.User = user
		w = a.scheduleLocked(durableWrite{user: user})
	})
	a.flush(ctx, w)
	return err
}

func (a *AuthSlice) ChangePassword(ctx context.Context, change models.PasswordChange) error {
	_, err := run(ctx, a.slice, keyPassword, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.api.ChangePassword(ctx, change)
	}, nil)
	return err
}

// RefreshIfExpiring exchanges the stored token when it expires within window. It
// reports whether a refresh happened.
func (a *AuthSlice) RefreshIfExpiring(ctx context.Context, window time.Duration, now time.Time) (bool, error) {
	raw, err := a.session.Token(ctx)
	if err != nil || raw == "" {
		return false, err
	}
	info, err := session.InspectToken(raw)
	if err != nil {
		return false, err
	}
	if !info.ExpiresWithin(window, now) {
		return false, nil
	}

	ends := a.sessionEnds()
	t := a.begin(keyRefresh)
	result, err := a.api.Refresh(ctx)

	var w durableWrite
	a.settleBound(t, ends, err, func(data *AuthState) {
		next := durableWrite{token: result.Token}
		if data.IsAuthenticated && result.User != nil {
			data.User = result.User
			next.user = result.User
		}
		w = a.scheduleLocked(next)
	})
	a.flush(ctx, w)
	if err != nil {
		return false, err
	}
	return true, nil
}
