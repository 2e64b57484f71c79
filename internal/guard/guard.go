// Package guard decides whether the current session may enter a view area.
package guard

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/state"
)

type Status int

const (
	// Checking means the first session probe has not finished yet.
	Checking Status = iota
	Authorized
	Unauthorized
	Forbidden
)

func (s Status) String() string {
	switch s {
	case Checking:
		return "checking"
	case Authorized:
		return "authorized"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

const (
	LoginPath = "/login"
	HomePath  = "/"
)

type Decision struct {
	Status   Status
	Redirect string
}

// Evaluate is the route guard state machine. Role mismatches redirect home; missing
// sessions redirect to the login screen once the initial check has completed.
func Evaluate(auth state.AuthState, area Area, policy Authorizer) Decision {
	if !auth.InitialCheckComplete {
		return Decision{Status: Checking}
	}
	if !auth.IsAuthenticated || auth.User == nil {
		return Decision{Status: Unauthorized, Redirect: LoginPath}
	}

	ok, err := policy.Allowed(auth.User.Kind(), area)
	if err != nil {
		slog.Error("guard policy check failed", "area", area, "err", err)
	}
	if err != nil || !ok {
		return Decision{Status: Forbidden, Redirect: HomePath}
	}
	return Decision{Status: Authorized}
}

// AuthSource yields the current auth state; *state.AuthSlice satisfies it.
type AuthSource interface {
	Snapshot() state.Snapshot[state.AuthState]
}

const UserKey = "user"

// Middleware guards a route group. While the session probe is running it answers
// 202 so the caller can show a loading state and retry.
func Middleware(auth AuthSource, area Area, policy Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := auth.Snapshot()
		decision := Evaluate(snap.Data, area, policy)

		switch decision.Status {
		case Checking:
			c.AbortWithStatusJSON(http.StatusAccepted, gin.H{"status": decision.Status.String()})
		case Unauthorized, Forbidden:
			slog.Info("guard redirect", "area", area, "path", c.Request.URL.Path, "status", decision.Status.String())
			c.Redirect(http.StatusFound, decision.Redirect)
			c.Abort()
		default:
			c.Set(UserKey, snap.Data.User)
			c.Next()
		}
	}
}
