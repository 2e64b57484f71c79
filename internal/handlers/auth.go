package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/guard"
	"storefront/internal/models"
	"storefront/internal/state"
)

func sessionView(snap state.Snapshot[state.AuthState]) gin.H {
	return gin.H{
		"user":                 snap.Data.User,
		"isAuthenticated":      snap.Data.IsAuthenticated,
		"initialCheckComplete": snap.Data.InitialCheckComplete,
		"isLoading":            snap.IsLoading,
		"error":                snap.Error,
	}
}

// GetSession reports the current session without contacting the backend.
func GetSession(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /session"
		defer handlePanic(c, route)

		c.JSON(http.StatusOK, sessionView(store.Auth.Snapshot()))
	}
}

// LoginPage is where guards send anonymous visitors.
func LoginPage(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /login"
		defer handlePanic(c, route)

		c.JSON(http.StatusOK, gin.H{"view": "login", "session": sessionView(store.Auth.Snapshot())})
	}
}

func Login(store *state.Store) gin.HandlerFunc {
	return credentialsHandler("POST /login", store.Auth.Login, store)
}

func AdminLogin(store *state.Store) gin.HandlerFunc {
	return credentialsHandler("POST /admin/login", store.Auth.AdminLogin, store)
}

func credentialsHandler(route string, login func(context.Context, models.Credentials) error, store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		var creds models.Credentials
		if !bindJSON(c, route, &creds) {
			return
		}
		if err := login(c.Request.Context(), creds); err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, sessionView(store.Auth.Snapshot()))
	}
}

func Register(store *state.Store) gin.HandlerFunc {
	return registrationHandler("POST /register", store.Auth.Register, store)
}

func AdminRegister(store *state.Store) gin.HandlerFunc {
	return registrationHandler("POST /admin/register", store.Auth.AdminRegister, store)
}

func registrationHandler(route string, register func(context.Context, models.Registration) error, store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		var reg models.Registration
		if !bindJSON(c, route, &reg) {
			return
		}
		if err := register(c.Request.Context(), reg); err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, sessionView(store.Auth.Snapshot()))
	}
}

func Logout(store *state.Store) gin.HandlerFunc {
	return logoutHandler("POST /logout", store.Auth.Logout, store)
}

func AdminLogout(store *state.Store) gin.HandlerFunc {
	return logoutHandler("POST /admin/logout", store.Auth.AdminLogout, store)
}

// logoutHandler always ends the local session. A failed server call is only
// reported as a warning next to the redirect target.
func logoutHandler(route string, logout func(context.Context) error, store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		err := logout(c.Request.Context())
		store.ResetUserData()

		body := gin.H{"message": "logged out", "redirect": guard.LoginPath}
		if err != nil {
			body["warning"] = "server logout failed"
		}
		c.JSON(http.StatusOK, body)
	}
}

// RefreshSession re-runs the session probe.
func RefreshSession(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /session/refresh"
		defer handlePanic(c, route)

		if err := store.Auth.LoadUser(c.Request.Context()); err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, sessionView(store.Auth.Snapshot()))
	}
}

func GetProfile(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /profile"
		defer handlePanic(c, route)

		c.JSON(http.StatusOK, gin.H{"user": store.Auth.Snapshot().Data.User})
	}
}

func UpdateProfile(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /profile"
		defer handlePanic(c, route)

		var update models.ProfileUpdate
		if !bindJSON(c, route, &update) {
			return
		}
		if err := store.Auth.UpdateProfile(c.Request.Context(), update); err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": store.Auth.Snapshot().Data.User})
	}
}

func ChangePassword(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /profile/password"
		defer handlePanic(c, route)

		var change models.PasswordChange
		if !bindJSON(c, route, &change) {
			return
		}
		if err := store.Auth.ChangePassword(c.Request.Context(), change); err != nil {
			respondAPIError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "password updated"})
	}
}
