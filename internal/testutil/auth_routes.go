package testutil

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
)

func (b *Backend) issueLocked(c *gin.Context, user models.User, status int) {
	token := b.signLocked(user.ID, user.Role, b.tokenTTL)
	c.SetCookie("token", token, int(b.tokenTTL.Seconds()), "/", "", false, true)
	c.JSON(status, gin.H{"user": user, "token": token})
}

func (b *Backend) register(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body models.Registration
		if err := c.ShouldBindJSON(&body); err != nil || body.Email == "" || body.Password == "" {
			respond(c, http.StatusBadRequest, "Email and password are required")
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		if b.accountByLoginLocked(body.Email) != nil {
			respond(c, http.StatusConflict, "User already exists")
			return
		}
		user := models.User{
			ID:        b.nextID("u"),
			Name:      body.Name,
			Username:  body.Username,
			Email:     body.Email,
			Phone:     body.Phone,
			Role:      role,
			IsActive:  true,
			CreatedAt: time.Now().UTC().Truncate(time.Second),
		}
		b.accounts[user.ID] = &account{user: user, password: body.Password}
		b.issueLocked(c, user, http.StatusCreated)
	}
}

// login reads the identifier from the email field only.
func (b *Backend) login(adminOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			respond(c, http.StatusBadRequest, "Invalid request body")
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		acct := b.accountByLoginLocked(body.Email)
		if acct == nil || acct.password != body.Password {
			respond(c, http.StatusBadRequest, "Invalid credentials")
			return
		}
		if adminOnly && !acct.user.IsAdmin() {
			respond(c, http.StatusForbidden, "Not an admin account")
			return
		}
		b.issueLocked(c, acct.user, http.StatusOK)
	}
}

func (b *Backend) logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (b *Backend) currentUser(c *gin.Context) models.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.accounts[currentUserID(c)].user
}

func (b *Backend) verify(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"valid": true, "user": b.currentUser(c)})
}

func (b *Backend) profile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": b.currentUser(c)})
}

func (b *Backend) updateProfile(c *gin.Context) {
	var body models.ProfileUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		respond(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	acct := b.accounts[currentUserID(c)]
	if body.Name != "" {
		acct.user.Name = body.Name
	}
	if body.Username != "" {
		acct.user.Username = body.Username
	}
	if body.Email != "" {
		acct.user.Email = body.Email
	}
	if body.Phone != "" {
		acct.user.Phone = body.Phone
	}
	c.JSON(http.StatusOK, gin.H{"user": acct.user})
}

func (b *Backend) changePassword(c *gin.Context) {
	var body models.PasswordChange
	if err := c.ShouldBindJSON(&body); err != nil {
		respond(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	acct := b.accounts[currentUserID(c)]
	if acct.password != body.CurrentPassword {
		respond(c, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	acct.password = body.NewPassword
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

func (b *Backend) refresh(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.issueLocked(c, b.accounts[currentUserID(c)].user, http.StatusOK)
}

func (b *Backend) listUsers(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	users := make([]models.User, 0, len(b.accounts))
	for _, acct := range b.accounts {
		users = append(users, acct.user)
	}
	sortByID(users, func(u models.User) string { return u.ID })
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (b *Backend) withAccount(c *gin.Context, fn func(acct *account)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acct, ok := b.accounts[c.Param("id")]
	if !ok {
		respond(c, http.StatusNotFound, "User not found")
		return
	}
	fn(acct)
}

func (b *Backend) getUser(c *gin.Context) {
	b.withAccount(c, func(acct *account) {
		c.JSON(http.StatusOK, gin.H{"user": acct.user})
	})
}

func (b *Backend) updateUser(c *gin.Context) {
	var body models.UserUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		respond(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	b.withAccount(c, func(acct *account) {
		if body.Name != "" {
			acct.user.Name = body.Name
		}
		if body.Email != "" {
			acct.user.Email = body.Email
		}
		if body.Phone != "" {
			acct.user.Phone = body.Phone
		}
		c.JSON(http.StatusOK, gin.H{"user": acct.user})
	})
}

func (b *Backend) setUserStatus(c *gin.Context) {
	var body struct {
		IsActive *bool `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.IsActive == nil {
		respond(c, http.StatusBadRequest, "isActive is required")
		return
	}
	b.withAccount(c, func(acct *account) {
		acct.user.IsActive = *body.IsActive
		c.JSON(http.StatusOK, gin.H{"user": acct.user})
	})
}

func (b *Backend) setUserRole(c *gin.Context) {
	var body struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Role) == "" {
		respond(c, http.StatusBadRequest, "role is required")
		return
	}
	b.withAccount(c, func(acct *account) {
		acct.user.Role = body.Role
		c.JSON(http.StatusOK, gin.H{"user": acct.user})
	})
}

func (b *Backend) deleteUser(c *gin.Context) {
	b.withAccount(c, func(acct *account) {
		delete(b.accounts, acct.user.ID)
		c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
	})
}
