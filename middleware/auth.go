package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"newsdesk/auth"
	"newsdesk/logger"
	"newsdesk/models"
	"newsdesk/repository"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const identityKey = "identity"

type AdminFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Authenticator resolves bearer tokens into identities and guards routes by role.
type Authenticator struct {
	tokens *auth.Tokens
	admins AdminFinder
	users  UserFinder
}

func NewAuthenticator(tokens *auth.Tokens, admins AdminFinder, users UserFinder) *Authenticator {
	return &Authenticator{tokens: tokens, admins: admins, users: users}
}

// bearerToken reads the Authorization header, falling back to the token query parameter.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return c.Query("token")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
}

// AdminAuth admits requests carrying a valid admin token whose account still exists.
func (a *Authenticator) AdminAuth() gin.HandlerFunc {
	return a.require(auth.RoleAdmin)
}

// UserAuth admits requests carrying a valid user token whose account still exists.
func (a *Authenticator) UserAuth() gin.HandlerFunc {
	return a.require(auth.RoleUser)
}

func (a *Authenticator) require(role auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		// CORS preflight
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		token := bearerToken(c)
		if token == "" {
			unauthorized(c)
			return
		}
		identity, err := a.tokens.Parse(token)
		if err != nil || identity.Role != role {
			unauthorized(c)
			return
		}

		exists, err := a.exists(c.Request.Context(), identity)
		if err != nil {
			logger.Log.Error("Failed to resolve token subject",
				zap.String("id", identity.ID.Hex()),
				zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
		if !exists {
			unauthorized(c)
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

func (a *Authenticator) exists(ctx context.Context, identity auth.Identity) (bool, error) {
	var err error
	switch identity.Role {
	case auth.RoleAdmin:
		_, err = a.admins.FindByID(ctx, identity.ID)
	case auth.RoleUser:
		_, err = a.users.FindByID(ctx, identity.ID)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// OptionalAuth records the identity of a valid token and never rejects.
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if identity, err := a.tokens.Parse(token); err == nil {
				c.Set(identityKey, identity)
			}
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity set by one of the auth middlewares.
func CurrentIdentity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	identity, ok := v.(auth.Identity)
	return identity, ok
}

// CurrentID returns the authenticated subject. Only call it behind AdminAuth or UserAuth.
func CurrentID(c *gin.Context) primitive.ObjectID {
	identity, _ := CurrentIdentity(c)
	return identity.ID
}

// CurrentAdmin returns the caller's id when it holds a valid admin token.
func CurrentAdmin(c *gin.Context) *primitive.ObjectID {
	identity, ok := CurrentIdentity(c)
	if !ok || identity.Role != auth.RoleAdmin {
		return nil
	}
	return &identity.ID
}
