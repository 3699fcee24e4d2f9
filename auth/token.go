package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the verified subject of a token.
type Identity struct {
	ID   primitive.ObjectID
	Role Role
}

// Tokens signs and verifies HS256 bearer tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

func (t *Tokens) Issue(id primitive.ObjectID, role Role) (string, error) {
	now := time.Now()
	claims := Claims{
		ID:   id.Hex(),
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

func (t *Tokens) Parse(tokenString string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	id, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	if claims.Role != RoleAdmin && claims.Role != RoleUser {
		return Identity{}, ErrInvalidToken
	}
	return Identity{ID: id, Role: claims.Role}, nil
}
