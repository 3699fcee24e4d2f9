// Package otp issues one-time email codes and keeps the pending records
// that wait for them.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const codeDigits = 6

var (
	ErrNotRequested = errors.New("otp: not requested")
	ErrExpired      = errors.New("otp: expired")
	ErrMismatch     = errors.New("otp: invalid code")
	ErrWrongPurpose = errors.New("otp: wrong purpose")
)

type Purpose string

const (
	PurposeRegister Purpose = "register"
	PurposeReset    Purpose = "reset"
)

// Namespace separates admin and user records that share an email.
type Namespace string

const (
	Admins Namespace = "admin"
	Users  Namespace = "user"
)

// Key builds the store key for email within ns.
func Key(ns Namespace, email string) string {
	return string(ns) + ":" + strings.ToLower(strings.TrimSpace(email))
}

// Record is a pending code plus whatever the follow-up step needs to finish.
type Record struct {
	Code         string    `json:"code"`
	Purpose      Purpose   `json:"purpose"`
	ExpiresAt    time.Time `json:"expiresAt"`
	Username     string    `json:"username,omitempty"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	ProfileImage string    `json:"profileImage,omitempty"`
}

func (r *Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

func (r *Record) Matches(code string) bool {
	return subtle.ConstantTimeCompare([]byte(r.Code), []byte(strings.TrimSpace(code))) == 1
}

// Store persists records until they are consumed or expire.
type Store interface {
	Put(ctx context.Context, key string, rec Record) error
	// Get returns ErrNotRequested when no record exists for key.
	Get(ctx context.Context, key string) (*Record, error)
	Delete(ctx context.Context, key string) error
}

// Generate returns a uniformly random six-digit numeric code.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generating otp: %w", err)
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}

// Check looks up key and validates code against it at now. An expired record
// is removed; a mismatched one is kept so the caller can retry. The record
// is left in place on success and must be deleted once it has been used.
func Check(ctx context.Context, store Store, key, code string, purpose Purpose, now time.Time) (*Record, error) {
	rec, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec.Expired(now) {
		if err := store.Delete(ctx, key); err != nil {
			return nil, err
		}
		return nil, ErrExpired
	}
	if rec.Purpose != purpose {
		return nil, ErrWrongPurpose
	}
	if !rec.Matches(code) {
		return nil, ErrMismatch
	}
	return rec, nil
}
