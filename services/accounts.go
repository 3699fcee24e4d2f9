package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"newsdesk/apperror"
	"newsdesk/logger"
	"newsdesk/mailer"
	"newsdesk/media"
	"newsdesk/otp"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput is a pending account submitted for email confirmation.
// Image is nil when no file was attached.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Image    io.Reader
}

func (in *RegisterInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
}

func (in *RegisterInput) validate() error {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return apperror.BadRequest("Username, email and password are required")
	}
	return nil
}

type emailTemplate func(code string) (subject, body string)

// otpFlow stores pending records in one namespace and mails their codes.
type otpFlow struct {
	store  otp.Store
	mailer mailer.Mailer
	ns     otp.Namespace
	ttl    time.Duration
	now    func() time.Time
}

func (f *otpFlow) issue(ctx context.Context, email string, rec otp.Record, tmpl emailTemplate) error {
	code, err := otp.Generate()
	if err != nil {
		return apperror.Internal("Failed to generate OTP", err)
	}
	rec.Code = code
	rec.ExpiresAt = f.now().Add(f.ttl)

	key := otp.Key(f.ns, email)
	if err := f.store.Put(ctx, key, rec); err != nil {
		return apperror.Internal("Failed to store OTP", err)
	}

	subject, body := tmpl(code)
	if err := f.mailer.Send(ctx, email, subject, body); err != nil {
		if delErr := f.store.Delete(ctx, key); delErr != nil {
			logger.Log.Warn("Failed to discard unsent OTP", zap.String("email", email), zap.Error(delErr))
		}
		return apperror.Internal("Failed to send OTP email", err)
	}

	logger.Log.Info("OTP issued",
		zap.String("namespace", string(f.ns)),
		zap.String("purpose", string(rec.Purpose)),
		zap.String("email", email))
	return nil
}

// verifyRegistration maps every failure to the client-facing message for
// account confirmation.
func (f *otpFlow) verifyRegistration(ctx context.Context, email, code string) (*otp.Record, error) {
	rec, err := otp.Check(ctx, f.store, otp.Key(f.ns, email), code, otp.PurposeRegister, f.now())
	switch {
	case err == nil:
		return rec, nil
	case errors.Is(err, otp.ErrNotRequested):
		return nil, apperror.BadRequest("OTP not requested")
	case errors.Is(err, otp.ErrExpired):
		return nil, apperror.BadRequest("OTP expired")
	case errors.Is(err, otp.ErrMismatch), errors.Is(err, otp.ErrWrongPurpose):
		return nil, apperror.BadRequest("Invalid OTP")
	}
	return nil, apperror.Internal("Failed to verify OTP", err)
}

func (f *otpFlow) verifyReset(ctx context.Context, email, code string) error {
	_, err := otp.Check(ctx, f.store, otp.Key(f.ns, email), code, otp.PurposeReset, f.now())
	switch {
	case err == nil:
		return nil
	case errors.Is(err, otp.ErrNotRequested), errors.Is(err, otp.ErrExpired),
		errors.Is(err, otp.ErrMismatch), errors.Is(err, otp.ErrWrongPurpose):
		return apperror.BadRequest("Invalid or expired OTP")
	}
	return apperror.Internal("Failed to verify OTP", err)
}

func (f *otpFlow) consume(ctx context.Context, email string) {
	if err := f.store.Delete(ctx, otp.Key(f.ns, email)); err != nil {
		logger.Log.Warn("Failed to delete used OTP", zap.String("email", email), zap.Error(err))
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperror.Internal("Failed to hash password", err)
	}
	return string(hash), nil
}

func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func uploadImage(ctx context.Context, uploader media.Uploader, image io.Reader, folder string) (string, error) {
	url, err := uploader.Upload(ctx, image, folder)
	if err != nil {
		return "", apperror.Internal("Failed to upload image", err)
	}
	return url, nil
}
