package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"newsdesk/apperror"
	"newsdesk/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

// maxUploadSize caps multipart images.
const maxUploadSize = 10 << 20

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// respondError writes err as a JSON error body. AppErrors keep their status
// and message; anything else is a 500 that is also logged.
func respondError(c *gin.Context, err error) {
	if appErr, ok := apperror.As(err); ok {
		if appErr.Status >= http.StatusInternalServerError {
			logger.Log.Error(appErr.Message,
				zap.String("path", c.Request.URL.Path),
				zap.Error(appErr.Err))
		}
		c.JSON(appErr.Status, gin.H{"message": appErr.Message})
		return
	}

	logger.Log.Error("Unhandled error", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
}

// pathID parses the named path parameter as an ObjectID.
func pathID(c *gin.Context, name, message string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": message})
		return primitive.NilObjectID, false
	}
	return id, true
}

// queryID parses an optional ObjectID query parameter. An absent value is
// nil; a malformed one is a 400.
func queryID(c *gin.Context, name string) (*primitive.ObjectID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid " + name})
		return nil, false
	}
	return &id, true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return v
}

// bindJSON decodes and validates the body into dst. An empty body or a
// failed binding rule answers 400 with missing; undecodable JSON answers
// 400 "Invalid request body".
func bindJSON(c *gin.Context, dst any, missing string) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var invalid validator.ValidationErrors
	if errors.Is(err, io.EOF) || errors.As(err, &invalid) {
		c.JSON(http.StatusBadRequest, gin.H{"message": missing})
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
	return false
}

// formFile opens an optional multipart file. The returned reader is nil when
// no file was sent; close must always be called.
func formFile(c *gin.Context, field string) (io.Reader, func(), error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, apperror.BadRequest("Invalid file upload")
	}
	if header.Size > maxUploadSize {
		return nil, func() {}, apperror.BadRequest("File too large")
	}
	file, err := header.Open()
	if err != nil {
		return nil, func() {}, apperror.Internal("Failed to read upload", err)
	}
	return file, closer(file), nil
}

func closer(f multipart.File) func() {
	return func() { _ = f.Close() }
}

// formString returns a pointer to a multipart field, nil when the field is absent.
func formString(c *gin.Context, field string) *string {
	v, ok := c.GetPostForm(field)
	if !ok {
		return nil
	}
	return &v
}
