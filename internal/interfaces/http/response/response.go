// Package response writes the JSON envelope shared by every endpoint:
// {"success": bool, "message": string, ...payload}.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/your-org/bookstore-backend/internal/pkg/apperror"
)

const internalMessage = "Internal server error"

// OK writes a 200 success envelope
func OK(c *gin.Context, message string, payload gin.H) {
	Success(c, http.StatusOK, message, payload)
}

// Created writes a 201 success envelope
func Created(c *gin.Context, message string, payload gin.H) {
	Success(c, http.StatusCreated, message, payload)
}

// Success writes a success envelope with the payload fields merged in
func Success(c *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// Fail writes a failure envelope and aborts the chain
func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// Error maps err onto a status code by its kind
func Error(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	status := StatusOf(kind)

	message := apperror.MessageOf(err, internalMessage)
	if kind == apperror.KindInternal {
		_ = c.Error(err)
		message = internalMessage
		if gin.IsDebugging() {
			message = err.Error()
		}
	}
	Fail(c, status, message)
}

// BindError reports a malformed or invalid request body
func BindError(c *gin.Context, err error) {
	body := gin.H{
		"success": false,
		"message": "Invalid request data",
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
		body["details"] = details
	} else {
		body["details"] = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, body)
}

// StatusOf returns the HTTP status for an error kind
func StatusOf(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindForbidden:
		return http.StatusForbidden
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
