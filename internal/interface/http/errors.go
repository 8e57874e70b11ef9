package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linkfolio/linkfolio/internal/application"
	"github.com/linkfolio/linkfolio/internal/domain/domainerr"
	"github.com/linkfolio/linkfolio/pkg/response"
)

// writeDomainError maps service errors onto the API envelope. Anything
// unrecognized becomes a 500 with a generic message.
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainerr.ErrNotFound),
		errors.Is(err, domainerr.ErrRelationshipNotFound):
		response.Error[any](c, http.StatusNotFound, "not found", nil)
	case errors.Is(err, domainerr.ErrEmailInUse):
		response.Error[any](c, http.StatusConflict, "email already in use", response.ErrorBody{Code: "email_in_use", Message: err.Error()})
	case errors.Is(err, domainerr.ErrDuplicateIdentifier):
		response.Error[any](c, http.StatusConflict, "identifier already taken", response.ErrorBody{Code: "identifier_taken", Message: err.Error()})
	case errors.Is(err, domainerr.ErrAllocationExhausted):
		response.Error[any](c, http.StatusConflict, "could not allocate a unique identifier", response.ErrorBody{Code: "allocation_exhausted", Message: err.Error()})
	case errors.Is(err, domainerr.ErrDuplicateFriendRequest):
		response.Error[any](c, http.StatusConflict, "relationship already exists", response.ErrorBody{Code: "duplicate_request", Message: err.Error()})
	case errors.Is(err, domainerr.ErrLastProfile):
		response.Error[any](c, http.StatusConflict, "cannot delete the last profile", response.ErrorBody{Code: "last_profile", Message: err.Error()})
	case errors.Is(err, domainerr.ErrAdminPrivilegeRequired):
		response.Error[any](c, http.StatusForbidden, "admin privilege required", nil)
	case errors.Is(err, application.ErrNotProfileOwner),
		errors.Is(err, application.ErrNotRequestAddressee):
		response.Error[any](c, http.StatusForbidden, "forbidden", nil)
	case errors.Is(err, application.ErrSelfFriendship),
		errors.Is(err, application.ErrInvalidTransition):
		response.Error[any](c, http.StatusUnprocessableEntity, err.Error(), nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
	case errors.Is(err, application.ErrAccountBanned):
		response.Error[any](c, http.StatusForbidden, "account is banned", nil)
	case errors.Is(err, application.ErrSessionExpired):
		response.Error[any](c, http.StatusUnauthorized, "session expired", nil)
	case errors.Is(err, application.ErrResetTokenInvalid):
		response.Error[any](c, http.StatusBadRequest, "reset token is invalid or expired", nil)
	default:
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}
