package main

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type handler struct {
	users          *UserService
	albums         *AlbumService
	songs          *SongService
	playlists      *PlaylistService
	collaborations *CollaborationService
	tokens         *TokenIssuer
}

// errorResponse maps the domain error taxonomy onto HTTP statuses. Anything
// unclassified is a 500 and gets logged; classified errors speak for
// themselves.
func errorResponse(c echo.Context, err error) error {
	var (
		notFoundErr  *NotFoundError
		forbiddenErr *AuthorizationError
		unauthErr    *AuthenticationError
		invariantErr *InvariantError
		conflictErr  *ConflictError
	)
	switch {
	case errors.As(err, &notFoundErr):
		return failResponse(c, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &forbiddenErr):
		return failResponse(c, http.StatusForbidden, forbiddenErr.Error())
	case errors.As(err, &unauthErr):
		return failResponse(c, http.StatusUnauthorized, unauthErr.Error())
	case errors.As(err, &invariantErr):
		return failResponse(c, http.StatusBadRequest, invariantErr.Error())
	case errors.As(err, &conflictErr):
		return failResponse(c, http.StatusConflict, conflictErr.Error())
	}

	c.Logger().Errorf("error %s %s: %s", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, FailResponse{
		Status:  "error",
		Message: "internal server error",
	})
}

func failResponse(c echo.Context, code int, message string) error {
	return c.JSON(code, FailResponse{Status: "fail", Message: message})
}

func successResponse(c echo.Context, code int, message string, data interface{}) error {
	return c.JSON(code, SuccessResponse{Status: "success", Message: message, Data: data})
}

// POST /users

func (h *handler) postUserHandler(c echo.Context) error {
	var req RegisterUserRequest
	if err := c.Bind(&req); err != nil {
		return failResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Username == "" || req.Password == "" || req.Fullname == "" {
		return failResponse(c, http.StatusBadRequest, "username, password and fullname are required")
	}

	userULID, err := h.users.Register(c.Request().Context(), req.Username, req.Password, req.Fullname)
	if err != nil {
		return errorResponse(c, err)
	}
	return successResponse(c, http.StatusCreated, "", map[string]string{"userId": userULID})
}

// POST /authentications

func (h *handler) postAuthenticationHandler(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return failResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return failResponse(c, http.StatusBadRequest, "username and password are required")
	}

	userULID, err := h.users.VerifyCredential(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return errorResponse(c, err)
	}

	accessToken, err := h.tokens.Issue(userULID)
	if err != nil {
		return errorResponse(c, err)
	}
	return successResponse(c, http.StatusCreated, "", map[string]string{"accessToken": accessToken})
}
