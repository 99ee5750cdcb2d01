package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// POST /albums

func (h *handler) postAlbumHandler(c echo.Context) error {
	var req AlbumRequest
	if err := c.Bind(&req); err != nil {
		return failResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Year == 0 {
		return failResponse(c, http.StatusBadRequest, "name and year are required")
	}

	albumULID, err := h.albums.Add(c.Request().Context(), req.Name, req.Year)
	if err != nil {
		return errorResponse(c, err)
	}
	return successResponse(c, http.StatusCreated, "", map[string]string{"albumId": albumULID})
}

// GET /albums

func (h *handler) getAlbumsHandler(c echo.Context) error {
	albums, err := h.albums.List(c.Request().Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return successResponse(c, http.StatusOK, "", map[string]interface{}{"albums": albums})
}

// GET /albums/:albumID

func (h *handler) getAlbumHandler(c echo.Context) error {
	album, err := h.albums.GetByID(c.Request().Context(), c.Param("albumID"))
	if err != nil {
		return errorResponse(c, err)
	}
	return successResponse(c, http.StatusOK, "", map[string]interface{}{"album": album})
}

// PUT /albums/:albumID

func (h *handler) putAlbumHandler(c echo.Context) error {
	var req AlbumRequest
	if err := c.Bind(&req); err != nil {
		return failResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Year == 0 {
		return failResponse(c, http.StatusBadRequest, "name and year are required")
	}

	if err := h.albums.Update(c.Request().Context(), c.Param("albumID"), req.Name, req.Year); err != nil {
		return errorResponse(c, err)
	}
	return successResponse(c, http.StatusOK, "album updated", nil)
}

// DELETE /albums/:albumID

func (h *handler) deleteAlbumHandler(c echo.Context) error {
	if err := h.albums.Delete(c.Request().Context(), c.Param("albumID")); err != nil {
		return errorResponse(c, err)
	}
	return successResponse(c, http.StatusOK, "album deleted", nil)
}

// POST /albums/:albumID/covers
//
// Stores where the cover image lives. The upload pipeline serving that URL
// is outside this API.

func (h *handler) postAlbumCoverHandler(c echo.Context) error {
	var req AlbumCoverRequest
	if err := c.Bind(&req); err != nil {
		return failResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.CoverURL == "" {
		return failResponse(c, http.StatusBadRequest, "coverUrl is required")
	}

	if err := h.albums.UpdateCover(c.Request().Context(), c.Param("albumID"), req.CoverURL); err != nil {
		return errorResponse(c, err)
	}
	return successResponse(c, http.StatusCreated, "cover updated", nil)
}

// POST /albums/:albumID/likes
//
// Toggles the acting user's like. The check and the write are two steps; a
// racing duplicate insert is rejected by the unique key and surfaces as 409.

func (h *handler) postAlbumLikeHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userULID := currentUserULID(c)
	albumULID := c.Param("albumID")

	liked, err := h.albums.IsLiked(ctx, userULID, albumULID)
	if err != nil {
		return errorResponse(c, err)
	}

	if liked {
		if err := h.albums.DeleteLike(ctx, userULID, albumULID); err != nil {
			return errorResponse(c, err)
		}
		return successResponse(c, http.StatusOK, "album unliked", nil)
	}

	if _, err := h.albums.AddLike(ctx, userULID, albumULID); err != nil {
		return errorResponse(c, err)
	}
	return successResponse(c, http.StatusCreated, "album liked", nil)
}

// GET /albums/:albumID/likes
//
// The X-Data-Source header reports which layer answered.

func (h *handler) getAlbumLikesHandler(c echo.Context) error {
	count, source, err := h.albums.GetLikesCount(c.Request().Context(), c.Param("albumID"))
	if err != nil {
		return errorResponse(c, err)
	}
	c.Response().Header().Set("X-Data-Source", string(source))
	return successResponse(c, http.StatusOK, "", map[string]int{"likes": count})
}
