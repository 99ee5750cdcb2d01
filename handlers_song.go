package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// POST /songs

func (h *handler) postSongHandler(c echo.Context) error {
	var req SongRequest
	if err := c.Bind(&req); err != nil {
		return failResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" || req.Year == 0 || req.Genre == "" || req.Performer == "" {
		return failResponse(c, http.StatusBadRequest, "title, year, genre and performer are required")
	}

	songULID, err := h.songs.Add(c.Request().Context(), req)
	if err != nil {
		return errorResponse(c, err)
	}
	return successResponse(c, http.StatusCreated, "", map[string]string{"songId": songULID})
}

// GET /songs

func (h *handler) getSongsHandler(c echo.Context) error {
	songs, err := h.songs.List(c.Request().Context(), c.QueryParam("title"), c.QueryParam("performer"))
	if err != nil {
		return errorResponse(c, err)
	}
	return successResponse(c, http.StatusOK, "", map[string]interface{}{"songs": songs})
}

// GET /songs/:songID

func (h *handler) getSongHandler(c echo.Context) error {
	song, err := h.songs.GetByID(c.Request().Context(), c.Param("songID"))
	if err != nil {
		return errorResponse(c, err)
	}
	return successResponse(c, http.StatusOK, "", map[string]interface{}{"song": song})
}

// PUT /songs/:songID

func (h *handler) putSongHandler(c echo.Context) error {
	var req SongRequest
	if err := c.Bind(&req); err != nil {
		return failResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" || req.Year == 0 || req.Genre == "" || req.Performer == "" {
		return failResponse(c, http.StatusBadRequest, "title, year, genre and performer are required")
	}

	if err := h.songs.Update(c.Request().Context(), c.Param("songID"), req); err != nil {
		return errorResponse(c, err)
	}
	return successResponse(c, http.StatusOK, "song updated", nil)
}

// DELETE /songs/:songID

func (h *handler) deleteSongHandler(c echo.Context) error {
	if err := h.songs.Delete(c.Request().Context(), c.Param("songID")); err != nil {
		return errorResponse(c, err)
	}
	return successResponse(c, http.StatusOK, "song deleted", nil)
}
