package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// POST /playlists

func (h *handler) postPlaylistHandler(c echo.Context) error {
	var req AddPlaylistRequest
	if err := c.Bind(&req); err != nil {
		return failResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return failResponse(c, http.StatusBadRequest, "name is required")
	}

	playlistULID, err := h.playlists.Add(c.Request().Context(), req.Name, currentUserULID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return successResponse(c, http.StatusCreated, "", map[string]string{"playlistId": playlistULID})
}

// GET /playlists

func (h *handler) getPlaylistsHandler(c echo.Context) error {
	playlists, err := h.playlists.GetForUser(c.Request().Context(), currentUserULID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return successResponse(c, http.StatusOK, "", map[string]interface{}{"playlists": playlists})
}

// DELETE /playlists/:playlistID
//
// Owner only; collaborators cannot delete the playlist they were invited to.

func (h *handler) deletePlaylistHandler(c echo.Context) error {
	ctx := c.Request().Context()
	playlistULID := c.Param("playlistID")

	if err := h.playlists.VerifyOwner(ctx, playlistULID, currentUserULID(c)); err != nil {
		return errorResponse(c, err)
	}
	if err := h.playlists.Delete(ctx, playlistULID); err != nil {
		return errorResponse(c, err)
	}
	return successResponse(c, http.StatusOK, "playlist deleted", nil)
}

// POST /playlists/:playlistID/songs

func (h *handler) postPlaylistSongHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userULID := currentUserULID(c)
	playlistULID := c.Param("playlistID")

	var req PlaylistSongRequest
	if err := c.Bind(&req); err != nil {
		return failResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.SongID == "" {
		return failResponse(c, http.StatusBadRequest, "songId is required")
	}

	if _, err := h.playlists.VerifyAccess(ctx, playlistULID, userULID); err != nil {
		return errorResponse(c, err)
	}
	if _, err := h.playlists.AddSong(ctx, playlistULID, req.SongID); err != nil {
		return errorResponse(c, err)
	}
	if err := h.playlists.AddActivity(ctx, playlistULID, req.SongID, userULID, ActionAdd); err != nil {
		return errorResponse(c, err)
	}
	return successResponse(c, http.StatusCreated, "song added to playlist", nil)
}

// GET /playlists/:playlistID/songs

func (h *handler) getPlaylistSongsHandler(c echo.Context) error {
	ctx := c.Request().Context()
	playlistULID := c.Param("playlistID")

	if _, err := h.playlists.VerifyAccess(ctx, playlistULID, currentUserULID(c)); err != nil {
		return errorResponse(c, err)
	}
	detail, err := h.playlists.GetSongs(ctx, playlistULID)
	if err != nil {
		return errorResponse(c, err)
	}
	return successResponse(c, http.StatusOK, "", map[string]interface{}{"playlist": detail})
}

// DELETE /playlists/:playlistID/songs

func (h *handler) deletePlaylistSongHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userULID := currentUserULID(c)
	playlistULID := c.Param("playlistID")

	var req PlaylistSongRequest
	if err := c.Bind(&req); err != nil {
		return failResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.SongID == "" {
		return failResponse(c, http.StatusBadRequest, "songId is required")
	}

	if _, err := h.playlists.VerifyAccess(ctx, playlistULID, userULID); err != nil {
		return errorResponse(c, err)
	}
	if err := h.playlists.DeleteSong(ctx, playlistULID, req.SongID); err != nil {
		return errorResponse(c, err)
	}
	if err := h.playlists.AddActivity(ctx, playlistULID, req.SongID, userULID, ActionDelete); err != nil {
		return errorResponse(c, err)
	}
	return successResponse(c, http.StatusOK, "song removed from playlist", nil)
}

// GET /playlists/:playlistID/activities

func (h *handler) getPlaylistActivitiesHandler(c echo.Context) error {
	ctx := c.Request().Context()
	playlistULID := c.Param("playlistID")

	if _, err := h.playlists.VerifyAccess(ctx, playlistULID, currentUserULID(c)); err != nil {
		return errorResponse(c, err)
	}
	activities, err := h.playlists.GetActivities(ctx, playlistULID)
	if err != nil {
		return errorResponse(c, err)
	}
	return successResponse(c, http.StatusOK, "", map[string]interface{}{
		"playlistId": playlistULID,
		"activities": activities,
	})
}

// POST /collaborations
//
// Only the playlist's owner may grant or revoke collaborator access.

func (h *handler) postCollaborationHandler(c echo.Context) error {
	ctx := c.Request().Context()

	var req CollaborationRequest
	if err := c.Bind(&req); err != nil {
		return failResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.PlaylistID == "" || req.UserID == "" {
		return failResponse(c, http.StatusBadRequest, "playlistId and userId are required")
	}

	if err := h.playlists.VerifyOwner(ctx, req.PlaylistID, currentUserULID(c)); err != nil {
		return errorResponse(c, err)
	}
	collabULID, err := h.collaborations.Add(ctx, req.PlaylistID, req.UserID)
	if err != nil {
		return errorResponse(c, err)
	}
	return successResponse(c, http.StatusCreated, "", map[string]string{"collaborationId": collabULID})
}

// DELETE /collaborations

func (h *handler) deleteCollaborationHandler(c echo.Context) error {
	ctx := c.Request().Context()

	var req CollaborationRequest
	if err := c.Bind(&req); err != nil {
		return failResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.PlaylistID == "" || req.UserID == "" {
		return failResponse(c, http.StatusBadRequest, "playlistId and userId are required")
	}

	if err := h.playlists.VerifyOwner(ctx, req.PlaylistID, currentUserULID(c)); err != nil {
		return errorResponse(c, err)
	}
	if err := h.collaborations.Delete(ctx, req.PlaylistID, req.UserID); err != nil {
		return errorResponse(c, err)
	}
	return successResponse(c, http.StatusOK, "collaboration removed", nil)
}
