package main

import "time"

// API essential types

type Album struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Year int    `json:"year"`
}

type AlbumDetail struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Year     int           `json:"year"`
	CoverURL *string       `json:"coverUrl"`
	Songs    []SongSummary `json:"songs"`
}

type Song struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Year      int     `json:"year"`
	Genre     string  `json:"genre"`
	Performer string  `json:"performer"`
	Duration  *int    `json:"duration,omitempty"`
	AlbumID   *string `json:"albumId,omitempty"`
}

type SongSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Performer string `json:"performer"`
}

type Playlist struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type PlaylistDetail struct {
	Playlist
	Songs []SongSummary `json:"songs"`
}

type Activity struct {
	Username string    `json:"username"`
	Title    string    `json:"title"`
	Action   string    `json:"action"`
	Time     time.Time `json:"time"`
}

// API request types

type RegisterUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Fullname string `json:"fullname"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AlbumRequest struct {
	Name string `json:"name"`
	Year int    `json:"year"`
}

type AlbumCoverRequest struct {
	CoverURL string `json:"coverUrl"`
}

type SongRequest struct {
	Title     string  `json:"title"`
	Year      int     `json:"year"`
	Genre     string  `json:"genre"`
	Performer string  `json:"performer"`
	Duration  *int    `json:"duration"`
	AlbumID   *string `json:"albumId"`
}

type AddPlaylistRequest struct {
	Name string `json:"name"`
}

type PlaylistSongRequest struct {
	SongID string `json:"songId"`
}

type CollaborationRequest struct {
	PlaylistID string `json:"playlistId"`
	UserID     string `json:"userId"`
}

// API response envelope

type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type FailResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
