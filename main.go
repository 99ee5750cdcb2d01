package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
)

func getEnv(key string, defaultValue string) string {
	val := os.Getenv(key)
	if val != "" {
		return val
	}
	return defaultValue
}

func main() {
	// .env is optional; real deployments set the environment directly.
	godotenv.Load()

	e := echo.New()
	e.Logger.SetLevel(log.INFO)
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	db, err := connectDB()
	if err != nil {
		e.Logger.Fatalf("failed to connect db: %v", err)
		return
	}
	db.SetMaxOpenConns(10)
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: getEnv("MELODIA_REDIS_ADDR", "127.0.0.1:6379"),
	})
	defer redisClient.Close()
	cache := NewRedisCache(redisClient)

	tokens := NewTokenIssuer(
		[]byte(getEnv("MELODIA_ACCESS_TOKEN_KEY", "powawa")),
		time.Hour,
	)

	collaborations := NewCollaborationService(db)
	h := &handler{
		users:          NewUserService(db),
		albums:         NewAlbumService(db, cache),
		songs:          NewSongService(db),
		playlists:      NewPlaylistService(db, collaborations),
		collaborations: collaborations,
		tokens:         tokens,
	}

	e.POST("/users", h.postUserHandler)
	e.POST("/authentications", h.postAuthenticationHandler)

	e.POST("/albums", h.postAlbumHandler)
	e.GET("/albums", h.getAlbumsHandler)
	e.GET("/albums/:albumID", h.getAlbumHandler)
	e.PUT("/albums/:albumID", h.putAlbumHandler)
	e.DELETE("/albums/:albumID", h.deleteAlbumHandler)
	e.POST("/albums/:albumID/covers", h.postAlbumCoverHandler)
	e.POST("/albums/:albumID/likes", h.postAlbumLikeHandler, authRequired(tokens))
	e.GET("/albums/:albumID/likes", h.getAlbumLikesHandler)

	e.POST("/songs", h.postSongHandler)
	e.GET("/songs", h.getSongsHandler)
	e.GET("/songs/:songID", h.getSongHandler)
	e.PUT("/songs/:songID", h.putSongHandler)
	e.DELETE("/songs/:songID", h.deleteSongHandler)

	auth := authRequired(tokens)
	e.POST("/playlists", h.postPlaylistHandler, auth)
	e.GET("/playlists", h.getPlaylistsHandler, auth)
	e.DELETE("/playlists/:playlistID", h.deletePlaylistHandler, auth)
	e.POST("/playlists/:playlistID/songs", h.postPlaylistSongHandler, auth)
	e.GET("/playlists/:playlistID/songs", h.getPlaylistSongsHandler, auth)
	e.DELETE("/playlists/:playlistID/songs", h.deletePlaylistSongHandler, auth)
	e.GET("/playlists/:playlistID/activities", h.getPlaylistActivitiesHandler, auth)
	e.POST("/collaborations", h.postCollaborationHandler, auth)
	e.DELETE("/collaborations", h.deleteCollaborationHandler, auth)

	port := getEnv("MELODIA_PORT", "5000")
	e.Logger.Infof("starting melodia server on :%s ...", port)
	e.Logger.Fatal(e.Start(":" + port))
}
