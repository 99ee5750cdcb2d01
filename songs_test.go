package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSongCRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	albumULID := env.mustAlbum(t, "Viva la Vida")
	duration := 242
	songULID, err := env.songs.Add(ctx, SongRequest{
		Title:     "Life in Technicolor",
		Year:      2008,
		Genre:     "alternative",
		Performer: "Coldplay",
		Duration:  &duration,
		AlbumID:   &albumULID,
	})
	require.NoError(t, err)

	song, err := env.songs.GetByID(ctx, songULID)
	require.NoError(t, err)
	assert.Equal(t, "Life in Technicolor", song.Title)
	assert.Equal(t, 2008, song.Year)
	require.NotNil(t, song.Duration)
	assert.Equal(t, 242, *song.Duration)
	require.NotNil(t, song.AlbumID)
	assert.Equal(t, albumULID, *song.AlbumID)

	err = env.songs.Update(ctx, songULID, SongRequest{
		Title:     "Lost!",
		Year:      2008,
		Genre:     "alternative",
		Performer: "Coldplay",
	})
	require.NoError(t, err)

	song, err = env.songs.GetByID(ctx, songULID)
	require.NoError(t, err)
	assert.Equal(t, "Lost!", song.Title)
	assert.Nil(t, song.Duration)
	assert.Nil(t, song.AlbumID)

	require.NoError(t, env.songs.Delete(ctx, songULID))

	var notFoundErr *NotFoundError
	_, err = env.songs.GetByID(ctx, songULID)
	assert.ErrorAs(t, err, &notFoundErr)
	assert.ErrorAs(t, env.songs.Delete(ctx, songULID), &notFoundErr)
	assert.ErrorAs(t, env.songs.Update(ctx, songULID, SongRequest{Title: "x", Year: 1, Genre: "g", Performer: "p"}), &notFoundErr)
}

func TestSongListFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.songs.Add(ctx, SongRequest{Title: "Clocks", Year: 2002, Genre: "alternative", Performer: "Coldplay"})
	require.NoError(t, err)
	_, err = env.songs.Add(ctx, SongRequest{Title: "Yellow", Year: 2000, Genre: "alternative", Performer: "Coldplay"})
	require.NoError(t, err)
	_, err = env.songs.Add(ctx, SongRequest{Title: "Yellow Submarine", Year: 1966, Genre: "rock", Performer: "The Beatles"})
	require.NoError(t, err)

	all, err := env.songs.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byTitle, err := env.songs.List(ctx, "yellow", "")
	require.NoError(t, err)
	assert.Len(t, byTitle, 2)

	byPerformer, err := env.songs.List(ctx, "", "beatles")
	require.NoError(t, err)
	require.Len(t, byPerformer, 1)
	assert.Equal(t, "Yellow Submarine", byPerformer[0].Title)

	both, err := env.songs.List(ctx, "yellow", "coldplay")
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "Yellow", both[0].Title)
}

func TestSongMissingAlbum(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	missing := "no-such-album"
	var notFoundErr *NotFoundError
	_, err := env.songs.Add(ctx, SongRequest{
		Title:     "Orphan",
		Year:      2020,
		Genre:     "pop",
		Performer: "Nobody",
		AlbumID:   &missing,
	})
	assert.ErrorAs(t, err, &notFoundErr)

	songULID := env.mustSong(t, "Attached")
	err = env.songs.Update(ctx, songULID, SongRequest{
		Title:     "Attached",
		Year:      2020,
		Genre:     "pop",
		Performer: "Nobody",
		AlbumID:   &missing,
	})
	assert.ErrorAs(t, err, &notFoundErr)
}
