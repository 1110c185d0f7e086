package models

type Genre string

const (
	GenreFiction        Genre = "Fiction"
	GenreNonFiction     Genre = "Non-Fiction"
	GenreScienceFiction Genre = "Science Fiction"
	GenreMystery        Genre = "Mystery"
	GenreRomance        Genre = "Romance"
	GenreBiography      Genre = "Biography"
	GenreHistory        Genre = "History"
	GenreSelfHelp       Genre = "Self-Help"
	GenreOther          Genre = "Other"
)

// Genres lists every accepted genre in display order.
var Genres = []Genre{
	GenreFiction,
	GenreNonFiction,
	GenreScienceFiction,
	GenreMystery,
	GenreRomance,
	GenreBiography,
	GenreHistory,
	GenreSelfHelp,
	GenreOther,
}

// IsValidGenre reports whether s exactly matches one of Genres.
func IsValidGenre(s string) bool {
	for _, g := range Genres {
		if string(g) == s {
			return true
		}
	}
	return false
}
