package model

import "time"

// ================== Catalog ==================

// CatalogItem is a movie or TV series row surfaced on list endpoints.
// Backdrop is resolved from the two artwork columns: the explicit CDN URL
// wins over the TMDB path. Title is resolved per requested locale.
type CatalogItem struct {
	ID          int64      `json:"id"`
	TitleGeo    string     `json:"title_geo"`
	TitleEng    string     `json:"title_eng"`
	Title       string     `json:"title"`
	IMDBVote    *float64   `json:"imdb_vote"`
	PosterURL   *string    `json:"backdrop_poster_url"`
	PosterTMDB  *string    `json:"backdrop_path_tmdb"`
	Backdrop    string     `json:"backdrop"`
	ReleaseDate *time.Time `json:"release_date"`
	HomepageURL *string    `json:"homepage_url,omitempty"`
}

// Genre is a catalog genre
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CastMember is an actor credit on a series. Order is the display order;
// members without one sort last.
type CastMember struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	ProfilePath   *string `json:"profile_path"`
	CharacterName *string `json:"character_name"`
	Order         *int    `json:"order"`
}

// ProductionCompany is a studio attached to catalog items
type ProductionCompany struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	LogoPath   *string `json:"logo_path"`
	MovieCount int64   `json:"movie_count,omitempty"`
}

// Platform is a streaming platform aggregated from catalog homepage URLs
type Platform struct {
	ID          string `json:"platform_id"`
	Name        string `json:"platform_name"`
	DisplayName string `json:"display_name"`
	ItemCount   int64  `json:"movie_count"`
}

// MovieDetail is the full movie payload for the detail endpoint
type MovieDetail struct {
	CatalogItem
	Overview            *string             `json:"overview"`
	ProductionCompanies []ProductionCompany `json:"production_companies"`
}

// TVSeriesDetail is the full series payload for the detail endpoint
type TVSeriesDetail struct {
	CatalogItem
	Overview            *string             `json:"overview"`
	EpisodesCount       *int                `json:"episodes_count"`
	SeasonsCount        *int                `json:"seasons_count"`
	Genres              []Genre             `json:"genres"`
	CastMembers         []CastMember        `json:"cast_members"`
	ProductionCompanies []ProductionCompany `json:"production_companies"`
}

// CatalogPage is the shared shape of the paginated list responses.
// HasMore is an approximation: true when the page came back full.
type CatalogPage struct {
	Items   []CatalogItem
	Page    int
	Limit   int
	HasMore bool
}

// ================== Portfolio projects ==================

// ProjectLocale holds the translatable fields of a project for one locale
type ProjectLocale struct {
	Title       string   `json:"title"`
	Description []string `json:"description"`
	FloorPlans  []string `json:"floorPlans,omitempty"`
}

// Project is a portfolio entity with caller-assigned id and per-locale
// sections. "ge" is the base locale; en/ru fall back to it field by field.
type Project struct {
	ID        string         `json:"id"`
	Ge        *ProjectLocale `json:"ge,omitempty"`
	En        *ProjectLocale `json:"en,omitempty"`
	Ru        *ProjectLocale `json:"ru,omitempty"`
	Images    []string       `json:"images"`
	Thumbnail string         `json:"thumbnail"`
	CreatedAt time.Time      `json:"created_at,omitempty"`
	UpdatedAt time.Time      `json:"updated_at,omitempty"`
}

// LocalizedProject is a project flattened to one locale for the public API
type LocalizedProject struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description []string `json:"description"`
	FloorPlans  []string `json:"floorPlans"`
	Images      []string `json:"images"`
	Thumbnail   string   `json:"thumbnail"`
}

// ================== Accounts ==================

// Admin is a dashboard administrator, keyed by numeric id
type Admin struct {
	AdminID  int64  `json:"admin_id"`
	Username string `json:"username"`
	Password string `json:"password"` // SHA-256 hex digest
}

// User is an end-user account backed by the relational store
type User struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	Name              *string    `json:"name"`
	PasswordHash      string     `json:"-"`
	EmailVerified     *time.Time `json:"email_verified"`
	VerificationToken *string    `json:"-"`
}
