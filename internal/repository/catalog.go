package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"miro-content-service/internal/model"
	"miro-content-service/internal/query"

	"github.com/jackc/pgx/v5"
)

// CatalogRepo reads the movie / TV-series catalog from Postgres. Catalog
// rows are read-only here; they are populated by a separate ingest.
type CatalogRepo struct {
	db *DB
}

// NewCatalogRepo creates a CatalogRepo
func NewCatalogRepo(db *DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

// listSQL builds the shared paginated list statement. Both catalog tables
// carry the same artwork and title columns, so movies and series share one
// shape; entity is the singular prefix of the join table ("movie",
// "tv_series"). Rows without any artwork are never surfaced.
func listSQL(table, entity string, p query.Params) (string, []interface{}) {
	sql := fmt.Sprintf(`
		SELECT DISTINCT ON (m.id)
			m.id,
			m.title_geo,
			m.title_eng,
			m.imdb_vote,
			m.backdrop_poster_url,
			m.backdrop_path_tmdb,
			m.release_date,
			m.homepage_url
		FROM %s m
		LEFT JOIN %s_production_companies mpc ON m.id = mpc.%s_id
		LEFT JOIN production_companies pc ON pc.id = mpc.company_id
		WHERE (m.backdrop_poster_url IS NOT NULL OR m.backdrop_path_tmdb IS NOT NULL)`,
		table, entity, entity)

	fragment, params, next := query.ComposeFilter(p, 1)
	sql += fragment

	sql += fmt.Sprintf(`
		ORDER BY m.id DESC
		LIMIT $%d OFFSET $%d`, next, next+1)
	params = append(params, p.Limit, p.Offset())

	return sql, params
}

// ListMovies returns one page of movies matching the filters
func (r *CatalogRepo) ListMovies(ctx context.Context, p query.Params) ([]model.CatalogItem, error) {
	return r.list(ctx, "movies", "movie", p)
}

// ListTVSeries returns one page of TV series matching the filters
func (r *CatalogRepo) ListTVSeries(ctx context.Context, p query.Params) ([]model.CatalogItem, error) {
	return r.list(ctx, "tv_series", "tv_series", p)
}

func (r *CatalogRepo) list(ctx context.Context, table, entity string, p query.Params) ([]model.CatalogItem, error) {
	sql, params := listSQL(table, entity, p)

	items := []model.CatalogItem{}
	err := r.db.Query(ctx, sql, params, func(rows pgx.Rows) error {
		for rows.Next() {
			var item model.CatalogItem
			if err := rows.Scan(
				&item.ID,
				&item.TitleGeo,
				&item.TitleEng,
				&item.IMDBVote,
				&item.PosterURL,
				&item.PosterTMDB,
				&item.ReleaseDate,
				&item.HomepageURL,
			); err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetMovie returns the full movie record with production companies
// aggregated, or nil when the id does not exist.
func (r *CatalogRepo) GetMovie(ctx context.Context, id int64) (*model.MovieDetail, error) {
	sql := `
		SELECT
			m.id,
			m.title_geo,
			m.title_eng,
			m.imdb_vote,
			m.backdrop_poster_url,
			m.backdrop_path_tmdb,
			m.release_date,
			m.homepage_url,
			m.overview,
			COALESCE(json_agg(DISTINCT jsonb_build_object(
				'id', pc.id,
				'name', pc.name,
				'logo_path', pc.logo_path
			)) FILTER (WHERE pc.id IS NOT NULL), '[]') AS production_companies
		FROM movies m
		LEFT JOIN movie_production_companies mpc ON m.id = mpc.movie_id
		LEFT JOIN production_companies pc ON pc.id = mpc.company_id
		WHERE m.id = $1
		GROUP BY m.id`

	var detail *model.MovieDetail
	err := r.db.Query(ctx, sql, []interface{}{id}, func(rows pgx.Rows) error {
		if !rows.Next() {
			return nil
		}

		var d model.MovieDetail
		var companiesJSON []byte
		if err := rows.Scan(
			&d.ID,
			&d.TitleGeo,
			&d.TitleEng,
			&d.IMDBVote,
			&d.PosterURL,
			&d.PosterTMDB,
			&d.ReleaseDate,
			&d.HomepageURL,
			&d.Overview,
			&companiesJSON,
		); err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		if err := json.Unmarshal(companiesJSON, &d.ProductionCompanies); err != nil {
			return fmt.Errorf("failed to decode production companies: %w", err)
		}

		detail = &d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// GetTVSeries returns the full series record with genres, cast and
// production companies aggregated, or nil when the id does not exist.
// Cast ordering and truncation happen in the service layer.
func (r *CatalogRepo) GetTVSeries(ctx context.Context, id int64) (*model.TVSeriesDetail, error) {
	sql := `
		SELECT
			ts.id,
			ts.title_geo,
			ts.title_eng,
			ts.imdb_vote,
			ts.backdrop_poster_url,
			ts.backdrop_path_tmdb,
			ts.release_date,
			ts.homepage_url,
			ts.overview,
			ts.episodes_count,
			ts.seasons_count,
			COALESCE(json_agg(DISTINCT jsonb_build_object(
				'id', g.id,
				'name', g.name
			)) FILTER (WHERE g.id IS NOT NULL), '[]') AS genres,
			COALESCE(json_agg(DISTINCT jsonb_build_object(
				'id', pc.id,
				'name', pc.name,
				'logo_path', pc.logo_path
			)) FILTER (WHERE pc.id IS NOT NULL), '[]') AS production_companies,
			COALESCE(json_agg(DISTINCT jsonb_build_object(
				'id', cm.id,
				'name', cm.name,
				'profile_path', cm.profile_path,
				'character_name', tsc.character_name,
				'order', tsc."order"
			)) FILTER (WHERE cm.id IS NOT NULL), '[]') AS cast_members
		FROM tv_series ts
		LEFT JOIN tv_series_genres tsg ON ts.id = tsg.tv_series_id
		LEFT JOIN genres g ON g.id = tsg.genre_id
		LEFT JOIN tv_series_production_companies tspc ON ts.id = tspc.tv_series_id
		LEFT JOIN production_companies pc ON pc.id = tspc.company_id
		LEFT JOIN tv_series_cast tsc ON ts.id = tsc.tv_series_id
		LEFT JOIN cast_members cm ON cm.id = tsc.cast_member_id
		WHERE ts.id = $1
		GROUP BY ts.id`

	var detail *model.TVSeriesDetail
	err := r.db.Query(ctx, sql, []interface{}{id}, func(rows pgx.Rows) error {
		if !rows.Next() {
			return nil
		}

		var d model.TVSeriesDetail
		var genresJSON, companiesJSON, castJSON []byte
		if err := rows.Scan(
			&d.ID,
			&d.TitleGeo,
			&d.TitleEng,
			&d.IMDBVote,
			&d.PosterURL,
			&d.PosterTMDB,
			&d.ReleaseDate,
			&d.HomepageURL,
			&d.Overview,
			&d.EpisodesCount,
			&d.SeasonsCount,
			&genresJSON,
			&companiesJSON,
			&castJSON,
		); err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		if err := json.Unmarshal(genresJSON, &d.Genres); err != nil {
			return fmt.Errorf("failed to decode genres: %w", err)
		}
		if err := json.Unmarshal(companiesJSON, &d.ProductionCompanies); err != nil {
			return fmt.Errorf("failed to decode production companies: %w", err)
		}
		if err := json.Unmarshal(castJSON, &d.CastMembers); err != nil {
			return fmt.Errorf("failed to decode cast members: %w", err)
		}

		detail = &d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// TopCompanies returns the most prolific production companies that have at
// least one catalog item with artwork in the given table, ordered by item
// count. table/entity pairs are ("movies","movie") and
// ("tv_series","tv_series").
func (r *CatalogRepo) TopCompanies(ctx context.Context, table, entity string, limit int) ([]model.ProductionCompany, error) {
	sql := fmt.Sprintf(`
		SELECT
			pc.id,
			pc.name,
			pc.logo_path,
			COUNT(DISTINCT mpc.%s_id) AS movie_count
		FROM production_companies pc
		JOIN %s_production_companies mpc ON pc.id = mpc.company_id
		JOIN %s m ON m.id = mpc.%s_id
		WHERE (m.backdrop_poster_url IS NOT NULL OR m.backdrop_path_tmdb IS NOT NULL)
		GROUP BY pc.id, pc.name, pc.logo_path
		HAVING COUNT(DISTINCT mpc.%s_id) > 0
		ORDER BY movie_count DESC
		LIMIT $1`, entity, entity, table, entity, entity)

	companies := []model.ProductionCompany{}
	err := r.db.Query(ctx, sql, []interface{}{limit}, func(rows pgx.Rows) error {
		for rows.Next() {
			var c model.ProductionCompany
			if err := rows.Scan(&c.ID, &c.Name, &c.LogoPath, &c.MovieCount); err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
			companies = append(companies, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return companies, nil
}

// ListPlatforms aggregates streaming platforms from the homepage URLs of
// one catalog table: the hostname is stripped of scheme, www and common
// TLDs, and hosts carrying a single item are dropped as noise.
func (r *CatalogRepo) ListPlatforms(ctx context.Context, table string, limit int) ([]model.Platform, error) {
	sql := fmt.Sprintf(`
		SELECT
			LOWER(REGEXP_REPLACE(
				REGEXP_REPLACE(m.homepage_url, '^https?://(www\.)?([^/]+).*$', '\2'),
				'\.com$|\.ge$|\.net$|\.org$|\.io$', '')) AS platform_id,
			REGEXP_REPLACE(
				REGEXP_REPLACE(m.homepage_url, '^https?://(www\.)?([^/]+).*$', '\2'),
				'\.com$|\.ge$|\.net$|\.org$|\.io$', '') AS platform_name,
			COUNT(*) AS movie_count
		FROM %s m
		WHERE m.homepage_url IS NOT NULL
			AND m.homepage_url <> ''
			AND m.homepage_url ~ '^https?://'
		GROUP BY platform_id, platform_name
		HAVING COUNT(*) > 1
		ORDER BY movie_count DESC
		LIMIT $1`, table)

	platforms := []model.Platform{}
	err := r.db.Query(ctx, sql, []interface{}{limit}, func(rows pgx.Rows) error {
		for rows.Next() {
			var p model.Platform
			if err := rows.Scan(&p.ID, &p.Name, &p.ItemCount); err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
			platforms = append(platforms, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return platforms, nil
}

// ================== End users ==================

// UserRepo manages end-user accounts in Postgres
type UserRepo struct {
	db *DB
}

// ErrUserNotFound is returned when no user row matches
var ErrUserNotFound = fmt.Errorf("user not found")

// NewUserRepo creates a UserRepo
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a new user with a pending verification token
func (r *UserRepo) Create(ctx context.Context, u model.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, email, name, password_hash, verification_token)
		 VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.VerificationToken)
	return err
}

// GetByEmail finds a user by email
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx,
		`SELECT id, email, name, password_hash, email_verified, verification_token
		 FROM users WHERE email = $1`, email)
}

// GetByID finds a user by id
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getOne(ctx,
		`SELECT id, email, name, password_hash, email_verified, verification_token
		 FROM users WHERE id = $1`, id)
}

// GetByVerificationToken finds the user holding a verification token
func (r *UserRepo) GetByVerificationToken(ctx context.Context, token string) (*model.User, error) {
	return r.getOne(ctx,
		`SELECT id, email, name, password_hash, email_verified, verification_token
		 FROM users WHERE verification_token = $1`, token)
}

// UpdateVerificationToken replaces the pending verification token
func (r *UserRepo) UpdateVerificationToken(ctx context.Context, id, token string) error {
	n, err := r.db.Exec(ctx,
		`UPDATE users SET verification_token = $1 WHERE id = $2`,
		token, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// MarkVerified stamps the verification time and clears the token
func (r *UserRepo) MarkVerified(ctx context.Context, id string) error {
	n, err := r.db.Exec(ctx,
		`UPDATE users SET email_verified = $1, verification_token = NULL WHERE id = $2`,
		time.Now(), id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) getOne(ctx context.Context, sql string, arg interface{}) (*model.User, error) {
	var user *model.User
	err := r.db.Query(ctx, sql, []interface{}{arg}, func(rows pgx.Rows) error {
		if !rows.Next() {
			return nil
		}
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.EmailVerified, &u.VerificationToken); err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		user = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
