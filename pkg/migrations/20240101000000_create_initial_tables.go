package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE authors (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL,
				birth_date TEXT,
				avatar_path TEXT
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_authors_name ON authors (name COLLATE NOCASE)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE publishers (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL,
				logo_path TEXT
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_publishers_name ON publishers (name COLLATE NOCASE)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE genres (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_genres_name ON genres (name COLLATE NOCASE)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE books (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				title TEXT NOT NULL,
				publication_date TEXT,
				synopsis TEXT NOT NULL DEFAULT '',
				score REAL NOT NULL DEFAULT 0,
				age_rating TEXT NOT NULL DEFAULT 'everyone',
				cover_path TEXT,
				publisher_id INTEGER REFERENCES publishers (id) ON DELETE SET NULL
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_books_publisher_id ON books (publisher_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE book_authors (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				book_id INTEGER NOT NULL REFERENCES books (id) ON DELETE CASCADE,
				author_id INTEGER NOT NULL REFERENCES authors (id) ON DELETE CASCADE
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_book_authors_book_id_author_id ON book_authors (book_id, author_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE book_genres (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				book_id INTEGER NOT NULL REFERENCES books (id) ON DELETE CASCADE,
				genre_id INTEGER NOT NULL REFERENCES genres (id) ON DELETE CASCADE
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_book_genres_book_id_genre_id ON book_genres (book_id, genre_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				email TEXT NOT NULL,
				username TEXT NOT NULL,
				password_hash TEXT NOT NULL,
				birth_date TEXT NOT NULL,
				gender TEXT NOT NULL DEFAULT 'not_specified',
				summary TEXT NOT NULL DEFAULT '',
				avatar_path TEXT,
				is_admin BOOLEAN NOT NULL DEFAULT FALSE
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_users_email ON users (email COLLATE NOCASE)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE user_books (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
				book_id INTEGER NOT NULL REFERENCES books (id) ON DELETE CASCADE,
				situation TEXT NOT NULL DEFAULT 'pending',
				rating REAL,
				review TEXT,
				date_added TEXT NOT NULL
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_user_books_user_id_book_id ON user_books (user_id, book_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_user_books_book_id ON user_books (book_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE user_followed_authors (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
				author_id INTEGER NOT NULL REFERENCES authors (id) ON DELETE CASCADE
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_user_followed_authors_user_id_author_id ON user_followed_authors (user_id, author_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE user_followed_publishers (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
				publisher_id INTEGER NOT NULL REFERENCES publishers (id) ON DELETE CASCADE
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_user_followed_publishers_user_id_publisher_id ON user_followed_publishers (user_id, publisher_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE user_favorite_genres (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
				genre_id INTEGER NOT NULL REFERENCES genres (id) ON DELETE CASCADE
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_user_favorite_genres_user_id_genre_id ON user_favorite_genres (user_id, genre_id)`)
		if err != nil {
			return errors.WithStack(err)
		}

		return nil
	}

	down := func(_ context.Context, db *bun.DB) error {
		tables := []string{
			"user_favorite_genres",
			"user_followed_publishers",
			"user_followed_authors",
			"user_books",
			"users",
			"book_genres",
			"book_authors",
			"books",
			"genres",
			"publishers",
			"authors",
		}
		for _, table := range tables {
			_, err := db.Exec("DROP TABLE IF EXISTS " + table)
			if err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	Migrations.MustRegister(up, down)
}
