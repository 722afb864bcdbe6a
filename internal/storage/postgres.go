package storage

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maxbolgarin/errm"

	"moderbot/internal/i18n"
	"moderbot/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// PostgresConfig holds connection settings for the Postgres storage.
type PostgresConfig struct {
	Host     string `yaml:"host" env:"PG_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"PG_PORT" env-default:"5432"`
	DBName   string `yaml:"db_name" env:"PG_DB_NAME"`
	User     string `yaml:"user" env:"PG_USER"`
	Password string `yaml:"password" env:"PG_PASSWORD"`
	MaxConns int    `yaml:"max_conns" env:"PG_MAX_CONNS" env-default:"10"`
}

func (c PostgresConfig) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.DBName,
	)
}

// PostgresStores is the Postgres-backed Stores implementation on top of a
// pgx connection pool.
type PostgresStores struct {
	pool *pgxpool.Pool
}

// Connect creates a connection pool, verifies connectivity and applies the
// schema.
func Connect(ctx context.Context, cfg PostgresConfig) (*PostgresStores, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, errm.Wrap(err, "parse config")
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errm.Wrap(err, "create pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errm.Wrap(err, "ping")
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, errm.Wrap(err, "apply schema")
	}

	return &PostgresStores{pool: pool}, nil
}

// Acquire checks out one connection from the pool.
func (s *PostgresStores) Acquire(ctx context.Context) (StoreConn, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, errm.Wrap(err, "acquire conn")
	}
	return &pgConn{conn: conn}, nil
}

// Close shuts the pool down.
func (s *PostgresStores) Close() {
	s.pool.Close()
}

type pgConn struct {
	conn *pgxpool.Conn
}

func (c *pgConn) Release() {
	c.conn.Release()
}

func (c *pgConn) CreateUser(ctx context.Context, user model.User) (bool, error) {
	tag, err := c.conn.Exec(ctx, `
		INSERT INTO users (user_id, username, created_at, language, role, is_alive, banned)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO NOTHING`,
		user.ID, user.Username, user.CreatedAt, string(user.Language), string(user.Role), user.IsAlive, user.Banned,
	)
	if err != nil {
		return false, errm.Wrap(err, "insert user")
	}
	return tag.RowsAffected() > 0, nil
}

func (c *pgConn) User(ctx context.Context, id int64) (model.User, error) {
	return c.scanUser(c.conn.QueryRow(ctx, `
		SELECT user_id, username, created_at, language, role, is_alive, banned
		FROM users WHERE user_id = $1`, id,
	))
}

func (c *pgConn) UserByUsername(ctx context.Context, username string) (model.User, error) {
	return c.scanUser(c.conn.QueryRow(ctx, `
		SELECT user_id, username, created_at, language, role, is_alive, banned
		FROM users WHERE username = $1`, username,
	))
}

func (c *pgConn) scanUser(row pgx.Row) (model.User, error) {
	var (
		u        model.User
		language string
		role     string
	)
	err := row.Scan(&u.ID, &u.Username, &u.CreatedAt, &language, &role, &u.IsAlive, &u.Banned)
	if err != nil {
		if errm.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, errm.Wrap(err, "select user")
	}
	u.Language = i18n.Language(language)
	u.Role = model.Role(role)
	return u, nil
}

func (c *pgConn) SetAlive(ctx context.Context, id int64, isAlive bool) error {
	tag, err := c.conn.Exec(ctx,
		`UPDATE users SET is_alive = $1 WHERE user_id = $2`, isAlive, id)
	if err != nil {
		return errm.Wrap(err, "update is_alive")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *pgConn) SetLanguage(ctx context.Context, id int64, language i18n.Language) error {
	tag, err := c.conn.Exec(ctx,
		`UPDATE users SET language = $1 WHERE user_id = $2`, string(language), id)
	if err != nil {
		return errm.Wrap(err, "update language")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *pgConn) SetBannedByID(ctx context.Context, id int64, from, to bool) (bool, error) {
	tag, err := c.conn.Exec(ctx,
		`UPDATE users SET banned = $1 WHERE user_id = $2 AND banned = $3`, to, id, from)
	if err != nil {
		return false, errm.Wrap(err, "update banned")
	}
	return tag.RowsAffected() > 0, nil
}

func (c *pgConn) SetBannedByUsername(ctx context.Context, username string, from, to bool) (bool, error) {
	tag, err := c.conn.Exec(ctx,
		`UPDATE users SET banned = $1 WHERE username = $2 AND banned = $3`, to, username, from)
	if err != nil {
		return false, errm.Wrap(err, "update banned")
	}
	return tag.RowsAffected() > 0, nil
}

func (c *pgConn) RecordAction(ctx context.Context, userID int64) error {
	_, err := c.conn.Exec(ctx, `
		INSERT INTO activity (user_id) VALUES ($1)
		ON CONFLICT (user_id, activity_date)
		DO UPDATE SET actions = activity.actions + 1`, userID)
	if err != nil {
		return errm.Wrap(err, "record action")
	}
	return nil
}

func (c *pgConn) TopByActions(ctx context.Context, limit int) ([]model.UserActivity, error) {
	rows, err := c.conn.Query(ctx, `
		SELECT user_id, SUM(actions) AS total
		FROM activity
		GROUP BY user_id
		ORDER BY total DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, errm.Wrap(err, "select top activity")
	}
	defer rows.Close()

	var out []model.UserActivity
	for rows.Next() {
		var a model.UserActivity
		if err := rows.Scan(&a.UserID, &a.Actions); err != nil {
			return nil, errm.Wrap(err, "scan activity")
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errm.Wrap(err, "read activity rows")
	}
	return out, nil
}
