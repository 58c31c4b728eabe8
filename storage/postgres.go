package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"api/domain"
)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(ctx context.Context, connString string) (*PostgresRepo, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &PostgresRepo{pool: pool}, nil
}

func (pgr *PostgresRepo) Close() {
	pgr.pool.Close()
}

func (pgr *PostgresRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	user := domain.User{Username: username}

	row := pgr.pool.QueryRow(ctx, "SELECT id, clan_id, xp FROM users WHERE username = $1", username)

	var clanID *int64
	err := row.Scan(&user.Id, &clanID, &user.XP)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return domain.User{}, domain.ErrUserNotFound
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return domain.User{}, err
		default:
			return domain.User{}, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
	}
	if clanID != nil {
		user.ClanId = *clanID
	}

	return user, nil
}

func (pgr *PostgresRepo) CreateUser(ctx context.Context, username string) (domain.User, error) {
	row := pgr.pool.QueryRow(ctx, "INSERT INTO users(username) VALUES($1) RETURNING id", username)

	user := domain.User{Username: username}
	err := row.Scan(&user.Id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// "23505" is the PostgreSQL error code for unique_violation
			if pgErr.Code == "23505" {
				return domain.User{}, domain.ErrDuplicateUsername
			}
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.User{}, err
		}

		return domain.User{}, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}

	return user, nil
}

// GetOrCreateUser is the connection-edge lookup: any handle is admitted, and
// unknown ones get a record on first join.
func (pgr *PostgresRepo) GetOrCreateUser(ctx context.Context, username string) (domain.User, error) {
	user, err := pgr.GetUserByUsername(ctx, username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, err
	}

	user, err = pgr.CreateUser(ctx, username)
	if errors.Is(err, domain.ErrDuplicateUsername) {
		// Lost a race against a concurrent join with the same handle.
		return pgr.GetUserByUsername(ctx, username)
	}
	return user, err
}

func (pgr *PostgresRepo) GetClanById(ctx context.Context, id int64) (domain.Clan, error) {
	clan := domain.Clan{Id: id}

	row := pgr.pool.QueryRow(ctx, "SELECT name, region FROM clans WHERE id = $1", id)

	err := row.Scan(&clan.Name, &clan.Region)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return domain.Clan{}, domain.ErrClanNotFound
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return domain.Clan{}, err
		default:
			return domain.Clan{}, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
	}

	return clan, nil
}

// SaveRaidResult records the final outcome of a raid session. Leaderboards
// read from this table; this subsystem only ever writes it.
func (pgr *PostgresRepo) SaveRaidResult(ctx context.Context, result domain.RaidResult) error {
	_, err := pgr.pool.Exec(ctx,
		"INSERT INTO raids(clan_id, rounds, damage_dealt, boss_defeated) VALUES($1, $2, $3, $4)",
		result.ClanId, result.Rounds, result.DamageDealt, result.BossDefeated,
	)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	return nil
}
