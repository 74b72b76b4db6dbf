package repository

import (
	"context"
	"log"
	"strconv"

	"chatLink/pkg/api"
	"github.com/georgysavva/scany/pgxscan"
	"github.com/jackc/pgx/v4/pgxpool"
)

type UserStorage struct {
	db *pgxpool.Pool
}

func NewUserStorage(db *pgxpool.Pool) *UserStorage {
	return &UserStorage{db: db}
}

var _ api.UserRepository = (*UserStorage)(nil)

const upsertUserStmt = `
INSERT INTO user_account (uid, email, username, display_name, photo_url, status, is_guest, guest_name, last_seen, last_activity)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (uid) DO UPDATE SET
	email = EXCLUDED.email,
	username = EXCLUDED.username,
	display_name = EXCLUDED.display_name,
	photo_url = EXCLUDED.photo_url,
	status = EXCLUDED.status,
	last_activity = EXCLUDED.last_activity`

func (r *UserStorage) Upsert(ctx context.Context, user api.UserModel) error {
	_, err := r.db.Exec(ctx, upsertUserStmt,
		user.UID, user.Email, user.Username, user.DisplayName, user.PhotoUrl,
		user.Status, user.IsGuest, user.GuestName, user.LastSeen, user.LastActivity)
	if err != nil {
		log.Printf("Upserting user %s: %v", user.UID, err)
	}
	return err
}

func (r *UserStorage) FindByIDs(ctx context.Context, userIds []string) ([]*api.UserModel, error) {
	if len(userIds) == 0 {
		return nil, nil
	}

	var users []*api.UserModel
	ids := make([]interface{}, len(userIds))
	ids[0] = userIds[0]
	inStmt := "$1"
	for i := 1; i < len(userIds); i++ {
		inStmt = inStmt + ",$" + strconv.Itoa(i+1)
		ids[i] = userIds[i]
	}
	if err := pgxscan.Select(ctx, r.db, &users, "SELECT * FROM user_account WHERE uid IN ("+inStmt+")", ids...); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserStorage) SearchByUsername(ctx context.Context, query string) ([]*api.UserModel, error) {
	var users []*api.UserModel
	if err := pgxscan.Select(ctx, r.db, &users, "SELECT * FROM user_account WHERE username ILIKE '%' || $1 || '%'", query); err != nil {
		return nil, err
	}
	return users, nil
}
