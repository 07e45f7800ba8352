package service

import (
	"testing"
	"time"

	"ocpe/internal/app/session"
	"ocpe/internal/domain/repository"
	"ocpe/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
)

type fixture struct {
	db       *sqlx.DB
	mr       *miniredis.Miniredis
	users    repository.UserRepository
	auth     *AuthService
	problems *ProblemService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := testutil.SetupConfig(t)
	db := testutil.SetupTestDB(t, cfg)
	rdb, mr := testutil.SetupRedis(t)

	users := repository.NewSQLUserRepository(db)
	sessions := session.NewStore(rdb, cfg.SessionKeyPrefix)
	return &fixture{
		db:       db,
		mr:       mr,
		users:    users,
		auth:     NewAuthService(users, sessions, time.Hour, 30*24*time.Hour),
		problems: NewProblemService(repository.NewSQLProblemRepository(db)),
	}
}

func (f *fixture) countUsers(t *testing.T) int {
	t.Helper()
	var n int
	if err := f.db.Get(&n, `SELECT COUNT(*) FROM users`); err != nil {
		t.Fatalf("count users: %v", err)
	}
	return n
}
