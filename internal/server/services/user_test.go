package services

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/evently-client/internal/dbx"
	"github.com/dmitrijs2005/evently-client/internal/server/auth"
	"github.com/dmitrijs2005/evently-client/internal/server/config"
	"github.com/dmitrijs2005/evently-client/internal/server/models"
	refreshtokensrepo "github.com/dmitrijs2005/evently-client/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/evently-client/internal/server/repositories/repomanager"
	usersrepo "github.com/dmitrijs2005/evently-client/internal/server/repositories/users"
	"github.com/dmitrijs2005/evently-client/internal/shared"
	"golang.org/x/crypto/bcrypt"
)

// --- helpers ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func newUserService(t *testing.T, db *sql.DB, rm repomanager.RepositoryManager) *UserService {
	t.Helper()
	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
	s := NewUserService(db, rm, cfg)
	s.bcryptCost = bcrypt.MinCost
	return s
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(h)
}

type fakeUsersRepo struct {
	mu      sync.Mutex
	created []*models.User

	createErr error
	getOut    *models.User
	getErr    error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u.ID = "new-id"
	f.created = append(f.created, u)
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeRefreshRepo struct {
	consumeOut *models.RefreshToken
	consumeErr error
	consumed   []string

	delErr    error
	deleted   []string
	createErr error
	created   []string
	purged    int64
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	if f.createErr == nil {
		f.created = append(f.created, token)
	}
	return f.createErr
}

func (f *fakeRefreshRepo) Consume(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.consumeErr != nil {
		return nil, f.consumeErr
	}
	f.consumed = append(f.consumed, token)
	return f.consumeOut, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	f.deleted = append(f.deleted, token)
	return f.delErr
}

func (f *fakeRefreshRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return f.purged, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error           { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository { return m.r }

var alice = &models.User{ID: "u1", Email: "alice@example.org", Name: "alice"}

func TestRefreshToken_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	rr := &fakeRefreshRepo{
		consumeOut: &models.RefreshToken{UserID: "u1", Expires: time.Now().Add(10 * time.Minute)},
	}
	rm := &fakeRepoManager{u: &fakeUsersRepo{getOut: alice}, r: rr}
	s := newUserService(t, db, rm)

	pair, err := s.RefreshToken(context.Background(), "refresh-xyz")
	if err != nil {
		t.Fatalf("RefreshToken error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" || pair.RefreshToken == "refresh-xyz" {
		t.Fatalf("bad tokens: %+v", pair)
	}
	if len(rr.consumed) != 1 || rr.consumed[0] != "refresh-xyz" {
		t.Fatalf("old token not consumed: %v", rr.consumed)
	}
	if len(rr.created) != 1 || rr.created[0] != pair.RefreshToken {
		t.Fatalf("successor not stored: %v", rr.created)
	}
	claims, err := auth.ParseToken(pair.AccessToken, []byte("k"))
	if err != nil || claims.UserID != "u1" || claims.Email != "alice@example.org" {
		t.Fatalf("claims: %+v, %v", claims, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRefreshToken_ExpiredIsConsumedAndCommitted(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	rr := &fakeRefreshRepo{
		consumeOut: &models.RefreshToken{UserID: "u1", Expires: time.Now().Add(-1 * time.Minute)},
	}
	s := newUserService(t, db, &fakeRepoManager{r: rr})

	_, err := s.RefreshToken(context.Background(), "r")
	if !errors.Is(err, shared.ErrorRefreshTokenExpired) {
		t.Fatalf("want ErrorRefreshTokenExpired, got %v", err)
	}
	if len(rr.consumed) != 1 || len(rr.created) != 0 {
		t.Fatalf("expired token must be consumed without a successor: consumed=%v created=%v", rr.consumed, rr.created)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRefreshToken_Unknown(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	s := newUserService(t, db, &fakeRepoManager{r: &fakeRefreshRepo{consumeErr: shared.ErrorNotFound}})

	_, err := s.RefreshToken(context.Background(), "r")
	if !errors.Is(err, shared.ErrorUnauthorized) {
		t.Fatalf("want ErrorUnauthorized, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRefreshToken_ConsumeErr(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	s := newUserService(t, db, &fakeRepoManager{r: &fakeRefreshRepo{consumeErr: errBoom{}}})

	_, err := s.RefreshToken(context.Background(), "r")
	if err == nil || !regexp.MustCompile(`error consuming refresh token: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped consume error, got %v", err)
	}
}

func TestRefreshToken_UserLookupErrRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := &fakeRepoManager{
		u: &fakeUsersRepo{getErr: errBoom{}},
		r: &fakeRefreshRepo{
			consumeOut: &models.RefreshToken{UserID: "u1", Expires: time.Now().Add(10 * time.Minute)},
		},
	}
	s := newUserService(t, db, rm)

	_, err := s.RefreshToken(context.Background(), "r")
	if err == nil || !regexp.MustCompile(`error loading user: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped user error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRefreshToken_GeneratePair_CreateErr(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := &fakeRepoManager{
		u: &fakeUsersRepo{getOut: alice},
		r: &fakeRefreshRepo{
			consumeOut: &models.RefreshToken{UserID: "u1", Expires: time.Now().Add(10 * time.Minute)},
			createErr:  errBoom{},
		},
	}
	s := newUserService(t, db, rm)

	_, err := s.RefreshToken(context.Background(), "r")
	if !errors.Is(err, shared.ErrorInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestRefreshToken_ConcurrentUseHonouredOnce(t *testing.T) {
	ctx := context.Background()
	db, m, err := repomanager.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	s := newUserService(t, db, m)
	if err := s.Seed(ctx, [][2]string{{"alice@example.org", "pw"}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	pair, err := s.Login(ctx, "alice@example.org", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	const callers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.RefreshToken(ctx, pair.RefreshToken)
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			} else if !errors.Is(err, shared.ErrorUnauthorized) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("refresh token honoured %d times, want 1", wins)
	}
}

func TestRegister_SuccessAndError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	ur := &fakeUsersRepo{}
	s := newUserService(t, db, &fakeRepoManager{u: ur, r: &fakeRefreshRepo{}})
	u, err := s.Register(context.Background(), "  Alice@Example.org ", "", "pw")
	if err != nil || u.ID != "new-id" {
		t.Fatalf("Register ok: got (%v, %v)", u, err)
	}
	if u.Email != "alice@example.org" || u.Name != "alice" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("pw")) != nil {
		t.Fatalf("password hash does not verify")
	}

	sErr := newUserService(t, db, &fakeRepoManager{u: &fakeUsersRepo{createErr: errBoom{}}})
	_, err = sErr.Register(context.Background(), "bob@example.org", "Bob", "pw")
	if err == nil || !regexp.MustCompile(`error creating user: .*boom`).MatchString(err.Error()) {
		t.Fatalf("Register expected wrapped error, got %v", err)
	}
}

func TestSeed_SkipsExisting(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := newUserService(t, db, &fakeRepoManager{u: &fakeUsersRepo{createErr: shared.ErrorAlreadyExists}})
	if err := s.Seed(context.Background(), [][2]string{{"a@b.c", "pw"}}); err != nil {
		t.Fatalf("existing seed must be skipped, got %v", err)
	}

	s = newUserService(t, db, &fakeRepoManager{u: &fakeUsersRepo{createErr: errBoom{}}})
	if err := s.Seed(context.Background(), [][2]string{{"a@b.c", "pw"}}); err == nil {
		t.Fatalf("expected seed error")
	}
}

func TestLogin_Flows(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	// not found → unauthorized
	sNF := newUserService(t, db, &fakeRepoManager{u: &fakeUsersRepo{getErr: shared.ErrorNotFound}, r: &fakeRefreshRepo{}})
	if _, err := sNF.Login(context.Background(), "ghost", "x"); !errors.Is(err, shared.ErrorUnauthorized) {
		t.Fatalf("notfound → unauthorized, got %v", err)
	}

	// internal error
	sIE := newUserService(t, db, &fakeRepoManager{u: &fakeUsersRepo{getErr: errBoom{}}, r: &fakeRefreshRepo{}})
	if _, err := sIE.Login(context.Background(), "u", "x"); !errors.Is(err, shared.ErrorInternal) {
		t.Fatalf("internal → ErrorInternal, got %v", err)
	}

	user := &models.User{ID: "u1", Email: "alice@example.org", PasswordHash: hashOf(t, "right")}

	// wrong password → unauthorized
	sWP := newUserService(t, db, &fakeRepoManager{u: &fakeUsersRepo{getOut: user}, r: &fakeRefreshRepo{}})
	if _, err := sWP.Login(context.Background(), "alice@example.org", "wrong"); !errors.Is(err, shared.ErrorUnauthorized) {
		t.Fatalf("wrong password → unauthorized, got %v", err)
	}

	rr := &fakeRefreshRepo{}
	sOK := newUserService(t, db, &fakeRepoManager{u: &fakeUsersRepo{getOut: user}, r: rr})
	pair, err := sOK.Login(context.Background(), "alice@example.org", "right")
	if err != nil || pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("Login success: pair=%+v err=%v", pair, err)
	}
	if len(rr.created) != 1 || rr.created[0] != pair.RefreshToken {
		t.Fatalf("refresh token not stored: %v", rr.created)
	}
}

func TestLogout(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rr := &fakeRefreshRepo{}
	s := newUserService(t, db, &fakeRepoManager{r: rr})

	if err := s.Logout(context.Background(), ""); err != nil {
		t.Fatalf("empty token: %v", err)
	}
	if len(rr.deleted) != 0 {
		t.Fatalf("empty token must not hit the repository")
	}
	if err := s.Logout(context.Background(), "r1"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(rr.deleted) != 1 || rr.deleted[0] != "r1" {
		t.Fatalf("deleted: %v", rr.deleted)
	}

	rr.delErr = errBoom{}
	if err := s.Logout(context.Background(), "r2"); err == nil {
		t.Fatalf("expected delete error")
	}
}

func TestMe(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := newUserService(t, db, &fakeRepoManager{u: &fakeUsersRepo{getOut: alice}})
	u, err := s.Me(context.Background(), "u1")
	if err != nil || u.Email != alice.Email {
		t.Fatalf("Me: %+v, %v", u, err)
	}

	s = newUserService(t, db, &fakeRepoManager{u: &fakeUsersRepo{getErr: shared.ErrorNotFound}})
	if _, err := s.Me(context.Background(), "gone"); !errors.Is(err, shared.ErrorUnauthorized) {
		t.Fatalf("deleted user → unauthorized, got %v", err)
	}
}

func TestPurgeExpired(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := newUserService(t, db, &fakeRepoManager{r: &fakeRefreshRepo{purged: 2}})
	n, err := s.PurgeExpired(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("PurgeExpired: %d, %v", n, err)
	}
}
