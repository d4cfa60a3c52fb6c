package impl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"snaplearn/internal/domain/entity"
	"snaplearn/internal/domain/repository"
	"snaplearn/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// --- In-memory repositories ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		clone := *user

		return &clone, nil
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.findBy(func(u *entity.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.findBy(func(u *entity.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) findBy(match func(*entity.User) bool) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if match(user) {
			clone := *user

			return &clone, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone

	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	clone := *user
	r.users[user.ID] = &clone

	return nil
}

func (r *fakeUserRepo) LockForUpdate(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeUserRepo) ListByExperience(_ context.Context, offset, limit int) ([]*entity.LeaderboardEntry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]*entity.LeaderboardEntry, 0, len(r.users))
	for _, user := range r.users {
		entries = append(entries, &entity.LeaderboardEntry{
			Username:   user.Username,
			Experience: user.Experience,
			Level:      user.Level,
		})
	}
	// Selection sort keeps the fake dependency-free.
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if entries[j].Experience > entries[i].Experience {
				entries[i], entries[j] = entries[j], entries[i]
			}
		}
	}

	total := int64(len(entries))
	if offset >= len(entries) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(entries) {
		end = len(entries)
	}

	return entries[offset:end], total, nil
}

type fakeRefreshTokenRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entity.RefreshToken
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{sessions: make(map[uuid.UUID]*entity.RefreshToken)}
}

func (r *fakeRefreshTokenRepo) Create(_ context.Context, token *entity.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	token.CreatedAt = time.Now()
	clone := *token
	r.sessions[token.ID] = &clone

	return nil
}

func (r *fakeRefreshTokenRepo) FindByTokenUserDevice(_ context.Context, token string, userID uuid.UUID, deviceID string) (*entity.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.Token == token && session.UserID == userID && session.DeviceID == deviceID {
			if !session.Active(time.Now()) {
				return nil, repository.ErrRefreshTokenExpired
			}
			clone := *session

			return &clone, nil
		}
	}

	return nil, repository.ErrRefreshTokenNotFound
}

func (r *fakeRefreshTokenRepo) Rotate(_ context.Context, userID uuid.UUID, deviceID, oldToken, newToken string, newExpiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.UserID == userID && session.DeviceID == deviceID && session.Token == oldToken {
			session.Token = newToken
			session.ExpiresAt = newExpiry

			return nil
		}
	}

	return repository.ErrRefreshTokenNotFound
}

func (r *fakeRefreshTokenRepo) FindActiveByUserID(_ context.Context, userID uuid.UUID) ([]*entity.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var active []*entity.RefreshToken
	for _, session := range r.sessions {
		if session.UserID == userID && session.Active(now) {
			clone := *session
			active = append(active, &clone)
		}
	}

	return active, nil
}

func (r *fakeRefreshTokenRepo) CountActiveByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	active, err := r.FindActiveByUserID(ctx, userID)

	return len(active), err
}

func (r *fakeRefreshTokenRepo) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, session := range r.sessions {
		if session.UserID == userID {
			delete(r.sessions, id)
		}
	}

	return nil
}

func (r *fakeRefreshTokenRepo) DeleteByUserDeviceToken(_ context.Context, userID uuid.UUID, deviceID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, session := range r.sessions {
		if session.UserID == userID && session.DeviceID == deviceID && session.Token == token {
			delete(r.sessions, id)

			return nil
		}
	}

	return repository.ErrRefreshTokenNotFound
}

func (r *fakeRefreshTokenRepo) DeleteExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for id, session := range r.sessions {
		if !session.Active(now) {
			delete(r.sessions, id)
		}
	}

	return nil
}

type fakeQuizRepo struct {
	mu      sync.Mutex
	quizzes map[uuid.UUID]*entity.Quiz
}

func newFakeQuizRepo() *fakeQuizRepo {
	return &fakeQuizRepo{quizzes: make(map[uuid.UUID]*entity.Quiz)}
}

func (r *fakeQuizRepo) Create(_ context.Context, quiz *entity.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if quiz.ID == uuid.Nil {
		quiz.ID = uuid.New()
	}
	quiz.CreatedAt = time.Now()
	clone := *quiz
	r.quizzes[quiz.ID] = &clone

	return nil
}

func (r *fakeQuizRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if quiz, ok := r.quizzes[id]; ok {
		clone := *quiz

		return &clone, nil
	}

	return nil, repository.ErrQuizNotFound
}

// --- Transaction manager ---

// fakeTxManager hands the same fakes to every transaction. Rollback is not
// simulated; tests assert on observable behavior, not tx mechanics.
type fakeTxManager struct {
	userRepo  *fakeUserRepo
	tokenRepo *fakeRefreshTokenRepo
	quizRepo  *fakeQuizRepo
}

type fakeRepoFactory struct {
	tm *fakeTxManager
}

func (f *fakeRepoFactory) UserRepo() repository.UserRepository { return f.tm.userRepo }
func (f *fakeRepoFactory) RefreshTokenRepo() repository.RefreshTokenRepository {
	return f.tm.tokenRepo
}
func (f *fakeRepoFactory) QuizRepo() repository.QuizRepository { return f.tm.quizRepo }

func (tm *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(&fakeRepoFactory{tm: tm})
}

// --- Domain services ---

// fakeHasher is a transparent stand-in for bcrypt.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (fakeHasher) Check(password, hash string) bool     { return hash == "hashed:"+password }

// stubTokenService mints deterministic tokens and remembers the claims behind
// every access token it issued.
type stubTokenService struct {
	mu      sync.Mutex
	counter int
	claims  map[string]*service.Claims
}

func newStubTokenService() *stubTokenService {
	return &stubTokenService{claims: make(map[string]*service.Claims)}
}

func (s *stubTokenService) GenerateTokenPair(userID uuid.UUID, deviceID string) (string, string, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	access := fmt.Sprintf("access-%d", s.counter)
	refresh := fmt.Sprintf("refresh-%d", s.counter)
	s.claims[access] = &service.Claims{UserID: userID, DeviceID: deviceID}

	return access, refresh, time.Now().Add(s.RefreshTokenDuration()), nil
}

func (s *stubTokenService) ValidateAccessToken(tokenString string) (*service.Claims, error) {
	return s.lookup(tokenString)
}

func (s *stubTokenService) ExtractClaimsIgnoringExpiry(tokenString string) (*service.Claims, error) {
	return s.lookup(tokenString)
}

func (s *stubTokenService) lookup(tokenString string) (*service.Claims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if claims, ok := s.claims[tokenString]; ok {
		clone := *claims

		return &clone, nil
	}

	return nil, errors.New("unknown token")
}

func (s *stubTokenService) RefreshTokenDuration() time.Duration {
	return 7 * 24 * time.Hour
}

// stubGenerator returns canned questions and facts, or a fixed error.
type stubGenerator struct {
	questions []entity.QuizQuestion
	facts     *service.Facts
	err       error

	lastLanguage string
}

func (g *stubGenerator) GenerateQuestions(_ context.Context, _, _, language string, _ int) ([]entity.QuizQuestion, error) {
	g.lastLanguage = language
	if g.err != nil {
		return nil, g.err
	}

	return g.questions, nil
}

func (g *stubGenerator) GenerateFacts(_ context.Context, _, _, language string) (*service.Facts, error) {
	g.lastLanguage = language
	if g.err != nil {
		return nil, g.err
	}

	return g.facts, nil
}

// --- Wiring helpers ---

type authFixture struct {
	svc       *authService
	userRepo  *fakeUserRepo
	tokenRepo *fakeRefreshTokenRepo
	tokens    *stubTokenService
}

func newAuthFixture() *authFixture {
	userRepo := newFakeUserRepo()
	tokenRepo := newFakeRefreshTokenRepo()
	tokens := newStubTokenService()
	tm := &fakeTxManager{userRepo: userRepo, tokenRepo: tokenRepo, quizRepo: newFakeQuizRepo()}

	return &authFixture{
		svc: &authService{
			txManager:        tm,
			userRepo:         userRepo,
			refreshTokenRepo: tokenRepo,
			hasher:           fakeHasher{},
			tokenService:     tokens,
			logger:           slog.Default(),
		},
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		tokens:    tokens,
	}
}

type quizFixture struct {
	svc       *quizService
	userRepo  *fakeUserRepo
	quizRepo  *fakeQuizRepo
	generator *stubGenerator
}

func newQuizFixture() *quizFixture {
	userRepo := newFakeUserRepo()
	quizRepo := newFakeQuizRepo()
	generator := &stubGenerator{}
	tm := &fakeTxManager{userRepo: userRepo, tokenRepo: newFakeRefreshTokenRepo(), quizRepo: quizRepo}

	return &quizFixture{
		svc: &quizService{
			txManager: tm,
			userRepo:  userRepo,
			quizRepo:  quizRepo,
			generator: generator,
			logger:    slog.Default(),
		},
		userRepo:  userRepo,
		quizRepo:  quizRepo,
		generator: generator,
	}
}
