package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/config"
	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/model"
	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/repository"
	"github.com/vasapolrittideah/zacademy-api/shared/auth"
	"github.com/vasapolrittideah/zacademy-api/shared/mailer"
	"github.com/vasapolrittideah/zacademy-api/shared/provider"
)

var errDuplicateKey = mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}}}

var testTokenConfig = config.TokenConfig{
	Secret:                 "session-secret",
	ExpiresIn:              72 * time.Hour,
	Issuer:                 "zacademy-test",
	PasswordResetSecret:    "reset-secret",
	PasswordResetExpiresIn: 15 * time.Minute,
}

func nopLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[bson.ObjectID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[bson.ObjectID]*model.User{}}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return nil, errDuplicateKey
		}
		if user.GoogleID != nil && existing.GoogleID != nil && *existing.GoogleID == *user.GoogleID {
			return nil, errDuplicateKey
		}
	}

	now := time.Now()
	user.ID = bson.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	r.users[user.ID] = &stored

	return user, nil
}

func (r *fakeUserRepo) GetUser(_ context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[objectID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) find(match func(*model.User) bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if match(user) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) GetUserByGoogleID(_ context.Context, googleID string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.GoogleID != nil && *u.GoogleID == googleID })
}

func (r *fakeUserRepo) UpdateUser(
	_ context.Context,
	id string,
	params repository.UpdateUserParams,
) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[objectID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	if params.Name != nil {
		user.Name = *params.Name
	}
	if params.Bio != nil {
		user.Bio = *params.Bio
	}
	if params.Avatar != nil {
		user.Avatar = *params.Avatar
	}
	if params.Institute != nil {
		user.Institute = *params.Institute
	}
	if params.Specialization != nil {
		user.Specialization = *params.Specialization
	}
	if params.Experience != nil {
		experience := *params.Experience
		user.Experience = &experience
	}
	if params.PasswordHash != nil {
		user.PasswordHash = *params.PasswordHash
		changedAt := time.Now()
		user.PasswordChangedAt = &changedAt
	}
	user.UpdatedAt = time.Now()

	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) LinkGoogleID(_ context.Context, id, googleID string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[objectID]
	if !ok || user.GoogleID != nil {
		return nil, mongo.ErrNoDocuments
	}
	user.GoogleID = &googleID

	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[objectID]
	if !ok {
		return nil
	}
	now := time.Now()
	user.LastLoginAt = &now
	return nil
}

func (r *fakeUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type fakePendingRepo struct {
	mu      sync.Mutex
	pending map[string]*model.PendingRegistration
}

func newFakePendingRepo() *fakePendingRepo {
	return &fakePendingRepo{pending: map[string]*model.PendingRegistration{}}
}

func (r *fakePendingRepo) CreatePendingRegistration(
	_ context.Context,
	pending *model.PendingRegistration,
) (*model.PendingRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pending[pending.Email]; ok {
		return nil, errDuplicateKey
	}

	pending.ID = bson.NewObjectID()
	pending.Attempts = 0
	stored := *pending
	r.pending[pending.Email] = &stored

	return pending, nil
}

func (r *fakePendingRepo) GetPendingRegistration(
	_ context.Context,
	email, otp string,
	role model.Role,
) (*model.PendingRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending, ok := r.pending[email]
	if !ok || pending.OTP != otp || pending.Role != role {
		return nil, mongo.ErrNoDocuments
	}
	copied := *pending
	return &copied, nil
}

func (r *fakePendingRepo) IncrementAttempts(_ context.Context, email string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending, ok := r.pending[email]
	if !ok {
		return 0, mongo.ErrNoDocuments
	}
	pending.Attempts++
	return pending.Attempts, nil
}

func (r *fakePendingRepo) DeletePendingRegistration(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.pending, email)
	return nil
}

func (r *fakePendingRepo) DeleteExpiredPendingRegistration(_ context.Context, email string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pending, ok := r.pending[email]; ok && pending.Expired(now) {
		delete(r.pending, email)
	}
	return nil
}

func (r *fakePendingRepo) get(email string) (*model.PendingRegistration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending, ok := r.pending[email]
	if !ok {
		return nil, false
	}
	copied := *pending
	return &copied, true
}

type fakeCourseRepo struct {
	mu      sync.Mutex
	courses map[bson.ObjectID]*model.Course
	incErr  error
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: map[bson.ObjectID]*model.Course{}}
}

func (r *fakeCourseRepo) CreateCourse(_ context.Context, course *model.Course) (*model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.courses {
		if existing.Title == course.Title {
			return nil, errDuplicateKey
		}
	}

	course.ID = bson.NewObjectID()
	course.CreatedAt = time.Now()
	course.UpdatedAt = course.CreatedAt
	stored := *course
	r.courses[course.ID] = &stored

	return course, nil
}

func (r *fakeCourseRepo) GetCourse(_ context.Context, id string) (*model.Course, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	course, ok := r.courses[objectID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *course
	return &copied, nil
}

func (r *fakeCourseRepo) ListCourses(_ context.Context, params repository.FilterCoursesParams) ([]*model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	courses := make([]*model.Course, 0)
	for _, course := range r.courses {
		if params.InstructorID != nil && course.InstructorID.Hex() != *params.InstructorID {
			continue
		}
		if params.Level != nil && course.Level != *params.Level {
			continue
		}
		copied := *course
		courses = append(courses, &copied)
	}
	return courses, nil
}

func (r *fakeCourseRepo) UpdateCourse(
	_ context.Context,
	id string,
	params repository.UpdateCourseParams,
) (*model.Course, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	course, ok := r.courses[objectID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if params == (repository.UpdateCourseParams{}) {
		return nil, repository.ErrNothingToSave
	}

	if params.Title != nil {
		course.Title = *params.Title
	}
	if params.Description != nil {
		course.Description = *params.Description
	}
	if params.Level != nil {
		course.Level = *params.Level
	}
	if params.Price != nil {
		course.Price = *params.Price
	}
	if params.Thumbnail != nil {
		course.Thumbnail = *params.Thumbnail
	}

	copied := *course
	return &copied, nil
}

func (r *fakeCourseRepo) IncrementEnrollmentCount(_ context.Context, id string, delta int64) error {
	if r.incErr != nil {
		return r.incErr
	}

	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	course, ok := r.courses[objectID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	course.EnrollmentCount += delta
	return nil
}

type fakeEnrollmentRepo struct {
	mu          sync.Mutex
	enrollments map[bson.ObjectID]*model.Enrollment
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{enrollments: map[bson.ObjectID]*model.Enrollment{}}
}

func (r *fakeEnrollmentRepo) CreateEnrollment(
	_ context.Context,
	enrollment *model.Enrollment,
) (*model.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.enrollments {
		if existing.StudentID == enrollment.StudentID && existing.CourseID == enrollment.CourseID {
			return nil, errDuplicateKey
		}
	}

	enrollment.ID = bson.NewObjectID()
	stored := *enrollment
	r.enrollments[enrollment.ID] = &stored

	return enrollment, nil
}

func (r *fakeEnrollmentRepo) ListEnrollmentsByStudent(
	_ context.Context,
	studentID string,
) ([]*model.Enrollment, error) {
	objectID, err := bson.ObjectIDFromHex(studentID)
	if err != nil {
		return nil, repository.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	enrollments := make([]*model.Enrollment, 0)
	for _, enrollment := range r.enrollments {
		if enrollment.StudentID == objectID {
			copied := *enrollment
			enrollments = append(enrollments, &copied)
		}
	}
	return enrollments, nil
}

func (r *fakeEnrollmentRepo) DeleteEnrollment(_ context.Context, id string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.enrollments, objectID)
	return nil
}

type fakeResetTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*model.PasswordResetToken
}

func newFakeResetTokenRepo() *fakeResetTokenRepo {
	return &fakeResetTokenRepo{tokens: map[string]*model.PasswordResetToken{}}
}

func (r *fakeResetTokenRepo) IssueResetToken(_ context.Context, token *model.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for hash, existing := range r.tokens {
		if existing.UserID == token.UserID && !existing.Used {
			delete(r.tokens, hash)
		}
	}

	token.ID = bson.NewObjectID()
	token.Used = false
	stored := *token
	r.tokens[token.JTIHash] = &stored

	return nil
}

func (r *fakeResetTokenRepo) live(jtiHash string, now time.Time) (*model.PasswordResetToken, bool) {
	token, ok := r.tokens[jtiHash]
	if !ok || token.Used || !token.ExpiresAt.After(now) {
		return nil, false
	}
	return token, true
}

func (r *fakeResetTokenRepo) FindLiveResetToken(
	_ context.Context,
	jtiHash string,
	now time.Time,
) (*model.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.live(jtiHash, now)
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *token
	return &copied, nil
}

func (r *fakeResetTokenRepo) RedeemResetToken(
	_ context.Context,
	jtiHash string,
	now time.Time,
) (*model.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.live(jtiHash, now)
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	token.Used = true

	copied := *token
	return &copied, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Email
	err  error
}

func (m *fakeMailer) Send(email mailer.Email) error {
	if m.err != nil {
		return m.err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	return nil
}

func (m *fakeMailer) last() (mailer.Email, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sent) == 0 {
		return mailer.Email{}, false
	}
	return m.sent[len(m.sent)-1], true
}

type publishedEvent struct {
	Type    string
	Key     string
	Payload any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, eventType, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{Type: eventType, Key: key, Payload: payload})
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := make([]string, 0, len(p.events))
	for _, evt := range p.events {
		types = append(types, evt.Type)
	}
	return types
}

type fakeGoogle struct {
	identity     *provider.GoogleIdentity
	err          error
	lastVerifier string
}

func (g *fakeGoogle) AuthCodeURL(state, verifier string) string {
	g.lastVerifier = verifier
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (g *fakeGoogle) FetchIdentity(_ context.Context, code, verifier string) (*provider.GoogleIdentity, error) {
	if g.err != nil {
		return nil, g.err
	}
	if code == "" || verifier != g.lastVerifier {
		return nil, errors.New("invalid_grant")
	}
	identity := *g.identity
	return &identity, nil
}

func newTestOAuthStateRepo(t *testing.T) repository.OAuthStateRepository {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return repository.NewOAuthStateRedisRepository(rdb)
}

func newTestSessionUsecase(users repository.UserRepository) SessionUsecase {
	return NewSessionUsecase(users, auth.NewJWTAuthenticator(testTokenConfig.Issuer), testTokenConfig, nopLogger())
}
