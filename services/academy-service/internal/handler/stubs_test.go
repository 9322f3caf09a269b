package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/model"
	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/payload"
	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/usecase"
)

var errNotStubbed = errors.New("not stubbed")

// stubUsecases satisfies every usecase interface the router needs. Unset funcs fail the
// call with errNotStubbed.
type stubUsecases struct {
	register           func(usecase.RegisterParams) (*usecase.PendingRegistrationInfo, error)
	verifyRegistration func(usecase.VerifyRegistrationParams) (*usecase.Session, error)
	login              func(usecase.LoginParams) (*usecase.Session, error)
	beginGoogleAuth    func(model.OAuthIntent) (string, error)
	completeGoogleAuth func(usecase.CompleteGoogleAuthParams) (*usecase.GoogleAuthResult, error)
	exchangeCode       func(string) (*usecase.Session, error)
	updateProfile      func(string, usecase.UpdateProfileParams) (*model.User, error)
	requestReset       func(string) error
	createCourse       func(string, usecase.CreateCourseParams) (*model.Course, error)
	listCourses        func(usecase.ListCoursesParams) ([]*model.Course, error)
	enroll             func(string, string) (*model.Enrollment, error)

	users map[string]*model.User
}

func newStubUsecases() *stubUsecases {
	return &stubUsecases{users: map[string]*model.User{
		"student-token":    {ID: bson.NewObjectID(), Name: "Student", Email: "student@example.com", Role: model.RoleStudent},
		"instructor-token": {ID: bson.NewObjectID(), Name: "Instructor", Email: "instructor@example.com", Role: model.RoleInstructor},
	}}
}

func (s *stubUsecases) Register(_ context.Context, params usecase.RegisterParams) (*usecase.PendingRegistrationInfo, error) {
	if s.register == nil {
		return nil, errNotStubbed
	}
	return s.register(params)
}

func (s *stubUsecases) VerifyRegistration(_ context.Context, params usecase.VerifyRegistrationParams) (*usecase.Session, error) {
	if s.verifyRegistration == nil {
		return nil, errNotStubbed
	}
	return s.verifyRegistration(params)
}

func (s *stubUsecases) Login(_ context.Context, params usecase.LoginParams) (*usecase.Session, error) {
	if s.login == nil {
		return nil, errNotStubbed
	}
	return s.login(params)
}

func (s *stubUsecases) IssueSession(user *model.User) (*usecase.Session, error) {
	return &usecase.Session{Token: "issued-token", User: user}, nil
}

func (s *stubUsecases) Authenticate(_ context.Context, token string) (*model.User, error) {
	user, ok := s.users[token]
	if !ok {
		return nil, usecase.ErrInvalidSession
	}
	return user, nil
}

func (s *stubUsecases) BeginGoogleAuth(_ context.Context, intent model.OAuthIntent) (string, error) {
	if s.beginGoogleAuth == nil {
		return "", errNotStubbed
	}
	return s.beginGoogleAuth(intent)
}

func (s *stubUsecases) CompleteGoogleAuth(
	_ context.Context,
	params usecase.CompleteGoogleAuthParams,
) (*usecase.GoogleAuthResult, error) {
	if s.completeGoogleAuth == nil {
		return nil, errNotStubbed
	}
	return s.completeGoogleAuth(params)
}

func (s *stubUsecases) ExchangeCode(_ context.Context, code string) (*usecase.Session, error) {
	if s.exchangeCode == nil {
		return nil, errNotStubbed
	}
	return s.exchangeCode(code)
}

func (s *stubUsecases) GetProfile(_ context.Context, userID string) (*model.User, error) {
	for _, user := range s.users {
		if user.ID.Hex() == userID {
			return user, nil
		}
	}
	return nil, usecase.ErrUserNotFound
}

func (s *stubUsecases) UpdateProfile(_ context.Context, userID string, params usecase.UpdateProfileParams) (*model.User, error) {
	if s.updateProfile == nil {
		return nil, errNotStubbed
	}
	return s.updateProfile(userID, params)
}

func (s *stubUsecases) RequestPasswordReset(_ context.Context, email string) error {
	if s.requestReset == nil {
		return errNotStubbed
	}
	return s.requestReset(email)
}

func (s *stubUsecases) ResetPassword(context.Context, string, string) error {
	return errNotStubbed
}

func (s *stubUsecases) ValidatePasswordResetToken(context.Context, string) error {
	return usecase.ErrResetTokenInvalid
}

func (s *stubUsecases) CreateCourse(_ context.Context, instructorID string, params usecase.CreateCourseParams) (*model.Course, error) {
	if s.createCourse == nil {
		return nil, errNotStubbed
	}
	return s.createCourse(instructorID, params)
}

func (s *stubUsecases) GetCourse(context.Context, string) (*usecase.CourseDetail, error) {
	return nil, usecase.ErrCourseNotFound
}

func (s *stubUsecases) ListCourses(_ context.Context, params usecase.ListCoursesParams) ([]*model.Course, error) {
	if s.listCourses == nil {
		return nil, errNotStubbed
	}
	return s.listCourses(params)
}

func (s *stubUsecases) ListInstructorCourses(context.Context, string) ([]*model.Course, error) {
	return []*model.Course{}, nil
}

func (s *stubUsecases) UpdateCourse(context.Context, string, string, usecase.UpdateCourseParams) (*model.Course, error) {
	return nil, usecase.ErrNotCourseOwner
}

func (s *stubUsecases) Enroll(_ context.Context, studentID, courseID string) (*model.Enrollment, error) {
	if s.enroll == nil {
		return nil, errNotStubbed
	}
	return s.enroll(studentID, courseID)
}

func (s *stubUsecases) ListStudentEnrollments(context.Context, string) ([]*model.Enrollment, error) {
	return []*model.Enrollment{}, nil
}

type routerOption func(*RouterParams)

func newTestRouter(t *testing.T, stubs *stubUsecases, opts ...routerOption) http.Handler {
	t.Helper()

	validator, err := payload.NewValidator()
	require.NoError(t, err)

	logger := zerolog.Nop()
	params := &RouterParams{
		ServiceName:          "academy-service",
		ClientURL:            "http://localhost:5173",
		AllowedOrigins:       []string{"http://localhost:5173"},
		RegistrationUsecase:  stubs,
		SessionUsecase:       stubs,
		OAuthUsecase:         stubs,
		ProfileUsecase:       stubs,
		PasswordResetUsecase: stubs,
		CourseUsecase:        stubs,
		EnrollmentUsecase:    stubs,
		Validator:            validator,
		Logger:               &logger,
	}
	for _, opt := range opts {
		opt(params)
	}

	return NewRouter(*params)
}

type requestOption func(*http.Request)

func withToken(token string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func serve(t *testing.T, h http.Handler, method, target, body string, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	req.RemoteAddr = "203.0.113.7:51234"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
