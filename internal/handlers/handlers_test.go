package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"slidegen-backend/internal/middleware"
	"slidegen-backend/internal/models"
	"slidegen-backend/internal/pkg/logger"
	"slidegen-backend/internal/services"
)

// ─── Auth Handler Tests ───

type stubAuthService struct {
	signUpErr  error
	signInErr  error
	signOutErr error
	lastUserID uuid.UUID
}

func (s *stubAuthService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.User, error) {
	if s.signUpErr != nil {
		return nil, s.signUpErr
	}
	return &models.User{ID: uuid.New(), Email: req.Email, Name: req.Name, IsActive: true}, nil
}

func (s *stubAuthService) SignIn(ctx context.Context, req models.SignInRequest) (*models.AuthTokens, error) {
	if s.signInErr != nil {
		return nil, s.signInErr
	}
	return &models.AuthTokens{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 900}, nil
}

func (s *stubAuthService) SignOut(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	s.lastUserID = userID
	return s.signOutErr
}

func (s *stubAuthService) Refresh(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	return &models.AuthTokens{AccessToken: "access2", RefreshToken: "refresh2", ExpiresIn: 900}, nil
}

func (s *stubAuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	s.lastUserID = userID
	return &models.User{ID: userID, Email: "me@example.com"}, nil
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.APIError {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	return resp.Error
}

func TestAuthHandler_SignUp(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"created", nil, http.StatusCreated, ""},
		{"duplicate", &services.ConflictError{Message: "Email already in use"}, http.StatusConflict, "CONFLICT"},
		{"invalid", &services.ValidationError{Fields: map[string]string{"email": "Invalid email format"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewAuthHandler(&stubAuthService{signUpErr: tc.err})
			req := jsonRequest(t, http.MethodPost, "/auth/signup", map[string]string{
				"name": "Test User", "email": "test@example.com", "password": "StrongPass123",
			})
			rr := httptest.NewRecorder()
			h.SignUp(rr, req)

			if rr.Code != tc.status {
				t.Fatalf("Expected status %d, got %d", tc.status, rr.Code)
			}
			if tc.code != "" {
				if got := decodeError(t, rr); got.Code != tc.code {
					t.Errorf("Expected code %s, got %s", tc.code, got.Code)
				}
				return
			}

			var resp models.AuthResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if !resp.Success || resp.Data == nil {
				t.Errorf("Unexpected envelope %+v", resp)
			}
		})
	}
}

func TestAuthHandler_SignInUnauthorized(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{signInErr: &services.UnauthorizedError{Message: "Invalid email or password"}})
	rr := httptest.NewRecorder()
	h.SignIn(rr, jsonRequest(t, http.MethodPost, "/auth/signin", map[string]string{"email": "a@b.co", "password": "x"}))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rr.Code)
	}
	if got := decodeError(t, rr); got.Message != "Invalid email or password" {
		t.Errorf("Unexpected message %q", got.Message)
	}
}

func TestAuthHandler_BadBody(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	h.SignIn(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rr.Code)
	}
}

func TestAuthHandler_SignOutFailure(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{signOutErr: &services.ValidationError{Fields: map[string]string{"refresh_token": "Invalid"}}})
	rr := httptest.NewRecorder()
	h.SignOut(rr, jsonRequest(t, http.MethodPost, "/auth/signout", map[string]string{"refresh_token": "gone"}))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rr.Code)
	}
}

func TestAuthHandler_SignOutPassesCaller(t *testing.T) {
	svc := &stubAuthService{}
	h := NewAuthHandler(svc)
	userID := uuid.New()

	req := jsonRequest(t, http.MethodPost, "/auth/signout", map[string]string{"refresh_token": "tok"})
	req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	rr := httptest.NewRecorder()
	h.SignOut(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if svc.lastUserID != userID {
		t.Errorf("Expected sign-out for %s, got %s", userID, svc.lastUserID)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	svc := &stubAuthService{}
	h := NewAuthHandler(svc)
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	rr := httptest.NewRecorder()
	h.Me(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if svc.lastUserID != userID {
		t.Errorf("Expected lookup for %s, got %s", userID, svc.lastUserID)
	}
}

// ─── Presentation Handler Tests ───

type stubPresentationService struct {
	err        error
	generated  models.SlideContentRequest
	owner      uuid.UUID
	item       *models.Presentation
	deletedFor uuid.UUID
	listLimit  int
	listOffset int
}

func (s *stubPresentationService) Generate(ctx context.Context, userID uuid.UUID, req models.SlideContentRequest) (*models.GeneratePPTResponse, error) {
	s.generated = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.GeneratePPTResponse{
		Filename:  "Class5_Science_Water_presentation.pptx",
		PublicURL: "https://storage.googleapis.com/generated-ppt/x/Class5_Science_Water_presentation.pptx",
	}, nil
}

func (s *stubPresentationService) Enqueue(ctx context.Context, userID uuid.UUID, req models.SlideContentRequest) (*models.Job, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Job{ID: uuid.New(), UserID: userID, Status: models.JobPending}, nil
}

func (s *stubPresentationService) GetJob(ctx context.Context, userID, jobID uuid.UUID) (*models.Job, error) {
	return nil, &services.NotFoundError{Message: "Job not found"}
}

func (s *stubPresentationService) List(ctx context.Context, userID uuid.UUID, limit, offset int) (*models.PresentationPage, error) {
	s.listLimit, s.listOffset = limit, offset
	return &models.PresentationPage{Presentations: []*models.Presentation{}, Limit: 20, Offset: 0}, nil
}

func (s *stubPresentationService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Presentation, error) {
	if userID != s.owner {
		return nil, &services.ForbiddenError{Message: "Access denied"}
	}
	return s.item, nil
}

func (s *stubPresentationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if userID != s.owner {
		return &services.ForbiddenError{Message: "Access denied"}
	}
	s.deletedFor = id
	return nil
}

func withRouteID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestPresentationHandler_GeneratePPT(t *testing.T) {
	svc := &stubPresentationService{}
	h := NewPresentationHandler(svc, logger.Nop())

	req := jsonRequest(t, http.MethodPost, "/ppt/generate-ppt", map[string]interface{}{
		"grade": 5, "subject": "Science", "topic": "Water", "language": "Marathi", "pages": 6,
	})
	rr := httptest.NewRecorder()
	h.GeneratePPT(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	var resp models.GeneratePPTResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Filename == "" || resp.PublicURL == "" {
		t.Errorf("Unexpected response %+v", resp)
	}
	if svc.generated.Language != "Marathi" || svc.generated.Pages != 6 {
		t.Errorf("Request not passed through: %+v", svc.generated)
	}
}

func TestPresentationHandler_GenerationFailure(t *testing.T) {
	svc := &stubPresentationService{err: &services.GenerationError{Err: errors.New("quota exceeded")}}
	h := NewPresentationHandler(svc, logger.Nop())

	rr := httptest.NewRecorder()
	h.GeneratePPT(rr, jsonRequest(t, http.MethodPost, "/ppt/generate-ppt", map[string]interface{}{"grade": 5}))

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", rr.Code)
	}
	got := decodeError(t, rr)
	if got.Code != "GENERATION_FAILED" || !strings.Contains(got.Message, "quota exceeded") {
		t.Errorf("Unexpected error %+v", got)
	}
}

func TestPresentationHandler_CreateJob(t *testing.T) {
	h := NewPresentationHandler(&stubPresentationService{}, logger.Nop())

	rr := httptest.NewRecorder()
	h.CreateJob(rr, jsonRequest(t, http.MethodPost, "/ppt/jobs", map[string]interface{}{"grade": 5, "subject": "Math", "topic": "Sets"}))

	if rr.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", rr.Code)
	}
	var body map[string]string
	json.NewDecoder(rr.Body).Decode(&body)
	if _, err := uuid.Parse(body["job_id"]); err != nil {
		t.Errorf("Expected job_id, got %v", body)
	}
}

func TestPresentationHandler_OwnerOnly(t *testing.T) {
	owner, other := uuid.New(), uuid.New()
	id := uuid.New()
	svc := &stubPresentationService{owner: owner, item: &models.Presentation{ID: id, UserID: owner}}
	h := NewPresentationHandler(svc, logger.Nop())

	req := withRouteID(httptest.NewRequest(http.MethodDelete, "/ppt/presentations/"+id.String(), nil), id.String())
	req = req.WithContext(middleware.WithUserID(req.Context(), other))
	rr := httptest.NewRecorder()
	h.Delete(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("Expected 403, got %d", rr.Code)
	}
	if svc.deletedFor != uuid.Nil {
		t.Error("Delete must not run for non-owner")
	}

	req = withRouteID(httptest.NewRequest(http.MethodGet, "/ppt/presentations/"+id.String(), nil), id.String())
	req = req.WithContext(middleware.WithUserID(req.Context(), owner))
	rr = httptest.NewRecorder()
	h.Get(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200 for owner, got %d", rr.Code)
	}
}

func TestPresentationHandler_InvalidIDs(t *testing.T) {
	h := NewPresentationHandler(&stubPresentationService{}, logger.Nop())

	for name, fn := range map[string]http.HandlerFunc{"get": h.Get, "delete": h.Delete, "job": h.GetJob} {
		rr := httptest.NewRecorder()
		fn(rr, withRouteID(httptest.NewRequest(http.MethodGet, "/x", nil), "not-a-uuid"))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	h.GetJob(rr, withRouteID(httptest.NewRequest(http.MethodGet, "/x", nil), uuid.NewString()))
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown job, got %d", rr.Code)
	}
}

func TestPresentationHandler_ListReportsAppliedBounds(t *testing.T) {
	svc := &stubPresentationService{}
	h := NewPresentationHandler(svc, logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/ppt/presentations?limit=abc&offset=-4", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.New()))
	rr := httptest.NewRecorder()
	h.List(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if svc.listLimit != 0 || svc.listOffset != -4 {
		t.Errorf("Expected raw query values passed through, got limit=%d offset=%d", svc.listLimit, svc.listOffset)
	}

	var body models.PresentationPage
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Limit != 20 || body.Offset != 0 {
		t.Errorf("Expected the service's bounds limit=20 offset=0, got limit=%d offset=%d", body.Limit, body.Offset)
	}
	if body.Presentations == nil {
		t.Error("Expected an empty presentations array, not null")
	}
}
