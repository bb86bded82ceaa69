package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/classtrack/rollcall-backend/internal/config"
	"github.com/classtrack/rollcall-backend/internal/handler"
	"github.com/classtrack/rollcall-backend/internal/model"
	"github.com/classtrack/rollcall-backend/internal/response"
	"github.com/classtrack/rollcall-backend/internal/service"
	"github.com/classtrack/rollcall-backend/internal/validator"
)

// In-memory stores standing in for Redis, so the full HTTP stack runs
// without external services.

type memSnapshotStore struct {
	mu  sync.Mutex
	raw []byte
}

func (m *memSnapshotStore) Load(ctx context.Context) (*model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := &model.Snapshot{Records: model.Records{}, Locks: map[string]bool{}}
	if m.raw == nil {
		return snap, nil
	}
	if err := json.Unmarshal(m.raw, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (m *memSnapshotStore) Save(ctx context.Context, snap *model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	m.raw = raw
	return nil
}

type memSessionStore struct {
	mu      sync.Mutex
	session *model.Session
}

func (m *memSessionStore) Get(ctx context.Context) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, nil
	}
	cp := *m.session
	return &cp, nil
}

func (m *memSessionStore) Put(ctx context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.session = &cp
	return nil
}

func (m *memSessionStore) Delete(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

type memCredentialStore struct {
	mu    sync.Mutex
	creds map[model.Role]model.Credential
}

func (m *memCredentialStore) Get(ctx context.Context, role model.Role) (*model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cred, ok := m.creds[role]
	if !ok {
		return nil, nil
	}
	return &cred, nil
}

func (m *memCredentialStore) Put(ctx context.Context, role model.Role, cred model.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.creds == nil {
		m.creds = map[model.Role]model.Credential{}
	}
	m.creds[role] = cred
	return nil
}

type memSettingStore struct {
	mu       sync.Mutex
	settings map[string]string
}

func (m *memSettingStore) GetAll(ctx context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]string{}
	for k, v := range m.settings {
		out[k] = v
	}
	return out, nil
}

func (m *memSettingStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		m.settings = map[string]string{}
	}
	m.settings[key] = value
	return nil
}

// envelope mirrors the response wrapper for decoding in assertions.
type envelope struct {
	Data  map[string]json.RawMessage `json:"data"`
	Error *response.ErrorBody        `json:"error"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	validator.Setup()

	cfg := &config.Config{
		GinMode:            gin.TestMode,
		JWTSecret:          "test-secret",
		JWTExpiry:          time.Hour,
		BcryptCost:         4,
		LoginRatePerMinute: 100,
	}

	log := zerolog.Nop()
	authService := service.NewAuthService(cfg, &memCredentialStore{}, &memSessionStore{}, log)
	attendanceService, err := service.NewAttendanceService(context.Background(), &memSnapshotStore{}, log)
	if err != nil {
		t.Fatalf("attendance service: %v", err)
	}
	settingService := service.NewSettingService(&memSettingStore{}, log)
	exportService := service.NewExportService(attendanceService, log)

	handlers := &Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Attendance: handler.NewAttendanceHandler(attendanceService),
		Roster:     handler.NewRosterHandler(attendanceService),
		Report:     handler.NewReportHandler(attendanceService),
		Export:     handler.NewExportHandler(exportService),
		Setting:    handler.NewSettingHandler(settingService),
		Admin:      handler.NewAdminHandler(attendanceService),
	}
	return SetupRouter(authService, handlers, cfg)
}

func do(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	env := &envelope{}
	if err := json.Unmarshal(w.Body.Bytes(), env); err != nil {
		t.Fatalf("%s %s: decode response %q: %v", method, path, w.Body.String(), err)
	}
	return w, env
}

func login(t *testing.T, r *gin.Engine, username, password string, role model.Role) string {
	t.Helper()
	w, env := do(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": username,
		"password": password,
		"role":     role,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", role, w.Code, w.Body.String())
	}
	var token string
	if err := json.Unmarshal(env.Data["token"], &token); err != nil || token == "" {
		t.Fatalf("login %s: token missing in %s", role, w.Body.String())
	}
	return token
}

func TestTeacherDailyWorkflow(t *testing.T) {
	r := newTestRouter(t)
	today := "2024-09-02"

	teacher := login(t, r, "teacher", "teacher123", model.RoleTeacher)

	// Bulk mark the whole roster present.
	ids := make([]string, len(model.DefaultRoster))
	for i, s := range model.DefaultRoster {
		ids[i] = s.ID
	}
	w, _ := do(t, r, http.MethodPost, "/api/v1/attendance/bulk", teacher, gin.H{
		"date": today, "student_ids": ids, "present": true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("bulk mark: %d %s", w.Code, w.Body.String())
	}

	// First save commits and sets the lock.
	w, env := do(t, r, http.MethodPost, "/api/v1/attendance/save", teacher, gin.H{"date": today})
	if w.Code != http.StatusOK {
		t.Fatalf("first save: %d %s", w.Code, w.Body.String())
	}
	var locked bool
	_ = json.Unmarshal(env.Data["locked"], &locked)
	if !locked {
		t.Fatal("first teacher save must report the date as locked")
	}

	// A second save for the same date fails with the daily lock.
	w, env = do(t, r, http.MethodPost, "/api/v1/attendance/save", teacher, gin.H{"date": today})
	if w.Code != http.StatusLocked || env.Error == nil || env.Error.Code != response.ErrDailyLockActive {
		t.Fatalf("second save: %d %s", w.Code, w.Body.String())
	}

	// So does any further mutation for that date.
	w, env = do(t, r, http.MethodPost, "/api/v1/attendance/mark", teacher, gin.H{
		"date": today, "student_id": "STU001", "present": false,
	})
	if w.Code != http.StatusLocked || env.Error.Code != response.ErrDailyLockActive {
		t.Fatalf("post-save mark: %d %s", w.Code, w.Body.String())
	}

	// The day view still shows the committed state.
	w, env = do(t, r, http.MethodGet, "/api/v1/attendance?date="+today, teacher, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("day view: %d %s", w.Code, w.Body.String())
	}
	var entries []struct {
		Student model.Student        `json:"student"`
		Status  model.PresenceStatus `json:"status"`
	}
	if err := json.Unmarshal(env.Data["entries"], &entries); err != nil {
		t.Fatalf("decode entries: %v", err)
	}
	for _, e := range entries {
		if e.Status != model.StatusPresent {
			t.Fatalf("%s status %s after committed bulk mark", e.Student.ID, e.Status)
		}
	}

	// Admin login replaces the teacher session; the teacher token is dead.
	admin := login(t, r, "admin", "admin123", model.RoleAdmin)
	w, env = do(t, r, http.MethodGet, "/api/v1/attendance?date="+today, teacher, nil)
	if w.Code != http.StatusUnauthorized || env.Error.Code != response.ErrSessionInvalidated {
		t.Fatalf("replaced teacher token: %d %s", w.Code, w.Body.String())
	}

	// Admin bypasses the daily lock and clears the day.
	w, _ = do(t, r, http.MethodDelete, "/api/v1/attendance?date="+today, admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin clear on locked date: %d %s", w.Code, w.Body.String())
	}
}

func TestRoleGates(t *testing.T) {
	r := newTestRouter(t)

	// No token at all.
	w, env := do(t, r, http.MethodGet, "/api/v1/attendance", "", nil)
	if w.Code != http.StatusUnauthorized || env.Error.Code != response.ErrTokenRequired {
		t.Fatalf("anonymous: %d %s", w.Code, w.Body.String())
	}

	student := login(t, r, "student", "student123", model.RoleStudent)

	// Students can read...
	w, _ = do(t, r, http.MethodGet, "/api/v1/records", student, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("student records view: %d %s", w.Code, w.Body.String())
	}
	w, _ = do(t, r, http.MethodGet, "/api/v1/analytics/summary", student, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("student analytics: %d %s", w.Code, w.Body.String())
	}

	// ...but never write.
	writes := []struct {
		method, path string
		body         interface{}
	}{
		{http.MethodPost, "/api/v1/attendance/mark", gin.H{"date": "2024-09-02", "student_id": "STU001", "present": true}},
		{http.MethodPost, "/api/v1/attendance/save", gin.H{"date": "2024-09-02"}},
		{http.MethodPost, "/api/v1/students", gin.H{"id": "X1", "name": "X"}},
		{http.MethodPut, "/api/v1/settings", gin.H{"settings": gin.H{"theme": "dark"}}},
		{http.MethodPost, "/api/v1/admin/reset-locks", nil},
	}
	for _, tc := range writes {
		w, env := do(t, r, tc.method, tc.path, student, tc.body)
		if w.Code != http.StatusForbidden || env.Error == nil || env.Error.Code != response.ErrForbidden {
			t.Fatalf("student %s %s: %d %s", tc.method, tc.path, w.Code, w.Body.String())
		}
	}
}

func TestLoginValidation(t *testing.T) {
	r := newTestRouter(t)

	// Unknown role fails binding, not authentication.
	w, env := do(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "admin", "password": "admin123", "role": "root",
	})
	if w.Code != http.StatusBadRequest || env.Error.Code != response.ErrValidation {
		t.Fatalf("unknown role: %d %s", w.Code, w.Body.String())
	}

	// Wrong password is a 401.
	w, env = do(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "admin", "password": "nope", "role": "admin",
	})
	if w.Code != http.StatusUnauthorized || env.Error.Code != response.ErrInvalidCredentials {
		t.Fatalf("bad password: %d %s", w.Code, w.Body.String())
	}
}

func TestRosterAndExportFlow(t *testing.T) {
	r := newTestRouter(t)
	admin := login(t, r, "admin", "admin123", model.RoleAdmin)

	// Add, then duplicate conflict.
	w, _ := do(t, r, http.MethodPost, "/api/v1/students", admin, gin.H{"id": "STU100", "name": "New Kid"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add student: %d %s", w.Code, w.Body.String())
	}
	w, env := do(t, r, http.MethodPost, "/api/v1/students", admin, gin.H{"id": "STU100", "name": "New Kid"})
	if w.Code != http.StatusConflict || env.Error.Code != response.ErrConflict {
		t.Fatalf("duplicate add: %d %s", w.Code, w.Body.String())
	}

	// Mark and remove; removal cascades out of the records.
	w, _ = do(t, r, http.MethodPost, "/api/v1/attendance/mark", admin, gin.H{
		"date": "2024-09-03", "student_id": "STU100", "present": true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("mark: %d %s", w.Code, w.Body.String())
	}
	w, _ = do(t, r, http.MethodDelete, "/api/v1/students/STU100", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("remove student: %d %s", w.Code, w.Body.String())
	}
	w, env = do(t, r, http.MethodGet, "/api/v1/records/STU100/stats", admin, nil)
	if w.Code != http.StatusNotFound || env.Error.Code != response.ErrNotFound {
		t.Fatalf("stats of removed student: %d %s", w.Code, w.Body.String())
	}

	// CSV download carries the attachment headers.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/export/csv", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("csv export: %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("csv content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd == "" {
		t.Fatal("csv export missing Content-Disposition")
	}
}

func TestPublicAndHealthEndpoints(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/health", "/api/v1/public/settings", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: %d", path, w.Code)
		}
	}
}
