package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/veza-labs/worksim/apps/api/echo"
	"github.com/veza-labs/worksim/core"
	"github.com/veza-labs/worksim/core/learner"
	"github.com/veza-labs/worksim/core/simulation"
	auditsvc "github.com/veza-labs/worksim/services/audit"
	blobsvc "github.com/veza-labs/worksim/services/blobstore"
	logsvc "github.com/veza-labs/worksim/services/logger"
	notifsvc "github.com/veza-labs/worksim/services/notifier"
	dummydb "github.com/veza-labs/worksim/storage/database/dummy"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

func newTestConfig(t *testing.T) *core.Config {
	return &core.Config{
		Env:          "TEST",
		TestMode:     true,
		AppName:      "Worksim",
		SecretKey:    "secret",
		MediaRoot:    t.TempDir(),
		MediaBaseURL: "http://localhost:8000/media",
		Server:       core.ServerConfig{JWTExpirationDelta: time.Hour},
	}
}

func setup(t *testing.T) (*core.Config, *dummydb.DB, Server) {
	return setupWithTaskRepo(t, nil)
}

// setupWithTaskRepo substitutes the task store; a nil taskRepo keeps the
// in-memory one.
func setupWithTaskRepo(t *testing.T, taskRepo simulation.TaskRepository) (*core.Config, *dummydb.DB, Server) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}

	conf := newTestConfig(t)
	logger := logsvc.NewStdLogger(log.New(io.Discard, "", 0))

	simRepo := dummydb.NewSimulationRepository(db)
	if taskRepo == nil {
		taskRepo = dummydb.NewTaskRepository(db)
	}
	subRepo := dummydb.NewSubmissionRepository(db)
	enrRepo := dummydb.NewEnrollmentRepository(db)
	certRepo := dummydb.NewCertificateRepository(db)
	skillRepo := dummydb.NewSkillRepository(db)
	learnerRepo := dummydb.NewLearnerRepository(db)

	issuer := simulation.NewIssuer(conf, nil, logger, notifsvc.NewConsoleServiceMock(conf), simRepo, enrRepo, certRepo, skillRepo, learnerRepo)
	simSvc := simulation.NewService(conf, logger, auditsvc.NewLogSink(logger), simRepo, taskRepo, subRepo, enrRepo, issuer)

	server := NewServer(
		&Options{
			Conf:           conf,
			Logger:         logger,
			DisableReqLogs: true,
			SimulationSvc:  simSvc,
			Issuer:         issuer,
			BlobStore:      blobsvc.NewFileSystemStore(conf),
		},
	)
	return conf, db, server
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newUploadRequest(t *testing.T, path, token, filename string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() failed: %v", err)
	}
	if _, err = fw.Write(content); err != nil {
		t.Fatalf("writing form file failed: %v", err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("closing multipart writer failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, conf *core.Config, lrn learner.Learner) string {
	claims := GetLearnerClaims(conf, lrn)
	token, err := GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
