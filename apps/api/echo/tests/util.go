package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/classtrack/apps/api/echo"
	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/assignment"
	"github.com/trezcool/classtrack/core/attendance"
	"github.com/trezcool/classtrack/core/communication"
	"github.com/trezcool/classtrack/core/grade"
	"github.com/trezcool/classtrack/core/report"
	"github.com/trezcool/classtrack/core/student"
	"github.com/trezcool/classtrack/services/email"
	"github.com/trezcool/classtrack/tests"
)

var (
	errStudentNotFound    = httpErr{Error: student.ErrNotFound.Error()}
	errAssignmentNotFound = httpErr{Error: assignment.ErrNotFound.Error()}
	errGradeNotFound      = httpErr{Error: grade.ErrNotFound.Error()}
	errRecordNotFound     = httpErr{Error: attendance.ErrNotFound.Error()}
	errCommNotFound       = httpErr{Error: communication.ErrNotFound.Error()}
)

// newDeps wires the services over fresh in-memory repositories.
func newDeps(t *testing.T) (ServerDeps, testutil.Repos) {
	conf := core.NewTestConfig()
	logger := testutil.Logger{T: t}

	// set up repos
	repos := testutil.NewRepos()

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	core.ParseEmailTemplates(conf, logger)
	emailsvc.ClearSentMessages()

	// set up validators
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)
	communication.InitValidators(validate, translator)

	return ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,

		StudentSvc:       student.NewService(repos.Students),
		AssignmentSvc:    assignment.NewService(repos.Assignments),
		GradeSvc:         grade.NewService(repos.Grades, repos.Students, repos.Assignments),
		AttendanceSvc:    attendance.NewService(repos.Attendance, repos.Students),
		CommunicationSvc: communication.NewService(repos.Communications, repos.Students, mailSvc),
		ReportSvc:        report.NewService(conf, repos.Students, repos.Assignments, repos.Grades, repos.Attendance),
	}, repos
}

func newServer(t *testing.T, deps ServerDeps) Server {
	srv := NewServer(deps)
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func setup(t *testing.T) (Server, testutil.Repos) {
	deps, repos := newDeps(t)
	return newServer(t, deps), repos
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		assert.Empty(t, rec.Body.Bytes())
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// runHTTPTests serves every test case in order against srv.
func runHTTPTests(t *testing.T, srv Server, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			srv.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
