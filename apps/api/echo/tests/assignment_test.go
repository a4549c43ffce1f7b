package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/classtrack/core"
	"github.com/trezcool/classtrack/core/assignment"
	"github.com/trezcool/classtrack/core/student"
	"github.com/trezcool/classtrack/tests"
)

func TestAssignmentAPI(t *testing.T) {
	srv, repos := setup(t)
	quiz := testutil.CreateAssignment(t, repos.Assignments, "Quiz 1", 20, 0.5, core.NewDate(2024, time.February, 20))

	essay := assignment.Assignment{
		ID:       2,
		Title:    "Essay",
		Category: "Writing",
		Points:   50,
		Weight:   assignment.DefaultWeight,
		DueDate:  core.NewDate(2024, time.March, 1),
	}
	reweighted := essay
	reweighted.Weight = 2
	reweighted.Category = ""

	runHTTPTests(t, srv, []httpTest{
		{
			name:     "create",
			method:   http.MethodPost,
			path:     "/api/assignments",
			body:     []byte(`{"title":"Essay","category":"Writing","points":50,"dueDate":"2024-03-01"}`),
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, essay),
		},
		{
			name:     "create invalid",
			method:   http.MethodPost,
			path:     "/api/assignments",
			body:     []byte(`{"title":"  ","weight":-1}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"title":  "this field is required",
				"points": "this field is required",
				"weight": "weight must be 0 or greater",
			}),
		},
		{
			name:     "query by due date",
			method:   http.MethodGet,
			path:     "/api/assignments",
			wantCode: http.StatusOK,
			wantData: marchallList(t, quiz, essay),
		},
		{
			name:     "query by category",
			method:   http.MethodGet,
			path:     "/api/assignments?category=writing",
			wantCode: http.StatusOK,
			wantData: marchallList(t, essay),
		},
		{
			name:     "query ordering",
			method:   http.MethodGet,
			path:     "/api/assignments?ordering=-points",
			wantCode: http.StatusOK,
			wantData: marchallList(t, essay, quiz),
		},
		{
			name:     "update",
			method:   http.MethodPut,
			path:     "/api/assignments/2",
			body:     []byte(`{"weight":2,"category":""}`),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, reweighted),
		},
		{
			name:     "update invalid",
			method:   http.MethodPut,
			path:     "/api/assignments/2",
			body:     []byte(`{"points":0}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"points": "points must be greater than 0"}),
		},
		{
			name:     "retrieve unknown",
			method:   http.MethodGet,
			path:     "/api/assignments/9",
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, errAssignmentNotFound),
		},
		{
			name:     "destroy multiple",
			method:   http.MethodDelete,
			path:     "/api/assignments?id=1",
			wantCode: http.StatusNoContent,
		},
		{
			name:     "destroy",
			method:   http.MethodDelete,
			path:     "/api/assignments/2",
			wantCode: http.StatusNoContent,
		},
		{
			name:     "all destroyed",
			method:   http.MethodGet,
			path:     "/api/assignments",
			wantCode: http.StatusOK,
			wantData: marchallList(t),
		},
	})
}

func TestAssignmentAPI_DestroyCascadesGrades(t *testing.T) {
	srv, repos := setup(t)
	ada := testutil.CreateStudent(t, repos.Students, "Ada", "Lovelace", "11th Grade", student.StatusActive)
	essay := testutil.CreateAssignment(t, repos.Assignments, "Essay", 50, 1, core.NewDate(2024, time.March, 1))
	g := testutil.CreateGrade(t, repos.Grades, ada.ID, essay.ID, testutil.Score(40))

	runHTTPTests(t, srv, []httpTest{
		{
			name:     "grade exists",
			method:   http.MethodGet,
			path:     "/api/grades",
			wantCode: http.StatusOK,
			wantData: marchallList(t, g),
		},
		{
			name:     "destroy assignment",
			method:   http.MethodDelete,
			path:     "/api/assignments/1",
			wantCode: http.StatusNoContent,
		},
		{
			name:     "grade is gone",
			method:   http.MethodGet,
			path:     "/api/grades",
			wantCode: http.StatusOK,
			wantData: marchallList(t),
		},
	})
}
