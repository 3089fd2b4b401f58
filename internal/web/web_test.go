package web

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type formBinding struct {
	Title       string
	Alert       *struct{ Kind, Text string }
	Departments []struct{ Code, Name string }
	Programs    []struct{ ID, Name string }
	Courses     []struct{ ID, Name string }
	Baskets     []struct{ ID, Name string }
	Semesters   []int
	Form        struct {
		DepartmentCode string
		Semester       int
		CourseID       string
		CourseName     string
		BasketID       string
		Programs       map[string]bool
	}
}

func TestEngine_RendersOfferingForm(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	var b formBinding
	b.Title = "Course Offering"
	b.Alert = &struct{ Kind, Text string }{"error", "Database Error: <boom>"}
	b.Departments = []struct{ Code, Name string }{{"CS", "Computer Science"}}
	b.Programs = []struct{ ID, Name string }{{"P1", "BSc Computing"}, {"P2", "BSc Physics"}}
	b.Courses = []struct{ ID, Name string }{{"C1", "Algorithms"}}
	b.Semesters = []int{1, 2, 3}
	b.Form.Semester = 3
	b.Form.DepartmentCode = "CS"
	b.Form.Programs = map[string]bool{"P2": true}

	var out bytes.Buffer
	require.NoError(t, engine.Render(&out, "offering_form", b, Layout))
	html := out.String()

	assert.Contains(t, html, "<title>Course Offering</title>")
	assert.Contains(t, html, `class="alert error"`)
	assert.Contains(t, html, "Database Error: &lt;boom&gt;")
	assert.Contains(t, html, `<option value="CS" selected>Computer Science</option>`)
	assert.Contains(t, html, `<option value="3" selected>S3</option>`)
	assert.Contains(t, html, `data-id="C1" value="Algorithms"`)
	assert.Contains(t, html, `name="program_ids[]" value="P1"`)
	assert.Contains(t, html, `class="list-row selected"`)
}
