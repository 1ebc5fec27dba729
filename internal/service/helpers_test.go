package service

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/luct-report-api/internal/database"
	"github.com/noah-isme/luct-report-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func ptrUint(v uint) *uint {
	return &v
}

func ptrInt(v int) *int {
	return &v
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.ConnectSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type directoryFixture struct {
	lecturer      models.User
	otherLecturer models.User
	prl           models.User
	pl            models.User
	student       models.User
	course        models.Course
	class         models.Class
}

func seedDirectory(t *testing.T, db *gorm.DB) directoryFixture {
	t.Helper()

	fixture := directoryFixture{
		lecturer:      models.User{Name: "Lerato Mokoena", Username: "lecturer", Role: models.RoleLecturer},
		otherLecturer: models.User{Name: "Thabo Nkosi", Username: "lecturer2", Role: models.RoleLecturer},
		prl:           models.User{Name: "Palesa Letsie", Username: "prl", Role: models.RolePRL},
		pl:            models.User{Name: "Mpho Ramaili", Username: "pl", Role: models.RolePL},
		student:       models.User{Name: "Karabo Sello", Username: "student", Role: models.RoleStudent},
	}
	for _, user := range []*models.User{&fixture.lecturer, &fixture.otherLecturer, &fixture.prl, &fixture.pl, &fixture.student} {
		require.NoError(t, db.Create(user).Error)
	}

	fixture.course = models.Course{Name: "Data Structures", Code: "DS101", Semester: "2", Faculty: "FICT"}
	require.NoError(t, db.Create(&fixture.course).Error)

	scheduled := time.Date(2025, 3, 3, 8, 30, 0, 0, time.UTC)
	fixture.class = models.Class{
		CourseID:                fixture.course.ID,
		LecturerID:              fixture.lecturer.ID,
		ClassName:               "BSCSM Y2",
		Venue:                   "Hall 6",
		ScheduledTime:           &scheduled,
		TotalRegisteredStudents: 60,
	}
	require.NoError(t, db.Create(&fixture.class).Error)

	return fixture
}

func actorFor(user models.User) Actor {
	return Actor{ID: user.ID, Role: user.Role}
}

// stepClock hands out strictly increasing timestamps.
type stepClock struct {
	mu   sync.Mutex
	next time.Time
}

func newStepClock() *stepClock {
	return &stepClock{next: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next = c.next.Add(time.Second)
	return c.next
}
