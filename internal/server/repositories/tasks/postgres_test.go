package tasks

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
)

const (
	listQuery   = `(?s)^SELECT\s+id,\s*user_id,\s*title,\s*description,\s*completed,\s*created_at,\s*updated_at\s+FROM\s+tasks\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at,\s*id\s*$`
	insertQuery = `(?s)^INSERT\s+INTO\s+tasks\s*\(id,\s*user_id,\s*title,\s*description,\s*completed\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+created_at,\s*updated_at\s*$`
	getQuery    = `(?s)^SELECT\s+.*\s+FROM\s+tasks\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s*$`
	updateQuery = `(?s)^UPDATE\s+tasks\s+SET\s+title\s*=\s*\$1,\s*description\s*=\s*\$2,\s*completed\s*=\s*\$3,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$4\s+AND\s+user_id\s*=\s*\$5\s+RETURNING\s+updated_at\s*$`
	deleteQuery = `(?s)^DELETE\s+FROM\s+tasks\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s*$`
)

var taskColumns = []string{"id", "user_id", "title", "description", "completed", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func strPtr(s string) *string { return &s }

func TestList_OrderedAndScanned(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	t1 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	mock.ExpectQuery(listQuery).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow("01A", "u1", "Buy milk", nil, false, t1, t1).
			AddRow("01B", "u1", "Write report", "quarterly", true, t2, t2))

	got, err := repo.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []*models.Task{
		{ID: "01A", UserID: "u1", Title: "Buy milk", CreatedAt: t1, UpdatedAt: t1},
		{ID: "01B", UserID: "u1", Title: "Write report", Description: strPtr("quarterly"), Completed: true, CreatedAt: t2, UpdatedAt: t2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("List mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestList_EmptyIsNotNil(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(listQuery).WithArgs("u1").WillReturnRows(sqlmock.NewRows(taskColumns))

	got, err := repo.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}
}

func TestList_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(listQuery).WithArgs("u1").WillReturnError(errors.New("db down"))

	_, err := repo.List(context.Background(), "u1")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestList_RowError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(listQuery).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow("01A", "u1", "x", nil, false, now, now).
			RowError(0, errors.New("row broke")))

	if _, err := repo.List(context.Background(), "u1"); err == nil {
		t.Fatal("expected error")
	}
}

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(insertQuery).
		WithArgs("01A", "u1", "Buy milk", "2 litres", false).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	task := &models.Task{ID: "01A", UserID: "u1", Title: "Buy milk", Description: strPtr("2 litres")}
	if err := repo.Create(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !task.CreatedAt.Equal(now) || !task.UpdatedAt.Equal(now) {
		t.Fatalf("timestamps not filled: %+v", task)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).WillReturnError(errors.New("boom"))

	if err := repo.Create(context.Background(), &models.Task{ID: "01A", UserID: "u1", Title: "x"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestGet(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(getQuery).
		WithArgs("01A", "u1").
		WillReturnRows(sqlmock.NewRows(taskColumns).AddRow("01A", "u1", "Buy milk", nil, true, now, now))

	got, err := repo.Get(context.Background(), "u1", "01A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "Buy milk" || !got.Completed || got.Description != nil {
		t.Fatalf("unexpected task: %+v", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(getQuery).WithArgs("01A", "other").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "other", "01A")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	later := time.Now().Add(time.Second)
	mock.ExpectQuery(updateQuery).
		WithArgs("New title", nil, true, "01A", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(later))

	task := &models.Task{ID: "01A", UserID: "u1", Title: "New title", Completed: true}
	if err := repo.Update(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !task.UpdatedAt.Equal(later) {
		t.Fatalf("updated_at not refreshed: %+v", task)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(updateQuery).WillReturnError(sql.ErrNoRows)

	err := repo.Update(context.Background(), &models.Task{ID: "01A", UserID: "u1", Title: "x"})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(deleteQuery).WithArgs("01A", "u1").WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "u1", "01A"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(deleteQuery).WithArgs("01A", "u2").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "u2", "01A")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestDelete_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(deleteQuery).WillReturnError(errors.New("boom"))

	if err := repo.Delete(context.Background(), "u1", "01A"); err == nil || errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected db error, got %v", err)
	}
}
