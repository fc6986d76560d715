//go:build integration

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"product-inventory/internal/products"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testDBName = "test_products"
	testDBUser = "test"
	testDBPass = "test"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:17-alpine"),
		postgres.WithDatabase(testDBName),
		postgres.WithUsername(testDBUser),
		postgres.WithPassword(testDBPass),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}

	m, err := migrate.New("file://"+migrationsDir(t), connStr)
	if err != nil {
		t.Fatalf("init migrate: %v", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("run migrations: %v", err)
	}
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		t.Fatalf("close migrate source: %v", srcErr)
	}
	if dbErr != nil {
		t.Fatalf("close migrate db: %v", dbErr)
	}

	return db
}

func migrationsDir(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file path")
	}
	return filepath.Join(filepath.Dir(filename), "..", "..", "..", "migrations", "products")
}

func input(article string) products.Input {
	return products.Input{Article: article, Name: "Item " + article, Price: 100, Quantity: intPtr(1)}
}

func intPtr(n int) *int { return &n }

func TestPostgresRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgres(db)
	ctx := context.Background()

	t.Run("creates product and returns it", func(t *testing.T) {
		p, err := repo.Create(ctx, products.Input{Article: "LAP-1", Name: "Laptop", Price: 1200, Quantity: intPtr(0)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ID == 0 {
			t.Fatal("expected non-zero ID")
		}
		if p.Article != "LAP-1" || p.Name != "Laptop" || p.Price != 1200 || p.Quantity != 0 {
			t.Fatalf("unexpected product %+v", p)
		}
		if p.CreatedAt.IsZero() {
			t.Fatal("expected non-zero created_at")
		}
	})

	t.Run("auto-increments IDs", func(t *testing.T) {
		p1, _ := repo.Create(ctx, input("A"))
		p2, _ := repo.Create(ctx, input("B"))
		if p2.ID <= p1.ID {
			t.Fatalf("expected p2.ID > p1.ID, got %d <= %d", p2.ID, p1.ID)
		}
	})

	t.Run("duplicate article returns ErrDuplicateArticle", func(t *testing.T) {
		if _, err := repo.Create(ctx, input("DUP")); err != nil {
			t.Fatalf("seed: %v", err)
		}
		_, err := repo.Create(ctx, input("DUP"))
		if !errors.Is(err, products.ErrDuplicateArticle) {
			t.Fatalf("want ErrDuplicateArticle, got %v", err)
		}

		var count int
		if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE article = 'DUP'`).Scan(&count); err != nil {
			t.Fatalf("count: %v", err)
		}
		if count != 1 {
			t.Fatalf("want exactly one DUP row, got %d", count)
		}
	})
}

func TestPostgresRepository_GetByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgres(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, input("GET-1"))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	t.Run("round-trips created fields", func(t *testing.T) {
		got, err := repo.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Article != created.Article || got.Name != created.Name ||
			got.Price != created.Price || got.Quantity != created.Quantity {
			t.Fatalf("want %+v, got %+v", created, got)
		}
		if !got.CreatedAt.Equal(created.CreatedAt) {
			t.Fatalf("want created_at %v, got %v", created.CreatedAt, got.CreatedAt)
		}
	})

	t.Run("missing id returns ErrNotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 999999)
		if !errors.Is(err, products.ErrNotFound) {
			t.Fatalf("want ErrNotFound, got %v", err)
		}
	})
}

func TestPostgresRepository_FindByArticle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgres(db)
	ctx := context.Background()

	created, _ := repo.Create(ctx, input("FIND-1"))

	got, err := repo.FindByArticle(ctx, "FIND-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("want id %d, got %d", created.ID, got.ID)
	}

	if _, err := repo.FindByArticle(ctx, "nope"); !errors.Is(err, products.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestPostgresRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgres(db)
	ctx := context.Background()

	first, _ := repo.Create(ctx, input("UPD-1"))
	second, _ := repo.Create(ctx, input("UPD-2"))

	t.Run("updates mutable columns only", func(t *testing.T) {
		err := repo.Update(ctx, first.ID, products.Input{Article: "UPD-1", Name: "Renamed", Price: 7, Quantity: intPtr(9)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, _ := repo.GetByID(ctx, first.ID)
		if got.Name != "Renamed" || got.Price != 7 || got.Quantity != 9 {
			t.Fatalf("update not applied: %+v", got)
		}
		if !got.CreatedAt.Equal(first.CreatedAt) {
			t.Fatalf("created_at changed: %v -> %v", first.CreatedAt, got.CreatedAt)
		}
	})

	t.Run("taking another row's article returns ErrDuplicateArticle", func(t *testing.T) {
		err := repo.Update(ctx, second.ID, input("UPD-1"))
		if !errors.Is(err, products.ErrDuplicateArticle) {
			t.Fatalf("want ErrDuplicateArticle, got %v", err)
		}
	})

	t.Run("missing id returns ErrNotFound", func(t *testing.T) {
		err := repo.Update(ctx, 999999, input("UPD-X"))
		if !errors.Is(err, products.ErrNotFound) {
			t.Fatalf("want ErrNotFound, got %v", err)
		}
	})
}

func TestPostgresRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgres(db)
	ctx := context.Background()

	t.Run("deletes existing product", func(t *testing.T) {
		p, _ := repo.Create(ctx, input("DEL-1"))
		if err := repo.Delete(ctx, p.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := repo.GetByID(ctx, p.ID); !errors.Is(err, products.ErrNotFound) {
			t.Fatalf("want ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("returns ErrNotFound for non-existent ID", func(t *testing.T) {
		err := repo.Delete(ctx, 999999)
		if !errors.Is(err, products.ErrNotFound) {
			t.Fatalf("want ErrNotFound, got %v", err)
		}
	})

	t.Run("second delete returns ErrNotFound", func(t *testing.T) {
		p, _ := repo.Create(ctx, input("DEL-2"))
		_ = repo.Delete(ctx, p.ID)
		err := repo.Delete(ctx, p.ID)
		if !errors.Is(err, products.ErrNotFound) {
			t.Fatalf("want ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestPostgresRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgres(db)
	ctx := context.Background()

	for i := 1; i <= 15; i++ {
		if _, err := repo.Create(ctx, input(fmt.Sprintf("L-%02d", i))); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	t.Run("ordered by id ASC", func(t *testing.T) {
		list, _ := repo.List(ctx, 100, 0)
		for i := 1; i < len(list); i++ {
			if list[i].ID <= list[i-1].ID {
				t.Fatalf("expected ascending order, got id %d after %d", list[i].ID, list[i-1].ID)
			}
		}
	})

	t.Run("second page of ten holds the last five", func(t *testing.T) {
		list, err := repo.List(ctx, 10, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(list) != 5 {
			t.Fatalf("want 5 items, got %d", len(list))
		}
		total, _ := repo.Count(ctx)
		if total != 15 {
			t.Fatalf("want total 15, got %d", total)
		}
	})

	t.Run("empty result returns empty slice", func(t *testing.T) {
		list, _ := repo.List(ctx, 10, 1000)
		if list == nil {
			t.Fatal("expected non-nil empty slice")
		}
		if len(list) != 0 {
			t.Fatalf("want 0 items, got %d", len(list))
		}
	})
}

func TestPostgresRepository_Health(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgres(db)

	if err := repo.Health(); err != nil {
		t.Fatalf("health check failed: %v", err)
	}
}
