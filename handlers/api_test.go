package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"bookhive/models"
)

func decodeBooks(t *testing.T, res result) []models.Book {
	t.Helper()
	var resp struct {
		Status string        `json:"status"`
		Data   []models.Book `json:"data"`
	}
	if err := json.Unmarshal([]byte(res.Body), &resp); err != nil {
		t.Fatalf("Invalid JSON %q: %v", res.Body, err)
	}
	if resp.Status != "success" {
		t.Errorf("Expected success status, got %s", resp.Status)
	}
	return resp.Data
}

func TestAPIListBooks(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	app.books.Add(ctx, models.Book{ID: 1, Title: "Dune", Author: "Herbert", Category: "SF"})
	app.books.Add(ctx, models.Book{ID: 2, Title: "Emma", Author: "Austen", Category: "Classic"})
	app.loginAdmin()

	res := app.get("/api/v1/books")
	expectStatus(t, res, http.StatusOK)
	if ct := res.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %s", ct)
	}
	books := decodeBooks(t, res)
	if len(books) != 2 || books[0].Title != "Dune" || !books[1].Available {
		t.Errorf("Unexpected books %+v", books)
	}
}

func TestAPISearchBooks(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	app.books.Add(ctx, models.Book{ID: 7, Title: "Seven", Author: "A", Category: "C"})
	app.books.Add(ctx, models.Book{ID: 70, Title: "Agent 7", Author: "B", Category: "C"})
	app.loginStudent()

	books := decodeBooks(t, app.get("/api/v1/search?query=7"))
	if len(books) != 1 || books[0].ID != 7 {
		t.Errorf("Expected only book 7, got %+v", books)
	}

	books = decodeBooks(t, app.get("/api/v1/search?query=zzz"))
	if len(books) != 0 {
		t.Errorf("Expected an empty list, got %+v", books)
	}
}

func TestAPIUnauthorized(t *testing.T) {
	app := newTestApp(t)

	res := app.get("/api/v1/books")
	expectStatus(t, res, http.StatusUnauthorized)
	expectBody(t, res, `"status":"error"`)

	app.loginStudent()
	expectStatus(t, app.get("/api/v1/books"), http.StatusUnauthorized)
	expectStatus(t, app.get("/api/v1/search?query=x"), http.StatusOK)
}
