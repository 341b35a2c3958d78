package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bookhive/models"

	"github.com/mattn/go-sqlite3"
)

const bookColumns = "id, title, author, category, available"

// BookStore is the catalog. Every operation reads or writes whole rows.
type BookStore struct {
	db *sql.DB
}

func NewBookStore(conn *sql.DB) *BookStore {
	return &BookStore{db: conn}
}

// Add inserts a new, available book. An existing id is left untouched and ErrDuplicateID returned.
func (s *BookStore) Add(ctx context.Context, b models.Book) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO books (id, title, author, category, available) VALUES (?, ?, ?, ?, 1)",
		b.ID, b.Title, b.Author, b.Category)
	if err != nil {
		if isConstraint(err, sqlite3.ErrConstraintPrimaryKey) || isConstraint(err, sqlite3.ErrConstraintUnique) {
			return ErrDuplicateID
		}
		return fmt.Errorf("add book %d: %w", b.ID, err)
	}
	return nil
}

func (s *BookStore) Get(ctx context.Context, id int64) (models.Book, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+bookColumns+" FROM books WHERE id = ?", id)
	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Book{}, ErrNotFound
	}
	if err != nil {
		return models.Book{}, fmt.Errorf("get book %d: %w", id, err)
	}
	return b, nil
}

func (s *BookStore) List(ctx context.Context) ([]models.Book, error) {
	return s.query(ctx, "SELECT "+bookColumns+" FROM books ORDER BY id")
}

// SetAvailability flips the flag only if it currently holds the opposite
// value, so two concurrent issues of the same book cannot both succeed.
func (s *BookStore) SetAvailability(ctx context.Context, id int64, available bool) error {
	result, err := s.db.ExecContext(ctx, "UPDATE books SET available = ? WHERE id = ? AND available = ?",
		boolToInt(available), id, boolToInt(!available))
	if err != nil {
		return fmt.Errorf("set availability of book %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFoundOrWrongState
	}
	return nil
}

func (s *BookStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM books WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Search treats an all-digit query as an exact id lookup and anything else
// as a case-insensitive substring of title, author or category.
func (s *BookStore) Search(ctx context.Context, query string) ([]models.Book, error) {
	query = strings.TrimSpace(query)

	if isDigits(query) {
		id, err := strconv.ParseInt(query, 10, 64)
		if err != nil {
			// Too large to be any book's id.
			return []models.Book{}, nil
		}
		return s.query(ctx, "SELECT "+bookColumns+" FROM books WHERE id = ?", id)
	}

	pattern := "%" + escapeLike(query) + "%"
	return s.query(ctx, `SELECT `+bookColumns+` FROM books
		WHERE LOWER(title) LIKE LOWER(?) ESCAPE '\'
		   OR LOWER(author) LIKE LOWER(?) ESCAPE '\'
		   OR LOWER(category) LIKE LOWER(?) ESCAPE '\'
		ORDER BY id`, pattern, pattern, pattern)
}

// Import adds every book whose id is not yet taken, in one transaction.
// Books already present are counted as skipped and left unchanged.
func (s *BookStore) Import(ctx context.Context, books []models.Book) (added, skipped int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO books (id, title, author, category, available) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return 0, 0, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	for _, b := range books {
		result, err := stmt.ExecContext(ctx, b.ID, b.Title, b.Author, b.Category, boolToInt(b.Available))
		if err != nil {
			return 0, 0, fmt.Errorf("import book %d: %w", b.ID, err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			skipped++
			continue
		}
		added++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit import: %w", err)
	}
	return added, skipped, nil
}

func (s *BookStore) query(ctx context.Context, query string, args ...any) ([]models.Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	books := []models.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(row scanner) (models.Book, error) {
	var b models.Book
	var available int
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Category, &available); err != nil {
		return models.Book{}, err
	}
	b.Available = available == 1
	return b, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
