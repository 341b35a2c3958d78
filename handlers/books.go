package handlers

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"bookhive/db"
	"bookhive/i18n"
	"bookhive/models"

	"go.uber.org/zap"
)

// ExportHeader is the first row of every export, and what import expects to skip.
var ExportHeader = []string{"ID", "Title", "Author", "Category", "Available"}

var (
	errMissingField = errors.New("missing form field")
	errInvalidID    = errors.New("book id is not an integer")
)

func parseBookID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.FormValue("book_id"))
	if raw == "" {
		return 0, errMissingField
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errInvalidID
	}
	return id, nil
}

func badRequestKey(err error) string {
	if errors.Is(err, errInvalidID) {
		return "InvalidBookID"
	}
	return "MissingBookFields"
}

func (h *Handler) AddBook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.renderTemplate(w, r, "add_book.html", nil)
		return
	}

	lang := i18n.DetectLanguage(r)
	fail := func(status int, key string) {
		h.renderStatus(w, r, status, "add_book.html", map[string]any{"Message": i18n.T(lang, key), "Failed": true})
	}

	id, err := parseBookID(r)
	if err != nil {
		fail(http.StatusBadRequest, badRequestKey(err))
		return
	}
	book := models.Book{
		ID:       id,
		Title:    strings.TrimSpace(r.FormValue("title")),
		Author:   strings.TrimSpace(r.FormValue("author")),
		Category: strings.TrimSpace(r.FormValue("category")),
	}
	if book.Title == "" || book.Author == "" || book.Category == "" {
		fail(http.StatusBadRequest, "MissingBookFields")
		return
	}

	err = h.books.Add(r.Context(), book)
	if errors.Is(err, db.ErrDuplicateID) {
		fail(http.StatusConflict, "DuplicateBookID")
		return
	}
	if err != nil {
		h.serverError(w, r, "add book", err)
		return
	}

	h.logger.Info("book added", zap.Int64("book_id", id), zap.String("request_id", GetRequestID(r.Context())))
	h.renderTemplate(w, r, "add_book.html", map[string]any{"Message": i18n.T(lang, "BookAdded")})
}

// bookAction is the shape shared by issue, return and delete: one book id in, one outcome message out.
type bookAction struct {
	heading    string
	path       string
	apply      func(ctx context.Context, id int64) error
	successKey string
	failureKey string
	failure    error
	failStatus int
}

func (h *Handler) IssueBook(w http.ResponseWriter, r *http.Request) {
	h.handleBookAction(w, r, bookAction{
		heading: "IssueBook",
		path:    "/admin/issue",
		apply: func(ctx context.Context, id int64) error {
			return h.books.SetAvailability(ctx, id, false)
		},
		successKey: "BookIssued",
		failureKey: "IssueFailed",
		failure:    db.ErrNotFoundOrWrongState,
		failStatus: http.StatusConflict,
	})
}

func (h *Handler) ReturnBook(w http.ResponseWriter, r *http.Request) {
	h.handleBookAction(w, r, bookAction{
		heading: "ReturnBook",
		path:    "/admin/return",
		apply: func(ctx context.Context, id int64) error {
			return h.books.SetAvailability(ctx, id, true)
		},
		successKey: "BookReturned",
		failureKey: "ReturnFailed",
		failure:    db.ErrNotFoundOrWrongState,
		failStatus: http.StatusConflict,
	})
}

func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	h.handleBookAction(w, r, bookAction{
		heading:    "DeleteBook",
		path:       "/admin/delete",
		apply:      h.books.Delete,
		successKey: "BookDeleted",
		failureKey: "BookNotFound",
		failure:    db.ErrNotFound,
		failStatus: http.StatusNotFound,
	})
}

func (h *Handler) handleBookAction(w http.ResponseWriter, r *http.Request, a bookAction) {
	data := map[string]any{"Heading": a.heading, "Action": a.path}
	if r.Method != http.MethodPost {
		h.renderTemplate(w, r, "book_action.html", data)
		return
	}

	lang := i18n.DetectLanguage(r)
	id, err := parseBookID(r)
	if err != nil {
		data["Message"] = i18n.T(lang, badRequestKey(err))
		data["Failed"] = true
		h.renderStatus(w, r, http.StatusBadRequest, "book_action.html", data)
		return
	}

	err = a.apply(r.Context(), id)
	if errors.Is(err, a.failure) {
		data["Message"] = i18n.T(lang, a.failureKey)
		data["Failed"] = true
		h.renderStatus(w, r, a.failStatus, "book_action.html", data)
		return
	}
	if err != nil {
		h.serverError(w, r, a.heading, err)
		return
	}

	h.logger.Info("book updated",
		zap.String("action", a.heading),
		zap.Int64("book_id", id),
		zap.String("request_id", GetRequestID(r.Context())),
	)
	data["Message"] = i18n.T(lang, a.successKey)
	h.renderTemplate(w, r, "book_action.html", data)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	books, err := h.books.Search(r.Context(), query)
	if err != nil {
		h.serverError(w, r, "search books", err)
		return
	}
	h.renderTemplate(w, r, "search.html", map[string]any{"Books": books, "Query": query})
}

// ExportBooks writes the catalog as CSV straight into the response.
func (h *Handler) ExportBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.List(r.Context())
	if err != nil {
		h.serverError(w, r, "list books", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=\"books_export.csv\"")

	if err := writeBooksCSV(w, books); err != nil {
		// Headers are already sent; all that is left is to record it.
		h.logger.Error("export books failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err),
		)
	}
}

func writeBooksCSV(out io.Writer, books []models.Book) error {
	writer := csv.NewWriter(out)
	writer.Write(ExportHeader)
	for _, b := range books {
		available := "No"
		if b.Available {
			available = "Yes"
		}
		writer.Write([]string{strconv.FormatInt(b.ID, 10), b.Title, b.Author, b.Category, available})
	}
	writer.Flush()
	return writer.Error()
}

func (h *Handler) ImportBooks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.renderTemplate(w, r, "import.html", nil)
		return
	}

	lang := i18n.DetectLanguage(r)
	fail := func(key string) {
		h.renderStatus(w, r, http.StatusBadRequest, "import.html", map[string]any{"Message": i18n.T(lang, key), "Failed": true})
	}

	file, _, err := r.FormFile("csv_file")
	if err != nil {
		fail("ErrorUploadingFile")
		return
	}
	defer file.Close()

	books, invalid, err := readBooksCSV(file)
	if err != nil {
		fail("EmptyOrInvalidCSV")
		return
	}

	added, skipped, err := h.books.Import(r.Context(), books)
	if err != nil {
		h.serverError(w, r, "import books", err)
		return
	}

	h.logger.Info("books imported",
		zap.Int("added", added),
		zap.Int("skipped", skipped+invalid),
		zap.String("request_id", GetRequestID(r.Context())),
	)
	h.renderTemplate(w, r, "import.html", map[string]any{
		"Message": fmt.Sprintf(i18n.T(lang, "ImportDone"), added, skipped+invalid),
	})
}

// readBooksCSV parses the export format. Rows that cannot be a book are
// counted in invalid rather than failing the whole file.
func readBooksCSV(in io.Reader) (books []models.Book, invalid int, err error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1

	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, 0, err
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			invalid++
			continue
		}
		if len(record) < 4 {
			invalid++
			continue
		}

		id, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
		if err != nil {
			invalid++
			continue
		}
		b := models.Book{
			ID:        id,
			Title:     strings.TrimSpace(record[1]),
			Author:    strings.TrimSpace(record[2]),
			Category:  strings.TrimSpace(record[3]),
			Available: true,
		}
		if b.Title == "" || b.Author == "" || b.Category == "" {
			invalid++
			continue
		}
		if len(record) > 4 && strings.EqualFold(strings.TrimSpace(record[4]), "No") {
			b.Available = false
		}
		books = append(books, b)
	}
	return books, invalid, nil
}
