package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var csrfTokenPattern = regexp.MustCompile(`name="gorilla.csrf.Token" value="([^"]+)"`)

// formSession fetches the new-book form and returns its CSRF token and cookies.
func formSession(t *testing.T, app *testApp) (string, []*http.Cookie) {
	t.Helper()
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/new-book", nil))
	require.Equal(t, http.StatusOK, w.Code)

	match := csrfTokenPattern.FindStringSubmatch(w.Body.String())
	require.Len(t, match, 2, "form carries a CSRF token")
	return match[1], w.Result().Cookies()
}

func getPage(t *testing.T, app *testApp, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	return w
}

func postForm(t *testing.T, app *testApp, values url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	return w
}

func TestUIController_BooksPage(t *testing.T) {
	t.Run("lists books", func(t *testing.T) {
		app := setupTestApp(t, nil)
		app.seed(t, "Clean Code")
		app.seed(t, "Atomic Habits")

		w := getPage(t, app, "/", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, `href="/books/clean-code"`)
		assert.Contains(t, body, `href="/books/atomic-habits"`)
		assert.Contains(t, body, "2 books in the catalog")
		assert.Contains(t, body, "4.5 / 5")
	})

	t.Run("empty catalog", func(t *testing.T) {
		app := setupTestApp(t, nil)

		w := getPage(t, app, "/", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "No books yet")
	})
}

func TestUIController_BookPage(t *testing.T) {
	t.Run("renders the book", func(t *testing.T) {
		app := setupTestApp(t, nil)
		app.seed(t, "Clean Code")

		w := getPage(t, app, "/books/clean-code", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Robert C. Martin")
		assert.Contains(t, w.Body.String(), "9780132350884")
	})

	t.Run("returns 404 for nonexistent book", func(t *testing.T) {
		app := setupTestApp(t, nil)

		w := getPage(t, app, "/books/missing", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Book not found")
	})

	t.Run("returns 400 for malformed slug", func(t *testing.T) {
		app := setupTestApp(t, nil)

		w := getPage(t, app, "/books/Clean-Code", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUIController_CreateBook(t *testing.T) {
	t.Run("redirects to the new book with a flash message", func(t *testing.T) {
		app := setupTestApp(t, nil)
		token, cookies := formSession(t, app)

		values := url.Values(validFormFields("Clean Code"))
		values.Set("gorilla.csrf.Token", token)
		w := postForm(t, app, values, cookies)

		require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
		assert.Equal(t, "/books/clean-code", w.Header().Get("Location"))

		cookies = append(cookies, w.Result().Cookies()...)
		page := getPage(t, app, "/books/clean-code", cookies)
		assert.Contains(t, page.Body.String(), createdFlash)

		again := getPage(t, app, "/books/clean-code", cookies)
		assert.NotContains(t, again.Body.String(), createdFlash)
	})

	t.Run("re-renders the form on validation errors", func(t *testing.T) {
		app := setupTestApp(t, nil)
		token, cookies := formSession(t, app)

		values := url.Values(validFormFields("Clean Code"))
		values.Set("rating", "7")
		values.Set("gorilla.csrf.Token", token)
		w := postForm(t, app, values, cookies)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "must be less than or equal to 5")
		assert.Contains(t, body, `value="Clean Code"`, "submitted values are kept")
		assert.Regexp(t, csrfTokenPattern, body)
	})

	t.Run("asks for a cover when none is given", func(t *testing.T) {
		app := setupTestApp(t, nil)
		token, cookies := formSession(t, app)

		values := url.Values(validFormFields("Clean Code"))
		values.Del("coverImageUrl")
		values.Set("gorilla.csrf.Token", token)
		w := postForm(t, app, values, cookies)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `<span class="field-error">is required</span>`)
	})

	t.Run("rejects a post without CSRF token", func(t *testing.T) {
		app := setupTestApp(t, nil)

		w := postForm(t, app, url.Values(validFormFields("Clean Code")), nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
		list := doJSON(t, app, http.MethodGet, "/api/books", nil)
		assert.Equal(t, []any{}, decodeBody(t, list)["books"])
	})
}
