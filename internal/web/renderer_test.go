package web

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sakif/inkwell/internal/model"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	rn, err := NewRenderer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	return rn
}

func TestRender_EveryPageParses(t *testing.T) {
	// NewRenderer parses all templates eagerly, so constructing it at all
	// proves every page and the layout are syntactically valid.
	rn := newTestRenderer(t)

	if len(rn.pages) == 0 {
		t.Fatal("no page templates were parsed")
	}
	if _, ok := rn.pages["layout.html"]; ok {
		t.Error("layout.html must not be a standalone page")
	}
}

func TestRender_WrapsInLayout(t *testing.T) {
	rn := newTestRenderer(t)

	req := httptest.NewRequest(http.MethodGet, "/about", nil)
	rr := httptest.NewRecorder()

	rn.Render(rr, req, http.StatusOK, "about.html", &PageData{Title: "About"})

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "<nav>") {
		t.Error("layout nav missing from output")
	}
	if !strings.Contains(body, "<title>About · Inkwell</title>") {
		t.Errorf("title not rendered, body starts: %.120s", body)
	}
}

func TestRender_ShowsLoggedInUser(t *testing.T) {
	rn := newTestRenderer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	rn.Render(rr, req, http.StatusOK, "about.html", &PageData{
		User: &model.User{Name: "Ada", Role: model.RoleAdmin},
	})

	body := rr.Body.String()
	if !strings.Contains(body, "Log Out") {
		t.Error("logged-in nav missing Log Out link")
	}
	if !strings.Contains(body, "New Post") {
		t.Error("admin nav missing New Post link")
	}
	if strings.Contains(body, `href="/login"`) {
		t.Error("logged-in nav still shows Log In")
	}
}

func TestRender_PopsFlash(t *testing.T) {
	rn := newTestRenderer(t)

	// Simulate the cookie a previous redirect set.
	setRR := httptest.NewRecorder()
	SetFlash(setRR, "Incorrect email or password.")

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(setRR.Result().Cookies()[0])
	rr := httptest.NewRecorder()

	rn.Render(rr, req, http.StatusOK, "about.html", &PageData{})

	if !strings.Contains(rr.Body.String(), "Incorrect email or password.") {
		t.Error("flash message not rendered")
	}
}

func TestRender_UnknownPageIs500(t *testing.T) {
	rn := newTestRenderer(t)

	rr := httptest.NewRecorder()
	rn.Render(rr, httptest.NewRequest(http.MethodGet, "/", nil),
		http.StatusOK, "no-such-page.html", nil)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
}

func TestRawFunc_OnlyWhereAsked(t *testing.T) {
	rn := newTestRenderer(t)

	// post.html pipes the body through "raw" but escapes everything else.
	post := &model.Post{
		Title:    "<b>Title</b>",
		Subtitle: "sub",
		Date:     "August 31, 2026",
		Body:     "<em>rich</em>",
		Author:   &model.User{Name: "Ada"},
	}

	req := httptest.NewRequest(http.MethodGet, "/post/x", nil)
	rr := httptest.NewRecorder()
	rn.Render(rr, req, http.StatusOK, "post.html", &PageData{Title: post.Title, Data: post})

	body := rr.Body.String()
	if !strings.Contains(body, "<em>rich</em>") {
		t.Error("sanitized body was escaped instead of rendered")
	}
	if strings.Contains(body, "<b>Title</b>") {
		t.Error("title was NOT escaped — raw leaked beyond the body")
	}
}
