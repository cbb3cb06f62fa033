// internal/update/update_test.go
package update

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func manifestServer(t *testing.T, version string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/manifest.json" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"version":     version,
			"downloadUrl": "https://example.org/infohud-" + version + ".tar.gz",
			"sha256":      "abc",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPChecker_NewVersion(t *testing.T) {
	srv := manifestServer(t, "1.1.0")
	c := NewHTTPChecker(srv.URL+"/manifest.json", "1.0.0")

	d, err := c.Check(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if d == nil || d.Version != "1.1.0" || !strings.HasSuffix(d.URL, "1.1.0.tar.gz") {
		t.Fatalf("unexpected descriptor: %+v", d)
	}
}

func TestHTTPChecker_Current(t *testing.T) {
	srv := manifestServer(t, "1.0.0")
	c := NewHTTPChecker(srv.URL+"/manifest.json", "1.0.0")

	d, err := c.Check(context.Background())
	if err != nil || d != nil {
		t.Fatalf("expected no update, got %+v, %v", d, err)
	}
}

func TestHTTPChecker_NotFound(t *testing.T) {
	srv := manifestServer(t, "9")
	c := NewHTTPChecker(srv.URL+"/missing", "1.0.0")

	d, err := c.Check(context.Background())
	if err != nil || d != nil {
		t.Fatalf("404 should mean no update, got %+v, %v", d, err)
	}
}

func TestHTTPChecker_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewHTTPChecker(srv.URL, "1").Check(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCommandApplier_IdempotentByVersion(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "runs")
	a, err := NewCommandApplier(`sh -c 'echo "$HUD_UPDATE_VERSION" >> `+marker+`'`, "1.0.0")
	if err != nil {
		t.Fatalf("NewCommandApplier: %v", err)
	}

	d := Descriptor{Version: "1.1.0", URL: "u"}
	for i := 0; i < 2; i++ {
		if err := a.Apply(context.Background(), d); err != nil {
			t.Fatalf("apply %d: %v", i, err)
		}
	}
	// running version is a no-op too
	if err := a.Apply(context.Background(), Descriptor{Version: "1.1.0"}); err != nil {
		t.Fatalf("reapply: %v", err)
	}

	b, _ := os.ReadFile(marker)
	if strings.Count(string(b), "1.1.0") != 1 {
		t.Fatalf("command ran %q", b)
	}
	if a.Applied() != "1.1.0" {
		t.Fatalf("applied=%s", a.Applied())
	}
}

func TestCommandApplier_FailureWrapsErrApply(t *testing.T) {
	a, _ := NewCommandApplier(`sh -c 'exit 1'`, "1.0.0")

	err := a.Apply(context.Background(), Descriptor{Version: "2.0.0"})
	if !errors.Is(err, ErrApply) {
		t.Fatalf("expected ErrApply, got %v", err)
	}
	if a.Applied() != "1.0.0" {
		t.Fatalf("failed apply must not record version")
	}
}
