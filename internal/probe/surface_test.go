package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func newSurfaceServer(t *testing.T, rootBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(rootBody))
	})
	mux.HandleFunc("/admin", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "/admin")
		w.WriteHeader(http.StatusFound)
	})
	mux.HandleFunc("/cpanel", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/.env", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/config.php", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	return httptest.NewServer(mux)
}

func TestSurfaceProbe_Scan(t *testing.T) {
	server := newSurfaceServer(t, "<html>welcome</html>")
	defer server.Close()

	p := NewSurfaceProbe(DefaultCatalogue(), zap.NewNop().Sugar())
	v := p.Scan(context.Background(), server.URL)

	// /admin (200), /login (302) and /cpanel (403) answered non-404;
	// the remaining six admin paths 404 and must be absent.
	if len(v.AdminInterfaces) != 3 {
		t.Fatalf("expected 3 admin findings, got %d: %+v", len(v.AdminInterfaces), v.AdminInterfaces)
	}
	for _, a := range v.AdminInterfaces {
		if a.Status == 0 || a.Status == http.StatusNotFound {
			t.Errorf("admin findings must never include status 0 or 404, got %+v", a)
		}
	}
	// Catalogue order: /admin before /login before /cpanel.
	if v.AdminInterfaces[0].Path != "/admin" || v.AdminInterfaces[1].Path != "/login" || v.AdminInterfaces[2].Path != "/cpanel" {
		t.Errorf("expected catalogue order preserved, got %+v", v.AdminInterfaces)
	}
	if !v.AdminInterfaces[0].Accessible {
		t.Error("status 200 should be accessible")
	}
	if !v.AdminInterfaces[1].Accessible {
		t.Error("status 302 should be accessible (< 400)")
	}
	if v.AdminInterfaces[2].Accessible {
		t.Error("status 403 should not be accessible")
	}

	// Sensitive files: only exact 200s. /config.php answered 403 -> excluded.
	if len(v.SensitiveFiles) != 1 {
		t.Fatalf("expected 1 sensitive file, got %d: %+v", len(v.SensitiveFiles), v.SensitiveFiles)
	}
	if v.SensitiveFiles[0].Path != "/.env" || v.SensitiveFiles[0].Status != http.StatusOK {
		t.Errorf("expected /.env with status 200, got %+v", v.SensitiveFiles[0])
	}

	if v.DirectoryIndexing {
		t.Error("expected no directory indexing for a normal page")
	}
}

func TestSurfaceProbe_DirectoryIndexingSignatures(t *testing.T) {
	for _, body := range []string{
		"<html><body><h1>Index of /</h1></body></html>",
		"<html><body>Directory Listing for /files</body></html>",
		"<html><head><title>Index of /backups</title></head></html>",
	} {
		server := newSurfaceServer(t, body)
		p := NewSurfaceProbe(DefaultCatalogue(), zap.NewNop().Sugar())
		v := p.Scan(context.Background(), server.URL)
		server.Close()

		if !v.DirectoryIndexing {
			t.Errorf("expected directory indexing detected for body %q", body)
		}
	}
}

func TestSurfaceProbe_UnreachableHostYieldsEmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	p := NewSurfaceProbe(DefaultCatalogue(), zap.NewNop().Sugar())
	v := p.Scan(context.Background(), server.URL)

	if v == nil {
		t.Fatal("expected a Vulnerabilities value even when every probe fails")
	}
	if len(v.AdminInterfaces) != 0 || len(v.SensitiveFiles) != 0 || v.DirectoryIndexing {
		t.Errorf("expected empty findings on a dead host, got %+v", v)
	}
}

func TestDefaultCatalogue_FixedBudget(t *testing.T) {
	c := DefaultCatalogue()
	if len(c.AdminPaths) != 9 {
		t.Errorf("expected 9 admin paths, got %d", len(c.AdminPaths))
	}
	if len(c.SensitiveFiles) != 11 {
		t.Errorf("expected 11 sensitive file paths, got %d", len(c.SensitiveFiles))
	}
	if len(c.IndexSignatures) != 3 {
		t.Errorf("expected 3 index signatures, got %d", len(c.IndexSignatures))
	}
}
