package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/shop4me/ARVA-sub000/internal/catalog"
	"github.com/shop4me/ARVA-sub000/internal/raster"
	"github.com/shop4me/ARVA-sub000/internal/runlock"
	"github.com/shop4me/ARVA-sub000/internal/testsupport"
)

// newEditServer fakes the image edit endpoint, always answering with img.
func newEditServer(t *testing.T, img *raster.Image) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	data, err := raster.PNGBytes(img)
	if err != nil {
		t.Fatalf("encode candidate: %v", err)
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/images/edits" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"created": 1,
			"data":    []map[string]string{{"b64_json": encoded}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

var brickRed = catalog.FabricOption{Name: "Brick Red", Hex: testsupport.TargetHex}

func TestGeneratePublishesAndRecordsHistory(t *testing.T) {
	srv, calls := newEditServer(t, testsupport.GoodCandidate())
	env := setupCLITestEnv(t, testsupport.WithSlugs("atlas-sectional"), testsupport.WithImageEditURL(srv.URL+"/v1"))
	testsupport.WriteProduct(t, env.cfg, "atlas-sectional", brickRed)

	out, _, err := runCLI(t, []string{"generate"}, env.configPath)
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 edit call, got %d", calls.Load())
	}
	requireContains(t, out, "Published")
	requireContains(t, out, "[OK]")

	published := filepath.Join(env.cfg.Paths.PublicDir, filepath.FromSlash(catalog.VariantPath("atlas-sectional", "Brick Red")))
	if _, err := os.Stat(published); err != nil {
		t.Fatalf("expected published variant: %v", err)
	}
	if _, err := os.Stat(env.cfg.Paths.VariantLog); err != nil {
		t.Fatalf("expected variant log: %v", err)
	}

	out, _, err = runCLI(t, []string{"history", "--slug", "atlas-sectional"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "Brick Red")
	requireContains(t, out, "published")

	// A second run keeps the passing variant without calling the API.
	out, _, err = runCLI(t, []string{"generate"}, env.configPath)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected no new edit calls, got %d", calls.Load())
	}

	out, _, err = runCLI(t, []string{"history", "--stats"}, env.configPath)
	if err != nil {
		t.Fatalf("history --stats: %v", err)
	}
	requireContains(t, out, "skipped")
	requireContains(t, out, "published")
}

func TestGenerateDryRunSkipsClientAndHistory(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithSlugs("atlas-sectional"))
	testsupport.WriteProduct(t, env.cfg, "atlas-sectional", brickRed)

	out, _, err := runCLI(t, []string{"generate", "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("generate --dry-run: %v", err)
	}
	requireContains(t, out, "1 pair(s) would be generated")
	if _, err := os.Stat(env.cfg.HistoryPath()); !os.IsNotExist(err) {
		t.Fatalf("dry run should not create the history database, stat err=%v", err)
	}
	if _, err := os.Stat(env.cfg.Paths.VariantLog); !os.IsNotExist(err) {
		t.Fatalf("dry run should not write the variant log, stat err=%v", err)
	}
}

func TestGenerateRequiresAPIKey(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithSlugs("atlas-sectional"))
	env.cfg.ImageEdit.APIKey = ""
	writeTestConfig(t, env.configPath, env.cfg)
	testsupport.WriteProduct(t, env.cfg, "atlas-sectional", brickRed)

	_, _, err := runCLI(t, []string{"generate"}, env.configPath)
	if err == nil {
		t.Fatal("expected missing api key to fail generate")
	}
	requireContains(t, err.Error(), "api key required")
}

func TestGenerateFailsFastWhenLockHeld(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithSlugs("atlas-sectional"))
	if err := os.MkdirAll(env.cfg.Paths.StateDir, 0o755); err != nil {
		t.Fatal(err)
	}
	lock, err := runlock.Acquire(env.cfg.LockPath())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer lock.Release()

	_, _, err = runCLI(t, []string{"generate", "--dry-run"}, env.configPath)
	if !errors.Is(err, runlock.ErrHeld) {
		t.Fatalf("expected ErrHeld, got %v", err)
	}
}

func TestGenerateRejectsNegativeWorkers(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"generate", "--workers", "-1"}, env.configPath); err == nil {
		t.Fatal("expected negative workers to be rejected")
	}
}
