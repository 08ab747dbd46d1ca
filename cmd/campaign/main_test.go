package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func offlineEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("LOG_LEVEL", "disabled")
	t.Setenv("TEXT_PROVIDER", "static")
	t.Setenv("IMAGE_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "")
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	if err := app.Run(append([]string{"campaign"}, args...)); err != nil {
		t.Fatalf("campaign %v: %v", args, err)
	}
	return out.String()
}

func writePNG(t *testing.T, dir string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	path := filepath.Join(dir, "ref.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write png: %v", err)
	}
	return path
}

func TestCatalogCommand(t *testing.T) {
	out := run(t, "catalog")
	if !strings.Contains(out, "titles") || !strings.Contains(out, "faqs") {
		t.Fatalf("catalog output:\n%s", out)
	}
}

func TestContentCommandWritesKit(t *testing.T) {
	offlineEnv(t)
	dir := t.TempDir()
	out := run(t, "content", "--name", "Caneca Termica", "--differential", "keeps heat", "--out", dir)
	if !strings.Contains(out, "from static") {
		t.Fatalf("output = %q", out)
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*", "content.json"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("content.json not written: %v %v", matches, err)
	}
	data, _ := os.ReadFile(matches[0])
	var doc struct {
		Provider string `json:"provider"`
		Content  struct {
			Categories map[string][]string `json:"categories"`
		} `json:"content"`
	}
	if err := json.Unmarshal(data, &doc); err != nil || len(doc.Content.Categories["titles"]) == 0 {
		t.Fatalf("content.json = %s err=%v", data, err)
	}
}

func TestAssetsCommandExportsImages(t *testing.T) {
	offlineEnv(t)
	dir := t.TempDir()
	out := run(t, "assets", "--prompt", "lemon stand", "--count", "2", "--field", "banner", "--out", dir)
	if !strings.HasPrefix(out, "2/2 images") {
		t.Fatalf("output = %q", out)
	}
	images, _ := filepath.Glob(filepath.Join(dir, "*", "banner-*.png"))
	if len(images) != 2 {
		t.Fatalf("images = %v", images)
	}
}

func TestPresetCommandWithReference(t *testing.T) {
	offlineEnv(t)
	dir := t.TempDir()
	ref := writePNG(t, t.TempDir())
	out := run(t, "preset", "product_media", "--media", "effect_3d_shadow", "--reference", ref, "--out", dir)
	if !strings.HasPrefix(out, "1/1 images") {
		t.Fatalf("output = %q", out)
	}
}

func TestReadImage(t *testing.T) {
	if img, err := readImage(""); img != nil || err != nil {
		t.Fatalf("empty path = %v, %v", img, err)
	}
	dir := t.TempDir()
	img, err := readImage(writePNG(t, dir))
	if err != nil || img.MIMEType != "image/png" {
		t.Fatalf("readImage = %+v, %v", img, err)
	}
	text := filepath.Join(dir, "notes.txt")
	_ = os.WriteFile(text, []byte("hello"), 0o644)
	if _, err := readImage(text); err == nil {
		t.Fatalf("expected non-image error")
	}
}
