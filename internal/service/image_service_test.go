package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"agora/internal/config"
	"agora/internal/testutil"
)

func TestImageServiceUploadAndResolve(t *testing.T) {
	repo := testutil.NewImageRepoStub()
	cfg := &config.Config{ImageUploadDir: t.TempDir(), ImageMaxUploadSizeMB: 1}
	svc := NewImageService(repo, cfg)

	content := testutil.TinyPNG(t, 1200, 800)
	img, err := svc.Upload(context.Background(), UploadImageInput{
		UserID:      42,
		Filename:    "photo.png",
		ContentType: "image/png",
		Content:     content,
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if img.ID == 0 || img.Hash == "" {
		t.Fatalf("expected persisted image metadata, got %+v", img)
	}

	for _, rel := range []string{
		filepath.ToSlash(filepath.Join(img.Hash, "master.jpg")),
		filepath.ToSlash(filepath.Join(img.Hash, "master.webp")),
	} {
		path := cfg.ImageUploadDir + "/" + rel
		if _, statErr := os.Stat(path); statErr != nil {
			t.Fatalf("expected file at %s: %v", path, statErr)
		}
	}

	if len(img.Variants) == 0 {
		t.Fatal("expected variants generated on upload")
	}
	for _, v := range img.Variants {
		path := filepath.Join(cfg.ImageUploadDir, v.Path)
		if _, statErr := os.Stat(path); statErr != nil {
			t.Fatalf("expected variant file at %s: %v", path, statErr)
		}
	}

	// Same content by same user should dedupe.
	img2, err := svc.Upload(context.Background(), UploadImageInput{
		UserID:      42,
		Filename:    "photo-copy.png",
		ContentType: "image/png",
		Content:     content,
	})
	if err != nil {
		t.Fatalf("dedupe upload failed: %v", err)
	}
	if img2.ID != img.ID {
		t.Fatalf("expected deduped record id %d, got %d", img.ID, img2.ID)
	}

	_, fullPath, err := svc.ResolveForServing(context.Background(), img.Hash, "master.jpg")
	if err != nil {
		t.Fatalf("resolve master failed: %v", err)
	}
	if _, statErr := os.Stat(fullPath); statErr != nil {
		t.Fatalf("expected resolved file to exist: %v", statErr)
	}
}

func TestImageServiceNormalizesResolution(t *testing.T) {
	repo := testutil.NewImageRepoStub()
	cfg := &config.Config{ImageUploadDir: t.TempDir(), ImageMaxUploadSizeMB: 10}
	svc := NewImageService(repo, cfg)

	content := noisyPNG(t, 1600, 1200)
	img, err := svc.Upload(context.Background(), UploadImageInput{
		UserID:      9,
		Filename:    "large.png",
		ContentType: "image/png",
		Content:     content,
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if img.Width > MasterMaxSize || img.Height > MasterMaxSize {
		t.Fatalf("expected normalized dimensions <= %d, got %dx%d", MasterMaxSize, img.Width, img.Height)
	}
	if img.CropMode == "" {
		t.Fatal("expected crop mode recorded")
	}
}

func TestImageServiceUploadValidation(t *testing.T) {
	repo := testutil.NewImageRepoStub()
	cfg := &config.Config{ImageUploadDir: t.TempDir(), ImageMaxUploadSizeMB: 1}
	svc := NewImageService(repo, cfg)

	_, err := svc.Upload(context.Background(), UploadImageInput{
		UserID:      1,
		Filename:    "bad.txt",
		ContentType: "text/plain",
		Content:     []byte("not an image"),
	})
	if err == nil {
		t.Fatal("expected invalid image error")
	}

	tooLarge := bytes.Repeat([]byte{'a'}, 2*1024*1024)
	_, err = svc.Upload(context.Background(), UploadImageInput{
		UserID:      1,
		Filename:    "huge.png",
		ContentType: "image/png",
		Content:     tooLarge,
	})
	if err == nil {
		t.Fatal("expected size validation error")
	}

	_, err = svc.Upload(context.Background(), UploadImageInput{
		UserID:      1,
		Filename:    "mismatch.gif",
		ContentType: "image/gif",
		Content:     testutil.TinyPNG(t, 32, 32),
	})
	if err == nil {
		t.Fatal("expected content type mismatch error")
	}
}

func TestBuildVariantURLs(t *testing.T) {
	svc := NewImageService(nil, nil)

	if got := svc.BuildMasterImageURL("abc123"); got != "/media/i/abc123/master.jpg" {
		t.Fatalf("unexpected master URL %q", got)
	}
	if got := svc.BuildVariantURL("abc123", 640, "webp"); got != "/media/i/abc123/640.webp" {
		t.Fatalf("unexpected variant URL %q", got)
	}
}

func TestResolveForServingRejectsBadNames(t *testing.T) {
	repo := testutil.NewImageRepoStub()
	cfg := &config.Config{ImageUploadDir: t.TempDir(), ImageMaxUploadSizeMB: 1}
	svc := NewImageService(repo, cfg)

	cases := []struct {
		hash string
		file string
	}{
		{hash: "../etc/passwd", file: "master.jpg"},
		{hash: "ABC123", file: "master.jpg"},
		{hash: "abc123", file: "../secret"},
		{hash: "abc123", file: "master.png"},
		{hash: "abc123", file: "999.webp"},
	}
	for _, tc := range cases {
		if _, _, err := svc.ResolveForServing(context.Background(), tc.hash, tc.file); err == nil {
			t.Fatalf("expected rejection for hash=%q file=%q", tc.hash, tc.file)
		}
	}
}

func noisyPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	src := rand.NewSource(42)
	// #nosec G404: weak random is fine for test image generation
	rng := rand.New(src)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				// #nosec G115: Intn(256) is safe for uint8
				R: uint8(rng.Intn(256)),
				// #nosec G115
				G: uint8(rng.Intn(256)),
				// #nosec G115
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode noisy png: %v", err)
	}
	return buf.Bytes()
}
