package assets

import (
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/preview/engine/core"
	"github.com/spaghettifunk/preview/engine/renderer/metadata"
)

func newTestManager(t *testing.T) *AssetManager {
	t.Helper()
	core.SetLogOutput(io.Discard)
	am, err := NewAssetManager()
	if err != nil {
		t.Fatalf("NewAssetManager: %v", err)
	}
	t.Cleanup(func() { _ = am.Shutdown() })
	return am
}

func waitForChange(t *testing.T, am *AssetManager, want string) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case got := <-am.Changes():
			if got == want {
				return
			}
		case <-timeout:
			t.Fatalf("no change reported for %s", want)
		}
	}
}

func TestWatchReportsTrackedFiles(t *testing.T) {
	am := newTestManager(t)
	dir := t.TempDir()
	tracked := filepath.Join(dir, "preview.toml")
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(tracked, []byte("[log]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := am.Watch(tracked, ""); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	info, ok := am.Info(tracked)
	if !ok || info.Type != metadata.ResourceTypeConfig {
		t.Fatalf("Info() = %+v, %v", info, ok)
	}

	if err := os.WriteFile(other, []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tracked, []byte("[log]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitForChange(t, am, tracked)

	// Only tracked files are reported.
	for {
		select {
		case got := <-am.Changes():
			if got == other {
				t.Fatalf("untracked file %s reported", other)
			}
			continue
		case <-time.After(100 * time.Millisecond):
		}
		break
	}

	if err := am.Unwatch(tracked); err != nil {
		t.Fatalf("Unwatch: %v", err)
	}
	if _, ok := am.Info(tracked); ok {
		t.Error("file still tracked after Unwatch")
	}
}

func TestLoadAssetImage(t *testing.T) {
	am := newTestManager(t)
	path := filepath.Join(t.TempDir(), "texture.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 3, 1))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if err := am.Watch(path); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	res, err := am.LoadAsset(path, nil)
	if err != nil {
		t.Fatalf("LoadAsset: %v", err)
	}
	data := res.Data.(*metadata.ImageResourceData)
	if data.Width != 3 || data.Height != 1 {
		t.Errorf("image is %dx%d", data.Width, data.Height)
	}
	if info, _ := am.Info(path); info.LastLoaded.IsZero() {
		t.Error("LastLoaded not updated")
	}
	if err := am.UnloadAsset(res); err != nil {
		t.Errorf("UnloadAsset: %v", err)
	}

	if _, err := am.LoadAsset(filepath.Join(t.TempDir(), "model.obj"), nil); err == nil {
		t.Error("no loader should be registered for .obj files")
	}
}

func TestShutdownClosesChanges(t *testing.T) {
	am := newTestManager(t)
	if err := am.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if _, ok := <-am.Changes(); ok {
		t.Error("Changes() still open after Shutdown")
	}
	if err := am.Watch(filepath.Join(t.TempDir(), "a.png")); err == nil {
		t.Error("Watch after Shutdown should fail")
	}
	if err := am.Shutdown(); err != nil {
		t.Errorf("second Shutdown: %v", err)
	}
}

func TestDetermineAssetType(t *testing.T) {
	tests := map[string]metadata.ResourceType{
		"a/b/preview.toml": metadata.ResourceTypeConfig,
		"texture.PNG":      metadata.ResourceTypeImage,
		"photo.webp":       metadata.ResourceTypeImage,
		"preview.wgsl":     metadata.ResourceTypeShader,
		"README":           metadata.ResourceTypeNone,
	}
	for path, want := range tests {
		if got := determineAssetType(path); got != want {
			t.Errorf("determineAssetType(%q) = %v, want %v", path, got, want)
		}
	}
}
