package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/preview/engine/assets/loaders"
	"github.com/spaghettifunk/preview/engine/core"
	"github.com/spaghettifunk/preview/engine/renderer/metadata"
)

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

// AssetManager loads the files the preview depends on and watches them for
// changes.
type AssetManager struct {
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	dirs     map[string]int
	changes  chan string
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	am := &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[metadata.ResourceType]Loader),
		fsnotify: fsWatch,
		dirs:     make(map[string]int),
		changes:  make(chan string, 16),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}

	// Register loaders
	am.registerLoader(metadata.ResourceTypeImage, &loaders.TextureLoader{})

	go am.start()
	return am, nil
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// Watch tracks the given files. Their directories are watched so editors
// that replace a file through a rename are noticed as well.
func (am *AssetManager) Watch(paths ...string) error {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	if am.isClosed {
		return errors.New("asset manager already closed")
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		if _, ok := am.assets[abs]; ok {
			continue
		}
		dir := filepath.Dir(abs)
		if am.dirs[dir] == 0 {
			if err := am.fsnotify.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
		}
		am.dirs[dir]++
		am.assets[abs] = AssetInfo{Path: abs, Type: determineAssetType(abs)}
		core.LogDebug("watching %s", abs)
	}
	return nil
}

// Unwatch stops tracking the given files.
func (am *AssetManager) Unwatch(paths ...string) error {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		if _, ok := am.assets[abs]; !ok {
			continue
		}
		delete(am.assets, abs)
		dir := filepath.Dir(abs)
		am.dirs[dir]--
		if am.dirs[dir] <= 0 {
			delete(am.dirs, dir)
			if !am.isClosed {
				if err := am.fsnotify.Remove(dir); err != nil {
					core.LogWarn("unwatch %s: %s", dir, err.Error())
				}
			}
		}
	}
	return nil
}

// Changes delivers the path of every tracked file that was written,
// created or renamed into place. Bursts are coalesced: when the consumer
// falls behind, extra notifications are dropped.
func (am *AssetManager) Changes() <-chan string {
	return am.changes
}

// Load an asset using the loader of its type.
func (am *AssetManager) LoadAsset(path string, params interface{}) (*metadata.Resource, error) {
	assetType := determineAssetType(path)
	loader, loaderExists := am.loaders[assetType]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %s (%s)", assetType, path)
	}

	res, err := loader.Load(path, params)
	if err != nil {
		return nil, err
	}

	if abs, err := filepath.Abs(path); err == nil {
		am.mutex.Lock()
		if info, ok := am.assets[abs]; ok {
			info.LastLoaded = time.Now()
			am.assets[abs] = info
		}
		am.mutex.Unlock()
	}
	return res, nil
}

func (am *AssetManager) UnloadAsset(asset *metadata.Resource) error {
	loader, ok := am.loaders[asset.Type]
	if !ok {
		return fmt.Errorf("no loader registered for asset type: %s", asset.Type)
	}
	return loader.Unload(asset)
}

// Info returns what is known about a tracked file.
func (am *AssetManager) Info(path string) (AssetInfo, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return AssetInfo{}, false
	}
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[abs]
	return info, ok
}

// Shutdown stops the watcher and closes the Changes channel.
func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	<-am.stopped
	return nil
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {

		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			// Handle create, modify or rename-into-place events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name)
			}

		case e, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("%s", e)

		case <-am.done:
			am.fsnotify.Close()
			close(am.changes)
			return
		}
	}
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) {
	am.mutex.RLock()
	_, tracked := am.assets[path]
	am.mutex.RUnlock()
	if !tracked {
		return
	}
	if s, err := os.Stat(path); err != nil || s.IsDir() {
		return
	}

	select {
	case am.changes <- path:
		core.LogDebug("asset changed: %s", path)
	default:
	}
}

func determineAssetType(path string) metadata.ResourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return metadata.ResourceTypeConfig
	case ".wgsl":
		return metadata.ResourceTypeShader
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return metadata.ResourceTypeImage
	default:
		return metadata.ResourceTypeNone
	}
}
