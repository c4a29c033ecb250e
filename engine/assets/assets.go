package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/prism/engine/assets/loaders"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

const changeBacklog = 64

// AssetManager resolves asset names against a list of resource paths, loads
// them and, once Watch is called, reports files that changed on disk.
type AssetManager struct {
	paths []string

	binary loaders.BinaryLoader
	images loaders.ImageLoader
	fonts  loaders.BitmapFontLoader

	mutex sync.RWMutex
	// resolved path -> name the asset was requested with
	loaded map[string]string

	fsnotify *fsnotify.Watcher
	changes  chan string
	done     chan struct{}
	wg       sync.WaitGroup
	isClosed bool
}

func NewAssetManager(resourcePaths ...string) *AssetManager {
	am := &AssetManager{
		loaded:  make(map[string]string),
		changes: make(chan string, changeBacklog),
		done:    make(chan struct{}),
	}
	for _, p := range resourcePaths {
		am.AddResourcePath(p)
	}
	return am
}

// AddResourcePath appends dir to the search list.
func (am *AssetManager) AddResourcePath(dir string) {
	if dir == "" {
		return
	}
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.paths = append(am.paths, filepath.Clean(dir))
}

// ResolvePath returns the first existing file for name: name itself, then
// name inside each resource path in order.
func (am *AssetManager) ResolvePath(name string) (string, bool) {
	if fileExists(name) {
		return filepath.Clean(name), true
	}
	if filepath.IsAbs(name) {
		return "", false
	}
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	for _, dir := range am.paths {
		p := filepath.Join(dir, name)
		if fileExists(p) {
			return p, true
		}
	}
	return "", false
}

func fileExists(path string) bool {
	s, err := os.Stat(path)
	return err == nil && !s.IsDir()
}

func (am *AssetManager) resolve(name string, kind error) (string, error) {
	p, ok := am.ResolvePath(name)
	if !ok {
		return "", fmt.Errorf("asset %s not found in %v: %w", name, am.paths, kind)
	}
	am.mutex.Lock()
	if abs, err := filepath.Abs(p); err == nil {
		am.loaded[abs] = name
	}
	am.mutex.Unlock()
	return p, nil
}

func load[T any](am *AssetManager, loader Loader[T], name string, kind error) (T, error) {
	p, err := am.resolve(name, kind)
	if err != nil {
		var zero T
		return zero, err
	}
	return loader.Load(p)
}

// ReadFile satisfies renderer.FileLoader.
func (am *AssetManager) ReadFile(name string) ([]byte, error) {
	return load[[]byte](am, &am.binary, name, core.ErrIO)
}

// DecodeImage satisfies renderer.ImageDecoder.
func (am *AssetManager) DecodeImage(name string) (*metadata.Image, error) {
	return load[*metadata.Image](am, &am.images, name, core.ErrDecode)
}

func (am *AssetManager) LoadBitmapFont(name string) (*loaders.BitmapFont, error) {
	return load[*loaders.BitmapFont](am, &am.fonts, name, core.ErrIO)
}

// Watch starts reporting changes to previously loaded files under dirs and
// their sub-directories.
func (am *AssetManager) Watch(dirs ...string) error {
	if am.isClosed {
		return errors.New("asset manager already closed")
	}
	if am.fsnotify == nil {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		am.fsnotify = w
		am.wg.Add(1)
		go am.start()
	}
	for _, dir := range dirs {
		if err := am.watchRecursive(dir); err != nil {
			return err
		}
	}
	return nil
}

// Changes delivers the names of loaded assets modified on disk.
func (am *AssetManager) Changes() <-chan string {
	return am.changes
}

// DrainChanges calls fn for every pending change without blocking. It must
// run on the thread that owns the renderer.
func (am *AssetManager) DrainChanges(fn func(name string)) {
	for {
		select {
		case name := <-am.changes:
			fn(name)
		default:
			return
		}
	}
}

func (am *AssetManager) Close() error {
	if am.isClosed {
		return nil
	}
	am.isClosed = true
	close(am.done)
	am.wg.Wait()
	return nil
}

func (am *AssetManager) start() {
	defer am.wg.Done()
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			if s, err := os.Stat(e.Name); err == nil && s.IsDir() && e.Has(fsnotify.Create) {
				if err := am.watchRecursive(e.Name); err != nil {
					core.LogWarn("failed to watch %s: %s", e.Name, err)
				}
				continue
			}
			if e.Has(fsnotify.Write) || e.Has(fsnotify.Create) {
				am.handleFileEvent(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

func (am *AssetManager) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		return nil
	})
}

func (am *AssetManager) handleFileEvent(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	am.mutex.RLock()
	name, ok := am.loaded[abs]
	am.mutex.RUnlock()
	if !ok {
		return
	}
	select {
	case am.changes <- name:
		core.LogDebug("asset %s changed", name)
	default:
		core.LogWarn("dropping change notification for %s", name)
	}
}
