// Package reload watches model files and swaps the meshes of the entities
// using them when a file changes on disk.
package reload

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/smasonuk/tridim"
	"github.com/smasonuk/tridim/internal/config"
	"github.com/smasonuk/tridim/internal/logger"
	"github.com/smasonuk/tridim/internal/scenefile"
)

// Reloader collects file change events on a background goroutine. The
// entities are only touched by Apply, which must run on the goroutine that
// owns the scene.
type Reloader struct {
	watcher *fsnotify.Watcher
	changed chan string
	done    chan struct{}
	wg      sync.WaitGroup

	mu      sync.Mutex
	dirs    map[string]bool
	targets map[string][]*tridim.Entity
}

func New() (*Reloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create file watcher: %w", err)
	}

	r := &Reloader{
		watcher: watcher,
		changed: make(chan string, 64),
		done:    make(chan struct{}),
		dirs:    make(map[string]bool),
		targets: make(map[string][]*tridim.Entity),
	}
	r.wg.Add(1)
	go r.run()
	return r, nil
}

// Track reloads entity whenever the model file at path changes. The
// directory is watched rather than the file so editors that replace files
// are noticed too.
func (r *Reloader) Track(path string, entity *tridim.Entity) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dir := filepath.Dir(path)
	if !r.dirs[dir] {
		if err := r.watcher.Add(dir); err != nil {
			return fmt.Errorf("could not watch %s: %w", dir, err)
		}
		r.dirs[dir] = true
	}
	r.targets[path] = append(r.targets[path], entity)
	return nil
}

// TrackScene tracks every model backed entity that scenefile.Build created
// from cfg. Entities with their own materials are skipped since a reload
// would drop the materials.
func (r *Reloader) TrackScene(cfg *config.Config, scene *tridim.Scene, baseDir string) error {
	return r.trackEntities(cfg.Scene.Entities, scene.Entities(), baseDir)
}

func (r *Reloader) trackEntities(configs []config.EntityConfig, entities []*tridim.Entity, baseDir string) error {
	if len(configs) != len(entities) {
		return errors.New("scene does not match its config")
	}
	for i := range configs {
		ec := &configs[i]
		if ec.Model != "" && len(ec.Materials) == 0 {
			if err := r.Track(scenefile.ModelPath(baseDir, ec.Model), entities[i]); err != nil {
				return err
			}
		}
		if err := r.trackEntities(ec.Children, entities[i].Children(), baseDir); err != nil {
			return err
		}
	}
	return nil
}

// Tracked returns the number of watched model files.
func (r *Reloader) Tracked() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.targets)
}

func (r *Reloader) run() {
	defer r.wg.Done()
	for {
		select {
		case <-r.done:
			return
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			path := filepath.Clean(event.Name)
			r.mu.Lock()
			_, tracked := r.targets[path]
			r.mu.Unlock()
			if !tracked {
				continue
			}
			select {
			case r.changed <- path:
			case <-r.done:
				return
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

// Apply reloads the entities of every file changed since the last call and
// returns the number of files reloaded. It never blocks.
func (r *Reloader) Apply() int {
	pending := make(map[string]bool)
	for drained := false; !drained; {
		select {
		case path := <-r.changed:
			pending[path] = true
		default:
			drained = true
		}
	}

	reloaded := 0
	for path := range pending {
		r.mu.Lock()
		entities := r.targets[path]
		r.mu.Unlock()

		if err := reloadShared(path, entities); err != nil {
			logger.Warn("could not reload model", zap.String("path", path), zap.Error(err))
			continue
		}
		logger.Info("reloaded model", zap.String("path", path), zap.Int("entities", len(entities)))
		reloaded++
	}
	return reloaded
}

// reloadShared reads path once per mesh store and hands every entity a
// reference to the new mesh, so entities that shared the old mesh share the
// new one too.
func reloadShared(path string, entities []*tridim.Entity) error {
	handles := make(map[*tridim.MeshStore]*tridim.MeshHandle)
	defer func() {
		for _, handle := range handles {
			handle.Release()
		}
	}()

	for _, entity := range entities {
		store := entity.Store()
		if _, ok := handles[store]; !ok {
			handle, err := store.ForceCreateFromFile(path)
			if err != nil {
				return fmt.Errorf("entity %s: %w", entity.Name(), err)
			}
			handles[store] = handle
		}
	}
	for _, entity := range entities {
		entity.ShareMesh(handles[entity.Store()])
	}
	return nil
}

// Close stops watching. Tracked entities keep their current meshes.
func (r *Reloader) Close() error {
	close(r.done)
	err := r.watcher.Close()
	r.wg.Wait()
	return err
}
