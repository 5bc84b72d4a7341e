// Package views renders the site pages with html/template. The templates are
// embedded in the binary, a directory on disk can be used instead and watched
// for changes during development.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

//go:embed templates/*.html static
var embedded embed.FS

const pattern = "*.html"

// Page is the data every template receives.
type Page struct {
	Path     string
	Message  template.HTML
	UserName string
	Error    template.HTML
	Data     any
}

type Renderer struct {
	mu        sync.RWMutex
	templates *template.Template
	dir       string
	watcher   *fsnotify.Watcher
}

// New parses the templates in dir, or the embedded ones when dir is empty.
func New(dir string) (*Renderer, error) {
	r := &Renderer{dir: dir}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) load() error {
	var (
		templates *template.Template
		err       error
	)
	if r.dir == "" {
		templates, err = template.ParseFS(embedded, "templates/"+pattern)
	} else {
		templates, err = template.ParseGlob(filepath.Join(r.dir, pattern))
	}
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}

	r.mu.Lock()
	r.templates = templates
	r.mu.Unlock()
	return nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	r.mu.RLock()
	templates := r.templates
	r.mu.RUnlock()
	return templates.ExecuteTemplate(w, name, data)
}

// Watch reparses the templates whenever a file in the directory is written.
// A template that fails to parse is logged and the previous set is kept.
func (r *Renderer) Watch() error {
	if r.dir == "" {
		return fmt.Errorf("watching templates: embedded templates cannot be watched")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watching templates: %w", err)
	}
	r.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					log.Infof("modified file: %s", event.Name)
					if err := r.load(); err != nil {
						log.Errorf("reloading templates: %+v", err)
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Errorf("watcher: %+v", err)
			}
		}
	}()

	if err := watcher.Add(r.dir); err != nil {
		watcher.Close()
		r.watcher = nil
		return fmt.Errorf("watching templates: %w", err)
	}
	return nil
}

func (r *Renderer) Close() {
	if r.watcher != nil {
		r.watcher.Close()
	}
}

// Static returns the embedded stylesheet and images.
func Static() fs.FS {
	return echo.MustSubFS(embedded, "static")
}
