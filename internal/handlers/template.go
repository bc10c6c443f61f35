package handlers

import (
	"html/template"
	"io"

	"github.com/fsnotify/fsnotify"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

const viewsGlob = "ui/views/*.html"

type Template struct {
	templates *template.Template
	watcher   *fsnotify.Watcher
}

func NewTemplate() (*Template, error) {
	t := &Template{
		templates: template.Must(template.ParseGlob(viewsGlob)),
	}
	return t, nil
}

func (t *Template) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

// Watch reloads the view templates on change; used in development only.
func (t *Template) Watch() {
	var err error

	t.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		log.Fatalf("watcher: %+v", err)
	}

	go func() {
		for {
			select {
			case event, ok := <-t.watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) {
					log.Infof("reloading templates: %s changed", event.Name)
					t.templates = template.Must(template.ParseGlob(viewsGlob))
				}
			case err, ok := <-t.watcher.Errors:
				if !ok {
					return
				}
				log.Errorf("watcher: %+v", err)
			}
		}
	}()

	if err = t.watcher.Add("./ui/views"); err != nil {
		log.Fatalf("watcher: %+v", err)
	}
}

func (t *Template) Close() {
	if t.watcher != nil {
		t.watcher.Close()
	}
}
