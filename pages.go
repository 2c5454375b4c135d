package main

import (
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin"
)

// pageRenderer holds the parsed page templates behind a lock so a debug-mode
// watcher can swap them in while requests are being served.
type pageRenderer struct {
	mu   sync.RWMutex
	tmpl *template.Template
	dir  string
}

var pages *pageRenderer

func initPages(dir string) error {
	pr := &pageRenderer{dir: dir}
	if err := pr.reload(); err != nil {
		return err
	}
	pages = pr
	if gin.IsDebugging() {
		go pr.watch()
	}
	return nil
}

func (pr *pageRenderer) reload() error {
	t, err := template.ParseGlob(filepath.Join(pr.dir, "*.html"))
	if err != nil {
		return err
	}
	pr.mu.Lock()
	pr.tmpl = t
	pr.mu.Unlock()
	return nil
}

func (pr *pageRenderer) render(c *gin.Context, status int, name string, data any) {
	pr.mu.RLock()
	t := pr.tmpl
	pr.mu.RUnlock()
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(c.Writer, name, data); err != nil {
		log.Printf("render %s: %v", name, err)
	}
}

// watch re-parses the templates when files in the directory change.
// Debounced, since editors tend to emit several events per save.
func (pr *pageRenderer) watch() {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("template watch disabled: %v", err)
		return
	}
	defer w.Close()
	if err := w.Add(pr.dir); err != nil {
		log.Printf("template watch disabled: %v", err)
		return
	}
	log.Printf("Watching %s for template changes ...", pr.dir)

	var pending bool
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 && filepath.Ext(ev.Name) == ".html" {
				pending = true
			}
		case <-ticker.C:
			if !pending {
				continue
			}
			pending = false
			if err := pr.reload(); err != nil {
				log.Printf("template reload failed: %v", err)
			} else {
				log.Println("templates reloaded")
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Printf("template watch error: %v", err)
		}
	}
}

func renderPage(c *gin.Context, name string, data gin.H) {
	if pages == nil {
		c.String(http.StatusInternalServerError, "templates not loaded")
		return
	}
	pages.render(c, http.StatusOK, name, data)
}

func dashboardPage(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	apps, err := listApplications(user.ID)
	if err != nil {
		log.Printf("dashboard query failed: %v", err)
	}
	renderPage(c, "dashboard.html", gin.H{"Username": user.Username, "Applications": apps})
}

func notesPage(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	apps, err := listApplications(user.ID)
	if err != nil {
		log.Printf("notes query failed: %v", err)
	}
	renderPage(c, "notes.html", gin.H{"Username": user.Username, "Applications": apps})
}

func analyticsPage(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	renderPage(c, "analytics.html", gin.H{"Username": user.Username})
}

func settingsPage(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	renderPage(c, "settings.html", gin.H{"Username": user.Username})
}

// loginPage and registerPage are public; an already signed-in browser is
// bounced back to the dashboard.
func loginPage(c *gin.Context) {
	if tokenString := tokenFromRequest(c); tokenString != "" {
		if _, err := parseToken(tokenString); err == nil {
			c.Redirect(http.StatusFound, "/")
			return
		}
	}
	renderPage(c, "login.html", gin.H{})
}

func registerPage(c *gin.Context) {
	if tokenString := tokenFromRequest(c); tokenString != "" {
		if _, err := parseToken(tokenString); err == nil {
			c.Redirect(http.StatusFound, "/")
			return
		}
	}
	renderPage(c, "register.html", gin.H{})
}
