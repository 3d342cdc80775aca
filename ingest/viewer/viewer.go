// Package viewer serves loaded series over HTTP: a series picker, per-session
// slice navigation, rendered slices, tag listings and ROI statistics.
package viewer

import (
	"errors"
	"log"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gobuffalo/packr"
	"github.com/google/uuid"

	"github.com/broadinstitute/seriesviewer/ingest/bulkprocess"
)

var ErrUnknownSession = errors.New("unknown session")

type Options struct {
	Folder     string
	Scan       bulkprocess.ScanOptions
	Organizer  bulkprocess.Organizer
	Dictionary bulkprocess.Dictionary

	// OnReload, when set, sees every map installed by Reload. Its error is
	// logged and does not undo the reload.
	OnReload func(folder string, m bulkprocess.SeriesMap) error
}

// Server owns the loaded SeriesMap. Reload replaces it wholesale; sessions
// created before a reload start over in the empty state.
type Server struct {
	opts Options
	box  packr.Box

	mu       sync.Mutex
	series   bulkprocess.SeriesMap
	sessions map[string]*bulkprocess.Navigator
}

func New(opts Options) *Server {
	return &Server{
		opts:     opts,
		box:      packr.NewBox("./static"),
		series:   bulkprocess.SeriesMap{},
		sessions: make(map[string]*bulkprocess.Navigator),
	}
}

// Reload rescans the folder. On failure the previously loaded series stay in
// place.
func (s *Server) Reload() error {
	m, err := bulkprocess.LoadSeries(s.opts.Folder, s.opts.Scan, s.opts.Organizer)
	if err != nil {
		return err
	}
	s.Replace(m)

	if s.opts.OnReload != nil {
		if err := s.opts.OnReload(s.opts.Folder, m); err != nil {
			log.Println("Ignoring error and continuing:", err.Error())
		}
	}
	return nil
}

// Replace installs m as the loaded series and resets every session.
func (s *Server) Replace(m bulkprocess.SeriesMap) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.series = m
	for id := range s.sessions {
		s.sessions[id] = bulkprocess.NewNavigator(m)
	}
	log.Printf("Loaded %d series (%d slices) from %s\n", len(m), m.Total(), s.opts.Folder)
}

// NewSession starts a navigator over the current series.
func (s *Server) NewSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.sessions[id] = bulkprocess.NewNavigator(s.series)
	return id
}

// withSession runs fn on the navigator of id while holding the lock.
func (s *Server) withSession(id string, fn func(nav *bulkprocess.Navigator) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nav, ok := s.sessions[id]
	if !ok {
		return ErrUnknownSession
	}
	return fn(nav)
}

func (s *Server) labels() []bulkprocess.SeriesLabel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.series.Labels()
}

// Series returns the loaded series. Callers must not modify it.
func (s *Server) Series() bulkprocess.SeriesMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.series
}

// Router wires the HTTP routes. middleware runs after recovery on every route.
func (s *Server) Router(middleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware...)

	router.GET("/", s.index)
	router.GET("/health", s.health)
	router.GET("/series", s.listSeries)
	router.POST("/reload", s.reload)

	sessions := router.Group("/sessions")
	sessions.POST("", s.createSession)
	sessions.GET("/:id", s.showSession)
	sessions.POST("/:id/select/:series", s.selectSeries)
	sessions.POST("/:id/next", s.next)
	sessions.POST("/:id/prev", s.prev)
	sessions.POST("/:id/goto/:index", s.goTo)
	sessions.GET("/:id/image", s.image)
	sessions.GET("/:id/metadata", s.metadata)
	sessions.POST("/:id/roi", s.roi)

	return router
}
