package viewer

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/image/draw"

	"github.com/broadinstitute/seriesviewer/ingest/bulkprocess"
)

type seriesItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type sessionState struct {
	ID     string `json:"id"`
	Series string `json:"series"`
	Index  int    `json:"index"`
	Count  int    `json:"count"`
	Status string `json:"status"`
}

type metadataItem struct {
	Tag     string `json:"tag"`
	Keyword string `json:"keyword"`
	Label   string `json:"label"`
	Value   string `json:"value"`
	VR      string `json:"vr"`
}

type roiRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type roiResponse struct {
	Selection string  `json:"selection"`
	Pixels    int     `json:"pixels"`
	Min       uint8   `json:"min"`
	Max       uint8   `json:"max"`
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"stddev"`
	Status    string  `json:"status"`
}

func state(id string, nav *bulkprocess.Navigator) sessionState {
	return sessionState{
		ID:     id,
		Series: nav.Active(),
		Index:  nav.Index(),
		Count:  nav.Count(),
		Status: nav.Status(),
	}
}

func abort(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUnknownSession), errors.Is(err, bulkprocess.ErrUnknownSeries):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, bulkprocess.ErrNoUsableFiles):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (s *Server) index(c *gin.Context) {
	page, err := s.box.Find("index.html")
	if err != nil {
		abort(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listSeries(c *gin.Context) {
	labels := s.labels()
	items := make([]seriesItem, 0, len(labels))
	total := 0
	for _, l := range labels {
		items = append(items, seriesItem{ID: l.ID, Label: l.Label, Count: l.Count})
		total += l.Count
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "items": items})
}

func (s *Server) reload(c *gin.Context) {
	if err := s.Reload(); err != nil {
		log.Println("Reload failed:", err)
		abort(c, err)
		return
	}
	s.listSeries(c)
}

func (s *Server) createSession(c *gin.Context) {
	id := s.NewSession()
	_ = s.withSession(id, func(nav *bulkprocess.Navigator) error {
		c.JSON(http.StatusCreated, state(id, nav))
		return nil
	})
}

// move runs one navigation step and replies with the resulting state.
func (s *Server) move(c *gin.Context, step func(nav *bulkprocess.Navigator) error) {
	id := c.Param("id")
	var out sessionState
	err := s.withSession(id, func(nav *bulkprocess.Navigator) error {
		if err := step(nav); err != nil {
			return err
		}
		out = state(id, nav)
		return nil
	})
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) showSession(c *gin.Context) {
	s.move(c, func(*bulkprocess.Navigator) error { return nil })
}

func (s *Server) selectSeries(c *gin.Context) {
	series := c.Param("series")
	s.move(c, func(nav *bulkprocess.Navigator) error { return nav.Select(series) })
}

func (s *Server) next(c *gin.Context) {
	s.move(c, func(nav *bulkprocess.Navigator) error {
		nav.Next()
		return nil
	})
}

func (s *Server) prev(c *gin.Context) {
	s.move(c, func(nav *bulkprocess.Navigator) error {
		nav.Prev()
		return nil
	})
}

func (s *Server) goTo(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.move(c, func(nav *bulkprocess.Navigator) error {
		nav.GoTo(index)
		return nil
	})
}

// current returns the slice under the session cursor. ok is false when the
// session is in the empty state.
func (s *Server) current(id string) (cur bulkprocess.SliceRecord, ok bool, err error) {
	err = s.withSession(id, func(nav *bulkprocess.Navigator) error {
		cur, ok = nav.Current()
		return nil
	})
	return cur, ok, err
}

func (s *Server) image(c *gin.Context) {
	cur, ok, err := s.current(c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	if !ok || cur.Image == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var img image.Image = cur.Image
	if w := c.Query("window"); w != "" {
		win, err := bulkprocess.ParseWindow(w)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if img, err = s.render(cur.FilePath, win); err != nil {
			abort(c, err)
			return
		}
	}
	if size, err := strconv.Atoi(c.Query("size")); err == nil && size > 0 {
		img = thumbnail(img, size)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		abort(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// render decodes path again under win. The loaded series keep the window they
// were organized with.
func (s *Server) render(path string, win bulkprocess.Window) (*image.Gray, error) {
	ds, buf, err := s.opts.Organizer.Parser.Parse(path)
	if err != nil {
		return nil, err
	}
	return bulkprocess.NewSliceRecord(path, ds, buf, win).Image, nil
}

// thumbnail scales img so that its longer side is size pixels.
func thumbnail(img image.Image, size int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return img
	}
	if w >= h {
		h = h * size / w
		w = size
	} else {
		w = w * size / h
		h = size
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// metadata re-reads the current file so the full tag list is only held while
// it is being displayed.
func (s *Server) metadata(c *gin.Context) {
	cur, ok, err := s.current(c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"items": []metadataItem{}})
		return
	}

	ds, err := s.opts.Organizer.Parser.ReadDataset(cur.FilePath)
	if err != nil {
		abort(c, err)
		return
	}

	entries := bulkprocess.FilterEntries(bulkprocess.Enumerate(ds, s.opts.Dictionary), c.Query("filter"))
	items := make([]metadataItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, metadataItem{
			Tag:     e.Tag.String(),
			Keyword: e.Keyword,
			Label:   e.Label(),
			Value:   e.Value,
			VR:      e.VR,
		})
	}
	c.JSON(http.StatusOK, gin.H{"file": cur.FilePath, "items": items})
}

func (s *Server) roi(c *gin.Context) {
	var req roiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	var (
		cur    bulkprocess.SliceRecord
		ok     bool
		status string
	)
	err := s.withSession(id, func(nav *bulkprocess.Navigator) error {
		cur, ok = nav.Current()
		status = nav.Status()
		return nil
	})
	if err != nil {
		abort(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "no series selected"})
		return
	}

	sel := bulkprocess.Selection{X: req.X, Y: req.Y, Width: req.Width, Height: req.Height}
	stats := bulkprocess.SelectionStats(cur.Image, sel)

	c.JSON(http.StatusOK, roiResponse{
		Selection: sel.Normalized().String(),
		Pixels:    stats.Pixels,
		Min:       stats.Min,
		Max:       stats.Max,
		Mean:      stats.Mean,
		StdDev:    stats.StdDev,
		Status:    status + " | " + sel.Normalized().String(),
	})
}
