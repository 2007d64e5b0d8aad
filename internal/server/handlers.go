package server

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ironsheep/thumbnailer/internal/cachekey"
	"github.com/ironsheep/thumbnailer/internal/imaging"
	"github.com/ironsheep/thumbnailer/internal/location"
	"github.com/ironsheep/thumbnailer/internal/storage"
	"github.com/ironsheep/thumbnailer/internal/thumbcache"
)

// InfoResponse is the body of GET /info/:uri.
type InfoResponse struct {
	URI        string `json:"uri"`
	URIEncoded string `json:"uri_encoded"`
	imaging.Info
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// source decodes the :uri parameter like unquote_plus, applies the
// Uri-Prefix header and parses the result.
func (s *Server) source(c *gin.Context) (location.Location, string, error) {
	param := c.Param("uri")

	var decoded string
	if c.Request.URL.RawPath == "" {
		// Routed on the decoded path: only "+" is left to translate.
		decoded = strings.ReplaceAll(param, "+", " ")
	} else {
		var err error
		decoded, err = url.QueryUnescape(param)
		if err != nil {
			return location.Location{}, param, fmt.Errorf("%w: %v", location.ErrInvalidURI, err)
		}
	}

	uri := c.GetHeader(HeaderURIPrefix) + decoded
	loc, err := location.Parse(uri)
	return loc, uri, err
}

func (s *Server) handleThumbnail(c *gin.Context) {
	loc, _, err := s.source(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	edge, err := imaging.ParseDimension("long-edge", c.Param("long_edge_pixels"))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.serveImage(c, loc, imaging.LongEdge(edge))
}

func (s *Server) handleFit(c *gin.Context) {
	loc, _, err := s.source(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	width, err := imaging.ParseDimension("width", c.Param("width_pixels"))
	if err != nil {
		s.fail(c, err)
		return
	}
	height, err := imaging.ParseDimension("height", c.Param("height_pixels"))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.serveImage(c, loc, imaging.FitBox(width, height))
}

func (s *Server) serveImage(c *gin.Context, loc location.Location, p imaging.Params) {
	s.logger.Infof("Requested: %s @ %s", loc, p)

	res, err := s.svc.Thumbnail(c.Request.Context(), loc, p)
	if err != nil {
		s.fail(c, err)
		return
	}
	if res.CacheWriteFailed() {
		s.logger.WithError(res.CacheErr).Warn("Thumbnail not cached")
	}

	sum := md5.Sum(res.Data)
	etag := hex.EncodeToString(sum[:])

	c.Header("ETag", etag)
	c.Header("Cache-Control", fmt.Sprintf("max-age=%d", int(s.contentAge.Seconds())))
	c.Header(HeaderCacheStatus, string(res.Status))

	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, contentType(res.Data), res.Data)
}

// contentType keeps the historical "image/jpg" for JPEG bodies. Sources
// served unchanged keep their own type.
func contentType(data []byte) string {
	ct := http.DetectContentType(data)
	if ct == "image/jpeg" {
		return "image/jpg"
	}
	return ct
}

func (s *Server) handleInfo(c *gin.Context) {
	loc, uri, err := s.source(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	info, err := s.svc.Info(c.Request.Context(), loc)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, InfoResponse{
		URI:        uri,
		URIEncoded: c.Param("uri"),
		Info:       info,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"caching": s.svc.CachingEnabled(),
	})
}

// statusFor maps err to an HTTP status. The boolean reports whether the
// error text is safe to show without debug mode.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, location.ErrInvalidURI),
		errors.Is(err, imaging.ErrInvalidDimension),
		errors.Is(err, imaging.ErrOutOfRange),
		errors.Is(err, cachekey.ErrSelfCache),
		errors.Is(err, thumbcache.ErrLocalSourceDisabled):
		return http.StatusBadRequest, true
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, storage.ErrForbidden):
		return http.StatusForbidden, true
	default:
		return http.StatusInternalServerError, false
	}
}

// fail writes the error response and records err on the context for the
// request logger.
func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)

	status, public := statusFor(err)
	msg := err.Error()
	if !public {
		if s.debug {
			status = http.StatusBadRequest
		} else {
			msg = http.StatusText(http.StatusInternalServerError)
		}
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Code: http.StatusText(status), Message: msg})
}
