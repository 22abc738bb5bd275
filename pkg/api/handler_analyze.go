package api

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/emojivision/mosaic/pkg/ingest"
	"github.com/emojivision/mosaic/pkg/models"
	"github.com/emojivision/mosaic/pkg/orchestrator"
	"github.com/emojivision/mosaic/pkg/pipeline"
)

// analyzeGet handles GET /analyze?url=<u> and GET /analyze?file=<p>.
func (s *Server) analyzeGet(c *gin.Context) {
	imageURL := c.Query("url")
	filePath := c.Query("file")

	switch {
	case imageURL != "":
		s.analyzeExternalURL(c, imageURL)
	case filePath != "":
		s.analyzeLocalFile(c, filePath)
	default:
		badRequest(c, "missing input: provide url or file")
	}
}

// analyzePost handles POST /analyze with a multipart "image" field.
func (s *Server) analyzePost(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "missing multipart field 'image'")
		return
	}

	stored, err := s.store.SaveUpload(fh)
	if err != nil {
		if errors.Is(err, ingest.ErrUnsupportedType) || errors.Is(err, ingest.ErrTooLarge) {
			badRequest(c, err.Error())
			return
		}
		pipelineError(c, "store upload", err)
		return
	}

	s.run(c, pipeline.Request{
		Ref: orchestrator.ImageRef{
			URL:       stored.PublicURL,
			LocalPath: stored.Path,
		},
		Method: models.MethodFileUpload,
	})
}

// analyzeExternalURL downloads the image locally, then passes the local URL
// to analyzers so distributed analyzers can fetch it over HTTP.
func (s *Server) analyzeExternalURL(c *gin.Context, imageURL string) {
	stored, err := s.store.Download(c.Request.Context(), imageURL)
	if err != nil {
		if errors.Is(err, ingest.ErrUnsupportedType) || errors.Is(err, ingest.ErrTooLarge) {
			badRequest(c, err.Error())
			return
		}
		pipelineError(c, "download image", err)
		return
	}

	s.run(c, pipeline.Request{
		Ref: orchestrator.ImageRef{
			URL:       stored.PublicURL,
			LocalPath: stored.Path,
		},
		Method:      models.MethodExternalURLDownloaded,
		OriginalURL: imageURL,
	})
}

// analyzeLocalFile analyzes a file in place (zero-copy mode).
func (s *Server) analyzeLocalFile(c *gin.Context, filePath string) {
	if _, err := os.Stat(filePath); err != nil {
		badRequest(c, "file not readable: "+filePath)
		return
	}

	s.run(c, pipeline.Request{
		Ref: orchestrator.ImageRef{
			FilePath:  filePath,
			LocalPath: filePath,
		},
		Method: models.MethodDirectFileAccess,
	})
}

func (s *Server) run(c *gin.Context, req pipeline.Request) {
	resp := s.pipeline.Run(c.Request.Context(), req)
	c.JSON(http.StatusOK, resp)
}
