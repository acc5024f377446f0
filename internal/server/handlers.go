package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/rustyeddy/tfcandle/market"
)

type uploadForm struct {
	Timeframe int `validate:"required,gte=1"`
}

type uploadResponse struct {
	ID       string                  `json:"id"`
	JSONFile string                  `json:"json_file"`
	Artifact string                  `json:"artifact"`
	Candle   market.AggregatedCandle `json:"candle"`
}

// handleUpload accepts a multipart form with a csv_file part and a
// timeframe field.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			s.renderError(w, r, newError(http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE",
				fmt.Sprintf("upload exceeds %d bytes", mbe.Limit)))
			return
		}
		s.renderError(w, r, newError(http.StatusBadRequest, "INVALID_FORM", "expected a multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	raw := strings.TrimSpace(r.FormValue("timeframe"))
	tf, err := strconv.Atoi(raw)
	if err != nil {
		s.renderError(w, r, newError(http.StatusBadRequest, "INVALID_PARAMETER",
			fmt.Sprintf("timeframe must be an integer, got %q", raw)))
		return
	}
	if err := s.validate.Struct(uploadForm{Timeframe: tf}); err != nil {
		s.renderError(w, r, errorFor(fmt.Errorf("%w: %d", market.ErrInvalidWindowSize, tf)))
		return
	}

	file, hdr, err := r.FormFile("csv_file")
	if err != nil {
		s.renderError(w, r, newError(http.StatusBadRequest, "MISSING_PARAMETER", "csv_file is required"))
		return
	}
	defer file.Close()

	res, err := s.intake.Process(r.Context(), hdr.Filename, file, tf)
	if err != nil {
		s.renderError(w, r, errorFor(err))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, uploadResponse{
		ID:       res.ID,
		JSONFile: filepath.Base(res.Artifact),
		Artifact: res.Artifact,
		Candle:   res.Candle,
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	c, err := s.intake.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.renderError(w, r, errorFor(err))
		return
	}
	render.JSON(w, r, c)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, e *apiError) {
	if e.StatusCode >= http.StatusInternalServerError {
		s.log.Error("request failed",
			slog.String("error_code", e.ErrorCode),
			slog.Any("error", e.cause))
	}
	if err := render.Render(w, r, e); err != nil {
		s.log.Error("render error response", slog.Any("error", err))
	}
}
