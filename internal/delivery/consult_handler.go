package delivery

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Vovarama1992/ai_doctor/internal/ports"
	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const serviceName = "ai_doctor"

type ConsultHandler struct {
	svc       ports.ConsultationService
	uploadDir string
	outputDir string
	maxUpload int64
	log       *logger.ZapLogger
}

func NewConsultHandler(
	svc ports.ConsultationService,
	uploadDir, outputDir string,
	maxUpload int64,
	log *logger.ZapLogger,
) *ConsultHandler {
	return &ConsultHandler{
		svc:       svc,
		uploadDir: uploadDir,
		outputDir: outputDir,
		maxUpload: maxUpload,
		log:       log,
	}
}

type consultResponse struct {
	Transcript string         `json:"transcript"`
	Reply      string         `json:"reply"`
	AudioURL   *string        `json:"audio_url"`
	Notices    []ports.Notice `json:"notices"`
}

// Consult accepts optional "audio" and "image" parts and runs one consultation.
func (h *ConsultHandler) Consult(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
			return
		}
		h.log.Log(logger.LogEntry{Level: "warn", Message: "invalid multipart", Service: serviceName, Error: err})
		http.Error(w, "invalid multipart: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	var req ports.ConsultRequest
	var err error

	if req.AudioPath, err = h.saveUpload(r, "audio"); err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "failed to store audio", Service: serviceName, Error: err})
		http.Error(w, "failed to store audio", http.StatusInternalServerError)
		return
	}
	defer removeIfSet(req.AudioPath)

	if req.ImagePath, err = h.saveUpload(r, "image"); err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "failed to store image", Service: serviceName, Error: err})
		http.Error(w, "failed to store image", http.StatusInternalServerError)
		return
	}
	defer removeIfSet(req.ImagePath)

	out := h.svc.Consult(r.Context(), req)

	resp := consultResponse{
		Transcript: out.Transcript,
		Reply:      out.Reply,
		Notices:    out.Notices,
	}
	if resp.Notices == nil {
		resp.Notices = []ports.Notice{}
	}
	if out.AudioPath != "" {
		u := "/audio/" + filepath.Base(out.AudioPath)
		resp.AudioURL = &u
	}

	writeJSON(w, http.StatusOK, resp)
}

// Audio serves a generated reply file by base name.
func (h *ConsultHandler) Audio(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || name != filepath.Base(name) || !strings.HasPrefix(name, "reply_") {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.outputDir, name)
	if _, err := os.Stat(path); err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	http.ServeFile(w, r, path)
}

// saveUpload copies the named part into the upload dir under a fresh name.
// A missing part is not an error and yields "".
func (h *ConsultHandler) saveUpload(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	path := filepath.Join(h.uploadDir, fmt.Sprintf("%s_%s%s", field, uuid.NewString(), ext))

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(path)
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func removeIfSet(path string) {
	if path != "" {
		_ = os.Remove(path)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
