package delivery

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/dustin/go-humanize"
)

//go:embed web/index.html
var webFS embed.FS

var pageTmpl = template.Must(template.ParseFS(webFS, "web/index.html"))

type pageData struct {
	Title      string
	MaxUpload  string
	ConsultURL string
}

type PageHandler struct {
	data pageData
	log  *logger.ZapLogger
}

func NewPageHandler(title string, maxUpload int64, log *logger.ZapLogger) *PageHandler {
	return &PageHandler{
		data: pageData{
			Title:      title,
			MaxUpload:  humanize.IBytes(uint64(maxUpload)),
			ConsultURL: "/api/consult",
		},
		log: log,
	}
}

func (h *PageHandler) Index(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, h.data); err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "render page", Service: serviceName, Error: err})
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
