package handlers

import (
	"fmt"
	"log"
	"net/http"

	"blumn/internal/events"
	"blumn/internal/ingest"
)

// ImportExcel accepts a legacy care spreadsheet as a multipart upload
// ("file" field) and loads its plants and care history.
func (a *API) ImportExcel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		JSONError(w, "Invalid multipart upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		JSONError(w, "Missing \"file\" field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	stats, err := ingest.ImportExcel(a.DB, file)
	if err != nil {
		JSONError(w, "Import failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	a.Bus.Publish(events.Event{
		Type:     events.ImportCompleted,
		Severity: events.SeverityInfo,
		Message: fmt.Sprintf("Imported %s: %d plants, %d care events",
			header.Filename, stats.PlantsCreated, stats.EventsCreated),
		Metadata: map[string]string{
			"filename": header.Filename,
		},
	})

	log.Printf("📥 Imported %s", header.Filename)
	JSONResponse(w, stats)
}
