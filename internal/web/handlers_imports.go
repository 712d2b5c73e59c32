package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/catalogimport/internal/core"
	"github.com/JonMunkholm/catalogimport/internal/logging"
	"github.com/JonMunkholm/catalogimport/internal/sheet"
)

// multipartOverhead is allowed on top of the file size for form fields
// and part headers.
const multipartOverhead = 1 << 20

// maxMultipartMemory is kept in memory while parsing; the rest spills to
// temporary files.
const maxMultipartMemory = 8 << 20

// errNoFile is matched by core.MapError's "no file provided" pattern.
var errNoFile = errors.New("no file provided")

// handlePreview reads an uploaded spreadsheet and previews it as a new
// batch. The response is the batch snapshot including the preview.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	productType, ok := core.ParseProductType(chi.URLParam(r, "productType"))
	if !ok {
		s.respondError(w, r, fmt.Errorf("%w: %s", core.ErrUnknownProductType, chi.URLParam(r, "productType")), 0)
		return
	}
	vendorID := core.VendorIDFromContext(r.Context())

	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, fmt.Errorf("%w: request body too large", sheet.ErrFileTooLarge), 0)
			return
		}
		s.respondError(w, r, core.NewFatalInputError(core.ErrUnreadableFile, "invalid form: "+err.Error()), 0)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errNoFile, http.StatusBadRequest)
		return
	}
	defer file.Close()

	charset := r.FormValue("charset")
	if charset == "" {
		charset = s.cfg.Import.CSVCharset
	}

	sh, err := sheet.Read(file, header.Filename, sheet.Options{
		Charset:  charset,
		MaxBytes: maxSize,
	})
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	logging.FromContext(r.Context()).Debug("sheet read",
		"file", header.Filename,
		"sheet", sh.Name,
		"rows", len(sh.Rows),
	)

	batch, err := s.service.StartBatch(r.Context(), core.BatchRequest{
		VendorID:    vendorID,
		ProductType: productType,
		FileName:    header.Filename,
		Rows:        sh.Rows,
	})
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	writeJSONStatus(w, http.StatusCreated, batch.Snapshot())
}

// handleGetBatch returns a batch snapshot.
func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	batch, err := s.service.GetBatch(chi.URLParam(r, "batchID"), core.VendorIDFromContext(r.Context()))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, batch.Snapshot())
}

// handleConfirmBatch commits a previewed batch. On a store conflict the
// error response is returned; the batch snapshot keeps the partial result.
func (s *Server) handleConfirmBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "batchID")
	vendorID := core.VendorIDFromContext(r.Context())

	if _, err := s.service.ConfirmBatch(r.Context(), id, vendorID); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	batch, err := s.service.GetBatch(id, vendorID)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, batch.Snapshot())
}

// handleCancelBatch discards a previewed batch.
func (s *Server) handleCancelBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "batchID")
	vendorID := core.VendorIDFromContext(r.Context())

	if err := s.service.CancelBatch(id, vendorID); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	batch, err := s.service.GetBatch(id, vendorID)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, batch.Snapshot())
}

// handleErrorReport downloads the batch's invalid rows, followed by rows
// whose update failed on confirm, as CSV.
func (s *Server) handleErrorReport(w http.ResponseWriter, r *http.Request) {
	batch, err := s.service.GetBatch(chi.URLParam(r, "batchID"), core.VendorIDFromContext(r.Context()))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	var rows []core.RowError
	if res := batch.Result(); res != nil {
		rows = append(rows, res.Invalid...)
	}
	if commit := batch.CommitResult(); commit != nil {
		rows = append(rows, commit.FailedUpdates...)
	}

	filename := fmt.Sprintf("import_errors_%s.csv", batch.ID)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := sheet.WriteErrorReport(w, rows); err != nil {
		logging.FromContext(r.Context()).Error("error report write failed", "batch_id", batch.ID, "error", err)
	}
}

// handleImportQueue reports import slot usage.
func (s *Server) handleImportQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.ImportQueueStatus())
}
