package document

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/mvahidi/copilot-backend/internal/config"
	"github.com/mvahidi/copilot-backend/internal/entity"
	"github.com/mvahidi/copilot-backend/internal/pkg/validator"
)

type mockIngest struct {
	written int
	err     error
	gotFile string
	gotText string
	called  bool
}

func (m *mockIngest) Ingest(ctx context.Context, fileName, fullText string) (int, error) {
	m.called = true
	m.gotFile = fileName
	m.gotText = fullText
	if m.err != nil {
		return 0, m.err
	}
	return m.written, nil
}

func buildPDF(t *testing.T, content string) []byte {
	t.Helper()

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	doc.AddPage()
	doc.Cell(40, 10, content)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("build fixture pdf: %v", err)
	}
	return buf.Bytes()
}

func multipartUpload(t *testing.T, filename, contentType string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create multipart part: %v", err)
	}
	part.Write(data)
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func newTestHandler(ingest IngestUsecase) *Handler {
	cfg := config.FileUploadConfig{MaxFileSize: 5 << 20, MaxUploadSize: 32 << 20}
	return NewHandler(ingest, validator.NewFileValidator(cfg), cfg.MaxUploadSize)
}

func TestUpload_Success(t *testing.T) {
	ingest := &mockIngest{written: 3}
	h := newTestHandler(ingest)

	req := multipartUpload(t, "thesis notes.pdf", "application/pdf", buildPDF(t, "chapter one content"))
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp entity.UploadResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "success" || resp.ChunksWritten != 3 {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.Filename != "thesis_notes.pdf" {
		t.Errorf("filename not sanitized: %q", resp.Filename)
	}
	if ingest.gotFile != "thesis_notes.pdf" {
		t.Errorf("ingest received filename %q", ingest.gotFile)
	}
	if ingest.gotText == "" {
		t.Error("ingest received no text")
	}
}

func TestUpload_RejectsNonPDF(t *testing.T) {
	ingest := &mockIngest{}
	h := newTestHandler(ingest)

	req := multipartUpload(t, "notes.txt", "text/plain", []byte("plain text"))
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if ingest.called {
		t.Error("ingest must not run for rejected files")
	}
}

func TestUpload_RejectsCorruptPDF(t *testing.T) {
	ingest := &mockIngest{}
	h := newTestHandler(ingest)

	req := multipartUpload(t, "broken.pdf", "application/pdf", []byte("not a pdf at all"))
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if ingest.called {
		t.Error("ingest must not run for unreadable files")
	}
}

func TestUpload_MissingFile(t *testing.T) {
	h := newTestHandler(&mockIngest{})

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	w.Close()
	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())

	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUpload_IngestFailure(t *testing.T) {
	h := newTestHandler(&mockIngest{err: errors.New("store unavailable")})

	req := multipartUpload(t, "doc.pdf", "application/pdf", buildPDF(t, "some content"))
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
