package http

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"

	"outreach/internal/log"
	"outreach/internal/services"
	"outreach/internal/transfer"
)

func (s *Server) handleImportOrganizations(w http.ResponseWriter, r *http.Request) {
	f, xlsx, err := uploadedFile(w, r)
	if err != nil {
		BadRequest(err.Error()).Write(w)
		return
	}
	defer f.Close()

	res, err := s.deps.Importer.ImportOrganizations(r.Context(), f, xlsx)
	s.writeImportResult(w, r, res, err)
}

func (s *Server) handleImportPerformances(w http.ResponseWriter, r *http.Request) {
	f, _, err := uploadedFile(w, r)
	if err != nil {
		BadRequest(err.Error()).Write(w)
		return
	}
	defer f.Close()

	res, err := s.deps.Importer.ImportPerformances(r.Context(), f)
	s.writeImportResult(w, r, res, err)
}

func (s *Server) writeImportResult(w http.ResponseWriter, r *http.Request, res services.ImportResult, err error) {
	if err != nil {
		s.logger.WarnContext(r.Context(), "Import file unreadable", log.FieldError, err)
		NewResponse().Status(http.StatusBadRequest).
			JSON(errorBody{Error: err.Error()}).
			Error("업로드 오류", "파일 형식을 확인해주세요").
			Write(w)
		return
	}

	b := NewResponse().JSON(res)
	switch {
	case res.Succeeded == 0:
		b.Warning("데이터 없음", "파일에서 유효한 데이터를 찾을 수 없습니다")
	case res.Failed > 0:
		b.Warning("가져오기 완료", res.Message())
	default:
		b.Success("가져오기 완료", res.Message())
	}
	b.Write(w)
}

func (s *Server) handleOrganizationTemplate(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := transfer.OrganizationTemplate(&buf); err != nil {
		ErrorResponse(r, err, "다운로드 실패").Write(w)
		return
	}
	writeAttachment(w, "text/csv; charset=utf-8", "수요처_등록_양식.csv", &buf)
}

func (s *Server) handleExportPerformancesCSV(w http.ResponseWriter, r *http.Request) {
	perfs, ok := s.filteredPerformances(w, r, "내보내기 실패")
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := transfer.WritePerformancesCSV(&buf, perfs); err != nil {
		ErrorResponse(r, err, "내보내기 실패").Write(w)
		return
	}
	s.logger.InfoContext(r.Context(), "Performances exported",
		log.FieldOperation, log.OpExport, log.FieldCount, len(perfs), "format", "csv")
	writeAttachment(w, "text/csv; charset=utf-8", s.exportName("csv"), &buf)
}

func (s *Server) handleExportPerformancesXLSX(w http.ResponseWriter, r *http.Request) {
	perfs, ok := s.filteredPerformances(w, r, "내보내기 실패")
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := transfer.WritePerformancesXLSX(&buf, perfs); err != nil {
		ErrorResponse(r, err, "내보내기 실패").Write(w)
		return
	}
	s.logger.InfoContext(r.Context(), "Performances exported",
		log.FieldOperation, log.OpExport, log.FieldCount, len(perfs), "format", "xlsx")
	writeAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", s.exportName("xlsx"), &buf)
}

func (s *Server) exportName(ext string) string {
	return fmt.Sprintf("실적데이터_%s.%s", s.now().Format("2006-01-02"), ext)
}

// writeAttachment buffers the file first so that a failed render still
// gets a proper error status.
func writeAttachment(w http.ResponseWriter, contentType, filename string, body io.Reader) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}
