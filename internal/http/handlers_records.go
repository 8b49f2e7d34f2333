package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"outreach/internal/budget"
	"outreach/internal/core"
	"outreach/internal/stats"
)

// labels name an entity in toast messages. subject carries its particle.
type labels struct {
	noun    string
	subject string
}

var (
	organizationLabels = labels{noun: "수요처", subject: "수요처 정보가"}
	performanceLabels  = labels{noun: "실적 데이터", subject: "실적 데이터가"}
	budgetItemLabels   = labels{noun: "예산 항목", subject: "예산 항목이"}
	expenditureLabels  = labels{noun: "지출 내역", subject: "지출 내역이"}
)

func createHandler[T any](l labels, create func(context.Context, T) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in T
		if err := decodeJSON(w, r, &in); err != nil {
			BadRequest(err.Error()).Write(w)
			return
		}
		out, err := create(r.Context(), in)
		if err != nil {
			ErrorResponse(r, err, "등록 실패").Write(w)
			return
		}
		NewResponse().Status(http.StatusCreated).JSON(out).
			Success("등록 완료", l.subject+" 성공적으로 등록되었습니다").
			Write(w)
	}
}

func updateHandler[P, T any](l labels, update func(context.Context, string, P) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch P
		if err := decodeJSON(w, r, &patch); err != nil {
			BadRequest(err.Error()).Write(w)
			return
		}
		out, err := update(r.Context(), chi.URLParam(r, "id"), patch)
		if err != nil {
			ErrorResponse(r, err, "수정 실패").Write(w)
			return
		}
		NewResponse().JSON(out).
			Success("수정 완료", l.subject+" 성공적으로 수정되었습니다").
			Write(w)
	}
}

func deleteHandler(l labels, del func(context.Context, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := del(r.Context(), chi.URLParam(r, "id")); err != nil {
			ErrorResponse(r, err, "삭제 실패").Write(w)
			return
		}
		NewResponse().Status(http.StatusNoContent).
			Success("삭제 완료", l.subject+" 성공적으로 삭제되었습니다").
			Write(w)
	}
}

func (s *Server) handleListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := s.deps.Live.ListOrganizations(r.Context())
	if err != nil {
		ErrorResponse(r, err, "조회 실패").Write(w)
		return
	}
	NewResponse().JSON(orgs).Write(w)
}

// performanceFilter reads start, end, organization and search.
func performanceFilter(r *http.Request) (stats.Filter, error) {
	q := r.URL.Query()
	start, end, err := queryRange(q)
	if err != nil {
		return stats.Filter{}, err
	}
	return stats.Filter{
		Start:            start,
		End:              end,
		OrganizationName: strings.TrimSpace(q.Get("organization")),
		Search:           q.Get("search"),
	}, nil
}

// filteredPerformances answers 400 for a bad filter and the mapped
// error for a failed read. ok reports whether the caller should go on.
func (s *Server) filteredPerformances(w http.ResponseWriter, r *http.Request, title string) ([]core.PerformanceRecord, bool) {
	f, err := performanceFilter(r)
	if err != nil {
		BadRequest(err.Error()).Write(w)
		return nil, false
	}
	perfs, err := s.deps.Live.ListPerformances(r.Context())
	if err != nil {
		ErrorResponse(r, err, title).Write(w)
		return nil, false
	}
	return f.Apply(perfs), true
}

func (s *Server) handleListPerformances(w http.ResponseWriter, r *http.Request) {
	perfs, ok := s.filteredPerformances(w, r, "조회 실패")
	if !ok {
		return
	}
	NewResponse().JSON(perfs).Write(w)
}

func (s *Server) handleListBudgetItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.Live.ListBudgetItems(r.Context())
	if err != nil {
		ErrorResponse(r, err, "조회 실패").Write(w)
		return
	}
	NewResponse().JSON(budget.SortItems(items)).Write(w)
}

// handleCreateBudgetItem adds an empty line when the body is empty, the
// way the budget table's add button does.
func (s *Server) handleCreateBudgetItem(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength == 0 {
		item, err := s.deps.Records.AddBudgetItem(r.Context())
		if err != nil {
			ErrorResponse(r, err, "등록 실패").Write(w)
			return
		}
		NewResponse().Status(http.StatusCreated).JSON(item).Write(w)
		return
	}
	createHandler(budgetItemLabels, s.deps.Live.AddBudgetItem)(w, r)
}

type reorderRequest struct {
	IDs  []string `json:"ids,omitempty"`
	From *int     `json:"from,omitempty"`
	To   *int     `json:"to,omitempty"`
}

// handleReorderBudgetItems accepts either the full id order or a single
// move between display positions.
func (s *Server) handleReorderBudgetItems(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequest(err.Error()).Write(w)
		return
	}

	var err error
	switch {
	case len(req.IDs) > 0:
		err = s.deps.Records.ReorderBudgetItems(r.Context(), req.IDs)
	case req.From != nil && req.To != nil:
		err = s.deps.Records.MoveBudgetItem(r.Context(), *req.From, *req.To)
	default:
		BadRequest("ids or from/to required").Write(w)
		return
	}
	if err != nil {
		ErrorResponse(r, err, "순서 변경 실패").Write(w)
		return
	}

	items, err := s.deps.Live.ListBudgetItems(r.Context())
	if err != nil {
		ErrorResponse(r, err, "조회 실패").Write(w)
		return
	}
	NewResponse().JSON(budget.SortItems(items)).
		Success("순서 변경 완료", "예산 항목 순서가 저장되었습니다").
		Write(w)
}

func (s *Server) handleListExpenditures(w http.ResponseWriter, r *http.Request) {
	start, end, err := queryRange(r.URL.Query())
	if err != nil {
		BadRequest(err.Error()).Write(w)
		return
	}
	exps, err := s.deps.Live.ListExpenditures(r.Context())
	if err != nil {
		ErrorResponse(r, err, "조회 실패").Write(w)
		return
	}
	rng := budget.DateRange{Start: start, End: end}
	NewResponse().JSON(budget.SortExpenditures(budget.FilterExpenditures(exps, rng))).Write(w)
}
