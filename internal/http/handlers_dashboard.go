package http

import (
	"fmt"
	"net/http"
	"strings"

	"outreach/internal/budget"
	"outreach/internal/core"
	"outreach/internal/region"
	"outreach/internal/services"
	"outreach/internal/stats"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end, err := queryRange(q)
	if err != nil {
		BadRequest(err.Error()).Write(w)
		return
	}
	city := strings.TrimSpace(q.Get("city"))
	if city != "" && !region.IsKnown(city) {
		BadRequest(fmt.Sprintf("unknown city %q", city)).Write(w)
		return
	}
	view, err := s.deps.Dashboard.Build(r.Context(), services.DashboardQuery{
		Start:  start,
		End:    end,
		Region: strings.TrimSpace(q.Get("region")),
		City:   city,
	})
	if err != nil {
		ErrorResponse(r, err, "조회 실패").Write(w)
		return
	}
	NewResponse().JSON(view).Write(w)
}

func (s *Server) handleBudgetSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end, err := queryRange(q)
	if err != nil {
		BadRequest(err.Error()).Write(w)
		return
	}
	summary, err := s.deps.Dashboard.BudgetSummary(r.Context(),
		budget.DateRange{Start: start, End: end}, strings.TrimSpace(q.Get("region")))
	if err != nil {
		ErrorResponse(r, err, "조회 실패").Write(w)
		return
	}
	NewResponse().JSON(summary).Write(w)
}

// optionsResponse feeds the select boxes of the forms and filters.
type optionsResponse struct {
	Regions       map[region.Region][]string `json:"regions"`
	Programs      []core.Program             `json:"programs"`
	Organizations []string                   `json:"organizations"`
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	orgs, err := s.deps.Live.ListOrganizations(r.Context())
	if err != nil {
		ErrorResponse(r, err, "조회 실패").Write(w)
		return
	}
	NewResponse().JSON(optionsResponse{
		Regions: map[region.Region][]string{
			region.North: region.CitiesOf(region.North),
			region.South: region.CitiesOf(region.South),
		},
		Programs:      core.Programs(),
		Organizations: stats.OrganizationNames(orgs),
	}).Write(w)
}
