package web

import (
	"congregation/internal/application/listutil"
	"congregation/internal/application/projections"
	"congregation/internal/domain/attendance"
)

type recordDTO struct {
	ID           string `json:"id"`
	MemberID     string `json:"member_id"`
	Date         string `json:"date"`
	ServiceType  string `json:"service_type"`
	Status       string `json:"status"`
	Notes        string `json:"notes"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Congregation string `json:"congregation"`
}

type groupDTO struct {
	Key          string      `json:"key"`
	Date         string      `json:"date"`
	ServiceType  string      `json:"service_type"`
	PresentCount int         `json:"present_count"`
	AbsentCount  int         `json:"absent_count"`
	Total        int         `json:"total"`
	Expanded     bool        `json:"expanded"`
	Items        []recordDTO `json:"items"`
}

type filterDTO struct {
	From        string `json:"from"`
	To          string `json:"to"`
	ServiceType string `json:"type"`
	Search      string `json:"q"`
}

// pageDTO is listutil.PageInfo plus the navigation flags a pager needs.
type pageDTO struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	Total      int  `json:"total"` // groups, not records
	TotalPages int  `json:"total_pages"`
	FirstGroup int  `json:"first_group"` // 1-indexed; 0 when empty
	LastGroup  int  `json:"last_group"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

func toPageDTO(p listutil.PageInfo) pageDTO {
	return pageDTO{
		Page:       p.Page,
		PerPage:    p.PerPage,
		Total:      p.Total,
		TotalPages: p.TotalPages,
		FirstGroup: p.StartRow(),
		LastGroup:  p.EndRow(),
		HasNext:    p.HasNext(),
		HasPrev:    p.HasPrev(),
	}
}

type historyResponse struct {
	Groups       []groupDTO `json:"groups"`
	Page         pageDTO    `json:"page"`
	TotalRecords int        `json:"total_records"`
	Filter       filterDTO  `json:"filter"`
	Expanded     string     `json:"expanded,omitempty"`
}

type summaryResponse struct {
	MemberID string    `json:"member_id"`
	Total    int       `json:"total"`
	Present  int       `json:"present"`
	Absent   int       `json:"absent"`
	Rate     int       `json:"rate"`
	Filter   filterDTO `json:"filter"`
}

type streaksResponse struct {
	MemberID    string    `json:"member_id"`
	Current     int       `json:"current"`
	Best        int       `json:"best"`
	Occurrences int       `json:"occurrences"`
	Filter      filterDTO `json:"filter"`
}

type cellDTO struct {
	Date    string `json:"date"`
	InMonth bool   `json:"in_month"`
	Status  string `json:"status"`
}

type calendarResponse struct {
	MemberID string      `json:"member_id"`
	Year     int         `json:"year"`
	Month    int         `json:"month"`
	Weeks    [][]cellDTO `json:"weeks"`
}

type dayResponse struct {
	MemberID string      `json:"member_id"`
	Date     string      `json:"date"`
	Records  []recordDTO `json:"records"`
}

type deleteRecordResponse struct {
	Deleted int `json:"deleted"`
}

type deleteGroupResponse struct {
	Date        string `json:"date"`
	ServiceType string `json:"service_type"`
	Deleted     int    `json:"deleted"`
	NotFound    bool   `json:"not_found"`
}

type digestResponse struct {
	MessageID     string `json:"message_id"`
	Total         int    `json:"total"`
	Present       int    `json:"present"`
	Absent        int    `json:"absent"`
	Rate          int    `json:"rate"`
	CurrentStreak int    `json:"current_streak"`
	BestStreak    int    `json:"best_streak"`
}

func toRecordDTO(r attendance.Record) recordDTO {
	return recordDTO{
		ID:           r.ID,
		MemberID:     r.MemberID,
		Date:         r.Day(),
		ServiceType:  r.ServiceType,
		Status:       r.Status,
		Notes:        r.Notes,
		FirstName:    r.Member.FirstName,
		LastName:     r.Member.LastName,
		Congregation: r.Member.Congregation,
	}
}

func toRecordDTOs(records []attendance.Record) []recordDTO {
	out := make([]recordDTO, 0, len(records))
	for _, r := range records {
		out = append(out, toRecordDTO(r))
	}
	return out
}

func toFilterDTO(f attendance.Filter) filterDTO {
	return filterDTO{From: f.DateFrom, To: f.DateTo, ServiceType: f.ServiceType, Search: f.Search}
}

func toHistoryResponse(res projections.HistoryResult) historyResponse {
	out := historyResponse{
		Groups:       make([]groupDTO, 0, len(res.Groups)),
		Page:         toPageDTO(res.PageInfo),
		TotalRecords: res.TotalRecords,
		Filter:       toFilterDTO(res.Query.Filter),
	}
	if res.Query.Expanded != nil {
		out.Expanded = groupPath(*res.Query.Expanded)
	}
	for _, g := range res.Groups {
		out.Groups = append(out.Groups, groupDTO{
			Key:          groupPath(g.Key()),
			Date:         g.Date,
			ServiceType:  g.ServiceType,
			PresentCount: g.PresentCount,
			AbsentCount:  g.AbsentCount,
			Total:        g.Total,
			Expanded:     g.Expanded,
			Items:        toRecordDTOs(g.Items),
		})
	}
	return out
}

// groupPath renders a key the way the group routes and the expand parameter accept it.
func groupPath(k attendance.GroupKey) string {
	return k.Date + "/" + serviceTypeSegment(k.ServiceType)
}

func toCalendarResponse(res projections.MemberCalendarResult) calendarResponse {
	weeks := make([][]cellDTO, 0, len(res.Weeks))
	for _, week := range res.Weeks {
		row := make([]cellDTO, 0, len(week))
		for _, c := range week {
			row = append(row, cellDTO{Date: c.Date, InMonth: c.InTargetMonth, Status: c.Status})
		}
		weeks = append(weeks, row)
	}
	return calendarResponse{MemberID: res.MemberID, Year: res.Year, Month: res.Month, Weeks: weeks}
}
