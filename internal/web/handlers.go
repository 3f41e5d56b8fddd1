package web

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"

	"github.com/chengus/nyu-course-scraper/internal/bulletin"
	"github.com/chengus/nyu-course-scraper/internal/ics"
	applog "github.com/chengus/nyu-course-scraper/internal/log"
	"github.com/chengus/nyu-course-scraper/internal/model"
	"github.com/chengus/nyu-course-scraper/internal/schedule"
	"github.com/chengus/nyu-course-scraper/internal/store"
)

// handleSearch serves GET /api/search. At least one filter is required; an
// unfiltered query would return the entire catalog.
func (s *Server) handleSearch(c *gin.Context) {
	filter := store.SearchFilter{
		Code:        c.Query("code"),
		Title:       c.Query("title"),
		CRN:         c.Query("crn"),
		Schd:        c.Query("schd"),
		CampusGroup: c.Query("campus_group"),
	}
	if filter.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "at least one of code, title, crn, schd, campus_group must be provided",
		})
		return
	}

	results, err := s.db.SearchSections(c.Request.Context(), filter)
	if err != nil {
		applog.Error("search failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, results)
}

// detailsDTO is the course-details response shape, matching the original
// backend field-for-field.
type detailsDTO struct {
	Description              string          `json:"description"`
	ClassNotes               string          `json:"clssnotes"`
	HoursHTML                string          `json:"hours_html"`
	Status                   string          `json:"status"`
	Component                string          `json:"component"`
	InstructionalMethod      string          `json:"instructional_method"`
	CampusLocation           string          `json:"campus_location"`
	RegistrationRestrictions string          `json:"registration_restrictions"`
	MeetingHTML              string          `json:"meeting_html"`
	MeetPattern              string          `json:"meet_pattern"`
	MeetStartDate            string          `json:"meet_start_date"`
	MeetEndDate              string          `json:"meet_end_date"`
	DatesHTML                string          `json:"dates_html"`
	AllSections              json.RawMessage `json:"all_sections"`
	Raw                      json.RawMessage `json:"raw"`
}

// handleCourseDetails serves POST /api/course-details with two cache tiers:
// the in-process TTL cache, then the SQLite cache, then the bulletin API.
func (s *Server) handleCourseDetails(c *gin.Context) {
	var req bulletin.DetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	cacheKey := req.Group + "|" + req.Key + "|" + req.SrcDB
	if cached, found := s.detailsCache.Get(cacheKey); found {
		c.JSON(http.StatusOK, cached.(detailsDTO))
		return
	}

	if row, err := s.db.GetCourseDetails(ctx, req.Group, req.Key, req.SrcDB); err != nil {
		applog.Error("details cache read failed", err, "group", req.Group, "key", req.Key)
	} else if row != nil {
		dto := dtoFromStore(row)
		s.detailsCache.Set(cacheKey, dto, gocache.DefaultExpiration)
		c.JSON(http.StatusOK, dto)
		return
	}

	details, err := s.client.Details(ctx, req)
	if err != nil {
		applog.Error("details fetch failed", err, "group", req.Group, "key", req.Key)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch course details"})
		return
	}

	pattern, startDate, endDate := bulletin.ParseMeetingHTML(details.MeetingHTML)

	row := store.CourseDetails{
		GroupKey:                 req.Group,
		CRNKey:                   req.Key,
		SrcDB:                    req.SrcDB,
		Description:              details.Description,
		ClassNotes:               details.ClassNotes,
		HoursHTML:                details.HoursHTML,
		Status:                   details.Status,
		Component:                details.Component,
		InstructionalMethod:      details.InstructionalMethod,
		CampusLocation:           details.CampusLocation,
		RegistrationRestrictions: details.RegistrationRestrictions,
		MeetingHTML:              details.MeetingHTML,
		MeetPattern:              pattern,
		MeetStartDate:            startDate,
		MeetEndDate:              endDate,
		DatesHTML:                details.DatesHTML,
		AllSections:              string(details.AllInGroup),
		DetailsJSON:              string(details.Raw),
	}
	if err := s.db.PutCourseDetails(ctx, row); err != nil {
		// The fetched payload is still good; caching is best effort.
		applog.Error("details cache write failed", err, "group", req.Group, "key", req.Key)
	}

	dto := dtoFromStore(&row)
	s.detailsCache.Set(cacheKey, dto, gocache.DefaultExpiration)
	c.JSON(http.StatusOK, dto)
}

func dtoFromStore(d *store.CourseDetails) detailsDTO {
	return detailsDTO{
		Description:              d.Description,
		ClassNotes:               d.ClassNotes,
		HoursHTML:                d.HoursHTML,
		Status:                   d.Status,
		Component:                d.Component,
		InstructionalMethod:      d.InstructionalMethod,
		CampusLocation:           d.CampusLocation,
		RegistrationRestrictions: d.RegistrationRestrictions,
		MeetingHTML:              d.MeetingHTML,
		MeetPattern:              d.MeetPattern,
		MeetStartDate:            d.MeetStartDate,
		MeetEndDate:              d.MeetEndDate,
		DatesHTML:                d.DatesHTML,
		AllSections:              rawOrEmptyArray(d.AllSections),
		Raw:                      rawOrEmptyObject(d.DetailsJSON),
	}
}

func rawOrEmptyArray(s string) json.RawMessage {
	if s == "" {
		return json.RawMessage("[]")
	}
	return json.RawMessage(s)
}

func rawOrEmptyObject(s string) json.RawMessage {
	if s == "" {
		return json.RawMessage("{}")
	}
	return json.RawMessage(s)
}

// handleUpdateDatabase serves POST /api/update-database: a full scrape and
// reload of every configured campus group.
func (s *Server) handleUpdateDatabase(c *gin.Context) {
	res := s.refresher.RefreshAll(c.Request.Context())

	status := "success"
	for _, campus := range res.Campuses {
		if campus.Error != "" {
			status = "partial"
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":            status,
		"job_id":            res.JobID,
		"term":              res.Term,
		"campuses":          res.Campuses,
		"records_processed": res.Total,
	})
}

// handleDatabaseStatus serves GET /api/database-status.
func (s *Server) handleDatabaseStatus(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := s.db.Stats(ctx)
	if err != nil {
		applog.Error("status query failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get database status"})
		return
	}

	lastUpdate, err := s.db.LastUpdate(ctx)
	if err != nil {
		applog.Error("last-update query failed", err)
	}

	resp := gin.H{
		"total_courses":  stats.TotalCourses,
		"total_sections": stats.TotalSections,
		"campus_groups":  stats.CampusGroups,
	}
	if !lastUpdate.IsZero() {
		resp["last_update"] = lastUpdate
	}
	c.JSON(http.StatusOK, resp)
}

// scheduleRequest carries the frontend's staged-course snapshot. The staged
// set lives in the browser's local storage; each derivation request sends the
// whole set.
// An empty or absent set is legal here: clearing the schedule is a normal
// trigger and derives an empty event list.
type scheduleRequest struct {
	Courses []model.StagedCourse `json:"courses"`
}

// handleScheduleEvents serves POST /api/schedule/events: one derivation pass
// over the staged set, returning the event list with conflict flags.
func (s *Server) handleScheduleEvents(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	events := schedule.Derive(req.Courses, s.cfg.DefaultYear)
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// handleScheduleExport serves POST /api/schedule/export, returning the ICS
// document as a download. An empty derivation is a user-facing validation
// error; no partial or empty document is produced.
func (s *Server) handleScheduleExport(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	events := schedule.Derive(req.Courses, s.cfg.DefaultYear)

	doc, err := ics.Encode(events)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "nothing to export: no staged course has scheduled meeting times",
		})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+ics.Filename+`"`)
	c.Data(http.StatusOK, ics.ContentType, []byte(doc))
}
