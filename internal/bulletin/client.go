// Package bulletin is the HTTP client for the NYU class-search API
// (bulletins.nyu.edu). It covers the two routes the app needs: the bulk
// section search used for catalog refresh, and the per-course details route.
package bulletin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/chengus/nyu-course-scraper/internal/store"
)

const defaultBaseURL = "https://bulletins.nyu.edu/class-search/api/"

// The bulletin API rejects requests that do not look like its own frontend.
var defaultHeaders = map[string]string{
	"Accept":           "application/json, text/javascript, */*; q=0.01",
	"Content-Type":     "application/json",
	"Origin":           "https://bulletins.nyu.edu",
	"Referer":          "https://bulletins.nyu.edu/class-search/",
	"User-Agent":       "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	"X-Requested-With": "XMLHttpRequest",
}

// Client talks to the bulletin API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient returns a Client with a sane request timeout.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
	}
}

// NewClientWithBaseURL is used by tests to point at a local server.
func NewClientWithBaseURL(base string) *Client {
	c := NewClient()
	c.baseURL = base
	return c
}

// flexInt tolerates the API returning numeric fields as either numbers or
// strings; blank strings become zero.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(n)
	return nil
}

type sectionRecord struct {
	Key          string  `json:"key"`
	Code         string  `json:"code"`
	Title        string  `json:"title"`
	Hide         string  `json:"hide"`
	CRN          string  `json:"crn"`
	No           string  `json:"no"`
	Total        flexInt `json:"total"`
	Schd         string  `json:"schd"`
	Stat         string  `json:"stat"`
	IsCancelled  string  `json:"isCancelled"`
	Meets        string  `json:"meets"`
	MpKey        string  `json:"mpkey"`
	MeetingTimes string  `json:"meetingTimes"`
	Instr        string  `json:"instr"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	SrcDB        string  `json:"srcdb"`
}

type searchResponse struct {
	Results []sectionRecord `json:"results"`
}

type searchPayload struct {
	Other    map[string]string `json:"other"`
	Criteria []criterion       `json:"criteria"`
}

type criterion struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Search posts one fose/search request for the given term, career, and camp
// filter string and returns the section records (one request, no pagination;
// the API returns the full result set).
func (c *Client) Search(ctx context.Context, srcdb, career, camp string) ([]store.Section, error) {
	params := url.Values{}
	params.Set("page", "fose")
	params.Set("route", "search")
	params.Set("career", career)
	params.Set("camp", camp)

	payload := searchPayload{
		Other: map[string]string{"srcdb": srcdb},
		Criteria: []criterion{
			{Field: "career", Value: career},
			{Field: "camp", Value: camp},
		},
	}

	body, err := c.post(ctx, params, payload)
	if err != nil {
		return nil, err
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	sections := make([]store.Section, 0, len(parsed.Results))
	for _, rec := range parsed.Results {
		sections = append(sections, store.Section{
			CourseCode:   rec.Code,
			Key:          rec.Key,
			Code:         rec.Code,
			Title:        rec.Title,
			Hide:         rec.Hide,
			CRN:          rec.CRN,
			No:           rec.No,
			Total:        int(rec.Total),
			Schd:         rec.Schd,
			Stat:         rec.Stat,
			IsCancelled:  rec.IsCancelled,
			Meets:        rec.Meets,
			MpKey:        rec.MpKey,
			MeetingTimes: rec.MeetingTimes,
			Instr:        rec.Instr,
			StartDate:    rec.StartDate,
			EndDate:      rec.EndDate,
			SrcDB:        rec.SrcDB,
		})
	}
	return sections, nil
}

// DetailsRequest identifies one course on the fose/details route.
type DetailsRequest struct {
	Group   string `json:"group" binding:"required"`
	Key     string `json:"key" binding:"required"`
	SrcDB   string `json:"srcdb" binding:"required"`
	Matched string `json:"matched"`
}

// Details is the parsed details payload plus the raw response body.
type Details struct {
	Description              string
	ClassNotes               string
	HoursHTML                string
	Status                   string
	Component                string
	InstructionalMethod      string
	CampusLocation           string
	RegistrationRestrictions string
	MeetingHTML              string
	DatesHTML                string
	AllInGroup               json.RawMessage
	Raw                      json.RawMessage
}

type detailsResponse struct {
	Description              string          `json:"description"`
	ClassNotes               string          `json:"clssnotes"`
	HoursHTML                string          `json:"hours_html"`
	Status                   string          `json:"status"`
	Component                string          `json:"component"`
	InstructionalMethod      string          `json:"instructional_method"`
	CampusLocation           string          `json:"campus_location"`
	RegistrationRestrictions string          `json:"registration_restrictions"`
	MeetingHTML              string          `json:"meeting_html"`
	DatesHTML                string          `json:"dates_html"`
	AllInGroup               json.RawMessage `json:"allInGroup"`
}

// Details posts one fose/details request.
func (c *Client) Details(ctx context.Context, req DetailsRequest) (*Details, error) {
	params := url.Values{}
	params.Set("page", "fose")
	params.Set("route", "details")

	body, err := c.post(ctx, params, req)
	if err != nil {
		return nil, err
	}

	var parsed detailsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode details response: %w", err)
	}

	return &Details{
		Description:              parsed.Description,
		ClassNotes:               parsed.ClassNotes,
		HoursHTML:                parsed.HoursHTML,
		Status:                   parsed.Status,
		Component:                parsed.Component,
		InstructionalMethod:      parsed.InstructionalMethod,
		CampusLocation:           parsed.CampusLocation,
		RegistrationRestrictions: parsed.RegistrationRestrictions,
		MeetingHTML:              parsed.MeetingHTML,
		DatesHTML:                parsed.DatesHTML,
		AllInGroup:               parsed.AllInGroup,
		Raw:                      json.RawMessage(body),
	}, nil
}

func (c *Client) post(ctx context.Context, params url.Values, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"?"+params.Encode(), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range defaultHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bulletin request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bulletin request: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}
