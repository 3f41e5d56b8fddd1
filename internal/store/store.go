package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the catalog SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists. The parent directory is created on first run.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS courses (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			code           TEXT NOT NULL UNIQUE,
			subject        TEXT,
			catalog_number TEXT,
			title          TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS sections (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			course_code    TEXT NOT NULL,
			key            TEXT,
			code           TEXT,
			title          TEXT,
			hide           TEXT,
			crn            TEXT,
			no             TEXT,
			total          INTEGER,
			schd           TEXT,
			stat           TEXT,
			isCancelled    TEXT,
			meets          TEXT,
			mpkey          TEXT,
			meetingTimes   TEXT,
			instr          TEXT,
			start_date     TEXT,
			end_date       TEXT,
			srcdb          TEXT,
			campus_group   TEXT,
			FOREIGN KEY (course_code) REFERENCES courses(code)
		);

		CREATE TABLE IF NOT EXISTS course_details_cache (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			group_key      TEXT NOT NULL,
			crn_key        TEXT NOT NULL,
			srcdb          TEXT NOT NULL,
			description    TEXT,
			clssnotes      TEXT,
			hours_html     TEXT,
			status         TEXT,
			component      TEXT,
			instructional_method TEXT,
			campus_location TEXT,
			registration_restrictions TEXT,
			meeting_html   TEXT,
			meet_pattern   TEXT,
			meet_start_date TEXT,
			meet_end_date  TEXT,
			dates_html     TEXT,
			all_sections   TEXT,
			details_json   TEXT NOT NULL,
			cached_at      TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(group_key, crn_key, srcdb)
		);

		CREATE TABLE IF NOT EXISTS metadata (
			key            TEXT PRIMARY KEY,
			value          TEXT,
			updated_at     TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// splitCode splits "MATH-UA 325" into ("MATH-UA", "325"). Unexpected shapes
// yield empty parts.
func splitCode(code string) (subject, catalog string) {
	i := strings.LastIndex(code, " ")
	if i <= 0 || i == len(code)-1 {
		return "", ""
	}
	return strings.TrimSpace(code[:i]), strings.TrimSpace(code[i+1:])
}

// ReplaceSections atomically replaces all sections for one campus group and
// term with the given records, upserting their courses along the way.
func (s *Store) ReplaceSections(ctx context.Context, campusGroup, srcdb string, sections []Section) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM sections WHERE campus_group = ? AND srcdb = ?`,
		campusGroup, srcdb); err != nil {
		return fmt.Errorf("clear sections: %w", err)
	}

	courseStmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO courses (code, subject, catalog_number, title)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare course insert: %w", err)
	}
	defer courseStmt.Close()

	sectionStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sections (
			course_code, key, code, title, hide, crn, no, total,
			schd, stat, isCancelled, meets, mpkey, meetingTimes,
			instr, start_date, end_date, srcdb, campus_group
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare section insert: %w", err)
	}
	defer sectionStmt.Close()

	for _, sec := range sections {
		if sec.CourseCode == "" || sec.Title == "" {
			continue
		}
		subject, catalog := splitCode(sec.CourseCode)
		if _, err := courseStmt.ExecContext(ctx, sec.CourseCode, subject, catalog, sec.Title); err != nil {
			return fmt.Errorf("insert course %s: %w", sec.CourseCode, err)
		}
		if _, err := sectionStmt.ExecContext(ctx,
			sec.CourseCode, sec.Key, sec.Code, sec.Title, sec.Hide, sec.CRN,
			sec.No, sec.Total, sec.Schd, sec.Stat, sec.IsCancelled, sec.Meets,
			sec.MpKey, sec.MeetingTimes, sec.Instr, sec.StartDate, sec.EndDate,
			srcdb, campusGroup); err != nil {
			return fmt.Errorf("insert section %s: %w", sec.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SearchSections returns sections matching the filter, joined with their
// course title, ordered by course code and section number.
func (s *Store) SearchSections(ctx context.Context, f SearchFilter) ([]SectionResult, error) {
	query := `
		SELECT
			s.id, s.course_code, COALESCE(c.title, ''),
			COALESCE(s.key, ''), COALESCE(s.code, ''), COALESCE(s.title, ''),
			COALESCE(s.hide, ''), COALESCE(s.crn, ''), COALESCE(s.no, ''),
			COALESCE(s.total, 0), COALESCE(s.schd, ''), COALESCE(s.stat, ''),
			COALESCE(s.isCancelled, ''), COALESCE(s.meets, ''), COALESCE(s.mpkey, ''),
			COALESCE(s.meetingTimes, ''), COALESCE(s.instr, ''),
			COALESCE(s.start_date, ''), COALESCE(s.end_date, ''),
			COALESCE(s.srcdb, ''), COALESCE(s.campus_group, '')
		FROM sections s
		LEFT JOIN courses c ON s.course_code = c.code
		WHERE 1=1`

	var args []any
	if f.Code != "" {
		query += " AND s.code LIKE ?"
		args = append(args, "%"+f.Code+"%")
	}
	if f.Title != "" {
		query += " AND (s.title LIKE ? OR c.title LIKE ?)"
		args = append(args, "%"+f.Title+"%", "%"+f.Title+"%")
	}
	if f.CRN != "" {
		query += " AND s.crn = ?"
		args = append(args, f.CRN)
	}
	if f.Schd != "" {
		query += " AND s.schd = ?"
		args = append(args, f.Schd)
	}
	if f.CampusGroup != "" {
		query += " AND s.campus_group = ?"
		args = append(args, f.CampusGroup)
	}
	query += " ORDER BY s.course_code, s.no"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sections: %w", err)
	}
	defer rows.Close()

	results := make([]SectionResult, 0)
	for rows.Next() {
		var r SectionResult
		if err := rows.Scan(
			&r.SectionID, &r.CourseCode, &r.CourseTitle,
			&r.Key, &r.Code, &r.Title, &r.Hide, &r.CRN, &r.No,
			&r.Total, &r.Schd, &r.Stat, &r.IsCancelled, &r.Meets, &r.MpKey,
			&r.MeetingTimes, &r.Instr, &r.StartDate, &r.EndDate,
			&r.SrcDB, &r.CampusGroup); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// GetCourseDetails returns the cached details row for (group, key, srcdb),
// or nil when nothing is cached.
func (s *Store) GetCourseDetails(ctx context.Context, group, key, srcdb string) (*CourseDetails, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT description, clssnotes, hours_html, status, component,
		       instructional_method, campus_location, registration_restrictions,
		       meeting_html, meet_pattern, meet_start_date, meet_end_date,
		       dates_html, all_sections, details_json
		FROM course_details_cache
		WHERE group_key = ? AND crn_key = ? AND srcdb = ?`,
		group, key, srcdb)

	d := CourseDetails{GroupKey: group, CRNKey: key, SrcDB: srcdb}
	var nullable [14]sql.NullString
	if err := row.Scan(
		&nullable[0], &nullable[1], &nullable[2], &nullable[3], &nullable[4],
		&nullable[5], &nullable[6], &nullable[7], &nullable[8], &nullable[9],
		&nullable[10], &nullable[11], &nullable[12], &nullable[13],
		&d.DetailsJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan details: %w", err)
	}

	d.Description = nullable[0].String
	d.ClassNotes = nullable[1].String
	d.HoursHTML = nullable[2].String
	d.Status = nullable[3].String
	d.Component = nullable[4].String
	d.InstructionalMethod = nullable[5].String
	d.CampusLocation = nullable[6].String
	d.RegistrationRestrictions = nullable[7].String
	d.MeetingHTML = nullable[8].String
	d.MeetPattern = nullable[9].String
	d.MeetStartDate = nullable[10].String
	d.MeetEndDate = nullable[11].String
	d.DatesHTML = nullable[12].String
	d.AllSections = nullable[13].String
	return &d, nil
}

// PutCourseDetails inserts or replaces a cached details row.
func (s *Store) PutCourseDetails(ctx context.Context, d CourseDetails) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO course_details_cache (
			group_key, crn_key, srcdb, description, clssnotes, hours_html,
			status, component, instructional_method, campus_location,
			registration_restrictions, meeting_html, meet_pattern,
			meet_start_date, meet_end_date, dates_html, all_sections,
			details_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.GroupKey, d.CRNKey, d.SrcDB, d.Description, d.ClassNotes,
		d.HoursHTML, d.Status, d.Component, d.InstructionalMethod,
		d.CampusLocation, d.RegistrationRestrictions, d.MeetingHTML,
		d.MeetPattern, d.MeetStartDate, d.MeetEndDate, d.DatesHTML,
		d.AllSections, d.DetailsJSON)
	if err != nil {
		return fmt.Errorf("cache details: %w", err)
	}
	return nil
}

// Stats counts catalog contents for the status endpoint.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{CampusGroups: map[string]int{}}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&st.TotalCourses); err != nil {
		return st, fmt.Errorf("count courses: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sections`).Scan(&st.TotalSections); err != nil {
		return st, fmt.Errorf("count sections: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(campus_group, ''), COUNT(*) FROM sections GROUP BY campus_group`)
	if err != nil {
		return st, fmt.Errorf("count by campus: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var group string
		var n int
		if err := rows.Scan(&group, &n); err != nil {
			return st, fmt.Errorf("scan campus count: %w", err)
		}
		st.CampusGroups[group] = n
	}
	return st, rows.Err()
}

// SetLastUpdate records the time of the latest successful catalog refresh.
func (s *Store) SetLastUpdate(ctx context.Context, t time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO metadata (key, value, updated_at)
		VALUES ('last_update', ?, ?)`,
		t.UTC().Format(time.RFC3339), t.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("set last update: %w", err)
	}
	return nil
}

// LastUpdate returns the recorded refresh time, or the zero time when the
// catalog has never been loaded.
func (s *Store) LastUpdate(ctx context.Context) (time.Time, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM metadata WHERE key = 'last_update'`).Scan(&v)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get last update: %w", err)
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last update: %w", err)
	}
	return t, nil
}
