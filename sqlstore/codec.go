package sqlstore

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// timeLayout is fixed width so stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000Z"

func formatTime(t time.Time) string {
	return t.UTC().Truncate(time.Millisecond).Format(timeLayout)
}

func formatTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "sqlstore: parse time %q", v)
	}
	return t, nil
}

func parseTimePtr(v sql.NullString) (*time.Time, error) {
	if !v.Valid {
		return nil, nil
	}
	t, err := parseTime(v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// encodeJSON stores nil slices as empty arrays
func encodeJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "sqlstore: encode json column")
	}
	if string(b) == "null" {
		return "[]", nil
	}
	return string(b), nil
}

func decodeJSON(data string, v interface{}) error {
	if data == "" {
		return nil
	}
	return errors.Wrap(json.Unmarshal([]byte(data), v), "sqlstore: decode json column")
}

// timeParser collects the first parse error over a row
type timeParser struct {
	err error
}

func (p *timeParser) at(v string) time.Time {
	t, err := parseTime(v)
	if err != nil && p.err == nil {
		p.err = err
	}
	return t
}

func (p *timeParser) ptr(v sql.NullString) *time.Time {
	t, err := parseTimePtr(v)
	if err != nil && p.err == nil {
		p.err = err
	}
	return t
}
