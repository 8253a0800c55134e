package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
)

// AccountID is the backend's client identifier. The backend may send it as a
// JSON number or a JSON string; the textual form is kept as is.
type AccountID string

func (id *AccountID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			return errors.New("empty account id")
		}
		*id = AccountID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if n == "" {
		return errors.New("empty account id")
	}
	*id = AccountID(n)
	return nil
}

func (id AccountID) MarshalJSON() ([]byte, error) {
	if id.isInteger() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id AccountID) String() string {
	return string(id)
}

// PathSegment is the id escaped for use in a URL path.
func (id AccountID) PathSegment() string {
	return url.PathEscape(string(id))
}

func (id AccountID) isInteger() bool {
	_, err := strconv.ParseInt(string(id), 10, 64)
	return err == nil
}
