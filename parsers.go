package osometweet

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// parseEnvelope decodes a v2 response body. Absent keys are left empty.
func parseEnvelope(endpoint string, body []byte) (*Envelope, error) {
	env := &Envelope{Raw: body}
	if len(bytes.TrimSpace(body)) == 0 {
		return env, nil
	}
	if err := json.Unmarshal(body, env); err != nil {
		return nil, fmt.Errorf("parse %s: %w", endpoint, err)
	}
	return env, nil
}

// hasData reports whether the envelope carries a non-null "data" field.
func (e *Envelope) hasData() bool {
	return len(e.Data) > 0 && string(e.Data) != "null"
}

// Tweets decodes data as tweets. A single object (stream lines) is returned
// as a one-element slice.
func (e *Envelope) Tweets() ([]Tweet, error) {
	return decodeData[Tweet](e)
}

// Users decodes data as users.
func (e *Envelope) Users() ([]User, error) {
	return decodeData[User](e)
}

// Rules decodes data as filtered-stream rules.
func (e *Envelope) Rules() ([]StreamRule, error) {
	return decodeData[StreamRule](e)
}

// Decode unmarshals the raw body into v.
func (e *Envelope) Decode(v any) error {
	return json.Unmarshal(e.Raw, v)
}

func decodeData[T any](e *Envelope) ([]T, error) {
	if !e.hasData() {
		return nil, nil
	}
	trimmed := bytes.TrimSpace(e.Data)
	if trimmed[0] == '{' {
		var one T
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
		return []T{one}, nil
	}
	var many []T
	if err := json.Unmarshal(trimmed, &many); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	return many, nil
}

// UserByID indexes the expanded users by id.
func (i Includes) UserByID() map[string]User {
	m := make(map[string]User, len(i.Users))
	for _, u := range i.Users {
		m[u.ID] = u
	}
	return m
}

// TweetByID indexes the expanded tweets by id.
func (i Includes) TweetByID() map[string]Tweet {
	m := make(map[string]Tweet, len(i.Tweets))
	for _, t := range i.Tweets {
		m[t.ID] = t
	}
	return m
}
