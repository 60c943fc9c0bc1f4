package chat

import "encoding/json"

// Default context values applied when the corresponding field is blank.
const (
	DefaultLevel    = "Beginner"
	DefaultUserType = "resident"
)

// Context carries the structured form values sent alongside every question.
type Context struct {
	Level     string `json:"level"`
	Canton    string `json:"canton"`
	Waterbody string `json:"waterbody"`
	Place     string `json:"place"`
	UserType  string `json:"user_type"`
}

// Payload returns the context as sent on the wire: blank fields are omitted,
// level and user_type fall back to their defaults.
func (c Context) Payload() map[string]string {
	out := make(map[string]string, 5)

	level := c.Level
	if level == "" {
		level = DefaultLevel
	}
	out["level"] = level

	userType := c.UserType
	if userType == "" {
		userType = DefaultUserType
	}
	out["user_type"] = userType

	if c.Canton != "" {
		out["canton"] = c.Canton
	}
	if c.Waterbody != "" {
		out["waterbody"] = c.Waterbody
	}
	if c.Place != "" {
		out["place"] = c.Place
	}

	return out
}

// EncodeJSON renders the wire payload as a JSON object string.
func (c Context) EncodeJSON() string {
	data, err := json.Marshal(c.Payload())
	if err != nil {
		return "{}"
	}
	return string(data)
}
