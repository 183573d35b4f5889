package lineup

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Channel is one entry of the tuner's lineup.json.
type Channel struct {
	GuideNumber string `json:"GuideNumber"`
	GuideName   string `json:"GuideName"`
	VideoCodec  string `json:"VideoCodec"`
	AudioCodec  string `json:"AudioCodec"`
	URL         string `json:"URL"`
	HD          *int   `json:"HD,omitempty"`
	Favorite    *int   `json:"Favorite,omitempty"`
}

// channelJSON mirrors Channel with pointers so absent fields can be told apart
// from empty ones.
type channelJSON struct {
	GuideNumber *string `json:"GuideNumber"`
	GuideName   *string `json:"GuideName"`
	VideoCodec  *string `json:"VideoCodec"`
	AudioCodec  *string `json:"AudioCodec"`
	URL         *string `json:"URL"`
	HD          *int    `json:"HD"`
	Favorite    *int    `json:"Favorite"`
}

// UnmarshalJSON rejects records that lack any of the required string fields.
// HD and Favorite stay nil when omitted or null.
func (c *Channel) UnmarshalJSON(data []byte) error {
	var raw channelJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			if typeErr.Field == "" {
				return fmt.Errorf("channel must be a JSON object, got %s", typeErr.Value)
			}
			return fmt.Errorf("channel field %s: got %s, want %s", typeErr.Field, typeErr.Value, typeErr.Type)
		}
		return fmt.Errorf("decode channel: %w", err)
	}

	var missing []string
	required := []struct {
		name  string
		value *string
	}{
		{"GuideNumber", raw.GuideNumber},
		{"GuideName", raw.GuideName},
		{"VideoCodec", raw.VideoCodec},
		{"AudioCodec", raw.AudioCodec},
		{"URL", raw.URL},
	}
	for _, field := range required {
		if field.value == nil {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("channel missing required field(s): %s", strings.Join(missing, ", "))
	}

	*c = Channel{
		GuideNumber: *raw.GuideNumber,
		GuideName:   *raw.GuideName,
		VideoCodec:  *raw.VideoCodec,
		AudioCodec:  *raw.AudioCodec,
		URL:         *raw.URL,
		HD:          raw.HD,
		Favorite:    raw.Favorite,
	}
	return nil
}

// IsHD reports whether the tuner flagged the channel as HD.
func (c Channel) IsHD() bool {
	return c.HD != nil && *c.HD != 0
}

// IsFavorite reports whether the channel is marked as a favorite on the tuner.
func (c Channel) IsFavorite() bool {
	return c.Favorite != nil && *c.Favorite != 0
}

// Label is the guide number and name joined for display.
func (c Channel) Label() string {
	number := strings.TrimSpace(c.GuideNumber)
	name := strings.TrimSpace(c.GuideName)
	switch {
	case number == "":
		return name
	case name == "":
		return number
	}
	return number + " " + name
}

// Decode parses a lineup.json body. The result keeps the order of the array.
func Decode(data []byte) ([]Channel, error) {
	var channels []Channel
	if err := json.Unmarshal(data, &channels); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "" {
			return nil, fmt.Errorf("lineup must be a JSON array, got %s", typeErr.Value)
		}
		return nil, err
	}
	// "[]" decodes to an empty, non-nil slice; only a literal null leaves it nil.
	if channels == nil {
		return nil, errors.New("lineup body is null")
	}
	return channels, nil
}
