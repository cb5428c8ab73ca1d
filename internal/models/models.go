package models

import "time"

// ContentKind tags which payload a Content carries.
type ContentKind string

const (
	KindText      ContentKind = "text"
	KindPhoto     ContentKind = "photo"
	KindVideo     ContentKind = "video"
	KindDocument  ContentKind = "document"
	KindAudio     ContentKind = "audio"
	KindVoice     ContentKind = "voice"
	KindVideoNote ContentKind = "video_note"
)

// Content is an inbound payload, built once at the transport boundary.
// Text is set only for KindText, FileID for every media kind.
type Content struct {
	Kind   ContentKind
	Text   string
	FileID string
}

// User represents a registered bot user.
type User struct {
	ID           int64     // Telegram ID of the user
	TimesStarted int       // How many times the user pressed /start
	LastSeen     time.Time // Last /start timestamp
}

// Submission is a user-provided text or media item awaiting review.
// Exactly one of Text or (MediaType, MediaID) is populated.
type Submission struct {
	ID        int64
	UserID    int64
	Text      string
	MediaType string // One of the media ContentKind values, empty for text
	MediaID   string // Telegram file ID
	Replied   bool
	FirstName string // Snapshot at submission time
	Username  string // Snapshot at submission time
	CreatedAt time.Time
}

// Content rebuilds the tagged payload stored in a submission row.
func (s Submission) Content() Content {
	if s.MediaType == "" {
		return Content{Kind: KindText, Text: s.Text}
	}
	return Content{Kind: ContentKind(s.MediaType), FileID: s.MediaID}
}

// Stats holds the usage counters shown to administrators.
type Stats struct {
	TotalStarts       int // Users who started the bot
	TodayStarts       int // Users last seen today
	TotalInteractions int // All recorded interactions
	TodayInteractions int // Interactions recorded today
}
