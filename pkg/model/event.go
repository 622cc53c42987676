package model

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

type EventID string

// NewEventID generates a new unique EventID
func NewEventID() EventID {
	return EventID(uuid.New().String())
}

// DatePrecision indicates how exact an event date is
type DatePrecision string

const (
	PrecisionYear  DatePrecision = "year"
	PrecisionMonth DatePrecision = "month"
	PrecisionDay   DatePrecision = "day"
)

// EventSource indicates how an event entered the timeline
type EventSource string

const (
	SourceChat   EventSource = "chat"
	SourceManual EventSource = "manual"
	SourcePhoto  EventSource = "photo"
	SourceImport EventSource = "import"
)

// Category values recognized by the UI. The field itself is freeform:
// unrecognized values must not break listing or sorting.
const (
	CategoryBirth        = "birth"
	CategoryEducation    = "education"
	CategoryResidence    = "residence"
	CategoryWork         = "work"
	CategoryTravel       = "travel"
	CategoryRelationship = "relationship"
	CategoryMilestone    = "milestone"
	CategoryMemory       = "memory"
)

// KnownCategories lists the categories the UI renders with dedicated styling
var KnownCategories = []string{
	CategoryBirth,
	CategoryEducation,
	CategoryResidence,
	CategoryWork,
	CategoryTravel,
	CategoryRelationship,
	CategoryMilestone,
	CategoryMemory,
}

// ImageMetadata carries optional photo metadata attached to an event
type ImageMetadata struct {
	DateTaken string  `firestore:"date_taken,omitempty" json:"date_taken,omitempty"`
	GPSLat    float64 `firestore:"gps_lat,omitempty" json:"gps_lat,omitempty"`
	GPSLng    float64 `firestore:"gps_lng,omitempty" json:"gps_lng,omitempty"`
	Camera    string  `firestore:"camera,omitempty" json:"camera,omitempty"`
	Width     int     `firestore:"width,omitempty" json:"width,omitempty"`
	Height    int     `firestore:"height,omitempty" json:"height,omitempty"`
}

// TimelineEvent is a single dated or undated narrated life moment.
// StartDate and EndDate are ISO calendar dates (YYYY-MM-DD); the empty
// string means the date is unknown. Zero-padded ISO dates order
// lexicographically, which keeps ordering independent of time zones.
type TimelineEvent struct {
	ID            EventID        `firestore:"id" json:"id"`
	TimelineID    TimelineID     `firestore:"timeline_id" json:"timeline_id"`
	Title         string         `firestore:"title" json:"title"`
	Description   string         `firestore:"description,omitempty" json:"description,omitempty"`
	StartDate     string         `firestore:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate       string         `firestore:"end_date,omitempty" json:"end_date,omitempty"`
	DatePrecision DatePrecision  `firestore:"date_precision" json:"date_precision"`
	AgeStart      *int           `firestore:"age_start,omitempty" json:"age_start,omitempty"`
	AgeEnd        *int           `firestore:"age_end,omitempty" json:"age_end,omitempty"`
	Category      string         `firestore:"category,omitempty" json:"category,omitempty"`
	Tags          []string       `firestore:"tags" json:"tags"`
	Source        EventSource    `firestore:"source" json:"source"`
	SortOrder     int            `firestore:"sort_order" json:"sort_order"`
	IsPrivate     bool           `firestore:"is_private" json:"is_private"`
	ImageURL      string         `firestore:"image_url,omitempty" json:"image_url,omitempty"`
	ImageMetadata *ImageMetadata `firestore:"image_metadata,omitempty" json:"image_metadata,omitempty"`
	CreatedAt     time.Time      `firestore:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `firestore:"updated_at" json:"updated_at"`
}

// EventDraft is the input for creating a new event. ID, timeline
// reference and timestamps are assigned at insertion.
type EventDraft struct {
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	StartDate     string         `json:"start_date,omitempty"`
	EndDate       string         `json:"end_date,omitempty"`
	DatePrecision DatePrecision  `json:"date_precision,omitempty"`
	AgeStart      *int           `json:"age_start,omitempty"`
	AgeEnd        *int           `json:"age_end,omitempty"`
	Category      string         `json:"category,omitempty"`
	Tags          []string       `json:"tags,omitempty"`
	Source        EventSource    `json:"source,omitempty"`
	SortOrder     int            `json:"sort_order,omitempty"`
	IsPrivate     bool           `json:"is_private,omitempty"`
	ImageURL      string         `json:"image_url,omitempty"`
	ImageMetadata *ImageMetadata `json:"image_metadata,omitempty"`
}

// Validate checks the draft before materialization
func (d *EventDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return goerr.New("event title must not be empty", goerr.T(TagValidation))
	}
	return nil
}

// Materialize builds a TimelineEvent from the draft with a generated ID
// and timestamps, scoped to the given timeline.
func (d *EventDraft) Materialize(timelineID TimelineID) *TimelineEvent {
	now := time.Now()

	precision := d.DatePrecision
	if precision == "" {
		precision = PrecisionDay
	}
	source := d.Source
	if source == "" {
		source = SourceManual
	}
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}

	return &TimelineEvent{
		ID:            NewEventID(),
		TimelineID:    timelineID,
		Title:         d.Title,
		Description:   d.Description,
		StartDate:     d.StartDate,
		EndDate:       d.EndDate,
		DatePrecision: precision,
		AgeStart:      d.AgeStart,
		AgeEnd:        d.AgeEnd,
		Category:      d.Category,
		Tags:          tags,
		Source:        source,
		SortOrder:     d.SortOrder,
		IsPrivate:     d.IsPrivate,
		ImageURL:      d.ImageURL,
		ImageMetadata: d.ImageMetadata,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Draft converts the event back to a creation draft, dropping the ID,
// timeline reference and timestamps. Used for local-to-remote migration.
func (e *TimelineEvent) Draft() *EventDraft {
	return &EventDraft{
		Title:         e.Title,
		Description:   e.Description,
		StartDate:     e.StartDate,
		EndDate:       e.EndDate,
		DatePrecision: e.DatePrecision,
		AgeStart:      e.AgeStart,
		AgeEnd:        e.AgeEnd,
		Category:      e.Category,
		Tags:          e.Tags,
		Source:        e.Source,
		SortOrder:     e.SortOrder,
		IsPrivate:     e.IsPrivate,
		ImageURL:      e.ImageURL,
		ImageMetadata: e.ImageMetadata,
	}
}

// EventPatch is a partial update. Nil fields are left untouched.
type EventPatch struct {
	Title         *string        `json:"title,omitempty"`
	Description   *string        `json:"description,omitempty"`
	StartDate     *string        `json:"start_date,omitempty"`
	EndDate       *string        `json:"end_date,omitempty"`
	DatePrecision *DatePrecision `json:"date_precision,omitempty"`
	AgeStart      *int           `json:"age_start,omitempty"`
	AgeEnd        *int           `json:"age_end,omitempty"`
	Category      *string        `json:"category,omitempty"`
	Tags          []string       `json:"tags,omitempty"`
	IsPrivate     *bool          `json:"is_private,omitempty"`
	ImageURL      *string        `json:"image_url,omitempty"`
	ImageMetadata *ImageMetadata `json:"image_metadata,omitempty"`
}

// Apply merges the patch onto a copy of the event and returns it
func (p *EventPatch) Apply(e *TimelineEvent) *TimelineEvent {
	updated := *e
	if p.Title != nil {
		updated.Title = *p.Title
	}
	if p.Description != nil {
		updated.Description = *p.Description
	}
	if p.StartDate != nil {
		updated.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		updated.EndDate = *p.EndDate
	}
	if p.DatePrecision != nil {
		updated.DatePrecision = *p.DatePrecision
	}
	if p.AgeStart != nil {
		updated.AgeStart = p.AgeStart
	}
	if p.AgeEnd != nil {
		updated.AgeEnd = p.AgeEnd
	}
	if p.Category != nil {
		updated.Category = *p.Category
	}
	if p.Tags != nil {
		updated.Tags = p.Tags
	}
	if p.IsPrivate != nil {
		updated.IsPrivate = *p.IsPrivate
	}
	if p.ImageURL != nil {
		updated.ImageURL = *p.ImageURL
	}
	if p.ImageMetadata != nil {
		updated.ImageMetadata = p.ImageMetadata
	}
	updated.UpdatedAt = time.Now()
	return &updated
}

// Validate checks the patch before it is applied
func (p *EventPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return goerr.New("event title must not be empty", goerr.T(TagValidation))
	}
	return nil
}

// SortEvents orders events ascending by StartDate. Events without a
// date trail in their original relative order. Ties are broken by
// SortOrder, then by original insertion order (the sort is stable).
func SortEvents(events []*TimelineEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.StartDate == "" {
			return false
		}
		if b.StartDate == "" {
			return true
		}
		if a.StartDate != b.StartDate {
			return a.StartDate < b.StartDate
		}
		return a.SortOrder < b.SortOrder
	})
}
