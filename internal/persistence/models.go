package persistence

import "time"

// ScheduleType identifies the pricing cadence of a class offering.
type ScheduleType string

const (
	ScheduleTypeOneTime   ScheduleType = "one_time"
	ScheduleTypeWeekly    ScheduleType = "weekly"
	ScheduleTypeMonthly   ScheduleType = "monthly"
	ScheduleTypeIntensive ScheduleType = "intensive"
	ScheduleTypePackage   ScheduleType = "package"
)

// Category identifies the audience a rate applies to.
type Category string

const (
	CategoryIndividual   Category = "individual"
	CategoryCorporate    Category = "corporate"
	CategoryPrivateGroup Category = "private_group"
	CategoryPublicGroup  Category = "public_group"
)

// Session represents one concrete occurrence of a class. The meeting fields
// start out null and transition to populated exactly once when the session is
// provisioned; they are never reset except by explicit administrative action.
type Session struct {
	ID           string
	Date         string // civil date, YYYY-MM-DD
	StartTime    string // time of day, HH:MM
	EndTime      string // time of day, HH:MM
	Timezone     string // IANA name or legacy fixed-offset label
	ClassTypeID  string
	InstructorID string
	RateID       *string
	RateAmount   *float64

	MeetingID         *string
	MeetingJoinURL    *string
	MeetingHostURL    *string
	MeetingAccessCode *string
	MeetingCreatedAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Provisioned reports whether the session already owns a meeting resource.
func (s Session) Provisioned() bool {
	return s.MeetingID != nil && *s.MeetingID != ""
}

// MeetingResource carries provider-issued meeting metadata written onto a session.
type MeetingResource struct {
	MeetingID  string
	JoinURL    string
	HostURL    string
	AccessCode string
	CreatedAt  time.Time
}

// Rate is a priced offering scoped by schedule type and category, optionally
// narrowed to a specific class type or package.
type Rate struct {
	ID              string
	ScheduleType    ScheduleType
	Category        Category
	ClassTypeID     *string
	PackageID       *string
	Amount          float64
	SecondaryAmount *float64
	EffectiveFrom   string // civil date, YYYY-MM-DD
	EffectiveUntil  *string
	Active          bool
	CreatedAt       time.Time
}

// ClassType is a catalog entry describing a kind of class.
type ClassType struct {
	ID        string
	Label     string
	CreatedAt time.Time
}

// Identity is a person known to the system: an instructor or an attendee.
type Identity struct {
	ID          string
	Email       string
	DisplayName string
	Timezone    *string // IANA name or legacy fixed-offset label
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InstructorProfile is the secondary instructor record kept alongside the
// identity table. Instructor data historically lives in more than one store,
// so lookups fall back here when the primary join misses.
type InstructorProfile struct {
	ID          string
	IdentityID  string
	Email       string
	DisplayName string
	CreatedAt   time.Time
}

// Booking links an attendee identity to a session.
type Booking struct {
	ID         string
	SessionID  string
	AttendeeID string
	CreatedAt  time.Time
}

// ProviderToken is the single cached credential row for the meeting provider.
type ProviderToken struct {
	AccessToken string
	APIBaseURL  string
	ExpiresAt   time.Time
	UpdatedAt   time.Time
}
