package database

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Guest sides.
const (
	SideGroom = "groom"
	SideBride = "bride"
	// SideBoth is a legal stored value but never produced by the invite
	// flow; it only arrives via direct updates.
	SideBoth = "both"
)

// Guest roles accepted by the invite flow.
var GuestRoles = []string{
	"parent", "sibling", "uncle", "aunt", "cousin",
	"grandparent", "friend", "colleague", "other",
}

// Guest statuses.
const (
	GuestStatusInvited  = "invited"
	GuestStatusAccepted = "accepted"
	GuestStatusDeclined = "declined"
	GuestStatusMaybe    = "maybe"
	GuestStatusPending  = "pending"
)

// RSVP statuses.
const (
	RSVPStatusAttending    = "attending"
	RSVPStatusNotAttending = "not_attending"
	RSVPStatusMaybe        = "maybe"
	RSVPStatusPending      = "pending"
)

// Invitation statuses, shared by partner, guest and vendor invitations.
const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
	InvitationStatusRejected = "rejected"
	InvitationStatusExpired  = "expired"
)

// The seven canonical events auto-generated with every wedding, in
// ceremony order.
var CanonicalEventTypes = []string{
	"engagement", "save_the_date", "haldi", "mehendi", "sangeet", "wedding", "reception",
}

const EventTypeCustom = "custom"

// StringList stores a set of strings as a JSON array in a TEXT column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal string list: %w", err)
	}
	return string(b), nil
}

func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(data, l)
}

// Contains reports whether the list holds tag, compared case-insensitively.
func (l StringList) Contains(tag string) bool {
	for _, v := range l {
		if strings.EqualFold(strings.TrimSpace(v), tag) {
			return true
		}
	}
	return false
}

type User struct {
	ID        string         `db:"id"`
	Email     string         `db:"email"`
	FullName  string         `db:"full_name"`
	Phone     sql.NullString `db:"phone"`
	CreatedAt time.Time      `db:"created_at"`
}

type Couple struct {
	ID          string       `db:"id"`
	User1ID     string       `db:"user1_id"`
	User2ID     string       `db:"user2_id"`
	Status      string       `db:"status"`
	EngagedDate time.Time    `db:"engaged_date"`
	MarriedDate sql.NullTime `db:"married_date"`
	CreatedAt   time.Time    `db:"created_at"`
}

type Wedding struct {
	ID          string          `db:"id"`
	CoupleID    string          `db:"couple_id"`
	Name        string          `db:"name"`
	Date        time.Time       `db:"date"`
	Venue       string          `db:"venue"`
	City        string          `db:"city"`
	Mode        string          `db:"mode"`
	BudgetLimit sql.NullFloat64 `db:"budget_limit"`
	GuestLimit  int             `db:"guest_limit"`
	Status      string          `db:"status"`
	CreatedAt   time.Time       `db:"created_at"`
}

type Event struct {
	ID            string         `db:"id"`
	WeddingID     string         `db:"wedding_id"`
	Name          string         `db:"name"`
	Description   sql.NullString `db:"description"`
	EventType     string         `db:"event_type"`
	Date          time.Time      `db:"date"`
	StartTime     sql.NullString `db:"start_time"`
	EndTime       sql.NullString `db:"end_time"`
	Venue         string         `db:"venue"`
	City          string         `db:"city"`
	DressCode     sql.NullString `db:"dress_code"`
	RSVPDeadline  sql.NullTime   `db:"rsvp_deadline"`
	AutoGenerated bool           `db:"auto_generated"`
	CreatedBy     sql.NullString `db:"created_by"`
	CreatedAt     time.Time      `db:"created_at"`
}

type Guest struct {
	ID                  string         `db:"id"`
	WeddingID           string         `db:"wedding_id"`
	UserID              sql.NullString `db:"user_id"`
	Email               sql.NullString `db:"email"`
	FullName            string         `db:"full_name"`
	Phone               sql.NullString `db:"phone"`
	Side                string         `db:"side"`
	Role                string         `db:"role"`
	InvitedBy           string         `db:"invited_by"`
	CanInviteOthers     bool           `db:"can_invite_others"`
	PlusOneAllowed      bool           `db:"plus_one_allowed"`
	PlusOneName         sql.NullString `db:"plus_one_name"`
	IsVIP               bool           `db:"is_vip"`
	Under18             bool           `db:"under_18"`
	Age                 sql.NullInt64  `db:"age"`
	DietaryPreferences  StringList     `db:"dietary_preferences"`
	SpecialRequirements sql.NullString `db:"special_requirements"`
	Status              string         `db:"status"`
	InvitationSentAt    sql.NullTime   `db:"invitation_sent_at"`
	RespondedAt         sql.NullTime   `db:"responded_at"`
	CreatedAt           time.Time      `db:"created_at"`
}

type RSVP struct {
	ID                  string         `db:"id"`
	EventID             string         `db:"event_id"`
	GuestID             string         `db:"guest_id"`
	WeddingID           string         `db:"wedding_id"`
	Status              string         `db:"status"`
	AdultsCount         int            `db:"adults_count"`
	TeensCount          int            `db:"teens_count"`
	ChildrenCount       int            `db:"children_count"`
	CalculatedHeadcount float64        `db:"calculated_headcount"`
	DietaryPreferences  StringList     `db:"dietary_preferences"`
	SpecialRequirements sql.NullString `db:"special_requirements"`
	RSVPNotes           sql.NullString `db:"rsvp_notes"`
	SubmittedAt         sql.NullTime   `db:"submitted_at"`
	CreatedAt           time.Time      `db:"created_at"`
}

type HeadcountSnapshot struct {
	ID                  string         `db:"id"`
	EventID             string         `db:"event_id"`
	WeddingID           string         `db:"wedding_id"`
	Side                sql.NullString `db:"side"`
	TotalInvited        int            `db:"total_invited"`
	TotalAttending      int            `db:"total_attending"`
	TotalDeclined       int            `db:"total_declined"`
	TotalMaybe          int            `db:"total_maybe"`
	TotalPending        int            `db:"total_pending"`
	AdultsCount         int            `db:"adults_count"`
	TeensCount          int            `db:"teens_count"`
	ChildrenCount       int            `db:"children_count"`
	CalculatedHeadcount float64        `db:"calculated_headcount"`
	VegetarianCount     int            `db:"vegetarian_count"`
	VeganCount          int            `db:"vegan_count"`
	HalalCount          int            `db:"halal_count"`
	SnapshotDate        time.Time      `db:"snapshot_date"`
	CreatedAt           time.Time      `db:"created_at"`
}

type PartnerInvitation struct {
	ID             string         `db:"id"`
	Code           string         `db:"code"`
	SenderID       string         `db:"sender_id"`
	ReceiverEmail  string         `db:"receiver_email"`
	Status         string         `db:"status"`
	RejectionCount int            `db:"rejection_count"`
	Message        sql.NullString `db:"message"`
	CreatedAt      time.Time      `db:"created_at"`
	ExpiresAt      time.Time      `db:"expires_at"`
	RespondedAt    sql.NullTime   `db:"responded_at"`
}

// EffectiveStatus computes expiry at read time: a pending invitation past
// its deadline reads as expired without a stored transition.
func (i *PartnerInvitation) EffectiveStatus(now time.Time) string {
	if i.Status == InvitationStatusPending && now.After(i.ExpiresAt) {
		return InvitationStatusExpired
	}
	return i.Status
}

type GuestInvitation struct {
	ID              string         `db:"id"`
	WeddingID       string         `db:"wedding_id"`
	SenderID        string         `db:"sender_id"`
	ReceiverEmail   string         `db:"receiver_email"`
	ReceiverName    string         `db:"receiver_name"`
	Role            string         `db:"role"`
	Side            string         `db:"side"`
	CanInviteOthers bool           `db:"can_invite_others"`
	PersonalMessage sql.NullString `db:"personal_message"`
	Status          string         `db:"status"`
	CreatedAt       time.Time      `db:"created_at"`
	ExpiresAt       time.Time      `db:"expires_at"`
	RespondedAt     sql.NullTime   `db:"responded_at"`
}

func (i *GuestInvitation) EffectiveStatus(now time.Time) string {
	if i.Status == InvitationStatusPending && now.After(i.ExpiresAt) {
		return InvitationStatusExpired
	}
	return i.Status
}

type VendorInvitation struct {
	ID                string         `db:"id"`
	WeddingID         string         `db:"wedding_id"`
	VendorID          string         `db:"vendor_id"`
	InvitedBy         string         `db:"invited_by"`
	Category          string         `db:"category"`
	InvitationMessage sql.NullString `db:"invitation_message"`
	Status            string         `db:"status"`
	SentAt            time.Time      `db:"sent_at"`
	RespondedAt       sql.NullTime   `db:"responded_at"`
	ExpiresAt         time.Time      `db:"expires_at"`
	CreatedAt         time.Time      `db:"created_at"`
}

func (i *VendorInvitation) EffectiveStatus(now time.Time) string {
	if i.Status == InvitationStatusPending && now.After(i.ExpiresAt) {
		return InvitationStatusExpired
	}
	return i.Status
}

type Notification struct {
	ID        string         `db:"id"`
	UserID    string         `db:"user_id"`
	Type      string         `db:"type"`
	Title     string         `db:"title"`
	Message   string         `db:"message"`
	Read      bool           `db:"read"`
	ActionURL sql.NullString `db:"action_url"`
	CreatedAt time.Time      `db:"created_at"`
}
