package membershipv1

import (
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// Request and response field names.
const (
	FieldEmail          = "email"
	FieldPassword       = "password"
	FieldDisplayName    = "display_name"
	FieldAccessToken    = "access_token"
	FieldExpiresAt      = "expires_at"
	FieldSessionID      = "session_id"
	FieldUserID         = "user_id"
	FieldName           = "name"
	FieldOrganizationID = "organization_id"
	FieldOrganization   = "organization"
	FieldInvitationID   = "invitation_id"
	FieldInvitation     = "invitation"
	FieldInvitations    = "invitations"
	FieldRole           = "role"
	FieldLimit          = "limit"
	FieldEntries        = "entries"
)

// String returns the trimmed string field key of s, or "" when absent or not a string.
func String(s *structpb.Struct, key string) string {
	return strings.TrimSpace(s.GetFields()[key].GetStringValue())
}

// Int returns the numeric field key of s truncated to int, or 0.
func Int(s *structpb.Struct, key string) int {
	return int(s.GetFields()[key].GetNumberValue())
}

// Time parses an RFC 3339 string field, returning the zero time when absent or malformed.
func Time(s *structpb.Struct, key string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, String(s, key))
	if err != nil {
		return time.Time{}
	}
	return t
}

// FormatTime renders t for a Struct field; the zero time renders as "".
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// Objects returns the struct elements of the list field key.
func Objects(s *structpb.Struct, key string) []*structpb.Struct {
	vals := s.GetFields()[key].GetListValue().GetValues()
	out := make([]*structpb.Struct, 0, len(vals))
	for _, v := range vals {
		if o := v.GetStructValue(); o != nil {
			out = append(out, o)
		}
	}
	return out
}

// Object returns the struct field key of s, or nil.
func Object(s *structpb.Struct, key string) *structpb.Struct {
	return s.GetFields()[key].GetStructValue()
}
