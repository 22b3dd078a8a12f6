package store

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Session identifiers are bounded alphanumeric strings (plus hyphen and
// underscore). Anything else is rejected before it reaches a backend.
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// GenerateSessionID produces a time-prefixed identifier with a random
// suffix. Unguessable enough for session scoping, not a security token.
func GenerateSessionID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("sess-%s-%s", strconv.FormatInt(time.Now().UnixMilli(), 36), suffix)
}

// ValidateSessionID reports whether id is well-formed.
func ValidateSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}
