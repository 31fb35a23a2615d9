package area

import "waypost/internal/domain/external"

// Details is the assembled detail response for one area: the base record
// plus optional media URL and owner identity joins, and the hosting space
// when the area references one. This is the edge cache's value type.
type Details struct {
	Area  Area                            `json:"area"`
	Media map[string]string               `json:"media,omitempty"`
	Users map[string]external.UserSummary `json:"users,omitempty"`
	Space *Area                           `json:"space,omitempty"`
}
