package identity

import (
	"context"
	"reflect"
)

// UserIDClaimType is the claim carrying the unique subject identifier.
const UserIDClaimType = "sub"

// DefaultExcludedClaimTypes are token bookkeeping claims that carry no user
// information worth logging.
var DefaultExcludedClaimTypes = []string{"nbf", "exp", "auth_time", "amr", "sub"}

// UserInfo is a read-only snapshot of the current user for log enrichment.
// UserClaims has no meaningful key order; value order follows the identity.
type UserInfo struct {
	UserName   string              `json:"userName"`
	UserID     *string             `json:"userId"`
	UserClaims map[string][]string `json:"userClaims"`
}

// Enricher builds UserInfo records. The zero value uses UserIDClaimType and
// DefaultExcludedClaimTypes.
type Enricher struct {
	ExcludedClaimTypes []string
	UserIDClaimType    string
}

var defaultEnricher = &Enricher{}

// Enrich builds UserInfo from the identity stored in ctx using the default
// enricher. It returns nil for anonymous requests.
func Enrich(ctx context.Context) *UserInfo {
	return defaultEnricher.Enrich(ctx)
}

// Enrich builds UserInfo from the identity stored in ctx. It returns nil for
// anonymous requests.
func (e *Enricher) Enrich(ctx context.Context) *UserInfo {
	return e.FromIdentity(FromContext(ctx))
}

// FromIdentity builds UserInfo from id. It returns nil when id is nil or not
// authenticated.
func (e *Enricher) FromIdentity(id Identity) *UserInfo {
	if isNil(id) || !id.IsAuthenticated() {
		return nil
	}

	claims := id.Claims()
	idType := e.userIDClaimType()
	excluded := e.excluded()

	info := &UserInfo{
		UserName:   id.Name(),
		UserClaims: make(map[string][]string),
	}

	for _, c := range claims {
		if c.Type == idType && info.UserID == nil {
			v := c.Value
			info.UserID = &v
		}
		if _, skip := excluded[c.Type]; skip {
			continue
		}
		info.UserClaims[c.Type] = append(info.UserClaims[c.Type], c.Value)
	}

	return info
}

func (e *Enricher) userIDClaimType() string {
	if e == nil || e.UserIDClaimType == "" {
		return UserIDClaimType
	}
	return e.UserIDClaimType
}

func (e *Enricher) excluded() map[string]struct{} {
	types := DefaultExcludedClaimTypes
	if e != nil && e.ExcludedClaimTypes != nil {
		types = e.ExcludedClaimTypes
	}
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return set
}

func isNil(id Identity) bool {
	if id == nil {
		return true
	}
	rv := reflect.ValueOf(id)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}
