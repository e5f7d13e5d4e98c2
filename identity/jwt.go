package identity

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/golang-jwt/jwt/v4"
)

// NameClaimType is the JWT claim used as the display name when none is given.
const NameClaimType = "name"

// FromJWT adapts a parsed token to Identity. Claim types are emitted in sorted
// order and array-valued claims expand to one claim per element. An invalid
// or nil token yields an unauthenticated identity.
func FromJWT(token *jwt.Token, nameClaimType string) Identity {
	if nameClaimType == "" {
		nameClaimType = NameClaimType
	}

	p := &Principal{}
	if token == nil {
		return p
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return p
	}

	p.Authenticated = token.Valid

	keys := make([]string, 0, len(claims))
	for k := range claims {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		for _, v := range claimValues(claims[k]) {
			p.ClaimSet = append(p.ClaimSet, Claim{Type: k, Value: v})
			if k == nameClaimType && p.UserName == "" {
				p.UserName = v
			}
		}
	}

	return p
}

func claimValues(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, claimValues(item)...)
		}
		return out
	case []string:
		return val
	case string:
		return []string{val}
	case float64:
		return []string{strconv.FormatFloat(val, 'f', -1, 64)}
	case bool:
		return []string{strconv.FormatBool(val)}
	default:
		return []string{fmt.Sprint(val)}
	}
}
