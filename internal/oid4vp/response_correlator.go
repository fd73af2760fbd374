package oid4vp

import (
	"crypto/subtle"
	"net/url"
	"strings"

	"github.com/dentsusoken/oid4vc-verifier-endpoint-core-sub000/internal/domain"
)

// ResponseCodePlaceholder is substituted with the response code in a redirect URI template.
const ResponseCodePlaceholder = "{RESPONSE_CODE}"

// probeResponseCode is used to check that a template yields a valid URL before any real code exists.
const probeResponseCode = domain.ResponseCode("probe")

// RedirectURI substitutes code into template. The result must be an absolute URL.
func RedirectURI(template string, code domain.ResponseCode) (string, error) {
	if !strings.Contains(template, ResponseCodePlaceholder) {
		return "", domain.NewValidationError("redirect uri template must contain " + ResponseCodePlaceholder)
	}
	raw := strings.ReplaceAll(template, ResponseCodePlaceholder, url.QueryEscape(code.String()))
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", domain.NewValidationError("redirect uri template does not produce an absolute URL")
	}
	return u.String(), nil
}

// ValidateRedirectTemplate checks template with a probe response code.
func ValidateRedirectTemplate(template string) error {
	_, err := RedirectURI(template, probeResponseCode)
	return err
}

// ResponseCodeMatches reports whether supplied correlates with the code stored on a
// submitted presentation. Both absent matches; exactly one absent or differing values do not.
func ResponseCodeMatches(stored, supplied *domain.ResponseCode) bool {
	switch {
	case stored == nil && supplied == nil:
		return true
	case stored == nil || supplied == nil:
		return false
	default:
		return subtle.ConstantTimeCompare([]byte(*stored), []byte(*supplied)) == 1
	}
}
