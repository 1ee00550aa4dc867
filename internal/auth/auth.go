// Package auth authorizes run-step requests and signs outgoing ones.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"
)

// Mode names an authentication scheme.
type Mode string

// Supported modes.
const (
	ModeNone   Mode = "none"
	ModeBearer Mode = "bearer"
	ModeBasic  Mode = "basic"
	ModeHMAC   Mode = "hmac"
)

// Header names and value prefixes used on the wire.
const (
	HeaderAuthorization = "Authorization"
	HeaderSignature     = "X-Kindred-Signature"

	bearerPrefix    = "Bearer "
	basicPrefix     = "Basic "
	signaturePrefix = "sha256="
)

// Config is the configured authentication scheme. It is one of None, Bearer,
// Basic, HMAC or Unknown; each carries only the secrets it needs.
type Config interface {
	// Mode returns the scheme name.
	Mode() Mode
	// Authorize reports whether headers carry valid credentials for body.
	Authorize(headers http.Header, body []byte) bool
	// Sign adds credentials for body to headers.
	Sign(headers http.Header, body []byte)

	sealed()
}

// Secrets holds every secret that may be needed by Parse.
type Secrets struct {
	Token      string
	BasicUser  string
	BasicPass  string
	HMACSecret string
}

// Parse selects the variant for mode. Mode names are matched exactly; an
// unrecognised name yields Unknown, which denies everything.
func Parse(mode string, secrets Secrets) Config {
	switch Mode(mode) {
	case ModeNone:
		return None{}
	case ModeBearer:
		return Bearer{Token: secrets.Token}
	case ModeBasic:
		return Basic{Username: secrets.BasicUser, Password: secrets.BasicPass}
	case ModeHMAC:
		return HMAC{Secret: secrets.HMACSecret}
	default:
		return Unknown{Name: mode}
	}
}

// Known reports whether cfg is one of the supported schemes.
func Known(cfg Config) bool {
	if cfg == nil {
		return false
	}
	_, unknown := cfg.(Unknown)
	return !unknown
}

// None accepts every request.
type None struct{}

func (None) Mode() Mode { return ModeNone }
func (None) Authorize(http.Header, []byte) bool { return true }
func (None) Sign(http.Header, []byte) {}
func (None) sealed() {}

// Bearer requires "Authorization: Bearer <token>" verbatim.
type Bearer struct {
	Token string
}

func (Bearer) Mode() Mode { return ModeBearer }

func (b Bearer) Authorize(headers http.Header, _ []byte) bool {
	return equal(headers.Get(HeaderAuthorization), bearerPrefix+b.Token)
}

func (b Bearer) Sign(headers http.Header, _ []byte) {
	headers.Set(HeaderAuthorization, bearerPrefix+b.Token)
}

func (Bearer) sealed() {}

// Basic requires HTTP basic credentials matching Username and Password.
type Basic struct {
	Username string
	Password string
}

func (Basic) Mode() Mode { return ModeBasic }

func (b Basic) Authorize(headers http.Header, _ []byte) bool {
	header := headers.Get(HeaderAuthorization)
	encoded, ok := strings.CutPrefix(header, basicPrefix)
	if !ok {
		return false
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return false
	}
	return equal(string(decoded), b.credentials())
}

func (b Basic) Sign(headers http.Header, _ []byte) {
	headers.Set(HeaderAuthorization, basicPrefix+base64.StdEncoding.EncodeToString([]byte(b.credentials())))
}

func (b Basic) credentials() string {
	return b.Username + ":" + b.Password
}

func (Basic) sealed() {}

// HMAC requires X-Kindred-Signature to be the hex HMAC-SHA256 of the raw body.
type HMAC struct {
	Secret string
}

func (HMAC) Mode() Mode { return ModeHMAC }

func (h HMAC) Authorize(headers http.Header, body []byte) bool {
	return equal(headers.Get(HeaderSignature), h.Signature(body))
}

func (h HMAC) Sign(headers http.Header, body []byte) {
	headers.Set(HeaderSignature, h.Signature(body))
}

// Signature returns the header value expected for body.
func (h HMAC) Signature(body []byte) string {
	mac := hmac.New(sha256.New, []byte(h.Secret))
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

func (HMAC) sealed() {}

// Unknown is produced for unrecognised mode names and rejects every request.
type Unknown struct {
	Name string
}

func (u Unknown) Mode() Mode { return Mode(u.Name) }
func (Unknown) Authorize(http.Header, []byte) bool { return false }
func (Unknown) Sign(http.Header, []byte) {}
func (Unknown) sealed() {}

func equal(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
