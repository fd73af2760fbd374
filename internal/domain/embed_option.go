package domain

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// RequestIDPlaceholder is replaced by the request id when a URLBuilder template contains it.
const RequestIDPlaceholder = "{requestId}"

type urlBuilderKind string

const (
	urlBuilderWithRequestID urlBuilderKind = "with_request_id"
	urlBuilderFixed         urlBuilderKind = "fixed"
)

// URLBuilder produces the URL at which an artifact keyed by a RequestID is published.
//
// It is plain data (not a closure) so that presentations carrying it can be persisted.
type URLBuilder struct {
	kind     urlBuilderKind
	template string
}

// URLWithRequestID builds URLs from template. If template contains RequestIDPlaceholder it is
// substituted, otherwise the request id is appended as the last path segment.
func URLWithRequestID(template string) URLBuilder {
	return URLBuilder{kind: urlBuilderWithRequestID, template: template}
}

// FixedURL always builds the same URL.
func FixedURL(u string) URLBuilder {
	return URLBuilder{kind: urlBuilderFixed, template: u}
}

// Build returns the URL for id.
func (b URLBuilder) Build(id RequestID) (string, error) {
	var raw string
	switch b.kind {
	case urlBuilderFixed:
		raw = b.template
	case urlBuilderWithRequestID:
		if strings.Contains(b.template, RequestIDPlaceholder) {
			raw = strings.ReplaceAll(b.template, RequestIDPlaceholder, url.PathEscape(id.String()))
		} else {
			joined, err := url.JoinPath(b.template, id.String())
			if err != nil {
				return "", WrapValidationError(err, "invalid url template")
			}
			raw = joined
		}
	default:
		return "", NewValidationError("url builder is not configured")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", WrapValidationError(err, "invalid url")
	}
	if !u.IsAbs() {
		return "", NewValidationError(fmt.Sprintf("url %q is not absolute", raw))
	}
	return u.String(), nil
}

// IsZero reports whether the builder was never configured.
func (b URLBuilder) IsZero() bool { return b.kind == "" }

type urlBuilderJSON struct {
	Type     urlBuilderKind `json:"type"`
	Template string         `json:"template"`
}

func (b URLBuilder) MarshalJSON() ([]byte, error) {
	return json.Marshal(urlBuilderJSON{Type: b.kind, Template: b.template})
}

func (b *URLBuilder) UnmarshalJSON(data []byte) error {
	var v urlBuilderJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v.Type {
	case urlBuilderWithRequestID, urlBuilderFixed:
	default:
		return fmt.Errorf("unknown url builder type %q", v.Type)
	}
	b.kind = v.Type
	b.template = v.Template
	return nil
}

// EmbedOption says whether an artifact is inlined in the request object (ByValue) or
// published at a URL (ByReference). It is applied independently per artifact.
type EmbedOption interface {
	isEmbedOption()
}

// ByValue inlines the artifact.
type ByValue struct{}

// ByReference publishes the artifact at the URL produced by Builder.
type ByReference struct {
	Builder URLBuilder
}

func (ByValue) isEmbedOption()     {}
func (ByReference) isEmbedOption() {}

// Embed mode selectors accepted on the wire and in configuration.
const (
	EmbedModeByValue     = "by_value"
	EmbedModeByReference = "by_reference"
)

// ResolveEmbedOption maps a nullable selector to an EmbedOption.
// An absent selector yields def, "by_value" yields ByValue and "by_reference" yields
// byReference. Any other selector is a validation error.
func ResolveEmbedOption(selector *string, byReference ByReference, def EmbedOption) (EmbedOption, error) {
	if selector == nil {
		return def, nil
	}
	switch *selector {
	case EmbedModeByValue:
		return ByValue{}, nil
	case EmbedModeByReference:
		return byReference, nil
	default:
		return nil, NewValidationError(fmt.Sprintf("invalid embed mode %q", *selector))
	}
}

type embedOptionJSON struct {
	Mode    string      `json:"mode"`
	Builder *URLBuilder `json:"url_builder,omitempty"`
}

// MarshalEmbedOption encodes an EmbedOption (nil encodes as JSON null).
func MarshalEmbedOption(o EmbedOption) ([]byte, error) {
	switch o := o.(type) {
	case nil:
		return []byte("null"), nil
	case ByValue:
		return json.Marshal(embedOptionJSON{Mode: EmbedModeByValue})
	case ByReference:
		return json.Marshal(embedOptionJSON{Mode: EmbedModeByReference, Builder: &o.Builder})
	default:
		return nil, fmt.Errorf("unknown embed option %T", o)
	}
}

// UnmarshalEmbedOption decodes the output of MarshalEmbedOption.
func UnmarshalEmbedOption(data []byte) (EmbedOption, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var v embedOptionJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	switch v.Mode {
	case EmbedModeByValue:
		return ByValue{}, nil
	case EmbedModeByReference:
		if v.Builder == nil {
			return nil, fmt.Errorf("by_reference embed option without url builder")
		}
		return ByReference{Builder: *v.Builder}, nil
	default:
		return nil, fmt.Errorf("unknown embed mode %q", v.Mode)
	}
}
