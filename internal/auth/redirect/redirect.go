// Package redirect validates client redirect URIs by exact string match.
package redirect

import (
	"slices"

	dErrors "unique/pkg/domain-errors"
)

// Validate returns requested when it equals one of the registered URIs.
// No normalization is applied: scheme, host case, trailing slash and query
// must all match byte for byte.
func Validate(requested string, registered []string) (string, error) {
	if requested == "" {
		return "", dErrors.New(dErrors.CodeInvalidRequest, "redirect_uri is required")
	}
	if !slices.Contains(registered, requested) {
		return "", dErrors.New(dErrors.CodeInvalidRedirectURI, "redirect_uri is not registered for this client")
	}
	return requested, nil
}
