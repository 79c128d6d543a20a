package commands

import (
	"fmt"
	"io"

	authService "github.com/allisson/phivault/internal/auth/service"
)

// RunCreateAPIToken generates a bearer token for the field API. Only its hash belongs in
// the server configuration; the plain token is shown once.
func RunCreateAPIToken(tokenService authService.APITokenService, writer io.Writer, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	plainToken, tokenHash, err := tokenService.Generate()
	if err != nil {
		return err
	}

	if format == "json" {
		return writeJSON(writer, map[string]string{
			"token":      plainToken,
			"token_hash": tokenHash,
		})
	}

	fmt.Fprintln(writer, "# Field API token (shown once, give it to the calling service)")
	fmt.Fprintf(writer, "PHIVAULT_API_TOKEN=\"%s\"\n", plainToken)
	fmt.Fprintln(writer)
	fmt.Fprintln(writer, "# Server configuration")
	fmt.Fprintf(writer, "API_TOKEN_HASH='%s'\n", tokenHash)
	return nil
}
