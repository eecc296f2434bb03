// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"strings"

	"github.com/pkg/errors"
)

// ValidationError reports rejected input. No state was read or changed.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrorTurnPrefix starts the content of an assistant message recorded in
// place of a failed reply.
const ErrorTurnPrefix = "Error generating response: "

// IsErrorTurn reports whether content is a recorded responder failure.
func IsErrorTurn(content string) bool {
	return strings.HasPrefix(content, ErrorTurnPrefix)
}
