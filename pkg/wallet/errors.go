package wallet

import (
	"encoding/json"
	"fmt"
)

// Error codes on the wire (spec.md §7). Stable: transport layers and
// clients key off the numeric value, not the Go identifier.
const (
	ErrUnsupportedCommand        = 1
	ErrProtocolError             = 2
	ErrBadCommandArgument        = 3
	ErrUnknownPortfolio          = 4
	ErrUnknownTag                = 5
	ErrUnknownUsage              = 6
	ErrIllegalAction             = 7
	ErrUnknownDocumentType       = 8
	ErrInvalidDocumentFormat     = 9
	ErrImpossibleToLoadPortfolio = 10
	ErrUnknownClient             = 11
	ErrDocumentDoNotExist        = 12
	ErrNameAlreadyExists         = 13
	ErrNameDoesNotExist          = 14
	ErrUnknownError              = 99
)

var errorNames = map[int]string{
	ErrUnsupportedCommand:        "UnsupportedCommand",
	ErrProtocolError:             "ProtocolError",
	ErrBadCommandArgument:        "BadCommandArgument",
	ErrUnknownPortfolio:          "UnknownPortfolio",
	ErrUnknownTag:                "UnknownTag",
	ErrUnknownUsage:              "UnknownUsage",
	ErrIllegalAction:             "IllegalAction",
	ErrUnknownDocumentType:       "UnknownDocumentType",
	ErrInvalidDocumentFormat:     "InvalidDocumentFormat",
	ErrImpossibleToLoadPortfolio: "ImpossibleToLoadPortfolio",
	ErrUnknownClient:             "UnknownClient",
	ErrDocumentDoNotExist:        "DocumentDoNotExist",
	ErrNameAlreadyExists:         "NameAlreadyExists",
	ErrNameDoesNotExist:          "NameDoesNotExist",
	ErrUnknownError:              "Unknown",
}

// Error is the wallet's error envelope: a stable numeric code, the
// offending argument, and any structured extra data the wire format
// calls for (spec.md §7).
type Error struct {
	Code  int
	What  string
	Extra map[string]string
}

func (e *Error) Error() string {
	name := errorNames[e.Code]
	if name == "" {
		name = "Unknown"
	}
	if e.What != "" {
		return fmt.Sprintf("%s: %s", name, e.What)
	}
	return name
}

func newError(code int, what string, extra map[string]string) *Error {
	return &Error{Code: code, What: what, Extra: extra}
}

type errorEnvelope struct {
	ErrorCode int               `json:"errorCode"`
	WhatArg   string            `json:"whatArg"`
	ExtraData map[string]string `json:"extraData,omitempty"`
}

func (e *Error) wireJSON() string {
	buf, err := json.Marshal(errorEnvelope{ErrorCode: e.Code, WhatArg: e.What, ExtraData: e.Extra})
	if err != nil {
		// errorEnvelope is always marshalable; this would be a programmer error.
		panic(err)
	}
	return string(buf)
}
