// Copyright (C) 2022-2024 Algorand, Inc.
// This file is part of netprobe
//
// netprobe is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// netprobe is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with netprobe.  If not, see <https://www.gnu.org/licenses/>.

package network

import (
	"errors"
	"fmt"
)

// InvalidDataError indicates that bytes received from a peer could not be
// decoded at some layer of the wire stack. It is the only recoverable
// decode failure: the connection survives, the bytes do not.
type InvalidDataError struct {
	Reason string
}

// Error implements the error interface.
func (e *InvalidDataError) Error() string {
	return fmt.Sprintf("invalid data: %s", e.Reason)
}

// invalidDataf builds an InvalidDataError with a formatted reason.
func invalidDataf(format string, args ...interface{}) error {
	return &InvalidDataError{Reason: fmt.Sprintf(format, args...)}
}

// IsInvalidData reports whether err is (or wraps) an InvalidDataError.
func IsInvalidData(err error) bool {
	var ide *InvalidDataError
	return errors.As(err, &ide)
}
