// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: https://github.com/rbmk-project/rbmk/blob/v0.17.0/pkg/common/errclass/errclass.go

// Package errclass classifies connection errors into short, stable labels
// suitable for structured logs and metrics.
package errclass

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"
)

// Exported classification labels. Callers match on these strings rather
// than on the underlying error type, since the underlying cause (a
// syscall.Errno on Unix, a windows.Errno on Windows) is platform-specific.
const (
	EADDRNOTAVAIL   = "EADDRNOTAVAIL"
	EADDRINUSE      = "EADDRINUSE"
	ECONNABORTED    = "ECONNABORTED"
	ECONNREFUSED    = "ECONNREFUSED"
	ECONNRESET      = "ECONNRESET"
	EHOSTUNREACH    = "EHOSTUNREACH"
	EINVAL          = "EINVAL"
	EINTR           = "EINTR"
	ENETDOWN        = "ENETDOWN"
	ENETUNREACH     = "ENETUNREACH"
	ENOBUFS         = "ENOBUFS"
	ENOTCONN        = "ENOTCONN"
	EPROTONOSUPPORT = "EPROTONOSUPPORT"
	ETIMEDOUT       = "ETIMEDOUT"
	ECLOSED         = "ECLOSED"
	EGENERIC        = "EGENERIC"
)

// New classifies err into one of the labels above. It returns the empty
// string for a nil error, and [EGENERIC] when err does not match any known
// cause. Use this as a [dbgp.ErrClassifierFunc]:
//
//	cfg.ErrClassifier = dbgp.ErrClassifierFunc(errclass.New)
func New(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ETIMEDOUT
	}
	if errors.Is(err, net.ErrClosed) {
		return ECLOSED
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case errEADDRNOTAVAIL:
			return EADDRNOTAVAIL
		case errEADDRINUSE:
			return EADDRINUSE
		case errECONNABORTED:
			return ECONNABORTED
		case errECONNREFUSED:
			return ECONNREFUSED
		case errECONNRESET:
			return ECONNRESET
		case errEHOSTUNREACH:
			return EHOSTUNREACH
		case errEINVAL:
			return EINVAL
		case errEINTR:
			return EINTR
		case errENETDOWN:
			return ENETDOWN
		case errENETUNREACH:
			return ENETUNREACH
		case errENOBUFS:
			return ENOBUFS
		case errENOTCONN:
			return ENOTCONN
		case errEPROTONOSUPPORT:
			return EPROTONOSUPPORT
		case errETIMEDOUT:
			return ETIMEDOUT
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ETIMEDOUT
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return EGENERIC
	}

	return EGENERIC
}
