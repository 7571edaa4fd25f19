package fpl

import (
	"fmt"
	"strings"

	crerr "github.com/cockroachdb/errors"
)

type FaultKind string

const (
	FaultTransient FaultKind = "transient"
	FaultPermanent FaultKind = "permanent"
)

var (
	errTransport        = crerr.New("fpl transport failure")
	errUnexpectedStatus = crerr.New("unexpected fpl response status")
	errMalformedPayload = crerr.New("malformed fpl payload")
	errInvalidArgument  = crerr.New("invalid fpl request argument")
	errBodyTooLarge     = crerr.New("fpl response body too large")
)

// RemoteFault is every failure the client reports apart from caller
// cancellation and an open circuit.
type RemoteFault struct {
	Op         string
	StatusCode int
	Kind       FaultKind
	Err        error
}

func (f *RemoteFault) Error() string {
	var b strings.Builder
	b.WriteString("fpl ")
	b.WriteString(f.Op)
	b.WriteString(": ")
	b.WriteString(string(f.Kind))
	if f.StatusCode > 0 {
		fmt.Fprintf(&b, " status=%d", f.StatusCode)
	}
	if f.Err != nil {
		b.WriteString(": ")
		b.WriteString(f.Err.Error())
	}
	return b.String()
}

func (f *RemoteFault) Unwrap() error {
	return f.Err
}

// Transient reports whether retrying the same request may succeed.
func (f *RemoteFault) Transient() bool {
	return f.Kind == FaultTransient
}

// HTTPStatus is the upstream status code, 0 when no response was read.
func (f *RemoteFault) HTTPStatus() int {
	return f.StatusCode
}

func transientFault(op string, status int, err error) *RemoteFault {
	return &RemoteFault{Op: op, StatusCode: status, Kind: FaultTransient, Err: err}
}

func permanentFault(op string, status int, err error) *RemoteFault {
	return &RemoteFault{Op: op, StatusCode: status, Kind: FaultPermanent, Err: err}
}

// classifyStatus maps a non-2xx status: 5xx and 429 are worth retrying.
func classifyStatus(status int) FaultKind {
	if status >= 500 || status == 429 {
		return FaultTransient
	}
	return FaultPermanent
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	text := strings.TrimSpace(string(raw))
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
