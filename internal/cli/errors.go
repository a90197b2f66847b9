package cli

import (
	"errors"
	"fmt"
	"io"

	"issuetrack/internal/issueclient"
)

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

// issueError turns a store 404 for id into a notFoundError and passes anything
// else through.
func issueError(err error, id int) error {
	var te *issueclient.TransportError
	if errors.As(err, &te) && te.NotFound() {
		return errNotFound("issue", fmt.Sprint(id))
	}
	return err
}

// reportedError marks an error writeErr has already printed.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

// ReportError prints err to w unless a command already printed it. Flag and
// argument errors from cobra itself land here.
func ReportError(w io.Writer, err error) {
	var r reportedError
	if err == nil || errors.As(err, &r) {
		return
	}
	fmt.Fprintln(w, "Error: "+err.Error())
}
