package saml

import "fmt"

// Kind tags the broad category of error this library raises, per §7. Callers
// that want to branch on error category should use errors.As against the
// concrete *Error type and switch on Kind, rather than string-matching
// messages.
type Kind string

const (
	KindArtifact       Kind = "Artifact"
	KindBinding        Kind = "Binding"
	KindSecurityPolicy Kind = "SecurityPolicy"
	KindFatalProfile   Kind = "FatalProfile"
	KindRetryableProfile Kind = "RetryableProfile"
	KindMetadata       Kind = "Metadata"
	KindMetadataFilter Kind = "MetadataFilter"
)

// Error is the concrete error type raised by every layer of this module.
// It carries a Kind and, once annotated (see Annotate), contact and status
// details pulled from the peer's metadata.
type Error struct {
	Kind Kind
	Msg  string
	Err  error

	// Annotation, populated by Annotate.
	EntityID      string
	ContactName   string
	ContactEmail  string
	ErrorURL      string
	StatusCode    string
	StatusCode2   string
	StatusMessage string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf constructs an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap constructs an Error of the given kind wrapping a lower-level cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// ContactAnnotator is implemented by metadata roles (or anything that can
// resolve one) so that Annotate can walk ContactPerson entries without this
// package depending on the metadata package.
type ContactAnnotator interface {
	EntityIDFor(role interface{}) string
	ContactsFor(role interface{}, priority []string) (name, email string)
	ErrorURLFor(role interface{}) string
}

// Annotate attaches entityID, contact and errorURL properties to err before
// returning it. It does not set StatusCode, StatusCode2 or StatusMessage;
// those stay as err already carried them. priority is the ordered
// list of ContactType values to prefer (defaults to support, technical when
// empty, matching the original implementation's default).
func Annotate(err error, ann ContactAnnotator, role interface{}, priority []string) *Error {
	if len(priority) == 0 {
		priority = []string{"support", "technical"}
	}
	e, ok := err.(*Error)
	if !ok {
		e = &Error{Kind: KindMetadata, Msg: err.Error(), Err: err}
	}
	if ann == nil {
		return e
	}
	e.EntityID = ann.EntityIDFor(role)
	e.ContactName, e.ContactEmail = ann.ContactsFor(role, priority)
	e.ErrorURL = ann.ErrorURLFor(role)
	return e
}
