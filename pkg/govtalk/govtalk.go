// Package govtalk defines the contract between the claim pipeline and
// the transport collaborator that speaks the GovTalk envelope protocol.
//
// The transport owns the outer GovTalkMessage: authentication, channel
// routing, correlation, HTTP transmission and transport-level retries.
// This package only describes the request the pipeline hands over and
// the structured reply data the pipeline reads back. The request is an
// immutable descriptor built per call; there is no setter sequence to
// get out of order.
package govtalk

import (
	"context"

	"github.com/beevik/etree"
	"github.com/google/uuid"
)

// Message class, qualifier and function values used by the charities
// repayment service.
const (
	ClassCharityClaim = "HMRC-CHAR-CLM"

	QualifierRequest         = "request"
	QualifierPoll            = "poll"
	QualifierAcknowledgement = "acknowledgement"
	QualifierResponse        = "response"
	QualifierError           = "error"

	FunctionSubmit = "submit"
	FunctionList   = "list"
	FunctionDelete = "delete"

	TransformationXML = "XML"
)

// Key is a keyed identifier in the message header, e.g. the CHARID
// charity reference.
type Key struct {
	Type  string
	Value string
}

// ChannelRoute identifies the product generating the submission.
type ChannelRoute struct {
	URI     string
	Product string
	Version string
}

// Request describes one outbound gateway message. The transport reads
// it; the pipeline never mutates it after construction.
type Request struct {
	// TransactionID correlates request and response text in audit logs.
	TransactionID string

	Class          string
	Qualifier      string
	Function       string
	CorrelationID  string
	Transformation string

	TargetOrganisations []string
	Keys                []Key
	ChannelRoute        ChannelRoute

	// Endpoint is the gateway URL to transmit to.
	Endpoint string

	// Body is the message body XML, empty for poll and list requests.
	Body string

	// DigestHook, when set, is invoked by the transport with the fully
	// assembled outer document immediately before transmission and must
	// return the document with its integrity mark spliced in.
	DigestHook func(outerDoc string) (string, error)
}

// NewTransactionID returns a fresh audit transaction id.
func NewTransactionID() string {
	return uuid.NewString()
}

// Error is one structured gateway error.
type Error struct {
	Number   string
	Text     string
	Location string
}

// ErrorSet groups gateway errors by severity, preserved verbatim from
// the reply.
type ErrorSet struct {
	Fatal       []Error
	Recoverable []Error
	Business    []Error
}

// HasErrors reports whether any error of any severity is present.
func (s *ErrorSet) HasErrors() bool {
	if s == nil {
		return false
	}
	return len(s.Fatal) > 0 || len(s.Recoverable) > 0 || len(s.Business) > 0
}

// Response is the structured reply data the transport extracts from a
// gateway response.
type Response struct {
	Qualifier     string
	CorrelationID string

	// Endpoint and Interval describe where and how often to poll for
	// the asynchronous result.
	Endpoint string
	Interval string

	// Body is the parsed Body element of the reply, nil when absent.
	Body *etree.Element

	// RequestText and ResponseText are the raw wire documents, kept
	// for audit.
	RequestText  string
	ResponseText string
}

// Transport is the external collaborator that wraps, transmits and
// unwraps GovTalk messages. A transport failure is reported through
// err; gateway-reported errors come back as an ErrorSet alongside
// whatever response data could be extracted.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, *ErrorSet, error)
}
