// Package response interprets gateway replies: it classifies a reply as
// acknowledgement, pending poll, final response or error set, and
// applies the business-error filtering the charities service needs.
package response

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/JustinBusschau/hmrc-gift-aid/pkg/govtalk"
)

// State is the classification of a gateway reply.
type State int

const (
	// StateErrored means the reply carried a structured error set.
	StateErrored State = iota
	// StateAcknowledged means the submission was accepted for
	// asynchronous processing; poll with the returned correlation id.
	StateAcknowledged
	// StatePending means a poll found the result not ready yet.
	StatePending
	// StateFinal means a poll retrieved the terminal response payload.
	StateFinal
	// StateIndeterminate means the reply could not be classified; the
	// caller may retry or escalate.
	StateIndeterminate
)

func (s State) String() string {
	switch s {
	case StateErrored:
		return "errored"
	case StateAcknowledged:
		return "acknowledged"
	case StatePending:
		return "pending"
	case StateFinal:
		return "final"
	default:
		return "indeterminate"
	}
}

// ProtocolError reports a poll reply with a message qualifier the state
// machine does not recognise.
type ProtocolError struct {
	Qualifier string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("response: unexpected message qualifier %q", e.Qualifier)
}

// Outcome is the uniform result of classifying a reply.
type Outcome struct {
	State         State
	Endpoint      string
	Interval      string
	CorrelationID string

	// ResponseText is the raw terminal payload, set for StateFinal.
	ResponseText string

	// Errors is the filtered error set, set for StateErrored.
	Errors *govtalk.ErrorSet
}

// benignBusinessError is the business error the gateway raises to mean
// "no content yet" rather than a true failure.
const benignBusinessError = "3001"

// FilterErrors drops the benign no-content business error from the set.
// If nothing remains after filtering, the reply is not a gateway-level
// failure and the service-specific errors, if any, are lifted from the
// ErrorResponse block of the body instead.
func FilterErrors(set *govtalk.ErrorSet, body *etree.Element) *govtalk.ErrorSet {
	filtered := &govtalk.ErrorSet{}
	if set != nil {
		filtered.Fatal = append(filtered.Fatal, set.Fatal...)
		filtered.Recoverable = append(filtered.Recoverable, set.Recoverable...)
		for _, e := range set.Business {
			if e.Number != benignBusinessError {
				filtered.Business = append(filtered.Business, e)
			}
		}
	}

	if !filtered.HasErrors() && body != nil {
		for _, el := range body.FindElements(".//ErrorResponse/Error") {
			filtered.Business = append(filtered.Business, govtalk.Error{
				Number:   childText(el, "Number"),
				Text:     childText(el, "Text"),
				Location: childText(el, "Location"),
			})
		}
	}

	return filtered
}

// ClassifySubmit interprets the reply to an initial submission.
func ClassifySubmit(resp *govtalk.Response, errs *govtalk.ErrorSet) *Outcome {
	if errs.HasErrors() {
		var body *etree.Element
		if resp != nil {
			body = resp.Body
		}
		return &Outcome{State: StateErrored, Errors: FilterErrors(errs, body)}
	}
	if resp == nil {
		return &Outcome{State: StateIndeterminate}
	}
	return &Outcome{
		State:         StateAcknowledged,
		Endpoint:      resp.Endpoint,
		Interval:      resp.Interval,
		CorrelationID: resp.CorrelationID,
	}
}

// ClassifyPoll interprets the reply to a poll. An unrecognised
// qualifier yields StateIndeterminate together with a ProtocolError so
// the caller can decide between retry and escalation; a transport
// failure that reported no errors yields StateIndeterminate alone.
func ClassifyPoll(resp *govtalk.Response, errs *govtalk.ErrorSet) (*Outcome, error) {
	if errs.HasErrors() {
		var body *etree.Element
		if resp != nil {
			body = resp.Body
		}
		return &Outcome{State: StateErrored, Errors: FilterErrors(errs, body)}, nil
	}
	if resp == nil {
		return &Outcome{State: StateIndeterminate}, nil
	}

	switch resp.Qualifier {
	case govtalk.QualifierAcknowledgement:
		return &Outcome{
			State:         StatePending,
			Endpoint:      resp.Endpoint,
			Interval:      resp.Interval,
			CorrelationID: resp.CorrelationID,
		}, nil
	case govtalk.QualifierResponse:
		return &Outcome{
			State:         StateFinal,
			CorrelationID: resp.CorrelationID,
			ResponseText:  resp.ResponseText,
		}, nil
	default:
		return &Outcome{State: StateIndeterminate}, &ProtocolError{Qualifier: resp.Qualifier}
	}
}

func childText(el *etree.Element, tag string) string {
	if child := el.FindElement(tag); child != nil {
		return child.Text()
	}
	return ""
}
