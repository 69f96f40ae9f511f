package response

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustinBusschau/hmrc-gift-aid/pkg/govtalk"
)

func ackResponse() *govtalk.Response {
	return &govtalk.Response{
		Qualifier:     govtalk.QualifierAcknowledgement,
		CorrelationID: "A19FA1A31BCB42D887EA323292AACD88",
		Endpoint:      "https://secure.dev.gateway.gov.uk/poll",
		Interval:      "10",
	}
}

func errorBody(t *testing.T, xml string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(xml))
	return doc.Root()
}

func TestClassifySubmit_Acknowledged(t *testing.T) {
	outcome := ClassifySubmit(ackResponse(), nil)

	assert.Equal(t, StateAcknowledged, outcome.State)
	assert.Equal(t, "A19FA1A31BCB42D887EA323292AACD88", outcome.CorrelationID)
	assert.Equal(t, "https://secure.dev.gateway.gov.uk/poll", outcome.Endpoint)
	assert.Equal(t, "10", outcome.Interval)
}

func TestClassifySubmit_FatalError(t *testing.T) {
	errs := &govtalk.ErrorSet{
		Fatal: []govtalk.Error{{
			Number: "1046",
			Text:   "Authentication Failure. The supplied user credentials failed validation for the requested service.",
		}},
	}

	outcome := ClassifySubmit(nil, errs)
	assert.Equal(t, StateErrored, outcome.State)
	require.NotNil(t, outcome.Errors)
	require.Len(t, outcome.Errors.Fatal, 1)
	assert.Equal(t, "1046", outcome.Errors.Fatal[0].Number)
}

func TestClassifySubmit_NoResponse(t *testing.T) {
	outcome := ClassifySubmit(nil, nil)
	assert.Equal(t, StateIndeterminate, outcome.State)
}

func TestClassifyPoll_AcknowledgementMeansPending(t *testing.T) {
	outcome, err := ClassifyPoll(ackResponse(), nil)

	require.NoError(t, err)
	assert.Equal(t, StatePending, outcome.State)
	assert.Equal(t, "10", outcome.Interval)
	assert.Equal(t, "A19FA1A31BCB42D887EA323292AACD88", outcome.CorrelationID)
}

func TestClassifyPoll_ResponseIsFinal(t *testing.T) {
	resp := &govtalk.Response{
		Qualifier:     govtalk.QualifierResponse,
		CorrelationID: "A19FA1A31BCB42D887EA323292AACD88",
		ResponseText:  "<GovTalkMessage><Body/></GovTalkMessage>",
	}

	outcome, err := ClassifyPoll(resp, nil)
	require.NoError(t, err)
	assert.Equal(t, StateFinal, outcome.State)
	assert.Equal(t, "<GovTalkMessage><Body/></GovTalkMessage>", outcome.ResponseText)
}

func TestClassifyPoll_UnexpectedQualifier(t *testing.T) {
	resp := &govtalk.Response{Qualifier: "surprise"}

	outcome, err := ClassifyPoll(resp, nil)
	assert.Equal(t, StateIndeterminate, outcome.State)

	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, "surprise", protoErr.Qualifier)
}

func TestClassifyPoll_TransportFailureWithoutErrors(t *testing.T) {
	outcome, err := ClassifyPoll(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, StateIndeterminate, outcome.State)
}

func TestClassifyPoll_TransportFailureWithErrors(t *testing.T) {
	errs := &govtalk.ErrorSet{
		Recoverable: []govtalk.Error{{Number: "2000", Text: "Service temporarily unavailable"}},
	}

	outcome, err := ClassifyPoll(nil, errs)
	require.NoError(t, err)
	assert.Equal(t, StateErrored, outcome.State)
	require.Len(t, outcome.Errors.Recoverable, 1)
}

func TestFilterErrors_DropsBenignBusinessError(t *testing.T) {
	set := &govtalk.ErrorSet{
		Business: []govtalk.Error{
			{Number: "3001", Text: "No content"},
			{Number: "3315", Text: "Invalid claim data"},
		},
	}

	filtered := FilterErrors(set, nil)
	require.Len(t, filtered.Business, 1)
	assert.Equal(t, "3315", filtered.Business[0].Number)
}

func TestFilterErrors_BenignOnlyTriggersBodyExtraction(t *testing.T) {
	set := &govtalk.ErrorSet{
		Business: []govtalk.Error{{Number: "3001", Text: "No content"}},
	}
	body := errorBody(t, `<Body><ErrorResponse>`+
		`<Error><Number>4065</Number><Text>Postcode is invalid</Text><Location>/Claim/Repayment</Location></Error>`+
		`<Error><Number>4085</Number><Text>Invalid reference</Text><Location>/Claim/HMRCref</Location></Error>`+
		`</ErrorResponse></Body>`)

	filtered := FilterErrors(set, body)
	require.Len(t, filtered.Business, 2)
	assert.Equal(t, "4065", filtered.Business[0].Number)
	assert.Equal(t, "Postcode is invalid", filtered.Business[0].Text)
	assert.Equal(t, "/Claim/Repayment", filtered.Business[0].Location)
	assert.Equal(t, "4085", filtered.Business[1].Number)
}

func TestFilterErrors_RealErrorsSkipBodyExtraction(t *testing.T) {
	set := &govtalk.ErrorSet{
		Fatal:    []govtalk.Error{{Number: "1046", Text: "Authentication Failure"}},
		Business: []govtalk.Error{{Number: "3001", Text: "No content"}},
	}
	body := errorBody(t, `<Body><ErrorResponse>`+
		`<Error><Number>4065</Number><Text>ignored</Text></Error>`+
		`</ErrorResponse></Body>`)

	filtered := FilterErrors(set, body)
	require.Len(t, filtered.Fatal, 1)
	assert.Empty(t, filtered.Business)
}

func TestFilterErrors_NilSet(t *testing.T) {
	filtered := FilterErrors(nil, nil)
	assert.False(t, filtered.HasErrors())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "errored", StateErrored.String())
	assert.Equal(t, "acknowledged", StateAcknowledged.String())
	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "final", StateFinal.String())
	assert.Equal(t, "indeterminate", StateIndeterminate.String())
}
