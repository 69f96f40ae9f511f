package giftaid

import (
	"context"
	"errors"
	"fmt"

	"github.com/beevik/etree"

	"github.com/JustinBusschau/hmrc-gift-aid/internal/config"
	"github.com/JustinBusschau/hmrc-gift-aid/pkg/claim"
	"github.com/JustinBusschau/hmrc-gift-aid/pkg/envelope"
	"github.com/JustinBusschau/hmrc-gift-aid/pkg/govtalk"
	"github.com/JustinBusschau/hmrc-gift-aid/pkg/irmark"
	"github.com/JustinBusschau/hmrc-gift-aid/pkg/response"
	"github.com/JustinBusschau/hmrc-gift-aid/pkg/tracking"
)

// Gateway endpoints, one for test/dev and one for live.
const (
	LiveEndpoint = "https://secure.gateway.gov.uk/submission"
	DevEndpoint  = "https://secure.dev.gateway.gov.uk/submission"
)

// targetOrganisation is the fixed recipient of charity claims.
const targetOrganisation = "IR"

// Endpoint returns the gateway URL for the chosen environment.
func Endpoint(test bool) string {
	if test {
		return DevEndpoint
	}
	return LiveEndpoint
}

// Client submits Gift Aid repayment claims and polls for their results.
// All network traffic is delegated to the transport collaborator; the
// client only assembles documents and interprets structured replies.
// A client is safe to reuse across submissions but holds one authorised
// official and claim period at a time.
type Client struct {
	transport govtalk.Transport
	route     govtalk.ChannelRoute
	endpoint  string
	compress  bool
	official  *claim.Official
	periodEnd string
	tracker   *tracking.Tracker
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the gateway URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithCompression toggles gzip compression of the claim body.
func WithCompression(enabled bool) Option {
	return func(c *Client) { c.compress = enabled }
}

// WithAuthorisedOfficial sets the official who signs off the claim.
func WithAuthorisedOfficial(o *claim.Official) Option {
	return func(c *Client) { c.official = o }
}

// WithClaimPeriodEnd sets the claim period end date (YYYY-MM-DD).
func WithClaimPeriodEnd(date string) Option {
	return func(c *Client) { c.periodEnd = date }
}

// New creates a client. Compression defaults to on, the endpoint to the
// live gateway.
func New(transport govtalk.Transport, route govtalk.ChannelRoute, opts ...Option) (*Client, error) {
	if transport == nil {
		return nil, errors.New("giftaid: transport is required")
	}

	c := &Client{
		transport: transport,
		route:     route,
		endpoint:  LiveEndpoint,
		compress:  true,
		tracker:   tracking.NewTracker(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewFromConfig creates a client from a loaded configuration file.
func NewFromConfig(cfg *config.Config, transport govtalk.Transport, opts ...Option) (*Client, error) {
	route := govtalk.ChannelRoute{
		URI:     cfg.Product.URI,
		Product: cfg.Product.Name,
		Version: cfg.Product.Version,
	}
	base := []Option{
		WithEndpoint(cfg.Endpoint()),
		WithCompression(cfg.CompressEnabled()),
	}
	return New(transport, route, append(base, opts...)...)
}

// SubmitResult is the outcome of a claim submission. On acknowledgement
// it carries the poll endpoint, interval and correlation id; on failure
// the filtered error set. ClaimXML and RequestText are kept for audit
// either way.
type SubmitResult struct {
	response.Outcome

	// ClaimXML is the rendered claim body before envelope assembly.
	ClaimXML string
	// RequestText is the raw outbound request as transmitted.
	RequestText string
}

// Submit renders, wraps and submits a claim, then classifies the reply.
// Structural and digest errors abort before any network call.
func (c *Client) Submit(ctx context.Context, req *claim.Request) (*SubmitResult, error) {
	if c.official == nil {
		return nil, &claim.StructuralError{Field: "official", Reason: "authorised official is required"}
	}

	claimXML, err := claim.Build(req)
	if err != nil {
		return nil, err
	}

	body, err := envelope.Build(claimXML, c.official, envelope.Meta{
		CharityRef: req.Organisation.GatewayRef,
		PeriodEnd:  c.periodEnd,
		Compress:   c.compress,
	})
	if err != nil {
		return nil, err
	}

	gtReq := &govtalk.Request{
		TransactionID:       govtalk.NewTransactionID(),
		Class:               govtalk.ClassCharityClaim,
		Qualifier:           govtalk.QualifierRequest,
		Function:            govtalk.FunctionSubmit,
		Transformation:      govtalk.TransformationXML,
		TargetOrganisations: []string{targetOrganisation},
		Keys: []govtalk.Key{
			{Type: "CHARID", Value: req.Organisation.GatewayRef},
		},
		ChannelRoute: c.route,
		Endpoint:     c.endpoint,
		Body:         body,
		DigestHook:   irmark.Seal,
	}

	resp, errSet, err := c.transport.Send(ctx, gtReq)
	if err != nil {
		return nil, fmt.Errorf("giftaid: submit: %w", err)
	}

	outcome := response.ClassifySubmit(resp, errSet)
	result := &SubmitResult{Outcome: *outcome, ClaimXML: claimXML}
	if resp != nil {
		result.RequestText = resp.RequestText
	}

	if outcome.State == response.StateAcknowledged {
		c.tracker.Track(outcome.CorrelationID, outcome.Endpoint, outcome.Interval)
	}
	return result, nil
}

// PollResult is the outcome of one poll.
type PollResult struct {
	response.Outcome

	// RequestText is the raw outbound poll request.
	RequestText string
}

// Poll asks the gateway for the result of an earlier submission. An
// empty correlationID falls back to the most recent acknowledged
// submission; an empty pollURL uses the client endpoint. The poll state
// machine holds no other state: repeat polling and deadlines are the
// caller's responsibility.
func (c *Client) Poll(ctx context.Context, correlationID, pollURL string) (*PollResult, error) {
	if correlationID == "" {
		correlationID = c.tracker.LastCorrelationID()
	}
	if correlationID == "" {
		return nil, errors.New("giftaid: no correlation id to poll")
	}

	endpoint := c.endpoint
	if pollURL != "" {
		endpoint = pollURL
	}

	gtReq := &govtalk.Request{
		TransactionID:  govtalk.NewTransactionID(),
		Class:          govtalk.ClassCharityClaim,
		Qualifier:      govtalk.QualifierPoll,
		Function:       govtalk.FunctionSubmit,
		CorrelationID:  correlationID,
		Transformation: govtalk.TransformationXML,
		Endpoint:       endpoint,
	}

	resp, errSet, err := c.transport.Send(ctx, gtReq)
	if err != nil {
		return nil, fmt.Errorf("giftaid: poll: %w", err)
	}

	outcome, stateErr := response.ClassifyPoll(resp, errSet)
	if outcome.CorrelationID == "" {
		outcome.CorrelationID = correlationID
	}

	switch outcome.State {
	case response.StatePending:
		c.tracker.SetStatus(correlationID, tracking.StatusPending)
	case response.StateFinal:
		c.tracker.SetStatus(correlationID, tracking.StatusFinal)
	case response.StateErrored:
		c.tracker.SetStatus(correlationID, tracking.StatusFailed)
	}

	result := &PollResult{Outcome: *outcome}
	if resp != nil {
		result.RequestText = resp.RequestText
	}
	return result, stateErr
}

// StatusRecord is one row of the gateway's claim status report.
type StatusRecord map[string]string

// ClaimDataResult is the reply to a claim data request.
type ClaimDataResult struct {
	Records     []StatusRecord
	RequestText string
	Errors      *govtalk.ErrorSet
}

// RequestClaimData lists the stored claim status records for a charity.
func (c *Client) RequestClaimData(ctx context.Context, charityRef string) (*ClaimDataResult, error) {
	gtReq := &govtalk.Request{
		TransactionID:       govtalk.NewTransactionID(),
		Class:               govtalk.ClassCharityClaim,
		Qualifier:           govtalk.QualifierRequest,
		Function:            govtalk.FunctionList,
		Transformation:      govtalk.TransformationXML,
		TargetOrganisations: []string{targetOrganisation},
		Keys: []govtalk.Key{
			{Type: "CHARID", Value: charityRef},
		},
		ChannelRoute: c.route,
		Endpoint:     c.endpoint,
	}

	resp, errSet, err := c.transport.Send(ctx, gtReq)
	if err != nil {
		return nil, fmt.Errorf("giftaid: claim data: %w", err)
	}

	result := &ClaimDataResult{}
	if resp != nil {
		result.RequestText = resp.RequestText
	}

	if errSet.HasErrors() {
		var body = respBody(resp)
		result.Errors = response.FilterErrors(errSet, body)
		return result, nil
	}
	if resp == nil || resp.Body == nil {
		return result, nil
	}

	for _, record := range resp.Body.FindElements(".//StatusReport/StatusRecord") {
		row := StatusRecord{}
		for _, child := range record.ChildElements() {
			row[child.Tag] = child.Text()
		}
		result.Records = append(result.Records, row)
	}
	return result, nil
}

// DeleteRequest asks the gateway to delete a stored submission result.
func (c *Client) DeleteRequest(ctx context.Context, correlationID string) error {
	if correlationID == "" {
		return errors.New("giftaid: correlation id is required")
	}

	gtReq := &govtalk.Request{
		TransactionID:  govtalk.NewTransactionID(),
		Class:          govtalk.ClassCharityClaim,
		Qualifier:      govtalk.QualifierRequest,
		Function:       govtalk.FunctionDelete,
		CorrelationID:  correlationID,
		Transformation: govtalk.TransformationXML,
		Endpoint:       c.endpoint,
	}

	resp, errSet, err := c.transport.Send(ctx, gtReq)
	if err != nil {
		return fmt.Errorf("giftaid: delete: %w", err)
	}
	if errSet.HasErrors() {
		filtered := response.FilterErrors(errSet, respBody(resp))
		if filtered.HasErrors() {
			return fmt.Errorf("giftaid: delete rejected: %s", errorSummary(filtered))
		}
	}

	c.tracker.Remove(correlationID)
	return nil
}

// Tracker exposes the submission tracker for callers that poll from a
// different process stage.
func (c *Client) Tracker() *tracking.Tracker {
	return c.tracker
}

func respBody(resp *govtalk.Response) *etree.Element {
	if resp != nil {
		return resp.Body
	}
	return nil
}

func errorSummary(set *govtalk.ErrorSet) string {
	all := append(append(append([]govtalk.Error{}, set.Fatal...), set.Recoverable...), set.Business...)
	if len(all) == 0 {
		return "unknown error"
	}
	return fmt.Sprintf("%s: %s", all[0].Number, all[0].Text)
}
