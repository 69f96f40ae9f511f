/*
Package hmrcgiftaid implements a client for the HMRC Charities Online
service, submitting Gift Aid repayment claims through the Government
Gateway's GovTalk envelope protocol.

# Overview

A claim is assembled from donation records, rendered as the R68 Claim
schema, wrapped in an IRenvelope with an IRmark integrity digest, and
submitted to the gateway. Because the gateway processes claims
asynchronously, submission returns a correlation id that is polled
until the terminal response arrives.

# Package Structure

	github.com/JustinBusschau/hmrc-gift-aid/pkg/giftaid     - Client API: submit, poll, claim data
	github.com/JustinBusschau/hmrc-gift-aid/pkg/claim       - Entity model and Claim document builder
	github.com/JustinBusschau/hmrc-gift-aid/pkg/irmark      - IRmark canonical digest engine
	github.com/JustinBusschau/hmrc-gift-aid/pkg/envelope    - IRenvelope assembler
	github.com/JustinBusschau/hmrc-gift-aid/pkg/compression - GZIP claim body compression
	github.com/JustinBusschau/hmrc-gift-aid/pkg/govtalk     - Transport collaborator contract
	github.com/JustinBusschau/hmrc-gift-aid/pkg/response    - Reply classification and poll state machine
	github.com/JustinBusschau/hmrc-gift-aid/pkg/tracking    - Correlation id tracking across polls

The generic GovTalk transport (authentication, HTTP, retries) is an
external collaborator behind the govtalk.Transport interface; this
module supplies message bodies and interprets structured replies.

# The IRmark

The IRmark is a SHA-1 digest over the exclusive canonical form
(xml-exc-c14n) of the message body with the IRmark element removed.
The envelope is built with an opaque placeholder token; the transport
invokes irmark.Seal with the complete outer document, which computes
the digest over a copy with the placeholder element deleted and then
substitutes the base64 digest for the token in the transmitted text.
*/
package hmrcgiftaid
