// Package giftaid provides the client API for HMRC Charities Online
// Gift Aid repayment claims.
//
// A claim submission is a pipeline: the claim builder renders the R68
// Claim document, the envelope assembler wraps it (optionally gzip
// compressed) in an IRenvelope carrying an IRmark placeholder, the
// transport collaborator wraps that in the outer GovTalk envelope and
// invokes the digest hook to splice in the real IRmark, and the
// response interpreter classifies the gateway's reply. Results arrive
// asynchronously; the client polls with the correlation id returned by
// the acknowledgement.
//
//	client, err := giftaid.New(transport, route,
//	    giftaid.WithEndpoint(giftaid.DevEndpoint),
//	    giftaid.WithAuthorisedOfficial(&claim.Official{
//	        Forename: "Bob", Surname: "Smith",
//	        Phone: "01234 567890", Postcode: "AB12 3CD",
//	    }),
//	    giftaid.WithClaimPeriodEnd("2014-04-05"),
//	)
//	result, err := client.Submit(ctx, req)
//	// later, until result.State is final:
//	poll, err := client.Poll(ctx, result.CorrelationID, result.Endpoint)
package giftaid
