// Package envelope assembles the IRenvelope document submitted to the
// charities repayment service. It wraps a rendered claim body, raw or
// gzip compressed, behind an IRheader that carries the claim keys and
// the IRmark placeholder the digest engine later replaces.
package envelope

import (
	"github.com/beevik/etree"

	"github.com/JustinBusschau/hmrc-gift-aid/pkg/claim"
	"github.com/JustinBusschau/hmrc-gift-aid/pkg/compression"
	"github.com/JustinBusschau/hmrc-gift-aid/pkg/irmark"
)

// Namespace is the schema namespace of the R68 IRenvelope.
const Namespace = "http://www.govtalk.gov.uk/taxation/charities/r68/2"

const (
	// defaultCurrency is fixed: the gateway only accepts GBP.
	defaultCurrency = "GBP"
	senderType      = "Individual"
)

// Meta carries the submission metadata the header needs beyond the
// claim body itself.
type Meta struct {
	// CharityRef is the claimant's gateway reference, keyed as CHARID.
	CharityRef string
	// PeriodEnd is the claim period end date, YYYY-MM-DD.
	PeriodEnd string
	// Compress embeds the claim body gzip compressed and base64
	// encoded inside a CompressedPart. There is no automatic fallback;
	// the toggle is entirely caller controlled.
	Compress bool
}

// Build composes the IRenvelope around an already rendered claim body.
// The IRmark element holds the placeholder token only; the real digest
// is spliced in by the transport's signing hook. The assembler does not
// transmit anything.
func Build(claimXML string, official *claim.Official, meta Meta) (string, error) {
	if official == nil {
		return "", &claim.StructuralError{Field: "official", Reason: "authorised official is required"}
	}
	if official.Forename == "" || official.Surname == "" {
		return "", &claim.StructuralError{Field: "official", Reason: "forename and surname are required"}
	}

	doc := etree.NewDocument()
	env := doc.CreateElement("IRenvelope")
	env.CreateAttr("xmlns", Namespace)

	header := env.CreateElement("IRheader")
	key := header.CreateElement("Keys").CreateElement("Key")
	key.CreateAttr("Type", "CHARID")
	key.SetText(meta.CharityRef)
	header.CreateElement("PeriodEnd").SetText(meta.PeriodEnd)
	header.CreateElement("DefaultCurrency").SetText(defaultCurrency)
	mark := header.CreateElement("IRmark")
	mark.CreateAttr("Type", "generic")
	mark.SetText(irmark.Token)
	header.CreateElement("Sender").SetText(senderType)

	r68 := env.CreateElement("R68")
	auth := r68.CreateElement("AuthOfficial")
	name := auth.CreateElement("OffName")
	if official.Title != "" {
		name.CreateElement("Ttl").SetText(official.Title)
	}
	name.CreateElement("Fore").SetText(official.Forename)
	name.CreateElement("Sur").SetText(official.Surname)
	auth.CreateElement("OffID").CreateElement("Postcode").SetText(official.Postcode)
	auth.CreateElement("Phone").SetText(official.Phone)
	r68.CreateElement("Declaration").SetText("yes")

	if meta.Compress {
		encoded, err := compression.NewCompressor().CompressToBase64([]byte(claimXML))
		if err != nil {
			return "", err
		}
		part := r68.CreateElement("CompressedPart")
		part.CreateAttr("Type", compression.TypeGzip)
		part.SetText(encoded)
	} else {
		body := etree.NewDocument()
		if err := body.ReadFromString(claimXML); err != nil {
			return "", &claim.StructuralError{Field: "claim", Reason: "claim body is not well-formed XML"}
		}
		r68.AddChild(body.Root())
	}

	doc.Indent(2)
	return doc.WriteToString()
}
