package claim

import (
	"strconv"
	"time"

	"github.com/beevik/etree"
)

const (
	// dateLayout is the ISO form the gateway expects for all dates.
	dateLayout = "2006-01-02"

	// houseNoLimit is the schema limit on the donor house identifier.
	houseNoLimit = 40
)

// BuildOption configures the claim document builder.
type BuildOption func(*buildOptions)

type buildOptions struct {
	referenceDate time.Time
}

// WithReferenceDate overrides the date treated as "today" for the
// EarliestGAdate clamp. The default is the current date.
func WithReferenceDate(t time.Time) BuildOption {
	return func(o *buildOptions) {
		o.referenceDate = t
	}
}

// Build renders the Claim document for the given request. The output is
// deterministic: identical input produces byte-identical XML. Optional
// fields are omitted entirely when empty, never emitted as empty tags.
func Build(req *Request, opts ...BuildOption) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	options := &buildOptions{referenceDate: time.Now()}
	for _, opt := range opts {
		opt(options)
	}

	doc := etree.NewDocument()
	root := doc.CreateElement("Claim")
	writeText(root, "OrgName", req.Organisation.Name)
	writeText(root, "HMRCref", req.Organisation.GatewayRef)

	regulator := root.CreateElement("Regulator")
	writeText(regulator, "RegName", req.Organisation.Regulator)
	writeText(regulator, "RegNo", req.Organisation.RegulatorNo)

	repayment := root.CreateElement("Repayment")

	// Today is the default floor for EarliestGAdate; any donation dated
	// earlier lowers it, so the reported date never exceeds today.
	earliest := options.referenceDate
	for _, d := range req.Donations {
		if t, err := time.Parse(dateLayout, d.Date); err == nil && t.Before(earliest) {
			earliest = t
		}

		gad := repayment.CreateElement("GAD")
		if d.Donor != nil {
			donor := gad.CreateElement("Donor")
			writeOptional(donor, "Ttl", d.Donor.Title)
			writeOptional(donor, "Fore", d.Donor.Forename)
			writeOptional(donor, "Sur", d.Donor.Surname)
			writeOptional(donor, "House", truncate(d.Donor.HouseNo, houseNoLimit))
			writeOptional(donor, "Postcode", d.Donor.Postcode)
		} else {
			writeText(gad, "AggDonation", d.Aggregation)
		}
		if d.Sponsored {
			writeText(gad, "Sponsored", "yes")
		}
		writeText(gad, "Date", d.Date)
		writeText(gad, "Total", amount(d.Amount))
	}
	writeText(repayment, "EarliestGAdate", earliest.Format(dateLayout))

	if req.Adjustment.Amount != 0 {
		writeText(repayment, "Adjustment", amount(req.Adjustment.Amount))
	}

	gasds := root.CreateElement("GASDS")
	writeText(gasds, "ConnectedCharities", yesNo(req.Organisation.HasConnected))
	for _, cc := range req.Organisation.Connected {
		charity := gasds.CreateElement("Charity")
		writeText(charity, "Name", cc.Name)
		writeText(charity, "HMRCref", cc.GatewayRef)
	}
	for _, sd := range req.SmallDonations {
		row := gasds.CreateElement("GASDSClaim")
		writeText(row, "Year", sd.Year)
		writeText(row, "Amount", amount(sd.Amount))
	}

	writeText(gasds, "CommBldgs", yesNo(len(req.Buildings) > 0))
	for _, b := range req.Buildings {
		building := gasds.CreateElement("Building")
		writeText(building, "BldgName", b.Name)
		writeText(building, "Address", b.Address)
		writeText(building, "Postcode", b.Postcode)
		row := building.CreateElement("BldgClaim")
		writeText(row, "Year", b.Year)
		writeText(row, "Amount", amount(b.Amount))
	}

	if req.GASDSAdjustment.Amount != 0 {
		writeText(gasds, "Adj", amount(req.GASDSAdjustment.Amount))
	}

	// Adjustment reasons travel in a single free-text element, small
	// donations scheme first.
	otherInfo := ""
	if req.GASDSAdjustment.Reason != "" {
		otherInfo = req.GASDSAdjustment.Reason
	}
	if req.Adjustment.Reason != "" {
		if otherInfo != "" {
			otherInfo += " AND "
		}
		otherInfo += req.Adjustment.Reason
	}
	if otherInfo != "" {
		writeText(root, "OtherInfo", otherInfo)
	}

	doc.Indent(2)
	return doc.WriteToString()
}

// writeText creates a child element with the given text.
func writeText(parent *etree.Element, tag, text string) {
	parent.CreateElement(tag).SetText(text)
}

// writeOptional creates a child element only when the text is non-empty.
func writeOptional(parent *etree.Element, tag, text string) {
	if text != "" {
		writeText(parent, tag, text)
	}
}

// amount formats a monetary value with exactly two decimal digits, a
// point separator and no grouping.
func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
