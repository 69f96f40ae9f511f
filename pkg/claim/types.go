package claim

import (
	"errors"
	"fmt"
)

// StructuralError reports an input shape that cannot produce a valid
// claim document. Structural errors are raised before any envelope is
// assembled and must prevent a network call.
type StructuralError struct {
	Field  string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("claim: %s: %s", e.Field, e.Reason)
}

// ErrStructural is the sentinel all StructuralErrors unwrap to.
var ErrStructural = errors.New("claim: structural error")

func (e *StructuralError) Unwrap() error { return ErrStructural }

// Donor identifies an individual donor on an itemised donation.
type Donor struct {
	Title    string
	Forename string
	Surname  string
	// HouseNo is the house name or number. It is truncated to 40
	// characters when rendered, per the gateway schema.
	HouseNo  string
	Postcode string
	Overseas bool
}

// Official is the authorised official who signs off the claim. Unlike a
// Donor it never carries a house identifier; only the postcode
// identifies the official's address in the submission.
type Official struct {
	Title    string
	Forename string
	Surname  string
	Phone    string
	Postcode string
}

// Organisation is the claiming organisation, or a connected charity
// when it appears in Connected (only Name and GatewayRef are rendered
// for connected charities).
type Organisation struct {
	Name         string
	GatewayRef   string
	Regulator    string
	RegulatorNo  string
	HasConnected bool
	Connected    []Organisation
	UseBuildings bool
}

// Donation is a single gift-aid donation row. Exactly one of Donor and
// Aggregation must be set: itemised donations carry donor identity,
// aggregated donations carry a free-text label instead.
type Donation struct {
	// Date is the donation date in ISO form (YYYY-MM-DD), rendered as
	// supplied.
	Date        string
	Donor       *Donor
	Amount      float64
	Aggregation string
	Sponsored   bool
}

// Adjustment is a correction against a previous claim. The zero value
// means no adjustment; the element is only rendered when Amount is
// non-zero.
type Adjustment struct {
	Amount float64
	Reason string
}

// IsZero reports whether the adjustment is the empty state.
func (a Adjustment) IsZero() bool {
	return a.Amount == 0 && a.Reason == ""
}

// CommunityBuilding is one small-donations row claimed against a
// community building, one per building per year.
type CommunityBuilding struct {
	Name     string
	Address  string
	Postcode string
	Year     string
	Amount   float64
}

// SmallDonations is one Small Donations Scheme claim row.
type SmallDonations struct {
	Year   string
	Amount float64
}

// Request aggregates everything the claim document builder needs. The
// caller owns the request; Build takes a snapshot and retains nothing.
type Request struct {
	Organisation    Organisation
	Donations       []Donation
	Buildings       []CommunityBuilding
	SmallDonations  []SmallDonations
	Adjustment      Adjustment
	GASDSAdjustment Adjustment
}

// Validate checks the request shape ahead of rendering. It enforces the
// donor/aggregation exclusivity invariant on every donation and the
// required organisation identity fields.
func (r *Request) Validate() error {
	if r.Organisation.Name == "" {
		return &StructuralError{Field: "organisation.name", Reason: "required"}
	}
	if r.Organisation.GatewayRef == "" {
		return &StructuralError{Field: "organisation.gatewayRef", Reason: "required"}
	}
	for i, d := range r.Donations {
		hasDonor := d.Donor != nil
		hasAgg := d.Aggregation != ""
		if hasDonor && hasAgg {
			return &StructuralError{
				Field:  fmt.Sprintf("donations[%d]", i),
				Reason: "donor identity and aggregation label are mutually exclusive",
			}
		}
		if !hasDonor && !hasAgg {
			return &StructuralError{
				Field:  fmt.Sprintf("donations[%d]", i),
				Reason: "either donor identity or a non-empty aggregation label is required",
			}
		}
	}
	return nil
}
