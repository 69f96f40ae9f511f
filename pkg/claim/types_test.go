package claim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_DonorAndAggregationMutuallyExclusive(t *testing.T) {
	req := fixtureRequest()
	req.Donations[0].Aggregation = "also aggregated"

	err := req.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStructural)

	var structural *StructuralError
	require.ErrorAs(t, err, &structural)
	assert.Equal(t, "donations[0]", structural.Field)
}

func TestValidate_DonorOrAggregationRequired(t *testing.T) {
	req := fixtureRequest()
	req.Donations[1].Donor = nil

	err := req.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStructural)
}

func TestValidate_OrganisationIdentityRequired(t *testing.T) {
	req := fixtureRequest()
	req.Organisation.Name = ""
	assert.ErrorIs(t, req.Validate(), ErrStructural)

	req = fixtureRequest()
	req.Organisation.GatewayRef = ""
	assert.ErrorIs(t, req.Validate(), ErrStructural)
}

func TestValidate_FixtureIsValid(t *testing.T) {
	require.NoError(t, fixtureRequest().Validate())
}

func TestBuild_StructuralErrorPreventsRender(t *testing.T) {
	req := fixtureRequest()
	req.Donations[0].Donor = nil
	req.Donations[0].Aggregation = ""

	out, err := Build(req)
	require.Error(t, err)
	assert.Empty(t, out)
	assert.True(t, errors.Is(err, ErrStructural))
}

func TestAdjustment_IsZero(t *testing.T) {
	assert.True(t, Adjustment{}.IsZero())
	assert.False(t, Adjustment{Amount: 0.01}.IsZero())
	assert.False(t, Adjustment{Reason: "refund"}.IsZero())
}
