package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloudEvent_RoundTripThroughMessageValue(t *testing.T) {
	type contractSent struct {
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
	}

	ce, err := NewCloudEvent("service-booking", "booking.contract_sent", contractSent{Reference: "BK-007", Amount: 6600000})
	require.NoError(t, err)
	assert.Equal(t, "1.0", ce.SpecVersion)
	assert.NotEmpty(t, ce.ID)

	value, err := json.Marshal(ce)
	require.NoError(t, err)

	parsed, err := ParseCloudEvent(value)
	require.NoError(t, err)
	assert.Equal(t, "booking.contract_sent", parsed.Type)

	var data contractSent
	require.NoError(t, parsed.ParseData(&data))
	assert.Equal(t, "BK-007", data.Reference)
	assert.Equal(t, int64(6600000), data.Amount)
}

func TestParseCloudEvent_RejectsUntyped(t *testing.T) {
	_, err := ParseCloudEvent([]byte(`{"id":"x"}`))
	assert.Error(t, err)

	_, err = ParseCloudEvent([]byte(`not json`))
	assert.Error(t, err)
}
