package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVehicleRecord_AbsentFieldsStayAbsent(t *testing.T) {
	t.Parallel()

	var rec VehicleRecord
	require.NoError(t, json.Unmarshal([]byte(`{"maker":"Honda","year":null}`), &rec))

	assert.Equal(t, "Honda", rec.Maker)
	assert.Nil(t, rec.Year)
	assert.Nil(t, rec.Mileage)
	assert.Nil(t, rec.Price)
	assert.Empty(t, rec.VIN)
	assert.Empty(t, rec.BodyType)
}

func TestVehicleRecord_JSONKeys(t *testing.T) {
	t.Parallel()

	year := 2018
	rec := VehicleRecord{
		Maker:      "Toyota",
		Year:       &year,
		RegionName: "REGION_STATE_AZ",
		BodyType:   BodySedan,
	}

	b, err := json.Marshal(rec)
	require.NoError(t, err)

	out := string(b)
	assert.Contains(t, out, `"regionName":"REGION_STATE_AZ"`)
	assert.Contains(t, out, `"body_type":"sedan"`)
	assert.Contains(t, out, `"mileage":null`)
	assert.NotContains(t, out, `"vin"`)
}
