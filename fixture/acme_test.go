package fixture_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulSemaan007/OpenSAM/fixture"
	"github.com/PaulSemaan007/OpenSAM/sam"
)

func TestAcme_Deterministic(t *testing.T) {
	today := sam.NewDate(2025, time.June, 15)

	a := fixture.Acme(fixture.DefaultSeed, today)
	b := fixture.Acme(fixture.DefaultSeed, today)

	require.Equal(t, len(a.Installations), len(b.Installations))
	assert.Equal(t, a.Installations, b.Installations)
	assert.Equal(t, a.Users, b.Users)
}

func TestAcme_Shape(t *testing.T) {
	today := sam.NewDate(2025, time.June, 15)
	data := fixture.Acme(fixture.DefaultSeed, today)

	require.NoError(t, data.Validate())
	assert.Len(t, data.Licenses, 5)
	assert.Len(t, data.Users, 50)
	assert.Len(t, data.Vendors, 4)
	assert.True(t, data.Schema.HasDepartment)
	assert.True(t, data.Schema.HasVendors)

	// Install counts stay within 30-90% of purchased seats per product.
	// Every install predates its last use and no two installs share a
	// device.
	perProduct := make(map[string]int)
	devices := make(map[string]bool)
	for _, in := range data.Installations {
		perProduct[in.Software]++
		assert.False(t, in.LastUsedDate.After(today))
		assert.False(t, in.LastUsedDate.Before(today.AddDays(-200)))
		assert.True(t, in.InstallDate.Before(in.LastUsedDate), in.DeviceID)
		assert.False(t, devices[in.DeviceID], "duplicate device %s", in.DeviceID)
		devices[in.DeviceID] = true
	}
	for _, lic := range data.Licenses {
		n := perProduct[lic.Software]
		assert.GreaterOrEqual(t, n, lic.SeatsPurchased*30/100, lic.Software)
		assert.LessOrEqual(t, n, lic.SeatsPurchased*90/100, lic.Software)
	}
}

func TestAcme_FeedsTheEngine(t *testing.T) {
	today := sam.NewDate(2025, time.June, 15)
	engine, err := sam.NewEngine(fixture.Acme(fixture.DefaultSeed, today), sam.ByDevice{}, today)
	require.NoError(t, err)

	rows := engine.ELP()
	require.Len(t, rows, 5)
	for _, r := range rows {
		assert.GreaterOrEqual(t, r.SeatsUnused, 0)
		assert.GreaterOrEqual(t, r.Overage, 0)
	}
}
