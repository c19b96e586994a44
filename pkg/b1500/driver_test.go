package b1500

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSim(t *testing.T) (*Driver, *SimSession) {
	t.Helper()
	sim := NewSimSession()
	d, err := Open(context.Background(), Config{Session: sim})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d, sim
}

func TestOpenQueriesIdentity(t *testing.T) {
	d, sim := openSim(t)

	assert.Contains(t, d.Identity(), "B1500A")
	assert.Equal(t, []string{"*IDN?"}, sim.Commands())
	assert.NotEmpty(t, d.SessionID())
}

func TestOpenRequiresSession(t *testing.T) {
	_, err := Open(context.Background(), Config{})
	require.ErrorIs(t, err, ErrNoSession)
}

func TestStatusResetSelfTest(t *testing.T) {
	d, sim := openSim(t)
	ctx := context.Background()

	status, err := d.GetStatus(ctx)
	require.NoError(t, err)
	assert.Zero(t, status)

	require.NoError(t, d.Reset(ctx))

	code, err := d.SelfTest(ctx)
	require.NoError(t, err)
	assert.Zero(t, code)

	assert.Equal(t, []string{"*IDN?", "*STB?", "*RST", "*TST?"}, sim.Commands())
}

func TestDrainErrors(t *testing.T) {
	sim := NewSimSession()
	sim.Respond("ERRX?",
		`305,"Excess current in HPSMU."`,
		`602,"ADC overflow."`,
		`0,"No Error."`)

	d, err := Open(context.Background(), Config{Session: sim})
	require.NoError(t, err)
	defer d.Close()

	messages, err := d.DrainErrors(context.Background())
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Contains(t, messages[0], "Excess current")
	assert.Contains(t, messages[1], "ADC overflow")
}

func TestDrainErrorsEmptyQueue(t *testing.T) {
	d, _ := openSim(t)

	messages, err := d.DrainErrors(context.Background())
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestCloseReleasesSession(t *testing.T) {
	sim := NewSimSession()
	d, err := Open(context.Background(), Config{Session: sim})
	require.NoError(t, err)

	require.NoError(t, d.Close())
	require.ErrorIs(t, d.Close(), ErrClosed)

	_, err = sim.Query(context.Background(), "*IDN?")
	require.ErrorIs(t, err, ErrClosed)
}
