package envelope

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"

	ferrors "freight-cost/internal/errors"
	tu "freight-cost/internal/testutil"
)

func TestNewHashesDeterministically(t *testing.T) {
	a, err := New(tu.Input(), "catalog")
	require.NoError(t, err)
	b, err := New(tu.Input(), "catalog")
	require.NoError(t, err)

	assert.Equal(t, a.InputHash, b.InputHash)
	assert.Len(t, a.ShortHash(), 12)
	assert.False(t, a.IsHistorical())

	in := tu.Input()
	in.IncludeDP = true
	c, err := New(in, "catalog")
	require.NoError(t, err)
	assert.NotEqual(t, a.InputHash, c.InputHash)
}

func TestValidate(t *testing.T) {
	cases := map[string]func() error{
		"missing origin": func() error {
			in := tu.Input()
			in.Origin = ""
			return Validate(in)
		},
		"missing destination": func() error {
			in := tu.Input()
			in.Destination = ""
			return Validate(in)
		},
		"negative weight": func() error {
			in := tu.Input()
			in.Weight = tu.D(-1)
			return Validate(in)
		},
		"malformed date": func() error {
			in := tu.Input()
			in.HistoricalDate = "2024-02-30"
			return Validate(in)
		},
	}

	for name, run := range cases {
		t.Run(name, func(t *testing.T) {
			err := run()
			require.Error(t, err)
			assert.True(t, ferrors.IsType(err, ferrors.TypeInput))
		})
	}

	in := tu.Input()
	in.HistoricalDate = "2024-02-29"
	assert.NoError(t, Validate(in))
}

func TestZapAuditLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	audit := &ZapAuditLogger{Logger: zap.New(core)}

	env, err := New(tu.Input(), "catalog")
	require.NoError(t, err)

	entry := CreateAuditEntry(env, "req-1", "127.0.0.1", "test")
	entry.MarkFailed(errors.New("boom"))
	require.NoError(t, audit.Log(entry))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["requestId"])
	assert.Equal(t, false, fields["success"])
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, false, fields["historical"])
}
