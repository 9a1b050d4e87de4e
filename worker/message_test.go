package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleProtocol(t *testing.T) {
	var w = startWorker(t, Options{RBDS: true})
	var ctx = context.Background()

	resp, err := w.Handle(ctx, []byte(`{"type":"parse","data":"`+psAB+`\n`+psCD+`"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"parsed"}`, string(resp))

	resp, err = w.Handle(ctx, []byte(`{"type":"getData"}`))
	require.NoError(t, err)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(resp, &data))
	assert.Equal(t, "data", data["type"])
	assert.Equal(t, "1234", data["pi"])
	assert.Equal(t, "KAVS", data["callsign"])
	assert.Equal(t, "ABCD    ", data["ps"])
	assert.Equal(t, -1.0, data["ber"])
	for _, key := range []string{
		"pty", "ptyName", "psStable", "longPs", "ptyn", "rt", "rtA", "rtB", "rtAbFlag",
		"rtStable", "afList", "afType", "ecc", "lic", "pin", "localTime", "utcTime",
		"tp", "ta", "ms", "diStereo", "diArtificialHead", "diCompressed", "diDynamicPty",
		"hasRtPlus", "hasEon", "hasTmc", "hasOda", "eonData", "odaList", "rtPlusData",
		"groupStats", "stableFlags",
	} {
		assert.Contains(t, data, key)
	}

	resp, err = w.Handle(ctx, []byte(`{"type":"reset"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"reset"}`, string(resp))

	snap, err := w.GetData(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.PI)
}

func TestHandleErrors(t *testing.T) {
	var w = startWorker(t, Options{})
	var ctx = context.Background()

	_, err := w.Handle(ctx, []byte(`{"type":"tune","data":"98.1"}`))
	assert.ErrorIs(t, err, ErrUnknownCommand)

	_, err = w.Handle(ctx, []byte(`{"type":`))
	assert.Error(t, err)
}
