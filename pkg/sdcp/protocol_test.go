package sdcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStatus_MissingKeysUseDefaults(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"no data", `{"Id":"x"}`},
		{"empty data", `{"Data":{}}`},
		{"null sections", `{"Data":{"Attributes":null,"Status":null}}`},
		{"empty print info", `{"Data":{"Status":{"PrintInfo":{}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, ok := decodeStatus([]byte(tt.payload))
			require.True(t, ok)

			assert.Equal(t, unknownName, reply.Data.Attributes.MachineName)
			assert.Equal(t, unknownName, reply.Data.Attributes.FirmwareVersion)
			assert.Equal(t, statusCode(unknownStatusCode), reply.Data.Status.CurrentStatus)
			assert.Zero(t, reply.Data.Status.PrintInfo.TotalLayer)
			assert.Empty(t, reply.Data.Status.PrintInfo.Filename)
		})
	}
}

func TestDecodeStatus_WrongTypesKeepDefaults(t *testing.T) {
	reply, ok := decodeStatus([]byte(`{"Data":{"Attributes":{"MachineName":42,"FirmwareVersion":"V1"},
		"Status":{"CurrentStatus":"busy","PrintInfo":{"CurrentLayer":"7","TotalLayer":20}}}}`))
	require.True(t, ok)

	assert.Equal(t, unknownName, reply.Data.Attributes.MachineName)
	assert.Equal(t, "V1", reply.Data.Attributes.FirmwareVersion)
	assert.Equal(t, statusCode(unknownStatusCode), reply.Data.Status.CurrentStatus)
	assert.Zero(t, reply.Data.Status.PrintInfo.CurrentLayer)
	assert.Equal(t, float64(20), reply.Data.Status.PrintInfo.TotalLayer)
}

func TestDecodeStatus_StatusAsList(t *testing.T) {
	reply, ok := decodeStatus([]byte(`{"Data":{"Status":{"CurrentStatus":[2]}}}`))
	require.True(t, ok)
	assert.Equal(t, statusCode(2), reply.Data.Status.CurrentStatus)
}

func TestDecodeStatus_RejectsNonObjects(t *testing.T) {
	for _, payload := range []string{"", "   ", "not json", "ok", "[1,2]", "null", "{}", `{"Data":`} {
		_, ok := decodeStatus([]byte(payload))
		assert.False(t, ok, "payload %q", payload)
	}
}

func TestDecodeStatus_RejectsInvalidUTF8(t *testing.T) {
	_, ok := decodeStatus([]byte("{\"Data\":{\"Attributes\":{\"MachineName\":\"\xff\xfe\"}}}"))
	assert.False(t, ok)

	_, ok = decodeObject([]byte("{\"ok\":\"\xc3\"}"))
	assert.False(t, ok)

	_, ok = decodeStatus([]byte(`{"Data":{"Attributes":{"MachineName":"Saturn 3 Ultra ñ"}}}`))
	assert.True(t, ok)
}

func TestDecodeStatus_OutOfRangeStatusIsUnknown(t *testing.T) {
	for _, payload := range []string{
		`{"Data":{"Status":{"CurrentStatus":1e20}}}`,
		`{"Data":{"Status":{"CurrentStatus":[-1e20]}}}`,
	} {
		reply, ok := decodeStatus([]byte(payload))
		require.True(t, ok, payload)
		assert.Equal(t, statusCode(unknownStatusCode), reply.Data.Status.CurrentStatus, payload)
	}
}
