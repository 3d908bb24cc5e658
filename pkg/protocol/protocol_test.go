package protocol

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treasurehunt/pkg/common"
)

func TestEncodeDecode(t *testing.T) {
	buf := new(bytes.Buffer)
	key := []byte("run-id")
	val := []byte("hello")

	require.NoError(t, Encode(buf, OpGetRun, key, val))

	pkt, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, byte(OpGetRun), pkt.Op)
	assert.Equal(t, key, pkt.Key)
	assert.Equal(t, val, pkt.Value)
}

func TestDecodeInvalidMagic(t *testing.T) {
	buf := bytes.NewReader([]byte{0x00, OpHunt, 0, 0, 0, 0, 0, 5, 'h', 'e', 'l', 'l', 'o'})
	_, err := Decode(buf)
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestDecodeTruncated(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, Encode(buf, OpHunt, nil, []byte("payload")))
	data := buf.Bytes()[:buf.Len()-2]

	_, err := Decode(bytes.NewReader(data))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = Decode(bytes.NewReader(nil))
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecodeRejectsHugeFrame(t *testing.T) {
	buf := bytes.NewReader([]byte{MagicNumber, OpHunt, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF})
	_, err := Decode(buf)
	assert.ErrorIs(t, err, ErrFrameTooBig)
}

func TestParamsRoundTrip(t *testing.T) {
	p := common.HuntParams{Regions: 1 << 20, Groups: 12, Treasures: 400, Seed: -77}
	got, err := DecodeParams(EncodeParams(p))
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = DecodeParams([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrShortPayload)
}

func TestRunResultRoundTrip(t *testing.T) {
	in := RunResult{
		Params: common.HuntParams{Regions: 10, Groups: 3, Treasures: 3, Seed: 9},
		Discoveries: []common.Discovery{
			{Region: 6, Group: 1},
			{Region: 3, Group: 0},
			{Region: 10, Group: 2},
		},
	}
	out, err := DecodeRunResult(EncodeRunResult(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)

	enc := EncodeRunResult(in)
	_, err = DecodeRunResult(enc[:len(enc)-1])
	assert.ErrorIs(t, err, ErrShortPayload)
}
