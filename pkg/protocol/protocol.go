package protocol

import (
	"encoding/binary"
	"errors"
	"io"

	"treasurehunt/pkg/common"
)

const (
	MagicNumber = 0x54

	OpHunt   = 0x01
	OpGetRun = 0x02

	RespErr = 0xFF
	RespVal = 0x01

	// MaxValueSize 限制单帧负载，防止恶意长度导致大块分配
	MaxValueSize = 64 << 20
)

var (
	ErrBadMagic     = errors.New("invalid magic number")
	ErrFrameTooBig  = errors.New("frame value too large")
	ErrShortPayload = errors.New("payload too short")
)

// Frame: [Magic 1B][Op 1B][KeyLen 2B][ValLen 4B][Key][Value]
type Packet struct {
	Op    byte
	Key   []byte
	Value []byte
}

func Encode(w io.Writer, op byte, key []byte, value []byte) error {
	buf := make([]byte, 8, 8+len(key)+len(value))
	buf[0] = MagicNumber
	buf[1] = op
	binary.BigEndian.PutUint16(buf[2:4], uint16(len(key)))
	binary.BigEndian.PutUint32(buf[4:8], uint32(len(value)))
	buf = append(buf, key...)
	buf = append(buf, value...)

	_, err := w.Write(buf)
	return err
}

func Decode(r io.Reader) (*Packet, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	if header[0] != MagicNumber {
		return nil, ErrBadMagic
	}

	op := header[1]
	kLen := binary.BigEndian.Uint16(header[2:4])
	vLen := binary.BigEndian.Uint32(header[4:8])
	if vLen > MaxValueSize {
		return nil, ErrFrameTooBig
	}

	key := make([]byte, kLen)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}

	val := make([]byte, vLen)
	if _, err := io.ReadFull(r, val); err != nil {
		return nil, err
	}

	return &Packet{Op: op, Key: key, Value: val}, nil
}

// EncodeParams: [Regions 8B][Groups 8B][Treasures 8B][Seed 8B]
func EncodeParams(p common.HuntParams) []byte {
	buf := make([]byte, 32)
	binary.BigEndian.PutUint64(buf[0:8], uint64(p.Regions))
	binary.BigEndian.PutUint64(buf[8:16], uint64(p.Groups))
	binary.BigEndian.PutUint64(buf[16:24], uint64(p.Treasures))
	binary.BigEndian.PutUint64(buf[24:32], uint64(p.Seed))
	return buf
}

func DecodeParams(b []byte) (common.HuntParams, error) {
	if len(b) < 32 {
		return common.HuntParams{}, ErrShortPayload
	}
	return common.HuntParams{
		Regions:   int(int64(binary.BigEndian.Uint64(b[0:8]))),
		Groups:    int(int64(binary.BigEndian.Uint64(b[8:16]))),
		Treasures: int(int64(binary.BigEndian.Uint64(b[16:24]))),
		Seed:      int64(binary.BigEndian.Uint64(b[24:32])),
	}, nil
}

// RunResult 是 OpHunt / OpGetRun 的响应体
type RunResult struct {
	Params      common.HuntParams
	Discoveries []common.Discovery
}

// EncodeRunResult: [Params 32B][Count 4B] + ([Region 4B][Group 4B]) * Count
func EncodeRunResult(r RunResult) []byte {
	buf := make([]byte, 36, 36+8*len(r.Discoveries))
	copy(buf, EncodeParams(r.Params))
	binary.BigEndian.PutUint32(buf[32:36], uint32(len(r.Discoveries)))
	for _, d := range r.Discoveries {
		buf = binary.BigEndian.AppendUint32(buf, uint32(d.Region))
		buf = binary.BigEndian.AppendUint32(buf, uint32(d.Group))
	}
	return buf
}

func DecodeRunResult(b []byte) (RunResult, error) {
	if len(b) < 36 {
		return RunResult{}, ErrShortPayload
	}
	params, _ := DecodeParams(b[:32])
	count := int(binary.BigEndian.Uint32(b[32:36]))
	body := b[36:]
	if len(body) < count*8 {
		return RunResult{}, ErrShortPayload
	}

	out := RunResult{Params: params, Discoveries: make([]common.Discovery, count)}
	for i := 0; i < count; i++ {
		off := i * 8
		out.Discoveries[i] = common.Discovery{
			Region: int(binary.BigEndian.Uint32(body[off : off+4])),
			Group:  common.GroupID(binary.BigEndian.Uint32(body[off+4 : off+8])),
		}
	}
	return out, nil
}
