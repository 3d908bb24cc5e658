package storage

import (
	"bufio"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
	"os"
	"sync"
	"time"

	"treasurehunt/pkg/common"
)

// [CRC32 4B] [Timestamp 8B] [Group 4B] [Region 4B] [Found 1B]

const (
	RecordSize = 4 + 8 + 4 + 4 + 1 // 21 Bytes
)

var ErrCorruptJournal = errors.New("journal: corrupted record")

// JournalEntry 是从日志中读回的一条通知
type JournalEntry struct {
	Timestamp    time.Time
	Notification common.Notification
}

// Journal 追加写入每个区域的搜索通知，可作为 core.Notifier 使用。
type Journal struct {
	file *os.File
	mu   sync.Mutex
	buf  *bufio.Writer
	err  error
}

func OpenJournal(path string) (*Journal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &Journal{
		file: f,
		buf:  bufio.NewWriter(f),
	}, nil
}

func (j *Journal) Append(n common.Notification) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.appendLocked(n)
}

func (j *Journal) appendLocked(n common.Notification) error {
	rec := make([]byte, RecordSize)
	binary.LittleEndian.PutUint64(rec[4:12], uint64(time.Now().UnixNano()))
	binary.LittleEndian.PutUint32(rec[12:16], uint32(n.Group))
	binary.LittleEndian.PutUint32(rec[16:20], uint32(n.Region))
	if n.Found {
		rec[20] = 1
	}
	binary.LittleEndian.PutUint32(rec[0:4], crc32.ChecksumIEEE(rec[4:]))

	_, err := j.buf.Write(rec)
	return err
}

// Notify implements core.Notifier. The first write error is kept and returned by Err.
func (j *Journal) Notify(n common.Notification) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return
	}
	j.err = j.appendLocked(n)
}

func (j *Journal) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

func (j *Journal) Sync() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.buf.Flush(); err != nil {
		return err
	}
	return j.file.Sync()
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.buf.Flush(); err != nil {
		j.file.Close()
		return err
	}
	return j.file.Close()
}

func (j *Journal) Truncate() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.buf.Flush(); err != nil {
		return err
	}
	path := j.file.Name()
	if err := j.file.Close(); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	j.file = f
	j.buf = bufio.NewWriter(f)
	j.err = nil
	return j.file.Sync()
}

func (j *Journal) Size() (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.buf.Flush(); err != nil {
		return 0, err
	}
	st, err := j.file.Stat()
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}

type JournalIterator struct {
	reader *bufio.Reader
	file   *os.File
}

// NewIterator flushes pending records and reads the journal from the start.
func (j *Journal) NewIterator() (*JournalIterator, error) {
	j.mu.Lock()
	err := j.buf.Flush()
	name := j.file.Name()
	j.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return OpenJournalIterator(name)
}

// OpenJournalIterator reads a journal file without opening it for writing.
func OpenJournalIterator(path string) (*JournalIterator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &JournalIterator{
		file:   f,
		reader: bufio.NewReader(f),
	}, nil
}

// Next returns io.EOF at the end of the journal.
func (it *JournalIterator) Next() (JournalEntry, error) {
	rec := make([]byte, RecordSize)
	if _, err := io.ReadFull(it.reader, rec); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return JournalEntry{}, ErrCorruptJournal
		}
		return JournalEntry{}, err
	}

	if crc32.ChecksumIEEE(rec[4:]) != binary.LittleEndian.Uint32(rec[0:4]) {
		return JournalEntry{}, ErrCorruptJournal
	}

	return JournalEntry{
		Timestamp: time.Unix(0, int64(binary.LittleEndian.Uint64(rec[4:12]))),
		Notification: common.Notification{
			Group:  common.GroupID(binary.LittleEndian.Uint32(rec[12:16])),
			Region: common.RegionIndex(binary.LittleEndian.Uint32(rec[16:20])),
			Found:  rec[20] == 1,
		},
	}, nil
}

func (it *JournalIterator) Close() {
	it.file.Close()
}
