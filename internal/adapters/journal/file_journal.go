package journal

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/ghalamif/BrickWatch/internal/domain"
	"github.com/ghalamif/BrickWatch/internal/ports"
)

const frameHeaderLen = 12

// FileJournal is the on-disk event log. Each entry is framed as
// [8 bytes entry id][4 bytes length][length bytes json]. Appends are flushed
// before they are acknowledged: mutations report success only once their
// notification is durable. A partially written trailing frame (crash mid
// append) is truncated away on open.
type FileJournal struct {
	mu        sync.Mutex
	path      string
	markPath  string
	file      *os.File
	writer    *bufio.Writer
	lastID    ports.EntryID
	committed ports.EntryID
	sizeBytes int64
}

func NewFileJournal(dir string) (*FileJournal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "events.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	j := &FileJournal{
		path:     path,
		markPath: filepath.Join(dir, "events.mark"),
		file:     f,
		writer:   bufio.NewWriterSize(f, 64<<10),
	}
	if err := j.recover(); err != nil {
		f.Close()
		return nil, err
	}
	return j, nil
}

func (j *FileJournal) recover() error {
	if err := j.scanLog(); err != nil {
		return err
	}
	if err := j.loadMark(); err != nil {
		return err
	}
	if j.lastID < j.committed {
		j.lastID = j.committed
	}
	_, err := j.file.Seek(0, io.SeekEnd)
	return err
}

// scanLog walks the log once to find the last complete frame, truncating any
// torn tail left behind by a crash.
func (j *FileJournal) scanLog() error {
	stat, err := os.Stat(j.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err != nil || stat.Size() == 0 {
		return nil
	}

	rf, err := os.Open(j.path)
	if err != nil {
		return err
	}
	defer rf.Close()

	r := bufio.NewReader(rf)
	var goodEnd int64
	for {
		var hdr [frameHeaderLen]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return fmt.Errorf("journal scan header: %w", err)
		}
		id := ports.EntryID(binary.BigEndian.Uint64(hdr[0:8]))
		length := int64(binary.BigEndian.Uint32(hdr[8:12]))

		if _, err := io.CopyN(io.Discard, r, length); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return fmt.Errorf("journal scan body: %w", err)
		}
		goodEnd += frameHeaderLen + length
		j.lastID = id
	}

	if err := j.file.Truncate(goodEnd); err != nil {
		return err
	}
	j.sizeBytes = goodEnd
	return nil
}

func (j *FileJournal) loadMark() error {
	data, err := os.ReadFile(j.markPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return nil
	}
	u, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("journal mark parse: %w", err)
	}
	j.committed = ports.EntryID(u)
	return nil
}

func (j *FileJournal) Append(e *domain.Event) (ports.EntryID, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	body, err := json.Marshal(e)
	if err != nil {
		return 0, err
	}

	id := j.lastID + 1
	var hdr [frameHeaderLen]byte
	binary.BigEndian.PutUint64(hdr[0:8], uint64(id))
	binary.BigEndian.PutUint32(hdr[8:12], uint32(len(body)))

	if _, err := j.writer.Write(hdr[:]); err != nil {
		return 0, err
	}
	if _, err := j.writer.Write(body); err != nil {
		return 0, err
	}
	// Events are low-rate; flush per append so the notification is on disk
	// before the mutation returns.
	if err := j.writer.Flush(); err != nil {
		return 0, err
	}

	j.lastID = id
	j.sizeBytes += int64(frameHeaderLen + len(body))
	return id, nil
}

func (j *FileJournal) Iterate(from ports.EntryID, fn func(id ports.EntryID, e *domain.Event) error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.writer.Flush(); err != nil {
		return err
	}

	f, err := os.Open(j.path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		var hdr [frameHeaderLen]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("journal iterate header: %w", err)
		}
		id := ports.EntryID(binary.BigEndian.Uint64(hdr[0:8]))
		length := binary.BigEndian.Uint32(hdr[8:12])

		body := make([]byte, length)
		if _, err := io.ReadFull(r, body); err != nil {
			return fmt.Errorf("corrupt journal entry %d: %w", id, err)
		}
		if id < from {
			continue
		}

		var e domain.Event
		if err := json.Unmarshal(body, &e); err != nil {
			return fmt.Errorf("corrupt journal entry %d: %w", id, err)
		}
		if err := fn(id, &e); err != nil {
			return err
		}
	}
}

func (j *FileJournal) Commit(upto ports.EntryID) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if upto > j.committed {
		j.committed = upto
	}
	return os.WriteFile(j.markPath, []byte(fmt.Sprintf("%d\n", j.committed)), 0o644)
}

func (j *FileJournal) Stats() ports.JournalStats {
	j.mu.Lock()
	defer j.mu.Unlock()
	return ports.JournalStats{
		OldestUncommitted: j.committed + 1,
		LatestAppended:    j.lastID,
		SizeBytes:         j.sizeBytes,
	}
}

// Close releases the underlying file handle. Pending buffered data is
// flushed first.
func (j *FileJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.writer.Flush(); err != nil {
		j.file.Close()
		return err
	}
	return j.file.Close()
}

var _ ports.EventJournal = (*FileJournal)(nil)
