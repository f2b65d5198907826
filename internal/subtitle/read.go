package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadSRT parses a SubRip document. Timestamps are kept as written, apart from
// the comma normalization.
func ReadSRT(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		entries []Entry
		block   []string
		lineNo  int
	)

	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		entry, err := parseBlock(block)
		if err != nil {
			return fmt.Errorf("block ending at line %d: %w", lineNo, err)
		}
		entries = append(entries, entry)
		block = block[:0]
		return nil
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		block = append(block, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read subtitles: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return entries, nil
}

func parseBlock(lines []string) (Entry, error) {
	if len(lines) < 2 {
		return Entry{}, fmt.Errorf("%w: incomplete block", ErrMalformed)
	}

	id, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return Entry{}, fmt.Errorf("%w: sequence number %q", ErrMalformed, lines[0])
	}

	start, end, ok := strings.Cut(lines[1], "-->")
	if !ok {
		return Entry{}, fmt.Errorf("%w: time range %q", ErrMalformed, lines[1])
	}

	return Entry{
		ID:        id,
		StartTime: NormalizeTimestamp(strings.TrimSpace(start)),
		EndTime:   NormalizeTimestamp(strings.TrimSpace(end)),
		Text:      strings.Join(lines[2:], "\n"),
	}, nil
}
