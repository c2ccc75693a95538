package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// readLine reads a line from the reader, trimming line endings.
func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptLine prints label and returns the raw answer. Empty answers are allowed.
func promptLine(reader *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := readLine(reader)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("missing input for %q", strings.TrimSpace(label))
		}
		return "", err
	}
	return line, nil
}

// promptCount asks for a non-negative integer.
func promptCount(reader *bufio.Reader, out io.Writer, label string) (int, error) {
	line, err := promptLine(reader, out, label)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("invalid count %q", strings.TrimSpace(line))
	}
	if value < 0 {
		return 0, fmt.Errorf("count must not be negative, got %d", value)
	}
	return value, nil
}
