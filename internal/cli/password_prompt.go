package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// promptPassword prints label and reads one line from in. Echo is switched
// off while reading when in is a terminal; piped input is read as is.
func promptPassword(in *os.File, out io.Writer, label string) (string, error) {
	if in == nil {
		return "", errors.New("stdin unavailable")
	}
	fmt.Fprint(out, label)

	restore, err := disableEcho(in)
	if err != nil {
		restore = func() {}
	}
	line, err := readLine(in)
	restore()
	fmt.Fprintln(out)
	return line, err
}

// readLine reads up to the next newline one byte at a time so that later
// prompts on the same stream still see their input.
func readLine(in io.Reader) (string, error) {
	var builder strings.Builder
	buffer := make([]byte, 1)
	for {
		n, err := in.Read(buffer)
		if n > 0 {
			if buffer[0] == '\n' {
				break
			}
			builder.WriteByte(buffer[0])
		}
		if errors.Is(err, io.EOF) {
			if builder.Len() == 0 {
				return "", io.ErrUnexpectedEOF
			}
			break
		}
		if err != nil {
			return "", err
		}
	}
	return strings.TrimRight(builder.String(), "\r"), nil
}
