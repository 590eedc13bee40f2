package pgm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

// Magic is the header token of the binary grayscale variant.
const Magic = "P5"

// Decode reads a P5 raster. Comment lines starting with '#' may appear between
// header fields. Exactly one whitespace byte separates the max value from the samples.
func Decode(r io.Reader) (*Raster, error) {
	br := bufio.NewReader(r)

	magic, err := readToken(br)
	if err != nil {
		return nil, &FormatError{Op: "decode", Err: fmt.Errorf("reading magic: %w", err)}
	}
	if magic != Magic {
		return nil, &FormatError{Op: "decode", Err: fmt.Errorf("not a PGM %s file (magic %q)", Magic, magic)}
	}

	var fields [3]int
	names := [3]string{"width", "height", "max value"}
	for i := range fields {
		tok, err := readToken(br)
		if err != nil {
			return nil, &FormatError{Op: "decode", Err: fmt.Errorf("reading %s: %w", names[i], err)}
		}
		n, err := strconv.Atoi(tok)
		if err != nil || n <= 0 {
			return nil, &FormatError{Op: "decode", Err: fmt.Errorf("invalid %s %q", names[i], tok)}
		}
		fields[i] = n
	}
	width, height, maxValue := fields[0], fields[1], fields[2]
	if maxValue > MaxSupportedValue {
		return nil, &FormatError{Op: "decode", Err: fmt.Errorf("max value %d requires two-byte samples", maxValue)}
	}

	if width > math.MaxInt/height {
		return nil, &FormatError{Op: "decode", Err: fmt.Errorf("dimensions %d x %d overflow", width, height)}
	}
	n := width * height

	// readToken stops on the single separator byte before the samples. The buffer
	// grows with the data actually present, not with the declared size.
	buf, err := io.ReadAll(io.LimitReader(br, int64(n)))
	if err != nil {
		return nil, &FormatError{Op: "decode", Err: fmt.Errorf("reading %d samples: %w", n, err)}
	}
	if len(buf) != n {
		return nil, &FormatError{Op: "decode", Err: fmt.Errorf("reading %d samples: %w", n, io.ErrUnexpectedEOF)}
	}

	out := &Raster{Width: width, Height: height, MaxValue: maxValue, Pix: make([]int, len(buf))}
	for i, b := range buf {
		out.Pix[i] = int(b)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// readToken skips whitespace and comments, then reads one header token. The byte that
// terminates the token is consumed.
func readToken(br *bufio.Reader) (string, error) {
	var tok []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && len(tok) > 0 {
				return "", io.ErrUnexpectedEOF
			}
			return "", err
		}
		switch {
		case b == '#' && len(tok) == 0:
			if _, err := br.ReadString('\n'); err != nil {
				return "", err
			}
		case isSpace(b):
			if len(tok) > 0 {
				return string(tok), nil
			}
		default:
			tok = append(tok, b)
		}
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

// Encode writes r as a P5 raster.
func Encode(w io.Writer, r *Raster) error {
	if err := r.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%s\n%d %d\n%d\n", Magic, r.Width, r.Height, r.MaxValue); err != nil {
		return err
	}
	for _, v := range r.Pix {
		if err := bw.WriteByte(byte(v)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Load opens and decodes a P5 file.
func Load(path string) (*Raster, error) {
	f, err := os.Open(path) //nolint:gosec // G304: reading user-provided raster path is expected
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Save encodes r to path. The data is written to a temporary file in the same
// directory and renamed into place, so a failed write leaves no partial output.
func Save(path string, r *Raster) error {
	if err := r.Validate(); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := Encode(tmp, r); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
