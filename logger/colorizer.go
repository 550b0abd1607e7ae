// This file is part of Emublocks.
//
// Emublocks is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Emublocks is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Emublocks.  If not, see <https://www.gnu.org/licenses/>.

package logger

import (
	"io"
	"os"
	"strings"
)

const (
	penTag   = "\033[1m"
	penDim   = "\033[2m"
	penReset = "\033[0m"
)

// Colorizer applies basic coloring rules to logging output. The tag is
// emboldened and the detail is dimmed.
type Colorizer struct {
	out io.Writer
}

// NewColorizer is the preferred method if initialisation for the Colorizer type.
func NewColorizer(out io.Writer) Colorizer {
	return Colorizer{out: out}
}

// Write implements the io.Writer interface.
func (c Colorizer) Write(p []byte) (int, error) {
	s := strings.TrimSuffix(string(p), "\n")

	tag, detail, ok := strings.Cut(s, ": ")
	if !ok {
		return c.out.Write(p)
	}

	_, err := io.WriteString(c.out, penTag+tag+penReset+": "+penDim+detail+penReset+"\n")
	if err != nil {
		return 0, err
	}

	return len(p), nil
}

// EchoWriter returns a writer suitable for SetEcho(). If the file is a
// terminal then the writer will be a Colorizer.
func EchoWriter(f *os.File) io.Writer {
	if isTerminal(f) {
		return NewColorizer(f)
	}
	return f
}
